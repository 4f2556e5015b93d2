package cards

import (
	"errors"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// SchemaVersion is the current card content schema version.
const SchemaVersion = "2.0.0"

// Tag vocabulary shared with the chat agent instructions.
const (
	AppTag            = "app:taskable"
	CollectionPrefix  = "collection"
	VersionPrefix     = "version"
	TypePrefix        = "type"
	DefaultCollection = "default"
	// AllCollections disables the collection filter when listing cards.
	AllCollections = "all"
)

// ErrInvalidCollection is returned for collection names that cannot be
// encoded as a single tag value.
var ErrInvalidCollection = errors.New("invalid collection name")

// CardTags returns the tags every card carries, in a fixed order.
func CardTags(collection, version string) []string {
	return []string{
		AppTag,
		CollectionPrefix + ":" + collection,
		VersionPrefix + ":" + version,
	}
}

// ParseTagValue returns the value of the first tag starting with prefix+":".
// Values stop at the next colon, so "version:1:2" yields "1". An empty value
// counts as absent.
func ParseTagValue(tags []string, prefix string) (string, bool) {
	marker := prefix + ":"
	for _, tag := range tags {
		if !strings.HasPrefix(tag, marker) {
			continue
		}
		value := tag[len(marker):]
		if i := strings.IndexByte(value, ':'); i >= 0 {
			value = value[:i]
		}
		if value == "" {
			return "", false
		}
		return value, true
	}
	return "", false
}

// CollectionOf returns the card collection, "default" when untagged.
func CollectionOf(tags []string) string {
	if v, ok := ParseTagValue(tags, CollectionPrefix); ok {
		return v
	}
	return DefaultCollection
}

// HasTag reports whether tags contains tag exactly.
func HasTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}

var lowerCaser = cases.Lower(language.Und)

// NormalizeCollection turns user input into a tag-safe collection name:
// NFKC-normalised, lower case, without whitespace. Colons are rejected since
// they would be truncated by ParseTagValue. Blank input maps to "default".
func NormalizeCollection(name string) (string, error) {
	name = lowerCaser.String(norm.NFKC.String(name))
	name = strings.Join(strings.FieldsFunc(name, unicode.IsSpace), "")
	if name == "" {
		return DefaultCollection, nil
	}
	if strings.ContainsRune(name, ':') {
		return "", ErrInvalidCollection
	}
	return name, nil
}

// Meta is the typed form of a card's tag set.
type Meta struct {
	App        bool
	Collection string
	Version    string
}

// MetaFromTags decodes card metadata. A missing version is reported as "1.0.0",
// the schema that predates version tags.
func MetaFromTags(tags []string) Meta {
	version, ok := ParseTagValue(tags, VersionPrefix)
	if !ok {
		version = "1.0.0"
	}
	return Meta{
		App:        HasTag(tags, AppTag),
		Collection: CollectionOf(tags),
		Version:    version,
	}
}

// Tags encodes the metadata back into card tags.
func (m Meta) Tags() []string {
	return CardTags(m.Collection, m.Version)
}
