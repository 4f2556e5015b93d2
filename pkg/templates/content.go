// Package templates provisions the two auxiliary fragments a chat agent needs
// to work with Taskable cards: the card template and the instruction set.
package templates

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/houzhh15/taskable/pkg/cards"
)

// Kind identifies a provisioned artifact. It is also the value of the
// artifact's type: tag.
type Kind string

const (
	KindTemplate       Kind = "taskable-template"
	KindInstructionSet Kind = "taskable-instruction-set"
)

// Tag returns the type:<kind> tag.
func (k Kind) Tag() string {
	return cards.TypePrefix + ":" + string(k)
}

// typeName is the workspace fragment type each artifact is stored under,
// matched case-insensitively.
func (k Kind) typeName() string {
	switch k {
	case KindTemplate:
		return "template"
	case KindInstructionSet:
		return "instruction set"
	}
	return string(k)
}

//go:embed content/template.md
var templateContent string

//go:embed content/instruction-set.md
var instructionSetContent string

type artifact struct {
	title   string
	summary string
}

var artifacts = map[Kind]artifact{
	KindTemplate: {
		title:   "Taskable Standard Template",
		summary: "Template for creating standardized todo cards in Taskable",
	},
	KindInstructionSet: {
		title:   "Taskable Instruction Set",
		summary: "AI instructions for managing Taskable cards through Usable chat",
	},
}

// Tags returns the canonical tag set of an artifact at the current schema
// version.
func Tags(kind Kind) []string {
	return []string{cards.AppTag, kind.Tag(), cards.VersionPrefix + ":" + cards.SchemaVersion}
}

// TemplateContent returns the card template document.
func TemplateContent() string {
	return templateContent
}

// InstructionSetContent prefixes the instruction document with a
// configuration block naming the template fragment and, when known, the
// fragment type cards are stored under.
func InstructionSetContent(templateFragmentID, cardsFragmentTypeID string) string {
	var b strings.Builder
	b.WriteString("# Taskable Configuration\n\n")
	b.WriteString("**IMPORTANT**: Use these exact IDs when working with Taskable:\n\n")
	fmt.Fprintf(&b, "- **Template Fragment ID**: `%s`\n", templateFragmentID)
	b.WriteString("  - Reference structure for new cards\n")
	fmt.Fprintf(&b, "  - View it with `get-memory-fragment-content({ fragmentId: \"%s\" })`\n", templateFragmentID)
	if cardsFragmentTypeID != "" {
		fmt.Fprintf(&b, "- **Cards Fragment Type ID**: `%s`\n", cardsFragmentTypeID)
		b.WriteString("  - Store every card under this fragment type and no other\n")
	} else {
		b.WriteString("- **Cards Fragment Type ID**: Not configured (cards can be stored in any compatible type)\n")
	}
	b.WriteString("- **Workspace ID**: take it from the user's context or connection info\n\n")
	b.WriteString("**Note**: in the examples below replace:\n")
	fmt.Fprintf(&b, "- `<TEMPLATE_FRAGMENT_ID>` with `%s`\n", templateFragmentID)
	if cardsFragmentTypeID != "" {
		fmt.Fprintf(&b, "- `<CARDS_FRAGMENT_TYPE_ID>` with `%s`\n", cardsFragmentTypeID)
	}
	b.WriteString("- `<USER_WORKSPACE_ID>` with the workspace ID from the user's context\n\n")
	b.WriteString("---\n\n")
	b.WriteString(instructionSetContent)
	return b.String()
}
