package templates

import (
	"fmt"
	"strings"
)

// TypeNotFoundError is returned when the workspace lacks the fragment type an
// artifact must be stored under. Provisioning creates nothing in that case.
type TypeNotFoundError struct {
	Kind      Kind
	TypeName  string
	Available []string
}

func (e *TypeNotFoundError) Error() string {
	available := "none"
	if len(e.Available) > 0 {
		available = strings.Join(e.Available, ", ")
	}
	return fmt.Sprintf("%s fragment type %q not found in workspace. Available types: %s", e.Kind, e.TypeName, available)
}
