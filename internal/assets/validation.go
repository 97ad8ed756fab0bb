package assets

import (
	"fmt"
	"strings"
)

// ValidateStyleName checks that a style name can serve as a stylesheet
// base name. Loaders append the .css extension themselves, so the name
// must not carry path separators, traversal sequences, or dots.
func ValidateStyleName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidStyleName)
	}
	if strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidStyleName, name)
	}
	if strings.Contains(name, ".") {
		return fmt.Errorf("%w: %q (omit the .css extension)", ErrInvalidStyleName, name)
	}
	return nil
}
