package types

import (
	"fmt"
	"unicode/utf8"
)

// ValidatePath checks that a root-relative path can be embedded in every
// artifact format: it must be valid UTF-8 and free of double quotes and
// ASCII control characters.
func ValidatePath(rel string) error {
	if !utf8.ValidString(rel) {
		return fmt.Errorf("path %q is not valid UTF-8", rel)
	}
	for _, r := range rel {
		if r == '"' || r < 0x20 || r == 0x7f {
			return fmt.Errorf("path %q contains '\"' or an ASCII control character", rel)
		}
	}
	return nil
}
