package validation

import (
	"fmt"
	"regexp"
	"strings"
)

var skillNameRegex = regexp.MustCompile(`^[\pL\pN][\pL\pN &+#./'()-]{0,99}$`)

// ValidateSkillName validates the free-text skill label attached to
// connection requests and sessions. Empty is allowed; requests without
// a named skill are still valid.
func ValidateSkillName(name string) error {
	if name == "" {
		return nil
	}

	trimmed := strings.TrimSpace(name)
	if trimmed != name {
		return fmt.Errorf("skill name cannot have leading or trailing whitespace")
	}

	if !skillNameRegex.MatchString(name) {
		return fmt.Errorf("skill name must be 1-100 characters and start with a letter or number")
	}

	return nil
}
