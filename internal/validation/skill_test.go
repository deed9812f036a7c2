package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSkillName(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		skill   string
		wantErr bool
	}{
		{"Empty Allowed", "", false},
		{"Simple", "Guitar", false},
		{"With Spaces", "Conversational Spanish", false},
		{"With Symbols", "C# / .NET", false},
		{"Accented", "Français", false},
		{"Leading Space", " Guitar", true},
		{"Trailing Space", "Guitar ", true},
		{"Starts With Symbol", "-Guitar", true},
		{"Too Long", strings.Repeat("a", 101), true},
		{"Exactly Max Length", strings.Repeat("a", 100), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSkillName(tt.skill)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
