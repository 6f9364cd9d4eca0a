package types_test

import (
	"testing"

	"github.com/arthur-debert/deftsilo/pkg/types"
	"github.com/stretchr/testify/assert"
)

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"plain", ".config/nvim/init.lua", false},
		{"spaces and unicode", "Application Support/café", false},
		{"dollar is allowed", "a$b", false},
		{"double quote", `say"hi`, true},
		{"tab", "a\tb", true},
		{"newline", "a\nb", true},
		{"delete char", "a\x7fb", true},
		{"invalid utf8", "a\xffb", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := types.ValidatePath(tt.path)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
