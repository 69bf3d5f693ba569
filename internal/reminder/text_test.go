package reminder

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsBlank(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want bool
	}{
		{"plain", "Buy milk", false},
		{"padded", "  Buy milk ", false},
		{"empty", "", true},
		{"only spaces", "    ", true},
		{"only tabs and newlines", "\t\r\n", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isBlank(tt.in))
		})
	}
}

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Buy milk", "Buy milk"},
		{"surrounding whitespace", "  Buy milk\n", "Buy milk"},
		{"inner whitespace kept", "Buy  milk", "Buy  milk"},
		{"decomposed accent", " re\u0301sume\u0301", "r\u00e9sum\u00e9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeText(tt.in))
		})
	}
}
