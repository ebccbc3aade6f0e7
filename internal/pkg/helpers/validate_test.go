package helpers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Title   string `json:"title" validate:"required,notblank,max=10"`
	Content string `json:"content" validate:"required,notblank"`
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		in      sample
		wantErr string
	}{
		{"ok", sample{Title: "hello", Content: "body"}, ""},
		{"missing title", sample{Content: "body"}, "title is required"},
		{"blank content", sample{Title: "hello", Content: "   "}, "content is required"},
		{"too long", sample{Title: strings.Repeat("x", 11), Content: "body"}, "title must be at most 10 characters"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.in)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateJoinsAllFailures(t *testing.T) {
	err := Validate(sample{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "title is required")
	assert.Contains(t, err.Error(), "content is required")
}
