package httpx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type bookInput struct {
	Author string `json:"author" validate:"notblank"`
	Title  string `json:"title" validate:"notblank,max=10"`
	Pages  int    `json:"pages" validate:"gte=0"`
}

type renameQuery struct {
	NewTitle string `query:"newTitle" validate:"required"`
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name    string
		input   interface{}
		fields  []string
		message string
	}{
		{name: "valid", input: bookInput{Author: "A", Title: "T", Pages: 0}},
		{name: "blank author", input: bookInput{Author: "  ", Title: "T"}, fields: []string{"author"}, message: "author is required"},
		{name: "negative pages", input: bookInput{Author: "A", Title: "T", Pages: -1}, fields: []string{"pages"}, message: "pages must be at least 0"},
		{name: "long title", input: bookInput{Author: "A", Title: "abcdefghijk"}, fields: []string{"title"}, message: "title must be at most 10 characters"},
		{name: "everything missing", input: bookInput{Pages: -2}, fields: []string{"author", "title", "pages"}},
		{name: "query tag name", input: renameQuery{}, fields: []string{"newTitle"}, message: "newTitle is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			details := ValidateStruct(tt.input)

			var fields []string
			for _, d := range details {
				fields = append(fields, d.Field)
			}
			assert.Equal(t, tt.fields, fields)
			if tt.message != "" {
				assert.Equal(t, tt.message, details[0].Message)
			}
		})
	}
}
