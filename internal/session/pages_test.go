package session

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePages(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []int
	}{
		{"singles and range", "1,3,5-7", []int{1, 3, 5, 6, 7}},
		{"duplicates collapse", "2,2,1", []int{1, 2}},
		{"overlapping ranges", "3-6,5-8", []int{3, 4, 5, 6, 7, 8}},
		{"single page range", "4-4", []int{4}},
		{"whitespace tolerated", " 1 , 2 - 3 ", []int{1, 2, 3}},
		{"unordered input", "10,1,5", []int{1, 5, 10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePages(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParsePagesRejectsMalformedTokens(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		errText string
	}{
		{"empty input", "", "empty selection"},
		{"blank input", "   ", "empty selection"},
		{"empty segment", "1,,3", "empty segment"},
		{"trailing comma", "1,2,", "empty segment"},
		{"not a number", "1,x", `"x" is not a page number`},
		{"reversed range", "5-3", `reversed range "5-3"`},
		{"open range end", "3-", "incomplete range"},
		{"open range start", "-3", "incomplete range"},
		{"double hyphen", "1-2-3", "is not a page number"},
		{"zero page", "0", "page numbers start at 1"},
		{"zero in range", "0-2", "page numbers start at 1"},
		{"huge range", "1-1000000", "spans more than"},
		{"largest int", "9223372036854775807", "past the last supported page"},
		{"range ending at largest int", "9223372036854775806-9223372036854775807", "past the last supported page"},
		{"page past the limit", "1000001", "past the last supported page"},
		{"overflowing number", "99999999999999999999", "is not a page number"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePages(tt.input)
			require.Error(t, err)
			assert.Nil(t, got)
			assert.True(t, errors.Is(err, ErrInvalidPages))
			assert.Contains(t, err.Error(), tt.errText)
		})
	}
}

func TestParsePagesIsStrictlyAscending(t *testing.T) {
	inputs := []string{"9,1-4,3,8-9,2", "100,99,98", "7-12,1-3,2-8"}
	for _, in := range inputs {
		pages, err := ParsePages(in)
		require.NoError(t, err, in)
		for i := 1; i < len(pages); i++ {
			if pages[i] <= pages[i-1] {
				t.Fatalf("ParsePages(%q) = %v is not strictly ascending", in, pages)
			}
		}
	}
}

func TestFormatPages(t *testing.T) {
	assert.Equal(t, "All pages", FormatPages(nil))
	assert.Equal(t, "1,3,5-7", FormatPages([]int{1, 3, 5, 6, 7}))
	assert.Equal(t, "2-4,10", FormatPages([]int{2, 3, 4, 10}))
	assert.Equal(t, "8", FormatPages([]int{8}))

	pages, err := ParsePages(FormatPages([]int{1, 2, 3, 9, 11, 12}))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 9, 11, 12}, pages)
}

func TestParsePagesAtPageLimit(t *testing.T) {
	got, err := ParsePages("999999-1000000")
	require.NoError(t, err)
	assert.Equal(t, []int{999999, 1000000}, got)
}
