package download

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSelection(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		count   int
		want    []int
		wantErr error
	}{
		{name: "empty selects all", input: "", count: 3, want: nil},
		{name: "all keyword", input: "ALL", count: 3, want: nil},
		{name: "single", input: "1", count: 3, want: []int{1}},
		{name: "list and range", input: "0, 2-4", count: 5, want: []int{0, 2, 3, 4}},
		{name: "duplicates and order", input: "3,1,1-3", count: 4, want: []int{1, 2, 3}},
		{name: "out of range", input: "0,3", count: 3, wantErr: ErrOutOfRange},
		{name: "range past end", input: "1-5", count: 3, wantErr: ErrOutOfRange},
		{name: "only separators", input: ",,", count: 3, wantErr: ErrEmptyList},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSelection(tt.input, tt.count)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseSelection_Malformed(t *testing.T) {
	for _, input := range []string{"a", "1-", "3-1", "-1", "1-b"} {
		_, err := ParseSelection(input, 5)
		assert.Error(t, err, input)
		assert.False(t, errors.Is(err, ErrOutOfRange), input)
	}
}

func TestSelectionError(t *testing.T) {
	err := &SelectionError{Index: 4, Count: 2}
	assert.Equal(t, "download index 4 is out of range [0, 2)", err.Error())
	assert.ErrorIs(t, err, ErrOutOfRange)
}
