package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validHeader() []string {
	return HeaderNames()
}

func TestValidateHeader(t *testing.T) {
	dataRow := []string{"ORD001"}

	withCell := func(i int, v string) []string {
		h := validHeader()
		h[i] = v
		return h
	}

	tests := []struct {
		name     string
		table    RawTable
		wantKind ErrorKind
		wantMsg  string
	}{
		{
			name:  "exact header",
			table: RawTable{validHeader(), dataRow},
		},
		{
			name:  "extra trailing columns ignored",
			table: RawTable{append(validHeader(), "NOTES", "INTERNAL"), dataRow},
		},
		{
			name:     "empty table",
			table:    RawTable{},
			wantKind: KindInsufficientRows,
			wantMsg:  MsgInsufficientRows,
		},
		{
			name:     "header only",
			table:    RawTable{validHeader()},
			wantKind: KindInsufficientRows,
			wantMsg:  MsgInsufficientRows,
		},
		{
			name:     "first column wrong",
			table:    RawTable{withCell(0, "INVALID HEADER"), dataRow},
			wantKind: KindHeaderMismatch,
			wantMsg:  `Column 1 should be "ORDER ID" but found "INVALID HEADER"`,
		},
		{
			name:     "lower case rejected",
			table:    RawTable{withCell(2, "date"), dataRow},
			wantKind: KindHeaderMismatch,
			wantMsg:  `Column 3 should be "DATE" but found "date"`,
		},
		{
			name:     "padded cell rejected",
			table:    RawTable{withCell(10, " STORE NAME"), dataRow},
			wantKind: KindHeaderMismatch,
			wantMsg:  `Column 11 should be "STORE NAME" but found " STORE NAME"`,
		},
		{
			name:     "short header",
			table:    RawTable{validHeader()[:9], dataRow},
			wantKind: KindHeaderMismatch,
			wantMsg:  `Column 10 should be "QUANTITY" but found ""`,
		},
		{
			name:     "swapped columns report first mismatch",
			table:    RawTable{withCell(1, "DATE"), dataRow},
			wantKind: KindHeaderMismatch,
			wantMsg:  `Column 2 should be "PRODUCT ID" but found "DATE"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateHeader(tt.table)
			if tt.wantKind == "" {
				assert.NoError(t, err)
				return
			}

			var ie *ImportError
			require.True(t, errors.As(err, &ie), "want *ImportError, got %T", err)
			assert.Equal(t, tt.wantKind, ie.Kind)
			assert.Contains(t, ie.Message, tt.wantMsg)
		})
	}
}

func TestValidateHeader_SentinelMatch(t *testing.T) {
	err := ValidateHeader(RawTable{{"ORDER ID"}})
	assert.ErrorIs(t, err, ErrInsufficientRows)
	assert.NotErrorIs(t, err, ErrHeaderMismatch)
}
