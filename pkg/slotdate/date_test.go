package slotdate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ogulcanaydogan/slotwatch/pkg/slotdate"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"two digit day", "02 Feb 2027", "02 Feb 2027"},
		{"single digit day", "1 Dec 2026", "01 Dec 2026"},
		{"surrounding spaces", "  15 Jan 2026 ", "15 Jan 2026"},
		{"lower case month", "10 mar 2026", "10 Mar 2026"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := slotdate.Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.String())
		})
	}
}

func TestParse_Empty(t *testing.T) {
	_, err := slotdate.Parse("   ")
	assert.ErrorIs(t, err, slotdate.ErrEmptyDate)
	assert.NotErrorIs(t, err, slotdate.ErrMalformedDate)
}

func TestParse_Malformed(t *testing.T) {
	for _, input := range []string{"not-a-date", "2026-12-01", "31 Feb 2026", "Dec 01 2026"} {
		t.Run(input, func(t *testing.T) {
			_, err := slotdate.Parse(input)
			assert.ErrorIs(t, err, slotdate.ErrMalformedDate)
		})
	}
}

func TestDate_Before(t *testing.T) {
	a := slotdate.MustParse("15 Jan 2026")
	b := slotdate.MustParse("01 Dec 2026")

	assert.True(t, a.Before(b))
	assert.False(t, b.Before(a))
	assert.False(t, a.Before(a))
}

func TestDate_Zero(t *testing.T) {
	var d slotdate.Date
	assert.True(t, d.IsZero())
	assert.Empty(t, d.String())
}

func TestMustParse_Panics(t *testing.T) {
	assert.Panics(t, func() { slotdate.MustParse("garbage") })
}
