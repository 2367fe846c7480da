package format

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFCFA(t *testing.T) {
	cases := map[string]string{
		"0":       "0 FCFA",
		"500":     "500 FCFA",
		"20000":   "20 000 FCFA",
		"1234567": "1 234 567 FCFA",
		"37500.4": "37 500 FCFA",
		"-150000": "-150 000 FCFA",
	}
	for in, want := range cases {
		assert.Equal(t, want, FCFA(decimal.RequireFromString(in)), in)
	}
}

func TestWeight(t *testing.T) {
	assert.Equal(t, "2,5 kg", Weight(decimal.RequireFromString("2.500")))
	assert.Equal(t, "12 kg", Weight(decimal.NewFromInt(12)))
}

func TestDate(t *testing.T) {
	assert.Equal(t, "-", Date(nil))
	d := time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, "01/02/2025", Date(&d))
}
