package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePhone(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"77 123 45 67", "771234567", true},
		{"+221 77-123-45-67", "+221771234567", true},
		{"(33) 821.00.00", "338210000", true},
		{"12345", "", false},
		{"77a1234567", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := NormalizePhone(tc.in)
		assert.Equal(t, tc.ok, ok, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestFirstName(t *testing.T) {
	assert.Equal(t, "Awa", Client{Name: "Awa Ndiaye"}.FirstName())
	assert.Equal(t, "Moussa", Client{Name: "Moussa"}.FirstName())
}
