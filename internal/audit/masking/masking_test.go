package masking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskSecret(t *testing.T) {
	assert.Equal(t, "****4567", MaskSecret("+221771234567"))
	assert.Equal(t, "****", MaskSecret("123"))
	assert.Equal(t, "", MaskSecret("  "))
}

func TestMaskContactFields(t *testing.T) {
	out := MaskContactFields(map[string]any{
		"destination":  "+221771234567",
		"channel":      "sms",
		"order_number": "SN-250301-123456-AB12",
		"":             "dropped",
	})
	assert.Equal(t, "****4567", out["destination"])
	assert.Equal(t, "sms", out["channel"])
	assert.Equal(t, "SN-250301-123456-AB12", out["order_number"])
	assert.Len(t, out, 3)
	assert.Nil(t, MaskContactFields(nil))
}
