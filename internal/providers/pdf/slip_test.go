package pdf

import (
	"bytes"
	"context"
	"testing"

	"github.com/Falloukarim/colis-sn-sub000/internal/qrcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSlip(t *testing.T) {
	png, err := qrcode.Render("https://colis.sn/qr/public/3f2b8c1e-9a4d-4e6f-8b1a-2c3d4e5f6a7b", qrcode.DefaultSize)
	require.NoError(t, err)

	doc, err := New().GenerateSlip(context.Background(), SlipData{
		OrgName:     "Colis Dakar",
		OrderNumber: "SN-250201-123456-AB12",
		CreatedAt:   "01/02/2025",
		Status:      "En cours",
		ClientName:  "Awa Ndiaye",
		ClientPhone: "+221771234567",
		Description: "Livraison Dakar",
		PricingLine: "2 x 10 000 FCFA",
		Total:       "20 000 FCFA",
		PublicURL:   "https://colis.sn/qr/public/3f2b8c1e-9a4d-4e6f-8b1a-2c3d4e5f6a7b",
		QRCode:      png,
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(doc, []byte("%PDF")))

	_, err = New().GenerateSlip(context.Background(), SlipData{})
	assert.Error(t, err)
}
