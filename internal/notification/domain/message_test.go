package domain

import (
	"testing"

	orderdomain "github.com/Falloukarim/colis-sn-sub000/internal/order/domain"
	"github.com/Falloukarim/colis-sn-sub000/internal/pricing"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

const link = "https://colis.sn/qr/public/3f2b8c1e-9a4d-4e6f-8b1a-2c3d4e5f6a7b"

func TestComposeMessage_Service(t *testing.T) {
	qty := int64(2)
	order := orderdomain.Order{
		OrderNumber:  "SN-250201-123456-AB12",
		Description:  "Livraison Dakar",
		Kind:         pricing.KindService,
		Status:       orderdomain.StatusDisponible,
		Quantite:     &qty,
		PrixKg:       decimal.NewNullDecimal(decimal.NewFromInt(10000)),
		MontantTotal: decimal.NewFromInt(20000),
	}

	msg := ComposeMessage(order, order.Kind, "Awa", link)
	assert.Contains(t, msg, "Bonjour Awa, votre commande SN-250201-123456-AB12 est disponible")
	assert.Contains(t, msg, "Montant : 2 x 10 000 FCFA = 20 000 FCFA")
	assert.Contains(t, msg, link)
}

func TestComposeMessage_Product(t *testing.T) {
	order := orderdomain.Order{
		OrderNumber:  "SN-250201-654321-ZZ99",
		Description:  "Sac de riz",
		Kind:         pricing.KindProduct,
		Status:       orderdomain.StatusDisponible,
		Poids:        decimal.NewNullDecimal(decimal.RequireFromString("2.5")),
		PrixKg:       decimal.NewNullDecimal(decimal.NewFromInt(3000)),
		MontantTotal: decimal.NewFromInt(7500),
	}

	msg := ComposeMessage(order, order.Kind, "", link)
	assert.Contains(t, msg, "Bonjour, votre commande")
	assert.Contains(t, msg, "Montant : 2,5 kg x 3 000 FCFA/kg = 7 500 FCFA")
	assert.Contains(t, msg, link)
}

func TestComposeMessage_Unpriced(t *testing.T) {
	order := orderdomain.Order{
		OrderNumber: "SN-250201-000001-AAAA",
		Kind:        pricing.KindProduct,
		Status:      orderdomain.StatusEnCours,
		PrixKg:      decimal.NewNullDecimal(decimal.NewFromInt(3000)),
	}

	msg := ComposeMessage(order, order.Kind, "Moussa", link)
	assert.Contains(t, msg, "est en cours de traitement")
	assert.NotContains(t, msg, "Montant")
	assert.Contains(t, msg, link)
}

func TestPricingLine_FollowsGivenKind(t *testing.T) {
	qty := int64(2)
	order := orderdomain.Order{
		Quantite: &qty,
		PrixKg:   decimal.NewNullDecimal(decimal.NewFromInt(10000)),
	}

	assert.Equal(t, "2 x 10 000 FCFA", PricingLine(order, pricing.KindService))
	assert.Equal(t, "", PricingLine(order, pricing.KindProduct))
}

func TestParseChannel(t *testing.T) {
	assert.Equal(t, ChannelWhatsApp, ParseChannel(" WhatsApp "))
	assert.Equal(t, ChannelEmail, ParseChannel("email"))
	assert.Equal(t, Channel(""), ParseChannel("fax"))
}
