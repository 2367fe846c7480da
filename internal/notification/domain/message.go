package domain

import (
	"fmt"
	"strings"

	"github.com/Falloukarim/colis-sn-sub000/internal/format"
	orderdomain "github.com/Falloukarim/colis-sn-sub000/internal/order/domain"
	"github.com/Falloukarim/colis-sn-sub000/internal/pricing"
)

// ComposeMessage renders the text sent to the client. kind is the resolved
// order kind; the public verification link is always appended.
func ComposeMessage(order orderdomain.Order, kind pricing.Kind, firstName, publicURL string) string {
	var b strings.Builder

	b.WriteString("Bonjour")
	if name := strings.TrimSpace(firstName); name != "" {
		b.WriteString(" " + name)
	}
	b.WriteString(", ")

	switch order.Status {
	case orderdomain.StatusDisponible:
		fmt.Fprintf(&b, "votre commande %s est disponible pour le retrait.", order.OrderNumber)
	case orderdomain.StatusRemis:
		fmt.Fprintf(&b, "votre commande %s a été remise.", order.OrderNumber)
	default:
		fmt.Fprintf(&b, "votre commande %s est en cours de traitement.", order.OrderNumber)
	}

	if desc := strings.TrimSpace(order.Description); desc != "" {
		fmt.Fprintf(&b, "\nArticle : %s", desc)
	}
	if line := PricingLine(order, kind); line != "" {
		fmt.Fprintf(&b, "\nMontant : %s = %s", line, format.FCFA(order.MontantTotal))
	}
	fmt.Fprintf(&b, "\nVérifiez votre commande : %s", publicURL)

	return b.String()
}

// PricingLine renders the factor times price part of the amount, or "" when
// the order is not priced yet.
func PricingLine(order orderdomain.Order, kind pricing.Kind) string {
	f := order.Factors()
	if f.UnitPrice == nil {
		return ""
	}
	price := format.FCFA(*f.UnitPrice)

	if kind == pricing.KindService {
		if f.Quantity == nil {
			return ""
		}
		return fmt.Sprintf("%d x %s", *f.Quantity, price)
	}
	if f.Weight == nil {
		return ""
	}
	return fmt.Sprintf("%s x %s/kg", format.Weight(*f.Weight), price)
}
