// Package pricing decides how an order is priced and computes its total.
//
// Products are sold by weight (poids × prix_kg) and services by fixed unit
// price (quantite × prix_kg). The explicit kind persisted on an order is
// authoritative; the keyword classifier only fills in for rows created
// before the kind was stored.
package pricing

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

type Kind string

const (
	KindProduct Kind = "product"
	KindService Kind = "service"
)

func (k Kind) Valid() bool {
	return k == KindProduct || k == KindService
}

// ParseKind normalizes user input. Unknown values return "".
func ParseKind(raw string) Kind {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "product", "produit":
		return KindProduct
	case "service":
		return KindService
	default:
		return ""
	}
}

// KeywordSource supplies the current service keyword list.
type KeywordSource interface {
	ServiceKeywords() []string
}

type staticKeywords []string

func (s staticKeywords) ServiceKeywords() []string { return s }

// StaticKeywords wraps a fixed keyword list.
func StaticKeywords(keywords ...string) KeywordSource {
	return staticKeywords(keywords)
}

type Classifier struct {
	source KeywordSource
}

func NewClassifier(source KeywordSource) *Classifier {
	return &Classifier{source: source}
}

// Classify returns KindService when the description contains any service
// keyword, case-insensitively, and KindProduct otherwise.
func (c *Classifier) Classify(description string) Kind {
	var keywords []string
	if c != nil && c.source != nil {
		keywords = c.source.ServiceKeywords()
	}
	return Classify(description, keywords)
}

// ResolveKind prefers the stored kind and falls back to the heuristic.
func (c *Classifier) ResolveKind(stored Kind, description string) Kind {
	if stored.Valid() {
		return stored
	}
	return c.Classify(description)
}

// Reconcile reports whether an explicit selection disagrees with what the
// description suggests. The explicit kind always wins.
func (c *Classifier) Reconcile(explicit Kind, description string) (heuristic Kind, agree bool) {
	heuristic = c.Classify(description)
	return heuristic, !explicit.Valid() || explicit == heuristic
}

// shortKeywordLen is the length below which a keyword must match a whole
// word. Brand names like "hp" or "dell" otherwise hit inside ordinary words.
const shortKeywordLen = 5

func Classify(description string, keywords []string) Kind {
	text := strings.ToLower(description)
	if strings.TrimSpace(text) == "" {
		return KindProduct
	}
	var words map[string]struct{}
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		if utf8.RuneCountInString(kw) >= shortKeywordLen {
			if strings.Contains(text, kw) {
				return KindService
			}
			continue
		}
		if words == nil {
			words = wordSet(text)
		}
		if _, ok := words[kw]; ok {
			return KindService
		}
	}
	return KindProduct
}

func wordSet(text string) map[string]struct{} {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

// Factors holds the pricing inputs of an order. Nil means absent.
type Factors struct {
	Weight    *decimal.Decimal
	Quantity  *int64
	UnitPrice *decimal.Decimal
}

// Factor returns the quantity-like factor relevant for kind.
func (f Factors) Factor(kind Kind) (decimal.Decimal, bool) {
	if kind == KindService {
		if f.Quantity == nil {
			return decimal.Zero, false
		}
		return decimal.NewFromInt(*f.Quantity), true
	}
	if f.Weight == nil {
		return decimal.Zero, false
	}
	return *f.Weight, true
}

// ReadyForPickup reports whether both the factor and price are present and
// strictly positive.
func (f Factors) ReadyForPickup(kind Kind) bool {
	factor, ok := f.Factor(kind)
	if !ok || !factor.IsPositive() {
		return false
	}
	return f.UnitPrice != nil && f.UnitPrice.IsPositive()
}

// ComputeTotal never fails: absent inputs yield zero.
func ComputeTotal(kind Kind, f Factors) decimal.Decimal {
	factor, ok := f.Factor(kind)
	if !ok || f.UnitPrice == nil {
		return decimal.Zero
	}
	return factor.Mul(*f.UnitPrice)
}
