// Package ordernumber produces human-legible, globally unique order numbers.
//
// Primary scheme:      SN-<YYMMDD>-<6-digit time suffix>-<4-char random>
// Client-based scheme: SN-<3 initials>-<4-digit phone suffix>-<4-digit time suffix>
package ordernumber

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"strings"

	"github.com/Falloukarim/colis-sn-sub000/internal/apperror"
	"github.com/Falloukarim/colis-sn-sub000/internal/clock"
	"github.com/gosimple/slug"
)

const (
	Prefix             = "SN"
	DefaultMaxAttempts = 5
	randomAlphabet     = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	randomLength       = 4
)

var ErrExhausted = apperror.New(apperror.KindInternal, "order_number_exhausted", "Impossible de générer un numéro de commande unique, veuillez réessayer")

// ExistsFunc reports whether a candidate number is already taken.
type ExistsFunc func(ctx context.Context, number string) (bool, error)

type Generator struct {
	clock       clock.Clock
	random      io.Reader
	maxAttempts int
}

func New(clk clock.Clock) *Generator {
	if clk == nil {
		clk = clock.SystemClock{}
	}
	return &Generator{
		clock:       clk,
		random:      rand.Reader,
		maxAttempts: DefaultMaxAttempts,
	}
}

// WithRandom replaces the randomness source. Used by tests.
func (g *Generator) WithRandom(r io.Reader) *Generator {
	cp := *g
	cp.random = r
	return &cp
}

// Generate returns a primary-scheme number not reported as taken by exists.
// The storage unique index remains the final arbiter.
func (g *Generator) Generate(ctx context.Context, exists ExistsFunc) (string, error) {
	for attempt := 0; attempt < g.maxAttempts; attempt++ {
		candidate, err := g.primaryCandidate()
		if err != nil {
			return "", err
		}
		taken, err := checkExists(ctx, exists, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", ErrExhausted
}

// GenerateForClient tries the client-based scheme first and falls back to
// the primary scheme when its candidates are all taken.
func (g *Generator) GenerateForClient(ctx context.Context, name, phone string, exists ExistsFunc) (string, error) {
	initials := Initials(name)
	phoneSuffix := PhoneSuffix(phone)
	millis := g.clock.Now().UnixMilli()

	for attempt := 0; attempt < g.maxAttempts; attempt++ {
		candidate := fmt.Sprintf("%s-%s-%s-%04d", Prefix, initials, phoneSuffix, (millis+int64(attempt))%10000)
		taken, err := checkExists(ctx, exists, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
	return g.Generate(ctx, exists)
}

func (g *Generator) primaryCandidate() (string, error) {
	now := g.clock.Now().UTC()
	suffix, err := randomString(g.random, randomLength)
	if err != nil {
		return "", fmt.Errorf("order number random suffix: %w", err)
	}
	return fmt.Sprintf("%s-%s-%06d-%s", Prefix, now.Format("060102"), now.UnixMilli()%1_000_000, suffix), nil
}

func checkExists(ctx context.Context, exists ExistsFunc, candidate string) (bool, error) {
	if exists == nil {
		return false, nil
	}
	taken, err := exists(ctx, candidate)
	if err != nil {
		return false, fmt.Errorf("check order number: %w", err)
	}
	return taken, nil
}

func randomString(r io.Reader, n int) (string, error) {
	var b strings.Builder
	max := big.NewInt(int64(len(randomAlphabet)))
	for i := 0; i < n; i++ {
		idx, err := rand.Int(r, max)
		if err != nil {
			return "", err
		}
		b.WriteByte(randomAlphabet[idx.Int64()])
	}
	return b.String(), nil
}

// Initials returns three uppercase ASCII letters taken from the first letter
// of each word of name, padded with X.
func Initials(name string) string {
	var out []byte
	for _, word := range strings.Split(slug.Make(name), "-") {
		if len(out) == 3 {
			break
		}
		for i := 0; i < len(word); i++ {
			ch := word[i]
			if ch >= 'a' && ch <= 'z' {
				out = append(out, ch-'a'+'A')
				break
			}
		}
	}
	for len(out) < 3 {
		out = append(out, 'X')
	}
	return string(out)
}

// PhoneSuffix returns the last four digits of phone, left-padded with zeros.
func PhoneSuffix(phone string) string {
	digits := make([]byte, 0, len(phone))
	for i := 0; i < len(phone); i++ {
		if phone[i] >= '0' && phone[i] <= '9' {
			digits = append(digits, phone[i])
		}
	}
	if len(digits) > 4 {
		digits = digits[len(digits)-4:]
	}
	return strings.Repeat("0", 4-len(digits)) + string(digits)
}
