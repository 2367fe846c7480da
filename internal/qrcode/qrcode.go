// Package qrcode issues and parses pickup credentials.
//
// A credential is a QR image encoding the public verification URL of an
// order. It carries no signature: authority comes from re-validating the
// order server-side when it is scanned.
package qrcode

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image/png"
	"regexp"
	"strings"

	"github.com/Falloukarim/colis-sn-sub000/internal/apperror"
	"github.com/Falloukarim/colis-sn-sub000/internal/config"
	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"
	"github.com/google/uuid"
)

const (
	PublicPath      = "/qr/public/"
	DefaultSize     = 256
	dataURLPrefix   = "data:image/png;base64,"
	uuidPatternBody = `[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}`
)

var (
	bareIDPattern = regexp.MustCompile(`(?i)^` + uuidPatternBody + `$`)
	urlIDPattern  = regexp.MustCompile(`(?i)/qr/(?:public/)?(` + uuidPatternBody + `)(?:\?|$)`)
)

var ErrInvalidCredential = apperror.Validation("qr_code", "invalid_credential", "QR code invalide ou non reconnu")

// Credential is an issued pickup credential.
type Credential struct {
	OrderID uuid.UUID
	Content string
	Payload string
}

type Issuer struct {
	baseURL string
	size    int
}

func NewIssuer(cfg config.Config) *Issuer {
	return &Issuer{
		baseURL: strings.TrimRight(strings.TrimSpace(cfg.PublicBaseURL), "/"),
		size:    DefaultSize,
	}
}

// PublicURL returns the verification link embedded in credentials and
// notification messages.
func (i *Issuer) PublicURL(orderID uuid.UUID) string {
	return i.baseURL + PublicPath + orderID.String()
}

// Issue renders the credential for orderID. The same id always yields the
// same payload.
func (i *Issuer) Issue(orderID uuid.UUID) (Credential, error) {
	if orderID == uuid.Nil {
		return Credential{}, ErrInvalidCredential
	}
	content := i.PublicURL(orderID)
	img, err := Render(content, i.size)
	if err != nil {
		return Credential{}, err
	}
	return Credential{
		OrderID: orderID,
		Content: content,
		Payload: dataURLPrefix + base64.StdEncoding.EncodeToString(img),
	}, nil
}

// Render encodes content as a square PNG QR image.
func Render(content string, size int) ([]byte, error) {
	if size <= 0 {
		size = DefaultSize
	}
	code, err := qr.Encode(content, qr.M, qr.Auto)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	scaled, err := barcode.Scale(code, size, size)
	if err != nil {
		return nil, fmt.Errorf("scale qr: %w", err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, scaled); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodePayload returns the PNG bytes of a stored data URL payload.
func DecodePayload(payload string) ([]byte, error) {
	if !strings.HasPrefix(payload, dataURLPrefix) {
		return nil, ErrInvalidCredential
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(payload, dataURLPrefix))
	if err != nil {
		return nil, ErrInvalidCredential
	}
	return raw, nil
}

// ExtractOrderID accepts either a bare UUID or a string containing /qr/ or
// /qr/public/ immediately followed by a UUID and then end of input or a
// query string.
func ExtractOrderID(scanned string) (uuid.UUID, error) {
	scanned = strings.TrimSpace(scanned)
	if scanned == "" {
		return uuid.Nil, ErrInvalidCredential
	}

	raw := ""
	if bareIDPattern.MatchString(scanned) {
		raw = scanned
	} else if m := urlIDPattern.FindStringSubmatch(scanned); len(m) == 2 {
		raw = m[1]
	}
	if raw == "" {
		return uuid.Nil, ErrInvalidCredential
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, ErrInvalidCredential
	}
	return id, nil
}
