package tracing

import (
	"context"
	"errors"

	"github.com/Falloukarim/colis-sn-sub000/internal/apperror"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
)

// Span attributes must never carry recipient phone numbers, emails or QR
// payloads.
var allowedAttributeKeys = map[attribute.Key]struct{}{
	"request_id":              {},
	"org_id":                  {},
	"order_id":                {},
	"order_number":            {},
	"order_status":            {},
	"channel":                 {},
	"http.method":             {},
	"http.route":              {},
	"http.status_code":        {},
	"http.server_duration_ms": {},
}

// ExtractContext reads the upstream trace context from carrier.
func ExtractContext(ctx context.Context, carrier propagation.TextMapCarrier) context.Context {
	return otel.GetTextMapPropagator().Extract(ctx, carrier)
}

// SafeAttributes keeps only allow-listed attribute keys.
func SafeAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	out := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedAttributeKeys[attr.Key]; ok {
			out = append(out, attr)
		}
	}
	return out
}

// SafeError reduces err to its classified kind and code so wrapped driver
// messages do not leak into exported spans.
func SafeError(err error) error {
	if err == nil {
		return nil
	}
	if appErr, ok := apperror.As(err); ok {
		if appErr.Code != "" {
			return errors.New(string(appErr.Kind) + ":" + appErr.Code)
		}
		return errors.New(string(appErr.Kind))
	}
	return errors.New(string(apperror.KindInternal))
}
