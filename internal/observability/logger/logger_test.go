package logger

import (
	"context"
	"net/http"
	"testing"

	obscontext "github.com/Falloukarim/colis-sn-sub000/internal/observability/context"
	"github.com/Falloukarim/colis-sn-sub000/internal/orgcontext"
	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestWithContextAddsCorrelationFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	base := zap.New(core)

	ctx := obscontext.WithRequestID(context.Background(), "req-42")
	ctx = orgcontext.WithActor(ctx, orgcontext.Actor{UserID: snowflake.ID(7), OrgID: snowflake.ID(99), Role: "staff"})

	WithContext(ctx, base).Info("scan")

	entries := logs.All()
	assert.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "req-42", fields["request_id"])
	assert.Equal(t, "99", fields["org_id"])
	assert.Equal(t, "user", fields["actor_type"])
	assert.Equal(t, "7", fields["actor_id"])
}

func TestDescribeSQL(t *testing.T) {
	cases := []struct {
		sql   string
		op    string
		table string
	}{
		{"UPDATE orders SET status = 'remis' WHERE status = 'disponible'", "UPDATE", "orders"},
		{"WITH t AS (SELECT 1) SELECT * FROM t", "SELECT", "t"},
		{`INSERT INTO "notifications" ("id") VALUES (1)`, "INSERT", "notifications"},
		{"SELECT count(*) FROM clients WHERE org_id = ?", "SELECT", "clients"},
		{"", "UNKNOWN", ""},
	}
	for _, tc := range cases {
		op, table := describeSQL(tc.sql)
		assert.Equal(t, tc.op, op, tc.sql)
		assert.Equal(t, tc.table, table, tc.sql)
	}
}

func TestRequestLevel(t *testing.T) {
	assert.Equal(t, zapcore.WarnLevel, requestLevel("/api/scan", http.StatusConflict, "invalid_state"))
	assert.Equal(t, zapcore.DebugLevel, requestLevel("/qr/public/:id", http.StatusNotFound, "not_found"))
	assert.Equal(t, zapcore.WarnLevel, requestLevel("/qr/public/:id", http.StatusTooManyRequests, "rate_limited"))
	assert.Equal(t, zapcore.ErrorLevel, requestLevel("/api/orders", http.StatusInternalServerError, "internal_error"))
	assert.Equal(t, zapcore.DebugLevel, requestLevel("/health", http.StatusOK, ""))
	assert.Equal(t, zapcore.InfoLevel, requestLevel("/api/orders/:id", http.StatusOK, ""))
}
