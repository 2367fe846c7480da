package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Falloukarim/colis-sn-sub000/internal/apperror"
	authdomain "github.com/Falloukarim/colis-sn-sub000/internal/auth/domain"
	"github.com/Falloukarim/colis-sn-sub000/internal/authorization"
	"github.com/Falloukarim/colis-sn-sub000/internal/config"
	"github.com/Falloukarim/colis-sn-sub000/internal/observability"
	orderdomain "github.com/Falloukarim/colis-sn-sub000/internal/order/domain"
	"github.com/Falloukarim/colis-sn-sub000/internal/orgcontext"
	pickupdomain "github.com/Falloukarim/colis-sn-sub000/internal/pickup/domain"
	publicorderdomain "github.com/Falloukarim/colis-sn-sub000/internal/publicorder/domain"
	"github.com/Falloukarim/colis-sn-sub000/internal/qrcode"
	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const validToken = "valid-token"

type fakeAuthService struct {
	authdomain.Service
	orgHeader string
}

func (f *fakeAuthService) Authenticate(ctx context.Context, rawToken string, orgID string) (orgcontext.Actor, error) {
	f.orgHeader = orgID
	if rawToken != validToken {
		return orgcontext.Actor{}, authdomain.ErrInvalidToken
	}
	return orgcontext.Actor{UserID: 1, OrgID: 100, Role: "STAFF"}, nil
}

type fakeAuthorization struct {
	deny map[string]bool
}

func (f *fakeAuthorization) Authorize(ctx context.Context, actor orgcontext.Actor, object string, action string) error {
	if f.deny[action] {
		return authorization.ErrForbidden
	}
	return nil
}

type fakeOrderService struct {
	orderdomain.Service
	order *orderdomain.Order
	err   error
}

func (f *fakeOrderService) GetOrder(ctx context.Context, id string) (*orderdomain.Order, error) {
	if _, ok := orgcontext.ActorFromContext(ctx); !ok {
		return nil, apperror.ErrUnauthorized
	}
	return f.order, f.err
}

type fakePickupService struct {
	err error
}

func (f *fakePickupService) Validate(ctx context.Context, scanned string) (*orderdomain.Order, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &orderdomain.Order{OrderNumber: "SN-250510-ABC123", Status: orderdomain.StatusRemis}, nil
}

func (f *fakePickupService) Preview(ctx context.Context, scanned string) (*orderdomain.Order, error) {
	return &orderdomain.Order{OrderNumber: "SN-250510-ABC123", Status: orderdomain.StatusDisponible}, nil
}

type fakePublicOrderService struct{}

func (fakePublicOrderService) GetOrderForPublicView(ctx context.Context, scanned string) (*publicorderdomain.PublicOrderView, error) {
	if scanned == "known" {
		return &publicorderdomain.PublicOrderView{OrderNumber: "SN-250510-ABC123", Status: "disponible", ClientFirstName: "Awa"}, nil
	}
	return nil, publicorderdomain.ErrOrderUnavailable
}

type testServer struct {
	server *Server
	auth   *fakeAuthService
	authz  *fakeAuthorization
	orders *fakeOrderService
	pickup *fakePickupService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ts := &testServer{
		auth:   &fakeAuthService{},
		authz:  &fakeAuthorization{deny: map[string]bool{}},
		orders: &fakeOrderService{},
		pickup: &fakePickupService{},
	}
	ts.server = NewServer(ServerParams{
		Gin:            NewEngine(observability.Config{}, nil),
		Cfg:            config.Config{},
		Log:            zap.NewNop(),
		Authsvc:        ts.auth,
		AuthzSvc:       ts.authz,
		OrderSvc:       ts.orders,
		PickupSvc:      ts.pickup,
		PublicOrderSvc: fakePublicOrderService{},
		Issuer:         qrcode.NewIssuer(config.Config{PublicBaseURL: "https://colis.sn"}),
	})
	return ts
}

func (ts *testServer) do(t *testing.T, method, path string, body any, headers map[string]string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	ts.server.Engine().ServeHTTP(rec, req)

	var decoded map[string]any
	if rec.Body.Len() > 0 && rec.Header().Get("Content-Type") != "application/pdf" {
		_ = json.Unmarshal(rec.Body.Bytes(), &decoded)
	}
	return rec, decoded
}

func bearer() map[string]string {
	return map[string]string{"Authorization": "Bearer " + validToken}
}

func errorBody(t *testing.T, body map[string]any) map[string]any {
	t.Helper()
	assert.Equal(t, false, body["success"])
	payload, ok := body["error"].(map[string]any)
	require.True(t, ok, "error payload missing: %v", body)
	return payload
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	rec, body := ts.do(t, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])
}

func TestAuthRequired(t *testing.T) {
	ts := newTestServer(t)
	id := uuid.NewString()
	ts.orders.order = &orderdomain.Order{ID: uuid.MustParse(id), OrgID: snowflake.ID(100), OrderNumber: "SN-250510-ABC123"}

	t.Run("missing token", func(t *testing.T) {
		rec, body := ts.do(t, http.MethodGet, "/api/orders/"+id, nil, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "unauthorized", errorBody(t, body)["type"])
	})

	t.Run("invalid token", func(t *testing.T) {
		rec, body := ts.do(t, http.MethodGet, "/api/orders/"+id, nil, map[string]string{"Authorization": "Bearer nope"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "invalid_token", errorBody(t, body)["code"])
	})

	t.Run("valid token reaches the handler with the org header forwarded", func(t *testing.T) {
		headers := bearer()
		headers[HeaderOrg] = "100"
		rec, body := ts.do(t, http.MethodGet, "/api/orders/"+id, nil, headers)
		assert.Equal(t, http.StatusOK, rec.Code)
		data := body["data"].(map[string]any)
		assert.Equal(t, "SN-250510-ABC123", data["order_number"])
		assert.Equal(t, "100", ts.auth.orgHeader)
	})
}

func TestAuthorizationDenied(t *testing.T) {
	ts := newTestServer(t)
	ts.authz.deny[authorization.ActionOrderPickup] = true

	rec, body := ts.do(t, http.MethodPost, "/api/scan", gin.H{"qr_code": uuid.NewString()}, bearer())
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "forbidden", errorBody(t, body)["type"])
}

func TestScan(t *testing.T) {
	t.Run("hands over", func(t *testing.T) {
		ts := newTestServer(t)
		rec, body := ts.do(t, http.MethodPost, "/api/scan", gin.H{"qr_code": uuid.NewString()}, bearer())
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "remis", body["data"].(map[string]any)["status"])
	})

	t.Run("second scan reports the current state", func(t *testing.T) {
		ts := newTestServer(t)
		ts.pickup.err = pickupdomain.NotAvailable(orderdomain.StatusRemis)

		rec, body := ts.do(t, http.MethodPost, "/api/scan", gin.H{"qr_code": uuid.NewString()}, bearer())
		assert.Equal(t, http.StatusConflict, rec.Code)
		payload := errorBody(t, body)
		assert.Equal(t, "invalid_state", payload["type"])
		assert.Equal(t, "remis", payload["state"])
		assert.Equal(t, "Cette commande a déjà été remise", payload["message"])
	})

	t.Run("foreign order", func(t *testing.T) {
		ts := newTestServer(t)
		ts.pickup.err = pickupdomain.ErrForeignOrder

		rec, _ := ts.do(t, http.MethodPost, "/api/scan", gin.H{"qr_code": uuid.NewString()}, bearer())
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		ts := newTestServer(t)
		req := httptest.NewRequest(http.MethodPost, "/api/scan", bytes.NewBufferString("{"))
		req.Header.Set("Authorization", "Bearer "+validToken)
		rec := httptest.NewRecorder()
		ts.server.Engine().ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestPublicLookup(t *testing.T) {
	ts := newTestServer(t)

	rec, body := ts.do(t, http.MethodGet, "/qr/public/known", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	data := body["data"].(map[string]any)
	assert.Equal(t, "Awa", data["client_first_name"])
	assert.NotContains(t, data, "montant_total")

	rec, body = ts.do(t, http.MethodGet, "/qr/public/unknown", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "order_unavailable", errorBody(t, body)["code"])
}

func TestMapError(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		kind   string
	}{
		{"validation", orderdomain.ErrInvalidKind, http.StatusBadRequest, "validation_error"},
		{"not found", orderdomain.ErrNotFound, http.StatusNotFound, "not_found"},
		{"subscription", apperror.New(apperror.KindSubscriptionInactive, "subscription_inactive", "inactive"), http.StatusPaymentRequired, "subscription_inactive"},
		{"external", apperror.New(apperror.KindExternalService, "gateway", "down"), http.StatusBadGateway, "external_service_failure"},
		{"rate limited", ErrRateLimited, http.StatusTooManyRequests, "rate_limited"},
		{"conflict", authdomain.ErrUserExists, http.StatusConflict, "conflict"},
		{"unclassified", assert.AnError, http.StatusInternalServerError, "internal_error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, payload := mapError(tc.err)
			assert.Equal(t, tc.status, status)
			assert.Equal(t, tc.kind, payload.Type)
		})
	}

	_, payload := mapError(assert.AnError)
	assert.NotContains(t, payload.Message, assert.AnError.Error())
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", bearerToken("Bearer abc"))
	assert.Equal(t, "abc", bearerToken("bearer   abc "))
	assert.Equal(t, "", bearerToken("Basic abc"))
	assert.Equal(t, "", bearerToken("Bearer "))
	assert.Equal(t, "", bearerToken(""))
}

func TestParseOptionalTime(t *testing.T) {
	parsed, err := parseOptionalTime("", false)
	require.NoError(t, err)
	assert.Nil(t, parsed)

	parsed, err = parseOptionalTime("2025-05-10", true)
	require.NoError(t, err)
	assert.Equal(t, "2025-05-10T23:59:59.999999999Z", parsed.Format(time.RFC3339Nano))

	parsed, err = parseOptionalTime("2025-05-10T08:30:00Z", true)
	require.NoError(t, err)
	assert.Equal(t, 8, parsed.Hour())

	_, err = parseOptionalTime("10/05/2025", false)
	assert.ErrorIs(t, err, errInvalidTime)
}

func TestAuditLogsWithoutAuditService(t *testing.T) {
	ts := newTestServer(t)
	headers := bearer()
	headers[HeaderOrg] = "100"
	rec, _ := ts.do(t, http.MethodGet, "/api/audit-logs?order_id=abc", nil, headers)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
