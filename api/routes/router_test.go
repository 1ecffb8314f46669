package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/buzdealz-backend/internal/analytics"
	"github.com/angelmondragon/buzdealz-backend/internal/auth"
	"github.com/angelmondragon/buzdealz-backend/internal/deals"
	"github.com/angelmondragon/buzdealz-backend/internal/wishlist"
	"github.com/angelmondragon/buzdealz-backend/pkg/config"
	"github.com/angelmondragon/buzdealz-backend/pkg/db/dbtest"
	"github.com/angelmondragon/buzdealz-backend/pkg/enums"
	"github.com/angelmondragon/buzdealz-backend/pkg/logger"
	"github.com/angelmondragon/buzdealz-backend/pkg/metrics"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error { return nil }

type testServer struct {
	handler http.Handler
	deals   []deals.DealDTO
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	client := dbtest.OpenClient(t)
	cfg := &config.Config{
		App:      config.AppConfig{Env: "dev"},
		JWT:      config.JWTConfig{Secret: "router-secret", Issuer: "buzdealz", ExpirationMinutes: 60},
		Password: config.PasswordConfig{ArgonMemoryKB: 1024, ArgonTime: 1, ArgonParallelism: 1, ArgonSaltLen: 16, ArgonKeyLen: 32},
		Metrics:  config.MetricsConfig{Enabled: true, Path: "/metrics"},
	}
	logg := logger.Nop()
	reg := prometheus.NewRegistry()

	authSvc, err := auth.NewService(auth.ServiceParams{DB: client, JWTConfig: cfg.JWT, PasswordConfig: cfg.Password})
	require.NoError(t, err)

	wishlistRepo := wishlist.NewRepository(client.DB())
	dealRepo := deals.NewRepository(client.DB())
	dealSvc, err := deals.NewService(deals.ServiceParams{DB: client, Wishlist: wishlistRepo})
	require.NoError(t, err)

	recorder, err := analytics.NewRecorder(analytics.RecorderParams{Store: analytics.NewRepository(client.DB()), Logger: logg})
	require.NoError(t, err)
	wishlistSvc, err := wishlist.NewService(wishlist.ServiceParams{
		WishlistRepo: wishlistRepo,
		DealRepo:     dealRepo,
		Recorder:     recorder,
		Metrics:      metrics.NewWishlistMetrics(reg),
	})
	require.NoError(t, err)

	expires := time.Now().Add(24 * time.Hour)
	catalog, err := dealSvc.ReplaceCatalog(context.Background(), []deals.CreateDealInput{
		{
			Title:         "Headphones",
			Retailer:      "Acme",
			OriginalPrice: decimal.RequireFromString("199.00"),
			CurrentPrice:  decimal.RequireFromString("99.00"),
			BestPrice:     decimal.NewNullDecimal(decimal.RequireFromString("79.00")),
			Status:        enums.DealStatusActive,
			ExpiresAt:     &expires,
		},
		{
			Title:         "Kettle",
			Retailer:      "Acme",
			OriginalPrice: decimal.RequireFromString("50.00"),
			CurrentPrice:  decimal.RequireFromString("40.00"),
		},
	})
	require.NoError(t, err)

	handler := NewRouter(Dependencies{
		Config:          cfg,
		Logger:          logg,
		DB:              stubPinger{},
		Gatherer:        reg,
		HTTPMetrics:     metrics.NewHTTPMetrics(reg),
		AuthService:     authSvc,
		DealService:     dealSvc,
		WishlistService: wishlistSvc,
	})
	return &testServer{handler: handler, deals: catalog}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	s.handler.ServeHTTP(resp, req)

	payload := map[string]any{}
	if resp.Body.Len() > 0 && resp.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &payload), resp.Body.String())
	}
	return resp, payload
}

func TestHealthRoutes(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := srv.do(t, http.MethodGet, "/health/live", "", nil)
	require.Equal(t, http.StatusOK, resp.Code)

	resp, _ = srv.do(t, http.MethodGet, "/health/ready", "", nil)
	require.Equal(t, http.StatusOK, resp.Code)
}

func TestWishlistRequiresToken(t *testing.T) {
	srv := newTestServer(t)

	resp, payload := srv.do(t, http.MethodGet, "/api/wishlist", "", nil)
	require.Equal(t, http.StatusUnauthorized, resp.Code)
	require.Equal(t, "Authentication required", payload["error"])

	resp, payload = srv.do(t, http.MethodGet, "/api/wishlist", "garbage", nil)
	require.Equal(t, http.StatusUnauthorized, resp.Code)
	require.Equal(t, "Invalid or expired token", payload["error"])
}

func TestDealsAnonymousWithBadToken(t *testing.T) {
	srv := newTestServer(t)

	resp, payload := srv.do(t, http.MethodGet, "/api/deals", "garbage", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	require.Equal(t, float64(2), payload["count"])
	for _, raw := range payload["data"].([]any) {
		require.Equal(t, false, raw.(map[string]any)["inWishlist"])
	}
}

func TestEndToEndWishlistFlow(t *testing.T) {
	srv := newTestServer(t)
	dealID := srv.deals[0].ID.String()

	resp, payload := srv.do(t, http.MethodPost, "/api/auth/register", "", map[string]any{
		"email": "Flow@Example.com", "name": "Flow", "password": "secret1",
	})
	require.Equal(t, http.StatusCreated, resp.Code)
	token := payload["token"].(string)
	require.NotEmpty(t, token)

	resp, payload = srv.do(t, http.MethodPost, "/api/auth/register", "", map[string]any{
		"email": "flow@example.com", "name": "Flow", "password": "secret1",
	})
	require.Equal(t, http.StatusConflict, resp.Code)
	require.Equal(t, "Email already registered", payload["error"])

	resp, payload = srv.do(t, http.MethodPost, "/api/wishlist", token, map[string]any{"dealId": dealID, "alertEnabled": true})
	require.Equal(t, http.StatusCreated, resp.Code)
	require.Equal(t, false, payload["data"].(map[string]any)["alertEnabled"], "non-subscriber alerts are downgraded")

	resp, _ = srv.do(t, http.MethodPost, "/api/wishlist", token, map[string]any{"dealId": dealID})
	require.Equal(t, http.StatusOK, resp.Code)

	resp, payload = srv.do(t, http.MethodPatch, "/api/wishlist/"+dealID, token, map[string]any{"alertEnabled": true})
	require.Equal(t, http.StatusForbidden, resp.Code)
	require.Equal(t, "Subscription required to enable alerts", payload["error"])

	resp, payload = srv.do(t, http.MethodGet, "/api/deals/"+dealID, token, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	require.Equal(t, true, payload["data"].(map[string]any)["inWishlist"])

	resp, payload = srv.do(t, http.MethodGet, "/api/wishlist", token, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	require.Equal(t, float64(1), payload["count"])

	resp, _ = srv.do(t, http.MethodDelete, "/api/wishlist/"+dealID, token, nil)
	require.Equal(t, http.StatusOK, resp.Code)

	resp, payload = srv.do(t, http.MethodDelete, "/api/wishlist/"+dealID, token, nil)
	require.Equal(t, http.StatusNotFound, resp.Code)
	require.Equal(t, "Wishlist item not found", payload["error"])

	resp, _ = srv.do(t, http.MethodGet, "/api/deals/"+uuid.NewString(), token, nil)
	require.Equal(t, http.StatusNotFound, resp.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t)
	srv.do(t, http.MethodGet, "/api/deals", "", nil)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp := httptest.NewRecorder()
	srv.handler.ServeHTTP(resp, req)
	require.Equal(t, http.StatusOK, resp.Code)
	require.Contains(t, resp.Body.String(), "buzdealz_http_requests_total")
}
