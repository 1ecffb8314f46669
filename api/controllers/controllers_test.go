package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/buzdealz-backend/api/middleware"
	"github.com/angelmondragon/buzdealz-backend/internal/auth"
	"github.com/angelmondragon/buzdealz-backend/internal/deals"
	"github.com/angelmondragon/buzdealz-backend/internal/users"
	"github.com/angelmondragon/buzdealz-backend/internal/wishlist"
	"github.com/angelmondragon/buzdealz-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/buzdealz-backend/pkg/errors"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Count   *int            `json:"count"`
	Message string          `json:"message"`
	Token   string          `json:"token"`
	Error   string          `json:"error"`
	Code    string          `json:"code"`
	Details map[string]any  `json:"details"`
}

func decode(t *testing.T, resp *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &env), resp.Body.String())
	return env
}

func withIdentity(req *http.Request, id *middleware.Identity) *http.Request {
	return req.WithContext(middleware.WithIdentity(req.Context(), id))
}

func serveRoute(method, pattern, target string, body []byte, identity *middleware.Identity, h http.HandlerFunc) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.MethodFunc(method, pattern, h)

	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if identity != nil {
		req = withIdentity(req, identity)
	}
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

// auth

type stubAuthService struct {
	resp      *auth.AuthResponse
	user      *users.UserDTO
	err       error
	loggedOut string
}

func (s *stubAuthService) Register(ctx context.Context, req auth.RegisterRequest) (*auth.AuthResponse, error) {
	return s.resp, s.err
}

func (s *stubAuthService) Login(ctx context.Context, req auth.LoginRequest) (*auth.AuthResponse, error) {
	return s.resp, s.err
}

func (s *stubAuthService) Me(ctx context.Context, userID uuid.UUID) (*users.UserDTO, error) {
	return s.user, s.err
}

func (s *stubAuthService) Logout(ctx context.Context, tokenID string, expiresAt time.Time) error {
	s.loggedOut = tokenID
	return s.err
}

func TestAuthRegisterCreated(t *testing.T) {
	user := &users.UserDTO{ID: uuid.New(), Email: "new@example.com", Name: "New"}
	svc := &stubAuthService{resp: &auth.AuthResponse{Token: "tok", User: user}}

	resp := serveRoute(http.MethodPost, "/api/auth/register", "/api/auth/register",
		[]byte(`{"email":"new@example.com","name":"New","password":"secret1"}`), nil, AuthRegister(svc, nil))

	require.Equal(t, http.StatusCreated, resp.Code)
	env := decode(t, resp)
	require.True(t, env.Success)
	require.Equal(t, "tok", env.Token)
}

func TestAuthRegisterValidationDetails(t *testing.T) {
	svc := &stubAuthService{}
	resp := serveRoute(http.MethodPost, "/api/auth/register", "/api/auth/register",
		[]byte(`{"email":"nope","name":"","password":"123"}`), nil, AuthRegister(svc, nil))

	require.Equal(t, http.StatusBadRequest, resp.Code)
	env := decode(t, resp)
	require.Equal(t, "Validation failed", env.Error)
	require.Contains(t, env.Details, "email")
	require.Contains(t, env.Details, "password")
}

func TestAuthRegisterConflict(t *testing.T) {
	svc := &stubAuthService{err: pkgerrors.New(pkgerrors.CodeConflict, "Email already registered")}
	resp := serveRoute(http.MethodPost, "/api/auth/register", "/api/auth/register",
		[]byte(`{"email":"dup@example.com","name":"Dup","password":"secret1"}`), nil, AuthRegister(svc, nil))

	require.Equal(t, http.StatusConflict, resp.Code)
	require.Equal(t, "Email already registered", decode(t, resp).Error)
}

func TestAuthLoginUnauthorized(t *testing.T) {
	svc := &stubAuthService{err: pkgerrors.New(pkgerrors.CodeUnauthorized, "Invalid credentials")}
	resp := serveRoute(http.MethodPost, "/api/auth/login", "/api/auth/login",
		[]byte(`{"email":"a@example.com","password":"wrong"}`), nil, AuthLogin(svc, nil))

	require.Equal(t, http.StatusUnauthorized, resp.Code)
	require.Equal(t, "Invalid credentials", decode(t, resp).Error)
}

func TestAuthMeAndLogout(t *testing.T) {
	id := uuid.New()
	svc := &stubAuthService{user: &users.UserDTO{ID: id, Email: "me@example.com"}}
	identity := &middleware.Identity{UserID: id, TokenID: "jti-1", ExpiresAt: time.Now().Add(time.Hour)}

	resp := serveRoute(http.MethodGet, "/api/auth/me", "/api/auth/me", nil, identity, AuthMe(svc, nil))
	require.Equal(t, http.StatusOK, resp.Code)

	resp = serveRoute(http.MethodPost, "/api/auth/logout", "/api/auth/logout", nil, identity, AuthLogout(svc, nil))
	require.Equal(t, http.StatusOK, resp.Code)
	require.Equal(t, "jti-1", svc.loggedOut)

	resp = serveRoute(http.MethodGet, "/api/auth/me", "/api/auth/me", nil, nil, AuthMe(svc, nil))
	require.Equal(t, http.StatusUnauthorized, resp.Code)
}

// deals

type stubDealService struct {
	list   []deals.DealDTO
	caller *uuid.UUID
	err    error
}

func (s *stubDealService) List(ctx context.Context, caller *uuid.UUID) ([]deals.DealDTO, error) {
	s.caller = caller
	return s.list, s.err
}

func (s *stubDealService) Get(ctx context.Context, id uuid.UUID, caller *uuid.UUID) (*deals.DealDTO, error) {
	s.caller = caller
	for i := range s.list {
		if s.list[i].ID == id {
			return &s.list[i], nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Deal not found")
}

func (s *stubDealService) Create(ctx context.Context, input deals.CreateDealInput) (*deals.DealDTO, error) {
	return nil, errors.New("not used")
}

func (s *stubDealService) ReplaceCatalog(ctx context.Context, inputs []deals.CreateDealInput) ([]deals.DealDTO, error) {
	return nil, errors.New("not used")
}

func TestDealsListCountAndCaller(t *testing.T) {
	svc := &stubDealService{list: []deals.DealDTO{{ID: uuid.New()}, {ID: uuid.New()}}}

	resp := serveRoute(http.MethodGet, "/api/deals", "/api/deals", nil, nil, DealsList(svc, nil))
	require.Equal(t, http.StatusOK, resp.Code)
	env := decode(t, resp)
	require.NotNil(t, env.Count)
	require.Equal(t, 2, *env.Count)
	require.Nil(t, svc.caller)

	id := uuid.New()
	resp = serveRoute(http.MethodGet, "/api/deals", "/api/deals", nil, &middleware.Identity{UserID: id}, DealsList(svc, nil))
	require.Equal(t, http.StatusOK, resp.Code)
	require.NotNil(t, svc.caller)
	require.Equal(t, id, *svc.caller)
}

func TestDealsGet(t *testing.T) {
	known := uuid.New()
	svc := &stubDealService{list: []deals.DealDTO{{ID: known, Title: "Headphones"}}}
	h := DealsGet(svc, nil)

	resp := serveRoute(http.MethodGet, "/api/deals/{id}", "/api/deals/"+known.String(), nil, nil, h)
	require.Equal(t, http.StatusOK, resp.Code)

	resp = serveRoute(http.MethodGet, "/api/deals/{id}", "/api/deals/"+uuid.NewString(), nil, nil, h)
	require.Equal(t, http.StatusNotFound, resp.Code)
	require.Equal(t, "Deal not found", decode(t, resp).Error)

	resp = serveRoute(http.MethodGet, "/api/deals/{id}", "/api/deals/not-a-uuid", nil, nil, h)
	require.Equal(t, http.StatusBadRequest, resp.Code)
	require.Equal(t, "Invalid deal ID", decode(t, resp).Error)
}

// wishlist

type stubWishlistService struct {
	addResult *wishlist.AddResult
	err       error
	caller    wishlist.Caller
	alert     *bool
	removed   uuid.UUID
}

func (s *stubWishlistService) Add(ctx context.Context, caller wishlist.Caller, input wishlist.AddInput) (*wishlist.AddResult, error) {
	s.caller = caller
	return s.addResult, s.err
}

func (s *stubWishlistService) UpdateAlert(ctx context.Context, caller wishlist.Caller, dealID uuid.UUID, enabled bool) (*wishlist.EntryDTO, error) {
	s.caller = caller
	s.alert = &enabled
	if s.err != nil {
		return nil, s.err
	}
	return &wishlist.EntryDTO{DealID: dealID, AlertEnabled: enabled}, nil
}

func (s *stubWishlistService) Remove(ctx context.Context, caller wishlist.Caller, dealID uuid.UUID) error {
	s.caller = caller
	s.removed = dealID
	return s.err
}

func (s *stubWishlistService) List(ctx context.Context, caller wishlist.Caller) ([]wishlist.ItemDTO, error) {
	s.caller = caller
	return []wishlist.ItemDTO{}, s.err
}

func TestWishlistAddStatusReflectsCreation(t *testing.T) {
	dealID := uuid.New()
	identity := &middleware.Identity{UserID: uuid.New(), IsSubscriber: true}
	body := []byte(`{"dealId":"` + dealID.String() + `","alertEnabled":true}`)

	svc := &stubWishlistService{addResult: &wishlist.AddResult{Entry: wishlist.EntryDTO{DealID: dealID}, Created: true}}
	resp := serveRoute(http.MethodPost, "/api/wishlist", "/api/wishlist", body, identity, WishlistAdd(svc, nil))
	require.Equal(t, http.StatusCreated, resp.Code)
	require.Equal(t, "Deal added to wishlist", decode(t, resp).Message)
	require.True(t, svc.caller.IsSubscriber)

	svc.addResult.Created = false
	resp = serveRoute(http.MethodPost, "/api/wishlist", "/api/wishlist", body, identity, WishlistAdd(svc, nil))
	require.Equal(t, http.StatusOK, resp.Code)
	require.Equal(t, "Deal already in wishlist", decode(t, resp).Message)
}

func TestWishlistAddRejectsMissingDeal(t *testing.T) {
	identity := &middleware.Identity{UserID: uuid.New()}
	svc := &stubWishlistService{}

	resp := serveRoute(http.MethodPost, "/api/wishlist", "/api/wishlist", []byte(`{}`), identity, WishlistAdd(svc, nil))
	require.Equal(t, http.StatusBadRequest, resp.Code)
	require.Contains(t, decode(t, resp).Details, "dealId")
}

func TestWishlistRequiresIdentity(t *testing.T) {
	svc := &stubWishlistService{}
	resp := serveRoute(http.MethodGet, "/api/wishlist", "/api/wishlist", nil, nil, WishlistList(svc, nil))
	require.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestWishlistUpdateAlert(t *testing.T) {
	dealID := uuid.New()
	identity := &middleware.Identity{UserID: uuid.New()}

	svc := &stubWishlistService{err: pkgerrors.New(pkgerrors.CodeForbidden, "Subscription required to enable alerts")}
	resp := serveRoute(http.MethodPatch, "/api/wishlist/{dealId}", "/api/wishlist/"+dealID.String(),
		[]byte(`{"alertEnabled":true}`), identity, WishlistUpdateAlert(svc, nil))
	require.Equal(t, http.StatusForbidden, resp.Code)
	require.Equal(t, "Subscription required to enable alerts", decode(t, resp).Error)

	svc = &stubWishlistService{}
	resp = serveRoute(http.MethodPatch, "/api/wishlist/{dealId}", "/api/wishlist/"+dealID.String(),
		[]byte(`{}`), identity, WishlistUpdateAlert(svc, nil))
	require.Equal(t, http.StatusBadRequest, resp.Code)
	require.Nil(t, svc.alert)

	resp = serveRoute(http.MethodPatch, "/api/wishlist/{dealId}", "/api/wishlist/"+dealID.String(),
		[]byte(`{"alertEnabled":false}`), identity, WishlistUpdateAlert(svc, nil))
	require.Equal(t, http.StatusOK, resp.Code)
	require.Equal(t, "Alert settings updated", decode(t, resp).Message)
	require.NotNil(t, svc.alert)
	require.False(t, *svc.alert)
}

func TestWishlistRemove(t *testing.T) {
	dealID := uuid.New()
	identity := &middleware.Identity{UserID: uuid.New()}

	svc := &stubWishlistService{}
	resp := serveRoute(http.MethodDelete, "/api/wishlist/{dealId}", "/api/wishlist/"+dealID.String(), nil, identity, WishlistRemove(svc, nil))
	require.Equal(t, http.StatusOK, resp.Code)
	require.Equal(t, dealID, svc.removed)

	svc = &stubWishlistService{err: pkgerrors.New(pkgerrors.CodeNotFound, "Wishlist item not found")}
	resp = serveRoute(http.MethodDelete, "/api/wishlist/{dealId}", "/api/wishlist/"+dealID.String(), nil, identity, WishlistRemove(svc, nil))
	require.Equal(t, http.StatusNotFound, resp.Code)
	require.Equal(t, "Wishlist item not found", decode(t, resp).Error)
}

// health

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

func TestHealthReady(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: "dev"}}

	resp := serveRoute(http.MethodGet, "/health/ready", "/health/ready", nil, nil,
		HealthReady(cfg, nil, map[string]Pinger{"database": stubPinger{}, "redis": nil}))
	require.Equal(t, http.StatusOK, resp.Code)

	resp = serveRoute(http.MethodGet, "/health/ready", "/health/ready", nil, nil,
		HealthReady(cfg, nil, map[string]Pinger{"database": stubPinger{err: errors.New("down")}}))
	require.Equal(t, http.StatusServiceUnavailable, resp.Code)
}
