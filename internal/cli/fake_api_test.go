package cli

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/angelmondragon/buzdealz-backend/pkg/client"
	"github.com/google/uuid"
)

var (
	headphonesID = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	instantPotID = uuid.MustParse("22222222-2222-2222-2222-222222222222")
)

var fakeUsers = map[string]client.User{
	"user@example.com": {
		ID:    uuid.MustParse("33333333-3333-3333-3333-333333333333"),
		Email: "user@example.com",
		Name:  "Una User",
	},
	"subscriber@example.com": {
		ID:           uuid.MustParse("44444444-4444-4444-4444-444444444444"),
		Email:        "subscriber@example.com",
		Name:         "Sam Subscriber",
		IsSubscriber: true,
	},
}

func catalog() []client.Deal {
	best := 269.99
	url := "https://example.com/sony"
	return []client.Deal{
		{
			ID: headphonesID, Title: "Sony WH-1000XM5 Headphones", Retailer: "Amazon",
			OriginalPrice: 399.99, CurrentPrice: 279.99, BestPrice: &best, BestAvailablePrice: 269.99,
			ProductURL: &url, Status: "active",
		},
		{
			ID: instantPotID, Title: "Instant Pot Duo 7-in-1", Retailer: "Walmart",
			OriginalPrice: 99.99, CurrentPrice: 59.99, BestAvailablePrice: 59.99,
			Status: "expired", IsExpired: true,
		},
	}
}

// fakeAPI serves the subset of the deals API the CLI talks to. Tokens are
// "token:<email>".
type fakeAPI struct {
	mu       sync.Mutex
	saved    map[string]map[uuid.UUID]bool
	loggedIn map[string]bool
}

func newFakeAPI(t *testing.T) *httptest.Server {
	t.Helper()
	f := &fakeAPI{saved: map[string]map[uuid.UUID]bool{}, loggedIn: map[string]bool{}}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", f.login)
	mux.HandleFunc("POST /api/auth/logout", f.authed(func(w http.ResponseWriter, r *http.Request, u client.User) {
		delete(f.loggedIn, u.Email)
		reply(w, http.StatusOK, map[string]any{"success": true, "message": "Logged out"})
	}))
	mux.HandleFunc("GET /api/auth/me", f.authed(func(w http.ResponseWriter, r *http.Request, u client.User) {
		reply(w, http.StatusOK, map[string]any{"success": true, "data": u})
	}))
	mux.HandleFunc("GET /api/deals", f.listDeals)
	mux.HandleFunc("GET /api/deals/{id}", f.getDeal)
	mux.HandleFunc("GET /api/wishlist", f.authed(f.listWishlist))
	mux.HandleFunc("POST /api/wishlist", f.authed(f.addWishlist))
	mux.HandleFunc("PATCH /api/wishlist/{id}", f.authed(f.patchWishlist))
	mux.HandleFunc("DELETE /api/wishlist/{id}", f.authed(f.removeWishlist))

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func reply(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (f *fakeAPI) caller(r *http.Request) (client.User, bool) {
	email, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer token:")
	if !ok || !f.loggedIn[email] {
		return client.User{}, false
	}
	u, ok := fakeUsers[email]
	return u, ok
}

func (f *fakeAPI) authed(next func(http.ResponseWriter, *http.Request, client.User)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		u, ok := f.caller(r)
		if !ok {
			reply(w, http.StatusUnauthorized, map[string]any{"error": "Authentication required", "code": "UNAUTHORIZED"})
			return
		}
		next(w, r, u)
	}
}

func (f *fakeAPI) login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)
	u, ok := fakeUsers[body.Email]
	if !ok || body.Password != "password123" {
		reply(w, http.StatusUnauthorized, map[string]any{"error": "Invalid credentials", "code": "UNAUTHORIZED"})
		return
	}
	f.mu.Lock()
	f.loggedIn[u.Email] = true
	f.mu.Unlock()
	reply(w, http.StatusOK, map[string]any{"success": true, "token": "token:" + u.Email, "user": u})
}

func (f *fakeAPI) decorate(d client.Deal, u client.User, authed bool) client.Deal {
	if !authed {
		return d
	}
	alert, ok := f.saved[u.Email][d.ID]
	d.InWishlist = ok
	if ok {
		d.AlertEnabled = &alert
	}
	return d
}

func (f *fakeAPI) listDeals(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, authed := f.caller(r)
	list := catalog()
	for i := range list {
		list[i] = f.decorate(list[i], u, authed)
	}
	reply(w, http.StatusOK, map[string]any{"success": true, "data": list, "count": len(list)})
}

func (f *fakeAPI) getDeal(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, authed := f.caller(r)
	for _, d := range catalog() {
		if d.ID.String() == r.PathValue("id") {
			reply(w, http.StatusOK, map[string]any{"success": true, "data": f.decorate(d, u, authed)})
			return
		}
	}
	reply(w, http.StatusNotFound, map[string]any{"error": "Deal not found", "code": "NOT_FOUND"})
}

func (f *fakeAPI) listWishlist(w http.ResponseWriter, r *http.Request, u client.User) {
	items := []client.WishlistItem{}
	for _, d := range catalog() {
		if alert, ok := f.saved[u.Email][d.ID]; ok {
			items = append(items, client.WishlistItem{
				WishlistEntry: client.WishlistEntry{DealID: d.ID, AlertEnabled: alert},
				Deal:          f.decorate(d, u, true),
			})
		}
	}
	reply(w, http.StatusOK, map[string]any{"success": true, "data": items, "count": len(items)})
}

func (f *fakeAPI) addWishlist(w http.ResponseWriter, r *http.Request, u client.User) {
	var body struct {
		DealID uuid.UUID `json:"dealId"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)
	if f.saved[u.Email] == nil {
		f.saved[u.Email] = map[uuid.UUID]bool{}
	}
	if _, ok := f.saved[u.Email][body.DealID]; ok {
		reply(w, http.StatusOK, map[string]any{"success": true, "message": "Deal already in wishlist", "data": client.WishlistEntry{DealID: body.DealID}})
		return
	}
	f.saved[u.Email][body.DealID] = false
	reply(w, http.StatusCreated, map[string]any{"success": true, "message": "Deal added to wishlist", "data": client.WishlistEntry{DealID: body.DealID}})
}

func (f *fakeAPI) patchWishlist(w http.ResponseWriter, r *http.Request, u client.User) {
	id := uuid.MustParse(r.PathValue("id"))
	var body struct {
		AlertEnabled bool `json:"alertEnabled"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)
	if body.AlertEnabled && !u.IsSubscriber {
		reply(w, http.StatusForbidden, map[string]any{"error": "Subscription required to enable alerts", "code": "FORBIDDEN"})
		return
	}
	if _, ok := f.saved[u.Email][id]; !ok {
		reply(w, http.StatusNotFound, map[string]any{"error": "Wishlist item not found", "code": "NOT_FOUND"})
		return
	}
	f.saved[u.Email][id] = body.AlertEnabled
	reply(w, http.StatusOK, map[string]any{"success": true, "message": "Alert settings updated", "data": client.WishlistEntry{DealID: id, AlertEnabled: body.AlertEnabled}})
}

func (f *fakeAPI) removeWishlist(w http.ResponseWriter, r *http.Request, u client.User) {
	id := uuid.MustParse(r.PathValue("id"))
	if _, ok := f.saved[u.Email][id]; !ok {
		reply(w, http.StatusNotFound, map[string]any{"error": "Wishlist item not found", "code": "NOT_FOUND"})
		return
	}
	delete(f.saved[u.Email], id)
	reply(w, http.StatusOK, map[string]any{"success": true, "message": "Deal removed from wishlist"})
}
