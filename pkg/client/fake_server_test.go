package client

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
)

// fakeAPI is a minimal in-memory stand-in for the deals API.
type fakeAPI struct {
	t *testing.T

	mu         sync.Mutex
	subscriber bool
	deals      []Deal
	wishlist   map[uuid.UUID]bool
	calls      map[string]int
	failWrites int
	failReads  int
	block      chan struct{}

	// holdDeal waits on hold before adding that deal; failDeal rejects it.
	holdDeal uuid.UUID
	hold     chan struct{}
	failDeal uuid.UUID
}

func newFakeAPI(t *testing.T) (*fakeAPI, *httptest.Server) {
	t.Helper()
	f := &fakeAPI{
		t:        t,
		wishlist: map[uuid.UUID]bool{},
		calls:    map[string]int{},
		deals: []Deal{
			{ID: uuid.New(), Title: "Headphones", CurrentPrice: 99, Status: "active"},
			{ID: uuid.New(), Title: "Kettle", CurrentPrice: 40, Status: "active"},
		},
	}
	srv := httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(srv.Close)
	return f, srv
}

func (f *fakeAPI) count(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[key]
}

func (f *fakeAPI) serve(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api")
	key := r.Method + " " + path
	if strings.HasPrefix(path, "/wishlist/") {
		key = r.Method + " /wishlist/{id}"
	}
	if strings.HasPrefix(path, "/deals/") {
		key = r.Method + " /deals/{id}"
	}

	f.mu.Lock()
	f.calls[key]++
	block := f.block
	f.mu.Unlock()

	if r.Method != http.MethodGet && block != nil {
		<-block
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if r.Method == http.MethodGet && f.failReads > 0 {
		f.failReads--
		writeFake(w, http.StatusInternalServerError, map[string]any{"error": "Internal server error", "code": "INTERNAL_ERROR"})
		return
	}
	if r.Method != http.MethodGet && !strings.HasPrefix(path, "/auth/") && f.failWrites > 0 {
		f.failWrites--
		writeFake(w, http.StatusInternalServerError, map[string]any{"error": "Internal server error", "code": "INTERNAL_ERROR"})
		return
	}

	authed := strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ")

	switch {
	case key == "POST /auth/login":
		var body authPayload
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.Password != "password123" {
			writeFake(w, http.StatusUnauthorized, map[string]any{"error": "Invalid credentials", "code": "UNAUTHORIZED"})
			return
		}
		writeFake(w, http.StatusOK, map[string]any{
			"success": true,
			"token":   "token-for-" + body.Email,
			"user":    User{ID: uuid.New(), Email: body.Email, Name: "Tester", IsSubscriber: f.subscriber},
		})
	case key == "POST /auth/logout":
		writeFake(w, http.StatusOK, map[string]any{"success": true, "message": "Logged out"})
	case key == "GET /deals":
		list := make([]Deal, len(f.deals))
		for i, d := range f.deals {
			_, saved := f.wishlist[d.ID]
			d.InWishlist = authed && saved
			list[i] = d
		}
		writeFake(w, http.StatusOK, map[string]any{"success": true, "data": list, "count": len(list)})
	case key == "GET /deals/{id}":
		id := uuid.MustParse(strings.TrimPrefix(path, "/deals/"))
		for _, d := range f.deals {
			if d.ID == id {
				alert, saved := f.wishlist[d.ID]
				d.InWishlist = authed && saved
				enabled := authed && saved && alert
				d.AlertEnabled = &enabled
				writeFake(w, http.StatusOK, map[string]any{"success": true, "data": d})
				return
			}
		}
		writeFake(w, http.StatusNotFound, map[string]any{"error": "Deal not found", "code": "NOT_FOUND"})
	case key == "GET /wishlist":
		items := []WishlistItem{}
		for _, d := range f.deals {
			if alert, ok := f.wishlist[d.ID]; ok {
				items = append(items, WishlistItem{WishlistEntry: WishlistEntry{ID: uuid.New(), DealID: d.ID, AlertEnabled: alert, CreatedAt: time.Now()}, Deal: d})
			}
		}
		writeFake(w, http.StatusOK, map[string]any{"success": true, "data": items, "count": len(items)})
	case key == "POST /wishlist":
		var body struct {
			DealID uuid.UUID `json:"dealId"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.DealID == f.holdDeal && f.hold != nil {
			hold := f.hold
			f.mu.Unlock()
			<-hold
			f.mu.Lock()
		}
		if body.DealID == f.failDeal {
			writeFake(w, http.StatusInternalServerError, map[string]any{"error": "Internal server error", "code": "INTERNAL_ERROR"})
			return
		}
		entry := WishlistEntry{ID: uuid.New(), DealID: body.DealID}
		if _, exists := f.wishlist[body.DealID]; exists {
			writeFake(w, http.StatusOK, map[string]any{"success": true, "message": "Deal already in wishlist", "data": entry})
			return
		}
		f.wishlist[body.DealID] = false
		writeFake(w, http.StatusCreated, map[string]any{"success": true, "message": "Deal added to wishlist", "data": entry})
	case key == "PATCH /wishlist/{id}":
		id := uuid.MustParse(strings.TrimPrefix(path, "/wishlist/"))
		var body struct {
			AlertEnabled bool `json:"alertEnabled"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		if _, ok := f.wishlist[id]; !ok {
			writeFake(w, http.StatusNotFound, map[string]any{"error": "Wishlist item not found", "code": "NOT_FOUND"})
			return
		}
		f.wishlist[id] = body.AlertEnabled
		writeFake(w, http.StatusOK, map[string]any{"success": true, "data": WishlistEntry{DealID: id, AlertEnabled: body.AlertEnabled}})
	case key == "DELETE /wishlist/{id}":
		id := uuid.MustParse(strings.TrimPrefix(path, "/wishlist/"))
		if _, ok := f.wishlist[id]; !ok {
			writeFake(w, http.StatusNotFound, map[string]any{"error": "Wishlist item not found", "code": "NOT_FOUND"})
			return
		}
		delete(f.wishlist, id)
		writeFake(w, http.StatusOK, map[string]any{"success": true, "message": "Deal removed from wishlist"})
	default:
		writeFake(w, http.StatusNotFound, map[string]any{"error": "not found"})
	}
}

func writeFake(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func newTestClient(t *testing.T, srv *httptest.Server) *APIClient {
	t.Helper()
	api, err := NewAPIClient(NewSession(nil), WithBaseURL(srv.URL+"/api"))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return api
}

func (f *fakeAPI) setFailures(reads, writes int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failReads, f.failWrites = reads, writes
}

func (f *fakeAPI) save(id uuid.UUID, alert bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.wishlist[id] = alert
}

func (f *fakeAPI) alertOf(id uuid.UUID) (bool, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	alert, ok := f.wishlist[id]
	return alert, ok
}
