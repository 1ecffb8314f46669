package client

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
)

var (
	ErrMutationInFlight     = errors.New("a wishlist change for this deal is already in progress")
	ErrSubscriptionRequired = errors.New("subscription required to enable alerts")
	ErrNotAuthenticated     = errors.New("login required")
)

const (
	msgAdded        = "Item added to wishlist"
	msgRemoved      = "Item removed from wishlist"
	msgAlertUpdated = "Alert settings updated"
	msgFailed       = "Something went wrong"

	msgLoginRequired        = "Please login to add items to your wishlist"
	msgSubscriptionRequired = "Subscription required to enable alerts"
)

// WishlistSync reads through the cache and applies wishlist mutations
// optimistically, rolling the cache back when the server rejects them.
type WishlistSync struct {
	api      *APIClient
	cache    *QueryCache
	notifier Notifier

	mu       sync.Mutex
	inflight map[uuid.UUID]struct{}
}

// NewWishlistSync wires the API client, cache and notifier. cache and
// notifier may be nil.
func NewWishlistSync(api *APIClient, cache *QueryCache, notifier Notifier) (*WishlistSync, error) {
	if api == nil {
		return nil, errors.New("api client is required")
	}
	if cache == nil {
		cache = NewQueryCache()
	}
	if notifier == nil {
		notifier = discardNotifier{}
	}
	return &WishlistSync{
		api:      api,
		cache:    cache,
		notifier: notifier,
		inflight: map[uuid.UUID]struct{}{},
	}, nil
}

func (s *WishlistSync) Cache() *QueryCache {
	return s.cache
}

func (s *WishlistSync) Deals(ctx context.Context) ([]Deal, error) {
	v, err := s.cache.Fetch(ctx, KeyDeals, func(ctx context.Context) (any, error) {
		return s.api.ListDeals(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.([]Deal), nil
}

func (s *WishlistSync) Deal(ctx context.Context, id uuid.UUID) (Deal, error) {
	v, err := s.cache.Fetch(ctx, DealKey(id), func(ctx context.Context) (any, error) {
		d, err := s.api.GetDeal(ctx, id)
		if err != nil {
			return nil, err
		}
		return *d, nil
	})
	if err != nil {
		return Deal{}, err
	}
	return v.(Deal), nil
}

func (s *WishlistSync) Wishlist(ctx context.Context) ([]WishlistItem, error) {
	v, err := s.cache.Fetch(ctx, KeyWishlist, func(ctx context.Context) (any, error) {
		return s.api.ListWishlist(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.([]WishlistItem), nil
}

// Toggle adds or removes the deal. The deal entry and the deal's element of
// the deal list are updated before the request and restored if it fails.
func (s *WishlistSync) Toggle(ctx context.Context, dealID uuid.UUID, add bool) error {
	if !s.api.Session().Authenticated() {
		s.notifier.Error(msgLoginRequired, ErrNotAuthenticated)
		return ErrNotAuthenticated
	}
	release, err := s.acquire(dealID)
	if err != nil {
		return err
	}
	defer release()

	dealKey := DealKey(dealID)
	s.cache.Cancel(dealKey, KeyDeals)

	applied := map[string]uint64{}
	tx := Capture(s.cache.Snapshot(dealKey, KeyDeals), func(snap Snapshot) {
		s.revertToggle(snap, applied, dealID)
	})
	tx.Apply(func(Snapshot) {
		mark := func(d Deal) Deal {
			d.InWishlist = add
			if !add {
				off := false
				d.AlertEnabled = &off
			}
			return d
		}
		if gen, ok := s.cache.update(dealKey, func(v any) any {
			if d, ok := v.(Deal); ok {
				return mark(d)
			}
			return v
		}); ok {
			applied[dealKey] = gen
		}
		if gen, ok := s.cache.update(KeyDeals, func(v any) any {
			return replaceDeal(v, dealID, mark)
		}); ok {
			applied[KeyDeals] = gen
		}
	})

	if add {
		_, _, err = s.api.AddToWishlist(ctx, dealID, false)
	} else {
		err = s.api.RemoveFromWishlist(ctx, dealID)
	}
	if err != nil {
		tx.Revert()
		s.notifier.Error(msgFailed, err)
		return err
	}

	tx.Commit()
	s.cache.MarkStale(KeyWishlist)
	if add {
		s.notifier.Success(msgAdded)
	} else {
		s.notifier.Success(msgRemoved)
	}
	return nil
}

// SetAlert changes the alert flag. Enabling requires a subscriber session
// and is refused locally otherwise.
func (s *WishlistSync) SetAlert(ctx context.Context, dealID uuid.UUID, enabled bool) error {
	session := s.api.Session()
	if !session.Authenticated() {
		s.notifier.Error(msgLoginRequired, ErrNotAuthenticated)
		return ErrNotAuthenticated
	}
	if enabled && !session.IsSubscriber() {
		s.notifier.Error(msgSubscriptionRequired, ErrSubscriptionRequired)
		return ErrSubscriptionRequired
	}
	release, err := s.acquire(dealID)
	if err != nil {
		return err
	}
	defer release()

	key := DealKey(dealID)
	s.cache.Cancel(key)

	applied := map[string]uint64{}
	tx := Capture(s.cache.Snapshot(key), func(snap Snapshot) {
		s.cache.RestoreUnchanged(snap, applied)
	})
	tx.Apply(func(Snapshot) {
		if gen, ok := s.cache.update(key, func(v any) any {
			d, ok := v.(Deal)
			if !ok {
				return v
			}
			flag := enabled
			d.AlertEnabled = &flag
			return d
		}); ok {
			applied[key] = gen
		}
	})

	if _, err := s.api.UpdateAlert(ctx, dealID, enabled); err != nil {
		tx.Revert()
		s.notifier.Error(msgFailed, err)
		return err
	}

	tx.Commit()
	s.cache.MarkStale(KeyWishlist)
	s.notifier.Success(msgAlertUpdated)
	return nil
}

// revertToggle undoes a failed toggle. Entries nobody wrote since the
// optimistic update get their snapshot back. A deal list that moved on
// only gets this deal's element back, so changes to other deals survive.
func (s *WishlistSync) revertToggle(snap Snapshot, applied map[string]uint64, dealID uuid.UUID) {
	for _, key := range s.cache.RestoreUnchanged(snap, applied) {
		if key != KeyDeals || snap[KeyDeals] == nil {
			continue
		}
		prev, ok := findDeal(snap[KeyDeals].Value, dealID)
		if !ok {
			continue
		}
		s.cache.Update(KeyDeals, func(v any) any {
			return replaceDeal(v, dealID, func(Deal) Deal { return prev })
		})
	}
}

func replaceDeal(v any, id uuid.UUID, fn func(Deal) Deal) any {
	list, ok := v.([]Deal)
	if !ok {
		return v
	}
	next := make([]Deal, len(list))
	for i, d := range list {
		if d.ID == id {
			d = fn(d)
		}
		next[i] = d
	}
	return next
}

func findDeal(v any, id uuid.UUID) (Deal, bool) {
	list, _ := v.([]Deal)
	for _, d := range list {
		if d.ID == id {
			return d, true
		}
	}
	return Deal{}, false
}

func (s *WishlistSync) acquire(dealID uuid.UUID) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inflight[dealID]; busy {
		return nil, ErrMutationInFlight
	}
	s.inflight[dealID] = struct{}{}
	return func() {
		s.mu.Lock()
		delete(s.inflight, dealID)
		s.mu.Unlock()
	}, nil
}
