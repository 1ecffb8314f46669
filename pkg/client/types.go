// Package client talks to the BuzDealz API and keeps a local, optimistically
// updated view of deals and the wishlist.
package client

import (
	"time"

	"github.com/google/uuid"
)

// User is the profile returned by login, registration and /auth/me.
type User struct {
	ID           uuid.UUID `json:"id" yaml:"id"`
	Email        string    `json:"email" yaml:"email"`
	Name         string    `json:"name" yaml:"name"`
	IsSubscriber bool      `json:"isSubscriber" yaml:"isSubscriber"`
}

// Deal mirrors the server's deal representation.
type Deal struct {
	ID                 uuid.UUID  `json:"id" yaml:"id"`
	Title              string     `json:"title" yaml:"title"`
	Description        *string    `json:"description,omitempty" yaml:"description,omitempty"`
	ImageURL           *string    `json:"imageUrl,omitempty" yaml:"imageUrl,omitempty"`
	OriginalPrice      float64    `json:"originalPrice" yaml:"originalPrice"`
	CurrentPrice       float64    `json:"currentPrice" yaml:"currentPrice"`
	BestPrice          *float64   `json:"bestPrice" yaml:"bestPrice"`
	BestAvailablePrice float64    `json:"bestAvailablePrice" yaml:"bestAvailablePrice"`
	Retailer           string     `json:"retailer" yaml:"retailer"`
	ProductURL         *string    `json:"productUrl,omitempty" yaml:"productUrl,omitempty"`
	Status             string     `json:"status" yaml:"status"`
	IsExpired          bool       `json:"isExpired" yaml:"isExpired"`
	IsDisabled         bool       `json:"isDisabled" yaml:"isDisabled"`
	ExpiresAt          *time.Time `json:"expiresAt,omitempty" yaml:"expiresAt,omitempty"`
	CreatedAt          time.Time  `json:"createdAt" yaml:"createdAt"`
	InWishlist         bool       `json:"inWishlist" yaml:"inWishlist"`
	AlertEnabled       *bool      `json:"alertEnabled,omitempty" yaml:"alertEnabled,omitempty"`
}

// AlertOn reports whether the deal carries an enabled alert flag.
func (d Deal) AlertOn() bool {
	return d.AlertEnabled != nil && *d.AlertEnabled
}

// WishlistEntry is a wishlist row without its deal.
type WishlistEntry struct {
	ID           uuid.UUID `json:"id" yaml:"id"`
	DealID       uuid.UUID `json:"dealId" yaml:"dealId"`
	AlertEnabled bool      `json:"alertEnabled" yaml:"alertEnabled"`
	CreatedAt    time.Time `json:"createdAt" yaml:"createdAt"`
}

// WishlistItem is a wishlist row joined with its deal.
type WishlistItem struct {
	WishlistEntry `yaml:",inline"`
	Deal          Deal `json:"deal" yaml:"deal"`
}
