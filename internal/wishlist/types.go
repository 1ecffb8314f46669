package wishlist

import (
	"time"

	"github.com/angelmondragon/buzdealz-backend/internal/deals"
	"github.com/angelmondragon/buzdealz-backend/pkg/db/models"
	"github.com/google/uuid"
)

// Caller is the verified identity a wishlist operation runs as.
type Caller struct {
	UserID       uuid.UUID
	IsSubscriber bool
}

// AddInput is the body of POST /wishlist.
type AddInput struct {
	DealID       uuid.UUID `json:"dealId" validate:"required"`
	AlertEnabled bool      `json:"alertEnabled"`
}

// UpdateAlertInput is the body of PATCH /wishlist/{dealId}.
type UpdateAlertInput struct {
	AlertEnabled *bool `json:"alertEnabled" validate:"required"`
}

// EntryDTO is a wishlist row without its deal.
type EntryDTO struct {
	ID           uuid.UUID `json:"id"`
	DealID       uuid.UUID `json:"dealId"`
	AlertEnabled bool      `json:"alertEnabled"`
	CreatedAt    time.Time `json:"createdAt"`
}

// ItemDTO is a wishlist row joined with its annotated deal.
type ItemDTO struct {
	EntryDTO
	Deal deals.DealDTO `json:"deal"`
}

// AddResult reports whether Add inserted a row or found an existing one.
type AddResult struct {
	Entry   EntryDTO
	Created bool
}

func entryFromModel(m *models.WishlistItem) EntryDTO {
	return EntryDTO{
		ID:           m.ID,
		DealID:       m.DealID,
		AlertEnabled: m.AlertEnabled,
		CreatedAt:    m.CreatedAt,
	}
}

func itemFromModel(m *models.WishlistItem) ItemDTO {
	item := ItemDTO{EntryDTO: entryFromModel(m)}
	if m.Deal != nil {
		item.Deal = deals.FromModel(m.Deal).WithWishlist(true, m.AlertEnabled)
	}
	return item
}
