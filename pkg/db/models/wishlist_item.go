package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WishlistItem links a user to a saved deal. At most one row exists per (user, deal).
type WishlistItem struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	UserID       uuid.UUID `gorm:"column:user_id;type:uuid;not null;index:wishlist_items_user_id_idx;uniqueIndex:wishlist_items_user_deal_key"`
	DealID       uuid.UUID `gorm:"column:deal_id;type:uuid;not null;index:wishlist_items_deal_id_idx;uniqueIndex:wishlist_items_user_deal_key"`
	AlertEnabled bool      `gorm:"column:alert_enabled;not null;default:false"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`

	Deal *Deal `gorm:"foreignKey:DealID;references:ID"`
}

func (w *WishlistItem) BeforeCreate(*gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return nil
}
