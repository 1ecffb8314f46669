package models

import (
	"time"

	"github.com/angelmondragon/buzdealz-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AnalyticsEvent is an append-only record of a wishlist action.
type AnalyticsEvent struct {
	ID        uuid.UUID             `gorm:"column:id;type:uuid;primaryKey"`
	UserID    uuid.UUID             `gorm:"column:user_id;type:uuid;not null"`
	DealID    uuid.UUID             `gorm:"column:deal_id;type:uuid;not null"`
	Action    enums.AnalyticsAction `gorm:"column:action;type:text;not null"`
	CreatedAt time.Time             `gorm:"column:created_at;autoCreateTime"`
}

func (e *AnalyticsEvent) BeforeCreate(*gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
