package models

import (
	"time"

	"github.com/angelmondragon/buzdealz-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Deal is a catalog listing for a discounted product.
type Deal struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	Title         string              `gorm:"column:title;not null"`
	Description   *string             `gorm:"column:description"`
	ImageURL      *string             `gorm:"column:image_url"`
	OriginalPrice decimal.Decimal     `gorm:"column:original_price;type:numeric(12,2);not null"`
	CurrentPrice  decimal.Decimal     `gorm:"column:current_price;type:numeric(12,2);not null"`
	BestPrice     decimal.NullDecimal `gorm:"column:best_price;type:numeric(12,2)"`
	Retailer      string              `gorm:"column:retailer;not null"`
	ProductURL    *string             `gorm:"column:product_url"`
	Status        enums.DealStatus    `gorm:"column:status;type:text;not null;default:active"`
	ExpiresAt     *time.Time          `gorm:"column:expires_at"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
}

func (d *Deal) BeforeCreate(*gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	if d.Status == "" {
		d.Status = enums.DealStatusActive
	}
	return nil
}
