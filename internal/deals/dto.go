package deals

import (
	"strings"
	"time"

	"github.com/angelmondragon/buzdealz-backend/pkg/db/models"
	"github.com/angelmondragon/buzdealz-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DealDTO is a catalog deal with its derived display fields.
type DealDTO struct {
	ID                 uuid.UUID        `json:"id"`
	Title              string           `json:"title"`
	Description        *string          `json:"description"`
	ImageURL           *string          `json:"imageUrl"`
	OriginalPrice      float64          `json:"originalPrice"`
	CurrentPrice       float64          `json:"currentPrice"`
	BestPrice          *float64         `json:"bestPrice"`
	BestAvailablePrice float64          `json:"bestAvailablePrice"`
	Retailer           string           `json:"retailer"`
	ProductURL         *string          `json:"productUrl"`
	Status             enums.DealStatus `json:"status"`
	ExpiresAt          *time.Time       `json:"expiresAt"`
	CreatedAt          time.Time        `json:"createdAt"`
	IsExpired          bool             `json:"isExpired"`
	IsDisabled         bool             `json:"isDisabled"`
	InWishlist         bool             `json:"inWishlist"`
	AlertEnabled       *bool            `json:"alertEnabled,omitempty"`
}

// BestAvailablePrice is the best known price when one exists, otherwise the current price.
func BestAvailablePrice(d *models.Deal) decimal.Decimal {
	if d.BestPrice.Valid {
		return d.BestPrice.Decimal
	}
	return d.CurrentPrice
}

// FromModel maps a stored deal and derives isExpired, isDisabled and bestAvailablePrice.
// Wishlist annotations are left at their zero values.
func FromModel(d *models.Deal) DealDTO {
	dto := DealDTO{
		ID:                 d.ID,
		Title:              d.Title,
		Description:        d.Description,
		ImageURL:           d.ImageURL,
		OriginalPrice:      d.OriginalPrice.InexactFloat64(),
		CurrentPrice:       d.CurrentPrice.InexactFloat64(),
		BestAvailablePrice: BestAvailablePrice(d).InexactFloat64(),
		Retailer:           d.Retailer,
		ProductURL:         d.ProductURL,
		Status:             d.Status,
		ExpiresAt:          d.ExpiresAt,
		CreatedAt:          d.CreatedAt,
		IsExpired:          d.Status == enums.DealStatusExpired,
		IsDisabled:         d.Status == enums.DealStatusDisabled,
	}
	if d.BestPrice.Valid {
		best := d.BestPrice.Decimal.InexactFloat64()
		dto.BestPrice = &best
	}
	return dto
}

// WithWishlist returns a copy annotated with the caller's wishlist state.
func (d DealDTO) WithWishlist(inWishlist, alertEnabled bool) DealDTO {
	d.InWishlist = inWishlist
	d.AlertEnabled = &alertEnabled
	return d
}

// CreateDealInput is used by the seed command to populate the catalog.
type CreateDealInput struct {
	Title         string
	Description   *string
	ImageURL      *string
	OriginalPrice decimal.Decimal
	CurrentPrice  decimal.Decimal
	BestPrice     decimal.NullDecimal
	Retailer      string
	ProductURL    *string
	Status        enums.DealStatus
	ExpiresAt     *time.Time
	CreatedAt     time.Time
}

func (in CreateDealInput) validate() map[string]string {
	details := map[string]string{}
	if strings.TrimSpace(in.Title) == "" {
		details["title"] = "is required"
	}
	if strings.TrimSpace(in.Retailer) == "" {
		details["retailer"] = "is required"
	}
	if in.OriginalPrice.IsNegative() {
		details["originalPrice"] = "must not be negative"
	}
	if in.CurrentPrice.IsNegative() {
		details["currentPrice"] = "must not be negative"
	}
	if in.BestPrice.Valid && in.BestPrice.Decimal.IsNegative() {
		details["bestPrice"] = "must not be negative"
	}
	if in.Status != "" && !in.Status.IsValid() {
		details["status"] = "is invalid"
	}
	return details
}

func (in CreateDealInput) toModel() *models.Deal {
	return &models.Deal{
		Title:         strings.TrimSpace(in.Title),
		Description:   in.Description,
		ImageURL:      in.ImageURL,
		OriginalPrice: in.OriginalPrice.Round(2),
		CurrentPrice:  in.CurrentPrice.Round(2),
		BestPrice:     in.BestPrice,
		Retailer:      strings.TrimSpace(in.Retailer),
		ProductURL:    in.ProductURL,
		Status:        in.Status,
		ExpiresAt:     in.ExpiresAt,
		CreatedAt:     in.CreatedAt,
	}
}
