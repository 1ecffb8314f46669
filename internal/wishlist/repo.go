package wishlist

import (
	"context"
	"time"

	"github.com/angelmondragon/buzdealz-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository encapsulates wishlist persistence. Every query is scoped by user id.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a wishlist repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Insert adds the (user, deal) pair unless it already exists. created is
// false when the unique constraint absorbed the insert.
func (r *Repository) Insert(ctx context.Context, userID, dealID uuid.UUID, alertEnabled bool) (bool, error) {
	if userID == uuid.Nil || dealID == uuid.Nil {
		return false, gorm.ErrInvalidValue
	}
	now := time.Now().UTC()
	res := r.db.WithContext(ctx).Exec(
		`INSERT INTO wishlist_items (id, user_id, deal_id, alert_enabled, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT (user_id, deal_id) DO NOTHING`,
		uuid.New(), userID, dealID, alertEnabled, now, now,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// FindEntry loads the caller's entry for a deal.
func (r *Repository) FindEntry(ctx context.Context, userID, dealID uuid.UUID) (*models.WishlistItem, error) {
	var item models.WishlistItem
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND deal_id = ?", userID, dealID).
		First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// UpdateAlert sets the alert flag and returns the number of rows touched.
func (r *Repository) UpdateAlert(ctx context.Context, userID, dealID uuid.UUID, enabled bool) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.WishlistItem{}).
		Where("user_id = ? AND deal_id = ?", userID, dealID).
		Updates(map[string]any{
			"alert_enabled": enabled,
			"updated_at":    time.Now().UTC(),
		})
	return res.RowsAffected, res.Error
}

// Delete removes the caller's entry and returns the number of rows deleted.
func (r *Repository) Delete(ctx context.Context, userID, dealID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND deal_id = ?", userID, dealID).
		Delete(&models.WishlistItem{})
	return res.RowsAffected, res.Error
}

// ListDealIDs returns the ids of every deal the user saved.
func (r *Repository) ListDealIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&models.WishlistItem{}).
		Where("user_id = ?", userID).
		Pluck("deal_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// ListWithDeals returns the user's entries with their deals, oldest first.
func (r *Repository) ListWithDeals(ctx context.Context, userID uuid.UUID) ([]models.WishlistItem, error) {
	var items []models.WishlistItem
	if err := r.db.WithContext(ctx).
		Preload("Deal").
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
