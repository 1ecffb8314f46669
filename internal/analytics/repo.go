package analytics

import (
	"context"

	"github.com/angelmondragon/buzdealz-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository appends analytics events. Rows are never read back by the API.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Insert(ctx context.Context, event *models.AnalyticsEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}
