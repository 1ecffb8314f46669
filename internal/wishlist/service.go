package wishlist

import (
	"context"
	"errors"

	"github.com/angelmondragon/buzdealz-backend/internal/analytics"
	"github.com/angelmondragon/buzdealz-backend/pkg/db"
	"github.com/angelmondragon/buzdealz-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/buzdealz-backend/pkg/errors"
	"github.com/angelmondragon/buzdealz-backend/pkg/metrics"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	dealNotFoundMessage     = "Deal not found"
	itemNotFoundMessage     = "Wishlist item not found"
	subscriptionRequiredMsg = "Subscription required to enable alerts"
)

// EventRecorder receives wishlist analytics. Implementations must not fail the caller.
type EventRecorder interface {
	Record(ctx context.Context, event analytics.Event)
}

// DealChecker reports whether a deal exists.
type DealChecker interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// ServiceParams groups dependencies for the wishlist service.
// Recorder and Metrics are optional.
type ServiceParams struct {
	WishlistRepo *Repository
	DealRepo     DealChecker
	Recorder     EventRecorder
	Metrics      *metrics.WishlistMetrics
}

// Service exposes business rules for wishlist management.
type Service interface {
	Add(ctx context.Context, caller Caller, input AddInput) (*AddResult, error)
	UpdateAlert(ctx context.Context, caller Caller, dealID uuid.UUID, enabled bool) (*EntryDTO, error)
	Remove(ctx context.Context, caller Caller, dealID uuid.UUID) error
	List(ctx context.Context, caller Caller) ([]ItemDTO, error)
}

type service struct {
	wishlistRepo *Repository
	dealRepo     DealChecker
	recorder     EventRecorder
	metrics      *metrics.WishlistMetrics
}

// NewService builds a wishlist service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.WishlistRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "wishlist repo is required")
	}
	if params.DealRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "deal repo is required")
	}
	return &service{
		wishlistRepo: params.WishlistRepo,
		dealRepo:     params.DealRepo,
		recorder:     params.Recorder,
		metrics:      params.Metrics,
	}, nil
}

// Add saves the deal for the caller. Repeating the call returns the stored
// entry untouched. Non-subscribers always get alertEnabled=false.
func (s *service) Add(ctx context.Context, caller Caller, input AddInput) (*AddResult, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	if input.DealID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Validation failed").
			WithDetails(map[string]string{"dealId": "is required"})
	}

	exists, err := s.dealRepo.Exists(ctx, input.DealID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load deal")
	}
	if !exists {
		s.metrics.Inc("add", metrics.OutcomeRejected)
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, dealNotFoundMessage)
	}

	alert := input.AlertEnabled && caller.IsSubscriber
	created, err := s.wishlistRepo.Insert(ctx, caller.UserID, input.DealID, alert)
	if err != nil {
		// the deal can disappear between the check and the insert
		if db.IsForeignKeyViolation(err) {
			s.metrics.Inc("add", metrics.OutcomeRejected)
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, dealNotFoundMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "insert wishlist item")
	}

	entry, err := s.wishlistRepo.FindEntry(ctx, caller.UserID, input.DealID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load wishlist item")
	}

	if created {
		s.metrics.Inc("add", metrics.OutcomeCreated)
		s.record(ctx, caller.UserID, input.DealID, enums.AnalyticsActionWishlistAdd)
	} else {
		s.metrics.Inc("add", metrics.OutcomeExisting)
	}

	return &AddResult{Entry: entryFromModel(entry), Created: created}, nil
}

// UpdateAlert toggles the alert flag. Enabling requires a subscription and is
// rejected before the store is touched.
func (s *service) UpdateAlert(ctx context.Context, caller Caller, dealID uuid.UUID, enabled bool) (*EntryDTO, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	if enabled && !caller.IsSubscriber {
		s.metrics.Inc("update_alert", metrics.OutcomeRejected)
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, subscriptionRequiredMsg)
	}

	entry, err := s.wishlistRepo.FindEntry(ctx, caller.UserID, dealID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.metrics.Inc("update_alert", metrics.OutcomeRejected)
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, itemNotFoundMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load wishlist item")
	}

	rows, err := s.wishlistRepo.UpdateAlert(ctx, caller.UserID, dealID, enabled)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update wishlist item")
	}
	if rows == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, itemNotFoundMessage)
	}

	s.metrics.Inc("update_alert", metrics.OutcomeUpdated)
	entry.AlertEnabled = enabled
	dto := entryFromModel(entry)
	return &dto, nil
}

// Remove deletes the caller's entry. A missing entry is NotFound and records nothing.
func (s *service) Remove(ctx context.Context, caller Caller, dealID uuid.UUID) error {
	if err := requireCaller(caller); err != nil {
		return err
	}
	rows, err := s.wishlistRepo.Delete(ctx, caller.UserID, dealID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete wishlist item")
	}
	if rows == 0 {
		s.metrics.Inc("remove", metrics.OutcomeRejected)
		return pkgerrors.New(pkgerrors.CodeNotFound, itemNotFoundMessage)
	}

	s.metrics.Inc("remove", metrics.OutcomeRemoved)
	s.record(ctx, caller.UserID, dealID, enums.AnalyticsActionWishlistRemove)
	return nil
}

func (s *service) List(ctx context.Context, caller Caller) ([]ItemDTO, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	rows, err := s.wishlistRepo.ListWithDeals(ctx, caller.UserID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list wishlist")
	}
	items := make([]ItemDTO, 0, len(rows))
	for i := range rows {
		items = append(items, itemFromModel(&rows[i]))
	}
	return items, nil
}

func (s *service) record(ctx context.Context, userID, dealID uuid.UUID, action enums.AnalyticsAction) {
	if s.recorder == nil {
		return
	}
	s.recorder.Record(ctx, analytics.Event{UserID: userID, DealID: dealID, Action: action})
}

func requireCaller(caller Caller) error {
	if caller.UserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "Authentication required")
	}
	return nil
}
