package deals

import (
	"context"
	"errors"
	"time"

	"github.com/angelmondragon/buzdealz-backend/pkg/db"
	"github.com/angelmondragon/buzdealz-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/buzdealz-backend/pkg/errors"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const dealNotFoundMessage = "Deal not found"

// WishlistReader exposes the caller's wishlist state needed to annotate deals.
type WishlistReader interface {
	ListDealIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	FindEntry(ctx context.Context, userID, dealID uuid.UUID) (*models.WishlistItem, error)
}

// Service exposes read access to the catalog. Create and ReplaceCatalog are
// only used by the seed command.
type Service interface {
	List(ctx context.Context, caller *uuid.UUID) ([]DealDTO, error)
	Get(ctx context.Context, id uuid.UUID, caller *uuid.UUID) (*DealDTO, error)
	Create(ctx context.Context, input CreateDealInput) (*DealDTO, error)
	ReplaceCatalog(ctx context.Context, inputs []CreateDealInput) ([]DealDTO, error)
}

// ServiceParams groups dependencies for the deal service.
type ServiceParams struct {
	DB       *db.Client
	Wishlist WishlistReader
}

type service struct {
	db       *db.Client
	repo     *Repository
	wishlist WishlistReader
}

func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "database client is required")
	}
	if params.Wishlist == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "wishlist reader is required")
	}
	return &service{
		db:       params.DB,
		repo:     NewRepository(params.DB.DB()),
		wishlist: params.Wishlist,
	}, nil
}

// List loads the catalog and, for an authenticated caller, their wishlist ids in parallel.
func (s *service) List(ctx context.Context, caller *uuid.UUID) ([]DealDTO, error) {
	var (
		rows []models.Deal
		ids  []uuid.UUID
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rows, err = s.repo.List(gctx)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list deals")
		}
		return nil
	})
	if caller != nil {
		g.Go(func() error {
			var err error
			ids, err = s.wishlist.ListDealIDs(gctx, *caller)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list wishlist ids")
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	wishlisted := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		wishlisted[id] = struct{}{}
	}

	out := make([]DealDTO, 0, len(rows))
	for i := range rows {
		dto := FromModel(&rows[i])
		if _, ok := wishlisted[dto.ID]; ok {
			dto.InWishlist = true
		}
		out = append(out, dto)
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID, caller *uuid.UUID) (*DealDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Invalid deal ID")
	}
	deal, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, dealNotFoundMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load deal")
	}

	dto := FromModel(deal).WithWishlist(false, false)
	if caller == nil {
		return &dto, nil
	}

	entry, err := s.wishlist.FindEntry(ctx, *caller, id)
	switch {
	case err == nil:
		dto = dto.WithWishlist(true, entry.AlertEnabled)
	case errors.Is(err, gorm.ErrRecordNotFound):
	default:
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load wishlist entry")
	}
	return &dto, nil
}

func (s *service) Create(ctx context.Context, input CreateDealInput) (*DealDTO, error) {
	deal, err := s.create(ctx, s.repo, input)
	if err != nil {
		return nil, err
	}
	dto := FromModel(deal)
	return &dto, nil
}

// ReplaceCatalog swaps the whole catalog for inputs in one transaction.
func (s *service) ReplaceCatalog(ctx context.Context, inputs []CreateDealInput) ([]DealDTO, error) {
	out := make([]DealDTO, 0, len(inputs))
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)
		if err := repo.DeleteAll(ctx); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clear deals")
		}
		base := time.Now().UTC()
		for i, input := range inputs {
			if input.CreatedAt.IsZero() {
				input.CreatedAt = base.Add(time.Duration(i) * time.Millisecond)
			}
			deal, err := s.create(ctx, repo, input)
			if err != nil {
				return err
			}
			out = append(out, FromModel(deal))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *service) create(ctx context.Context, repo *Repository, input CreateDealInput) (*models.Deal, error) {
	if details := input.validate(); len(details) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Validation failed").WithDetails(details)
	}
	deal := input.toModel()
	if err := repo.Create(ctx, deal); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create deal")
	}
	return deal, nil
}
