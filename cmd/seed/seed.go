package main

import (
	"context"
	_ "embed"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/angelmondragon/buzdealz-backend/internal/auth"
	"github.com/angelmondragon/buzdealz-backend/internal/deals"
	"github.com/angelmondragon/buzdealz-backend/internal/users"
	"github.com/angelmondragon/buzdealz-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/buzdealz-backend/pkg/errors"
	"github.com/angelmondragon/buzdealz-backend/pkg/logger"
)

//go:embed catalog.yaml
var defaultCatalog []byte

type seedFile struct {
	Users []seedUser `yaml:"users"`
	Deals []seedDeal `yaml:"deals"`
}

type seedUser struct {
	Email      string `yaml:"email"`
	Name       string `yaml:"name"`
	Password   string `yaml:"password"`
	Subscriber bool   `yaml:"subscriber"`
}

type seedDeal struct {
	Title         string     `yaml:"title"`
	Description   string     `yaml:"description"`
	ImageURL      string     `yaml:"imageUrl"`
	OriginalPrice string     `yaml:"originalPrice"`
	CurrentPrice  string     `yaml:"currentPrice"`
	BestPrice     string     `yaml:"bestPrice"`
	Retailer      string     `yaml:"retailer"`
	ProductURL    string     `yaml:"productUrl"`
	Status        string     `yaml:"status"`
	ExpiresAt     *time.Time `yaml:"expiresAt"`
}

type seeder struct {
	auth  auth.Service
	users *users.Repository
	deals deals.Service
	logg  *logger.Logger
}

func parseSeedFile(raw []byte) (*seedFile, error) {
	var file seedFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	return &file, nil
}

func (d seedDeal) toInput() (deals.CreateDealInput, error) {
	original, err := decimal.NewFromString(d.OriginalPrice)
	if err != nil {
		return deals.CreateDealInput{}, fmt.Errorf("%s: original price: %w", d.Title, err)
	}
	current, err := decimal.NewFromString(d.CurrentPrice)
	if err != nil {
		return deals.CreateDealInput{}, fmt.Errorf("%s: current price: %w", d.Title, err)
	}
	input := deals.CreateDealInput{
		Title:         d.Title,
		Description:   optional(d.Description),
		ImageURL:      optional(d.ImageURL),
		OriginalPrice: original,
		CurrentPrice:  current,
		Retailer:      d.Retailer,
		ProductURL:    optional(d.ProductURL),
		Status:        enums.DealStatus(d.Status),
		ExpiresAt:     d.ExpiresAt,
	}
	if d.BestPrice != "" {
		best, err := decimal.NewFromString(d.BestPrice)
		if err != nil {
			return deals.CreateDealInput{}, fmt.Errorf("%s: best price: %w", d.Title, err)
		}
		input.BestPrice = decimal.NewNullDecimal(best)
	}
	return input, nil
}

// run creates missing accounts and replaces the catalog. User failures are
// collected so one bad account does not hide the others.
func (s *seeder) run(ctx context.Context, file *seedFile) error {
	var errs error
	for _, u := range file.Users {
		errs = multierr.Append(errs, s.ensureUser(ctx, u))
	}

	inputs := make([]deals.CreateDealInput, 0, len(file.Deals))
	for _, d := range file.Deals {
		input, err := d.toInput()
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		inputs = append(inputs, input)
	}
	if errs != nil {
		return errs
	}

	created, err := s.deals.ReplaceCatalog(ctx, inputs)
	if err != nil {
		return fmt.Errorf("replace catalog: %w", err)
	}
	s.logg.Info(s.logg.WithField(ctx, "deals", len(created)), "seed.catalog_replaced")
	return nil
}

func (s *seeder) ensureUser(ctx context.Context, u seedUser) error {
	ctx = s.logg.WithField(ctx, "email", u.Email)

	_, err := s.auth.Register(ctx, auth.RegisterRequest{Email: u.Email, Name: u.Name, Password: u.Password})
	switch {
	case err == nil:
		s.logg.Info(ctx, "seed.user_created")
	case pkgerrors.IsCode(err, pkgerrors.CodeConflict):
		s.logg.Info(ctx, "seed.user_exists")
	default:
		return fmt.Errorf("register %s: %w", u.Email, err)
	}

	user, err := s.users.FindByEmail(ctx, u.Email)
	if err != nil {
		return fmt.Errorf("load %s: %w", u.Email, err)
	}
	if user.IsSubscriber == u.Subscriber {
		return nil
	}
	if err := s.users.SetSubscriber(ctx, user.ID, u.Subscriber); err != nil {
		return fmt.Errorf("set subscriber %s: %w", u.Email, err)
	}
	return nil
}

func optional(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}
