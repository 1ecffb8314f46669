package auth

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/angelmondragon/buzdealz-backend/internal/users"
	"github.com/angelmondragon/buzdealz-backend/pkg/db"
	"github.com/angelmondragon/buzdealz-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/buzdealz-backend/pkg/errors"
	"github.com/angelmondragon/buzdealz-backend/pkg/security"
	"gorm.io/gorm"
)

const (
	minPasswordLength = 6
	maxNameLength     = 100
	usersEmailKey     = "users_email_key"
)

func (r RegisterRequest) validate() error {
	details := map[string]string{}
	if users.NormalizeEmail(r.Email) == "" {
		details["email"] = "is required"
	}
	name := strings.TrimSpace(r.Name)
	switch {
	case name == "":
		details["name"] = "is required"
	case utf8.RuneCountInString(name) > maxNameLength:
		details["name"] = "must be at most 100"
	}
	if len(r.Password) < minPasswordLength {
		details["password"] = "must be at least 6"
	}
	if len(details) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "Validation failed").WithDetails(details)
	}
	return nil
}

// Register creates a free account and signs it in. The existence check and
// insert share a transaction; a concurrent insert still surfaces as a
// unique violation and maps to the same conflict.
func (s *service) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	email := users.NormalizeEmail(req.Email)

	passwordHash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	var created *models.User
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		userRepo := users.NewRepository(tx)

		if _, err := userRepo.FindByEmail(ctx, email); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, emailTakenMessage)
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check user email")
		}

		user, err := userRepo.Create(ctx, users.CreateUserDTO{
			Email:        email,
			Name:         req.Name,
			PasswordHash: passwordHash,
		})
		if err != nil {
			if db.IsUniqueViolation(err, usersEmailKey) {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, emailTakenMessage)
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
		}
		created = user
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.issue(s.now(), created)
}
