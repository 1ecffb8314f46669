package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/angelmondragon/buzdealz-backend/api/responses"
	"github.com/angelmondragon/buzdealz-backend/api/validators"
	pkgAuth "github.com/angelmondragon/buzdealz-backend/pkg/auth"
	"github.com/angelmondragon/buzdealz-backend/pkg/auth/session"
	"github.com/angelmondragon/buzdealz-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/buzdealz-backend/pkg/errors"
	"github.com/angelmondragon/buzdealz-backend/pkg/logger"
)

const (
	authRequiredMessage = "Authentication required"
	invalidTokenMessage = "Invalid or expired token"
)

// RequireAuth rejects requests without a valid bearer token.
// revocations may be nil when no token store is configured.
func RequireAuth(cfg config.JWTConfig, revocations session.RevocationChecker, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := authenticate(r.Context(), cfg, revocations, r.Header.Get("Authorization"))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(attachIdentity(r.Context(), logg, identity)))
		})
	}
}

// OptionalAuth attaches the caller when a valid token is present and
// otherwise lets the request through anonymously.
func OptionalAuth(cfg config.JWTConfig, revocations session.RevocationChecker, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			identity, err := authenticate(ctx, cfg, revocations, r.Header.Get("Authorization"))
			switch {
			case err == nil:
				ctx = attachIdentity(ctx, logg, identity)
			case pkgerrors.IsCode(err, pkgerrors.CodeDependency) && logg != nil:
				logg.WarnErr(ctx, "auth.optional.revocation_check_failed", err)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func authenticate(ctx context.Context, cfg config.JWTConfig, revocations session.RevocationChecker, header string) (*Identity, error) {
	token, err := validators.BearerToken(header)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, authRequiredMessage)
	}

	claims, err := pkgAuth.ParseAccessToken(cfg, token)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, invalidTokenMessage)
	}

	if revocations != nil && claims.ID != "" {
		revoked, err := revocations.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check token revocation")
		}
		if revoked {
			return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, errors.New("token revoked"), invalidTokenMessage)
		}
	}

	identity := &Identity{
		UserID:       claims.UserID,
		Email:        claims.Email,
		Name:         claims.Name,
		IsSubscriber: claims.IsSubscriber,
		TokenID:      claims.ID,
	}
	if claims.ExpiresAt != nil {
		identity.ExpiresAt = claims.ExpiresAt.Time
	}
	return identity, nil
}

func attachIdentity(ctx context.Context, logg *logger.Logger, identity *Identity) context.Context {
	ctx = WithIdentity(ctx, identity)
	if logg != nil {
		ctx = logg.WithUserID(ctx, identity.UserID.String())
		ctx = logg.WithSubscriber(ctx, identity.IsSubscriber)
	}
	return ctx
}
