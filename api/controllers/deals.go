package controllers

import (
	"net/http"

	"github.com/angelmondragon/buzdealz-backend/api/middleware"
	"github.com/angelmondragon/buzdealz-backend/api/responses"
	"github.com/angelmondragon/buzdealz-backend/api/validators"
	"github.com/angelmondragon/buzdealz-backend/internal/deals"
	pkgerrors "github.com/angelmondragon/buzdealz-backend/pkg/errors"
	"github.com/angelmondragon/buzdealz-backend/pkg/logger"
)

// DealsList returns the catalog, annotated with the caller's wishlist when
// the request carries a valid token.
func DealsList(svc deals.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "deal service unavailable"))
			return
		}

		list, err := svc.List(ctx, middleware.UserIDFromContext(ctx))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteList(w, list, len(list))
	}
}

func DealsGet(svc deals.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "deal service unavailable"))
			return
		}

		id, err := validators.ParseUUIDParam(r, "id", "Invalid deal ID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		deal, err := svc.Get(ctx, id, middleware.UserIDFromContext(ctx))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, deal)
	}
}
