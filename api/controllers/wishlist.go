package controllers

import (
	"context"
	"net/http"

	"github.com/angelmondragon/buzdealz-backend/api/middleware"
	"github.com/angelmondragon/buzdealz-backend/api/responses"
	"github.com/angelmondragon/buzdealz-backend/api/validators"
	"github.com/angelmondragon/buzdealz-backend/internal/wishlist"
	pkgerrors "github.com/angelmondragon/buzdealz-backend/pkg/errors"
	"github.com/angelmondragon/buzdealz-backend/pkg/logger"
)

const invalidDealIDMessage = "Invalid deal ID"

// WishlistList returns the caller's entries joined with their deals.
func WishlistList(svc wishlist.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		caller, err := wishlistCaller(ctx, svc)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		items, err := svc.List(ctx, caller)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteList(w, items, len(items))
	}
}

// WishlistAdd answers 201 for a new entry and 200 when the deal was already saved.
func WishlistAdd(svc wishlist.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		caller, err := wishlistCaller(ctx, svc)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var body wishlist.AddInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.Add(ctx, caller, body)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if result.Created {
			responses.WriteMessage(w, http.StatusCreated, "Deal added to wishlist", result.Entry)
			return
		}
		responses.WriteMessage(w, http.StatusOK, "Deal already in wishlist", result.Entry)
	}
}

func WishlistUpdateAlert(svc wishlist.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		caller, err := wishlistCaller(ctx, svc)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		dealID, err := validators.ParseUUIDParam(r, "dealId", invalidDealIDMessage)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var body wishlist.UpdateAlertInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		entry, err := svc.UpdateAlert(ctx, caller, dealID, *body.AlertEnabled)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteMessage(w, http.StatusOK, "Alert settings updated", entry)
	}
}

func WishlistRemove(svc wishlist.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		caller, err := wishlistCaller(ctx, svc)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		dealID, err := validators.ParseUUIDParam(r, "dealId", invalidDealIDMessage)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.Remove(ctx, caller, dealID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteMessage(w, http.StatusOK, "Deal removed from wishlist", nil)
	}
}

func wishlistCaller(ctx context.Context, svc wishlist.Service) (wishlist.Caller, error) {
	if svc == nil {
		return wishlist.Caller{}, pkgerrors.New(pkgerrors.CodeInternal, "wishlist service unavailable")
	}
	identity := middleware.IdentityFromContext(ctx)
	if identity == nil {
		return wishlist.Caller{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "Authentication required")
	}
	return wishlist.Caller{UserID: identity.UserID, IsSubscriber: identity.IsSubscriber}, nil
}
