package controllers

import (
	"net/http"

	"github.com/angelmondragon/craftmarket-backend/api/middleware"
	"github.com/angelmondragon/craftmarket-backend/api/responses"
	pkgerrors "github.com/angelmondragon/craftmarket-backend/pkg/errors"
	"github.com/angelmondragon/craftmarket-backend/pkg/logger"
	"github.com/angelmondragon/craftmarket-backend/pkg/pagination"
	"github.com/angelmondragon/craftmarket-backend/pkg/types"
)

// requestActor returns the authenticated actor or writes a 401.
func requestActor(w http.ResponseWriter, r *http.Request, logg *logger.Logger) (types.Actor, bool) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
		return types.Actor{}, false
	}
	return actor, true
}

func pageParams(w http.ResponseWriter, r *http.Request, logg *logger.Logger) (pagination.Params, bool) {
	params, err := pagination.ParamsFromQuery(r.URL.Query())
	if err != nil {
		responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid pagination parameters"))
		return pagination.Params{}, false
	}
	return params, true
}

func serviceUnavailable(w http.ResponseWriter, r *http.Request, logg *logger.Logger, name string) {
	responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, name+" service unavailable"))
}

func mapPage[T any, R any](page pagination.Page[T], fn func(T) R) pagination.Page[R] {
	items := make([]R, 0, len(page.Items))
	for _, item := range page.Items {
		items = append(items, fn(item))
	}
	return pagination.Page[R]{Items: items, NextCursor: page.NextCursor}
}
