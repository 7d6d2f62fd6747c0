package controllers

import (
	"net/http"

	"github.com/angelmondragon/smartlist-backend/api/middleware"
	"github.com/angelmondragon/smartlist-backend/api/responses"
	"github.com/angelmondragon/smartlist-backend/api/validators"
	"github.com/angelmondragon/smartlist-backend/internal/users"
	"github.com/angelmondragon/smartlist-backend/pkg/logger"
)

func SettingsGet(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := svc.GetSettings(r.Context(), middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, out)
	}
}

// SettingsUpdate changes the default critical horizon and re-evaluates inventory.
func SettingsUpdate(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body users.UpdateSettingsRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out, err := svc.UpdateCriticalQuantityDays(r.Context(), middleware.UserIDFromContext(r.Context()), *body.CriticalQuantityDays)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, out)
	}
}
