// Copyright (c) 2026 Kanri. All rights reserved.
// Author: dev@kanri.app

package settings

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kanrihq/kanri/internal/platform/middleware"
	"github.com/kanrihq/kanri/internal/platform/request"
	"github.com/kanrihq/kanri/internal/platform/respond"
	"github.com/kanrihq/kanri/internal/platform/sec"
	"github.com/kanrihq/kanri/internal/platform/validate"
)

// Handler implements the settings endpoints.
type Handler struct {
	settingsService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{settingsService: service}
}

// Routes returns the settings endpoints. The maintenance status probe is
// public; everything else sits behind the admin-role gate. The whole mount is
// exempt from the maintenance gate so admins can always turn maintenance off
// and clients (and load balancers) can always read the status.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/maintenance/status", handler.maintenanceStatus)

	router.Group(func(admin chi.Router) {
		admin.Use(middleware.RequireAuth)
		admin.Use(middleware.RequireRole(sec.RoleAdmin))
		admin.Get("/", handler.list)
		admin.Put("/maintenance", handler.setMaintenance)
		admin.Put("/{key}", handler.update)
	})

	return router
}

/*
maintenanceStatus reports whether maintenance mode is active.

GET /api/v1/system/settings/maintenance/status

Response:
  - 200: {"maintenance": bool, "message": string|null}
*/
func (handler *Handler) maintenanceStatus(writer http.ResponseWriter, httpRequest *http.Request) {
	enabled, message, err := handler.settingsService.MaintenanceStatus(httpRequest.Context())
	if err != nil {
		// A settings-store outage degrades to "not in maintenance", matching
		// the request gate's fail-open behavior.
		enabled, message = false, ""
	}

	// No configured banner serializes as null, not "".
	var banner *string
	if message != "" {
		banner = &message
	}

	respond.OK(writer, map[string]any{
		"maintenance": enabled,
		"message":     banner,
	})
}

/*
list returns every system setting.

GET /api/v1/system/settings

Response:
  - 200: []Setting
*/
func (handler *Handler) list(writer http.ResponseWriter, httpRequest *http.Request) {
	allSettings, err := handler.settingsService.List(httpRequest.Context())
	if err != nil {
		respond.Error(writer, httpRequest, err)
		return
	}

	respond.OK(writer, allSettings)
}

/*
setMaintenance toggles maintenance mode.

PUT /api/v1/system/settings/maintenance
Body: {"enabled": bool, "message": "optional banner text"}

Response:
  - 200: {"maintenance": bool}
  - 422: Validation error
*/
func (handler *Handler) setMaintenance(writer http.ResponseWriter, httpRequest *http.Request) {
	identity, err := request.RequiredIdentity(httpRequest)
	if err != nil {
		respond.Error(writer, httpRequest, err)
		return
	}

	var body struct {
		Enabled bool    `json:"enabled"`
		Message *string `json:"message"`
	}
	if err := request.DecodeJSON(httpRequest, &body); err != nil {
		respond.Error(writer, httpRequest, err)
		return
	}

	if body.Message != nil {
		validator := &validate.Validator{}
		validator.MaxLen("message", *body.Message, 500)
		if err := validator.Err(); err != nil {
			respond.Error(writer, httpRequest, err)
			return
		}
	}

	err = handler.settingsService.SetMaintenance(httpRequest.Context(),
		identity.UserID, body.Enabled, body.Message, middleware.RealIP(httpRequest))
	if err != nil {
		respond.Error(writer, httpRequest, err)
		return
	}

	respond.OK(writer, map[string]any{"maintenance": body.Enabled})
}

/*
update overwrites a single setting value.

PUT /api/v1/system/settings/{key}
Body: {"value": "..."}

Response:
  - 200: Setting
  - 404: Unknown key
*/
func (handler *Handler) update(writer http.ResponseWriter, httpRequest *http.Request) {
	identity, err := request.RequiredIdentity(httpRequest)
	if err != nil {
		respond.Error(writer, httpRequest, err)
		return
	}

	key := request.Param(httpRequest, "key")

	var body struct {
		Value string `json:"value"`
	}
	if err := request.DecodeJSON(httpRequest, &body); err != nil {
		respond.Error(writer, httpRequest, err)
		return
	}

	validator := &validate.Validator{}
	validator.Required("key", key)
	validator.MaxLen("value", body.Value, 2000)
	if err := validator.Err(); err != nil {
		respond.Error(writer, httpRequest, err)
		return
	}

	setting, err := handler.settingsService.Update(httpRequest.Context(), identity.UserID, key, body.Value, middleware.RealIP(httpRequest))
	if err != nil {
		respond.Error(writer, httpRequest, err)
		return
	}

	respond.OK(writer, setting)
}
