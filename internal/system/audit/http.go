// Copyright (c) 2026 Kanri. All rights reserved.
// Author: dev@kanri.app

package audit

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/kanrihq/kanri/internal/platform/respond"
	"github.com/kanrihq/kanri/pkg/pagination"
	"github.com/kanrihq/kanri/pkg/query"
)

// Handler implements the admin-facing audit log endpoints.
type Handler struct {
	auditService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{auditService: service}
}

// Routes returns a [chi.Router] with audit endpoints. The caller mounts this
// behind the admin-role gate.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Get("/", handler.list)
	return router
}

/*
list returns a page of audit entries, newest first.

GET /api/v1/system/audit?page=1&limit=20&action=login_failed,login_success&entity_type=user&actor_id=3

Response:
  - 200: Paginated []Entry
*/
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)

	filter := Filter{
		Actions:    query.StringSlice(request.URL.Query().Get("action")),
		EntityType: request.URL.Query().Get("entity_type"),
	}
	if raw := request.URL.Query().Get("actor_id"); raw != "" {
		if actorID, err := strconv.ParseInt(raw, 10, 64); err == nil {
			filter.ActorID = &actorID
		}
	}

	entries, total, err := handler.auditService.List(request.Context(), filter, params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, entries, pagination.NewMeta(params.Page, params.Limit, total))
}
