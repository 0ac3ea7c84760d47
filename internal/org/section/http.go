// Copyright (c) 2026 Kanri. All rights reserved.
// Author: dev@kanri.app

package section

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/kanrihq/kanri/internal/platform/middleware"
	"github.com/kanrihq/kanri/internal/platform/request"
	"github.com/kanrihq/kanri/internal/platform/respond"
	"github.com/kanrihq/kanri/internal/platform/validate"
	"github.com/kanrihq/kanri/pkg/pagination"
)

// Handler implements the section endpoints.
type Handler struct {
	sectionService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{sectionService: service}
}

// Routes returns a [chi.Router] with section endpoints. The caller mounts
// this behind the admin-role gate.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.list)
	router.Post("/", handler.create)

	router.Route("/{sectionID}", func(router chi.Router) {
		router.Get("/", handler.get)
		router.Put("/", handler.update)
		router.Delete("/", handler.remove)
	})

	return router
}

/*
list returns a page of sections.

GET /api/v1/sections?page=1&limit=20&department_id=2

Response:
  - 200: Paginated []Section
*/
func (handler *Handler) list(writer http.ResponseWriter, httpRequest *http.Request) {
	params := pagination.FromRequest(httpRequest)

	var departmentID *int64
	if raw := httpRequest.URL.Query().Get("department_id"); raw != "" {
		if parsed, err := strconv.ParseInt(raw, 10, 64); err == nil {
			departmentID = &parsed
		}
	}

	sections, total, err := handler.sectionService.List(httpRequest.Context(), departmentID, params)
	if err != nil {
		respond.Error(writer, httpRequest, err)
		return
	}

	respond.Paginated(writer, sections, pagination.NewMeta(params.Page, params.Limit, total))
}

/*
create adds a section under a department.

POST /api/v1/sections
Body: {"department_id", "name"}

Response:
  - 201: Created Section
  - 409: Unknown department or duplicate name
*/
func (handler *Handler) create(writer http.ResponseWriter, httpRequest *http.Request) {
	identity, err := request.RequiredIdentity(httpRequest)
	if err != nil {
		respond.Error(writer, httpRequest, err)
		return
	}

	var input struct {
		DepartmentID int64  `json:"department_id"`
		Name         string `json:"name"`
	}
	if err := request.DecodeJSON(httpRequest, &input); err != nil {
		respond.Error(writer, httpRequest, err)
		return
	}

	validator := &validate.Validator{}
	validator.Required("name", input.Name)
	validator.MaxLen("name", input.Name, 100)
	validator.Custom("department_id", input.DepartmentID <= 0, "must be a positive integer")
	if err := validator.Err(); err != nil {
		respond.Error(writer, httpRequest, err)
		return
	}

	sect, err := handler.sectionService.Create(httpRequest.Context(),
		identity.UserID, input.DepartmentID, input.Name, middleware.RealIP(httpRequest))
	if err != nil {
		respond.Error(writer, httpRequest, err)
		return
	}

	respond.Created(writer, sect)
}

/*
get returns a single section.

GET /api/v1/sections/{sectionID}

Response:
  - 200: Section
  - 404: Not found
*/
func (handler *Handler) get(writer http.ResponseWriter, httpRequest *http.Request) {
	sectionID, err := request.IntParam(httpRequest, "sectionID")
	if err != nil {
		respond.Error(writer, httpRequest, err)
		return
	}

	sect, err := handler.sectionService.Get(httpRequest.Context(), sectionID)
	if err != nil {
		respond.Error(writer, httpRequest, err)
		return
	}

	respond.OK(writer, sect)
}

/*
update renames a section.

PUT /api/v1/sections/{sectionID}
Body: {"name"}

Response:
  - 200: Updated Section
*/
func (handler *Handler) update(writer http.ResponseWriter, httpRequest *http.Request) {
	identity, err := request.RequiredIdentity(httpRequest)
	if err != nil {
		respond.Error(writer, httpRequest, err)
		return
	}

	sectionID, err := request.IntParam(httpRequest, "sectionID")
	if err != nil {
		respond.Error(writer, httpRequest, err)
		return
	}

	var input struct {
		Name string `json:"name"`
	}
	if err := request.DecodeJSON(httpRequest, &input); err != nil {
		respond.Error(writer, httpRequest, err)
		return
	}

	validator := &validate.Validator{}
	validator.Required("name", input.Name)
	validator.MaxLen("name", input.Name, 100)
	if err := validator.Err(); err != nil {
		respond.Error(writer, httpRequest, err)
		return
	}

	sect, err := handler.sectionService.Update(httpRequest.Context(),
		identity.UserID, sectionID, input.Name, middleware.RealIP(httpRequest))
	if err != nil {
		respond.Error(writer, httpRequest, err)
		return
	}

	respond.OK(writer, sect)
}

/*
remove deletes a section.

DELETE /api/v1/sections/{sectionID}

Response:
  - 204: Deleted
  - 409: Still referenced by accounts
*/
func (handler *Handler) remove(writer http.ResponseWriter, httpRequest *http.Request) {
	identity, err := request.RequiredIdentity(httpRequest)
	if err != nil {
		respond.Error(writer, httpRequest, err)
		return
	}

	sectionID, err := request.IntParam(httpRequest, "sectionID")
	if err != nil {
		respond.Error(writer, httpRequest, err)
		return
	}

	err = handler.sectionService.Delete(httpRequest.Context(), identity.UserID, sectionID, middleware.RealIP(httpRequest))
	if err != nil {
		respond.Error(writer, httpRequest, err)
		return
	}

	respond.NoContent(writer)
}
