// Copyright (c) 2026 Kanri. All rights reserved.
// Author: dev@kanri.app

package department

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kanrihq/kanri/internal/platform/middleware"
	"github.com/kanrihq/kanri/internal/platform/request"
	"github.com/kanrihq/kanri/internal/platform/respond"
	"github.com/kanrihq/kanri/internal/platform/validate"
	"github.com/kanrihq/kanri/pkg/pagination"
)

// Handler implements the department endpoints.
type Handler struct {
	departmentService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{departmentService: service}
}

// Routes returns a [chi.Router] with department endpoints. The caller mounts
// this behind the admin-role gate.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.list)
	router.Post("/", handler.create)

	router.Route("/{departmentID}", func(router chi.Router) {
		router.Get("/", handler.get)
		router.Put("/", handler.update)
		router.Delete("/", handler.remove)
	})

	return router
}

type departmentInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (input departmentInput) validate() error {
	validator := &validate.Validator{}
	validator.Required("name", input.Name)
	validator.MaxLen("name", input.Name, 100)
	validator.MaxLen("description", input.Description, 500)
	return validator.Err()
}

/*
list returns a page of departments.

GET /api/v1/departments?page=1&limit=20&search=sales

Response:
  - 200: Paginated []Department
*/
func (handler *Handler) list(writer http.ResponseWriter, httpRequest *http.Request) {
	params := pagination.FromRequest(httpRequest)
	search := httpRequest.URL.Query().Get("search")

	departments, total, err := handler.departmentService.List(httpRequest.Context(), search, params)
	if err != nil {
		respond.Error(writer, httpRequest, err)
		return
	}

	respond.Paginated(writer, departments, pagination.NewMeta(params.Page, params.Limit, total))
}

/*
create adds a department.

POST /api/v1/departments
Body: {"name", "description"}

Response:
  - 201: Created Department
  - 409: Duplicate name
*/
func (handler *Handler) create(writer http.ResponseWriter, httpRequest *http.Request) {
	identity, err := request.RequiredIdentity(httpRequest)
	if err != nil {
		respond.Error(writer, httpRequest, err)
		return
	}

	var input departmentInput
	if err := request.DecodeJSON(httpRequest, &input); err != nil {
		respond.Error(writer, httpRequest, err)
		return
	}
	if err := input.validate(); err != nil {
		respond.Error(writer, httpRequest, err)
		return
	}

	dept, err := handler.departmentService.Create(httpRequest.Context(),
		identity.UserID, input.Name, input.Description, middleware.RealIP(httpRequest))
	if err != nil {
		respond.Error(writer, httpRequest, err)
		return
	}

	respond.Created(writer, dept)
}

/*
get returns a single department.

GET /api/v1/departments/{departmentID}

Response:
  - 200: Department
  - 404: Not found
*/
func (handler *Handler) get(writer http.ResponseWriter, httpRequest *http.Request) {
	departmentID, err := request.IntParam(httpRequest, "departmentID")
	if err != nil {
		respond.Error(writer, httpRequest, err)
		return
	}

	dept, err := handler.departmentService.Get(httpRequest.Context(), departmentID)
	if err != nil {
		respond.Error(writer, httpRequest, err)
		return
	}

	respond.OK(writer, dept)
}

/*
update renames a department.

PUT /api/v1/departments/{departmentID}
Body: {"name", "description"}

Response:
  - 200: Updated Department
*/
func (handler *Handler) update(writer http.ResponseWriter, httpRequest *http.Request) {
	identity, err := request.RequiredIdentity(httpRequest)
	if err != nil {
		respond.Error(writer, httpRequest, err)
		return
	}

	departmentID, err := request.IntParam(httpRequest, "departmentID")
	if err != nil {
		respond.Error(writer, httpRequest, err)
		return
	}

	var input departmentInput
	if err := request.DecodeJSON(httpRequest, &input); err != nil {
		respond.Error(writer, httpRequest, err)
		return
	}
	if err := input.validate(); err != nil {
		respond.Error(writer, httpRequest, err)
		return
	}

	dept, err := handler.departmentService.Update(httpRequest.Context(),
		identity.UserID, departmentID, input.Name, input.Description, middleware.RealIP(httpRequest))
	if err != nil {
		respond.Error(writer, httpRequest, err)
		return
	}

	respond.OK(writer, dept)
}

/*
remove deletes a department.

DELETE /api/v1/departments/{departmentID}

Response:
  - 204: Deleted
  - 409: Still referenced by sections or accounts
*/
func (handler *Handler) remove(writer http.ResponseWriter, httpRequest *http.Request) {
	identity, err := request.RequiredIdentity(httpRequest)
	if err != nil {
		respond.Error(writer, httpRequest, err)
		return
	}

	departmentID, err := request.IntParam(httpRequest, "departmentID")
	if err != nil {
		respond.Error(writer, httpRequest, err)
		return
	}

	err = handler.departmentService.Delete(httpRequest.Context(), identity.UserID, departmentID, middleware.RealIP(httpRequest))
	if err != nil {
		respond.Error(writer, httpRequest, err)
		return
	}

	respond.NoContent(writer)
}
