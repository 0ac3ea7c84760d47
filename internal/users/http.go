// Copyright (c) 2026 Kanri. All rights reserved.
// Author: dev@kanri.app

package users

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/kanrihq/kanri/internal/platform/middleware"
	"github.com/kanrihq/kanri/internal/platform/request"
	"github.com/kanrihq/kanri/internal/platform/respond"
	"github.com/kanrihq/kanri/internal/platform/sec"
	"github.com/kanrihq/kanri/internal/platform/validate"
	"github.com/kanrihq/kanri/pkg/pagination"
	"github.com/kanrihq/kanri/pkg/pointer"
	"github.com/kanrihq/kanri/pkg/slice"
)

// Handler implements the admin account management endpoints.
type Handler struct {
	usersService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{usersService: service}
}

// Routes returns a [chi.Router] with account management endpoints. The caller
// mounts this behind the admin-role gate.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.list)
	router.Post("/", handler.create)

	router.Route("/{userID}", func(router chi.Router) {
		router.Get("/", handler.get)
		router.Put("/", handler.update)
		router.Patch("/active", handler.setActive)
		router.Put("/password", handler.resetPassword)
		router.Delete("/", handler.remove)
	})

	return router
}

/*
list returns a page of accounts.

GET /api/v1/users?page=1&limit=20&search=suzuki&role=USER&active=true&department_id=2

Response:
  - 200: Paginated []Summary
*/
func (handler *Handler) list(writer http.ResponseWriter, httpRequest *http.Request) {
	params := pagination.FromRequest(httpRequest)
	queryValues := httpRequest.URL.Query()

	filter := Filter{
		Search: queryValues.Get("search"),
		Role:   sec.UserRole(queryValues.Get("role")),
	}
	if raw := queryValues.Get("active"); raw != "" {
		if active, err := strconv.ParseBool(raw); err == nil {
			filter.IsActive = pointer.To(active)
		}
	}
	if raw := queryValues.Get("department_id"); raw != "" {
		if departmentID, err := strconv.ParseInt(raw, 10, 64); err == nil {
			filter.DepartmentID = pointer.To(departmentID)
		}
	}

	accounts, total, err := handler.usersService.List(httpRequest.Context(), filter, params)
	if err != nil {
		respond.Error(writer, httpRequest, err)
		return
	}

	summaries := slice.Map(accounts, toSummary)
	respond.Paginated(writer, summaries, pagination.NewMeta(params.Page, params.Limit, total))
}

/*
create provisions a new account.

POST /api/v1/users
Body: {"username", "password", "display_name", "role", "department_id", "section_id"}

Response:
  - 201: Created User
  - 409: Username already taken
  - 422: Validation error
*/
func (handler *Handler) create(writer http.ResponseWriter, httpRequest *http.Request) {
	identity, err := request.RequiredIdentity(httpRequest)
	if err != nil {
		respond.Error(writer, httpRequest, err)
		return
	}

	var input CreateInput
	if err := request.DecodeJSON(httpRequest, &input); err != nil {
		respond.Error(writer, httpRequest, err)
		return
	}

	validator := &validate.Validator{}
	validator.Required("username", input.Username)
	validator.MinLen("username", input.Username, 3)
	validator.MaxLen("username", input.Username, 50)
	validator.Required("password", input.Password)
	validator.MinLen("password", input.Password, 8)
	validator.MaxLen("display_name", input.DisplayName, 100)
	validator.Custom("role", !input.Role.IsValid(), "must be a valid role")
	if err := validator.Err(); err != nil {
		respond.Error(writer, httpRequest, err)
		return
	}

	user, err := handler.usersService.Create(httpRequest.Context(), identity.UserID, input, middleware.RealIP(httpRequest))
	if err != nil {
		respond.Error(writer, httpRequest, err)
		return
	}

	respond.Created(writer, user)
}

/*
get returns a single account.

GET /api/v1/users/{userID}

Response:
  - 200: User
  - 404: Not found (or soft-deleted)
*/
func (handler *Handler) get(writer http.ResponseWriter, httpRequest *http.Request) {
	userID, err := request.IntParam(httpRequest, "userID")
	if err != nil {
		respond.Error(writer, httpRequest, err)
		return
	}

	user, err := handler.usersService.Get(httpRequest.Context(), userID)
	if err != nil {
		respond.Error(writer, httpRequest, err)
		return
	}

	respond.OK(writer, user)
}

/*
update applies profile changes to an account. Omitted fields are unchanged.
A role change invalidates the target's live sessions.

PUT /api/v1/users/{userID}
Body: {"display_name"?, "role"?, "department_id"?, "section_id"?}

Response:
  - 200: Updated User
  - 403: Attempted self role change
  - 404: Not found
*/
func (handler *Handler) update(writer http.ResponseWriter, httpRequest *http.Request) {
	identity, err := request.RequiredIdentity(httpRequest)
	if err != nil {
		respond.Error(writer, httpRequest, err)
		return
	}

	userID, err := request.IntParam(httpRequest, "userID")
	if err != nil {
		respond.Error(writer, httpRequest, err)
		return
	}

	var input UpdateInput
	if err := request.DecodeJSON(httpRequest, &input); err != nil {
		respond.Error(writer, httpRequest, err)
		return
	}

	validator := &validate.Validator{}
	if input.DisplayName != nil {
		validator.MaxLen("display_name", *input.DisplayName, 100)
	}
	if input.Role != nil {
		validator.Custom("role", !input.Role.IsValid(), "must be a valid role")
	}
	if err := validator.Err(); err != nil {
		respond.Error(writer, httpRequest, err)
		return
	}

	user, err := handler.usersService.Update(httpRequest.Context(), identity.UserID, userID, input, middleware.RealIP(httpRequest))
	if err != nil {
		respond.Error(writer, httpRequest, err)
		return
	}

	respond.OK(writer, user)
}

/*
setActive toggles an account's activation state. Deactivation kills the
target's live sessions.

PATCH /api/v1/users/{userID}/active
Body: {"active": bool}

Response:
  - 200: Updated User
  - 403: Attempted self deactivation
*/
func (handler *Handler) setActive(writer http.ResponseWriter, httpRequest *http.Request) {
	identity, err := request.RequiredIdentity(httpRequest)
	if err != nil {
		respond.Error(writer, httpRequest, err)
		return
	}

	userID, err := request.IntParam(httpRequest, "userID")
	if err != nil {
		respond.Error(writer, httpRequest, err)
		return
	}

	var body struct {
		Active bool `json:"active"`
	}
	if err := request.DecodeJSON(httpRequest, &body); err != nil {
		respond.Error(writer, httpRequest, err)
		return
	}

	user, err := handler.usersService.SetActive(httpRequest.Context(), identity.UserID, userID, body.Active, middleware.RealIP(httpRequest))
	if err != nil {
		respond.Error(writer, httpRequest, err)
		return
	}

	respond.OK(writer, user)
}

/*
resetPassword replaces an account's password and kills its live sessions.

PUT /api/v1/users/{userID}/password
Body: {"password": "new plaintext password"}

Response:
  - 204: Password replaced
  - 422: Validation error
*/
func (handler *Handler) resetPassword(writer http.ResponseWriter, httpRequest *http.Request) {
	identity, err := request.RequiredIdentity(httpRequest)
	if err != nil {
		respond.Error(writer, httpRequest, err)
		return
	}

	userID, err := request.IntParam(httpRequest, "userID")
	if err != nil {
		respond.Error(writer, httpRequest, err)
		return
	}

	var body struct {
		Password string `json:"password"`
	}
	if err := request.DecodeJSON(httpRequest, &body); err != nil {
		respond.Error(writer, httpRequest, err)
		return
	}

	validator := &validate.Validator{}
	validator.Required("password", body.Password)
	validator.MinLen("password", body.Password, 8)
	if err := validator.Err(); err != nil {
		respond.Error(writer, httpRequest, err)
		return
	}

	err = handler.usersService.ResetPassword(httpRequest.Context(), identity.UserID, userID, body.Password, middleware.RealIP(httpRequest))
	if err != nil {
		respond.Error(writer, httpRequest, err)
		return
	}

	respond.NoContent(writer)
}

/*
remove soft-deletes an account.

DELETE /api/v1/users/{userID}

Response:
  - 204: Deleted
  - 403: Attempted self deletion
*/
func (handler *Handler) remove(writer http.ResponseWriter, httpRequest *http.Request) {
	identity, err := request.RequiredIdentity(httpRequest)
	if err != nil {
		respond.Error(writer, httpRequest, err)
		return
	}

	userID, err := request.IntParam(httpRequest, "userID")
	if err != nil {
		respond.Error(writer, httpRequest, err)
		return
	}

	if err := handler.usersService.Delete(httpRequest.Context(), identity.UserID, userID, middleware.RealIP(httpRequest)); err != nil {
		respond.Error(writer, httpRequest, err)
		return
	}

	respond.NoContent(writer)
}
