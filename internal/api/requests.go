package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/jvolk/stockroom/internal/auth"
	"github.com/jvolk/stockroom/internal/model"
	"github.com/jvolk/stockroom/internal/store"
	"github.com/jvolk/stockroom/internal/workflow"
)

// RequestsHandler handles supplies request endpoints.
type RequestsHandler struct {
	DB     *sql.DB
	Engine *workflow.Engine
}

type createRequestRequest struct {
	Lines       []store.NewLine `json:"lines"`
	Description string          `json:"description"`
	Suggestion  string          `json:"suggestion"`
}

type updateStatusRequest struct {
	Status      string `json:"status"`
	DeliveredTo string `json:"delivered_to"`
}

type requestDetail struct {
	Request *model.Request      `json:"request"`
	Lines   []model.RequestLine `json:"lines"`
}

type transitionResponse struct {
	Request *model.Request `json:"request"`
	Warning string         `json:"warning,omitempty"`
}

// actorFromClaims builds the workflow actor for the authenticated caller.
func actorFromClaims(r *http.Request) workflow.Actor {
	claims := GetClaims(r.Context())
	return workflow.Actor{
		UserID:     claims.UserID,
		EmpID:      claims.EmpID,
		Name:       claims.Name,
		Email:      claims.Email,
		Role:       claims.Role,
		Department: claims.Department,
	}
}

// Create handles POST /api/requests. The requester identity and
// department come from the token, never from the body.
func (h *RequestsHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	var req createRequestRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if claims.Department == "" {
		jsonError(w, http.StatusBadRequest, "account has no department")
		return
	}

	requester := store.Requester{EmpID: claims.EmpID, Email: claims.Email, Name: claims.Name}
	created, err := store.CreateRequest(r.Context(), h.DB, requester, claims.Department, req.Lines, req.Description, req.Suggestion)
	if err != nil {
		domainError(w, err)
		return
	}

	slog.Info("request submitted", "request_id", created.ID, "emp_id", claims.EmpID, "department", claims.Department)
	jsonResponse(w, http.StatusCreated, created)
}

// List handles GET /api/requests. The visible set depends on who asks:
// admins and store staff see everything, department heads their own
// department, employees their own requests.
func (h *RequestsHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	var (
		requests []model.Request
		err      error
	)
	switch claims.Role {
	case model.RoleAdmin, model.RoleStore:
		requests, err = store.ListRequests(r.Context(), h.DB)
	case model.RoleHead:
		requests, err = store.ListRequestsByDepartment(r.Context(), h.DB, claims.Department)
	default:
		requests, err = store.ListRequestsByEmployee(r.Context(), h.DB, claims.EmpID)
	}
	if err != nil {
		slog.Error("failed to list requests", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list requests")
		return
	}
	if requests == nil {
		requests = []model.Request{}
	}
	jsonResponse(w, http.StatusOK, requests)
}

// Get handles GET /api/requests/{id}, returning the request and its
// item lines.
func (h *RequestsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request id")
		return
	}

	req, err := store.GetRequest(r.Context(), h.DB, id)
	if err != nil {
		domainError(w, err)
		return
	}

	if !canView(GetClaims(r.Context()), req) {
		jsonError(w, http.StatusForbidden, "insufficient permissions")
		return
	}

	lines, err := store.GetRequestLines(r.Context(), h.DB, id)
	if err != nil {
		slog.Error("failed to get request lines", "error", err, "request_id", id)
		jsonError(w, http.StatusInternalServerError, "failed to get request")
		return
	}
	if lines == nil {
		lines = []model.RequestLine{}
	}

	jsonResponse(w, http.StatusOK, requestDetail{Request: req, Lines: lines})
}

// canView reports whether the caller may read a request. Employees see
// their own, heads their department's, admins and store staff all.
func canView(claims *auth.Claims, req *model.Request) bool {
	switch claims.Role {
	case model.RoleAdmin, model.RoleStore:
		return true
	case model.RoleHead:
		return claims.Department == req.Department
	default:
		return claims.EmpID == req.EmpID
	}
}

// UpdateStatus handles PUT /api/requests/{id}/status. The transition
// table decides which role may perform which move; a successful move
// notifies the requester, and a failed notification is reported as a
// warning rather than failing the call.
func (h *RequestsHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request id")
		return
	}

	var req updateStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	next := model.Status(req.Status)
	if !next.Valid() {
		jsonError(w, http.StatusBadRequest, "unknown status")
		return
	}

	result, err := h.Engine.Transition(r.Context(), actorFromClaims(r), id, next, req.DeliveredTo)
	if err != nil {
		domainError(w, err)
		return
	}

	resp := transitionResponse{Request: result.Request}
	if result.NotifyErr != nil {
		resp.Warning = "status updated but the requester could not be notified"
	}
	jsonResponse(w, http.StatusOK, resp)
}

// Delete handles DELETE /api/requests/{id}. Admin only; works in any
// state and does not restore reserved stock.
func (h *RequestsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request id")
		return
	}

	if err := h.Engine.Delete(r.Context(), id); err != nil {
		domainError(w, err)
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("request deleted", "admin", claims.Email, "request_id", id)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "request deleted"})
}
