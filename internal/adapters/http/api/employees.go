package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/okian/ewi/internal/domain/model"
)

type createEmployeeRequest struct {
	ID   string `json:"id" validate:"required,excludesall=/\\:"`
	Name string `json:"name" validate:"required"`
}

type jobResponse struct {
	ID    string `json:"id"`
	Title string `json:"title,omitempty"`
}

type employeeResponse struct {
	ID   string        `json:"id"`
	Name string        `json:"name"`
	Jobs []jobResponse `json:"jobs"`
}

// EmployeeHandler serves employee creation and lookup.
type EmployeeHandler struct {
	deps Dependencies
}

// NewEmployeeHandler creates a new employee handler.
func NewEmployeeHandler(deps Dependencies) *EmployeeHandler {
	return &EmployeeHandler{deps: deps}
}

// HandleList handles GET /employees?pattern=.
func (h *EmployeeHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ids, err := h.deps.Employees(r.Context(), r.URL.Query().Get("pattern"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.Formal()
	}
	writeJSON(w, http.StatusOK, map[string][]string{"employees": out})
}

// HandleCreate handles POST /employees.
func (h *EmployeeHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createEmployeeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	rec, err := h.deps.CreateEmployee(r.Context(), model.NewEmployee(req.ID, req.Name))
	if err != nil {
		writeError(w, r, err)
		return
	}
	emp := rec.Who()
	w.Header().Set("Location", "/employees/"+emp.ID.Formal())
	writeJSON(w, http.StatusCreated, employeeResponse{ID: emp.ID.Formal(), Name: emp.Name, Jobs: []jobResponse{}})
}

// HandleGet handles GET /employees/{employeeID}.
func (h *EmployeeHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := model.NewEmployeeID(chi.URLParam(r, "employeeID"))
	rec, err := h.deps.Employee(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jobs, err := h.deps.Jobs(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	resp := employeeResponse{ID: rec.Who().ID.Formal(), Name: rec.Who().Name, Jobs: make([]jobResponse, len(jobs))}
	for i, j := range jobs {
		resp.Jobs[i] = jobResponse{ID: j.Formal(), Title: j.Label()}
	}
	writeJSON(w, http.StatusOK, resp)
}
