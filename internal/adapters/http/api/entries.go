package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/okian/ewi/internal/domain/employee"
	"github.com/okian/ewi/internal/domain/model"
	"github.com/okian/ewi/internal/domain/record"
)

type entryRequest struct {
	Date    string    `json:"date" validate:"required,datetime=2006-01-02"`
	Note    string    `json:"note"`
	Metrics []float64 `json:"metrics" validate:"required,min=1"`
}

type updateEntryRequest struct {
	Note    string    `json:"note"`
	Metrics []float64 `json:"metrics" validate:"required,min=1"`
}

type surveyRequest struct {
	// Responses holds the date, one answer per question, then the notes.
	Responses []string `json:"responses" validate:"required,min=3"`
}

type entryResponse struct {
	Date    model.Date `json:"date"`
	Note    string     `json:"note"`
	Metrics []float64  `json:"metrics"`
}

type indexResponse struct {
	Employee string    `json:"employee"`
	Job      string    `json:"job"`
	Category string    `json:"category"`
	Range    string    `json:"range"`
	Means    []float64 `json:"means"`
	Index    []float64 `json:"index"`
}

func toEntryResponse(e record.Entry) entryResponse {
	metrics := e.Metrics()
	if metrics == nil {
		metrics = []float64{}
	}
	return entryResponse{Date: e.Date(), Note: e.Note(), Metrics: metrics}
}

// EntryHandler serves one job category history of one employee.
type EntryHandler struct {
	deps Dependencies
}

// NewEntryHandler creates a new entry handler.
func NewEntryHandler(deps Dependencies) *EntryHandler {
	return &EntryHandler{deps: deps}
}

// target holds the path parameters shared by every entry route.
type target struct {
	employee model.EmployeeID
	job      model.JobID
	category employee.Category
}

func parseTarget(r *http.Request) (target, error) {
	c, err := employee.ParseCategory(chi.URLParam(r, "category"))
	if err != nil {
		return target{}, err
	}
	return target{
		employee: model.NewEmployeeID(chi.URLParam(r, "employeeID")),
		job:      model.NewJobID(chi.URLParam(r, "jobID")),
		category: c,
	}, nil
}

// parseRange reads the optional from and to query parameters.
func parseRange(r *http.Request) (record.DateRange, error) {
	var rng record.DateRange
	q := r.URL.Query()
	if s := q.Get("from"); s != "" {
		d, err := model.ParseDate(s)
		if err != nil {
			return rng, err
		}
		rng.Min = &d
	}
	if s := q.Get("to"); s != "" {
		d, err := model.ParseDate(s)
		if err != nil {
			return rng, err
		}
		rng.Max = &d
	}
	return rng, nil
}

// HandleList handles GET .../{category}?from=&to=.
func (h *EntryHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	t, err := parseTarget(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	rng, err := parseRange(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	entries, err := h.deps.Entries(r.Context(), t.employee, t.job, t.category, rng)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]entryResponse, len(entries))
	for i, e := range entries {
		out[i] = toEntryResponse(e)
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": out})
}

// HandleAdd handles POST .../{category}.
func (h *EntryHandler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	t, err := parseTarget(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req entryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	d, err := model.ParseDate(req.Date)
	if err != nil {
		writeError(w, r, err)
		return
	}
	e := record.NewEntry(d, req.Note, req.Metrics)
	if err := h.deps.AddEntry(r.Context(), t.employee, t.job, t.category, e); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toEntryResponse(e))
}

// HandleSurvey handles POST .../{category}/survey with raw form answers.
func (h *EntryHandler) HandleSurvey(w http.ResponseWriter, r *http.Request) {
	t, err := parseTarget(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req surveyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	e, err := h.deps.SubmitSurvey(r.Context(), t.employee, t.job, t.category, req.Responses)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toEntryResponse(e))
}

// HandleUpdate handles PUT .../{category}/{date}.
func (h *EntryHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	t, err := parseTarget(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	d, err := model.ParseDate(chi.URLParam(r, "date"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req updateEntryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	e := record.NewEntry(d, req.Note, req.Metrics)
	if err := h.deps.UpdateEntry(r.Context(), t.employee, t.job, t.category, e); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toEntryResponse(e))
}

// HandleDelete handles DELETE .../{category}/{date}.
func (h *EntryHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	t, err := parseTarget(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	d, err := model.ParseDate(chi.URLParam(r, "date"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.deps.RemoveEntry(r.Context(), t.employee, t.job, t.category, d); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleIndex handles GET .../{category}/index?from=&to=.
func (h *EntryHandler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	t, err := parseTarget(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	rng, err := parseRange(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.deps.Index(r.Context(), t.employee, t.job, t.category, rng)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, indexResponse{
		Employee: t.employee.Formal(),
		Job:      t.job.Formal(),
		Category: t.category.String(),
		Range:    fmt.Sprint(rng),
		Means:    res.Means,
		Index:    res.Index,
	})
}
