/*
handlers.go - HTTP API handlers for the leave planner

PURPOSE:
  Exposes the leave calculation engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to the factory
  (parsing and validation), the engine (calculation) and the store.

ENDPOINTS:
  Calculation:
    POST   /api/calculate                 Calculate a plan document
    GET    /api/balances/statutory        Default fund sizes (?weekly_hours=40)
    POST   /api/export/{format}           Export a plan document

  Plans:
    GET    /api/plans                     List saved plans
    POST   /api/plans                     Save a new plan
    GET    /api/plans/{id}                Get a plan
    PUT    /api/plans/{id}                Replace a plan (bumps version)
    DELETE /api/plans/{id}                Delete a plan and its runs
    POST   /api/plans/{id}/calculate      Calculate and record a run
    GET    /api/plans/{id}/runs           Run history, newest first
    GET    /api/plans/{id}/export.{fmt}   Download as xlsx, pdf or ics

  Holidays:
    GET    /api/holidays                  ?region=&year= (year merges public holidays)
    POST   /api/holidays                  Add a custom holiday
    POST   /api/holidays/import?region=   Import an ICS calendar
    DELETE /api/holidays/{id}

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Resource not found
  - 409: Duplicate plan ID
  - 500: Internal errors (logged)

  The engine itself never fails: plan problems come back as warnings in
  a 200 response with is_valid=false.

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/warp/leave-planner/export"
	"github.com/warp/leave-planner/factory"
	"github.com/warp/leave-planner/generic"
	"github.com/warp/leave-planner/leave"
)

// Request bodies above this size are rejected.
const maxBodyBytes = 1 << 20

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store       generic.Store
	PlanFactory *factory.PlanFactory

	// Public holidays; the store's custom holidays are layered on top.
	Holidays generic.HolidayCalendar
	// Region for plans and holiday listings that name none.
	Region string
	Log    *zap.Logger

	now func() time.Time

	mu              sync.Mutex
	currentScenario string
}

// NewHandler creates a handler. A nil calendar means the built-in static
// calendar; a nil logger discards output.
func NewHandler(store generic.Store, holidays generic.HolidayCalendar, log *zap.Logger) *Handler {
	if holidays == nil {
		holidays = leave.StaticCalendar{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		Store:       store,
		PlanFactory: factory.NewPlanFactory(),
		Holidays:    holidays,
		Region:      leave.DefaultRegion,
		Log:         log,
		now:         time.Now,
	}
}

func (h *Handler) calendar() generic.HolidayCalendar {
	return generic.CombinedCalendar{h.Holidays, h.Store}
}

// =============================================================================
// CALCULATION HANDLERS
// =============================================================================

// Calculate runs the engine on the plan document in the body.
// POST /api/calculate
func (h *Handler) Calculate(w http.ResponseWriter, r *http.Request) {
	plan, ok := h.decodePlan(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toCalculationDTO(plan.Run(h.calendar())))
}

// StatutoryBalances returns the default fund sizes for a contract.
// GET /api/balances/statutory?weekly_hours=36
func (h *Handler) StatutoryBalances(w http.ResponseWriter, r *http.Request) {
	weekly := 40.0
	if raw := r.URL.Query().Get("weekly_hours"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 0 {
			writeError(w, http.StatusBadRequest, "weekly_hours must be a non-negative number",
				&generic.FieldError{Field: "weekly_hours", Value: raw, Err: generic.ErrInvalidBalance})
			return
		}
		weekly = v
	}
	writeJSON(w, http.StatusOK, toStatutoryBalancesDTO(generic.Hours(weekly)))
}

// ExportCalculation renders the plan document in the body.
// POST /api/export/{format}
func (h *Handler) ExportCalculation(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(chi.URLParam(r, "format"))
	if err != nil {
		h.fail(w, r, "Unsupported export format", err)
		return
	}
	plan, ok := h.decodePlan(w, r)
	if !ok {
		return
	}
	h.render(w, r, format, plan)
}

// =============================================================================
// PLAN HANDLERS
// =============================================================================

// ListPlans returns all saved plans.
func (h *Handler) ListPlans(w http.ResponseWriter, r *http.Request) {
	records, err := h.Store.ListPlans(r.Context())
	if err != nil {
		h.fail(w, r, "Failed to list plans", err)
		return
	}

	dtos := make([]PlanDTO, 0, len(records))
	for _, rec := range records {
		var pj factory.PlanJSON
		if err := json.Unmarshal([]byte(rec.ConfigJSON), &pj); err != nil {
			h.Log.Warn("skipping unreadable plan", zap.String("plan_id", string(rec.ID)), zap.Error(err))
			continue
		}
		dtos = append(dtos, toPlanDTO(rec, pj))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreatePlan validates and saves a new plan. A missing ID is generated.
func (h *Handler) CreatePlan(w http.ResponseWriter, r *http.Request) {
	plan, ok := h.decodePlan(w, r)
	if !ok {
		return
	}
	if plan.ID == "" {
		plan.ID = generic.PlanID(uuid.New().String())
	}

	rec, err := h.planRecord(plan)
	if err != nil {
		h.fail(w, r, "Failed to encode plan", err)
		return
	}
	if err := h.Store.CreatePlan(r.Context(), rec); err != nil {
		h.fail(w, r, "Failed to create plan", err)
		return
	}
	h.respondPlan(w, r, http.StatusCreated, plan.ID)
}

// GetPlan returns a single plan.
func (h *Handler) GetPlan(w http.ResponseWriter, r *http.Request) {
	h.respondPlan(w, r, http.StatusOK, generic.PlanID(chi.URLParam(r, "id")))
}

// UpdatePlan replaces a plan. The ID in the URL wins over the body.
func (h *Handler) UpdatePlan(w http.ResponseWriter, r *http.Request) {
	id := generic.PlanID(chi.URLParam(r, "id"))
	if _, err := h.Store.GetPlan(r.Context(), id); err != nil {
		h.fail(w, r, "Failed to get plan", err)
		return
	}

	plan, ok := h.decodePlan(w, r)
	if !ok {
		return
	}
	plan.ID = id

	rec, err := h.planRecord(plan)
	if err != nil {
		h.fail(w, r, "Failed to encode plan", err)
		return
	}
	if err := h.Store.SavePlan(r.Context(), rec); err != nil {
		h.fail(w, r, "Failed to save plan", err)
		return
	}
	h.respondPlan(w, r, http.StatusOK, id)
}

// DeletePlan removes a plan and its runs.
func (h *Handler) DeletePlan(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeletePlan(r.Context(), generic.PlanID(chi.URLParam(r, "id"))); err != nil {
		h.fail(w, r, "Failed to delete plan", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// CalculatePlan calculates a stored plan and records the run.
// POST /api/plans/{id}/calculate
func (h *Handler) CalculatePlan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rec, plan, err := h.loadPlan(ctx, generic.PlanID(chi.URLParam(r, "id")))
	if err != nil {
		h.fail(w, r, "Failed to load plan", err)
		return
	}

	calc := plan.Run(h.calendar())
	warnings := toWarningDTOs(calc.Warnings)
	warningsJSON, err := json.Marshal(warnings)
	if err != nil {
		h.fail(w, r, "Failed to encode warnings", err)
		return
	}

	run := generic.CalculationRun{
		ID:           generic.RunID(uuid.New().String()),
		PlanID:       rec.ID,
		PlanVersion:  rec.Version,
		IsValid:      calc.IsValid,
		TotalDays:    calc.TotalDays,
		TotalHours:   calc.TotalHours,
		WarningsJSON: string(warningsJSON),
		CreatedAt:    h.now().UTC(),
	}
	if err := h.Store.SaveRun(ctx, run); err != nil {
		h.fail(w, r, "Failed to record run", err)
		return
	}

	h.Log.Info("plan calculated",
		zap.String("plan_id", string(rec.ID)),
		zap.String("run_id", string(run.ID)),
		zap.Bool("valid", calc.IsValid),
		zap.Int("leave_days", calc.TotalDays),
		zap.Int("warnings", len(calc.Warnings)))

	writeJSON(w, http.StatusOK, PlanCalculationDTO{
		Run:         toRunDTO(run, warnings),
		Calculation: toCalculationDTO(calc),
	})
}

// ListRuns returns the run history of a plan, newest first.
func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := generic.PlanID(chi.URLParam(r, "id"))
	if _, err := h.Store.GetPlan(ctx, id); err != nil {
		h.fail(w, r, "Failed to get plan", err)
		return
	}

	runs, err := h.Store.ListRuns(ctx, id)
	if err != nil {
		h.fail(w, r, "Failed to list runs", err)
		return
	}

	dtos := make([]RunDTO, 0, len(runs))
	for _, run := range runs {
		var warnings []WarningDTO
		if run.WarningsJSON != "" {
			if err := json.Unmarshal([]byte(run.WarningsJSON), &warnings); err != nil {
				h.Log.Warn("unreadable run warnings", zap.String("run_id", string(run.ID)), zap.Error(err))
			}
		}
		dtos = append(dtos, toRunDTO(run, warnings))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ExportPlan renders a stored plan.
// GET /api/plans/{id}/export.{format}
func (h *Handler) ExportPlan(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(chi.URLParam(r, "format"))
	if err != nil {
		h.fail(w, r, "Unsupported export format", err)
		return
	}
	_, plan, err := h.loadPlan(r.Context(), generic.PlanID(chi.URLParam(r, "id")))
	if err != nil {
		h.fail(w, r, "Failed to load plan", err)
		return
	}
	h.render(w, r, format, plan)
}

// =============================================================================
// HOLIDAY HANDLERS
// =============================================================================

// ListHolidays returns custom holidays, or with ?year= every holiday the
// engine would see for that region and year.
// GET /api/holidays
func (h *Handler) ListHolidays(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	region := q.Get("region")

	if raw := q.Get("year"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "year must be an integer",
				&generic.FieldError{Field: "year", Value: raw, Err: generic.ErrInvalidDate})
			return
		}
		if region == "" {
			region = h.Region
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"holidays": toHolidayDTOs(h.calendar().GetHolidays(region, year)),
		})
		return
	}

	holidays, err := h.Store.ListHolidays(r.Context(), region)
	if err != nil {
		h.fail(w, r, "Failed to list holidays", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"holidays": toHolidayDTOs(holidays)})
}

// CreateHoliday adds a custom holiday. An empty region applies everywhere.
// POST /api/holidays
func (h *Handler) CreateHoliday(w http.ResponseWriter, r *http.Request) {
	var req CreateHolidayRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Date == "" || req.Name == "" {
		writeError(w, http.StatusBadRequest, "Date and name are required", nil)
		return
	}

	date, err := generic.ParseDate(req.Date)
	if err != nil {
		h.fail(w, r, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}

	holiday := generic.Holiday{
		ID:        uuid.New().String(),
		Region:    req.Region,
		Date:      date,
		Name:      req.Name,
		Recurring: req.Recurring,
	}
	if err := h.Store.SaveHoliday(r.Context(), holiday); err != nil {
		h.fail(w, r, "Failed to create holiday", err)
		return
	}

	writeJSON(w, http.StatusCreated, toHolidayDTOs([]generic.Holiday{holiday})[0])
}

// ImportHolidays reads an ICS calendar from the body into the store.
// POST /api/holidays/import?region=nl
func (h *Handler) ImportHolidays(w http.ResponseWriter, r *http.Request) {
	region := r.URL.Query().Get("region")
	holidays, err := export.ReadHolidays(http.MaxBytesReader(w, r.Body, maxBodyBytes), region)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid calendar", err)
		return
	}

	if err := h.Store.SaveHolidays(r.Context(), holidays); err != nil {
		h.fail(w, r, "Failed to import holidays", err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"status": "imported",
		"count":  len(holidays),
	})
}

// DeleteHoliday deletes a custom holiday.
// DELETE /api/holidays/{id}
func (h *Handler) DeleteHoliday(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteHoliday(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, "Failed to delete holiday", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "deleted"})
}

// ResetDatabase clears all data.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Reset(r.Context()); err != nil {
		h.fail(w, r, "Failed to reset database", err)
		return
	}
	h.setScenario("")
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// HELPERS
// =============================================================================

// decodePlan reads and validates a plan document, writing the error
// response itself when it fails.
func (h *Handler) decodePlan(w http.ResponseWriter, r *http.Request) (*factory.Plan, bool) {
	var pj factory.PlanJSON
	if err := decodeJSON(r, &pj); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return nil, false
	}
	if pj.Region == "" {
		pj.Region = h.Region
	}
	plan, err := h.PlanFactory.FromJSON(pj)
	if err != nil {
		h.fail(w, r, "Invalid plan", err)
		return nil, false
	}
	return plan, true
}

func (h *Handler) loadPlan(ctx context.Context, id generic.PlanID) (*generic.PlanRecord, *factory.Plan, error) {
	rec, err := h.Store.GetPlan(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	plan, err := h.PlanFactory.ParsePlan(rec.ConfigJSON)
	if err != nil {
		return nil, nil, fmt.Errorf("stored plan %s: %w", id, err)
	}
	return rec, plan, nil
}

func (h *Handler) planRecord(plan *factory.Plan) (generic.PlanRecord, error) {
	cfg, err := h.PlanFactory.Marshal(plan)
	if err != nil {
		return generic.PlanRecord{}, err
	}
	name := plan.Name
	if name == "" {
		name = string(plan.ID)
	}
	return generic.PlanRecord{ID: plan.ID, Name: name, ConfigJSON: cfg}, nil
}

func (h *Handler) respondPlan(w http.ResponseWriter, r *http.Request, status int, id generic.PlanID) {
	rec, err := h.Store.GetPlan(r.Context(), id)
	if err != nil {
		h.fail(w, r, "Failed to get plan", err)
		return
	}
	var pj factory.PlanJSON
	if err := json.Unmarshal([]byte(rec.ConfigJSON), &pj); err != nil {
		h.fail(w, r, "Failed to decode plan", err)
		return
	}
	writeJSON(w, status, toPlanDTO(*rec, pj))
}

// render buffers the document so a failure can still become a JSON error.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, format export.Format, plan *factory.Plan) {
	report := export.Report{
		Name:        plan.Name,
		Calculation: plan.Run(h.calendar()),
		Generated:   h.now(),
	}

	var buf bytes.Buffer
	if err := export.Render(&buf, format, report); err != nil {
		h.fail(w, r, "Failed to render export", err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.Filename(format)))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.Log.Warn("export write interrupted", zap.Error(err))
	}
}

// fail maps err to a status, logging the ones that are our fault.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, message string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.Log.Error(message,
			zap.String("request_id", RequestIDFrom(r.Context())),
			zap.String("path", r.URL.Path),
			zap.Error(err))
	}
	writeError(w, status, message, err)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, generic.ErrDuplicatePlan), errors.Is(err, generic.ErrHolidayConflict):
		return http.StatusConflict
	case generic.IsNotFound(err):
		return http.StatusNotFound
	case generic.IsClientError(err):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
