package restserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/chrissnell/timbercruise/internal/database"
	"github.com/chrissnell/timbercruise/internal/storage"
	"github.com/chrissnell/timbercruise/pkg/responseformat"
	"github.com/chrissnell/timbercruise/pkg/species"
	"github.com/chrissnell/timbercruise/pkg/stand"
	"github.com/chrissnell/timbercruise/pkg/stem"
	"github.com/chrissnell/timbercruise/pkg/taper"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// MaxTotalHeight bounds the tree heights the server will evaluate
const MaxTotalHeight = taper.MaxTotalHeight

// Handlers contains all HTTP handlers for the REST server
type Handlers struct {
	controller *Controller
	formatter  *responseformat.Formatter
}

// NewHandlers creates a new handlers instance
func NewHandlers(ctrl *Controller) *Handlers {
	return &Handlers{
		controller: ctrl,
		formatter:  responseformat.NewFormatter(),
	}
}

// ListSpecies returns the full species catalog
func (h *Handlers) ListSpecies(w http.ResponseWriter, req *http.Request) {
	all := h.controller.Catalog.All()
	resp := make([]SpeciesResponse, len(all))
	for i, sp := range all {
		resp[i] = newSpeciesResponse(sp)
	}
	h.formatter.WriteResponse(w, req, resp, nil)
}

// GetSpecies returns one species by code or name
func (h *Handlers) GetSpecies(w http.ResponseWriter, req *http.Request) {
	sp, ok := h.lookupSpecies(w, req)
	if !ok {
		return
	}
	h.formatter.WriteResponse(w, req, newSpeciesResponse(sp), nil)
}

// GetProfile evaluates the taper profile for a catalog species
func (h *Handlers) GetProfile(w http.ResponseWriter, req *http.Request) {
	sp, ok := h.lookupSpecies(w, req)
	if !ok {
		return
	}
	dbh, totalHeight, ok := h.treeParams(w, req)
	if !ok {
		return
	}

	profile, err := h.evaluate(req.Context(), sp.Model, sp.Coefficients, dbh, totalHeight)
	if err != nil {
		h.formatter.WriteError(w, req, http.StatusInternalServerError, err.Error())
		return
	}

	h.writeProfile(w, req, sp.Code, sp.Model, dbh, totalHeight, sp.Coefficients, profile)
}

// PostProfile evaluates a profile for an explicit model and coefficient set
func (h *Handlers) PostProfile(w http.ResponseWriter, req *http.Request) {
	var body ProfileRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		h.formatter.WriteError(w, req, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	model, err := taper.ParseModel(body.Model)
	if err != nil {
		h.formatter.WriteError(w, req, http.StatusBadRequest, err.Error())
		return
	}
	if err := checkTree(body.DBH, body.TotalHeight); err != nil {
		h.formatter.WriteError(w, req, http.StatusBadRequest, err.Error())
		return
	}

	profile, err := h.evaluate(req.Context(), model, body.Coefficients, body.DBH, body.TotalHeight)
	if err != nil {
		h.formatter.WriteError(w, req, http.StatusBadRequest, err.Error())
		return
	}

	h.writeProfile(w, req, body.Species, model, body.DBH, body.TotalHeight, body.Coefficients, profile)
}

// GetStem returns merchantable DIB/height, per-acre expansion and an
// automatic cruise of the tree's logs
func (h *Handlers) GetStem(w http.ResponseWriter, req *http.Request) {
	sp, ok := h.lookupSpecies(w, req)
	if !ok {
		return
	}
	dbh, totalHeight, ok := h.treeParams(w, req)
	if !ok {
		return
	}
	plotFactor, cruise, err := cruiseParams(req)
	if err != nil {
		h.formatter.WriteError(w, req, http.StatusBadRequest, err.Error())
		return
	}

	s, err := stem.New(sp, dbh, totalHeight, stem.WithPlotFactor(plotFactor), stem.WithAutoCruise(cruise))
	if err != nil {
		h.formatter.WriteError(w, req, stemErrorStatus(err), err.Error())
		return
	}

	h.formatter.WriteResponse(w, req, newStemResponse(s), nil)
}

// PostStand cruises every tree of a stand and returns its summaries
func (h *Handlers) PostStand(w http.ResponseWriter, req *http.Request) {
	var body StandRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		h.formatter.WriteError(w, req, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	st, status, err := h.buildStand(body)
	if err != nil {
		h.formatter.WriteError(w, req, status, err.Error())
		return
	}

	h.formatter.WriteResponse(w, req, newStandResponse(st.Report()), nil)
}

// buildStand turns a stand request into a cruised stand. The status is the
// HTTP status to report with a non-nil error.
func (h *Handlers) buildStand(body StandRequest) (*stand.Stand, int, error) {
	if len(body.Plots) == 0 {
		return nil, http.StatusBadRequest, errors.New("stand needs at least one plot")
	}

	var inventoryDate time.Time
	if body.InventoryDate != "" {
		d, err := time.Parse(time.DateOnly, body.InventoryDate)
		if err != nil {
			return nil, http.StatusBadRequest, fmt.Errorf("inventory_date must be YYYY-MM-DD: %v", err)
		}
		inventoryDate = d
	}

	cruise := stem.DefaultCruise
	if body.Cruise != nil {
		cruise = *body.Cruise
	}
	if err := checkCruise(cruise); err != nil {
		return nil, http.StatusBadRequest, err
	}

	st := stand.New(body.Name, body.Acres, inventoryDate)
	for i, pr := range body.Plots {
		if math.IsNaN(pr.PlotFactor) || math.IsInf(pr.PlotFactor, 0) {
			return nil, http.StatusBadRequest, fmt.Errorf("plot %d: plot_factor must be finite", i+1)
		}
		plot := stand.NewPlot(i+1, pr.PlotFactor)
		for j, tr := range pr.Trees {
			if err := h.addTree(plot, tr, cruise); err != nil {
				status := http.StatusBadRequest
				if errors.Is(err, species.ErrUnknownSpecies) {
					status = http.StatusNotFound
				} else if !errors.Is(err, taper.ErrTreeBounds) {
					status = stemErrorStatus(err)
				}
				return nil, status, fmt.Errorf("plot %d tree %d: %w", i+1, j+1, err)
			}
		}
		st.AddPlot(plot)
	}
	return st, http.StatusOK, nil
}

// addTree adds a tree to the plot with its field logs, or auto-cruised when
// it has none
func (h *Handlers) addTree(plot *stand.Plot, tr TreeRequest, cruise stem.Cruise) error {
	sp, err := h.controller.Catalog.Lookup(tr.Species)
	if err != nil {
		return err
	}
	if err := checkTree(tr.DBH, tr.TotalHeight); err != nil {
		return err
	}

	var opts []stem.Option
	if len(tr.Logs) == 0 {
		opts = append(opts, stem.WithAutoCruise(cruise))
	}
	s, err := plot.AddTree(sp, tr.DBH, tr.TotalHeight, opts...)
	if err != nil {
		return err
	}
	for _, l := range tr.Logs {
		if err := s.AddLog(l.StemHeight, l.Length, l.Grade, l.Defect); err != nil {
			return err
		}
	}
	return nil
}

// ListRuns returns recently stored profile runs
func (h *Handlers) ListRuns(w http.ResponseWriter, req *http.Request) {
	if h.controller.Store == nil {
		h.formatter.WriteError(w, req, http.StatusServiceUnavailable, "profile storage not enabled")
		return
	}

	limit := 50
	if v := req.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			h.formatter.WriteError(w, req, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	runs, err := h.controller.Store.ListRuns(req.Context(), limit)
	if err != nil {
		h.controller.logger.Errorf("error listing runs: %v", err)
		h.formatter.WriteError(w, req, http.StatusInternalServerError, "error listing profile runs")
		return
	}

	resp := make([]RunSummary, len(runs))
	for i, run := range runs {
		resp[i] = RunSummary{
			ID:          run.ID.String(),
			Species:     run.SpeciesCode,
			Model:       run.Model,
			DBH:         run.DBH,
			TotalHeight: run.TotalHeight,
			CreatedAt:   run.CreatedAt.Format(time.RFC3339),
		}
	}
	h.formatter.WriteResponse(w, req, resp, nil)
}

// GetRun returns one stored profile run with its points
func (h *Handlers) GetRun(w http.ResponseWriter, req *http.Request) {
	if h.controller.Store == nil {
		h.formatter.WriteError(w, req, http.StatusServiceUnavailable, "profile storage not enabled")
		return
	}

	id, err := uuid.Parse(mux.Vars(req)["id"])
	if err != nil {
		h.formatter.WriteError(w, req, http.StatusBadRequest, "invalid run id")
		return
	}

	run, err := h.controller.Store.GetProfile(req.Context(), id)
	if errors.Is(err, database.ErrRunNotFound) {
		h.formatter.WriteError(w, req, http.StatusNotFound, "run not found")
		return
	}
	if err != nil {
		h.controller.logger.Errorf("error fetching run %s: %v", id, err)
		h.formatter.WriteError(w, req, http.StatusInternalServerError, "error fetching profile run")
		return
	}

	h.formatter.WriteResponse(w, req, newRunProfileResponse(run), nil)
}

// GetHealth reports the state of the configured storage backends
func (h *Handlers) GetHealth(w http.ResponseWriter, req *http.Request) {
	resp := HealthResponse{Status: storage.StatusHealthy, Backends: map[string]storage.HealthData{}}
	if h.controller.Health != nil {
		resp.Backends = h.controller.Health.GetAllHealth()
	}
	for _, b := range resp.Backends {
		if b.Status != storage.StatusHealthy {
			resp.Status = "degraded"
		}
	}
	h.formatter.WriteResponse(w, req, resp, nil)
}

// evaluate returns the profile from cache when possible, otherwise computes
// and caches it. Cache failures are logged and never fail the request.
func (h *Handlers) evaluate(ctx context.Context, model taper.Model, coefficients []float64, dbh, totalHeight float64) (taper.Profile, error) {
	cache := h.controller.Cache
	if cache != nil {
		profile, ok, err := cache.Get(ctx, model, coefficients, dbh, totalHeight)
		switch {
		case err != nil:
			h.controller.Metrics.observeCache("error")
			h.controller.logger.Warnf("profile cache lookup failed: %v", err)
		case ok:
			h.controller.Metrics.observeCache("hit")
			return profile, nil
		default:
			h.controller.Metrics.observeCache("miss")
		}
	}

	profile, err := taper.Evaluate(model, dbh, totalHeight, coefficients)
	if err != nil {
		return nil, err
	}

	nonFinite := 0
	for _, pt := range profile {
		if !pt.Finite() {
			nonFinite++
		}
	}
	h.controller.Metrics.observeProfile(model.String(), len(profile), nonFinite)

	if cache != nil {
		if err := cache.Set(ctx, model, coefficients, dbh, totalHeight, profile); err != nil {
			h.controller.logger.Warnf("unable to cache profile: %v", err)
		}
	}
	return profile, nil
}

// writeProfile stores the run when storage is enabled and writes the response
func (h *Handlers) writeProfile(w http.ResponseWriter, req *http.Request, code string, model taper.Model, dbh, totalHeight float64, coefficients []float64, profile taper.Profile) {
	resp := ProfileResponse{
		Species:      code,
		Model:        model.String(),
		DBH:          dbh,
		TotalHeight:  totalHeight,
		Coefficients: coefficients,
		Points:       newPointResponses(profile),
	}

	if h.controller.Store != nil {
		run, err := database.NewProfileRun(code, model, dbh, totalHeight, coefficients, profile)
		if err == nil {
			err = h.controller.Store.SaveProfile(req.Context(), run)
		}
		if err != nil {
			h.controller.logger.Errorf("error storing profile: %v", err)
		} else {
			resp.RunID = run.ID.String()
		}
	}

	h.formatter.WriteResponse(w, req, resp, nil)
}

func (h *Handlers) lookupSpecies(w http.ResponseWriter, req *http.Request) (species.Species, bool) {
	sp, err := h.controller.Catalog.Lookup(mux.Vars(req)["code"])
	if err != nil {
		h.formatter.WriteError(w, req, http.StatusNotFound, err.Error())
		return species.Species{}, false
	}
	return sp, true
}

func (h *Handlers) treeParams(w http.ResponseWriter, req *http.Request) (float64, float64, bool) {
	q := req.URL.Query()

	dbh, err := strconv.ParseFloat(q.Get("dbh"), 64)
	if err != nil {
		h.formatter.WriteError(w, req, http.StatusBadRequest, "dbh parameter is required and must be a number")
		return 0, 0, false
	}
	totalHeight, err := strconv.ParseFloat(q.Get("height"), 64)
	if err != nil {
		h.formatter.WriteError(w, req, http.StatusBadRequest, "height parameter is required and must be a number")
		return 0, 0, false
	}
	if err := checkTree(dbh, totalHeight); err != nil {
		h.formatter.WriteError(w, req, http.StatusBadRequest, err.Error())
		return 0, 0, false
	}
	return dbh, totalHeight, true
}

// cruiseParams reads the optional plot_factor, preferred_length,
// minimum_length and utility_dib query parameters
func cruiseParams(req *http.Request) (float64, stem.Cruise, error) {
	q := req.URL.Query()
	cruise := stem.DefaultCruise

	var plotFactor float64
	if v := q.Get("plot_factor"); v != "" {
		pf, err := strconv.ParseFloat(v, 64)
		if err != nil || math.IsNaN(pf) || math.IsInf(pf, 0) {
			return 0, cruise, errors.New("plot_factor must be a finite number")
		}
		plotFactor = pf
	}

	for _, p := range []struct {
		name string
		dst  *int
	}{
		{"preferred_length", &cruise.PreferredLength},
		{"minimum_length", &cruise.MinimumLength},
		{"utility_dib", &cruise.UtilityDIB},
	} {
		if v := q.Get(p.name); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return 0, cruise, fmt.Errorf("%s must be an integer", p.name)
			}
			*p.dst = n
		}
	}
	return plotFactor, cruise, checkCruise(cruise)
}

// checkCruise rejects cruise settings that cannot produce logs
func checkCruise(c stem.Cruise) error {
	if c.PreferredLength <= 0 || c.MinimumLength <= 0 {
		return errors.New("preferred_length and minimum_length must be positive")
	}
	if c.UtilityDIB < 0 {
		return errors.New("utility_dib must not be negative")
	}
	return nil
}

// stemErrorStatus maps errors from building or cruising a stem to a status.
// Trees whose taper gives no usable merch height or log are unprocessable.
func stemErrorStatus(err error) int {
	switch {
	case errors.Is(err, stem.ErrBelowFormHeight),
		errors.Is(err, stem.ErrNoMerchHeight),
		errors.Is(err, stem.ErrLogHeight),
		errors.Is(err, stem.ErrUngradable),
		errors.Is(err, stem.ErrScribnerRange):
		return http.StatusUnprocessableEntity
	case errors.Is(err, stem.ErrUnknownGrade):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// checkTree rejects measurements the server cannot safely evaluate. Values
// that are merely out of a model's domain still go through.
func checkTree(dbh, totalHeight float64) error {
	return taper.CheckTree(dbh, totalHeight)
}
