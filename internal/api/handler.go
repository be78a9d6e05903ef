package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/language"

	"github.com/eugenenazirov/pizza-dough/internal/calculator"
	"github.com/eugenenazirov/pizza-dough/internal/profile"
	"github.com/eugenenazirov/pizza-dough/internal/storage"
)

type contextKey string

const requestIDContextKey contextKey = "requestID"

const (
	maxProfileBytes = 1 << 20
	maxRequestBytes = 1 << 20
)

// Handler wires calculator and storage dependencies into HTTP handlers.
type Handler struct {
	calculator calculator.Calculator
	storage    storage.Storage

	clock            func() time.Time
	defaultHydration int

	mu        sync.RWMutex
	updatedAt time.Time
	lang      language.Tag
	theme     string
}

// HandlerOption configures Handler behaviour.
type HandlerOption func(*Handler)

// WithClock overrides the time source, primarily for tests.
func WithClock(clock func() time.Time) HandlerOption {
	return func(h *Handler) {
		h.clock = clock
	}
}

// WithDefaultHydration sets the hydration used when a calculate request omits it.
func WithDefaultHydration(percent int) HandlerOption {
	return func(h *Handler) {
		h.defaultHydration = percent
	}
}

// WithPreferences seeds the language and theme reported in profile exports.
func WithPreferences(lang language.Tag, theme string) HandlerOption {
	return func(h *Handler) {
		h.lang = lang
		h.theme = theme
	}
}

// NewHandler constructs a Handler with the provided dependencies.
func NewHandler(calc calculator.Calculator, store storage.Storage, opts ...HandlerOption) *Handler {
	defaults := profile.Default()
	h := &Handler{
		calculator: calc,
		storage:    store,
		clock: func() time.Time {
			return time.Now().UTC()
		},
		defaultHydration: 60,
		lang:             defaults.Lang,
		theme:            defaults.Theme,
	}
	for _, opt := range opts {
		opt(h)
	}
	h.updatedAt = h.clock()
	return h
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	_ = r
	resp := healthResponse{
		Status:    "ok",
		Timestamp: h.clock(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleGetRecipe(w http.ResponseWriter, r *http.Request) {
	_ = r
	recipe, err := h.storage.GetRecipe()
	if err != nil {
		writeInternalError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, recipeResponse{Recipe: recipe, UpdatedAt: h.currentUpdatedAt()})
}

func (h *Handler) handlePutRecipe(w http.ResponseWriter, r *http.Request) {
	var req calculator.Recipe
	if err := decodeStrict(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return
	}

	if err := h.storage.SetRecipe(req); err != nil {
		if errors.Is(err, storage.ErrInvalidRecipe) {
			writeError(w, http.StatusBadRequest, "Invalid recipe", err.Error())
			return
		}
		writeInternalError(w, err)
		return
	}

	h.markUpdated()

	recipe, err := h.storage.GetRecipe()
	if err != nil {
		writeInternalError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, recipeResponse{
		Recipe:    recipe,
		UpdatedAt: h.currentUpdatedAt(),
		Message:   "Recipe updated successfully",
	})
}

func (h *Handler) handleGetEaters(w http.ResponseWriter, r *http.Request) {
	_ = r
	eaters, err := h.storage.GetEaterTypes()
	if err != nil {
		writeInternalError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, eatersResponse{Eaters: eaters, UpdatedAt: h.currentUpdatedAt()})
}

func (h *Handler) handlePutEaters(w http.ResponseWriter, r *http.Request) {
	var req eatersRequest
	if err := decodeStrict(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return
	}

	if len(req.Eaters) == 0 {
		writeError(w, http.StatusBadRequest, "Invalid eater types", "eaters must contain at least one entry")
		return
	}

	if err := h.storage.SetEaterTypes(req.Eaters); err != nil {
		if errors.Is(err, storage.ErrInvalidEaterTypes) {
			writeError(w, http.StatusBadRequest, "Invalid eater types", err.Error())
			return
		}
		writeInternalError(w, err)
		return
	}

	h.markUpdated()

	eaters, err := h.storage.GetEaterTypes()
	if err != nil {
		writeInternalError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, eatersResponse{
		Eaters:    eaters,
		UpdatedAt: h.currentUpdatedAt(),
		Message:   "Eater types updated successfully",
	})
}

func (h *Handler) handleExportProfile(w http.ResponseWriter, r *http.Request) {
	format := profile.FormatJSON
	if raw := strings.TrimSpace(r.URL.Query().Get("format")); raw != "" {
		format = profile.Format(strings.ToLower(raw))
		if format == "yml" {
			format = profile.FormatYAML
		}
	}

	current, err := h.currentProfile()
	if err != nil {
		writeInternalError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := profile.Encode(&buf, format, current); err != nil {
		if errors.Is(err, profile.ErrUnsupportedFormat) {
			writeError(w, http.StatusBadRequest, "Invalid request", err.Error(), "use format=json or format=yaml")
			return
		}
		writeInternalError(w, err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "pizza_cfg."+string(format)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (h *Handler) handleImportProfile(w http.ResponseWriter, r *http.Request) {
	format, err := profile.FormatFromContentType(r.Header.Get("Content-Type"))
	if err != nil {
		writeError(w, http.StatusUnsupportedMediaType, "Unsupported media type", err.Error(), "send application/json or application/yaml")
		return
	}

	base, err := h.currentProfile()
	if err != nil {
		writeInternalError(w, err)
		return
	}

	imported, err := profile.Decode(http.MaxBytesReader(w, r.Body, maxProfileBytes), format, base)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid profile", err.Error())
		return
	}

	if err := h.storage.Replace(imported.Recipe, imported.Eaters); err != nil {
		if errors.Is(err, storage.ErrInvalidRecipe) || errors.Is(err, storage.ErrInvalidEaterTypes) {
			writeError(w, http.StatusBadRequest, "Invalid profile", err.Error())
			return
		}
		writeInternalError(w, err)
		return
	}

	h.mu.Lock()
	h.lang = imported.Lang
	h.theme = imported.Theme
	h.updatedAt = h.clock()
	h.mu.Unlock()

	writeJSON(w, http.StatusOK, profileResponse{
		Recipe:    imported.Recipe,
		Eaters:    imported.Eaters,
		Lang:      imported.Lang.String(),
		Theme:     imported.Theme,
		UpdatedAt: h.currentUpdatedAt(),
		Message:   "Profile imported successfully",
	})
}

func (h *Handler) handleCalculate(w http.ResponseWriter, r *http.Request) {
	var req calculateRequest
	if err := decodeStrict(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return
	}

	recipe, known, err := h.storage.Snapshot()
	if err != nil {
		writeInternalError(w, err)
		return
	}

	eaters, unknown := calculator.ApplyCounts(known, req.Counts)
	if len(unknown) > 0 {
		writeError(w, http.StatusBadRequest, "Invalid request",
			fmt.Sprintf("unknown eater types: %s", strings.Join(unknown, ", ")),
			"GET /api/eaters lists the configured eater types")
		return
	}

	hydration := h.defaultHydration
	if req.HydrationPercent != nil {
		hydration = *req.HydrationPercent
	}

	start := time.Now()
	result, calcErr := h.calculator.Compute(eaters, hydration, req.NoLeftovers, recipe)
	elapsed := time.Since(start)

	if calcErr != nil {
		switch {
		case errors.Is(calcErr, calculator.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, "Invalid request", calcErr.Error())
		case errors.Is(calcErr, calculator.ErrInvalidConfiguration):
			writeError(w, http.StatusUnprocessableEntity, "Invalid recipe", calcErr.Error(), "update the recipe via PUT /api/recipe")
		default:
			writeInternalError(w, calcErr)
		}
		return
	}

	resp := calculateResponse{
		NeededEquivalentPizzas: result.NeededEquivalentPizzas,
		PizzasToMake:           result.PizzasToMake,
		LeftoverPizzas:         result.LeftoverPizzas,
		FlourG:                 result.FlourG,
		WaterMl:                result.WaterMl,
		YeastG:                 result.YeastG,
		SaltG:                  result.SaltG,
		DoughG:                 result.DoughG,
		HydrationPercent:       result.HydrationPercent,
		NoLeftovers:            req.NoLeftovers,
		ReferencePizzaWeightG:  result.ReferencePizzaWeightG,
		Eaters:                 eaters,
		CalculationTimeMs:      elapsed.Milliseconds(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) currentProfile() (profile.Profile, error) {
	recipe, eaters, err := h.storage.Snapshot()
	if err != nil {
		return profile.Profile{}, err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	return profile.Profile{Recipe: recipe, Eaters: eaters, Lang: h.lang, Theme: h.theme}, nil
}

func (h *Handler) currentUpdatedAt() time.Time {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.updatedAt
}

func (h *Handler) markUpdated() {
	h.mu.Lock()
	h.updatedAt = h.clock()
	h.mu.Unlock()
}

func requestIDFromContext(ctx context.Context) string {
	if v := ctx.Value(requestIDContextKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

func decodeStrict(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

type eatersRequest struct {
	Eaters []calculator.EaterType `json:"eaters"`
}

type calculateRequest struct {
	Counts           map[string]int `json:"counts"`
	HydrationPercent *int           `json:"hydrationPercent,omitempty"`
	NoLeftovers      bool           `json:"noLeftovers"`
}

type calculateResponse struct {
	NeededEquivalentPizzas float64                `json:"neededEquivalentPizzas"`
	PizzasToMake           int                    `json:"pizzasToMake"`
	LeftoverPizzas         float64                `json:"leftoverPizzas"`
	FlourG                 float64                `json:"flourG"`
	WaterMl                float64                `json:"waterMl"`
	YeastG                 float64                `json:"yeastG"`
	SaltG                  float64                `json:"saltG"`
	DoughG                 float64                `json:"doughG"`
	HydrationPercent       int                    `json:"hydrationPercent"`
	NoLeftovers            bool                   `json:"noLeftovers"`
	ReferencePizzaWeightG  float64                `json:"referencePizzaWeightG"`
	Eaters                 []calculator.EaterType `json:"eaters"`
	CalculationTimeMs      int64                  `json:"calculationTimeMs"`
}

type recipeResponse struct {
	Recipe    calculator.Recipe `json:"recipe"`
	UpdatedAt time.Time         `json:"updatedAt"`
	Message   string            `json:"message,omitempty"`
}

type eatersResponse struct {
	Eaters    []calculator.EaterType `json:"eaters"`
	UpdatedAt time.Time              `json:"updatedAt"`
	Message   string                 `json:"message,omitempty"`
}

type profileResponse struct {
	Recipe    calculator.Recipe      `json:"recipe"`
	Eaters    []calculator.EaterType `json:"eaters"`
	Lang      string                 `json:"lang"`
	Theme     string                 `json:"theme"`
	UpdatedAt time.Time              `json:"updatedAt"`
	Message   string                 `json:"message,omitempty"`
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

type errorResponse struct {
	Error      string `json:"error"`
	Details    string `json:"details,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message, details string, suggestion ...string) {
	resp := errorResponse{
		Error:   message,
		Details: details,
	}
	if len(suggestion) > 0 {
		resp.Suggestion = suggestion[0]
	}
	writeJSON(w, status, resp)
}

func writeInternalError(w http.ResponseWriter, err error) {
	writeError(w, http.StatusInternalServerError, "Internal error", err.Error())
}
