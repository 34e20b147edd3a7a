package httpapi

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/viant/phoenixgrid/grid"
	"github.com/viant/phoenixgrid/source"
	"github.com/viant/phoenixgrid/spectrum"
)

// Node is a grid record as served over JSON.
type Node struct {
	Teff     int      `json:"teff"`
	Logg     float64  `json:"logg"`
	FeH      float64  `json:"feh"`
	Alpha    float64  `json:"alpha"`
	Locator  string   `json:"locator,omitempty"`
	Weight   *float64 `json:"weight,omitempty"`
	Distance *float64 `json:"distance,omitempty"`
}

func newNode(r grid.Record) Node {
	return Node{Teff: r.Teff, Logg: r.Logg, FeH: r.FeH, Alpha: r.Alpha, Locator: r.Locator}
}

func weightedNodes(weighted []grid.WeightedRecord) []Node {
	out := make([]Node, len(weighted))
	for i, w := range weighted {
		out[i] = newNode(w.Record)
		weight := w.Weight
		out[i].Weight = &weight
	}
	return out
}

type AxesResponse struct {
	Source  string    `json:"source"`
	Records int       `json:"records"`
	Teff    []float64 `json:"teff"`
	Logg    []float64 `json:"logg"`
	FeH     []float64 `json:"feh"`
	Alpha   []float64 `json:"alpha"`
}

type SpectrumResponse struct {
	Source         string    `json:"source"`
	Mode           string    `json:"mode"`
	Nodes          []Node    `json:"nodes"`
	WavelengthUnit string    `json:"wavelength_unit"`
	FluxUnit       string    `json:"flux_unit"`
	Wavelength     []float64 `json:"wavelength"`
	Flux           []float64 `json:"flux"`
}

type Handler struct {
	registry *source.Registry
	parallel int
	logger   *slog.Logger
}

func NewHandler(registry *source.Registry, parallel int, logger *slog.Logger) *Handler {
	return &Handler{registry: registry, parallel: parallel, logger: logger}
}

func (h *Handler) listSources(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, http.StatusOK, map[string][]string{"sources": h.registry.Names()})
}

func (h *Handler) axes(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	_, idx, err := h.registry.Index(r.Context(), name)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	WriteSuccess(w, http.StatusOK, AxesResponse{
		Source:  name,
		Records: idx.Len(),
		Teff:    idx.AxisValues(grid.Teff),
		Logg:    idx.AxisValues(grid.Logg),
		FeH:     idx.AxisValues(grid.FeH),
		Alpha:   idx.AxisValues(grid.Alpha),
	})
}

func (h *Handler) nearest(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	_, idx, err := h.registry.Index(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	rec, err := grid.NearestSingle(idx, q)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	WriteSuccess(w, http.StatusOK, newNode(rec))
}

func (h *Handler) weights(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	mode, err := parseMode(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	_, idx, err := h.registry.Index(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	weighted, err := grid.Select(idx, q, mode)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	WriteSuccess(w, http.StatusOK, weightedNodes(weighted))
}

func (h *Handler) neighbors(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	k := 8
	if raw := r.URL.Query().Get("k"); raw != "" {
		if k, err = strconv.Atoi(raw); err != nil || k <= 0 {
			h.fail(w, r, badRequest("k must be a positive integer"))
			return
		}
	}
	_, idx, err := h.registry.Index(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	neighbors, err := idx.Neighbors(q, k)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	out := make([]Node, len(neighbors))
	for i, n := range neighbors {
		out[i] = newNode(n.Record)
		d := n.Distance
		out[i].Distance = &d
	}
	WriteSuccess(w, http.StatusOK, out)
}

func (h *Handler) spectrum(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	mode, err := parseMode(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	waveUnit, err := parseUnit(r, "wavelength_unit")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	fluxUnit, err := parseUnit(r, "flux_unit")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	name := chi.URLParam(r, "name")
	src, idx, err := h.registry.Index(r.Context(), name)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	s, weighted, err := source.Spectrum(r.Context(), src, idx, q, mode, h.parallel)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if s, err = spectrum.Convert(s, waveUnit, fluxUnit); err != nil {
		h.fail(w, r, err)
		return
	}
	WriteSuccess(w, http.StatusOK, SpectrumResponse{
		Source:         name,
		Mode:           mode.String(),
		Nodes:          weightedNodes(weighted),
		WavelengthUnit: string(s.WavelengthUnit),
		FluxUnit:       string(s.FluxUnit),
		Wavelength:     s.Wavelength,
		Flux:           s.Flux,
	})
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	code, _ := ToHTTPResponse(err)
	if code >= http.StatusInternalServerError {
		h.logger.Error("request failed", "path", r.URL.Path, "error", err)
	} else {
		h.logger.Warn("request rejected", "path", r.URL.Path, "status", code, "error", err)
	}
	WriteError(w, err)
}
