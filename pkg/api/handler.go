package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/Val0905/INEA/pkg/engine"
	"github.com/Val0905/INEA/pkg/exporter"
	"github.com/Val0905/INEA/pkg/kit"
	"github.com/Val0905/INEA/pkg/upload"
)

// NewRouter returns an http.Handler with all API routes. uploads may be
// nil when the upload service is disabled.
func NewRouter(reg *engine.Registry, uploads *upload.Service, ledger *upload.Ledger, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	mux := http.NewServeMux()
	h := &handler{
		stats:        kit.Logging(logger, "stats")(statsEndpoint(reg)),
		actives:      kit.Logging(logger, "actives")(activesEndpoint(reg)),
		find:         kit.Logging(logger, "find")(findEndpoint(reg)),
		listDatasets: listDatasetsEndpoint(reg),
		reg:          reg,
		ledger:       ledger,
	}

	mux.HandleFunc("GET /v1/health", h.handleHealth)
	mux.HandleFunc("GET /v1/datasets", h.handleListDatasets)
	mux.HandleFunc("POST /v1/datasets/{id}/warmup", h.handleWarmup)
	mux.HandleFunc("GET /v1/datasets/{id}/stats", h.handleStats)
	mux.HandleFunc("GET /v1/datasets/{id}/actives", h.handleActives)
	mux.HandleFunc("GET /v1/datasets/{id}/search", h.handleSearch)
	mux.HandleFunc("GET /v1/datasets/{id}/export", h.handleExport)
	mux.HandleFunc("GET /v1/uploads", h.handleListUploads)
	if uploads != nil {
		mux.Handle("POST /upload", uploads)
	}

	return cors(mux)
}

type handler struct {
	stats        kit.Endpoint
	actives      kit.Endpoint
	find         kit.Endpoint
	listDatasets kit.Endpoint
	reg          *engine.Registry
	ledger       *upload.Ledger
}

// --- health ---

type healthResponse struct {
	Status   string `json:"status"`
	Datasets int    `json:"datasets"`
	Loaded   int    `json:"loaded"`
}

func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:   "ok",
		Datasets: len(h.reg.Specs()),
		Loaded:   h.reg.Loaded(),
	})
}

// --- datasets ---

func (h *handler) handleListDatasets(w http.ResponseWriter, r *http.Request) {
	resp, err := h.listDatasets(r.Context(), nil)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handler) handleWarmup(w http.ResponseWriter, r *http.Request) {
	if err := h.reg.Warmup(r.Context(), r.PathValue("id")); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"kind": "ready"})
}

// --- aggregations ---

func (h *handler) handleStats(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	resp, err := h.stats(r.Context(), &statsReq{
		Dataset:    r.PathValue("id"),
		RegionCode: q.Get("regionCode"),
		RegionName: q.Get("regionName"),
	})
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handler) handleActives(w http.ResponseWriter, r *http.Request) {
	resp, err := h.actives(r.Context(), &activesReq{
		Dataset:    r.PathValue("id"),
		RegionName: r.URL.Query().Get("regionName"),
	})
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- find one ---

func (h *handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	resp, err := h.find(r.Context(), &findReq{
		Dataset:    r.PathValue("id"),
		TaxID:      q.Get("taxId"),
		RegionCode: q.Get("regionCode"),
		RegionName: q.Get("regionName"),
	})
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- export ---

func (h *handler) handleExport(w http.ResponseWriter, r *http.Request) {
	regionName := r.URL.Query().Get("regionName")
	res, err := h.reg.Export(r.Context(), r.PathValue("id"), regionName)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+exporter.Filename(regionName, time.Now())+`"`)
	if err := exporter.Write(w, res); err != nil {
		// Headers are already out; nothing useful can be sent now.
		slog.Default().Error("export write failed", "error", err)
	}
}

// --- uploads ---

func (h *handler) handleListUploads(w http.ResponseWriter, r *http.Request) {
	if h.ledger == nil {
		writeJSON(w, http.StatusOK, map[string]any{"batches": []upload.Batch{}})
		return
	}
	batches, err := h.ledger.List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if batches == nil {
		batches = []upload.Batch{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"batches": batches})
}

// --- helpers ---

// writeEngineError maps the engine error taxonomy onto HTTP statuses.
// A failed request carries only the error message, never a partial result.
func writeEngineError(w http.ResponseWriter, err error) {
	var loadErr *engine.LoadError
	var schemaErr *engine.SchemaError
	switch {
	case errors.Is(err, engine.ErrUnknownDataset):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, engine.ErrInvalidKey), errors.Is(err, engine.ErrWrongKind):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &loadErr):
		writeError(w, http.StatusBadGateway, err.Error())
	case errors.As(err, &schemaErr):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// cors is a simple CORS middleware for the browser front-end.
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
