// Package api serves brand and model resolution over HTTP.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"otocrawl/internal/catalog"
	"otocrawl/internal/logger"
	"otocrawl/internal/normalizer"
)

const (
	maxBodyBytes   = 1 << 20
	maxBatchTitles = 1000
)

// HealthResponse is returned by the health endpoint.
type HealthResponse struct {
	Status string `json:"status"`
	Brands int    `json:"brands"`
}

// Resolution is the resolved pair for one title.
type Resolution struct {
	Title string `json:"title"`
	normalizer.Result
}

// BatchRequest is the body of a batch resolve call.
type BatchRequest struct {
	Titles []string `json:"titles"`
}

// BatchResponse lists resolutions in request order.
type BatchResponse struct {
	Count   int          `json:"count"`
	Results []Resolution `json:"results"`
}

// ErrorResponse carries a client or server error message.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Handler handles resolve API requests.
type Handler struct {
	catalog  *catalog.Catalog
	resolver *normalizer.Resolver
	log      *logger.Logger
}

// NewHandler creates a handler over a loaded catalog and its resolver.
func NewHandler(cat *catalog.Catalog, resolver *normalizer.Resolver, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.Discard()
	}

	return &Handler{catalog: cat, resolver: resolver, log: log}
}

// NewRouter registers the API routes.
func NewRouter(h *Handler) *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/health", h.HealthHandler).Methods(http.MethodGet)
	router.HandleFunc("/brands", h.BrandsHandler).Methods(http.MethodGet)
	router.HandleFunc("/brands/{brand}", h.BrandHandler).Methods(http.MethodGet)
	router.HandleFunc("/resolve", h.ResolveHandler).Methods(http.MethodGet)
	router.HandleFunc("/resolve", h.BatchResolveHandler).Methods(http.MethodPost)

	return router
}

// HealthHandler handles health check requests.
func (h *Handler) HealthHandler(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, HealthResponse{Status: "healthy", Brands: h.catalog.Len()})
}

// BrandsHandler lists the catalog in order.
func (h *Handler) BrandsHandler(w http.ResponseWriter, _ *http.Request) {
	brands := h.catalog.Brands()
	if brands == nil {
		brands = []catalog.Brand{}
	}

	h.writeJSON(w, http.StatusOK, brands)
}

// BrandHandler returns one brand and its models.
func (h *Handler) BrandHandler(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["brand"]

	models, ok := h.catalog.Models(name)
	if !ok {
		h.writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "brand not found"})

		return
	}

	if models == nil {
		models = []string{}
	}

	h.writeJSON(w, http.StatusOK, catalog.Brand{Name: name, Models: models})
}

// ResolveHandler resolves the title query parameter. An empty title is
// valid and resolves to the unknown pair.
func (h *Handler) ResolveHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	if !query.Has("title") {
		h.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "title parameter is required"})

		return
	}

	title := query.Get("title")

	h.writeJSON(w, http.StatusOK, Resolution{Title: title, Result: h.resolver.Resolve(title)})
}

// BatchResolveHandler resolves every title of a JSON body.
func (h *Handler) BatchResolveHandler(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid JSON body: " + err.Error()})

		return
	}

	if len(req.Titles) > maxBatchTitles {
		h.writeJSON(w, http.StatusRequestEntityTooLarge, ErrorResponse{Error: "too many titles"})

		return
	}

	resp := BatchResponse{Count: len(req.Titles), Results: make([]Resolution, len(req.Titles))}
	for i, title := range req.Titles {
		resp.Results[i] = Resolution{Title: title, Result: h.resolver.Resolve(title)}
	}

	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error("failed to encode response", "error", err)
	}
}
