package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/yutaka-m/invoicer/internal/models"
	"github.com/yutaka-m/invoicer/internal/render"
	"github.com/yutaka-m/invoicer/internal/service"
	"github.com/yutaka-m/invoicer/internal/source"
)

// stateResponse reports one of the user-visible outcome states: ok,
// no_products, transport_error, export_in_progress, export_failed.
type stateResponse struct {
	State string `json:"state"`
	Error string `json:"error,omitempty"`
}

type catalogResponse struct {
	State    string           `json:"state"`
	Products []models.Product `json:"products"`
}

type cartResponse struct {
	Items []models.LineItem `json:"items"`
}

type invoiceResponse struct {
	Invoice models.Invoice `json:"invoice"`
	Totals  models.Totals  `json:"totals"`
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	index, err := staticFiles.ReadFile("static/index.html")
	if err != nil {
		http.Error(w, "index not found", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(index)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, stateResponse{State: "ok"})
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	products := s.service.Catalog()
	state := "ok"
	if len(products) == 0 {
		state = "no_products"
		products = []models.Product{}
	}
	respondJSON(w, http.StatusOK, catalogResponse{State: state, Products: products})
}

func (s *Server) handleRefreshCatalog(w http.ResponseWriter, r *http.Request) {
	err := s.service.RefreshCatalog(r.Context())
	switch {
	case errors.Is(err, source.ErrUnavailable):
		respondJSON(w, http.StatusBadGateway, stateResponse{State: "transport_error", Error: err.Error()})
	case errors.Is(err, service.ErrNoProducts):
		respondJSON(w, http.StatusOK, catalogResponse{State: "no_products", Products: []models.Product{}})
	case err != nil:
		respondJSON(w, http.StatusInternalServerError, stateResponse{State: "error", Error: err.Error()})
	default:
		respondJSON(w, http.StatusOK, catalogResponse{State: "ok", Products: s.service.Catalog()})
	}
}

func (s *Server) handleAddItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductID string `json:"productId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, stateResponse{State: "error", Error: "invalid request body"})
		return
	}

	// Unknown product IDs are silent no-ops: the response is simply the
	// unchanged cart.
	respondJSON(w, http.StatusOK, cartResponse{Items: s.service.AddToCart(req.ProductID)})
}

func (s *Server) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req struct {
		Quantity any `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, stateResponse{State: "error", Error: "invalid request body"})
		return
	}

	respondJSON(w, http.StatusOK, cartResponse{Items: s.service.UpdateQuantity(id, coerceQuantity(req.Quantity))})
}

// coerceQuantity normalizes whatever the form field sent. Anything that
// is not a positive number collapses to 0 here and is clamped to 1 by
// the calculator, so a non-positive quantity never persists.
func coerceQuantity(v any) int {
	switch q := v.(type) {
	case float64:
		return int(q)
	case string:
		n, err := strconv.Atoi(q)
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

func (s *Server) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	respondJSON(w, http.StatusOK, cartResponse{Items: s.service.RemoveFromCart(id)})
}

func (s *Server) handleSetCustomer(w http.ResponseWriter, r *http.Request) {
	var customer models.Customer
	if err := json.NewDecoder(r.Body).Decode(&customer); err != nil {
		respondJSON(w, http.StatusBadRequest, stateResponse{State: "error", Error: "invalid request body"})
		return
	}
	s.service.SetCustomer(customer)
	respondJSON(w, http.StatusOK, customer)
}

func (s *Server) handleInvoice(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, invoiceResponse{
		Invoice: s.service.Invoice(),
		Totals:  s.service.Totals(),
	})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	pdf, filename, err := s.service.Export(r.Context())
	switch {
	case errors.Is(err, render.ErrExportInProgress):
		respondJSON(w, http.StatusConflict, stateResponse{State: "export_in_progress", Error: err.Error()})
		return
	case err != nil:
		// One-shot failure: the in-progress flag is already reset, so the
		// client may retry immediately.
		respondJSON(w, http.StatusBadGateway, stateResponse{State: "export_failed", Error: err.Error()})
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename*=UTF-8''%s`, url.PathEscape(filename)))
	w.WriteHeader(http.StatusOK)
	w.Write(pdf)
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}
