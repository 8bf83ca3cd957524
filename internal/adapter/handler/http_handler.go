package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/cvagheti/microservice-ddd-hexagonal/internal/core/domain"
	"github.com/cvagheti/microservice-ddd-hexagonal/internal/port"
)

const productsPath = "/api/v1/products"

type HTTPHandler struct {
	commands port.ProductCommandUseCase
	queries  port.ProductQueryUseCase
	logger   *zap.Logger
}

func NewHTTPHandler(commands port.ProductCommandUseCase, queries port.ProductQueryUseCase, logger *zap.Logger) *HTTPHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPHandler{commands: commands, queries: queries, logger: logger}
}

// Routes registers the product API and the health check.
func (h *HTTPHandler) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST "+productsPath, h.CreateProduct)
	mux.HandleFunc("GET "+productsPath, h.ListProducts)
	mux.HandleFunc("GET "+productsPath+"/active", h.ListActiveProducts)
	mux.HandleFunc("GET "+productsPath+"/search", h.SearchProducts)
	mux.HandleFunc("GET "+productsPath+"/statistics", h.GetStatistics)
	mux.HandleFunc("GET "+productsPath+"/{id}", h.GetProduct)
	mux.HandleFunc("PUT "+productsPath+"/{id}", h.UpdateProduct)
	mux.HandleFunc("DELETE "+productsPath+"/{id}", h.DeleteProduct)
	mux.HandleFunc("PATCH "+productsPath+"/{id}/stock/add", h.AddStock)
	mux.HandleFunc("PATCH "+productsPath+"/{id}/stock/remove", h.RemoveStock)
	mux.HandleFunc("PATCH "+productsPath+"/{id}/activate", h.ActivateProduct)
	mux.HandleFunc("PATCH "+productsPath+"/{id}/deactivate", h.DeactivateProduct)
	mux.HandleFunc("GET /health", h.HealthCheck)

	return mux
}

func (h *HTTPHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.validate(); err != nil {
		h.writeError(w, err)
		return
	}

	product, err := h.commands.CreateProduct(r.Context(), req.command())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toProductResponse(product))
}

func (h *HTTPHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.queries.FindProductByID(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(product))
}

func (h *HTTPHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.queries.FindAllProducts(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponses(products))
}

func (h *HTTPHandler) ListActiveProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.queries.FindActiveProducts(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponses(products))
}

func (h *HTTPHandler) SearchProducts(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if strings.TrimSpace(name) == "" {
		writeMessage(w, http.StatusBadRequest, "name query parameter is required")
		return
	}

	products, err := h.queries.FindProductsByName(r.Context(), name)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponses(products))
}

func (h *HTTPHandler) GetStatistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.queries.GetInventoryStatistics(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *HTTPHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var req UpdateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.validate(); err != nil {
		h.writeError(w, err)
		return
	}

	product, err := h.commands.UpdateProduct(r.Context(), r.PathValue("id"), req.command())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(product))
}

func (h *HTTPHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.commands.DeleteProduct(r.Context(), r.PathValue("id")); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *HTTPHandler) AddStock(w http.ResponseWriter, r *http.Request) {
	quantity, err := quantityParam(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	product, err := h.commands.AddStock(r.Context(), r.PathValue("id"), quantity)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(product))
}

func (h *HTTPHandler) RemoveStock(w http.ResponseWriter, r *http.Request) {
	quantity, err := quantityParam(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	product, err := h.commands.RemoveStock(r.Context(), r.PathValue("id"), quantity)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(product))
}

func (h *HTTPHandler) ActivateProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.commands.ActivateProduct(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(product))
}

func (h *HTTPHandler) DeactivateProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.commands.DeactivateProduct(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(product))
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func quantityParam(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("quantity")
	quantity, err := strconv.Atoi(raw)
	if err != nil || quantity <= 0 {
		return 0, fmt.Errorf("%w: quantity must be a positive integer", domain.ErrInvalidArgument)
	}
	return quantity, nil
}

func (h *HTTPHandler) writeError(w http.ResponseWriter, err error) {
	status := httpStatus(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", zap.Error(err))
		message = "internal error"
	}
	writeMessage(w, status, message)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, MessageResponse{Success: false, Message: message})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
