package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/printhub/realtime-api/internal/models"
	"github.com/printhub/realtime-api/internal/service"
	apperrors "github.com/printhub/realtime-api/pkg/errors"
)

// ApiResponse is the envelope for every JSON response
type ApiResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Health represents the health check response
type Health struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	Timestamp string `json:"timestamp"`
}

type createOrderRequest struct {
	ShopID        string             `json:"shop_id"`
	CustomerName  string             `json:"customer_name"`
	CustomerPhone string             `json:"customer_phone"`
	OrderType     string             `json:"order_type"`
	Description   string             `json:"description"`
	Files         []models.FileInput `json:"files"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

type addFilesRequest struct {
	Files []models.FileInput `json:"files"`
}

// healthCheckHandler handles the health check endpoint
func (s *Server) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	health := Health{
		Status:    "ok",
		Version:   "0.1.0",
		Timestamp: time.Now().Format(time.RFC3339),
	}

	s.respondWithJSON(w, http.StatusOK, ApiResponse{
		Success: true,
		Data:    health,
	})
}

// createOrderHandler creates a new order
func (s *Server) createOrderHandler(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	decoder := json.NewDecoder(r.Body)

	if err := decoder.Decode(&req); err != nil {
		s.respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	defer r.Body.Close()

	order, err := s.orderService.CreateOrder(r.Context(), service.CreateOrderInput{
		ShopID:        req.ShopID,
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		OrderType:     models.OrderType(req.OrderType),
		Description:   req.Description,
		Files:         req.Files,
	})

	if err != nil {
		s.respondWithServiceError(w, err)
		return
	}

	s.respondWithJSON(w, http.StatusCreated, ApiResponse{
		Success: true,
		Data:    order,
	})
}

// getOrderHandler returns an order by ID
func (s *Server) getOrderHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	order, err := s.orderService.GetOrder(r.Context(), id)

	if err != nil {
		s.respondWithServiceError(w, err)
		return
	}

	s.respondWithJSON(w, http.StatusOK, ApiResponse{
		Success: true,
		Data:    order,
	})
}

// getShopOrdersHandler returns a shop's orders with pagination
func (s *Server) getShopOrdersHandler(w http.ResponseWriter, r *http.Request) {
	shopID := mux.Vars(r)["shopId"]
	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)

	orders, err := s.orderService.GetShopOrders(r.Context(), shopID, limit, offset)

	if err != nil {
		s.respondWithServiceError(w, err)
		return
	}

	s.respondWithJSON(w, http.StatusOK, ApiResponse{
		Success: true,
		Data:    orders,
	})
}

// updateOrderStatusHandler applies a status transition to an order
func (s *Server) updateOrderStatusHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req updateStatusRequest
	decoder := json.NewDecoder(r.Body)

	if err := decoder.Decode(&req); err != nil {
		s.respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	defer r.Body.Close()

	order, err := s.orderService.UpdateStatus(r.Context(), id, models.OrderStatus(req.Status))

	if err != nil {
		s.respondWithServiceError(w, err)
		return
	}

	s.respondWithJSON(w, http.StatusOK, ApiResponse{
		Success: true,
		Data:    order,
	})
}

// toggleUrgencyHandler flips an order's urgency flag
func (s *Server) toggleUrgencyHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	order, err := s.orderService.ToggleUrgency(r.Context(), id)

	if err != nil {
		s.respondWithServiceError(w, err)
		return
	}

	s.respondWithJSON(w, http.StatusOK, ApiResponse{
		Success: true,
		Data:    order,
	})
}

// addOrderFilesHandler attaches files to an existing order
func (s *Server) addOrderFilesHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req addFilesRequest
	decoder := json.NewDecoder(r.Body)

	if err := decoder.Decode(&req); err != nil {
		s.respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	defer r.Body.Close()

	order, err := s.orderService.AddFiles(r.Context(), id, req.Files)

	if err != nil {
		s.respondWithServiceError(w, err)
		return
	}

	s.respondWithJSON(w, http.StatusOK, ApiResponse{
		Success: true,
		Data:    order,
	})
}

// respondWithServiceError maps a service error to its HTTP status
func (s *Server) respondWithServiceError(w http.ResponseWriter, err error) {
	s.respondWithError(w, apperrors.StatusCode(err), err.Error())
}

// respondWithError sends a JSON response with an error message
func (s *Server) respondWithError(w http.ResponseWriter, code int, message string) {
	s.respondWithJSON(w, code, ApiResponse{
		Success: false,
		Error:   message,
	})
}

// respondWithJSON sends a JSON response
func (s *Server) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)

	if err != nil {
		s.logger.Error("Failed to marshal response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func queryInt(r *http.Request, key string, defaultValue int) int {
	raw := r.URL.Query().Get(key)

	if raw == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return defaultValue
	}

	return value
}
