package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/printhub/realtime-api/internal/models"
)

type sendMessageRequest struct {
	SenderType string `json:"sender_type"`
	SenderID   string `json:"sender_id"`
	Body       string `json:"body"`
}

// sendMessageHandler appends a chat message to an order's conversation
func (s *Server) sendMessageHandler(w http.ResponseWriter, r *http.Request) {
	orderID := mux.Vars(r)["id"]

	var req sendMessageRequest
	decoder := json.NewDecoder(r.Body)

	if err := decoder.Decode(&req); err != nil {
		s.respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	defer r.Body.Close()

	message, err := s.chatService.SendMessage(
		r.Context(),
		orderID,
		models.SenderType(req.SenderType),
		req.SenderID,
		req.Body,
	)

	if err != nil {
		s.respondWithServiceError(w, err)
		return
	}

	s.respondWithJSON(w, http.StatusCreated, ApiResponse{
		Success: true,
		Data:    message,
	})
}

// getChatHistoryHandler returns an order's chat history, oldest first
func (s *Server) getChatHistoryHandler(w http.ResponseWriter, r *http.Request) {
	orderID := mux.Vars(r)["id"]

	messages, err := s.chatService.GetHistory(r.Context(), orderID)

	if err != nil {
		s.respondWithServiceError(w, err)
		return
	}

	if messages == nil {
		messages = []*models.ChatMessage{}
	}

	s.respondWithJSON(w, http.StatusOK, ApiResponse{
		Success: true,
		Data:    messages,
	})
}
