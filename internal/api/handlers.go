package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/rupee-flow/internal/common"
	"github.com/Veraticus/rupee-flow/internal/model"
	"github.com/Veraticus/rupee-flow/internal/service"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type extractRequest struct {
	Message string `json:"message"`
	Sender  string `json:"sender"`
}

type extractBatchRequest struct {
	Messages []extractRequest `json:"messages"`
}

type extractBatchResponse struct {
	Decisions []model.ExtractionDecision `json:"decisions"`
}

type inboundMessage struct {
	ReceivedAt *time.Time `json:"received_at"`
	ID         string     `json:"id"`
	Message    string     `json:"message"`
	Sender     string     `json:"sender"`
}

type saveMessagesRequest struct {
	UserID   string           `json:"user_id"`
	Messages []inboundMessage `json:"messages"`
}

type saveMessagesResponse struct {
	IDs    []string `json:"ids"`
	Stored int      `json:"stored"`
}

type processBatchRequest struct {
	Limit *int `json:"limit"`
}

type processBatchResponse struct {
	Stats        *service.BatchStats `json:"stats"`
	Message      string              `json:"message"`
	Processed    int                 `json:"processed"`
	Transactions int                 `json:"transactions"`
}

type processMessageRequest struct {
	MessageID string `json:"message_id"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	var req extractRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(w, r, err)
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, r, common.ErrEmptyMessage)
		return
	}

	decision := s.extractor.ExtractWithConfidence(model.Message{Body: req.Message, Sender: req.Sender})
	writeJSON(w, http.StatusOK, decision)
}

func (s *Server) handleExtractBatch(w http.ResponseWriter, r *http.Request) {
	var req extractBatchRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(w, r, err)
		return
	}
	if len(req.Messages) > MaxExtractBatch {
		writeError(w, r, fmt.Errorf("%w: at most %d messages per request", errBadRequest, MaxExtractBatch))
		return
	}
	for i, m := range req.Messages {
		if strings.TrimSpace(m.Message) == "" {
			writeError(w, r, fmt.Errorf("message at index %d: %w", i, common.ErrEmptyMessage))
			return
		}
	}

	resp := extractBatchResponse{Decisions: make([]model.ExtractionDecision, 0, len(req.Messages))}
	for _, m := range req.Messages {
		resp.Decisions = append(resp.Decisions, s.extractor.ExtractWithConfidence(model.Message{Body: m.Message, Sender: m.Sender}))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSaveMessages(w http.ResponseWriter, r *http.Request) {
	var req saveMessagesRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(w, r, err)
		return
	}
	if strings.TrimSpace(req.UserID) == "" {
		writeError(w, r, fmt.Errorf("%w: user_id is required", errBadRequest))
		return
	}

	now := time.Now().UTC()
	msgs := make([]model.Message, 0, len(req.Messages))
	for _, in := range req.Messages {
		msg := model.Message{
			ID:         in.ID,
			UserID:     req.UserID,
			Sender:     in.Sender,
			Body:       in.Message,
			ReceivedAt: now,
		}
		if msg.ID == "" {
			msg.ID = uuid.NewString()
		}
		if in.ReceivedAt != nil {
			msg.ReceivedAt = in.ReceivedAt.UTC()
		}
		msgs = append(msgs, msg)
	}

	if err := s.store.SaveMessages(r.Context(), msgs); err != nil {
		writeError(w, r, err)
		return
	}

	resp := saveMessagesResponse{IDs: make([]string, 0, len(msgs)), Stored: len(msgs)}
	for _, m := range msgs {
		resp.IDs = append(resp.IDs, m.ID)
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleProcessBatch(w http.ResponseWriter, r *http.Request) {
	var req processBatchRequest
	if err := decodeJSON(r, &req, true); err != nil {
		writeError(w, r, err)
		return
	}
	limit := s.batchLimit
	if req.Limit != nil {
		limit = *req.Limit
	}
	if limit < 0 {
		writeError(w, r, fmt.Errorf("%w: limit cannot be negative", errBadRequest))
		return
	}
	s.processBatch(w, r, limit)
}

func (s *Server) handleAutoProcess(w http.ResponseWriter, r *http.Request) {
	s.processBatch(w, r, AutoProcessLimit)
}

func (s *Server) processBatch(w http.ResponseWriter, r *http.Request, limit int) {
	stats, err := s.runner.ProcessBatch(r.Context(), limit)
	if errors.Is(err, common.ErrNoMessages) {
		writeJSON(w, http.StatusOK, processBatchResponse{
			Stats:   stats,
			Message: "No unprocessed messages found",
		})
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, processBatchResponse{
		Stats:        stats,
		Message:      "Processing completed successfully",
		Processed:    stats.Messages,
		Transactions: stats.Transactions,
	})
}

func (s *Server) handleProcessMessage(w http.ResponseWriter, r *http.Request) {
	var req processMessageRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(w, r, err)
		return
	}
	if strings.TrimSpace(req.MessageID) == "" {
		writeError(w, r, fmt.Errorf("%w: message_id is required", errBadRequest))
		return
	}

	outcome, err := s.runner.ProcessMessage(r.Context(), req.MessageID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, outcome)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.store.ProcessingStatus(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	filter, err := parseTransactionFilter(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	transactions, err := s.store.ListTransactions(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if transactions == nil {
		transactions = []model.Transaction{}
	}
	writeJSON(w, http.StatusOK, transactions)
}

func (s *Server) handleGetBalance(w http.ResponseWriter, r *http.Request) {
	balance, err := s.store.GetBalance(r.Context(), mux.Vars(r)["user_id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, balance)
}

func parseTransactionFilter(r *http.Request) (service.TransactionFilter, error) {
	q := r.URL.Query()
	filter := service.TransactionFilter{
		UserID: q.Get("user_id"),
		Type:   model.TransactionType(q.Get("type")),
	}
	if filter.Type != "" && !filter.Type.IsValid() {
		return filter, fmt.Errorf("%w: unknown type %q", errBadRequest, filter.Type)
	}

	ints := []struct {
		dst  *int
		name string
	}{
		{&filter.MinConfidence, "min_confidence"},
		{&filter.Limit, "limit"},
		{&filter.Offset, "offset"},
	}
	for _, p := range ints {
		raw := q.Get(p.name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return filter, fmt.Errorf("%w: %s must be a non-negative integer", errBadRequest, p.name)
		}
		*p.dst = n
	}

	dates := []struct {
		dst  **time.Time
		name string
	}{
		{&filter.StartDate, "start"},
		{&filter.EndDate, "end"},
	}
	for _, p := range dates {
		raw := q.Get(p.name)
		if raw == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filter, fmt.Errorf("%w: %s must be RFC 3339", errBadRequest, p.name)
		}
		*p.dst = &t
	}

	return filter, nil
}
