package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/Veraticus/rupee-flow/internal/extract"
	"github.com/Veraticus/rupee-flow/internal/metrics"
	"github.com/Veraticus/rupee-flow/internal/model"
	"github.com/Veraticus/rupee-flow/internal/processing"
	"github.com/Veraticus/rupee-flow/internal/service"
	"github.com/Veraticus/rupee-flow/internal/testutil"
	"github.com/Veraticus/rupee-flow/internal/testutil/messages"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type httpRecord struct {
	route  string
	method string
	status int
}

type httpRecorder struct {
	metrics.NoOpCollector
	mu       sync.Mutex
	requests []httpRecord
}

func (h *httpRecorder) RecordHTTPRequest(route, method string, status int, _ time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.requests = append(h.requests, httpRecord{route: route, method: method, status: status})
}

type testServer struct {
	db       *testutil.TestDB
	server   *Server
	recorder *httpRecorder
}

func newTestServer(t *testing.T, msgs messages.Messages) *testServer {
	t.Helper()
	db := testutil.SetupTestDB(t, msgs)
	extractor := extract.NewDefault()
	recorder := &httpRecorder{}
	registry := prometheus.NewRegistry()

	server := NewServer(Deps{
		Extractor:      extractor,
		Store:          db.Storage,
		Runner:         processing.NewRunner(db.Storage, extractor, processing.Options{}),
		Metrics:        recorder,
		MetricsHandler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	})
	return &testServer{db: db, server: server, recorder: recorder}
}

func (ts *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	ts.server.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", decode[map[string]string](t, rec)["status"])
}

func TestExtract(t *testing.T) {
	ts := newTestServer(t, nil)

	t.Run("transaction", func(t *testing.T) {
		rec := ts.do(t, http.MethodPost, "/api/extract", extractRequest{
			Message: messages.Body(messages.SampleBOBCredit),
			Sender:  messages.Sender(messages.SampleBOBCredit),
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		d := decode[model.ExtractionDecision](t, rec)
		assert.True(t, d.IsTransaction)
		require.True(t, d.Amount.Valid)
		assert.True(t, decimal.NewFromInt(6000).Equal(d.Amount.Decimal))
		assert.Equal(t, model.TransactionCredit, d.TransactionType)
		assert.Equal(t, "9212", d.AccountNumber)
	})

	t.Run("not a transaction", func(t *testing.T) {
		rec := ts.do(t, http.MethodPost, "/api/extract", extractRequest{Message: messages.Body(messages.SampleJugnooOTP)})
		require.Equal(t, http.StatusOK, rec.Code)

		d := decode[model.ExtractionDecision](t, rec)
		assert.False(t, d.IsTransaction)
		assert.Equal(t, model.MessageTypeOTP, d.MessageType)
		assert.Zero(t, d.Confidence)
	})

	tests := []struct {
		name string
		body any
	}{
		{name: "empty message", body: extractRequest{Message: "   "}},
		{name: "malformed json", body: `{"message":`},
		{name: "missing body", body: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.do(t, http.MethodPost, "/api/extract", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.NotEmpty(t, decode[errorResponse](t, rec).Error)
		})
	}

	t.Run("wrong method", func(t *testing.T) {
		rec := ts.do(t, http.MethodGet, "/api/extract", nil)
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}

func TestExtractBatch(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(t, http.MethodPost, "/api/extract/batch", extractBatchRequest{Messages: []extractRequest{
		{Message: messages.Body(messages.SampleBOBCredit)},
		{Message: messages.Body(messages.SampleJioData)},
	}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode[extractBatchResponse](t, rec)
	require.Len(t, resp.Decisions, 2)
	assert.True(t, resp.Decisions[0].IsTransaction)
	assert.Equal(t, model.MessageTypeTelecom, resp.Decisions[1].MessageType)

	rec = ts.do(t, http.MethodPost, "/api/extract/batch", extractBatchRequest{Messages: []extractRequest{
		{Message: "Rs 10 debited from a/c XX1111"},
		{Message: ""},
	}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[errorResponse](t, rec).Error, "index 1")
}

func TestSaveAndProcessMessages(t *testing.T) {
	ts := newTestServer(t, nil)
	received := messages.BaseTime

	rec := ts.do(t, http.MethodPost, "/api/messages", saveMessagesRequest{
		UserID: "alice",
		Messages: []inboundMessage{
			{ID: "sms-1", Message: messages.Body(messages.SampleBOBCredit), Sender: "VM-BOBTXN", ReceivedAt: &received},
			{Message: messages.Body(messages.SampleJioData), Sender: "JX-JIOPAY"},
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	saved := decode[saveMessagesResponse](t, rec)
	assert.Equal(t, 2, saved.Stored)
	require.Len(t, saved.IDs, 2)
	assert.Equal(t, "sms-1", saved.IDs[0])
	assert.NotEmpty(t, saved.IDs[1], "missing ids are generated")

	rec = ts.do(t, http.MethodGet, "/api/processing/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	status := decode[service.ProcessingStatus](t, rec)
	assert.Equal(t, 2, status.TotalMessages)
	assert.Equal(t, 2, status.UnprocessedMessages)

	rec = ts.do(t, http.MethodGet, "/api/balances/alice", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/process-batch", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	processed := decode[processBatchResponse](t, rec)
	assert.Equal(t, 2, processed.Processed)
	assert.Equal(t, 1, processed.Transactions)
	require.NotNil(t, processed.Stats)
	assert.Equal(t, 1, processed.Stats.NonTransactions)

	rec = ts.do(t, http.MethodPost, "/api/process-batch", map[string]int{"limit": 10})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "No unprocessed messages found", decode[processBatchResponse](t, rec).Message)

	rec = ts.do(t, http.MethodGet, "/api/transactions?user_id=alice&type=credit", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	txns := decode[[]model.Transaction](t, rec)
	require.Len(t, txns, 1)
	assert.Equal(t, "sms-1", txns[0].SourceMessageID)

	rec = ts.do(t, http.MethodGet, "/api/balances/alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	balance := decode[model.BalanceSnapshot](t, rec)
	assert.True(t, decimal.RequireFromString("6106.44").Equal(balance.Balance))

	rec = ts.do(t, http.MethodPost, "/api/process-message", processMessageRequest{MessageID: "sms-1"})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestSaveMessages_Invalid(t *testing.T) {
	ts := newTestServer(t, nil)

	tests := []struct {
		name string
		body saveMessagesRequest
	}{
		{name: "missing user", body: saveMessagesRequest{Messages: []inboundMessage{{Message: "hi"}}}},
		{name: "empty message", body: saveMessagesRequest{UserID: "alice", Messages: []inboundMessage{{Message: " "}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.do(t, http.MethodPost, "/api/messages", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestProcessMessage(t *testing.T) {
	msgs := messages.NewBuilder(t).WithSample(messages.SampleBOBCredit).Messages()
	ts := newTestServer(t, msgs)

	rec := ts.do(t, http.MethodPost, "/api/process-message", processMessageRequest{MessageID: "missing"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/process-message", processMessageRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/process-message", processMessageRequest{MessageID: msgs[0].ID})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	outcome := decode[processing.Outcome](t, rec)
	assert.Equal(t, msgs[0].ID, outcome.MessageID)
	require.NotNil(t, outcome.Transaction)
	assert.Equal(t, model.TransactionCredit, outcome.Transaction.Type)
}

func TestAutoProcess(t *testing.T) {
	ts := newTestServer(t, messages.NewBuilder(t).WithFixture(messages.FixtureMixedInbox).Messages())

	rec := ts.do(t, http.MethodPost, "/api/auto-process", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 6, decode[processBatchResponse](t, rec).Processed)
}

func TestListTransactions_BadQuery(t *testing.T) {
	ts := newTestServer(t, nil)

	for _, query := range []string{"type=refund", "limit=-1", "min_confidence=abc", "start=yesterday"} {
		t.Run(query, func(t *testing.T) {
			rec := ts.do(t, http.MethodGet, "/api/transactions?"+query, nil)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}

	rec := ts.do(t, http.MethodGet, "/api/transactions", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestMetricsEndpointAndMiddleware(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(t, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	ts.do(t, http.MethodPost, "/api/extract", extractRequest{Message: ""})
	ts.do(t, http.MethodGet, "/api/balances/bob", nil)

	ts.recorder.mu.Lock()
	defer ts.recorder.mu.Unlock()
	require.Len(t, ts.recorder.requests, 3)
	assert.Equal(t, httpRecord{route: "/metrics", method: http.MethodGet, status: http.StatusOK}, ts.recorder.requests[0])
	assert.Equal(t, httpRecord{route: "/api/extract", method: http.MethodPost, status: http.StatusBadRequest}, ts.recorder.requests[1])
	assert.Equal(t, httpRecord{route: "/api/balances/{user_id}", method: http.MethodGet, status: http.StatusNotFound}, ts.recorder.requests[2])
}
