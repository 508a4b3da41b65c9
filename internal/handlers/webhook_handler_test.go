package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"dealerhub-gin/internal/dto"
	"dealerhub-gin/internal/gateway"
	"dealerhub-gin/internal/services"
	"dealerhub-gin/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubProcessor returns a canned result or error
type stubProcessor struct {
	result *services.HandleResult
	err    error
}

func (s *stubProcessor) HandleEvent(_ context.Context, _ *gateway.WebhookEvent) (*services.HandleResult, error) {
	return s.result, s.err
}

func newWebhookRouter(p services.Processor) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	h := NewWebhookHandler(p, logger.NewNop())
	h.RegisterRoutes(router.Group("/api/v1"))
	return router
}

func postWebhook(t *testing.T, router *gin.Engine, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhook/whatsapp", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestWebhookAcksHandledEvent(t *testing.T) {
	stub := &stubProcessor{result: &services.HandleResult{Kind: gateway.EventNewMessage, Handled: true}}

	rec := postWebhook(t, newWebhookRouter(stub), `{"event":"messages.upsert","instance":"dev-line","data":{}}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())
}

func TestWebhookAcksUnparseableBody(t *testing.T) {
	// retrying a broken payload will never succeed, so it is acked
	stub := &stubProcessor{result: &services.HandleResult{}}

	rec := postWebhook(t, newWebhookRouter(stub), `{not json`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())
}

func TestWebhookFailureCarriesErrorMessage(t *testing.T) {
	stub := &stubProcessor{err: errors.New("datastore unreachable")}

	rec := postWebhook(t, newWebhookRouter(stub), `{"event":"messages.upsert","instance":"dev-line","data":{}}`)

	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "datastore unreachable", resp.Error.Message)
}
