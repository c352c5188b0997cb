package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"stockwatch/internal/feature/refresh/transport/handler"
)

type spySyncer struct{ calls int }

func (s *spySyncer) SyncImmediately(context.Context) { s.calls++ }

func TestSyncHandler_Sync(t *testing.T) {
	gin.SetMode(gin.TestMode)

	syncer := &spySyncer{}
	h := handler.NewSyncHandler(syncer)
	r := gin.New()
	r.POST("/sync", h.Sync)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/sync", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.JSONEq(t, `{"status":"accepted"}`, w.Body.String())
	assert.Equal(t, 1, syncer.calls)
}
