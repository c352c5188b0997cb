// Package handler はrefreshフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Syncer は即時同期を要求します。
type Syncer interface {
	SyncImmediately(ctx context.Context)
}

// SyncHandler は手動同期のHTTPリクエストを処理します。
type SyncHandler struct {
	syncer Syncer
}

// NewSyncHandler はSyncHandlerを生成します。
func NewSyncHandler(syncer Syncer) *SyncHandler {
	return &SyncHandler{syncer: syncer}
}

// Sync は同期を要求してすぐに202を返します。同期の成否はレスポンスに含めません。
//
// POST /sync
func (h *SyncHandler) Sync(c *gin.Context) {
	h.syncer.SyncImmediately(context.WithoutCancel(c.Request.Context()))
	c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
}
