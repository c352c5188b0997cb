package handler_test

import (
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockwatch/internal/feature/quotes/transport/handler"
	"stockwatch/internal/feature/quotes/transport/http/dto"
)

// fakeSubscriber は1つの購読チャネルを払い出すだけのテスト用実装です。
type fakeSubscriber struct {
	ch           chan string
	subscribed   chan struct{}
	mu           sync.Mutex
	unsubscribed bool
}

func (f *fakeSubscriber) Subscribe() (<-chan string, func()) {
	close(f.subscribed)
	return f.ch, func() {
		f.mu.Lock()
		f.unsubscribed = true
		f.mu.Unlock()
	}
}

func TestUpdatesHandler_PushesAction(t *testing.T) {
	gin.SetMode(gin.TestMode)

	sub := &fakeSubscriber{ch: make(chan string, 1), subscribed: make(chan struct{})}
	h := handler.NewUpdatesHandler(sub)
	r := gin.New()
	r.GET("/ws", h.Serve)

	srv := httptest.NewServer(r)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)

	select {
	case <-sub.subscribed:
	case <-time.After(2 * time.Second):
		t.Fatal("handler did not subscribe")
	}
	sub.ch <- "com.stockwatch.ACTION_DATA_UPDATED"

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg dto.DataUpdatedMessage
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "com.stockwatch.ACTION_DATA_UPDATED", msg.Action)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool {
		sub.mu.Lock()
		defer sub.mu.Unlock()
		return sub.unsubscribed
	}, 2*time.Second, 10*time.Millisecond)
}
