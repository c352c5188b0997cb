package router

import (
	"github.com/gin-gonic/gin"

	quoteshandler "stockwatch/internal/feature/quotes/transport/handler"
	refreshhandler "stockwatch/internal/feature/refresh/transport/handler"
	watchlisthandler "stockwatch/internal/feature/watchlist/transport/handler"
	platformhandler "stockwatch/internal/platform/http/handler"
	jwtmw "stockwatch/internal/platform/jwt"
)

// Handlers はルーターに登録するハンドラーの一式です。
type Handlers struct {
	Health    *platformhandler.HealthHandler
	Quotes    *quoteshandler.QuotesHandler
	Updates   *quoteshandler.UpdatesHandler
	Watchlist *watchlisthandler.WatchlistHandler
	Sync      *refreshhandler.SyncHandler
}

// NewRouter は読み取りを公開し、変更系をJWTで保護したルーターを返します。
func NewRouter(h Handlers, jwtSecret string) *gin.Engine {
	r := gin.Default()

	// 認証不要
	// 導通確認用
	r.GET("/healthz", h.Health.Health)
	r.HEAD("/healthz", h.Health.Health)

	// 一覧・詳細・ウィジェット
	r.GET("/quotes", h.Quotes.List)
	r.GET("/quotes/:symbol", h.Quotes.Detail)
	r.GET("/widget", h.Quotes.Widget)
	// データ更新のプッシュ
	r.GET("/ws", h.Updates.Serve)

	r.GET("/watchlist", h.Watchlist.List)
	r.GET("/display-mode", h.Watchlist.DisplayMode)

	// 認証必須のルート
	auth := r.Group("/")
	auth.Use(jwtmw.AuthRequired(jwtSecret))
	{
		auth.POST("/watchlist", h.Watchlist.Add)
		auth.DELETE("/watchlist/:symbol", h.Watchlist.Remove)
		auth.POST("/display-mode/toggle", h.Watchlist.ToggleDisplayMode)
		auth.POST("/sync", h.Sync.Sync)
	}

	return r
}
