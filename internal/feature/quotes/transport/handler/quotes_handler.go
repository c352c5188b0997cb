// Package handler はquotesフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"stockwatch/internal/feature/quotes/domain/entity"
	"stockwatch/internal/feature/quotes/transport/http/dto"
)

// QuotesUsecase は表示用の読み取りユースケースです。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type QuotesUsecase interface {
	ListQuotes(ctx context.Context) ([]entity.QuoteRow, error)
	GetQuoteDetail(ctx context.Context, symbol string) (entity.QuoteDetail, error)
	ListWidgetRows(ctx context.Context) ([]entity.QuoteRow, error)
}

// QuotesHandler は一覧・詳細・ウィジェットのHTTPリクエストを処理します。
type QuotesHandler struct {
	uc QuotesUsecase
}

// NewQuotesHandler はQuotesHandlerを生成します。
func NewQuotesHandler(uc QuotesUsecase) *QuotesHandler {
	return &QuotesHandler{uc: uc}
}

// List は保存済みの全銘柄を返します。
//
// GET /quotes
func (h *QuotesHandler) List(c *gin.Context) {
	rows, err := h.uc.ListQuotes(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, toRowResponses(rows))
}

// Widget はウィジェット用の行を返します。
//
// GET /widget
func (h *QuotesHandler) Widget(c *gin.Context) {
	rows, err := h.uc.ListWidgetRows(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, toRowResponses(rows))
}

// Detail は1銘柄の詳細とチャートを返します。
//
// GET /quotes/:symbol
func (h *QuotesHandler) Detail(c *gin.Context) {
	symbol := strings.ToUpper(strings.TrimSpace(c.Param("symbol")))

	d, err := h.uc.GetQuoteDetail(c.Request.Context(), symbol)
	if errors.Is(err, entity.ErrQuoteNotFound) {
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, dto.QuoteDetailResponse{
		QuoteRowResponse: toRowResponse(d.QuoteRow),
		Chart:            d.Chart,
	})
}

func toRowResponses(rows []entity.QuoteRow) []dto.QuoteRowResponse {
	out := make([]dto.QuoteRowResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, toRowResponse(r))
	}
	return out
}

func toRowResponse(r entity.QuoteRow) dto.QuoteRowResponse {
	return dto.QuoteRowResponse{
		Symbol:           r.Symbol,
		Price:            r.Price,
		PriceText:        r.PriceText,
		AbsoluteChange:   r.AbsoluteChange,
		PercentageChange: r.PercentageChange,
		ChangeText:       r.ChangeText,
		Up:               r.Up,
	}
}
