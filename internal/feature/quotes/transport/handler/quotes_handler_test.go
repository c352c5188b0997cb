package handler_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"stockwatch/internal/feature/quotes/domain/entity"
	"stockwatch/internal/feature/quotes/transport/handler"
	"stockwatch/internal/shared/history"
)

// mockQuotesUsecase はQuotesUsecaseインターフェースのモック実装です。
type mockQuotesUsecase struct {
	ListQuotesFunc     func(ctx context.Context) ([]entity.QuoteRow, error)
	GetQuoteDetailFunc func(ctx context.Context, symbol string) (entity.QuoteDetail, error)
	ListWidgetRowsFunc func(ctx context.Context) ([]entity.QuoteRow, error)
}

func (m *mockQuotesUsecase) ListQuotes(ctx context.Context) ([]entity.QuoteRow, error) {
	return m.ListQuotesFunc(ctx)
}

func (m *mockQuotesUsecase) GetQuoteDetail(ctx context.Context, symbol string) (entity.QuoteDetail, error) {
	return m.GetQuoteDetailFunc(ctx, symbol)
}

func (m *mockQuotesUsecase) ListWidgetRows(ctx context.Context) ([]entity.QuoteRow, error) {
	return m.ListWidgetRowsFunc(ctx)
}

var aaplRow = entity.QuoteRow{
	Symbol:           "AAPL",
	Price:            190.5,
	PriceText:        "$190.50",
	AbsoluteChange:   1.2,
	PercentageChange: 0.63,
	ChangeText:       "+$1.20",
	Up:               true,
}

const aaplRowJSON = `{"symbol":"AAPL","price":190.5,"price_text":"$190.50","absolute_change":1.2,` +
	`"percentage_change":0.63,"change_text":"+$1.20","up":true}`

func newRouter(uc handler.QuotesUsecase) *gin.Engine {
	h := handler.NewQuotesHandler(uc)
	r := gin.New()
	r.GET("/quotes", h.List)
	r.GET("/quotes/:symbol", h.Detail)
	r.GET("/widget", h.Widget)
	return r
}

func TestQuotesHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		url            string
		uc             *mockQuotesUsecase
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "success: list",
			url:  "/quotes",
			uc: &mockQuotesUsecase{ListQuotesFunc: func(ctx context.Context) ([]entity.QuoteRow, error) {
				return []entity.QuoteRow{aaplRow}, nil
			}},
			expectedStatus: http.StatusOK,
			expectedBody:   `[` + aaplRowJSON + `]`,
		},
		{
			name: "success: empty list is an array",
			url:  "/quotes",
			uc: &mockQuotesUsecase{ListQuotesFunc: func(ctx context.Context) ([]entity.QuoteRow, error) {
				return nil, nil
			}},
			expectedStatus: http.StatusOK,
			expectedBody:   `[]`,
		},
		{
			name: "error: list fails",
			url:  "/quotes",
			uc: &mockQuotesUsecase{ListQuotesFunc: func(ctx context.Context) ([]entity.QuoteRow, error) {
				return nil, errors.New("db down")
			}},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"error":"db down"}`,
		},
		{
			name: "success: widget",
			url:  "/widget",
			uc: &mockQuotesUsecase{ListWidgetRowsFunc: func(ctx context.Context) ([]entity.QuoteRow, error) {
				return []entity.QuoteRow{aaplRow}, nil
			}},
			expectedStatus: http.StatusOK,
			expectedBody:   `[` + aaplRowJSON + `]`,
		},
		{
			name: "success: detail normalizes symbol",
			url:  "/quotes/aapl",
			uc: &mockQuotesUsecase{GetQuoteDetailFunc: func(ctx context.Context, symbol string) (entity.QuoteDetail, error) {
				assert.Equal(t, "AAPL", symbol)
				return entity.QuoteDetail{
					QuoteRow: aaplRow,
					Chart: history.Chart{
						Points: []history.Point{{Millis: 1, Close: 99}, {Millis: 2, Close: 101.5}},
						Min:    99,
						Max:    101.5,
						YAxis:  history.Axis{Min: 99, Max: 103, Step: 1},
					},
				}, nil
			}},
			expectedStatus: http.StatusOK,
			expectedBody: `{"symbol":"AAPL","price":190.5,"price_text":"$190.50","absolute_change":1.2,` +
				`"percentage_change":0.63,"change_text":"+$1.20","up":true,` +
				`"chart":{"points":[{"time":1,"close":99},{"time":2,"close":101.5}],"min":99,"max":101.5,` +
				`"y_axis":{"min":99,"max":103,"step":1}}}`,
		},
		{
			name: "error: detail not found",
			url:  "/quotes/NOPE",
			uc: &mockQuotesUsecase{GetQuoteDetailFunc: func(ctx context.Context, symbol string) (entity.QuoteDetail, error) {
				return entity.QuoteDetail{}, entity.ErrQuoteNotFound
			}},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"error":"quote not found"}`,
		},
		{
			name: "error: detail fails",
			url:  "/quotes/AAPL",
			uc: &mockQuotesUsecase{GetQuoteDetailFunc: func(ctx context.Context, symbol string) (entity.QuoteDetail, error) {
				return entity.QuoteDetail{}, errors.New("boom")
			}},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"error":"boom"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newRouter(tt.uc)

			w := httptest.NewRecorder()
			req, _ := http.NewRequest(http.MethodGet, tt.url, nil)
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
		})
	}
}
