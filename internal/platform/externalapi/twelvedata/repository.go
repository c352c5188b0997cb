package twelvedata

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"stockwatch/internal/feature/refresh/domain/entity"
	"stockwatch/internal/feature/refresh/usecase"
	"stockwatch/internal/platform/externalapi/twelvedata/dto"
	"stockwatch/internal/shared/history"
)

const (
	weeklyInterval = "1week"
	dateLayout     = "2006-01-02"
	maxOutputSize  = 5000
)

// TwelveDataMarket はTwelve Data外部APIから株価と週次履歴を取得するMarketRepository実装です。
type TwelveDataMarket struct {
	cfg    Config
	client *http.Client
}

// TwelveDataMarketがMarketRepositoryを実装していることをコンパイル時に検証します。
var _ usecase.MarketRepository = (*TwelveDataMarket)(nil)

// NewTwelveDataMarket は指定された設定とHTTPクライアントでTwelveDataMarketの新しいインスタンスを生成します。
func NewTwelveDataMarket(cfg Config, client *http.Client) *TwelveDataMarket {
	return &TwelveDataMarket{cfg: cfg, client: client}
}

// GetQuotes は /quote に全銘柄をカンマ区切りで1回だけ問い合わせます。
// 解決できなかった銘柄は結果に含まれません。
func (t *TwelveDataMarket) GetQuotes(ctx context.Context, symbols []string) (map[string]entity.MarketQuote, error) {
	out := make(map[string]entity.MarketQuote, len(symbols))
	if len(symbols) == 0 {
		return out, nil
	}

	q := url.Values{}
	q.Set("symbol", strings.Join(symbols, ","))

	var raw map[string]json.RawMessage
	if err := t.get(ctx, "quote", q, &raw); err != nil {
		return nil, err
	}

	// 1銘柄なら平坦なオブジェクト、複数なら銘柄をキーにしたオブジェクト
	if _, single := raw["symbol"]; single || raw["status"] != nil {
		var r dto.QuoteResponse
		if err := remarshal(raw, &r); err != nil {
			return nil, err
		}
		if r.Status == "error" {
			if unresolved(r.Code) {
				slog.Info("twelvedata could not resolve symbols", "symbols", symbols, "message", r.Message)
				return out, nil
			}
			return nil, fmt.Errorf("twelvedata: %s", r.Message)
		}
		sym := strings.ToUpper(r.Symbol)
		if sym == "" && len(symbols) == 1 {
			sym = symbols[0]
		}
		out[sym] = toMarketQuote(sym, r)
		return out, nil
	}

	for key, body := range raw {
		var r dto.QuoteResponse
		if err := json.Unmarshal(body, &r); err != nil {
			return nil, fmt.Errorf("decode quote %s: %w", key, err)
		}
		if r.Status == "error" {
			slog.Info("twelvedata could not resolve symbol", "symbol", key, "message", r.Message)
			continue
		}
		sym := strings.ToUpper(key)
		out[sym] = toMarketQuote(sym, r)
	}
	return out, nil
}

// GetWeeklyHistory は /time_series から[from, to]の週次終値を新しい順で返します。
func (t *TwelveDataMarket) GetWeeklyHistory(ctx context.Context, symbol string, from, to time.Time) ([]history.Point, error) {
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("interval", weeklyInterval)
	q.Set("start_date", from.UTC().Format(dateLayout))
	q.Set("end_date", to.UTC().Format(dateLayout))
	q.Set("order", "desc")
	q.Set("outputsize", strconv.Itoa(maxOutputSize))

	var body dto.TimeSeriesResponse
	if err := t.get(ctx, "time_series", q, &body); err != nil {
		return nil, err
	}
	if body.Status == "error" {
		// 履歴が無い銘柄は空の履歴として扱う
		if unresolved(body.Code) {
			slog.Info("twelvedata has no history for symbol", "symbol", symbol, "message", body.Message)
			return []history.Point{}, nil
		}
		return nil, fmt.Errorf("twelvedata: %s", body.Message)
	}

	points := make([]history.Point, 0, len(body.Values))
	for _, v := range body.Values {
		tm, err := time.Parse("2006-01-02 15:04:05", v.Datetime)
		if err != nil {
			tm, err = time.Parse(dateLayout, v.Datetime)
			if err != nil {
				return nil, fmt.Errorf("parse time %q: %w", v.Datetime, err)
			}
		}
		c, err := strconv.ParseFloat(v.Close, 64)
		if err != nil {
			return nil, fmt.Errorf("parse close %q: %w", v.Close, err)
		}
		points = append(points, history.Point{Millis: tm.UnixMilli(), Close: c})
	}
	return points, nil
}

// get はAPIキーを付けてGETし、JSONをoutにデコードします。
func (t *TwelveDataMarket) get(ctx context.Context, path string, q url.Values, out any) error {
	q.Set("apikey", t.cfg.APIKey)
	u := fmt.Sprintf("%s/%s?%s", strings.TrimRight(t.cfg.BaseURL, "/"), path, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}

	res, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode >= 400 {
		return fmt.Errorf("twelvedata http %d", res.StatusCode)
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// unresolved はAPIエラーコードが「銘柄が見つからない」系かを判定します。
func unresolved(code int) bool {
	return code == http.StatusBadRequest || code == http.StatusNotFound
}

func toMarketQuote(symbol string, r dto.QuoteResponse) entity.MarketQuote {
	return entity.MarketQuote{
		Symbol:           symbol,
		Price:            parseOptional(r.Close),
		AbsoluteChange:   parseOptional(r.Change),
		PercentageChange: parseOptional(r.PercentChange),
	}
}

// parseOptional は空や数値でない値をnilにします。
func parseOptional(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

func remarshal(raw map[string]json.RawMessage, out any) error {
	b, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}
