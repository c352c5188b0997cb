// Package http は外部APIクライアント用のHTTP設定を提供します。
package http

import (
	"net"
	"net/http"
	"time"
)

// UserAgent は外部APIへ送るUser-Agentです。
const UserAgent = "stockwatch/1.0"

// NewHTTPClient はTwelve Data呼び出し用のHTTPクライアントを作成します。
// timeoutはリクエスト全体の上限で、0以下なら10秒です。
// http.DefaultClientはタイムアウトを持たないため使いません。
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	t := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 4,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}
	return &http.Client{Timeout: timeout, Transport: userAgent{next: t}}
}

// userAgent はUser-Agentが未設定のリクエストに付与します。
type userAgent struct {
	next http.RoundTripper
}

func (u userAgent) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") != "" {
		return u.next.RoundTrip(req)
	}
	r := req.Clone(req.Context())
	r.Header.Set("User-Agent", UserAgent)
	return u.next.RoundTrip(r)
}
