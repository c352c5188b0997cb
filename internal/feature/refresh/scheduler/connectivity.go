package scheduler

import (
	"context"
	"net"
	"net/url"
	"time"
)

// DialChecker はリモートソースのホストへTCP接続できるかで接続状態を判定します。
type DialChecker struct {
	address string
	timeout time.Duration
}

// NewDialChecker はbaseURLのホストとポート（未指定ならスキームの既定）を宛先にします。
func NewDialChecker(baseURL string, timeout time.Duration) (*DialChecker, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	port := u.Port()
	if port == "" {
		port = "443"
		if u.Scheme == "http" {
			port = "80"
		}
	}
	return &DialChecker{address: net.JoinHostPort(u.Hostname(), port), timeout: timeout}, nil
}

// Connected はtimeout以内に接続できればtrueを返します。
func (c *DialChecker) Connected(ctx context.Context) bool {
	d := net.Dialer{Timeout: c.timeout}
	conn, err := d.DialContext(ctx, "tcp", c.address)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}
