// Package http provides the outbound HTTP client used to reach the model server.
package http

import (
	"net"
	"net/http"
	"time"
)

// NewHTTPClient はモデルサーバー呼び出し用に設定されたHTTPクライアントを作成します。
//
// 設定:
//   - Proxy: 環境変数（HTTP_PROXYなど）が設定されている場合に使用
//   - Dialer.Timeout: TCP接続タイムアウト（接続確立のみ。推論時間は含まない）
//   - MaxIdleConnsPerHost: 接続先はモデルサーバー1台なのでホスト単位で確保
//   - IdleConnTimeout / TLSHandshakeTimeout: 接続の維持とハンドシェイクの上限
//   - Client.Timeout: リクエスト全体のタイムアウト。0 の場合は無制限
//
// 注意:
//   - 推論が遅い場合、timeout=0 ではリクエストはモデルの応答までブロックされる
func NewHTTPClient(timeout time.Duration) *http.Client {
	t := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:   true,
		MaxIdleConns:        32,
		MaxIdleConnsPerHost: 32,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}
	if timeout < 0 {
		timeout = 0
	}
	return &http.Client{Timeout: timeout, Transport: t}
}
