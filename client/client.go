package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"astrolink-client/protocol"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Version 客户端版本（User-Agent 上报）
const Version = "1.4.0"

// Client 任务控制服务器 API 客户端
// REST 入口挂在 /api 下，WebSocket 入口挂在 /_websocket 下
type Client struct {
	address    string
	tls        bool
	apiBase    string
	wsBase     string
	httpClient *resty.Client
	logger     *zap.Logger
}

// Option 客户端构造选项
type Option func(*Client)

// WithTLS 启用 https/wss（证书校验交给标准库默认行为）
func WithTLS() Option {
	return func(c *Client) {
		c.tls = true
	}
}

// WithTimeout 覆盖默认请求超时
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.SetTimeout(d)
	}
}

// WithLogger 注入日志器（默认 zap.NewNop()）
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient 创建客户端。address 形如 "host" 或 "host:port"，缺省端口 8090
func NewClient(address string, opts ...Option) *Client {
	if !strings.Contains(address, ":") {
		address = address + ":8090"
	}

	c := &Client{
		address: address,
		logger:  zap.NewNop(),
		httpClient: resty.New().
			SetTimeout(30 * time.Second).
			SetRetryCount(3).
			SetRetryWaitTime(1 * time.Second).
			SetRetryMaxWaitTime(5 * time.Second).
			SetHeader("Content-Type", "application/json").
			SetHeader("Accept", "application/json").
			SetHeader("User-Agent", "astrolink-client/"+Version),
	}

	for _, opt := range opts {
		opt(c)
	}

	scheme, wsScheme := "http", "ws"
	if c.tls {
		scheme, wsScheme = "https", "wss"
	}
	c.apiBase = fmt.Sprintf("%s://%s/api", scheme, c.address)
	c.wsBase = fmt.Sprintf("%s://%s/_websocket", wsScheme, c.address)
	c.httpClient.SetBaseURL(c.apiBase)

	return c
}

// Address 返回 host:port
func (c *Client) Address() string {
	return c.address
}

// Logger 返回注入的日志器（供子客户端复用）
func (c *Client) Logger() *zap.Logger {
	return c.logger
}

// WebSocketURL 返回指定 instance 的订阅端点
func (c *Client) WebSocketURL(instance string) string {
	return c.wsBase + "/" + instance
}

// wrapError 统一错误规范化：传输失败 → *ConnectionError，HTTP 错误 → *APIError
func (c *Client) wrapError(resp *resty.Response, err error) error {
	if err != nil {
		return &ConnectionError{Address: c.address, Err: err}
	}
	if resp.IsError() {
		apiErr := &APIError{StatusCode: resp.StatusCode()}
		var excMsg protocol.RESTExceptionMsg
		if jsonErr := json.Unmarshal(resp.Body(), &excMsg); jsonErr == nil {
			apiErr.Type = excMsg.Type
			apiErr.Message = excMsg.Msg
		} else {
			apiErr.Message = strings.TrimSpace(string(resp.Body()))
		}
		c.logger.Debug("API request rejected",
			zap.String("path", resp.Request.URL),
			zap.Int("status_code", resp.StatusCode()),
			zap.String("message", apiErr.Message),
		)
		return apiErr
	}
	return nil
}

// Get 发 GET 请求并解码 JSON 响应到 out（out 可为 nil）。
// 服务器响应不一定带 Content-Type，一律按 JSON 解码
func (c *Client) Get(ctx context.Context, path string, query url.Values, out interface{}) error {
	req := c.httpClient.R().SetContext(ctx)
	if len(query) > 0 {
		req.SetQueryParamsFromValues(query)
	}
	if out != nil {
		req.SetResult(out).ForceContentType("application/json")
	}
	resp, err := req.Get(path)
	return c.wrapError(resp, err)
}

// Post 发 POST 请求（body 可为 nil），解码 JSON 响应到 out
func (c *Client) Post(ctx context.Context, path string, body, out interface{}) error {
	req := c.httpClient.R().SetContext(ctx)
	if body != nil {
		req.SetBody(body)
	}
	if out != nil {
		req.SetResult(out).ForceContentType("application/json")
	}
	resp, err := req.Post(path)
	return c.wrapError(resp, err)
}

// Put 发 PUT 请求
func (c *Client) Put(ctx context.Context, path string, body, out interface{}) error {
	req := c.httpClient.R().SetContext(ctx)
	if body != nil {
		req.SetBody(body)
	}
	if out != nil {
		req.SetResult(out).ForceContentType("application/json")
	}
	resp, err := req.Put(path)
	return c.wrapError(resp, err)
}

// Patch 发 PATCH 请求
func (c *Client) Patch(ctx context.Context, path string, body, out interface{}) error {
	req := c.httpClient.R().SetContext(ctx)
	if body != nil {
		req.SetBody(body)
	}
	if out != nil {
		req.SetResult(out).ForceContentType("application/json")
	}
	resp, err := req.Patch(path)
	return c.wrapError(resp, err)
}

// Delete 发 DELETE 请求
func (c *Client) Delete(ctx context.Context, path string) error {
	resp, err := c.httpClient.R().SetContext(ctx).Delete(path)
	return c.wrapError(resp, err)
}

// GetRaw 发 GET 请求并返回原始响应体（对象下载等二进制场景）
func (c *Client) GetRaw(ctx context.Context, path string) ([]byte, error) {
	resp, err := c.httpClient.R().SetContext(ctx).Get(path)
	if wrapped := c.wrapError(resp, err); wrapped != nil {
		return nil, wrapped
	}
	return resp.Body(), nil
}

// PostRaw 发 POST 请求上传原始字节（Content-Type 由调用方指定）
func (c *Client) PostRaw(ctx context.Context, path, contentType string, body []byte) error {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetHeader("Content-Type", contentType).
		SetBody(body).
		Post(path)
	return c.wrapError(resp, err)
}
