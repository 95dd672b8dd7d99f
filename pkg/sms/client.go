// Package sms 短信网关 HTTP 客户端
package sms

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rajib3777/academia-sub001/config"
)

// SuccessCode 网关受理成功的 response_code
const SuccessCode = 202

// Result 单次发送结果
// Delivered=false 时 Reason 必有值，StatusCode 仅在网关返回错误码时有值
type Result struct {
	Delivered  bool
	Reason     string
	StatusCode *int
}

// Sender 短信发送接口
type Sender interface {
	Send(ctx context.Context, phone, message string) Result
}

// Client 网关客户端，每次 Send 只发起一次请求，不做重试
type Client struct {
	httpClient *http.Client
	gatewayURL string
	apiKey     string
	senderID   string
}

// NewClient 创建网关客户端
func NewClient(cfg *config.SMSConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		gatewayURL: cfg.GatewayURL,
		apiKey:     cfg.APIKey,
		senderID:   cfg.SenderID,
	}
}

type gatewayResponse struct {
	ResponseCode *int   `json:"response_code"`
	ErrorMessage string `json:"error_message"`
}

// Send 以表单方式 POST 到网关并解析 JSON 响应
func (c *Client) Send(ctx context.Context, phone, message string) Result {
	form := url.Values{
		"api_key":  {c.apiKey},
		"senderid": {c.senderID},
		"number":   {phone},
		"message":  {message},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.gatewayURL, strings.NewReader(form.Encode()))
	if err != nil {
		return Result{Reason: err.Error()}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{Reason: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return Result{Reason: fmt.Sprintf("读取网关响应失败: %v", err)}
	}

	var gr gatewayResponse
	if err := json.Unmarshal(body, &gr); err != nil {
		return Result{Reason: "Invalid JSON response"}
	}

	if gr.ResponseCode != nil && *gr.ResponseCode == SuccessCode {
		return Result{Delivered: true}
	}

	reason := gr.ErrorMessage
	if reason == "" {
		reason = "Unknown error"
	}
	return Result{Reason: reason, StatusCode: gr.ResponseCode}
}
