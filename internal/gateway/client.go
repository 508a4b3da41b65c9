package gateway

import (
	"context"
	"fmt"

	"dealerhub-gin/internal/config"
	apperrors "dealerhub-gin/internal/errors"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// ===========================================================================
// Gateway REST client
// Thin wrapper over the messaging gateway's management API. The inbound
// pipeline never calls this; it exists for instance onboarding and the
// connection lifecycle (create, pair, register webhook, logout, delete).
// ===========================================================================

// Client talks to the messaging gateway REST API
type Client struct {
	http   *resty.Client
	logger *zap.Logger
}

// NewClient creates a gateway client from config
func NewClient(cfg *config.GatewayConfig, logger *zap.Logger) *Client {
	http := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("apikey", cfg.APIKey)

	return &Client{http: http, logger: logger}
}

// InstanceInfo is the gateway's view of an instance
type InstanceInfo struct {
	InstanceID   string `json:"instanceId"`
	InstanceName string `json:"instanceName"`
	Status       string `json:"status"`
}

// QRResponse carries a pairing QR code
type QRResponse struct {
	Base64 string `json:"base64"`
	Code   string `json:"code"`
}

type createInstanceRequest struct {
	InstanceName string `json:"instanceName"`
	QRCode       bool   `json:"qrcode"`
}

type setWebhookRequest struct {
	URL    string   `json:"url"`
	Events []string `json:"events,omitempty"`
}

type stateResponse struct {
	Instance struct {
		State string `json:"state"`
	} `json:"instance"`
}

// CreateInstance registers a new instance at the gateway
func (c *Client) CreateInstance(ctx context.Context, name string) (*InstanceInfo, error) {
	var out struct {
		Instance InstanceInfo `json:"instance"`
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(createInstanceRequest{InstanceName: name, QRCode: true}).
		SetResult(&out).
		Post("/instance/create")
	if err := c.check(resp, err, "create instance"); err != nil {
		return nil, err
	}

	c.logger.Info("gateway instance created",
		zap.String("instance", name),
		zap.String("external_id", out.Instance.InstanceID),
	)
	return &out.Instance, nil
}

// Connect asks the gateway to bring the session up and returns the
// pairing QR when one is required
func (c *Client) Connect(ctx context.Context, name string) (*QRResponse, error) {
	var out QRResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		Get(fmt.Sprintf("/instance/connect/%s", name))
	if err := c.check(resp, err, "connect instance"); err != nil {
		return nil, err
	}
	return &out, nil
}

// SetWebhook registers the callback URL for an instance
func (c *Client) SetWebhook(ctx context.Context, name, url string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(setWebhookRequest{URL: url}).
		Post(fmt.Sprintf("/webhook/set/%s", name))
	return c.check(resp, err, "set webhook")
}

// ConnectionState queries the gateway for the line's current state
func (c *Client) ConnectionState(ctx context.Context, name string) (string, error) {
	var out stateResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		Get(fmt.Sprintf("/instance/connectionState/%s", name))
	if err := c.check(resp, err, "connection state"); err != nil {
		return "", err
	}
	return out.Instance.State, nil
}

// Logout terminates the session without deleting the instance
func (c *Client) Logout(ctx context.Context, name string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		Delete(fmt.Sprintf("/instance/logout/%s", name))
	return c.check(resp, err, "logout instance")
}

// DeleteInstance removes the instance at the gateway
func (c *Client) DeleteInstance(ctx context.Context, name string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		Delete(fmt.Sprintf("/instance/delete/%s", name))
	return c.check(resp, err, "delete instance")
}

// check folds transport errors and non-2xx responses into ErrExternal
func (c *Client) check(resp *resty.Response, err error, op string) error {
	if err != nil {
		return fmt.Errorf("%s: %v: %w", op, err, apperrors.ErrExternal)
	}
	if resp.IsError() {
		c.logger.Warn("gateway call failed",
			zap.String("op", op),
			zap.Int("status", resp.StatusCode()),
			zap.String("body", string(resp.Body())),
		)
		return fmt.Errorf("%s: gateway returned %d: %w", op, resp.StatusCode(), apperrors.ErrExternal)
	}
	return nil
}
