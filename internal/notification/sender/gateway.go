package sender

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/Falloukarim/colis-sn-sub000/internal/notification/domain"
)

type gatewayMessage struct {
	Channel string `json:"channel"`
	From    string `json:"from,omitempty"`
	To      string `json:"to"`
	Text    string `json:"text"`
}

type gatewayResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type gatewayErrorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// GatewayClient posts SMS and WhatsApp messages to an HTTP messaging
// gateway.
type GatewayClient struct {
	baseURL        string
	token          string
	smsSender      string
	whatsAppSender string
	client         *http.Client
}

type GatewayOptions struct {
	BaseURL        string
	Token          string
	SMSSender      string
	WhatsAppSender string
	Timeout        time.Duration
}

func NewGatewayClient(opts GatewayOptions) *GatewayClient {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &GatewayClient{
		baseURL:        strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/"),
		token:          strings.TrimSpace(opts.Token),
		smsSender:      strings.TrimSpace(opts.SMSSender),
		whatsAppSender: strings.TrimSpace(opts.WhatsAppSender),
		client:         &http.Client{Timeout: timeout},
	}
}

func (c *GatewayClient) Configured() bool {
	return c.baseURL != ""
}

// Send returns false without error when the gateway accepts the request but
// refuses the message.
func (c *GatewayClient) Send(ctx context.Context, channel domain.Channel, destination, message string) (bool, error) {
	if !c.Configured() {
		return false, domain.ErrProviderNotConfigured
	}

	from := c.smsSender
	if channel == domain.ChannelWhatsApp {
		from = c.whatsAppSender
	}
	body, err := json.Marshal(gatewayMessage{
		Channel: string(channel),
		From:    from,
		To:      destination,
		Text:    message,
	})
	if err != nil {
		return false, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/messages", bytes.NewReader(body))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var gwErr gatewayErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&gwErr); err != nil {
			return false, errors.New("gateway_request_failed")
		}
		msg := strings.TrimSpace(gwErr.Error.Message)
		if msg == "" {
			msg = "gateway_request_failed"
		}
		return false, errors.New(msg)
	}

	var out gatewayResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return false, err
	}
	switch strings.ToLower(out.Status) {
	case "accepted", "queued", "sent", "delivered":
		return true, nil
	default:
		return false, nil
	}
}
