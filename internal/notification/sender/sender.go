package sender

import (
	"github.com/Falloukarim/colis-sn-sub000/internal/config"
	"github.com/Falloukarim/colis-sn-sub000/internal/notification/domain"
	"github.com/Falloukarim/colis-sn-sub000/internal/providers/email"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Config config.Config
	Log    *zap.Logger
	Email  email.Provider `optional:"true"`
}

// New picks the sender implementation from NOTIFICATION_MODE.
func New(p Params) domain.Sender {
	if p.Config.Notification.Mode != config.NotificationModeLive {
		return NewLogSender(p.Log)
	}

	gateway := NewGatewayClient(GatewayOptions{
		BaseURL:        p.Config.Notification.GatewayURL,
		Token:          p.Config.Notification.GatewayToken,
		SMSSender:      p.Config.Notification.SMSSender,
		WhatsAppSender: p.Config.Notification.WhatsAppSender,
		Timeout:        p.Config.Notification.Timeout,
	})
	if !gateway.Configured() {
		p.Log.Warn("live notifications enabled without NOTIFICATION_GATEWAY_URL, sms and whatsapp will fail")
	}
	return NewLiveSender(gateway, p.Email)
}
