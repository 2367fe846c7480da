package sender

import (
	"context"
	"errors"

	"github.com/Falloukarim/colis-sn-sub000/internal/notification/domain"
	"github.com/Falloukarim/colis-sn-sub000/internal/providers/email"
)

const emailSubject = "Votre commande"

// LiveSender routes SMS and WhatsApp through the messaging gateway and email
// through the configured mail provider.
type LiveSender struct {
	gateway domain.Sender
	email   email.Provider
}

func NewLiveSender(gateway domain.Sender, mail email.Provider) *LiveSender {
	if mail == nil {
		mail = &email.NoOpProvider{}
	}
	return &LiveSender{gateway: gateway, email: mail}
}

func (s *LiveSender) Send(ctx context.Context, channel domain.Channel, destination, message string) (bool, error) {
	switch channel {
	case domain.ChannelSMS, domain.ChannelWhatsApp:
		return s.gateway.Send(ctx, channel, destination, message)
	case domain.ChannelEmail:
		err := s.email.Send(ctx, []string{destination}, emailSubject, message)
		if errors.Is(err, email.ErrNotConfigured) {
			return false, domain.ErrProviderNotConfigured
		}
		if err != nil {
			return false, err
		}
		return true, nil
	default:
		return false, domain.ErrInvalidChannel
	}
}
