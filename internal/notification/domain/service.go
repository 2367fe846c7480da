package domain

import (
	"context"
	"errors"

	"github.com/Falloukarim/colis-sn-sub000/internal/apperror"
	orderdomain "github.com/Falloukarim/colis-sn-sub000/internal/order/domain"
)

//go:generate mockgen -destination=../sender/mock/sender_mock.go -package=mock . Sender

// Sender delivers a rendered message on one channel. A false result and an
// error are both treated as a failed delivery.
type Sender interface {
	Send(ctx context.Context, channel Channel, destination, message string) (bool, error)
}

type Result struct {
	Sent         bool         `json:"sent"`
	Notification Notification `json:"notification"`
}

type DispatchRequest struct {
	OrderID string `json:"order_id"`
	Channel string `json:"channel"`
}

type Service interface {
	// Notify renders and sends the message for order on channel and records
	// the attempt whatever the outcome.
	Notify(ctx context.Context, order orderdomain.Order, channel Channel) (*Result, error)
	// NotifyReady announces that order can be collected. WhatsApp is used
	// when the client has a number for it, SMS otherwise.
	NotifyReady(ctx context.Context, order orderdomain.Order) error
	Dispatch(ctx context.Context, req DispatchRequest) (*Result, error)
	ListByOrder(ctx context.Context, orderID string) ([]Notification, error)
}

var (
	ErrInvalidChannel = apperror.Validation("channel", "invalid_channel", "Canal de notification invalide")

	// ErrProviderNotConfigured is returned by senders that have no backend
	// for the requested channel.
	ErrProviderNotConfigured = errors.New(ReasonProviderNotConfigured)
)
