package domain

import (
	"context"

	"github.com/Falloukarim/colis-sn-sub000/internal/apperror"
	orderdomain "github.com/Falloukarim/colis-sn-sub000/internal/order/domain"
)

type Service interface {
	// Validate hands the order over to its client: disponible becomes remis.
	Validate(ctx context.Context, scanned string) (*orderdomain.Order, error)
	// Preview resolves and authorizes a scan without changing anything.
	Preview(ctx context.Context, scanned string) (*orderdomain.Order, error)
}

// Lock keeps two scanners from racing on one order. Implementations may be
// no-ops.
type Lock interface {
	Acquire(ctx context.Context, orderID string) (release func(), ok bool, err error)
}

var (
	ErrForeignOrder   = apperror.New(apperror.KindForbidden, "forbidden", "Cette commande ne vous appartient pas")
	ErrScanInProgress = apperror.New(apperror.KindConflict, "scan_in_progress", "Un retrait est déjà en cours pour cette commande")
)

// NotAvailable reports an order that cannot be handed over in its current
// state.
func NotAvailable(current orderdomain.Status) error {
	if current == orderdomain.StatusRemis {
		return apperror.InvalidState(string(current), "Cette commande a déjà été remise")
	}
	return apperror.InvalidState(string(current), "Cette commande n'est pas disponible pour le retrait (statut actuel : "+current.Label()+")")
}
