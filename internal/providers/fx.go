package providers

import (
	"github.com/Falloukarim/colis-sn-sub000/internal/providers/email"
	"github.com/Falloukarim/colis-sn-sub000/internal/providers/pdf"
	"go.uber.org/fx"
)

var Module = fx.Module("providers",
	email.Module,
	pdf.Module,
)
