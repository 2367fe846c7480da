package pdf

import (
	"context"
	"errors"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/image"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/extension"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// SlipData is the pickup slip handed to the client when the parcel is
// registered. Amounts arrive preformatted.
type SlipData struct {
	OrgName     string
	OrderNumber string
	CreatedAt   string
	Status      string

	ClientName  string
	ClientPhone string

	Description string
	PricingLine string
	Total       string

	PublicURL string
	QRCode    []byte
}

type PDFProvider struct{}

func New() Provider {
	return &PDFProvider{}
}

func (p *PDFProvider) GenerateSlip(ctx context.Context, slip SlipData) ([]byte, error) {
	if slip.OrderNumber == "" {
		return nil, errors.New("slip requires an order number")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} / {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(12,
		text.NewCol(8, slip.OrgName, props.Text{Size: 16, Style: fontstyle.Bold, Align: align.Left}),
		text.NewCol(4, "Bon de retrait", props.Text{Size: 12, Align: align.Right}),
	)

	m.AddRow(22,
		col.New(7).Add(
			text.New("Commande : "+slip.OrderNumber, props.Text{Style: fontstyle.Bold}),
			text.New("Créée le : "+slip.CreatedAt, props.Text{Top: 5}),
			text.New("Statut : "+slip.Status, props.Text{Top: 10}),
		),
		col.New(5).Add(
			text.New("Client", props.Text{Style: fontstyle.Bold}),
			text.New(slip.ClientName, props.Text{Top: 5}),
			text.New(slip.ClientPhone, props.Text{Top: 10}),
		),
	)

	m.AddRow(10,
		text.NewCol(6, "Description", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(4, "Détail", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Montant", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)
	m.AddRow(12,
		text.NewCol(6, slip.Description, props.Text{Size: 9}),
		text.NewCol(4, slip.PricingLine, props.Text{Size: 9, Align: align.Right}),
		text.NewCol(2, slip.Total, props.Text{Size: 9, Align: align.Right}),
	)

	if len(slip.QRCode) > 0 {
		m.AddRow(60,
			col.New(3),
			image.NewFromBytesCol(6, slip.QRCode, extension.Png, props.Rect{Center: true, Percent: 90}),
			col.New(3),
		)
	}
	m.AddRow(10,
		text.NewCol(12, "Présentez ce code au comptoir : "+slip.PublicURL, props.Text{Size: 8, Align: align.Center}),
	)

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return doc.GetBytes(), nil
}
