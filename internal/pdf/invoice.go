package pdf

import (
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// InvoiceData carries everything the renderer needs; it knows nothing about
// the persistence models.
type InvoiceData struct {
	InvoiceNumber string
	Date          string
	DueDate       string
	Description   string
	AmountHT      float64
	VATAmount     float64
	AmountTTC     float64
	VATFranchise  bool // true triggers the art. 293 B mention

	IssuerName  string
	IssuerEmail string

	ClientName    string
	ClientEmail   string
	ClientAddress string
}

// InvoicePDF renders a one-page A4 invoice and returns the PDF bytes.
func InvoicePDF(d InvoiceData) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(15).
		WithTopMargin(15).
		WithRightMargin(15).
		Build()
	m := maroto.New(cfg)

	m.AddRow(14, text.NewCol(12, "FACTURE", props.Text{Size: 20, Style: fontstyle.Bold, Align: align.Center}))
	m.AddRow(8, text.NewCol(12, d.InvoiceNumber, props.Text{Size: 12, Align: align.Center}))
	m.AddRow(4, line.NewCol(12))

	m.AddRow(6,
		text.NewCol(6, "Émetteur", props.Text{Size: 10, Style: fontstyle.Bold}),
		text.NewCol(6, "Client", props.Text{Size: 10, Style: fontstyle.Bold}),
	)
	m.AddRow(5,
		text.NewCol(6, d.IssuerName, props.Text{Size: 9}),
		text.NewCol(6, d.ClientName, props.Text{Size: 9}),
	)
	m.AddRow(5,
		text.NewCol(6, d.IssuerEmail, props.Text{Size: 9}),
		text.NewCol(6, d.ClientEmail, props.Text{Size: 9}),
	)
	m.AddRow(5, text.NewCol(12, d.ClientAddress, props.Text{Size: 9, Left: 95}))

	m.AddRow(8,
		text.NewCol(6, fmt.Sprintf("Date d'émission : %s", d.Date), props.Text{Size: 9}),
		text.NewCol(6, fmt.Sprintf("Date d'échéance : %s", d.DueDate), props.Text{Size: 9}),
	)
	m.AddRow(4, line.NewCol(12))

	m.AddRow(8,
		text.NewCol(8, "Désignation", props.Text{Size: 10, Style: fontstyle.Bold}),
		text.NewCol(4, "Montant", props.Text{Size: 10, Style: fontstyle.Bold, Align: align.Right}),
	)
	m.AddRow(8,
		text.NewCol(8, d.Description, props.Text{Size: 9}),
		text.NewCol(4, fmt.Sprintf("%.2f €", d.AmountHT), props.Text{Size: 9, Align: align.Right}),
	)
	m.AddRow(4, line.NewCol(12))

	m.AddRow(6,
		text.NewCol(8, "Total HT", props.Text{Size: 9, Align: align.Right}),
		text.NewCol(4, fmt.Sprintf("%.2f €", d.AmountHT), props.Text{Size: 9, Align: align.Right}),
	)
	m.AddRow(6,
		text.NewCol(8, "TVA (20 %)", props.Text{Size: 9, Align: align.Right}),
		text.NewCol(4, fmt.Sprintf("%.2f €", d.VATAmount), props.Text{Size: 9, Align: align.Right}),
	)
	m.AddRow(8,
		text.NewCol(8, "Total TTC", props.Text{Size: 11, Style: fontstyle.Bold, Align: align.Right}),
		text.NewCol(4, fmt.Sprintf("%.2f €", d.AmountTTC), props.Text{Size: 11, Style: fontstyle.Bold, Align: align.Right}),
	)

	if d.VATFranchise {
		m.AddRow(10, text.NewCol(12, "TVA non applicable, art. 293 B du CGI", props.Text{Size: 8, Style: fontstyle.Italic}))
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf generation: %w", err)
	}
	return doc.GetBytes(), nil
}
