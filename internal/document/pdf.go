package document

import (
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"devis/internal/pricing"
)

const validityDays = 30

// PDFRenderer lays out a QuoteDocument as an A4 PDF.
type PDFRenderer struct{}

func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{}
}

func (r *PDFRenderer) Render(doc QuoteDocument) ([]byte, error) {
	cfg := config.NewBuilder().
		WithLeftMargin(15).
		WithTopMargin(15).
		WithRightMargin(15).
		Build()

	m := maroto.New(cfg)

	m.AddRows(header(doc)...)
	m.AddRows(parties(doc)...)
	m.AddRows(lines(doc)...)
	m.AddRows(footer(doc)...)

	out, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generating pdf for %s: %w", doc.DevisNumber, err)
	}
	return out.GetBytes(), nil
}

func header(doc QuoteDocument) []core.Row {
	title := "DEVIS"
	if doc.DevisNumber != "" {
		title = fmt.Sprintf("DEVIS N° %s", doc.DevisNumber)
	}

	return []core.Row{
		text.NewRow(10, doc.Company.Name, props.Text{Size: 14, Style: fontstyle.Bold, Align: align.Left}),
		text.NewRow(12, title, props.Text{Size: 16, Style: fontstyle.Bold, Align: align.Center, Top: 2}),
		text.NewRow(6, "Date : "+doc.Date.In(parisLocation).Format("02/01/2006"), props.Text{Size: 9, Align: align.Right}),
		line.NewRow(4),
	}
}

func parties(doc QuoteDocument) []core.Row {
	rows := []core.Row{
		text.NewRow(7, "Client", props.Text{Size: 11, Style: fontstyle.Bold, Top: 2}),
		text.NewRow(5, doc.Client.Name, props.Text{Size: 10}),
		text.NewRow(5, doc.Client.Email, props.Text{Size: 10}),
	}
	if doc.Client.Company != "" {
		rows = append(rows, text.NewRow(5, doc.Client.Company, props.Text{Size: 10}))
	}
	if doc.Client.Phone != "" {
		rows = append(rows, text.NewRow(5, doc.Client.Phone, props.Text{Size: 10}))
	}
	return rows
}

func lines(doc QuoteDocument) []core.Row {
	bold := props.Text{Size: 10, Style: fontstyle.Bold}
	boldRight := props.Text{Size: 10, Style: fontstyle.Bold, Align: align.Right}

	rows := []core.Row{
		text.NewRow(10, "Prestations", props.Text{Size: 11, Style: fontstyle.Bold, Top: 4}),
		row2("Désignation", "Montant", bold, boldRight),
	}

	for _, l := range doc.Lines {
		amount := pricing.FormatEUR(l.Amount)
		if l.Included {
			amount = "inclus"
		}
		rows = append(rows, row2(l.Label, amount, props.Text{Size: 10}, props.Text{Size: 10, Align: align.Right}))
	}

	rows = append(rows,
		line.NewRow(3),
		row2("Total", doc.FormattedTotal, props.Text{Size: 12, Style: fontstyle.Bold}, props.Text{Size: 12, Style: fontstyle.Bold, Align: align.Right}),
	)

	if doc.MaintenanceFee > 0 {
		fee := pricing.FormatEUR(doc.MaintenanceFee)
		if doc.MaintenancePeriod != "" {
			fee += " / " + doc.MaintenancePeriod
		}
		rows = append(rows, row2(doc.MaintenanceLabel+" (non incluse dans le total)", fee,
			props.Text{Size: 9}, props.Text{Size: 9, Align: align.Right}))
	}

	if doc.ProjectDescription != "" {
		rows = append(rows,
			text.NewRow(8, "Description du projet", props.Text{Size: 11, Style: fontstyle.Bold, Top: 3}),
			text.NewRow(20, doc.ProjectDescription, props.Text{Size: 9}),
		)
	}
	return rows
}

func footer(doc QuoteDocument) []core.Row {
	return []core.Row{
		text.NewRow(8, fmt.Sprintf("Devis valable %d jours à compter de sa date d'émission.", validityDays),
			props.Text{Size: 8, Style: fontstyle.Italic, Top: 4}),
		text.NewRow(5, "Bon pour accord, date et signature du client :", props.Text{Size: 8}),
		text.NewRow(6, doc.Company.Email, props.Text{Size: 8, Align: align.Center, Top: 2}),
	}
}

func row2(left, right string, lp, rp props.Text) core.Row {
	return row.New(6).Add(
		text.NewCol(8, left, lp),
		text.NewCol(4, right, rp),
	)
}
