// Package render builds the PDF document of an energy report.
package render

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"codeberg.org/go-pdf/fpdf"

	"github.com/jameshartig/energyreport/pkg/energy"
	"github.com/jameshartig/energyreport/pkg/types"
)

const (
	fontFamily   = "Helvetica"
	rowHeight    = 6.0
	headerHeight = 7.0
)

// Report is everything shown in a rendered document.
type Report struct {
	Period      types.ResolvedPeriod
	Dashboard   string
	Summary     types.Summary
	CO2         []types.CO2Total
	Advice      string
	Location    string
	GeneratedAt time.Time
	Language    string
}

// Render builds the PDF for r and returns its bytes.
func Render(r Report) ([]byte, error) {
	tr := Lookup(r.Language)
	b := newBuilder(tr, r.GeneratedAt)

	start := r.Period.StartDate.Format("02/01/2006")
	end := r.Period.EndDate.Format("02/01/2006")

	b.cover(Format(tr.CoverSubtitle, "start", start, "end", end), coverDetails(tr, r, start, end))

	// summary
	b.section(tr.SummaryTitle)
	b.paragraph(tr.SummaryIntro, false)
	summaryRows := make([][]string, 0, len(r.Summary.Categories))
	for _, c := range r.Summary.Categories {
		summaryRows = append(summaryRows, []string{tr.Category(c.Category), energy.FormatNumber(c.Total), c.Unit})
	}
	b.table(tr.SummaryTableTitle, tr.SummaryHeaders[:], []float64{0.55, 0.27, 0.18}, summaryRows)
	b.paragraph(tr.SummaryNoteTotals, false)
	b.paragraph(tr.SummaryNoteNegative, false)

	b.table(tr.DerivedTableTitle, tr.DerivedHeaders[:], []float64{0.7, 0.3}, [][]string{
		{tr.DerivedEstimated, energy.FormatNumber(r.Summary.EstimatedConsumption)},
		{tr.DerivedTracked, energy.FormatNumber(r.Summary.TrackedConsumption)},
		{tr.DerivedUntracked, energy.FormatNumber(r.Summary.Untracked)},
	})
	if r.Summary.UntrackedNegative {
		b.paragraph(tr.DerivedNoteNegative, true)
	}

	// details
	b.section(tr.DetailTitle)
	b.paragraph(tr.DetailIntro, false)
	detailRows := make([][]string, 0, len(r.Summary.Details))
	for _, d := range r.Summary.Details {
		detailRows = append(detailRows, []string{tr.Category(d.Category), d.Name, energy.FormatNumber(d.Total), d.Unit})
	}
	b.table(tr.DetailTableTitle, tr.DetailHeaders[:], []float64{0.26, 0.44, 0.18, 0.12}, detailRows)

	if len(r.CO2) > 0 {
		b.section(tr.CO2SectionTitle)
		b.paragraph(tr.CO2SectionIntro, false)
		co2Rows := make([][]string, 0, len(r.CO2))
		for _, c := range r.CO2 {
			impact := tr.CO2EmissionLabel
			if c.Sensor.IsSaving {
				impact = tr.CO2SavingsLabel
			}
			co2Rows = append(co2Rows, []string{tr.CO2Sensor(c.Sensor.Key), energy.FormatNumber(c.Total), impact})
		}
		b.table(tr.CO2TableTitle, tr.CO2TableHeaders[:], []float64{0.5, 0.28, 0.22}, co2Rows)

		emissions, savings, balance := energy.CO2Balance(r.CO2)
		b.paragraph(Format(tr.CO2BalanceMessage,
			"emissions", energy.FormatNumber(emissions)+" kgCO2e",
			"savings", energy.FormatNumber(savings)+" kgCO2e",
			"balance", energy.FormatNumber(balance)+" kgCO2e",
		), true)
	}

	b.section(tr.ConclusionTitle)
	for i, line := range ConclusionLines(tr, r.Summary) {
		b.paragraph(line, i == 0)
	}
	b.paragraph(tr.ConclusionHint, false)

	if r.Advice != "" {
		b.section(tr.AdviceTitle)
		b.paragraph(r.Advice, false)
	}

	if r.Location != "" {
		b.footer(Format(tr.FooterPath, "path", r.Location))
	}

	return b.output()
}

func coverDetails(tr Translations, r Report, start, end string) []string {
	details := []string{
		Format(tr.CoverPeriod, "period", start+" - "+end+" ("+tr.Period(r.Period.Period)+")"),
	}
	if r.Dashboard != "" {
		details = append(details, Format(tr.CoverDashboard, "dashboard", r.Dashboard))
	}
	details = append(details,
		Format(tr.CoverBucket, "bucket", tr.Bucket(r.Period.Bucket)),
		Format(tr.CoverStats, "count", strconv.Itoa(r.Summary.Metrics)),
		Format(tr.CoverGenerated, "timestamp", r.GeneratedAt.Format("02/01/2006 15:04")),
	)
	return details
}

// ConclusionLines returns the net total and dominant category sentences. It
// is empty when the summary has no category rows.
func ConclusionLines(tr Translations, s types.Summary) []string {
	dominant, ok := energy.Dominant(s.Categories)
	if !ok {
		return nil
	}
	total, unit := energy.NetTotal(s.Categories)
	return []string{
		Format(tr.ConclusionTotal, "total", withUnit(total, unit)),
		Format(tr.ConclusionDominant,
			"category", tr.Category(dominant.Category),
			"value", withUnit(dominant.Total, dominant.Unit),
		),
	}
}

func withUnit(v float64, unit string) string {
	if unit == "" {
		return energy.FormatNumber(v)
	}
	return energy.FormatNumber(v) + " " + unit
}

type builder struct {
	pdf   *fpdf.Fpdf
	tr    func(string) string
	width float64
	empty string
}

func newBuilder(t Translations, generatedAt time.Time) *builder {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetTitle(t.Title, true)
	pdf.SetCreator("energyreport", true)
	pdf.SetAuthor("energyreport", true)
	pdf.SetCreationDate(generatedAt)
	pdf.SetModificationDate(generatedAt)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont(fontFamily, "I", 8)
		page := Format(t.FooterPage, "current", strconv.Itoa(pdf.PageNo()), "total", "{nb}")
		pdf.CellFormat(0, 6, tr(page), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	pageWidth, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()

	return &builder{
		pdf:   pdf,
		tr:    tr,
		width: pageWidth - left - right,
		empty: t.TableEmpty,
	}
}

func (b *builder) cover(subtitle string, details []string) {
	b.pdf.SetFont(fontFamily, "B", 18)
	b.pdf.MultiCell(0, 10, b.tr(subtitle), "", "L", false)
	b.pdf.Ln(2)
	b.pdf.SetFont(fontFamily, "", 11)
	for _, d := range details {
		b.pdf.MultiCell(0, rowHeight, b.tr(d), "", "L", false)
	}
	b.pdf.Ln(4)
}

func (b *builder) section(title string) {
	b.pdf.Ln(2)
	b.pdf.SetFont(fontFamily, "B", 14)
	b.pdf.CellFormat(0, 9, b.tr(title), "B", 1, "L", false, 0, "")
	b.pdf.Ln(2)
}

func (b *builder) paragraph(text string, bold bool) {
	style := ""
	if bold {
		style = "B"
	}
	b.pdf.SetFont(fontFamily, style, 11)
	b.pdf.MultiCell(0, rowHeight, b.tr(text), "", "L", false)
	b.pdf.Ln(1)
}

// table draws a bordered table. weights are relative column widths and the
// last column is right aligned.
func (b *builder) table(title string, headers []string, weights []float64, rows [][]string) {
	widths := b.columnWidths(weights)

	b.pdf.SetFont(fontFamily, "B", 12)
	b.pdf.CellFormat(0, 8, b.tr(title), "", 1, "L", false, 0, "")

	b.pdf.SetFont(fontFamily, "B", 10)
	b.pdf.SetFillColor(230, 230, 230)
	for i, h := range headers {
		b.pdf.CellFormat(widths[i], headerHeight, b.tr(h), "1", 0, "L", true, 0, "")
	}
	b.pdf.Ln(headerHeight)

	b.pdf.SetFont(fontFamily, "", 10)
	if len(rows) == 0 {
		b.pdf.CellFormat(b.width, rowHeight, b.tr(b.empty), "1", 1, "L", false, 0, "")
		b.pdf.Ln(1)
		return
	}
	for _, row := range rows {
		for i, w := range widths {
			var value string
			if i < len(row) {
				value = row[i]
			}
			align := "L"
			if i == len(widths)-1 {
				align = "R"
			}
			b.pdf.CellFormat(w, rowHeight, b.tr(value), "1", 0, align, false, 0, "")
		}
		b.pdf.Ln(rowHeight)
	}
	b.pdf.Ln(1)
}

func (b *builder) columnWidths(weights []float64) []float64 {
	var total float64
	for _, w := range weights {
		total += w
	}
	widths := make([]float64, len(weights))
	for i, w := range weights {
		widths[i] = w / total * b.width
	}
	return widths
}

func (b *builder) footer(text string) {
	b.pdf.Ln(4)
	b.pdf.SetFont(fontFamily, "", 9)
	b.pdf.MultiCell(0, 5, b.tr(text), "", "L", false)
}

func (b *builder) output() ([]byte, error) {
	var buf bytes.Buffer
	if err := b.pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to write pdf: %w", err)
	}
	return buf.Bytes(), nil
}
