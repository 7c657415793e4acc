package reports

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"kudos/internal/domain/feedback"
)

var diacritics = strings.NewReplacer(
	"ă", "a", "Ă", "A", "â", "a", "Â", "A", "î", "i", "Î", "I",
	"ș", "s", "Ș", "S", "ş", "s", "Ş", "S", "ț", "t", "Ț", "T", "ţ", "t", "Ţ", "T",
)

// RenderPDF lays out report on one or more A4 pages.
func RenderPDF(report FeedbackReport) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	text := func(s string) string { return tr(pdfText(s)) }

	pdf.SetTitle("Kudos feedback report", true)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, text("Raport feedback: "+report.Employee.Name))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 7, text("Perioada: "+report.PeriodLabel))
	pdf.Ln(6)
	pdf.Cell(0, 7, "Generat: "+report.GeneratedAt.Format("2006-01-02 15:04 MST"))
	pdf.Ln(10)

	st := report.Stats
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, text("Rezumat"))
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
	lines := []string{
		fmt.Sprintf("Puncte rosii (manager): %d", st.RedManager),
		fmt.Sprintf("Kudos (colegi): %d", st.RedPeer),
		fmt.Sprintf("Puncte negre: %d", st.Black),
		fmt.Sprintf("Total oficial: %d", st.TotalOfficial),
		fmt.Sprintf("Procent rosu oficial: %.1f%%", st.PercentageRed),
		"Calificativ: " + st.RatingLabel,
	}
	for _, line := range lines {
		pdf.Cell(0, 6, text(line))
		pdf.Ln(6)
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Categorii")
	pdf.Ln(8)
	writeCategoryTable(pdf, text, report.Categories)
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, text("Feedback recent"))
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 10)
	if len(report.Recent) == 0 {
		pdf.Cell(0, 6, text("Nu există feedback în perioada selectată."))
		pdf.Ln(6)
	}
	for _, ev := range report.Recent {
		header := fmt.Sprintf("%s  %s  %s  (%s)", ev.Timestamp.Format("2006-01-02"), pointLabel(ev), ev.Category, ev.ManagerName)
		pdf.SetFont("Helvetica", "B", 10)
		pdf.MultiCell(0, 5, text(header), "", "L", false)
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, 5, text(ev.Comment), "", "L", false)
		pdf.Ln(2)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeCategoryTable(pdf *gofpdf.Fpdf, text func(string) string, rows []feedback.CategoryStat) {
	widths := []float64{80, 30, 30, 25, 20}
	pdf.SetFont("Helvetica", "B", 10)
	for i, h := range []string{"Categorie", "Rosu manager", "Kudos", "Negru", "Total"} {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Helvetica", "", 10)
	for _, row := range rows {
		cells := []string{
			text(row.Category),
			fmt.Sprint(row.RedManager),
			fmt.Sprint(row.RedPeer),
			fmt.Sprint(row.Black),
			fmt.Sprint(row.Total),
		}
		for i, c := range cells {
			align := "R"
			if i == 0 {
				align = "L"
			}
			pdf.CellFormat(widths[i], 6, c, "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}
}

func pointLabel(ev feedback.Event) string {
	switch {
	case ev.PointType == feedback.PointBlack:
		return "NEGRU"
	case ev.IsManagerFeedback:
		return "ROSU"
	default:
		return "KUDOS"
	}
}

// pdfText folds Romanian diacritics and drops runes the core PDF fonts cannot
// draw, such as the emoji used in kudos badges.
func pdfText(s string) string {
	s = diacritics.Replace(s)
	var b strings.Builder
	for _, r := range s {
		if r < 0x100 {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}
