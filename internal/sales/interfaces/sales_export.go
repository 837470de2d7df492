package interfaces

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	sales "kunafa-ledger/internal/sales/domain"
	"kunafa-ledger/internal/sales/locale"
)

const (
	maxSheetNameLength = 31
	defaultSheetName   = "Ventes"
	defaultProductName = "Sultan Kunafa"
)

// ExportOptions carries the presentation settings of an export.
type ExportOptions struct {
	ProductName string
	// FontPath points to a UTF-8 TrueType font. Required for Arabic PDFs.
	FontPath string
	Today    sales.Date
}

func (o ExportOptions) product() string {
	if strings.TrimSpace(o.ProductName) == "" {
		return defaultProductName
	}
	return strings.TrimSpace(o.ProductName)
}

// ExportFileName returns "<product>-Ventes-YYYY-MM-DD.<ext>".
func ExportFileName(product string, today sales.Date, ext string) string {
	if strings.TrimSpace(product) == "" {
		product = defaultProductName
	}
	name := strings.Join(strings.Fields(product), "-")
	return fmt.Sprintf("%s-Ventes-%s.%s", name, today.String(), strings.TrimPrefix(ext, "."))
}

// SheetName derives a worksheet name from a period label.
func SheetName(periodLabel string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(periodLabel) {
		switch r {
		case ' ':
			b.WriteRune('_')
		case ':', '\\', '/', '?', '*', '[', ']', '\'':
		default:
			b.WriteRune(r)
		}
	}
	name := b.String()
	if utf8.RuneCountInString(name) > maxSheetNameLength {
		name = string([]rune(name)[:maxSheetNameLength])
	}
	if name == "" {
		return defaultSheetName
	}
	return name
}

// BuildSalesXLSX renders records as a single-sheet workbook whose layout the
// importer reads back.
func BuildSalesXLSX(records []sales.SaleRecord, periodLabel string, loc locale.Locale) ([]byte, error) {
	labels := locale.LabelsFor(loc)
	f := excelize.NewFile()
	defer f.Close()

	sheet := SheetName(periodLabel)
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return nil, exportError(err)
	}

	header := []interface{}{labels.DateColumn, labels.TypeColumn, labels.AmountColumn, labels.NoteColumn}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, exportError(err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, exportError(err)
	}
	_ = f.SetCellStyle(sheet, "A1", "D1", bold)
	amountStyle, err := f.NewStyle(&excelize.Style{NumFmt: 2})
	if err != nil {
		return nil, exportError(err)
	}

	row := 2
	if len(records) == 0 {
		placeholder := []interface{}{labels.NoSales, "", "", ""}
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", row), &placeholder); err != nil {
			return nil, exportError(err)
		}
	}
	for _, record := range records {
		values := []interface{}{
			locale.FormatLong(record.Date, loc),
			labels.TypeLabel(record.Type),
			record.Amount.Round(2).InexactFloat64(),
			record.Note,
		}
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", row), &values); err != nil {
			return nil, exportError(err)
		}
		row++
	}
	if len(records) > 0 {
		total := []interface{}{"", "", sales.Total(records).InexactFloat64(), labels.Total}
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", row), &total); err != nil {
			return nil, exportError(err)
		}
		_ = f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("D%d", row), bold)
		_ = f.SetCellStyle(sheet, "C2", fmt.Sprintf("C%d", row), amountStyle)
	}

	_ = f.SetColWidth(sheet, "A", "A", 28)
	_ = f.SetColWidth(sheet, "B", "B", 14)
	_ = f.SetColWidth(sheet, "C", "C", 14)
	_ = f.SetColWidth(sheet, "D", "D", 30)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, exportError(err)
	}
	return buf.Bytes(), nil
}

const (
	pdfMargin    = 14.0
	pdfRowHeight = 8.0
	pdfFontName  = "ledger"
	pdfBlank     = "—"
)

var pdfColumnWidths = [3]float64{45, 22, 28}

// BuildSalesPDF renders records as an A4 table with a title block, a header
// repeated on every page and a total footer.
func BuildSalesPDF(records []sales.SaleRecord, periodLabel string, loc locale.Locale, opts ExportOptions) ([]byte, error) {
	labels := locale.LabelsFor(loc)
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(false, pdfMargin)

	family := "Arial"
	tr := func(s string) string { return s }
	switch {
	case opts.FontPath != "":
		pdf.AddUTF8Font(pdfFontName, "", opts.FontPath)
		pdf.AddUTF8Font(pdfFontName, "B", opts.FontPath)
		if pdf.Err() {
			return nil, exportError(pdf.Error())
		}
		family = pdfFontName
	case loc == locale.Arabic:
		return nil, fmt.Errorf("%w: arabic pdf needs a unicode font", sales.ErrExportUnavailable)
	default:
		tr = pdf.UnicodeTranslatorFromDescriptor("")
	}

	pdf.AddPage()
	pageWidth, pageHeight := pdf.GetPageSize()
	tableWidth := pageWidth - 2*pdfMargin
	widths := []float64{
		pdfColumnWidths[0],
		pdfColumnWidths[1],
		pdfColumnWidths[2],
		tableWidth - pdfColumnWidths[0] - pdfColumnWidths[1] - pdfColumnWidths[2],
	}
	align := "L"
	if loc == locale.Arabic {
		align = "R"
	}

	pdf.SetFont(family, "B", 18)
	pdf.CellFormat(0, 9, tr(opts.product()), "", 1, align, false, 0, "")
	pdf.SetFont(family, "", 11)
	pdf.CellFormat(0, 6, tr(labels.HistoryTitle), "", 1, align, false, 0, "")
	generated := fmt.Sprintf("%s · %s %s", periodLabel, labels.GeneratedOn, locale.FormatGenerated(opts.Today, loc))
	pdf.CellFormat(0, 6, tr(generated), "", 1, align, false, 0, "")
	pdf.Ln(4)

	drawHeader := func() {
		pdf.SetFont(family, "B", 10)
		pdf.SetFillColor(201, 155, 45)
		pdf.SetTextColor(255, 255, 255)
		pdf.SetDrawColor(201, 155, 45)
		for i, column := range labels.Columns() {
			pdf.CellFormat(widths[i], pdfRowHeight, tr(column), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont(family, "", 10)
		pdf.SetTextColor(40, 40, 40)
		pdf.SetDrawColor(230, 220, 205)
	}
	ensureRoom := func() {
		if pdf.GetY()+pdfRowHeight > pageHeight-pdfMargin {
			pdf.AddPage()
			drawHeader()
		}
	}

	drawHeader()
	aligns := []string{"L", "C", "R", "L"}
	if len(records) == 0 {
		for c, text := range []string{labels.NoSales, pdfBlank, pdfBlank, pdfBlank} {
			pdf.CellFormat(widths[c], pdfRowHeight, tr(text), "1", 0, aligns[c], false, 0, "")
		}
		pdf.Ln(-1)
	}
	for i, record := range records {
		ensureRoom()
		if i%2 == 1 {
			pdf.SetFillColor(250, 246, 241)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}
		typeLabel := labels.TypeLabel(record.Type)
		if typeLabel == "" {
			typeLabel = pdfBlank
		}
		cells := []string{
			locale.FormatLong(record.Date, loc),
			typeLabel,
			record.Amount.StringFixed(2),
			record.Note,
		}
		for c, text := range cells {
			pdf.CellFormat(widths[c], pdfRowHeight, fitText(pdf, tr, text, widths[c]-2), "1", 0, aligns[c], true, 0, "")
		}
		pdf.Ln(-1)
	}
	if len(records) > 0 {
		ensureRoom()
		pdf.SetFont(family, "B", 10)
		pdf.SetFillColor(201, 155, 45)
		pdf.SetTextColor(255, 255, 255)
		pdf.CellFormat(widths[0], pdfRowHeight, "", "1", 0, "L", true, 0, "")
		pdf.CellFormat(widths[1], pdfRowHeight, "", "1", 0, "C", true, 0, "")
		pdf.CellFormat(widths[2], pdfRowHeight, sales.Total(records).StringFixed(2), "1", 0, "R", true, 0, "")
		pdf.CellFormat(widths[3], pdfRowHeight, tr(labels.Total), "1", 1, "L", true, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, exportError(err)
	}
	return buf.Bytes(), nil
}

// fitText translates text and truncates it so that it renders within width.
func fitText(pdf *gofpdf.Fpdf, tr func(string) string, text string, width float64) string {
	if pdf.GetStringWidth(tr(text)) <= width {
		return tr(text)
	}
	runes := []rune(text)
	for len(runes) > 0 && pdf.GetStringWidth(tr(string(runes)+"...")) > width {
		runes = runes[:len(runes)-1]
	}
	return tr(string(runes) + "...")
}

func exportError(err error) error {
	return fmt.Errorf("%w: %v", sales.ErrExportUnavailable, err)
}
