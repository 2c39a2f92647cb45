package report

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// SimplePDFRenderer lays out report markdown with fpdf core fonts. It covers
// the block types BuildMarkdown emits: headings, paragraphs, lists, tables
// and rules.
type SimplePDFRenderer struct {
	font string
	size float64
}

func NewSimplePDFRenderer() *SimplePDFRenderer {
	return &SimplePDFRenderer{font: "Helvetica", size: 10}
}

func (r *SimplePDFRenderer) Render(ctx context.Context, markdown string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	source := []byte(markdown)
	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	doc := md.Parser().Parse(text.NewReader(source))

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 15)
	pdf.SetFillColor(241, 245, 249)
	pdf.SetTitle(reportTitle(markdown), true)
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont(r.font, "", 8)
		pdf.CellFormat(0, 6, fmt.Sprintf("Page %d of {nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	w := &pdfWriter{
		pdf:    pdf,
		source: source,
		tr:     pdf.UnicodeTranslatorFromDescriptor(""),
		font:   r.font,
		size:   r.size,
	}
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		w.block(n)
	}
	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("layout pdf: %w", err)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

type pdfWriter struct {
	pdf    *fpdf.Fpdf
	source []byte
	tr     func(string) string
	font   string
	size   float64
}

func (w *pdfWriter) lineHeight(size float64) float64 { return size * 0.5 }

func (w *pdfWriter) block(n ast.Node) {
	switch node := n.(type) {
	case *ast.Heading:
		size := w.size + float64(6-node.Level)*2
		w.pdf.Ln(2)
		w.pdf.SetFont(w.font, "B", size)
		w.pdf.MultiCell(0, w.lineHeight(size)+1, w.tr(plainText(node, w.source)), "", "L", false)
		w.pdf.Ln(1)
	case *ast.Paragraph, *ast.TextBlock:
		w.pdf.SetFont(w.font, "", w.size)
		w.pdf.MultiCell(0, w.lineHeight(w.size), w.tr(plainText(node, w.source)), "", "L", false)
		w.pdf.Ln(2)
	case *ast.List:
		w.pdf.SetFont(w.font, "", w.size)
		for item := node.FirstChild(); item != nil; item = item.NextSibling() {
			w.pdf.MultiCell(0, w.lineHeight(w.size), w.tr("- "+plainText(item, w.source)), "", "L", false)
		}
		w.pdf.Ln(2)
	case *ast.ThematicBreak:
		left, _, right, _ := w.pdf.GetMargins()
		pageW, _ := w.pdf.GetPageSize()
		y := w.pdf.GetY() + 1
		w.pdf.Line(left, y, pageW-right, y)
		w.pdf.Ln(3)
	case *extast.Table:
		w.table(node)
	default:
		if s := plainText(n, w.source); s != "" {
			w.pdf.SetFont(w.font, "", w.size)
			w.pdf.MultiCell(0, w.lineHeight(w.size), w.tr(s), "", "L", false)
		}
	}
}

func (w *pdfWriter) table(t *extast.Table) {
	left, _, right, _ := w.pdf.GetMargins()
	pageW, _ := w.pdf.GetPageSize()
	cols := len(t.Alignments)
	if cols == 0 {
		return
	}
	colW := (pageW - left - right) / float64(cols)
	h := w.lineHeight(w.size) + 1.5

	for row := t.FirstChild(); row != nil; row = row.NextSibling() {
		_, header := row.(*extast.TableHeader)
		style := ""
		if header {
			style = "B"
		}
		w.pdf.SetFont(w.font, style, w.size-1)
		for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
			txt := w.fit(w.tr(plainText(cell, w.source)), colW-2)
			w.pdf.CellFormat(colW, h, txt, "1", 0, "L", header, 0, "")
		}
		w.pdf.Ln(-1)
	}
	w.pdf.Ln(3)
}

// fit truncates s so it renders within width millimetres.
func (w *pdfWriter) fit(s string, width float64) string {
	if w.pdf.GetStringWidth(s) <= width {
		return s
	}
	for len(s) > 0 && w.pdf.GetStringWidth(s+"...") > width {
		s = s[:len(s)-1]
	}
	return s + "..."
}

func plainText(n ast.Node, source []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(source))
			if t.SoftLineBreak() || t.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(b.String())
}
