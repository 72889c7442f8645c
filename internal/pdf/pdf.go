// Package pdf renders a study answer as a downloadable A4 document.
package pdf

import (
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/go-pdf/fpdf"
)

// Layout in millimetres. Body lines get about 4pt of extra gap.
const (
	margin      = 15.0
	titleSize   = 20.0
	titleLineH  = 10.0
	bodySize    = 12.0
	bodyLineH   = 6.0
	maxNameRune = 80
)

// Renderer builds the export document.
type Renderer struct {
	creator string
}

// NewRenderer returns a Renderer that stamps creator into the PDF metadata.
func NewRenderer(creator string) *Renderer {
	return &Renderer{creator: creator}
}

// Render writes a PDF with an underlined "Topic: <topic>" heading followed by
// content. The core fonts are cp1252, so text is passed through fpdf's
// unicode translator and runes outside that code page degrade gracefully.
func (r *Renderer) Render(w io.Writer, topic, content string) error {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetMargins(margin, margin, margin)
	doc.SetAutoPageBreak(true, margin)
	doc.SetTitle(topic, true)
	doc.SetCreator(r.creator, true)

	tr := doc.UnicodeTranslatorFromDescriptor("")

	doc.AddPage()

	doc.SetFont("Helvetica", "U", titleSize)
	doc.MultiCell(0, titleLineH, tr("Topic: "+topic), "", "L", false)
	doc.Ln(bodyLineH)

	doc.SetFont("Helvetica", "", bodySize)
	for _, para := range strings.Split(normalizeNewlines(content), "\n") {
		doc.MultiCell(0, bodyLineH, tr(para), "", "L", false)
	}

	if err := doc.Output(w); err != nil {
		return fmt.Errorf("pdf: rendering: %w", err)
	}
	return nil
}

func normalizeNewlines(s string) string {
	return strings.ReplaceAll(s, "\r\n", "\n")
}

// Filename turns a topic into a safe attachment name ending in ".pdf".
//
// Only ASCII letters, digits, '-' and '_' survive; every other run of
// characters becomes a single '_'. An empty result falls back to "notes".
func Filename(topic string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range topic {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_') {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
			continue
		}
		pendingSep = true
	}

	name := b.String()
	if len(name) > maxNameRune {
		name = name[:maxNameRune]
	}
	if name == "" {
		name = "notes"
	}
	return name + ".pdf"
}
