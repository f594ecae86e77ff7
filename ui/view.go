package ui

import (
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/truncate"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/svm0n/ttscli/internal/session"
)

const textPreviewWidth = 50

var upper = cases.Upper(language.Und)

func (a *App) viewConfiguration() {
	a.println("\n" + rule("=", wideRule))
	a.println(titleStyle.Render("CURRENT CONFIGURATION"))
	a.println(rule("=", wideRule))
	a.printf("%s", renderConfiguration(a.session))
	if a.settings != nil {
		a.println(faintStyle.Render("Saved settings: " + a.settings.Path()))
	}
	a.println(rule("=", wideRule))
}

type field struct {
	label string
	value string
}

func configurationFields(s *session.Session) []field {
	fields := []field{
		{"Conversion Type", upper.String(string(s.Kind))},
		{"TTS Model", string(s.Model)},
		{"PDF Extractor", string(s.Extractor)},
		{"Output Format", upper.String(string(s.Format))},
		{"Output Directory", s.OutputDir},
		{"Device", string(s.Device)},
		{"Voice", voiceLabel(s.Voice)},
		{"Speed", formatSpeed(s.Speed)},
	}

	switch s.Kind {
	case session.KindPDF:
		fields = append(fields,
			field{"PDF Path", orNotSet(s.PDFPath)},
			field{"Pages", session.FormatPages(s.Pages)},
		)
	case session.KindEPUB:
		fields = append(fields, field{"EPUB Path", orNotSet(s.EPUBPath)})
	case session.KindText:
		fields = append(fields, field{"Text", orNotSet(preview(s.Text))})
	}
	return fields
}

// renderConfiguration lays out the session as aligned label/value lines.
func renderConfiguration(s *session.Session) string {
	fields := configurationFields(s)

	width := 0
	for _, f := range fields {
		width = max(width, runewidth.StringWidth(f.label)+1)
	}

	var b strings.Builder
	for _, f := range fields {
		label := runewidth.FillRight(f.label+":", width+2)
		b.WriteString(labelStyle.Render(label))
		b.WriteString(f.value)
		b.WriteString("\n")
	}
	return b.String()
}

// preview shortens text to textPreviewWidth cells, marking the cut.
func preview(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	if runewidth.StringWidth(text) <= textPreviewWidth {
		return text
	}
	return truncate.String(text, textPreviewWidth) + "..."
}

func orNotSet(s string) string {
	if s == "" {
		return "Not set"
	}
	return s
}
