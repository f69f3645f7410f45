package ui

import (
	"strings"

	"github.com/manojSRawat/sunbird-resource-library/internal/core/csvimport"
)

func (m Model) viewImport() string {
	var b strings.Builder
	f := m.importer.Flags()

	title := "Update hierarchy from CSV"
	if f.UploadMode || (!f.UpdateMode && m.cfg.CreateCSV) {
		title = "Create hierarchy from CSV"
	}
	b.WriteString(listHeaderStyle.Render(title) + "\n")

	switch {
	case m.state == stateImporting || f.ValidationInProgress:
		b.WriteString(m.spinner.View() + " " + phaseText(f.Phase) + " " + subtleStyle.Render(f.FileName) + "\n")
	case f.Success:
		b.WriteString(okStyle.Render("✓ "+f.FileName+" imported") + "\n")
	case f.Error:
		b.WriteString(errorStyle.Render(f.Message) + "\n")
		if f.Detail != "" {
			b.WriteString(warnStyle.Render(f.Detail) + "\n")
		}
	case f.UploadEnabled:
		b.WriteString("Selected: " + focusStyle.Render(f.FileName) + "\n")
	default:
		b.WriteString("CSV file: " + m.imp.input.View() + "\n")
	}
	if m.imp.note != "" {
		b.WriteString("\n" + m.imp.note + "\n")
	}

	var help string
	switch {
	case !f.Closable:
		help = "please wait…"
	case f.Success:
		help = "Enter/Esc close  |  r import another  |  ctrl+d sample"
	case f.Error:
		help = "r upload again  |  Esc close  |  ctrl+d sample"
	case f.UploadEnabled:
		help = "Enter validate & upload  |  r choose another file  |  Esc close"
	default:
		help = "Enter select file  |  ctrl+d download sample  |  Esc close"
	}
	return modalStyle.Render(strings.TrimSuffix(b.String(), "\n")) + "\n\n" + renderFooter(m.metricsLine(), help)
}

func phaseText(p csvimport.Phase) string {
	switch p {
	case csvimport.AwaitingSlot:
		return "Requesting upload URL…"
	case csvimport.UploadingFile:
		return "Uploading file…"
	case csvimport.ConfirmingImport:
		return "Importing hierarchy…"
	default:
		return "Validating…"
	}
}
