package evaluation

import (
	"fmt"
	"io"
	"strings"

	"github.com/frahmantamala/stagiaire-management/internal/stagiaire"
	"github.com/go-pdf/fpdf"
)

// WriteReport renders a one-page PDF summary of e for stagiaire st.
func WriteReport(w io.Writer, e *Evaluation, st *stagiaire.Stagiaire) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetTitle(fmt.Sprintf("Evaluation %d", e.ID), true)
	pdf.SetCreator("stagiaire-management", true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, tr("Fiche d'évaluation du stagiaire"), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 11)
	info := [][2]string{
		{"Stagiaire", st.FullName()},
		{"Email", st.Email},
		{"Établissement", st.Etablissement},
		{"Formation", st.Formation},
		{"Intitulé", st.Intitule},
		{"Période", strings.TrimSpace(st.DateDebut + " - " + st.DateFin)},
		{"Statut", e.Status},
		{"Date", e.CreatedAt.Format("02/01/2006")},
	}
	for _, row := range info {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(45, 7, tr(row[0]), "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		pdf.CellFormat(0, 7, tr(row[1]), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetFillColor(230, 236, 245)
	pdf.CellFormat(120, 8, tr("Critère"), "1", 0, "L", true, 0, "")
	pdf.CellFormat(0, 8, "Note / 5", "1", 1, "C", true, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	scores := []struct {
		label string
		value float64
	}{
		{"Compétences techniques", e.TechnicalSkills},
		{"Communication", e.Communication},
		{"Travail en équipe", e.Teamwork},
		{"Initiative", e.Initiative},
	}
	for _, s := range scores {
		pdf.CellFormat(120, 8, tr(s.label), "1", 0, "L", false, 0, "")
		pdf.CellFormat(0, 8, formatScore(s.value), "1", 1, "C", false, 0, "")
	}

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(120, 8, "Moyenne", "1", 0, "L", true, 0, "")
	pdf.CellFormat(0, 8, formatScore(e.AverageScore), "1", 1, "C", true, 0, "")

	if e.Comment != "" {
		pdf.Ln(6)
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(0, 7, "Commentaire", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 6, tr(e.Comment), "", "L", false)
	}

	return pdf.Output(w)
}

func formatScore(v float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", v), "0"), ".")
}
