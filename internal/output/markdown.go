package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dotcommander/moyenne/internal/grades"
)

// MarkdownFormatter formats output as Markdown
type MarkdownFormatter struct {
	opts Options
}

// NewMarkdownFormatter creates a new MarkdownFormatter
func NewMarkdownFormatter(opts Options) *MarkdownFormatter {
	return &MarkdownFormatter{opts: opts}
}

// Format writes the report as Markdown to the configured output file, or to
// w when none is set.
func (f *MarkdownFormatter) Format(w io.Writer, r Report) error {
	var builder strings.Builder

	builder.WriteString("# Relevé de notes\n\n")
	builder.WriteString(fmt.Sprintf("**Généré le:** %s\n\n", r.GeneratedAt.Format("2006-01-02 15:04:05")))
	builder.WriteString(fmt.Sprintf("**Semestre:** %s (%s)\n\n", r.Title(), r.YearLabel))
	if r.Preview {
		builder.WriteString("> Aperçu: résultat provisoire, les matières incomplètes sont estimées.\n\n")
	}
	builder.WriteString(strings.Repeat("-", 50) + "\n\n")

	builder.WriteString("## Résumé\n\n")
	builder.WriteString("| Indicateur | Valeur |\n")
	builder.WriteString("|------------|--------|\n")
	builder.WriteString(fmt.Sprintf("| Moyenne Générale | %s/20 |\n", f.opts.grade(r.Result.GeneralAverage)))
	builder.WriteString(fmt.Sprintf("| Seuil | %g/20 |\n", grades.PassThreshold))
	builder.WriteString(fmt.Sprintf("| Matières comptées | %d/%d |\n", len(r.Result.SubjectAverages), len(r.Rows)))
	builder.WriteString(fmt.Sprintf("| Total des coefficients | %g |\n", r.Result.TotalCoefficient()))
	if !r.Preview {
		builder.WriteString(fmt.Sprintf("| Décision | %s |\n", decision(r.Result.Passed())))
	}
	builder.WriteString("\n")

	builder.WriteString("## Matières\n\n")
	if len(r.Rows) == 0 {
		builder.WriteString("*Aucune matière.*\n")
	} else {
		builder.WriteString("| Matière | Formule | Coef | Moyenne | Part | Statut |\n")
		builder.WriteString("|---------|---------|------|---------|------|--------|\n")
		for _, row := range r.Rows {
			avg, share := "-", "-"
			if row.Average != nil {
				avg = f.opts.grade(*row.Average)
				share = fmt.Sprintf("%.1f%%", row.Share*100)
			}
			builder.WriteString(fmt.Sprintf("| %s | %s | %g | %s | %s | %s |\n",
				escapeCell(row.Name), row.Description, row.Coefficient, avg, share, row.Status))
		}
	}

	if !r.Preview {
		title, detail := verdict(r.Result.Passed())
		builder.WriteString(fmt.Sprintf("\n**%s** %s.\n", title, detail))
	}

	content := builder.String()
	if f.opts.OutputFile != "" {
		if err := os.WriteFile(f.opts.OutputFile, []byte(content), 0o644); err != nil {
			return fmt.Errorf("error writing markdown to file: %w", err)
		}
		return nil
	}
	_, err := io.WriteString(w, content)
	return err
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
