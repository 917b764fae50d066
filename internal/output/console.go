package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dotcommander/moyenne/internal/entry"
	"github.com/dotcommander/moyenne/internal/grades"
)

var (
	bandStyles = map[entry.Band]lipgloss.Style{
		entry.BandExcellent: lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true),
		entry.BandGood:      lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		entry.BandFair:      lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		entry.BandPass:      lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		entry.BandFail:      lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
	}
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	boldStyle   = lipgloss.NewStyle().Bold(true)
	headerStyle = lipgloss.NewStyle().Bold(true).Underline(true)
)

// ConsoleFormatter prints a report as a coloured table.
type ConsoleFormatter struct {
	opts Options
}

// NewConsoleFormatter creates a new ConsoleFormatter
func NewConsoleFormatter(opts Options) *ConsoleFormatter {
	return &ConsoleFormatter{opts: opts}
}

// Format writes the table, the general average and the verdict. Quiet mode
// keeps only the general average line.
func (f *ConsoleFormatter) Format(w io.Writer, r Report) error {
	avg := r.Result.GeneralAverage
	avgText := bandStyles[entry.BandOf(avg)].Render(f.opts.grade(avg) + "/20")

	if f.opts.Quiet {
		_, err := fmt.Fprintf(w, "%s %s\n", r.Key, avgText)
		return err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\n%s\n", boldStyle.Render(r.Title()))
	fmt.Fprintf(&b, "%s\n", dimStyle.Render(r.YearLabel))
	if r.Preview {
		fmt.Fprintf(&b, "%s\n", dimStyle.Render("Aperçu: les matières incomplètes comptent pour leur dernière moyenne ou 0"))
	}
	b.WriteString("\n")
	f.writeTable(&b, r)

	fmt.Fprintf(&b, "\n%s %s\n", boldStyle.Render("Moyenne Générale:"), avgText)
	if !r.Preview {
		passed := r.Result.Passed()
		title, detail := verdict(passed)
		style := bandStyles[entry.BandFail]
		if passed {
			style = bandStyles[entry.BandGood]
		}
		fmt.Fprintf(&b, "%s %s\n", style.Render(title+" "+decision(passed)), detail)
	}
	fmt.Fprintf(&b, "%s\n", dimStyle.Render(fmt.Sprintf("Seuil: %g/20", grades.PassThreshold)))

	_, err := io.WriteString(w, b.String())
	return err
}

func (f *ConsoleFormatter) writeTable(b *strings.Builder, r Report) {
	nameW := len([]rune("Matière"))
	for _, row := range r.Rows {
		nameW = max(nameW, len([]rune(row.Name)))
	}
	col := func(s string, width int) string {
		return lipgloss.NewStyle().Width(width).Render(s)
	}

	fmt.Fprintf(b, "%s  %s  %s  %s\n",
		headerStyle.Render(col("Matière", nameW)),
		headerStyle.Render(col("Coef", 5)),
		headerStyle.Render(col("Moyenne", 8)),
		headerStyle.Render("Part"))

	for _, row := range r.Rows {
		avg := dimStyle.Render(col(statusLabel(row.Status), 8))
		share := ""
		if row.Average != nil {
			avg = bandStyles[entry.BandOf(*row.Average)].Render(col(f.opts.grade(*row.Average), 8))
			share = fmt.Sprintf("%.0f%%", row.Share*100)
		}
		fmt.Fprintf(b, "%s  %s  %s  %s\n",
			col(row.Name, nameW),
			col(fmt.Sprintf("%g", row.Coefficient), 5),
			avg,
			share)

		if f.opts.Verbose {
			fmt.Fprintf(b, "  %s\n", dimStyle.Render(row.Description))
			if len(row.Missing) > 0 && row.Status != StatusExcluded {
				labels := make([]string, len(row.Missing))
				for i, m := range row.Missing {
					labels[i] = grades.Label(m)
				}
				fmt.Fprintf(b, "  %s\n", dimStyle.Render("manque: "+strings.Join(labels, ", ")))
			}
		}
	}
}

func statusLabel(s Status) string {
	switch s {
	case StatusExcluded:
		return "exclue"
	case StatusIncomplete:
		return "—"
	default:
		return string(s)
	}
}
