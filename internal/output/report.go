// Package output renders a semester result for the terminal and for files.
package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dotcommander/moyenne/internal/catalog"
	"github.com/dotcommander/moyenne/internal/grades"
)

// Status tells how a subject took part in the result.
type Status string

const (
	StatusCounted    Status = "counted"
	StatusEstimated  Status = "estimated"
	StatusIncomplete Status = "incomplete"
	StatusExcluded   Status = "excluded"
)

// Row is one subject line of a report.
type Row struct {
	Name          string             `json:"name"`
	Formula       grades.FormulaKind `json:"formula"`
	Description   string             `json:"description"`
	Coefficient   float64            `json:"coefficient"`
	OptionalGroup string             `json:"optional_group,omitempty"`
	Inputs        grades.GradeInput  `json:"inputs,omitempty"`
	Missing       []grades.Field     `json:"missing,omitempty"`
	Status        Status             `json:"status"`
	Average       *float64           `json:"average,omitempty"`
	// Share is the part of the general average this subject accounts for.
	Share float64 `json:"share"`
}

// Report is everything a formatter needs to render one result.
type Report struct {
	ID                 string
	GeneratedAt        time.Time
	Key                catalog.Key
	YearLabel          string
	SpecializationName string
	Preview            bool
	Rows               []Row
	Result             grades.Result
}

var now = time.Now

// NewReport pairs a result with the subjects it was computed from. cat may
// be nil, in which case labels fall back to the raw key parts.
func NewReport(cat *catalog.Catalog, key catalog.Key, subjects []grades.Subject, result grades.Result, preview bool) Report {
	r := Report{
		ID:                 uuid.NewString(),
		GeneratedAt:        now(),
		Key:                key,
		YearLabel:          "Année " + key.Year,
		SpecializationName: strings.ToUpper(key.Specialization),
		Preview:            preview,
		Result:             result,
	}
	if cat != nil {
		r.YearLabel = cat.YearLabel(key.Year)
		if s, ok := cat.Specialization(key.Year, key.Specialization); ok {
			r.SpecializationName = s.Name
		}
	}

	included := grades.Resolve(subjects)
	total := result.TotalCoefficient()
	r.Rows = make([]Row, 0, len(subjects))
	for i, s := range subjects {
		row := Row{
			Name:          s.Name,
			Formula:       s.Formula,
			Description:   grades.Describe(s.Formula),
			Coefficient:   s.Coefficient,
			OptionalGroup: s.OptionalGroup,
			Inputs:        s.Inputs.Clone(),
			Missing:       grades.Missing(s),
		}
		entry, found := result.Find(s.Name)
		switch {
		case !included[i]:
			row.Status = StatusExcluded
		case found && grades.IsComplete(s):
			row.Status = StatusCounted
		case found:
			row.Status = StatusEstimated
		default:
			row.Status = StatusIncomplete
		}
		if found && included[i] {
			avg := entry.Average
			row.Average = &avg
			if total > 0 {
				row.Share = entry.Contribution() / total
			}
		}
		r.Rows = append(r.Rows, row)
	}
	return r
}

// Title names the semester, e.g. "Semestre 1 · Licence Sciences Économiques".
func (r Report) Title() string {
	return fmt.Sprintf("Semestre %s · %s", r.Key.Semester, r.SpecializationName)
}

// Counted returns the rows whose average entered the result.
func (r Report) Counted() []Row {
	var out []Row
	for _, row := range r.Rows {
		if row.Average != nil {
			out = append(out, row)
		}
	}
	return out
}

// Options holds the settings shared by every formatter.
type Options struct {
	Quiet         bool
	Verbose       bool
	Decimals      int
	NoCelebration bool
	OutputFile    string
}

func (o Options) grade(v float64) string {
	return fmt.Sprintf("%.*f", o.Decimals, v)
}

// Formatter renders a report to w.
type Formatter interface {
	Format(w io.Writer, r Report) error
}

func verdict(passed bool) (title, detail string) {
	if passed {
		return "Félicitations !", "Vous avez validé votre semestre"
	}
	return "Courage !", "Vous devez améliorer vos résultats"
}

func decision(passed bool) string {
	if passed {
		return "Admis"
	}
	return "Ajourné"
}
