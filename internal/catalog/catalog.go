// Package catalog holds the study programs: which specializations each
// academic year offers and which subjects, formulas and coefficients make up
// every semester.
package catalog

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/dotcommander/moyenne/internal/grades"
)

// ErrUnknownSemester is returned when no subject list exists for a key.
var ErrUnknownSemester = errors.New("no subjects configured for this semester")

// Specialization is one program offered in a given year.
type Specialization struct {
	ID   string `yaml:"id" toml:"id" json:"id"`
	Name string `yaml:"name" toml:"name" json:"name"`
	Icon string `yaml:"icon,omitempty" toml:"icon,omitempty" json:"icon,omitempty"`
}

// YearEntry describes one academic year.
type YearEntry struct {
	Label           string           `yaml:"label,omitempty" toml:"label,omitempty" json:"label,omitempty"`
	Specializations []Specialization `yaml:"specializations,omitempty" toml:"specializations,omitempty" json:"specializations,omitempty"`
}

// SubjectTemplate is a subject as configured, before any grade is entered.
type SubjectTemplate struct {
	Name          string             `yaml:"name" toml:"name" json:"name"`
	Formula       grades.FormulaKind `yaml:"formula" toml:"formula" json:"formula"`
	Coefficient   float64            `yaml:"coefficient" toml:"coefficient" json:"coefficient"`
	OptionalGroup string             `yaml:"optional_group,omitempty" toml:"optional_group,omitempty" json:"optional_group,omitempty"`
}

// SemesterConfig is the ordered subject list of one semester.
type SemesterConfig struct {
	Subjects []SubjectTemplate `yaml:"subjects" toml:"subjects" json:"subjects"`
}

// TotalCoefficient sums the coefficients of every subject.
func (s SemesterConfig) TotalCoefficient() float64 {
	total := 0.0
	for _, t := range s.Subjects {
		total += t.Coefficient
	}
	return total
}

// Catalog maps years to their specializations and semester keys to subject
// lists. Semester keys are built by Key.String.
type Catalog struct {
	Years     map[string]YearEntry      `yaml:"years,omitempty" toml:"years,omitempty" json:"years,omitempty"`
	Semesters map[string]SemesterConfig `yaml:"semesters,omitempty" toml:"semesters,omitempty" json:"semesters,omitempty"`
}

// New returns an empty catalog.
func New() *Catalog {
	return &Catalog{
		Years:     make(map[string]YearEntry),
		Semesters: make(map[string]SemesterConfig),
	}
}

// Clone returns a deep copy.
func (c *Catalog) Clone() *Catalog {
	out := New()
	for y, e := range c.Years {
		e.Specializations = slices.Clone(e.Specializations)
		out.Years[y] = e
	}
	for k, s := range c.Semesters {
		out.Semesters[k] = SemesterConfig{Subjects: slices.Clone(s.Subjects)}
	}
	return out
}

// YearIDs returns the configured years in ascending order.
func (c *Catalog) YearIDs() []string {
	out := make([]string, 0, len(c.Years))
	for y := range c.Years {
		out = append(out, y)
	}
	sort.Strings(out)
	return out
}

// YearLabel returns the display label for year, or a generic one.
func (c *Catalog) YearLabel(year string) string {
	if e, ok := c.Years[year]; ok && e.Label != "" {
		return e.Label
	}
	return "Année " + year
}

// Specializations lists the programs offered in year, in display order.
func (c *Catalog) Specializations(year string) []Specialization {
	return slices.Clone(c.Years[year].Specializations)
}

// Specialization finds one program of year by id.
func (c *Catalog) Specialization(year, id string) (Specialization, bool) {
	for _, s := range c.Years[year].Specializations {
		if s.ID == id {
			return s, true
		}
	}
	return Specialization{}, false
}

// Lookup returns the semester configured for key.
func (c *Catalog) Lookup(key Key) (SemesterConfig, bool) {
	s, ok := c.Semesters[key.String()]
	return s, ok
}

// Subjects builds a fresh subject list for key, with no grades entered.
func (c *Catalog) Subjects(key Key) ([]grades.Subject, error) {
	sem, ok := c.Lookup(key)
	if !ok || len(sem.Subjects) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSemester, key)
	}
	out := make([]grades.Subject, len(sem.Subjects))
	for i, t := range sem.Subjects {
		out[i] = grades.Subject{
			Name:          t.Name,
			Formula:       t.Formula,
			Coefficient:   t.Coefficient,
			OptionalGroup: t.OptionalGroup,
			Inputs:        grades.GradeInput{},
		}
	}
	return out, nil
}

// Keys returns every configured semester key, sorted by year, then
// specialization, then semester.
func (c *Catalog) Keys() []Key {
	out := make([]Key, 0, len(c.Semesters))
	for raw := range c.Semesters {
		k, err := ParseKey(raw)
		if err != nil {
			continue
		}
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		if a.Specialization != b.Specialization {
			return a.Specialization < b.Specialization
		}
		return a.Semester < b.Semester
	})
	return out
}

// Validate checks the rules the schema cannot express: semester keys must
// parse and point at an offered specialization, subject names must be
// unique within a semester, and formulas must exist. All problems are
// returned together.
func (c *Catalog) Validate() error {
	var errs []error
	for _, raw := range sortedKeys(c.Semesters) {
		k, err := ParseKey(raw)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if _, ok := c.Specialization(k.Year, k.Specialization); !ok {
			errs = append(errs, fmt.Errorf("semester %s: specialization %q is not offered in year %s", raw, k.Specialization, k.Year))
		}

		seen := make(map[string]bool)
		for i, t := range c.Semesters[raw].Subjects {
			name := strings.TrimSpace(t.Name)
			switch {
			case name == "":
				errs = append(errs, fmt.Errorf("semester %s: subject %d has no name", raw, i+1))
			case seen[name]:
				errs = append(errs, fmt.Errorf("semester %s: duplicate subject %q", raw, name))
			}
			seen[name] = true
			if !t.Formula.Valid() {
				errs = append(errs, fmt.Errorf("semester %s: subject %q: %w: %q", raw, t.Name, grades.ErrUnknownFormula, t.Formula))
			}
			if t.Coefficient <= 0 {
				errs = append(errs, fmt.Errorf("semester %s: subject %q: coefficient must be positive, got %g", raw, t.Name, t.Coefficient))
			}
		}
	}
	return errors.Join(errs...)
}

// Merge returns base with overlay applied. Overlay semesters replace base
// semesters with the same key; overlay specializations replace those with
// the same id and are otherwise appended; a non-empty overlay label wins.
func Merge(base, overlay *Catalog) *Catalog {
	out := base.Clone()
	for y, oe := range overlay.Years {
		e := out.Years[y]
		if oe.Label != "" {
			e.Label = oe.Label
		}
		for _, s := range oe.Specializations {
			idx := slices.IndexFunc(e.Specializations, func(x Specialization) bool { return x.ID == s.ID })
			if idx >= 0 {
				e.Specializations[idx] = s
			} else {
				e.Specializations = append(e.Specializations, s)
			}
		}
		out.Years[y] = e
	}
	for k, s := range overlay.Semesters {
		out.Semesters[k] = SemesterConfig{Subjects: slices.Clone(s.Subjects)}
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
