// Package grades computes subject and semester averages.
//
// Everything here is a pure function of its arguments: a subject list goes in,
// a Result comes out, and nothing is retained between calls. Missing data is
// reported through sentinels (an absent average, a zero general average), never
// through errors.
package grades

import (
	"errors"
	"fmt"
)

// Field names one grade component.
type Field string

const (
	FieldTD   Field = "td"
	FieldExam Field = "exam"
	FieldDS1  Field = "ds1"
	FieldDS2  Field = "ds2"
	FieldTP   Field = "tp"
)

// AllFields returns every grade component in canonical order.
func AllFields() []Field {
	return []Field{FieldTD, FieldExam, FieldDS1, FieldDS2, FieldTP}
}

// ParseField converts a component name such as "ds1" to a Field.
func ParseField(s string) (Field, error) {
	for _, f := range AllFields() {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown grade component: %q", s)
}

// GradeInput is a sparse set of grade components. A missing key means the
// value has not been entered yet, which is not the same as a zero grade.
type GradeInput map[Field]float64

// Get returns the value of f and whether it is present.
func (g GradeInput) Get(f Field) (float64, bool) {
	v, ok := g[f]
	return v, ok
}

// Has reports whether f has been entered.
func (g GradeInput) Has(f Field) bool {
	_, ok := g[f]
	return ok
}

// Any reports whether at least one component has been entered.
func (g GradeInput) Any() bool {
	return len(g) > 0
}

// Clone returns an independent copy. A nil input stays nil.
func (g GradeInput) Clone() GradeInput {
	if g == nil {
		return nil
	}
	out := make(GradeInput, len(g))
	for k, v := range g {
		out[k] = v
	}
	return out
}

// With returns a copy of g with f set to v.
func (g GradeInput) With(f Field, v float64) GradeInput {
	out := make(GradeInput, len(g)+1)
	for k, x := range g {
		out[k] = x
	}
	out[f] = v
	return out
}

// Without returns a copy of g with f removed.
func (g GradeInput) Without(f Field) GradeInput {
	out := g.Clone()
	delete(out, f)
	return out
}

// FormulaKind selects a weighting scheme.
type FormulaKind string

const (
	FormulaTDExam     FormulaKind = "td_exam"
	FormulaDS1DS2     FormulaKind = "ds1_ds2"
	FormulaTDDS1DS2   FormulaKind = "td_ds1_ds2"
	FormulaTPDS1DS2   FormulaKind = "tp_ds1_ds2"
	FormulaTDTPExam   FormulaKind = "td_tp_exam"
	FormulaDS1Exam    FormulaKind = "ds1_exam"
	FormulaTDExamHalf FormulaKind = "td_exam_50_50"
	FormulaTPExam     FormulaKind = "tp_exam"
	FormulaTPDS1Exam  FormulaKind = "tp_ds1_exam"
)

// ErrUnknownFormula is returned by ParseFormula for tags missing from the table.
var ErrUnknownFormula = errors.New("unknown formula")

// Formulas returns every known formula kind in table order.
func Formulas() []FormulaKind {
	return []FormulaKind{
		FormulaTDExam,
		FormulaDS1DS2,
		FormulaTDDS1DS2,
		FormulaTPDS1DS2,
		FormulaTDTPExam,
		FormulaDS1Exam,
		FormulaTDExamHalf,
		FormulaTPExam,
		FormulaTPDS1Exam,
	}
}

// ParseFormula converts a catalog tag to a FormulaKind.
func ParseFormula(s string) (FormulaKind, error) {
	k := FormulaKind(s)
	if !k.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownFormula, s)
	}
	return k, nil
}

// Valid reports whether k has an entry in the formula table.
func (k FormulaKind) Valid() bool {
	_, ok := formulaTable[k]
	return ok
}

// Subject is one course of a semester together with the grades entered so far.
// Subjects sharing a non-empty OptionalGroup are alternatives: only the one the
// student fills counts.
type Subject struct {
	Name          string      `json:"name" yaml:"name"`
	Inputs        GradeInput  `json:"inputs,omitempty" yaml:"inputs,omitempty"`
	Formula       FormulaKind `json:"formula" yaml:"formula"`
	Coefficient   float64     `json:"coefficient" yaml:"coefficient"`
	OptionalGroup string      `json:"optional_group,omitempty" yaml:"optional_group,omitempty"`
}

// Clone returns a copy of s whose inputs can be changed independently.
func (s Subject) Clone() Subject {
	s.Inputs = s.Inputs.Clone()
	return s
}

// CloneSubjects deep-copies a subject list.
func CloneSubjects(subjects []Subject) []Subject {
	out := make([]Subject, len(subjects))
	for i, s := range subjects {
		out[i] = s.Clone()
	}
	return out
}

// PassThreshold is the general average required to pass a semester.
const PassThreshold = 10.0

// AverageEntry is one subject's contribution to a Result.
type AverageEntry struct {
	Name        string  `json:"name"`
	Average     float64 `json:"average"`
	Coefficient float64 `json:"coefficient"`
}

// Contribution returns the weighted points the subject adds to the total.
func (e AverageEntry) Contribution() float64 {
	return e.Average * e.Coefficient
}

// Result is the outcome of one aggregation call. It is never modified after
// it has been returned.
type Result struct {
	SubjectAverages []AverageEntry `json:"subject_averages"`
	GeneralAverage  float64        `json:"general_average"`
}

// Passed reports whether the general average reaches PassThreshold.
func (r Result) Passed() bool {
	return r.GeneralAverage >= PassThreshold
}

// Find returns the entry for the subject called name.
func (r Result) Find(name string) (AverageEntry, bool) {
	for _, e := range r.SubjectAverages {
		if e.Name == name {
			return e, true
		}
	}
	return AverageEntry{}, false
}

// TotalCoefficient sums the coefficients of the subjects that contributed.
func (r Result) TotalCoefficient() float64 {
	total := 0.0
	for _, e := range r.SubjectAverages {
		total += e.Coefficient
	}
	return total
}
