package grades

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/dotcommander/moyenne/internal/logging"
)

// weightTolerance bounds how far a formula's weights may drift from 1.0.
const weightTolerance = 1e-9

// Term is one weighted grade component of a formula.
type Term struct {
	Field  Field
	Weight float64
}

// Formula is a fixed linear combination of grade components.
type Formula struct {
	Kind  FormulaKind
	Terms []Term
}

// formulaTable is the single source of truth for required inputs, weights
// and descriptions. Terms are listed in display order.
var formulaTable = map[FormulaKind]Formula{
	FormulaTDExam: {FormulaTDExam, []Term{
		{FieldTD, 0.3}, {FieldExam, 0.7},
	}},
	FormulaDS1DS2: {FormulaDS1DS2, []Term{
		{FieldDS1, 0.5}, {FieldDS2, 0.5},
	}},
	FormulaTDDS1DS2: {FormulaTDDS1DS2, []Term{
		{FieldTD, 0.2}, {FieldDS1, 0.4}, {FieldDS2, 0.4},
	}},
	FormulaTPDS1DS2: {FormulaTPDS1DS2, []Term{
		{FieldTP, 0.2}, {FieldDS1, 0.4}, {FieldDS2, 0.4},
	}},
	FormulaTDTPExam: {FormulaTDTPExam, []Term{
		{FieldTD, 0.1}, {FieldTP, 0.2}, {FieldExam, 0.7},
	}},
	FormulaDS1Exam: {FormulaDS1Exam, []Term{
		{FieldDS1, 0.3}, {FieldExam, 0.7},
	}},
	FormulaTDExamHalf: {FormulaTDExamHalf, []Term{
		{FieldTD, 0.5}, {FieldExam, 0.5},
	}},
	FormulaTPExam: {FormulaTPExam, []Term{
		{FieldTP, 0.3}, {FieldExam, 0.7},
	}},
	FormulaTPDS1Exam: {FormulaTPDS1Exam, []Term{
		{FieldTP, 0.1}, {FieldDS1, 0.2}, {FieldExam, 0.7},
	}},
}

var fieldLabels = map[Field]string{
	FieldTD:   "TD",
	FieldTP:   "TP",
	FieldDS1:  "DS1",
	FieldDS2:  "DS2",
	FieldExam: "Examen",
}

// LookupFormula returns the table entry for kind.
func LookupFormula(kind FormulaKind) (Formula, bool) {
	f, ok := formulaTable[kind]
	return f, ok
}

// lookup is LookupFormula that reports unknown kinds as catalog defects.
func lookup(kind FormulaKind) (Formula, bool) {
	f, ok := formulaTable[kind]
	if !ok {
		logging.Logf("grades: formula %q is not in the formula table; check the catalog", kind)
	}
	return f, ok
}

// Fields returns the required components in display order.
func (f Formula) Fields() []Field {
	out := make([]Field, len(f.Terms))
	for i, t := range f.Terms {
		out[i] = t.Field
	}
	return out
}

// Weights returns the term weights in display order.
func (f Formula) Weights() []float64 {
	out := make([]float64, len(f.Terms))
	for i, t := range f.Terms {
		out[i] = t.Weight
	}
	return out
}

// WeightSum returns the sum of the term weights.
func (f Formula) WeightSum() float64 {
	return floats.Sum(f.Weights())
}

// Validate checks that the weights form a convex combination.
func (f Formula) Validate() error {
	if len(f.Terms) == 0 {
		return fmt.Errorf("formula %s has no terms", f.Kind)
	}
	for _, t := range f.Terms {
		if t.Weight < 0 {
			return fmt.Errorf("formula %s: negative weight %g for %s", f.Kind, t.Weight, t.Field)
		}
	}
	if sum := f.WeightSum(); math.Abs(sum-1) > weightTolerance {
		return fmt.Errorf("formula %s: weights sum to %.12f, must sum to 1.0", f.Kind, sum)
	}
	return nil
}

// Apply computes the weighted average. It reports false when any required
// component is absent; a partial average is never produced.
func (f Formula) Apply(inputs GradeInput) (float64, bool) {
	total := 0.0
	for _, t := range f.Terms {
		v, ok := inputs.Get(t.Field)
		if !ok {
			return 0, false
		}
		total += v * t.Weight
	}
	return total, true
}

// Description renders the weight breakdown, e.g. "TD × 0.3 + Examen × 0.7".
func (f Formula) Description() string {
	parts := make([]string, len(f.Terms))
	for i, t := range f.Terms {
		parts[i] = Label(t.Field) + " × " + strconv.FormatFloat(t.Weight, 'f', -1, 64)
	}
	return strings.Join(parts, " + ")
}

// RequiredInputs returns the components formula needs, in display order.
// Unknown formulas yield an empty list.
func RequiredInputs(kind FormulaKind) []Field {
	f, ok := lookup(kind)
	if !ok {
		return []Field{}
	}
	return f.Fields()
}

// SubjectAverage applies the formula to inputs. The second result is false
// when a required component is absent or the formula is unknown.
func SubjectAverage(inputs GradeInput, kind FormulaKind) (float64, bool) {
	f, ok := lookup(kind)
	if !ok {
		return 0, false
	}
	return f.Apply(inputs)
}

// Describe returns the display string for kind, or "" when it is unknown.
func Describe(kind FormulaKind) string {
	f, ok := formulaTable[kind]
	if !ok {
		return ""
	}
	return f.Description()
}

// Label returns the display label of a grade component.
func Label(f Field) string {
	if l, ok := fieldLabels[f]; ok {
		return l
	}
	return strings.ToUpper(string(f))
}
