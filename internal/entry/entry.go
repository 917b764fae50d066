// Package entry turns what a student types into grade values.
package entry

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/dotcommander/moyenne/internal/grades"
)

// Grades are marked out of MaxGrade.
const (
	MinGrade = 0.0
	MaxGrade = 20.0
)

// ErrNotANumber is returned for input that is not a plain decimal number.
var ErrNotANumber = errors.New("not a number")

var decimalPattern = regexp.MustCompile(`^\d*\.?\d*$`)

// Parse reads a grade the way the entry field does on confirmation: a comma
// is accepted as decimal separator, an empty field means 0, the value is
// clamped to [0, 20] and rounded to two decimals.
func Parse(raw string) (float64, error) {
	s := strings.Replace(strings.TrimSpace(raw), ",", ".", 1)
	if s == "" {
		return 0, nil
	}
	if !decimalPattern.MatchString(s) {
		return 0, fmt.Errorf("%w: %q", ErrNotANumber, raw)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		// a lone "." reads as empty
		return 0, nil
	}
	return Round(Clamp(v)), nil
}

// Clamp limits v to the grading scale.
func Clamp(v float64) float64 {
	return math.Max(MinGrade, math.Min(MaxGrade, v))
}

// Round rounds half away from zero to two decimals.
func Round(v float64) float64 {
	return math.Round(v*100) / 100
}

// Assignment is one grade given on the command line.
type Assignment struct {
	Subject string
	Field   grades.Field
	Value   float64
}

// ParseAssignment reads "Subject.field=value", e.g. "Analyse.td=12,5". The
// subject name may itself contain dots; the last one separates the field.
func ParseAssignment(s string) (Assignment, error) {
	lhs, value, ok := strings.Cut(s, "=")
	if !ok {
		return Assignment{}, fmt.Errorf("invalid grade %q: expected Subject.field=value", s)
	}
	dot := strings.LastIndex(lhs, ".")
	if dot <= 0 || dot == len(lhs)-1 {
		return Assignment{}, fmt.Errorf("invalid grade %q: expected Subject.field=value", s)
	}
	field, err := grades.ParseField(strings.ToLower(strings.TrimSpace(lhs[dot+1:])))
	if err != nil {
		return Assignment{}, fmt.Errorf("invalid grade %q: %w", s, err)
	}
	if strings.TrimSpace(value) == "" {
		return Assignment{}, fmt.Errorf("invalid grade %q: missing value", s)
	}
	v, err := Parse(value)
	if err != nil {
		return Assignment{}, fmt.Errorf("invalid grade %q: %w", s, err)
	}
	return Assignment{Subject: strings.TrimSpace(lhs[:dot]), Field: field, Value: v}, nil
}

// Band classifies a grade for colouring.
type Band string

const (
	BandExcellent Band = "excellent"
	BandGood      Band = "good"
	BandFair      Band = "fair"
	BandPass      Band = "pass"
	BandFail      Band = "fail"
)

// BandOf returns the band of grade.
func BandOf(grade float64) Band {
	switch {
	case grade >= 16:
		return BandExcellent
	case grade >= 14:
		return BandGood
	case grade >= 12:
		return BandFair
	case grade >= grades.PassThreshold:
		return BandPass
	default:
		return BandFail
	}
}
