package grades

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// accumulator collects subject averages in input order.
type accumulator struct {
	entries []AverageEntry
	avgs    []float64
	coefs   []float64
}

func newAccumulator(n int) *accumulator {
	return &accumulator{
		entries: make([]AverageEntry, 0, n),
		avgs:    make([]float64, 0, n),
		coefs:   make([]float64, 0, n),
	}
}

func (a *accumulator) add(s Subject, avg float64) {
	a.entries = append(a.entries, AverageEntry{Name: s.Name, Average: avg, Coefficient: s.Coefficient})
	a.avgs = append(a.avgs, avg)
	a.coefs = append(a.coefs, s.Coefficient)
}

// result returns the coefficient-weighted mean, or 0 when nothing carries
// weight.
func (a *accumulator) result() Result {
	general := 0.0
	if floats.Sum(a.coefs) > 0 {
		general = stat.Mean(a.avgs, a.coefs)
	}
	return Result{SubjectAverages: a.entries, GeneralAverage: general}
}

// CalculateFinal aggregates the subjects that take part in the average and
// are complete. Incomplete subjects contribute nothing, to the numerator or
// to the total coefficient.
func CalculateFinal(subjects []Subject) Result {
	included := Resolve(subjects)
	acc := newAccumulator(len(subjects))
	for i, s := range subjects {
		if !included[i] {
			continue
		}
		if avg, ok := SubjectAverage(s.Inputs, s.Formula); ok {
			acc.add(s, avg)
		}
	}
	return acc.result()
}

// CalculatePreview estimates the semester average while grades are still
// being entered. Complete subjects use their live average. An incomplete one
// reuses its average from previous when present, otherwise it is scored with
// its missing components set to zero.
func CalculatePreview(subjects []Subject, previous *Result) Result {
	included := Resolve(subjects)
	acc := newAccumulator(len(subjects))
	for i, s := range subjects {
		if !included[i] {
			continue
		}
		f, ok := lookup(s.Formula)
		if !ok {
			continue
		}
		if avg, ok := f.Apply(s.Inputs); ok {
			acc.add(s, avg)
			continue
		}
		if previous != nil {
			if prev, ok := previous.Find(s.Name); ok {
				acc.add(s, prev.Average)
				continue
			}
		}
		avg, _ := f.Apply(zeroFill(s.Inputs, f))
		acc.add(s, avg)
	}
	return acc.result()
}

func zeroFill(in GradeInput, f Formula) GradeInput {
	out := make(GradeInput, len(f.Terms))
	for _, field := range f.Fields() {
		out[field], _ = in.Get(field)
	}
	return out
}
