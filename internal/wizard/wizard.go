// Package wizard models one calculation session: the student picks a year,
// a specialization and a semester, enters grades, then reads the results.
//
// State is a value. Every transition returns a new State and leaves the
// receiver untouched, so a caller can keep earlier states for undo or
// comparison.
package wizard

import (
	"errors"
	"fmt"
	"slices"

	"github.com/dotcommander/moyenne/internal/catalog"
	"github.com/dotcommander/moyenne/internal/entry"
	"github.com/dotcommander/moyenne/internal/grades"
)

// Step is one screen of the session.
type Step string

const (
	StepYear           Step = "year"
	StepSpecialization Step = "specialization"
	StepSemester       Step = "semester"
	StepGrades         Step = "grades"
	StepResults        Step = "results"
)

// Steps returns the steps in session order.
func Steps() []Step {
	return []Step{StepYear, StepSpecialization, StepSemester, StepGrades, StepResults}
}

func (s Step) index() int {
	return slices.Index(Steps(), s)
}

var (
	ErrUnknownYear           = errors.New("year not offered")
	ErrUnknownSpecialization = errors.New("specialization not offered")
	ErrNoSelection           = errors.New("previous choices are missing")
	ErrNoSubject             = errors.New("no such subject")
	ErrFieldNotRequired      = errors.New("grade component not used by this subject")
	ErrSubjectLocked         = errors.New("another subject of this optional group is already being filled")
	ErrNotReady              = errors.New("some subjects are incomplete")
	ErrStepLocked            = errors.New("step not reached yet")
)

// State is the whole session.
type State struct {
	Year           string
	Specialization string
	Semester       string
	Subjects       []grades.Subject
	Results        *grades.Result
	Step           Step
	Completed      []Step
}

// New returns a session waiting for the year.
func New() State {
	return State{Step: StepYear}
}

func (s State) clone() State {
	s.Subjects = grades.CloneSubjects(s.Subjects)
	s.Completed = slices.Clone(s.Completed)
	return s
}

// IsCompleted reports whether step has been completed.
func (s State) IsCompleted(step Step) bool {
	return slices.Contains(s.Completed, step)
}

// Key returns the catalog key once a semester has been chosen.
func (s State) Key() (catalog.Key, bool) {
	if s.Year == "" || s.Specialization == "" || s.Semester == "" {
		return catalog.Key{}, false
	}
	return catalog.Key{Year: s.Year, Specialization: s.Specialization, Semester: s.Semester}, true
}

// SelectYear chooses the academic year and forgets every later choice.
func (s State) SelectYear(cat *catalog.Catalog, year string) (State, error) {
	if _, ok := cat.Years[year]; !ok {
		return s, fmt.Errorf("%w: %q", ErrUnknownYear, year)
	}
	return State{
		Year:      year,
		Step:      StepSpecialization,
		Completed: []Step{StepYear},
	}, nil
}

// SelectSpecialization chooses a program offered in the selected year.
func (s State) SelectSpecialization(cat *catalog.Catalog, id string) (State, error) {
	if s.Year == "" {
		return s, fmt.Errorf("%w: choose a year first", ErrNoSelection)
	}
	if _, ok := cat.Specialization(s.Year, id); !ok {
		return s, fmt.Errorf("%w in year %s: %q", ErrUnknownSpecialization, s.Year, id)
	}
	return State{
		Year:           s.Year,
		Specialization: id,
		Step:           StepSemester,
		Completed:      []Step{StepYear, StepSpecialization},
	}, nil
}

// SelectSemester loads the semester's subjects with no grades entered. When
// the catalog has no such semester the state is returned unchanged along
// with the error.
func (s State) SelectSemester(cat *catalog.Catalog, semester string) (State, error) {
	if s.Year == "" || s.Specialization == "" {
		return s, fmt.Errorf("%w: choose a year and a specialization first", ErrNoSelection)
	}
	key, err := catalog.NewKey(s.Year, s.Specialization, semester)
	if err != nil {
		return s, err
	}
	subjects, err := cat.Subjects(key)
	if err != nil {
		return s, err
	}
	return State{
		Year:           s.Year,
		Specialization: s.Specialization,
		Semester:       semester,
		Subjects:       subjects,
		Step:           StepGrades,
		Completed:      []Step{StepYear, StepSpecialization, StepSemester},
	}, nil
}

func (s State) subject(i int) (grades.Subject, error) {
	if i < 0 || i >= len(s.Subjects) {
		return grades.Subject{}, fmt.Errorf("%w: index %d", ErrNoSubject, i)
	}
	return s.Subjects[i], nil
}

// SetGrade records one grade component for subject i. The value is brought
// onto the grading scale. Subjects locked by their optional group refuse
// input.
func (s State) SetGrade(i int, field grades.Field, value float64) (State, error) {
	subj, err := s.subject(i)
	if err != nil {
		return s, err
	}
	if !slices.Contains(grades.RequiredInputs(subj.Formula), field) {
		return s, fmt.Errorf("%w: %s for %q", ErrFieldNotRequired, grades.Label(field), subj.Name)
	}
	if grades.Locked(s.Subjects, i) {
		return s, fmt.Errorf("%w: %q", ErrSubjectLocked, subj.Name)
	}
	next := s.clone()
	next.Subjects[i].Inputs = subj.Inputs.With(field, entry.Round(entry.Clamp(value)))
	return next, nil
}

// ClearGrade removes one grade component from subject i. Clearing the last
// component of an optional subject unlocks its peers.
func (s State) ClearGrade(i int, field grades.Field) (State, error) {
	subj, err := s.subject(i)
	if err != nil {
		return s, err
	}
	next := s.clone()
	next.Subjects[i].Inputs = subj.Inputs.Without(field)
	return next, nil
}

// SetGradeByName is SetGrade addressed by subject name.
func (s State) SetGradeByName(name string, field grades.Field, value float64) (State, error) {
	i := slices.IndexFunc(s.Subjects, func(x grades.Subject) bool { return x.Name == name })
	if i < 0 {
		return s, fmt.Errorf("%w: %q", ErrNoSubject, name)
	}
	return s.SetGrade(i, field, value)
}

// CanCalculate reports whether every participating subject is complete.
func (s State) CanCalculate() bool {
	return grades.Ready(s.Subjects)
}

// Calculate stores the final result and moves to the results step.
func (s State) Calculate() (State, error) {
	if !s.CanCalculate() {
		done, total := s.Progress()
		return s, fmt.Errorf("%w: %d of %d complete", ErrNotReady, done, total)
	}
	res := grades.CalculateFinal(s.Subjects)
	next := s.clone()
	next.Results = &res
	next.Completed = slices.DeleteFunc(next.Completed, func(st Step) bool {
		return st == StepGrades || st == StepResults
	})
	next.Completed = append(next.Completed, StepGrades, StepResults)
	next.Step = StepResults
	return next, nil
}

// EditGrades returns to grade entry. The last results are kept so that the
// preview carries them over for subjects being re-entered.
func (s State) EditGrades() State {
	next := s.clone()
	if next.Subjects != nil {
		next.Step = StepGrades
	}
	return next
}

// GoBack moves to the previous step without discarding anything.
func (s State) GoBack() State {
	next := s.clone()
	if i := s.Step.index(); i > 0 {
		next.Step = Steps()[i-1]
	}
	return next
}

// GoTo jumps to a completed step or stays on the current one.
func (s State) GoTo(step Step) (State, error) {
	if step.index() < 0 {
		return s, fmt.Errorf("unknown step %q", step)
	}
	if step != s.Step && !s.IsCompleted(step) {
		return s, fmt.Errorf("%w: %s", ErrStepLocked, step)
	}
	next := s.clone()
	next.Step = step
	return next, nil
}

// Reset starts over.
func (s State) Reset() State {
	return New()
}

// Preview estimates the average from what has been entered so far.
func (s State) Preview() grades.Result {
	return grades.CalculatePreview(s.Subjects, s.Results)
}

// Progress counts complete subjects among the participating ones.
func (s State) Progress() (completed, total int) {
	return grades.Progress(s.Subjects)
}
