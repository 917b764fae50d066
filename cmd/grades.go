package cmd

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/dotcommander/moyenne/internal/catalog"
	"github.com/dotcommander/moyenne/internal/discovery"
	"github.com/dotcommander/moyenne/internal/entry"
	"github.com/dotcommander/moyenne/internal/grades"
	"github.com/dotcommander/moyenne/internal/wizard"
)

// gradeSheet is the file form of --grade: subject name, then component.
//
//	Analyse:
//	  td: 12
//	  exam: 16
type gradeSheet map[string]map[string]float64

// readGradeSheet loads a YAML or TOML grade sheet into assignments, in
// subject then component order.
func readGradeSheet(path string) ([]entry.Assignment, error) {
	format, err := discovery.DetectFormat(path)
	if err != nil {
		return nil, err
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading grades %s: %w", path, err)
	}

	var sheet gradeSheet
	switch format {
	case discovery.FormatYAML:
		err = yaml.Unmarshal(content, &sheet)
	case discovery.FormatTOML:
		err = toml.Unmarshal(content, &sheet)
	}
	if err != nil {
		return nil, fmt.Errorf("error decoding grades %s: %w", path, err)
	}

	names := make([]string, 0, len(sheet))
	for name := range sheet {
		names = append(names, name)
	}
	sort.Strings(names)

	var out []entry.Assignment
	for _, name := range names {
		for key := range sheet[name] {
			if _, err := grades.ParseField(key); err != nil {
				return nil, fmt.Errorf("%s: subject %q: %w", path, name, err)
			}
		}
		for _, f := range grades.AllFields() {
			if v, ok := sheet[name][string(f)]; ok {
				out = append(out, entry.Assignment{Subject: name, Field: f, Value: v})
			}
		}
	}
	return out, nil
}

// collectAssignments merges the grade sheet with --grade flags; flags win.
func collectAssignments(flags []string, sheetPath string) ([]entry.Assignment, error) {
	var out []entry.Assignment
	if sheetPath != "" {
		sheet, err := readGradeSheet(sheetPath)
		if err != nil {
			return nil, err
		}
		out = append(out, sheet...)
	}
	for _, raw := range flags {
		a, err := entry.ParseAssignment(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

// parseSelection reads the <year> <specialization> <semester> arguments.
func parseSelection(args []string) (catalog.Key, error) {
	if len(args) == 1 {
		return catalog.ParseKey(args[0])
	}
	if len(args) != 3 {
		return catalog.Key{}, fmt.Errorf("expected <year> <specialization> <semester> or a key such as 1lse1")
	}
	return catalog.NewKey(args[0], strings.ToLower(args[1]), args[2])
}

// fillState walks the wizard up to grade entry for key and applies the
// assignments in order.
func fillState(cat *catalog.Catalog, key catalog.Key, assignments []entry.Assignment) (wizard.State, error) {
	st, err := wizard.New().SelectYear(cat, key.Year)
	if err != nil {
		return st, err
	}
	if st, err = st.SelectSpecialization(cat, key.Specialization); err != nil {
		return st, err
	}
	if st, err = st.SelectSemester(cat, key.Semester); err != nil {
		return st, err
	}
	for _, a := range assignments {
		if st, err = st.SetGradeByName(a.Subject, a.Field, a.Value); err != nil {
			return st, err
		}
	}
	return st, nil
}

// describeMissing lists what blocks a final calculation.
func describeMissing(subjects []grades.Subject) string {
	included := grades.Resolve(subjects)
	var parts []string
	for i, s := range subjects {
		if !included[i] || grades.IsComplete(s) {
			continue
		}
		labels := make([]string, 0, 3)
		for _, f := range grades.Missing(s) {
			labels = append(labels, grades.Label(f))
		}
		parts = append(parts, fmt.Sprintf("%s (%s)", s.Name, strings.Join(labels, ", ")))
	}
	return strings.Join(parts, "; ")
}
