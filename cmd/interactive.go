package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dotcommander/moyenne/internal/catalog"
	"github.com/dotcommander/moyenne/internal/config"
	"github.com/dotcommander/moyenne/internal/entry"
	"github.com/dotcommander/moyenne/internal/grades"
	"github.com/dotcommander/moyenne/internal/wizard"
)

var (
	errQuit = errors.New("quit")
	errBack = errors.New("back")
)

type option struct {
	id    string
	label string
}

// session drives a wizard.State from line-oriented input.
type session struct {
	in  *bufio.Scanner
	out io.Writer
	cfg *config.Config
	cat *catalog.Catalog
}

func runWizard(in io.Reader, out io.Writer) error {
	cfg, cat, err := loadSettings()
	if err != nil {
		return err
	}
	s := &session{in: bufio.NewScanner(in), out: out, cfg: cfg, cat: cat}
	if err := s.run(wizard.New()); err != nil && !errors.Is(err, errQuit) {
		return err
	}
	return nil
}

func (s *session) run(st wizard.State) error {
	fmt.Fprintln(s.out, "Calcul de moyenne semestrielle. Tapez q pour quitter, < pour revenir en arrière.")
	for {
		var err error
		switch st.Step {
		case wizard.StepYear:
			st, err = s.chooseYear(st)
		case wizard.StepSpecialization:
			st, err = s.chooseSpecialization(st)
		case wizard.StepSemester:
			st, err = s.chooseSemester(st)
		case wizard.StepGrades:
			st, err = s.enterGrades(st)
		case wizard.StepResults:
			st, err = s.showResults(st)
		}
		switch {
		case errors.Is(err, errBack):
			st = st.GoBack()
		case err != nil:
			return err
		}
	}
}

// ask prints prompt and returns the trimmed reply. End of input and "q" both
// end the session.
func (s *session) ask(prompt string) (string, error) {
	fmt.Fprint(s.out, prompt)
	if !s.in.Scan() {
		if err := s.in.Err(); err != nil {
			return "", err
		}
		fmt.Fprintln(s.out)
		return "", errQuit
	}
	line := strings.TrimSpace(s.in.Text())
	switch line {
	case "q":
		return "", errQuit
	case "<":
		return "", errBack
	}
	return line, nil
}

// choose lists options and accepts either a number or an id.
func (s *session) choose(title string, options []option) (string, error) {
	fmt.Fprintf(s.out, "\n%s\n", title)
	for i, o := range options {
		fmt.Fprintf(s.out, "  %d) %s\n", i+1, o.label)
	}
	for {
		reply, err := s.ask("> ")
		if err != nil {
			return "", err
		}
		if n, err := strconv.Atoi(reply); err == nil && n >= 1 && n <= len(options) {
			return options[n-1].id, nil
		}
		for _, o := range options {
			if strings.EqualFold(reply, o.id) {
				return o.id, nil
			}
		}
		fmt.Fprintf(s.out, "Choix invalide: %q\n", reply)
	}
}

func (s *session) chooseYear(st wizard.State) (wizard.State, error) {
	var opts []option
	for _, y := range s.cat.YearIDs() {
		opts = append(opts, option{id: y, label: s.cat.YearLabel(y)})
	}
	id, err := s.choose("Année d'études", opts)
	if errors.Is(err, errBack) {
		return st, nil
	}
	if err != nil {
		return st, err
	}
	return st.SelectYear(s.cat, id)
}

func (s *session) chooseSpecialization(st wizard.State) (wizard.State, error) {
	var opts []option
	for _, sp := range s.cat.Specializations(st.Year) {
		label := sp.Name
		if sp.Icon != "" {
			label = sp.Icon + " " + sp.Name
		}
		opts = append(opts, option{id: sp.ID, label: label})
	}
	id, err := s.choose("Spécialité ("+s.cat.YearLabel(st.Year)+")", opts)
	if err != nil {
		return st, err
	}
	return st.SelectSpecialization(s.cat, id)
}

func (s *session) chooseSemester(st wizard.State) (wizard.State, error) {
	for {
		id, err := s.choose("Semestre", []option{{"1", "Semestre 1"}, {"2", "Semestre 2"}})
		if err != nil {
			return st, err
		}
		next, err := st.SelectSemester(s.cat, id)
		if errors.Is(err, catalog.ErrUnknownSemester) {
			fmt.Fprintln(s.out, "Ce semestre n'est pas encore disponible pour cette spécialité.")
			continue
		}
		return next, err
	}
}

// enterGrades walks the subjects until every participating one is complete.
// An empty reply keeps the current value, "-" clears it.
func (s *session) enterGrades(st wizard.State) (wizard.State, error) {
	for {
		for i := range st.Subjects {
			var err error
			st, err = s.enterSubject(st, i)
			if err != nil {
				return st, err
			}
		}
		if st.CanCalculate() {
			return st.Calculate()
		}

		fmt.Fprintf(s.out, "\nMatières incomplètes: %s\n", describeMissing(st.Subjects))
		reply, err := s.ask("Reprendre la saisie ? [O/n] ")
		if err != nil {
			return st, err
		}
		if strings.EqualFold(reply, "n") {
			return st, errQuit
		}
	}
}

func (s *session) enterSubject(st wizard.State, i int) (wizard.State, error) {
	subj := st.Subjects[i]
	if grades.Locked(st.Subjects, i) {
		fmt.Fprintf(s.out, "\n%s: ignorée (option %q déjà choisie: %s)\n",
			subj.Name, subj.OptionalGroup, grades.ActiveGroups(st.Subjects)[subj.OptionalGroup])
		return st, nil
	}

	header := fmt.Sprintf("\n%s (coef %g) · %s", subj.Name, subj.Coefficient, grades.Describe(subj.Formula))
	if subj.OptionalGroup != "" {
		header += fmt.Sprintf(" · option %q, laissez vide pour choisir une autre matière", subj.OptionalGroup)
	}
	fmt.Fprintln(s.out, header)

	for _, field := range grades.RequiredInputs(subj.Formula) {
		for {
			prompt := "  " + grades.Label(field)
			if v, ok := st.Subjects[i].Inputs.Get(field); ok {
				prompt += fmt.Sprintf(" [%.2f]", v)
			}
			reply, err := s.ask(prompt + ": ")
			if err != nil {
				return st, err
			}
			if reply == "" {
				break
			}
			if reply == "-" {
				st, err = st.ClearGrade(i, field)
				if err != nil {
					return st, err
				}
				break
			}
			v, err := entry.Parse(reply)
			if err != nil {
				fmt.Fprintf(s.out, "  Note invalide: %q (nombre entre 0 et 20)\n", reply)
				continue
			}
			st, err = st.SetGrade(i, field, v)
			if err != nil {
				return st, err
			}
			break
		}
	}

	if grades.IsActive(st.Subjects[i]) {
		s.printPreview(st)
	}
	return st, nil
}

func (s *session) printPreview(st wizard.State) {
	p := st.Preview()
	done, total := st.Progress()
	fmt.Fprintf(s.out, "  Aperçu: %.*f/20 · %d/%d matières complètes\n", s.cfg.Decimals, p.GeneralAverage, done, total)
}

func (s *session) showResults(st wizard.State) (wizard.State, error) {
	key, _ := st.Key()
	if err := render(s.out, s.cfg, s.cat, key, st.Subjects, *st.Results, false); err != nil {
		return st, err
	}
	reply, err := s.ask("\nm) modifier les notes  r) recommencer  q) quitter\n> ")
	if err != nil {
		return st, err
	}
	switch strings.ToLower(reply) {
	case "m":
		return st.EditGrades(), nil
	case "r":
		return st.Reset(), nil
	default:
		return st, errQuit
	}
}
