package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/dotcommander/moyenne/internal/grades"
	"github.com/dotcommander/moyenne/internal/output"
)

var (
	gradeFlags   []string
	gradesFile   string
	previousFile string
)

var calcCmd = &cobra.Command{
	Use:   "calc <year> <specialization> <semester>",
	Short: "Compute the final semester average",
	Long: `Compute the final average of a semester from grades given on the command
line or in a grade sheet. Every participating subject must be complete.

The semester is given either as three arguments or as one key:
  moyenne calc 1 lse 1 ...
  moyenne calc 1lse1 ...

GRADES:
  --grade "Subject.component=value", repeatable. Components are td, exam,
  ds1, ds2 and tp. A comma works as decimal separator.

  --grades sheet.yaml, a YAML or TOML file mapping subjects to components:
    Analyse:
      td: 12
      exam: 16

EXAMPLES:
  moyenne calc 1 lse 1 --grades s1.yaml
  moyenne calc 2lbi2 --grade "SGBD.tp=15" --grade "SGBD.exam=11,5" -f json`,
	Args: cobra.RangeArgs(1, 3),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runCalc(cmd.OutOrStdout(), args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitFunc(1)
		}
	},
}

var previewCmd = &cobra.Command{
	Use:   "preview <year> <specialization> <semester>",
	Short: "Estimate the semester average from partial grades",
	Long: `Estimate the average while grades are still missing. A complete subject
counts with its average; an incomplete one reuses its average from
--previous when present, otherwise its missing components count as 0.

EXAMPLES:
  moyenne preview 1lse1 --grade "Analyse.td=12"
  moyenne calc 1lse1 --grades s1.yaml -f json -o last.json
  moyenne preview 1lse1 --grades s1-rattrapage.yaml --previous last.json`,
	Args: cobra.RangeArgs(1, 3),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runPreview(cmd.OutOrStdout(), args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitFunc(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(calcCmd)
	rootCmd.AddCommand(previewCmd)

	for _, c := range []*cobra.Command{calcCmd, previewCmd} {
		c.Flags().StringArrayVarP(&gradeFlags, "grade", "g", nil, `Grade as "Subject.component=value" (repeatable)`)
		c.Flags().StringVar(&gradesFile, "grades", "", "YAML or TOML grade sheet")
	}
	previewCmd.Flags().StringVar(&previousFile, "previous", "", "JSON result of an earlier calculation to carry over")
}

func runCalc(w io.Writer, args []string) error {
	cfg, cat, err := loadSettings()
	if err != nil {
		return err
	}
	key, err := parseSelection(args)
	if err != nil {
		return err
	}
	assignments, err := collectAssignments(gradeFlags, gradesFile)
	if err != nil {
		return err
	}
	st, err := fillState(cat, key, assignments)
	if err != nil {
		return err
	}
	st, err = st.Calculate()
	if err != nil {
		return fmt.Errorf("%w: %s", err, describeMissing(st.Subjects))
	}
	return render(w, cfg, cat, key, st.Subjects, *st.Results, false)
}

func runPreview(w io.Writer, args []string) error {
	cfg, cat, err := loadSettings()
	if err != nil {
		return err
	}
	key, err := parseSelection(args)
	if err != nil {
		return err
	}
	assignments, err := collectAssignments(gradeFlags, gradesFile)
	if err != nil {
		return err
	}
	st, err := fillState(cat, key, assignments)
	if err != nil {
		return err
	}

	var previous *grades.Result
	if previousFile != "" {
		f, err := os.Open(previousFile)
		if err != nil {
			return fmt.Errorf("error reading previous result: %w", err)
		}
		defer f.Close()
		res, err := output.ReadResult(f)
		if err != nil {
			return fmt.Errorf("%s: %w", previousFile, err)
		}
		previous = &res
	}

	result := grades.CalculatePreview(st.Subjects, previous)
	return render(w, cfg, cat, key, st.Subjects, result, true)
}
