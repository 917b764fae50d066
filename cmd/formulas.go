package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/dotcommander/moyenne/internal/grades"
)

var formulasCmd = &cobra.Command{
	Use:   "formulas",
	Short: "List the weighting formulas",
	Long: `List every weighting formula a catalog may reference, with the grade
components it needs and their weights.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runFormulas(cmd.OutOrStdout()); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitFunc(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(formulasCmd)
}

func runFormulas(w io.Writer) error {
	bold := lipgloss.NewStyle().Bold(true)
	for _, kind := range grades.Formulas() {
		f, _ := grades.LookupFormula(kind)
		if err := f.Validate(); err != nil {
			return err
		}
		fields := make([]string, 0, len(f.Terms))
		for _, field := range f.Fields() {
			fields = append(fields, string(field))
		}
		fmt.Fprintf(w, "%s  %s  (%s)\n",
			bold.Render(fmt.Sprintf("%-14s", kind)), f.Description(), strings.Join(fields, ", "))
	}
	return nil
}
