package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/dotcommander/moyenne/internal/catalog"
	"github.com/dotcommander/moyenne/internal/discovery"
	"github.com/dotcommander/moyenne/internal/grades"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect and validate program catalogs",
	Long: `The catalog lists, for each year and specialization, the subjects of every
semester with their coefficient and weighting formula. A built-in catalog is
always loaded; files matching *.catalog.{yaml,yml,toml} under --catalog-dir
are layered on top of it.`,
}

var catalogListCmd = &cobra.Command{
	Use:   "list [year]",
	Short: "List years, specializations and available semesters",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runCatalogList(cmd.OutOrStdout(), args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitFunc(1)
		}
	},
}

var catalogShowCmd = &cobra.Command{
	Use:   "show <year> <specialization> <semester>",
	Short: "Show the subjects of one semester",
	Args:  cobra.RangeArgs(1, 3),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runCatalogShow(cmd.OutOrStdout(), args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitFunc(1)
		}
	},
}

var catalogValidateCmd = &cobra.Command{
	Use:   "validate [files...]",
	Short: "Check catalog files against the schema",
	Long: `Check catalog files against the catalog schema (known formulas, positive
coefficients, named subjects) and for consistency (no duplicate subject in a
semester, semesters only for offered specializations).

Without arguments the built-in catalog and every file under --catalog-dir
are checked. Exits 1 when a problem is found.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runCatalogValidate(cmd.OutOrStdout(), args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitFunc(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.AddCommand(catalogListCmd, catalogShowCmd, catalogValidateCmd)
}

func runCatalogList(w io.Writer, args []string) error {
	_, cat, err := loadSettings()
	if err != nil {
		return err
	}
	years := cat.YearIDs()
	if len(args) == 1 {
		if _, ok := cat.Years[args[0]]; !ok {
			return fmt.Errorf("unknown year %q (available: %s)", args[0], strings.Join(years, ", "))
		}
		years = []string{args[0]}
	}

	bold := lipgloss.NewStyle().Bold(true)
	dim := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	for _, y := range years {
		fmt.Fprintln(w, bold.Render(y+". "+cat.YearLabel(y)))
		for _, sp := range cat.Specializations(y) {
			var keys []string
			for _, sem := range []string{"1", "2"} {
				key := catalog.Key{Year: y, Specialization: sp.ID, Semester: sem}
				if _, ok := cat.Lookup(key); ok {
					keys = append(keys, key.String())
				}
			}
			available := dim.Render("aucun semestre")
			if len(keys) > 0 {
				available = strings.Join(keys, " ")
			}
			fmt.Fprintf(w, "  %-6s %s  %s\n", sp.ID, sp.Name, available)
		}
	}
	return nil
}

func runCatalogShow(w io.Writer, args []string) error {
	_, cat, err := loadSettings()
	if err != nil {
		return err
	}
	key, err := parseSelection(args)
	if err != nil {
		return err
	}
	sem, ok := cat.Lookup(key)
	if !ok {
		return fmt.Errorf("%w: %s", catalog.ErrUnknownSemester, key)
	}

	title := fmt.Sprintf("%s · Semestre %s", cat.YearLabel(key.Year), key.Semester)
	if sp, ok := cat.Specialization(key.Year, key.Specialization); ok {
		title = fmt.Sprintf("%s · %s · Semestre %s", cat.YearLabel(key.Year), sp.Name, key.Semester)
	}
	fmt.Fprintln(w, lipgloss.NewStyle().Bold(true).Render(title))

	width := 0
	for _, s := range sem.Subjects {
		width = max(width, len([]rune(s.Name)))
	}
	for _, s := range sem.Subjects {
		line := fmt.Sprintf("  %s  coef %-5g %s", lipgloss.NewStyle().Width(width).Render(s.Name), s.Coefficient, grades.Describe(s.Formula))
		if s.OptionalGroup != "" {
			line += fmt.Sprintf("  [option %s]", s.OptionalGroup)
		}
		fmt.Fprintln(w, line)
	}
	fmt.Fprintf(w, "Total des coefficients: %g\n", sem.TotalCoefficient())
	return nil
}

// errInvalidFiles reports that validate found problems it already printed.
var errInvalidFiles = errors.New("catalog validation failed")

func runCatalogValidate(w io.Writer, args []string) error {
	cfg, err := loadConfigOnly()
	if err != nil {
		return err
	}
	loader, err := catalog.NewLoader()
	if err != nil {
		return err
	}
	loader.FollowSymlinks = cfg.FollowSymlinks

	ok := lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	bad := lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	failed := 0

	report := func(name string, problems []string) {
		if len(problems) == 0 {
			if !cfg.Quiet {
				fmt.Fprintf(w, "%s %s\n", ok.Render("✓"), name)
			}
			return
		}
		failed++
		fmt.Fprintf(w, "%s %s\n", bad.Render("✗"), name)
		for _, p := range problems {
			fmt.Fprintf(w, "    %s\n", p)
		}
	}

	var files []discovery.File
	if len(args) > 0 {
		for _, path := range args {
			f, err := readCatalogFile(path)
			if err != nil {
				report(path, []string{err.Error()})
				continue
			}
			files = append(files, f)
		}
	} else {
		base, err := catalog.Default()
		if err != nil {
			report("built-in catalog", []string{err.Error()})
		} else {
			report("built-in catalog", splitErrors(base.Validate()))
		}
		if cfg.CatalogDir != "" {
			found, err := discovery.NewFileDiscovery(cfg.CatalogDir, cfg.FollowSymlinks).DiscoverFiles()
			if err != nil {
				return err
			}
			files = append(files, found...)
		}
	}

	for _, f := range files {
		report(f.RelPath, checkCatalogFile(loader, f))
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d file(s) with problems", errInvalidFiles, failed)
	}
	return nil
}

// checkCatalogFile runs the schema then the consistency checks that make
// sense for a single file.
func checkCatalogFile(loader *catalog.Loader, f discovery.File) []string {
	problems, err := loader.Check(f.RelPath, f.Contents, f.Format)
	if err != nil {
		return []string{err.Error()}
	}
	if len(problems) > 0 {
		out := make([]string, len(problems))
		for i, p := range problems {
			out[i] = p.String()
		}
		return out
	}

	c, err := catalog.Parse(f.Contents, f.Format)
	if err != nil {
		return []string{err.Error()}
	}
	// Years may live in another file; check the semesters against the
	// built-in years as well.
	if base, err := catalog.Default(); err == nil {
		c = catalog.Merge(base, c)
	}
	return splitErrors(c.Validate())
}

func readCatalogFile(path string) (discovery.File, error) {
	abs, err := discovery.ValidateFilePath(path)
	if err != nil {
		return discovery.File{}, err
	}
	format, err := discovery.DetectFormat(abs)
	if err != nil {
		return discovery.File{}, err
	}
	content, err := os.ReadFile(abs)
	if err != nil {
		return discovery.File{}, err
	}
	return discovery.File{
		Path:     abs,
		RelPath:  filepath.ToSlash(path),
		Size:     int64(len(content)),
		Format:   format,
		Contents: content,
	}, nil
}

func splitErrors(err error) []string {
	if err == nil {
		return nil
	}
	var out []string
	for _, line := range strings.Split(err.Error(), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}
