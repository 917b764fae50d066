package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/dotcommander/moyenne/internal/discovery"
	"github.com/dotcommander/moyenne/internal/format"
)

var (
	fmtCheck bool
	fmtWrite bool
	fmtDiff  bool
)

var fmtCmd = &cobra.Command{
	Use:   "fmt [files...]",
	Short: "Format catalog files canonically",
	Long: `Format catalog files with canonical style.

FORMATTING RULES:

  - years before semesters, semester keys sorted
  - subject fields ordered name, formula, coefficient, optional_group
  - flow collections expanded, two-space indent
  - file ends with exactly one newline

Without arguments every *.catalog.{yaml,yml,toml} file under --catalog-dir
(or the current directory) is formatted.

USAGE MODES:

    moyenne fmt file.catalog.yaml        # Print formatted to stdout
    moyenne fmt -w file.catalog.yaml     # Write changes in place
    moyenne fmt --diff file.catalog.yaml # Show diff
    moyenne fmt --check                  # Exit 1 if files need formatting`,
	Args: cobra.ArbitraryArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runFmt(cmd.OutOrStdout(), args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitFunc(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(fmtCmd)

	fmtCmd.Flags().BoolVar(&fmtCheck, "check", false, "Exit 1 if files would change (for CI)")
	fmtCmd.Flags().BoolVarP(&fmtWrite, "write", "w", false, "Write changes in place")
	fmtCmd.Flags().BoolVar(&fmtDiff, "diff", false, "Show diff of what would change")
}

func runFmt(w io.Writer, args []string) error {
	cfg, err := loadConfigOnly()
	if err != nil {
		return err
	}

	files, err := collectFilesToFormat(args, cfg.CatalogDir, cfg.FollowSymlinks)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no files to format")
	}

	var needsFormatting []string
	for _, f := range files {
		formatted, err := format.Format(f.Contents, f.Format)
		if err != nil {
			if !cfg.Quiet {
				fmt.Fprintf(os.Stderr, "Error formatting %s: %v\n", f.RelPath, err)
			}
			continue
		}

		if string(f.Contents) == string(formatted) {
			if cfg.Verbose {
				fmt.Fprintf(w, "%s already formatted\n", f.RelPath)
			}
			continue
		}
		needsFormatting = append(needsFormatting, f.Path)

		switch {
		case fmtCheck:
			if !cfg.Quiet {
				fmt.Fprintf(w, "%s needs formatting\n", f.RelPath)
			}
		case fmtDiff:
			fmt.Fprint(w, format.Diff(string(f.Contents), string(formatted), f.RelPath))
		case fmtWrite:
			if err := os.WriteFile(f.Path, formatted, 0o644); err != nil {
				return fmt.Errorf("error writing %s: %w", f.Path, err)
			}
			if !cfg.Quiet {
				fmt.Fprintf(w, "Formatted %s\n", f.RelPath)
			}
		default:
			fmt.Fprint(w, string(formatted))
		}
	}

	if !cfg.Quiet && len(files) > 1 {
		switch {
		case len(needsFormatting) == 0:
			fmt.Fprintf(w, "\nAll %d files already formatted\n", len(files))
		case fmtWrite:
			fmt.Fprintf(w, "\nFormatted %d of %d files\n", len(needsFormatting), len(files))
		default:
			fmt.Fprintf(w, "\n%d of %d files need formatting\n", len(needsFormatting), len(files))
		}
	}

	if fmtCheck && len(needsFormatting) > 0 {
		exitFunc(1)
	}
	return nil
}

// collectFilesToFormat reads the named files and directories, or discovers
// catalog files under root when none are named.
func collectFilesToFormat(args []string, root string, followSymlinks bool) ([]discovery.File, error) {
	if len(args) == 0 {
		if root == "" {
			root = "."
		}
		return discovery.NewFileDiscovery(root, followSymlinks).DiscoverFiles()
	}

	var files []discovery.File
	for _, path := range args {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", path, err)
		}
		if info.IsDir() {
			found, err := discovery.NewFileDiscovery(path, followSymlinks).DiscoverFiles()
			if err != nil {
				return nil, err
			}
			files = append(files, found...)
			continue
		}
		f, err := readCatalogFile(path)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, nil
}
