package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dotcommander/moyenne/internal/catalog"
	"github.com/dotcommander/moyenne/internal/config"
	"github.com/dotcommander/moyenne/internal/grades"
	"github.com/dotcommander/moyenne/internal/logging"
	"github.com/dotcommander/moyenne/internal/output"
	"github.com/dotcommander/moyenne/internal/outputters"
)

// Version is set at build time.
var Version = "dev"

var exitFunc = os.Exit

var (
	configFile   string
	catalogDir   string
	quiet        bool
	verbose      bool
	outputFormat string
	outputFile   string
)

var rootCmd = &cobra.Command{
	Use:   "moyenne",
	Short: "Semester average calculator",
	Long: `Moyenne computes a student's semester average from the grades of each
subject, following the weighting rules of the program's catalog.

Run without a subcommand for the guided calculator: pick the year, the
specialization and the semester, enter the grades and watch the estimated
average update after each subject.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runWizard(cmd.InOrStdin(), cmd.OutOrStdout()); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitFunc(1)
		}
	},
}

// Execute runs the root command.
func Execute() {
	output.Version = Version
	rootCmd.Version = Version
	if err := rootCmd.Execute(); err != nil {
		exitFunc(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Config file (default .moyennerc.{json,yaml,yml,toml})")
	rootCmd.PersistentFlags().StringVar(&catalogDir, "catalog-dir", "", "Directory of *.catalog.{yaml,yml,toml} files layered over the built-in catalog")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-essential output")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "format", "f", "console", "Output format for results (console|json|markdown|html)")
	rootCmd.PersistentFlags().StringVarP(&outputFile, "output", "o", "", "Output file for results (required for markdown and html)")

	_ = viper.BindPFlag("catalogDir", rootCmd.PersistentFlags().Lookup("catalog-dir"))
	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("format", rootCmd.PersistentFlags().Lookup("format"))
	_ = viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output"))
}

// loadSettings reads the configuration and the catalog every command works
// from.
func loadSettings() (*config.Config, *catalog.Catalog, error) {
	cfg, err := loadConfigOnly()
	if err != nil {
		return nil, nil, err
	}
	cat, err := loadCatalog(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, cat, nil
}

func loadConfigOnly() (*config.Config, error) {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return nil, fmt.Errorf("error loading configuration: %w", err)
	}
	logging.SetVerbose(cfg.Verbose)
	return cfg, nil
}

func loadCatalog(cfg *config.Config) (*catalog.Catalog, error) {
	base, err := catalog.Default()
	if err != nil {
		return nil, err
	}
	if cfg.CatalogDir == "" {
		return base, nil
	}
	loader, err := catalog.NewLoader()
	if err != nil {
		return nil, err
	}
	loader.FollowSymlinks = cfg.FollowSymlinks
	merged, err := loader.LoadDir(base, cfg.CatalogDir)
	if err != nil {
		return nil, fmt.Errorf("error loading catalogs from %s: %w", cfg.CatalogDir, err)
	}
	logging.Debugf("catalog: %d semesters after merging %s", len(merged.Semesters), cfg.CatalogDir)
	return merged, nil
}

// render prints a result in the configured format.
func render(w io.Writer, cfg *config.Config, cat *catalog.Catalog, key catalog.Key, subjects []grades.Subject, result grades.Result, preview bool) error {
	report := output.NewReport(cat, key, subjects, result, preview)
	if err := outputters.NewOutputter(cfg).Format(w, report, cfg.Format); err != nil {
		return fmt.Errorf("error formatting output: %w", err)
	}
	if cfg.Output != "" && cfg.Format != "console" && !cfg.Quiet {
		fmt.Fprintf(w, "Report written to %s\n", cfg.Output)
	}
	return nil
}
