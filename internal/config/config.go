package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config represents the moyenne configuration
type Config struct {
	CatalogDir     string `mapstructure:"catalogDir"`
	FollowSymlinks bool   `mapstructure:"followSymlinks"`
	Format         string `mapstructure:"format" validate:"oneof=console json markdown html"`
	Output         string `mapstructure:"output"`
	Decimals       int    `mapstructure:"decimals" validate:"min=0,max=4"`
	Quiet          bool   `mapstructure:"quiet"`
	Verbose        bool   `mapstructure:"verbose"`
	NoCelebration  bool   `mapstructure:"noCelebration"`
}

// ConfigFiles are looked up in the working directory, first match wins.
var ConfigFiles = []string{".moyennerc.json", ".moyennerc.yaml", ".moyennerc.yml", ".moyennerc.toml"}

// LoadConfig loads configuration from defaults, the first config file found
// (or configFile when set), MOYENNE_* environment variables and any flags
// already bound to viper.
func LoadConfig(configFile string) (*Config, error) {
	viper.SetDefault("catalogDir", "")
	viper.SetDefault("followSymlinks", false)
	viper.SetDefault("format", "console")
	viper.SetDefault("output", "")
	viper.SetDefault("decimals", 2)
	viper.SetDefault("quiet", false)
	viper.SetDefault("verbose", false)
	viper.SetDefault("noCelebration", false)

	if configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config %s: %w", configFile, err)
		}
	} else {
		for _, path := range ConfigFiles {
			if _, err := os.Stat(path); err != nil {
				continue
			}
			viper.SetConfigFile(path)
			if err := viper.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("error reading config %s: %w", path, err)
			}
			break
		}
	}

	viper.SetEnvPrefix("MOYENNE")
	viper.AutomaticEnv()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &config, nil
}

// validateConfig validates the configuration
func validateConfig(config *Config) error {
	if err := validator.New().Struct(config); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, describe(fe))
		}
		return errors.New(strings.Join(msgs, "; "))
	}

	// json may go to stdout; the other file formats need a destination.
	if (config.Format == "markdown" || config.Format == "html") && config.Output == "" {
		return fmt.Errorf("output file is required when format is '%s'", config.Format)
	}
	return nil
}

func describe(fe validator.FieldError) string {
	switch fe.Field() {
	case "Format":
		return fmt.Sprintf("invalid format: %v. Must be 'console', 'json', 'markdown', or 'html'", fe.Value())
	case "Decimals":
		return fmt.Sprintf("decimals must be between 0 and 4, got %v", fe.Value())
	default:
		return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
	}
}
