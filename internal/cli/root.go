// Package cli implements riskctl, the offline companion to the risk API.
package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/yanqian/diabetes-risk/pkg/logger"
)

// Set by the release build.
var (
	version = "dev"
	commit  = "none"
)

// NewRootCommand builds the riskctl command tree writing to out.
func NewRootCommand(out io.Writer) *cobra.Command {
	v := viper.New()

	root := &cobra.Command{
		Use:                "riskctl",
		Short:              "Score diabetes risk forms and manage the record store.",
		Version:            version,
		SilenceErrors:      true,
		SilenceUsage:       true,
		DisableSuggestions: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := loadConfig(v, cmd); err != nil {
				return err
			}
			if v.GetBool("no-color") {
				color.NoColor = true
			}
			return nil
		},
		Run: func(cmd *cobra.Command, _ []string) {
			_ = cmd.Help()
		},
	}
	root.SetOut(out)
	root.SetErr(out)

	root.PersistentFlags().String("config", "", "config file (default is ./.riskctl.yaml)")
	root.PersistentFlags().String("log-level", "warn", "log level: debug, info, warn, error")
	root.PersistentFlags().Bool("no-color", false, "disable colored output")

	root.AddCommand(newScoreCommand(v), newMigrateCommand(v), newVersionCommand())
	return root
}

// loadConfig merges defaults, the optional config file, RISKCTL_* env vars
// and the flags of the running command, in increasing priority.
func loadConfig(v *viper.Viper, cmd *cobra.Command) error {
	v.SetEnvPrefix("RISKCTL")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("bind flags: %w", err)
	}

	if configFile := v.GetString("config"); configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(".riskctl")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}
	return nil
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the riskctl version.",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("riskctl %s (%s)\n", version, commit)
		},
	}
}

func newLogger(v *viper.Viper, w io.Writer) *slog.Logger {
	return logger.NewWithWriter(w, v.GetString("log-level")).With("component", "cli")
}
