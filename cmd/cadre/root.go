package main

import (
	"fmt"
	"log/slog"
	"os"

	cadre "github.com/avells/cadre"
	"github.com/avells/cadre/internal/config"
	"github.com/avells/cadre/internal/logging"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "cadre",
	Short: "Cadre runs hierarchical workflows over units, groups, and organizations",
	Long: `Cadre composes named units into groups and groups into organizations,
then executes declared workflows over them with per-entry error containment.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringP("project", "f", "cadre.yaml", "Path to the project file")
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level (debug, info, warn, error)")
}

// loadOrganization builds the organization declared by the project file.
func loadOrganization(cmd *cobra.Command) (*cadre.Organization, *config.Project, error) {
	path, _ := cmd.Flags().GetString("project")

	project, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}

	logger := logging.New(parseLevel(cmd))
	builder := config.NewBuilder(logger)
	org, err := builder.Build(project, cadre.WithLogger(logger))
	if err != nil {
		return nil, nil, err
	}
	return org, project, nil
}

func parseLevel(cmd *cobra.Command) slog.Level {
	name, _ := cmd.Flags().GetString("log-level")
	switch name {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
