package main

import (
	"fmt"
	"strings"

	cadre "github.com/avells/cadre"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of cadre",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("cadre version %s\n", strings.TrimSpace(cadre.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
