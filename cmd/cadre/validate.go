package main

import (
	"fmt"
	"os"

	"github.com/avells/cadre/internal/validator"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the project composition for consistency",
	Long:  `Builds the declared organization and reports jobs bound to missing units, steps bound to missing groups or jobs, and orphaned definitions.`,
	Run: func(cmd *cobra.Command, args []string) {
		org, _, err := loadOrganization(cmd)
		if err != nil {
			fmt.Printf("Validation failed: %v\n", err)
			os.Exit(1)
		}

		issues := validator.CheckOrganization(org)
		for _, issue := range issues {
			fmt.Println(issue)
		}
		if validator.HasErrors(issues) {
			os.Exit(1)
		}
		fmt.Println("Project is valid! ✅")
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
