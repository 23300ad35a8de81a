package main

import (
	"fmt"
	"os"

	"github.com/avells/cadre/internal/presentation/graph"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph [workflow]",
	Short: "Export a workflow visualization",
	Long:  `Outputs a Mermaid diagram (graph TD) of the named workflow's steps, with contiguous parallel steps grouped into fan-out batches.`,
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		org, _, err := loadOrganization(cmd)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}

		workflow := pickWorkflow(org, args)
		if workflow == "" {
			fmt.Println("Error: no workflow given and the project declares none")
			os.Exit(1)
		}

		steps, err := org.WorkflowSteps(workflow)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}

		fmt.Print(graph.GenerateOrganizationMermaid(workflow, steps))
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
