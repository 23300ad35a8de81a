package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	cadre "github.com/avells/cadre"
	"github.com/avells/cadre/internal/presentation/tui"
	"github.com/avells/cadre/internal/runtime"
	"github.com/avells/cadre/pkg/domain"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run [workflow]",
	Short: "Execute a workflow from the project file",
	Long: `Builds the organization declared in the project file and executes the
named workflow. Per-step failures are reported in the results; only an
unknown workflow name fails the command.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		jsonMode, _ := cmd.Flags().GetBool("json")
		quiet, _ := cmd.Flags().GetBool("quiet")

		org, project, err := loadOrganization(cmd)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}

		workflow := pickWorkflow(org, args)
		if workflow == "" {
			fmt.Println("Error: no workflow given and the project declares none")
			os.Exit(1)
		}

		inputs, err := parseJSONFlag(cmd, "inputs")
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		shared, err := parseJSONFlag(cmd, "context")
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		for k, v := range project.Context {
			if _, ok := shared[k]; !ok {
				shared[k] = v
			}
		}

		interactive := !jsonMode && term.IsTerminal(int(os.Stdout.Fd()))
		if interactive && !quiet {
			tui.PrintBanner(cadre.Version)
		}

		results, err := org.Run(context.Background(), workflow, inputs, shared)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}

		if interactive {
			printReport(org, workflow, results)
		} else {
			_ = json.NewEncoder(os.Stdout).Encode(results)
		}

		if hasFailures(results) {
			os.Exit(2)
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("inputs", "", "Initial inputs as a JSON object")
	runCmd.Flags().String("context", "", "Shared context as a JSON object")
	runCmd.Flags().Bool("json", false, "Emit results as JSON even on a terminal")
	runCmd.Flags().BoolP("quiet", "q", false, "Suppress the banner")
}

// pickWorkflow falls back to the sole declared workflow when none is named.
func pickWorkflow(org *cadre.Organization, args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	if names := org.Workflows(); len(names) == 1 {
		return names[0]
	}
	return ""
}

func parseJSONFlag(cmd *cobra.Command, name string) (map[string]any, error) {
	raw, _ := cmd.Flags().GetString(name)
	out := map[string]any{}
	if raw == "" {
		return out, nil
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("invalid --%s: %w", name, err)
	}
	return out, nil
}

func hasFailures(results domain.Results) bool {
	for name := range results {
		if results.Failed(name) {
			return true
		}
	}
	return false
}

// printReport renders the run as markdown through glamour, in workflow order.
func printReport(org *cadre.Organization, workflow string, results domain.Results) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# %s\n\n", workflow))

	steps, err := org.WorkflowSteps(workflow)
	if err != nil {
		steps = nil
	}
	for _, step := range steps {
		if rec := results.Err(step.Name); rec != nil {
			sb.WriteString(fmt.Sprintf("## %s ❌\n\n%s\n\n", step.Name, rec.Error))
			continue
		}
		sb.WriteString(fmt.Sprintf("## %s\n\n```\n%s\n```\n\n", step.Name, runtime.Stringify(results[step.Name])))
	}

	render := tui.NewRenderer()
	out, err := render(sb.String())
	if err != nil {
		fmt.Print(sb.String())
		return
	}
	fmt.Print(out)
}
