package graph

import (
	"fmt"
	"strings"

	"github.com/avells/cadre/pkg/domain"
)

// GenerateGroupMermaid produces a Mermaid flowchart of a group's workflow:
// jobs in declared order, with contiguous parallel jobs grouped into a
// fan-out subgraph that joins before the next entry.
func GenerateGroupMermaid(groupName string, workflow []string, jobs map[string]domain.Job) string {
	descs := make([]descriptor, 0, len(workflow))
	for _, name := range workflow {
		job := jobs[name]
		descs = append(descs, descriptor{
			name:     name,
			label:    fmt.Sprintf("%s<br/>unit: %s", name, job.UnitName),
			parallel: job.Parallel,
		})
	}
	return render(groupName, descs)
}

// GenerateOrganizationMermaid produces a Mermaid flowchart of one named
// organization workflow over its steps.
func GenerateOrganizationMermaid(workflowName string, steps []domain.Step) string {
	descs := make([]descriptor, 0, len(steps))
	for _, step := range steps {
		target := step.GroupName
		if step.JobName != "" {
			target += "." + step.JobName
		}
		descs = append(descs, descriptor{
			name:     step.Name,
			label:    fmt.Sprintf("%s<br/>group: %s", step.Name, target),
			parallel: step.Parallel,
		})
	}
	return render(workflowName, descs)
}

type descriptor struct {
	name     string
	label    string
	parallel bool
}

func render(title string, descs []descriptor) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")
	sb.WriteString(fmt.Sprintf("    start((\"%s\"))\n", title))

	batches := batch(descs)
	prev := []string{"start"}
	for i, members := range batches {
		ids := make([]string, 0, len(members))
		if len(members) > 1 {
			sb.WriteString(fmt.Sprintf("    subgraph batch%d [parallel]\n", i))
		}
		for _, d := range members {
			id := sanitizeMermaidID(d.name)
			ids = append(ids, id)

			// Parallel jobs render as subroutines, sequential ones as plain
			// rectangles.
			opener, closer := "[", "]"
			if d.parallel {
				opener, closer = "[[", "]]"
			}
			sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", id, opener, d.label, closer))
		}
		if len(members) > 1 {
			sb.WriteString("    end\n")
		}

		for _, from := range prev {
			for _, to := range ids {
				sb.WriteString(fmt.Sprintf("    %s --> %s\n", from, to))
			}
		}
		prev = ids
	}
	return sb.String()
}

// batch groups contiguous parallel descriptors, mirroring how the executor
// forms dispatch batches.
func batch(descs []descriptor) [][]descriptor {
	var out [][]descriptor
	for i := 0; i < len(descs); {
		if !descs[i].parallel {
			out = append(out, descs[i:i+1])
			i++
			continue
		}
		j := i
		for j < len(descs) && descs[j].parallel {
			j++
		}
		out = append(out, descs[i:j])
		i = j
	}
	return out
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
