// Package validator performs static checks over a composed group or
// organization, reporting configuration problems before any run.
package validator

import (
	"fmt"

	cadre "github.com/avells/cadre"
	"github.com/avells/cadre/pkg/domain"
)

// Severity classifies an issue. Errors would surface as in-band failures at
// run time; warnings are suspicious but runnable configurations.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is one finding of a check.
type Issue struct {
	Severity Severity
	Subject  string
	Message  string
}

func (i Issue) String() string {
	return fmt.Sprintf("[%s] %s: %s", i.Severity, i.Subject, i.Message)
}

// HasErrors reports whether any issue is an error.
func HasErrors(issues []Issue) bool {
	for _, issue := range issues {
		if issue.Severity == SeverityError {
			return true
		}
	}
	return false
}

// CheckGroup validates a group's composition: every job must bind to a
// registered unit, the workflow must be declared, and registered units
// should be reachable from some job.
func CheckGroup(g *cadre.Group) []Issue {
	var issues []Issue
	subject := "group " + g.Name()

	units := make(map[string]bool)
	for _, name := range g.UnitNames() {
		units[name] = false
	}

	for _, job := range g.Jobs() {
		if _, ok := units[job.UnitName]; !ok {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Subject:  subject,
				Message:  fmt.Sprintf("job %s references unknown unit: %s", job.Name, job.UnitName),
			})
			continue
		}
		units[job.UnitName] = true
	}

	for name, used := range units {
		if !used {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Subject:  subject,
				Message:  fmt.Sprintf("unit %s is not referenced by any job", name),
			})
		}
	}

	if len(g.Workflow()) == 0 {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Subject:  subject,
			Message:  "no workflow declared",
		})
	}

	return issues
}

// jobLister is satisfied by *cadre.Group; other GroupRunner implementations
// skip the job-level checks.
type jobLister interface {
	Jobs() map[string]domain.Job
}

// CheckOrganization validates the organization's composition and recurses
// into every contained *cadre.Group.
func CheckOrganization(o *cadre.Organization) []Issue {
	var issues []Issue
	subject := "organization " + o.Name()

	for _, name := range o.GroupNames() {
		gr, _ := o.Group(name)
		if g, ok := gr.(*cadre.Group); ok {
			issues = append(issues, CheckGroup(g)...)
		}
	}

	usedSteps := make(map[string]bool)
	for _, wf := range o.Workflows() {
		steps, err := o.WorkflowSteps(wf)
		if err != nil {
			continue
		}
		for _, step := range steps {
			usedSteps[step.Name] = true
		}
	}

	for _, step := range o.Steps() {
		gr, ok := o.Group(step.GroupName)
		if !ok {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Subject:  subject,
				Message:  fmt.Sprintf("step %s references unknown group: %s", step.Name, step.GroupName),
			})
			continue
		}

		if step.JobName != "" {
			if lister, ok := gr.(jobLister); ok {
				if _, ok := lister.Jobs()[step.JobName]; !ok {
					issues = append(issues, Issue{
						Severity: SeverityError,
						Subject:  subject,
						Message:  fmt.Sprintf("step %s references unknown job %s in group %s", step.Name, step.JobName, step.GroupName),
					})
				}
			}
		}

		if !usedSteps[step.Name] {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Subject:  subject,
				Message:  fmt.Sprintf("step %s is not part of any workflow", step.Name),
			})
		}
	}

	if len(o.Workflows()) == 0 {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Subject:  subject,
			Message:  "no workflows declared",
		})
	}

	return issues
}
