/*
Package dsl provides a fluent builder for programmatically composing Cadre
groups and organizations, as an alternative to YAML project files. It is
particularly useful for dynamic composition, unit testing, and leveraging
IDE autocompletion and type-checking.

Example usage:

	g, err := dsl.NewGroup("research").
		Unit(fetcher).
		Unit(writer).
		Job("gather").Uses("fetcher").Done().
		Job("summarize").Uses("writer").MapInput("sources", "results.gather").Done().
		Workflow("gather", "summarize").
		Build()

	org, err := dsl.NewOrganization("acme").
		Group(g).
		Step("investigate").In("research").Done().
		Workflow("daily", "investigate").
		Build()
*/
package dsl
