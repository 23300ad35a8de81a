package domain

// Job is a named, configured invocation of a Unit inside a Group.
type Job struct {
	Name     string `json:"name" yaml:"name" mapstructure:"name"`
	UnitName string `json:"unit" yaml:"unit" mapstructure:"unit"`

	// InputMapping binds parameter names to dot-paths over the run sources,
	// e.g. {"x": "results.fetch"} or {"q": "initialInputs.query"}.
	InputMapping map[string]string `json:"input_mapping,omitempty" yaml:"input_mapping,omitempty" mapstructure:"input_mapping"`

	// InputTemplate, when set, is the textual payload with {{param}}
	// placeholders substituted from the resolved mapping.
	InputTemplate string `json:"input_template,omitempty" yaml:"input_template,omitempty" mapstructure:"input_template"`

	// OutputKey names a field to extract from the unit result when the
	// result is a structured object. Extraction never fails hard: a missing
	// key stores the full result and emits a diagnostic.
	OutputKey string `json:"output_key,omitempty" yaml:"output_key,omitempty" mapstructure:"output_key"`

	// Parallel marks the job for concurrent dispatch. Adjacent parallel
	// entries in the declared workflow form one batch.
	Parallel bool `json:"parallel,omitempty" yaml:"parallel,omitempty" mapstructure:"parallel"`
}

// Step is a named, configured invocation of a Group inside an Organization.
// It has the same binding surface as a Job, with the unit reference replaced
// by a group reference plus an optional single job to run.
type Step struct {
	Name      string `json:"name" yaml:"name" mapstructure:"name"`
	GroupName string `json:"group" yaml:"group" mapstructure:"group"`

	// JobName, when set, makes the step run only that job of the target
	// group, bypassing the group's declared workflow.
	JobName string `json:"job,omitempty" yaml:"job,omitempty" mapstructure:"job"`

	InputMapping  map[string]string `json:"input_mapping,omitempty" yaml:"input_mapping,omitempty" mapstructure:"input_mapping"`
	InputTemplate string            `json:"input_template,omitempty" yaml:"input_template,omitempty" mapstructure:"input_template"`
	OutputKey     string            `json:"output_key,omitempty" yaml:"output_key,omitempty" mapstructure:"output_key"`
	Parallel      bool              `json:"parallel,omitempty" yaml:"parallel,omitempty" mapstructure:"parallel"`
}
