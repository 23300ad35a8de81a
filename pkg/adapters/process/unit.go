// Package process implements a Unit backed by a local subprocess. It is the
// adapter a YAML project uses for leaf task performers: the materialized
// input arrives on stdin, the result is read from stdout.
package process

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Unit executes a fixed command per invocation. The command and args are
// set at registration (allow-list style); the run-time input is never
// spliced into the command line, which prevents flag injection.
type Unit struct {
	name    string
	role    string
	command string
	args    []string
	env     map[string]string
	dir     string
}

// Option configures a process unit.
type Option func(*Unit)

// WithEnv adds environment variables for the subprocess.
func WithEnv(env map[string]string) Option {
	return func(u *Unit) {
		u.env = env
	}
}

// WithDir sets the working directory for the subprocess.
func WithDir(dir string) Option {
	return func(u *Unit) {
		u.dir = dir
	}
}

// New creates a process-backed unit.
func New(name, role, command string, args []string, opts ...Option) *Unit {
	u := &Unit{
		name:    name,
		role:    role,
		command: command,
		args:    append([]string(nil), args...),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Name returns the unit name.
func (u *Unit) Name() string { return u.name }

// Role returns the unit's purpose description.
func (u *Unit) Role() string { return u.role }

// Run executes the command with input on stdin. The shared context is
// exposed to the subprocess as JSON in CADRE_CONTEXT. Stdout that parses as
// a JSON object becomes a structured result; anything else is returned as
// trimmed text.
func (u *Unit) Run(ctx context.Context, input string, shared map[string]any) (any, error) {
	cmd := exec.CommandContext(ctx, u.command, u.args...)
	cmd.Stdin = strings.NewReader(input)
	cmd.Dir = u.dir

	cmd.Env = os.Environ()
	for k, v := range u.env {
		cmd.Env = append(cmd.Env, k+"="+v)
	}
	if len(shared) > 0 {
		data, err := json.Marshal(shared)
		if err == nil {
			cmd.Env = append(cmd.Env, "CADRE_CONTEXT="+string(data))
		}
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return nil, fmt.Errorf("unit %s: %s: %s", u.name, u.command, msg)
	}

	out := strings.TrimSpace(stdout.String())
	if strings.HasPrefix(out, "{") {
		var structured map[string]any
		if err := json.Unmarshal([]byte(out), &structured); err == nil {
			return structured, nil
		}
	}
	return out, nil
}
