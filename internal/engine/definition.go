// Package engine is Anvil's embedded execution backend: an in-process build
// engine that runs task graphs defined in a YAML build file. It implements
// the conn.Connection boundary so the dispatch layer can treat it exactly
// like a remote backend.
package engine

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/anvilbuild/anvil/internal/target"
)

// TaskDef describes one task in a build definition.
type TaskDef struct {
	Path        string   `yaml:"path"`
	Description string   `yaml:"description,omitempty"`
	Command     string   `yaml:"command"`
	Args        []string `yaml:"args,omitempty"`
	Outputs     []string `yaml:"outputs,omitempty"`
	DependsOn   []string `yaml:"dependsOn,omitempty"`
}

// Definition is a parsed build file: the project's tasks, named task
// groups, and the targets run when a build requests none.
type Definition struct {
	Project  string              `yaml:"project"`
	Defaults []string            `yaml:"defaults,omitempty"`
	Tasks    []TaskDef           `yaml:"tasks"`
	Groups   map[string][]string `yaml:"groups,omitempty"`
}

// LoadDefinition reads and parses a build file.
func LoadDefinition(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading build file %s: %w", path, err)
	}
	def, err := ParseDefinition(data)
	if err != nil {
		return nil, fmt.Errorf("parsing build file %s: %w", path, err)
	}
	return def, nil
}

// ParseDefinition parses and validates build file contents.
func ParseDefinition(data []byte) (*Definition, error) {
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, err
	}
	if err := def.validate(); err != nil {
		return nil, err
	}
	return &def, nil
}

func (d *Definition) validate() error {
	if d.Project == "" {
		return fmt.Errorf("build file missing project name")
	}
	if len(d.Tasks) == 0 {
		return fmt.Errorf("build file defines no tasks")
	}

	seen := make(map[string]bool)
	for _, t := range d.Tasks {
		if t.Path == "" {
			return fmt.Errorf("task with empty path")
		}
		if t.Command == "" {
			return fmt.Errorf("task %q has no command", t.Path)
		}
		if seen[t.Path] {
			return fmt.Errorf("duplicate task path %q", t.Path)
		}
		seen[t.Path] = true
	}

	// Dependency targets must exist; cycles are the graph's job to catch.
	for _, t := range d.Tasks {
		for _, dep := range t.DependsOn {
			if !seen[dep] {
				return fmt.Errorf("task %q depends on unknown task %q", t.Path, dep)
			}
		}
	}

	for name, members := range d.Groups {
		if len(members) == 0 {
			return fmt.Errorf("group %q is empty", name)
		}
		for _, m := range members {
			if !seen[m] {
				return fmt.Errorf("group %q references unknown task %q", name, m)
			}
		}
	}

	for _, path := range d.Defaults {
		if !seen[path] {
			return fmt.Errorf("defaults reference unknown task %q", path)
		}
	}

	return nil
}

// Task looks up a task definition by path.
func (d *Definition) Task(path string) (TaskDef, bool) {
	for _, t := range d.Tasks {
		if t.Path == path {
			return t, true
		}
	}
	return TaskDef{}, false
}

// GroupSelector builds the launchable selector for a named group.
func (d *Definition) GroupSelector(name string) (target.Group, error) {
	members, ok := d.Groups[name]
	if !ok {
		return target.Group{}, fmt.Errorf("unknown task group %q", name)
	}
	return target.Group{Name: name, Members: target.Paths(members)}, nil
}
