package target

// Selector is a named target specification that expands into one or more
// literal task paths. The dispatch layer recognizes exactly two kinds:
// Task (a single path) and Group (a named, unordered expansion). Anything
// else implementing this interface is rejected at configuration time.
type Selector interface {
	// SelectorName returns the human-readable name of the selection.
	SelectorName() string
}

// Task selects exactly one task by path.
type Task struct {
	Path Path
}

// SelectorName returns the task path.
func (t Task) SelectorName() string { return string(t.Path) }

// Group selects a named collection of tasks. The order of Members carries
// no meaning: a group's expansion is a set, and callers must not rely on
// the order in which its members resolve.
type Group struct {
	Name    string
	Members []Path
}

// SelectorName returns the group name.
func (g Group) SelectorName() string { return g.Name }
