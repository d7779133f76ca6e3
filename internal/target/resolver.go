package target

// ResolveTasks resolves an explicit task-path selection. Literal paths need
// no expansion, so this is a defensive copy preserving order and duplicates.
func ResolveTasks(tasks []Path) []Path {
	resolved := make([]Path, len(tasks))
	copy(resolved, tasks)
	return resolved
}

// ResolveSelectors expands selectors into a flat task-path sequence.
// Selectors are expanded in input order; each selector's expansion lands as
// a contiguous block at its position. Within a Group's block the order is
// whatever the group carries, which callers must treat as arbitrary.
//
// An unsupported selector kind fails the whole resolution with a
// *ConfigurationError before any path is produced, so a partial expansion
// never escapes to the caller.
func ResolveSelectors(selectors []Selector) ([]Path, error) {
	// Validate every selector before expanding anything.
	for _, s := range selectors {
		switch s.(type) {
		case Task, Group:
		default:
			return nil, newUnsupportedSelector(s)
		}
	}

	resolved := make([]Path, 0, len(selectors))
	for _, s := range selectors {
		switch sel := s.(type) {
		case Task:
			resolved = append(resolved, sel.Path)
		case Group:
			resolved = append(resolved, sel.Members...)
		}
	}
	return resolved, nil
}
