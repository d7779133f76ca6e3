package target

// Path identifies a single task by its literal, colon-delimited path
// (e.g. ":compile" or ":server:test"). Paths are opaque to the dispatch
// layer and compared by value; only the execution backend interprets them.
type Path string

// Paths converts a slice of raw strings to task paths.
func Paths(raw []string) []Path {
	paths := make([]Path, len(raw))
	for i, r := range raw {
		paths[i] = Path(r)
	}
	return paths
}
