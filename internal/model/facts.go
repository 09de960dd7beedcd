package model

// Facts is a flat, dot-path keyed view of an inspection's answers.
// It is built once per inspection and must not be modified afterwards.
type Facts map[string]any

// Get returns the value stored at path
func (f Facts) Get(path string) (any, bool) {
	v, ok := f[path]
	return v, ok
}

// Present reports whether path holds a non-null value
func (f Facts) Present(path string) bool {
	v, ok := f[path]
	return ok && v != nil
}
