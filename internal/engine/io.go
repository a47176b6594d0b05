package engine

// Input supplies the value stored by ','.
//
// The engine treats whatever Read returns as authoritative and only wraps it
// to the cell width. An error aborts the run and is returned unchanged.
type Input interface {
	Read() (int, error)
}

// Output receives the raw cell value for '.'.
//
// Rendering (character, decimal literal, ...) is entirely the Output's job.
// An error aborts the run and is returned unchanged.
type Output interface {
	Write(v int) error
}

// InputFunc adapts a function to Input.
type InputFunc func() (int, error)

// Read calls f.
func (f InputFunc) Read() (int, error) {
	return f()
}

// OutputFunc adapts a function to Output.
type OutputFunc func(v int) error

// Write calls f.
func (f OutputFunc) Write(v int) error {
	return f(v)
}
