package parallel

// Runner executes fn over contiguous sub-ranges of [0, n).
// WorkerPool runs the ranges concurrently; Serial runs them in order on the
// calling goroutine.
type Runner interface {
	Bands(n, parts int, fn func(lo, hi int)) error
}

// Serial is a Runner that executes the whole range inline.
type Serial struct{}

// Bands calls fn(0, n) once.
func (Serial) Bands(n, _ int, fn func(lo, hi int)) error {
	if n > 0 {
		fn(0, n)
	}
	return nil
}

var _ Runner = (*WorkerPool)(nil)
var _ Runner = Serial{}
