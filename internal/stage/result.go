// Package stage carries the outcome of one pipeline step.
package stage

// Outcome classifies how a stage finished.
type Outcome string

const (
	// Ok means the stage produced its real value.
	Ok Outcome = "ok"
	// Recovered means the stage failed but substituted a usable value.
	Recovered Outcome = "recovered"
	// Fatal means the stage failed and the turn must end with the error reply.
	Fatal Outcome = "fatal"
)

// Result is a stage value tagged with its outcome. Err is set for Recovered
// and Fatal results.
type Result[T any] struct {
	Value   T
	Outcome Outcome
	Err     error
}

func OK[T any](v T) Result[T] {
	return Result[T]{Value: v, Outcome: Ok}
}

func Recover[T any](v T, err error) Result[T] {
	return Result[T]{Value: v, Outcome: Recovered, Err: err}
}

func Fail[T any](err error) Result[T] {
	return Result[T]{Outcome: Fatal, Err: err}
}

func (r Result[T]) IsFatal() bool { return r.Outcome == Fatal }
