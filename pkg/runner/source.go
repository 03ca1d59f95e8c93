package runner

import (
	"context"

	"capeval/pkg/task"
)

// OutputSource produces one raw output string per (task, attempt). It is
// the runner's only capability for obtaining generator output; the runner
// never learns how the string was produced.
type OutputSource interface {
	Output(ctx context.Context, t task.Task, attempt int) (string, error)
}

// SourceFunc adapts a function to the OutputSource interface. Used in tests
// to substitute synthetic output streams.
type SourceFunc func(ctx context.Context, t task.Task, attempt int) (string, error)

func (f SourceFunc) Output(ctx context.Context, t task.Task, attempt int) (string, error) {
	return f(ctx, t, attempt)
}
