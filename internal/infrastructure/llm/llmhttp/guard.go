package llmhttp

import (
	"context"

	"github.com/JesseAnalyzes/Pegasus-hack-ai-thon/internal/infrastructure/resilience"
)

// Guard runs fn through the executor when one is configured.
func Guard(ctx context.Context, exec *resilience.Executor, operation string, fn func(context.Context) error) error {
	var err error
	if exec == nil {
		err = fn(ctx)
	} else {
		err = exec.Execute(ctx, operation, fn, Classify)
	}
	return WrapTemporaryIfNeeded(operation, err)
}
