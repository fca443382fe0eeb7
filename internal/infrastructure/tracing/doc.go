/*
Package tracing records timed spans for suspend and resume.

A suspend or resume is one trace; its phases (client state, session state,
restore) are child spans. Finished spans are handed to a buffered collector
that logs them, so the hot path never waits on logging.

# Usage

	tracer := tracing.New("sessiond", logger)
	defer tracer.Close()

	ctx, span := tracer.StartSpan(ctx, "suspend")
	defer span.End()

	span.SetTag("path", target)

A nil *Tracer is valid and records nothing.
*/
package tracing
