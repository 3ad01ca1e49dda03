package fps

import "github.com/google/uuid"

// command is a unit of work: the caller's fragment, the requested format,
// the generation of the child it was enqueued against, and the one-shot
// sink its result is delivered to exactly once. It is unexported because
// Call is the only way to construct one; the returned *Handle is the
// caller-facing object. generation is stamped by the dispatcher at
// enqueue time, not by newCommand, since only the dispatcher goroutine
// knows the current generation; it is read back on restart to fail every
// command left over from the generation being torn down.
type command struct {
	id         uuid.UUID
	source     string
	format     Format
	generation uint64
	sink       *Handle[StreamsResult]
}

func newCommand(source string, format Format) *command {
	return &command{
		id:     uuid.New(),
		source: source,
		format: format,
		sink:   newHandle[StreamsResult](),
	}
}
