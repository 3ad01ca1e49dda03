// Package fps multiplexes a single long-lived PowerShell interpreter
// child process behind a structured, in-process RPC.
//
// A Shell spawns one "powershell"/"pwsh" process with piped stdio. Each
// Call wraps the caller's fragment in a generated script that captures
// all five PowerShell streams plus the pipeline's success output, frames
// the resulting JSON envelope between two random delimiters written to
// stdout, and cleans up after itself. The Shell's single dispatcher
// goroutine writes one command at a time, correlates the next framed
// envelope on stdout back to it, and resolves that command's Handle.
//
// # Basic usage
//
//	sh, err := fps.NewShell(fps.WithTimeout(30 * time.Second))
//	if err != nil {
//	    return err
//	}
//	defer sh.Destroy().Wait(context.Background())
//
//	h := sh.Call("Get-Date", fps.FormatJSON)
//	result, err := h.Wait(context.Background())
//
// # Restart semantics
//
// A command that times out, a child that exits unexpectedly, or a
// malformed envelope all provoke the same response: the interpreter is
// killed (SIGTERM, then SIGINT, then SIGKILL on a fixed schedule) and a
// fresh one is spawned under the next generation. The offending command
// is failed; queued commands are failed too, never silently replayed
// against the new process.
//
// # Streams
//
// Success, Error, Warning, Verbose, Debug, and Info are each exposed as
// a broadcaster: each non-empty emission from every command is offered to
// every current subscriber, with no replay for late subscribers. Each
// subscriber has a buffer of 32 emissions; a subscriber whose buffer is
// full misses emissions rather than stalling the dispatcher.
package fps
