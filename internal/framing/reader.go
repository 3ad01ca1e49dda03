// Package framing implements the byte-level state machine that turns a
// stream of chunks from a child process's pipe into complete, delimited
// envelope payloads.
package framing

import "bytes"

// Reader consumes byte chunks from one pipe and emits complete payload
// strings framed by a head/tail delimiter pair. It holds a growable buffer
// and is not safe for concurrent use from more than one goroutine; the
// child process owns one Reader per pipe.
type Reader struct {
	head []byte
	tail []byte
	buf  []byte
}

// New returns a Reader that frames payloads between head and tail.
func New(head, tail string) *Reader {
	return &Reader{
		head: []byte(head),
		tail: []byte(tail),
	}
}

// Write appends chunk to the internal buffer and extracts every complete
// payload now available. Correctness does not depend on chunk boundaries:
// a delimiter split across two chunks is still found, because each call
// rescans the full accumulated buffer.
func (r *Reader) Write(chunk []byte) []string {
	r.buf = append(r.buf, chunk...)

	var payloads []string
	for {
		tailIdx := bytes.Index(r.buf, r.tail)
		if tailIdx == -1 {
			break
		}

		// Locate the most recent head preceding this tail. If none is
		// found, the head index is treated as -1, so the payload starts
		// len(head)-1 bytes into the buffer rather than at 0, and most of
		// any pre-head noise is dropped with the frame. Long-standing
		// behavior; callers may depend on it.
		headIdx := bytes.LastIndex(r.buf[:tailIdx], r.head)
		payloadStart := headIdx + len(r.head)
		if payloadStart < 0 {
			payloadStart = 0
		}
		if payloadStart > tailIdx {
			payloadStart = tailIdx
		}

		payloads = append(payloads, string(r.buf[payloadStart:tailIdx]))
		r.buf = r.buf[tailIdx+len(r.tail):]
	}

	return payloads
}

// Pending returns the number of unframed bytes currently buffered, for
// diagnostics.
func (r *Reader) Pending() int {
	return len(r.buf)
}
