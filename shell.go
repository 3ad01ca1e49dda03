package fps

import (
	"fmt"
	"sync"
	"time"

	"github.com/smnsjas/fps/internal/broadcast"
	"github.com/smnsjas/fps/internal/child"
	"github.com/smnsjas/fps/internal/dispatcher"
	"github.com/smnsjas/fps/internal/lifecycle"
)

// Shell is the public façade: it owns the child interpreter, the
// dispatcher's queue and state, and the six per-stream broadcasters. The
// zero value is not usable; construct one with NewShell.
type Shell struct {
	opts Options

	submitCh  chan *command
	destroyCh chan struct{}
	tickCh    chan struct{}

	successB *broadcast.Broadcaster[any]
	errorB   *broadcast.Broadcaster[[]string]
	warningB *broadcast.Broadcaster[[]string]
	verboseB *broadcast.Broadcaster[[]string]
	debugB   *broadcast.Broadcaster[[]string]
	infoB    *broadcast.Broadcaster[[]string]

	destroyMu     sync.Mutex
	destroyHandle *Handle[bool]

	done chan struct{} // closed once shutdown has completed
}

// NewShell spawns the interpreter and arms the dispatcher. It returns once
// the child process has started; it does not wait for the interpreter to
// finish initializing.
func NewShell(opts ...Option) (*Shell, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	c, err := child.Spawn(child.Config{ExePath: o.ExePath, TmpDir: o.TmpDir, Generation: 1})
	if err != nil {
		return nil, fmt.Errorf("fps: spawn interpreter: %w", err)
	}
	o.Logger.Debug("fps: interpreter started", "pid", c.Pid(), "generation", uint64(1))

	s := &Shell{
		opts:      o,
		submitCh:  make(chan *command),
		destroyCh: make(chan struct{}, 1),
		tickCh:    make(chan struct{}, 1),
		successB:  broadcast.New[any](),
		errorB:    broadcast.New[[]string](),
		warningB:  broadcast.New[[]string](),
		verboseB:  broadcast.New[[]string](),
		debugB:    broadcast.New[[]string](),
		infoB:     broadcast.New[[]string](),
		done:      make(chan struct{}),
	}

	loop := &runLoop{shell: s, child: c, generation: 1}
	go loop.run()

	return s, nil
}

// Call submits a fragment for execution and returns a handle to its
// result. The fragment runs against the shared persistent interpreter in
// arrival order relative to every other Call on this Shell. The send onto
// the dispatcher's submit channel happens synchronously, so enqueue order
// matches call order exactly; the dispatcher goroutine is always ready to
// receive, so this never blocks meaningfully, and the handle is still
// returned to the caller before the dispatcher can have resolved it.
func (s *Shell) Call(source string, format Format) *Handle[StreamsResult] {
	cmd := newCommand(source, format)
	s.submitCh <- cmd
	return cmd.sink
}

// Destroy shuts the shell down: it kills the interpreter (escalating from
// SIGTERM through SIGINT to SIGKILL if needed), errors every in-flight and
// queued command with ErrClosed, and resolves its handle with true once
// fully observed. Destroy is idempotent: every call after the first
// returns the same handle.
func (s *Shell) Destroy() *Handle[bool] {
	s.destroyMu.Lock()
	if s.destroyHandle != nil {
		h := s.destroyHandle
		s.destroyMu.Unlock()
		return h
	}
	h := newHandle[bool]()
	s.destroyHandle = h
	s.destroyMu.Unlock()

	s.destroyCh <- struct{}{}
	return h
}

// Success subscribes to the Success stream broadcaster. It emits the
// decoded success payload of every command whose success stream was
// non-empty.
func (s *Shell) Success() (<-chan any, func()) { return s.successB.Subscribe(32) }

// Error subscribes to the Error stream broadcaster.
func (s *Shell) Error() (<-chan []string, func()) { return s.errorB.Subscribe(32) }

// Warning subscribes to the Warning stream broadcaster.
func (s *Shell) Warning() (<-chan []string, func()) { return s.warningB.Subscribe(32) }

// Verbose subscribes to the Verbose stream broadcaster.
func (s *Shell) Verbose() (<-chan []string, func()) { return s.verboseB.Subscribe(32) }

// Debug subscribes to the Debug stream broadcaster.
func (s *Shell) Debug() (<-chan []string, func()) { return s.debugB.Subscribe(32) }

// Info subscribes to the Info stream broadcaster.
func (s *Shell) Info() (<-chan []string, func()) { return s.infoB.Subscribe(32) }

// runLoop is the single-threaded cooperative executor: one goroutine owns
// the queue, the latches, and the current child reference. Nothing outside
// this goroutine mutates dispatcher state.
type runLoop struct {
	shell *Shell
	child *child.Child

	generation uint64
	queue      dispatcher.Queue[*command]
	state      dispatcher.State
	current    *command

	closing         bool
	restarting      bool
	killing         bool
	finished        bool
	destroyResolved bool
	stopKill        chan struct{}
}

// run is the dispatcher's single goroutine. It never returns: once the
// shell is fully shut down it keeps servicing submitCh so that any Call
// made after Destroy still observes ErrClosed instead of hanging forever
// on a sink that nothing will ever resolve.
func (l *runLoop) run() {
	var timeoutC <-chan time.Time
	var timeoutTimer *time.Timer

	armTimeout := func() {
		timeoutTimer = time.NewTimer(l.shell.opts.Timeout)
		timeoutC = timeoutTimer.C
	}
	disarmTimeout := func() {
		if timeoutTimer != nil {
			timeoutTimer.Stop()
		}
		timeoutC = nil
	}

	for {
		select {
		case cmd := <-l.shell.submitCh:
			if l.closing {
				cmd.sink.reject(fmt.Errorf("fps: submit after destroy: %w", ErrClosed))
				continue
			}
			cmd.generation = l.generation
			l.queue.Push(cmd)
			l.scheduleTick()

		case <-l.shell.destroyCh:
			if l.closing {
				// Already fully shut down: nothing left to observe, so the
				// fresh handle resolves immediately. A shutdown still in
				// progress resolves it when it completes.
				if l.finished {
					l.resolveDestroy()
				}
				continue
			}
			l.closing = true
			disarmTimeout()
			if !l.restarting {
				l.killCurrentChild()
			}

		case <-l.shell.tickCh:
			if l.state != dispatcher.Idle || l.closing || l.restarting {
				continue
			}
			cmd, ok := l.queue.Pop()
			if !ok {
				continue
			}
			l.current = cmd
			l.state = dispatcher.Writing
			if err := l.child.Write(cmd.source, string(cmd.format), l.shell.opts.CollectVerbose, l.shell.opts.CollectDebug); err != nil {
				l.shell.opts.Logger.Warn("fps: stdin write failed", "id", cmd.id, "error", err)
				cmd.sink.reject(fmt.Errorf("fps: %w: %v", ErrWriteFailed, err))
				l.current = nil
				l.state = dispatcher.Idle
				l.beginRestart()
				continue
			}
			l.state = dispatcher.Awaiting
			armTimeout()

		case reply := <-l.child.Replies():
			if l.current == nil {
				continue // a reply arrived with nothing in flight; ignore
			}
			disarmTimeout()
			cur := l.current
			l.current = nil
			l.state = dispatcher.Idle

			if reply.Err != nil {
				l.shell.opts.Logger.Error("fps: envelope decode failed", "id", cur.id, "error", reply.Err)
				cur.sink.reject(fmt.Errorf("%w: %v", ErrDecode, reply.Err))
				l.beginRestart()
				continue
			}

			cur.sink.resolve(reply.Result)
			l.emit(reply.Result)
			l.scheduleTick()

		case <-timeoutC:
			disarmTimeout()
			cur := l.current
			l.current = nil
			l.state = dispatcher.Idle
			if cur != nil {
				l.shell.opts.Logger.Warn("fps: command timed out", "id", cur.id, "timeout", l.shell.opts.Timeout)
				cur.sink.reject(newTimeoutError(l.shell.opts.Timeout))
			}
			l.beginRestart()

		case exitResult := <-l.child.Closed():
			disarmTimeout()
			l.onChildClosed(exitResult)
			if l.closing {
				l.shutdownOnce()
				continue
			}
			if !l.restart() {
				l.failEverything(fmt.Errorf("fps: restart failed: %w", ErrClosed))
				l.closing = true
				l.shutdownOnce()
				continue
			}
		}
	}
}

// beginRestart marks the restarting latch, advances the generation the
// next child will carry, fails every command still queued against the dead
// generation, and starts killing the child. Commands submitted after this
// point are stamped with the new generation and survive to run on the
// fresh interpreter. During shutdown no restart happens; the child is just
// killed.
func (l *runLoop) beginRestart() {
	if l.closing {
		l.killCurrentChild()
		return
	}
	l.restarting = true
	l.generation++
	l.failStaleQueued()
	l.killCurrentChild()
}

// failStaleQueued rejects every queued command enqueued against a
// generation older than the current one. Interpreter state does not
// survive the swap, and silent replay would be worse than visible failure.
func (l *runLoop) failStaleQueued() {
	for _, cmd := range l.queue.DrainAll() {
		if cmd.generation < l.generation {
			cmd.sink.reject(fmt.Errorf("fps: interpreter restarted: %w", ErrClosed))
			continue
		}
		l.queue.Push(cmd)
	}
}

// killCurrentChild arms the kill-escalation sequence against the current
// child exactly once per generation. After shutdown has completed there is
// no child left to signal.
func (l *runLoop) killCurrentChild() {
	if l.killing || l.finished {
		return
	}
	l.killing = true
	stop := make(chan struct{})
	l.stopKill = stop
	lifecycle.Escalate(l.child, stop, lifecycle.DefaultEscalationDelay)
}

// onChildClosed stops any in-flight escalation and fails an in-flight
// command that died without a prior timeout/decode trigger (a spontaneous
// crash).
func (l *runLoop) onChildClosed(exit child.ExitResult) {
	l.shell.opts.Logger.Debug("fps: interpreter exited",
		"generation", l.generation, "code", exit.ExitCode, "signaled", exit.Signaled)
	if l.stopKill != nil {
		close(l.stopKill)
		l.stopKill = nil
	}
	l.killing = false

	if l.current != nil {
		l.current.sink.reject(fmt.Errorf("fps: interpreter exited: %w", ErrClosed))
		l.current = nil
	}
	l.state = dispatcher.Idle
}

// restart spawns a fresh interpreter generation. On a spontaneous exit,
// where no prior detection advanced the generation, it also fails the work
// still queued against the dead interpreter. It returns false if the spawn
// itself failed, in which case the shell cannot continue.
func (l *runLoop) restart() bool {
	if !l.restarting {
		l.generation++
		l.failStaleQueued()
	}
	c, err := child.Spawn(child.Config{
		ExePath:    l.shell.opts.ExePath,
		TmpDir:     l.shell.opts.TmpDir,
		Generation: l.generation,
	})
	if err != nil {
		l.shell.opts.Logger.Error("fps: restart spawn failed", "generation", l.generation, "error", err)
		return false
	}
	l.child = c
	l.restarting = false
	l.shell.opts.Logger.Info("fps: interpreter restarted", "pid", c.Pid(), "generation", l.generation)

	l.state = dispatcher.Idle
	l.scheduleTick()
	return true
}

// failEverything errors the in-flight command (if any) and drains the
// queue, erroring every pending command with err.
func (l *runLoop) failEverything(err error) {
	if l.current != nil {
		l.current.sink.reject(err)
		l.current = nil
	}
	for _, cmd := range l.queue.DrainAll() {
		cmd.sink.reject(err)
	}
}

// shutdownOnce runs finishShutdown exactly once per Shell, guarding
// against restart failure and a genuine close both reaching this call
// site.
func (l *runLoop) shutdownOnce() {
	if l.finished {
		return
	}
	l.finished = true
	l.finishShutdown()
	close(l.shell.done)
}

// finishShutdown drains any remaining queued commands with ErrClosed,
// closes every broadcaster, and resolves the destroy handle.
func (l *runLoop) finishShutdown() {
	for _, cmd := range l.queue.DrainAll() {
		cmd.sink.reject(fmt.Errorf("fps: shell destroyed: %w", ErrClosed))
	}
	l.shell.successB.Close()
	l.shell.errorB.Close()
	l.shell.warningB.Close()
	l.shell.verboseB.Close()
	l.shell.debugB.Close()
	l.shell.infoB.Close()
	l.shell.opts.Logger.Debug("fps: shutdown complete", "generation", l.generation)
	l.resolveDestroy()
}

// resolveDestroy resolves the destroy handle with true, if one has been
// created. Destroy only ever creates one handle, and this runs only on the
// loop goroutine, so a plain bool is enough to keep the resolution
// single-shot even when shutdown and a late Destroy race to this call.
func (l *runLoop) resolveDestroy() {
	if l.destroyResolved {
		return
	}
	l.shell.destroyMu.Lock()
	h := l.shell.destroyHandle
	l.shell.destroyMu.Unlock()
	if h != nil {
		l.destroyResolved = true
		h.resolve(true)
	}
}

// emit fans a completed result out to the six broadcasters, skipping any
// stream whose sequence is empty. It runs after the command's own sink has
// resolved, so a caller always observes its result before any broadcast of
// the same command's output.
func (l *runLoop) emit(r StreamsResult) {
	if !isEmptyAny(r.Success) {
		l.shell.successB.Emit(r.Success)
	}
	if len(r.Error) > 0 {
		l.shell.errorB.Emit(r.Error)
	}
	if len(r.Warning) > 0 {
		l.shell.warningB.Emit(r.Warning)
	}
	if len(r.Verbose) > 0 {
		l.shell.verboseB.Emit(r.Verbose)
	}
	if len(r.Debug) > 0 {
		l.shell.debugB.Emit(r.Debug)
	}
	if len(r.Info) > 0 {
		l.shell.infoB.Emit(r.Info)
	}
}

func (l *runLoop) scheduleTick() {
	select {
	case l.shell.tickCh <- struct{}{}:
	default:
	}
}

// isEmptyAny reports whether a decoded Success value (either []any or
// []string, per envelope.Decode's format-dependent shape) is empty.
func isEmptyAny(v any) bool {
	switch t := v.(type) {
	case []any:
		return len(t) == 0
	case []string:
		return len(t) == 0
	case nil:
		return true
	default:
		return false
	}
}
