// Package session owns the lifecycle of the single active review.
package session

import (
	"errors"
	"fmt"
	"sync"

	"github.com/felixgeelhaar/statekit"

	"github.com/agrireview/agrireview/internal/domain"
)

// Review session states.
const (
	StateIdle      = "idle"
	StateParsing   = "parsing"
	StateAnalyzing = "analyzing"
	StateComplete  = "complete"
	StateError     = "error"
)

// Events driving the session machine.
const (
	eventSelect    = "select"
	eventExtracted = "extracted"
	eventComplete  = "complete"
	eventFail      = "fail"
	eventReset     = "reset"
)

// ErrStaleGeneration is returned when a pipeline result arrives for a
// session generation that has been superseded by a newer file selection.
// Callers must drop the result; the session state is untouched.
var ErrStaleGeneration = errors.New("stale session generation")

type machineContext struct{}

// Session is the single active review lifecycle. Exactly one logical writer
// drives it at a time, but the HTTP surface may touch it from handler
// goroutines, so all access is mutex-guarded. Each file selection bumps the
// generation counter; stage results carry the generation they were started
// under and are discarded when stale.
type Session struct {
	mu          sync.Mutex
	interpreter *statekit.Interpreter[machineContext]

	generation uint64
	file       string
	text       string
	result     *domain.ReviewResponse
	errMsg     string
}

// New builds a session in the idle state.
func New() (*Session, error) {
	builder := statekit.NewMachine[machineContext]("review-session").
		WithInitial(statekit.StateID(StateIdle)).
		WithContext(machineContext{})

	builder.State(StateIdle).
		On(eventSelect).Target(StateParsing).
		Done()

	builder.State(StateParsing).
		On(eventExtracted).Target(StateAnalyzing).
		On(eventFail).Target(StateError).
		Done()

	builder.State(StateAnalyzing).
		On(eventComplete).Target(StateComplete).
		On(eventFail).Target(StateError).
		// A new upload abandons the in-flight review.
		On(eventSelect).Target(StateParsing).
		Done()

	builder.State(StateComplete).
		On(eventReset).Target(StateIdle).
		On(eventSelect).Target(StateParsing).
		Done()

	builder.State(StateError).
		On(eventReset).Target(StateIdle).
		On(eventSelect).Target(StateParsing).
		Done()

	machine, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("building session machine: %w", err)
	}

	interpreter := statekit.NewInterpreter(machine)
	interpreter.Start()

	return &Session{interpreter: interpreter}, nil
}

// send fires an event and verifies the machine actually moved. Callers hold
// the mutex. statekit leaves the state unchanged when no transition matches,
// which is how a refused event is detected.
func (s *Session) send(event string) error {
	before := s.interpreter.State().Value
	s.interpreter.Send(statekit.Event{Type: statekit.EventType(event)})
	after := s.interpreter.State().Value

	if before == after {
		return fmt.Errorf("event %q is not allowed in state %q", event, before)
	}
	return nil
}

// Select registers a new file and moves the session to parsing. It returns
// the generation tag the caller must present with every subsequent stage
// result. Selecting while a prior run is parsing or analyzing abandons it.
func (s *Session) Select(file string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Re-selecting while parsing stays in parsing; the machine has no
	// self-transition, so only send the event on an actual state change.
	if s.interpreter.State().Value != statekit.StateID(StateParsing) {
		if err := s.send(eventSelect); err != nil {
			return 0, err
		}
	}

	s.generation++
	s.file = file
	s.text = ""
	s.result = nil
	s.errMsg = ""

	return s.generation, nil
}

// MarkExtracted records the extracted text and moves parsing to analyzing.
func (s *Session) MarkExtracted(gen uint64, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		return ErrStaleGeneration
	}
	if err := s.send(eventExtracted); err != nil {
		return err
	}

	s.text = text
	return nil
}

// Complete records a validated review response and finishes the session.
func (s *Session) Complete(gen uint64, resp *domain.ReviewResponse) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		return ErrStaleGeneration
	}
	if err := s.send(eventComplete); err != nil {
		return err
	}

	s.result = resp
	return nil
}

// Fail records a terminal failure message for the current attempt.
func (s *Session) Fail(gen uint64, msg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		return ErrStaleGeneration
	}
	if err := s.send(eventFail); err != nil {
		return err
	}

	s.errMsg = msg
	return nil
}

// Reset returns a finished or failed session to idle, clearing all state.
func (s *Session) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.send(eventReset); err != nil {
		return err
	}

	s.file = ""
	s.text = ""
	s.result = nil
	s.errMsg = ""
	return nil
}

// State returns the current machine state.
func (s *Session) State() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return string(s.interpreter.State().Value)
}

// Generation returns the current generation tag.
func (s *Session) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// File returns the name of the file under review.
func (s *Session) File() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file
}

// Text returns the extracted document text.
func (s *Session) Text() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.text
}

// Result returns the last validated review, or nil.
func (s *Session) Result() *domain.ReviewResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// ErrorMessage returns the last failure message, or "".
func (s *Session) ErrorMessage() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errMsg
}
