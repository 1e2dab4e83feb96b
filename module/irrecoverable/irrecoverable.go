package irrecoverable

import (
	"context"
	"fmt"
	"log"
	"runtime"
)

// Signaler sends an irrecoverable error to the component supervising the
// goroutine that threw it. Only the first error is delivered, later ones are
// dropped since the component is shutting down anyway.
type Signaler struct {
	errors chan error
}

func NewSignaler() (*Signaler, <-chan error) {
	errChan := make(chan error, 1)
	return &Signaler{errors: errChan}, errChan
}

// Throw is a narrow drop-in replacement for panic and log.Fatal. It delivers
// the error and terminates the calling goroutine.
func (s *Signaler) Throw(err error) {
	select {
	case s.errors <- err:
	default:
	}
	runtime.Goexit()
}

// SignalerContext is a context.Context that can also report irrecoverable
// errors. It can only be built with WithSignaler.
type SignalerContext interface {
	context.Context
	Throw(err error)
	sealed()
}

type signalerCtx struct {
	context.Context
	*Signaler
}

func (sc signalerCtx) sealed() {}

// WithSignaler wraps ctx into a SignalerContext and returns the channel the
// thrown error is delivered on.
func WithSignaler(ctx context.Context) (SignalerContext, <-chan error) {
	sig, errChan := NewSignaler()
	return &signalerCtx{ctx, sig}, errChan
}

// Throw delegates to the signaler of ctx when there is one. Contexts without
// a signaler cannot handle the error, so the process is terminated.
func Throw(ctx context.Context, err error) {
	if sc, ok := ctx.(SignalerContext); ok {
		sc.Throw(err)
		return
	}
	log.Fatalf("irrecoverable error signaler not found for context, unhandled irrecoverable error: %v", err)
}

// Exception wraps an unexpected error, for example a storage failure, that
// leaves the caller in an undefined state.
type Exception struct {
	err error
}

func (e Exception) Error() string {
	return e.err.Error()
}

func (e Exception) Unwrap() error {
	return e.err
}

// NewException wraps err as an irrecoverable exception.
func NewException(err error) error {
	return Exception{err: err}
}

// NewExceptionf formats a new irrecoverable exception.
func NewExceptionf(msg string, args ...interface{}) error {
	return NewException(fmt.Errorf(msg, args...))
}
