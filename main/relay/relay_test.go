package relay

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder is an in-memory Outbound.
type recorder struct {
	mu     sync.Mutex
	frames []Frame
	closed bool
	err    error
}

func (r *recorder) Send(frames ...Frame) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.frames = append(r.frames, frames...)
	return nil
}

func (r *recorder) IsOpen() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return !r.closed
}

func (r *recorder) Frames() []Frame {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Frame(nil), r.frames...)
}

func (r *recorder) fail(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

func (r *recorder) close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
}

type fixture struct {
	registry    *Registry
	broadcaster *Broadcaster
	dispatcher  *Dispatcher
}

func newFixture() *fixture {
	registry := NewRegistry()
	broadcaster := NewBroadcaster(registry)
	return &fixture{
		registry:    registry,
		broadcaster: broadcaster,
		dispatcher:  NewDispatcher(registry, broadcaster),
	}
}

func (f *fixture) connect() (*Connection, *recorder) {
	rec := &recorder{}
	return NewConnection(rec), rec
}

func (f *fixture) send(t *testing.T, conn *Connection, control string) {
	t.Helper()
	require.NoError(t, f.dispatcher.Dispatch(conn, Text([]byte(control))))
}

func assertText(t *testing.T, expected string, frame Frame) {
	t.Helper()
	require.Equal(t, TextFrame, frame.Kind, "expected a text frame")
	assert.JSONEq(t, expected, string(frame.Data))
}

func assertBinary(t *testing.T, expected []byte, frame Frame) {
	t.Helper()
	require.Equal(t, BinaryFrame, frame.Kind, "expected a binary frame")
	assert.Equal(t, expected, frame.Data)
}
