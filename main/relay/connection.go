package relay

import (
	"errors"

	"github.com/google/uuid"
)

var (
	ErrConnectionClosed = errors.New("connection closed")
	ErrBackpressure     = errors.New("outbox full")
)

type Role int

const (
	RoleUnregistered Role = iota
	RoleCamera
	RoleViewer
)

func (r Role) String() string {
	switch r {
	case RoleCamera:
		return "camera"
	case RoleViewer:
		return "viewer"
	default:
		return "unregistered"
	}
}

type PayloadKind int

const (
	PayloadVideo PayloadKind = iota
	PayloadAudioFromCamera
	PayloadAudioFromPC
)

func (k PayloadKind) String() string {
	switch k {
	case PayloadVideo:
		return "video"
	case PayloadAudioFromCamera:
		return "audio-from-camera"
	case PayloadAudioFromPC:
		return "audio-from-pc"
	}
	return "unknown"
}

// PendingPayload tells how to route the next binary frame on a connection.
// CameraId is the source camera for video and camera audio, and the talkback
// target for audio-from-pc.
type PendingPayload struct {
	Kind     PayloadKind
	CameraId string
}

// Outbound is the sending half of a participant's transport.
// Send must not block: frames are delivered in order, all or nothing.
type Outbound interface {
	Send(frames ...Frame) error
	IsOpen() bool
}

// Connection carries the per-participant protocol state. Role, camera id,
// pending payload and the closed flag are only touched by the goroutine
// reading from the participant, so they are not guarded.
type Connection struct {
	Id       string
	out      Outbound
	role     Role
	cameraId string
	pending  *PendingPayload
	closed   bool
}

func NewConnection(out Outbound) *Connection {
	return &Connection{
		Id:  uuid.NewString(),
		out: out,
	}
}

func (c *Connection) Role() Role {
	return c.role
}

// CameraId is the id this connection registered under, empty unless it is a camera.
func (c *Connection) CameraId() string {
	return c.cameraId
}

func (c *Connection) Closed() bool {
	return c.closed
}

// arm records the descriptor for the next binary frame, replacing any
// descriptor that is still waiting. Reports whether one was replaced.
func (c *Connection) arm(pending PendingPayload) bool {
	overwritten := c.pending != nil
	c.pending = &pending
	return overwritten
}

// take consumes the pending descriptor.
func (c *Connection) take() (PendingPayload, bool) {
	if c.pending == nil {
		return PendingPayload{}, false
	}
	pending := *c.pending
	c.pending = nil
	return pending, true
}

func (c *Connection) Pending() (PendingPayload, bool) {
	if c.pending == nil {
		return PendingPayload{}, false
	}
	return *c.pending, true
}

// Send and IsOpen are safe to call from any goroutine.
func (c *Connection) Send(frames ...Frame) error {
	return c.out.Send(frames...)
}

func (c *Connection) IsOpen() bool {
	return c.out.IsOpen()
}
