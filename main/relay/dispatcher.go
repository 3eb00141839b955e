package relay

import (
	"fmt"

	"github.com/rs/zerolog/log"
)

// Dispatcher interprets inbound frames for one connection at a time. Calls
// for the same connection must be sequential, calls for different
// connections may run concurrently.
type Dispatcher struct {
	registry    *Registry
	broadcaster *Broadcaster
}

func NewDispatcher(registry *Registry, broadcaster *Broadcaster) *Dispatcher {
	return &Dispatcher{
		registry:    registry,
		broadcaster: broadcaster,
	}
}

// Dispatch handles one inbound frame. The only errors returned are for
// malformed control messages, the connection stays usable either way.
func (d *Dispatcher) Dispatch(conn *Connection, frame Frame) error {
	if conn.closed {
		return nil
	}
	switch frame.Kind {
	case TextFrame:
		return d.handleControl(conn, frame.Data)
	case BinaryFrame:
		d.handlePayload(conn, frame.Data)
	}
	return nil
}

func (d *Dispatcher) handleControl(conn *Connection, data []byte) error {
	control, err := ParseControl(data)
	if err != nil {
		return err
	}
	controlMessages.WithLabelValues(control.Type.String()).Inc()

	switch control.Type {
	case ControlCameraInit:
		if control.CameraId == "" {
			return fmt.Errorf("%w: camera-init without cameraId", ErrMalformedControl)
		}
		d.registerCamera(conn, control.CameraId, control.Name)

	case ControlViewerInit:
		d.registerViewer(conn)

	case ControlVideo:
		d.arm(conn, PendingPayload{Kind: PayloadVideo, CameraId: control.CameraId})

	case ControlAudioFromCamera:
		d.arm(conn, PendingPayload{Kind: PayloadAudioFromCamera, CameraId: control.CameraId})

	case ControlAudioFromPC:
		d.arm(conn, PendingPayload{Kind: PayloadAudioFromPC, CameraId: control.TargetCameraId})

	default:
		log.Debug().
			Str("connectionId", conn.Id).
			Str("type", control.RawType).
			Msg("ignoring unknown control type")
	}
	return nil
}

func (d *Dispatcher) registerCamera(conn *Connection, id, name string) {
	if conn.role == RoleViewer {
		d.registry.RemoveViewer(conn)
	}

	d.registry.UpsertCamera(id, name, conn)
	conn.role = RoleCamera
	conn.cameraId = id

	log.Info().
		Str("connectionId", conn.Id).
		Str("cameraId", id).
		Str("name", name).
		Msg("camera connected")

	d.broadcaster.BroadcastCameraList()
}

func (d *Dispatcher) registerViewer(conn *Connection) {
	if conn.role == RoleCamera {
		removed := d.registry.RemoveCameraOwnedBy(conn.cameraId, conn)
		conn.cameraId = ""
		if removed {
			d.broadcaster.BroadcastCameraList()
		}
	}

	conn.role = RoleViewer
	if d.registry.AddViewer(conn) {
		log.Info().
			Str("connectionId", conn.Id).
			Msg("viewer connected")
	}

	d.broadcaster.SendCameraList(conn)
}

func (d *Dispatcher) arm(conn *Connection, pending PendingPayload) {
	if conn.arm(pending) {
		framesDropped.WithLabelValues("overwritten").Inc()
	}
}

func (d *Dispatcher) handlePayload(conn *Connection, data []byte) {
	pending, ok := conn.take()
	if !ok {
		framesDropped.WithLabelValues("no_pending").Inc()
		return
	}

	kind := pending.Kind.String()
	parts := []Frame{announce(pending.Kind, pending.CameraId), Binary(data)}

	switch pending.Kind {
	case PayloadVideo:
		if !d.registry.SetLastFrame(pending.CameraId, data) {
			framesDropped.WithLabelValues("unknown_camera").Inc()
			return
		}
		d.broadcaster.Relay(kind, parts, d.registry.Viewers()...)

	case PayloadAudioFromCamera:
		d.broadcaster.Relay(kind, parts, d.registry.Viewers()...)

	case PayloadAudioFromPC:
		camera, ok := d.registry.LookupCamera(pending.CameraId)
		if !ok || !camera.Connection.IsOpen() {
			framesDropped.WithLabelValues("unknown_camera").Inc()
			return
		}
		d.broadcaster.Relay(kind, parts, camera.Connection)
	}
	framesRelayed.WithLabelValues(kind).Inc()
}

// Disconnect evicts conn from the registry. Calling it again is a no-op.
func (d *Dispatcher) Disconnect(conn *Connection) {
	if conn.closed {
		return
	}
	conn.closed = true
	conn.pending = nil

	switch conn.role {
	case RoleCamera:
		if d.registry.RemoveCameraOwnedBy(conn.cameraId, conn) {
			log.Info().
				Str("connectionId", conn.Id).
				Str("cameraId", conn.cameraId).
				Msg("camera disconnected")
			d.broadcaster.BroadcastCameraList()
		}
	case RoleViewer:
		if d.registry.RemoveViewer(conn) {
			log.Info().
				Str("connectionId", conn.Id).
				Msg("viewer disconnected")
		}
	}
}
