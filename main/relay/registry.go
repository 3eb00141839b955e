package relay

import (
	"sort"
	"sync"

	"github.com/olebedev/emitter"
)

type CameraRecord struct {
	Id         string
	Name       string
	Connection *Connection
	// LastFrame is the latest video payload relayed for this camera.
	LastFrame []byte
}

type Status struct {
	Cameras int `json:"cameras"`
	Viewers int `json:"viewers"`
}

// Registry maps camera ids to their records and tracks the viewer set.
// Every operation holds the lock for its whole duration; lifecycle hooks
// fire after the lock is released.
type Registry struct {
	mu      sync.RWMutex
	cameras map[string]*CameraRecord
	viewers map[*Connection]struct{}
	events  *emitter.Emitter
}

func NewRegistry() *Registry {
	e := &emitter.Emitter{}
	e.Use("*", emitter.Void, emitter.Sync)

	return &Registry{
		cameras: make(map[string]*CameraRecord),
		viewers: make(map[*Connection]struct{}),
		events:  e,
	}
}

// UpsertCamera registers conn under id, replacing any record with the same
// id. Entries conn owned under other ids are dropped, a connection is one
// camera at a time.
func (r *Registry) UpsertCamera(id, name string, conn *Connection) {
	if name == "" {
		name = id
	}

	r.mu.Lock()
	stale := make([]string, 0)
	for otherId, record := range r.cameras {
		if otherId != id && record.Connection == conn {
			delete(r.cameras, otherId)
			stale = append(stale, otherId)
		}
	}
	r.cameras[id] = &CameraRecord{
		Id:         id,
		Name:       name,
		Connection: conn,
	}
	r.mu.Unlock()

	for _, otherId := range stale {
		r.events.Emit("camera.disconnected", otherId)
	}
	r.events.Emit("camera.connected", id, name)
}

func (r *Registry) RemoveCamera(id string) bool {
	r.mu.Lock()
	_, ok := r.cameras[id]
	delete(r.cameras, id)
	r.mu.Unlock()

	if ok {
		r.events.Emit("camera.disconnected", id)
	}
	return ok
}

// RemoveCameraOwnedBy removes id only while conn still owns it, so a newer
// registration under the same id survives the old connection closing.
func (r *Registry) RemoveCameraOwnedBy(id string, conn *Connection) bool {
	r.mu.Lock()
	record, ok := r.cameras[id]
	ok = ok && record.Connection == conn
	if ok {
		delete(r.cameras, id)
	}
	r.mu.Unlock()

	if ok {
		r.events.Emit("camera.disconnected", id)
	}
	return ok
}

func (r *Registry) AddViewer(conn *Connection) bool {
	r.mu.Lock()
	_, exists := r.viewers[conn]
	r.viewers[conn] = struct{}{}
	r.mu.Unlock()

	if !exists {
		r.events.Emit("viewer.connected", conn.Id)
	}
	return !exists
}

func (r *Registry) RemoveViewer(conn *Connection) bool {
	r.mu.Lock()
	_, exists := r.viewers[conn]
	delete(r.viewers, conn)
	r.mu.Unlock()

	if exists {
		r.events.Emit("viewer.disconnected", conn.Id)
	}
	return exists
}

// ListCameras returns the camera list sorted by id.
func (r *Registry) ListCameras() []CameraInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]CameraInfo, 0, len(r.cameras))
	for id, record := range r.cameras {
		list = append(list, CameraInfo{Id: id, Name: record.Name})
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].Id < list[j].Id
	})
	return list
}

// LookupCamera returns a copy of the record registered under id.
func (r *Registry) LookupCamera(id string) (CameraRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.cameras[id]
	if !ok {
		return CameraRecord{}, false
	}
	return *record, true
}

func (r *Registry) SetLastFrame(id string, frame []byte) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, ok := r.cameras[id]
	if ok {
		record.LastFrame = frame
	}
	return ok
}

func (r *Registry) Viewers() []*Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()

	viewers := make([]*Connection, 0, len(r.viewers))
	for conn := range r.viewers {
		viewers = append(viewers, conn)
	}
	return viewers
}

func (r *Registry) IsViewer(conn *Connection) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.viewers[conn]
	return ok
}

func (r *Registry) Status() Status {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return Status{Cameras: len(r.cameras), Viewers: len(r.viewers)}
}

func (r *Registry) OnCameraConnected(cb func(id, name string)) {
	r.events.On("camera.connected", func(ev *emitter.Event) {
		cb(ev.Args[0].(string), ev.Args[1].(string))
	})
}

func (r *Registry) OnCameraDisconnected(cb func(id string)) {
	r.events.On("camera.disconnected", func(ev *emitter.Event) {
		cb(ev.Args[0].(string))
	})
}

func (r *Registry) OnViewerConnected(cb func(connectionId string)) {
	r.events.On("viewer.connected", func(ev *emitter.Event) {
		cb(ev.Args[0].(string))
	})
}

func (r *Registry) OnViewerDisconnected(cb func(connectionId string)) {
	r.events.On("viewer.disconnected", func(ev *emitter.Event) {
		cb(ev.Args[0].(string))
	})
}
