package relay

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/OguroGen/ogu-watcher/main/utils"
)

var (
	ErrMalformedControl = errors.New("malformed control message")
	ErrMissingType      = errors.New("control message without type")
)

type FrameKind int

const (
	TextFrame FrameKind = iota
	BinaryFrame
)

// Frame is one transport message. Binary frames carry no header, their
// meaning comes from the control message sent right before them.
type Frame struct {
	Kind FrameKind
	Data []byte
}

func Text(data []byte) Frame {
	return Frame{Kind: TextFrame, Data: data}
}

func Binary(data []byte) Frame {
	return Frame{Kind: BinaryFrame, Data: data}
}

type ControlType int

const (
	ControlUnknown ControlType = iota
	ControlCameraInit
	ControlViewerInit
	ControlVideo
	ControlAudioFromCamera
	ControlAudioFromPC
)

var controlTypes = map[string]ControlType{
	"camera-init":       ControlCameraInit,
	"viewer-init":       ControlViewerInit,
	"video":             ControlVideo,
	"audio-from-camera": ControlAudioFromCamera,
	"audio-from-pc":     ControlAudioFromPC,
}

func (t ControlType) String() string {
	for name, known := range controlTypes {
		if known == t {
			return name
		}
	}
	return "unknown"
}

// Control is a decoded inbound text message.
type Control struct {
	Type           ControlType
	RawType        string
	CameraId       string
	Name           string
	TargetCameraId string
}

// ParseControl decodes a text frame. Keys are matched exactly and every field
// that is present must be a string or null. Unknown types are not an error,
// they come back as ControlUnknown so the caller can ignore them.
func ParseControl(data []byte) (Control, error) {
	parsed := utils.ParseJson[map[string]json.RawMessage](data)
	if parsed.Error != nil {
		return Control{}, fmt.Errorf("%w: %v", ErrMalformedControl, parsed.Error)
	}
	fields := parsed.Value

	var control Control
	if err := stringField(fields, "type", &control.RawType); err != nil {
		return Control{}, err
	}
	if control.RawType == "" {
		if raw, ok := fields["type"]; !ok || string(raw) == "null" {
			return Control{}, ErrMissingType
		}
	}
	if err := stringField(fields, "cameraId", &control.CameraId); err != nil {
		return Control{}, err
	}
	if err := stringField(fields, "name", &control.Name); err != nil {
		return Control{}, err
	}
	if err := stringField(fields, "targetCameraId", &control.TargetCameraId); err != nil {
		return Control{}, err
	}

	control.Type = controlTypes[control.RawType]
	return control, nil
}

// stringField decodes fields[key] into dst. An absent or null key leaves dst empty.
func stringField(fields map[string]json.RawMessage, key string, dst *string) error {
	raw, ok := fields[key]
	if !ok {
		return nil
	}
	var value *string
	if err := json.Unmarshal(raw, &value); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMalformedControl, key, err)
	}
	if value != nil {
		*dst = *value
	}
	return nil
}

type CameraInfo struct {
	Id   string `json:"id"`
	Name string `json:"name"`
}

type cameraListMessage struct {
	Type    string       `json:"type"`
	Cameras []CameraInfo `json:"cameras"`
}

type announcement struct {
	Type     string `json:"type"`
	CameraId string `json:"cameraId,omitempty"`
}

func encodeCameraList(cameras []CameraInfo) Frame {
	if cameras == nil {
		cameras = make([]CameraInfo, 0)
	}
	data, _ := json.Marshal(cameraListMessage{Type: "camera-list", Cameras: cameras})
	return Text(data)
}

// announce builds the text half of an announcement + payload pair.
func announce(kind PayloadKind, cameraId string) Frame {
	msg := announcement{Type: kind.String()}
	if kind != PayloadAudioFromPC {
		msg.CameraId = cameraId
	}
	data, _ := json.Marshal(msg)
	return Text(data)
}
