package relay

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseControl(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Control
	}{
		{
			name:     "camera-init with name",
			input:    `{"type":"camera-init","cameraId":"cam1","name":"Room1"}`,
			expected: Control{Type: ControlCameraInit, RawType: "camera-init", CameraId: "cam1", Name: "Room1"},
		},
		{
			name:     "viewer-init",
			input:    `{"type":"viewer-init"}`,
			expected: Control{Type: ControlViewerInit, RawType: "viewer-init"},
		},
		{
			name:     "video",
			input:    `{"type":"video","cameraId":"cam1"}`,
			expected: Control{Type: ControlVideo, RawType: "video", CameraId: "cam1"},
		},
		{
			name:     "audio-from-camera",
			input:    `{"type":"audio-from-camera","cameraId":"cam2"}`,
			expected: Control{Type: ControlAudioFromCamera, RawType: "audio-from-camera", CameraId: "cam2"},
		},
		{
			name:     "audio-from-pc",
			input:    `{"type":"audio-from-pc","targetCameraId":"cam3"}`,
			expected: Control{Type: ControlAudioFromPC, RawType: "audio-from-pc", TargetCameraId: "cam3"},
		},
		{
			name:     "null fields are absent",
			input:    `{"type":"camera-init","cameraId":"cam1","name":null}`,
			expected: Control{Type: ControlCameraInit, RawType: "camera-init", CameraId: "cam1"},
		},
		{
			name:     "unknown type",
			input:    `{"type":"snapshot","cameraId":"cam1"}`,
			expected: Control{Type: ControlUnknown, RawType: "snapshot", CameraId: "cam1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			control, err := ParseControl([]byte(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, control)
		})
	}
}

func TestParseControlRejects(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected error
	}{
		{"invalid syntax", `{"type":`, ErrMalformedControl},
		{"not an object", `["camera-init"]`, ErrMalformedControl},
		{"plain string", `"hello"`, ErrMalformedControl},
		{"type is not a string", `{"type":3}`, ErrMalformedControl},
		{"camera id is not a string", `{"type":"video","cameraId":7}`, ErrMalformedControl},
		{"name is not a string", `{"type":"camera-init","cameraId":"cam1","name":{}}`, ErrMalformedControl},
		{"missing type", `{"cameraId":"cam1"}`, ErrMissingType},
		{"null type", `{"type":null}`, ErrMissingType},
		{"keys are case sensitive", `{"TYPE":"video","cameraId":"cam1"}`, ErrMissingType},
		{"null", `null`, ErrMissingType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseControl([]byte(tt.input))
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.expected), "got %v", err)
		})
	}
}

func TestEncodeCameraList(t *testing.T) {
	assertText(t, `{"type":"camera-list","cameras":[]}`, encodeCameraList(nil))
	assertText(t,
		`{"type":"camera-list","cameras":[{"id":"cam1","name":"Room1"}]}`,
		encodeCameraList([]CameraInfo{{Id: "cam1", Name: "Room1"}}))
}

func TestAnnounce(t *testing.T) {
	assertText(t, `{"type":"video","cameraId":"cam1"}`, announce(PayloadVideo, "cam1"))
	assertText(t, `{"type":"audio-from-camera","cameraId":"cam1"}`, announce(PayloadAudioFromCamera, "cam1"))
	assertText(t, `{"type":"audio-from-pc"}`, announce(PayloadAudioFromPC, "cam1"))
}

func TestControlTypeString(t *testing.T) {
	assert.Equal(t, "camera-init", ControlCameraInit.String())
	assert.Equal(t, "audio-from-pc", ControlAudioFromPC.String())
	assert.Equal(t, "unknown", ControlUnknown.String())
}
