package types

import (
	"encoding/json"
	"testing"
)

func TestInputOutputsKeepOrder(t *testing.T) {
	ios := InputOutputs{
		{ID: "Webcam", Label: "Webcam"},
		{ID: "AJA", Label: "AJA"},
		{ID: "File", Label: "File (Experimental)"},
	}

	data, err := json.Marshal(ios)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"Webcam":"Webcam","AJA":"AJA","File":"File (Experimental)"}`
	if string(data) != want {
		t.Errorf("marshal = %s, want %s", data, want)
	}

	var back InputOutputs
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(back) != len(ios) {
		t.Fatalf("got %d entries, want %d", len(back), len(ios))
	}
	for i := range ios {
		if back[i] != ios[i] {
			t.Errorf("entry %d = %+v, want %+v", i, back[i], ios[i])
		}
	}
}

func TestInputOutputsRejectsArray(t *testing.T) {
	var ios InputOutputs
	if err := json.Unmarshal([]byte(`["AJA"]`), &ios); err == nil {
		t.Fatal("expected error for array payload")
	}
}

func TestStateUpdatePresence(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		wantCS  *string
		wantCam []string
		camsSet bool
	}{
		{
			name:    "cameras only",
			payload: `{"cameras":["A"]}`,
			wantCam: []string{"A"},
			camsSet: true,
		},
		{
			name:    "empty cameras clears",
			payload: `{"cameras":[]}`,
			wantCam: []string{},
			camsSet: true,
		},
		{
			name:    "color space only",
			payload: `{"current_color_space":"709"}`,
			wantCS:  String("709"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var u StateUpdate
			if err := json.Unmarshal([]byte(tt.payload), &u); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if (u.Cameras != nil) != tt.camsSet {
				t.Errorf("cameras present = %v, want %v", u.Cameras != nil, tt.camsSet)
			}
			if len(u.Cameras) != len(tt.wantCam) {
				t.Errorf("cameras = %v, want %v", u.Cameras, tt.wantCam)
			}
			switch {
			case tt.wantCS == nil && u.CurrentColorSpace != nil:
				t.Errorf("color space = %q, want absent", *u.CurrentColorSpace)
			case tt.wantCS != nil && (u.CurrentColorSpace == nil || *u.CurrentColorSpace != *tt.wantCS):
				t.Errorf("color space = %v, want %q", u.CurrentColorSpace, *tt.wantCS)
			}
			if u.CurrentInputOutput != nil {
				t.Errorf("input/output = %q, want absent", *u.CurrentInputOutput)
			}

			data, err := json.Marshal(u)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			if string(data) != tt.payload {
				t.Errorf("re-encoded = %s, want %s", data, tt.payload)
			}
		})
	}
}

func TestColorSpaceLabel(t *testing.T) {
	e := ColorSpaceEntry{Family: "sRGB", Name: "709"}
	if got := e.Label(); got != "sRGB/709" {
		t.Errorf("Label() = %q, want %q", got, "sRGB/709")
	}
}

func TestStateUpdateClone(t *testing.T) {
	u := StateUpdate{CurrentColorSpace: String("709"), Cameras: []string{"Cam A"}}
	c := u.Clone()

	*u.CurrentColorSpace = "ACEScg"
	u.Cameras[0] = "mutated"

	if *c.CurrentColorSpace != "709" || c.Cameras[0] != "Cam A" {
		t.Errorf("clone shares memory: %+v", c)
	}
	if c.CurrentInputOutput != nil {
		t.Error("absent field became present")
	}
	if e := (StateUpdate{Cameras: []string{}}).Clone(); e.Cameras == nil {
		t.Error("empty camera list became absent")
	}
}
