package ui

import (
	"context"
	"reflect"
	"testing"

	"fyne.io/fyne/v2/test"
	"fyne.io/fyne/v2/widget"

	"pixotope-settings-go/internal/types"
)

func TestSelectViewMapsValues(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()

	s := newSelectView("pick")
	s.SetOptions([]Option{{Value: "709", Label: "sRGB/709"}, {Value: "ACEScg", Label: "ACES/ACEScg"}})

	if got := s.widget.Options; !reflect.DeepEqual(got, []string{"sRGB/709", "ACES/ACEScg"}) {
		t.Errorf("widget options = %v", got)
	}

	s.SetSelected("ACEScg")
	if s.widget.Selected != "ACES/ACEScg" {
		t.Errorf("widget shows %q, want ACES/ACEScg", s.widget.Selected)
	}
	if s.Selected() != "ACEScg" {
		t.Errorf("Selected() = %q, want ACEScg", s.Selected())
	}

	s.SetSelected("P3")
	if s.widget.Selected != "" || s.Selected() != "" {
		t.Errorf("unknown value left %q selected", s.widget.Selected)
	}
}

func TestSelectViewOnlyReportsUserChanges(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()

	var got []string
	s := newSelectView("pick")
	s.OnChanged(func(v string) { got = append(got, v) })
	s.SetOptions([]Option{{Value: "cam1", Label: "Camera One"}, {Value: "cam2", Label: "Camera Two"}})

	s.SetSelected("cam2")
	if len(got) != 0 {
		t.Fatalf("programmatic select reported %v", got)
	}

	// A user choice goes through the widget itself.
	s.widget.SetSelected("Camera One")
	if !reflect.DeepEqual(got, []string{"cam1"}) {
		t.Errorf("user selection reported %v, want [cam1]", got)
	}
}

func TestSelectViewReportsUserChangeDuringWrite(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()

	var got []string
	s := newSelectView("pick")
	s.OnChanged(func(v string) { got = append(got, v) })
	s.SetOptions([]Option{{Value: "cam1", Label: "Camera One"}, {Value: "cam2", Label: "Camera Two"}})

	// A tap on Camera One arrives while cam2 is being written.
	s.write("Camera Two", func() {
		s.changed("Camera One")
		s.widget.SetSelectedIndex(1)
	})

	if !reflect.DeepEqual(got, []string{"cam1"}) {
		t.Errorf("reported %v, want [cam1]", got)
	}
}

func TestSelectViewDuplicateLabels(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()

	var got []string
	s := newSelectView("pick")
	s.OnChanged(func(v string) { got = append(got, v) })
	s.SetOptions([]Option{
		{Value: "NDI", Label: "Network"},
		{Value: "SRT", Label: "Network"},
		{Value: "File", Label: ""},
	})

	want := []string{"Network (NDI)", "Network (SRT)", "File"}
	if !reflect.DeepEqual(s.widget.Options, want) {
		t.Fatalf("widget options = %v, want %v", s.widget.Options, want)
	}

	s.SetSelected("SRT")
	if s.Selected() != "SRT" {
		t.Errorf("Selected() = %q, want SRT", s.Selected())
	}

	s.widget.SetSelected("Network (NDI)")
	s.widget.SetSelected("File")
	if !reflect.DeepEqual(got, []string{"NDI", "File"}) {
		t.Errorf("reported %v, want [NDI File]", got)
	}
}

func TestListViewReplacesItems(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()

	l := newListView()
	l.SetItems([]string{"Cam A", "Cam B"})
	if len(l.box.Objects) != 2 {
		t.Fatalf("box has %d objects, want 2", len(l.box.Objects))
	}
	if lbl, ok := l.box.Objects[1].(*widget.Label); !ok || lbl.Text != "Cam B" {
		t.Errorf("second row = %#v, want label Cam B", l.box.Objects[1])
	}

	l.SetItems([]string{})
	if len(l.box.Objects) != 0 || len(l.Items()) != 0 {
		t.Errorf("list not cleared: %v", l.Items())
	}
}

func TestViewWithController(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()

	w := test.NewWindow(nil)
	defer w.Close()

	view := NewView(w)
	client := &fakeClient{state: scenarioState()}
	events := &fakeEvents{}
	ctrl := NewController(client, events, view)

	if err := ctrl.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if w.Content() != view.Content() {
		t.Error("view not mounted in window")
	}
	if view.colorProfile.widget.Selected != "sRGB/709" {
		t.Errorf("color profile shows %q, want sRGB/709", view.colorProfile.widget.Selected)
	}
	if view.inputOutput.widget.Selected != "Camera One" {
		t.Errorf("input/output shows %q, want Camera One", view.inputOutput.widget.Selected)
	}
	if !reflect.DeepEqual(view.cameras.Items(), []string{"Cam A"}) {
		t.Errorf("cameras = %v, want [Cam A]", view.cameras.Items())
	}

	events.push(types.StateUpdate{Cameras: []string{}})
	ctrl.Close()

	if len(view.cameras.Items()) != 0 {
		t.Errorf("cameras = %v, want empty", view.cameras.Items())
	}
	if view.colorProfile.Selected() != "709" || view.inputOutput.Selected() != "cam1" {
		t.Error("selectors changed by a cameras-only update")
	}
	if len(client.spaces) != 0 || len(client.ios) != 0 {
		t.Errorf("initial render echoed to backend: %v %v", client.spaces, client.ios)
	}
}
