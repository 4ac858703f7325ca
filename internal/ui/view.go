package ui

import (
	"fmt"
	"slices"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// =============================================================================
// Select adapter
// =============================================================================
// widget.Select only knows labels and calls OnChanged for programmatic
// changes too. selectView keeps one unique label per option, maps indices
// back to values, and swallows only the callback of its own pending write.
// =============================================================================

type selectView struct {
	widget *widget.Select

	mu      sync.Mutex
	options []Option
	labels  []string
	handler func(string)

	writing    bool
	writeLabel string
}

func newSelectView(placeholder string) *selectView {
	s := &selectView{}
	s.widget = widget.NewSelect(nil, s.changed)
	s.widget.PlaceHolder = placeholder
	return s
}

// changed is the widget's OnChanged hook.
func (s *selectView) changed(label string) {
	s.mu.Lock()
	if s.writing && label == s.writeLabel {
		s.mu.Unlock()
		return
	}
	handler := s.handler
	idx := slices.Index(s.labels, label)
	var value string
	if idx >= 0 {
		value = s.options[idx].Value
	}
	s.mu.Unlock()

	if idx >= 0 && handler != nil {
		handler(value)
	}
}

// write runs fn, ignoring the OnChanged callback fn triggers for label.
func (s *selectView) write(label string, fn func()) {
	s.mu.Lock()
	s.writing, s.writeLabel = true, label
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.writing, s.writeLabel = false, ""
		s.mu.Unlock()
	}()
	fn()
}

// displayLabels makes labels unique: an empty label shows the value, and a
// repeated label gets the value appended.
func displayLabels(options []Option) []string {
	count := make(map[string]int, len(options))
	for _, o := range options {
		count[o.Label]++
	}

	labels := make([]string, len(options))
	seen := make(map[string]bool, len(options))
	for i, o := range options {
		label := o.Label
		switch {
		case label == "":
			label = o.Value
		case count[label] > 1:
			label = fmt.Sprintf("%s (%s)", o.Label, o.Value)
		}
		if seen[label] {
			label = fmt.Sprintf("%s #%d", label, i+1)
		}
		seen[label] = true
		labels[i] = label
	}
	return labels
}

func (s *selectView) SetOptions(options []Option) {
	labels := displayLabels(options)

	s.mu.Lock()
	s.options = append([]Option(nil), options...)
	s.labels = labels
	s.mu.Unlock()

	s.write("", func() {
		s.widget.Options = append([]string(nil), labels...)
		s.widget.ClearSelected()
	})
}

func (s *selectView) Selected() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.widget.SelectedIndex()
	if idx < 0 || idx >= len(s.options) {
		return ""
	}
	return s.options[idx].Value
}

func (s *selectView) SetSelected(value string) {
	s.mu.Lock()
	idx := slices.IndexFunc(s.options, func(o Option) bool { return o.Value == value })
	label := ""
	if idx >= 0 {
		label = s.labels[idx]
	}
	s.mu.Unlock()

	s.write(label, func() {
		if idx < 0 {
			s.widget.ClearSelected()
			return
		}
		s.widget.SetSelectedIndex(idx)
	})
}

func (s *selectView) OnChanged(handler func(value string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handler = handler
}

// =============================================================================
// Camera list
// =============================================================================

type listView struct {
	box *fyne.Container

	mu    sync.Mutex
	items []string
}

func newListView() *listView {
	return &listView{box: container.NewVBox()}
}

func (l *listView) SetItems(items []string) {
	objects := make([]fyne.CanvasObject, len(items))
	for i, item := range items {
		objects[i] = widget.NewLabel(item)
	}

	l.mu.Lock()
	l.items = append([]string(nil), items...)
	l.mu.Unlock()

	l.box.Objects = objects
	l.box.Refresh()
}

// Items returns the labels currently shown.
func (l *listView) Items() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.items...)
}

// =============================================================================
// View
// =============================================================================

// View is the Fyne Renderer: a form with a color profile row, an
// input/output row and a camera row.
type View struct {
	window fyne.Window

	colorProfile *selectView
	inputOutput  *selectView
	cameras      *listView

	content fyne.CanvasObject
}

// NewView builds the three mount points. Mount puts them into window;
// a nil window is allowed for headless use.
func NewView(window fyne.Window) *View {
	v := &View{
		window:       window,
		colorProfile: newSelectView("Select color profile"),
		inputOutput:  newSelectView("Select input/output"),
		cameras:      newListView(),
	}
	v.content = widget.NewForm(
		widget.NewFormItem("Color profile", v.colorProfile.widget),
		widget.NewFormItem("Input / Output", v.inputOutput.widget),
		widget.NewFormItem("Cameras", v.cameras.box),
	)
	return v
}

func (v *View) ColorProfile() Selector { return v.colorProfile }
func (v *View) InputOutput() Selector  { return v.inputOutput }
func (v *View) Cameras() List          { return v.cameras }

// Content returns the root object of the panel.
func (v *View) Content() fyne.CanvasObject { return v.content }

// Mount shows the panel in the window.
func (v *View) Mount() {
	if v.window != nil {
		v.window.SetContent(v.content)
	}
}
