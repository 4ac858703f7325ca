package colorspace

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"pixotope-settings-go/internal/cache"
	"pixotope-settings-go/internal/types"
)

const acesConfig = `ocio_profile_version: 1

search_path: luts
strictparsing: true
luma: [0.2126, 0.7152, 0.0722]

roles:
  color_picking: Output - Rec.709
  default: ACES - ACES2065-1

displays:
  ACES:
    - !<View> {name: sRGB, colorspace: sRGB}

colorspaces:
  - !<ColorSpace>
    name: ACES - ACES2065-1
    family: ACES
    equalitygroup: ""
    bitdepth: 32f
    description: |
      The Academy Color Encoding System reference color space
    isdata: false
    allocation: lg2

  - !<ColorSpace>
    name: ACES - ACEScg
    family: ACES
    to_reference: !<MatrixTransform> {matrix: [0.695452, 0.140679, 0.163869, 0, 0.0447946, 0.859671, 0.0955343, 0, -0.00552588, 0.00402521, 1.0015, 0, 0, 0, 0, 1]}

  - !<ColorSpace>
    name: Output - Rec.709
    family: Output
`

func TestParseYAML(t *testing.T) {
	got, err := Parse(strings.NewReader(acesConfig))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := []types.ColorSpaceEntry{
		{Family: "ACES", Name: "ACES - ACES2065-1"},
		{Family: "ACES", Name: "ACES - ACEScg"},
		{Family: "Output", Name: "Output - Rec.709"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v\nwant %+v", got, want)
	}
}

func TestParseFallsBackToScanner(t *testing.T) {
	// A tab-indented line makes the file invalid YAML.
	broken := "colorspaces:\n  - !<ColorSpace>\n    name: Linear\n\tfamily: Utility\n  - !<ColorSpace>\n    name: sRGB\n    family: Utility\n"

	got, err := Parse(strings.NewReader(broken))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := []types.ColorSpaceEntry{
		{Family: "Utility", Name: "Linear"},
		{Family: "Utility", Name: "sRGB"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestParseEdgeCases(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []types.ColorSpaceEntry
	}{
		{
			name:  "empty",
			input: "",
			want:  nil,
		},
		{
			name:  "no colorspaces",
			input: "ocio_profile_version: 1\nroles:\n  default: raw\n",
			want:  nil,
		},
		{
			name: "duplicate names keep first",
			input: `colorspaces:
  - !<ColorSpace>
    name: raw
    family: Utility
  - !<ColorSpace>
    name: raw
    family: Other
`,
			want: []types.ColorSpaceEntry{{Family: "Utility", Name: "raw"}},
		},
		{
			name: "unnamed entry dropped",
			input: `colorspaces:
  - !<ColorSpace>
    family: Utility
  - !<ColorSpace>
    name: raw
`,
			want: []types.ColorSpaceEntry{{Name: "raw"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(strings.NewReader(tt.input))
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d entries %+v, want %d", len(got), got, len(tt.want))
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("entry %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

type countingStore struct {
	*cache.Cache
	puts int
}

func (s *countingStore) Put(key string, v any) error {
	s.puts++
	return s.Cache.Put(key, v)
}

func TestCatalogCachesUntilFileChanges(t *testing.T) {
	c, err := cache.New(cache.Options{InMemory: true})
	if err != nil {
		t.Fatalf("cache.New: %v", err)
	}
	defer c.Close()
	store := &countingStore{Cache: c}

	path := filepath.Join(t.TempDir(), "config.ocio")
	if err := os.WriteFile(path, []byte(acesConfig), 0o644); err != nil {
		t.Fatal(err)
	}

	cat := NewCatalog(path, store)
	first, err := cat.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	second, err := cat.Load()
	if err != nil {
		t.Fatalf("second Load: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("cached load differs: %+v vs %+v", first, second)
	}
	if store.puts != 1 {
		t.Errorf("puts = %d after two loads, want 1", store.puts)
	}

	updated := acesConfig + "  - !<ColorSpace>\n    name: Utility - Raw\n    family: Utility\n"
	if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
		t.Fatal(err)
	}
	later := time.Now().Add(time.Minute)
	if err := os.Chtimes(path, later, later); err != nil {
		t.Fatal(err)
	}

	third, err := cat.Load()
	if err != nil {
		t.Fatalf("Load after change: %v", err)
	}
	if len(third) != len(first)+1 {
		t.Errorf("got %d entries after change, want %d", len(third), len(first)+1)
	}
	if store.puts != 2 {
		t.Errorf("puts = %d, want 2", store.puts)
	}
}

func TestCatalogMissingFile(t *testing.T) {
	cat := NewCatalog(filepath.Join(t.TempDir(), "nope.ocio"), nil)
	if _, err := cat.Load(); err == nil {
		t.Error("expected error for missing file")
	}
}
