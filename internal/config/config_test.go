package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/derrell/LearnCS-sub002/internal/rtabi"
)

func TestDefault(t *testing.T) {
	r := Default()
	if r.Memory.Size != rtabi.MemorySize || r.Memory.Data != rtabi.DataSize || r.Memory.Heap != rtabi.HeapSize {
		t.Errorf("memory = %+v", r.Memory)
	}
	if err := r.Validate(); err != nil {
		t.Errorf("default does not validate: %v", err)
	}
}

func TestParse(t *testing.T) {
	r, err := Parse([]byte(`
memory:
  heap: 8192
breakpoints: [3, 7]
max_steps: 5000
input: in.txt
draw:
  svg: out.svg
trace: true
`))
	if err != nil {
		t.Fatal(err)
	}
	if r.Memory.Heap != 8192 || r.Memory.Size != rtabi.MemorySize {
		t.Errorf("memory = %+v", r.Memory)
	}
	if len(r.Breakpoints) != 2 || r.Breakpoints[1] != 7 {
		t.Errorf("breakpoints = %v", r.Breakpoints)
	}
	if r.MaxSteps != 5000 || r.Input != "in.txt" || r.Draw.SVG != "out.svg" || r.Draw.PNG != "" || !r.Trace {
		t.Errorf("run = %+v", r)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"syntax", "memory: [", "yaml"},
		{"regions overflow", "memory: {size: 1024, data: 512, heap: 512}", "memory:"},
		{"breakpoint", "breakpoints: [2, 0]", "breakpoints[1]"},
		{"steps", "max_steps: -1", "max_steps"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src))
			if err == nil {
				t.Fatal("no error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	if err := os.WriteFile(path, []byte("max_steps: -2\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	_, err := Load(path)
	if err == nil || !strings.HasPrefix(err.Error(), path+": ") {
		t.Errorf("Load error = %v, want it prefixed with the path", err)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); !os.IsNotExist(err) {
		t.Errorf("Load(missing) = %v", err)
	}
}
