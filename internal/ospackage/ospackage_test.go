package ospackage

import "testing"

func TestNewNVRA(t *testing.T) {
	n, ok := NewNVRA("docker", "1.10.3", "46.el7", "x86_64")
	if !ok {
		t.Fatal("expected four fields to build a record")
	}
	if n.String() != "docker-1.10.3-46.el7.x86_64" {
		t.Errorf("unexpected String(): %s", n.String())
	}
	if n.VR() != "1.10.3-46.el7" {
		t.Errorf("unexpected VR(): %s", n.VR())
	}

	for _, fields := range [][]string{nil, {"a"}, {"a", "b", "c"}, {"a", "b", "c", "d", "e"}} {
		if _, ok := NewNVRA(fields...); ok {
			t.Errorf("expected %d fields to be rejected", len(fields))
		}
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		name     string
		a, b     NVRA
		expected int
	}{
		{"equal", NVRA{Version: "1.0", Release: "1"}, NVRA{Version: "1.0", Release: "1"}, 0},
		{"newer_version", NVRA{Version: "1.10", Release: "1"}, NVRA{Version: "1.9", Release: "5"}, 1},
		{"older_release", NVRA{Version: "1.0", Release: "2.el7"}, NVRA{Version: "1.0", Release: "10.el7"}, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Compare(tt.b); got != tt.expected {
				t.Errorf("Compare() = %d, want %d", got, tt.expected)
			}
		})
	}
}

func TestAtLeast(t *testing.T) {
	n := NVRA{Name: "docker", Version: "1.10.3", Release: "46.el7", Arch: "x86_64"}

	tests := []struct {
		min      string
		expected bool
	}{
		{"1.10", true},
		{"1.10.3", true},
		{"1.9.1", true},
		{"1.12", false},
		{"1.10.3-46.el7", true},
		{"1.10.3-47", false},
		{"1.10.3-5", true},
	}

	for _, tt := range tests {
		t.Run(tt.min, func(t *testing.T) {
			if got := n.AtLeast(tt.min); got != tt.expected {
				t.Errorf("AtLeast(%q) = %v, want %v", tt.min, got, tt.expected)
			}
		})
	}
}

func TestVercmp(t *testing.T) {
	tests := []struct {
		a, b     string
		expected int
	}{
		{"1.10", "1.9", 1},
		{"1.9", "1.10", -1},
		{"1.0", "1.0", 0},
		{"2.el7", "10.el7", -1},
	}
	for _, tt := range tests {
		if got := Vercmp(tt.a, tt.b); got != tt.expected {
			t.Errorf("Vercmp(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.expected)
		}
	}
}
