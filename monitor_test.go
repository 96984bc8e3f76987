package psykit

import "testing"

func TestSelectMonitor(t *testing.T) {
	monitors := []Monitor{
		{Name: "internal"},
		{Name: "external"},
	}

	tests := []struct {
		name     string
		monitors []Monitor
		index    int
		want     string
		ok       bool
	}{
		{"by index", monitors, 1, "external", true},
		{"first", monitors, 0, "internal", true},
		{"out of range falls back", monitors, 5, "internal", true},
		{"negative falls back", monitors, -1, "internal", true},
		{"no monitors", nil, 0, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ok := SelectMonitor(tt.monitors, tt.index)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if ok && m.Name != tt.want {
				t.Errorf("monitor = %q, want %q", m.Name, tt.want)
			}
		})
	}
}

func TestPickFullscreen(t *testing.T) {
	monitors := []Monitor{
		{Name: "internal", Modes: []VideoMode{
			{Width: 1920, Height: 1080, RefreshRateMilliHz: 60000},
		}},
		{Name: "external", Modes: []VideoMode{
			{Width: 1920, Height: 1080, RefreshRateMilliHz: 60000},
			{Width: 2560, Height: 1440, RefreshRateMilliHz: 144000},
		}},
	}

	mon, mode, ok := pickFullscreen(monitors, 1)
	if !ok {
		t.Fatal("pickFullscreen() ok = false")
	}
	if mon.Name != "external" {
		t.Errorf("monitor = %q, want external", mon.Name)
	}
	if mode.Width != 2560 || mode.RefreshRateMilliHz != 144000 {
		t.Errorf("mode = %+v, want the 2560x1440@144 mode", mode)
	}

	if _, _, ok := pickFullscreen(nil, 0); ok {
		t.Error("pickFullscreen(no monitors) ok = true, want false")
	}
	if _, _, ok := pickFullscreen([]Monitor{{Name: "bare"}}, 0); ok {
		t.Error("pickFullscreen(no modes) ok = true, want false")
	}
}

func TestSelectVideoMode(t *testing.T) {
	tests := []struct {
		name  string
		modes []VideoMode
		want  VideoMode
		ok    bool
	}{
		{
			name: "largest resolution wins",
			modes: []VideoMode{
				{Width: 1920, Height: 1080, RefreshRateMilliHz: 240000},
				{Width: 2560, Height: 1440, RefreshRateMilliHz: 60000},
			},
			want: VideoMode{Width: 2560, Height: 1440, RefreshRateMilliHz: 60000},
			ok:   true,
		},
		{
			name: "refresh rate breaks resolution ties",
			modes: []VideoMode{
				{Width: 1920, Height: 1080, RefreshRateMilliHz: 60000},
				{Width: 1920, Height: 1080, RefreshRateMilliHz: 144000},
				{Width: 1920, Height: 1080, RefreshRateMilliHz: 120000},
			},
			want: VideoMode{Width: 1920, Height: 1080, RefreshRateMilliHz: 144000},
			ok:   true,
		},
		{
			name:  "single mode",
			modes: []VideoMode{{Width: 800, Height: 600, RefreshRateMilliHz: 60000}},
			want:  VideoMode{Width: 800, Height: 600, RefreshRateMilliHz: 60000},
			ok:    true,
		},
		{
			name: "no modes",
			ok:   false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ok := SelectVideoMode(tt.modes)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if ok && m != tt.want {
				t.Errorf("mode = %+v, want %+v", m, tt.want)
			}
		})
	}
}
