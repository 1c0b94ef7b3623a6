// SPDX-License-Identifier: MIT
package audio

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/gordonklaus/portaudio"
)

var coreAudio = &portaudio.HostApiInfo{Name: "Core Audio"}

// fakeDevices is a host with one output-only device between two inputs.
var fakeDevices = []*portaudio.DeviceInfo{
	{
		Name:                    "Built-in Microphone",
		MaxInputChannels:        1,
		DefaultSampleRate:       48000,
		DefaultLowInputLatency:  2500 * time.Microsecond,
		DefaultHighInputLatency: 10 * time.Millisecond,
		HostApi:                 coreAudio,
	},
	{
		Name:              "Built-in Speakers",
		MaxOutputChannels: 2,
		DefaultSampleRate: 44100,
		HostApi:           coreAudio,
	},
	{
		Name:              "USB Interface",
		MaxInputChannels:  2,
		MaxOutputChannels: 2,
		DefaultSampleRate: 96000,
	},
}

// stubHost replaces the PortAudio device queries for the duration of t.
func stubHost(t *testing.T, devices []*portaudio.DeviceInfo, err error) {
	t.Helper()
	origDevices, origDefault := paLibDevicesFunc, paLibDefaultInputDeviceFunc
	t.Cleanup(func() {
		paLibDevicesFunc, paLibDefaultInputDeviceFunc = origDevices, origDefault
	})

	paLibDevicesFunc = func() ([]*portaudio.DeviceInfo, error) { return devices, err }
	paLibDefaultInputDeviceFunc = func() (*portaudio.DeviceInfo, error) {
		if err != nil {
			return nil, err
		}
		for _, d := range devices {
			if d.MaxInputChannels > 0 {
				return d, nil
			}
		}
		return nil, errors.New("no default input device")
	}
}

func TestHostDevices(t *testing.T) {
	stubHost(t, fakeDevices, nil)

	devices, err := HostDevices()
	if err != nil {
		t.Fatalf("HostDevices error: %v", err)
	}
	if len(devices) != len(fakeDevices) {
		t.Fatalf("got %d devices, want %d", len(devices), len(fakeDevices))
	}

	mic := devices[0]
	if mic.ID != 0 || mic.Name != "Built-in Microphone" || mic.HostAPI != "Core Audio" {
		t.Errorf("unexpected microphone: %+v", mic)
	}
	if mic.LowInputLatencyMs != 2.5 || mic.HiInputLatencyMs != 10 {
		t.Errorf("latency = %v/%v ms, want 2.5/10", mic.LowInputLatencyMs, mic.HiInputLatencyMs)
	}
	if devices[2].HostAPI != "" {
		t.Errorf("device without host API reported %q", devices[2].HostAPI)
	}
	for i, d := range devices {
		if d.ID != i {
			t.Errorf("device %d has ID %d", i, d.ID)
		}
	}
}

func TestHostDevicesError(t *testing.T) {
	stubHost(t, nil, errors.New("PortAudio not initialized"))

	if _, err := HostDevices(); err == nil || !strings.Contains(err.Error(), "not initialized") {
		t.Errorf("expected host error, got %v", err)
	}
}

func TestHostDevicesEmpty(t *testing.T) {
	stubHost(t, nil, nil)

	devices, err := HostDevices()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if devices == nil || len(devices) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", devices)
	}
}

func TestInputDevice(t *testing.T) {
	stubHost(t, fakeDevices, nil)

	tests := []struct {
		name     string
		id       int
		wantName string
		substr   string
	}{
		{"default", -1, "Built-in Microphone", ""},
		{"explicit input", 2, "USB Interface", ""},
		{"output only", 1, "", "does not support input"},
		{"below default", -2, "", "invalid device ID"},
		{"past end", len(fakeDevices), "", "invalid device ID"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev, err := InputDevice(tt.id)
			if tt.substr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.substr) {
					t.Errorf("InputDevice(%d) error = %v, want %q", tt.id, err, tt.substr)
				}
				return
			}
			if err != nil {
				t.Fatalf("InputDevice(%d) error: %v", tt.id, err)
			}
			if dev.Name != tt.wantName {
				t.Errorf("InputDevice(%d) = %q, want %q", tt.id, dev.Name, tt.wantName)
			}
		})
	}
}

func TestInputDeviceHostError(t *testing.T) {
	stubHost(t, nil, errors.New("mock default input error"))

	if _, err := InputDevice(-1); err == nil || !strings.Contains(err.Error(), "mock default input error") {
		t.Errorf("expected mock error, got %v", err)
	}
}

func TestInitializeTerminate(t *testing.T) {
	origInit, origTerm := paLibInitialize, paLibTerminate
	t.Cleanup(func() { paLibInitialize, paLibTerminate = origInit, origTerm })

	var calls []string
	paLibInitialize = func() error { calls = append(calls, "init"); return nil }
	paLibTerminate = func() error { calls = append(calls, "term"); return nil }
	if err := Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if err := Terminate(); err != nil {
		t.Fatalf("Terminate: %v", err)
	}
	if strings.Join(calls, ",") != "init,term" {
		t.Errorf("calls = %v", calls)
	}

	paLibInitialize = func() error { return errors.New("no host") }
	if err := Initialize(); err == nil || !strings.Contains(err.Error(), "failed to initialize PortAudio: no host") {
		t.Errorf("Initialize error = %v", err)
	}
	paLibTerminate = func() error { return errors.New("busy") }
	if err := Terminate(); err == nil || !strings.Contains(err.Error(), "failed to terminate PortAudio: busy") {
		t.Errorf("Terminate error = %v", err)
	}
}

func TestDeviceKind(t *testing.T) {
	tests := []struct {
		in, out int
		want    string
		capture bool
	}{
		{2, 2, "Input/Output", true},
		{1, 0, "Input", true},
		{0, 2, "Output", false},
		{0, 0, "Unknown", false},
	}
	for _, tt := range tests {
		d := Device{MaxInputChannels: tt.in, MaxOutputChannels: tt.out}
		if got := d.Kind(); got != tt.want {
			t.Errorf("Kind(%d in, %d out) = %q, want %q", tt.in, tt.out, got, tt.want)
		}
		if d.CanCapture() != tt.capture {
			t.Errorf("CanCapture(%d in) = %v, want %v", tt.in, d.CanCapture(), tt.capture)
		}
	}
}

func TestListDevices(t *testing.T) {
	stubHost(t, fakeDevices, nil)
	devices, err := HostDevices()
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	ListDevices(&buf, devices)

	out := buf.String()
	for _, want := range []string{
		"[0] Built-in Microphone (Input)",
		"Default sample rate: 48000 Hz",
		"Latency: Low=2.50ms, High=10.00ms",
		"[1] Built-in Speakers (Output)",
		"[2] USB Interface (Input/Output)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("listing missing %q:\n%s", want, out)
		}
	}
}
