package audio

import (
	"fmt"
	"strings"
	"testing"

	"github.com/gordonklaus/portaudio"
)

// fakeDevices stands in for the host's device list.
var fakeDevices = []*portaudio.DeviceInfo{
	{Name: "Built-in Microphone", MaxInputChannels: 2, DefaultSampleRate: 48000},
	{Name: "Built-in Output", MaxOutputChannels: 2, DefaultSampleRate: 48000, HostApi: &portaudio.HostApiInfo{Name: "Core Audio"}},
	{Name: "Interface", MaxInputChannels: 8, MaxOutputChannels: 8, DefaultSampleRate: 96000},
}

func withFakeDevices(t *testing.T, devices []*portaudio.DeviceInfo, err error) {
	t.Helper()
	orig, origDefault := paLibDevicesFunc, paLibDefaultOutputDeviceFunc
	t.Cleanup(func() {
		paLibDevicesFunc = orig
		paLibDefaultOutputDeviceFunc = origDefault
	})
	paLibDevicesFunc = func() ([]*portaudio.DeviceInfo, error) { return devices, err }
	paLibDefaultOutputDeviceFunc = func() (*portaudio.DeviceInfo, error) {
		if len(devices) < 2 {
			return nil, fmt.Errorf("no default output device")
		}
		return devices[1], nil
	}
}

func TestHostDevices(t *testing.T) {
	withFakeDevices(t, fakeDevices, nil)

	devices, err := HostDevices()
	if err != nil {
		t.Fatalf("HostDevices error: %v", err)
	}
	if len(devices) != len(fakeDevices) {
		t.Fatalf("got %d devices, want %d", len(devices), len(fakeDevices))
	}
	for i, d := range devices {
		if d.ID != i {
			t.Errorf("Device ID mismatch: got %d, want %d", d.ID, i)
		}
	}
	if devices[1].HostAPI != "Core Audio" {
		t.Errorf("HostAPI = %q", devices[1].HostAPI)
	}

	kinds := []string{"Input", "Output", "Input/Output"}
	for i, want := range kinds {
		if got := devices[i].Kind(); got != want {
			t.Errorf("device %d Kind() = %q, want %q", i, got, want)
		}
	}
	if (Device{}).Kind() != "Unavailable" {
		t.Error("device without channels should be unavailable")
	}

	outputs, err := OutputDevices()
	if err != nil {
		t.Fatalf("OutputDevices: %v", err)
	}
	if len(outputs) != 2 || outputs[0].ID != 1 || outputs[1].ID != 2 {
		t.Errorf("OutputDevices() = %+v", outputs)
	}
}

func TestHostDevices_paDevicesError(t *testing.T) {
	withFakeDevices(t, nil, fmt.Errorf("mock error"))

	if _, err := HostDevices(); err == nil || !strings.Contains(err.Error(), "mock error") {
		t.Errorf("expected mock error, got %v", err)
	}
	if _, err := OutputDevice(-1); err == nil || !strings.Contains(err.Error(), "mock error") {
		t.Errorf("expected mock error, got %v", err)
	}
}

func TestOutputDevice(t *testing.T) {
	withFakeDevices(t, fakeDevices, nil)

	dev, err := OutputDevice(-1)
	if err != nil || dev.Name != "Built-in Output" {
		t.Errorf("OutputDevice(-1) = %v, %v", dev, err)
	}
	if dev, err := OutputDevice(2); err != nil || dev.Name != "Interface" {
		t.Errorf("OutputDevice(2) = %v, %v", dev, err)
	}

	tests := []struct {
		name   string
		id     int
		substr string
	}{
		{"Negative ID", -2, "invalid device ID"},
		{"Too high ID", len(fakeDevices) + 10, "invalid device ID"},
		{"Input-only device", 0, "does not support output"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := OutputDevice(tt.id)
			if err == nil {
				t.Fatalf("Expected error for ID %d", tt.id)
			}
			if !strings.Contains(err.Error(), tt.substr) {
				t.Errorf("Error = %q, want substring %q", err.Error(), tt.substr)
			}
		})
	}
}

func TestOutputDevice_noDefault(t *testing.T) {
	withFakeDevices(t, fakeDevices[:1], nil)

	if _, err := OutputDevice(-1); err == nil || !strings.Contains(err.Error(), "no default output") {
		t.Errorf("expected default device error, got %v", err)
	}
}

func TestErrorInitialize(t *testing.T) {
	orig := paLibInitialize
	defer func() { paLibInitialize = orig }()

	paLibInitialize = func() error { return nil }
	if err := Initialize(); err != nil {
		t.Errorf("expected nil, got %v", err)
	}

	paLibInitialize = func() error { return fmt.Errorf("mock init error") }
	if err := Initialize(); err == nil || !strings.Contains(err.Error(), "mock init error") {
		t.Errorf("expected mock init error, got %v", err)
	}
}

func TestErrorTerminate(t *testing.T) {
	orig := paLibTerminate
	defer func() { paLibTerminate = orig }()

	paLibTerminate = func() error { return nil }
	if err := Terminate(); err != nil {
		t.Errorf("expected nil, got %v", err)
	}

	paLibTerminate = func() error { return fmt.Errorf("mock term error") }
	if err := Terminate(); err == nil || !strings.Contains(err.Error(), "mock term error") {
		t.Errorf("expected mock term error, got %v", err)
	}
}

func TestNilDevices(t *testing.T) {
	withFakeDevices(t, nil, nil)

	devices, err := paDevices()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if devices == nil || len(devices) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", devices)
	}
}

func TestGetDevices(t *testing.T) {
	withFakeDevices(t, fakeDevices, nil)
	origInit, origTerm := paLibInitialize, paLibTerminate
	defer func() { paLibInitialize, paLibTerminate = origInit, origTerm }()

	var terminated bool
	paLibInitialize = func() error { return nil }
	paLibTerminate = func() error { terminated = true; return nil }

	devices, err := GetDevices()
	if err != nil || len(devices) != len(fakeDevices) {
		t.Errorf("GetDevices() = %d devices, %v", len(devices), err)
	}
	if !terminated {
		t.Error("GetDevices should terminate PortAudio")
	}
}
