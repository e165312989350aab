// SPDX-License-Identifier: MIT
package audio

import (
	"fmt"
	"io"
	"time"

	"github.com/gordonklaus/portaudio"
)

// DefaultDeviceID selects the host's default input device.
const DefaultDeviceID = -1

// PortAudio entry points, swapped out in tests.
var (
	paLibInitialize             = portaudio.Initialize
	paLibTerminate              = portaudio.Terminate
	paLibDevicesFunc            = portaudio.Devices
	paLibDefaultInputDeviceFunc = portaudio.DefaultInputDevice
	paDevicesFunc               = paDevices
)

// Device describes one host audio device.
type Device struct {
	ID                int
	Name              string
	HostAPI           string
	MaxInputChannels  int
	MaxOutputChannels int
	DefaultSampleRate float64
	LowInputLatency   time.Duration
	HighInputLatency  time.Duration
}

// IsInput reports whether the device can capture audio.
func (d Device) IsInput() bool { return d.MaxInputChannels > 0 }

// Kind returns "Input", "Output" or "Input/Output".
func (d Device) Kind() string {
	switch {
	case d.MaxInputChannels > 0 && d.MaxOutputChannels > 0:
		return "Input/Output"
	case d.MaxInputChannels > 0:
		return "Input"
	case d.MaxOutputChannels > 0:
		return "Output"
	default:
		return "Unknown"
	}
}

// Initialize sets up the PortAudio subsystem.
// This must be called before any audio operations and paired with a Terminate() call.
func Initialize() error {
	if err := paLibInitialize(); err != nil {
		return fmt.Errorf("failed to initialize PortAudio: %w", err)
	}
	return nil
}

// Terminate cleanly shuts down the PortAudio subsystem.
func Terminate() error {
	if err := paLibTerminate(); err != nil {
		return fmt.Errorf("failed to terminate PortAudio: %w", err)
	}
	return nil
}

// HostDevices returns every device PortAudio reports, indexed by ID.
func HostDevices() ([]Device, error) {
	infos, err := paDevicesFunc()
	if err != nil {
		return nil, err
	}

	devices := make([]Device, len(infos))
	for i, info := range infos {
		d := Device{
			ID:                i,
			Name:              info.Name,
			MaxInputChannels:  info.MaxInputChannels,
			MaxOutputChannels: info.MaxOutputChannels,
			DefaultSampleRate: info.DefaultSampleRate,
			LowInputLatency:   info.DefaultLowInputLatency,
			HighInputLatency:  info.DefaultHighInputLatency,
		}
		if info.HostApi != nil {
			d.HostAPI = info.HostApi.Name
		}
		devices[i] = d
	}
	return devices, nil
}

// InputDevice retrieves the audio input device for the given device ID.
// DefaultDeviceID returns the system default input device. Devices without
// input channels are rejected.
func InputDevice(deviceID int) (*portaudio.DeviceInfo, error) {
	devices, err := paDevicesFunc()
	if err != nil {
		return nil, err
	}

	if deviceID == DefaultDeviceID {
		return paLibDefaultInputDeviceFunc()
	}

	if deviceID < 0 || deviceID >= len(devices) {
		return nil, fmt.Errorf("invalid device ID: %d", deviceID)
	}
	device := devices[deviceID]
	if device.MaxInputChannels < 1 {
		return nil, fmt.Errorf("device %d (%s) does not support input", deviceID, device.Name)
	}
	return device, nil
}

// ListDevices writes a summary of every device to w.
func ListDevices(w io.Writer) error {
	devices, err := HostDevices()
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "\nAvailable Audio Devices\n\n")
	for _, d := range devices {
		fmt.Fprintf(w, "[%d] %s (%s)\n", d.ID, d.Name, d.Kind())
		fmt.Fprintf(w, "    Input channels: %d, Output channels: %d\n", d.MaxInputChannels, d.MaxOutputChannels)
		fmt.Fprintf(w, "    Default sample rate: %.0f Hz\n", d.DefaultSampleRate)
		fmt.Fprintf(w, "    Latency: Low=%.2fms, High=%.2fms\n",
			d.LowInputLatency.Seconds()*1000,
			d.HighInputLatency.Seconds()*1000)
		fmt.Fprintln(w)
	}
	return nil
}

// paDevices returns all PortAudio devices, never a nil slice on success.
func paDevices() ([]*portaudio.DeviceInfo, error) {
	devices, err := paLibDevicesFunc()
	if err != nil {
		return nil, err
	}
	if devices == nil {
		devices = []*portaudio.DeviceInfo{}
	}
	return devices, nil
}
