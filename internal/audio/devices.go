package audio

import (
	"fmt"
	"time"

	"github.com/gordonklaus/portaudio"

	"nowplaying/internal/config"
)

// Library entry points behind func vars so tests can inject faults
// without a working audio host.
var (
	paLibInitialize              = portaudio.Initialize
	paLibTerminate               = portaudio.Terminate
	paLibDevicesFunc             = portaudio.Devices
	paLibDefaultOutputDeviceFunc = portaudio.DefaultOutputDevice

	// paDevicesFunc wraps paDevices itself so higher-level lookups can
	// be tested in isolation.
	paDevicesFunc = paDevices
)

// Initialize sets up the PortAudio subsystem.
// This must be called before any audio operations and paired with a Terminate() call.
func Initialize() error {
	if err := paLibInitialize(); err != nil {
		return fmt.Errorf("failed to initialize PortAudio: %w", err)
	}
	return nil
}

// Terminate cleanly shuts down the PortAudio subsystem.
// This should be deferred immediately after Initialize().
func Terminate() error {
	if err := paLibTerminate(); err != nil {
		return fmt.Errorf("failed to terminate PortAudio: %w", err)
	}
	return nil
}

// Device is a host-independent view of a PortAudio device, used by the
// devices command and the interactive browser.
type Device struct {
	ID                int
	Name              string
	MaxInputChannels  int
	MaxOutputChannels int
	DefaultSampleRate float64
	LowOutputLatency  time.Duration
	HighOutputLatency time.Duration
}

// HostDevices returns all devices known to the audio host.
func HostDevices() ([]Device, error) {
	infos, err := paDevicesFunc()
	if err != nil {
		return nil, err
	}

	devices := make([]Device, len(infos))
	for i, info := range infos {
		devices[i] = Device{
			ID:                i,
			Name:              info.Name,
			MaxInputChannels:  info.MaxInputChannels,
			MaxOutputChannels: info.MaxOutputChannels,
			DefaultSampleRate: info.DefaultSampleRate,
			LowOutputLatency:  info.DefaultLowOutputLatency,
			HighOutputLatency: info.DefaultHighOutputLatency,
		}
	}
	return devices, nil
}

// OutputDevice retrieves the audio output device for the given device ID.
// If deviceID is MinDeviceID (-1), returns the system default output device.
// Returns an error if the device ID is invalid or the device cannot play audio.
func OutputDevice(deviceID int) (*portaudio.DeviceInfo, error) {
	devices, err := paDevicesFunc()
	if err != nil {
		return nil, err
	}

	if deviceID == config.MinDeviceID {
		device, err := paLibDefaultOutputDeviceFunc()
		if err != nil {
			return nil, err
		}
		return device, nil
	}

	if deviceID < 0 || deviceID >= len(devices) {
		return nil, fmt.Errorf("invalid device ID: %d", deviceID)
	}
	device := devices[deviceID]
	if device.MaxOutputChannels < 1 {
		return nil, fmt.Errorf("device %d (%s) does not support output", deviceID, device.Name)
	}
	return device, nil
}

// ListDevices prints information about all available audio devices.
// For each device, it shows:
// - Device ID and name
// - Device type (Input/Output/Input+Output)
// - Channel count
// - Default sample rate
// - Output latency ranges
func ListDevices() error {
	devices, err := paDevicesFunc()
	if err != nil {
		return err
	}

	fmt.Printf("\nAvailable Audio Devices\n\n")

	for i, device := range devices {
		inputChannels := device.MaxInputChannels
		outputChannels := device.MaxOutputChannels

		deviceType := ""
		if inputChannels > 0 && outputChannels > 0 {
			deviceType = "Input/Output"
		} else if inputChannels > 0 {
			deviceType = "Input"
		} else if outputChannels > 0 {
			deviceType = "Output"
		}

		fmt.Printf("[%d] %s (%s)\n", i, device.Name, deviceType)
		fmt.Printf("    Input channels: %d, Output channels: %d\n", inputChannels, outputChannels)
		fmt.Printf("    Default sample rate: %.0f Hz\n", device.DefaultSampleRate)
		if outputChannels > 0 {
			fmt.Printf("    Output latency: Low=%.2fms, High=%.2fms\n",
				device.DefaultLowOutputLatency.Seconds()*1000,
				device.DefaultHighOutputLatency.Seconds()*1000)
		}
		fmt.Println()
	}

	return nil
}

// paDevices returns all available PortAudio devices. A host with no
// devices yields an empty slice, not nil.
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
