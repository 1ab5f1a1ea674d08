package audio

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gordonklaus/portaudio"
)

type portAudioCapture struct {
	mu     sync.Mutex
	stream *portaudio.Stream
	paused bool
}

// NewCapture creates a PortAudio-backed microphone capture.
func NewCapture() (Capture, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize PortAudio: %w", err)
	}
	return &portAudioCapture{}, nil
}

func (p *portAudioCapture) Start(ctx context.Context, deviceID string, sampleRate int, out chan<- []float32) error {
	device, err := findInputDevice(deviceID)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stream != nil {
		return fmt.Errorf("capture stream already open")
	}

	// Mono, float32, small buffers for a responsive elapsed display
	buffer := make([]float32, 512)
	stream, err := portaudio.OpenStream(portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   device,
			Channels: 1,
			Latency:  device.DefaultLowInputLatency,
		},
		SampleRate:      float64(sampleRate),
		FramesPerBuffer: len(buffer),
	}, buffer)
	if err != nil {
		return fmt.Errorf("failed to open audio stream: %w", err)
	}

	if err := stream.Start(); err != nil {
		stream.Close()
		return fmt.Errorf("failed to start audio stream: %w", err)
	}

	p.stream = stream
	p.paused = false

	go func() {
		for {
			select {
			case <-ctx.Done():
				p.mu.Lock()
				if p.stream != nil {
					p.stream.Close()
					p.stream = nil
				}
				p.mu.Unlock()
				return
			default:
			}

			p.mu.Lock()
			active := p.stream != nil && !p.paused
			p.mu.Unlock()
			if !active {
				// Paused streams deliver nothing; poll until resumed or torn down.
				time.Sleep(20 * time.Millisecond)
				continue
			}

			if err := stream.Read(); err != nil {
				continue
			}
			samples := make([]float32, len(buffer))
			copy(samples, buffer)

			select {
			case out <- samples:
			case <-ctx.Done():
			default:
				// Drop if channel full (backpressure)
			}
		}
	}()

	return nil
}

func (p *portAudioCapture) Pause() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stream == nil || p.paused {
		return nil
	}
	if err := p.stream.Stop(); err != nil {
		return fmt.Errorf("failed to pause audio stream: %w", err)
	}
	p.paused = true
	return nil
}

func (p *portAudioCapture) Resume() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stream == nil || !p.paused {
		return nil
	}
	if err := p.stream.Start(); err != nil {
		return fmt.Errorf("failed to resume audio stream: %w", err)
	}
	p.paused = false
	return nil
}

func (p *portAudioCapture) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stream == nil {
		return nil
	}
	err := p.stream.Stop()
	p.stream.Close()
	p.stream = nil
	p.paused = false
	if err != nil {
		return fmt.Errorf("failed to stop audio stream: %w", err)
	}
	return nil
}

func (p *portAudioCapture) ListDevices() ([]Device, error) {
	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}

	result := make([]Device, 0, len(devices))
	defaultDevice, _ := portaudio.DefaultInputDevice()

	for _, d := range devices {
		if d.MaxInputChannels > 0 {
			result = append(result, Device{
				ID:      d.Name,
				Name:    d.Name,
				Default: d == defaultDevice,
			})
		}
	}

	return result, nil
}

func (p *portAudioCapture) Close() error {
	p.Stop()
	portaudio.Terminate()
	return nil
}

func findInputDevice(deviceID string) (*portaudio.DeviceInfo, error) {
	if deviceID == "" {
		device, err := portaudio.DefaultInputDevice()
		if err != nil {
			return nil, fmt.Errorf("failed to get default input device: %w", err)
		}
		return device, nil
	}

	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate devices: %w", err)
	}
	for _, d := range devices {
		if d.Name == deviceID {
			return d, nil
		}
	}
	return nil, fmt.Errorf("device not found: %s", deviceID)
}
