package audio

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/go-audio/wav"
	"github.com/gordonklaus/portaudio"
)

type portAudioPlayer struct {
	mu       sync.Mutex
	stream   *portaudio.Stream
	cancel   context.CancelFunc
	finished chan struct{}
}

// NewPlayer creates a PortAudio-backed audio output player.
func NewPlayer() (Player, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize PortAudio: %w", err)
	}
	return &portAudioPlayer{}, nil
}

func (p *portAudioPlayer) Play(ctx context.Context, path string, done func(err error)) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open asset: %w", err)
	}
	dec := wav.NewDecoder(f)
	buf, err := dec.FullPCMBuffer()
	f.Close()
	if err != nil {
		return fmt.Errorf("decode asset: %w", err)
	}
	if buf == nil || len(buf.Data) == 0 {
		return fmt.Errorf("decode asset: no audio data")
	}

	channels := buf.Format.NumChannels
	if channels < 1 {
		channels = 1
	}
	samples := make([]int16, len(buf.Data))
	for i, v := range buf.Data {
		if v > 32767 {
			v = 32767
		} else if v < -32768 {
			v = -32768
		}
		samples[i] = int16(v)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stream != nil {
		return fmt.Errorf("output stream already open")
	}

	out := make([]int16, 1024*channels)
	stream, err := portaudio.OpenDefaultStream(0, channels, float64(buf.Format.SampleRate), len(out)/channels, out)
	if err != nil {
		return fmt.Errorf("failed to open output stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		return fmt.Errorf("failed to start output stream: %w", err)
	}

	playCtx, cancel := context.WithCancel(ctx)
	finished := make(chan struct{})
	p.stream = stream
	p.cancel = cancel
	p.finished = finished

	go func() {
		var endErr error
		complete := true

		pos := 0
	feed:
		for pos < len(samples) {
			select {
			case <-playCtx.Done():
				complete = false
				break feed
			default:
			}
			n := copy(out, samples[pos:])
			for i := n; i < len(out); i++ {
				out[i] = 0
			}
			if err := stream.Write(); err != nil {
				endErr = fmt.Errorf("write output stream: %w", err)
				break feed
			}
			pos += n
		}

		p.mu.Lock()
		if p.stream == stream {
			p.stream = nil
			p.cancel = nil
			p.finished = nil
		}
		p.mu.Unlock()
		stream.Stop()
		stream.Close()

		// Signal teardown completion before notifying, so a Stop waiting on
		// this playback is not blocked by the caller's done callback.
		close(finished)
		if complete || endErr != nil {
			done(endErr)
		}
	}()

	return nil
}

func (p *portAudioPlayer) Stop() error {
	p.mu.Lock()
	cancel := p.cancel
	finished := p.finished
	p.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()
	<-finished
	return nil
}

func (p *portAudioPlayer) Close() error {
	p.Stop()
	portaudio.Terminate()
	return nil
}
