package audio

import (
	"context"
	"fmt"
	"sync"

	"github.com/gen2brain/malgo"
)

// frameBuffer bounds how many capture frames can queue up while the chunker
// is busy. Beyond this the oldest audio is dropped rather than growing
// memory without limit.
const frameBuffer = 64

// MalgoDevice captures from the default system microphone via miniaudio.
type MalgoDevice struct {
	sampleRate uint32

	mu      sync.Mutex
	ctx     *malgo.AllocatedContext
	device  *malgo.Device
	frames  chan []byte
	stopped bool
}

func NewMalgoDevice(sampleRate int) *MalgoDevice {
	return &MalgoDevice{sampleRate: uint32(sampleRate)}
}

func (d *MalgoDevice) Start(ctx context.Context) (<-chan []byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.device != nil {
		return nil, fmt.Errorf("audio: capture already started")
	}

	allocated, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("audio: init context: %w", err)
	}

	cfg := malgo.DefaultDeviceConfig(malgo.Capture)
	cfg.Capture.Format = malgo.FormatS16
	cfg.Capture.Channels = 1
	cfg.SampleRate = d.sampleRate

	frames := make(chan []byte, frameBuffer)

	callbacks := malgo.DeviceCallbacks{
		Data: func(_, input []byte, _ uint32) {
			frame := make([]byte, len(input))
			copy(frame, input)
			select {
			case frames <- frame:
			default:
				// Consumer is behind; drop the frame.
			}
		},
	}

	device, err := malgo.InitDevice(allocated.Context, cfg, callbacks)
	if err != nil {
		_ = allocated.Uninit()
		allocated.Free()
		return nil, fmt.Errorf("audio: init device: %w", err)
	}
	if err := device.Start(); err != nil {
		device.Uninit()
		_ = allocated.Uninit()
		allocated.Free()
		return nil, fmt.Errorf("audio: start device: %w", err)
	}

	d.ctx = allocated
	d.device = device
	d.frames = frames
	d.stopped = false

	go func() {
		<-ctx.Done()
		_ = d.Stop()
	}()

	return frames, nil
}

func (d *MalgoDevice) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped || d.device == nil {
		return nil
	}
	d.stopped = true

	d.device.Uninit()
	d.device = nil
	if d.ctx != nil {
		_ = d.ctx.Uninit()
		d.ctx.Free()
		d.ctx = nil
	}
	close(d.frames)
	return nil
}

var _ CaptureDevice = (*MalgoDevice)(nil)
