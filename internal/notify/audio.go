package notify

import (
	"bytes"
	"context"
	"encoding/binary"
	"math"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/manav03panchal/dailyclocks/internal/logging"
)

// Audio format of the alert tone.
const (
	SampleRate    = 44100
	ChannelCount  = 1
	ToneFrequency = 880.0
)

// oto allows a single context per process.
var (
	otoOnce sync.Once
	otoCtx  *oto.Context
	otoErr  error
)

func audioContext() (*oto.Context, error) {
	otoOnce.Do(func() {
		ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
			SampleRate:   SampleRate,
			ChannelCount: ChannelCount,
			Format:       oto.FormatSignedInt16LE,
		})
		if err != nil {
			otoErr = err
			return
		}
		<-ready
		otoCtx = ctx
	})
	return otoCtx, otoErr
}

// Tone returns signed 16-bit little-endian mono PCM of a sine wave at freq
// lasting d, with short fades at both ends.
func Tone(freq float64, d time.Duration) []byte {
	n := int(d.Seconds() * SampleRate)
	if n <= 0 {
		return nil
	}
	fade := SampleRate / 100 // 10ms
	if fade > n/2 {
		fade = n / 2
	}

	buf := make([]byte, n*2)
	for i := 0; i < n; i++ {
		amp := 0.3
		switch {
		case i < fade:
			amp *= float64(i) / float64(fade)
		case i >= n-fade:
			amp *= float64(n-1-i) / float64(fade)
		}
		v := amp * math.Sin(2*math.Pi*freq*float64(i)/SampleRate)
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(int16(v*math.MaxInt16)))
	}
	return buf
}

// AudioSink plays a short tone through the system audio device. A machine
// without audio output logs once and stays silent.
type AudioSink struct {
	duration time.Duration
	warnOnce sync.Once
	mu       sync.Mutex
}

// NewAudioSink creates an audio sink playing a tone of duration d.
func NewAudioSink(d time.Duration) *AudioSink {
	return &AudioSink{duration: d}
}

// NotifyCompletion plays the tone and blocks until it has finished.
func (a *AudioSink) NotifyCompletion(ctx context.Context, label string) {
	pcm := Tone(ToneFrequency, a.duration)
	if len(pcm) == 0 {
		return
	}

	actx, err := audioContext()
	if err != nil {
		a.warnOnce.Do(func() {
			logging.WarnContext(ctx, "audio alert unavailable", logging.KeyError, err)
		})
		return
	}

	// Overlapping completions play one after another.
	a.mu.Lock()
	defer a.mu.Unlock()

	player := actx.NewPlayer(bytes.NewReader(pcm))
	defer player.Close()
	player.Play()

	for player.IsPlaying() {
		select {
		case <-ctx.Done():
			player.Pause()
			return
		case <-time.After(10 * time.Millisecond):
		}
	}
	logging.DebugContext(ctx, "audio alert played", logging.KeyLabel, label)
}
