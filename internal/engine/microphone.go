package engine

import (
	"errors"
	"math"
	"sync"
	"time"

	log "github.com/echocat/slf4g"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/generators"

	"github.com/llehouerou/voicetrack/internal/tracker"
)

// SampleRate is the rate microphones are sampled at.
const SampleRate = beep.SampleRate(8000)

var errMicrophoneClosed = errors.New("microphone closed")

// Microphone opens an audio source to record from.
type Microphone func() (beep.Streamer, error)

// SyntheticMicrophone produces a 220Hz tone whose loudness swells and fades
// like speech.
func SyntheticMicrophone() (beep.Streamer, error) {
	voice, err := generators.SineTone(SampleRate, 220)
	if err != nil {
		return nil, err
	}
	envelope, err := generators.SineTone(SampleRate, 1.5)
	if err != nil {
		return nil, err
	}
	return modulate(voice, envelope), nil
}

// modulate scales carrier by envelope mapped from [-1, 1] to [0, 1].
func modulate(carrier, envelope beep.Streamer) beep.Streamer {
	var env [][2]float64
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		n, ok := carrier.Stream(samples)
		if cap(env) < n {
			env = make([][2]float64, n)
		}
		m, _ := envelope.Stream(env[:n])
		for i := range n {
			gain := 1.0
			if i < m {
				gain = 0.5 + 0.5*env[i][0]
			}
			samples[i][0] *= gain
			samples[i][1] *= gain
		}
		return n, ok
	})
}

// peak returns the loudest sample of samples on a 0-100 scale.
func peak(samples [][2]float64) int {
	var p float64
	for _, s := range samples {
		p = max(p, math.Abs(s[0]), math.Abs(s[1]))
	}
	return int(math.Round(min(p, 1) * 100))
}

// recorder samples a source once per tick into the recording slot.
type recorder struct {
	stop chan struct{}
	done chan struct{}
	once sync.Once

	length time.Duration
	err    error
}

func startRecorder(p Producer, src beep.Streamer, tick time.Duration) *recorder {
	r := &recorder{
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	p.UpdateRecording(tracker.RecordingID, nil)
	go r.run(p, src, tick)
	return r
}

func (r *recorder) run(p Producer, src beep.Streamer, tick time.Duration) {
	defer close(r.done)

	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	buf := make([][2]float64, max(SampleRate.N(tick), 1))
	var trace []int

	for {
		select {
		case <-r.stop:
			return
		case <-ticker.C:
			n, ok := src.Stream(buf)
			if !ok {
				r.err = src.Err()
				if r.err == nil {
					r.err = errMicrophoneClosed
				}
				log.WithError(r.err).
					Warn("Recording source failed.")
				p.OnError(tracker.RecordingID, r.err)
				return
			}
			trace = append(trace, peak(buf[:n]))
			r.length += tick
			p.UpdateRecording(tracker.RecordingID, trace)
		}
	}
}

// failed reports whether the source failed and the recorder stopped on its
// own.
func (r *recorder) failed() bool {
	select {
	case <-r.done:
		return r.err != nil
	default:
		return false
	}
}

// halt stops recording and returns the recorded length.
func (r *recorder) halt() (time.Duration, error) {
	r.once.Do(func() { close(r.stop) })
	<-r.done
	return r.length, r.err
}
