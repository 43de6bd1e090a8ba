package stream

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/eclipse/paho.mqtt.golang"

	"github.com/matt-g-everett/ledtween/timeline"
)

var ErrPublishTimeout = errors.New("publish timed out")

// Publisher sends encoded frames to a device.
type Publisher interface {
	Publish(topic string, payload []byte) error
}

// MQTTPublisher publishes frames with a paho MQTT client.
type MQTTPublisher struct {
	Client   mqtt.Client
	QoS      byte
	Retained bool

	// Timeout bounds the wait for each publish to complete. Zero
	// waits indefinitely.
	Timeout time.Duration
}

// Publish implements Publisher.
func (p *MQTTPublisher) Publish(topic string, payload []byte) error {
	token := p.Client.Publish(topic, p.QoS, p.Retained, payload)
	if p.Timeout <= 0 {
		token.Wait()
	} else if !token.WaitTimeout(p.Timeout) {
		return fmt.Errorf("%s: %w", topic, ErrPublishTimeout)
	}
	return token.Error()
}

// Streamer that streams RGB data frames of a strip to an ledrx device.
type Streamer struct {
	sched timeline.Scheduler
	strip *Strip
	pub   Publisher
	topic string
	fps   int
	log   *slog.Logger

	smoothing float64
	last      *Frame
	cancel    func()
	sent      int
	failed    int
}

// NewStreamer creates an instance of a Streamer publishing fps frames a
// second to topic.
func NewStreamer(s timeline.Scheduler, strip *Strip, pub Publisher, topic string, fps int, log *slog.Logger) *Streamer {
	if fps <= 0 {
		fps = timeline.DefaultFPS
	}
	if log == nil {
		log = slog.Default()
	}
	return &Streamer{sched: s, strip: strip, pub: pub, topic: topic, fps: fps, log: log}
}

// SetSmoothing sets how much of the previous frame is kept in each sent
// frame, from 0 (none) to 1 exclusive.
func (s *Streamer) SetSmoothing(f float64) {
	s.smoothing = min(max(f, 0), 0.99)
}

// Start begins sending frames. Starting a running Streamer has no effect.
func (s *Streamer) Start() {
	if s.cancel != nil {
		return
	}
	s.cancel = s.sched.Every(time.Second/time.Duration(s.fps), func() bool {
		s.SendFrame()
		return true
	})
	s.log.Info("streaming", "topic", s.topic, "fps", s.fps, "pixels", s.strip.Pixels())
}

// Stop stops sending frames.
func (s *Streamer) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	s.cancel = nil
}

// SendFrame renders the strip and publishes the frame.
func (s *Streamer) SendFrame() {
	f := s.strip.Render()
	if s.smoothing > 0 && s.last != nil {
		f = s.last.InterpolateFrame(f, 1-s.smoothing)
	}
	s.last = f

	b, err := f.MarshalBinary()
	if err == nil {
		err = s.pub.Publish(s.topic, b)
	}
	if err != nil {
		s.failed++
		// Log the first failure of a run of failures only.
		if s.failed == 1 {
			s.log.Warn("failed to send frame", "topic", s.topic, "error", err)
		}
		return
	}
	if s.failed > 0 {
		s.log.Info("sending frames again", "topic", s.topic, "dropped", s.failed)
		s.failed = 0
	}
	s.sent++
}

// Sent returns the number of frames published.
func (s *Streamer) Sent() int { return s.sent }
