package stream

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v2"
)

// Config defaults.
const (
	DefaultPixels   = 500
	DefaultTopic    = "home/xmastree/stream"
	DefaultClientID = "ledtween"
)

var ErrInvalidConfig = errors.New("invalid config")

// Config is the LED host configuration.
type Config struct {
	Mqtt struct {
		URL      string `yaml:"url" toml:"url"`
		ClientID string `yaml:"clientId" toml:"clientId"`
		Username string `yaml:"username" toml:"username"`
		Password string `yaml:"password" toml:"password"`
		Topics   struct {
			Stream string `yaml:"stream" toml:"stream"`
		} `yaml:"topics" toml:"topics"`
	} `yaml:"mqtt" toml:"mqtt"`

	Stream struct {
		Pixels int  `yaml:"pixels" toml:"pixels"`
		FPS    int  `yaml:"fps" toml:"fps"`
		QoS    byte `yaml:"qos" toml:"qos"`
	} `yaml:"stream" toml:"stream"`

	Scenes []Scene `yaml:"scenes" toml:"scenes"`
}

// Scene describes one animator played by the Controller.
type Scene struct {
	Name        string             `yaml:"name" toml:"name"`
	Duration    time.Duration      `yaml:"duration" toml:"duration"`
	Loop        bool               `yaml:"loop" toml:"loop"`
	Easing      string             `yaml:"easing" toml:"easing"`
	Markers     []MarkerConfig     `yaml:"markers" toml:"markers"`
	Transitions []TransitionConfig `yaml:"transitions" toml:"transitions"`
}

// MarkerConfig names a point on a scene's timeline.
type MarkerConfig struct {
	Name string  `yaml:"name" toml:"name"`
	At   float64 `yaml:"at" toml:"at"`
}

// TransitionConfig describes a transition of strip properties over the
// [From, To] window of a scene. Colour properties are swept through
// Gradient when it is set.
type TransitionConfig struct {
	From       float64        `yaml:"from" toml:"from"`
	To         float64        `yaml:"to" toml:"to"`
	Easing     string         `yaml:"easing" toml:"easing"`
	Gradient   GradientTable  `yaml:"gradient" toml:"gradient"`
	Saturation float64        `yaml:"saturation" toml:"saturation"`
	Lightness  float64        `yaml:"lightness" toml:"lightness"`
	Set        map[string]any `yaml:"set" toml:"set"`
}

// ReadConfig reads a YAML or, for files with a .toml extension, TOML
// config file and applies defaults.
func ReadConfig(path string) (*Config, error) {
	c := new(Config)
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.DecodeFile(path, c); err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		decoder := yaml.NewDecoder(f)
		decoder.SetStrict(true)
		if err := decoder.Decode(c); err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
	}
	c.setDefaults()
	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

func (c *Config) setDefaults() {
	if c.Mqtt.ClientID == "" {
		c.Mqtt.ClientID = DefaultClientID
	}
	if c.Mqtt.Topics.Stream == "" {
		c.Mqtt.Topics.Stream = DefaultTopic
	}
	if c.Stream.Pixels == 0 {
		c.Stream.Pixels = DefaultPixels
	}
	if c.Stream.FPS == 0 {
		c.Stream.FPS = 30
	}
}

func (c *Config) validate() error {
	switch {
	case c.Mqtt.URL == "":
		return fmt.Errorf("missing mqtt url: %w", ErrInvalidConfig)
	case c.Stream.Pixels < 0 || c.Stream.Pixels > MaxPixels:
		return fmt.Errorf("pixels %d out of range: %w", c.Stream.Pixels, ErrInvalidConfig)
	case c.Stream.FPS < 0:
		return fmt.Errorf("fps %d: %w", c.Stream.FPS, ErrInvalidConfig)
	case c.Stream.QoS > 2:
		return fmt.Errorf("qos %d: %w", c.Stream.QoS, ErrInvalidConfig)
	case len(c.Scenes) == 0:
		return fmt.Errorf("no scenes: %w", ErrInvalidConfig)
	}
	return nil
}
