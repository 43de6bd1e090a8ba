package stream

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/matt-g-everett/ledtween/animator"
	"github.com/matt-g-everett/ledtween/timeline"
)

var ErrNoScenes = errors.New("no scenes")

// Controller that plays scenes on a strip, cycling to the next scene
// whenever one finishes.
type Controller struct {
	host  *animator.Host
	strip *Strip
	log   *slog.Logger

	scenes  []scene
	current int
	id      animator.ID
}

type scene struct {
	Scene
	easing      timeline.Easing
	transitions []plannedTransition
}

type plannedTransition struct {
	from, to float64
	easing   timeline.Easing
	bindings []animator.Binding
}

// NewController creates an instance of a Controller. Scene values are
// parsed up front so that configuration errors are reported before
// anything plays.
func NewController(host *animator.Host, strip *Strip, scenes []Scene, log *slog.Logger) (*Controller, error) {
	if len(scenes) == 0 {
		return nil, ErrNoScenes
	}
	if log == nil {
		log = slog.Default()
	}
	c := &Controller{host: host, strip: strip, log: log, current: -1}
	var err error
	c.scenes, err = c.planAll(scenes)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Controller) planAll(scenes []Scene) ([]scene, error) {
	planned := make([]scene, 0, len(scenes))
	for _, sc := range scenes {
		p, err := c.plan(sc)
		if err != nil {
			return nil, fmt.Errorf("scene %q: %w", sc.Name, err)
		}
		planned = append(planned, p)
	}
	return planned, nil
}

func (c *Controller) plan(sc Scene) (scene, error) {
	e, err := timeline.ParseEasing(sc.Easing)
	if err != nil {
		return scene{}, err
	}
	out := scene{Scene: sc, easing: e}
	for i, tc := range sc.Transitions {
		pt := plannedTransition{from: tc.From, to: tc.To}
		pt.easing, err = timeline.ParseEasing(tc.Easing)
		if err != nil {
			return scene{}, fmt.Errorf("transition %d: %w", i, err)
		}
		// Sorted so that bindings apply in a stable order.
		names := make([]string, 0, len(tc.Set))
		for name := range tc.Set {
			names = append(names, name)
		}
		slices.Sort(names)
		for _, name := range names {
			v, err := c.strip.ParseValue(name, tc.Set[name])
			if err != nil {
				return scene{}, fmt.Errorf("transition %d: %w", i, err)
			}
			b := animator.Bind(name, v)
			if len(tc.Gradient) != 0 && (name == Background || name == Foreground) {
				fn := tc.Gradient.Interpolator(orDefault(tc.Saturation, 1), orDefault(tc.Lightness, 0.5))
				b = animator.BindFunc(name, v, fn)
			}
			pt.bindings = append(pt.bindings, b)
		}
		out.transitions = append(out.transitions, pt)
	}
	return out, nil
}

func orDefault(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}

// Start plays the first scene.
func (c *Controller) Start() error {
	return c.play(0)
}

// Stop removes the playing scene's animator.
func (c *Controller) Stop() {
	if c.id.IsZero() {
		return
	}
	c.host.Remove(c.id)
	c.id = animator.ID{}
}

// Scene returns the name of the playing scene.
func (c *Controller) Scene() string {
	if c.current < 0 || c.id.IsZero() {
		return ""
	}
	return c.scenes[c.current].Name
}

func (c *Controller) play(i int) error {
	sc := c.scenes[i]
	id := c.host.New()
	target := animator.Target{Object: c.strip}
	for _, pt := range sc.transitions {
		_, err := c.host.AddTransition(id, pt.from, pt.to, pt.easing, target, pt.bindings...)
		if err != nil {
			c.host.Remove(id)
			return fmt.Errorf("scene %q: %w", sc.Name, err)
		}
	}
	c.host.SetLoop(id, sc.Loop)
	c.host.SetUserData(id, sc.Name, nil)
	c.host.SetFinishedNotify(id, c.finished)
	if err := c.host.Start(id, sc.Duration); err != nil {
		c.host.Remove(id)
		return fmt.Errorf("scene %q: %w", sc.Name, err)
	}

	a, err := c.host.Animator(id)
	if err != nil {
		return err
	}
	tl := a.Timeline()
	tl.SetEasing(sc.easing)
	for _, m := range sc.Markers {
		if err := tl.AddMarker(m.Name, m.At); err != nil {
			c.log.Warn("ignoring marker", "scene", sc.Name, "marker", m.Name, "error", err)
		}
	}
	tl.OnMarker(func(name string, progress float64) {
		c.log.Info("marker", "scene", sc.Name, "marker", name, "progress", progress)
	})

	c.current = i
	c.id = id
	c.log.Info("playing scene", "scene", sc.Name, "duration", sc.Duration, "loop", sc.Loop)
	return nil
}

func (c *Controller) finished(id animator.ID, userData any) {
	c.log.Debug("scene finished", "scene", userData)
	if id != c.id {
		return
	}
	c.id = animator.ID{}
	next := (c.current + 1) % len(c.scenes)
	if err := c.play(next); err != nil {
		c.log.Error("failed to play scene", "error", err)
	}
}

// Reload replaces the controller's scenes and plays the first of them.
// If the new scenes are invalid the playing scene is left running.
func (c *Controller) Reload(scenes []Scene) error {
	if len(scenes) == 0 {
		return ErrNoScenes
	}
	planned, err := c.planAll(scenes)
	if err != nil {
		return err
	}
	c.Stop()
	c.scenes = planned
	c.log.Info("reloaded scenes", "scenes", len(planned))
	return c.play(0)
}
