package animator

import (
	"errors"
	"fmt"
)

var (
	// ErrNoProperty is returned by accessors for unknown properties.
	ErrNoProperty = errors.New("no such property")

	// ErrNotObject is returned by ObjectAccessor when a target does
	// not expose properties.
	ErrNotObject = errors.New("target does not expose properties")
)

// Target identifies the object whose properties a transition animates.
// When Child is not nil, the properties are the child properties that
// the container Object holds for Child.
type Target struct {
	Object any
	Child  any
}

// Accessor reads and writes properties of host-owned targets. The
// animator never retains or releases targets.
type Accessor interface {
	Get(target Target, property string) (any, error)
	Set(target Target, property string, value any) error
}

// Object is a target exposing named properties.
type Object interface {
	Property(name string) (any, error)
	SetProperty(name string, value any) error
}

// Container is a target holding per-child properties.
type Container interface {
	ChildProperty(child any, name string) (any, error)
	SetChildProperty(child any, name string, value any) error
}

// ObjectAccessor is an Accessor for targets implementing Object or, for
// child properties, Container.
type ObjectAccessor struct{}

func (ObjectAccessor) Get(t Target, property string) (any, error) {
	if t.Child != nil {
		c, ok := t.Object.(Container)
		if !ok {
			return nil, fmt.Errorf("%T child property %q: %w", t.Object, property, ErrNotObject)
		}
		return c.ChildProperty(t.Child, property)
	}
	o, ok := t.Object.(Object)
	if !ok {
		return nil, fmt.Errorf("%T property %q: %w", t.Object, property, ErrNotObject)
	}
	return o.Property(property)
}

func (ObjectAccessor) Set(t Target, property string, value any) error {
	if t.Child != nil {
		c, ok := t.Object.(Container)
		if !ok {
			return fmt.Errorf("%T child property %q: %w", t.Object, property, ErrNotObject)
		}
		return c.SetChildProperty(t.Child, property, value)
	}
	o, ok := t.Object.(Object)
	if !ok {
		return fmt.Errorf("%T property %q: %w", t.Object, property, ErrNotObject)
	}
	return o.SetProperty(property, value)
}
