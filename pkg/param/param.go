// Package param provides the data-driven parameter surface shared by every
// instrument driver: a table of command templates, reply parsers, and input
// validators keyed by parameter name. One Spec per physical quantity replaces
// the per-register accessor types the drivers would otherwise accumulate.
package param

import (
	"errors"
	"fmt"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var (
	// ErrUnknown is returned for a parameter name not present in the table.
	ErrUnknown = errors.New("unknown parameter")

	// ErrNotSettable is returned when setting a read-only parameter.
	ErrNotSettable = errors.New("parameter is not settable")

	// ErrNotGettable is returned when getting a write-only parameter.
	ErrNotGettable = errors.New("parameter is not gettable")

	// ErrInvalid is wrapped by every validator rejection. Rejections happen
	// before any transport write.
	ErrInvalid = errors.New("invalid parameter value")

	// ErrParse is wrapped when an instrument reply cannot be parsed.
	ErrParse = errors.New("unexpected reply format")
)

// Client is the command/response transport a Table talks through.
type Client interface {
	Command(format string, a ...any) error
	Query(cmd string) (string, error)
}

// ParseFunc converts a raw instrument reply into a typed value.
type ParseFunc func(s string) (any, error)

// CheckFunc validates a value before it is written to the instrument.
type CheckFunc func(v any) error

// FormatFunc converts a typed value into the string substituted into SetFmt.
type FormatFunc func(v any) (string, error)

// Spec describes one instrument parameter.
type Spec struct {
	Name  string
	Label string
	Unit  string

	// GetCmd is the query command. Empty means the parameter is write-only.
	GetCmd string
	// SetFmt is the fmt template for the set command, with one verb for the
	// value. Empty means the parameter is read-only.
	SetFmt string

	Parse  ParseFunc
	Check  CheckFunc
	Format FormatFunc

	// Optional numeric transforms between caller units and wire units,
	// e.g. degree accessors over a radian wire format.
	GetXform func(float64) float64
	SetXform func(float64) float64
}

// Table binds a set of Specs to a transport.
type Table struct {
	client Client
	specs  map[string]Spec
	order  []string
}

// NewTable builds a Table, rejecting duplicate parameter names.
func NewTable(client Client, specs ...Spec) (*Table, error) {
	t := &Table{
		client: client,
		specs:  make(map[string]Spec, len(specs)),
	}
	for _, s := range specs {
		if s.Name == "" {
			return nil, errors.New("parameter spec without a name")
		}
		if _, ok := t.specs[s.Name]; ok {
			return nil, fmt.Errorf("duplicate parameter %q", s.Name)
		}
		t.specs[s.Name] = s
		t.order = append(t.order, s.Name)
	}
	return t, nil
}

// Names returns the parameter names in registration order.
func (t *Table) Names() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// Lookup returns the Spec for a name.
func (t *Table) Lookup(name string) (Spec, bool) {
	s, ok := t.specs[name]
	return s, ok
}

// Get queries the instrument and returns the parsed value.
func (t *Table) Get(name string) (any, error) {
	spec, ok := t.specs[name]
	if !ok {
		return nil, pkgerrors.Wrap(ErrUnknown, name)
	}
	if spec.GetCmd == "" {
		return nil, pkgerrors.Wrap(ErrNotGettable, name)
	}

	reply, err := t.client.Query(spec.GetCmd)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to query %s", name)
	}
	v, err := spec.Parse(reply)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to parse %s reply", name)
	}
	if f, ok := v.(float64); ok && spec.GetXform != nil {
		v = spec.GetXform(f)
	}

	logrus.WithFields(logrus.Fields{
		"param": name,
		"value": v,
	}).Trace("parameter read")

	return v, nil
}

// Set validates the value and writes the formatted set command. Validation
// failures are surfaced before any transport write.
func (t *Table) Set(name string, value any) error {
	spec, ok := t.specs[name]
	if !ok {
		return pkgerrors.Wrap(ErrUnknown, name)
	}
	if spec.SetFmt == "" {
		return pkgerrors.Wrap(ErrNotSettable, name)
	}
	if spec.Check != nil {
		if err := spec.Check(value); err != nil {
			return pkgerrors.Wrap(err, name)
		}
	}
	if f, ok := value.(float64); ok && spec.SetXform != nil {
		value = spec.SetXform(f)
	}

	logrus.WithFields(logrus.Fields{
		"param": name,
		"value": value,
	}).Trace("parameter write")

	if spec.Format != nil {
		arg, err := spec.Format(value)
		if err != nil {
			return pkgerrors.Wrap(err, name)
		}
		return t.client.Command(spec.SetFmt, arg)
	}
	return t.client.Command(spec.SetFmt, value)
}

// GetFloat is Get narrowed to float64.
func (t *Table) GetFloat(name string) (float64, error) {
	v, err := t.Get(name)
	if err != nil {
		return 0, err
	}
	f, ok := v.(float64)
	if !ok {
		return 0, pkgerrors.Wrapf(ErrParse, "%s: expected a number, got %T", name, v)
	}
	return f, nil
}

// GetInt is Get narrowed to int.
func (t *Table) GetInt(name string) (int, error) {
	v, err := t.Get(name)
	if err != nil {
		return 0, err
	}
	i, ok := v.(int)
	if !ok {
		return 0, pkgerrors.Wrapf(ErrParse, "%s: expected an integer, got %T", name, v)
	}
	return i, nil
}

// GetString is Get narrowed to string.
func (t *Table) GetString(name string) (string, error) {
	v, err := t.Get(name)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", pkgerrors.Wrapf(ErrParse, "%s: expected a string, got %T", name, v)
	}
	return s, nil
}

// GetBool is Get narrowed to bool.
func (t *Table) GetBool(name string) (bool, error) {
	v, err := t.Get(name)
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, pkgerrors.Wrapf(ErrParse, "%s: expected a boolean, got %T", name, v)
	}
	return b, nil
}
