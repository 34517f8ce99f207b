package grammar

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// OptionKind is the value type of an option.
type OptionKind int

const (
	// BoolOption holds 0 or 1.
	BoolOption OptionKind = iota
	// IntOption holds an integer within Min..Max.
	IntOption
)

// String returns the kind name.
func (k OptionKind) String() string {
	switch k {
	case BoolOption:
		return "bool"
	case IntOption:
		return "int"
	default:
		return "unknown"
	}
}

// OptionSpec documents one grammar option.
type OptionSpec struct {
	Name    string
	Kind    OptionKind
	Default int
	Min     int
	Max     int
	Doc     string
}

// Bool describes a boolean option.
func Bool(name string, def bool, doc string) OptionSpec {
	d := 0
	if def {
		d = 1
	}
	return OptionSpec{Name: name, Kind: BoolOption, Default: d, Min: 0, Max: 1, Doc: doc}
}

// Int describes an integer option.
func Int(name string, def, lo, hi int, doc string) OptionSpec {
	return OptionSpec{Name: name, Kind: IntOption, Default: def, Min: lo, Max: hi, Doc: doc}
}

// Parse converts a textual value for this option.
func (s OptionSpec) Parse(value string) (int, error) {
	switch s.Kind {
	case BoolOption:
		b, ok := parseBool(value)
		if !ok {
			return 0, fmt.Errorf("%w: %s expects a boolean, got %q", ErrInvalidOption, s.Name, value)
		}
		if b {
			return 1, nil
		}
		return 0, nil
	default:
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return 0, fmt.Errorf("%w: %s expects an integer, got %q", ErrInvalidOption, s.Name, value)
		}
		if n < s.Min || n > s.Max {
			return 0, fmt.Errorf("%w: %s must be between %d and %d", ErrInvalidOption, s.Name, s.Min, s.Max)
		}
		return n, nil
	}
}

func parseBool(value string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true, true
	case "0", "false", "no", "off":
		return false, true
	}
	return false, false
}

// Options holds the current option values of one grammar instance.
type Options struct {
	specs  []OptionSpec
	values map[string]int
}

// NewOptions creates options at their defaults.
func NewOptions(specs []OptionSpec) *Options {
	o := &Options{
		specs:  specs,
		values: make(map[string]int, len(specs)),
	}
	for _, s := range specs {
		o.values[s.Name] = s.Default
	}
	return o
}

// Spec returns the description of an option.
func (o *Options) Spec(name string) (OptionSpec, bool) {
	for _, s := range o.specs {
		if s.Name == name {
			return s, true
		}
	}
	return OptionSpec{}, false
}

// Names returns the option names in sorted order.
func (o *Options) Names() []string {
	names := make([]string, 0, len(o.specs))
	for _, s := range o.specs {
		names = append(names, s.Name)
	}
	sort.Strings(names)
	return names
}

// Bool returns a boolean option.
func (o *Options) Bool(name string) bool {
	return o.values[name] != 0
}

// Int returns an integer option.
func (o *Options) Int(name string) int {
	return o.values[name]
}

// Get returns the textual value of an option.
func (o *Options) Get(name string) (string, error) {
	spec, ok := o.Spec(name)
	if !ok {
		return "", fmt.Errorf("%w %q", ErrUnknownOption, name)
	}
	return strconv.Itoa(o.values[spec.Name]), nil
}

// Set changes one option.
func (o *Options) Set(name, value string) error {
	return o.Apply(map[string]string{name: value})
}

// Apply validates every value first and only then changes the options,
// so a rejected call leaves them untouched.
func (o *Options) Apply(values map[string]string) error {
	parsed := make(map[string]int, len(values))
	for name, value := range values {
		spec, ok := o.Spec(name)
		if !ok {
			return fmt.Errorf("%w %q", ErrUnknownOption, name)
		}
		n, err := spec.Parse(value)
		if err != nil {
			return err
		}
		parsed[name] = n
	}
	for name, n := range parsed {
		o.values[name] = n
	}
	return nil
}

// Clone copies the options.
func (o *Options) Clone() *Options {
	c := &Options{specs: o.specs, values: make(map[string]int, len(o.values))}
	for k, v := range o.values {
		c.values[k] = v
	}
	return c
}
