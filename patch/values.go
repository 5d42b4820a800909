package patch

import (
	"fmt"
	"reflect"
	"slices"
	"sort"

	"github.com/erraggy/patchkit/patcherrors"
)

// OptionDecl declares one configurable value of a patch.
type OptionDecl struct {
	// Key identifies the option within its patch.
	Key string `yaml:"key" json:"key"`
	// Title is a short display name.
	Title string `yaml:"title,omitempty" json:"title,omitempty"`
	// Description explains what the option controls.
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	// Default is used when no value is supplied. Nil means no default.
	Default any `yaml:"default,omitempty" json:"default,omitempty"`
	// Required rejects a run that supplies neither a value nor a default.
	Required bool `yaml:"required,omitempty" json:"required,omitempty"`
	// Validator, if set, checks the effective value.
	Validator func(value any) error `yaml:"-" json:"-"`
}

// Values holds the option values supplied to one patch for one run.
type Values struct {
	patch string
	decls []OptionDecl
	set   map[string]any
}

// Get returns the effective value for key: the supplied value, else the
// declared default. The second result is false when neither exists.
func (v Values) Get(key string) (any, bool) {
	if val, ok := v.set[key]; ok {
		return val, true
	}
	for _, d := range v.decls {
		if d.Key == key && d.Default != nil {
			return d.Default, true
		}
	}
	return nil, false
}

// Keys returns the keys with an effective value, sorted.
func (v Values) Keys() []string {
	var keys []string
	for k := range v.set {
		keys = append(keys, k)
	}
	for _, d := range v.decls {
		if _, ok := v.set[d.Key]; !ok && d.Default != nil {
			keys = append(keys, d.Key)
		}
	}
	sort.Strings(keys)
	return keys
}

// Validate checks the values against the declarations. It returns a
// *patcherrors.OptionError for an undeclared key, a missing required value,
// or a value the declared validator rejects.
func (v Values) Validate() error {
	keys := make([]string, 0, len(v.set))
	for k := range v.set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if !slices.ContainsFunc(v.decls, func(d OptionDecl) bool { return d.Key == k }) {
			return &patcherrors.OptionError{Patch: v.patch, Key: k, Value: v.set[k], Message: "unknown option"}
		}
	}

	for _, d := range v.decls {
		val, ok := v.Get(d.Key)
		if !ok {
			if d.Required {
				return &patcherrors.OptionError{Patch: v.patch, Key: d.Key, Message: "required option not set"}
			}
			continue
		}
		if d.Validator != nil {
			if err := d.Validator(val); err != nil {
				return &patcherrors.OptionError{Patch: v.patch, Key: d.Key, Value: val, Message: "invalid value", Cause: err}
			}
		}
	}
	return nil
}

// Value returns the effective value for key as a T.
// It returns a *patcherrors.OptionError when the value is missing or has
// another type.
func Value[T any](v Values, key string) (T, error) {
	var zero T
	raw, ok := v.Get(key)
	if !ok {
		return zero, &patcherrors.OptionError{Patch: v.patch, Key: key, Message: "option not set"}
	}
	typed, ok := raw.(T)
	if !ok {
		return zero, &patcherrors.OptionError{
			Patch:   v.patch,
			Key:     key,
			Value:   raw,
			Message: fmt.Sprintf("want %T, got %T", zero, raw),
		}
	}
	return typed, nil
}

// ValueOr returns the effective value for key as a T, or fallback when the
// value is missing or has another type.
func ValueOr[T any](v Values, key string, fallback T) T {
	typed, err := Value[T](v, key)
	if err != nil {
		return fallback
	}
	return typed
}

// OneOf returns a validator accepting only the listed values.
func OneOf(allowed ...any) func(any) error {
	return func(value any) error {
		if slices.ContainsFunc(allowed, func(a any) bool { return reflect.DeepEqual(a, value) }) {
			return nil
		}
		return fmt.Errorf("must be one of %v", allowed)
	}
}
