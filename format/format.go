// Package format provides a registry and interfaces for record output
// formats.
package format

import (
	"fmt"
	"sync"
)

var (
	formatDrivers = make(map[string]FormatDriver)
	lock          = &sync.RWMutex{}

	// ErrFormat is the base error for formatting failures.
	ErrFormat = fmt.Errorf("format error")

	// ErrNotFlowRecord is returned when a driver receives a payload it
	// cannot render.
	ErrNotFlowRecord = fmt.Errorf("payload is not a flow record")
)

// DriverFormatError wraps a driver-specific error with its format name.
type DriverFormatError struct {
	Driver string
	Err    error
}

func (e *DriverFormatError) Error() string {
	return fmt.Sprintf("%s for %s format", e.Err.Error(), e.Driver)
}

func (e *DriverFormatError) Unwrap() []error {
	return []error{ErrFormat, e.Err}
}

// FormatDriver describes a format plugin lifecycle and render method.
type FormatDriver interface {
	Prepare() error                                  // Prepare driver (eg: flag registration)
	Init() error                                     // Initialize driver (eg: parse configuration)
	Format(data interface{}) ([]byte, []byte, error) // Render a record into a partition key and payload
}

// FormatInterface is the minimal interface needed to render payloads.
type FormatInterface interface {
	Format(data interface{}) ([]byte, []byte, error)
}

// Format is a named format wrapper used by the registry.
type Format struct {
	FormatDriver
	name string
}

// Format renders data with the driver and wraps errors with format
// metadata.
func (t *Format) Format(data interface{}) ([]byte, []byte, error) {
	key, text, err := t.FormatDriver.Format(data)
	if err != nil {
		err = &DriverFormatError{
			t.name,
			err,
		}
	}
	return key, text, err
}

// RegisterFormatDriver registers and prepares a format under a name.
func RegisterFormatDriver(name string, t FormatDriver) {
	lock.Lock()
	formatDrivers[name] = t
	lock.Unlock()

	if err := t.Prepare(); err != nil {
		panic(err)
	}
}

// FindFormat returns a configured format by name.
func FindFormat(name string) (*Format, error) {
	lock.RLock()
	t, ok := formatDrivers[name]
	lock.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w %s not found", ErrFormat, name)
	}

	err := t.Init()
	if err != nil {
		err = &DriverFormatError{name, err}
	}
	return &Format{t, name}, err
}

// GetFormats returns the list of registered format names.
func GetFormats() []string {
	lock.RLock()
	defer lock.RUnlock()
	t := make([]string, len(formatDrivers))
	var i int
	for k := range formatDrivers {
		t[i] = k
		i++
	}
	return t
}
