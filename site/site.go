// Package site maps sensor and flow type names to the numeric
// identifiers carried in packed records.
package site

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v2"
)

// Sensor is a named collection point.
type Sensor struct {
	ID          uint16 `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
}

// FlowType is a named record category within a class.
type FlowType struct {
	ID    uint8  `yaml:"id"`
	Name  string `yaml:"name"`
	Class string `yaml:"class,omitempty"`
}

type configFile struct {
	Sensors   []Sensor   `yaml:"sensors"`
	FlowTypes []FlowType `yaml:"flowtypes"`
}

// Config holds the site naming tables.
type Config struct {
	sensors   []Sensor
	flowTypes []FlowType

	sensorByName   map[string]*Sensor
	sensorByID     map[uint16]*Sensor
	flowTypeByName map[string]*FlowType
	flowTypeByID   map[uint8]*FlowType
}

// Load reads a site configuration file.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

// Parse decodes a site configuration from YAML.
func Parse(r io.Reader) (*Config, error) {
	var cf configFile
	dec := yaml.NewDecoder(r)
	dec.SetStrict(true)
	if err := dec.Decode(&cf); err != nil {
		return nil, fmt.Errorf("site config: %v", err)
	}

	c := &Config{
		sensors:        cf.Sensors,
		flowTypes:      cf.FlowTypes,
		sensorByName:   make(map[string]*Sensor),
		sensorByID:     make(map[uint16]*Sensor),
		flowTypeByName: make(map[string]*FlowType),
		flowTypeByID:   make(map[uint8]*FlowType),
	}
	for i := range c.sensors {
		s := &c.sensors[i]
		if s.Name == "" {
			return nil, fmt.Errorf("site config: sensor %d has no name", s.ID)
		}
		if _, dup := c.sensorByName[s.Name]; dup {
			return nil, fmt.Errorf("site config: duplicate sensor name %s", s.Name)
		}
		if _, dup := c.sensorByID[s.ID]; dup {
			return nil, fmt.Errorf("site config: duplicate sensor id %d", s.ID)
		}
		c.sensorByName[s.Name] = s
		c.sensorByID[s.ID] = s
	}
	for i := range c.flowTypes {
		ft := &c.flowTypes[i]
		if ft.Name == "" {
			return nil, fmt.Errorf("site config: flow type %d has no name", ft.ID)
		}
		if _, dup := c.flowTypeByName[ft.Name]; dup {
			return nil, fmt.Errorf("site config: duplicate flow type name %s", ft.Name)
		}
		if _, dup := c.flowTypeByID[ft.ID]; dup {
			return nil, fmt.Errorf("site config: duplicate flow type id %d", ft.ID)
		}
		c.flowTypeByName[ft.Name] = ft
		c.flowTypeByID[ft.ID] = ft
	}
	return c, nil
}

// SensorID resolves a sensor name.
func (c *Config) SensorID(name string) (uint16, bool) {
	s, ok := c.sensorByName[name]
	if !ok {
		return 0, false
	}
	return s.ID, true
}

// SensorName resolves a sensor identifier. Unknown sensors render as
// their decimal form.
func (c *Config) SensorName(id uint16) string {
	if s, ok := c.sensorByID[id]; ok {
		return s.Name
	}
	return fmt.Sprintf("S%d", id)
}

// FlowTypeID resolves a flow type name.
func (c *Config) FlowTypeID(name string) (uint8, bool) {
	ft, ok := c.flowTypeByName[name]
	if !ok {
		return 0, false
	}
	return ft.ID, true
}

// FlowTypeName resolves a flow type identifier.
func (c *Config) FlowTypeName(id uint8) string {
	if ft, ok := c.flowTypeByID[id]; ok {
		return ft.Name
	}
	return fmt.Sprintf("T%d", id)
}

// Sensors returns the configured sensors in file order.
func (c *Config) Sensors() []Sensor {
	return c.sensors
}

// FlowTypes returns the configured flow types in file order.
func (c *Config) FlowTypes() []FlowType {
	return c.flowTypes
}
