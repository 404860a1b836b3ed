// Package env builds a bus from command line flags and environment
// variables.
package env

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/golang/glog"

	"github.com/robotalks/dxl.go/pkg/dxl"
	"github.com/robotalks/dxl.go/pkg/dxl/bus"
	"github.com/robotalks/dxl.go/pkg/transport/gpiodir"
	"github.com/robotalks/dxl.go/pkg/transport/serialport"
)

// Config provides common options to open a bus.
type Config struct {
	// Port is the serial device, e.g. /dev/ttyUSB0.
	Port     string
	BaudRate int
	Protocol int
	// EchoCount is 1 when TX is looped back into RX.
	EchoCount    int
	ByteStuffing bool

	// DirPin names a GPIO driving the transceiver direction.
	// Prefix with "!" for active low.
	DirPin string
	// RTS uses the RTS line of the port for direction: "", "high" or "low"
	// as the transmitting level.
	RTS string

	// Model selects the control table: ax or x. Defaults per protocol.
	Model string

	// MQTTBrokerURL specifies the MQTT broker for the bridge.
	// e.g. mqtt://host:port/topic-prefix
	MQTTBrokerURL string
}

var defaultConfig = Config{
	Port:          "/dev/ttyUSB0",
	BaudRate:      1000000,
	Protocol:      int(dxl.Protocol2),
	MQTTBrokerURL: "mqtt://localhost:1883/dxl/",
}

// Tables are the control tables selectable by Config.Model.
var Tables = map[string]bus.Table{
	"ax": bus.AXSeries,
	"x":  bus.XSeries,
}

func init() {
	if val := os.Getenv("DXL_PORT"); val != "" {
		defaultConfig.Port = val
	}
	if val := os.Getenv("DXL_BAUD"); val != "" {
		defaultConfig.BaudRate = atoi("DXL_BAUD", val, defaultConfig.BaudRate)
	}
	if val := os.Getenv("DXL_PROTOCOL"); val != "" {
		defaultConfig.Protocol = atoi("DXL_PROTOCOL", val, defaultConfig.Protocol)
	}
	if val := os.Getenv("DXL_ECHO"); val != "" {
		defaultConfig.EchoCount = atoi("DXL_ECHO", val, defaultConfig.EchoCount)
	}
	if val := os.Getenv("DXL_DIR_PIN"); val != "" {
		defaultConfig.DirPin = val
	}
	if val := os.Getenv("DXL_RTS"); val != "" {
		defaultConfig.RTS = val
	}
	if val := os.Getenv("DXL_MODEL"); val != "" {
		defaultConfig.Model = val
	}
	if val := os.Getenv("DXL_MQTT_URL"); val != "" {
		defaultConfig.MQTTBrokerURL = val
	}
}

func atoi(name, val string, def int) int {
	n, err := strconv.Atoi(val)
	if err != nil {
		glog.Warningf("ignore %s=%q: %v", name, val, err)
		return def
	}
	return n
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Port, "port", defaultConfig.Port, "Serial port")
	flag.IntVar(&defaultConfig.BaudRate, "baud", defaultConfig.BaudRate, "Baud rate")
	flag.IntVar(&defaultConfig.Protocol, "protocol", defaultConfig.Protocol, "Protocol version: 1 or 2")
	flag.IntVar(&defaultConfig.EchoCount, "echo", defaultConfig.EchoCount, "Number of looped back packets before a reply")
	flag.BoolVar(&defaultConfig.ByteStuffing, "stuffing", defaultConfig.ByteStuffing, "Enable protocol 2 byte stuffing")
	flag.StringVar(&defaultConfig.DirPin, "dir-pin", defaultConfig.DirPin, "GPIO for direction control, prefix ! for active low")
	flag.StringVar(&defaultConfig.RTS, "rts", defaultConfig.RTS, "Use RTS for direction control, transmitting level high or low")
	flag.StringVar(&defaultConfig.Model, "model", defaultConfig.Model, "Control table: ax or x")
	flag.StringVar(&defaultConfig.MQTTBrokerURL, "mqtt", defaultConfig.MQTTBrokerURL, "MQTT broker URL")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// Version returns the validated protocol version.
func (c *Config) Version() (dxl.Version, error) {
	v := dxl.Version(c.Protocol)
	if c.Protocol < 0 || c.Protocol > 0xff || !v.IsValid() {
		return v, fmt.Errorf("%w: %d", dxl.ErrVersion, c.Protocol)
	}
	return v, nil
}

// Options returns the Controller options from config.
func (c *Config) Options() ([]dxl.Option, error) {
	v, err := c.Version()
	if err != nil {
		return nil, err
	}
	if c.EchoCount < 0 || c.EchoCount > 0xff {
		return nil, fmt.Errorf("invalid echo count %d", c.EchoCount)
	}
	if c.ByteStuffing && v != dxl.Protocol2 {
		return nil, fmt.Errorf("byte stuffing requires protocol 2")
	}
	return []dxl.Option{
		dxl.WithVersion(v),
		dxl.WithEchoCount(byte(c.EchoCount)),
		dxl.WithByteStuffing(c.ByteStuffing),
	}, nil
}

// Table returns the control table selected by Model.
func (c *Config) Table() (bus.Table, error) {
	model := strings.ToLower(c.Model)
	if model == "" {
		if c.Protocol == int(dxl.Protocol1) {
			model = "ax"
		} else {
			model = "x"
		}
	}
	table, ok := Tables[model]
	if !ok {
		return nil, fmt.Errorf("unknown model %q", c.Model)
	}
	return table, nil
}

// Env is an opened bus.
type Env struct {
	Config *Config
	Bus    *bus.Bus
	Table  bus.Table

	closers []io.Closer
}

type haltCloser struct{ l *gpiodir.Line }

func (h haltCloser) Close() error { return h.l.Halt() }

// Open opens the serial port and direction line, then builds the bus.
func (c *Config) Open() (*Env, error) {
	opts, err := c.Options()
	if err != nil {
		return nil, err
	}
	table, err := c.Table()
	if err != nil {
		return nil, err
	}
	if c.DirPin != "" && c.RTS != "" {
		return nil, fmt.Errorf("dir-pin and rts are exclusive")
	}
	port, err := serialport.Open(serialport.Config{Name: c.Port, BaudRate: c.BaudRate})
	if err != nil {
		return nil, err
	}
	e := &Env{Config: c, Table: table, closers: []io.Closer{port}}
	var dir dxl.Direction
	switch {
	case c.DirPin != "":
		name := strings.TrimPrefix(c.DirPin, "!")
		line, err := gpiodir.Open(name, name != c.DirPin)
		if err != nil {
			e.Close()
			return nil, err
		}
		e.closers = append(e.closers, haltCloser{line})
		dir = line
	case c.RTS == "high" || c.RTS == "low":
		dir = port.RTS(c.RTS == "low")
	case c.RTS != "":
		e.Close()
		return nil, fmt.Errorf("invalid rts level %q", c.RTS)
	}
	ctrl, err := dxl.NewController(port, dir, opts...)
	if err != nil {
		e.Close()
		return nil, err
	}
	e.Bus = bus.New(ctrl)
	return e, nil
}

// MustOpen opens the bus and fails on error.
func (c *Config) MustOpen() *Env {
	e, err := c.Open()
	if err != nil {
		log.Fatalln(err)
	}
	return e
}

// Close releases the port and direction line.
func (e *Env) Close() error {
	var err error
	for i := len(e.closers) - 1; i >= 0; i-- {
		if cerr := e.closers[i].Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	e.closers = nil
	return err
}
