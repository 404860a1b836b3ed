// Package gpiodir drives the transceiver direction with a GPIO pin.
package gpiodir

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// Line is a direction line on a GPIO output.
type Line struct {
	pin    gpio.PinOut
	active gpio.Level
}

// New creates a Line on pin and drives it to the receiving level.
func New(pin gpio.PinOut, activeLow bool) (*Line, error) {
	l := &Line{pin: pin, active: gpio.Level(!activeLow)}
	if err := l.Deassert(); err != nil {
		return nil, fmt.Errorf("init %s: %w", pin, err)
	}
	return l, nil
}

// Open initializes the host drivers and opens the pin by name,
// e.g. GPIO17.
func Open(name string, activeLow bool) (*Line, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("host init: %w", err)
	}
	pin := gpioreg.ByName(name)
	if pin == nil {
		return nil, fmt.Errorf("unknown pin %q", name)
	}
	return New(pin, activeLow)
}

// Assert switches the transceiver to transmit.
func (l *Line) Assert() error {
	return l.pin.Out(l.active)
}

// Deassert switches the transceiver to receive.
func (l *Line) Deassert() error {
	return l.pin.Out(!l.active)
}

// Halt releases the pin.
func (l *Line) Halt() error {
	return l.pin.Halt()
}
