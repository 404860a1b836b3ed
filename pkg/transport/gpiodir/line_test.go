package gpiodir

import (
	"testing"

	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
)

func TestLine(t *testing.T) {
	tests := []struct {
		activeLow bool
		tx, rx    gpio.Level
	}{
		{false, gpio.High, gpio.Low},
		{true, gpio.Low, gpio.High},
	}
	for _, test := range tests {
		pin := &gpiotest.Pin{N: "GPIO17", Num: 17, L: test.tx}
		l, err := New(pin, test.activeLow)
		require.NoError(t, err)
		require.Equal(t, test.rx, pin.Read())
		require.NoError(t, l.Assert())
		require.Equal(t, test.tx, pin.Read())
		require.NoError(t, l.Deassert())
		require.Equal(t, test.rx, pin.Read())
	}
}
