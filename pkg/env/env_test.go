package env

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/dxl.go/pkg/dxl"
	"github.com/robotalks/dxl.go/pkg/dxl/bus"
)

func TestVersion(t *testing.T) {
	for _, test := range []struct {
		protocol int
		valid    bool
	}{
		{1, true}, {2, true}, {0, false}, {3, false}, {258, false}, {-1, false},
	} {
		c := &Config{Protocol: test.protocol}
		_, err := c.Version()
		if test.valid {
			require.NoError(t, err)
		} else {
			require.True(t, errors.Is(err, dxl.ErrVersion), test.protocol)
		}
	}
}

func TestOptions(t *testing.T) {
	c := &Config{Protocol: 1, EchoCount: 1}
	opts, err := c.Options()
	require.NoError(t, err)
	ctrl, err := dxl.NewController(nil, nil, opts...)
	require.NoError(t, err)
	require.Equal(t, dxl.Protocol1, ctrl.Version())
	require.Equal(t, byte(1), ctrl.EchoCount())

	c.ByteStuffing = true
	_, err = c.Options()
	require.Error(t, err)

	c = &Config{Protocol: 2, EchoCount: 256}
	_, err = c.Options()
	require.Error(t, err)
}

func TestTable(t *testing.T) {
	for _, test := range []struct {
		protocol int
		model    string
		table    bus.Table
	}{
		{1, "", bus.AXSeries},
		{2, "", bus.XSeries},
		{2, "AX", bus.AXSeries},
		{1, "x", bus.XSeries},
	} {
		c := &Config{Protocol: test.protocol, Model: test.model}
		table, err := c.Table()
		require.NoError(t, err)
		require.Equal(t, test.table, table)
	}
	_, err := (&Config{Model: "mx"}).Table()
	require.Error(t, err)
}

func TestNewConfigCopies(t *testing.T) {
	c := NewConfig()
	c.Port = "/dev/null"
	require.NotEqual(t, "/dev/null", Default().Port)
}

func TestOpenRejectsBadConfig(t *testing.T) {
	_, err := (&Config{Protocol: 3}).Open()
	require.True(t, errors.Is(err, dxl.ErrVersion))
	_, err = (&Config{Protocol: 2, DirPin: "GPIO17", RTS: "high"}).Open()
	require.Error(t, err)
}
