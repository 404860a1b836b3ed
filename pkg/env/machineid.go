package env

import (
	"github.com/denisbrodbeck/machineid"
)

// ClientID returns an identifier of this machine, stable across runs and
// not exposing the raw machine id.
func ClientID() string {
	id, err := machineid.ProtectedID("dxl")
	if err != nil {
		panic(err)
	}
	return "dxl-" + id[:12]
}
