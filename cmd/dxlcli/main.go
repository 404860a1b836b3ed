package main

import (
	"github.com/robotalks/dxl.go/pkg/cli/sh"
	"github.com/robotalks/dxl.go/pkg/env"

	_ "github.com/robotalks/dxl.go/pkg/cli/cmds/devices"
)

//go-build: CGO_ENABLED=0

func init() {
	env.SetupFlags()
}

func main() {
	sh.Main()
}
