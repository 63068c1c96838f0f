package main

import (
	"github.com/OpenTraceLab/OpenTraceSim/cmd/otsim/cmd"
)

func main() {
	cmd.Execute()
}
