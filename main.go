// main.go
//
// Minimal entry point that delegates CLI handling to the Cobra root command in cmd/root.go

package main

import (
	"github.com/wnowak10/syst/cmd"
)

func main() {
	cmd.Execute()
}
