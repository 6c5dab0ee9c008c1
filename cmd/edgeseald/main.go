package main

import (
	"os"

	"github.com/edgeseal/transit-go/cmd/edgeseald/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
