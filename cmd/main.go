package main

import (
	"os"

	"gamebridge.io/cmd/cli"
)

func main() {
	err := cli.Run()
	if err != nil {
		os.Exit(1)
	}
}
