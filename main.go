package main

import (
	"os"

	"vela/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
