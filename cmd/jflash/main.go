package main

import (
	"os"

	"github.com/buckleypaul/jflash/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
