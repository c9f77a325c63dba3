package main

import (
	"os"

	"github.com/getajob/jobdb/cmd/jobdb/cmd"
)

func main() {
	if err := cmd.Run(); err != nil {
		os.Exit(1)
	}
}
