package main

import (
	"os"

	"github.com/avery-ling/task-tracker/cmd/tracker/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
