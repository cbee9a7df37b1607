package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/lockedloop/tempus-fugit/internal/di"
	"github.com/lockedloop/tempus-fugit/internal/structures"
)

func main() {
	flags := &structures.CliFlags{}
	flag.StringVar(&flags.ConfigPath, "config", "config.yaml", "path to the yaml config file")
	flag.BoolVar(&flags.DebugMode, "debug", false, "mirror logs to stderr")
	flag.Parse()

	if _, err := di.InitApp(flags); err != nil {
		fmt.Fprintf(os.Stderr, "tempus-fugit: %s\n", err)
		os.Exit(1)
	}
}
