package main

import (
	"fmt"
	"os"

	"github.com/handiism/novel-downloader/internal/config"
	"github.com/handiism/novel-downloader/internal/provider"
	"github.com/handiism/novel-downloader/internal/provider/linovelib"
	"github.com/handiism/novel-downloader/internal/tui"
)

func main() {
	settings, err := config.Load(config.DefaultPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	if err := tui.Run(settings, provider.Registry{linovelib.New()}); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
