package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/handiism/novel-downloader/internal/config"
	"github.com/handiism/novel-downloader/internal/download"
	"github.com/handiism/novel-downloader/internal/progress"
	"github.com/handiism/novel-downloader/internal/provider"
	"github.com/handiism/novel-downloader/internal/provider/linovelib"
	"github.com/handiism/novel-downloader/internal/resolve"
)

func main() {
	// Command line flags
	var (
		urlFlag         = flag.String("url", "", "Novel catalog or chapter URL")
		outputFlag      = flag.String("output", "", "Output directory (overrides config)")
		configFlag      = flag.String("config", "", "Path to config file (default: user config dir)")
		cookieFlag      = flag.String("cookie", "", "Cookie string or path to a JSON cookie file")
		selectFlag      = flag.String("select", "", "Volumes to download, e.g. \"0,2-4\" (default: all)")
		interactiveFlag = flag.Bool("interactive", false, "Choose volumes interactively")
		retriesFlag     = flag.Int("retries", 0, "Maximum retries per chapter page (overrides config)")
		imagesFlag      = flag.Int("images", 0, "Maximum concurrent image downloads (overrides config)")
		noScriptFlag    = flag.Bool("no-script", false, "Do not write the pandoc conversion script")
		noBridgeFlag    = flag.Bool("no-bridge", false, "Do not walk the previous volume to repair broken links")
		verboseFlag     = flag.Bool("verbose", false, "Show verbose output")
		dryRunFlag      = flag.Bool("dry-run", false, "List volumes without downloading")
	)

	flag.Parse()

	address := *urlFlag
	if address == "" && flag.NArg() > 0 {
		address = flag.Arg(0)
	}

	if address == "" {
		fmt.Println("Novel Downloader - Download light novels as markdown")
		fmt.Println()
		fmt.Println("Usage:")
		fmt.Println("  novel-dl -url <URL> [options]")
		fmt.Println("  novel-dl <URL> [options]")
		fmt.Println()
		fmt.Println("For interactive mode, use: novel-tui")
		fmt.Println()
		flag.PrintDefaults()
		os.Exit(1)
	}

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if *verboseFlag {
		logger.SetLevel(logrus.DebugLevel)
	}

	// Load config
	path := *configFlag
	if path == "" {
		path = config.DefaultPath()
	}
	settings, err := config.Load(path)
	if err != nil {
		logger.WithError(err).Fatal("Error loading config")
	}

	// Apply flags
	if *outputFlag != "" {
		settings.OutputDir = *outputFlag
	}
	if *cookieFlag != "" {
		settings.Cookie = *cookieFlag
	}
	if *retriesFlag > 0 {
		settings.ChapterMaxRetries = *retriesFlag
	}
	if *imagesFlag > 0 {
		settings.MaxConcurrentImages = *imagesFlag
	}
	if *noScriptFlag {
		settings.WriteConversionScript = false
	}
	if *noBridgeFlag {
		settings.BridgeVolumes = false
	}

	// Handle interrupts
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Warn("Interrupted, cancelling...")
		cancel()
	}()

	registry := provider.Registry{linovelib.New()}
	manager := download.NewManager(settings, registry, progress.Logrus(logger))

	if err := manager.Initialize(ctx, address); err != nil {
		exit(logger, err, "Error initializing")
	}

	if *dryRunFlag {
		for i, name := range manager.WorkNames() {
			fmt.Printf("%3d. %s\n", i, name)
		}
		return
	}

	var selection []int
	if *interactiveFlag {
		selection, err = chooseWorks(manager.WorkNames())
	} else {
		selection, err = download.ParseSelection(*selectFlag, len(manager.Works()))
	}
	if err != nil {
		logger.WithError(err).Fatal("Invalid selection")
	}

	if err := manager.Download(ctx, selection); err != nil {
		exit(logger, err, "Error during download")
	}

	p := manager.GetProgress()
	logger.WithFields(logrus.Fields{
		"chapters": fmt.Sprintf("%d/%d", p.ChaptersDone, p.ChaptersTotal),
		"images":   fmt.Sprintf("%d/%d", p.ImagesDone, p.ImagesTotal),
		"mb":       fmt.Sprintf("%.2f", float64(p.BytesReceived)/1024/1024),
	}).Info("Complete")
}

// exit terminates the process, with status 130 when err came from an
// interrupt.
func exit(logger *logrus.Logger, err error, msg string) {
	if resolve.IsCancellation(err) {
		logger.Warn("Download cancelled.")
		os.Exit(130)
	}
	logger.WithError(err).Error(msg)
	os.Exit(1)
}
