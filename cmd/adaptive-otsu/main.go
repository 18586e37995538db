package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"adaptive-otsu/internal/config"
	"adaptive-otsu/internal/gui"
	"adaptive-otsu/internal/imageio"
	"adaptive-otsu/internal/logger"
	"adaptive-otsu/internal/report"
	"adaptive-otsu/internal/services"
	"adaptive-otsu/internal/shutdown"
)

const AppName = "adaptive-otsu"

type options struct {
	configPath string
	dumpConfig bool
	chartPath  string
	show       bool
}

func main() {
	var opts options
	cfg := config.Default()

	flag.StringVar(&opts.configPath, "config", "", "YAML configuration file")
	flag.BoolVar(&opts.dumpConfig, "dump-config", false, "print the effective configuration and exit")
	flag.StringVar(&opts.chartPath, "chart", "", "write the global histogram chart to this PNG file")
	flag.BoolVar(&opts.show, "show", false, "show original and result in a window")

	algorithm := flag.String("algorithm", cfg.Algorithm, "adaptive or global (one Otsu threshold for the whole image)")
	eta := flag.Float64("eta", cfg.Binarize.EtaThreshold, "separability needed to threshold a region directly")
	minSize := flag.Int("min-size", cfg.Binarize.MinRegionSize, "regions narrower or shorter than this are not split")
	maxDepth := flag.Int("max-depth", cfg.Binarize.MaxDepth, "maximum recursion depth")
	workers := flag.Int("workers", cfg.Binarize.Workers, "goroutines used for sibling regions")
	backend := flag.String("backend", cfg.Input.Backend, "image codec backend: opencv or native")
	convert := flag.Bool("convert", cfg.Input.Convert, "convert color input to luminance instead of rejecting it")
	page := flag.Int("page", cfg.Input.Page, "PDF page to render, counted from 0")
	dpi := flag.Int("dpi", cfg.Input.DPI, "PDF render resolution")
	logLevel := flag.String("log-level", cfg.Log.Level, "debug, info, warn, error or off")
	logJSON := flag.Bool("log-json", cfg.Log.JSON, "log JSON lines instead of console output")
	logRegions := flag.Bool("log-regions", cfg.Log.Regions, "log every visited region at debug level")

	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] input output\n\n", AppName)
		flag.PrintDefaults()
	}
	flag.Parse()

	if opts.configPath != "" {
		loaded, err := config.Load(opts.configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		cfg = loaded
	}

	// explicit flags win over the file
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "algorithm":
			cfg.Algorithm = *algorithm
		case "eta":
			cfg.Binarize.EtaThreshold = *eta
		case "min-size":
			cfg.Binarize.MinRegionSize = *minSize
		case "max-depth":
			cfg.Binarize.MaxDepth = *maxDepth
		case "workers":
			cfg.Binarize.Workers = *workers
		case "backend":
			cfg.Input.Backend = *backend
		case "convert":
			cfg.Input.Convert = *convert
		case "page":
			cfg.Input.Page = *page
		case "dpi":
			cfg.Input.DPI = *dpi
		case "log-level":
			cfg.Log.Level = *logLevel
		case "log-json":
			cfg.Log.JSON = *logJSON
		case "log-regions":
			cfg.Log.Regions = *logRegions
		}
	})

	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	if opts.dumpConfig {
		if err := config.Write(os.Stdout, cfg); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	if flag.NArg() != 2 {
		flag.Usage()
		os.Exit(2)
	}

	log := newLogger(cfg.Log)
	if err := run(cfg, opts, flag.Arg(0), flag.Arg(1), log); err != nil {
		log.Error(AppName, err, map[string]interface{}{"input": flag.Arg(0)})
		os.Exit(1)
	}
}

func newLogger(cfg config.LogConfig) logger.Logger {
	level, _ := logger.ParseLevel(cfg.Level)
	if cfg.JSON {
		return logger.NewJSONLogger(level)
	}
	return logger.NewConsoleLogger(level)
}

func run(cfg config.Config, opts options, input, output string, log logger.Logger) error {
	if err := imageio.ValidateOutput(output); err != nil {
		return err
	}

	sm := shutdown.NewManager(context.Background(), log)
	sm.Listen()
	defer sm.Shutdown()
	ctx := sm.Context()

	images := services.NewImageService(cfg, opts.show, log)
	processing, err := services.NewProcessingService(cfg, log)
	if err != nil {
		return err
	}

	data, err := images.LoadImage(ctx, input)
	if err != nil {
		return err
	}

	var original *image.Gray
	if opts.show {
		original = data.Buffer.Clone().Image()
	}

	result, err := processing.ProcessImage(ctx, data)
	if err != nil {
		return err
	}

	if err := images.SaveImage(ctx, output, data.Buffer); err != nil {
		return err
	}
	log.Info(AppName, "result saved", map[string]interface{}{"output": output})

	if opts.chartPath != "" {
		f, err := os.Create(opts.chartPath)
		if err != nil {
			return fmt.Errorf("failed to create chart file: %w", err)
		}
		sm.Register("chart "+opts.chartPath, f)

		title := fmt.Sprintf("%s (threshold %d, eta %.3f)", filepath.Base(input), result.Threshold, result.Eta)
		if err := report.HistogramChart(f, result.Histogram, result.Threshold, title); err != nil {
			return err
		}
	}

	if opts.show {
		gui.ShowPair(filepath.Base(input), original, data.Buffer.Image())
	}
	return nil
}
