package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"scalespace/internal/logger"
	"scalespace/pkg/config"
	"scalespace/pkg/imageio"
	"scalespace/pkg/report"
	"scalespace/pkg/sift"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

// run executes the command line and returns the process exit code: 0 on
// success, otherwise the negated detector status (1 = error, 2 = i/o,
// 3 = parameter).
func run(args []string, stderr io.Writer) int {
	fs := flag.NewFlagSet("scalespace", flag.ContinueOnError)
	fs.SetOutput(stderr)

	// Parse command line arguments
	inputPath := fs.String("input", "", "Grayscale or color image to build the scale space of")
	configPath := fs.String("config", "scalespace.yaml", "YAML configuration file (defaults are used if missing)")
	numOctaves := fs.Int("octaves", 0, "Number of octaves (overrides config)")
	levels := fs.Int("levels", 0, "Levels per octave (overrides config)")
	minOctave := fs.Int("min-octave", 0, "Index of the first octave (overrides config)")
	workers := fs.Int("workers", 0, "Goroutines per blur pass (overrides config)")
	saveLevels := fs.Bool("save-levels", false, "Write every level as a 16-bit PNG (overrides config)")
	levelsDir := fs.String("levels-dir", "", "Directory for level images (overrides config)")
	reportPath := fs.String("report", "", "Write a YAML level report to this path (overrides config)")
	logLevel := fs.String("log-level", "", "Log level: debug, info, warn, error (overrides config)")
	writeConfig := fs.String("write-config", "", "Write the default configuration to this path and exit")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return -int(sift.StatusErrorParameter)
	}

	if *writeConfig != "" {
		if err := config.CreateDefaultConfigFile(*writeConfig); err != nil {
			fmt.Fprintf(stderr, "Failed to write configuration: %v\n", err)
			return -int(sift.StatusErrorIO)
		}
		fmt.Fprintf(stderr, "Default configuration written to %s\n", *writeConfig)
		return 0
	}

	// Validate inputs
	if *inputPath == "" {
		fs.Usage()
		return -int(sift.StatusErrorParameter)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to load configuration: %v\n", err)
		return -int(sift.StatusErrorParameter)
	}

	// Flags that were given explicitly win over the configuration file
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "octaves":
			cfg.Detector.NumOctaves = *numOctaves
		case "levels":
			cfg.Detector.LevelsPerOctave = *levels
		case "min-octave":
			cfg.Detector.MinOctave = *minOctave
		case "workers":
			cfg.Blur.Workers = *workers
		case "save-levels":
			cfg.Output.SaveLevels = *saveLevels
		case "levels-dir":
			cfg.Output.LevelsDir = *levelsDir
		case "report":
			cfg.Output.ReportFile = *reportPath
		case "log-level":
			cfg.Logging.Level = *logLevel
		}
	})

	level := logger.ParseLevel(cfg.Logging.Level)
	if cfg.Output.Verbose && level > zerolog.DebugLevel {
		level = zerolog.DebugLevel
	}
	var log *logger.Logger
	if cfg.Logging.JSON {
		log = logger.New(stderr, level)
	} else {
		log = logger.NewConsole(stderr, level)
	}

	status := process(cfg, *inputPath, log)
	return -int(status)
}

// process loads the input, builds its scale space and writes the requested
// outputs.
func process(cfg *config.Config, inputPath string, log *logger.Logger) sift.Status {
	detector, err := sift.NewFromConfig(cfg, sift.WithLogger(log.Component("sift")))
	if err != nil {
		log.Error("cli", err, nil)
		return sift.StatusOf(err)
	}

	schedule := detector.Schedule()
	log.Debug("cli", "detector configured", map[string]interface{}{
		"octaves":         detector.NumOctaves(),
		"levelsPerOctave": detector.LevelsPerOctave(),
		"sigma0":          detector.Sigma0(),
		"sigmaNominal":    detector.SigmaNominal(),
		"k":               detector.K(),
		"topSigma":        schedule.Absolute(detector.MinOctave()+detector.NumOctaves()-1, detector.NumLevels()-1),
	})

	img, err := imageio.Load(inputPath)
	if err != nil {
		log.Error("cli", err, map[string]interface{}{"input": inputPath})
		return sift.StatusOf(err)
	}
	rows, cols := img.Dims()
	log.Info("cli", "input loaded", map[string]interface{}{
		"input":  inputPath,
		"width":  cols,
		"height": rows,
	})

	startTime := time.Now()
	pyramid, err := detector.Run(img)
	if err != nil {
		log.Error("cli", err, map[string]interface{}{"status": sift.StatusOf(err).String()})
		return sift.StatusOf(err)
	}
	if built := len(pyramid.Octaves); built < detector.NumOctaves() {
		log.Warning("cli", "fewer octaves than requested", map[string]interface{}{
			"built":     built,
			"requested": detector.NumOctaves(),
		})
	}
	log.Info("cli", "scale space completed", map[string]interface{}{
		"octaves":  len(pyramid.Octaves),
		"levels":   pyramid.NumLevels(),
		"duration": time.Since(startTime).String(),
	})

	summary := report.Summarize(pyramid)
	for _, row := range summary.Levels {
		log.Info("report", "level", map[string]interface{}{
			"octave": row.Octave,
			"level":  row.Level,
			"sigma":  row.Sigma,
			"width":  row.Width,
			"height": row.Height,
			"mean":   row.Mean,
			"stdDev": row.StdDev,
		})
	}

	if cfg.Output.ReportFile != "" {
		if err := summary.WriteYAML(cfg.Output.ReportFile); err != nil {
			log.Error("cli", err, map[string]interface{}{"report": cfg.Output.ReportFile})
			return sift.StatusOf(err)
		}
		log.Info("cli", "report written", map[string]interface{}{"report": cfg.Output.ReportFile})
	}

	if cfg.Output.SaveLevels {
		paths, err := imageio.SavePyramid(pyramid, cfg.Output.LevelsDir)
		if err != nil {
			log.Error("cli", err, map[string]interface{}{"dir": cfg.Output.LevelsDir})
			return sift.StatusOf(err)
		}
		log.Info("cli", "levels written", map[string]interface{}{
			"dir":   cfg.Output.LevelsDir,
			"files": len(paths),
		})
	}

	return sift.StatusOK
}
