package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"slate/internal/console"
	"slate/internal/util"
	"syscall"
	"time"
)

var (
	// Version is stamped at build time with -ldflags.
	Version   = "dev"
	BuildDate = "unknown"
	Commit    = "unknown"
	help      bool
	version   bool
	// logging
	logLevel string
	logFile  string
	// config vars
	configFile    string
	port          int
	capacity      int
	readChunk     int
	poolGrow      int
	frameInterval time.Duration
	supportScript string
	mainScript    string
	frameEntry    string
)

func init() {
	flag.BoolVar(&help, "help", false, "Display help information and exit")
	flag.BoolVar(&help, "h", false, "Display help information and exit")
	flag.BoolVar(&version, "version", false, "Display version information and exit")
	flag.BoolVar(&version, "v", false, "Display version information and exit")
	// console config
	flag.StringVar(&configFile, "config", "", "Read settings from a TOML file")
	flag.IntVar(&port, "port", util.DefaultPort, "TCP port to listen on (0 picks a free port)")
	flag.IntVar(&capacity, "capacity", util.DefaultCapacity, "Maximum simultaneous client connections")
	flag.IntVar(&readChunk, "read-chunk", util.DefaultReadChunk, "Bytes requested per socket read")
	flag.IntVar(&poolGrow, "pool-grow", util.DefaultPoolGrow, "vec2 records added each time the pool grows")
	flag.DurationVar(&frameInterval, "frame-interval", util.DefaultFrameInterval, "Time between ticks (0 runs free)")
	flag.StringVar(&supportScript, "support-script", util.DefaultSupportScript, "Printing support script loaded first")
	flag.StringVar(&mainScript, "main-script", util.DefaultMainScript, "Application script loaded second")
	flag.StringVar(&frameEntry, "frame-entry", util.DefaultFrameEntry, "Procedure called once per tick")
	// log config
	flag.StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	flag.StringVar(&logFile, "log-file", "", "Log file path (if not set, logs to stderr)")
}

func main() {

	flag.Parse()

	loggerOptions := &slog.HandlerOptions{
		AddSource: false,
		Level:     logLevelFromString(logLevel),
	}
	logWriter := configureLogWriter()
	defaultLogger := slog.New(slog.NewJSONHandler(logWriter, loggerOptions))
	slog.SetDefault(defaultLogger)

	if version {
		printVersion()
		return
	}

	if help {
		printHelp()
		return
	}

	config, err := loadConfiguration()
	if err != nil {
		slog.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}

	c, err := console.New(config, os.Stdout, os.Stderr)
	if err != nil {
		slog.Error("failed to start console", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runErr := c.Run(ctx)
	if err := c.Close(); err != nil {
		slog.Warn("failed to close console", slog.Any("error", err))
	}
	if runErr != nil {
		slog.Error("console stopped", slog.Any("error", runErr))
		os.Exit(1)
	}
}

// loadConfiguration layers the defaults, the -config file and the flags
// given on the command line, in that order.
func loadConfiguration() (util.Configuration, error) {
	config := util.DefaultConfiguration()
	config.Version = Version
	config.BuildDate = BuildDate
	config.Commit = Commit

	if configFile != "" {
		if err := config.LoadFile(configFile); err != nil {
			return config, err
		}
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "port":
			config.Port = port
		case "capacity":
			config.Capacity = capacity
		case "read-chunk":
			config.ReadChunk = readChunk
		case "pool-grow":
			config.PoolGrow = poolGrow
		case "frame-interval":
			config.FrameInterval = frameInterval
		case "support-script":
			config.SupportScript = supportScript
		case "main-script":
			config.MainScript = mainScript
		case "frame-entry":
			config.FrameEntry = frameEntry
		}
	})
	return config, config.Validate()
}

func configureLogWriter() *os.File {
	var logWriter *os.File
	var err error
	if logFile != "" {
		// Create parent directories if they don't exist
		if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "failed to create log directory for '%s': %v; falling back to stderr\n", logFile, err)
			return os.Stderr
		}
		logWriter, err = os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to open log file '%s': %v; falling back to stderr\n", logFile, err)
			logWriter = os.Stderr
		}
	} else {
		logWriter = os.Stderr
	}
	return logWriter
}

func printVersion() {

	fmt.Printf("slate version 'v%s' %s %s\n", Version, BuildDate, Commit)
}

func printHelp() {
	fmt.Printf(`Usage: slate [options]

Options:
  -config <path>           Read settings from a TOML file. Flags override it.
  -port <n>                TCP port to listen on. Default is %d.
  -capacity <n>            Maximum simultaneous clients. Default is %d.
  -read-chunk <n>          Bytes per socket read. Default is %d.
  -pool-grow <n>           vec2 records added per pool growth. Default is %d.
  -frame-interval <d>      Time between ticks, 0 to run free. Default is %s.
  -support-script <path>   Printing support script. Default is '%s'.
  -main-script <path>      Application script. Default is '%s'.
  -frame-entry <name>      Procedure called once per tick. Default is '%s'.
  -help                    Display this help information and exit.
  -version                 Display version information and exit.
  -log-level <level>       Set the log level: debug, info, warn, error. Default is 'info'.
  -log-file <path>         Specify a log file to write logs. Default is stderr.

Details:
Slate is an interactive scripting console served over TCP. Connect with
any line-oriented client and type expressions at the prompt; everything
received in one read cycle is evaluated as a single request.

Examples:
  slate -port 7000                Listen on port 7000
  slate -config slate.toml        Start with settings from slate.toml
  nc localhost 5555               Connect to a running console

Version Information:
  Version:    %s
  Build Date: %s
  Commit:     %s
`, util.DefaultPort, util.DefaultCapacity, util.DefaultReadChunk, util.DefaultPoolGrow,
		util.DefaultFrameInterval, util.DefaultSupportScript, util.DefaultMainScript, util.DefaultFrameEntry,
		Version, BuildDate, Commit)
}

func logLevelFromString(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelError
	}
}
