package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/defaultxr/multiplicative/internal/config"
	"github.com/defaultxr/multiplicative/internal/console"
	"github.com/defaultxr/multiplicative/internal/core"
	"github.com/defaultxr/multiplicative/internal/extension"
	"github.com/defaultxr/multiplicative/internal/history"
	"github.com/defaultxr/multiplicative/internal/lisp"
	"github.com/defaultxr/multiplicative/internal/mpv"
)

var BUILD_VERSION = "dev"

var socketFlag = flag.String("socket", "", "path to the mpv IPC socket (overrides the config file)")
var configFlag = flag.String("config", "", "path to the config file")

var helpFlag = flag.Bool("h", false, "display help information")
var versionFlag = flag.Bool("ver", false, "display build version")

const helpText = `multiplicative - an mpv companion with an embedded Lisp console

USAGE:
  multiplicative [options]

Connects to a running mpv instance over its JSON IPC socket (start mpv with
--input-ipc-server) and provides an interactive evaluation console plus
clipboard, playlist, screenshot, history and screensaver conveniences,
bound to keys configured in ~/.multiplicative/config.yaml.

OPTIONS:
`

func main() {
	flag.Parse()

	if *versionFlag {
		fmt.Println(BUILD_VERSION)
		return
	}

	if *helpFlag {
		fmt.Print(helpText)
		flag.PrintDefaults()
		return
	}

	cfg, err := initializeConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := initializeLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync() // Flush any buffered log entries

	logger.Info("-------- new multiplicative session --------",
		zap.String("version", BUILD_VERSION),
		zap.String("socket", cfg.SocketPath),
	)

	if err := run(cfg, logger); err != nil {
		logger.Error("unhandled error", zap.Error(err))
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	client, err := mpv.Dial(cfg.SocketPath, logger)
	if err != nil {
		return err
	}
	defer client.Close()

	historyManager, err := initializeHistoryManager(cfg)
	if err != nil {
		return err
	}

	controller := initializeConsole(client, logger)
	plugin := extension.New(client, cfg, controller, historyManager, logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	return plugin.Run(ctx)
}

// initializeConsole builds the console stack: the shared evaluation
// environment with the player bindings, the bridge running it, and the
// controller driving mpv's text input.
func initializeConsole(client *mpv.Client, logger *zap.Logger) *console.Controller {
	env := lisp.NewStandardEnv()
	extension.RegisterHostBindings(env, client)

	host := mpv.NewTextInput(client, logger)
	bridge := console.NewBridge(env, logger)
	sink := console.NewSink(host, logger)
	return console.NewController(host, bridge, sink, logger)
}

func initializeConfig() (*config.Config, error) {
	path := *configFlag
	if path == "" {
		path = core.ConfigFile()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if *socketFlag != "" {
		cfg.SocketPath = *socketFlag
	}
	return cfg, nil
}

func initializeLogger(cfg *config.Config) (*zap.Logger, error) {
	logLevel, err := zap.ParseAtomicLevel(cfg.LogLevel)
	if err != nil {
		logLevel = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	if BUILD_VERSION == "dev" {
		logLevel = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	loggerConfig := zap.NewProductionConfig()
	loggerConfig.Level = logLevel
	loggerConfig.OutputPaths = []string{
		core.LogFile(),
	}

	// Logs only go to file; stdout would interfere with nothing here, but
	// the process usually runs detached from a terminal.
	// Use `tail -f ~/.multiplicative/multiplicative.log` to monitor logs.

	return loggerConfig.Build()
}

func initializeHistoryManager(cfg *config.Config) (*history.HistoryManager, error) {
	if !cfg.History.Enabled {
		return nil, nil
	}
	return history.NewHistoryManager(core.HistoryFile())
}
