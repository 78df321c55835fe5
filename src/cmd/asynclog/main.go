// FILE: asynclog/src/cmd/asynclog/main.go

// Command asynclog pipes stdin through the logging pipeline: every line
// becomes one log record delivered to the configured backend. Useful
// for trying out backend configuration and for shipping the output of
// other processes.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"asynclog/src/asynclog"
	"asynclog/src/internal/core"
	"asynclog/src/internal/version"

	"github.com/lixenwraith/log"
)

var logger *log.Logger

func main() {
	flagCfg, err := ParseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if flagCfg.ShowVersion {
		fmt.Println(version.String())
		os.Exit(0)
	}

	if flagCfg.ConfigFile != "" {
		os.Setenv("ASYNC_LOGGING_CONFIG_FILE", flagCfg.ConfigFile)
	}
	if flagCfg.Handler != "" {
		os.Setenv("ASYNC_LOGGING_HANDLER", flagCfg.Handler)
	}

	if err := initializeLogger(flagCfg); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer shutdownLogger()

	cfg, err := asynclog.LoadConfig()
	if err != nil {
		logger.Error("msg", "Failed to load config", "error", err)
		os.Exit(2)
	}

	hub, err := asynclog.New(cfg, logger)
	if err != nil {
		logger.Error("msg", "Failed to start logging hub", "error", err)
		os.Exit(2)
	}

	logger.Info("msg", "asynclog starting",
		"version", version.String(),
		"backend", hub.Backend())

	// Shutdown on SIGINT/SIGTERM
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	lines := make(chan string)
	go readLines(lines)

	appLog := hub.GetLogger(flagCfg.LoggerName)
	level := parseLevel(flagCfg.Level)

	running := true
	for running {
		select {
		case line, ok := <-lines:
			if !ok {
				running = false
				break
			}
			emit(appLog, level, line)
		case sig := <-sigChan:
			logger.Info("msg", "Shutdown signal received", "signal", sig.String())
			running = false
		}
	}

	drainCtx, cancel := context.WithTimeout(context.Background(),
		time.Duration(flagCfg.DrainTimeoutMS)*time.Millisecond)
	defer cancel()

	report := hub.Drain(drainCtx)
	hub.Shutdown()

	if report.Discarded > 0 {
		logger.Warn("msg", "Shutdown discarded undelivered records",
			"delivered", report.Delivered,
			"discarded", report.Discarded)
		os.Exit(1)
	}

	logger.Info("msg", "asynclog stopped", "delivered", report.Delivered)
}

func readLines(out chan<- string) {
	defer close(out)

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		out <- scanner.Text()
	}
}

func emit(l *asynclog.Logger, level core.Level, line string) {
	switch level {
	case core.LevelDebug:
		l.Debug(line)
	case core.LevelWarning:
		l.Warning(line)
	case core.LevelError:
		l.Error(line)
	case core.LevelCritical:
		l.Critical(line)
	default:
		l.Info(line)
	}
}

func parseLevel(s string) core.Level {
	level, err := core.ParseLevel(s)
	if err != nil {
		return core.LevelInfo
	}
	return level
}

// initializeLogger sets up the diagnostic logger for the command itself
func initializeLogger(flagCfg *FlagConfig) error {
	logger = log.NewLogger()

	configArgs := []string{
		"disable_file=true",
		"enable_stdout=true",
		"stdout_target=stderr",
	}
	if flagCfg.Quiet {
		configArgs = []string{
			"disable_file=true",
			"enable_stdout=false",
			"level=255",
		}
	}

	if err := logger.ApplyConfigString(configArgs...); err != nil {
		return err
	}
	return logger.Start()
}

func shutdownLogger() {
	if logger != nil {
		logger.Shutdown()
	}
}
