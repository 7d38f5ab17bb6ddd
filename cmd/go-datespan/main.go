package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"fyne.io/fyne/v2/app"
	"github.com/tartampluch/go-datespan/internal/config"
	"github.com/tartampluch/go-datespan/internal/engine"
	"github.com/tartampluch/go-datespan/internal/server"
	"github.com/tartampluch/go-datespan/internal/ui"
)

// options holds the parsed command line.
type options struct {
	version  bool
	debug    bool
	headless bool
	port     string
	date     string
	until    bool
	contacts string
}

// main delegates to runMain so deferred calls (closing the log file) run
// before os.Exit.
func main() {
	os.Exit(runMain())
}

func parseFlags() options {
	var o options
	flag.BoolVar(&o.version, config.FlagVersion, false, config.FlagDescVersion)
	flag.BoolVar(&o.debug, config.FlagDebug, false, config.FlagDescDebug)
	flag.BoolVar(&o.headless, config.FlagHeadless, false, config.FlagDescHeadless)
	flag.StringVar(&o.port, config.FlagPort, "", config.FlagDescPort)
	flag.StringVar(&o.date, config.FlagDate, "", config.FlagDescDate)
	flag.BoolVar(&o.until, config.FlagUntil, false, config.FlagDescUntil)
	flag.StringVar(&o.contacts, config.FlagContacts, "", config.FlagDescContacts)
	flag.Parse()
	return o
}

// runMain manages the lifecycle and returns the process exit code.
func runMain() int {
	opts := parseFlags()

	if opts.version {
		printVersion()
		return config.ExitCodeSuccess
	}

	// The one-shot prints its answer on stdout, so logs go to stderr there.
	console := io.Writer(os.Stdout)
	if opts.date != "" {
		console = os.Stderr
	}
	if logCloser := setupLogging(opts.debug, console); logCloser != nil {
		defer func() { _ = logCloser.Close() }()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	calc := engine.NewCalculator(engine.RealClock{})

	if opts.date != "" {
		return runOneShot(ctx, calc, opts.date, opts.until, os.Stdout, os.Stderr)
	}

	logStartupInfo()

	var err error
	if opts.headless {
		err = runHeadless(ctx, calc, opts)
	} else {
		err = runDesktop(ctx, calc, opts)
	}
	if err != nil {
		slog.Error(config.ErrAppFailed,
			config.LogKeyComponent, config.CompMain,
			config.LogKeyError, err,
		)
		return config.ExitCodeError
	}

	slog.Info(config.MsgAppStop, config.LogKeyComponent, config.CompMain)
	return config.ExitCodeSuccess
}

// runDesktop starts the fyne shell; it blocks until the main window closes.
func runDesktop(ctx context.Context, calc *engine.Calculator, opts options) error {
	a := app.NewWithID(config.AppID)
	a.Preferences().SetString(config.PrefLastRun, config.Version)

	port := opts.port
	if port == "" {
		port = a.Preferences().StringWithFallback(config.PrefServerPort, config.DefaultPort)
	}

	gui := ui.NewApp(a, ctx, server.NewServer(port, calc), calc, engine.NewHTTPFetcher())
	gui.Run()
	return nil
}

// runHeadless serves the HTTP API until ctx is cancelled. With -contacts the
// ages report of that file is published and reloaded periodically.
func runHeadless(ctx context.Context, calc *engine.Calculator, opts options) error {
	port := opts.port
	if port == "" {
		port = config.DefaultPort
	}
	srv := server.NewServer(port, calc)

	if opts.contacts != "" {
		go serveContacts(ctx, srv, &engine.AgeBook{Clock: calc.Clock}, opts.contacts)
	}

	return srv.Start(ctx)
}

func serveContacts(ctx context.Context, srv *server.Server, book *engine.AgeBook, path string) {
	log := slog.With(config.LogKeyComponent, config.CompWorker)
	cfg := engine.SourceConfig{Mode: config.SourceModeLocal, LocalPath: path}

	reload := func() {
		contacts, err := book.Load(ctx, cfg)
		if err != nil {
			log.Error(config.MsgSyncFailed, config.LogKeyError, err)
			return
		}
		if err := srv.PublishContacts(contacts); err != nil {
			log.Error(config.MsgSyncFailed, config.LogKeyError, err)
		}
	}

	reload()
	ticker := time.NewTicker(time.Duration(config.DefaultRefreshMin) * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info(config.MsgWorkerStop)
			return
		case <-ticker.C:
			reload()
		}
	}
}

func printVersion() {
	fmt.Printf(config.MsgVersionOutput,
		config.AppName,
		config.Version,
		runtime.GOOS,
		runtime.GOARCH,
	)
}

// logStartupInfo logs environment details useful for debugging.
func logStartupInfo() {
	slog.Info(config.MsgAppStarting,
		config.LogKeyComponent, config.CompMain,
		slog.Group(config.LogKeyBuild,
			slog.String(config.LogKeyApp, config.AppName),
			slog.String(config.LogKeyVersion, config.Version),
			slog.String(config.LogKeyCommit, config.Commit),
			slog.String(config.LogKeyBuilt, config.Date),
			slog.String(config.LogKeyGoVer, runtime.Version()),
		),
		slog.Group(config.LogKeyEnv,
			slog.String(config.LogKeyOS, runtime.GOOS),
			slog.String(config.LogKeyArch, runtime.GOARCH),
			slog.Int(config.LogKeyPID, os.Getpid()),
		),
	)
}

// setupLogging installs a JSON slog logger writing to console and to a log
// file in the user cache directory. The returned closer is nil when no file
// could be opened.
func setupLogging(debugMode bool, console io.Writer) io.Closer {
	writers := []io.Writer{console}
	var logFile *os.File

	if logPath, err := getLogFilePath(); err == nil {
		// O_TRUNC keeps one run per file.
		f, err := os.OpenFile(logPath, os.O_TRUNC|os.O_CREATE|os.O_WRONLY, config.FilePermUserRW)
		if err == nil {
			writers = append(writers, f)
			logFile = f
		} else {
			fmt.Fprintf(os.Stderr, config.MsgLogWarning, config.ErrLogFile, logPath, err)
		}
	}

	level := slog.LevelInfo
	if debugMode {
		level = slog.LevelDebug
	}

	logger := slog.New(slog.NewJSONHandler(io.MultiWriter(writers...), &slog.HandlerOptions{
		Level:     level,
		AddSource: debugMode,
	}))
	slog.SetDefault(logger)

	if logFile == nil {
		return nil
	}
	return logFile
}

// getLogFilePath returns the platform cache path for the log file, creating
// its directory with owner-only permissions.
func getLogFilePath() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrCacheDir, err)
	}

	appDir := filepath.Join(cacheDir, config.AppID)
	if err := os.MkdirAll(appDir, config.DirPermUserRWX); err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrCreateDir, err)
	}

	return filepath.Join(appDir, config.LogFileName), nil
}
