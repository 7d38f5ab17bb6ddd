package ui

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/tartampluch/go-datespan/internal/config"
	"github.com/tartampluch/go-datespan/internal/engine"
	"github.com/tartampluch/go-datespan/internal/server"
	"github.com/zalando/go-keyring"
)

// App holds the desktop shell: windows, preferences, translations and the
// background contacts reload.
type App struct {
	App         fyne.App
	MainWindow  fyne.Window
	Preferences fyne.Preferences
	I18nBundle  *i18n.Bundle
	Localizer   *i18n.Localizer
	Ctx         context.Context

	Server     *server.Server
	Calculator *engine.Calculator
	Book       *engine.AgeBook

	SupportedLanguages []string
	configChan         chan string

	ageForm   *calculatorForm
	untilForm *calculatorForm

	settingsWindow fyne.Window

	// Contacts State
	ContactsMut     sync.RWMutex
	Contacts        []engine.ContactAge
	contactsWindow  fyne.Window
	refreshContacts func()
}

// NewApp wires the shell to the shared calculator and the HTTP server. The
// calculator's clock also drives the contacts report.
func NewApp(a fyne.App, ctx context.Context, srv *server.Server, calc *engine.Calculator, fetcher engine.VCardFetcher) *App {
	return &App{
		App:                a,
		Preferences:        a.Preferences(),
		Ctx:                ctx,
		Server:             srv,
		Calculator:         calc,
		Book:               &engine.AgeBook{Clock: calc.Clock, Fetcher: fetcher},
		SupportedLanguages: config.SupportedLanguages,
		configChan:         make(chan string, config.ChannelBufferSize),
	}
}

// Run starts the HTTP server and the background worker, then blocks in the
// fyne event loop until the main window closes or ctx is cancelled.
func (app *App) Run() {
	app.SetupI18n()
	app.watchPreferences()

	go func() {
		if err := app.Server.Start(app.Ctx); err != nil {
			slog.Error(config.ErrServerStartup,
				config.LogKeyError, err,
				config.LogKeyComponent, config.CompUI)

			app.App.SendNotification(fyne.NewNotification(
				config.TitleStartupError,
				fmt.Sprintf(config.MsgPortBusy, app.Server.Port)))
		}
	}()

	app.MainWindow = app.App.NewWindow(app.GetMsg(config.TKeyWinTitle))
	app.MainWindow.SetMaster()
	app.MainWindow.Resize(fyne.NewSize(config.MainWindowWidth, config.MainWindowHeight))
	app.MainWindow.SetContent(app.buildMainContent())

	go app.backgroundWorker()
	go func() {
		<-app.Ctx.Done()
		slog.Info(config.MsgCtxCancel, config.LogKeyComponent, config.CompUI)
		fyne.Do(app.App.Quit)
	}()

	app.MainWindow.ShowAndRun()
}

// buildMainContent lays out the two calculators and the toolbar. It is
// rebuilt when the language changes.
func (app *App) buildMainContent() fyne.CanvasObject {
	app.ageForm = newCalculatorForm(app, engine.PastOnly)
	app.untilForm = newCalculatorForm(app, engine.FutureOnly)

	tabs := container.NewAppTabs(
		container.NewTabItem(app.GetMsg(config.TKeyTabAge), app.ageForm.content()),
		container.NewTabItem(app.GetMsg(config.TKeyTabUntil), app.untilForm.content()),
	)

	toolbar := container.NewHBox(
		widget.NewButtonWithIcon(app.GetMsg(config.TKeyBtnContacts), theme.AccountIcon(), app.ShowContactsWindow),
		widget.NewButtonWithIcon(app.GetMsg(config.TKeyBtnRefresh), theme.ViewRefreshIcon(), func() {
			go app.performSync(true)
		}),
		widget.NewButtonWithIcon(app.GetMsg(config.TKeyBtnSettings), theme.SettingsIcon(), app.ShowSettingsWindow),
	)

	return container.NewBorder(toolbar, nil, nil, nil, tabs)
}

// RefreshLabels re-renders localized text after a language change.
func (app *App) RefreshLabels() {
	if app.MainWindow == nil {
		return
	}
	app.MainWindow.SetTitle(app.GetMsg(config.TKeyWinTitle))
	app.MainWindow.SetContent(app.buildMainContent())
}

// watchPreferences wakes the worker when settings change.
func (app *App) watchPreferences() {
	app.Preferences.AddChangeListener(func() {
		select {
		case app.configChan <- config.PrefInterval:
		default:
		}
	})
}

// refreshInterval returns the reload period; zero disables periodic reloads.
func (app *App) refreshInterval() time.Duration {
	val := app.Preferences.IntWithFallback(config.PrefInterval, config.DefaultRefreshMin)
	if val <= config.DisabledInterval {
		return 0
	}
	return time.Duration(val) * time.Minute
}

// backgroundWorker reloads the contacts report on a schedule.
func (app *App) backgroundWorker() {
	log := slog.With(config.LogKeyComponent, config.CompWorker)

	app.performSync(false)

	current := app.refreshInterval()
	var ticker *time.Ticker
	var tick <-chan time.Time
	reset := func(d time.Duration) {
		if ticker != nil {
			ticker.Stop()
			ticker, tick = nil, nil
		}
		if d <= 0 {
			log.Info(config.MsgWorkerDisabled)
			return
		}
		ticker = time.NewTicker(d)
		tick = ticker.C
	}
	reset(current)
	defer func() {
		if ticker != nil {
			ticker.Stop()
		}
	}()

	log.Info(config.MsgWorkerStart, config.LogKeyInterval, current)

	for {
		select {
		case <-app.Ctx.Done():
			log.Info(config.MsgWorkerStop)
			return

		case <-app.configChan:
			if next := app.refreshInterval(); next != current {
				log.Info(config.MsgUpdateSync, config.LogKeyOld, current, config.LogKeyNew, next)
				current = next
				reset(current)
			}

		case <-tick:
			app.performSync(false)
		}
	}
}

// performSync reloads the ages report and publishes it to the window and
// the HTTP API. A failed reload keeps the previous report.
func (app *App) performSync(manual bool) {
	slog.Info(config.MsgSyncReq,
		config.LogKeyComponent, config.CompUI,
		config.LogKeyManual, manual)

	contacts, err := app.Book.Load(app.Ctx, app.loadSourceConfig())
	if err != nil {
		slog.Error(config.MsgSyncFailed, config.LogKeyError, err, config.LogKeyComponent, config.CompUI)
		if manual {
			app.App.SendNotification(fyne.NewNotification(config.TitleSyncError, app.GetMsg(config.TKeyNotifSyncError)))
		}
		return
	}

	app.ContactsMut.Lock()
	app.Contacts = contacts
	refresh := app.refreshContacts
	app.ContactsMut.Unlock()

	if err := app.Server.PublishContacts(contacts); err != nil {
		slog.Error(config.MsgSyncFailed, config.LogKeyError, err, config.LogKeyComponent, config.CompUI)
	}
	if refresh != nil {
		fyne.Do(refresh)
	}

	if manual {
		app.App.SendNotification(fyne.NewNotification(config.AppName, app.GetMsg(config.TKeyNotifSyncDone)))
	}
}

// loadSourceConfig reads the contacts source from preferences and the
// password from the OS keyring.
func (app *App) loadSourceConfig() engine.SourceConfig {
	cfg := engine.SourceConfig{
		Mode:      app.Preferences.StringWithFallback(config.PrefSourceMode, config.SourceModeLocal),
		LocalPath: app.Preferences.String(config.PrefLocalPath),
		WebURL:    app.Preferences.String(config.PrefCardDAVURL),
		WebUser:   app.Preferences.String(config.PrefUsername),
	}

	if cfg.WebUser != "" {
		if p, err := keyring.Get(config.KeyringService, cfg.WebUser); err == nil {
			cfg.WebPass = p
		} else {
			slog.Debug(config.MsgPassFail,
				config.LogKeyUser, cfg.WebUser,
				config.LogKeyError, err,
				config.LogKeyComponent, config.CompUI)
		}
	}

	return cfg
}
