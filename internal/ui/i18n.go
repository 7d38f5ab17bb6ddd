package ui

import (
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/tartampluch/go-datespan/internal/config"
	"github.com/tartampluch/go-datespan/internal/engine"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

const (
	localeDir    = "locales"
	localePrefix = "active."
	localeSuffix = ".json"
)

// SetupI18n loads every embedded locale file and selects the preferred language.
func (app *App) SetupI18n() {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	entries, err := localeFS.ReadDir(localeDir)
	if err != nil {
		slog.Error(config.ErrLocalesAccess,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyError, err,
		)
		return
	}

	var detected []string
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, localePrefix) || !strings.HasSuffix(name, localeSuffix) {
			slog.Debug(config.MsgLocaleSkip, config.LogKeyComponent, config.CompI18n, config.LogKeyFile, name)
			continue
		}

		lang := strings.TrimSuffix(strings.TrimPrefix(name, localePrefix), localeSuffix)
		if lang == "" {
			slog.Warn(config.MsgLocaleBadName, config.LogKeyComponent, config.CompI18n, config.LogKeyFile, name)
			continue
		}

		if _, err := bundle.LoadMessageFileFS(localeFS, localeDir+"/"+name); err != nil {
			slog.Error(config.ErrLocaleLoad,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
				config.LogKeyError, err,
			)
			continue
		}
		detected = append(detected, lang)
		slog.Debug(config.MsgLocaleLoaded, config.LogKeyComponent, config.CompI18n, config.LogKeyLang, lang)
	}

	app.SupportedLanguages = detected
	app.I18nBundle = bundle
	app.UpdateLocalizer()
}

// UpdateLocalizer refreshes the translator based on the user's language preference.
func (app *App) UpdateLocalizer() {
	if app.I18nBundle == nil {
		return
	}
	lang := app.Preferences.StringWithFallback(config.PrefLanguage, config.DefaultLanguage)
	app.Localizer = i18n.NewLocalizer(app.I18nBundle, lang)
}

// GetMsg translates key, returning the key itself when no translation exists.
func (app *App) GetMsg(key string) string {
	return app.localize(key, nil)
}

func (app *App) localize(key string, data map[string]any) string {
	if app.Localizer == nil {
		return key
	}
	msg, err := app.Localizer.Localize(&i18n.LocalizeConfig{MessageID: key, TemplateData: data})
	if err != nil {
		slog.Debug(config.MsgTransMissing,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyKey, key,
			config.LogKeyError, err,
		)
		return key
	}
	return msg
}

// FormatSpan renders a full years/months/days span.
func (app *App) FormatSpan(d engine.Difference) string {
	msg := app.localize(config.TKeyFormatSpan, spanData(d))
	if msg == config.TKeyFormatSpan {
		return fmt.Sprintf(config.FallbackSpan, d.Years, d.Months, d.Days)
	}
	return msg
}

// FormatNext renders the countdown to a next birthday, which is always under a year.
func (app *App) FormatNext(d engine.Difference) string {
	msg := app.localize(config.TKeyFormatNext, spanData(d))
	if msg == config.TKeyFormatNext {
		return fmt.Sprintf(config.FallbackNext, d.Months, d.Days)
	}
	return msg
}

func spanData(d engine.Difference) map[string]any {
	return map[string]any{"Years": d.Years, "Months": d.Months, "Days": d.Days}
}

// fieldErrorKey maps an engine error code to its translation key. Direction
// violations depend on which calculator rejected the date.
func fieldErrorKey(code engine.Code, dir engine.Direction) string {
	switch code {
	case engine.CodeMissingField:
		return config.TKeyErrRequired
	case engine.CodeOutOfRange:
		return config.TKeyErrInvalid
	case engine.CodeImpossibleDate:
		return config.TKeyErrDate
	case engine.CodeDirectionViolation:
		if dir == engine.FutureOnly {
			return config.TKeyErrFuture
		}
		return config.TKeyErrPast
	}
	return ""
}

// FieldErrorText translates e, keeping the engine's English message as fallback.
func (app *App) FieldErrorText(e engine.FieldError, dir engine.Direction) string {
	key := fieldErrorKey(e.Code, dir)
	if key == "" {
		return e.Message
	}
	if msg := app.GetMsg(key); msg != key {
		return msg
	}
	return e.Message
}
