package config

import (
	"io/fs"
	"time"
)

// -----------------------------------------------------------------------------
// Build Information
// -----------------------------------------------------------------------------

// Build variables are injected via -ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// UserAgent identifies the HTTP client.
var UserAgent = "Go-Datespan/" + Version

// -----------------------------------------------------------------------------
// Application Constants
// -----------------------------------------------------------------------------

const (
	AppName           = "Go Datespan"
	AppID             = "com.github.tartampluch.go-datespan"
	KeyringService    = "com.github.tartampluch.go-datespan"
	LocalhostBindAddr = "127.0.0.1"
	LogFileName       = "app.log"
)

// -----------------------------------------------------------------------------
// Exit Codes
// -----------------------------------------------------------------------------

const (
	ExitCodeSuccess = 0
	ExitCodeError   = 1
	ExitCodeInvalid = 2 // One-shot calculation rejected the input
)

// -----------------------------------------------------------------------------
// System & File Permissions
// -----------------------------------------------------------------------------

const (
	// FilePermUserRW represents -rw------- (Read/Write for owner only).
	FilePermUserRW fs.FileMode = 0600

	// DirPermUserRWX represents drwx------ (Read/Write/Exec for owner only).
	DirPermUserRWX fs.FileMode = 0700

	// ChannelBufferSize defines the standard buffer size for internal signaling channels.
	ChannelBufferSize = 1
)

// -----------------------------------------------------------------------------
// CLI Flags & Descriptions
// -----------------------------------------------------------------------------

const (
	FlagVersion      = "version"
	FlagDebug        = "debug"
	FlagHeadless     = "headless"
	FlagPort         = "port"
	FlagDate         = "date"
	FlagUntil        = "until"
	FlagContacts     = "contacts"
	FlagDescVersion  = "Show application version and exit"
	FlagDescDebug    = "Enable debug logging to stdout"
	FlagDescHeadless = "Serve the HTTP API only, without the desktop window"
	FlagDescPort     = "HTTP API port, overriding the saved setting"
	FlagDescDate     = "Compute a single span for DD/MM/YYYY and exit"
	FlagDescUntil    = "With -date: count the time until the date instead of since"
	FlagDescContacts = "Headless mode: serve the ages report of this .vcf file"
	MsgVersionOutput = "%s version %s (%s/%s)\n"

	// One-shot output
	FormatCLISpan       = "%d years, %d months, %d days\n"
	FormatCLIFieldError = "%s: %s\n"
	CLIDateParts        = 3
	CLIDateSeparator    = "/"
)

// -----------------------------------------------------------------------------
// UI Constants & Preferences
// -----------------------------------------------------------------------------

const (
	MainWindowWidth     = 520
	MainWindowHeight    = 420
	DayDigits           = 2
	MonthDigits         = 2
	SettingsWindowWidth = 600

	// Preference Keys
	PrefCardDAVURL = "carddav_url"
	PrefUsername   = "username"
	PrefLanguage   = "language"
	PrefInterval   = "refresh_interval_min"
	PrefServerPort = "server_port"
	PrefSourceMode = "source_mode"
	PrefLocalPath  = "local_path"
	PrefLastRun    = "last_run_version"

	// ResultPlaceholder is shown in place of a number until a valid result exists.
	ResultPlaceholder = "--"
)

// SupportedLanguages defines the list of available UI languages (ISO 639-1).
var SupportedLanguages = []string{"en", "fr"}

// -----------------------------------------------------------------------------
// UI Contacts Window Constants
// -----------------------------------------------------------------------------

const (
	ContactsWinWidth  = 640
	ContactsWinHeight = 400

	// Table Column IDs
	ColIDName  = 0
	ColIDBirth = 1
	ColIDAge   = 2
	ColIDNext  = 3
	ColCount   = 4

	// Table Layout
	ColWidthName  = 220
	ColWidthBirth = 110
	ColWidthAge   = 150
	ColWidthNext  = 140

	DateFormatDisplay = "2006-01-02"
	TablePlaceholder  = "Cell Content"
	LogMsgOpenWin     = "Opening Contacts Window"
	LogMsgSorted      = "Contacts sorted"

	SortIconAsc  = " ▲"
	SortIconDesc = " ▼"
)

// -----------------------------------------------------------------------------
// Translation Keys (I18n)
// -----------------------------------------------------------------------------

const (
	TKeyWinTitle       = "win_title"
	TKeyWinSettings    = "win_settings_title"
	TKeyWinContacts    = "win_contacts_title"
	TKeyTabAge         = "tab_age"
	TKeyTabUntil       = "tab_until"
	TKeyLblDay         = "lbl_day"
	TKeyLblMonth       = "lbl_month"
	TKeyLblYear        = "lbl_year"
	TKeyLblYears       = "lbl_years"
	TKeyLblMonths      = "lbl_months"
	TKeyLblDays        = "lbl_days"
	TKeyBtnCalculate   = "btn_calculate"
	TKeyBtnContacts    = "btn_contacts"
	TKeyBtnSettings    = "btn_settings"
	TKeyBtnRefresh     = "btn_refresh"
	TKeyHintDay        = "hint_day"
	TKeyHintMonth      = "hint_month"
	TKeyHintYear       = "hint_year"
	TKeyModeCardDAV    = "mode_carddav"
	TKeyModeLocal      = "mode_local"
	TKeyLblLanguage    = "lbl_language"
	TKeyHelpLanguage   = "help_language"
	TKeyLblMinutes     = "lbl_minutes_suffix"
	TKeyLblRefresh     = "lbl_refresh_interval"
	TKeyHelpInterval   = "help_interval"
	TKeyLblPort        = "lbl_server_port"
	TKeyHelpPort       = "help_port"
	TKeyLblGeneral     = "lbl_general"
	TKeyBtnSave        = "btn_save"
	TKeyBtnCancel      = "btn_cancel"
	TKeyLblFooter      = "lbl_footer"
	TKeyBtnBrowse      = "btn_browse"
	TKeyLblURL         = "lbl_url"
	TKeyHelpURL        = "help_carddav_url"
	TKeyLblUser        = "lbl_user"
	TKeyLblPass        = "lbl_pass"
	TKeyLblSource      = "lbl_source"
	TKeyNotifSyncError = "notif_err_sync"
	TKeyNotifSyncDone  = "notif_sync_done"
	TKeyBtnExport      = "btn_export"
	TKeyEventSummary   = "event_summary"
	TKeyLblResult      = "lbl_result"

	// Column Headers & Formats
	TKeyColName    = "col_name"
	TKeyColBirth   = "col_birth"
	TKeyColAge     = "col_age"
	TKeyColNext    = "col_next"
	TKeyFormatDate = "format_date_short"
	TKeyFormatSpan = "format_span" // Requires Years, Months, Days
	TKeyFormatNext = "format_next" // Requires Months, Days

	// Field Errors (one per engine error code)
	TKeyErrRequired  = "err_required"
	TKeyErrInvalid   = "err_invalid_value"
	TKeyErrDate      = "err_invalid_date"
	TKeyErrPast      = "err_must_be_past"
	TKeyErrFuture    = "err_must_be_future"
	TKeyErrPortReq   = "err_port_required"
	TKeyErrPortNum   = "err_port_number"
	TKeyErrPortRange = "err_port_range"
)

// -----------------------------------------------------------------------------
// Default Values & Business Logic
// -----------------------------------------------------------------------------

const (
	SourceModeWeb     = "web"
	SourceModeLocal   = "local"
	DefaultPort       = "18081"
	DefaultRefreshMin = 60
	DefaultLanguage   = "en"
	DefaultLeapYear   = 2000 // Leap year fallback for dates like --02-29
	DisabledInterval  = 0

	// Coarse per-field bounds enforced before calendar validation.
	MinFieldValue = 1
	MaxDay        = 31
	MaxMonth      = 12
	MonthsPerYear = 12

	// Field names shared by the engine, the API and the UI.
	FieldDay   = "day"
	FieldMonth = "month"
	FieldYear  = "year"

	// Direction names used in logs, metrics and the API.
	DirectionPast   = "past"
	DirectionFuture = "future"
)

// -----------------------------------------------------------------------------
// Field Error Messages (User facing, English defaults)
// -----------------------------------------------------------------------------

const (
	MsgFieldRequired  = "Required field"
	MsgFieldInvalid   = "Invalid value"
	MsgFieldDate      = "Invalid date"
	MsgFieldPast      = "It must be in the past"
	MsgFieldFuture    = "It must be in the future"
	MsgFieldErrorJoin = "; "
)

// -----------------------------------------------------------------------------
// Standards: iCalendar & vCard
// -----------------------------------------------------------------------------

const (
	ICalVersion = "2.0"
	ICalProdid  = "-//Go Datespan//Engine//EN"
	ICalCalName = "Countdown"
	ICalMethod  = "PUBLISH"
	ICalScale   = "GREGORIAN"
	ICalDomain  = "godatespan"

	PropUID         = "UID"
	PropSummary     = "SUMMARY"
	PropDescription = "DESCRIPTION"
	PropDTStart     = "DTSTART"
	PropDTStamp     = "DTSTAMP"
	PropVersion     = "VERSION"
	PropProdid      = "PRODID"
	PropXWRCalName  = "X-WR-CALNAME"
	PropCalScale    = "CALSCALE"
	PropMethod      = "METHOD"

	VCardBDAY = "BDAY"
	VCardFN   = "FN"
	VCardN    = "N"

	EventSummary     = "Event"
	FormatEventUID   = "event-%s@%s"
	FormatEventDescr = "%d years, %d months, %d days to go"
	FormatEventFile  = "event-%s.ics"
)

// -----------------------------------------------------------------------------
// Data Formats, Limits & File Extensions
// -----------------------------------------------------------------------------

const (
	// Date layouts used for parsing vCard BDAY fields
	DateFormatFullDash  = "2006-01-02"
	DateFormatFullBasic = "20060102"
	DateFormatRFC3339   = time.RFC3339
	DateFormatFullT     = "2006-01-02T15:04:05Z"
	DateFormatNoYearD   = "--01-02"
	DateFormatNoYearB   = "--0102"
	DateFormatEventUID  = "20060102"

	// Limits
	MinPort = 1
	MaxPort = 65535

	// UID Generation
	UIDHashLength   = 16
	FormatHashInput = "%s|%s|%s"
	UIDSalt         = "go-datespan-v1-"

	// File Extensions
	ExtVCF   = ".vcf"
	ExtVCard = ".vcard"
)

// -----------------------------------------------------------------------------
// Network & Timeouts
// -----------------------------------------------------------------------------

const (
	HTTPTimeout         = 30 * time.Second
	ShutdownTimeout     = 5 * time.Second
	RequestTimeout      = 10 * time.Second
	ServerReadTimeout   = 10 * time.Second
	ServerWriteTimeout  = 30 * time.Second
	ServerIdleTimeout   = 60 * time.Second
	RetryAfterSeconds   = "10"
	MaxHTTPResponseSize = 256 * 1024 * 1024 // 256MB
	SchemeHTTP          = "http"
	ETagAny             = "*"
	ETagWeakPrefix      = "W/"
	ETagListSeparator   = ","
	SchemeHTTPS         = "https"
	AddrSeparator       = ":"

	RouteAge      = "/api/age"
	RouteUntil    = "/api/until"
	RouteUntilICS = "/api/until.ics"
	RouteContacts = "/api/contacts"
	RouteHealth   = "/healthz"
	RouteMetrics  = "/metrics"
	QuerySummary  = "summary"
)

// -----------------------------------------------------------------------------
// HTTP Headers & MIME Types
// -----------------------------------------------------------------------------

const (
	HeaderContentType        = "Content-Type"
	HeaderContentDisposition = "Content-Disposition"
	HeaderCacheControl       = "Cache-Control"
	HeaderETag               = "ETag"
	HeaderLastModified       = "Last-Modified"
	HeaderRetryAfter         = "Retry-After"
	HeaderXContentType       = "X-Content-Type-Options"
	HeaderUserAgent          = "User-Agent"
	HeaderIfNoneMatch        = "If-None-Match"
	HeaderRequestID          = "X-Request-ID"

	MimeJSON            = "application/json; charset=utf-8"
	MimeTextCalendar    = "text/calendar; charset=utf-8"
	MimeNoSniff         = "nosniff"
	CacheControlPrivate = "private, no-cache"

	// FormatETag expects a string argument.
	FormatETag = `"%s"`
	// FormatAttachment expects a file name.
	FormatAttachment = `attachment; filename="%s"`
)

// -----------------------------------------------------------------------------
// Error Messages (Technical/Logs)
// -----------------------------------------------------------------------------

const (
	ErrLocalPathEmpty = "configuration error: local path is empty"
	ErrWebURLEmpty    = "configuration error: web URL is empty"
	ErrFetcherMissing = "internal error: network fetcher is not initialized"
	ErrModeUnsupport  = "configuration error: unsupported source mode"
	ErrServerStartup  = "server startup failed"
	ErrServerShutdown = "server shutdown failed"
	ErrPortRequired   = "server port is required"
	ErrInvalidURL     = "invalid URL structure"
	ErrProtocol       = "unsupported protocol scheme (http/https only)"
	ErrVCardParse     = "failed to parse vCard stream"
	ErrVCardRead      = "vCard stream interrupted"
	ErrTooLarge       = "response exceeds size limit"
	ErrICalEncode     = "failed to encode iCalendar data"
	ErrJSONEncode     = "failed to encode JSON response"
	ErrDateParse      = "unable to parse date"
	ErrQueryDecode    = "failed to decode query parameters"
	ErrNotFutureDate  = "event calendar requires a date validated as future"
	ErrDirection      = "unsupported direction"
	ErrLogFile        = "failed to open log file"
	ErrCacheDir       = "could not determine user cache dir"
	ErrCreateDir      = "could not create app cache dir"
	ErrAppFailed      = "application failed unexpectedly"
	ErrWriteResp      = "failed to write response body"
	ErrLocalesAccess  = "failed to access embedded locales"
	ErrLocaleLoad     = "failed to load locale file"
	ErrCLIDateFormat  = "expected a date as DD/MM/YYYY"
	ErrPanic          = "panic recovered"
)

// -----------------------------------------------------------------------------
// HTTP Server Responses
// -----------------------------------------------------------------------------

const (
	HTTPMsgInitializing = "Contacts not loaded yet, please try again shortly."
	HTTPMsgInternalErr  = "Internal Server Error"
	HTTPMsgBadQuery     = "Malformed query string"
	HTTPMsgOK           = "ok"
)

// -----------------------------------------------------------------------------
// Fallbacks & Defaults
// -----------------------------------------------------------------------------

const (
	FallbackName = "Unknown"
	FallbackSpan = "%dy %dm %dd"
	FallbackNext = "%dm %dd"

	TitleStartupError = "Startup Error"
	TitleSyncError    = "Sync Error"

	MsgPortBusy       = "Port %s is busy or unavailable."
	MsgSyncStarted    = "Contacts reload started..."
	MsgSyncFailed     = "Contacts reload failed. Check logs."
	MsgSyncReq        = "Contacts reload requested"
	MsgSyncFinished   = "Contacts reload finished"
	MsgWorkerStart    = "Background worker started"
	MsgWorkerStop     = "Worker stopping due to context cancellation"
	MsgWorkerDisabled = "Background refresh disabled"
	MsgUpdateSync     = "Updating refresh interval"
	MsgAppStop        = "Application stopped gracefully"
	MsgCtxCancel      = "Context cancelled, shutting down UI"
	MsgSkippedCard    = "Skipping malformed vCard"
	MsgSkippedDate    = "Skipping invalid date format"
	MsgSkippedFuture  = "Skipping contact born in the future"
	MsgReportReady    = "Ages report built"
	MsgAppStarting    = "Starting application"
	MsgServerListen   = "HTTP server listening"
	MsgServerStop     = "Shutting down HTTP server..."
	MsgCacheUpdated   = "Contacts cache updated"
	MsgLocaleSkip     = "Skipping non-locale file"
	MsgLocaleBadName  = "Skipping malformed locale filename"
	MsgLocaleLoaded   = "Locale loaded successfully"
	MsgTransMissing   = "Missing translation key"
	MsgPassFail       = "Password retrieval failed (might be empty)"
	MsgLogWarning     = "Warning: %s at %s: %v\n"
	MsgCalcRejected   = "Calculation rejected"
	MsgCalcDone       = "Calculation completed"
	MsgHTTPRequest    = "http request"

	PlaceholderURL = "https://..."
)

// -----------------------------------------------------------------------------
// Metrics
// -----------------------------------------------------------------------------

const (
	MetricCalculations    = "datespan_calculations_total"
	MetricCalculationsHlp = "Total number of span calculations, labeled by direction and outcome"
	MetricRejections      = "datespan_field_errors_total"
	MetricRejectionsHlp   = "Total number of field errors reported, labeled by field and code"
	MetricLabelDirection  = "direction"
	MetricLabelOutcome    = "outcome"
	MetricLabelField      = "field"
	MetricLabelCode       = "code"
	OutcomeOK             = "ok"
	OutcomeRejected       = "rejected"
)

// -----------------------------------------------------------------------------
// Structured Logging Keys (slog)
// -----------------------------------------------------------------------------

const (
	LogKeyComponent = "component"
	LogKeyError     = "error"
	LogKeyURL       = "url"
	LogKeyStatus    = "status_code"
	LogKeyFile      = "file"
	LogKeyLang      = "lang"
	LogKeyKey       = "key"
	LogKeyPort      = "port"
	LogKeyMode      = "mode"
	LogKeyInterval  = "interval"
	LogKeyOld       = "old"
	LogKeyNew       = "new"
	LogKeyUser      = "user"
	LogKeyTotal     = "total_cards"
	LogKeyFound     = "birthdays_found"
	LogKeySkipped   = "skipped"
	LogKeySizeBytes = "size_bytes"
	LogKeyETag      = "etag"
	LogKeyManual    = "manual"
	LogKeyValue     = "value"
	LogKeyStats     = "stats"
	LogKeySortCol   = "sort_column"
	LogKeySortAsc   = "sort_asc"
	LogKeyCount     = "count"
	LogKeyName      = "name"
	LogKeyDOB       = "date_of_birth"
	LogKeyDuration  = "duration_ms"
	LogKeyDirection = "direction"
	LogKeyFields    = "fields"
	LogKeySpan      = "span"
	LogKeyMethod    = "method"
	LogKeyPath      = "path"
	LogKeyRequestID = "request_id"
	LogKeyRemote    = "remote_addr"
	LogKeyStack     = "stack"

	// Startup Info Keys
	LogKeyBuild   = "build"
	LogKeyApp     = "app"
	LogKeyVersion = "version"
	LogKeyGoVer   = "go_version"
	LogKeyCommit  = "commit"
	LogKeyBuilt   = "built_at"
	LogKeyEnv     = "env"
	LogKeyOS      = "os"
	LogKeyArch    = "arch"
	LogKeyPID     = "pid"
)

// -----------------------------------------------------------------------------
// Log Components
// -----------------------------------------------------------------------------

const (
	CompUI      = "ui"
	CompUISet   = "ui_settings"
	CompUICalc  = "ui_calculator"
	CompEngine  = "engine"
	CompServer  = "server"
	CompFetcher = "fetcher"
	CompWorker  = "worker"
	CompMain    = "main"
	CompI18n    = "i18n"
)

// -----------------------------------------------------------------------------
// UI Layout Constants
// -----------------------------------------------------------------------------

const (
	LayoutColumnsDouble = 2
	LayoutColumnsTriple = 3
)
