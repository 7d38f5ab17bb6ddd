package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/schema"
	"github.com/tartampluch/go-datespan/internal/config"
	"github.com/tartampluch/go-datespan/internal/engine"
)

var decoder = func() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	return d
}()

// dateQuery carries the raw field values; parsing happens in the engine so
// every shell reports the same field errors.
type dateQuery struct {
	Day   string `schema:"day"`
	Month string `schema:"month"`
	Year  string `schema:"year"`
}

// SpanResponse is the body of a successful /api/age or /api/until call.
type SpanResponse struct {
	Years     int    `json:"years"`
	Months    int    `json:"months"`
	Days      int    `json:"days"`
	Direction string `json:"direction"`
	Reference string `json:"reference"`
	Today     string `json:"today"`
}

// ErrorResponse is the body of a rejected submission.
type ErrorResponse struct {
	Errors engine.FieldErrors `json:"errors,omitempty"`
	Error  string             `json:"error,omitempty"`
}

// HealthResponse is the body of /healthz.
type HealthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	Contacts bool   `json:"contacts_loaded"`
}

func (s *Server) handleSpan(dir engine.Direction) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, ok := s.submit(w, r, dir)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, SpanResponse{
			Years:     res.Span.Years,
			Months:    res.Span.Months,
			Days:      res.Span.Days,
			Direction: dir.String(),
			Reference: res.Reference.String(),
			Today:     res.Today.Format(time.DateOnly),
		})
	}
}

func (s *Server) handleUntilICS(w http.ResponseWriter, r *http.Request) {
	res, ok := s.submit(w, r, engine.FutureOnly)
	if !ok {
		return
	}

	data, err := engine.EventCalendar(res.Reference, res.Today, r.URL.Query().Get(config.QuerySummary))
	if err != nil {
		slog.Error(config.ErrICalEncode,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyRequestID, GetRequestID(r.Context()),
			config.LogKeyError, err)
		http.Error(w, config.HTTPMsgInternalErr, http.StatusInternalServerError)
		return
	}

	etag := etagFor(data)
	w.Header().Set(config.HeaderContentType, config.MimeTextCalendar)
	w.Header().Set(config.HeaderXContentType, config.MimeNoSniff)
	w.Header().Set(config.HeaderCacheControl, config.CacheControlPrivate)
	w.Header().Set(config.HeaderContentDisposition,
		fmt.Sprintf(config.FormatAttachment, fmt.Sprintf(config.FormatEventFile, res.Reference.String())))
	w.Header().Set(config.HeaderETag, etag)

	if notModified(w, r, etag) {
		return
	}
	writeBody(w, data)
}

func (s *Server) handleContacts(w http.ResponseWriter, r *http.Request) {
	item := s.contacts.Load()
	if item == nil {
		w.Header().Set(config.HeaderRetryAfter, config.RetryAfterSeconds)
		writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: config.HTTPMsgInitializing})
		return
	}

	w.Header().Set(config.HeaderContentType, config.MimeJSON)
	w.Header().Set(config.HeaderXContentType, config.MimeNoSniff)
	w.Header().Set(config.HeaderCacheControl, config.CacheControlPrivate)
	w.Header().Set(config.HeaderETag, item.etag)
	w.Header().Set(config.HeaderLastModified, item.lastModified)

	if notModified(w, r, item.etag) {
		return
	}
	writeBody(w, item.data)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:   config.HTTPMsgOK,
		Version:  config.Version,
		Contacts: s.contacts.Load() != nil,
	})
}

// submit decodes the query and runs the calculation. On failure it has
// already written the response.
func (s *Server) submit(w http.ResponseWriter, r *http.Request, dir engine.Direction) (engine.Result, bool) {
	var q dateQuery
	if err := decoder.Decode(&q, r.URL.Query()); err != nil {
		slog.Debug(config.ErrQueryDecode, config.LogKeyComponent, config.CompServer, config.LogKeyError, err)
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: config.HTTPMsgBadQuery})
		return engine.Result{}, false
	}

	res, err := s.calc.SubmitFields(r.Context(), q.Day, q.Month, q.Year, dir)
	if err == nil {
		recordSuccess(dir)
		return res, true
	}

	if fe, ok := engine.AsFieldErrors(err); ok {
		recordRejection(dir, fe)
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Errors: fe})
		return engine.Result{}, false
	}

	slog.Error(config.HTTPMsgInternalErr,
		config.LogKeyComponent, config.CompServer,
		config.LogKeyRequestID, GetRequestID(r.Context()),
		config.LogKeyError, err)
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: config.HTTPMsgInternalErr})
	return engine.Result{}, false
}
