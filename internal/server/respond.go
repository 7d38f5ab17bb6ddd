package server

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/tartampluch/go-datespan/internal/config"
)

// writeJSON encodes body before touching the headers, so an encoding failure
// can still be reported as a 500.
func writeJSON(w http.ResponseWriter, status int, body any) {
	data, err := sonic.Marshal(body)
	if err != nil {
		slog.Error(config.ErrJSONEncode, config.LogKeyComponent, config.CompServer, config.LogKeyError, err)
		http.Error(w, config.HTTPMsgInternalErr, http.StatusInternalServerError)
		return
	}

	w.Header().Set(config.HeaderContentType, config.MimeJSON)
	w.Header().Set(config.HeaderXContentType, config.MimeNoSniff)
	w.WriteHeader(status)
	writeBody(w, data)
}

func writeBody(w http.ResponseWriter, data []byte) {
	if _, err := w.Write(data); err != nil {
		slog.Error(config.ErrWriteResp, config.LogKeyComponent, config.CompServer, config.LogKeyError, err)
	}
}

// etagFor returns a strong ETag derived from the payload.
func etagFor(data []byte) string {
	hash := sha256.Sum256(data)
	return fmt.Sprintf(config.FormatETag, hex.EncodeToString(hash[:]))
}

// notModified answers 304 when If-None-Match names etag, using the weak
// comparison of RFC 9110: lists, "*" and W/ prefixes all match.
func notModified(w http.ResponseWriter, r *http.Request, etag string) bool {
	if !etagMatches(r.Header.Values(config.HeaderIfNoneMatch), etag) {
		return false
	}
	w.WriteHeader(http.StatusNotModified)
	return true
}

func etagMatches(headers []string, etag string) bool {
	want := strings.TrimPrefix(etag, config.ETagWeakPrefix)
	for _, h := range headers {
		for _, candidate := range strings.Split(h, config.ETagListSeparator) {
			candidate = strings.TrimSpace(candidate)
			if candidate == config.ETagAny {
				return true
			}
			if strings.TrimPrefix(candidate, config.ETagWeakPrefix) == want {
				return true
			}
		}
	}
	return false
}
