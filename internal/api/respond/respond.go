// Package respond writes the API's JSON bodies: cached snapshot responses
// with ETags, uncached status responses and the error envelope.
package respond

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// ErrorResponse is the standard error shape for all API errors.
type ErrorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Detail  string `json:"detail,omitempty"`
	} `json:"error"`
}

// WriteJSON writes encoded JSON bytes with cache and ETag headers.
func WriteJSON(w http.ResponseWriter, data []byte, etag string, ttl time.Duration, cacheHit bool) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("ETag", etag)
	w.Header().Set("Vary", "Accept-Encoding")
	setCacheHeaders(w, ttl, cacheHit)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// WriteNotModified sends a 304 with the matching ETag.
func WriteNotModified(w http.ResponseWriter, etag string) {
	w.Header().Set("ETag", etag)
	w.WriteHeader(http.StatusNotModified)
}

// WriteError sends a structured JSON error response.
func WriteError(w http.ResponseWriter, status int, code, message string) {
	WriteErrorDetail(w, status, code, message, "")
}

// WriteErrorDetail sends a structured error with additional detail.
func WriteErrorDetail(w http.ResponseWriter, status int, code, message, detail string) {
	resp := ErrorResponse{}
	resp.Error.Code = code
	resp.Error.Message = message
	resp.Error.Detail = detail
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", noStore)
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}

// WriteUncached marshals v and writes it outside the snapshot cache. The
// root info and /health endpoints use it since they report live state.
func WriteUncached(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", noStore)
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

const noStore = "no-cache, no-store, must-revalidate"

// setCacheHeaders marks snapshot responses public for ttl. A ttl under one
// second disables client caching.
func setCacheHeaders(w http.ResponseWriter, ttl time.Duration, cacheHit bool) {
	if cacheHit {
		w.Header().Set("X-Cache", "HIT")
	} else {
		w.Header().Set("X-Cache", "MISS")
	}
	maxAge := int(ttl.Seconds())
	if maxAge <= 0 {
		w.Header().Set("Cache-Control", noStore)
		return
	}
	w.Header().Set("Cache-Control",
		fmt.Sprintf("public, max-age=%d, stale-while-revalidate=%d", maxAge, maxAge/2))
}
