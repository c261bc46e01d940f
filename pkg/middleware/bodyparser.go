package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/shashiranjanraj/sampleapp/pkg/fault"
)

// DefaultBodyLimit caps request bodies at 5 MB.
const DefaultBodyLimit int64 = 5 << 20

type bodyKey struct{}

// BodyParser caps every request body at limit bytes. JSON bodies are read
// eagerly and checked for well-formedness, so handlers can rely on
// JSONBody/DecodeJSON. Oversized bodies become a 413 and malformed JSON a
// 400, both through the fault boundary.
func BodyParser(limit int64) func(http.Handler) http.Handler {
	if limit <= 0 {
		limit = DefaultBodyLimit
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body == nil || r.Body == http.NoBody {
				next.ServeHTTP(w, r)
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, limit)
			if !isJSON(r) {
				next.ServeHTTP(w, r)
				return
			}

			raw, err := io.ReadAll(r.Body)
			if err != nil {
				var tooLarge *http.MaxBytesError
				if errors.As(err, &tooLarge) {
					fault.Pass(w, r, err)
					return
				}
				fault.Pass(w, r, fault.Wrap(http.StatusBadRequest, "could not read request body", err))
				return
			}
			if len(bytes.TrimSpace(raw)) > 0 && !json.Valid(raw) {
				fault.Pass(w, r, fault.BadRequest("malformed JSON body"))
				return
			}

			r.Body = io.NopCloser(bytes.NewReader(raw))
			ctx := context.WithValue(r.Context(), bodyKey{}, json.RawMessage(raw))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func isJSON(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

// JSONBody returns the JSON body captured by BodyParser.
func JSONBody(r *http.Request) (json.RawMessage, bool) {
	raw, ok := r.Context().Value(bodyKey{}).(json.RawMessage)
	return raw, ok
}

// DecodeJSON unmarshals the request body into dest. It prefers the body
// captured by BodyParser and falls back to streaming r.Body.
func DecodeJSON(r *http.Request, dest any) error {
	if raw, ok := JSONBody(r); ok {
		if len(bytes.TrimSpace(raw)) == 0 {
			return fault.BadRequest("request body is empty")
		}
		if err := json.Unmarshal(raw, dest); err != nil {
			return fault.Wrap(http.StatusBadRequest, "invalid JSON", err)
		}
		return nil
	}

	if r.Body == nil {
		return fault.BadRequest("request body is empty")
	}
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return err
		}
		return fault.Wrap(http.StatusBadRequest, "invalid JSON", err)
	}
	return nil
}
