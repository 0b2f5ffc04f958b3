package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"aqevent/internal/timerange"
	apperrors "aqevent/pkg/errors"
)

// DecodeJSON reads a JSON body into dst. An empty body is an input error.
func DecodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return apperrors.InvalidInput("request body is required")
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return apperrors.TooLarge("request body too large")
		case errors.Is(err, io.EOF):
			return apperrors.InvalidInput("request body is required")
		default:
			return apperrors.InvalidInput("invalid request body: " + err.Error())
		}
	}
	return nil
}

// QueryBool reads a boolean query parameter. Missing means false.
func QueryBool(r *http.Request, key string) (bool, error) {
	s := strings.TrimSpace(r.URL.Query().Get(key))
	if s == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, apperrors.InvalidInput("invalid " + key + " parameter: " + s)
	}
	return v, nil
}

// QueryDate reads a YYYY-MM-DD query parameter and returns it unchanged.
func QueryDate(r *http.Request, key string) (string, error) {
	s := strings.TrimSpace(r.URL.Query().Get(key))
	if s == "" {
		return "", nil
	}
	if _, ok := timerange.ParseDate(s, time.UTC); !ok {
		return "", apperrors.InvalidInput("invalid " + key + " parameter: " + s)
	}
	return s, nil
}

// BearerToken extracts the token from an Authorization header.
func BearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
