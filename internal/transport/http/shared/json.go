package shared

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// ErrBodyTooLarge is returned when BodyLimit cut the request short.
var ErrBodyTooLarge = errors.New("request body too large")

// DecodeJSON reads a JSON body into dst.
func DecodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return ErrBodyTooLarge
		}
		return fmt.Errorf("decode json: %w", err)
	}
	return nil
}

// DecodeForm accepts either a JSON body or a urlencoded form and returns the
// string fields. Used by login, which browsers may post as a form.
func DecodeForm(r *http.Request) (url.Values, error) {
	contentType := strings.ToLower(r.Header.Get("Content-Type"))
	if strings.HasPrefix(contentType, "application/x-www-form-urlencoded") || strings.HasPrefix(contentType, "multipart/form-data") {
		if err := r.ParseForm(); err != nil {
			return nil, fmt.Errorf("parse form: %w", err)
		}
		return r.PostForm, nil
	}
	payload := map[string]any{}
	if err := DecodeJSON(r, &payload); err != nil {
		return nil, err
	}
	values := url.Values{}
	for key, raw := range payload {
		if s, ok := raw.(string); ok {
			values.Set(key, s)
		}
	}
	return values, nil
}

// FlexBool accepts true/false, 0/1 and their string forms. Older exports
// stored flags as integers.
type FlexBool bool

func (b *FlexBool) UnmarshalJSON(data []byte) error {
	raw := strings.ToLower(string(bytes.Trim(bytes.TrimSpace(data), `"`)))
	switch raw {
	case "true", "1":
		*b = true
	case "false", "0", "", "null":
		*b = false
	default:
		return fmt.Errorf("invalid boolean %q", string(data))
	}
	return nil
}

func (b FlexBool) MarshalJSON() ([]byte, error) {
	return json.Marshal(bool(b))
}
