package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"grow104.org/internal/apperr"
)

// decodePayload reads the body as a JSON object for schema validation.
// The untyped map keeps absent, null, and valued fields distinct.
func decodePayload(w http.ResponseWriter, r *http.Request) (map[string]any, error) {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()

	var payload map[string]any
	if err := dec.Decode(&payload); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, apperr.New(apperr.KindValidation, "Request body is required")
		}
		return nil, apperr.New(apperr.KindValidation, "Request body must be a JSON object")
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, apperr.New(apperr.KindValidation, "Unexpected data after JSON body")
	}
	return payload, nil
}
