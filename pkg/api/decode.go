package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/adfharrison1/go-blog/pkg/domain"
)

// decodePostInput reads and validates a {title, body} payload
func decodePostInput(w http.ResponseWriter, r *http.Request) (domain.PostInput, error) {
	var in domain.PostInput

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(&in); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return in, &domain.ValidationError{Reason: "request body is empty", Err: err}
		case errors.As(err, &maxErr):
			return in, &domain.ValidationError{Reason: fmt.Sprintf("request body exceeds %d bytes", maxErr.Limit), Err: err}
		default:
			return in, &domain.ValidationError{Reason: "Invalid request body", Err: err}
		}
	}
	if dec.More() {
		return in, &domain.ValidationError{Reason: "request body must contain a single JSON object"}
	}

	if err := in.Validate(); err != nil {
		return in, err
	}
	return in, nil
}
