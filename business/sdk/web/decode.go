package web

import (
	"fmt"
	"io"
	"net/http"
)

// Decoder defines behavior that can decode the body of a request into a
// data model.
type Decoder interface {
	Decode(data []byte) error
}

// validator defines optional behavior a model can implement to be checked
// after decoding.
type validator interface {
	Validate() error
}

// Decode reads the body of an http request, decodes it into the provided
// data model and validates it when the model knows how.
func Decode(r *http.Request, v Decoder) error {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		return fmt.Errorf("unable to read payload: %w", err)
	}

	if len(data) == 0 {
		return fmt.Errorf("empty request body")
	}

	if err := v.Decode(data); err != nil {
		return fmt.Errorf("unable to decode payload: %w", err)
	}

	if v, ok := v.(validator); ok {
		if err := v.Validate(); err != nil {
			return err
		}
	}

	return nil
}
