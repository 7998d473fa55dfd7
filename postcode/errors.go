package postcode

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ResponseError is returned by HTTPTransport when postcodes.io answers with
// a non-2xx status. The Client passes it through untouched.
type ResponseError struct {
	StatusCode int
	// Message is the "error" field of the API's error envelope, if any.
	Message string
	Body    []byte
}

func (e *ResponseError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("postcodes.io returned status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("postcodes.io returned status %d", e.StatusCode)
}

// IsNotFound reports whether err is a 404 from the API, e.g. for an
// unknown postcode.
func IsNotFound(err error) bool {
	var re *ResponseError
	return errors.As(err, &re) && re.StatusCode == http.StatusNotFound
}

func newResponseError(status int, body []byte) *ResponseError {
	re := &ResponseError{StatusCode: status, Body: body}
	var envelope struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &envelope) == nil {
		re.Message = envelope.Error
	}
	return re
}
