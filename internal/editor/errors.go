package editor

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/go-faster/errors"
)

// ErrNoToken is returned before any call when the client has no API token.
var ErrNoToken = errors.New("editor: api token missing")

// APIError is a non-2xx answer of the editor API.
type APIError struct {
	Op           string
	Status       int
	ResponseCode string
	Code         string // params.err
	Message      string // params.errmsg
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s status %d: %s", e.Op, e.Status, e.Message)
	}
	return fmt.Sprintf("%s status %d", e.Op, e.Status)
}

// Detail returns the server supplied error message carried by err, if any.
func Detail(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return ""
}

type params struct {
	Status string `json:"status"`
	Err    string `json:"err"`
	ErrMsg string `json:"errmsg"`
}

type envelope struct {
	ID           string          `json:"id"`
	Params       params          `json:"params"`
	ResponseCode string          `json:"responseCode"`
	Result       json.RawMessage `json:"result"`
}

// newAPIError reads the error envelope from res, tolerating bodies that are
// not JSON at all (e.g. blob storage XML errors).
func newAPIError(op string, res *http.Response) *APIError {
	apiErr := &APIError{Op: op, Status: res.StatusCode}
	body, _ := io.ReadAll(io.LimitReader(res.Body, 64<<10))
	var env envelope
	if err := json.Unmarshal(body, &env); err == nil {
		apiErr.ResponseCode = env.ResponseCode
		apiErr.Code = env.Params.Err
		apiErr.Message = env.Params.ErrMsg
	}
	return apiErr
}
