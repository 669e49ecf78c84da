package httputil

import (
	"io"
	"net/http"
	"strings"

	apperrors "github.com/matzehuels/autobuild/pkg/errors"
)

// maxErrorBody caps how much of a failed response ends up in an error message.
const maxErrorBody = 512

// CheckResponse returns nil for a 2xx response. For anything else it consumes
// and closes the body and returns an [apperrors.StatusError].
func CheckResponse(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	url := ""
	if resp.Request != nil {
		url = resp.Request.URL.String()
	}
	return &apperrors.StatusError{
		URL:        url,
		StatusCode: resp.StatusCode,
		Body:       strings.TrimSpace(string(body)),
	}
}
