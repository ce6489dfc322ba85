package transcription

import (
	"github.com/kbukum/smartsearch/errors"
	"github.com/kbukum/smartsearch/httpclient"
)

// UpstreamError maps an outbound call failure from service onto the
// application taxonomy. Undecodable bodies become MalformedResponse.
func UpstreamError(service string, err error) error {
	if err == nil {
		return nil
	}
	if httpclient.IsDecode(err) {
		return errors.MalformedResponse(service, "response body is not valid JSON").WithCause(err)
	}
	return httpclient.AsAppError(service, err)
}
