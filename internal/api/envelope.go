package api

import (
	"strconv"

	"github.com/danielgtaylor/huma/v2"

	"github.com/reelmatch/reelmatch-server/internal/http/response"
)

// EnvelopeVersion is the version of the response envelope format.
const EnvelopeVersion = response.Version

// EnvelopeTransformer wraps every huma response body in the shared envelope:
// {v, success, data} for success and {v, success:false, error, code, details} for errors.
func EnvelopeTransformer(_ huma.Context, status string, v any) (any, error) {
	switch body := v.(type) {
	case *APIError:
		return response.Envelope{
			Version: EnvelopeVersion,
			Success: false,
			Error:   body.Message,
			Code:    body.Code,
			Details: body.Details,
		}, nil
	case error:
		code, _ := strconv.Atoi(status)
		return response.Envelope{
			Version: EnvelopeVersion,
			Success: false,
			Error:   body.Error(),
			Code:    statusToCode(code),
		}, nil
	}

	code, err := strconv.Atoi(status)
	return response.Envelope{
		Version: EnvelopeVersion,
		Success: err != nil || code < 400,
		Data:    v,
	}, nil
}
