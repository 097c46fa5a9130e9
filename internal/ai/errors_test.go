package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/api/googleapi"
)

func TestCategorizeError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		category   string
		httpStatus int
	}{
		{"no prompt", ErrPromptNotConfigured, "configuration", http.StatusBadRequest},
		{"empty prompt", ErrPromptEmpty, "configuration", http.StatusBadRequest},
		{"bad url", fmt.Errorf("%w: x", ErrInvalidEndpoint), "configuration", http.StatusBadRequest},
		{"no data", &NoDataError{Raw: "{}"}, "no_data", http.StatusBadGateway},
		{"rate limit", &googleapi.Error{Code: 429}, "rate_limit", http.StatusTooManyRequests},
		{"unauthorized", &googleapi.Error{Code: 401}, "unauthorized", http.StatusBadGateway},
		{"too large", &googleapi.Error{Code: 413}, "payload_too_large", http.StatusRequestEntityTooLarge},
		{"server", &googleapi.Error{Code: 503}, "server_error", http.StatusBadGateway},
		{"canceled", context.Canceled, "canceled", StatusClientClosedRequest},
		{"deadline", context.DeadlineExceeded, "timeout", http.StatusGatewayTimeout},
		{"other", errors.New("boom"), "unknown", http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CategorizeError(tt.err)
			assert.Equal(t, tt.category, got.Category)
			assert.Equal(t, tt.httpStatus, got.HTTPStatus)
			assert.ErrorIs(t, got, tt.err)
		})
	}

	assert.Nil(t, CategorizeError(nil))
}

func TestBuildUserFriendlyError(t *testing.T) {
	body := BuildUserFriendlyError(CategorizeError(ErrPromptEmpty))
	assert.Equal(t, "configuration", body["category"])
	assert.Equal(t, "Prompt configuration empty", body["details"])
	assert.Equal(t, "update_settings", body["action_required"])

	body = BuildUserFriendlyError(CategorizeError(&NoDataError{Raw: `{"candidates":[]}`}))
	assert.Contains(t, body["raw"], `{"candidates":[]}`)
}
