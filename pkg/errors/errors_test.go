package errors

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTooManyRequestsSurfacesWait(t *testing.T) {
	err := TooManyRequests("Too many verification codes requested", 90*time.Second)

	assert.Equal(t, "TOO_MANY_REQUESTS", err.Code)
	assert.Equal(t, http.StatusTooManyRequests, err.Status)
	assert.Equal(t, "Too many verification codes requested, retry in 1m30s", err.Message)
}

func TestTooManyRequestsWithoutWaitKeepsMessage(t *testing.T) {
	err := TooManyRequests("Too many messages, slow down", 0)

	assert.Equal(t, "Too many messages, slow down", err.Message)
}

func TestIsMatchesWrappedCode(t *testing.T) {
	assert.True(t, Is(NotFound("User", nil), "NOT_FOUND"))
	assert.False(t, Is(NotFound("User", nil), "CONFLICT"))
	assert.False(t, Is(nil, "NOT_FOUND"))
}
