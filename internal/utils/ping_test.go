package utils

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPingService(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	assert.NoError(t, PingService(context.Background(), srv.URL, time.Second))
	assert.NoError(t, PingAuthorizer(srv.URL))

	url := srv.URL
	srv.Close()
	assert.Error(t, PingService(context.Background(), url, time.Second))
}

func TestPingServiceRejectsBadURL(t *testing.T) {
	assert.Error(t, PingService(context.Background(), "::not a url", time.Second))
	assert.Error(t, PingService(context.Background(), "", time.Second))
}
