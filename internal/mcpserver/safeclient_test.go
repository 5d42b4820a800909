package mcpserver

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsBlockedIP(t *testing.T) {
	tests := []struct {
		ip      string
		blocked bool
	}{
		{"127.0.0.1", true},
		{"10.0.0.1", true},
		{"172.16.0.1", true},
		{"192.168.1.1", true},
		{"169.254.1.1", true},
		{"::1", true},
		{"0.0.0.0", true},
		{"::", true},
		{"fe80::1", true},
		{"fd00::1", true},
		{"8.8.8.8", false},
		{"1.1.1.1", false},
	}
	for _, tt := range tests {
		t.Run(tt.ip, func(t *testing.T) {
			ip := net.ParseIP(tt.ip)
			require.NotNil(t, ip)
			assert.Equal(t, tt.blocked, isBlockedIP(ip))
		})
	}
}

func TestResolvePublicHost(t *testing.T) {
	_, err := resolvePublicHost(context.Background(), "127.0.0.1")
	assert.ErrorContains(t, err, "blocked request")

	ips, err := resolvePublicHost(context.Background(), "8.8.8.8")
	require.NoError(t, err)
	require.Len(t, ips, 1)
	assert.Equal(t, "8.8.8.8", ips[0].IP.String())
}

func TestSafeHTTPClient_RefusesLoopback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("classes: []\n"))
	}))
	t.Cleanup(srv.Close)

	client := newSafeHTTPClient()
	assert.Equal(t, fetchTimeout, client.Timeout)

	resp, err := client.Get(srv.URL)
	if resp != nil {
		_ = resp.Body.Close()
	}
	assert.ErrorContains(t, err, "blocked request to private/loopback IP")
}
