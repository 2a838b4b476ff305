package httpclient

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/plugmig/errors"
)

func TestNew(t *testing.T) {
	client := New(30*time.Second, Options{})

	require.NotNil(t, client)
	assert.Equal(t, 30*time.Second, client.Timeout)
	assert.Equal(t, 10, client.maxRedirects)
	assert.False(t, client.allowPrivate)
	assert.NotNil(t, client.Transport)

	permissive := New(time.Second, Options{AllowPrivate: true, MaxRedirects: 2})
	assert.Equal(t, 2, permissive.maxRedirects)
	assert.Nil(t, permissive.Transport)
}

func TestValidateURL(t *testing.T) {
	client := New(30*time.Second, Options{})

	tests := []struct {
		name        string
		url         string
		errContains string
	}{
		{name: "npm registry", url: "https://registry.npmjs.org/@backstage%2Fcore-plugin-api"},
		{name: "plain http", url: "http://example.com"},
		{name: "file scheme", url: "file:///etc/passwd", errContains: "scheme"},
		{name: "ftp scheme", url: "ftp://example.com", errContains: "scheme"},
		{name: "localhost", url: "http://localhost/admin", errContains: "localhost"},
		{name: "localhost subdomain", url: "http://registry.localhost", errContains: "localhost"},
		{name: "loopback ip", url: "http://127.0.0.1:4873", errContains: "private IP"},
		{name: "rfc1918", url: "http://10.0.0.8/", errContains: "private IP"},
		{name: "link local metadata", url: "http://169.254.169.254/latest", errContains: "private IP"},
		{name: "ipv6 loopback", url: "http://[::1]/", errContains: "private IP"},
		{name: "credentials", url: "http://registry.npmjs.org@localhost/", errContains: "credentials"},
		{name: "missing host", url: "http:///path", errContains: "hostname"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.ValidateURL(tt.url)
			if tt.errContains == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}

func TestValidateURLAllowPrivate(t *testing.T) {
	client := New(time.Second, Options{AllowPrivate: true})

	_, err := client.ValidateURL("http://127.0.0.1:4873/")
	assert.NoError(t, err)

	_, err = client.ValidateURL("file:///etc/passwd")
	assert.Error(t, err, "scheme is checked even when private addresses are allowed")
}

func TestIsPrivateIP(t *testing.T) {
	tests := []struct {
		ip      string
		private bool
	}{
		{"10.1.2.3", true},
		{"172.16.0.1", true},
		{"172.32.0.1", false},
		{"192.168.1.1", true},
		{"127.0.0.1", true},
		{"0.0.0.0", true},
		{"0.1.2.3", true},
		{"169.254.1.1", true},
		{"224.0.0.1", true},
		{"250.0.0.1", true},
		{"8.8.8.8", false},
		{"104.16.0.35", false},
		{"::1", true},
		{"fe80::1", true},
		{"fd00::1", true},
		{"fec0::1", true},
		{"2001:db8::1", true},
		{"2606:4700::6810:1", false},
	}

	for _, tt := range tests {
		t.Run(tt.ip, func(t *testing.T) {
			assert.Equal(t, tt.private, isPrivateIP(net.ParseIP(tt.ip)))
		})
	}
}

func TestFetch(t *testing.T) {
	var gotUA, gotAccept string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`{"version":"1.2.3"}`))
	}))
	defer server.Close()

	client := New(5*time.Second, Options{AllowPrivate: true, UserAgent: "plugmig/test"})

	body, err := client.Fetch(context.Background(), server.URL+"/pkg", "application/json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"version":"1.2.3"}`, string(body))
	assert.Equal(t, "plugmig/test", gotUA)
	assert.Equal(t, "application/json", gotAccept)

	_, err = client.Fetch(context.Background(), server.URL+"/missing", "")
	require.Error(t, err)
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
}

func TestFetchBlocksLoopbackByDefault(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("request should not reach the server")
	}))
	defer server.Close()

	client := New(time.Second, Options{})

	_, err := client.Fetch(context.Background(), server.URL, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "blocked")
}

func TestRedirectProtection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "file:///etc/passwd", http.StatusFound)
	}))
	defer server.Close()

	client := New(time.Second, Options{AllowPrivate: true})

	_, err := client.Fetch(context.Background(), server.URL, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redirect blocked")
}

func TestMaxRedirects(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, server.URL+"/again", http.StatusFound)
	}))
	defer server.Close()

	client := New(time.Second, Options{AllowPrivate: true, MaxRedirects: 3})

	_, err := client.Fetch(context.Background(), server.URL, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stopped after 3 redirects")
}

func TestFetchHonorsContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	client := New(5*time.Second, Options{AllowPrivate: true})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Fetch(ctx, server.URL, "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}
