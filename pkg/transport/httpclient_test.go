package transport

import (
	"bytes"
	"compress/flate"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsHTTPURL(t *testing.T) {
	assert.True(t, IsHTTPURL("https://example.com/a.json"))
	assert.True(t, IsHTTPURL("http://localhost:8080"))
	assert.False(t, IsHTTPURL("/tmp/a.json"))
	assert.False(t, IsHTTPURL("ftp://example.com"))
}

func TestGetDecodesContentEncoding(t *testing.T) {
	payload := []byte(`{"ok":true}`)

	var br bytes.Buffer
	bw := brotli.NewWriter(&br)
	_, err := bw.Write(payload)
	require.NoError(t, err)
	require.NoError(t, bw.Close())

	var deflated bytes.Buffer
	fw, err := flate.NewWriter(&deflated, flate.DefaultCompression)
	require.NoError(t, err)
	_, err = fw.Write(payload)
	require.NoError(t, err)
	require.NoError(t, fw.Close())

	bodies := map[string][]byte{
		"":        payload,
		"br":      br.Bytes(),
		"deflate": deflated.Bytes(),
	}
	for encoding, body := range bodies {
		t.Run("encoding "+encoding, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "application/json", r.Header.Get("Accept"))
				if encoding != "" {
					w.Header().Set("Content-Encoding", encoding)
				}
				w.Write(body)
			}))
			defer server.Close()

			data, err := GetJSON(context.Background(), server.URL)
			require.NoError(t, err)
			assert.Equal(t, payload, data)
		})
	}
}

func TestGetErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := Get(context.Background(), server.Client(), server.URL, "*/*")
	assert.ErrorContains(t, err, "503")
}

func TestHeadReturnsHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("ETag", `"abc"`)
	}))
	defer server.Close()

	header, err := Head(context.Background(), server.Client(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, `"abc"`, header.Get("ETag"))
}

func TestHeadErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := Head(context.Background(), server.Client(), server.URL)
	assert.ErrorContains(t, err, "404")
}
