package external

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/kardiachain/crowdfund-backend/types"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestCheckImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/typed.jpg":
			w.Header().Set("Content-Type", "image/jpeg")
			_, _ = w.Write([]byte("jpeg"))
		case "/sniffed":
			w.Header().Set("Content-Type", "application/octet-stream")
			_, _ = w.Write(pngHeader)
		case "/page":
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte("<html></html>"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	checker := NewImageChecker(ImageCheckerConfig{AllowPrivate: true, Logger: zap.NewNop()})
	ctx := context.Background()

	assert.NoError(t, checker.CheckImage(ctx, srv.URL+"/typed.jpg"))
	assert.NoError(t, checker.CheckImage(ctx, srv.URL+"/sniffed"))
	assert.ErrorIs(t, checker.CheckImage(ctx, srv.URL+"/page"), types.ErrImageUnreachable)
	assert.ErrorIs(t, checker.CheckImage(ctx, srv.URL+"/missing.png"), types.ErrImageUnreachable)
	assert.ErrorIs(t, checker.CheckImage(ctx, "http://127.0.0.1:1/x.png"), types.ErrImageUnreachable)
}

func TestCheckImage_BlocksInternalAddresses(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(pngHeader)
	}))
	defer srv.Close()

	checker := NewImageChecker(ImageCheckerConfig{Logger: zap.NewNop()})
	ctx := context.Background()

	err := checker.CheckImage(ctx, srv.URL+"/logo.png")
	assert.ErrorIs(t, err, types.ErrImageUnreachable)
	assert.ErrorIs(t, err, ErrBlockedAddress)
	assert.Equal(t, int32(0), atomic.LoadInt32(&hits))

	for _, u := range []string{
		"http://169.254.169.254/latest/meta-data/",
		"http://10.0.0.1/a.png",
		"http://[::1]/a.png",
		"http://0.0.0.0/a.png",
	} {
		assert.ErrorIs(t, checker.CheckImage(ctx, u), ErrBlockedAddress, u)
	}
}

func TestCheckImage_Schemes(t *testing.T) {
	checker := NewImageChecker(ImageCheckerConfig{AllowPrivate: true, Logger: zap.NewNop()})
	ctx := context.Background()
	for _, u := range []string{"file:///etc/passwd", "ftp://example.com/a.png", "gopher://x", "/relative.png"} {
		assert.ErrorIs(t, checker.CheckImage(ctx, u), types.ErrImageUnreachable, u)
	}
}

func TestIsPublic(t *testing.T) {
	for _, ip := range []string{"127.0.0.1", "10.1.2.3", "172.16.0.1", "192.168.1.1", "169.254.169.254", "::1", "fe80::1", "fc00::1", "0.0.0.0"} {
		assert.False(t, isPublic(net.ParseIP(ip)), ip)
	}
	for _, ip := range []string{"8.8.8.8", "1.1.1.1", "2606:4700:4700::1111"} {
		assert.True(t, isPublic(net.ParseIP(ip)), ip)
	}
}
