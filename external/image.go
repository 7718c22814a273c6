// Package external talks to third party HTTP resources.
package external

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"net"
	"net/http"
	"net/url"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kardiachain/crowdfund-backend/types"
)

const (
	DefaultImageTimeout = 10 * time.Second
	sniffLen            = 512
)

// ErrBlockedAddress is returned when a URL resolves to a loopback, private
// or link-local address.
var ErrBlockedAddress = errors.New("destination address not allowed")

type ImageCheckerConfig struct {
	Timeout time.Duration
	// AllowPrivate lets the checker reach loopback and private networks.
	AllowPrivate bool
	Logger       *zap.Logger
}

// ImageChecker tells whether a URL points at a retrievable image.
type ImageChecker struct {
	client *http.Client
	logger *zap.Logger
}

func NewImageChecker(cfg ImageCheckerConfig) *ImageChecker {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultImageTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	dialer := &net.Dialer{
		Timeout: 5 * time.Second,
	}
	if !cfg.AllowPrivate {
		dialer.Control = publicOnly
	}
	var netTransport = &http.Transport{
		DialContext:         dialer.DialContext,
		TLSHandshakeTimeout: 5 * time.Second,
	}
	return &ImageChecker{
		client: &http.Client{
			Timeout:   timeout,
			Transport: netTransport,
		},
		logger: logger.With(zap.String("component", "image_checker")),
	}
}

// publicOnly runs on every dial, redirects included, after name resolution.
func publicOnly(network, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return err
	}
	ip := net.ParseIP(host)
	if ip == nil || !isPublic(ip) {
		return fmt.Errorf("%w: %s", ErrBlockedAddress, address)
	}
	return nil
}

func isPublic(ip net.IP) bool {
	return !(ip.IsLoopback() || ip.IsPrivate() || ip.IsUnspecified() ||
		ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() ||
		ip.IsInterfaceLocalMulticast() || ip.IsMulticast())
}

// CheckImage fetches rawURL and returns nil when the body is an image.
func (c *ImageChecker) CheckImage(ctx context.Context, rawURL string) error {
	lgr := c.logger.With(zap.String("method", "CheckImage"), zap.String("url", rawURL))
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%w: %v", types.ErrImageUnreachable, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: scheme %q", types.ErrImageUnreachable, u.Scheme)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("%w: %v", types.ErrImageUnreachable, err)
	}
	req.Header.Set("Accept", "image/*")

	response, err := c.client.Do(req)
	if err != nil {
		lgr.Debug("fetch failed", zap.Error(err))
		return fmt.Errorf("%w: %w", types.ErrImageUnreachable, err)
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d", types.ErrImageUnreachable, response.StatusCode)
	}
	head, err := ioutil.ReadAll(io.LimitReader(response.Body, sniffLen))
	if err != nil {
		return fmt.Errorf("%w: %v", types.ErrImageUnreachable, err)
	}
	contentType := response.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		contentType = http.DetectContentType(head)
	}
	if !strings.HasPrefix(contentType, "image/") {
		lgr.Debug("not an image", zap.String("contentType", contentType))
		return fmt.Errorf("%w: content type %s", types.ErrImageUnreachable, contentType)
	}
	return nil
}
