// Package link probes advertisement URLs before the client hands them to an
// external opener. An unsupported scheme and a failed open are distinct
// outcomes so the caller can show different messages for each.
package link

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

var (
	ErrUnsupportedScheme = errors.New("link scheme is not supported")
	ErrOpenFailed        = errors.New("link could not be opened")
)

type Opener interface {
	Supported(rawURL string) bool
	Open(ctx context.Context, rawURL string) error
}

type httpOpener struct {
	client *http.Client
}

func NewOpener(timeout time.Duration) Opener {
	return &httpOpener{
		client: &http.Client{Timeout: timeout},
	}
}

func (o *httpOpener) Supported(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}

// Open checks the scheme and probes the target with a HEAD request. Any
// response counts as openable; only a transport-level failure does not.
func (o *httpOpener) Open(ctx context.Context, rawURL string) error {
	if !o.Supported(rawURL) {
		return ErrUnsupportedScheme
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrOpenFailed, err)
	}

	resp, err := o.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrOpenFailed, err)
	}
	resp.Body.Close()

	return nil
}
