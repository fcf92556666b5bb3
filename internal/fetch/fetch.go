// Package fetch is the HTTP transport used for catalog, probe, and archive requests.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"sync/atomic"
	"time"

	"github.com/conn-castle/nodeswitch/internal/messages"
)

const (
	// DefaultMaxBytes caps archive downloads.
	DefaultMaxBytes = int64(200 * 1024 * 1024) // 200 MiB
	// DefaultDownloadTimeout caps one archive download attempt end to end.
	DefaultDownloadTimeout = time.Hour
	defaultRetryCount      = 1
	defaultRetryBackoff    = 250 * time.Millisecond
	userAgent              = "nsw"
)

// ErrNotFound reports an HTTP 404 for the requested URL.
var ErrNotFound = errors.New("not found")

// Client performs GET and HEAD requests with a small retry budget.
//
// Timeout bounds connecting, the TLS handshake, and waiting for response
// headers. It also bounds a whole Get or Head. Downloads are bounded by
// DownloadTimeout instead, and fail early when no bytes arrive for Timeout.
type Client struct {
	HTTP            *http.Client
	Timeout         time.Duration
	DownloadTimeout time.Duration
	Retries         int
	Backoff         time.Duration
	MaxBytes        int64
	sleep           func(time.Duration)
}

// NewClient returns a Client with a per-phase timeout and retry count.
func NewClient(timeout time.Duration, retries int) *Client {
	if retries < 0 {
		retries = defaultRetryCount
	}
	dialer := &net.Dialer{Timeout: timeout, KeepAlive: 30 * time.Second}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = dialer.DialContext
	transport.TLSHandshakeTimeout = timeout
	transport.ResponseHeaderTimeout = timeout
	return &Client{
		HTTP:            &http.Client{Transport: transport},
		Timeout:         timeout,
		DownloadTimeout: DefaultDownloadTimeout,
		Retries:         retries,
		Backoff:         defaultRetryBackoff,
		MaxBytes:        DefaultMaxBytes,
		sleep:           time.Sleep,
	}
}

// Get fetches url into memory, up to MaxBytes.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	var body []byte
	err := c.do(ctx, request{method: http.MethodGet, url: url, timeout: c.timeout()}, func(resp *http.Response) error {
		data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes()+1))
		if err != nil {
			return err
		}
		if int64(len(data)) > c.maxBytes() {
			return fmt.Errorf(messages.FetchTooLargeFmt, url, len(data), c.maxBytes())
		}
		body = data
		return nil
	})
	return body, err
}

// Download writes the body of url to dest, truncating dest before each attempt.
// A body that keeps arriving is never cut off before DownloadTimeout.
func (c *Client) Download(ctx context.Context, url string, dest *os.File) error {
	req := request{method: http.MethodGet, url: url, timeout: c.downloadTimeout(), stall: c.timeout()}
	return c.do(ctx, req, func(resp *http.Response) error {
		if err := dest.Truncate(0); err != nil {
			return fmt.Errorf(messages.FetchTruncateTempFileFmt, err)
		}
		if _, err := dest.Seek(0, io.SeekStart); err != nil {
			return fmt.Errorf(messages.FetchResetTempFileOffsetFmt, err)
		}
		n, err := io.Copy(dest, io.LimitReader(resp.Body, c.maxBytes()+1))
		if err != nil {
			return err
		}
		if n > c.maxBytes() {
			return fmt.Errorf(messages.FetchTooLargeFmt, url, n, c.maxBytes())
		}
		return nil
	})
}

// Head reports whether url answers a HEAD request with a 2xx status.
// Non-2xx statuses are a normal false; only transport failures are errors.
func (c *Client) Head(ctx context.Context, url string) (bool, error) {
	err := c.do(ctx, request{method: http.MethodHead, url: url, timeout: c.timeout()}, func(*http.Response) error { return nil })
	if err == nil {
		return true, nil
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) || errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return false, err
}

// StatusError reports a non-2xx response that is not a 404.
type StatusError struct {
	URL    string
	Status string
	Code   int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf(messages.FetchUnexpectedStatusFmt, e.URL, e.Status)
}

type request struct {
	method string
	url    string
	// timeout bounds one attempt; zero leaves only the caller's context.
	timeout time.Duration
	// stall aborts the attempt when the body makes no progress for this long.
	stall time.Duration
}

// do issues the request and hands a 2xx response to consume. Network errors,
// per-attempt timeouts, and 5xx statuses are retried; errors from consume
// are retried when they come from the network.
func (c *Client) do(ctx context.Context, req request, consume func(*http.Response) error) error {
	if c == nil || c.HTTP == nil {
		return errors.New(messages.FetchClientRequired)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	for attempt := 0; attempt <= c.Retries; attempt++ {
		retry, err := c.attempt(ctx, req, attempt, consume)
		if retry {
			c.wait()
			continue
		}
		return err
	}
	return fmt.Errorf(messages.FetchFailedFmt, req.url, errors.New(messages.FetchRetryBudgetExhausted))
}

// attempt runs one request. retry reports whether another attempt may succeed.
func (c *Client) attempt(ctx context.Context, req request, attempt int, consume func(*http.Response) error) (bool, error) {
	var attemptCtx context.Context
	var cancel context.CancelFunc
	if req.timeout > 0 {
		attemptCtx, cancel = context.WithTimeout(ctx, req.timeout)
	} else {
		attemptCtx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	httpReq, err := http.NewRequestWithContext(attemptCtx, req.method, req.url, nil)
	if err != nil {
		return false, fmt.Errorf(messages.FetchCreateRequestFmt, req.url, err)
	}
	httpReq.Header.Set("User-Agent", userAgent)

	resp, err := c.HTTP.Do(httpReq)
	if err != nil {
		if c.shouldRetry(ctx, attempt, err, 0) {
			return true, nil
		}
		if isTimeoutError(err) {
			return false, fmt.Errorf(messages.FetchTimeoutFmt, req.url)
		}
		return false, fmt.Errorf(messages.FetchFailedFmt, req.url, err)
	}

	if resp.StatusCode == http.StatusNotFound {
		_ = resp.Body.Close()
		return false, fmt.Errorf(messages.FetchNotFoundFmt, req.url, ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		statusErr := &StatusError{URL: req.url, Status: resp.Status, Code: resp.StatusCode}
		_ = resp.Body.Close()
		if c.shouldRetry(ctx, attempt, nil, statusErr.Code) {
			return true, nil
		}
		return false, statusErr
	}

	var stalled atomic.Bool
	if req.stall > 0 {
		timer := time.AfterFunc(req.stall, func() {
			stalled.Store(true)
			cancel()
		})
		defer timer.Stop()
		resp.Body = &progressBody{ReadCloser: resp.Body, timer: timer, idle: req.stall}
	}

	consumeErr := consume(resp)
	_ = resp.Body.Close()
	if consumeErr == nil {
		return false, nil
	}
	if stalled.Load() {
		if attempt < c.Retries && ctx.Err() == nil {
			return true, nil
		}
		return false, fmt.Errorf(messages.FetchStalledFmt, req.url, req.stall)
	}
	if c.shouldRetry(ctx, attempt, consumeErr, 0) {
		return true, nil
	}
	if isTimeoutError(consumeErr) {
		return false, fmt.Errorf(messages.FetchTimeoutFmt, req.url)
	}
	return false, fmt.Errorf(messages.FetchFailedFmt, req.url, consumeErr)
}

// progressBody pushes the stall deadline out whenever bytes arrive.
type progressBody struct {
	io.ReadCloser
	timer *time.Timer
	idle  time.Duration
}

func (b *progressBody) Read(p []byte) (int, error) {
	n, err := b.ReadCloser.Read(p)
	if n > 0 {
		b.timer.Reset(b.idle)
	}
	return n, err
}

// shouldRetry never retries once the caller's context is done.
func (c *Client) shouldRetry(ctx context.Context, attempt int, err error, statusCode int) bool {
	if attempt >= c.Retries || ctx.Err() != nil {
		return false
	}
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return false
		}
		var netErr net.Error
		return errors.As(err, &netErr)
	}
	return statusCode >= 500 && statusCode <= 599
}

func (c *Client) wait() {
	sleep := c.sleep
	if sleep == nil {
		sleep = time.Sleep
	}
	sleep(c.Backoff)
}

func (c *Client) timeout() time.Duration {
	if c == nil {
		return 0
	}
	return c.Timeout
}

func (c *Client) downloadTimeout() time.Duration {
	if c == nil {
		return 0
	}
	return c.DownloadTimeout
}

func (c *Client) maxBytes() int64 {
	if c.MaxBytes <= 0 {
		return DefaultMaxBytes
	}
	return c.MaxBytes
}

// isTimeoutError reports whether err is a network timeout.
func isTimeoutError(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return false
}
