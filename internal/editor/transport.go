package editor

import (
	"bytes"
	"context"
	"io"
	"math"
	"math/rand"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"golang.org/x/time/rate"
)

// Clock abstracts time for deterministic tests.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

type realClock struct{}

func (realClock) Now() time.Time        { return time.Now() }
func (realClock) Sleep(d time.Duration) { time.Sleep(d) }

// Limit defines a simple rate limit: RPS with a burst capacity.
type Limit struct {
	RPS   float64
	Burst int
}

// TransportOptions configures the retrying, rate-limited transport.
type TransportOptions struct {
	RetryMax    int
	BackoffBase time.Duration
	BackoffCap  time.Duration
	JitterFn    func(base time.Duration, attempt int) time.Duration
	Clock       Clock
	Metrics     *Metrics

	// Host-specific limits (by req.URL.Host). If missing, DefaultLimit applies.
	HostLimits   map[string]Limit
	DefaultLimit Limit
}

// DefaultTransportOptions returns defaults for the editor API host. baseURL
// may be empty, then only the default limit applies.
func DefaultTransportOptions(baseURL string, apiLimit Limit) TransportOptions {
	if apiLimit.RPS <= 0 {
		apiLimit = Limit{RPS: 10, Burst: 10}
	}
	hosts := map[string]Limit{}
	if u, err := url.Parse(baseURL); err == nil && u.Host != "" {
		hosts[u.Host] = apiLimit
	}
	return TransportOptions{
		RetryMax:    2,
		BackoffBase: 250 * time.Millisecond,
		BackoffCap:  5 * time.Second,
		Clock:       realClock{},
		JitterFn: func(base time.Duration, attempt int) time.Duration {
			// Full jitter on top of base backoff
			r := rand.New(rand.NewSource(time.Now().UnixNano()))
			if base <= 0 {
				return 0
			}
			return time.Duration(r.Int63n(base.Nanoseconds()))
		},
		Metrics:      NewMetrics(),
		HostLimits:   hosts,
		DefaultLimit: Limit{RPS: 20, Burst: 20},
	}
}

// hostLimiter paces requests to one host. Delays are measured and slept on
// the transport clock.
type hostLimiter struct {
	lim   *rate.Limiter
	clock Clock
}

func newHostLimiter(l Limit, clock Clock) *hostLimiter {
	return &hostLimiter{lim: rate.NewLimiter(rate.Limit(l.RPS), max(1, l.Burst)), clock: clock}
}

func (h *hostLimiter) Wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	now := h.clock.Now()
	r := h.lim.ReserveN(now, 1)
	if !r.OK() {
		return errors.New("rate limit burst is zero")
	}
	d := r.DelayFrom(now)
	for d > 0 {
		if err := ctx.Err(); err != nil {
			r.CancelAt(h.clock.Now())
			return err
		}
		step := min(d, 50*time.Millisecond)
		h.clock.Sleep(step)
		d -= step
	}
	return nil
}

// RetryingLimiterTransport wraps a base RoundTripper with host-based rate
// limiting. Idempotent reads are retried on 429/5xx and transient network
// errors; writes go out exactly once.
type RetryingLimiterTransport struct {
	Base     http.RoundTripper
	Opts     TransportOptions
	limMu    sync.Mutex
	limiters map[string]*hostLimiter
}

func NewRetryingLimiterTransport(opts TransportOptions) *RetryingLimiterTransport {
	return &RetryingLimiterTransport{Opts: opts, limiters: make(map[string]*hostLimiter)}
}

func (t *RetryingLimiterTransport) getLimiter(host string) *hostLimiter {
	if host == "" {
		host = "_default_"
	}
	t.limMu.Lock()
	defer t.limMu.Unlock()
	if hl, ok := t.limiters[host]; ok {
		return hl
	}
	lim := t.Opts.DefaultLimit
	if lim.RPS <= 0 {
		lim = Limit{RPS: 10, Burst: 10}
	}
	if v, ok := t.Opts.HostLimits[host]; ok && v.RPS > 0 {
		lim = v
	}
	hl := newHostLimiter(lim, t.clock())
	t.limiters[host] = hl
	return hl
}

func (t *RetryingLimiterTransport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

func (t *RetryingLimiterTransport) clock() Clock {
	if t.Opts.Clock != nil {
		return t.Opts.Clock
	}
	return realClock{}
}

func (t *RetryingLimiterTransport) jitter(base time.Duration, attempt int) time.Duration {
	if t.Opts.JitterFn != nil {
		return t.Opts.JitterFn(base, attempt)
	}
	return 0
}

func idempotent(method string) bool {
	return method == http.MethodGet || method == http.MethodHead
}

// ensureGetBody guarantees the request body is replayable across retries.
func ensureGetBody(req *http.Request) error {
	if req.Body == nil || req.Body == http.NoBody || req.GetBody != nil {
		return nil
	}
	buf, err := io.ReadAll(req.Body)
	if err != nil {
		return err
	}
	req.Body.Close()
	req.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(buf)), nil
	}
	req.Body = io.NopCloser(bytes.NewReader(buf))
	return nil
}

func (t *RetryingLimiterTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	lim := t.getLimiter(req.URL.Host)
	if t.Opts.Metrics != nil {
		t.Opts.Metrics.IncRequest(req.URL.Host, req.Method)
	}

	attempts := 1
	if idempotent(req.Method) {
		attempts = max(1, t.Opts.RetryMax+1)
		if err := ensureGetBody(req); err != nil {
			return nil, err
		}
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if err := lim.Wait(req.Context()); err != nil {
			return nil, err
		}

		if attempt > 0 && req.GetBody != nil {
			body, err := req.GetBody()
			if err != nil {
				return nil, err
			}
			req.Body = body
		}

		resp, err := t.base().RoundTrip(req)
		if err != nil {
			if isTransientNetErr(err) && attempt < attempts-1 {
				lastErr = err
				if rc := getRetryCounters(req.Context()); rc != nil {
					rc.Total++
					rc.Net++
				}
				t.sleepBackoff(attempt)
				continue
			}
			return nil, err
		}

		if t.Opts.Metrics != nil {
			t.Opts.Metrics.IncStatus(resp.StatusCode)
		}

		if shouldRetryStatus(resp.StatusCode) && attempt < attempts-1 {
			if t.Opts.Metrics != nil {
				t.Opts.Metrics.IncRetry()
			}
			if rc := getRetryCounters(req.Context()); rc != nil {
				rc.Total++
				if resp.StatusCode == http.StatusTooManyRequests {
					rc.Status429++
				} else {
					rc.Status5xx++
				}
			}
			resp.Body.Close()
			// Respect Retry-After when present
			if ra := parseRetryAfter(resp.Header.Get("Retry-After"), t.clock().Now()); ra > 0 {
				d := minDur(ra, t.backoffCap())
				if t.Opts.Metrics != nil {
					t.Opts.Metrics.AddBackoff(d)
				}
				t.clock().Sleep(d)
				continue
			}
			t.sleepBackoff(attempt)
			continue
		}

		return resp, nil
	}
	if lastErr == nil {
		lastErr = errors.New("max retries exceeded")
	}
	return nil, lastErr
}

func (t *RetryingLimiterTransport) backoffCap() time.Duration {
	if t.Opts.BackoffCap <= 0 {
		return 5 * time.Second
	}
	return t.Opts.BackoffCap
}

func (t *RetryingLimiterTransport) sleepBackoff(attempt int) {
	base := t.Opts.BackoffBase
	if base <= 0 {
		base = 250 * time.Millisecond
	}
	limit := t.backoffCap()
	// exponential backoff: base * 2^attempt
	delay := minDur(time.Duration(float64(base)*math.Pow(2, float64(attempt))), limit)
	d := minDur(delay+t.jitter(delay, attempt), limit)
	t.clock().Sleep(d)
	if t.Opts.Metrics != nil {
		t.Opts.Metrics.AddBackoff(d)
	}
}

func isTransientNetErr(err error) bool {
	var ne net.Error
	if errors.As(err, &ne) {
		return ne.Timeout()
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "timeout") || strings.Contains(msg, "temporary") || strings.Contains(msg, "connection reset")
}

func shouldRetryStatus(code int) bool {
	return code == http.StatusTooManyRequests || code == http.StatusBadGateway ||
		code == http.StatusServiceUnavailable || code == http.StatusGatewayTimeout
}

func parseRetryAfter(h string, now time.Time) time.Duration {
	h = strings.TrimSpace(h)
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(h); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if when, err := http.ParseTime(h); err == nil {
		d := when.Sub(now)
		if d < 0 {
			return 0
		}
		return d
	}
	return 0
}

func minDur(a, b time.Duration) time.Duration {
	if a < b {
		return a
	}
	return b
}
