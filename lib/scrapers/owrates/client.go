package owrates

import (
	"context"
	"fmt"
	"log/slog"
	"net/http/cookiejar"
	"net/url"
	"time"

	"owstats/lib/restyutil"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/cenkalti/backoff/v4"
	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/time/rate"
)

const DefaultBaseUrl = "https://overwatch.blizzard.com/en-us/rates/data/"
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

type ClientOptions struct {
	// BaseUrl of the rates endpoint, DefaultBaseUrl when empty.
	BaseUrl   string
	UserAgent string
	// Timeout bounds one request attempt, 30s when zero.
	Timeout time.Duration
	// Delay is the minimum spacing between outbound requests, retries
	// included. Zero disables the gate.
	Delay time.Duration
	// MaxAttempts bounds request attempts per tuple, 3 when zero.
	MaxAttempts int
	// InitialBackoff is the wait after the first failed attempt, 1s
	// when zero.
	InitialBackoff time.Duration
	// BackoffMultiplier scales the wait after every further failure, 2
	// when zero. 1 gives a fixed delay; waits never decrease.
	BackoffMultiplier float64
	// DebugOutput receives request/response transcripts when set.
	DebugOutput restyutil.InstrumentOutput
}

// FetchError is the terminal failure for one tuple once retries are
// exhausted.
type FetchError struct {
	Tuple    FilterTuple
	Attempts int
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: gave up after %d attempt(s): %s", e.Tuple, e.Attempts, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Result is one raw rates payload along with the attempts it took.
type Result struct {
	Body     []byte
	Attempts int
}

type Client struct {
	http    *resty.Client
	opts    ClientOptions
	limiter *rate.Limiter
}

func NewClient(opts ClientOptions) (*Client, error) {
	if opts.BaseUrl == "" {
		opts.BaseUrl = DefaultBaseUrl
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Timeout <= 0 {
		opts.Timeout = time.Second * 30
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}
	if opts.InitialBackoff <= 0 {
		opts.InitialBackoff = time.Second
	}
	if opts.BackoffMultiplier <= 0 {
		opts.BackoffMultiplier = 2
	}

	baseUrl, err := url.Parse(opts.BaseUrl)
	if err != nil {
		return nil, err
	}

	client := resty.New()
	client.SetBaseURL(opts.BaseUrl)
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)

	client.SetHeader("user-agent", opts.UserAgent)
	client.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(baseUrl.Hostname()))
	client.SetTimeout(opts.Timeout)

	c := &Client{http: client, opts: opts}
	if opts.Delay > 0 {
		// one request per delay window; burst 1 lets the first request
		// through immediately
		c.limiter = rate.NewLimiter(rate.Every(opts.Delay), 1)
		client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			return c.limiter.Wait(req.Context())
		})
	}

	restyutil.InstrumentClient(client, tracer, opts.DebugOutput)

	return c, nil
}

// MaxAttempts reports the effective attempt bound after defaulting.
func (c *Client) MaxAttempts() int {
	return c.opts.MaxAttempts
}

// Fetch requests the rates payload for one tuple. Transient failures
// (transport errors, non-2xx statuses, bodies that are not valid JSON)
// are retried with exponentially increasing waits up to MaxAttempts
// total attempts; the delay gate spaces every attempt. Cancellation is
// honored both during requests and between attempts.
func (c *Client) Fetch(ctx context.Context, tuple FilterTuple) (Result, error) {
	ctx, span := tracer.Start(ctx, "Fetch")
	defer span.End()
	span.SetAttributes(
		attribute.String("input", tuple.Input),
		attribute.String("map", tuple.Map),
		attribute.String("region", tuple.Region),
		attribute.String("role", tuple.Role),
		attribute.String("rq", tuple.RQ),
		attribute.String("tier", tuple.Tier),
	)

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.opts.InitialBackoff
	policy.Multiplier = c.opts.BackoffMultiplier
	policy.RandomizationFactor = 0
	policy.MaxElapsedTime = 0

	attempts := 0
	var body []byte
	operation := func() error {
		attempts++
		slog.InfoContext(ctx, "fetching", "tuple", tuple.String(), "attempt", attempts)

		res, err := c.http.R().
			SetContext(ctx).
			SetQueryParams(tuple.QueryParams()).
			Get("")
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			return fmt.Errorf("request: %w", err)
		}
		if res.IsError() {
			return fmt.Errorf("status %s", res.Status())
		}
		if !gjson.ValidBytes(res.Body()) {
			return fmt.Errorf("malformed json payload (%d bytes)", len(res.Body()))
		}
		body = res.Body()
		return nil
	}
	notify := func(err error, wait time.Duration) {
		slog.WarnContext(
			ctx, "fetch attempt failed",
			"tuple", tuple.String(),
			"attempt", attempts,
			"retry_in", wait,
			"err", err,
		)
	}

	err := backoff.RetryNotify(
		operation,
		backoff.WithContext(backoff.WithMaxRetries(policy, uint64(c.opts.MaxAttempts-1)), ctx),
		notify,
	)
	if err != nil {
		if ctx.Err() != nil {
			span.SetStatus(codes.Error, "cancelled")
			return Result{Attempts: attempts}, ctx.Err()
		}
		ferr := &FetchError{Tuple: tuple, Attempts: attempts, Err: err}
		span.RecordError(ferr)
		span.SetStatus(codes.Error, "retries exhausted")
		slog.ErrorContext(
			ctx, "fetch failed",
			"tuple", tuple.String(),
			"attempts", attempts,
			"err", err,
		)
		return Result{Attempts: attempts}, ferr
	}

	slog.InfoContext(
		ctx, "fetched",
		"tuple", tuple.String(),
		"attempts", attempts,
		"bytes", len(body),
	)
	return Result{Body: body, Attempts: attempts}, nil
}
