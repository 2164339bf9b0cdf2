package fetch

import (
	"fmt"
	"net/http"
	"time"

	"rodent-genomes/internal/components/telemetry"
	"rodent-genomes/lib/restyutil"
	libtelemetry "rodent-genomes/lib/telemetry"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

const userAgent = "rodent-genomes/1.0"

// Options configure a resty client shared by every upstream API client.
type Options struct {
	// Name identifies the upstream, it is used as the tracer name and the dump file prefix.
	Name    string
	BaseUrl string
	Timeout time.Duration
	// RetryCount is the amount of retries after the first attempt, 0 disables retrying.
	RetryCount   int
	RetryWait    time.Duration
	RetryMaxWait time.Duration
	// RequestsPerSecond limits the request rate, 0 means unlimited.
	RequestsPerSecond float64
	// Dump receives every request/response pair when non-nil.
	Dump restyutil.InstrumentOutput
}

// shouldRetry retries transport errors, rate limiting and server errors.
func shouldRetry(res *resty.Response, err error) bool {
	if err != nil {
		return true
	}
	status := res.StatusCode()
	return status == http.StatusTooManyRequests || status >= 500
}

// NewClient creates a resty client with a timeout, bounded exponential
// backoff retries, telemetry and (optionally) rate limiting.
func NewClient(opts Options, tel telemetry.API) *resty.Client {
	client := resty.New()
	client.SetBaseURL(opts.BaseUrl)
	client.SetHeader("user-agent", userAgent)
	if opts.Timeout > 0 {
		client.SetTimeout(opts.Timeout)
	}

	client.SetRetryCount(opts.RetryCount)
	if opts.RetryWait > 0 {
		client.SetRetryWaitTime(opts.RetryWait)
	}
	if opts.RetryMaxWait > 0 {
		client.SetRetryMaxWaitTime(opts.RetryMaxWait)
	}
	client.AddRetryCondition(shouldRetry)

	if opts.RequestsPerSecond > 0 {
		// burst of 1 keeps requests evenly spaced
		limiter := rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
		client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			return limiter.Wait(req.Context())
		})
	}

	telemetry.InstrumentResty(client, telemetry.NewScopedAPI(opts.Name, tel))
	libtelemetry.InstrumentResty(client, fmt.Sprintf("rodent-genomes/%s", opts.Name))
	restyutil.InstrumentClient(client, opts.Name, opts.Dump)

	return client
}

// Classify turns the outcome of a resty request into a Failure, it returns
// nil when the request succeeded with a 2xx status.
func Classify(res *resty.Response, err error) *Failure {
	if err != nil {
		return Fail(ReasonConnection, "", libtelemetry.RedactError(err))
	}
	if res.StatusCode() == http.StatusNotFound {
		return Fail(ReasonNotFound, libtelemetry.RedactURL(res.Request.URL), nil)
	}
	if !res.IsSuccess() {
		return Fail(ReasonUpstream, fmt.Sprintf("%s %s", res.Status(), libtelemetry.RedactURL(res.Request.URL)), nil)
	}
	return nil
}
