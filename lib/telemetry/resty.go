package telemetry

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// query parameters that carry credentials and never end up in a span
var secretParams = []string{"token", "api_key"}

// RedactURL replaces the values of credential query parameters with "REDACTED".
func RedactURL(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	query := parsed.Query()
	redacted := false
	for _, p := range secretParams {
		if query.Has(p) {
			query.Set(p, "REDACTED")
			redacted = true
		}
	}
	if !redacted {
		return raw
	}
	parsed.RawQuery = query.Encode()
	return parsed.String()
}

// RedactError redacts the url of a *url.Error, which is what a failed
// request returns.
func RedactError(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return &url.Error{Op: urlErr.Op, URL: RedactURL(urlErr.URL), Err: urlErr.Err}
	}
	return err
}

// InstrumentResty starts a span for each request made by the client.
// Spans are no-ops unless Setup installed a tracer provider.
func InstrumentResty(client *resty.Client, tracerName string) {
	tracer := otel.Tracer(tracerName)

	client.OnBeforeRequest(onBeforeRequest(tracer))
	client.OnAfterResponse(onAfterResponse)
	client.OnError(onError)
}

func onBeforeRequest(tracer trace.Tracer) resty.RequestMiddleware {
	return func(cli *resty.Client, req *resty.Request) error {
		// one span per attempt, a retry closes the span of the attempt before it
		if req.Attempt > 1 {
			trace.SpanFromContext(req.Context()).End()
		}
		ctx, _ := tracer.Start(req.Context(), fmt.Sprintf("http %s", req.Method))
		req.SetContext(ctx)
		return nil
	}
}

func requestAttributes(req *resty.Request) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("http.request.method", req.Method),
		attribute.String("url.full", RedactURL(req.URL)),
		attribute.Int("http.request.resend_count", req.Attempt-1),
	}
}

func onAfterResponse(_ *resty.Client, res *resty.Response) error {
	span := trace.SpanFromContext(res.Request.Context())
	defer span.End()

	span.SetAttributes(requestAttributes(res.Request)...)
	span.SetAttributes(attribute.Int("http.response.status_code", res.StatusCode()))
	if res.IsError() {
		span.SetStatus(codes.Error, res.Status())
	}
	return nil
}

func onError(req *resty.Request, err error) {
	span := trace.SpanFromContext(req.Context())
	defer span.End()

	span.SetAttributes(requestAttributes(req)...)
	err = RedactError(err)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
