// Package lambdaurl serves an http.Handler behind an AWS Lambda Function URL.
package lambdaurl

import (
	"bytes"
	"context"
	"encoding/base64"
	"net/http"
	"net/url"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/dmorgan81/imagenproxy/internal/log"
	"github.com/gin-gonic/gin"
	"github.com/samber/do"
	"github.com/samber/lo"
)

type Adapter struct {
	handler http.Handler
}

func NewAdapter(i *do.Injector) (*Adapter, error) {
	return New(do.MustInvoke[*gin.Engine](i)), nil
}

func New(handler http.Handler) *Adapter {
	return &Adapter{handler: handler}
}

func (a *Adapter) Handle(ctx context.Context, event events.LambdaFunctionURLRequest) (events.LambdaFunctionURLResponse, error) {
	log := log.FromContextOrDiscard(ctx).WithGroup("lambdaurl")
	log.Info("handling function url invocation",
		"method", event.RequestContext.HTTP.Method, "path", event.RawPath, "request_id", event.RequestContext.RequestID)

	req, err := toRequest(ctx, event)
	if err != nil {
		return events.LambdaFunctionURLResponse{}, err
	}

	w := newResponseWriter()
	a.handler.ServeHTTP(w, req)
	return w.toResponse(), nil
}

func toRequest(ctx context.Context, event events.LambdaFunctionURLRequest) (*http.Request, error) {
	body := []byte(event.Body)
	if event.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(event.Body)
		if err != nil {
			return nil, err
		}
		body = decoded
	}

	u := url.URL{
		Path:     lo.Ternary(event.RawPath != "", event.RawPath, "/"),
		RawQuery: event.RawQueryString,
	}
	method := lo.Ternary(event.RequestContext.HTTP.Method != "", event.RequestContext.HTTP.Method, http.MethodGet)

	req, err := http.NewRequestWithContext(ctx, method, u.String(), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	for k, v := range event.Headers {
		req.Header.Set(k, v)
	}
	for _, c := range event.Cookies {
		req.Header.Add("Cookie", c)
	}
	req.Host = lo.Ternary(event.RequestContext.DomainName != "", event.RequestContext.DomainName, req.Header.Get("Host"))
	req.RemoteAddr = event.RequestContext.HTTP.SourceIP
	return req, nil
}

type responseWriter struct {
	header http.Header
	body   bytes.Buffer
	status int
}

func newResponseWriter() *responseWriter {
	return &responseWriter{header: http.Header{}}
}

func (w *responseWriter) Header() http.Header {
	return w.header
}

func (w *responseWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	return w.body.Write(b)
}

func (w *responseWriter) WriteHeader(status int) {
	if w.status == 0 {
		w.status = status
	}
}

func (w *responseWriter) toResponse() events.LambdaFunctionURLResponse {
	headers := make(map[string]string, len(w.header))
	for k, v := range w.header {
		if k == "Set-Cookie" {
			continue
		}
		headers[k] = strings.Join(v, ",")
	}

	resp := events.LambdaFunctionURLResponse{
		StatusCode: lo.Ternary(w.status != 0, w.status, http.StatusOK),
		Headers:    headers,
		Cookies:    w.header.Values("Set-Cookie"),
	}
	if isText(w.header.Get("Content-Type")) {
		resp.Body = w.body.String()
	} else {
		resp.Body = base64.StdEncoding.EncodeToString(w.body.Bytes())
		resp.IsBase64Encoded = true
	}
	return resp
}

func isText(contentType string) bool {
	ct := strings.ToLower(contentType)
	return ct == "" || strings.HasPrefix(ct, "text/") ||
		strings.HasPrefix(ct, "application/json") || strings.HasPrefix(ct, "application/xml")
}
