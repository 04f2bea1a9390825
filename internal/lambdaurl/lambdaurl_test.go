package lambdaurl

import (
	"context"
	"encoding/base64"
	"io"
	"net/http"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func event(method, path, body string) events.LambdaFunctionURLRequest {
	return events.LambdaFunctionURLRequest{
		RawPath: path,
		Headers: map[string]string{"content-type": "application/json"},
		Body:    body,
		RequestContext: events.LambdaFunctionURLRequestContext{
			DomainName: "abc.lambda-url.us-east-1.on.aws",
			HTTP: events.LambdaFunctionURLRequestContextHTTPDescription{
				Method:   method,
				SourceIP: "203.0.113.7",
			},
		},
	}
}

func TestHandleTextResponse(t *testing.T) {
	var gotMethod, gotPath, gotBody, gotType, gotHost string
	a := New(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath, gotType, gotHost = r.Method, r.URL.Path, r.Header.Get("Content-Type"), r.Host
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"prompt is required"}`))
	}))

	resp, err := a.Handle(context.Background(), event(http.MethodPost, "/api/imagen4", `{"prompt":" "}`))
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/api/imagen4", gotPath)
	assert.Equal(t, `{"prompt":" "}`, gotBody)
	assert.Equal(t, "application/json", gotType)
	assert.Equal(t, "abc.lambda-url.us-east-1.on.aws", gotHost)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.False(t, resp.IsBase64Encoded)
	assert.Equal(t, `{"error":"prompt is required"}`, resp.Body)
	assert.Equal(t, "application/json; charset=utf-8", resp.Headers["Content-Type"])
}

func TestHandleBase64Request(t *testing.T) {
	var gotBody string
	a := New(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		_, _ = w.Write([]byte("ok"))
	}))

	ev := event(http.MethodPost, "/api/imagen4", base64.StdEncoding.EncodeToString([]byte(`{"prompt":"fox"}`)))
	ev.IsBase64Encoded = true

	resp, err := a.Handle(context.Background(), ev)
	require.NoError(t, err)
	assert.Equal(t, `{"prompt":"fox"}`, gotBody)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", resp.Body)
}

func TestHandleInvalidBase64(t *testing.T) {
	a := New(http.NotFoundHandler())
	ev := event(http.MethodPost, "/", "!!not base64!!")
	ev.IsBase64Encoded = true

	_, err := a.Handle(context.Background(), ev)
	assert.Error(t, err)
}

func TestHandleBinaryResponse(t *testing.T) {
	payload := []byte{0x89, 'P', 'N', 'G'}
	a := New(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		http.SetCookie(w, &http.Cookie{Name: "a", Value: "1"})
		_, _ = w.Write(payload)
	}))

	resp, err := a.Handle(context.Background(), event(http.MethodGet, "/latest.png", ""))
	require.NoError(t, err)
	assert.True(t, resp.IsBase64Encoded)
	assert.Equal(t, base64.StdEncoding.EncodeToString(payload), resp.Body)
	assert.Equal(t, []string{"a=1"}, resp.Cookies)
	assert.NotContains(t, resp.Headers, "Set-Cookie")
}

func TestHandleDefaults(t *testing.T) {
	var gotMethod, gotPath, gotQuery string
	a := New(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath, gotQuery = r.Method, r.URL.Path, r.URL.RawQuery
	}))

	resp, err := a.Handle(context.Background(), events.LambdaFunctionURLRequest{RawQueryString: "x=1"})
	require.NoError(t, err)
	assert.Equal(t, http.MethodGet, gotMethod)
	assert.Equal(t, "/", gotPath)
	assert.Equal(t, "x=1", gotQuery)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, resp.Body)
}
