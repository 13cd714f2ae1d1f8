package soap

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPTransport_RoundTrip(t *testing.T) {
	var gotHeaders http.Header
	var gotBody string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeaders = r.Header.Clone()
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)

		w.Header().Set("Content-Type", "application/soap+xml; charset=utf-8")
		_, _ = io.WriteString(w, `<?xml version="1.0" encoding="utf-8"?>
<soap:Envelope xmlns:soap="http://www.w3.org/2003/05/soap-envelope">
  <soap:Body><PingResponse xmlns="urn:test"><PingResult>pong</PingResult></PingResponse></soap:Body>
</soap:Envelope>`)
	}))
	defer server.Close()

	transport := NewHTTPTransport(server.URL,
		WithCredentials("alice", "secret"),
		WithHeader("X-Extra", "1"),
		WithUserAgent("tfvc-test"),
		WithLogger(zerolog.Nop()),
	)
	invoker := NewInvoker(transport, testNS, WithInvokerLogger(zerolog.Nop()))

	resp, err := invoker.Invoke(context.Background(), "Ping", NewTextElement(n("value"), "1"))
	require.NoError(t, err)
	assert.Equal(t, "pong", resp.ChildText(n("PingResult")))

	assert.Contains(t, gotHeaders.Get("Content-Type"), `action="urn:test/Ping"`)
	assert.Equal(t, `"urn:test/Ping"`, gotHeaders.Get("SOAPAction"))
	assert.Equal(t, "tfvc-test", gotHeaders.Get("User-Agent"))
	assert.Equal(t, "1", gotHeaders.Get("X-Extra"))

	session, err := uuid.Parse(gotHeaders.Get("X-TFS-Session"))
	require.NoError(t, err)
	assert.Equal(t, transport.SessionID(), session)

	user, pass, ok := (&http.Request{Header: gotHeaders}).BasicAuth()
	require.True(t, ok)
	assert.Equal(t, "alice", user)
	assert.Equal(t, "secret", pass)

	assert.True(t, strings.HasPrefix(gotBody, "<?xml"))
	assert.Contains(t, gotBody, `<Ping xmlns="urn:test"><value>1</value></Ping>`)
}

func TestHTTPTransport_FaultStatusIsParsed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write(NewFaultEnvelope("Receiver", "WorkspaceNotFoundException", "missing").Bytes())
	}))
	defer server.Close()

	invoker := NewInvoker(NewHTTPTransport(server.URL), testNS, WithInvokerLogger(zerolog.Nop()))

	_, err := invoker.Invoke(context.Background(), "QueryWorkspace")
	fault, ok := IsFault(err)
	require.True(t, ok)
	assert.Equal(t, "WorkspaceNotFound", fault.Code)
}

func TestHTTPTransport_CommunicationErrors(t *testing.T) {
	t.Run("unexpected status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
		}))
		defer server.Close()

		_, err := NewHTTPTransport(server.URL).RoundTrip(context.Background(), "urn:test/Ping", NewEnvelope(NewElement(n("Ping"))))

		var commErr *CommunicationError
		require.ErrorAs(t, err, &commErr)
		assert.Equal(t, http.StatusUnauthorized, commErr.StatusCode)
		assert.Equal(t, "Ping", commErr.Operation)
	})

	t.Run("body is not XML", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, "<html><body>proxy error")
		}))
		defer server.Close()

		_, err := NewHTTPTransport(server.URL).RoundTrip(context.Background(), "urn:test/Ping", NewEnvelope(NewElement(n("Ping"))))
		assert.True(t, IsCommunicationError(err))
	})

	t.Run("connection refused with retries", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		url := server.URL
		server.Close()

		transport := NewHTTPTransport(url, WithRetry(2, time.Millisecond), WithLogger(zerolog.Nop()))
		_, err := transport.RoundTrip(context.Background(), "urn:test/Ping", NewEnvelope(NewElement(n("Ping"))))
		assert.True(t, IsCommunicationError(err))
	})

	t.Run("cancelled context", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-r.Context().Done()
		}))
		defer server.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := NewHTTPTransport(server.URL).RoundTrip(ctx, "urn:test/Ping", NewEnvelope(NewElement(n("Ping"))))
		assert.True(t, IsCommunicationError(err))
		assert.ErrorIs(t, err, context.Canceled)
	})
}
