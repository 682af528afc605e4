package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/dmitrijs2005/tradeguard/internal/client/models"
)

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func newTestGateway(t *testing.T, h http.HandlerFunc, opts ...Option) (*Gateway, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	opts = append([]Option{WithHTTPClient(srv.Client())}, opts...)
	g, err := New(srv.URL, opts...)
	require.NoError(t, err)
	return g, srv
}

func respond(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
}

func TestNew_RejectsBadBaseURL(t *testing.T) {
	for _, in := range []string{"", "localhost:8000", "ftp://host", "http://", "://bad"} {
		_, err := New(in)
		assert.Error(t, err, in)
	}

	g, err := New(" https://api.example.com/v1 ")
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com/v1", g.BaseURL())
}

func TestResolve(t *testing.T) {
	g, err := New("http://api.test/base/")
	require.NoError(t, err)

	got, err := g.resolve("/api/analyze/", url.Values{"skip": {"0"}, "limit": {"20"}})
	require.NoError(t, err)
	assert.Equal(t, "http://api.test/base/api/analyze/?limit=20&skip=0", got)

	got, err = g.resolve("api/reports/download/r1?format=file", nil)
	require.NoError(t, err)
	assert.Equal(t, "http://api.test/base/api/reports/download/r1?format=file", got)

	got, err = g.resolve("/api/analyze/"+url.PathEscape("a/b"), nil)
	require.NoError(t, err)
	assert.Equal(t, "http://api.test/base/api/analyze/a%2Fb", got)

	got, err = g.resolve("/api/analyze/"+url.PathEscape("../users/profile"), nil)
	require.NoError(t, err)
	assert.Equal(t, "http://api.test/base/api/analyze/..%2Fusers%2Fprofile", got)
}

func TestCall_EscapedIDStaysOneSegment(t *testing.T) {
	var mu sync.Mutex
	var seen []string
	g, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen = append(seen, r.URL.EscapedPath())
		mu.Unlock()
		respond(http.StatusOK, `{"success":true,"data":{}}`)(w, r)
	})
	ctx := context.Background()

	g.GetAnalysis(ctx, "a/b")
	g.GetAnalysis(ctx, "../users/profile")
	g.DownloadReport(ctx, "r 1", false)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{
		"/api/analyze/a%2Fb",
		"/api/analyze/..%2Fusers%2Fprofile",
		"/api/reports/download/r%201",
	}, seen)
}

func TestCall_NormalizesResponses(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantOK  bool
		wantErr string
		want    payload
	}{
		{"bare payload", 200, `{"name":"a","count":2}`, true, "", payload{"a", 2}},
		{"wrapped payload", 200, `{"success":true,"data":{"name":"b","count":3},"message":"Success","error":null}`, true, "", payload{"b", 3}},
		{"wrapped null data", 200, `{"success":true,"data":null,"message":"done"}`, true, "", payload{}},
		{"wrapper success false", 200, `{"success":false,"data":null,"message":"Error","error":"quota exceeded"}`, false, "quota exceeded", payload{}},
		{"created", 201, `{"name":"c","count":1}`, true, "", payload{"c", 1}},
		{"no content", 204, ``, true, "", payload{}},
		{"detail string", 400, `{"detail":"X"}`, false, "X", payload{}},
		{"error string", 400, `{"error":"Y"}`, false, "Y", payload{}},
		{"message string", 500, `{"message":"Z"}`, false, "Z", payload{}},
		{"detail wins", 400, `{"detail":"D","error":"E","message":"M"}`, false, "D", payload{}},
		{"empty values skipped", 400, `{"detail":null,"error":"","message":"M"}`, false, "M", payload{}},
		{"false and zero skipped", 400, `{"detail":false,"error":0,"message":"M"}`, false, "M", payload{}},
		{"neither", 404, `{"foo":"bar"}`, false, MsgRequestFailed, payload{}},
		{"structured detail", 422, `{"detail":[{"loc":["body","email"],"msg":"field required","type":"value_error.missing"}]}`,
			false, `[{"loc":["body","email"],"msg":"field required","type":"value_error.missing"}]`, payload{}},
		{"object detail", 400, `{"detail": {"code": 7, "reason": "x"}}`, false, `{"code":7,"reason":"x"}`, payload{}},
		{"numeric error", 400, `{"error":42}`, false, "42", payload{}},
		{"non-2xx unparseable", 502, `<html>Bad Gateway</html>`, false, MsgRequestFailed, payload{}},
		{"non-2xx array", 400, `["nope"]`, false, MsgRequestFailed, payload{}},
		{"non-2xx empty", 500, ``, false, MsgRequestFailed, payload{}},
		{"2xx unparseable", 200, `not json`, false, MsgNetworkError, payload{}},
		{"2xx empty", 200, ``, false, MsgNetworkError, payload{}},
		{"2xx wrong shape", 200, `{"name":123}`, false, MsgNetworkError, payload{}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			g, _ := newTestGateway(t, respond(tc.status, tc.body))

			res := Call[payload](context.Background(), g, http.MethodGet, "/x", nil)

			assert.Equal(t, tc.wantOK, res.OK)
			if tc.wantOK {
				assert.Empty(t, res.Error)
				assert.Equal(t, tc.want, res.Data)
			} else {
				assert.Equal(t, tc.wantErr, res.Error)
				assert.Equal(t, payload{}, res.Data)
			}
		})
	}
}

func TestCall_TransportFailures(t *testing.T) {
	t.Run("connection refused", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		srv.Close()

		g, err := New(srv.URL)
		require.NoError(t, err)

		res := Call[payload](context.Background(), g, http.MethodGet, "/x", nil)
		assert.False(t, res.OK)
		assert.Equal(t, MsgNetworkError, res.Error)
	})

	t.Run("cancelled context", func(t *testing.T) {
		g, _ := newTestGateway(t, respond(200, `{}`))
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		res := Call[payload](ctx, g, http.MethodGet, "/x", nil)
		assert.Equal(t, MsgNetworkError, res.Error)
	})

	t.Run("timeout", func(t *testing.T) {
		release := make(chan struct{})
		g, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}, WithTimeout(50*time.Millisecond))
		defer close(release)

		res := Call[payload](context.Background(), g, http.MethodGet, "/slow", nil)
		assert.Equal(t, MsgNetworkError, res.Error)
	})

	t.Run("unencodable body", func(t *testing.T) {
		var hits atomic.Int32
		g, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) { hits.Add(1) })

		res := Call[payload](context.Background(), g, http.MethodPost, "/x", map[string]any{"c": make(chan int)})
		assert.Equal(t, MsgRequestFailed, res.Error)
		assert.Zero(t, hits.Load())
	})
}

func TestCall_Headers(t *testing.T) {
	var got http.Header
	var gotBody []byte
	var gotMethod string
	g, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		gotMethod = r.Method
		gotBody, _ = io.ReadAll(r.Body)
		_, _ = io.WriteString(w, `{}`)
	}, WithUserAgent("tradeguard-test/1.0"))

	t.Run("anonymous", func(t *testing.T) {
		res := Call[payload](context.Background(), g, http.MethodPost, "/x", payload{Name: "n"})
		require.True(t, res.OK)

		assert.Equal(t, http.MethodPost, gotMethod)
		assert.Equal(t, "application/json", got.Get("Content-Type"))
		assert.Empty(t, got.Get("Authorization"))
		assert.Equal(t, "tradeguard-test/1.0", got.Get("User-Agent"))
		_, err := uuid.Parse(got.Get("X-Request-ID"))
		assert.NoError(t, err)
		assert.JSONEq(t, `{"name":"n","count":0}`, string(gotBody))
	})

	t.Run("credential and caller headers", func(t *testing.T) {
		g.SetCredentialSource(func() string { return "tok123" })
		defer g.SetCredentialSource(nil)

		res := Call[payload](context.Background(), g, http.MethodGet, "/x", nil,
			WithHeader("X-Trace", "abc"),
			WithHeader("X-Request-ID", "fixed-id"),
			WithHeader("Authorization", "Bearer spoofed"),
		)
		require.True(t, res.OK)

		assert.Equal(t, "Bearer tok123", got.Get("Authorization"))
		assert.Equal(t, "abc", got.Get("X-Trace"))
		assert.Equal(t, "fixed-id", got.Get("X-Request-ID"))
	})

	t.Run("empty credential sends no header", func(t *testing.T) {
		g.SetCredentialSource(func() string { return "" })
		defer g.SetCredentialSource(nil)

		Call[payload](context.Background(), g, http.MethodGet, "/x", nil)
		assert.Empty(t, got.Get("Authorization"))
	})

	t.Run("request ids are unique", func(t *testing.T) {
		Call[payload](context.Background(), g, http.MethodGet, "/x", nil)
		first := got.Get("X-Request-ID")
		Call[payload](context.Background(), g, http.MethodGet, "/x", nil)
		assert.NotEqual(t, first, got.Get("X-Request-ID"))
	})
}

func TestCall_CredentialReadPerCall(t *testing.T) {
	var seen []string
	var mu sync.Mutex
	g, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen = append(seen, r.Header.Get("Authorization"))
		mu.Unlock()
		_, _ = io.WriteString(w, `{}`)
	})

	cred := "a"
	g.SetCredentialSource(func() string { return cred })
	Call[payload](context.Background(), g, http.MethodGet, "/x", nil)
	cred = "b"
	Call[payload](context.Background(), g, http.MethodGet, "/x", nil)

	assert.Equal(t, []string{"Bearer a", "Bearer b"}, seen)
}

func TestCall_UnauthorizedInvokesHandlerOncePerCall(t *testing.T) {
	g, _ := newTestGateway(t, respond(http.StatusUnauthorized, `{"detail":"Token expired"}`))

	var calls atomic.Int32
	g.SetUnauthorizedHandler(func() { calls.Add(1) })

	res := Call[payload](context.Background(), g, http.MethodGet, "/api/users/profile", nil)
	assert.False(t, res.OK)
	assert.Equal(t, "Token expired", res.Error)
	assert.EqualValues(t, 1, calls.Load())

	_ = Call[payload](context.Background(), g, http.MethodGet, "/api/users/profile", nil)
	assert.EqualValues(t, 2, calls.Load())
}

func TestCall_UnauthorizedHandlerRunsBeforeReturn(t *testing.T) {
	g, _ := newTestGateway(t, respond(http.StatusUnauthorized, `not json`))

	handled := false
	g.SetUnauthorizedHandler(func() { handled = true })

	res := Call[payload](context.Background(), g, http.MethodGet, "/x", nil)
	assert.True(t, handled)
	assert.Equal(t, MsgRequestFailed, res.Error)
}

func TestCall_UnauthorizedWithTruncatedBody(t *testing.T) {
	g, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Length", "100")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"detail":`)
		w.(http.Flusher).Flush()
		panic(http.ErrAbortHandler)
	})

	var calls atomic.Int32
	g.SetUnauthorizedHandler(func() { calls.Add(1) })

	res := Call[payload](context.Background(), g, http.MethodGet, "/api/users/profile", nil)
	assert.False(t, res.OK)
	assert.Equal(t, MsgNetworkError, res.Error)
	assert.EqualValues(t, 1, calls.Load())
}

func TestCall_CredentialRejectionDoesNotSignal(t *testing.T) {
	g, _ := newTestGateway(t, respond(http.StatusUnauthorized, `{"detail":"Incorrect email or password"}`))

	var calls atomic.Int32
	g.SetCredentialSource(func() string { return "tok" })
	g.SetUnauthorizedHandler(func() { calls.Add(1) })
	ctx := context.Background()

	login := g.Login(ctx, models.LoginRequest{Email: "a@b.com", Password: "wrong"})
	assert.False(t, login.OK)
	assert.Equal(t, "Incorrect email or password", login.Error)

	reg := g.Register(ctx, models.RegisterRequest{Email: "a@b.com", Username: "a", Password: "pw"})
	assert.False(t, reg.OK)
	assert.Zero(t, calls.Load())

	g.Profile(ctx)
	assert.EqualValues(t, 1, calls.Load())
}

func TestCall_OtherStatusesDoNotInvokeHandler(t *testing.T) {
	for _, status := range []int{200, 400, 403, 404, 500} {
		g, _ := newTestGateway(t, respond(status, `{"detail":"x"}`))
		var calls atomic.Int32
		g.SetUnauthorizedHandler(func() { calls.Add(1) })

		Call[payload](context.Background(), g, http.MethodGet, "/x", nil)
		assert.Zero(t, calls.Load(), "status %d", status)
	}
}

func TestCall_ConcurrentUnauthorized(t *testing.T) {
	defer goleak.VerifyNone(t)

	srv := httptest.NewServer(respond(http.StatusUnauthorized, `{"detail":"Token expired"}`))
	defer srv.Close()

	g, err := New(srv.URL, WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	var calls atomic.Int32
	g.SetCredentialSource(func() string { return "tok" })
	g.SetUnauthorizedHandler(func() { calls.Add(1) })

	const n = 16
	var wg sync.WaitGroup
	results := make([]Result[payload], n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = Call[payload](context.Background(), g, http.MethodGet, "/api/dashboard/summary", nil)
		}(i)
	}
	wg.Wait()

	assert.EqualValues(t, n, calls.Load())
	for _, r := range results {
		assert.False(t, r.OK)
		assert.Equal(t, "Token expired", r.Error)
	}
	srv.Client().CloseIdleConnections()
}

func TestHooks_ConcurrentReplacement(t *testing.T) {
	defer goleak.VerifyNone(t)

	srv := httptest.NewServer(respond(http.StatusUnauthorized, `{}`))
	defer srv.Close()
	g, err := New(srv.URL, WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			g.SetCredentialSource(func() string { return "x" })
			g.SetUnauthorizedHandler(func() {})
		}()
		go func() {
			defer wg.Done()
			Call[payload](context.Background(), g, http.MethodGet, "/x", nil)
		}()
	}
	wg.Wait()
	srv.Client().CloseIdleConnections()
}

func TestUpload_SampleWithoutFile(t *testing.T) {
	var gotQuery url.Values
	var gotCT string
	var parts int
	var body []byte
	g, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		gotCT = r.Header.Get("Content-Type")
		body, _ = io.ReadAll(r.Body)
		_, _ = io.WriteString(w, `{"success":true,"data":{"analysis_id":"an-1"}}`)
	})

	res := g.UploadTrades(context.Background(), TradeUpload{UseSample: true})
	require.True(t, res.OK, res.Error)
	assert.Equal(t, "an-1", res.Data.AnalysisID)

	assert.Equal(t, "true", gotQuery.Get("use_sample"))
	assert.NotContains(t, gotCT, "application/json")
	assert.True(t, strings.HasPrefix(gotCT, "multipart/form-data; boundary="), gotCT)

	req, err := http.NewRequest(http.MethodPost, "/", strings.NewReader(string(body)))
	require.NoError(t, err)
	req.Header.Set("Content-Type", gotCT)
	mr, err := req.MultipartReader()
	require.NoError(t, err)
	for {
		_, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		parts++
	}
	assert.Zero(t, parts, "sample upload must not carry form parts")
}

func TestUpload_FileAndForcedContentType(t *testing.T) {
	var gotCT, gotField, gotName, gotContent, gotNote string
	g, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		gotCT = r.Header.Get("Content-Type")
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		gotNote = r.FormValue("note")
		for field, files := range r.MultipartForm.File {
			gotField = field
			gotName = files[0].Filename
			f, err := files[0].Open()
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			b, _ := io.ReadAll(f)
			_ = f.Close()
			gotContent = string(b)
		}
		_, _ = io.WriteString(w, `{"name":"ok","count":1}`)
	})

	file := &FilePart{Name: "trades.csv", ContentType: "text/csv", Content: strings.NewReader("trade_id,profit_loss\n1,50\n")}
	res := Upload[payload](context.Background(), g, "/upload", map[string]string{"note": "hi"}, file,
		WithHeader("Content-Type", "application/json"))

	require.True(t, res.OK, res.Error)
	assert.True(t, strings.HasPrefix(gotCT, "multipart/form-data"), gotCT)
	assert.Equal(t, "file", gotField)
	assert.Equal(t, "trades.csv", gotName)
	assert.Equal(t, "trade_id,profit_loss\n1,50\n", gotContent)
	assert.Equal(t, "hi", gotNote)
}

func TestUploadTrades_RequiresFileOrSample(t *testing.T) {
	var hits atomic.Int32
	g, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) { hits.Add(1) })

	res := g.UploadTrades(context.Background(), TradeUpload{})
	assert.False(t, res.OK)
	assert.Contains(t, res.Error, "use_sample")
	assert.Zero(t, hits.Load())
}

func TestDownload(t *testing.T) {
	t.Run("returns raw bytes without json headers", func(t *testing.T) {
		var gotCT, gotAuth, gotQuery string
		g, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
			gotCT = r.Header.Get("Content-Type")
			gotAuth = r.Header.Get("Authorization")
			gotQuery = r.URL.RawQuery
			w.Header().Set("Content-Type", "text/plain")
			_, _ = io.WriteString(w, "# Report\nnot json")
		})
		g.SetCredentialSource(func() string { return "tok" })

		data := g.DownloadReport(context.Background(), "rep-1", true)
		assert.Equal(t, "# Report\nnot json", string(data))
		assert.Empty(t, gotCT)
		assert.Equal(t, "Bearer tok", gotAuth)
		assert.Equal(t, "format=file", gotQuery)
	})

	t.Run("non-2xx yields nil", func(t *testing.T) {
		g, _ := newTestGateway(t, respond(404, `{"detail":"Report not found"}`))
		assert.Nil(t, g.DownloadReport(context.Background(), "missing", false))
	})

	t.Run("401 yields nil and signals", func(t *testing.T) {
		g, _ := newTestGateway(t, respond(401, `{"detail":"Not authenticated"}`))
		var calls atomic.Int32
		g.SetUnauthorizedHandler(func() { calls.Add(1) })

		assert.Nil(t, g.Download(context.Background(), "/api/reports/download/r", nil))
		assert.EqualValues(t, 1, calls.Load())
	})

	t.Run("transport failure yields nil", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		srv.Close()
		g, err := New(srv.URL)
		require.NoError(t, err)
		assert.Nil(t, g.Download(context.Background(), "/x", nil))
	})

	t.Run("empty id", func(t *testing.T) {
		g, err := New("http://127.0.0.1:1")
		require.NoError(t, err)
		assert.Nil(t, g.DownloadReport(context.Background(), "", false))
	})
}

func TestWithMetrics_CountsRequests(t *testing.T) {
	reg := prometheus.NewRegistry()
	g, _ := newTestGateway(t, respond(200, `{}`), WithMetrics(reg))

	Call[payload](context.Background(), g, http.MethodGet, "/x", nil)
	Call[payload](context.Background(), g, http.MethodGet, "/x", nil)

	families, err := reg.Gather()
	require.NoError(t, err)

	var total float64
	for _, mf := range families {
		if mf.GetName() != "tradeguard_gateway_requests_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			total += m.GetCounter().GetValue()
		}
	}
	assert.Equal(t, float64(2), total)

	// a second gateway on the same registry reuses the collectors
	_, err = New("http://localhost:8000", WithMetrics(reg))
	require.NoError(t, err)
}

func TestResult_ExactlyOneShape(t *testing.T) {
	bodies := []struct {
		status int
		body   string
	}{
		{200, `{"name":"a"}`}, {200, `garbage`}, {400, `{"detail":""}`}, {401, `{}`}, {500, `[1,2]`},
	}
	for _, b := range bodies {
		g, _ := newTestGateway(t, respond(b.status, b.body))
		res := Call[json.RawMessage](context.Background(), g, http.MethodGet, "/x", nil)
		if res.OK {
			assert.Empty(t, res.Error)
		} else {
			assert.NotEmpty(t, res.Error)
			assert.Nil(t, res.Data)
		}
	}
}
