package cli

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBackend accepts alice/secret and issues tok123. When expired is set
// every authenticated route answers 401.
type fakeBackend struct {
	mu       sync.Mutex
	expired  bool
	lastURL  string
	lastBody map[string]any
}

func (b *fakeBackend) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/users/login", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req["email"] != "a@b.com" || req["password"] != "secret" {
			writeJSON(w, http.StatusUnauthorized, `{"detail":"Incorrect email or password"}`)
			return
		}
		writeJSON(w, http.StatusOK, `{"user":{"id":"1","email":"a@b.com","username":"alice"},"access_token":"tok123"}`)
	})
	mux.HandleFunc("/api/", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.lastURL = r.URL.String()
		b.lastBody = nil
		if r.Header.Get("Content-Type") == "application/json" {
			_ = json.NewDecoder(r.Body).Decode(&b.lastBody)
		}
		if b.expired || r.Header.Get("Authorization") != "Bearer tok123" {
			writeJSON(w, http.StatusUnauthorized, `{"detail":"Token expired"}`)
			return
		}
		switch {
		case strings.HasPrefix(r.URL.Path, "/api/reports/download/"):
			w.Header().Set("Content-Type", "text/markdown")
			_, _ = w.Write([]byte("# Report"))
		case r.URL.Path == "/api/analyze/trades":
			writeJSON(w, http.StatusOK, `{"success":true,"data":{"analysis_id":"an-1","score_result":{"score":72,"grade":"B"}}}`)
		default:
			writeJSON(w, http.StatusOK, `{"success":true,"data":{}}`)
		}
	})
	return mux
}

func (b *fakeBackend) expire() {
	b.mu.Lock()
	b.expired = true
	b.mu.Unlock()
}

func (b *fakeBackend) last() (string, map[string]any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastURL, b.lastBody
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

type harness struct {
	t       *testing.T
	srv     *httptest.Server
	backend *fakeBackend
	dataDir string
	reports string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	t.Setenv("TRADEGUARD_CONFIG", "")
	t.Setenv("TRADEGUARD_S3_BUCKET", "")
	t.Setenv("TRADEGUARD_METRICS_FILE", "")

	b := &fakeBackend{}
	srv := httptest.NewServer(b.handler())
	t.Cleanup(srv.Close)

	orig := getPassword
	getPassword = func(string, io.Writer) (string, error) { return "secret", nil }
	t.Cleanup(func() { getPassword = orig })

	dir := t.TempDir()
	return &harness{
		t:       t,
		srv:     srv,
		backend: b,
		dataDir: filepath.Join(dir, "data"),
		reports: filepath.Join(dir, "reports"),
	}
}

// run executes one CLI invocation and returns stdout, stderr and the error.
func (h *harness) run(args ...string) (string, string, error) {
	h.t.Helper()
	var stdout, stderr bytes.Buffer

	root := NewRootCommand(BuildInfo{Version: "test"})
	root.SetArgs(append([]string{
		"--api-url", h.srv.URL,
		"--data-dir", h.dataDir,
		"--report-dir", h.reports,
		"--log-level", "error",
	}, args...))
	root.SetIn(strings.NewReader(""))
	root.SetOut(&stdout)
	root.SetErr(&stderr)

	err := root.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func (h *harness) login() {
	h.t.Helper()
	_, _, err := h.run("login", "--email", "a@b.com")
	require.NoError(h.t, err)
}

func TestVersion(t *testing.T) {
	var out bytes.Buffer
	root := NewRootCommand(BuildInfo{Version: "1.2.3", Commit: "abc", BuildDate: "2026-01-01"})
	root.SetArgs([]string{"version"})
	root.SetOut(&out)

	require.NoError(t, root.Execute())
	assert.Equal(t, "tradeguard 1.2.3 (commit abc, built 2026-01-01)\n", out.String())
}

func TestLoginWhoamiLogout(t *testing.T) {
	h := newHarness(t)

	out, _, err := h.run("login", "--email", "a@b.com")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged in as alice (a@b.com)")

	out, _, err = h.run("whoami")
	require.NoError(t, err)
	assert.Equal(t, "alice <a@b.com> (id 1, username alice)\n", out)

	out, _, err = h.run("logout")
	require.NoError(t, err)
	assert.Equal(t, "Logged out.\n", out)

	out, _, err = h.run("whoami")
	require.NoError(t, err)
	assert.Equal(t, "Not logged in.\n", out)
}

func TestLogin_WrongPassword(t *testing.T) {
	h := newHarness(t)
	getPassword = func(string, io.Writer) (string, error) { return "nope", nil }

	_, _, err := h.run("login", "--email", "a@b.com")
	require.EqualError(t, err, "Incorrect email or password")

	out, _, err := h.run("whoami")
	require.NoError(t, err)
	assert.Equal(t, "Not logged in.\n", out)
}

func TestLogin_WrongPasswordKeepsSession(t *testing.T) {
	h := newHarness(t)
	h.login()

	getPassword = func(string, io.Writer) (string, error) { return "nope", nil }
	_, stderr, err := h.run("login", "--email", "a@b.com")
	require.EqualError(t, err, "Incorrect email or password")
	assert.NotContains(t, stderr, MsgSessionExpired)

	out, _, err := h.run("whoami")
	require.NoError(t, err)
	assert.Equal(t, "alice <a@b.com> (id 1, username alice)\n", out)
}

func TestMetricsFile(t *testing.T) {
	h := newHarness(t)
	h.login()
	path := filepath.Join(t.TempDir(), "gateway.prom")

	_, _, err := h.run("--metrics-file", path, "dashboard", "summary")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `tradeguard_gateway_requests_total{code="200",method="get"} 1`)
}

func TestLogin_PromptsForEmail(t *testing.T) {
	h := newHarness(t)
	var prompts []string
	orig := getSimpleText
	getSimpleText = func(_ *bufio.Reader, prompt string, _ io.Writer) (string, error) {
		prompts = append(prompts, prompt)
		return "a@b.com", nil
	}
	t.Cleanup(func() { getSimpleText = orig })

	_, _, err := h.run("login")
	require.NoError(t, err)
	assert.Equal(t, []string{"Email"}, prompts)
}

func TestAuthedCommand_RequiresLogin(t *testing.T) {
	h := newHarness(t)

	_, _, err := h.run("dashboard", "summary")
	assert.ErrorIs(t, err, errNotLoggedIn)
}

func TestSessionExpiry(t *testing.T) {
	h := newHarness(t)
	h.login()
	h.backend.expire()

	_, stderr, err := h.run("dashboard", "summary")
	require.EqualError(t, err, "Token expired")
	assert.Equal(t, 1, strings.Count(stderr, MsgSessionExpired))

	out, _, err := h.run("whoami")
	require.NoError(t, err)
	assert.Equal(t, "Not logged in.\n", out)
}

func TestAnalyzeSample(t *testing.T) {
	h := newHarness(t)
	h.login()

	out, _, err := h.run("analyze", "sample")
	require.NoError(t, err)
	assert.Contains(t, out, `"analysis_id": "an-1"`)

	u, _ := h.backend.last()
	assert.Equal(t, "/api/analyze/trades?use_sample=true", u)
}

func TestAnalyzeUpload_MissingFile(t *testing.T) {
	h := newHarness(t)
	h.login()

	_, _, err := h.run("analyze", "upload", filepath.Join(t.TempDir(), "absent.csv"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSettingsSet_SendsOnlyChangedFlags(t *testing.T) {
	h := newHarness(t)
	h.login()

	_, _, err := h.run("settings", "set", "--min-win-rate", "40", "--ai=false")
	require.NoError(t, err)

	u, body := h.backend.last()
	assert.Equal(t, "/api/users/settings", u)
	assert.Equal(t, map[string]any{"min_win_rate": 40.0, "ai_enabled": false}, body)

	_, _, err = h.run("settings", "set")
	assert.EqualError(t, err, "nothing to update")
}

func TestRiskSimulate_Validation(t *testing.T) {
	h := newHarness(t)
	h.login()

	_, _, err := h.run("risk", "simulate", "--score", "55")
	assert.Error(t, err)

	_, _, err = h.run("risk", "simulate", "--score", "55", "--improve", "over_leverage=50")
	require.NoError(t, err)
	_, body := h.backend.last()
	assert.Equal(t, map[string]any{"current_score": 55.0, "improvements": map[string]any{"over_leverage": 50.0}}, body)
}

func TestReportDownload(t *testing.T) {
	h := newHarness(t)
	h.login()

	out, _, err := h.run("report", "download", "r1")
	require.NoError(t, err)
	assert.Equal(t, "# Report", out)

	target := filepath.Join(t.TempDir(), "r1.md")
	_, _, err = h.run("report", "download", "r1", "-o", target)
	require.NoError(t, err)
	u, _ := h.backend.last()
	assert.Equal(t, "/api/reports/download/r1?format=file", u)
	b, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "# Report", string(b))

	out, _, err = h.run("report", "download", "r1", "--archive", "--format", "html")
	require.NoError(t, err)
	archived := filepath.Join(h.reports, "report-r1.html")
	assert.Equal(t, "Saved "+archived+"\n", out)
	b, err = os.ReadFile(archived)
	require.NoError(t, err)
	assert.Equal(t, "# Report", string(b))
}

func TestBrokerUpdate_NothingToUpdate(t *testing.T) {
	h := newHarness(t)
	h.login()

	_, _, err := h.run("broker", "update", "c1")
	assert.EqualError(t, err, "nothing to update")

	_, _, err = h.run("broker", "update", "c1", "--days-back", "7")
	require.NoError(t, err)
	_, body := h.backend.last()
	assert.Equal(t, map[string]any{"sync_days_back": 7.0}, body)
}
