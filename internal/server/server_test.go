package server

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sw33tLie/appshell/internal/host"
	"github.com/sw33tLie/appshell/pkg/api"
)

const testToken = "test-app-token"

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func newTestServer(t *testing.T) (*httptest.Server, *lockedBuffer) {
	t.Helper()
	out := &lockedBuffer{}
	s, err := New(testToken, host.NewTerminal("android", out, false), nil)
	require.NoError(t, err)
	s.DeviceToken = "device-1"

	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts, out
}

func do(t *testing.T, method, url, token, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	if token != "" {
		req.Header.Set(api.AppTokenHeader, token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

// postBridge posts msg to /bridge as JSON, with an Origin header when
// origin is set.
func postBridge(t *testing.T, base, origin, msg string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, base+"/bridge", strings.NewReader(msg))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func TestAppTokenRequired(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := do(t, http.MethodGet, ts.URL+"/version", "", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = do(t, http.MethodGet, ts.URL+"/version", "wrong", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestVersionAndTutorial(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := do(t, http.MethodGet, ts.URL+"/version", testToken, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	info, err := api.ParseUpdateInfo(readBody(t, resp))
	require.NoError(t, err)
	assert.Equal(t, "1.0.1", info.LatestVersion)
	assert.False(t, info.ForceUpdate)

	resp = do(t, http.MethodGet, ts.URL+"/tutorial", testToken, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	items, err := api.ParseTutorial(readBody(t, resp))
	require.NoError(t, err)
	assert.Len(t, items, 3)
}

func TestExchange(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := do(t, http.MethodPost, ts.URL+"/auth/exchange", testToken, `{"appToken":"test-app-token"}`)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = do(t, http.MethodPost, ts.URL+"/auth/exchange", testToken, `{"appToken":"other"}`)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = do(t, http.MethodPost, ts.URL+"/auth/exchange", testToken, `not json`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestLogin(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := do(t, http.MethodPost, ts.URL+"/auth/login", testToken, `{"email":"me@example.com","password":"pw"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), `"token"`)

	resp = do(t, http.MethodPost, ts.URL+"/auth/login", testToken, `{"email":"me@example.com"}`)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestBridgeEndpoint(t *testing.T) {
	ts, out := newTestServer(t)

	resp := postBridge(t, ts.URL, "", `{"type":"GET_DEVICE_TOKEN"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/x-ndjson", resp.Header.Get("Content-Type"))
	lines := strings.Split(strings.TrimSpace(readBody(t, resp)), "\n")
	require.Len(t, lines, 1)
	assert.JSONEq(t, `{"type":"DEVICE_TOKEN","token":"device-1","deviceType":"android"}`, lines[0])

	resp = postBridge(t, ts.URL, "", `{"command":"SHARE","payload":{"message":"hi","url":"https://x.test"}}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, readBody(t, resp))
	assert.Contains(t, out.String(), "Share: hi (https://x.test)")

	resp = postBridge(t, ts.URL, "", `{broken`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestBridgeRejectsForeignRequests(t *testing.T) {
	ts, out := newTestServer(t)
	openPage := `{"command":"OPEN_BROWSER","payload":{"url":"https://attacker.test/"}}`

	// A cross-origin page can send text/plain without a preflight.
	req, err := http.NewRequest(http.MethodPost, ts.URL+"/bridge", strings.NewReader(openPage))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "text/plain;charset=UTF-8")
	req.Header.Set("Origin", "https://attacker.test")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnsupportedMediaType, resp.StatusCode)

	resp = postBridge(t, ts.URL, "https://attacker.test", openPage)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	assert.NotContains(t, out.String(), "Open:")

	resp = postBridge(t, ts.URL, ts.URL, openPage)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, out.String(), "Open: https://attacker.test/")
}

func TestBridgeRejectsOversizedMessage(t *testing.T) {
	ts, out := newTestServer(t)
	msg := `{"command":"SHARE","payload":{"message":"` + strings.Repeat("a", maxBridgeMessage) + `"}}`

	resp := postBridge(t, ts.URL, "", msg)
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
	assert.NotContains(t, out.String(), "Share:")
}

func TestScriptAndIndex(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := do(t, http.MethodGet, ts.URL+"/bridge.js", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	js := readBody(t, resp)
	assert.Contains(t, js, "window.AppBridge")
	assert.Contains(t, js, "/bridge")

	resp = do(t, http.MethodGet, ts.URL+"/", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	page := readBody(t, resp)
	assert.Contains(t, page, "<script>")
	assert.Contains(t, page, "window.AppBridge")

	resp = do(t, http.MethodGet, ts.URL+"/nope", "", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestMetrics(t *testing.T) {
	ts, _ := newTestServer(t)

	postBridge(t, ts.URL, "", `{"command":"CONSOLE_LOG","payload":{"message":"x"}}`)
	do(t, http.MethodGet, ts.URL+"/version", "", "")
	do(t, http.MethodGet, ts.URL+"/version", testToken, "")

	resp := do(t, http.MethodGet, ts.URL+"/metrics", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := readBody(t, resp)
	assert.Contains(t, body, `appshell_bridge_messages_total{command="CONSOLE_LOG"} 1`)
	assert.Contains(t, body, `appshell_api_requests_total{code="401",endpoint="version"} 1`)
	assert.Contains(t, body, `appshell_api_requests_total{code="200",endpoint="version"} 1`)
}
