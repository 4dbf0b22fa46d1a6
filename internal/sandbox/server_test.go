package sandbox

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*Server, Options) {
	t.Helper()
	dir := newExtension(t)
	opts := Options{ExtensionDirs: []string{dir}, ContainerPath: filepath.Join(dir, ".sandbox", "container.json")}
	writeFile(t, opts.ContainerPath, testContainer)
	return NewServer(opts, nil), opts
}

func serve(s *Server, method, target, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestServer_Pages(t *testing.T) {
	s, _ := newTestServer(t)
	cases := []struct {
		path, contentType, contains string
	}{
		{"/", "text/html", "/container.js"},
		{"/viewSandbox.html", "text/html", "/api/extensions"},
		{"/engine.js", "javascript", "window.turbine"},
		{"/extensionbridge/extensionbridge-child.js", "javascript", "extensionBridge"},
		{"/healthz", "application/json", "ok"},
	}
	for _, c := range cases {
		rec := serve(s, http.MethodGet, c.path, "")
		require.Equal(t, http.StatusOK, rec.Code, c.path)
		assert.Contains(t, rec.Header().Get("Content-Type"), c.contentType, c.path)
		assert.Contains(t, rec.Body.String(), c.contains, c.path)
	}
}

func TestServer_ConfiguredEngine(t *testing.T) {
	s, opts := newTestServer(t)
	engine := filepath.Join(t.TempDir(), "engine.js")
	writeFile(t, engine, "/* real engine */")
	opts.EnginePath = engine
	s = NewServer(opts, nil)
	rec := serve(s, http.MethodGet, "/engine.js", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/* real engine */", rec.Body.String())
}

func TestServer_ContainerJS(t *testing.T) {
	s, opts := newTestServer(t)
	rec := serve(s, http.MethodGet, "/container.js", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "javascript")
	assert.True(t, strings.HasPrefix(rec.Body.String(), "window.container = "))

	// Descriptor edits show up without a restart.
	d, err := os.ReadFile(filepath.Join(opts.ExtensionDirs[0], DescriptorFile))
	require.NoError(t, err)
	edited := strings.Replace(string(d), `"My Extension"`, `"Renamed Extension"`, 1)
	writeFile(t, filepath.Join(opts.ExtensionDirs[0], DescriptorFile), edited)
	rec = serve(s, http.MethodGet, "/container.js", "")
	assert.Contains(t, rec.Body.String(), "Renamed Extension")

	writeFile(t, opts.ContainerPath, `{"dataElements": {"x": {"modulePath": "my-ext/nope.js"}}}`)
	rec = serve(s, http.MethodGet, "/container.js", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "unknown module")
}

func TestServer_ExtensionFiles(t *testing.T) {
	s, _ := newTestServer(t)

	rec := serve(s, http.MethodGet, "/extensionViews/my-ext/actions/sendEvent.html", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "<h1>Send event</h1>", rec.Body.String())

	rec = serve(s, http.MethodGet, "/hosted/my-ext/src/lib/main.js", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "module.exports = 'main';", rec.Body.String())

	rec = serve(s, http.MethodGet, "/extensionViews/other-ext/actions/sendEvent.html", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(s, http.MethodGet, "/extensionViews/my-ext/missing.html", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_RejectsPathTraversal(t *testing.T) {
	s, _ := newTestServer(t)
	for _, target := range []string{
		"/extensionViews/my-ext/../extension.json",
		"/hosted/my-ext/..%2f..%2fsecret.txt",
	} {
		rec := serve(s, http.MethodGet, target, "")
		assert.Equal(t, http.StatusForbidden, rec.Code, target)
	}
}

func TestServer_HidesSandboxFiles(t *testing.T) {
	s, opts := newTestServer(t)
	dir := opts.ExtensionDirs[0]
	writeFile(t, filepath.Join(dir, ".sandbox", "sandbox.yaml"), "registry:\n  accessToken: secret\n")
	writeFile(t, filepath.Join(dir, ".env"), "TOKEN=secret")
	for _, target := range []string{
		"/hosted/my-ext/.sandbox/sandbox.yaml",
		"/hosted/my-ext/.sandbox/container.json",
		"/hosted/my-ext/%2esandbox/sandbox.yaml",
		"/hosted/my-ext/.env",
		"/hosted/my-ext/src/../.sandbox/sandbox.yaml",
	} {
		rec := serve(s, http.MethodGet, target, "")
		assert.Equal(t, http.StatusForbidden, rec.Code, target)
		assert.NotContains(t, rec.Body.String(), "secret", target)
	}
}

func TestServer_Extensions(t *testing.T) {
	s, _ := newTestServer(t)
	rec := serve(s, http.MethodGet, "/api/extensions", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got []ExtensionSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "my-ext", got[0].Name)
	urls := make([]string, 0, len(got[0].Views))
	for _, v := range got[0].Views {
		urls = append(urls, v.URL)
	}
	assert.Equal(t, []string{
		"/extensionViews/my-ext/configuration/configuration.html",
		"/extensionViews/my-ext/actions/sendEvent.html",
		"/extensionViews/my-ext/dataElements/xdmObject.html",
	}, urls)
}

func TestServer_PostContainer(t *testing.T) {
	s, opts := newTestServer(t)

	body := `{"extensions": {"my-ext": {"settings": {"edited": true}}}, "rules": [], "property": {"name": "edited"}}`
	rec := serve(s, http.MethodPost, "/container", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	saved, err := LoadContainer(opts.ContainerPath)
	require.NoError(t, err)
	assert.Equal(t, "edited", saved.Property.Name)
	assert.Equal(t, true, saved.Extensions["my-ext"].Settings["edited"])

	rec = serve(s, http.MethodGet, "/container.js", "")
	assert.Contains(t, rec.Body.String(), `"edited": true`)
}

func TestServer_PostContainerRejected(t *testing.T) {
	s, opts := newTestServer(t)
	before, err := os.ReadFile(opts.ContainerPath)
	require.NoError(t, err)

	cases := map[string]string{
		"duplicate key": `{"rules": [], "rules": []}`,
		"syntax":        `{"rules": [`,
		"invalid rule":  `{"rules": [{"actions": [{"modulePath": "my-ext/src/lib/actions/sendEvent.js"}]}]}`,
	}
	for name, body := range cases {
		rec := serve(s, http.MethodPost, "/container", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, name)
	}
	rec := serve(s, http.MethodPost, "/container", cases["duplicate key"])
	assert.Contains(t, rec.Body.String(), "issues")

	after, err := os.ReadFile(opts.ContainerPath)
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after), "rejected bodies are not written")
}

func TestServer_StartShutdown(t *testing.T) {
	s, _ := newTestServer(t)
	done := make(chan error, 1)
	go func() { done <- s.Start("127.0.0.1:0") }()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	// Shutdown may race Start; retry until the listener is gone.
	require.Eventually(t, func() bool { return s.Shutdown(ctx) == nil }, 5*time.Second, 20*time.Millisecond)
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-ctx.Done():
		t.Fatal("server did not stop")
	}
}

func TestWatcher_ReportsChanges(t *testing.T) {
	dir := newExtension(t)
	src := Sources{ExtensionDirs: []string{dir}, ContainerPath: filepath.Join(dir, ".sandbox", "container.json")}
	w, err := NewWatcher(src, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	changes := make(chan Change, 16)
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		_ = w.Run(ctx, func(c Change) { changes <- c })
	}()
	defer func() {
		cancel()
		<-stopped
	}()

	writeFile(t, filepath.Join(dir, "src/lib/actions/sendEvent.js"), "module.exports = 'changed';")
	timeout := time.After(5 * time.Second)
	for {
		select {
		case c := <-changes:
			if strings.HasSuffix(c.Path, "sendEvent.js") {
				return
			}
		case <-timeout:
			t.Fatal("no change reported")
		}
	}
}
