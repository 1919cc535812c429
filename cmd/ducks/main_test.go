package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/vango-dev/ducks/internal/config"
	"github.com/vango-dev/ducks/internal/mockapi"
	"github.com/vango-dev/ducks/pkg/devtools"
	"github.com/vango-dev/ducks/pkg/resource"
	"github.com/vango-dev/ducks/pkg/store"
	"github.com/vango-dev/ducks/pkg/transport"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// backend serves a widgets collection with two seeded entries.
func backend(t *testing.T) *httptest.Server {
	t.Helper()
	api := mockapi.New(mockapi.WithLogger(quietLogger()))
	api.Add("/widgets", []map[string]any{
		{"id": float64(1), "name": "gear"},
		{"id": float64(2), "name": "cog"},
	})
	srv := httptest.NewServer(api.Handler())
	t.Cleanup(srv.Close)
	return srv
}

func writeConfig(t *testing.T, cfg string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), config.ConfigFileName)
	if err := os.WriteFile(path, []byte(cfg), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func widgetConfig(t *testing.T, url string) string {
	return writeConfig(t, `{
  "server": {"addr": ":0", "metrics": true, "devtools": true},
  "log": {"level": "error"},
  "resources": [{"name": "widget", "url": "`+url+`/widgets"}]
}`)
}

func execute(args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestExecQuery(t *testing.T) {
	srv := backend(t)
	path := widgetConfig(t, srv.URL)

	code, out, errOut := execute("--config", path, "exec", "widget", "query")
	if code != 0 {
		t.Fatalf("exit code = %d, stderr:\n%s", code, errOut)
	}

	var state store.State
	if err := json.Unmarshal([]byte(out), &state); err != nil {
		t.Fatalf("stdout is not state JSON: %v\n%s", err, out)
	}
	if len(state.Data) != 2 {
		t.Errorf("data = %v, want 2 entries", state.Data)
	}
}

func TestExecCreateWithPayload(t *testing.T) {
	srv := backend(t)
	path := widgetConfig(t, srv.URL)

	code, out, errOut := execute("--config", path, "exec", "widget", "$create", `{"name":"sprocket"}`)
	if code != 0 {
		t.Fatalf("exit code = %d, stderr:\n%s", code, errOut)
	}
	if !strings.Contains(out, `"sprocket"`) {
		t.Errorf("stdout = %s, want created entity", out)
	}
}

func TestExecErrors(t *testing.T) {
	srv := backend(t)
	path := widgetConfig(t, srv.URL)

	tests := []struct {
		name string
		args []string
		code string
	}{
		{"unknown resource", []string{"exec", "gadget", "query"}, "D120"},
		{"unknown action", []string{"exec", "widget", "explode"}, "D121"},
		{"invalid payload", []string{"exec", "widget", "get", "{nope"}, "D122"},
		{"remote failure", []string{"exec", "widget", "get", `{"id":42}`}, "D140"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, errOut := execute(append([]string{"--config", path}, tt.args...)...)
			if code != 1 {
				t.Errorf("exit code = %d, want 1", code)
			}
			if !strings.Contains(errOut, tt.code) {
				t.Errorf("stderr does not mention %s:\n%s", tt.code, errOut)
			}
		})
	}
}

func TestExecTimeout(t *testing.T) {
	block := make(chan struct{})
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-block:
		case <-r.Context().Done():
		}
	}))
	defer slow.Close()
	defer close(block)

	path := widgetConfig(t, slow.URL)
	code, _, errOut := execute("--config", path, "exec", "--timeout", "50ms", "widget", "query")
	if code != 1 || !strings.Contains(errOut, "D123") {
		t.Errorf("code = %d, stderr:\n%s", code, errOut)
	}
}

func TestMissingConfig(t *testing.T) {
	code, _, errOut := execute("--config", filepath.Join(t.TempDir(), "ducks.json"), "list")
	if code != 1 || !strings.Contains(errOut, "D101") {
		t.Errorf("code = %d, stderr:\n%s", code, errOut)
	}
}

func TestList(t *testing.T) {
	path := widgetConfig(t, "http://localhost:4000")

	code, out, errOut := execute("--config", path, "list")
	if code != 0 {
		t.Fatalf("exit code = %d, stderr:\n%s", code, errOut)
	}
	for _, want := range []string{"WIDGET (http)", "WIDGET_$QUERY", "WIDGET_$DELETE", "WIDGET_$CLEAR_ERRORS"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestErrorFormat(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "ducks.json")

	tests := []struct {
		format string
		want   string
	}{
		{"json", `"code":"D101"`},
		{"compact", "D101: Config file not found"},
		{"text", "Config file not found"},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			code, _, errOut := execute("--config", missing, "--error-format", tt.format, "--no-color", "list")
			if code != 1 || !strings.Contains(errOut, tt.want) {
				t.Errorf("code = %d, stderr:\n%s", code, errOut)
			}
		})
	}

	t.Run("uncoded error", func(t *testing.T) {
		code, _, errOut := execute("--error-format", "json", "no-such-command")
		if code != 1 || !strings.Contains(errOut, `"code":"D100"`) || !strings.Contains(errOut, "unknown command") {
			t.Errorf("code = %d, stderr:\n%s", code, errOut)
		}
	})
}

func TestExplain(t *testing.T) {
	code, out, _ := execute("explain")
	if code != 0 || !strings.Contains(out, "D100") || !strings.Contains(out, "D150") {
		t.Errorf("code = %d, out:\n%s", code, out)
	}

	code, out, _ = execute("explain", "d123")
	if code != 0 || !strings.Contains(out, "D123: Action timed out") {
		t.Errorf("code = %d, out:\n%s", code, out)
	}

	code, _, errOut := execute("explain", "D999")
	if code != 1 || !strings.Contains(errOut, "unknown error code") {
		t.Errorf("code = %d, stderr:\n%s", code, errOut)
	}
}

func TestVersionShort(t *testing.T) {
	code, out, _ := execute("version", "--short")
	if code != 0 || strings.TrimSpace(out) != version {
		t.Errorf("code = %d, out = %q", code, out)
	}
}

func TestNormalizeAction(t *testing.T) {
	for in, want := range map[string]string{
		"query":   "$QUERY",
		"$get":    "$GET",
		" DELETE": "$DELETE",
	} {
		if got := normalizeAction(in); got != want {
			t.Errorf("normalizeAction(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"unknown": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestDevServerQueryLogsFailures(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	unbound := resource.MustNew("gadget", resource.WithURL("http://127.0.0.1:1/gadgets"), resource.WithLogger(quietLogger()))
	unbound.MustRegisterDefaultActions()

	block := make(chan struct{})
	defer close(block)
	stalled := resource.MustNew("widget", resource.WithLogger(quietLogger()))
	stalled.MustRegisterAsync(resource.AsyncAction{
		Name:    resource.ActionQuery,
		Reducer: resource.ReplaceAll,
		Request: func(ctx context.Context, _ any) (*transport.Response, error) {
			<-block
			return nil, ctx.Err()
		},
	})
	stalled.Configure(store.New(store.WithLogger(quietLogger())))

	dev := &devServer{logger: logger, resources: []*resource.Resource{unbound, stalled}}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	dev.query(ctx)

	out := logs.String()
	for _, want := range []string{
		"initial query not dispatched",
		"resource=GADGET",
		"initial query abandoned",
		"resource=WIDGET",
		"context deadline exceeded",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("logs missing %q:\n%s", want, out)
		}
	}
}

func TestDevServer(t *testing.T) {
	cfg, err := config.Parse([]byte(`{
  "server": {"metrics": true, "devtools": true},
  "resources": [{"name": "widget", "url": "http://127.0.0.1:1/widgets", "seed": [{"id": 1, "name": "gear"}]}]
}`))
	if err != nil {
		t.Fatal(err)
	}

	dev, err := newDevServer(cfg, quietLogger())
	if err != nil {
		t.Fatal(err)
	}
	defer dev.close()

	srv := httptest.NewServer(dev.handler)
	defer srv.Close()

	t.Run("mock api", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/widgets/1")
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("status = %d, want 200", resp.StatusCode)
		}
	})

	t.Run("store slice", func(t *testing.T) {
		if got := dev.store.Keys(); len(got) != 1 || got[0] != "widget" {
			t.Errorf("Keys = %v", got)
		}
		if got := dev.store.Slice("widget").Data; len(got) != 1 {
			t.Errorf("seed state = %v", got)
		}
	})

	t.Run("devtools", func(t *testing.T) {
		wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + DevtoolsPath
		conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
		if err != nil {
			t.Fatal(err)
		}
		defer conn.Close()
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))

		var msg devtools.Message
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatal(err)
		}
		if msg.Type != devtools.TypeSnapshot {
			t.Errorf("first message = %q, want snapshot", msg.Type)
		}
		if _, ok := msg.State["widget"]; !ok {
			t.Errorf("snapshot missing widget slice: %v", msg.State)
		}
	})

	t.Run("metrics", func(t *testing.T) {
		// The backend URL is unreachable, so the query records a failure.
		dev.query(context.Background())

		resp, err := http.Get(srv.URL + "/metrics")
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		if !strings.Contains(string(body), "ducks_actions_dispatched_total") {
			t.Errorf("metrics missing ducks_actions_dispatched_total:\n%s", body)
		}
		if len(dev.store.Slice("widget").Errors) == 0 {
			t.Error("failed query did not set errors")
		}
	})
}
