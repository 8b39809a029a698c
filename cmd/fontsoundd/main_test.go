package main

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestResolveConfigPath(t *testing.T) {
	tests := []struct {
		name string
		flag string
		env  string
		want string
	}{
		{"flag wins", "/etc/a.yaml", "/etc/b.yaml", "/etc/a.yaml"},
		{"environment", "", "/etc/b.yaml", "/etc/b.yaml"},
		{"default", "", "", defaultConfigPath},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(configEnvVar, tt.env)
			if got := resolveConfigPath(tt.flag); got != tt.want {
				t.Errorf("resolveConfigPath(%q) = %q, want %q", tt.flag, got, tt.want)
			}
		})
	}
}

func TestParseFlags(t *testing.T) {
	t.Setenv(configEnvVar, "")
	var out bytes.Buffer

	opts, err := parseFlags([]string{"--config", "x.yaml"}, &out)
	if err != nil || opts.configPath != "x.yaml" {
		t.Errorf("parseFlags(--config) = %+v, %v", opts, err)
	}
	opts, err = parseFlags([]string{"-c", "y.yaml", "--version"}, &out)
	if err != nil || opts.configPath != "y.yaml" || !opts.showVersion {
		t.Errorf("parseFlags(-c --version) = %+v, %v", opts, err)
	}
	if _, err := parseFlags([]string{"--bogus"}, &out); err == nil {
		t.Error("parseFlags(--bogus) should fail")
	}
	if _, err := parseFlags([]string{"extra"}, &out); err == nil {
		t.Error("parseFlags(extra) should fail")
	}
}

func TestRun_HelpAndVersion(t *testing.T) {
	var out bytes.Buffer
	if err := run(context.Background(), []string{"--help"}, &out); err != nil {
		t.Errorf("run(--help) error = %v", err)
	}
	if !strings.Contains(out.String(), "--config") {
		t.Errorf("help output missing --config: %s", out.String())
	}

	out.Reset()
	if err := run(context.Background(), []string{"--version"}, &out); err != nil {
		t.Errorf("run(--version) error = %v", err)
	}
	if !strings.HasPrefix(out.String(), "fontsoundd "+version) {
		t.Errorf("version output = %q", out.String())
	}
}

func TestRun_InvalidConfig(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := run(ctx, []string{"--config", "/nonexistent/path/config.yaml"}, &bytes.Buffer{})
	if err == nil || !strings.Contains(err.Error(), "loading config") {
		t.Fatalf("run() error = %v, want loading config failure", err)
	}
}

func TestRun_ConfigValidationFails(t *testing.T) {
	configPath := writeConfig(t, `
device:
  name: ""
telemetry:
  enabled: true
`)
	err := run(context.Background(), []string{"--config", configPath}, &bytes.Buffer{})
	if err == nil {
		t.Fatal("run() should fail validation")
	}
	for _, want := range []string{"device.name", "telemetry requires influxdb"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q missing %q", err, want)
		}
	}
}

func TestRun_StartsAndStops(t *testing.T) {
	port := freePort(t)
	configPath := writeConfig(t, fmt.Sprintf(`
device:
  name: synth-test
database:
  path: %q
api:
  host: 127.0.0.1
  port: %d
logging:
  level: error
  format: text
`, filepath.Join(t.TempDir(), "fontsound.db"), port))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- run(ctx, []string{"--config", configPath}, &bytes.Buffer{}) }()

	if !waitHealthy(t, port) {
		t.Error("API never became healthy")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("run() error = %v", err)
		}
	case <-time.After(15 * time.Second):
		t.Fatal("run() did not return after cancel")
	}
}

func TestRun_TeardownEventReachesSubscribers(t *testing.T) {
	port := freePort(t)
	configPath := writeConfig(t, fmt.Sprintf(`
device:
  name: synth-test
database:
  path: %q
api:
  host: 127.0.0.1
  port: %d
logging:
  level: error
  format: text
`, filepath.Join(t.TempDir(), "fontsound.db"), port))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- run(ctx, []string{"--config", configPath}, &bytes.Buffer{}) }()
	if !waitHealthy(t, port) {
		t.Fatal("API never became healthy")
	}

	conn, resp, err := websocket.DefaultDialer.Dial(fmt.Sprintf("ws://127.0.0.1:%d/api/v1/ws", port), nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	resp.Body.Close()
	defer conn.Close()

	sub := map[string]any{"type": "subscribe", "id": "s", "payload": map[string]any{"channels": []string{"fontsound.teardown"}}}
	if err := conn.WriteJSON(sub); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}
	conn.SetReadDeadline(time.Now().Add(5 * time.Second)) //nolint:errcheck // test deadline
	if _, _, err := conn.ReadMessage(); err != nil {
		t.Fatalf("reading subscribe reply: %v", err)
	}

	gen, err := http.Post(fmt.Sprintf("http://127.0.0.1:%d/api/v1/fontsounds", port), //nolint:gosec,noctx // test URL
		"application/json", strings.NewReader(`{"count":3}`))
	if err != nil {
		t.Fatalf("POST /fontsounds error = %v", err)
	}
	gen.Body.Close()

	cancel()

	var msg struct {
		EventType string `json:"event_type"`
		Payload   struct {
			Count int `json:"count"`
		} `json:"payload"`
	}
	conn.SetReadDeadline(time.Now().Add(10 * time.Second)) //nolint:errcheck // test deadline
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("no teardown event before close: %v", err)
	}
	if msg.EventType != "fontsound.teardown" || msg.Payload.Count != 3 {
		t.Errorf("event = %+v, want teardown of 3", msg)
	}

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("run() error = %v", err)
		}
	case <-time.After(15 * time.Second):
		t.Fatal("run() did not return after cancel")
	}
}

// waitHealthy polls the health endpoint until it answers 200.
func waitHealthy(t *testing.T, port int) bool {
	t.Helper()
	url := fmt.Sprintf("http://127.0.0.1:%d/api/v1/health", port)
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get(url) //nolint:gosec,noctx // test URL
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return true
			}
		}
		time.Sleep(20 * time.Millisecond)
	}
	return false
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}
