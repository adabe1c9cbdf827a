package main

import (
	"context"
	"errors"
	"net"
	"os"
	"testing"
	"time"

	"marathon-admin/internal/config"
	"marathon-admin/internal/dashboard"
	"marathon-admin/internal/stream"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

var errDial = errors.New("dial error")

func testDeps(wsURL string) deps {
	return deps{
		loadConfig: func() config.Config {
			return config.Config{APIBaseURL: "http://127.0.0.1:0", StreamURL: wsURL, DownloadDir: os.TempDir()}
		},
		newLogger: func() (*zap.Logger, error) { return zap.NewNop(), nil },
		connectPush: func(ctx context.Context, url string) (*dashboard.PushClient, error) {
			return dashboard.ConnectPush(ctx, url)
		},
		notify: func(chan<- os.Signal, ...os.Signal) {},
	}
}

func startStreamServer(t *testing.T) string {
	t.Helper()
	hub := stream.NewHub(nil)
	app := fiber.New()
	stream.RegisterRoutes(app.Group("/stream"), hub)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen error: %v", err)
	}
	go func() {
		_ = app.Listener(ln)
	}()
	t.Cleanup(func() {
		_ = app.Shutdown()
		_ = ln.Close()
	})
	return "ws://" + ln.Addr().String() + "/stream/ws"
}

func TestRunConnectError(t *testing.T) {
	d := testDeps("")
	d.connectPush = func(context.Context, string) (*dashboard.PushClient, error) {
		return nil, errDial
	}
	if err := run(context.Background(), d); err == nil {
		t.Fatalf("expected connect error")
	}
}

func TestRunLoggerError(t *testing.T) {
	d := testDeps("")
	d.newLogger = func() (*zap.Logger, error) { return nil, errDial }
	if err := run(context.Background(), d); err == nil {
		t.Fatalf("expected logger error")
	}
}

func TestRunShutsDownOnContextCancel(t *testing.T) {
	wsURL := startStreamServer(t)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	if err := run(ctx, testDeps(wsURL)); err != nil {
		t.Fatalf("run returned error: %v", err)
	}
}

func TestDefaultDeps(t *testing.T) {
	d := defaultDeps()
	if d.loadConfig == nil || d.newLogger == nil || d.connectPush == nil || d.notify == nil {
		t.Fatalf("expected default deps to be set")
	}
}
