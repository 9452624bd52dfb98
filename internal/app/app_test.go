package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	healthcheck "github.com/vladislavdragonenkov/ecom/internal/health"
	"github.com/vladislavdragonenkov/ecom/internal/version"
)

func TestRun_GracefulShutdown(t *testing.T) {
	cfg := testConfig(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Run(ctx, cfg) }()

	conn, err := grpc.NewClient(cfg.GRPCAddr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	defer conn.Close()
	client := healthpb.NewHealthClient(conn)

	require.Eventually(t, func() bool {
		callCtx, callCancel := context.WithTimeout(context.Background(), time.Second)
		defer callCancel()
		resp, err := client.Check(callCtx, &healthpb.HealthCheckRequest{})
		return err == nil && resp.GetStatus() == healthpb.HealthCheckResponse_SERVING
	}, 5*time.Second, 50*time.Millisecond)

	resp, err := http.Get(fmt.Sprintf("http://%s/readyz", cfg.MetricsAddr))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		require.True(t, errors.Is(err, context.Canceled), "got %v", err)
	case <-time.After(10 * time.Second):
		t.Fatal("Run did not stop")
	}
}

func TestRun_InvalidConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.DocumentDriver = "cassandra"

	err := Run(context.Background(), cfg)
	require.ErrorContains(t, err, "unsupported document driver")
}

func TestStartMetricsServer_Endpoints(t *testing.T) {
	logger := log.WithField("test", "http")
	addr := fmt.Sprintf("127.0.0.1:%d", findFreePort(t))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := healthcheck.NewHandler(version.GetVersion())
	srv := startMetricsServer(ctx, addr, logger, h)
	require.NotNil(t, srv)

	get := func(path string) (int, string) {
		resp, err := http.Get("http://" + addr + path)
		if err != nil {
			return 0, ""
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		return resp.StatusCode, string(body)
	}

	require.Eventually(t, func() bool {
		code, _ := get("/livez")
		return code == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	code, body := get("/metrics")
	require.Equal(t, http.StatusOK, code)
	require.NotEmpty(t, body)

	code, _ = get("/healthz")
	require.Equal(t, http.StatusOK, code)

	code, body = get("/readyz")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "ready", body)

	h.RegisterChecker("down", healthcheck.NewPingChecker("down", func(context.Context) error {
		return errors.New("connection refused")
	}))
	code, _ = get("/readyz")
	require.Equal(t, http.StatusServiceUnavailable, code)
	code, _ = get("/healthz")
	require.Equal(t, http.StatusServiceUnavailable, code)

	cancel()
	require.Eventually(t, func() bool {
		code, _ := get("/livez")
		return code == 0
	}, 2*time.Second, 20*time.Millisecond)
}

func TestShutdownHTTP_NilServer(t *testing.T) {
	require.NotPanics(t, func() {
		shutdownHTTP(nil, log.WithField("test", "http-nil"))
	})
}

func TestWatchStoreHealth_FollowsCheckers(t *testing.T) {
	h := healthcheck.NewHandler("test")
	healthy := make(chan bool, 1)
	healthy <- true
	state := true
	h.RegisterChecker("store", healthcheck.NewPingChecker("store", func(context.Context) error {
		select {
		case state = <-healthy:
		default:
		}
		if !state {
			return errors.New("down")
		}
		return nil
	}))

	srv := health.NewServer()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go watchStoreHealth(ctx, h, srv, 10*time.Millisecond, log.WithField("test", "watch"))

	status := func() healthpb.HealthCheckResponse_ServingStatus {
		resp, err := srv.Check(context.Background(), &healthpb.HealthCheckRequest{})
		if err != nil {
			return healthpb.HealthCheckResponse_UNKNOWN
		}
		return resp.GetStatus()
	}

	require.Eventually(t, func() bool {
		return status() == healthpb.HealthCheckResponse_SERVING
	}, time.Second, 10*time.Millisecond)

	healthy <- false
	require.Eventually(t, func() bool {
		return status() == healthpb.HealthCheckResponse_NOT_SERVING
	}, time.Second, 10*time.Millisecond)
}

func TestServingStatus(t *testing.T) {
	require.Equal(t, healthpb.HealthCheckResponse_SERVING,
		servingStatus(healthcheck.Response{Status: healthcheck.StatusHealthy}))
	require.Equal(t, healthpb.HealthCheckResponse_SERVING,
		servingStatus(healthcheck.Response{Status: healthcheck.StatusDegraded}))
	require.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING,
		servingStatus(healthcheck.Response{Status: healthcheck.StatusUnhealthy}))
}
