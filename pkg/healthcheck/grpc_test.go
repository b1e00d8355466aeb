package healthcheck

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"

	"example.com/price-calculator/pkg/middleware"
)

const calculatorService = "price-calculator"

// startHealthServer поднимает gRPC health сервер на bufconn.
func startHealthServer(t *testing.T) (*health.Server, healthpb.HealthClient) {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer(middleware.ServerOptions()...)
	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)

	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return hs, healthpb.NewHealthClient(conn)
}

func TestUpdate(t *testing.T) {
	hs, client := startHealthServer(t)
	ctx := context.Background()

	status := Update(ctx, hs, calculatorService, func(context.Context) error { return nil })
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, status)

	resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{Service: calculatorService})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())

	status = Update(ctx, hs, calculatorService, func(context.Context) error { return errors.New("mysql ping: refused") })
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, status)

	resp, err = client.Check(ctx, &healthpb.HealthCheckRequest{Service: calculatorService})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, resp.GetStatus())
}

func TestWatch_StopsWithNotServing(t *testing.T) {
	hs := health.NewServer()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		Watch(ctx, hs, calculatorService, func(context.Context) error { return nil }, 10*time.Millisecond)
		close(done)
	}()

	require.Eventually(t, func() bool {
		resp, err := hs.Check(context.Background(), &healthpb.HealthCheckRequest{Service: calculatorService})
		return err == nil && resp.GetStatus() == healthpb.HealthCheckResponse_SERVING
	}, time.Second, 5*time.Millisecond)

	cancel()
	<-done

	resp, err := hs.Check(context.Background(), &healthpb.HealthCheckRequest{Service: calculatorService})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, resp.GetStatus())
}
