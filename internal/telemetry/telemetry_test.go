package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSetupIsNoopWithoutEndpoint(t *testing.T) {
	shutdown, err := Setup(context.Background(), "", "dev")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, shutdown(ctx))
}

func TestSetupCreatesProvider(t *testing.T) {
	// Non-routable address, so nothing is exported.
	shutdown, err := Setup(context.Background(), "http://192.0.2.1:4318", "dev")
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
}
