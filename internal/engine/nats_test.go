package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/shift-assigner/backend/internal/domain"
	"github.com/sysu-ecnc-dev/shift-assigner/backend/internal/testutil"
	"github.com/sysu-ecnc-dev/shift-assigner/backend/internal/worker"
)

func TestNATS(t *testing.T) {
	_, nc := testutil.StartEmbeddedNATS(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub, err := worker.New(nil, nil, time.Minute, 0).SubscribeNATS(ctx, nc, "schedule.solve", "solvers")
	require.NoError(t, err)
	defer sub.Unsubscribe()
	require.NoError(t, nc.Flush())

	n := NewNATS(nc, "schedule.solve")

	callCtx, callCancel := context.WithTimeout(ctx, 10*time.Second)
	defer callCancel()
	assignments, err := n.Invoke(callCtx, request)
	require.NoError(t, err)
	assert.Equal(t, want, assignments)

	_, err = n.Invoke(callCtx, &domain.SolveRequest{Dates: request.Dates})
	assert.ErrorIs(t, err, domain.ErrNoEmployees)
}

func TestNATS_NoResponders(t *testing.T) {
	_, nc := testutil.StartEmbeddedNATS(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := NewNATS(nc, "schedule.nobody").Invoke(ctx, request)
	assert.ErrorIs(t, err, domain.ErrProcessFailure)
}
