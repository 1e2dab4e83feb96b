package admission_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	testifymock "github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dwallet-labs/dwallet-network-sub004/engine/mpc/admission"
	"github.com/dwallet-labs/dwallet-network-sub004/model/dwallet"
	"github.com/dwallet-labs/dwallet-network-sub004/module"
	"github.com/dwallet-labs/dwallet-network-sub004/module/mock"
	"github.com/dwallet-labs/dwallet-network-sub004/utils/unittest"
)

func TestPuller_RetriesTransientFailures(t *testing.T) {
	source := mock.NewEventSource(t)
	events := []dwallet.RawEvent{
		{Type: admission.EventTypeSign, Contents: unittest.RandomBytes(16)},
		{Type: admission.EventTypePresign, Contents: unittest.RandomBytes(16)},
	}
	source.On("PullUncompletedEvents", testifymock.Anything, uint64(5)).Return(nil, errors.New("unavailable")).Twice()
	source.On("PullUncompletedEvents", testifymock.Anything, uint64(5)).Return(events, nil).Once()

	puller := admission.NewPuller(unittest.Logger(), source, 10*time.Millisecond)
	pulled, err := puller.Pull(context.Background(), 5)
	require.NoError(t, err)

	require.Len(t, pulled, 2)
	for _, event := range pulled {
		assert.True(t, event.Pulled)
	}
}

func TestPuller_EpochEnded(t *testing.T) {
	source := mock.NewEventSource(t)
	source.On("PullUncompletedEvents", testifymock.Anything, uint64(5)).Return(nil, module.ErrEpochEnded).Once()

	puller := admission.NewPuller(unittest.Logger(), source, time.Hour)
	pulled, err := puller.Pull(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, pulled)
}

func TestPuller_StopsOnCancellation(t *testing.T) {
	source := mock.NewEventSource(t)
	source.On("PullUncompletedEvents", testifymock.Anything, uint64(5)).Return(nil, errors.New("unavailable"))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	puller := admission.NewPuller(unittest.Logger(), source, 10*time.Millisecond)
	var err error
	unittest.RequireReturnsBefore(t, func() {
		_, err = puller.Pull(ctx, 5)
	}, time.Second, "pull did not stop on cancellation")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}
