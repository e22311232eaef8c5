package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"pinboard-api/media/mocks"
	"pinboard-api/tasks"
)

func newHandler(gw *mocks.Gateway) *AssetCleanupHandler {
	log, _ := test.NewNullLogger()
	return NewAssetCleanupHandler(gw, log.WithField("component", "test"))
}

func TestAssetCleanupHandler_Destroys(t *testing.T) {
	gw := new(mocks.Gateway)
	gw.On("Destroy", mock.Anything, "pinboard_posts/abc").Return(nil).Once()

	task, err := tasks.NewAssetCleanupTask("pinboard_posts/abc")
	require.NoError(t, err)

	assert.NoError(t, newHandler(gw).ProcessTask(context.Background(), task))
	gw.AssertExpectations(t)
}

func TestAssetCleanupHandler_GatewayErrorIsRetried(t *testing.T) {
	gw := new(mocks.Gateway)
	gw.On("Destroy", mock.Anything, "id").Return(errors.New("503"))

	task, err := tasks.NewAssetCleanupTask("id")
	require.NoError(t, err)

	err = newHandler(gw).ProcessTask(context.Background(), task)
	assert.Error(t, err)
	assert.False(t, errors.Is(err, asynq.SkipRetry))
}

func TestAssetCleanupHandler_BadPayloadSkipsRetry(t *testing.T) {
	gw := new(mocks.Gateway)

	for _, payload := range [][]byte{[]byte("{not json"), []byte(`{"public_id":""}`)} {
		err := newHandler(gw).ProcessTask(context.Background(), asynq.NewTask(tasks.TypeAssetCleanup, payload))
		assert.ErrorIs(t, err, asynq.SkipRetry)
	}
	gw.AssertNotCalled(t, "Destroy", mock.Anything, mock.Anything)
}
