package service

import (
	"context"
	"testing"

	"subscription-tracker-be/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingBroadcaster struct {
	events []string
	data   []interface{}
}

func (b *recordingBroadcaster) Broadcast(eventType string, data interface{}) {
	b.events = append(b.events, eventType)
	b.data = append(b.data, data)
}

func TestWithStatusBroadcast(t *testing.T) {
	inner := &countingScheduler{}
	b := &recordingBroadcaster{}
	svc := WithStatusBroadcast(inner, b)

	status := svc.RunOnce(context.Background(), SourceManual)
	require.NotNil(t, status)

	assert.Equal(t, []string{SchedulerStatusEvent}, b.events)
	require.Len(t, b.data, 1)
	assert.Equal(t, SourceManual, b.data[0].(*entity.SchedulerRunStatus).Source)

	latest, err := svc.LatestStatus(context.Background())
	assert.NoError(t, err)
	assert.Nil(t, latest)
}

func TestWithStatusBroadcast_NilBroadcaster(t *testing.T) {
	inner := &countingScheduler{}
	assert.Same(t, inner, WithStatusBroadcast(inner, nil))
}
