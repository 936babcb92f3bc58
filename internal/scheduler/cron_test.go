package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"

	"subscription-tracker-be/internal/pkg/logger"
	"subscription-tracker-be/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTrigger struct {
	mu      sync.Mutex
	sources []string
	err     error
}

func (s *stubTrigger) Trigger(_ context.Context, source string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sources = append(s.sources, source)
	return s.err
}

func (s *stubTrigger) Consume(context.Context) error { return nil }

type stubPurger struct {
	calls int
	err   error
}

func (p *stubPurger) PurgeExpired(context.Context) (int64, error) {
	p.calls++
	return 3, p.err
}

func TestCron_StartRejectsBadSchedule(t *testing.T) {
	c := NewCron("not a schedule", &stubTrigger{}, nil, logger.NewNopLogger())
	assert.Error(t, c.Start())
}

func TestCron_StartAndStop(t *testing.T) {
	c := NewCron("0 * * * *", &stubTrigger{}, &stubPurger{}, logger.NewNopLogger())
	require.NoError(t, c.Start())
	assert.Len(t, c.cron.Entries(), 2)
	<-c.Stop().Done()
}

func TestCron_RunPassPublishesCronSource(t *testing.T) {
	trigger := &stubTrigger{}
	c := NewCron("0 * * * *", trigger, nil, logger.NewNopLogger())

	c.runPass()
	trigger.err = errors.New("queue closed")
	c.runPass()

	assert.Equal(t, []string{service.SourceCron, service.SourceCron}, trigger.sources)
}

func TestCron_Purge(t *testing.T) {
	purger := &stubPurger{}
	c := NewCron("0 * * * *", &stubTrigger{}, purger, logger.NewNopLogger())

	c.purge()
	purger.err = errors.New("db down")
	c.purge()

	assert.Equal(t, 2, purger.calls)
}

func TestFields(t *testing.T) {
	assert.Equal(t, map[string]interface{}{"entry": 1, "now": "x"}, fields([]interface{}{"entry", 1, "now", "x", "dangling"}))
}
