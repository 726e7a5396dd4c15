package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type expirerStub struct {
	mu      sync.Mutex
	results []int
	err     error
	calls   int
	limits  []int
}

func (s *expirerStub) ExpireStaleSessions(_ context.Context, limit int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.limits = append(s.limits, limit)
	if s.err != nil {
		return 0, s.err
	}
	if len(s.results) == 0 {
		return 0, nil
	}
	n := s.results[0]
	s.results = s.results[1:]
	return n, nil
}

func (s *expirerStub) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func TestProcessExpiredSessions_NoItems(t *testing.T) {
	stub := &expirerStub{}
	job := NewVerificationExpiryJob(stub, time.Millisecond, 10)

	job.processExpiredSessions(context.Background())
	require.Equal(t, 1, stub.calls)
	require.Equal(t, []int{10}, stub.limits)
}

func TestProcessExpiredSessions_DrainsFullBatches(t *testing.T) {
	stub := &expirerStub{results: []int{10, 10, 3}}
	job := NewVerificationExpiryJob(stub, time.Millisecond, 10)

	job.processExpiredSessions(context.Background())
	require.Equal(t, 3, stub.calls)
}

func TestProcessExpiredSessions_Error(t *testing.T) {
	stub := &expirerStub{err: errors.New("db down")}
	job := NewVerificationExpiryJob(stub, time.Millisecond, 10)

	job.processExpiredSessions(context.Background())
	require.Equal(t, 1, stub.calls)
}

func TestProcessExpiredSessions_StopsOnCancelledContext(t *testing.T) {
	stub := &expirerStub{results: []int{10, 10, 10}}
	job := NewVerificationExpiryJob(stub, time.Millisecond, 10)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	job.processExpiredSessions(ctx)
	require.Equal(t, 1, stub.calls)
}

func TestStartStop_StopsByContext(t *testing.T) {
	stub := &expirerStub{}
	job := NewVerificationExpiryJob(stub, time.Millisecond, 10)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		job.Start(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return stub.callCount() > 0 }, time.Second, time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("job did not stop after context cancel")
	}
}

func TestStartStop_StopsByStopChannel(t *testing.T) {
	job := NewVerificationExpiryJob(&expirerStub{}, time.Hour, 10)

	done := make(chan struct{})
	go func() {
		job.Start(context.Background())
		close(done)
	}()

	job.Stop()
	job.Stop()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("job did not stop after Stop")
	}
}
