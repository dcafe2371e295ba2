package proxy

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aashari/go-generative-gateway/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCanceller struct {
	mu       sync.Mutex
	sessions []string
}

func (f *fakeCanceller) CancelSession(sessionID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions = append(f.sessions, sessionID)
	return 1
}

func TestSessionManager_NewRequestSupersedesOld(t *testing.T) {
	m := NewSessionManager(nil)

	ctx1, tok1, release1 := m.Begin(context.Background(), "s1")
	defer release1()
	ctx2, tok2, release2 := m.Begin(context.Background(), "s1")
	defer release2()

	require.Error(t, ctx1.Err())
	assert.True(t, errors.Is(context.Cause(ctx1), ErrSuperseded))
	assert.NoError(t, ctx2.Err())

	assert.False(t, m.isCurrent("s1", tok1))
	assert.True(t, m.isCurrent("s1", tok2))

	assert.False(t, m.AppendIfCurrent("s1", tok1, types.SessionMessage{Role: "assistant", Content: "stale"}))
	assert.True(t, m.AppendIfCurrent("s1", tok2, types.SessionMessage{Role: "assistant", Content: "fresh"}))

	msgs := m.Messages("s1")
	require.Len(t, msgs, 1)
	assert.Equal(t, "fresh", msgs[0].Content)
	assert.NotEmpty(t, msgs[0].ID)
	assert.False(t, msgs[0].Timestamp.IsZero())
}

func TestSessionManager_SessionsAreIndependent(t *testing.T) {
	m := NewSessionManager(nil)
	ctxA, _, releaseA := m.Begin(context.Background(), "a")
	defer releaseA()
	_, _, releaseB := m.Begin(context.Background(), "b")
	defer releaseB()

	assert.NoError(t, ctxA.Err())
}

func TestSessionManager_ReleaseKeepsLaterOwner(t *testing.T) {
	m := NewSessionManager(nil)
	_, _, release1 := m.Begin(context.Background(), "s")
	ctx2, tok2, release2 := m.Begin(context.Background(), "s")
	defer release2()

	release1()
	assert.NoError(t, ctx2.Err())
	assert.True(t, m.isCurrent("s", tok2))
}

func TestSessionManager_EmptySessionID(t *testing.T) {
	m := NewSessionManager(nil)
	ctx, tok, release := m.Begin(context.Background(), "")
	assert.Zero(t, tok)
	assert.NoError(t, ctx.Err())
	release()
	assert.Error(t, ctx.Err())

	assert.False(t, m.AppendIfCurrent("", 0, types.SessionMessage{Content: "x"}))
	assert.Empty(t, m.Messages(""))
}

func TestSessionManager_Reset(t *testing.T) {
	jobs := &fakeCanceller{}
	m := NewSessionManager(jobs)

	ctx, _, release := m.Begin(context.Background(), "s")
	defer release()
	m.Append("s", types.SessionMessage{Role: "user", Content: "hi"})
	require.Len(t, m.Messages("s"), 1)

	m.Reset(context.Background(), "s")

	assert.Error(t, ctx.Err())
	assert.Empty(t, m.Messages("s"))
	assert.Equal(t, []string{"s"}, jobs.sessions)
}

func TestSessionManager_UpdateJobMessage(t *testing.T) {
	m := NewSessionManager(nil)
	m.Append("s", types.SessionMessage{Role: "assistant", Content: "Rendering...", JobID: "job-1"})

	assert.True(t, m.UpdateJobMessage("s", "job-1", "Rendering...\n\ndone"))
	assert.False(t, m.UpdateJobMessage("s", "job-2", "x"))
	assert.False(t, m.UpdateJobMessage("other", "job-1", "x"))
	assert.Equal(t, "Rendering...\n\ndone", m.Messages("s")[0].Content)
}

func TestSessionManager_MessagesReturnsCopy(t *testing.T) {
	m := NewSessionManager(nil)
	m.Append("s", types.SessionMessage{Content: "a"})
	msgs := m.Messages("s")
	msgs[0].Content = "tampered"
	assert.Equal(t, "a", m.Messages("s")[0].Content)
}

func TestSessionManager_ConcurrentBegin(t *testing.T) {
	m := NewSessionManager(nil)
	var wg sync.WaitGroup
	releases := make(chan func(), 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, release := m.Begin(context.Background(), "busy")
			releases <- release
		}()
	}
	wg.Wait()
	close(releases)
	for release := range releases {
		release()
	}
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "❌ **Error:** boom", ErrorMessage("boom"))
}

func TestSessionManager_IdleSessionsAreDropped(t *testing.T) {
	m := NewSessionManager(nil)
	m.SetIdleTTL(time.Hour)
	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return clock }

	m.Append("idle", types.SessionMessage{Role: "user", Content: "hi"})
	_, _, releaseBusy := m.Begin(context.Background(), "busy")
	defer releaseBusy()

	clock = clock.Add(30 * time.Minute)
	m.Append("recent", types.SessionMessage{Role: "user", Content: "hi"})
	assert.Equal(t, 3, m.size())

	clock = clock.Add(45 * time.Minute)
	m.Append("fresh", types.SessionMessage{Role: "user", Content: "hi"})

	assert.Empty(t, m.Messages("idle"))
	assert.Len(t, m.Messages("recent"), 1)
	assert.Equal(t, 3, m.size(), "in-flight sessions are kept")
}

func TestSessionManager_ZeroIdleTTLKeepsSessions(t *testing.T) {
	m := NewSessionManager(nil)
	m.SetIdleTTL(0)
	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return clock }

	m.Append("s", types.SessionMessage{Role: "user", Content: "hi"})
	clock = clock.Add(365 * 24 * time.Hour)
	m.Append("t", types.SessionMessage{Role: "user", Content: "hi"})

	assert.Len(t, m.Messages("s"), 1)
	assert.Equal(t, 2, m.size())
}
