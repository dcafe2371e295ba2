package proxy

import (
	"context"
	"sync"
	"time"

	"github.com/aashari/go-generative-gateway/internal/logger"
	"github.com/aashari/go-generative-gateway/internal/types"
	"github.com/aashari/go-generative-gateway/internal/utils"
)

// ErrorMessagePrefix marks assistant messages that record a failed request.
const ErrorMessagePrefix = "❌ **Error:** "

// DefaultSessionIdleTTL is how long a session without requests or updates is kept.
const DefaultSessionIdleTTL = 24 * time.Hour

// SessionCanceller is notified when a session is reset. The job poller
// implements it to stop the session's poll loops.
type SessionCanceller interface {
	CancelSession(sessionID string) int
}

type sessionState struct {
	token    uint64
	cancel   context.CancelCauseFunc
	messages []types.SessionMessage
	lastSeen time.Time
}

// SessionManager enforces at most one in-flight request per session and keeps
// each session's message list in memory. Sessions idle for longer than the
// idle TTL are dropped.
type SessionManager struct {
	mu        sync.Mutex
	sessions  map[string]*sessionState
	nextTok   uint64
	jobs      SessionCanceller
	idleTTL   time.Duration
	lastSweep time.Time
	now       func() time.Time
}

// NewSessionManager creates a session manager; jobs may be nil.
func NewSessionManager(jobs SessionCanceller) *SessionManager {
	return &SessionManager{
		sessions: make(map[string]*sessionState),
		jobs:     jobs,
		idleTTL:  DefaultSessionIdleTTL,
		now:      time.Now,
	}
}

// SetIdleTTL changes the idle TTL. Zero keeps sessions until they are reset.
func (m *SessionManager) SetIdleTTL(ttl time.Duration) {
	m.mu.Lock()
	m.idleTTL = ttl
	m.mu.Unlock()
}

// state returns the session, creating it, and marks it seen. Callers hold m.mu.
func (m *SessionManager) state(sessionID string) *sessionState {
	now := m.now()
	m.sweepLocked(now)
	s, ok := m.sessions[sessionID]
	if !ok {
		s = &sessionState{}
		m.sessions[sessionID] = s
	}
	s.lastSeen = now
	return s
}

// sweepLocked drops idle sessions that have no request in flight. A full scan
// runs at most once per half TTL.
func (m *SessionManager) sweepLocked(now time.Time) {
	if m.idleTTL <= 0 || now.Sub(m.lastSweep) < m.idleTTL/2 {
		return
	}
	m.lastSweep = now
	for id, s := range m.sessions {
		if s.cancel == nil && now.Sub(s.lastSeen) > m.idleTTL {
			delete(m.sessions, id)
		}
	}
}

func (m *SessionManager) size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Begin starts a request in sessionID, cancelling any in-flight one with
// ErrSuperseded. The returned release must be called when the request ends.
// An empty sessionID gets an independent context and no bookkeeping.
func (m *SessionManager) Begin(ctx context.Context, sessionID string) (context.Context, uint64, func()) {
	reqCtx, cancel := context.WithCancelCause(ctx)
	if sessionID == "" {
		return reqCtx, 0, func() { cancel(context.Canceled) }
	}

	m.mu.Lock()
	m.nextTok++
	token := m.nextTok
	s := m.state(sessionID)
	previous := s.cancel
	s.token = token
	s.cancel = cancel
	m.mu.Unlock()

	if previous != nil {
		previous(ErrSuperseded)
		logger.Info(logger.WithStage(ctx, logger.LogStages.RequestCancelled), "Superseded in-flight session request",
			"session_id", sessionID)
	}

	release := func() {
		m.mu.Lock()
		if s, ok := m.sessions[sessionID]; ok && s.token == token {
			s.cancel = nil
			s.lastSeen = m.now()
		}
		m.mu.Unlock()
		cancel(context.Canceled)
	}
	return reqCtx, token, release
}

// isCurrent reports whether token still owns sessionID.
func (m *SessionManager) isCurrent(sessionID string, token uint64) bool {
	if sessionID == "" {
		return true
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	return ok && s.token == token
}

// Append records msg unconditionally.
func (m *SessionManager) Append(sessionID string, msg types.SessionMessage) types.SessionMessage {
	if sessionID == "" {
		return msg
	}
	msg = m.fill(msg)
	m.mu.Lock()
	s := m.state(sessionID)
	s.messages = append(s.messages, msg)
	m.mu.Unlock()
	return msg
}

// AppendIfCurrent records msg only while token still owns the session, so
// replies of superseded requests are dropped.
func (m *SessionManager) AppendIfCurrent(sessionID string, token uint64, msg types.SessionMessage) bool {
	if sessionID == "" {
		return false
	}
	msg = m.fill(msg)
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	if !ok || s.token != token {
		return false
	}
	s.messages = append(s.messages, msg)
	s.lastSeen = m.now()
	return true
}

// UpdateJobMessage replaces the content of the message that carries jobID.
func (m *SessionManager) UpdateJobMessage(sessionID, jobID, content string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	if !ok {
		return false
	}
	for i := len(s.messages) - 1; i >= 0; i-- {
		if s.messages[i].JobID == jobID {
			s.messages[i].Content = content
			s.lastSeen = m.now()
			return true
		}
	}
	return false
}

// Messages returns a copy of the session's message list.
func (m *SessionManager) Messages(sessionID string) []types.SessionMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	if !ok {
		return []types.SessionMessage{}
	}
	return append([]types.SessionMessage{}, s.messages...)
}

// Reset cancels the in-flight request, clears the messages and stops the
// session's poll loops.
func (m *SessionManager) Reset(ctx context.Context, sessionID string) {
	m.mu.Lock()
	s, ok := m.sessions[sessionID]
	delete(m.sessions, sessionID)
	m.mu.Unlock()

	if ok && s.cancel != nil {
		s.cancel(ErrSuperseded)
	}
	jobs := 0
	if m.jobs != nil {
		jobs = m.jobs.CancelSession(sessionID)
	}
	logger.Info(logger.WithStage(ctx, logger.LogStages.SessionReset), "Session reset",
		"session_id", sessionID,
		"cancelled_jobs", jobs)
}

func (m *SessionManager) fill(msg types.SessionMessage) types.SessionMessage {
	if msg.ID == "" {
		msg.ID = utils.GenerateMessageID()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = m.now().UTC()
	}
	return msg
}

// ErrorMessage formats a failure as the assistant message recorded in a session.
func ErrorMessage(message string) string {
	return ErrorMessagePrefix + message
}
