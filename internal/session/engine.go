package session

import (
	"context"
	"regexp"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hyperjump/hanashi/internal/metrics"
	"github.com/hyperjump/hanashi/internal/models"
	"go.uber.org/zap"
)

// Dispatcher receives the transcript of a closed session. It is invoked at
// most once per session, off the caller's response path.
type Dispatcher interface {
	Dispatch(snap Snapshot) error
}

// Config holds session policy thresholds.
type Config struct {
	WarnAfter       time.Duration // idle time before the "still there" warning
	CloseAfter      time.Duration // idle time before closing
	MaxDuration     time.Duration // total session duration cap
	MaxMessages     int           // visitor message cap
	ReapInterval    time.Duration // sweep period for the reaper loop
	ClosedRetention time.Duration // how long closed sessions stay readable
}

// DefaultConfig returns the standard policy.
func DefaultConfig() Config {
	return Config{
		WarnAfter:       5 * time.Minute,
		CloseAfter:      10 * time.Minute,
		MaxDuration:     15 * time.Minute,
		MaxMessages:     20,
		ReapInterval:    30 * time.Second,
		ClosedRetention: 30 * time.Minute,
	}
}

// Result reports the outcome of a session operation.
type Result struct {
	State    State       `json:"state"`
	Reason   CloseReason `json:"reason,omitempty"`
	Notices  []string    `json:"notices,omitempty"`
	Rejected bool        `json:"rejected,omitempty"`
}

var sessionEmailRe = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)

// Engine owns all sessions. The map is mutex-guarded; each session has its
// own mutex so mutations for one session id are serialized in arrival
// order.
type Engine struct {
	cfg        Config
	dispatcher Dispatcher
	logger     *zap.Logger
	now        func() time.Time

	mu       sync.Mutex
	sessions map[string]*session
}

// NewEngine creates a session engine. dispatcher may be nil when transcript
// dispatch is not configured.
func NewEngine(cfg Config, dispatcher Dispatcher, logger *zap.Logger) *Engine {
	return &Engine{
		cfg:        cfg,
		dispatcher: dispatcher,
		logger:     logger,
		now:        time.Now,
		sessions:   make(map[string]*session),
	}
}

func (e *Engine) getOrCreate(id string) *session {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, ok := e.sessions[id]
	if !ok {
		now := e.now()
		s = &session{
			id:           id,
			createdAt:    now,
			lastActivity: now,
			state:        StateActive,
		}
		e.sessions[id] = s
	}
	return s
}

func (e *Engine) get(id string) *session {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sessions[id]
}

// RecordVisitorMessage appends a visitor message to the session, creating
// it on first contact. Quota and duration caps are enforced here: a
// message that arrives past a cap closes the session and is not recorded.
func (e *Engine) RecordVisitorMessage(id, content string) Result {
	s := e.getOrCreate(id)
	s.mu.Lock()
	defer s.mu.Unlock()
	now := e.now()

	if s.state == StateClosed {
		return Result{State: StateClosed, Reason: s.closeReason, Notices: []string{noticeClosed}, Rejected: true}
	}
	if s.messageCount >= e.cfg.MaxMessages {
		e.closeLocked(s, CloseMessageLimit, now)
		return Result{State: StateClosed, Reason: CloseMessageLimit, Notices: []string{noticeMessageLimit(e.cfg.MaxMessages)}, Rejected: true}
	}
	if now.Sub(s.createdAt) >= e.cfg.MaxDuration {
		e.closeLocked(s, CloseTimeLimit, now)
		return Result{State: StateClosed, Reason: CloseTimeLimit, Notices: []string{noticeTimeLimit}, Rejected: true}
	}

	s.history = append(s.history, models.ChatMessage{
		ID:        uuid.NewString(),
		Role:      models.RoleVisitor,
		Content:   content,
		Timestamp: now,
	})
	s.messageCount++
	s.lastActivity = now
	s.warningSent = false
	s.state = StateActive
	if s.visitorEmail == "" {
		if m := sessionEmailRe.FindString(content); m != "" {
			s.visitorEmail = m
		}
	}
	metrics.Messages.Inc()

	res := Result{State: StateActive}
	if remaining := e.cfg.MaxMessages - s.messageCount; remaining == 3 {
		res.Notices = append(res.Notices, warnMessagesLeft(remaining))
	}
	if left := e.cfg.MaxDuration - now.Sub(s.createdAt); left > time.Minute && left <= 2*time.Minute {
		res.Notices = append(res.Notices, warnTimeLeft)
	}
	return res
}

// RecordAssistantReply appends the assistant's reply. It does not touch
// the message counter or the activity clock, which track visitor activity
// only. A session closed mid-turn silently drops the reply.
func (e *Engine) RecordAssistantReply(id, content string) {
	s := e.get(id)
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateClosed {
		return
	}
	s.history = append(s.history, models.ChatMessage{
		ID:        uuid.NewString(),
		Role:      models.RoleAssistant,
		Content:   content,
		Timestamp: e.now(),
	})
}

// End closes the session at the visitor's request.
func (e *Engine) End(id string) Result {
	s := e.get(id)
	if s == nil {
		return Result{State: StateClosed, Notices: []string{noticeClosed}}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateClosed {
		return Result{State: StateClosed, Reason: s.closeReason, Notices: []string{noticeClosed}}
	}
	e.closeLocked(s, CloseUserRequested, e.now())
	return Result{State: StateClosed, Reason: CloseUserRequested, Notices: []string{noticeFarewell}}
}

// CheckIdle applies idle and duration transitions for one session and
// returns any notice to show the visitor. Running it repeatedly after a
// close is harmless: the transcript dispatches only once.
func (e *Engine) CheckIdle(id string) Result {
	s := e.get(id)
	if s == nil {
		return Result{State: StateClosed, Notices: []string{noticeClosed}}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return e.checkLocked(s, e.now())
}

// checkLocked evaluates timeout policy for s. Caller holds s.mu.
func (e *Engine) checkLocked(s *session, now time.Time) Result {
	if s.state == StateClosed {
		return Result{State: StateClosed, Reason: s.closeReason}
	}
	if now.Sub(s.createdAt) >= e.cfg.MaxDuration {
		e.closeLocked(s, CloseTimeLimit, now)
		return Result{State: StateClosed, Reason: CloseTimeLimit, Notices: []string{noticeTimeLimit}}
	}
	idle := now.Sub(s.lastActivity)
	if idle >= e.cfg.CloseAfter {
		e.closeLocked(s, CloseIdleTimeout, now)
		return Result{State: StateClosed, Reason: CloseIdleTimeout, Notices: []string{noticeIdleClosed}}
	}
	if !s.warningSent && idle >= e.cfg.WarnAfter {
		s.state = StateWarned
		s.warningSent = true
		return Result{State: StateWarned, Notices: []string{noticeStillThere}}
	}
	return Result{State: s.state}
}

// closeLocked performs the terminal transition and hands the transcript to
// the dispatcher exactly once. Caller holds s.mu.
func (e *Engine) closeLocked(s *session, reason CloseReason, now time.Time) {
	if s.state == StateClosed {
		return
	}
	s.state = StateClosed
	s.closeReason = reason
	s.closedAt = now
	metrics.SessionsClosed.WithLabelValues(string(reason)).Inc()
	e.logger.Info("session closed",
		zap.String("session_id", s.id),
		zap.String("reason", string(reason)),
		zap.Int("messages", s.messageCount),
	)
	if s.dispatched || e.dispatcher == nil {
		return
	}
	s.dispatched = true
	snap := s.snapshotLocked()
	go func() {
		if err := e.dispatcher.Dispatch(snap); err != nil {
			metrics.TranscriptFailures.Inc()
			e.logger.Warn("transcript dispatch failed", zap.String("session_id", snap.ID), zap.Error(err))
			return
		}
		metrics.TranscriptsDispatched.Inc()
	}()
}

// History returns a copy of the session's message history.
func (e *Engine) History(id string) []models.ChatMessage {
	s := e.get(id)
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.ChatMessage(nil), s.history...)
}

// Snapshot returns a copy of the session for export.
func (e *Engine) Snapshot(id string) (Snapshot, bool) {
	s := e.get(id)
	if s == nil {
		return Snapshot{}, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked(), true
}

// Counts returns the total and non-closed session counts.
func (e *Engine) Counts() (total, open int) {
	e.mu.Lock()
	list := make([]*session, 0, len(e.sessions))
	for _, s := range e.sessions {
		list = append(list, s)
	}
	e.mu.Unlock()
	for _, s := range list {
		s.mu.Lock()
		if s.state != StateClosed {
			open++
		}
		s.mu.Unlock()
	}
	return len(list), open
}

// StartReaper runs the background sweep until ctx is cancelled. The sweep
// enforces timeouts even when no caller polls CheckIdle, and evicts closed
// sessions after the retention window so abandoned sessions cannot
// accumulate for the life of the process.
func (e *Engine) StartReaper(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(e.cfg.ReapInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				e.sweep()
			}
		}
	}()
}

func (e *Engine) sweep() {
	now := e.now()
	e.mu.Lock()
	list := make([]*session, 0, len(e.sessions))
	for _, s := range e.sessions {
		list = append(list, s)
	}
	e.mu.Unlock()

	var evict []string
	for _, s := range list {
		s.mu.Lock()
		e.checkLocked(s, now)
		if s.state == StateClosed && now.Sub(s.closedAt) >= e.cfg.ClosedRetention {
			evict = append(evict, s.id)
		}
		s.mu.Unlock()
	}

	if len(evict) > 0 {
		e.mu.Lock()
		for _, id := range evict {
			delete(e.sessions, id)
		}
		e.mu.Unlock()
		e.logger.Debug("sessions evicted", zap.Int("count", len(evict)))
	}
}
