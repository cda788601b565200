package services

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"eqcoach/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const subscriberBuffer = 64

// DebateDeps are the collaborators shared by every debate session.
type DebateDeps struct {
	Flow         *DebateFlow
	Coach        *DebateCoach
	Store        SnapshotStore
	History      HistoryRecorder
	Events       EventLog
	TickInterval time.Duration
	Log          *zap.Logger
}

func (d DebateDeps) withDefaults() DebateDeps {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.Flow == nil {
		d.Flow = NewDebateFlow(DefaultTurnSeconds)
	}
	if d.Coach == nil {
		d.Coach = NewDebateCoach(nil, DefaultRetryPolicy(), d.Log)
	}
	if d.Store == nil {
		d.Store = NewMemoryStore()
	}
	if d.History == nil {
		d.History = noopHistory{}
	}
	if d.Events == nil {
		d.Events = noopEventLog{}
	}
	if d.TickInterval <= 0 {
		d.TickInterval = time.Second
	}
	return d
}

type pendingWrite struct {
	seq      uint64
	snapshot models.DebateSnapshot
	events   []*Event
}

// DebateSession is one live practice debate. All state changes happen under a
// single mutex; model calls run with the mutex released while the session is
// marked busy.
type DebateSession struct {
	id    string
	email string
	deps  DebateDeps
	log   *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	timer  *StageTimer
	wg     sync.WaitGroup

	mu         sync.Mutex
	state      models.DebateState
	draft      string
	busy       bool
	closed     bool
	epoch      uint64
	generation uint64
	seq        uint64
	outbox     []*Event
	subs       map[int]chan *Event
	nextSub    int

	persistMu    sync.Mutex
	persistedSeq uint64
	flushedSeq   uint64
	held         map[uint64][]*Event
}

func newDebateSession(id, email string, state models.DebateState, draft string, deps DebateDeps) *DebateSession {
	ctx, cancel := context.WithCancel(context.Background())
	s := &DebateSession{
		id:     id,
		email:  email,
		deps:   deps,
		log:    deps.Log.With(zap.String("debateId", id)),
		ctx:    ctx,
		cancel: cancel,
		timer:  NewStageTimer(deps.TickInterval),
		state:  state,
		draft:  draft,
		subs:   make(map[int]chan *Event),
		held:   make(map[uint64][]*Event),
	}
	if state.Stage.IsSpeaking() && state.TimerRunning {
		s.mu.Lock()
		s.startTimerLocked()
		s.mu.Unlock()
	}
	return s
}

func (s *DebateSession) ID() string    { return s.id }
func (s *DebateSession) Email() string { return s.email }

// State returns a copy of the current debate state.
func (s *DebateSession) State() models.DebateState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Draft returns the pending, unsubmitted argument.
func (s *DebateSession) Draft() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

// Busy reports whether a model call is in flight.
func (s *DebateSession) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

// Subscribe returns a channel of session events and a function that cancels the
// subscription. Slow subscribers lose events rather than block the session.
func (s *DebateSession) Subscribe() (<-chan *Event, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan *Event, subscriberBuffer)
	if s.closed {
		close(ch)
		return ch, func() {}
	}
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if c, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(c)
		}
	}
}

// SelectTopic chooses the debate topic.
func (s *DebateSession) SelectTopic(ctx context.Context, topic string) error {
	return s.transition(ctx, func(st models.DebateState) (models.DebateState, error) {
		return s.deps.Flow.SelectTopic(st, topic)
	})
}

// SelectSide chooses the user's side and starts the opening statement countdown.
func (s *DebateSession) SelectSide(ctx context.Context, side models.Side) error {
	return s.transition(ctx, func(st models.DebateState) (models.DebateState, error) {
		return s.deps.Flow.SelectSide(st, side)
	})
}

func (s *DebateSession) transition(ctx context.Context, apply func(models.DebateState) (models.DebateState, error)) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionNotFound
	}
	n := len(s.state.Messages)
	next, err := apply(s.state)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.state = next
	s.emitMessagesSince(n)
	s.emit(EventStage, stagePayload(s.state))
	if s.state.Stage.IsSpeaking() && s.state.TimerRunning {
		s.startTimerLocked()
	}
	w := s.commit()
	s.mu.Unlock()

	s.persist(ctx, w)
	return nil
}

// SetDraft records the argument the user is still composing. A pending draft
// keeps the stage from advancing when the countdown runs out.
func (s *DebateSession) SetDraft(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft = text
}

// Submit records the user's argument, obtains the AI's answer and advances the
// stage. Submitting the closing statement also runs the end-of-debate analysis.
// Returns ErrBusy while a previous submit is still being answered.
//
// ctx only bounds the first snapshot write. The reply, the analysis and the
// writes after them run on the session's own context, so a caller that goes
// away mid-turn does not lose the debate's outcome.
func (s *DebateSession) Submit(ctx context.Context, text string) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionNotFound
	}
	if s.busy {
		s.mu.Unlock()
		return ErrBusy
	}
	n := len(s.state.Messages)
	next, err := s.deps.Flow.SubmitTurn(s.state, text)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.stopTimerLocked()
	s.state = next
	s.draft = ""
	s.busy = true
	gen := s.generation
	s.emitMessagesSince(n)
	s.emit(EventStage, stagePayload(s.state))
	s.emit(EventBusy, BusyPayload{Busy: true})
	view := s.state.Clone()
	w := s.commit()
	s.mu.Unlock()
	s.persist(ctx, w)

	work := s.ctx
	reply, replyErr := s.deps.Coach.Reply(work, view, text)
	if replyErr != nil {
		s.log.Warn("debate reply unavailable", zap.String("stage", string(view.Stage)), zap.Error(replyErr))
	}

	s.mu.Lock()
	if s.closed || s.generation != gen {
		s.mu.Unlock()
		return nil
	}
	n = len(s.state.Messages)
	if replyErr != nil {
		s.state = s.deps.Flow.Note(s.state, replyUnavailableMsg)
	} else {
		s.state = s.deps.Flow.RecordReply(s.state, reply)
	}
	s.emitMessagesSince(n)
	concluding := s.advanceLocked()
	if !concluding {
		s.busy = false
		s.emit(EventBusy, BusyPayload{Busy: false})
	}
	view = s.state.Clone()
	w = s.commit()
	s.mu.Unlock()
	s.persist(work, w)

	if concluding {
		s.conclude(work, gen, view)
	}
	return nil
}

// advanceLocked moves to the next stage and reports whether the debate has
// just reached its conclusion.
func (s *DebateSession) advanceLocked() bool {
	n := len(s.state.Messages)
	next, err := s.deps.Flow.AdvanceStage(s.state)
	if err != nil {
		s.log.Warn("stage advance rejected", zap.Error(err))
		return false
	}
	s.state = next
	s.emitMessagesSince(n)
	s.emit(EventStage, stagePayload(s.state))
	if s.state.Stage == models.DebateConclusion {
		return true
	}
	s.startTimerLocked()
	return false
}

func (s *DebateSession) tick(epoch uint64) {
	s.mu.Lock()
	if s.closed || epoch != s.epoch {
		s.mu.Unlock()
		return
	}
	s.state = s.deps.Flow.Tick(s.state)
	s.broadcast(EventTick, TickPayload{TimeRemaining: s.state.TimeRemaining})
	if s.state.TimeRemaining > 0 {
		s.mu.Unlock()
		return
	}

	s.stopTimerLocked()
	n := len(s.state.Messages)
	next, advanced := s.deps.Flow.TimeUp(s.state, s.draft)
	s.state = next
	s.emitMessagesSince(n)
	s.emit(EventStage, stagePayload(s.state))

	concluding := false
	if advanced {
		if s.state.Stage == models.DebateConclusion {
			concluding = true
			s.busy = true
			s.emit(EventBusy, BusyPayload{Busy: true})
		} else {
			s.startTimerLocked()
		}
	}
	gen := s.generation
	view := s.state.Clone()
	w := s.commit()
	s.mu.Unlock()

	s.persist(s.ctx, w)
	if concluding {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.conclude(s.ctx, gen, view)
		}()
	}
}

// conclude runs the end-of-debate analysis once and closes the transcript.
func (s *DebateSession) conclude(ctx context.Context, gen uint64, view models.DebateState) {
	analysis, err := s.deps.Coach.Analyze(ctx, view)
	if err != nil {
		s.log.Warn("debate analysis unavailable", zap.Error(err))
	}

	s.mu.Lock()
	if s.closed || s.generation != gen {
		s.mu.Unlock()
		return
	}
	n := len(s.state.Messages)
	if err == nil {
		next, attachErr := s.deps.Flow.AttachAnalysis(s.state, analysis)
		if attachErr != nil {
			err = attachErr
		} else {
			s.state = next
		}
	}
	if err != nil {
		s.state = s.deps.Flow.Note(s.state, analysisFailedMsg)
	}
	s.state = s.deps.Flow.Note(s.state, debateConcludedMsg)
	s.emitMessagesSince(n)
	if s.state.Analysis != nil {
		s.emit(EventAnalysis, AnalysisPayload{Analysis: s.state.Analysis})
	}
	s.busy = false
	s.emit(EventBusy, BusyPayload{Busy: false})
	final := s.state.Clone()
	w := s.commit()
	s.mu.Unlock()

	s.persist(ctx, w)
	s.record(ctx, final)
}

func (s *DebateSession) record(ctx context.Context, final models.DebateState) {
	result := models.DebateResult{
		Email:     s.email,
		SessionID: s.id,
		Topic:     final.Topic,
		Side:      final.UserSide,
		Messages:  final.Messages,
		Analysis:  final.Analysis,
		Score:     DebateScore(final.Analysis),
		CreatedAt: time.Now(),
	}
	if err := s.deps.History.RecordDebate(ctx, result); err != nil {
		s.log.Warn("failed to record debate history", zap.Error(err))
	}
}

// DebateScore maps the mean skill rating (1-10) to a 0-100 score.
func DebateScore(a *models.DebateAnalysis) int {
	return models.ClampScore(int(math.Round(a.AverageRating() * 10)))
}

// Reset abandons the current debate and returns to topic selection. Any answer
// still being generated for the abandoned debate is discarded.
func (s *DebateSession) Reset(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionNotFound
	}
	s.stopTimerLocked()
	s.generation++
	s.state = s.deps.Flow.Reset(s.state)
	s.draft = ""
	s.busy = false
	s.emit(EventReset, ResetPayload{State: s.state.Clone()})
	w := s.commit()
	s.mu.Unlock()

	s.persist(ctx, w)
	return nil
}

// Close stops the countdown, waits for background work and ends every
// subscription. The session is unusable afterwards.
func (s *DebateSession) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.stopTimerLocked()
	s.mu.Unlock()

	s.cancel()
	s.timer.Wait()
	s.wg.Wait()

	s.mu.Lock()
	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
	s.mu.Unlock()
}

func (s *DebateSession) startTimerLocked() {
	s.epoch++
	epoch := s.epoch
	s.timer.Start(func() { s.tick(epoch) })
}

func (s *DebateSession) stopTimerLocked() {
	s.epoch++
	s.timer.Stop()
}

// broadcast sends an event to subscribers only. Must hold s.mu.
func (s *DebateSession) broadcast(eventType string, payload interface{}) *Event {
	ev, err := NewEvent(eventType, payload)
	if err != nil {
		s.log.Error("failed to encode event", zap.String("type", eventType), zap.Error(err))
		return nil
	}
	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
			s.log.Debug("dropping event for slow subscriber", zap.String("type", eventType))
		}
	}
	return ev
}

// emit broadcasts an event and queues it for the event log. Must hold s.mu.
func (s *DebateSession) emit(eventType string, payload interface{}) {
	if ev := s.broadcast(eventType, payload); ev != nil {
		s.outbox = append(s.outbox, ev)
	}
}

func (s *DebateSession) emitMessagesSince(n int) {
	for _, msg := range s.state.Messages[n:] {
		s.emit(EventMessage, MessagePayload{Message: msg})
	}
}

// commit captures the snapshot and queued events for persistence. Must hold s.mu.
func (s *DebateSession) commit() pendingWrite {
	s.seq++
	w := pendingWrite{
		seq: s.seq,
		snapshot: models.DebateSnapshot{
			ID:        s.id,
			Email:     s.email,
			State:     s.state.Clone(),
			Draft:     s.draft,
			UpdatedAt: time.Now().Unix(),
		},
		events: s.outbox,
	}
	s.outbox = nil
	return w
}

// persist writes a committed snapshot unless a newer one is already stored.
// Events are appended strictly in commit order: a write that arrives ahead of
// an earlier commit is held until the earlier one has been flushed.
func (s *DebateSession) persist(ctx context.Context, w pendingWrite) {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	if w.seq > s.persistedSeq {
		if err := s.deps.Store.Save(ctx, KindDebate, s.id, w.snapshot); err != nil {
			s.log.Warn("failed to save debate snapshot", zap.Error(err))
		} else {
			s.persistedSeq = w.seq
		}
	}

	s.held[w.seq] = w.events
	for {
		events, ok := s.held[s.flushedSeq+1]
		if !ok {
			return
		}
		delete(s.held, s.flushedSeq+1)
		s.flushedSeq++
		for _, ev := range events {
			if err := s.deps.Events.Append(ctx, s.id, ev); err != nil {
				s.log.Warn("failed to append debate event", zap.String("type", ev.Type), zap.Error(err))
				break
			}
		}
	}
}

// SessionManager keeps the live debate sessions of this process.
type SessionManager struct {
	deps DebateDeps

	mu       sync.Mutex
	sessions map[string]*DebateSession
}

func NewSessionManager(deps DebateDeps) *SessionManager {
	return &SessionManager{
		deps:     deps.withDefaults(),
		sessions: make(map[string]*DebateSession),
	}
}

// Create starts a new debate owned by email.
func (m *SessionManager) Create(ctx context.Context, email string) *DebateSession {
	s := newDebateSession(uuid.NewString(), email, m.deps.Flow.NewState(), "", m.deps)

	m.mu.Lock()
	m.sessions[s.id] = s
	m.mu.Unlock()

	s.mu.Lock()
	w := s.commit()
	s.mu.Unlock()
	s.persist(ctx, w)
	return s
}

// Get returns email's live session, reviving it from its snapshot when this
// process has not seen it yet. Sessions owned by someone else are reported as
// not found and are never revived.
func (m *SessionManager) Get(ctx context.Context, id, email string) (*DebateSession, error) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	m.mu.Unlock()
	if ok {
		if s.email != email {
			return nil, ErrSessionNotFound
		}
		return s, nil
	}

	var snap models.DebateSnapshot
	if err := m.deps.Store.Load(ctx, KindDebate, id, &snap); err != nil {
		return nil, err
	}
	if snap.Email != email {
		return nil, ErrSessionNotFound
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		return s, nil
	}
	s = newDebateSession(id, snap.Email, snap.State, snap.Draft, m.deps)
	m.sessions[id] = s
	return s, nil
}

// Sweep closes idle sessions whose snapshot has expired from the store and
// returns how many were dropped. Sessions with a model call in flight are kept.
func (m *SessionManager) Sweep(ctx context.Context) int {
	m.mu.Lock()
	live := make([]*DebateSession, 0, len(m.sessions))
	for _, s := range m.sessions {
		live = append(live, s)
	}
	m.mu.Unlock()

	dropped := 0
	for _, s := range live {
		if s.Busy() {
			continue
		}
		var snap models.DebateSnapshot
		err := m.deps.Store.Load(ctx, KindDebate, s.id, &snap)
		if !errors.Is(err, ErrSessionNotFound) {
			continue
		}
		m.mu.Lock()
		if m.sessions[s.id] == s {
			delete(m.sessions, s.id)
		}
		m.mu.Unlock()
		s.Close()
		dropped++
	}
	if dropped > 0 {
		m.deps.Log.Debug("dropped expired debate sessions", zap.Int("count", dropped))
	}
	return dropped
}

// Remove closes a session and deletes its snapshot.
func (m *SessionManager) Remove(ctx context.Context, id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if ok {
		s.Close()
	}
	return m.deps.Store.Delete(ctx, KindDebate, id)
}

// Close ends every live session.
func (m *SessionManager) Close() {
	m.mu.Lock()
	sessions := make([]*DebateSession, 0, len(m.sessions))
	for id, s := range m.sessions {
		sessions = append(sessions, s)
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
}

// Len returns the number of live sessions.
func (m *SessionManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
