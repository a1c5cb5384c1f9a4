package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"nexus/internal/domain"
)

const (
	defaultReplyTimeout = 30 * time.Second
	defaultMaxQueue     = 8
)

// Replier produces the assistant text for a prompt. It must not fail;
// ResponseGateway.Reply satisfies it.
type Replier interface {
	Reply(ctx context.Context, prompt string) string
}

// SubmitPolicy decides what happens to a submission made while a reply is
// still pending.
type SubmitPolicy int

const (
	// PolicyReject refuses the submission with ErrAwaitingReply.
	PolicyReject SubmitPolicy = iota
	// PolicyQueue appends the user entry and sends the prompt once the
	// replies ahead of it have arrived.
	PolicyQueue
)

func ParseSubmitPolicy(s string) (SubmitPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "reject":
		return PolicyReject, nil
	case "queue":
		return PolicyQueue, nil
	default:
		return PolicyReject, fmt.Errorf("usecase: unknown submit policy %q", s)
	}
}

func (p SubmitPolicy) String() string {
	if p == PolicyQueue {
		return "queue"
	}
	return "reject"
}

// Receipt describes an accepted (or ignored) submission. Done is closed once
// the assistant entry answering this prompt has been appended; for ignored
// blank input it is already closed.
type Receipt struct {
	Accepted bool
	Message  domain.Message
	Done     <-chan struct{}
}

type StoreOption func(*ConversationStore)

func WithPolicy(p SubmitPolicy) StoreOption {
	return func(s *ConversationStore) { s.policy = p }
}

// WithMaxQueue bounds how many prompts may wait behind the in-flight one
// under PolicyQueue.
func WithMaxQueue(n int) StoreOption {
	return func(s *ConversationStore) {
		if n > 0 {
			s.maxQueue = n
		}
	}
}

func WithReplyTimeout(d time.Duration) StoreOption {
	return func(s *ConversationStore) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithGreeting seeds the conversation with an assistant entry.
func WithGreeting(text string) StoreOption {
	return func(s *ConversationStore) { s.greeting = strings.TrimSpace(text) }
}

func WithClock(now func() time.Time) StoreOption {
	return func(s *ConversationStore) { s.now = now }
}

func WithIDGenerator(newID func() string) StoreOption {
	return func(s *ConversationStore) { s.newID = newID }
}

func WithLogger(logger *zap.Logger) StoreOption {
	return func(s *ConversationStore) {
		if logger != nil {
			s.logger = logger
		}
	}
}

type pendingPrompt struct {
	prompt string
	done   chan struct{}
}

// ConversationStore is the append-only message log plus the pending flag.
// It is Idle while pending is false and AwaitingReply while it is true.
type ConversationStore struct {
	replier  Replier
	policy   SubmitPolicy
	maxQueue int
	timeout  time.Duration
	greeting string
	now      func() time.Time
	newID    func() string
	logger   *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	messages []domain.Message
	pending  bool
	version  uint64
	// queue[0] is the prompt currently with the gateway.
	queue   []pendingPrompt
	closed  bool
	subs    map[int]chan domain.Snapshot
	nextSub int
}

func NewConversationStore(r Replier, opts ...StoreOption) (*ConversationStore, error) {
	if r == nil {
		return nil, errors.New("usecase: replier must not be nil")
	}
	s := &ConversationStore{
		replier:  r,
		policy:   PolicyReject,
		maxQueue: defaultMaxQueue,
		timeout:  defaultReplyTimeout,
		now:      time.Now,
		newID:    uuid.NewString,
		logger:   zap.NewNop(),
		subs:     make(map[int]chan domain.Snapshot),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())
	if s.greeting != "" {
		s.messages = append(s.messages, s.newMessage(domain.RoleAssistant, s.greeting))
	}
	return s, nil
}

// Submit appends a user entry for text and asks for a reply in the
// background. Blank text is ignored without error.
func (s *ConversationStore) Submit(text string) (Receipt, error) {
	if strings.TrimSpace(text) == "" {
		return Receipt{Done: closedDone}, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return Receipt{}, ErrClosed
	}
	if s.pending {
		if s.policy == PolicyReject {
			return Receipt{}, ErrAwaitingReply
		}
		if len(s.queue)-1 >= s.maxQueue {
			return Receipt{}, ErrQueueFull
		}
	}

	msg := s.newMessage(domain.RoleUser, text)
	s.messages = append(s.messages, msg)
	job := pendingPrompt{prompt: text, done: make(chan struct{})}
	s.queue = append(s.queue, job)

	if !s.pending {
		s.pending = true
		s.wg.Add(1)
		go s.drain()
	}
	s.changedLocked()

	return Receipt{Accepted: true, Message: msg, Done: job.done}, nil
}

// drain sends queued prompts to the replier one at a time until none are left.
func (s *ConversationStore) drain() {
	defer s.wg.Done()
	for {
		s.mu.Lock()
		job := s.queue[0]
		s.mu.Unlock()

		reply := s.requestReply(job.prompt)

		s.mu.Lock()
		s.queue = s.queue[1:]
		s.messages = append(s.messages, s.newMessage(domain.RoleAssistant, reply))
		s.pending = len(s.queue) > 0
		more := s.pending
		s.changedLocked()
		s.mu.Unlock()

		close(job.done)
		if !more {
			return
		}
	}
}

func (s *ConversationStore) requestReply(prompt string) string {
	ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
	defer cancel()

	// Buffered so a replier that outlives the timeout can still return.
	result := make(chan string, 1)
	go func() { result <- s.replier.Reply(ctx, prompt) }()

	var reply string
	select {
	case reply = <-result:
	case <-ctx.Done():
		s.logger.Warn("reply abandoned, appending fallback",
			zap.Duration("timeout", s.timeout),
			zap.Error(ctx.Err()),
		)
		return ProviderFallback
	}
	if strings.TrimSpace(reply) == "" {
		s.logger.Warn("gateway returned no text, appending fallback")
		return ReplyFallback
	}
	return reply
}

// Snapshot returns a copy of the current messages and pending flag.
func (s *ConversationStore) Snapshot() domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *ConversationStore) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// Subscribe returns a channel that receives the current snapshot immediately
// and the latest snapshot after every change. Slow readers only miss
// intermediate snapshots. The channel is closed by the returned cancel func
// or by Close.
func (s *ConversationStore) Subscribe() (<-chan domain.Snapshot, func()) {
	ch := make(chan domain.Snapshot, 1)

	s.mu.Lock()
	ch <- s.snapshotLocked()
	if s.closed {
		close(ch)
		s.mu.Unlock()
		return ch, func() {}
	}
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if sub, ok := s.subs[id]; ok {
				delete(s.subs, id)
				close(sub)
			}
		})
	}
}

// Close stops accepting submissions, cancels in-flight replies and waits for
// them to resolve. Cancelled replies still append the fallback text.
func (s *ConversationStore) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
}

func (s *ConversationStore) newMessage(role domain.Role, content string) domain.Message {
	return domain.Message{
		ID:        s.newID(),
		Role:      role,
		Content:   content,
		Timestamp: s.now(),
	}
}

func (s *ConversationStore) snapshotLocked() domain.Snapshot {
	msgs := make([]domain.Message, len(s.messages))
	copy(msgs, s.messages)
	return domain.Snapshot{
		Messages: msgs,
		Pending:  s.pending,
		Version:  s.version,
	}
}

// changedLocked bumps the version and offers the new snapshot to every
// subscriber without blocking.
func (s *ConversationStore) changedLocked() {
	s.version++
	if len(s.subs) == 0 {
		return
	}
	snap := s.snapshotLocked()
	for _, ch := range s.subs {
		select {
		case <-ch:
		default:
		}
		ch <- snap
	}
}

var closedDone = func() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}()
