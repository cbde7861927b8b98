// Package convstore owns the in-memory conversation list for one
// session: fetch-once population, per-conversation enrichment, and
// local mutations. No operation returns an error; failures land in a
// shared error slot and on the notification surface, and callers poll.
package convstore

import (
	"context"
	"sync"

	"github.com/emipmttt/sellia-challenge/internal/apperr"
	"github.com/emipmttt/sellia-challenge/internal/bus"
	"github.com/emipmttt/sellia-challenge/internal/model"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Service is the assembler surface the store consumes.
type Service interface {
	ListConversations(ctx context.Context) ([]model.Conversation, error)
	ClientByID(ctx context.Context, clientID string) (model.Client, error)
	ConversationByID(ctx context.Context, clientID string) (model.Conversation, error)
}

// Notifier is the user-facing notification surface. The store only
// ever raises errors on it.
type Notifier interface {
	ShowError(msg string)
}

// Store is the session-scoped conversation coordinator.
type Store struct {
	svc      Service
	notifier Notifier
	bus      *bus.Bus
	logger   *zap.Logger
	limit    int

	mu            sync.RWMutex
	conversations []*model.Conversation
	loading       int // count of in-flight loads; see Loading
	lastErr       error

	refreshCh chan struct{}
}

// New creates a store. limit bounds the enrichment fan-out.
func New(svc Service, notifier Notifier, b *bus.Bus, logger *zap.Logger, limit int) *Store {
	if limit <= 0 {
		limit = 1
	}
	return &Store{
		svc:       svc,
		notifier:  notifier,
		bus:       b,
		logger:    logger,
		limit:     limit,
		refreshCh: make(chan struct{}, 1),
	}
}

// LoadAll populates the conversation list once per session: list the
// directory, attach each client record, then load every thread so list
// previews show real messages. All per-conversation work fans out
// bounded by the configured limit, and a failure in one conversation
// never cancels the others. Already populated means no-op.
func (s *Store) LoadAll(ctx context.Context) {
	s.mu.Lock()
	if len(s.conversations) > 0 {
		s.mu.Unlock()
		s.logger.Debug("conversations already loaded")
		return
	}
	s.loading++
	s.lastErr = nil
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.loading--
		s.mu.Unlock()
		s.signalRefresh()
	}()

	convs, err := s.svc.ListConversations(ctx)
	if err != nil {
		s.fail("load conversations", err)
		return
	}

	list := make([]*model.Conversation, len(convs))
	for i := range convs {
		c := convs[i]
		list[i] = &c
	}

	// Attach client records. The list is not published yet, so each
	// goroutine owns its element.
	g := new(errgroup.Group)
	g.SetLimit(s.limit)
	for _, conv := range list {
		conv := conv
		g.Go(func() error {
			client, err := s.svc.ClientByID(ctx, conv.ClientID)
			if err != nil {
				s.fail("attach client "+conv.ClientID, err)
				return nil
			}
			conv.Client = &client
			return nil
		})
	}
	_ = g.Wait()

	s.mu.Lock()
	s.conversations = list
	s.mu.Unlock()
	s.bus.Publish(bus.Event{Kind: bus.KindConversationsLoaded, Payload: len(list)})
	s.signalRefresh()

	// Replace synthesized previews with real threads.
	g = new(errgroup.Group)
	g.SetLimit(s.limit)
	for _, conv := range list {
		clientID := conv.ClientID
		g.Go(func() error {
			s.LoadMessages(ctx, clientID)
			return nil
		})
	}
	_ = g.Wait()
}

// LoadMessages fetches the full thread for one conversation and swaps
// it in, along with the real last message. A thread already loaded is
// never refetched; an unknown clientID is logged and ignored; a fetch
// failure keeps the conversation's prior state.
func (s *Store) LoadMessages(ctx context.Context, clientID string) {
	conv := s.find(clientID)
	if conv == nil {
		s.logger.Warn("conversation not found", zap.String("client_id", clientID))
		return
	}

	s.mu.RLock()
	loaded := len(conv.Messages) > 0
	s.mu.RUnlock()
	if loaded {
		s.logger.Debug("messages already loaded", zap.String("client_id", clientID))
		return
	}

	s.mu.Lock()
	s.loading++
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.loading--
		s.mu.Unlock()
	}()

	full, err := s.svc.ConversationByID(ctx, clientID)
	if err != nil {
		s.fail("load messages "+clientID, err)
		return
	}

	s.mu.Lock()
	conv.Messages = full.Messages
	if len(full.Messages) > 0 {
		conv.LastMessage = full.Messages[len(full.Messages)-1]
	}
	s.mu.Unlock()

	s.bus.Publish(bus.Event{Kind: bus.KindConversationMessages, Payload: clientID})
	s.signalRefresh()
}

// AppendLocal appends a locally composed message to a conversation's
// thread. Unknown conversations are a silent no-op.
func (s *Store) AppendLocal(clientID string, msg model.Message) {
	conv := s.find(clientID)
	if conv == nil {
		return
	}

	s.mu.Lock()
	conv.Messages = append(conv.Messages, msg)
	conv.LastMessage = msg
	s.mu.Unlock()

	s.bus.Publish(bus.Event{Kind: bus.KindConversationAppended, Payload: clientID})
	s.signalRefresh()
}

// Conversations returns a snapshot of the current list.
func (s *Store) Conversations() []model.Conversation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Conversation, len(s.conversations))
	for i, conv := range s.conversations {
		out[i] = *conv
	}
	return out
}

// Conversation returns a snapshot of one conversation.
func (s *Store) Conversation(clientID string) (model.Conversation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, conv := range s.conversations {
		if conv.ClientID == clientID {
			return *conv, true
		}
	}
	return model.Conversation{}, false
}

// Loading reports whether any load (a LoadAll or a standalone
// LoadMessages) is in flight. It stays true until every outstanding
// load has settled.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading > 0
}

// Err returns the last recorded failure. With fan-out loads it
// reflects whichever failure was recorded last; treat it as "at least
// one load failed".
func (s *Store) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// RefreshCh signals that the conversation list changed. The channel
// has a one-slot buffer; coalesced signals are fine for consumers that
// re-read snapshots.
func (s *Store) RefreshCh() <-chan struct{} {
	return s.refreshCh
}

func (s *Store) find(clientID string) *model.Conversation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, conv := range s.conversations {
		if conv.ClientID == clientID {
			return conv
		}
	}
	return nil
}

func (s *Store) fail(op string, err error) {
	s.logger.Error(op+" failed", zap.Error(err))

	s.mu.Lock()
	s.lastErr = err
	s.mu.Unlock()

	if s.notifier != nil {
		s.notifier.ShowError(apperr.UserText(err))
	}
	s.bus.Publish(bus.Event{Kind: bus.KindConversationLoadFailed, Payload: op})
}

func (s *Store) signalRefresh() {
	select {
	case s.refreshCh <- struct{}{}:
	default:
	}
}
