// Package conversation assembles conversations from the client
// directory and the per-client message threads.
package conversation

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/emipmttt/sellia-challenge/internal/apperr"
	"github.com/emipmttt/sellia-challenge/internal/model"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// localSenderID is the id messages composed in this session are
// attributed to (the mock session user).
const localSenderID = "1"

// Directory resolves the cached client list.
type Directory interface {
	Clients(ctx context.Context) ([]model.Client, error)
}

// Gateway is the remote surface the assembler needs: thread fetches
// and the unread-reset write.
type Gateway interface {
	GetList(ctx context.Context, resource string) ([]json.RawMessage, error)
	Put(ctx context.Context, resource string, body any) error
}

// OnlineChecker is the synchronous connectivity signal consulted
// before sending.
type OnlineChecker interface {
	Online() bool
}

// Assembler builds conversation summaries and full conversations on
// demand. It owns no conversation state; that lives in the session
// store.
type Assembler struct {
	dir    Directory
	gw     Gateway
	online OnlineChecker
	logger *zap.Logger
	clock  func() time.Time

	background sync.WaitGroup
}

// NewAssembler creates an assembler over the given collaborators.
func NewAssembler(dir Directory, gw Gateway, online OnlineChecker, logger *zap.Logger) *Assembler {
	return &Assembler{
		dir:    dir,
		gw:     gw,
		online: online,
		logger: logger,
		clock:  time.Now,
	}
}

// ListConversations maps every directory client to a conversation
// summary: empty thread, unread count from the client record, and a
// last message synthesized from the client's lastMessage fields.
func (a *Assembler) ListConversations(ctx context.Context) ([]model.Conversation, error) {
	clients, err := a.dir.Clients(ctx)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}

	convs := make([]model.Conversation, len(clients))
	for i, c := range clients {
		convs[i] = a.synthesize(c)
	}
	return convs, nil
}

// ClientByID resolves one client from the cached directory.
func (a *Assembler) ClientByID(ctx context.Context, clientID string) (model.Client, error) {
	clients, err := a.dir.Clients(ctx)
	if err != nil {
		return model.Client{}, fmt.Errorf("client lookup: %w", err)
	}
	for _, c := range clients {
		if c.ID == clientID {
			return c, nil
		}
	}
	return model.Client{}, &apperr.NotFoundError{Kind: "client", ID: clientID}
}

// ConversationByID fetches the full conversation for a client: the
// message thread and the client record, concurrently. A client lookup
// miss degrades to an unread count of zero; transport failures
// propagate.
func (a *Assembler) ConversationByID(ctx context.Context, clientID string) (model.Conversation, error) {
	var (
		items       []json.RawMessage
		client      model.Client
		clientKnown bool
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		items, err = a.gw.GetList(gctx, clientID)
		return err
	})
	g.Go(func() error {
		c, err := a.ClientByID(gctx, clientID)
		if err != nil {
			if apperr.IsNotFound(err) {
				return nil
			}
			return err
		}
		client = c
		clientKnown = true
		return nil
	})
	if err := g.Wait(); err != nil {
		return model.Conversation{}, fmt.Errorf("get conversation %s: %w", clientID, err)
	}

	msgs := model.MapThread(items, clientID, a.clock())

	conv := model.Conversation{
		ClientID: clientID,
		Messages: msgs,
	}
	if len(msgs) > 0 {
		conv.LastMessage = msgs[len(msgs)-1]
	} else if clientKnown {
		conv.LastMessage = a.synthesize(client).LastMessage
	}
	if clientKnown {
		conv.UnreadCount = client.UnreadCount
	}
	return conv, nil
}

// SendMessage synthesizes a locally composed message. Nothing is
// persisted: the only remote effect is a best-effort reset of the
// client's unread counter, issued in the background with its outcome
// logged only. Fails fast when the device is known offline.
func (a *Assembler) SendMessage(ctx context.Context, clientID, text string) (model.Message, error) {
	if a.online != nil && !a.online.Online() {
		return model.Message{}, &apperr.RemoteError{
			Op:          "send message",
			Message:     "device is offline",
			UserMessage: apperr.UserMsgOffline,
		}
	}

	now := a.clock()
	id := strconv.FormatInt(now.UnixMilli(), 10)
	msg := model.Message{
		ID:     id,
		Type:   model.TypeMessage,
		Client: clientID,
		Content: model.MessageContent{
			ID:        id,
			Type:      model.ContentText,
			Text:      text,
			TypeUser:  model.SenderUser,
			User:      localSenderID,
			CreatedAt: now,
			UpdatedAt: now,
		},
		CreatedAt: now,
	}

	a.background.Add(1)
	go func() {
		defer a.background.Done()
		// Detached from the caller's context: the reset outlives the
		// send call.
		if err := a.gw.Put(context.Background(), clientID, map[string]int{"unreadCount": 0}); err != nil {
			a.logger.Warn("unread reset failed",
				zap.String("client_id", clientID), zap.Error(err))
		}
	}()

	return msg, nil
}

// Wait blocks until any in-flight background unread resets have
// finished. Short-lived callers drain the reset before exiting;
// long-lived callers never need this.
func (a *Assembler) Wait() {
	a.background.Wait()
}

// PreviewMessage returns the most recent message of a client's thread
// by explicit timestamp comparison. The second return is false when
// the thread is empty or anything fails; a preview lookup never
// surfaces an error.
func (a *Assembler) PreviewMessage(ctx context.Context, clientID string) (model.Message, bool) {
	conv, err := a.ConversationByID(ctx, clientID)
	if err != nil {
		a.logger.Debug("preview unavailable", zap.String("client_id", clientID), zap.Error(err))
		return model.Message{}, false
	}
	if len(conv.Messages) == 0 {
		return model.Message{}, false
	}

	latest := conv.Messages[0]
	for _, m := range conv.Messages[1:] {
		if m.CreatedAt.After(latest.CreatedAt) {
			latest = m
		}
	}
	return latest, true
}

// synthesize builds the list-view conversation for a client before its
// real thread is loaded. The preview message carries the client's
// lastMessage fields, falling back to now when no date is recorded.
func (a *Assembler) synthesize(c model.Client) model.Conversation {
	ts := c.LastMessageDate
	if ts.IsZero() {
		ts = a.clock()
	}

	return model.Conversation{
		ClientID: c.ID,
		Messages: []model.Message{},
		LastMessage: model.Message{
			ID:     "last",
			Type:   model.TypeMessage,
			Client: c.ID,
			Content: model.MessageContent{
				ID:        "last",
				Type:      model.ContentText,
				Text:      c.LastMessage,
				TypeUser:  model.SenderClient,
				User:      c.ID,
				CreatedAt: ts,
				UpdatedAt: ts,
			},
			CreatedAt: ts,
		},
		UnreadCount: c.UnreadCount,
	}
}
