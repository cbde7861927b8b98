package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/emipmttt/sellia-challenge/internal/apperr"
	"github.com/emipmttt/sellia-challenge/internal/model"
	"go.uber.org/zap"
)

type fakeDirectory struct {
	clients []model.Client
	err     error
}

func (d *fakeDirectory) Clients(context.Context) ([]model.Client, error) {
	return d.clients, d.err
}

type fakeGateway struct {
	mu       sync.Mutex
	threads  map[string][]json.RawMessage
	getErr   error
	putErr   error
	putCalls []string
	putGate  chan struct{}
}

func (g *fakeGateway) GetList(_ context.Context, resource string) ([]json.RawMessage, error) {
	if g.getErr != nil {
		return nil, g.getErr
	}
	return g.threads[resource], nil
}

func (g *fakeGateway) Put(_ context.Context, resource string, _ any) error {
	if g.putGate != nil {
		<-g.putGate
	}
	g.mu.Lock()
	g.putCalls = append(g.putCalls, resource)
	g.mu.Unlock()
	return g.putErr
}

func (g *fakeGateway) puts() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.putCalls...)
}

type fakeOnline struct {
	online bool
}

func (o *fakeOnline) Online() bool { return o.online }

var asmNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestAssembler(d *fakeDirectory, g *fakeGateway, online bool) *Assembler {
	a := NewAssembler(d, g, &fakeOnline{online: online}, zap.NewNop())
	a.clock = func() time.Time { return asmNow }
	return a
}

func threadJSON(id string, createdAt time.Time, text string) json.RawMessage {
	doc := fmt.Sprintf(`{
		"_id": %q,
		"type": "Message",
		"message": {"_id": %q, "type": "text", "text": %q, "typeUser": "Client", "user": "u", "createdAt": %q, "updatedAt": %q},
		"createdAt": %q
	}`, id, id, text, createdAt.Format(time.RFC3339), createdAt.Format(time.RFC3339), createdAt.Format(time.RFC3339))
	return json.RawMessage(doc)
}

func TestListConversationsSynthesis(t *testing.T) {
	lastDate := time.Date(2025, 5, 31, 9, 30, 0, 0, time.UTC)
	d := &fakeDirectory{clients: []model.Client{{
		ID:              "c1",
		Name:            "Ana",
		LastMessage:     "Hi",
		LastMessageDate: lastDate,
		UnreadCount:     2,
	}}}
	a := newTestAssembler(d, &fakeGateway{}, true)

	convs, err := a.ListConversations(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(convs) != 1 {
		t.Fatalf("got %d conversations, want 1", len(convs))
	}
	conv := convs[0]
	if conv.LastMessage.Content.Text != "Hi" {
		t.Errorf("preview text = %q, want Hi", conv.LastMessage.Content.Text)
	}
	if !conv.LastMessage.CreatedAt.Equal(lastDate) {
		t.Errorf("preview date = %v, want %v", conv.LastMessage.CreatedAt, lastDate)
	}
	if conv.UnreadCount != 2 {
		t.Errorf("unreadCount = %d, want 2", conv.UnreadCount)
	}
	if len(conv.Messages) != 0 {
		t.Errorf("messages = %d, want empty", len(conv.Messages))
	}
}

func TestListConversationsNoLastMessageDateFallsBackToNow(t *testing.T) {
	d := &fakeDirectory{clients: []model.Client{{ID: "c1", Name: "Ana"}}}
	a := newTestAssembler(d, &fakeGateway{}, true)

	convs, err := a.ListConversations(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !convs[0].LastMessage.CreatedAt.Equal(asmNow) {
		t.Errorf("preview date = %v, want now fallback", convs[0].LastMessage.CreatedAt)
	}
}

func TestClientByIDNotFound(t *testing.T) {
	d := &fakeDirectory{clients: []model.Client{{ID: "c1"}}}
	a := newTestAssembler(d, &fakeGateway{}, true)

	_, err := a.ClientByID(context.Background(), "doesNotExist")
	if !apperr.IsNotFound(err) {
		t.Errorf("error = %v, want NotFoundError", err)
	}
	var re *apperr.RemoteError
	if errors.As(err, &re) {
		t.Error("lookup miss must not be a RemoteError")
	}
}

func TestConversationByID(t *testing.T) {
	t1 := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	t2 := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	d := &fakeDirectory{clients: []model.Client{{ID: "c1", UnreadCount: 3}}}
	g := &fakeGateway{threads: map[string][]json.RawMessage{
		"c1": {threadJSON("m1", t1, "first"), threadJSON("m2", t2, "second")},
	}}
	a := newTestAssembler(d, g, true)

	conv, err := a.ConversationByID(context.Background(), "c1")
	if err != nil {
		t.Fatal(err)
	}
	if len(conv.Messages) != 2 {
		t.Fatalf("got %d messages, want 2", len(conv.Messages))
	}
	if conv.LastMessage.ID != "m2" {
		t.Errorf("lastMessage = %q, want m2 (final thread element)", conv.LastMessage.ID)
	}
	if conv.UnreadCount != 3 {
		t.Errorf("unreadCount = %d, want 3", conv.UnreadCount)
	}
}

func TestConversationByIDUnknownClient(t *testing.T) {
	d := &fakeDirectory{}
	g := &fakeGateway{threads: map[string][]json.RawMessage{
		"ghost": {threadJSON("m1", asmNow, "hello")},
	}}
	a := newTestAssembler(d, g, true)

	conv, err := a.ConversationByID(context.Background(), "ghost")
	if err != nil {
		t.Fatal(err)
	}
	if conv.UnreadCount != 0 {
		t.Errorf("unreadCount = %d, want 0 for unknown client", conv.UnreadCount)
	}
	if len(conv.Messages) != 1 {
		t.Errorf("got %d messages, want 1", len(conv.Messages))
	}
}

func TestConversationByIDTransportErrorPropagates(t *testing.T) {
	d := &fakeDirectory{clients: []model.Client{{ID: "c1"}}}
	g := &fakeGateway{getErr: &apperr.RemoteError{Op: "get", Message: "status 500", StatusCode: 500}}
	a := newTestAssembler(d, g, true)

	if _, err := a.ConversationByID(context.Background(), "c1"); err == nil {
		t.Error("expected transport error to propagate")
	}
}

func TestPreviewMessagePicksMaxTimestamp(t *testing.T) {
	t1 := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	t2 := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	// Storage order must not matter.
	orders := map[string][]json.RawMessage{
		"ascending":  {threadJSON("a", t1, "old"), threadJSON("b", t2, "new")},
		"descending": {threadJSON("b", t2, "new"), threadJSON("a", t1, "old")},
	}

	for name, thread := range orders {
		t.Run(name, func(t *testing.T) {
			d := &fakeDirectory{clients: []model.Client{{ID: "c1"}}}
			g := &fakeGateway{threads: map[string][]json.RawMessage{"c1": thread}}
			a := newTestAssembler(d, g, true)

			msg, ok := a.PreviewMessage(context.Background(), "c1")
			if !ok {
				t.Fatal("PreviewMessage() not found, want found")
			}
			if !msg.CreatedAt.Equal(t2) {
				t.Errorf("preview createdAt = %v, want %v", msg.CreatedAt, t2)
			}
		})
	}
}

func TestPreviewMessageDegrades(t *testing.T) {
	cases := []struct {
		name string
		dir  *fakeDirectory
		gw   *fakeGateway
	}{
		{
			name: "fetch failure",
			dir:  &fakeDirectory{clients: []model.Client{{ID: "c1"}}},
			gw:   &fakeGateway{getErr: errors.New("boom")},
		},
		{
			name: "empty thread",
			dir:  &fakeDirectory{clients: []model.Client{{ID: "c1"}}},
			gw:   &fakeGateway{},
		},
		{
			name: "unknown client with no thread",
			dir:  &fakeDirectory{},
			gw:   &fakeGateway{},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a := newTestAssembler(tc.dir, tc.gw, true)
			if _, ok := a.PreviewMessage(context.Background(), "c1"); ok {
				t.Error("PreviewMessage() found, want absent")
			}
		})
	}
}

func TestSendMessageSynthesizesLocally(t *testing.T) {
	g := &fakeGateway{}
	a := newTestAssembler(&fakeDirectory{}, g, true)

	msg, err := a.SendMessage(context.Background(), "c1", "hola")
	if err != nil {
		t.Fatal(err)
	}
	if msg.Content.Text != "hola" || msg.Content.TypeUser != model.SenderUser {
		t.Errorf("message = %+v, want text=hola sender=User", msg.Content)
	}
	if msg.Client != "c1" {
		t.Errorf("client = %q, want c1", msg.Client)
	}
	wantID := "1748779200000"
	if msg.ID != wantID {
		t.Errorf("id = %q, want unix-milli %q", msg.ID, wantID)
	}
	if !msg.CreatedAt.Equal(asmNow) {
		t.Errorf("createdAt = %v, want now", msg.CreatedAt)
	}

	// The unread reset runs in the background.
	a.Wait()
	if puts := g.puts(); len(puts) != 1 || puts[0] != "c1" {
		t.Errorf("put calls = %v, want [c1]", puts)
	}
}

func TestSendMessageResetFailureIsSwallowed(t *testing.T) {
	g := &fakeGateway{putErr: errors.New("boom")}
	a := newTestAssembler(&fakeDirectory{}, g, true)

	if _, err := a.SendMessage(context.Background(), "c1", "hola"); err != nil {
		t.Fatalf("SendMessage() error = %v, want nil despite reset failure", err)
	}
	a.Wait()
	if puts := g.puts(); len(puts) != 1 {
		t.Errorf("put calls = %d, want 1", len(puts))
	}
}

// TestWaitDrainsPendingReset pins down the exit contract: Wait must
// not return until the background unread reset has actually gone out.
// A short-lived process that skips Wait would otherwise tear down
// before the reset's HTTP request ever starts.
func TestWaitDrainsPendingReset(t *testing.T) {
	gate := make(chan struct{})
	g := &fakeGateway{putGate: gate}
	a := newTestAssembler(&fakeDirectory{}, g, true)

	if _, err := a.SendMessage(context.Background(), "c1", "hola"); err != nil {
		t.Fatal(err)
	}

	waitDone := make(chan struct{})
	go func() {
		a.Wait()
		close(waitDone)
	}()

	select {
	case <-waitDone:
		t.Fatal("Wait() returned before the reset completed")
	case <-time.After(50 * time.Millisecond):
	}

	close(gate)

	select {
	case <-waitDone:
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for Wait() to drain the reset")
	}
	if puts := g.puts(); len(puts) != 1 || puts[0] != "c1" {
		t.Errorf("put calls = %v, want [c1]", puts)
	}
}

func TestSendMessageOfflineFailsFast(t *testing.T) {
	g := &fakeGateway{}
	a := newTestAssembler(&fakeDirectory{}, g, false)

	_, err := a.SendMessage(context.Background(), "c1", "hola")
	var re *apperr.RemoteError
	if !errors.As(err, &re) {
		t.Fatalf("error = %v, want RemoteError", err)
	}
	if re.UserMessage != apperr.UserMsgOffline {
		t.Errorf("user message = %q, want offline message", re.UserMessage)
	}
	if len(g.puts()) != 0 {
		t.Error("no network call may be attempted while offline")
	}
}
