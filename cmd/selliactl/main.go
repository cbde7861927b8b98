package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/emipmttt/sellia-challenge/internal/app"
	"github.com/emipmttt/sellia-challenge/internal/conversation"
	"github.com/emipmttt/sellia-challenge/internal/convstore"
	"github.com/emipmttt/sellia-challenge/internal/notify"
	"go.uber.org/fx"
)

func main() {
	configFlag := flag.String("config", "", "path to config.toml")
	jsonFlag := flag.Bool("json", false, "output in JSON format")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	var (
		store  *convstore.Store
		asm    *conversation.Assembler
		center *notify.Center
	)
	fxApp := fx.New(
		app.Module(app.Params{ConfigPath: *configFlag}),
		fx.Populate(&store, &asm, &center),
		fx.NopLogger,
	)
	if err := fxApp.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	switch args[0] {
	case "conversations":
		cmdConversations(ctx, store, center, *jsonFlag)
	case "show":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "usage: selliactl show <clientId>")
			os.Exit(1)
		}
		cmdShow(ctx, asm, args[1], *jsonFlag)
	case "preview":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "usage: selliactl preview <clientId>")
			os.Exit(1)
		}
		cmdPreview(ctx, asm, args[1], *jsonFlag)
	case "send":
		if len(args) < 3 {
			fmt.Fprintln(os.Stderr, "usage: selliactl send <clientId> <text>")
			os.Exit(1)
		}
		cmdSend(ctx, store, asm, center, args[1], strings.Join(args[2:], " "))
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", args[0])
		printUsage()
		os.Exit(1)
	}
}

func cmdConversations(ctx context.Context, store *convstore.Store, center *notify.Center, asJSON bool) {
	store.LoadAll(ctx)
	convs := store.Conversations()

	if asJSON {
		printJSON(convs)
	} else {
		for _, conv := range convs {
			name := conv.ClientID
			if conv.Client != nil && conv.Client.Name != "" {
				name = conv.Client.Name
			}
			fmt.Printf("%-24s  unread=%-3d  %s  %s\n",
				name, conv.UnreadCount,
				conv.LastMessage.CreatedAt.Format(time.RFC3339),
				conv.LastMessage.Content.Text)
		}
	}

	drainNotifications(center)
	if store.Err() != nil {
		os.Exit(1)
	}
}

func cmdShow(ctx context.Context, asm *conversation.Assembler, clientID string, asJSON bool) {
	conv, err := asm.ConversationByID(ctx, clientID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if asJSON {
		printJSON(conv)
		return
	}
	for _, m := range conv.Messages {
		fmt.Printf("[%s] %-10s %s\n",
			m.CreatedAt.Format(time.RFC3339), m.Content.TypeUser, m.Content.Text)
	}
}

func cmdPreview(ctx context.Context, asm *conversation.Assembler, clientID string, asJSON bool) {
	msg, ok := asm.PreviewMessage(ctx, clientID)
	if !ok {
		fmt.Println("no preview available")
		return
	}
	if asJSON {
		printJSON(msg)
		return
	}
	fmt.Printf("[%s] %s\n", msg.CreatedAt.Format(time.RFC3339), msg.Content.Text)
}

func cmdSend(ctx context.Context, store *convstore.Store, asm *conversation.Assembler, center *notify.Center, clientID, text string) {
	store.LoadAll(ctx)

	msg, err := asm.SendMessage(ctx, clientID, text)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	store.AppendLocal(clientID, msg)
	center.ShowSuccess("Message sent")

	fmt.Printf("sent %s to %s\n", msg.ID, clientID)

	// Drain the background unread reset before the process exits.
	asm.Wait()
	drainNotifications(center)
}

func drainNotifications(center *notify.Center) {
	for _, n := range center.Active() {
		fmt.Fprintf(os.Stderr, "%s: %s\n", n.Level, n.Message)
	}
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "usage: selliactl [--config <path>] [--json] <command>")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "commands:")
	fmt.Fprintln(os.Stderr, "  conversations           List conversations with previews")
	fmt.Fprintln(os.Stderr, "  show <clientId>         Print a client's message thread")
	fmt.Fprintln(os.Stderr, "  preview <clientId>      Print the most recent message")
	fmt.Fprintln(os.Stderr, "  send <clientId> <text>  Compose a local message")
}
