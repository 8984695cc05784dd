// Package cli — chatid.go implements the "picbot chat-id" command.
//
// chat-id is the first-run helper: it verifies the bot token, prints
// the setup walkthrough, and then listens for incoming messages for a
// bounded window, printing the chat id of every message it sees so the
// user can copy the right value into CHAT_ID.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	tg "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/spf13/cobra"

	"github.com/shinji-kodama/picbot/internal/model"
)

// chatIDFlags holds the flag values for the chat-id command.
type chatIDFlags struct {
	watch time.Duration // --watch: how long to listen for messages
}

// NewChatIDCommand creates the "chat-id" cobra command.
func NewChatIDCommand() *cobra.Command {
	flags := &chatIDFlags{}

	cmd := &cobra.Command{
		Use:   "chat-id",
		Short: "Discover the CHAT_ID by watching incoming messages",
		Long: `Verify the bot token and discover chat ids.

Send any message to your bot while this command runs; every chat the
bot hears from is printed with its id. Copy the id you want into the
CHAT_ID configuration value.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChatID(cmd.Context(), flags)
		},
	}

	cmd.Flags().DurationVar(&flags.watch, "watch", time.Minute, "How long to watch for incoming messages")

	return cmd
}

// runChatID verifies the token, prints instructions, and polls for
// updates until the watch window closes. Polling goes through the
// library's own update loop: the recorder is installed as the default
// handler and Start runs under the window's deadline.
func runChatID(ctx context.Context, flags *chatIDFlags) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.BotToken == "" {
		return model.NewCLIError(model.ExitConfigInvalid,
			"BOT_TOKEN is not configured; get one from @BotFather and set it in .env")
	}

	rec := newChatRecorder(os.Stdout)

	// tg.New performs getMe, so an invalid token fails here.
	api, err := tg.New(cfg.BotToken, tg.WithDefaultHandler(rec.handle))
	if err != nil {
		return model.WrapCLIError(model.ExitTelegramError, "token verification failed", err)
	}
	me, err := api.GetMe(ctx)
	if err != nil {
		return model.WrapCLIError(model.ExitTelegramError, "Telegram getMe failed", err)
	}

	printHeader("Get Telegram Chat ID")
	fmt.Printf("Token OK: bot @%s\n\n", me.Username)
	fmt.Printf("1. Open Telegram and start a conversation with @%s\n", me.Username)
	fmt.Println("2. Send any message to the bot (e.g. /start)")
	fmt.Println("3. Every chat the bot hears from is listed below")
	fmt.Println("4. Copy the id you want into .env:  CHAT_ID=<id>")
	fmt.Println("5. Verify with: picbot check")
	fmt.Printf("\nWatching for messages for %s...\n\n", flags.watch)

	watchCtx, cancel := context.WithTimeout(ctx, flags.watch)
	defer cancel()
	api.Start(watchCtx)

	if rec.count() == 0 {
		fmt.Println("No messages seen. Send the bot a message and run this command again.")
	}
	return nil
}

// chatRecorder prints each distinct chat the bot hears from. It is
// installed as the bot's default handler, so it sees every update the
// update loop delivers.
type chatRecorder struct {
	mu   sync.Mutex
	out  io.Writer
	seen map[int64]bool
}

func newChatRecorder(out io.Writer) *chatRecorder {
	return &chatRecorder{
		out:  out,
		seen: make(map[int64]bool),
	}
}

// handle records and prints the chat of an incoming message, once per
// chat.
func (r *chatRecorder) handle(_ context.Context, _ *tg.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	chat := update.Message.Chat

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.seen[chat.ID] {
		return
	}
	r.seen[chat.ID] = true
	fmt.Fprintf(r.out, "  chat id: %-15d type: %-10s %s\n",
		chat.ID, chat.Type, chatLabel(chat.Title, chat.FirstName, chat.Username))
}

// count reports how many distinct chats were seen.
func (r *chatRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.seen)
}

// chatLabel picks the most descriptive name available for a chat.
func chatLabel(title, firstName, username string) string {
	switch {
	case title != "":
		return title
	case username != "":
		return "@" + username
	default:
		return firstName
	}
}
