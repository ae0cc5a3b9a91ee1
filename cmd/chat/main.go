// Command chat is a terminal front end for the portfolio assistant. It drives
// the same controller the web widget uses against a running API.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/folio/portfolio/backend/go-services/internal/chat"
	"github.com/folio/portfolio/backend/go-services/internal/models"
	"github.com/folio/portfolio/backend/go-services/pkg/logger"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	apiURL  string
	email   string
	model   string
	timeout time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the portfolio assistant from a terminal",
	Long: `Opens a chat session against a running portfolio API.

Commands inside the session:
  /feedback up|down   rate the last assistant reply
  /projects           list the portfolio's projects
  /quit               end the session and exit`,
	RunE: run,
}

func init() {
	rootCmd.Flags().StringVar(&apiURL, "api", envOr("PORTFOLIO_API_URL", "http://localhost:8080"), "portfolio API base URL")
	rootCmd.Flags().StringVar(&email, "email", "", "email used to resume an earlier conversation")
	rootCmd.Flags().StringVar(&model, "model", "", "completion model (empty uses the server default)")
	rootCmd.Flags().DurationVar(&timeout, "timeout", 90*time.Second, "HTTP timeout per request")
}

func main() {
	logger.Init(envOr("LOG_LEVEL", "warn"))
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// terminalInfo reports the terminal width and a WxH screen size for the session record.
func terminalInfo() (int, string) {
	w, h, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return 80, ""
	}
	return w, fmt.Sprintf("%dx%d", w, h)
}

func newRenderer(width int) *glamour.TermRenderer {
	wrap := width - 4
	if wrap < 40 {
		wrap = 40
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(wrap))
	if err != nil {
		return nil
	}
	return r
}

func markdown(r *glamour.TermRenderer, text string) string {
	if r == nil {
		return text
	}
	if s, err := r.Render(text); err == nil {
		return strings.TrimRight(s, "\n")
	}
	return text
}

func renderMarkdown(out io.Writer, r *glamour.TermRenderer, text string) {
	fmt.Fprintln(out, markdown(r, text))
}

func render(out io.Writer, r *glamour.TermRenderer, m models.Message) {
	label := "you"
	text := m.Content
	if m.Role == models.RoleAssistant {
		label = "assistant"
		text = markdown(r, text)
	}
	fmt.Fprintf(out, "%s> %s\n", label, text)
}

func run(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	width, screen := terminalInfo()
	renderer := newRenderer(width)

	client := chat.NewHTTPClient(apiURL, timeout)
	ctrl := chat.NewController(chat.Options{
		Completer: client,
		Sessions:  client,
		Portfolio: client,
		Email:     email,
		Device:    models.DeviceInfo{UserAgent: "portfolio-chat-cli", Platform: runtime.GOOS + "/" + runtime.GOARCH, ScreenSize: screen},
		Model:     model,
	})
	defer ctrl.Shutdown()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctrl.Open(ctx); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: could not start a session: %v\n", err)
	}
	defer ctrl.Close(context.Background())

	for _, m := range ctrl.Messages() {
		render(out, renderer, m)
	}

	var lastReply string
	in := bufio.NewScanner(cmd.InOrStdin())
	for {
		fmt.Fprint(out, "> ")
		if !in.Scan() {
			fmt.Fprintln(out)
			return in.Err()
		}
		line := strings.TrimSpace(in.Text())
		switch {
		case line == "":
			continue
		case line == "/quit" || line == "/exit":
			return nil
		case line == "/projects":
			pf, err := client.Portfolio(ctx)
			if err != nil {
				fmt.Fprintf(out, "could not load projects: %v\n", err)
				continue
			}
			renderMarkdown(out, renderer, chat.ProjectList(pf.Projects))
			continue
		case strings.HasPrefix(line, "/feedback"):
			arg := strings.TrimSpace(strings.TrimPrefix(line, "/feedback"))
			if lastReply == "" || (arg != "up" && arg != "down") {
				fmt.Fprintln(out, "usage: /feedback up|down (after a reply)")
				continue
			}
			if err := ctrl.RecordFeedback(lastReply, arg == "up"); err != nil {
				fmt.Fprintf(out, "feedback not recorded: %v\n", err)
				continue
			}
			fmt.Fprintln(out, "thanks for the feedback")
			continue
		}

		ctrl.SetInput(line)
		reply, err := ctrl.Submit(ctx)
		if errors.Is(err, chat.ErrBusy) || errors.Is(err, chat.ErrEmptyInput) {
			continue
		}
		if err != nil {
			return err
		}
		lastReply = reply.ID
		render(out, renderer, *reply)
	}
}
