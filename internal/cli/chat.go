package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/voxline/voxline/internal/agent"
	"github.com/voxline/voxline/internal/call"
	"github.com/voxline/voxline/internal/config"
	"github.com/voxline/voxline/internal/contacts"
	"github.com/voxline/voxline/internal/whatsapp"
)

const (
	defaultSystemMessage  = "You are Riya, a friendly scheduling assistant. Your goal is to book a site-visit appointment with the caller."
	defaultInitialMessage = "Hello! This is Riya. Do you have a moment to talk about scheduling your site visit?"
)

func newChatCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Run a call session on the console",
		Long:  "Chat runs the agent against stdin/stdout instead of a live call, with call control stubbed out. Useful for exercising the booking flow and prompt changes.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(paths.Config)
			if err != nil {
				cfg = config.Defaults()
			}

			cc := newCallContext(cfg)
			cc.CallSID = "local-" + uuid.NewString()

			var notifier agent.Notifier
			if dryRun || cfg.WhatsApp.APIKey == "" {
				notifier = consoleNotifier{out: cmd.OutOrStdout()}
			} else {
				notifier = whatsapp.NewDispatcher(cfg.WhatsApp.Endpoint, cfg.WhatsApp.APIKey, log)
			}

			contactsPath := cfg.Contacts.Path
			if contactsPath == "" {
				contactsPath = paths.Contacts
			}

			svc, err := agent.NewService(cfg.LLM, agent.ConfigFromApp(cfg), agent.Deps{
				Control:  consoleControl{out: cmd.OutOrStdout()},
				Notifier: notifier,
				Contacts: contacts.NewStore(contactsPath),
				Emit: func(reply agent.Reply, interactionCount int) {
					fmt.Fprintf(cmd.OutOrStdout(), "agent> %s\n", reply.Text)
				},
				Log: log,
			})
			if err != nil {
				return err
			}
			svc.SetCallContext(cc)

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			fmt.Fprintf(cmd.OutOrStdout(), "agent> %s\n", cc.InitialMessage)

			scanner := bufio.NewScanner(os.Stdin)
			interaction := 0
			for {
				fmt.Fprint(cmd.OutOrStdout(), "you> ")
				if !scanner.Scan() {
					break
				}
				text := strings.TrimSpace(scanner.Text())
				if text == "" {
					continue
				}
				interaction++
				if err := svc.Respond(ctx, text, interaction, call.RoleUser, "user"); err != nil {
					return err
				}
				if cc.ConversationEnded {
					break
				}
				if ctx.Err() != nil {
					break
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), "call ended")
			return scanner.Err()
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print WhatsApp messages instead of sending them")

	return cmd
}

// newCallContext builds a call context from configured prompts, falling back
// to the stock persona.
func newCallContext(cfg config.Config) *call.Context {
	system := cfg.Prompts.SystemMessage
	if system == "" {
		system = defaultSystemMessage
	}
	initial := cfg.Prompts.InitialMessage
	if initial == "" {
		initial = defaultInitialMessage
	}
	return call.New(system, initial)
}

// consoleControl stands in for the telephony API during console sessions.
type consoleControl struct {
	out io.Writer
}

func (c consoleControl) TransferCall(ctx context.Context, callSID string) (string, error) {
	fmt.Fprintln(c.out, "[call control] transfer requested")
	return "Call transferred.", nil
}

func (c consoleControl) EndCall(ctx context.Context, callSID string) (string, error) {
	fmt.Fprintln(c.out, "[call control] hangup requested")
	return "Call ended successfully. Final status: completed", nil
}

// consoleNotifier prints outbound messages instead of hitting the gateway.
type consoleNotifier struct {
	out io.Writer
}

func (n consoleNotifier) Send(ctx context.Context, recipient, message string) error {
	if message == "" {
		return fmt.Errorf("no message provided")
	}
	fmt.Fprintf(n.out, "[whatsapp dry-run] to %s: %s\n", recipient, message)
	return nil
}
