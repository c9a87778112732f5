package cli

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/voxline/voxline/internal/config"
	"github.com/voxline/voxline/internal/contacts"
	"github.com/voxline/voxline/internal/whatsapp"
)

func newNotifyCmd() *cobra.Command {
	var recipient string

	cmd := &cobra.Command{
		Use:   "notify [message]",
		Short: "Send a WhatsApp message through the configured gateway",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			message := strings.Join(args, " ")

			cfg, err := config.Load(paths.Config)
			if err != nil {
				return err
			}
			if cfg.WhatsApp.APIKey == "" {
				return fmt.Errorf("no WhatsApp API key configured")
			}

			if recipient == "" {
				contactsPath := cfg.Contacts.Path
				if contactsPath == "" {
					contactsPath = paths.Contacts
				}
				contact, err := contacts.NewStore(contactsPath).Load()
				if err != nil {
					return err
				}
				recipient = contact.PhoneNumber
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			dispatcher := whatsapp.NewDispatcher(cfg.WhatsApp.Endpoint, cfg.WhatsApp.APIKey, log)
			if err := dispatcher.Send(ctx, recipient, message); err != nil {
				return err
			}

			fmt.Printf("Sent to %s\n", recipient)
			return nil
		},
	}

	cmd.Flags().StringVar(&recipient, "to", "", "recipient phone number (defaults to the contact file)")

	return cmd
}
