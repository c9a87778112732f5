package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/voxline/voxline/internal/config"
	"github.com/voxline/voxline/internal/twilio"
)

func newCallCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "call",
		Short: "Inspect and control live calls",
	}

	cmd.AddCommand(newCallStatusCmd())
	cmd.AddCommand(newCallTransferCmd())
	cmd.AddCommand(newCallEndCmd())

	return cmd
}

// telephonyClient builds the call-control client from configuration.
func telephonyClient() (*twilio.Client, error) {
	cfg, err := config.Load(paths.Config)
	if err != nil {
		return nil, err
	}
	if cfg.Telephony.AccountSID == "" || cfg.Telephony.AuthToken == "" {
		return nil, fmt.Errorf("no telephony credentials configured")
	}

	var opts []twilio.Option
	if cfg.Telephony.BaseURL != "" {
		opts = append(opts, twilio.WithBaseURL(cfg.Telephony.BaseURL))
	}
	return twilio.NewClient(cfg.Telephony.AccountSID, cfg.Telephony.AuthToken,
		cfg.Telephony.TransferNumber, log, opts...), nil
}

func callSignalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func newCallStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <callSid>",
		Short: "Print the current status of a call",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := telephonyClient()
			if err != nil {
				return err
			}

			ctx, stop := callSignalContext()
			defer stop()

			call, err := client.GetCall(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s -> %s, %s)\n",
				call.SID, call.Status, call.From, call.To, call.Direction)
			return nil
		},
	}
}

func newCallTransferCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "transfer <callSid>",
		Short: "Transfer a call to the configured transfer number",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := telephonyClient()
			if err != nil {
				return err
			}

			ctx, stop := callSignalContext()
			defer stop()

			out, err := client.TransferCall(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
}

func newCallEndCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "end <callSid>",
		Short: "End a call",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := telephonyClient()
			if err != nil {
				return err
			}

			ctx, stop := callSignalContext()
			defer stop()

			out, err := client.EndCall(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
}
