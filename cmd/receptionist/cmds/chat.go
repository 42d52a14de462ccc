package cmds

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/sudo-god/AI-Receptionist/pkg/supervisor"
)

func NewChatCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Talk to the receptionist on the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			account, _ := cmd.Flags().GetString("account")
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			app, err := NewApp(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() {
				_ = app.Close(context.Background())
			}()

			go func() {
				if err := app.Events.Run(ctx); err != nil {
					log.Warn().Err(err).Msg("event router stopped")
				}
			}()
			<-app.Events.Running()

			return runChat(ctx, app.Supervisor, account, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	cmd.Flags().String("account", "demo", "Account the conversation belongs to")
	return cmd
}

// runChat reads one message per line until EOF or "exit". /reset discards a pending
// question and /forget deletes the conversation.
func runChat(ctx context.Context, sup *supervisor.Supervisor, account string, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	fmt.Fprintf(out, "Talking to the receptionist as %s. Type exit to quit.\n", account)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "exit", "quit":
			return nil
		case "/reset":
			if err := sup.Reset(ctx, account); err != nil {
				return err
			}
			fmt.Fprintln(out, "(pending question discarded)")
			continue
		case "/forget":
			if err := sup.Forget(ctx, account); err != nil {
				return err
			}
			fmt.Fprintln(out, "(conversation deleted)")
			continue
		}

		reply, err := sup.Handle(ctx, account, line)
		if err != nil {
			log.Error().Err(err).Msg("turn failed")
			fmt.Fprintln(out, "Sorry, something went wrong, please try again.")
			continue
		}
		fmt.Fprintln(out, reply.Text)
		if reply.Suspended {
			fmt.Fprintln(out, "(awaiting your answer)")
		}
	}
}
