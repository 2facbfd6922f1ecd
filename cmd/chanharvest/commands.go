package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/foxseedlab/chanharvest/internal/api"
	"github.com/foxseedlab/chanharvest/internal/harvest"
	"github.com/foxseedlab/chanharvest/internal/telegram"
	"github.com/samber/do/v2"
	"github.com/spf13/cobra"
)

var errHarvestsFailed = errors.New("one or more harvests failed")

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve harvests over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, injector, err := bootstrap(cmd, false)
			if err != nil {
				return err
			}
			defer shutdown(injector)

			server, err := do.Invoke[*api.Server](injector)
			if err != nil {
				return fmt.Errorf("failed to resolve api server: %w", err)
			}
			ctx, stop := signalContext(cmd.Context())
			defer stop()
			return server.Run(ctx)
		},
	}
}

func harvestCmd() *cobra.Command {
	var (
		parseBio      bool
		parseUsername bool
		noJoin        bool
	)
	cmd := &cobra.Command{
		Use:   "harvest <channel>...",
		Short: "Export participants of one or more channels",
		Long: "Channels are @name, t.me/name, telegram.me/name links or -100 peer ids.\n" +
			"They are harvested one after another; the artifact path of each is printed.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, injector, err := bootstrap(cmd, true)
			if err != nil {
				return err
			}
			defer shutdown(injector)

			h, err := do.Invoke[*harvest.Harvester](injector)
			if err != nil {
				return fmt.Errorf("failed to resolve harvester: %w", err)
			}
			ctx, stop := signalContext(cmd.Context())
			defer stop()

			failed := 0
			for _, channel := range args {
				result, err := h.Harvest(ctx, harvest.Request{
					Channel:       channel,
					ParseUsername: parseUsername,
					ParseBio:      parseBio,
					AutoJoin:      !noJoin,
				})
				if err != nil {
					failed++
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", channel, failureMessage(err, result))
					if ctx.Err() != nil {
						break
					}
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\t%s\n", result.Channel, result.TotalUsers, result.ArtifactPath)
			}
			if failed > 0 {
				return errHarvestsFailed
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&parseBio, "bio", false, "resolve participant biographies (slow)")
	cmd.Flags().BoolVar(&parseUsername, "username", false, "include usernames")
	cmd.Flags().BoolVar(&noJoin, "no-join", false, "never join a channel to list its participants")
	return cmd
}

func failureMessage(err error, result harvest.Result) string {
	msg := result.Error
	if msg == "" {
		msg = err.Error()
	}
	if errors.Is(err, telegram.ErrUnauthorized) {
		msg += " (run `chanharvest login` first)"
	}
	return msg
}

func loginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the Telegram session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, injector, err := bootstrap(cmd, true)
			if err != nil {
				return err
			}
			defer shutdown(injector)

			newClient, err := do.Invoke[telegram.ClientFactory](injector)
			if err != nil {
				return fmt.Errorf("failed to resolve telegram client: %w", err)
			}
			auth, err := do.Invoke[telegram.Authenticator](injector)
			if err != nil {
				return fmt.Errorf("failed to resolve authenticator: %w", err)
			}
			ctx, stop := signalContext(cmd.Context())
			defer stop()

			client := newClient()
			if err := client.Connect(ctx); err != nil {
				return err
			}
			defer func() {
				if err := client.Close(); err != nil {
					slog.Warn("failed to close telegram client", "error", err)
				}
			}()
			if err := client.EnsureAuthorized(ctx, auth); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "signed in; session stored")
			return nil
		},
	}
}

func historyCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent harvest runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, injector, err := bootstrap(cmd, false)
			if err != nil {
				return err
			}
			defer shutdown(injector)

			h, err := do.Invoke[*harvest.Harvester](injector)
			if err != nil {
				return fmt.Errorf("failed to resolve harvester: %w", err)
			}
			runs, err := h.RecentRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			renderRuns(cmd.OutOrStdout(), runs)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of runs to show")
	return cmd
}
