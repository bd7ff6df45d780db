package root

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Libretto-Pic/the-sage-game/internal/engine"
	"github.com/Libretto-Pic/the-sage-game/internal/schedule"
	"github.com/Libretto-Pic/the-sage-game/internal/ui"
)

func newWatchCmd() *cobra.Command {
	var expr string
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stay running and roll the day over on the configured schedule",
		Long: `Run the rollover on a cron schedule (rollover_cron, default "0 4 * * *").

Scheduled rollovers are forced, so a day left unfinished counts toward
the failure streak.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			a, cleanup, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()
			out := cmd.OutOrStdout()
			if expr == "" {
				expr = a.cfg.RolloverCron
			}

			runner, err := schedule.NewRunner(expr, func(jobCtx context.Context) {
				res, err := a.game.StartNewDay(jobCtx, true)
				switch {
				case errors.Is(err, engine.ErrGenerationInProgress), errors.Is(err, engine.ErrStateChanged):
					a.log.Warn("scheduled rollover skipped", "err", err)
				case err != nil:
					a.log.Error("scheduled rollover failed", "err", err)
					fmt.Fprintln(out, ui.Bad.Render(ui.IconError+" rollover failed: "+err.Error()))
				default:
					printDay(out, res)
				}
			}, a.log.Logger)
			if err != nil {
				return err
			}

			next, _ := schedule.NextRollover(expr, time.Now())
			fmt.Fprintf(out, "%s %s\n", ui.Muted.Render(ui.IconClock+" Watching ("+expr+"), next rollover"), next.Format("Mon Jan 2 15:04"))
			runner.Run(ctx)
			return nil
		},
	}
	cmd.Flags().StringVar(&expr, "schedule", "", "Cron expression overriding rollover_cron")
	return cmd
}
