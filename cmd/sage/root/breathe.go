package root

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/Libretto-Pic/the-sage-game/internal/catalog"
	"github.com/Libretto-Pic/the-sage-game/internal/engine"
	"github.com/Libretto-Pic/the-sage-game/internal/ui"
)

func newBreatheCmd() *cobra.Command {
	var reps int
	cmd := &cobra.Command{
		Use:   "breathe [style]",
		Short: "List breathing styles, or be guided through one",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()
			a, cleanup, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()
			out := cmd.OutOrStdout()
			level := a.game.Status().Level

			if len(args) == 0 {
				fmt.Fprintln(out, ui.Heading(ui.IconWind, "Breathing styles"))
				for _, b := range a.game.Catalog().BreathingStyles {
					line := fmt.Sprintf("- %s %s", ui.Key.Render(b.Name), ui.Muted.Render(b.Description))
					if err := engine.CanUseBreathingStyle(level, b); err != nil {
						line = fmt.Sprintf("- %s %s", ui.Muted.Render(b.Name), ui.Bad.Render(fmt.Sprintf("(level %d)", b.UnlockLevel)))
					}
					fmt.Fprintln(out, line)
				}
				return nil
			}

			style, ok := a.game.Catalog().BreathingStyle(args[0])
			if !ok {
				return fmt.Errorf("unknown breathing style %q", args[0])
			}
			if err := engine.CanUseBreathingStyle(level, style); err != nil {
				return err
			}
			fmt.Fprintln(out, ui.Heading(ui.IconWind, style.Name))
			fmt.Fprintln(out, style.Technique)
			fmt.Fprintln(out, ui.Muted.Render("When to use: "+style.WhenToUse))
			if !style.Guided() {
				return nil
			}
			if reps <= 0 {
				reps = style.Reps
			}
			err = guide(ctx, out, style, reps, time.Second)
			if errors.Is(err, context.Canceled) {
				fmt.Fprintln(out, ui.Muted.Render("\nSession ended early."))
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(out, ui.Good.Render(ui.IconSparkle+" Session complete"))
			return nil
		},
	}
	cmd.Flags().IntVarP(&reps, "reps", "r", 0, "Repetitions (default: the style's own)")
	return cmd
}

// guide walks reps cycles of the style's steps, one bar tick per unit.
func guide(ctx context.Context, out io.Writer, style catalog.BreathingStyle, reps int, unit time.Duration) error {
	for rep := 1; rep <= reps; rep++ {
		for _, step := range style.Steps {
			bar := progressbar.NewOptions(step.Duration,
				progressbar.OptionSetWriter(out),
				progressbar.OptionSetDescription(fmt.Sprintf("[%d/%d] %-6s", rep, reps, step.Type)),
				progressbar.OptionSetWidth(24),
				progressbar.OptionSetPredictTime(false),
				progressbar.OptionOnCompletion(func() { fmt.Fprintln(out) }),
			)
			for i := 0; i < step.Duration; i++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(unit):
				}
				_ = bar.Add(1)
			}
			_ = bar.Finish()
		}
	}
	return nil
}
