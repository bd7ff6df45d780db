package root

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Libretto-Pic/the-sage-game/internal/engine"
	"github.com/Libretto-Pic/the-sage-game/internal/ui"
)

func newNewDayCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "newday",
		Short: "Roll over to the next day and receive new missions",
		Long: `Start the next day.

Unfinished ordinary missions block the rollover unless --force is given.
A forced rollover of an unfinished day counts toward the failure streak;
three in a row make a Kazuki stronger.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, cleanup, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()
			out := cmd.OutOrStdout()
			a.reportLoad(out)

			res, err := a.game.StartNewDay(ctx, force)
			if err != nil {
				return err
			}
			printDay(out, res)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Roll over even if missions are unfinished")
	return cmd
}

func printDay(out io.Writer, res engine.DayResult) {
	fmt.Fprintln(out, ui.Heading(ui.IconSparkle, fmt.Sprintf("Day %d", res.Day)))
	if res.Penalty != nil {
		fmt.Fprintln(out, ui.Bad.Render(fmt.Sprintf("%s %s grows stronger: %d → %d", ui.IconDemon, res.Penalty.Kazuki, res.Penalty.Before, res.Penalty.After)))
	}
	src := "generated"
	if res.Source == engine.SourceJourney {
		src = "from the journey"
	}
	fmt.Fprintf(out, "%s\n", ui.Muted.Render(fmt.Sprintf("%d missions %s, %d ritual(s), %d carried over", len(res.Missions), src, res.RitualsAdmitted, res.CarriedOver)))
	for _, m := range res.Missions {
		fmt.Fprintf(out, "%s %s\n", ui.Muted.Render(m.ID), ui.MissionLine(m))
	}
	printTrials(out, res.NewTrials)
	printAchievements(out, res.NewAchievements)
	printSaveErr(out, res.SaveErr)
}
