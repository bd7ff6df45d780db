package root

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Libretto-Pic/the-sage-game/internal/ui"
)

func newCompleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "complete <mission_id>",
		Aliases: []string{"do"},
		Short:   "Complete one of today's missions",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("mission_id is required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, cleanup, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()
			out := cmd.OutOrStdout()

			res, err := a.game.CompleteMission(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s %s\n", ui.Good.Render(ui.IconDone+" Completed"), ui.Muted.Render(fmt.Sprintf("(+%d XP, +%d PP)", res.XPGained, res.PowerPointsGained)))
			if res.LevelUp {
				fmt.Fprintf(out, "%s %s\n", ui.BadgeLevelUp, ui.LabelValue("Level", fmt.Sprintf("%d → %d", res.LevelBefore, res.LevelAfter)))
			}
			if res.DailyBonus {
				fmt.Fprintln(out, ui.Gold.Render(ui.IconSparkle+" All of today's missions done: daily bonus granted"))
			}
			if res.ControlledKazuki != "" {
				fmt.Fprintln(out, ui.Gold.Render(ui.IconSword+" "+res.ControlledKazuki+" is now under your control"))
			}
			if res.ActivatedStat != "" {
				fmt.Fprintln(out, ui.Good.Render(fmt.Sprintf("%s %s +%d activated", ui.IconKey, res.ActivatedStat, res.ActivatedPoints)))
			}
			printTrials(out, res.NewTrials)
			printAchievements(out, res.NewAchievements)
			printSaveErr(out, res.SaveErr)
			return nil
		},
	}

	return cmd
}
