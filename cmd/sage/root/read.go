package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Libretto-Pic/the-sage-game/internal/engine"
	"github.com/Libretto-Pic/the-sage-game/internal/ui"
)

func newReadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "read",
		Short: "Record one of today's reading blocks",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, cleanup, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()
			out := cmd.OutOrStdout()

			res, err := a.game.CompleteReadingBlock(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s %s\n", ui.Good.Render(fmt.Sprintf("%s Reading block %d/%d", ui.IconBook, res.Block, engine.ReadingBlocksByDay)), ui.Muted.Render(fmt.Sprintf("(+%d XP)", res.XPGained)))
			if res.LevelUp {
				fmt.Fprintln(out, ui.BadgeLevelUp)
			}
			printTrials(out, res.NewTrials)
			printAchievements(out, res.NewAchievements)
			printSaveErr(out, res.SaveErr)
			return nil
		},
	}
}
