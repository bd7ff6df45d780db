package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Libretto-Pic/the-sage-game/internal/engine"
	"github.com/Libretto-Pic/the-sage-game/internal/ui"
)

func newAchievementsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "achievements",
		Short: "List achievements",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, cleanup, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()
			out := cmd.OutOrStdout()

			views := a.game.Achievements()
			fmt.Fprintln(out, ui.Heading(ui.IconTrophy, fmt.Sprintf("Achievements %d/%d", engine.CountEarned(views), len(views))))
			for _, v := range views {
				if v.Earned {
					fmt.Fprintf(out, "%s %s %s\n", v.Icon, ui.Gold.Render(v.Name), ui.Muted.Render(v.Description))
				} else {
					fmt.Fprintf(out, "%s %s %s\n", "🔒", ui.Muted.Render(v.Name), ui.Muted.Render(v.Description))
				}
			}
			return nil
		},
	}
}
