package root

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Libretto-Pic/the-sage-game/internal/catalog"
	"github.com/Libretto-Pic/the-sage-game/internal/engine"
	"github.com/Libretto-Pic/the-sage-game/internal/ui"
)

func newForgeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "forge <category>",
		Short: fmt.Sprintf("Spend %d PP on an extra mission (max %d per day)", engine.ForgeCost, engine.ForgeDailyLimit),
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("category is required (health|wealth|mind|soul)")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := catalog.ParseCategory(args[0])
			if err != nil {
				return err
			}
			ctx := context.Background()
			a, cleanup, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()
			out := cmd.OutOrStdout()

			res, err := a.game.ForgeMission(ctx, cat)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s %s\n", ui.Good.Render(ui.IconBolt+" Forged"), ui.MissionLine(res.Mission))
			fmt.Fprintln(out, ui.Muted.Render("  id "+res.Mission.ID))
			printSaveErr(out, res.SaveErr)
			return nil
		},
	}
}
