package root

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Libretto-Pic/the-sage-game/internal/catalog"
	"github.com/Libretto-Pic/the-sage-game/internal/ui"
)

func newShopCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shop [stat points]",
		Short: "List stat boosts, or buy points of one",
		Long: `Without arguments, list the stat boosts for sale.

Buying a boost spends soul coins and opens an activation mission; the
points are granted when that mission is completed.`,
		Args: func(cmd *cobra.Command, args []string) error {
			switch len(args) {
			case 0:
				return nil
			case 2:
				if n, err := strconv.Atoi(args[1]); err != nil || n < 1 {
					return errors.New("points must be a positive integer")
				}
				return nil
			default:
				return errors.New("usage: sage shop [stat points]")
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 0 {
				fmt.Fprintln(out, ui.Heading(ui.IconCoin, "Stat shop"))
				for _, item := range catalog.Default().ShopItems {
					fmt.Fprintf(out, "- %s %s %s\n", ui.Key.Render(item.ID), item.Name, ui.Muted.Render(fmt.Sprintf("(%d soul coins/pt) %s", item.CostPerPoint, item.Description)))
				}
				return nil
			}

			ctx := context.Background()
			a, cleanup, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			points, _ := strconv.Atoi(args[1])
			res, err := a.game.PurchaseStatBoost(ctx, args[0], points)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s %s +%d %s\n", ui.Good.Render(ui.IconCoin+" Purchased"), res.Stat, res.Points, ui.Muted.Render(fmt.Sprintf("(-%d soul coins)", res.Cost)))
			fmt.Fprintf(out, "%s %s\n", ui.Warn.Render(ui.IconKey+" Activate it by completing:"), ui.MissionLine(res.Mission))
			fmt.Fprintln(out, ui.Muted.Render("  id "+res.Mission.ID))
			printSaveErr(out, res.SaveErr)
			return nil
		},
	}

	return cmd
}
