package root

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Libretto-Pic/the-sage-game/internal/ui"
)

func newKazukiCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "kazuki",
		Short: "Inspect and master the Kazuki demons",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, cleanup, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()
			out := cmd.OutOrStdout()

			st := a.game.State()
			fmt.Fprintln(out, ui.Heading(ui.IconDemon, "Kazuki"))
			for _, k := range a.game.Roster() {
				var state string
				switch {
				case k.Controlled:
					state = ui.Good.Render("controlled")
				case k.Encountered:
					power := fmt.Sprintf("power %d", k.Power)
					if k.Boosted {
						power += " ↑"
					}
					state = ui.Warn.Render(power)
				case st.Level >= k.EncounterLevel:
					state = ui.Muted.Render("stirring")
				default:
					state = ui.Muted.Render(fmt.Sprintf("appears at level %d", k.EncounterLevel))
				}
				fmt.Fprintf(out, "- %s, %s %s\n", ui.Key.Render(k.Name), k.Title, state)
				if k.Encountered && !k.Controlled {
					fmt.Fprintf(out, "    %s\n", ui.Muted.Render("weak to: "+strings.Join(k.Weaknesses, ", ")))
				}
			}
			fmt.Fprintln(out, "")
			fmt.Fprintln(out, ui.LabelValue("Power points", st.PowerPoints))
			return nil
		},
	}
	cmd.AddCommand(newKazukiControlCmd(), newKazukiConfrontCmd())
	return cmd
}

func nameArg(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return errors.New("kazuki name is required")
	}
	return nil
}

func newKazukiControlCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "control <name>",
		Short: "Spend power points equal to a Kazuki's power to control it",
		Args:  nameArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, cleanup, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()
			out := cmd.OutOrStdout()

			res, err := a.game.ControlKazuki(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s %s %s\n", ui.Gold.Render(ui.IconSword+" "+res.Name+" is under your control"), ui.Muted.Render(fmt.Sprintf("(-%d PP)", res.PowerSpent)), ui.LabelValue("XP multiplier", fmt.Sprintf("x%.2f", res.XPMultiplier)))
			if res.Dismissed > 0 {
				fmt.Fprintln(out, ui.Muted.Render(fmt.Sprintf("  %d open mission(s) against %s dismissed", res.Dismissed, res.Name)))
			}
			printAchievements(out, res.NewAchievements)
			printSaveErr(out, res.SaveErr)
			return nil
		},
	}
}

func newKazukiConfrontCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "confront <name>",
		Short: "Open a boss mission against an encountered Kazuki",
		Args:  nameArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, cleanup, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()
			out := cmd.OutOrStdout()

			res, err := a.game.ConfrontKazuki(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s %s\n", ui.Warn.Render(ui.IconSword+" Boss mission:"), ui.MissionLine(res.Mission))
			fmt.Fprintln(out, ui.Muted.Render("  id "+res.Mission.ID))
			printSaveErr(out, res.SaveErr)
			return nil
		},
	}
}
