package root

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Libretto-Pic/the-sage-game/internal/engine"
	"github.com/Libretto-Pic/the-sage-game/internal/ui"
)

func newAbilityCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ability",
		Short: "Show ability progress",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, cleanup, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()
			out := cmd.OutOrStdout()

			st := a.game.State()
			fmt.Fprintln(out, ui.Heading(ui.IconBolt, "Abilities"))
			for _, ab := range a.game.Catalog().Abilities {
				lvl := engine.AbilityLevel(st, ab.ID)
				xp := st.AbilityXP[ab.ID]
				fmt.Fprintf(out, "- %s L%d/%d %s %s\n", ui.Key.Render(ab.Name), lvl, ab.MaxLevel(),
					ui.StatBar(xp, ab.XPPerLevel, 16), ui.Muted.Render(fmt.Sprintf("%d/%d XP from %s missions", xp, ab.XPPerLevel, ab.Category)))
				for _, l := range ab.Levels {
					if l.Level == lvl {
						fmt.Fprintf(out, "    %s\n", ui.Muted.Render(l.Title+": "+l.Description))
					}
				}
				switch {
				case st.CurrentTests[ab.ID].Question != "":
					fmt.Fprintf(out, "    %s\n", ui.Warn.Render("test open: "+st.CurrentTests[ab.ID].Question))
				case engine.CanTestAbility(st, ab) == nil:
					fmt.Fprintf(out, "    %s\n", ui.Good.Render("ready: sage ability test "+ab.ID))
				}
			}
			return nil
		},
	}
	cmd.AddCommand(newAbilityTestCmd(), newAbilityAnswerCmd())
	return cmd
}

func newAbilityTestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test <ability>",
		Short: "Receive the question guarding an ability's next level",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("ability is required")
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

			q, err := a.game.StartAbilityTest(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(out, ui.H2.Render("❓ "+q.Question))
			fmt.Fprintln(out, ui.Muted.Render("Answer with: sage ability answer "+strings.ToLower(q.Ability)+" \"...\""))
			printSaveErr(out, q.SaveErr)
			return nil
		},
	}
}

func newAbilityAnswerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "answer <ability> <answer...>",
		Short: "Submit an answer to an open ability test",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) < 2 {
				return errors.New("ability and answer are required")
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

			res, err := a.game.SubmitAbilityTest(ctx, args[0], strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			if res.Worthy {
				fmt.Fprintln(out, ui.Gold.Render(fmt.Sprintf("%s %s ascends to level %d", ui.IconSparkle, res.Ability, res.Level)))
			} else {
				fmt.Fprintln(out, ui.Warn.Render("Not yet worthy."))
			}
			if res.Evaluation != "" {
				fmt.Fprintln(out, ui.Muted.Render(res.Evaluation))
			}
			printSaveErr(out, res.SaveErr)
			return nil
		},
	}
}
