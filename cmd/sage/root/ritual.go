package root

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Libretto-Pic/the-sage-game/internal/catalog"
	"github.com/Libretto-Pic/the-sage-game/internal/engine"
	"github.com/Libretto-Pic/the-sage-game/internal/schedule"
	"github.com/Libretto-Pic/the-sage-game/internal/ui"
)

func newRitualCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ritual",
		Short: "Manage recurring missions",
	}
	cmd.AddCommand(newRitualAddCmd(), newRitualListCmd(), newRitualDeleteCmd())
	return cmd
}

func newRitualAddCmd() *cobra.Command {
	var category string
	var every string
	var desc string
	var xp int

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a ritual",
		Example: `  sage ritual add "Morning stretch" -c health -e daily
  sage ritual add "Budget review" -c wealth -e "every 7 days" --xp 25`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("title is required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := catalog.ParseCategory(category)
			if err != nil {
				return err
			}
			freq, err := schedule.ParseFrequency(every)
			if err != nil {
				return err
			}

			ctx := context.Background()
			a, cleanup, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			res, err := a.game.AddRecurringMission(ctx, engine.RitualInput{
				Title:          args[0],
				Description:    desc,
				Category:       cat,
				FrequencyType:  freq.Type,
				FrequencyValue: freq.Value,
				XP:             xp,
			})
			if err != nil {
				return err
			}
			out, r := cmd.OutOrStdout(), res.Ritual
			fmt.Fprintf(out, "%s %s %s\n", ui.Good.Render(ui.IconLoop+" Ritual added"), r.Title, ui.Muted.Render(fmt.Sprintf("(%s, %d XP, id %s)", freq, r.XP, r.ID)))
			printSaveErr(out, res.SaveErr)
			return nil
		},
	}
	cmd.Flags().StringVarP(&category, "category", "c", "soul", "Category (health|wealth|mind|soul)")
	cmd.Flags().StringVarP(&every, "every", "e", "daily", `Frequency ("daily", "every other day", "every 3 days")`)
	cmd.Flags().StringVarP(&desc, "desc", "d", "", "Description")
	cmd.Flags().IntVar(&xp, "xp", engine.DefaultRitualXP, fmt.Sprintf("XP reward (max %d)", engine.MaxRitualXP))
	return cmd
}

func newRitualListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List rituals",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, cleanup, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()
			out := cmd.OutOrStdout()

			st := a.game.State()
			fmt.Fprintln(out, ui.Heading(ui.IconLoop, "Rituals"))
			if len(st.RecurringMissions) == 0 {
				fmt.Fprintln(out, ui.Muted.Render("(none)"))
				return nil
			}
			for _, r := range st.RecurringMissions {
				due := ""
				if r.Due(st.Day) {
					due = ui.Good.Render(" due today")
				}
				fmt.Fprintf(out, "%s %s %s %s%s\n",
					ui.Muted.Render(r.ID), ui.CategoryIcon(r.Category), r.Title,
					ui.Muted.Render(fmt.Sprintf("(%s, %d XP)", schedule.Describe(r.FrequencyType, r.FrequencyValue), r.XP)), due)
			}
			return nil
		},
	}
}

func newRitualDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <ritual_id>",
		Aliases: []string{"rm"},
		Short:   "Delete a ritual",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("ritual_id is required")
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
			res, err := a.game.DeleteRecurringMission(ctx, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Warn.Render(ui.IconLoop+" Ritual deleted: ")+res.Ritual.Title)
			printSaveErr(out, res.SaveErr)
			return nil
		},
	}
}
