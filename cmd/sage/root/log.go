package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Libretto-Pic/the-sage-game/internal/catalog"
	"github.com/Libretto-Pic/the-sage-game/internal/ui"
)

func newLogCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show recent completions and totals per category",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, cleanup, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()
			out := cmd.OutOrStdout()
			repo := a.store.MissionLog()

			totals, err := repo.TotalsByCategory(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, ui.Heading(ui.IconScroll, "Mission log"))
			for _, t := range totals {
				fmt.Fprintf(out, "- %s %s %s\n", ui.CategoryIcon(catalog.Category(t.Category)), ui.Key.Render(t.Category), ui.Muted.Render(fmt.Sprintf("%d missions, %d XP", t.Count, t.XP)))
			}
			fmt.Fprintln(out, "")

			recent, err := repo.Recent(ctx, limit)
			if err != nil {
				return err
			}
			if len(recent) == 0 {
				fmt.Fprintln(out, ui.Muted.Render("(no completions yet)"))
				return nil
			}
			for _, e := range recent {
				fmt.Fprintf(out, "%s %s %s %s\n",
					ui.Muted.Render(fmt.Sprintf("day %3d", e.Day)),
					ui.CategoryIcon(catalog.Category(e.Category)),
					e.Title,
					ui.Muted.Render(fmt.Sprintf("+%d XP · %s", e.XPGained, e.CompletedAt.Local().Format("Jan 2 15:04"))))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of entries")
	return cmd
}
