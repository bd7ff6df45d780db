package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Libretto-Pic/the-sage-game/internal/ui"
)

func newMissionsCmd() *cobra.Command {
	var showDesc bool
	cmd := &cobra.Command{
		Use:     "missions",
		Aliases: []string{"list", "ls"},
		Short:   "List today's missions",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, cleanup, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()
			out := cmd.OutOrStdout()
			a.reportLoad(out)

			st := a.game.State()
			fmt.Fprintln(out, ui.Heading(ui.IconScroll, fmt.Sprintf("Day %d missions", st.Day)))
			if len(st.Missions) == 0 {
				fmt.Fprintln(out, ui.Muted.Render("No missions yet. Run `sage newday` to begin."))
				return nil
			}
			for _, m := range st.Missions {
				fmt.Fprintf(out, "%s %s\n", ui.Muted.Render(m.ID), ui.MissionLine(m))
				if showDesc && m.Description != "" {
					fmt.Fprintf(out, "    %s\n", ui.Muted.Render(m.Description))
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&showDesc, "long", "l", false, "Show mission descriptions")
	return cmd
}
