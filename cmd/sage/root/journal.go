package root

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Libretto-Pic/the-sage-game/internal/ui"
)

func newJournalCmd() *cobra.Command {
	var list bool
	cmd := &cobra.Command{
		Use:   "journal [entry...]",
		Short: "Write a reflection (restores RP) or list past entries",
		Args: func(cmd *cobra.Command, args []string) error {
			if !list && len(args) == 0 {
				return errors.New("entry text is required")
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

			if list {
				entries := a.game.State().JournalEntries
				fmt.Fprintln(out, ui.Heading(ui.IconScroll, fmt.Sprintf("Journal (%d)", len(entries))))
				for i, e := range entries {
					fmt.Fprintf(out, "%s %s\n", ui.Muted.Render(fmt.Sprintf("%3d.", i+1)), e)
				}
				return nil
			}

			res, err := a.game.SaveJournalEntry(ctx, strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintln(out, ui.Good.Render(ui.IconScroll+" Entry recorded")+" "+ui.Muted.Render(fmt.Sprintf("(#%d, RP restored)", res.Entries)))
			printAchievements(out, res.NewAchievements)
			printSaveErr(out, res.SaveErr)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&list, "list", "l", false, "List journal entries")
	return cmd
}
