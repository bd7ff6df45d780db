package root

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Libretto-Pic/the-sage-game/internal/ui"
)

func newImportCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the saved game with an exported JSON file",
		Long: `Replace the current game with an exported save.

Older save formats are migrated. The current game is overwritten, so
--yes is required.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("file is required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("import overwrites the current game; rerun with --yes")
			}
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open import file: %w", err)
			}
			defer f.Close()

			ctx := context.Background()
			a, cleanup, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			st, err := a.codec.Import(f)
			if err != nil {
				return err
			}
			if err := a.game.Replace(ctx, st); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Good.Render(fmt.Sprintf("%s Imported: level %d, day %d", ui.IconDone, st.Level, st.Day)))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Confirm overwriting the current game")
	return cmd
}
