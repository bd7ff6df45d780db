package root

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Libretto-Pic/the-sage-game/internal/catalog"
	"github.com/Libretto-Pic/the-sage-game/internal/ui"
)

func newRealmsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "realms",
		Short: "Describe the realms of the path",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading("🗺", "Realms"))
			for _, r := range catalog.Default().Realms {
				fmt.Fprintf(out, "%s %s\n", ui.H2.Render(r.Name), ui.Muted.Render(fmt.Sprintf("(levels %d-%d)", r.MinLevel, r.MaxLevel)))
				fmt.Fprintln(out, "  "+r.Theme)
				fmt.Fprintln(out, "  "+ui.LabelValue("Breathing", r.BreathingStyle))
				fmt.Fprintln(out, "  "+ui.LabelValue("Enemies", r.Enemies))
				fmt.Fprintln(out, "  "+ui.LabelValue("Elite", r.EliteDemon))
				fmt.Fprintln(out, "  "+ui.LabelValue("Boss", r.Boss))
			}
			return nil
		},
	}
}
