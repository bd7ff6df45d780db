package root

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Libretto-Pic/the-sage-game/internal/ui"
)

const Version = "0.3.0"

var (
	configPath string
	debugLog   bool
)

var rootCmd = &cobra.Command{
	Use:           "sage",
	Short:         "The Sage's Path: a daily self-improvement RPG",
	Long:          "The Sage's Path turns daily missions, rituals and reflection into level, stats and demons to master.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.config/sage/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debugLog, "debug", false, "write debug records to the log file")

	rootCmd.AddCommand(
		newStatusCmd(),
		newMissionsCmd(),
		newCompleteCmd(),
		newNewDayCmd(),
		newJournalCmd(),
		newRitualCmd(),
		newShopCmd(),
		newKazukiCmd(),
		newAbilityCmd(),
		newReadCmd(),
		newForgeCmd(),
		newExportCmd(),
		newImportCmd(),
		newBreatheCmd(),
		newBoardCmd(),
		newWatchCmd(),
		newAchievementsCmd(),
		newRealmsCmd(),
		newLogCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ui.Bad.Render(ui.IconError+" "+err.Error()))
		os.Exit(1)
	}
}
