package root

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Libretto-Pic/the-sage-game/internal/engine"
	"github.com/Libretto-Pic/the-sage-game/internal/schedule"
	"github.com/Libretto-Pic/the-sage-game/internal/ui"
)

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show level, stats, currencies and unlocks",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, cleanup, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()
			out := cmd.OutOrStdout()
			a.reportLoad(out)

			s := a.game.Status()
			fmt.Fprintln(out, ui.Heading(ui.IconSage, fmt.Sprintf("Level %d · %s", s.Level, s.Title)))
			fmt.Fprintln(out, ui.LabelValue("Day", s.Day))
			fmt.Fprintln(out, ui.LabelValue("XP", fmt.Sprintf("%d/%d %s (%d to go)", s.XP, engine.XPPerLevel, ui.StatBar(s.XP, engine.XPPerLevel, 20), s.XPToNext)))
			if s.InRealm {
				fmt.Fprintln(out, ui.LabelValue("Realm", s.Realm.Name+" "+ui.Muted.Render("("+s.Realm.Theme+")")))
			}
			fmt.Fprintln(out, "")

			fmt.Fprintln(out, ui.H2.Render("📊 Stats"))
			fmt.Fprintf(out, "- HP %3d %s\n", s.Stats.HP, ui.StatBar(s.Stats.HP, engine.MaxStat, 20))
			fmt.Fprintf(out, "- MP %3d %s\n", s.Stats.MP, ui.StatBar(s.Stats.MP, engine.MaxStat, 20))
			fmt.Fprintf(out, "- SP %3d %s\n", s.Stats.SP, ui.StatBar(s.Stats.SP, engine.MaxStat, 20))
			fmt.Fprintf(out, "- RP %3d %s\n", s.Stats.RP, ui.StatBar(s.Stats.RP, engine.MaxStat, 20))
			fmt.Fprintln(out, "")

			fmt.Fprintln(out, ui.H2.Render(ui.IconCoin+" Currencies"))
			fmt.Fprintln(out, "- "+ui.LabelValue("Soul coins", s.SoulCoins))
			fmt.Fprintln(out, "- "+ui.LabelValue("Power points", s.PowerPoints))
			fmt.Fprintln(out, "- "+ui.LabelValue("XP multiplier", fmt.Sprintf("x%.2f", s.XPMultiplier)))
			if s.FailedStreak > 0 {
				fmt.Fprintln(out, "- "+ui.Warn.Render(fmt.Sprintf("%d unfinished day(s) in a row", s.FailedStreak)))
			}
			fmt.Fprintln(out, "")

			fmt.Fprintln(out, ui.H2.Render("🗓 Today"))
			fmt.Fprintf(out, "- Missions: %d/%d done\n", s.Completed, s.Total)
			fmt.Fprintf(out, "- Reading: %d/%d blocks\n", s.ReadingProgress, engine.ReadingBlocksByDay)
			if next, err := schedule.NextRollover(a.cfg.RolloverCron, time.Now()); err == nil {
				fmt.Fprintf(out, "- %s Next rollover: %s\n", ui.IconClock, next.Format("Mon Jan 2 15:04"))
			}
			fmt.Fprintln(out, "")

			names := make([]string, 0, len(s.BreathingStyles))
			for _, b := range s.BreathingStyles {
				names = append(names, b.Name)
			}
			fmt.Fprintln(out, ui.H2.Render(ui.IconWind+" Breathing styles"))
			if len(names) == 0 {
				fmt.Fprintln(out, ui.Muted.Render("- none yet"))
			} else {
				fmt.Fprintln(out, "- "+strings.Join(names, ", "))
			}
			return nil
		},
	}

	return cmd
}
