package root

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/Libretto-Pic/the-sage-game/internal/catalog"
	"github.com/Libretto-Pic/the-sage-game/internal/config"
	"github.com/Libretto-Pic/the-sage-game/internal/engine"
	"github.com/Libretto-Pic/the-sage-game/internal/generator"
	"github.com/Libretto-Pic/the-sage-game/internal/logging"
	"github.com/Libretto-Pic/the-sage-game/internal/savegame"
	"github.com/Libretto-Pic/the-sage-game/internal/storage"
	"github.com/Libretto-Pic/the-sage-game/internal/ui"
)

// app is everything a command needs, opened from config.
type app struct {
	cfg   config.Config
	log   *logging.Logger
	store *storage.GameStore
	codec *savegame.Codec
	game  *engine.Game
}

func openApp(ctx context.Context) (*app, func(), error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	log, err := logging.New(cfg.LogDir, debugLog)
	if err != nil {
		return nil, nil, err
	}
	path, err := storage.ResolveDBPath(cfg.DBPath)
	if err != nil {
		_ = log.Close()
		return nil, nil, err
	}
	db, err := storage.Open(ctx, path)
	if err != nil {
		_ = log.Close()
		return nil, nil, err
	}
	cleanup := func() {
		_ = db.Close()
		_ = log.Close()
	}

	cat := catalog.Default()
	codec := savegame.NewCodec(cat)
	store := storage.NewGameStore(db, codec, log.Logger)

	opts := engine.Options{
		Catalog: cat,
		Store:   store,
		Logger:  log.Logger,
	}
	if cfg.Seed != 0 {
		opts.RNG = engine.NewSeededRNG(cfg.Seed)
	}
	if cfg.Generator.URL != "" {
		client, err := generator.NewClient(generator.ClientConfig{
			BaseURL: cfg.Generator.URL,
			APIKey:  cfg.Generator.APIKey,
			Model:   cfg.Generator.Model,
			Timeout: cfg.Generator.Timeout,
			Retries: cfg.Generator.Retries,
		})
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		opts.Provider = client
	}

	game, err := engine.NewGame(ctx, opts)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	log.Info("game opened", "db", path, "generator", cfg.Generator.URL != "")
	return &app{cfg: cfg, log: log, store: store, codec: codec, game: game}, cleanup, nil
}

// reportLoad warns when the saved game could not be read at startup.
func (a *app) reportLoad(out io.Writer) {
	err := a.game.LoadError()
	switch {
	case err == nil:
	case errors.Is(err, engine.ErrCorruptSave):
		fmt.Fprintln(out, ui.Warn.Render(ui.IconWarn+" saved game is corrupt, starting fresh: "+err.Error()))
	default:
		fmt.Fprintln(out, ui.Warn.Render(ui.IconWarn+" saved game unreadable, changes are refused until it can be read: "+err.Error()))
	}
}

func printSaveErr(out io.Writer, err error) {
	if err != nil {
		fmt.Fprintln(out, ui.Warn.Render(ui.IconWarn+" progress kept in memory but not saved: "+err.Error()))
	}
}

func printAchievements(out io.Writer, newly []catalog.Achievement) {
	for _, a := range newly {
		fmt.Fprintf(out, "%s %s %s\n", ui.Gold.Render(ui.IconTrophy+" Achievement unlocked:"), a.Name, ui.Muted.Render("("+a.Description+")"))
	}
}

func printTrials(out io.Writer, trials []engine.Mission) {
	for _, t := range trials {
		fmt.Fprintf(out, "%s %s %s\n", ui.Warn.Render(ui.IconDemon+" A Kazuki stirs:"), t.Title, ui.Muted.Render(fmt.Sprintf("(+%d PP)", t.PowerPointsReward)))
	}
}
