// Package history parses history command flags and audits stored games.
package history

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	entrypoint "github.com/cleka/colossus-titan-sub015/internal/platform/cmd"
	"github.com/cleka/colossus-titan-sub015/internal/platform/id"
	"github.com/cleka/colossus-titan-sub015/internal/services/game/domain/creature"
	"github.com/cleka/colossus-titan-sub015/internal/services/game/domain/engine"
	"github.com/cleka/colossus-titan-sub015/internal/services/game/domain/event"
	"github.com/cleka/colossus-titan-sub015/internal/services/game/domain/game"
	domainhistory "github.com/cleka/colossus-titan-sub015/internal/services/game/domain/history"
	"github.com/cleka/colossus-titan-sub015/internal/services/game/domain/replay"
	"github.com/cleka/colossus-titan-sub015/internal/services/game/domain/scenario"
	"github.com/cleka/colossus-titan-sub015/internal/services/game/domain/view"
	"github.com/cleka/colossus-titan-sub015/internal/services/game/storage/integrity"
	"github.com/cleka/colossus-titan-sub015/internal/services/game/storage/sqlite"
)

// Config holds history command configuration.
type Config struct {
	DBPath   string        `env:"COLOSSUS_HISTORY_DB"        envDefault:"data/history.db"`
	GameID   string        `env:"COLOSSUS_HISTORY_GAME"`
	Script   string        `env:"COLOSSUS_HISTORY_SCRIPT"`
	PageSize int           `env:"COLOSSUS_HISTORY_PAGE_SIZE" envDefault:"200"`
	Timeout  time.Duration `env:"COLOSSUS_HISTORY_TIMEOUT"   envDefault:"30s"`

	// SnapshotEvery is how many recorded events pass between state
	// snapshots. Zero disables snapshots.
	SnapshotEvery uint64 `env:"COLOSSUS_HISTORY_SNAPSHOT_EVERY" envDefault:"50"`
}

// ErrSnapshotDiverged indicates a stored snapshot that, resumed to the end of
// the history, does not match a full replay.
var ErrSnapshotDiverged = errors.New("snapshot diverges from replay")

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "path to the history database")
	fs.StringVar(&cfg.GameID, "game", cfg.GameID, "game to audit (all games when empty)")
	fs.StringVar(&cfg.Script, "script", cfg.Script, "lua scenario that records a new game before the audit")
	fs.IntVar(&cfg.PageSize, "page-size", cfg.PageSize, "events read per replay page")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "overall audit timeout")
	fs.Uint64Var(&cfg.SnapshotEvery, "snapshot-every", cfg.SnapshotEvery, "events between state snapshots when recording (0 disables)")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run audits the stored games and writes a report to out. The keyring is
// read from the environment.
func Run(ctx context.Context, cfg Config, out io.Writer) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceHistory, func(ctx context.Context) error {
		ring, err := integrity.KeyringFromEnv()
		if err != nil {
			return fmt.Errorf("load keyring: %w", err)
		}
		return Audit(ctx, cfg, ring, out)
	})
}

// Audit opens the store, records cfg.Script as a new game when set, then
// verifies and replays the selected games.
func Audit(ctx context.Context, cfg Config, ring *integrity.Keyring, out io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	store, err := sqlite.Open(cfg.DBPath, ring)
	if err != nil {
		return err
	}
	defer store.Close()

	gameID := strings.TrimSpace(cfg.GameID)
	if cfg.Script != "" {
		if gameID, err = record(ctx, store, cfg.Script, gameID, cfg.SnapshotEvery); err != nil {
			return err
		}
	}

	games := []string{gameID}
	if gameID == "" {
		if games, err = store.Games(ctx); err != nil {
			return err
		}
		if len(games) == 0 {
			return errors.New("no games stored")
		}
	}
	for _, g := range games {
		if err := auditGame(ctx, store, g, cfg.PageSize, out); err != nil {
			return fmt.Errorf("game %s: %w", g, err)
		}
	}
	return nil
}

// record runs a scenario against a fresh game whose roster and events go
// to store. It returns the id of the recorded game.
func record(ctx context.Context, store *sqlite.Store, path, gameID string, snapshotEvery uint64) (string, error) {
	sc, err := scenario.LoadFile(path)
	if err != nil {
		return "", err
	}
	if gameID == "" {
		if gameID, err = id.NewID(); err != nil {
			return "", err
		}
	}

	build := func(state *game.State) (*engine.Handler, error) {
		if err := store.SaveRoster(ctx, gameID, state); err != nil {
			return nil, err
		}
		hist, err := domainhistory.New(gameID)
		if err != nil {
			return nil, err
		}
		return engine.NewHandler(state, hist,
			engine.WithJournal(store),
			engine.WithSnapshots(store, snapshotEvery),
			engine.WithListener(func(evt event.Event) {
				log.Printf("game %s: committed seq %d %s %s", gameID, evt.Seq(), evt.Kind(), evt.LegionID())
			}),
		)
	}
	handler, err := scenario.Run(ctx, sc, build)
	if err != nil {
		return "", err
	}
	log.Printf("recorded scenario %q as game %s (%d events)", sc.Name, gameID, handler.History().Len())
	return gameID, nil
}

func auditGame(ctx context.Context, store *sqlite.Store, gameID string, pageSize int, out io.Writer) error {
	verified, err := store.VerifyChain(ctx, gameID)
	if err != nil {
		return err
	}
	base, err := store.LoadRoster(ctx, gameID)
	if err != nil {
		return err
	}
	hist, err := domainhistory.New(gameID)
	if err != nil {
		return err
	}
	result, err := replay.Resume(ctx, store, store, nil, gameID, base, replay.Options{
		PageSize: pageSize,
		History:  hist,
	})
	if err != nil {
		return err
	}

	snapshotSeq, err := checkSnapshot(ctx, store, gameID, base, pageSize, result.State)
	if err != nil {
		return err
	}

	public := view.NewPublic()
	for _, l := range base.Legions() {
		if err := public.Seed(l.MarkerID(), l.Owner().Name(), string(l.Hex()), l.Height()); err != nil {
			return err
		}
	}
	tally := view.NewTally()
	for evt := range hist.All() {
		if err := public.Merge(evt); err != nil {
			return err
		}
		tally.Add(evt)
	}

	fmt.Fprintf(out, "game %s: %d events verified, replayed to seq %d turn %d\n",
		gameID, verified, result.LastSeq, result.LastTurn)
	for _, l := range result.State.Legions() {
		pub, _ := public.Legion(l.MarkerID())
		fmt.Fprintf(out, "  %s %s@%s height %d public %v\n",
			l.MarkerID(), l.Owner().Name(), l.Hex().Label(), l.Height(), knownNames(pub.Known))
	}
	for _, player := range tally.Players() {
		fmt.Fprintf(out, "  %s disclosed %d\n", player, tally.Total(player))
	}
	if snapshotSeq > 0 {
		fmt.Fprintf(out, "  snapshot at seq %d matches replay\n", snapshotSeq)
	}
	return nil
}

// checkSnapshot resumes the game from its stored snapshot and compares the
// result with the full replay. It returns the snapshot's sequence, or zero
// when the game has none.
func checkSnapshot(ctx context.Context, store *sqlite.Store, gameID string, base *game.State, pageSize int, replayed *game.State) (uint64, error) {
	_, seq, err := store.GetState(ctx, gameID)
	if errors.Is(err, replay.ErrCheckpointNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	resumed, err := replay.Resume(ctx, store, store, store, gameID, base, replay.Options{PageSize: pageSize})
	if err != nil {
		return 0, fmt.Errorf("resume from snapshot at seq %d: %w", seq, err)
	}
	if !resumed.State.Equal(replayed) {
		return 0, fmt.Errorf("seq %d: %w", seq, ErrSnapshotDiverged)
	}
	return seq, nil
}

func knownNames(bag creature.Multiset) []string {
	var names []string
	for _, t := range bag.Types() {
		for range bag.Count(t) {
			names = append(names, t.Name())
		}
	}
	return names
}
