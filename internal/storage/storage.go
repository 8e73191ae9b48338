// Package storage provides persistent storage for engine preferences and
// batch-tournament statistics, grounded on the teacher's own
// BadgerDB-backed preferences/stats store (internal/storage in the
// teacher): same key layout, same JSON-over-KV shape, retargeted from
// chess's human-vs-computer preferences to the search-player/evaluator
// choices and per-matchup win/loss/draw tallies cmd/patchwork's compare
// subcommand accumulates across runs.
package storage

import (
	"encoding/json"
	"time"

	"github.com/dgraph-io/badger/v4"
)

const (
	keyPreferences = "preferences"
	keyStats       = "stats"
	keyFirstLaunch = "first_launch"
)

// Difficulty selects a canned search-depth/time preset, independent of
// engine.Difficulty so preferences can be loaded before an engine exists.
type Difficulty int

const (
	DifficultyEasy Difficulty = iota
	DifficultyMedium
	DifficultyHard
)

// EvaluatorKind names a leaf evaluator choice, stored as part of
// UserPreferences. Neither cmd/patchwork-upi nor cmd/patchwork reads
// preferences back.
type EvaluatorKind int

const (
	EvaluatorStatic EvaluatorKind = iota
	EvaluatorWinRollout
	EvaluatorScoreRollout
	EvaluatorNeural
)

// SearchPlayerKind names a players.Player implementation choice, matching
// spec §4.7's named search-player family.
type SearchPlayerKind int

const (
	PlayerRandom SearchPlayerKind = iota
	PlayerGreedy
	PlayerPVS
	PlayerUCT
	PlayerPUCT
)

// UserPreferences stores the engine configuration a human operator or the
// CLI's last invocation chose, persisted across runs the way the
// teacher's UserPreferences persisted difficulty/color/sound choices.
type UserPreferences struct {
	Difficulty   Difficulty       `json:"difficulty"`
	Evaluator    EvaluatorKind    `json:"evaluator"`
	SearchPlayer SearchPlayerKind `json:"search_player"`
	LastPlayed   time.Time        `json:"last_played"`
}

// DefaultPreferences returns reasonable defaults for casual play.
func DefaultPreferences() *UserPreferences {
	return &UserPreferences{
		Difficulty:   DifficultyMedium,
		Evaluator:    EvaluatorStatic,
		SearchPlayer: PlayerPVS,
		LastPlayed:   time.Now(),
	}
}

// MatchupStats accumulates one player-pairing's batch-tournament record,
// as produced by repeated cmd/patchwork `compare` invocations of the same
// two player names.
type MatchupStats struct {
	GamesPlayed int `json:"games_played"`
	Player1Wins int `json:"player1_wins"`
	Player2Wins int `json:"player2_wins"`
	Draws       int `json:"draws"`
}

// WinRate1 returns player one's win rate as a percentage (0-100).
func (m *MatchupStats) WinRate1() float64 {
	if m.GamesPlayed == 0 {
		return 0
	}
	return float64(m.Player1Wins) / float64(m.GamesPlayed) * 100
}

// GameStats indexes MatchupStats by an ordered "player1::player2" key, so
// re-running `compare random greedy 100 4` twice accumulates into the
// same record instead of overwriting it.
type GameStats struct {
	Matchups map[string]*MatchupStats `json:"matchups"`
}

// NewGameStats returns an empty stats record.
func NewGameStats() *GameStats {
	return &GameStats{Matchups: make(map[string]*MatchupStats)}
}

func matchupKey(player1, player2 string) string {
	return player1 + "::" + player2
}

// Matchup returns the accumulated record for (player1, player2), creating
// an empty one if this pairing hasn't been recorded yet.
func (g *GameStats) Matchup(player1, player2 string) *MatchupStats {
	key := matchupKey(player1, player2)
	m, ok := g.Matchups[key]
	if !ok {
		m = &MatchupStats{}
		g.Matchups[key] = m
	}
	return m
}

// GameResult is one completed compare-subcommand game outcome.
type GameResult struct {
	Player1, Player2 string // player-kind names as given on the compare command line
	Winner           int    // 1, 2, or 0 for a draw
	Duration         time.Duration
}

// Storage wraps BadgerDB for persistent preferences and tournament stats.
type Storage struct {
	db *badger.DB
}

// NewStorage opens (creating if necessary) the engine's BadgerDB store.
func NewStorage() (*Storage, error) {
	dbDir, err := GetDatabaseDir()
	if err != nil {
		return nil, err
	}

	opts := badger.DefaultOptions(dbDir)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &Storage{db: db}, nil
}

// Close closes the database.
func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// IsFirstLaunch reports whether this is the first time the store has
// been opened.
func (s *Storage) IsFirstLaunch() (bool, error) {
	firstLaunch := true
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(keyFirstLaunch))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		firstLaunch = false
		return nil
	})
	return firstLaunch, err
}

// MarkFirstLaunchComplete records that first-launch setup has run.
func (s *Storage) MarkFirstLaunchComplete() error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyFirstLaunch), []byte("done"))
	})
}

// SavePreferences persists prefs, stamping LastPlayed with the current
// time.
func (s *Storage) SavePreferences(prefs *UserPreferences) error {
	prefs.LastPlayed = time.Now()
	data, err := json.Marshal(prefs)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyPreferences), data)
	})
}

// LoadPreferences loads the saved preferences, or DefaultPreferences if
// none have been saved yet.
func (s *Storage) LoadPreferences() (*UserPreferences, error) {
	prefs := DefaultPreferences()
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPreferences))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, prefs)
		})
	})
	return prefs, err
}

// SaveStats persists stats.
func (s *Storage) SaveStats(stats *GameStats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyStats), data)
	})
}

// LoadStats loads the saved stats, or an empty GameStats if none exist.
func (s *Storage) LoadStats() (*GameStats, error) {
	stats := NewGameStats()
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyStats))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, stats)
		})
	})
	if err != nil {
		return nil, err
	}
	if stats.Matchups == nil {
		stats.Matchups = make(map[string]*MatchupStats)
	}
	return stats, nil
}

// RecordGame loads the current stats, folds result into the matching
// matchup record, and saves the result back. Called once per completed
// game by cmd/patchwork's compare subcommand.
func (s *Storage) RecordGame(result GameResult) error {
	stats, err := s.LoadStats()
	if err != nil {
		return err
	}

	m := stats.Matchup(result.Player1, result.Player2)
	m.GamesPlayed++
	switch result.Winner {
	case 1:
		m.Player1Wins++
	case 2:
		m.Player2Wins++
	default:
		m.Draws++
	}

	return s.SaveStats(stats)
}
