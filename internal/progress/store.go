package progress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"

	"reading-hero-service/internal/catalog"
	"reading-hero-service/internal/domain"
)

// Backend persists the serialized progress blob under a key (memory, Redis,
// Postgres, SQLite). LoadProgress returns domain.ErrProgressNotFound when
// nothing is stored.
type Backend interface {
	LoadProgress(ctx context.Context, key string) ([]byte, error)
	SaveProgress(ctx context.Context, key string, data []byte) error
}

// Store holds the authoritative record for one profile. Every mutation is a
// single in-memory update followed by a best-effort write; a failing backend
// never blocks play.
//
// While the saved record could not be read the store is unloaded: changes are
// kept in memory and nothing is written, so the saved record is never replaced
// by one built on the baseline. Each change retries the load and replays the
// held changes on top of what it reads.
type Store struct {
	backend Backend
	key     string

	mu      sync.Mutex
	record  domain.ProgressRecord
	loaded  bool
	pending []mutation
}

type mutation func(domain.ProgressRecord) (domain.ProgressRecord, error)

// NewStore starts from the baseline record; call Load to pick up saved progress.
func NewStore(backend Backend, key string) *Store {
	if key == "" {
		key = catalog.StorageKey
	}
	return &Store{
		backend: backend,
		key:     key,
		record:  catalog.BaselineProgress(),
	}
}

func (s *Store) Key() string { return s.key }

// Load reads the stored record. Absent or corrupt data yield the baseline
// record. When the backend cannot be read the current record is kept and the
// store stays unloaded.
func (s *Store) Load(ctx context.Context) domain.ProgressRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reloadLocked(ctx)
	return s.record.Clone()
}

// Loaded reports whether the saved record has been read.
func (s *Store) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

func (s *Store) read(ctx context.Context) (domain.ProgressRecord, error) {
	if s.backend == nil {
		return catalog.BaselineProgress(), nil
	}
	raw, err := s.backend.LoadProgress(ctx, s.key)
	if errors.Is(err, domain.ErrProgressNotFound) {
		return catalog.BaselineProgress(), nil
	}
	if err != nil {
		return domain.ProgressRecord{}, err
	}
	var record domain.ProgressRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		log.Printf("progress %s: failed to parse saved progress: %v", s.key, err)
		return catalog.BaselineProgress(), nil
	}
	return Normalize(record), nil
}

// reloadLocked adopts the saved record and replays changes held while the
// backend was unreadable. Replayed changes that no longer apply are dropped.
func (s *Store) reloadLocked(ctx context.Context) {
	record, err := s.read(ctx)
	if err != nil {
		log.Printf("progress %s: load failed, holding changes in memory: %v", s.key, err)
		return
	}
	for _, m := range s.pending {
		next, err := m(record)
		if err != nil {
			log.Printf("progress %s: dropping held change: %v", s.key, err)
			continue
		}
		record = next
	}
	replayed := len(s.pending) > 0
	s.pending = nil
	s.record = record
	s.loaded = true
	if replayed {
		s.commitLocked(ctx)
	}
}

// mutateLocked applies m to the current record and returns the record it
// started from.
func (s *Store) mutateLocked(ctx context.Context, m mutation) (domain.ProgressRecord, error) {
	if !s.loaded {
		s.reloadLocked(ctx)
	}
	before := s.record
	next, err := m(before)
	if err != nil {
		return before, err
	}
	s.record = next
	if !s.loaded {
		s.pending = append(s.pending, m)
		return before, nil
	}
	s.commitLocked(ctx)
	return before, nil
}

// Snapshot returns a copy of the current record.
func (s *Store) Snapshot() domain.ProgressRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.record.Clone()
}

// Save writes the current record. Mutations already save on their own; this
// is for callers that want to know whether the write landed.
func (s *Store) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		s.reloadLocked(ctx)
		if !s.loaded {
			return fmt.Errorf("%w: saved progress not loaded", domain.ErrPersistenceUnavailable)
		}
	}
	return s.persistLocked(ctx)
}

// Apply commits a finalized quiz and returns the new record with the ids of
// the achievements it granted.
func (s *Store) Apply(ctx context.Context, result domain.QuizResult) (domain.ProgressRecord, []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	before, _ := s.mutateLocked(ctx, func(p domain.ProgressRecord) (domain.ProgressRecord, error) {
		return ApplyResult(p, result.ScorePercent, result.PointsEarned), nil
	})
	return s.record.Clone(), NewAchievements(before, s.record)
}

// Purchase buys a catalog item by id.
func (s *Store) Purchase(ctx context.Context, itemID string) (domain.ProgressRecord, error) {
	item, ok := catalog.Item(itemID)
	if !ok {
		return s.Snapshot(), fmt.Errorf("%w: %s", domain.ErrItemNotFound, itemID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.mutateLocked(ctx, func(p domain.ProgressRecord) (domain.ProgressRecord, error) {
		return Purchase(p, item)
	})
	return s.record.Clone(), err
}

// Equip switches the current theme or icon.
func (s *Store) Equip(ctx context.Context, kind domain.ItemKind, value string) (domain.ProgressRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.mutateLocked(ctx, func(p domain.ProgressRecord) (domain.ProgressRecord, error) {
		return Equip(p, kind, value)
	})
	return s.record.Clone(), err
}

// Purchase is the pure form of Store.Purchase. The item value is added to its
// unlocked set only if missing; the cost is charged either way.
func Purchase(p domain.ProgressRecord, item domain.ShopItem) (domain.ProgressRecord, error) {
	if item.Kind != domain.KindTheme && item.Kind != domain.KindIcon {
		return p, fmt.Errorf("%w: %q", domain.ErrUnknownKind, item.Kind)
	}
	if p.TotalPoints < item.Cost {
		return p, fmt.Errorf("%w: %s costs %d, balance %d", domain.ErrInsufficientFunds, item.ID, item.Cost, p.TotalPoints)
	}
	next := p.Clone()
	next.TotalPoints -= item.Cost
	if !next.Unlocked(item.Kind, item.Value) {
		switch item.Kind {
		case domain.KindTheme:
			next.UnlockedThemes = append(next.UnlockedThemes, item.Value)
		case domain.KindIcon:
			next.UnlockedIcons = append(next.UnlockedIcons, item.Value)
		}
	}
	return next, nil
}

// Equip is the pure form of Store.Equip.
func Equip(p domain.ProgressRecord, kind domain.ItemKind, value string) (domain.ProgressRecord, error) {
	if kind != domain.KindTheme && kind != domain.KindIcon {
		return p, fmt.Errorf("%w: %q", domain.ErrUnknownKind, kind)
	}
	if !p.Unlocked(kind, value) {
		return p, fmt.Errorf("%w: %s %q", domain.ErrNotUnlocked, kind, value)
	}
	next := p.Clone()
	if kind == domain.KindTheme {
		next.CurrentTheme = value
	} else {
		next.CurrentIcon = value
	}
	return next, nil
}

func (s *Store) commitLocked(ctx context.Context) {
	if err := s.persistLocked(ctx); err != nil {
		log.Printf("progress %s: %v", s.key, err)
	}
}

func (s *Store) persistLocked(ctx context.Context) error {
	if s.backend == nil {
		return nil
	}
	data, err := json.Marshal(s.record)
	if err != nil {
		return fmt.Errorf("encode progress: %w", err)
	}
	if err := s.backend.SaveProgress(ctx, s.key, data); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrPersistenceUnavailable, err)
	}
	return nil
}
