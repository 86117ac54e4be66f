package runstore

import (
	"database/sql"
	"sort"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Run is the persisted record of one conversion run.
type Run struct {
	RunID          string    `json:"run_id"`
	Owner          string    `json:"owner"`
	Repo           string    `json:"repo"`
	Branch         string    `json:"branch"`
	TargetLanguage string    `json:"target_language"`
	Status         string    `json:"status"` // "completed" | "failed"
	FileCount      int       `json:"file_count"`
	FallbackCount  int       `json:"fallback_count"`
	CreatedAt      time.Time `json:"created_at"`
}

// Store keeps run history. With a DSN it is backed by Postgres through
// the pgx stdlib driver; without one it degrades to process memory so
// local runs and tests need no database.
type Store struct {
	db *sql.DB

	mu   sync.RWMutex
	byID map[string]Run

	schemaOnce sync.Once
	schemaErr  error

	runCache *lru.Cache[string, Run]
}

// New returns an in-memory store.
func New() *Store {
	return &Store{byID: make(map[string]Run)}
}

// NewPostgres opens a Postgres-backed store.
func NewPostgres(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", strings.TrimSpace(dsn))
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	cache, err := lru.New[string, Run](1024)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db, byID: make(map[string]Run), runCache: cache}, nil
}

// NewFromDSN picks the Postgres backend when dsn is set and reachable,
// the memory backend otherwise.
func NewFromDSN(dsn string) *Store {
	if strings.TrimSpace(dsn) == "" {
		return New()
	}
	s, err := NewPostgres(dsn)
	if err != nil {
		return New()
	}
	return s
}

func (s *Store) Put(run Run) error {
	if s == nil {
		return nil
	}
	run = normalizeRun(run)
	if run.RunID == "" {
		return nil
	}
	if s.db != nil {
		err := s.putDB(run)
		if err == nil && s.runCache != nil {
			s.runCache.Remove(run.RunID)
		}
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[run.RunID] = run
	return nil
}

func (s *Store) Get(runID string) (Run, bool) {
	if s == nil {
		return Run{}, false
	}
	runID = strings.TrimSpace(runID)
	if runID == "" {
		return Run{}, false
	}
	if s.db != nil {
		if s.runCache != nil {
			if cached, ok := s.runCache.Get(runID); ok {
				return cached, true
			}
		}
		run, ok := s.getDB(runID)
		if ok && s.runCache != nil {
			s.runCache.Add(runID, run)
		}
		return run, ok
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, ok := s.byID[runID]
	return run, ok
}

// List returns the most recent runs, newest first, capped at limit.
func (s *Store) List(limit int) ([]Run, error) {
	if s == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 50
	}
	if s.db != nil {
		return s.listDB(limit)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Run, 0, len(s.byID))
	for _, run := range s.byID {
		out = append(out, run)
	}
	sortRunsNewestFirst(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func normalizeRun(run Run) Run {
	run.RunID = strings.TrimSpace(run.RunID)
	run.Owner = strings.TrimSpace(run.Owner)
	run.Repo = strings.TrimSpace(run.Repo)
	run.Branch = strings.TrimSpace(run.Branch)
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	return run
}

func sortRunsNewestFirst(runs []Run) {
	sort.Slice(runs, func(i, j int) bool {
		return runs[i].CreatedAt.After(runs[j].CreatedAt)
	})
}
