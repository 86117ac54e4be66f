package runstore

func (s *Store) ensureSchema() error {
	if s == nil || s.db == nil {
		return nil
	}
	s.schemaOnce.Do(func() {
		_, s.schemaErr = s.db.Exec(`
CREATE TABLE IF NOT EXISTS conversion_runs (
  run_id TEXT PRIMARY KEY,
  owner TEXT NOT NULL DEFAULT '',
  repo TEXT NOT NULL DEFAULT '',
  branch TEXT NOT NULL DEFAULT '',
  target_language TEXT NOT NULL DEFAULT '',
  status TEXT NOT NULL DEFAULT '',
  file_count INTEGER NOT NULL DEFAULT 0,
  fallback_count INTEGER NOT NULL DEFAULT 0,
  created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_conversion_runs_created_at ON conversion_runs (created_at DESC);
`)
	})
	return s.schemaErr
}

func (s *Store) putDB(run Run) error {
	if err := s.ensureSchema(); err != nil {
		return err
	}
	_, err := s.db.Exec(`
INSERT INTO conversion_runs (
  run_id, owner, repo, branch, target_language, status, file_count, fallback_count, created_at
)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
ON CONFLICT (run_id)
DO UPDATE SET status=EXCLUDED.status,
  file_count=EXCLUDED.file_count,
  fallback_count=EXCLUDED.fallback_count`,
		run.RunID, run.Owner, run.Repo, run.Branch, run.TargetLanguage,
		run.Status, run.FileCount, run.FallbackCount, run.CreatedAt)
	return err
}

func (s *Store) getDB(runID string) (Run, bool) {
	if err := s.ensureSchema(); err != nil {
		return Run{}, false
	}
	row := s.db.QueryRow(`SELECT run_id, owner, repo, branch, target_language, status, file_count, fallback_count, created_at
FROM conversion_runs WHERE run_id = $1`, runID)
	var run Run
	if err := row.Scan(&run.RunID, &run.Owner, &run.Repo, &run.Branch, &run.TargetLanguage,
		&run.Status, &run.FileCount, &run.FallbackCount, &run.CreatedAt); err != nil {
		return Run{}, false
	}
	return run, true
}

func (s *Store) listDB(limit int) ([]Run, error) {
	if err := s.ensureSchema(); err != nil {
		return nil, err
	}
	rows, err := s.db.Query(`SELECT run_id, owner, repo, branch, target_language, status, file_count, fallback_count, created_at
FROM conversion_runs ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Run
	for rows.Next() {
		var run Run
		if err := rows.Scan(&run.RunID, &run.Owner, &run.Repo, &run.Branch, &run.TargetLanguage,
			&run.Status, &run.FileCount, &run.FallbackCount, &run.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	return out, rows.Err()
}
