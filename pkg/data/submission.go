package data

import (
	"database/sql"
	"time"

	"github.com/pkg/errors"

	"cadgrade/pkg/suspicion"
)

const (
	upsertSubmissionSQL = `INSERT INTO submission (name, file_size, file_hash, uploaded_at, source_path)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			file_size = excluded.file_size,
			file_hash = excluded.file_hash,
			uploaded_at = excluded.uploaded_at,
			source_path = excluded.source_path
	`

	selectSubmissionsSQL = `SELECT name, file_size, file_hash, uploaded_at
		FROM submission
		ORDER BY name
	`
)

// SaveSubmissions upserts submission metadata in a single transaction.
func SaveSubmissions(db *sql.DB, subs []SubmissionRow) error {
	if db == nil {
		return errDBNotInitialized
	}

	tx, err := db.Begin()
	if err != nil {
		return errors.Wrap(err, "failed to begin submission tx")
	}

	stmt, err := tx.Prepare(upsertSubmissionSQL)
	if err != nil {
		rollbackTransaction(tx)
		return errors.Wrap(err, "failed to prepare submission upsert")
	}

	for _, s := range subs {
		if _, err := stmt.Exec(s.Meta.Name, s.Meta.Size, s.Meta.Hash,
			s.Meta.Uploaded.UTC().Format(timeFormat), s.Path); err != nil {
			rollbackTransaction(tx)
			return errors.Wrapf(err, "failed to save submission: %s", s.Meta.Name)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "failed to commit submission tx")
	}
	return nil
}

// SubmissionRow pairs extracted metadata with its on-disk origin.
type SubmissionRow struct {
	Meta suspicion.Metadata `json:"meta" yaml:"meta"`
	Path string             `json:"path,omitempty" yaml:"path,omitempty"`
}

// GetSubmissions returns stored submission metadata ordered by name.
func GetSubmissions(db *sql.DB) ([]suspicion.Metadata, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}

	rows, err := db.Query(selectSubmissionsSQL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query submissions")
	}
	defer rows.Close()

	var out []suspicion.Metadata
	for rows.Next() {
		var m suspicion.Metadata
		var uploaded string
		if err := rows.Scan(&m.Name, &m.Size, &m.Hash, &uploaded); err != nil {
			return nil, errors.Wrap(err, "failed to scan submission row")
		}
		t, err := time.Parse(timeFormat, uploaded)
		if err != nil {
			return nil, errors.Wrapf(err, "bad uploaded_at for %s", m.Name)
		}
		m.Uploaded = t
		out = append(out, m)
	}
	return out, rows.Err()
}
