package data

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/pkg/errors"

	"cadgrade/pkg/suspicion"
)

const (
	upsertSuspicionSQL = `INSERT INTO suspicion (name_a, name_b, score, severity, reasons, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(name_a, name_b) DO UPDATE SET
			score = excluded.score,
			severity = excluded.severity,
			reasons = excluded.reasons,
			created_at = excluded.created_at
	`

	selectSuspicionSQL = `SELECT name_a, name_b, score, severity, reasons
		FROM suspicion
		ORDER BY score DESC, name_a, name_b
	`

	deleteSuspicionSQL = `DELETE FROM suspicion`
)

// SaveSuspicionRecords replaces the stored suspicion scan with the given
// records. A rescan invalidates earlier pairs, so the table is cleared first.
func SaveSuspicionRecords(db *sql.DB, records []suspicion.Record) error {
	if db == nil {
		return errDBNotInitialized
	}

	now := time.Now().UTC().Format(timeFormat)

	tx, err := db.Begin()
	if err != nil {
		return errors.Wrap(err, "failed to begin suspicion tx")
	}

	if _, err := tx.Exec(deleteSuspicionSQL); err != nil {
		rollbackTransaction(tx)
		return errors.Wrap(err, "failed to clear suspicion records")
	}

	stmt, err := tx.Prepare(upsertSuspicionSQL)
	if err != nil {
		rollbackTransaction(tx)
		return errors.Wrap(err, "failed to prepare suspicion upsert")
	}

	for _, r := range records {
		reasons, err := json.Marshal(r.Reasons)
		if err != nil {
			rollbackTransaction(tx)
			return errors.Wrapf(err, "failed to encode reasons for %s/%s", r.NameA, r.NameB)
		}
		if _, err := stmt.Exec(r.NameA, r.NameB, r.Score, r.Tier, string(reasons), now); err != nil {
			rollbackTransaction(tx)
			return errors.Wrapf(err, "failed to save suspicion record: %s/%s", r.NameA, r.NameB)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "failed to commit suspicion tx")
	}
	return nil
}

// GetSuspicionRecords returns stored records ordered by descending score.
func GetSuspicionRecords(db *sql.DB) ([]suspicion.Record, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}

	rows, err := db.Query(selectSuspicionSQL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query suspicion records")
	}
	defer rows.Close()

	var out []suspicion.Record
	for rows.Next() {
		var r suspicion.Record
		var reasons string
		if err := rows.Scan(&r.NameA, &r.NameB, &r.Score, &r.Tier, &reasons); err != nil {
			return nil, errors.Wrap(err, "failed to scan suspicion row")
		}
		if err := json.Unmarshal([]byte(reasons), &r.Reasons); err != nil {
			return nil, errors.Wrapf(err, "bad reasons for %s/%s", r.NameA, r.NameB)
		}
		r.Severity = suspicion.TierFor(r.Score)
		out = append(out, r)
	}
	return out, rows.Err()
}
