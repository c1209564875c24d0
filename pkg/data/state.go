package data

import (
	"database/sql"

	"github.com/pkg/errors"
)

var stateQueries = map[string]string{
	"submissions": "SELECT COUNT(*) FROM submission",
	"evaluations": "SELECT COUNT(*) FROM evaluation",
	"failures":    "SELECT COUNT(*) FROM evaluation WHERE error IS NOT NULL",
	"suspicions":  "SELECT COUNT(*) FROM suspicion",
}

// GetState returns row counts per table, a quick health view for the CLI.
func GetState(db *sql.DB) (map[string]int64, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}

	out := make(map[string]int64, len(stateQueries))
	for name, q := range stateQueries {
		var count int64
		if err := db.QueryRow(q).Scan(&count); err != nil {
			return nil, errors.Wrapf(err, "failed to count %s", name)
		}
		out[name] = count
	}
	return out, nil
}
