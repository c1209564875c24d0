package data

import (
	"database/sql"
	"embed"
	"os"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

// DataFileName is the default sqlite file name under the app home dir.
const DataFileName = "cadgrade.db"

// timeFormat is the canonical timestamp layout for stored records.
const timeFormat = "2006-01-02T15:04:05Z"

var (
	//go:embed sql/*
	f embed.FS

	errDBNotInitialized = errors.New("database not initialized")
)

// Init creates the database schema if the file does not exist yet.
func Init(dbFilePath string) error {
	if dbFilePath == "" {
		return errors.New("dbFilePath not specified")
	}

	if _, err := os.Stat(dbFilePath); errors.Is(err, os.ErrNotExist) {
		db, err := GetDB(dbFilePath)
		if err != nil {
			return errors.Wrapf(err, "error opening database: %s", dbFilePath)
		}
		defer db.Close()

		b, err := f.ReadFile("sql/ddl.sql")
		if err != nil {
			return errors.Wrap(err, "failed to read the schema creation file")
		}
		if _, err := db.Exec(string(b)); err != nil {
			return errors.Wrapf(err, "failed to create database schema in: %s", dbFilePath)
		}
	}

	return nil
}

// GetDB opens a connection to the sqlite database at path.
func GetDB(path string) (*sql.DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open database: %s", path)
	}
	return conn, nil
}

func rollbackTransaction(tx *sql.Tx) {
	if tx != nil {
		_ = tx.Rollback()
	}
}
