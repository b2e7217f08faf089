package store

import "errors"

type DatabaseType string

const (
	DBTypePostgres DatabaseType = "postgres"
	DBTypeSQLite   DatabaseType = "sqlite"
)

type DBConfig struct {
	DSN           string
	Type          DatabaseType
	MigrationsDir string
}

var (
	ErrUniqueViolation = errors.New("unique constraint violated")
	ErrMissingStudent  = errors.New("student does not exist")
	ErrMissingSong     = errors.New("song does not exist")
)
