package store

import "fmt"

// Driver identifies a concrete storage backend.
type Driver string

const (
	DriverMemory   Driver = "memory"   // in-memory only (tests / ephemeral)
	DriverSQLite   Driver = "sqlite"   // embedded sqlite file
	DriverPostgres Driver = "postgres" // PostgreSQL document table
)

// Open constructs the backend named by driver. The sqlite driver uses path,
// the postgres driver uses dsn; memory ignores both.
func Open(driver Driver, path, dsn string) (Store, error) {
	switch driver {
	case DriverMemory:
		return NewMemory(), nil
	case DriverSQLite:
		return NewSQLite(path)
	case DriverPostgres:
		return NewPostgres(dsn)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", driver)
	}
}
