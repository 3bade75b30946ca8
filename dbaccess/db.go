package dbaccess

import (
	"github.com/strandnet/strandd/database"
	"github.com/strandnet/strandd/database/ldb"
)

// DatabaseContext represents a context in which all database queries run
type DatabaseContext struct {
	db database.Database
	*noTxContext
}

// New creates a new DatabaseContext with database is in the specified `path`
func New(path string) (*DatabaseContext, error) {
	db, err := ldb.NewLevelDB(path)
	if err != nil {
		return nil, err
	}

	return NewWithDatabase(db), nil
}

// NewWithDatabase creates a new DatabaseContext over an already-open
// database.
func NewWithDatabase(db database.Database) *DatabaseContext {
	databaseContext := &DatabaseContext{db: db}
	databaseContext.noTxContext = &noTxContext{backend: databaseContext}

	return databaseContext
}

// Close closes the DatabaseContext's connection, if it's open
func (ctx *DatabaseContext) Close() error {
	return ctx.db.Close()
}
