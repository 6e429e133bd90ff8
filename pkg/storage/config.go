package storage

import (
	"context"
	"fmt"

	"github.com/levenlabs/go-lflag"
)

// Configured sets up the storage backend based on flags.
func Configured() Database {
	provider := lflag.String("storage-provider", "firestore", "Storage backend to use (available: firestore, sqlite)")
	project := lflag.String("firestore-project", "", "Google Cloud project of the Firestore database")
	database := lflag.String("firestore-database", "", "Firestore database id, defaults to the default database")
	prefix := lflag.String("firestore-collection-prefix", "", "Prefix added to every Firestore collection")
	sqlitePath := lflag.String("sqlite-path", "data/energyreport.db", "Path of the SQLite database file")

	var d struct{ Database }

	lflag.Do(func() {
		ctx := context.Background()
		switch *provider {
		case "firestore":
			f, err := NewFirestore(ctx, *project, *database, *prefix)
			if err != nil {
				panic(fmt.Sprintf("failed to configure firestore: %v", err))
			}
			d.Database = f
		case "sqlite":
			s, err := NewSQLite(ctx, *sqlitePath)
			if err != nil {
				panic(fmt.Sprintf("failed to configure sqlite: %v", err))
			}
			d.Database = s
		default:
			panic(fmt.Sprintf("unknown storage provider: %s", *provider))
		}
	})

	return &d
}
