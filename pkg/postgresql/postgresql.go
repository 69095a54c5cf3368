package postgresql

import (
	"database/sql"
	"log"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/stitchfactory/sf-order/config"
)

var (
	once sync.Once
	db   *sql.DB
)

// GetDatabase opens the shared connection pool on first use.
func GetDatabase() *sql.DB {
	once.Do(func() {
		c := config.Get()

		conn, err := sql.Open("pgx", c.Postgres.DSN)
		if err != nil {
			log.Fatalf("postgresql: %v", err)
		}

		if c.Postgres.MaxOpenConns > 0 {
			conn.SetMaxOpenConns(c.Postgres.MaxOpenConns)
		}
		if c.Postgres.MaxIdleConns > 0 {
			conn.SetMaxIdleConns(c.Postgres.MaxIdleConns)
		}
		if c.Postgres.MaxLifetime > 0 {
			conn.SetConnMaxLifetime(c.Postgres.MaxLifetime)
		}

		db = conn
	})

	return db
}
