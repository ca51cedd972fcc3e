// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Supported values for DATABASE_TYPE.
const (
	TypeSQLite   = "sqlite"
	TypePostgres = "postgres"
)

// Open connects to the database and verifies the connection. SQLite
// connections get foreign keys enabled and a single connection, which keeps
// ":memory:" databases shared across the pool.
func Open(dbType, url string) (*sql.DB, error) {
	var (
		conn *sql.DB
		err  error
	)
	switch dbType {
	case TypePostgres:
		conn, err = sql.Open("postgres", url)
	case TypeSQLite, "":
		conn, err = sql.Open("sqlite", sqliteDSN(url))
		if err == nil {
			conn.SetMaxOpenConns(1)
		}
	default:
		return nil, fmt.Errorf("unsupported database type %q", dbType)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return conn, nil
}

func sqliteDSN(url string) string {
	url = strings.TrimPrefix(url, "sqlite://")
	if strings.Contains(url, "_pragma=foreign_keys") {
		return url
	}
	sep := "?"
	if strings.Contains(url, "?") {
		sep = "&"
	}
	return url + sep + "_pragma=foreign_keys(1)"
}
