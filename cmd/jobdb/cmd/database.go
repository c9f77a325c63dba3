package cmd

import (
	"database/sql"
	"fmt"
	"strings"

	"contrib.go.opencensus.io/integrations/ocsql"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/stdlib"
)

// connectionSettings are the individual connection flags, used when no database URL is
// given. Empty values are left for pgx to resolve from PG* environment variables.
type connectionSettings struct {
	Host     string
	Port     uint16
	Database string
	User     string
	Password string
	Schema   string
}

func (s connectionSettings) connString() string {
	pairs := []string{}
	add := func(key, value string) {
		if value == "" {
			return
		}

		value = strings.ReplaceAll(value, `\`, `\\`)
		value = strings.ReplaceAll(value, `'`, `\'`)
		pairs = append(pairs, fmt.Sprintf("%s='%s'", key, value))
	}

	add("host", s.Host)
	if s.Port != 0 {
		add("port", fmt.Sprintf("%d", s.Port))
	}
	add("dbname", s.Database)
	add("user", s.User)
	add("password", s.Password)

	return strings.Join(pairs, " ")
}

// buildDB opens a traced connection pool. Every session has its search_path set to the
// target schema, so unqualified table names in migrations resolve there.
func buildDB(databaseURL string, settings connectionSettings) (*sql.DB, *pgx.ConnConfig, error) {
	connString := databaseURL
	if connString == "" {
		connString = settings.connString()
	}

	cfg, err := pgx.ParseConfig(connString)
	if err != nil {
		return nil, nil, err
	}

	if settings.Schema != "" {
		cfg.RuntimeParams["search_path"] = settings.Schema
	}

	driverName, err := ocsql.Register("pgx", ocsql.WithAllTraceOptions())
	if err != nil {
		return nil, nil, err
	}

	db, err := sql.Open(driverName, stdlib.RegisterConnConfig(cfg))
	if err != nil {
		return nil, nil, err
	}

	return db, cfg, nil
}
