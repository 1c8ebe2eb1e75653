// The migrate command applies the SQL migrations in db/migrations to the
// configured PostgreSQL database.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"net/url"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"todotrack/cmd/internal"
	"todotrack/internal/envar"
)

func main() {
	var env, path string

	flag.StringVar(&env, "env", "", "Environment Variables filename")
	flag.StringVar(&path, "path", "db/migrations", "Migrations directory")
	flag.Parse()

	if err := run(env, path); err != nil {
		log.Fatalf("Couldn't run: %s", err)
	}
}

func run(env, path string) error {
	if err := envar.Load(env); err != nil {
		return fmt.Errorf("envar.Load: %w", err)
	}

	vault, err := internal.NewVaultProvider()
	if err != nil {
		return fmt.Errorf("internal.NewVaultProvider: %w", err)
	}

	conf := envar.New(vault)

	dsn, err := databaseDSN(conf)
	if err != nil {
		return err
	}

	m, err := migrate.New(fmt.Sprintf("file://%s", path), dsn)
	if err != nil {
		return fmt.Errorf("migrate.New: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("m.Up: %w", err)
	}

	log.Println("Migrations applied")

	return nil
}

func databaseDSN(conf *envar.Configuration) (string, error) {
	get := func(v string) (string, error) {
		res, err := conf.Get(v)
		if err != nil {
			return "", fmt.Errorf("conf.Get %s: %w", v, err)
		}
		return res, nil
	}

	host, err := get("DATABASE_HOST")
	if err != nil {
		return "", err
	}

	port, err := get("DATABASE_PORT")
	if err != nil {
		return "", err
	}

	username, err := get("DATABASE_USERNAME")
	if err != nil {
		return "", err
	}

	password, err := get("DATABASE_PASSWORD")
	if err != nil {
		return "", err
	}

	name, err := get("DATABASE_NAME")
	if err != nil {
		return "", err
	}

	sslMode, err := get("DATABASE_SSLMODE")
	if err != nil {
		return "", err
	}

	dsn := url.URL{
		Scheme: "pgx5",
		User:   url.UserPassword(username, password),
		Host:   fmt.Sprintf("%s:%s", host, port),
		Path:   name,
	}

	q := dsn.Query()
	q.Add("sslmode", sslMode)

	dsn.RawQuery = q.Encode()

	return dsn.String(), nil
}
