package database

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildPostgresDSN(t *testing.T) {
	dsn, err := buildPostgresDSN(Config{
		User:     "seistore",
		Password: "secret",
		Name:     "results",
		Host:     "db.internal",
		Port:     5433,
	})
	require.NoError(t, err)
	require.Equal(t, "host=db.internal port=5433 user=seistore dbname=results password=secret sslmode=disable", dsn)
}

func TestBuildPostgresDSNDefaultsAndOverride(t *testing.T) {
	dsn, err := buildPostgresDSN(Config{
		User: "seistore",
		Name: "results",
		Options: map[string]string{
			"sslmode": "require",
		},
	})
	require.NoError(t, err)
	require.Equal(t, "host=localhost port=5432 user=seistore dbname=results sslmode=require", dsn)
}

func TestBuildPostgresDSNRequiresUserAndName(t *testing.T) {
	_, err := buildPostgresDSN(Config{Name: "results"})
	require.Error(t, err)
}

func TestBuildMySQLDSN(t *testing.T) {
	dsn, err := buildMySQLDSN(Config{
		User:     "seistore",
		Password: "secret",
		Name:     "results",
		Host:     "db.internal",
		Port:     3307,
	})
	require.NoError(t, err)
	require.Equal(t, "seistore:secret@tcp(db.internal:3307)/results?charset=utf8mb4&loc=Local&parseTime=True", dsn)
}

func TestBuildMySQLDSNPrefersExplicitDSN(t *testing.T) {
	dsn, err := buildMySQLDSN(Config{DSN: "custom-dsn"})
	require.NoError(t, err)
	require.Equal(t, "custom-dsn", dsn)
}
