package migrations

import (
	"context"
	_ "embed"

	"github.com/uptrace/bun"
)

//go:embed 2025011503_create_audit.up.sql
var createAuditSQL string

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			return execSQL(ctx, db, createAuditSQL)
		},
		func(ctx context.Context, db *bun.DB) error {
			return execSQL(ctx, db, `DROP TABLE IF EXISTS articles
--bun:split
DROP TABLE IF EXISTS login_attempts
--bun:split
DROP TABLE IF EXISTS registration_requests`)
		},
	)
}
