// Package migrate holds the SQL schema of the session store and creates it
// with ent's Atlas-backed migrator.
package migrate

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

var (
	// SessionsColumns holds the columns for the "sessions" table.
	SessionsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Unique: true},
		{Name: "model", Type: field.TypeString, Default: ""},
		{Name: "upstream_model", Type: field.TypeString, Default: ""},
		{Name: "stop_reason", Type: field.TypeString, Default: ""},
		{Name: "outcome", Type: field.TypeString},
		{Name: "output_tokens", Type: field.TypeInt, Default: 0},
		{Name: "ttft_ns", Type: field.TypeInt64, Default: 0},
		{Name: "duration_ns", Type: field.TypeInt64, Default: 0},
		{Name: "started_at", Type: field.TypeInt64},
		{Name: "completed_at", Type: field.TypeInt64},
		{Name: "error", Type: field.TypeString, Size: 2147483647, Default: ""},
	}

	// SessionsTable holds the schema information for the "sessions" table.
	SessionsTable = &schema.Table{
		Name:       "sessions",
		Columns:    SessionsColumns,
		PrimaryKey: []*schema.Column{SessionsColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "session_started_at",
				Unique:  false,
				Columns: []*schema.Column{SessionsColumns[8]},
			},
			{
				Name:    "session_outcome",
				Unique:  false,
				Columns: []*schema.Column{SessionsColumns[4]},
			},
		},
	}

	// Tables holds all the tables in the schema.
	Tables = []*schema.Table{
		SessionsTable,
	}
)

// Create runs an append-only auto-migration of all tables over drv.
func Create(ctx context.Context, drv dialect.Driver) error {
	migrate, err := schema.NewMigrate(drv)
	if err != nil {
		return fmt.Errorf("ent/migrate: %w", err)
	}
	return migrate.Create(ctx, Tables...)
}
