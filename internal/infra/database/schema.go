package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

const (
	ConstraintEmail    = "leads_email_key"
	ConstraintWhatsApp = "leads_whatsapp_key"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS leads (
		id UUID PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		email VARCHAR(255) NOT NULL,
		whatsapp VARCHAR(20),
		role VARCHAR(255),
		lgpd_consent BOOLEAN NOT NULL DEFAULT FALSE,
		ip_address VARCHAR(64),
		user_agent TEXT,
		referrer TEXT,
		utm_source VARCHAR(100),
		utm_medium VARCHAR(100),
		utm_campaign VARCHAR(100),
		utm_content VARCHAR(100),
		utm_term VARCHAR(100),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT ` + ConstraintEmail + ` UNIQUE (email),
		CONSTRAINT ` + ConstraintWhatsApp + ` UNIQUE (whatsapp)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_leads_created_at ON leads (created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_leads_utm_source ON leads (utm_source) WHERE utm_source IS NOT NULL`,
}

// EnsureSchema cria a tabela leads e os índices se ainda não existirem.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("falha ao aplicar schema: %w", err)
		}
	}
	return nil
}
