package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const ddlReports = `
CREATE TABLE IF NOT EXISTS reports (
    session_id  TEXT         PRIMARY KEY,
    mode        TEXT         NOT NULL,
    created_at  TIMESTAMPTZ  NOT NULL DEFAULT now(),
    records     JSONB        NOT NULL DEFAULT '[]'
);

CREATE INDEX IF NOT EXISTS idx_reports_created_at
    ON reports (created_at);
`

// ddlAnswers returns the answer-index DDL with the embedding dimension
// substituted. The dimension is baked into the column type.
func ddlAnswers(embeddingDimensions int) string {
	return fmt.Sprintf(`
CREATE EXTENSION IF NOT EXISTS vector;

CREATE TABLE IF NOT EXISTS answers (
    id              TEXT         PRIMARY KEY,
    session_id      TEXT         NOT NULL,
    question_number INTEGER      NOT NULL DEFAULT 0,
    question        TEXT         NOT NULL DEFAULT '',
    transcript      TEXT         NOT NULL DEFAULT '',
    embedding       vector(%d),
    created_at      TIMESTAMPTZ  NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_answers_session_id
    ON answers (session_id);

CREATE INDEX IF NOT EXISTS idx_answers_embedding
    ON answers USING hnsw (embedding vector_cosine_ops);
`, embeddingDimensions)
}

// migrate creates the required tables and extensions. Idempotent; runs on
// every start.
func migrate(ctx context.Context, pool *pgxpool.Pool, embeddingDimensions int) error {
	for _, stmt := range []string{ddlReports, ddlAnswers(embeddingDimensions)} {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("postgres migrate: %w", err)
		}
	}
	return nil
}
