// Package store persists finished practice reports and an embedding index
// of past answers. The embedding index lets the evaluation pipeline show a
// user how others answered similar questions.
//
// Two implementations exist: [memstore] for single-process deployments and
// tests, and [postgres] backed by pgvector for durable storage with fast
// nearest-neighbour search.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/orato-app/orato/internal/report"
)

// ErrNotFound is returned when the requested report does not exist.
var ErrNotFound = errors.New("store: not found")

// Report is a finished session in its durable form. Records use the same
// wire shape as the downloadable JSON export.
type Report struct {
	SessionID string
	Mode      report.Mode
	CreatedAt time.Time
	Records   []report.ExportRecord
}

// Answer is one transcribed answer with its embedding, indexed for
// similarity search.
type Answer struct {
	ID             string
	SessionID      string
	QuestionNumber int
	Question       string
	Transcript     string
	Embedding      []float32
	CreatedAt      time.Time
}

// AnswerMatch pairs an indexed answer with its cosine distance to the query
// embedding. Smaller distance means more similar.
type AnswerMatch struct {
	Answer   Answer
	Distance float64
}

// Store is the persistence boundary of the application.
//
// Implementations must be safe for concurrent use.
type Store interface {
	// SaveReport persists a finished session, replacing any prior report
	// with the same session ID.
	SaveReport(ctx context.Context, rep Report) error

	// GetReport loads a report by session ID. Returns ErrNotFound when no
	// report exists.
	GetReport(ctx context.Context, sessionID string) (*Report, error)

	// IndexAnswer upserts an answer into the similarity index.
	IndexAnswer(ctx context.Context, ans Answer) error

	// SimilarAnswers returns up to topK indexed answers closest to the
	// query embedding, most similar first.
	SimilarAnswers(ctx context.Context, embedding []float32, topK int) ([]AnswerMatch, error)

	// Close releases underlying resources.
	Close()
}
