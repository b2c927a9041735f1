package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/DavidZachariahWC/trademarks-public/internal/db"
)

const (
	createCandidates = `CREATE TEMP TABLE tm_candidates (serial_number integer PRIMARY KEY) ON COMMIT DROP`
	createScores     = `CREATE TEMP TABLE tm_scores (sn integer PRIMARY KEY, combined_score float8 NOT NULL) ON COMMIT DROP`

	recordColumns = `c.serial_number, f.registration_number, h.mark_identification, h.status_code,
	h.mark_drawing_code, h.attorney_name, h.filing_date, h.registration_date`

	recordJoins = `FROM tm_candidates c
	JOIN casefile f ON f.serial_number = c.serial_number
	JOIN casefileheader h ON h.serial_number = c.serial_number`
)

// Search runs a compiled query in three round trips on one transaction:
// materialise candidates, materialise aggregated scores, then count and page.
// The transaction is always rolled back so the temp tables never outlive the call.
func (s *Store) Search(ctx context.Context, q *db.SearchQuery) (*db.SearchResult, error) {
	ctx, span := s.tracer.Start(ctx, "postgres.search",
		trace.WithAttributes(
			attribute.Bool("search.scored", q.Scored()),
			attribute.Int("search.offset", q.Offset),
			attribute.Int("search.limit", q.Limit),
		),
	)
	defer span.End()

	res, err := s.search(ctx, q)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "search failed")
		return nil, err
	}
	span.SetAttributes(attribute.Int("search.total", res.Total))
	return res, nil
}

func (s *Store) search(ctx context.Context, q *db.SearchQuery) (*db.SearchResult, error) {
	if q.Candidates.IsZero() {
		return nil, &db.Error{Op: db.OpCandidates, Err: db.ErrBadQuery}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, wrapErr(db.OpBegin, err)
	}
	// Rollback after a successful read is the normal path.
	defer func() { _ = tx.Rollback(context.WithoutCancel(ctx)) }()

	if err := s.materialiseCandidates(ctx, tx, q); err != nil {
		return nil, err
	}
	if q.Scored() {
		if err := s.materialiseScores(ctx, tx, q); err != nil {
			return nil, err
		}
	}
	return s.fetchPage(ctx, tx, q)
}

func (s *Store) materialiseCandidates(ctx context.Context, tx pgx.Tx, q *db.SearchQuery) error {
	sql, _ := db.Rebind(fmt.Sprintf(
		"INSERT INTO tm_candidates (serial_number) SELECT DISTINCT c.serial_number FROM (%s) c",
		q.Candidates.SQL(),
	), 0)

	b := &pgx.Batch{}
	b.Queue(createCandidates)
	b.Queue(sql, q.Candidates.Args()...)
	return execBatch(ctx, tx, b, db.OpCandidates)
}

func (s *Store) materialiseScores(ctx context.Context, tx pgx.Tx, q *db.SearchQuery) error {
	sql, _ := db.Rebind(fmt.Sprintf(
		`INSERT INTO tm_scores (sn, combined_score)
		SELECT a.sn, a.combined_score FROM (%s) a
		JOIN tm_candidates c ON c.serial_number = a.sn`,
		q.Scores.SQL(),
	), 0)

	b := &pgx.Batch{}
	b.Queue(createScores)
	b.Queue(sql, q.Scores.Args()...)
	return execBatch(ctx, tx, b, db.OpScores)
}

func (s *Store) fetchPage(ctx context.Context, tx pgx.Tx, q *db.SearchQuery) (*db.SearchResult, error) {
	countSQL, pageSQL := pageQueries(q.Scored())

	b := &pgx.Batch{}
	if q.Scored() {
		b.Queue(countSQL, q.MinScore)
		b.Queue(pageSQL, q.MinScore, q.Limit, q.Offset)
	} else {
		b.Queue(countSQL)
		b.Queue(pageSQL, q.Limit, q.Offset)
	}

	br := tx.SendBatch(ctx, b)
	defer br.Close()

	res := &db.SearchResult{}
	if err := br.QueryRow().Scan(&res.Total); err != nil {
		return nil, wrapErr(db.OpCount, err)
	}

	rows, err := br.Query()
	if err != nil {
		return nil, wrapErr(db.OpPage, err)
	}
	res.Rows, err = pgx.CollectRows(rows, scanRecordRow)
	if err != nil {
		return nil, wrapErr(db.OpPage, err)
	}
	if err := br.Close(); err != nil {
		return nil, wrapErr(db.OpPage, err)
	}
	return res, nil
}

// pageQueries returns the count and page statements. Scored queries admit
// unscored records and records at or above the floor.
func pageQueries(scored bool) (count, page string) {
	if !scored {
		count = "SELECT count(*) " + recordJoins
		page = fmt.Sprintf(`SELECT %s, NULL::float8 AS combined_score %s
		ORDER BY h.filing_date DESC, c.serial_number DESC
		LIMIT $1 OFFSET $2`, recordColumns, recordJoins)
		return count, page
	}

	joins := recordJoins + `
	LEFT JOIN tm_scores s ON s.sn = c.serial_number
	WHERE s.combined_score IS NULL OR s.combined_score >= $1`
	count = "SELECT count(*) " + joins
	page = fmt.Sprintf(`SELECT %s, s.combined_score %s
		ORDER BY s.combined_score DESC NULLS LAST, h.filing_date DESC, c.serial_number DESC
		LIMIT $2 OFFSET $3`, recordColumns, joins)
	return count, page
}

func scanRecordRow(row pgx.CollectableRow) (db.RecordRow, error) {
	var r db.RecordRow
	err := row.Scan(
		&r.SerialNumber,
		&r.RegistrationNumber,
		&r.MarkIdentification,
		&r.StatusCode,
		&r.MarkDrawingCode,
		&r.AttorneyName,
		&r.FilingDate,
		&r.RegistrationDate,
		&r.CombinedScore,
	)
	return r, err
}

func execBatch(ctx context.Context, tx pgx.Tx, b *pgx.Batch, op string) error {
	br := tx.SendBatch(ctx, b)
	for i := 0; i < b.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return wrapErr(op, err)
		}
	}
	if err := br.Close(); err != nil {
		return wrapErr(op, err)
	}
	return nil
}
