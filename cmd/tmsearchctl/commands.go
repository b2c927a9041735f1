package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/DavidZachariahWC/trademarks-public/internal/config"
	"github.com/DavidZachariahWC/trademarks-public/internal/db/postgres"
	"github.com/DavidZachariahWC/trademarks-public/internal/domain/record"
	"github.com/DavidZachariahWC/trademarks-public/internal/domain/tree"
	logpkg "github.com/DavidZachariahWC/trademarks-public/internal/logger"
	searchrepo "github.com/DavidZachariahWC/trademarks-public/internal/repository/search"
	"github.com/DavidZachariahWC/trademarks-public/internal/strategy"
	searchuc "github.com/DavidZachariahWC/trademarks-public/internal/usecase/search"
)

const (
	defaultQueryTimeout = 30 * time.Second
	maxPerPage          = 1000
)

// resolveDSN prefers --dsn and falls back to the env config.
func resolveDSN(c *cli.Context) (string, error) {
	if dsn := strings.TrimSpace(c.String("dsn")); dsn != "" {
		return dsn, nil
	}
	cfg, err := config.Load(c.String("env"))
	if err != nil {
		return "", errors.Wrap(err, "no --dsn given and config could not be loaded")
	}
	return cfg.Database.DSN, nil
}

func openStore(c *cli.Context) (*postgres.Store, error) {
	dsn, err := resolveDSN(c)
	if err != nil {
		return nil, err
	}
	store, err := postgres.NewStore(c.Context, postgres.Config{DSN: dsn, MaxConns: 2})
	if err != nil {
		return nil, errors.Wrap(err, "connect to record store")
	}
	return store, nil
}

func newLogger(c *cli.Context) (*zap.Logger, error) {
	l, err := logpkg.NewLogger("local", c.String("log-level"))
	if err != nil {
		return nil, errors.Wrap(err, "create logger")
	}
	return l, nil
}

func migrateUpCommand(c *cli.Context) error {
	store, err := openStore(c)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Migrate(c.Context); err != nil {
		return errors.Wrap(err, "migrate up")
	}
	return printVersion(c.Context, c.App.Writer, store)
}

func migrateDownCommand(c *cli.Context) error {
	store, err := openStore(c)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.MigrateDown(c.Context); err != nil {
		return errors.Wrap(err, "migrate down")
	}
	_, _ = fmt.Fprintln(c.App.Writer, "all migrations rolled back")
	return nil
}

func migrateVersionCommand(c *cli.Context) error {
	store, err := openStore(c)
	if err != nil {
		return err
	}
	defer store.Close()
	return printVersion(c.Context, c.App.Writer, store)
}

func printVersion(ctx context.Context, w io.Writer, store *postgres.Store) error {
	v, dirty, err := store.MigrationVersion(ctx)
	if err != nil {
		return errors.Wrap(err, "read migration version")
	}
	suffix := ""
	if dirty {
		suffix = " (dirty)"
	}
	_, _ = fmt.Fprintf(w, "schema version %d%s\n", v, suffix)
	return nil
}

// readTree loads a filter tree from path, or from r when path is "-".
func readTree(path string, r io.Reader) (*tree.Node, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(r)
	} else {
		data, err = os.ReadFile(path) //nolint:gosec // operator-supplied path
	}
	if err != nil {
		return nil, errors.Wrapf(err, "read filter tree %s", path)
	}
	root, err := tree.Decode(data)
	if err != nil {
		return nil, errors.Wrap(err, "decode filter tree")
	}
	return root, nil
}

func queryCommand(c *cli.Context) error {
	page, perPage := c.Int("page"), c.Int("per-page")
	if err := record.ValidatePaging(page, perPage, maxPerPage); err != nil {
		return errors.Wrap(err, "invalid paging flags")
	}

	root, err := readTree(c.String("tree"), os.Stdin)
	if err != nil {
		return err
	}

	logger, err := newLogger(c)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	store, err := openStore(c)
	if err != nil {
		return err
	}
	defer store.Close()

	compiler, err := searchuc.NewCompiler(strategy.MustBuiltin(), 0)
	if err != nil {
		return errors.Wrap(err, "create compiler")
	}
	defer compiler.Release()

	svc := searchuc.New(compiler, searchrepo.New(store), searchuc.Config{
		MaxPerPage:   maxPerPage,
		Limits:       tree.DefaultLimits(),
		QueryTimeout: c.Duration("timeout"),
	})

	ctx := logpkg.ContextWithLogger(c.Context, logger)
	result, err := svc.Search(ctx, root, page, perPage)
	if err != nil {
		return errors.Wrap(err, "search")
	}

	return writePage(c.App.Writer, result)
}

type queryRecord struct {
	SerialNumber       int64    `json:"serial_number"`
	RegistrationNumber string   `json:"registration_number,omitempty"`
	MarkIdentification string   `json:"mark_identification,omitempty"`
	StatusCode         string   `json:"status_code,omitempty"`
	FilingDate         string   `json:"filing_date,omitempty"`
	CombinedScore      *float64 `json:"combined_score,omitempty"`
	MatchQuality       string   `json:"match_quality,omitempty"`
}

type queryPagination struct {
	CurrentPage  int `json:"current_page"`
	TotalPages   int `json:"total_pages"`
	TotalResults int `json:"total_results"`
	PerPage      int `json:"per_page"`
}

type queryOutput struct {
	Results    []queryRecord   `json:"results"`
	Pagination queryPagination `json:"pagination"`
}

func writePage(w io.Writer, p record.Page) error {
	out := queryOutput{
		Results: make([]queryRecord, len(p.Records)),
		Pagination: queryPagination{
			CurrentPage:  p.Pagination.CurrentPage,
			TotalPages:   p.Pagination.TotalPages,
			TotalResults: p.Pagination.TotalResults,
			PerPage:      p.Pagination.PerPage,
		},
	}
	for i, r := range p.Records {
		qr := queryRecord{
			SerialNumber:       r.SerialNumber,
			RegistrationNumber: r.RegistrationNumber,
			MarkIdentification: r.MarkIdentification,
			StatusCode:         r.StatusCode,
			CombinedScore:      r.Score,
			MatchQuality:       r.Quality(),
		}
		if r.FilingDate != nil {
			qr.FilingDate = r.FilingDate.Format("2006-01-02")
		}
		out.Results[i] = qr
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return errors.Wrap(err, "encode page")
	}
	return nil
}

func strategiesCommand(c *cli.Context) error {
	registry := strategy.MustBuiltin()

	tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "NAME\tFAMILY\tSCORING")
	for _, e := range registry.Entries() {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%t\n", e.Name, e.Family, e.Scoring)
	}
	if err := tw.Flush(); err != nil {
		return errors.Wrap(err, "write strategies")
	}
	return nil
}

func classesCommand(c *cli.Context) error {
	classes, err := strategy.DefaultClasses()
	if err != nil {
		return errors.Wrap(err, "load coordinated classes")
	}
	if len(classes) == 0 {
		return errors.Newf("coordinated class table is empty")
	}

	tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "GROUP\tINTERNATIONAL\tUS")
	for _, key := range classes.Keys() {
		g := classes[key]
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", key, strings.Join(g.International, ","), strings.Join(g.US, ","))
	}
	if err := tw.Flush(); err != nil {
		return errors.Wrap(err, "write classes")
	}
	return nil
}
