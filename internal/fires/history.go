package fires

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/kabar-api/kabar-api/internal/logging"
	"github.com/kabar-api/kabar-api/internal/pipeline"
	"github.com/kabar-api/kabar-api/internal/regions"
)

const HistoryJobName = "fire_history"

// Copier bulk-appends rows.
type Copier interface {
	CopyAppend(ctx context.Context, rows []*FireDetection) (int, error)
}

// HistoryImport loads the yearly VIIRS summary archives matching Glob.
// DuckDB reads every file in one scan and unions columns by name.
type HistoryImport struct {
	Glob      string
	Store     Copier
	Regions   *regions.Index
	BatchSize int
}

func (h *HistoryImport) Name() string { return HistoryJobName }

func (h *HistoryImport) Run(ctx context.Context) (pipeline.Result, error) {
	var res pipeline.Result
	batch := h.BatchSize
	if batch <= 0 {
		batch = 10000
	}

	duck, err := sql.Open("duckdb", "")
	if err != nil {
		return res, fmt.Errorf("open duckdb: %w", err)
	}
	defer duck.Close()

	dropped := 0
	err = ReadArchive(ctx, duck, h.Glob, batch, func(raw []RawDetection) error {
		res.Fetched += len(raw)
		rows, d := Clean(raw)
		res.Cleaned += len(rows)
		dropped += d
		matched := regions.Annotate(h.Regions, rows)

		n, err := h.Store.CopyAppend(ctx, rows)
		res.Appended += n
		if err != nil {
			return err
		}
		logging.Ctx(ctx).Info().
			Int("appended", res.Appended).
			Int("dropped", d).
			Int("in_region", matched).
			Msg("history batch copied")
		return nil
	})
	if dropped > 0 {
		logging.Ctx(ctx).Warn().Int("dropped", dropped).Str("glob", h.Glob).Msg("history rows rejected by cleaner")
	}
	return res, err
}

// ReadArchive streams CSV rows matching glob through duck in batches.
func ReadArchive(ctx context.Context, duck *sql.DB, glob string, batch int, fn func([]RawDetection) error) error {
	if strings.TrimSpace(glob) == "" {
		return fmt.Errorf("history glob is empty")
	}
	query := fmt.Sprintf(
		"SELECT * FROM read_csv_auto('%s', all_varchar = true, union_by_name = true)",
		strings.ReplaceAll(glob, "'", "''"),
	)
	rows, err := duck.QueryContext(ctx, query)
	if err != nil {
		return fmt.Errorf("read archives %q: %w", glob, err)
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return err
	}
	col := columnIndex(names)
	if _, ok := col["latitude"]; !ok {
		return ErrNotCSV
	}

	vals := make([]sql.NullString, len(names))
	ptrs := make([]any, len(names))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	rec := make([]string, len(names))

	buf := make([]RawDetection, 0, batch)
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return fmt.Errorf("scan archive row: %w", err)
		}
		for i, v := range vals {
			rec[i] = v.String
		}
		buf = append(buf, rawFromRecord(col, rec))
		if len(buf) == batch {
			if err := fn(buf); err != nil {
				return err
			}
			buf = buf[:0]
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("read archives: %w", err)
	}
	if len(buf) > 0 {
		return fn(buf)
	}
	return nil
}
