// Package source loads raw statement tables from a local file, a Cloud
// Storage object or a BigQuery transactions table.
package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	bq "github.com/dvloznov/statement-insights/internal/infra/bigquery"
	"github.com/dvloznov/statement-insights/internal/logger"
	"github.com/dvloznov/statement-insights/internal/statement"
)

// BigQueryScheme prefixes warehouse URIs: bq://dataset.table?start=YYYY-MM-DD&end=YYYY-MM-DD
const BigQueryScheme = "bq://"

const gcsScheme = "gs://"

// ErrLocalSourceDisabled is returned for filesystem paths when the loader
// only serves remote statements.
var ErrLocalSourceDisabled = errors.New("local statement files are not allowed")

// ObjectFetcher reads object bytes from Cloud Storage.
type ObjectFetcher interface {
	FetchFromGCS(ctx context.Context, gcsURI string) ([]byte, error)
}

// TransactionReader reads warehouse transactions for a date range.
type TransactionReader interface {
	TransactionsByDateRange(ctx context.Context, ref bq.TableRef, start, end time.Time) ([]*bq.TransactionRow, error)
}

// Loader resolves a statement URI into a Table. Storage and Warehouse are
// optional; URIs needing a missing backend fail with an error. Filesystem
// paths are read only when AllowLocal is set.
type Loader struct {
	Storage    ObjectFetcher
	Warehouse  TransactionReader
	AllowLocal bool
}

// WarehouseQuery is a parsed bq:// URI.
type WarehouseQuery struct {
	Ref   bq.TableRef
	Start time.Time
	End   time.Time
}

// Load reads the statement at uri.
func (l *Loader) Load(ctx context.Context, uri string) (*statement.Table, error) {
	log := logger.FromContext(ctx)

	switch {
	case strings.HasPrefix(uri, gcsScheme):
		if l.Storage == nil {
			return nil, fmt.Errorf("Load: cloud storage is not configured")
		}
		log.Debug().Str("uri", uri).Msg("Fetching statement from GCS")
		data, err := l.Storage.FetchFromGCS(ctx, uri)
		if err != nil {
			return nil, fmt.Errorf("Load: %w", err)
		}
		return statement.ReadCSV(bytes.NewReader(data))

	case strings.HasPrefix(uri, BigQueryScheme):
		if l.Warehouse == nil {
			return nil, fmt.Errorf("Load: BigQuery is not configured")
		}
		q, err := ParseBigQueryURI(uri)
		if err != nil {
			return nil, fmt.Errorf("Load: %w", err)
		}
		log.Debug().Str("table", q.Ref.String()).Time("start", q.Start).Time("end", q.End).Msg("Querying statement from BigQuery")
		rows, err := l.Warehouse.TransactionsByDateRange(ctx, q.Ref, q.Start, q.End)
		if err != nil {
			return nil, fmt.Errorf("Load: %w", err)
		}
		return bq.ToTable(rows), nil

	default:
		if !l.AllowLocal {
			return nil, fmt.Errorf("Load: %w", ErrLocalSourceDisabled)
		}
		f, err := os.Open(strings.TrimPrefix(uri, "file://"))
		if err != nil {
			return nil, fmt.Errorf("Load: open statement: %w", err)
		}
		defer f.Close()
		return statement.ReadCSV(f)
	}
}

// IsRemote reports whether uri names a Cloud Storage object or a BigQuery table.
func IsRemote(uri string) bool {
	return strings.HasPrefix(uri, gcsScheme) || strings.HasPrefix(uri, BigQueryScheme)
}

// ParseBigQueryURI parses bq://dataset.table?start=YYYY-MM-DD&end=YYYY-MM-DD.
// Both dates are required and inclusive.
func ParseBigQueryURI(uri string) (WarehouseQuery, error) {
	if !strings.HasPrefix(uri, BigQueryScheme) {
		return WarehouseQuery{}, fmt.Errorf("invalid BigQuery URI: %s", uri)
	}

	rest := strings.TrimPrefix(uri, BigQueryScheme)
	path, rawQuery, _ := strings.Cut(rest, "?")

	dataset, table, ok := strings.Cut(path, ".")
	if !ok || dataset == "" || table == "" {
		return WarehouseQuery{}, fmt.Errorf("invalid BigQuery URI (want dataset.table): %s", uri)
	}

	values, err := url.ParseQuery(rawQuery)
	if err != nil {
		return WarehouseQuery{}, fmt.Errorf("invalid BigQuery URI query: %w", err)
	}

	start, err := time.Parse("2006-01-02", values.Get("start"))
	if err != nil {
		return WarehouseQuery{}, fmt.Errorf("invalid start date %q: %w", values.Get("start"), err)
	}
	end, err := time.Parse("2006-01-02", values.Get("end"))
	if err != nil {
		return WarehouseQuery{}, fmt.Errorf("invalid end date %q: %w", values.Get("end"), err)
	}
	if end.Before(start) {
		return WarehouseQuery{}, fmt.Errorf("end date %s before start date %s", values.Get("end"), values.Get("start"))
	}

	return WarehouseQuery{
		Ref:   bq.TableRef{Dataset: dataset, Table: table},
		Start: start,
		End:   end,
	}, nil
}
