package gateway

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"CompteClient/internal/model"
)

// Column names written by the aggregation job.
const (
	colProductName      = "nom_produit"
	colAvailableBalance = "AvailableBalance"
	colBranchName       = "nom_agence"
	colAmount           = "montant"
	colAccountCount     = "nombre_de_compte"
	colManager          = "gestionnaire"
	colTotalExposure    = "Total Encours"
)

var errNullValue = errors.New("null value")

// rawTable is a fully materialized query result.
type rawTable struct {
	name    string
	columns []string
	rows    [][]any
}

func readTable(ctx context.Context, db *sql.DB, table string) (*rawTable, error) {
	rows, err := db.QueryContext(ctx, "SELECT * FROM "+table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns: %w", err)
	}

	t := &rawTable{name: table, columns: cols}
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan row %d: %w", len(t.rows), err)
		}
		t.rows = append(t.rows, vals)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *rawTable) index(col string) (int, error) {
	for i, c := range t.columns {
		if c == col {
			return i, nil
		}
	}
	return -1, fmt.Errorf("missing column %q (have %s)", col, strings.Join(t.columns, ", "))
}

func (t *rawTable) indexes(cols ...string) ([]int, error) {
	idx := make([]int, len(cols))
	for i, c := range cols {
		n, err := t.index(c)
		if err != nil {
			return nil, err
		}
		idx[i] = n
	}
	return idx, nil
}

// amount converts a cell to a decimal. A bad cell is recorded as a field issue
// and yields an invalid value.
func (t *rawTable) amount(ds *model.Dataset, row, col int) decimal.NullDecimal {
	d, err := toDecimal(t.rows[row][col])
	if err != nil {
		ds.Issues = append(ds.Issues, model.FieldIssue{Table: t.name, Row: row, Column: t.columns[col], Err: err})
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}

func (t *rawTable) count(ds *model.Dataset, row, col int) sql.NullInt64 {
	n, err := toInt(t.rows[row][col])
	if err != nil {
		ds.Issues = append(ds.Issues, model.FieldIssue{Table: t.name, Row: row, Column: t.columns[col], Err: err})
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: n, Valid: true}
}

func (t *rawTable) text(row, col int) string {
	return toText(t.rows[row][col])
}

func fillProducts(t *rawTable, ds *model.Dataset) error {
	idx, err := t.indexes(colProductName, colAvailableBalance)
	if err != nil {
		return err
	}
	ds.Products = make([]model.ProductExposure, len(t.rows))
	for i := range t.rows {
		ds.Products[i] = model.ProductExposure{
			ProductName:      t.text(i, idx[0]),
			AvailableBalance: t.amount(ds, i, idx[1]),
		}
	}
	return nil
}

func fillBranches(t *rawTable, ds *model.Dataset) error {
	idx, err := t.indexes(colBranchName, colAmount, colAccountCount)
	if err != nil {
		return err
	}
	ds.Branches = make([]model.BranchDistribution, len(t.rows))
	for i := range t.rows {
		ds.Branches[i] = model.BranchDistribution{
			BranchName:   t.text(i, idx[0]),
			Amount:       t.amount(ds, i, idx[1]),
			AccountCount: t.count(ds, i, idx[2]),
		}
	}
	return nil
}

func fillManagers(t *rawTable, ds *model.Dataset) error {
	idx, err := t.indexes(colManager, colAmount, colAccountCount)
	if err != nil {
		return err
	}
	ds.Managers = make([]model.ManagerPerformance, len(t.rows))
	for i := range t.rows {
		ds.Managers[i] = model.ManagerPerformance{
			Manager:      t.text(i, idx[0]),
			Amount:       t.amount(ds, i, idx[1]),
			AccountCount: t.count(ds, i, idx[2]),
		}
	}
	return nil
}

// Row index columns written by a dataframe export (to_sql with index=True,
// or a second reset_index).
var indexColumns = map[string]bool{"index": true, "level_0": true}

// fillTopDepositors takes the identity from the first column that is neither
// the exposure column nor a row index. A table holding only a row index
// besides the exposure falls back to it.
func fillTopDepositors(t *rawTable, ds *model.Dataset) error {
	exp, err := t.index(colTotalExposure)
	if err != nil {
		return err
	}
	id, fallback := -1, -1
	for i, c := range t.columns {
		if i == exp {
			continue
		}
		if indexColumns[c] {
			if fallback < 0 {
				fallback = i
			}
			continue
		}
		id = i
		break
	}
	if id < 0 {
		id = fallback
	}
	if id < 0 {
		return fmt.Errorf("no depositor column besides %q", colTotalExposure)
	}
	ds.TopDepositors = make([]model.TopDepositor, len(t.rows))
	for i := range t.rows {
		ds.TopDepositors[i] = model.TopDepositor{
			Depositor:     t.text(i, id),
			TotalExposure: t.amount(ds, i, exp),
		}
	}
	return nil
}

func toDecimal(v any) (decimal.Decimal, error) {
	switch x := v.(type) {
	case nil:
		return decimal.Zero, errNullValue
	case int64:
		return decimal.NewFromInt(x), nil
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return decimal.Zero, fmt.Errorf("not a finite number: %v", x)
		}
		return decimal.NewFromFloat(x), nil
	case []byte:
		return decimal.NewFromString(strings.TrimSpace(string(x)))
	case string:
		return decimal.NewFromString(strings.TrimSpace(x))
	}
	return decimal.Zero, fmt.Errorf("unsupported type %T", v)
}

func toInt(v any) (int64, error) {
	switch x := v.(type) {
	case nil:
		return 0, errNullValue
	case int64:
		return x, nil
	case float64:
		if x != math.Trunc(x) || math.IsInf(x, 0) {
			return 0, fmt.Errorf("not an integer: %v", x)
		}
		return int64(x), nil
	case []byte:
		return strconv.ParseInt(strings.TrimSpace(string(x)), 10, 64)
	case string:
		return strconv.ParseInt(strings.TrimSpace(x), 10, 64)
	}
	return 0, fmt.Errorf("unsupported type %T", v)
}

func toText(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case time.Time:
		return x.Format(time.DateOnly)
	}
	return fmt.Sprint(v)
}
