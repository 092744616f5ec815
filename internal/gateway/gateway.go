package gateway

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"

	"CompteClient/internal/model"
)

// Supported store drivers.
const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

const mysqlDialTimeout = 10 * time.Second

// Gateway reads the four aggregate tables. The dataset is loaded at most once
// per Gateway; every later Load returns the same value.
type Gateway struct {
	driver string
	dsn    string

	cell    *Cell[*model.Dataset]
	queries atomic.Int64
}

// New creates a Gateway for the given driver and data source. For sqlite the
// data source is the database file path.
func New(driver, dsn string) *Gateway {
	g := &Gateway{driver: driver, dsn: dsn}
	g.cell = NewCell(g.fetch)
	return g
}

// Load returns the cached dataset, reading the store on first use. Any store
// failure is reported as model.ErrDataUnavailable and no partial dataset is
// returned.
func (g *Gateway) Load(ctx context.Context) (*model.Dataset, error) {
	return g.cell.Get(ctx)
}

// State reports whether the dataset is loaded.
func (g *Gateway) State() State { return g.cell.State() }

// Queries returns how many times the store has been read.
func (g *Gateway) Queries() int64 { return g.queries.Load() }

func (g *Gateway) fetch(ctx context.Context) (*model.Dataset, error) {
	g.queries.Add(1)
	start := time.Now()

	db, err := g.open()
	if err != nil {
		return nil, model.NewDataUnavailableError("open store", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return nil, model.NewDataUnavailableError("connect store", err)
	}

	ds := &model.Dataset{}
	tables := []struct {
		name string
		fill func(*rawTable, *model.Dataset) error
	}{
		{model.TableProductExposure, fillProducts},
		{model.TableBranchDistribution, fillBranches},
		{model.TableManagerPerformance, fillManagers},
		{model.TableTopDepositors, fillTopDepositors},
	}
	for _, t := range tables {
		raw, err := readTable(ctx, db, t.name)
		if err != nil {
			return nil, model.NewDataUnavailableError("query "+t.name, err)
		}
		if err := t.fill(raw, ds); err != nil {
			return nil, model.NewDataUnavailableError("read "+t.name, err)
		}
	}
	ds.LoadedAt = time.Now()

	for _, is := range ds.Issues {
		log.Printf("[WARN] %v", is)
	}
	log.Printf("[INFO] aggregates loaded in %v: %d products, %d branches, %d managers, %d depositors",
		time.Since(start).Round(time.Millisecond), len(ds.Products), len(ds.Branches), len(ds.Managers), len(ds.TopDepositors))
	return ds, nil
}

func (g *Gateway) open() (*sql.DB, error) {
	var (
		db  *sql.DB
		err error
	)
	switch g.driver {
	case DriverSQLite:
		db, err = openSQLite(g.dsn)
	case DriverMySQL:
		db, err = openMySQL(g.dsn)
	default:
		return nil, fmt.Errorf("unsupported driver %q", g.driver)
	}
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	return db, nil
}

// openSQLite opens an existing database file read-only. A missing file is an
// error instead of a new empty database.
func openSQLite(path string) (*sql.DB, error) {
	if !strings.HasPrefix(path, "file:") {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("stat sqlite database: %w", err)
		}
		path = "file:" + path + "?mode=ro"
	}
	db, err := sql.Open(DriverSQLite, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	return db, nil
}

func openMySQL(dsn string) (*sql.DB, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse mysql dsn: %w", err)
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = mysqlDialTimeout
	}
	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, fmt.Errorf("mysql connector: %w", err)
	}
	return sql.OpenDB(connector), nil
}
