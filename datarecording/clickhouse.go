package datarecording

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/tebeka/atexit"
)

// ClickHouseRecorder records run data into a ClickHouse database. It keeps
// type-specific batches so that flushing does not go through reflection.
type ClickHouseRecorder struct {
	conn      clickhouse.Conn
	mu        sync.Mutex
	batchSize int

	runInfoBatch   []runInfo
	telemetryBatch []telemetryRow

	tables map[string]chTableType

	entryCount int

	runLog *runRecorder
}

type chTableType int

const (
	chTableRunInfo chTableType = iota
	chTableTelemetry
)

// telemetryRow is the internal shape of one telemetry emission.
type telemetryRow struct {
	Tick      uint64
	PpCO2     float64
	Caution   bool
	Warning   bool
	Valid     bool
	Timestamp string
}

// ClickHouseConfig carries the connection parameters for a ClickHouse
// backend.
type ClickHouseConfig struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string

	// BatchSize is the number of entries buffered before an automatic
	// flush. Zero selects the default.
	BatchSize int
}

// NewClickHouseRecorder connects to ClickHouse and returns a recorder.
func NewClickHouseRecorder(cfg ClickHouseConfig) DataRecorder {
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 100000
	}

	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
		DialTimeout:      time.Second * 30,
		MaxOpenConns:     5,
		MaxIdleConns:     5,
		ConnMaxLifetime:  time.Hour,
		ConnOpenStrategy: clickhouse.ConnOpenInOrder,
		BlockBufferSize:  10,
	})
	if err != nil {
		panic(fmt.Errorf("failed to connect to ClickHouse: %w", err))
	}

	if err := conn.Ping(context.Background()); err != nil {
		panic(fmt.Errorf("failed to ping ClickHouse: %w", err))
	}

	r := &ClickHouseRecorder{
		conn:      conn,
		batchSize: cfg.BatchSize,
		tables:    make(map[string]chTableType),
	}

	atexit.Register(func() { r.Flush() })

	r.runLog = newRunRecorder(r)
	r.runLog.Start()

	return r
}

// CreateTable creates a table with a schema selected by the sample entry
// type.
func (r *ClickHouseRecorder) CreateTable(tableName string, sampleEntry any) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var createSQL string
	var tType chTableType

	switch sampleEntry.(type) {
	case runInfo:
		tType = chTableRunInfo
		createSQL = fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				Property String,
				Value String
			) ENGINE = MergeTree()
			ORDER BY Property
		`, tableName)

	default:
		if _, ok := asTelemetryRow(sampleEntry); !ok {
			panic(fmt.Sprintf("unknown table type: %T", sampleEntry))
		}

		tType = chTableTelemetry
		createSQL = fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				Tick UInt64,
				PpCO2 Float64,
				Caution Bool,
				Warning Bool,
				Valid Bool,
				Timestamp String
			) ENGINE = MergeTree()
			ORDER BY Tick
		`, tableName)
	}

	err := r.conn.Exec(context.Background(), createSQL)
	if err != nil {
		panic(fmt.Errorf("failed to create table %s: %w", tableName, err))
	}

	r.tables[tableName] = tType
}

// InsertData buffers one entry for the named table.
func (r *ClickHouseRecorder) InsertData(tableName string, entry any) {
	r.mu.Lock()

	tType, exists := r.tables[tableName]
	if !exists {
		r.mu.Unlock()
		panic(fmt.Sprintf("table %s does not exist", tableName))
	}

	switch tType {
	case chTableRunInfo:
		e, ok := entry.(runInfo)
		if !ok {
			r.mu.Unlock()
			panic(fmt.Sprintf("invalid entry type for run info: %T", entry))
		}
		r.runInfoBatch = append(r.runInfoBatch, e)

	case chTableTelemetry:
		row, ok := asTelemetryRow(entry)
		if !ok {
			r.mu.Unlock()
			panic(fmt.Sprintf("invalid entry type for telemetry: %T", entry))
		}
		r.telemetryBatch = append(r.telemetryBatch, row)

	default:
		r.mu.Unlock()
		panic(fmt.Sprintf("unknown table type: %d", tType))
	}

	r.entryCount++

	if r.entryCount >= r.batchSize {
		r.mu.Unlock()
		r.Flush()
		return
	}

	r.mu.Unlock()
}

// ListTables returns all table names.
func (r *ClickHouseRecorder) ListTables() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	tables := make([]string, 0, len(r.tables))
	for name := range r.tables {
		tables = append(tables, name)
	}

	return tables
}

// Flush writes all batched data using bulk inserts.
func (r *ClickHouseRecorder) Flush() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.entryCount == 0 {
		return
	}

	ctx := context.Background()

	for tableName, tType := range r.tables {
		switch tType {
		case chTableRunInfo:
			if len(r.runInfoBatch) > 0 {
				r.flushRunInfo(ctx, tableName)
			}
		case chTableTelemetry:
			if len(r.telemetryBatch) > 0 {
				r.flushTelemetry(ctx, tableName)
			}
		}
	}

	r.entryCount = 0
}

func (r *ClickHouseRecorder) flushRunInfo(
	ctx context.Context,
	tableName string,
) {
	batch, err := r.conn.PrepareBatch(ctx,
		fmt.Sprintf("INSERT INTO %s", tableName))
	if err != nil {
		panic(fmt.Errorf("failed to prepare batch for %s: %w",
			tableName, err))
	}

	for _, entry := range r.runInfoBatch {
		err = batch.Append(entry.Property, entry.Value)
		if err != nil {
			panic(fmt.Errorf("failed to append to batch: %w", err))
		}
	}

	err = batch.Send()
	if err != nil {
		panic(fmt.Errorf("failed to send batch: %w", err))
	}

	r.runInfoBatch = r.runInfoBatch[:0]
}

func (r *ClickHouseRecorder) flushTelemetry(
	ctx context.Context,
	tableName string,
) {
	batch, err := r.conn.PrepareBatch(ctx,
		fmt.Sprintf("INSERT INTO %s", tableName))
	if err != nil {
		panic(fmt.Errorf("failed to prepare batch for %s: %w",
			tableName, err))
	}

	for _, row := range r.telemetryBatch {
		err = batch.Append(
			row.Tick,
			row.PpCO2,
			row.Caution,
			row.Warning,
			row.Valid,
			row.Timestamp,
		)
		if err != nil {
			panic(fmt.Errorf("failed to append to batch: %w", err))
		}
	}

	err = batch.Send()
	if err != nil {
		panic(fmt.Errorf("failed to send batch: %w", err))
	}

	r.telemetryBatch = r.telemetryBatch[:0]
}

// Close flushes remaining data and closes the connection.
func (r *ClickHouseRecorder) Close() error {
	if r.runLog != nil {
		r.runLog.End()
		r.runLog = nil
	}

	r.Flush()

	err := r.conn.Close()
	if err != nil {
		return fmt.Errorf("failed to close ClickHouse connection: %w", err)
	}

	return nil
}
