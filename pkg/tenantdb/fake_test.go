package tenantdb_test

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/nabi-crm/nabi/pkg/tenantdb"
)

// fakeDB implements tenantdb.DB over in-memory tables. It understands
// only the SQL grammar the store generates, tracks which logical
// connection ran each statement, and refuses pool-level access while a
// transaction is open so tests can prove the bridge never splits
// identity declaration and query across connections.
type fakeDB struct {
	mu       sync.Mutex
	tables   map[string][]map[string]any
	nextConn int
	openTxs  int
	beginErr error
	execErr  error

	poolStatements []statement
	txs            []*fakeTx
}

type statement struct {
	connID int
	sql    string
	args   []any
}

func newFakeDB() *fakeDB {
	return &fakeDB{tables: make(map[string][]map[string]any)}
}

var errPoolDuringTx = errors.New("fake: pool-level access while a transaction is open")

func (db *fakeDB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.openTxs > 0 {
		return pgconn.CommandTag{}, errPoolDuringTx
	}
	db.poolStatements = append(db.poolStatements, statement{connID: 0, sql: sql, args: args})
	_, affected, err := db.run(sql, args)
	return fakeTag(affected), err
}

func (db *fakeDB) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.openTxs > 0 {
		return nil, errPoolDuringTx
	}
	db.poolStatements = append(db.poolStatements, statement{connID: 0, sql: sql, args: args})
	rows, _, err := db.run(sql, args)
	if err != nil {
		return nil, err
	}
	return newFakeRows(rows), nil
}

func (db *fakeDB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	rows, err := db.Query(ctx, sql, args...)
	if err != nil {
		return &fakeRow{err: err}
	}
	return &fakeRow{rows: rows.(*fakeRows)}
}

func (db *fakeDB) Begin(ctx context.Context) (tenantdb.Tx, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.beginErr != nil {
		return nil, db.beginErr
	}
	db.nextConn++
	db.openTxs++
	tx := &fakeTx{db: db, connID: db.nextConn}
	db.txs = append(db.txs, tx)
	return tx, nil
}

// fakeTx pins all its statements to one logical connection id.
type fakeTx struct {
	db         *fakeDB
	connID     int
	done       bool
	statements []statement
	settings   map[string]string
}

func (tx *fakeTx) record(sql string, args []any) {
	tx.statements = append(tx.statements, statement{connID: tx.connID, sql: sql, args: args})
}

func (tx *fakeTx) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	tx.db.mu.Lock()
	defer tx.db.mu.Unlock()
	if tx.done {
		return pgconn.CommandTag{}, pgx.ErrTxClosed
	}
	tx.record(sql, args)
	if settings, ok := parseSetConfig(sql, args); ok {
		tx.settings = settings
		return fakeTag(1), nil
	}
	_, affected, err := tx.db.run(sql, args)
	return fakeTag(affected), err
}

func (tx *fakeTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	tx.db.mu.Lock()
	defer tx.db.mu.Unlock()
	if tx.done {
		return nil, pgx.ErrTxClosed
	}
	tx.record(sql, args)
	rows, _, err := tx.db.run(sql, args)
	if err != nil {
		return nil, err
	}
	return newFakeRows(rows), nil
}

func (tx *fakeTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	rows, err := tx.Query(ctx, sql, args...)
	if err != nil {
		return &fakeRow{err: err}
	}
	return &fakeRow{rows: rows.(*fakeRows)}
}

func (tx *fakeTx) Commit(ctx context.Context) error {
	tx.db.mu.Lock()
	defer tx.db.mu.Unlock()
	if tx.done {
		return pgx.ErrTxClosed
	}
	tx.done = true
	tx.db.openTxs--
	return nil
}

func (tx *fakeTx) Rollback(ctx context.Context) error {
	tx.db.mu.Lock()
	defer tx.db.mu.Unlock()
	if tx.done {
		return pgx.ErrTxClosed
	}
	tx.done = true
	tx.db.openTxs--
	return nil
}

var setConfigPattern = regexp.MustCompile(`set_config\('([a-z_.]+)', \$(\d+), true\)`)

func parseSetConfig(sql string, args []any) (map[string]string, bool) {
	if !strings.Contains(sql, "set_config(") {
		return nil, false
	}
	settings := make(map[string]string)
	for _, m := range setConfigPattern.FindAllStringSubmatch(sql, -1) {
		var idx int
		fmt.Sscanf(m[2], "%d", &idx)
		settings[m[1]] = fmt.Sprint(args[idx-1])
	}
	return settings, true
}

// run interprets one generated statement against the in-memory tables.
// Callers hold db.mu.
func (db *fakeDB) run(sqlStr string, args []any) ([]map[string]any, int64, error) {
	if db.execErr != nil {
		return nil, 0, db.execErr
	}
	switch {
	case strings.HasPrefix(sqlStr, "SELECT count(*) FROM "):
		table, where := splitTableWhere(strings.TrimPrefix(sqlStr, "SELECT count(*) FROM "))
		var n int64
		for _, row := range db.tables[table] {
			if matchWhere(row, where, args) {
				n++
			}
		}
		return []map[string]any{{"count": n}}, 1, nil

	case strings.HasPrefix(sqlStr, "SELECT * FROM "):
		table, where := splitTableWhere(strings.TrimPrefix(sqlStr, "SELECT * FROM "))
		var out []map[string]any
		for _, row := range db.tables[table] {
			if matchWhere(row, where, args) {
				out = append(out, row)
			}
		}
		return out, int64(len(out)), nil

	case strings.HasPrefix(sqlStr, "INSERT INTO "):
		return db.runInsert(sqlStr, args)

	case strings.HasPrefix(sqlStr, "UPDATE "):
		return db.runUpdate(sqlStr, args)

	case strings.HasPrefix(sqlStr, "DELETE FROM "):
		table, where := splitTableWhere(strings.TrimPrefix(sqlStr, "DELETE FROM "))
		kept := db.tables[table][:0]
		var n int64
		for _, row := range db.tables[table] {
			if matchWhere(row, where, args) {
				n++
				continue
			}
			kept = append(kept, row)
		}
		db.tables[table] = kept
		return nil, n, nil
	}
	return nil, 0, fmt.Errorf("fake: unsupported statement %q", sqlStr)
}

var (
	insertPattern = regexp.MustCompile(`^INSERT INTO "([a-z_]+)" \(([^)]*)\) VALUES (.+?)(?: ON CONFLICT \(([^)]*)\) DO UPDATE SET (.+?))?(?: RETURNING \*)?$`)
	updatePattern = regexp.MustCompile(`^UPDATE "([a-z_]+)" SET (.+?)(?: WHERE (.+))?$`)
	valuesPattern = regexp.MustCompile(`\(([^)]*)\)`)
	paramPattern  = regexp.MustCompile(`^\$(\d+)$`)
)

func unquoteCols(list string) []string {
	parts := strings.Split(list, ", ")
	for i, p := range parts {
		parts[i] = strings.Trim(p, `"`)
	}
	return parts
}

func argFor(token string, args []any) any {
	m := paramPattern.FindStringSubmatch(token)
	var idx int
	fmt.Sscanf(m[1], "%d", &idx)
	return args[idx-1]
}

func (db *fakeDB) runInsert(sqlStr string, args []any) ([]map[string]any, int64, error) {
	m := insertPattern.FindStringSubmatch(sqlStr)
	if m == nil {
		return nil, 0, fmt.Errorf("fake: unsupported insert %q", sqlStr)
	}
	table, cols := m[1], unquoteCols(m[2])

	var inserted []map[string]any
	for _, tuple := range valuesPattern.FindAllStringSubmatch(m[3], -1) {
		row := make(map[string]any, len(cols))
		for i, token := range strings.Split(tuple[1], ", ") {
			row[cols[i]] = argFor(token, args)
		}
		inserted = append(inserted, row)
	}

	if conflictCols := m[4]; conflictCols != "" {
		// Upsert: at most one tuple by construction.
		row := inserted[0]
		for i, existing := range db.tables[table] {
			same := true
			for _, col := range unquoteCols(conflictCols) {
				if fmt.Sprint(existing[col]) != fmt.Sprint(row[col]) {
					same = false
					break
				}
			}
			if same {
				for _, assignment := range strings.Split(m[5], ", ") {
					col := strings.Trim(strings.SplitN(assignment, " = ", 2)[0], `"`)
					existing[col] = row[col]
				}
				db.tables[table][i] = existing
				return []map[string]any{existing}, 1, nil
			}
		}
	}

	db.tables[table] = append(db.tables[table], inserted...)
	return inserted, int64(len(inserted)), nil
}

func (db *fakeDB) runUpdate(sqlStr string, args []any) ([]map[string]any, int64, error) {
	m := updatePattern.FindStringSubmatch(sqlStr)
	if m == nil {
		return nil, 0, fmt.Errorf("fake: unsupported update %q", sqlStr)
	}
	table, setClause, where := m[1], m[2], m[3]

	var n int64
	for i, row := range db.tables[table] {
		if !matchWhere(row, where, args) {
			continue
		}
		for _, assignment := range strings.Split(setClause, ", ") {
			parts := strings.SplitN(assignment, " = ", 2)
			row[strings.Trim(parts[0], `"`)] = argFor(parts[1], args)
		}
		db.tables[table][i] = row
		n++
	}
	return nil, n, nil
}

func splitTableWhere(rest string) (table, where string) {
	if idx := strings.Index(rest, " WHERE "); idx >= 0 {
		return strings.Trim(rest[:idx], `"`), rest[idx+len(" WHERE "):]
	}
	return strings.Trim(rest, `"`), ""
}

var predicatePattern = regexp.MustCompile(`^"([a-z_]+)" (=|>=|<) \$(\d+)$`)

func matchWhere(row map[string]any, where string, args []any) bool {
	if where == "" {
		return true
	}
	for _, pred := range strings.Split(where, " AND ") {
		if pred == "TRUE" {
			continue
		}
		if col, ok := strings.CutSuffix(pred, " IS NULL"); ok {
			if row[strings.Trim(col, `"`)] != nil {
				return false
			}
			continue
		}
		m := predicatePattern.FindStringSubmatch(pred)
		if m == nil {
			return false
		}
		var idx int
		fmt.Sscanf(m[3], "%d", &idx)
		got, want := row[m[1]], args[idx-1]
		switch m[2] {
		case "=":
			if fmt.Sprint(got) != fmt.Sprint(want) {
				return false
			}
		case ">=":
			if compareVals(got, want) < 0 {
				return false
			}
		case "<":
			if compareVals(got, want) >= 0 {
				return false
			}
		}
	}
	return true
}

func compareVals(a, b any) int {
	at, aok := a.(time.Time)
	bt, bok := b.(time.Time)
	if aok && bok {
		return at.Compare(bt)
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func fakeTag(affected int64) pgconn.CommandTag {
	return pgconn.NewCommandTag(fmt.Sprintf("FAKE %d", affected))
}

// fakeRows implements pgx.Rows over materialized result maps, in column
// order matching the first row's sorted keys.
type fakeRows struct {
	rows   []map[string]any
	cols   []string
	cursor int
	closed bool
	err    error
}

func newFakeRows(rows []map[string]any) *fakeRows {
	fr := &fakeRows{rows: rows, cursor: -1}
	if len(rows) > 0 {
		for col := range rows[0] {
			fr.cols = append(fr.cols, col)
		}
	}
	return fr
}

func (r *fakeRows) Close()                        { r.closed = true }
func (r *fakeRows) Err() error                    { return r.err }
func (r *fakeRows) CommandTag() pgconn.CommandTag { return fakeTag(int64(len(r.rows))) }
func (r *fakeRows) Conn() *pgx.Conn               { return nil }
func (r *fakeRows) RawValues() [][]byte           { return nil }

func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription {
	fds := make([]pgconn.FieldDescription, len(r.cols))
	for i, col := range r.cols {
		fds[i] = pgconn.FieldDescription{Name: col}
	}
	return fds
}

func (r *fakeRows) Next() bool {
	if r.closed {
		return false
	}
	r.cursor++
	return r.cursor < len(r.rows)
}

func (r *fakeRows) Values() ([]any, error) {
	row := r.rows[r.cursor]
	values := make([]any, len(r.cols))
	for i, col := range r.cols {
		values[i] = row[col]
	}
	return values, nil
}

func (r *fakeRows) Scan(dest ...any) error {
	if len(dest) == 1 {
		if rs, ok := dest[0].(pgx.RowScanner); ok {
			return rs.ScanRow(r)
		}
	}
	values, err := r.Values()
	if err != nil {
		return err
	}
	for i, d := range dest {
		switch p := d.(type) {
		case *int64:
			*p = values[i].(int64)
		case *string:
			*p = fmt.Sprint(values[i])
		case *any:
			*p = values[i]
		default:
			return fmt.Errorf("fake: unsupported scan destination %T", d)
		}
	}
	return nil
}

// fakeRow adapts fakeRows to the pgx.Row interface.
type fakeRow struct {
	rows *fakeRows
	err  error
}

func (r *fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if !r.rows.Next() {
		return pgx.ErrNoRows
	}
	defer r.rows.Close()
	return r.rows.Scan(dest...)
}
