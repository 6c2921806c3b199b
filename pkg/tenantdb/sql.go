package tenantdb

import (
	"fmt"
	"slices"
	"strings"

	"github.com/jackc/pgx/v5"
)

// SQL is generated, not hand-written, so the shape is kept deliberately
// small: equality and half-open range predicates, sorted column order for
// determinism, and positional arguments throughout. Identifiers are
// registry-validated and quoted anyway.

func quoteIdent(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

func sortedColumns(m map[string]any) []string {
	cols := make([]string, 0, len(m))
	for col := range m {
		cols = append(cols, col)
	}
	slices.Sort(cols)
	return cols
}

// appendWhere renders the filter as a WHERE clause, appending its values
// to args. Empty filters render nothing: reads may scan a whole table,
// while mutations guard against that before building SQL.
func appendWhere(sb *strings.Builder, filter Filter, args *[]any) {
	if len(filter) == 0 {
		return
	}
	sb.WriteString(" WHERE ")
	for i, col := range sortedColumns(filter) {
		if i > 0 {
			sb.WriteString(" AND ")
		}
		switch v := filter[col].(type) {
		case Range:
			wrote := false
			if v.From != nil {
				*args = append(*args, v.From)
				fmt.Fprintf(sb, "%s >= $%d", quoteIdent(col), len(*args))
				wrote = true
			}
			if v.To != nil {
				if wrote {
					sb.WriteString(" AND ")
				}
				*args = append(*args, v.To)
				fmt.Fprintf(sb, "%s < $%d", quoteIdent(col), len(*args))
				wrote = true
			}
			if !wrote {
				sb.WriteString("TRUE")
			}
		case nil:
			sb.WriteString(quoteIdent(col) + " IS NULL")
		default:
			*args = append(*args, v)
			fmt.Fprintf(sb, "%s = $%d", quoteIdent(col), len(*args))
		}
	}
}

func buildSelect(def Definition, filter Filter) (string, []any) {
	var sb strings.Builder
	var args []any
	sb.WriteString("SELECT * FROM " + quoteIdent(def.Table))
	appendWhere(&sb, filter, &args)
	return sb.String(), args
}

func buildCount(def Definition, filter Filter) (string, []any) {
	var sb strings.Builder
	var args []any
	sb.WriteString("SELECT count(*) FROM " + quoteIdent(def.Table))
	appendWhere(&sb, filter, &args)
	return sb.String(), args
}

func buildInsert(def Definition, rec Record) (string, []any) {
	cols := sortedColumns(rec)
	args := make([]any, 0, len(cols))
	quoted := make([]string, len(cols))
	params := make([]string, len(cols))
	for i, col := range cols {
		quoted[i] = quoteIdent(col)
		args = append(args, rec[col])
		params[i] = fmt.Sprintf("$%d", len(args))
	}
	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING *",
		quoteIdent(def.Table), strings.Join(quoted, ", "), strings.Join(params, ", "))
	return sql, args
}

func buildInsertMany(def Definition, recs []Record) (string, []any) {
	// Column set is the union across records; absent values insert NULL.
	colset := make(map[string]any)
	for _, rec := range recs {
		for col := range rec {
			colset[col] = nil
		}
	}
	cols := sortedColumns(colset)

	quoted := make([]string, len(cols))
	for i, col := range cols {
		quoted[i] = quoteIdent(col)
	}

	var args []any
	rows := make([]string, len(recs))
	for i, rec := range recs {
		params := make([]string, len(cols))
		for j, col := range cols {
			args = append(args, rec[col])
			params[j] = fmt.Sprintf("$%d", len(args))
		}
		rows[i] = "(" + strings.Join(params, ", ") + ")"
	}

	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s",
		quoteIdent(def.Table), strings.Join(quoted, ", "), strings.Join(rows, ", "))
	return sql, args
}

func buildUpdate(def Definition, filter Filter, change Record) (string, []any) {
	var sb strings.Builder
	var args []any
	sb.WriteString("UPDATE " + quoteIdent(def.Table) + " SET ")
	for i, col := range sortedColumns(change) {
		if i > 0 {
			sb.WriteString(", ")
		}
		args = append(args, change[col])
		fmt.Fprintf(&sb, "%s = $%d", quoteIdent(col), len(args))
	}
	appendWhere(&sb, filter, &args)
	return sb.String(), args
}

func buildDelete(def Definition, filter Filter) (string, []any) {
	var sb strings.Builder
	var args []any
	sb.WriteString("DELETE FROM " + quoteIdent(def.Table))
	appendWhere(&sb, filter, &args)
	return sb.String(), args
}

// buildUpsert inserts the merged filter+payload row and, on conflict with
// the filter columns, updates the payload columns in place.
func buildUpsert(def Definition, filter Filter, rec Record) (string, []any) {
	merged := make(Record, len(filter)+len(rec))
	for col, v := range filter {
		merged[col] = v
	}
	for col, v := range rec {
		merged[col] = v
	}

	cols := sortedColumns(merged)
	args := make([]any, 0, len(cols))
	quoted := make([]string, len(cols))
	params := make([]string, len(cols))
	for i, col := range cols {
		quoted[i] = quoteIdent(col)
		args = append(args, merged[col])
		params[i] = fmt.Sprintf("$%d", len(args))
	}

	conflictCols := sortedColumns(filter)
	for i, col := range conflictCols {
		conflictCols[i] = quoteIdent(col)
	}

	assignments := make([]string, 0, len(rec))
	for _, col := range sortedColumns(rec) {
		assignments = append(assignments, fmt.Sprintf("%s = EXCLUDED.%s", quoteIdent(col), quoteIdent(col)))
	}

	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) DO UPDATE SET %s RETURNING *",
		quoteIdent(def.Table),
		strings.Join(quoted, ", "),
		strings.Join(params, ", "),
		strings.Join(conflictCols, ", "),
		strings.Join(assignments, ", "))
	return sql, args
}
