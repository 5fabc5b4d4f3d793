// Package database builds parameterised list queries with sanitized identifiers.
package database

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/jackc/pgx/v5"
)

type ConditionType string

const (
	Equal              ConditionType = "="
	NotEqual           ConditionType = "!="
	GreaterThan        ConditionType = ">"
	LessThan           ConditionType = "<"
	LessThanOrEqual    ConditionType = "<="
	GreaterThanOrEqual ConditionType = ">="
	ILike              ConditionType = "ILIKE"
	In                 ConditionType = "IN"
	defaultLimit                     = -1
	defaultOffset                    = -1
)

type Condition struct {
	Field string
	Type  ConditionType
	Value any
}

func WhereCond(field string, condType ConditionType, value any) Condition {
	return Condition{Field: field, Type: condType, Value: value}
}

// OptionalEqual returns field = *value, or nothing when value is nil.
func OptionalEqual[T any](field string, value *T) []Condition {
	if value == nil {
		return nil
	}
	return []Condition{WhereCond(field, Equal, *value)}
}

type orderTerm struct {
	column string
	dir    string
}

type ListQueryOptions struct {
	Table      string
	Columns    []string
	CountOnly  bool
	Conditions []Condition
	Limit      int
	Offset     int

	order []orderTerm
}

type ListQueryOption func(*ListQueryOptions)

func NewListQueryOptions(table string, opts ...ListQueryOption) *ListQueryOptions {
	options := &ListQueryOptions{
		Table:  table,
		Limit:  defaultLimit,
		Offset: defaultOffset,
	}
	for _, opt := range opts {
		opt(options)
	}
	return options
}

// WithColumns sets the columns to select.
func WithColumns(cols ...string) ListQueryOption {
	return func(o *ListQueryOptions) {
		o.Columns = cols
	}
}

// WithConditions appends conditions.
func WithConditions(conds ...Condition) ListQueryOption {
	return func(o *ListQueryOptions) {
		o.Conditions = append(o.Conditions, conds...)
	}
}

// WithOrderBy appends an ordering term. Calls accumulate in order.
func WithOrderBy(column, direction string) ListQueryOption {
	return func(o *ListQueryOptions) {
		o.order = append(o.order, orderTerm{column: column, dir: direction})
	}
}

// WithLimit sets the limit. Accepts 0.
func WithLimit(limit int) ListQueryOption {
	return func(o *ListQueryOptions) {
		if limit >= 0 {
			o.Limit = limit
		}
	}
}

// WithOffset sets the offset. Accepts 0.
func WithOffset(offset int) ListQueryOption {
	return func(o *ListQueryOptions) {
		if offset >= 0 {
			o.Offset = offset
		}
	}
}

// WithCountOnly sets the query to count only.
func WithCountOnly() ListQueryOption {
	return func(o *ListQueryOptions) {
		o.CountOnly = true
	}
}

// SplitColumns turns a comma-separated column list into identifiers.
func SplitColumns(list string) []string {
	parts := strings.Split(list, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// sanitizeIdentifier quotes ident, splitting qualified names like "table.column".
func sanitizeIdentifier(ident string) string {
	return pgx.Identifier(strings.Split(ident, ".")).Sanitize()
}

func buildSelectClause(options *ListQueryOptions) string {
	if options.CountOnly {
		return "SELECT COUNT(*) "
	}
	if len(options.Columns) == 0 {
		return "SELECT * "
	}
	cols := make([]string, len(options.Columns))
	for i, col := range options.Columns {
		cols[i] = sanitizeIdentifier(col)
	}
	return "SELECT " + strings.Join(cols, ", ") + " "
}

func buildOrderClause(order []orderTerm) string {
	if len(order) == 0 {
		return ""
	}
	terms := make([]string, 0, len(order))
	for _, t := range order {
		term := sanitizeIdentifier(t.column)
		if dir := strings.ToUpper(t.dir); dir == "ASC" || dir == "DESC" {
			term += " " + dir
		}
		terms = append(terms, term)
	}
	return " ORDER BY " + strings.Join(terms, ", ")
}

// BuildListQuery constructs a SQL query string and arguments from options.
//
//	query, args := BuildListQuery(NewListQueryOptions("complaints",
//		WithColumns("id", "status"),
//		WithConditions(WhereCond("student_id", Equal, id)),
//		WithOrderBy("created_at", "DESC"),
//		WithLimit(20),
//	))
func BuildListQuery(options *ListQueryOptions) (string, []any) {
	if options == nil {
		return "", nil
	}

	var query strings.Builder
	query.WriteString(buildSelectClause(options))
	query.WriteString("FROM ")
	query.WriteString(sanitizeIdentifier(options.Table))

	where, args := BuildWhere(options.Conditions...)
	query.WriteString(where)
	if options.CountOnly {
		return query.String(), args
	}

	query.WriteString(buildOrderClause(options.order))
	if options.Limit != defaultLimit {
		args = append(args, options.Limit)
		fmt.Fprintf(&query, " LIMIT $%d", len(args))
	}
	if options.Offset != defaultOffset {
		args = append(args, options.Offset)
		fmt.Fprintf(&query, " OFFSET $%d", len(args))
	}
	return query.String(), args
}

// BuildWhere renders conditions as " WHERE a AND b" with $1-based placeholders.
// Conditions with an empty field or an empty IN list are skipped.
func BuildWhere(conds ...Condition) (string, []any) {
	parts := make([]string, 0, len(conds))
	args := []any{}
	for _, cond := range conds {
		part, condArgs := processCondition(cond, len(args)+1)
		if part == "" {
			continue
		}
		parts = append(parts, part)
		args = append(args, condArgs...)
	}
	if len(parts) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(parts, " AND "), args
}

func processCondition(cond Condition, param int) (string, []any) {
	if cond.Field == "" {
		return "", nil
	}
	field := sanitizeIdentifier(cond.Field)

	switch cond.Type {
	case In:
		return handleInCondition(cond, field, param)
	case Equal, NotEqual, GreaterThan, LessThan, LessThanOrEqual, GreaterThanOrEqual, ILike:
		return fmt.Sprintf("%s %s $%d", field, cond.Type, param), []any{cond.Value}
	}
	return "", nil
}

func handleInCondition(cond Condition, field string, param int) (string, []any) {
	rv := reflect.ValueOf(cond.Value)
	if rv.Kind() != reflect.Slice || rv.Len() == 0 {
		return "", nil
	}
	placeholders := make([]string, rv.Len())
	args := make([]any, rv.Len())
	for i := range rv.Len() {
		placeholders[i] = fmt.Sprintf("$%d", param+i)
		args[i] = rv.Index(i).Interface()
	}
	return fmt.Sprintf("%s IN (%s)", field, strings.Join(placeholders, ", ")), args
}
