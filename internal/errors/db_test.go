package errors

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestMapDBError_Passthrough(t *testing.T) {
	if MapDBError(nil) != nil {
		t.Errorf("MapDBError(nil) should be nil")
	}
	plain := errors.New("plain")
	if !errors.Is(MapDBError(plain), plain) {
		t.Errorf("unrecognized errors should be returned unchanged")
	}
}

func TestMapDBError_ContextAndNoRows(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCode
	}{
		{"deadline", context.DeadlineExceeded, ErrCodeTimeout},
		{"canceled", context.Canceled, ErrCodeCanceled},
		{"wrapped canceled", fmt.Errorf("query: %w", context.Canceled), ErrCodeCanceled},
		{"no rows", pgx.ErrNoRows, ErrCodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(MapDBError(tt.err)); got != tt.want {
				t.Errorf("code = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMapDBError_UniqueViolation(t *testing.T) {
	tests := []struct {
		name      string
		pgErr     *pgconn.PgError
		wantField string
	}{
		{
			name:      "column metadata",
			pgErr:     &pgconn.PgError{Code: pgerrcode.UniqueViolation, ColumnName: "email"},
			wantField: "email",
		},
		{
			name:      "detail message",
			pgErr:     &pgconn.PgError{Code: pgerrcode.UniqueViolation, Detail: `Key (email)=(a@b.c) already exists.`},
			wantField: "email",
		},
		{
			name: "multi column detail falls back to constraint",
			pgErr: &pgconn.PgError{
				Code:           pgerrcode.UniqueViolation,
				ConstraintName: "user_roles_user_id_role_key",
				Detail:         `Key (user_id, role)=(u1, admin) already exists.`,
			},
			wantField: "",
		},
		{
			name:      "constraint name",
			pgErr:     &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "users_email_key"},
			wantField: "email",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := MapDBError(tt.pgErr)
			if !IsConflict(err) {
				t.Fatalf("want conflict, got %v", GetCode(err))
			}
			if GetField(err) != tt.wantField {
				t.Errorf("field = %q, want %q", GetField(err), tt.wantField)
			}
		})
	}
}

func TestMapDBError_ForeignKeyViolation(t *testing.T) {
	tests := []struct {
		name         string
		pgErr        *pgconn.PgError
		wantContains string
	}{
		{
			name: "parent still referenced",
			pgErr: &pgconn.PgError{
				Code:   pgerrcode.ForeignKeyViolation,
				Detail: `Key (id)=(u1) is still referenced from table "complaints".`,
			},
			wantContains: "in use by Complaint",
		},
		{
			name: "missing parent",
			pgErr: &pgconn.PgError{
				Code:   pgerrcode.ForeignKeyViolation,
				Detail: `Key (user_id)=(u9) is not present in table "users".`,
			},
			wantContains: "referenced Account does not exist",
		},
		{
			name:         "table metadata",
			pgErr:        &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation, TableName: "leave_applications"},
			wantContains: "Leave Application",
		},
		{
			name:         "nothing to go on",
			pgErr:        &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation},
			wantContains: "in use",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := MapDBError(tt.pgErr)
			if !IsForeignKey(err) {
				t.Fatalf("want foreign key, got %v", GetCode(err))
			}
			if !strings.Contains(err.Error(), tt.wantContains) {
				t.Errorf("message %q does not contain %q", err.Error(), tt.wantContains)
			}
		})
	}
}

func TestMapDBError_ValidationViolations(t *testing.T) {
	for _, code := range []string{pgerrcode.CheckViolation, pgerrcode.NotNullViolation} {
		withCol := MapDBError(&pgconn.PgError{Code: code, ColumnName: "status"})
		if !IsValidation(withCol) || GetField(withCol) != "status" {
			t.Errorf("%s with column: code=%v field=%q", code, GetCode(withCol), GetField(withCol))
		}
		noCol := MapDBError(&pgconn.PgError{Code: code})
		if !IsValidation(noCol) || GetField(noCol) != "" {
			t.Errorf("%s without column: code=%v field=%q", code, GetCode(noCol), GetField(noCol))
		}
	}
}

func TestMapDBError_UnknownPgError(t *testing.T) {
	err := MapDBError(&pgconn.PgError{Code: pgerrcode.DeadlockDetected})
	if !IsInternal(err) {
		t.Errorf("want internal, got %v", GetCode(err))
	}
}

func TestInferFieldFromConstraint(t *testing.T) {
	tests := map[string]string{
		"users_email_key":             "email",
		"users_lower_key":             "",
		"user_roles_user_id_role_key": "",
		"":                            "",
	}
	for in, want := range tests {
		if got := inferFieldFromConstraint(in); got != want {
			t.Errorf("inferFieldFromConstraint(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMapTableToDomain(t *testing.T) {
	tests := map[string]string{
		"complaints":       "Complaint",
		"  NOTICES ":       "Notice",
		"user_roles":       "Role Assignment",
		"some_other_table": "Some Other Table",
	}
	for in, want := range tests {
		if got := mapTableToDomain(in); got != want {
			t.Errorf("mapTableToDomain(%q) = %q, want %q", in, got, want)
		}
	}
}
