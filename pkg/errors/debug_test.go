package errors

import (
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestDumpExtractsPostgresDiagnostics(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "40001", Message: "could not serialize access", TableName: "products"}
	err := Wrap(CodeStockConflict, fmt.Errorf("commit: %w", pgErr), "checkout conflict")

	d := Dump(err)
	if d.Code != CodeStockConflict || !d.Retryable {
		t.Fatalf("unexpected code/retryable %s/%v", d.Code, d.Retryable)
	}
	if d.PGCode != "40001" || d.PGTable != "products" {
		t.Fatalf("postgres fields not extracted: %+v", d)
	}
	if len(d.Chain) != 3 {
		t.Fatalf("expected 3 chain entries got %d", len(d.Chain))
	}

	fields := d.Fields()
	if fields["pg_code"] != "40001" {
		t.Fatalf("expected pg_code field, got %v", fields["pg_code"])
	}
	if _, ok := fields["pg_constraint"]; ok {
		t.Fatalf("empty pg_constraint should be omitted")
	}
}

func TestDumpNil(t *testing.T) {
	if d := Dump(nil); d.TopMessage != "" || d.Chain != nil {
		t.Fatalf("expected zero dump, got %+v", d)
	}
}
