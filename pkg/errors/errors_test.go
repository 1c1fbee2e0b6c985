package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestMetadataForKnownCodes(t *testing.T) {
	tests := []struct {
		code      Code
		status    int
		publicMsg string
		retryable bool
		detailsOK bool
	}{
		{code: CodeValidation, status: http.StatusBadRequest, publicMsg: "validation failed", detailsOK: true},
		{code: CodeNotFound, status: http.StatusNotFound, publicMsg: "resource not found"},
		{code: CodeConflict, status: http.StatusConflict, publicMsg: "conflict detected"},
		{code: CodeStateConflict, status: http.StatusUnprocessableEntity, publicMsg: "operation not allowed in the current event state", detailsOK: true},
		{code: CodeIdempotency, status: http.StatusConflict, publicMsg: "idempotency key reused with a different request", detailsOK: true},
		{code: CodeInternal, status: http.StatusInternalServerError, publicMsg: "internal server error", retryable: true},
		{code: CodeDependency, status: http.StatusServiceUnavailable, publicMsg: "dependency unavailable", retryable: true, detailsOK: true},
	}

	for _, tt := range tests {
		meta := MetadataFor(tt.code)
		if meta.HTTPStatus != tt.status {
			t.Fatalf("code %s expected status %d got %d", tt.code, tt.status, meta.HTTPStatus)
		}
		if meta.PublicMessage != tt.publicMsg {
			t.Fatalf("code %s expected public message %q got %q", tt.code, tt.publicMsg, meta.PublicMessage)
		}
		if meta.Retryable != tt.retryable {
			t.Fatalf("code %s expected retryable %v got %v", tt.code, tt.retryable, meta.Retryable)
		}
		if meta.DetailsAllowed != tt.detailsOK {
			t.Fatalf("code %s expected details allowed %v got %v", tt.code, tt.detailsOK, meta.DetailsAllowed)
		}
	}
}

func TestMetadataForUnknownCodeDefaultsToInternal(t *testing.T) {
	meta := MetadataFor("SOMETHING_UNKNOWN")
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal status, got %d", meta.HTTPStatus)
	}
}

func TestErrorConstructors(t *testing.T) {
	base := New(CodeValidation, "missing foo")
	if base.Code() != CodeValidation {
		t.Fatalf("expected validation code, got %s", base.Code())
	}
	if base.Message() != "missing foo" {
		t.Fatalf("unexpected message %q", base.Message())
	}
	if base.Details() != nil {
		t.Fatalf("details should be nil by default")
	}

	base.WithDetails(map[string]any{"field": "foo"})
	if base.Details() == nil {
		t.Fatalf("details should be preserved")
	}

	cause := stdErrors.New("boom")
	wrapped := Wrap(CodeConflict, cause, "ctx")
	if !stdErrors.Is(wrapped, cause) {
		t.Fatalf("Wrap did not preserve cause")
	}
	if wrapped.Code() != CodeConflict {
		t.Fatalf("unexpected code %s", wrapped.Code())
	}
}

func TestSentinelMatchingThroughWrapping(t *testing.T) {
	sentinel := New(CodeStateConflict, "event is locked")
	err := fmt.Errorf("delete transaction: %w", sentinel)

	if !stdErrors.Is(err, sentinel) {
		t.Fatal("expected errors.Is to match the sentinel")
	}
	if !HasCode(err, CodeStateConflict) {
		t.Fatal("expected HasCode to find the state conflict code")
	}
	if HasCode(err, CodeNotFound) {
		t.Fatal("unexpected code match")
	}
}

func TestValidationCarriesFieldDetails(t *testing.T) {
	err := Validation("lines[0].quantity", "must be at least 1")
	if err.Code() != CodeValidation {
		t.Fatalf("expected validation code, got %s", err.Code())
	}
	details, ok := err.Details().(map[string]string)
	if !ok || details["lines[0].quantity"] != "must be at least 1" {
		t.Fatalf("unexpected details %v", err.Details())
	}
	if got := Newf(CodeNotFound, "no exchange rate for %s", "JPY").Message(); got != "no exchange rate for JPY" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestIsRetryable(t *testing.T) {
	if IsRetryable(New(CodeStateConflict, "event is locked")) {
		t.Fatal("lock refusals are not retryable")
	}
	if !IsRetryable(Wrap(CodeDependency, stdErrors.New("db down"), "save transaction")) {
		t.Fatal("dependency failures are retryable")
	}
	if !IsRetryable(stdErrors.New("untyped")) {
		t.Fatal("untyped errors map to internal and are retryable")
	}
}

func TestAsReturnsTypedError(t *testing.T) {
	err := New(CodeNotFound, "no entry")
	if got := As(err); got == nil || got.Code() != CodeNotFound {
		t.Fatalf("As failed to return typed error")
	}
	if As(nil) != nil {
		t.Fatalf("As(nil) should return nil")
	}
}

func TestDumpCapturesPostgresDetails(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "products_event_name_key", TableName: "products", Message: "duplicate key value"}
	err := Wrap(CodeConflict, pgErr, "create product")

	dump := Dump(err)
	if dump.Code != CodeConflict {
		t.Fatalf("expected conflict code, got %s", dump.Code)
	}
	if dump.DBCode != "23505" || dump.DBConstraint != "products_event_name_key" || dump.DBTable != "products" {
		t.Fatalf("unexpected db details: %+v", dump)
	}
	if len(dump.Chain) != 2 {
		t.Fatalf("expected two chain entries, got %v", dump.Chain)
	}
	fields := dump.Fields()
	if _, ok := fields["db_detail"]; ok {
		t.Fatalf("empty db fields should be skipped: %v", fields)
	}
}
