package utils

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/UltimateTournament/backoff/v4"
	"github.com/jackc/pgconn"
)

func TestDeref(t *testing.T) {
	if Deref[int64](nil, 60) != 60 {
		t.Fatal("expected fallback")
	}
	if Deref(Ptr[int64](5), 60) != 5 {
		t.Fatal("expected pointed value")
	}
}

func TestIsPermanent(t *testing.T) {
	perm := PermError("nope")
	if !IsPermanent(fmt.Errorf("error in thing: %w", perm)) {
		t.Fatal("wrapped PermError should be permanent")
	}
	if IsPermanent(errors.New("flaky")) {
		t.Fatal("plain error should not be permanent")
	}
}

func TestAsRetryable(t *testing.T) {
	if asRetryable(nil) != nil {
		t.Fatal("nil should stay nil")
	}

	var pe backoff.PermanentError
	err := asRetryable(&pgconn.PgError{Code: "42P01"})
	if !errors.As(err, &pe) || !pe.IsPermanent() {
		t.Fatal("undefined table should not be retried")
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "42P01" {
		t.Fatal("permanent error should still wrap the pg error")
	}

	err = asRetryable(&pgconn.PgError{Code: "40001"})
	if errors.As(err, &pe) {
		t.Fatal("serialization failure should be retried")
	}
}

func TestRetryStopsOnPermanent(t *testing.T) {
	tries := 0
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = time.Millisecond
	b.MaxElapsedTime = time.Second
	err := backoff.Retry(func() error {
		tries++
		return asRetryable(fmt.Errorf("error in query: %w", PermError("bad input")))
	}, b)
	if err == nil || tries != 1 {
		t.Fatalf("expected one try, got %d (%v)", tries, err)
	}
	if !IsPermanent(err) {
		t.Fatal("expected the PermError to come back")
	}

	tries = 0
	err = backoff.Retry(func() error {
		tries++
		if tries < 3 {
			return asRetryable(&pgconn.PgError{Code: "40001"})
		}
		return nil
	}, b)
	if err != nil || tries != 3 {
		t.Fatalf("expected 3 tries, got %d (%v)", tries, err)
	}
}

func TestIndexOfString(t *testing.T) {
	s := []string{"a", "b"}
	if IndexOfString(s, "b") != 1 || IndexOfString(s, "c") != -1 {
		t.Fatal("bad index")
	}
	if !ContainsString(s, "a") {
		t.Fatal("expected contains")
	}
}
