package ctxutil

import (
	"context"
	"testing"
)

func TestWithUserID_And_UserIDFromCtx(t *testing.T) {
	t.Parallel()

	ctx := WithUserID(context.Background(), 42)

	got, ok := UserIDFromCtx(ctx)
	if !ok {
		t.Fatal("expected ok=true for valid user id")
	}
	if got != 42 {
		t.Fatalf("expected 42, got %d", got)
	}
}

func TestUserIDFromCtx_EmptyContext(t *testing.T) {
	t.Parallel()

	got, ok := UserIDFromCtx(context.Background())
	if ok {
		t.Fatal("expected ok=false for empty context")
	}
	if got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
}

func TestUserIDFromCtx_ZeroID(t *testing.T) {
	t.Parallel()

	ctx := WithUserID(context.Background(), 0)

	if _, ok := UserIDFromCtx(ctx); ok {
		t.Fatal("expected ok=false for zero id")
	}
}

func TestUserIDFromCtx_WrongType(t *testing.T) {
	t.Parallel()

	ctx := context.WithValue(context.Background(), ctxKey("user_id"), "42")

	if _, ok := UserIDFromCtx(ctx); ok {
		t.Fatal("expected ok=false for wrong type")
	}
}

func TestUserIDPtrFromCtx(t *testing.T) {
	t.Parallel()

	if p := UserIDPtrFromCtx(context.Background()); p != nil {
		t.Fatalf("expected nil for anonymous context, got %d", *p)
	}

	p := UserIDPtrFromCtx(WithUserID(context.Background(), 7))
	if p == nil || *p != 7 {
		t.Fatalf("expected pointer to 7, got %v", p)
	}
}

func TestWithRequestID_And_RequestIDFromCtx(t *testing.T) {
	t.Parallel()

	ctx := WithRequestID(context.Background(), "req-123")

	if got := RequestIDFromCtx(ctx); got != "req-123" {
		t.Fatalf("expected %q, got %q", "req-123", got)
	}
	if got := RequestIDFromCtx(context.Background()); got != "" {
		t.Fatalf("expected empty string, got %q", got)
	}
}
