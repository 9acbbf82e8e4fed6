package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestStatusMapping(t *testing.T) {
	cases := []struct {
		kind Kind
		want int
	}{
		{KindNoToken, http.StatusUnauthorized},
		{KindInvalidToken, http.StatusUnauthorized},
		{KindForbidden, http.StatusForbidden},
		{KindValidation, http.StatusBadRequest},
		{KindNoGardenAssignment, http.StatusBadRequest},
		{KindNotFound, http.StatusNotFound},
		{KindConflict, http.StatusConflict},
		{KindGardenExists, http.StatusConflict},
		{KindInternal, http.StatusInternalServerError},
		{Kind("SOMETHING_ELSE"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := Status(tc.kind); got != tc.want {
			t.Errorf("Status(%s) = %d, want %d", tc.kind, got, tc.want)
		}
	}
}

func TestErrorsIsMatchesOnKind(t *testing.T) {
	err := Newf(KindConflict, "registration for event %s exists", "evt-1")
	if !errors.Is(err, New(KindConflict, "")) {
		t.Fatalf("expected kind match")
	}
	if errors.Is(err, New(KindNotFound, "")) {
		t.Fatalf("unexpected kind match")
	}
}

func TestKindOfWrappedError(t *testing.T) {
	inner := New(KindForbidden, "insufficient permissions")
	wrapped := fmt.Errorf("create task: %w", inner)
	if got := KindOf(wrapped); got != KindForbidden {
		t.Fatalf("KindOf = %s, want %s", got, KindForbidden)
	}
	if got := KindOf(errors.New("driver: bad connection")); got != KindInternal {
		t.Fatalf("KindOf unknown = %s, want %s", got, KindInternal)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("token expired")
	err := Wrap(KindInvalidToken, "invalid or expired token", cause)
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause in chain")
	}
	if err.Error() != "invalid or expired token" {
		t.Fatalf("cause leaked into message: %q", err.Error())
	}
}

func TestWithDataDoesNotMutateOriginal(t *testing.T) {
	base := New(KindGardenExists, "GARDEN_EXISTS_AT_ADDRESS")
	withData := base.WithData(map[string]any{"requiresUserChoice": true})
	if base.Data != nil {
		t.Fatalf("original error mutated")
	}
	if withData.Data == nil {
		t.Fatalf("payload missing")
	}
}
