package apperr

import (
	"fmt"
	"net/http"
	"testing"
)

func TestKindSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("create booking: %w", Conflict("timeslot already booked").AsRetryable())
	if !Is(err, KindConflict) {
		t.Fatalf("expected conflict kind, got %v", KindOf(err))
	}
	if !IsRetryable(err) {
		t.Fatalf("expected retryable error")
	}
	if Is(fmt.Errorf("plain"), KindNotFound) {
		t.Fatalf("expected plain error to have unknown kind")
	}
}

func TestHTTPStatusAndCode(t *testing.T) {
	cases := []struct {
		err    *Error
		status int
		code   string
	}{
		{NotFound("x"), http.StatusNotFound, "not_found"},
		{Validation("x"), http.StatusUnprocessableEntity, "validation_failed"},
		{Conflict("x"), http.StatusConflict, "conflict"},
		{BadRequest("x"), http.StatusBadRequest, "bad_request"},
		{New(KindUnknown, "x"), http.StatusInternalServerError, "internal"},
	}
	for _, tc := range cases {
		if got := tc.err.HTTPStatus(); got != tc.status {
			t.Fatalf("kind %d: expected status %d, got %d", tc.err.Kind, tc.status, got)
		}
		if got := tc.err.Kind.Code(); got != tc.code {
			t.Fatalf("kind %d: expected code %q, got %q", tc.err.Kind, tc.code, got)
		}
	}
}
