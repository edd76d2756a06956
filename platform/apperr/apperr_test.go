package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatusByKind(t *testing.T) {
	cases := []struct {
		err  *Error
		want int
	}{
		{Validation("bad"), http.StatusBadRequest},
		{NotFound("missing"), http.StatusNotFound},
		{Conflict("dup"), http.StatusConflict},
		{Unauthorized("who"), http.StatusUnauthorized},
		{Forbidden("no"), http.StatusForbidden},
		{Internal("boom"), http.StatusInternalServerError},
		{Provider("mail down", errors.New("dial tcp")), http.StatusBadGateway},
	}

	for _, tc := range cases {
		if got := tc.err.HTTPStatus(); got != tc.want {
			t.Errorf("%q: status = %d, want %d", tc.err.Message, got, tc.want)
		}
	}
}

func TestKindOfSeesThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("submit: %w", Validation("name is required"))
	if !Is(wrapped, KindValidation) {
		t.Fatalf("expected wrapped validation error to keep its kind")
	}
	if Is(errors.New("plain"), KindValidation) {
		t.Fatalf("plain errors must report KindUnknown")
	}
}

func TestPersistenceKeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Persistence("leads.list", cause)
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause to be unwrappable")
	}
	if err.Error() != "leads.list: storage failure: connection reset" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}
