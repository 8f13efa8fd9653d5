package oautherr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestDescribe(t *testing.T) {
	tests := []struct {
		kind       Kind
		wantStatus int
		wantCode   string
	}{
		{KindInvalidArgument, http.StatusInternalServerError, "invalid_argument"},
		{KindInvalidRequest, http.StatusBadRequest, "invalid_request"},
		{KindInvalidClient, http.StatusBadRequest, "invalid_client"},
		{KindUnauthorizedClient, http.StatusBadRequest, "unauthorized_client"},
		{KindUnsupportedGrantType, http.StatusBadRequest, "unsupported_grant_type"},
		{KindInvalidGrant, http.StatusBadRequest, "invalid_grant"},
		{KindInvalidToken, http.StatusUnauthorized, "invalid_token"},
		{KindInvalidScope, http.StatusBadRequest, "invalid_scope"},
		{KindServerError, http.StatusInternalServerError, "server_error"},
		{Kind(99), http.StatusInternalServerError, "server_error"},
	}

	for _, tt := range tests {
		t.Run(tt.wantCode, func(t *testing.T) {
			status, code := Describe(tt.kind)
			if status != tt.wantStatus {
				t.Errorf("status = %d, want %d", status, tt.wantStatus)
			}
			if code != tt.wantCode {
				t.Errorf("code = %q, want %q", code, tt.wantCode)
			}
		})
	}
}

func TestError_Error(t *testing.T) {
	err := InvalidGrant("Invalid code")
	if got, want := err.Error(), "invalid_grant: Invalid code"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	wrapped := Server(errors.New("connection refused"))
	if got, want := wrapped.Error(), "server_error: server_error: connection refused"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestError_Body(t *testing.T) {
	body := InvalidRequest(`No "code" parameter`).Body()
	if body.Code != http.StatusBadRequest {
		t.Errorf("Code = %d, want 400", body.Code)
	}
	if body.Error != CodeInvalidRequest {
		t.Errorf("Error = %q, want %q", body.Error, CodeInvalidRequest)
	}
	if body.ErrorDescription != `No "code" parameter` {
		t.Errorf("ErrorDescription = %q", body.ErrorDescription)
	}
}

func TestError_BodyHidesCause(t *testing.T) {
	body := Server(errors.New("dial tcp 10.0.0.3:6379: connection refused")).Body()
	if body.ErrorDescription != CodeServerError {
		t.Errorf("ErrorDescription = %q, internal cause must not be rendered", body.ErrorDescription)
	}
}

func TestError_WithStatus(t *testing.T) {
	base := InvalidClient("Client credentials are invalid")
	got := base.WithStatus(http.StatusUnauthorized)

	if got.StatusCode() != http.StatusUnauthorized {
		t.Errorf("StatusCode() = %d, want 401", got.StatusCode())
	}
	if base.StatusCode() != http.StatusBadRequest {
		t.Errorf("original error was modified: StatusCode() = %d", base.StatusCode())
	}
}

func TestNew_DefaultDescription(t *testing.T) {
	err := New(KindInvalidScope, "")
	if err.Description != CodeInvalidScope {
		t.Errorf("Description = %q, want %q", err.Description, CodeInvalidScope)
	}
}

func TestFrom(t *testing.T) {
	if From(nil) != nil {
		t.Fatal("From(nil) should return nil")
	}

	oauthErr := InvalidToken("The access token provided has expired.")
	wrapped := fmt.Errorf("authorise: %w", oauthErr)
	if got := From(wrapped); got != oauthErr {
		t.Errorf("From() did not unwrap the OAuth error")
	}

	plain := errors.New("boom")
	got := From(plain)
	if got.Kind != KindServerError {
		t.Errorf("Kind = %v, want server_error", got.Kind)
	}
	if !errors.Is(got, plain) {
		t.Error("collapsed error should keep the cause")
	}
}

func TestIs(t *testing.T) {
	err := fmt.Errorf("grant: %w", InvalidGrant("Invalid refresh token"))
	if !Is(err, KindInvalidGrant) {
		t.Error("Is(err, KindInvalidGrant) = false, want true")
	}
	if Is(err, KindInvalidRequest) {
		t.Error("Is(err, KindInvalidRequest) = true, want false")
	}
	if Is(errors.New("plain"), KindServerError) {
		t.Error("plain errors are not OAuth errors")
	}
}
