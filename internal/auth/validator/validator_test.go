package validator

import (
	"testing"

	"consulting_leads_backend/internal/auth/transport"
	"consulting_leads_backend/platform/validator"
)

func TestIsStrongPassword(t *testing.T) {
	tests := []struct {
		password string
		want     bool
	}{
		{"Sh0rt!", false},
		{"alllowercase1!", false},
		{"ALLUPPERCASE1!", false},
		{"NoDigitsHere!!", false},
		{"NoSpecials1234", false},
		{"Consult1ng-Leads", true},
	}
	for _, tt := range tests {
		if got := IsStrongPassword(tt.password); got != tt.want {
			t.Errorf("IsStrongPassword(%q) = %v, want %v", tt.password, got, tt.want)
		}
	}
}

func TestRegisterEnablesRule(t *testing.T) {
	v := validator.New()
	if err := Register(v); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := v.Struct(transport.CreateAdminRequest{Email: "ops@acme.com", Password: "weak"}); err == nil {
		t.Fatal("expected weak password to fail")
	}
	if err := v.Struct(transport.CreateAdminRequest{Email: "ops@acme.com", Password: "Consult1ng-Leads"}); err != nil {
		t.Fatalf("expected strong password to pass: %v", err)
	}
}
