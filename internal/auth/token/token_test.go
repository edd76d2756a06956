package token

import "testing"

func TestNewRefreshToken(t *testing.T) {
	raw, hash, err := NewRefreshToken()
	if err != nil {
		t.Fatalf("NewRefreshToken: %v", err)
	}
	if raw == "" || hash == "" || raw == hash {
		t.Fatalf("raw=%q hash=%q", raw, hash)
	}
	if HashSHA256(raw) != hash {
		t.Fatal("hash must be the SHA-256 of raw")
	}
	other, _, _ := NewRefreshToken()
	if other == raw {
		t.Fatal("tokens must be unique")
	}
}
