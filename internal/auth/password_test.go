package auth

import "testing"

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("1234")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if hash == "1234" {
		t.Error("hash should not equal the plaintext password")
	}
	if !CheckPassword(hash, "1234") {
		t.Error("expected correct password to verify")
	}
	if CheckPassword(hash, "wrong") {
		t.Error("expected wrong password to fail")
	}
}

func TestCheckPasswordBadHash(t *testing.T) {
	if CheckPassword("not-a-bcrypt-hash", "1234") {
		t.Error("expected malformed hash to fail verification")
	}
}
