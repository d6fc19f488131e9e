package app

import (
	"strings"
	"testing"
)

func TestHashPasswordShape(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	if len(hash) != storedHashLen {
		t.Fatalf("expected stored hash of %d chars, got %d", storedHashLen, len(hash))
	}
	if strings.ToLower(hash) != hash {
		t.Errorf("expected lowercase hex, got %q", hash)
	}
}

func TestHashPasswordSaltsPerCall(t *testing.T) {
	first, err := HashPassword("secret-password")
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	second, err := HashPassword("secret-password")
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	if first == second {
		t.Error("expected distinct hashes for the same password")
	}
	if !VerifyPassword(first, "secret-password") || !VerifyPassword(second, "secret-password") {
		t.Error("expected both hashes to verify against the original password")
	}
}

func TestVerifyPassword(t *testing.T) {
	hash, err := HashPassword("hunter2hunter2")
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}

	testCases := []struct {
		name     string
		stored   string
		password string
		want     bool
	}{
		{"correct password", hash, "hunter2hunter2", true},
		{"wrong password", hash, "hunter2hunter3", false},
		{"empty password", hash, "", false},
		{"empty stored hash", "", "hunter2hunter2", false},
		{"truncated stored hash", hash[:storedHashLen-1], "hunter2hunter2", false},
		{"overlong stored hash", hash + "00", "hunter2hunter2", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := VerifyPassword(tc.stored, tc.password); got != tc.want {
				t.Errorf("expected %v, got %v", tc.want, got)
			}
		})
	}
}
