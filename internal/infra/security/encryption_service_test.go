//go:build !integration

package security

import (
	"strings"
	"testing"
)

func TestEncryptionService_RoundTrip(t *testing.T) {
	svc, err := NewEncryptionService("0123456789abcdef0123456789abcdef")
	if err != nil {
		t.Fatalf("NewEncryptionService: %v", err)
	}

	for _, plaintext := range []string{"", "pw", "a much longer credential with spaces", "非ASCII密码"} {
		ct, err := svc.Encrypt(plaintext)
		if err != nil {
			t.Fatalf("Encrypt(%q): %v", plaintext, err)
		}
		if strings.Contains(ct, plaintext) && plaintext != "" {
			t.Fatalf("ciphertext contains plaintext: %q", ct)
		}
		got, err := svc.Decrypt(ct)
		if err != nil {
			t.Fatalf("Decrypt: %v", err)
		}
		if got != plaintext {
			t.Fatalf("round trip = %q, want %q", got, plaintext)
		}
	}
}

func TestEncryptionService_NonceIsFresh(t *testing.T) {
	svc, _ := NewEncryptionService("0123456789abcdef")
	a, _ := svc.Encrypt("same input")
	b, _ := svc.Encrypt("same input")
	if a == b {
		t.Fatal("two encryptions of the same input must differ")
	}
}

func TestEncryptionService_RejectsBadInput(t *testing.T) {
	if _, err := NewEncryptionService("short"); err == nil {
		t.Fatal("short key accepted")
	}

	svc, _ := NewEncryptionService("0123456789abcdef")
	if _, err := svc.Decrypt("not base64!!"); err == nil {
		t.Fatal("garbage input accepted")
	}
	if _, err := svc.Decrypt("YWJj"); err == nil { // valid base64, too short
		t.Fatal("truncated ciphertext accepted")
	}

	// Tampering must be detected.
	other, _ := NewEncryptionService("fedcba9876543210")
	ct, _ := svc.Encrypt("secret")
	if _, err := other.Decrypt(ct); err == nil {
		t.Fatal("ciphertext decrypted under the wrong key")
	}
}
