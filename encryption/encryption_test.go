package encryption

import (
	"strings"
	"testing"
)

func TestService_RoundTrip(t *testing.T) {
	svc, err := NewService("test-key")
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}

	plaintext := []byte(`{"access_token":"abc","refresh_token":"def"}`)
	ciphertext, err := svc.Encrypt(plaintext)
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	if strings.Contains(ciphertext, "abc") {
		t.Error("ciphertext leaks plaintext")
	}

	decrypted, err := svc.Decrypt(ciphertext)
	if err != nil {
		t.Fatalf("Decrypt failed: %v", err)
	}
	if string(decrypted) != string(plaintext) {
		t.Errorf("expected %q, got %q", plaintext, decrypted)
	}
}

func TestChaCha20_RoundTrip(t *testing.T) {
	svc, err := NewChaCha20("test-key")
	if err != nil {
		t.Fatalf("NewChaCha20 failed: %v", err)
	}

	plaintext := []byte("token record")
	ciphertext, err := svc.Encrypt(plaintext)
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	decrypted, err := svc.Decrypt(ciphertext)
	if err != nil {
		t.Fatalf("Decrypt failed: %v", err)
	}
	if string(decrypted) != string(plaintext) {
		t.Errorf("expected %q, got %q", plaintext, decrypted)
	}
}

func TestDecrypt_WrongKey(t *testing.T) {
	a, _ := NewService("key-a")
	b, _ := NewService("key-b")

	ciphertext, err := a.Encrypt([]byte("secret"))
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	if _, err := b.Decrypt(ciphertext); err == nil {
		t.Error("expected decryption failure with wrong key")
	}
}

func TestDecrypt_Corrupted(t *testing.T) {
	svc, _ := NewChaCha20("key")
	if _, err := svc.Decrypt("not-base64!!!"); err == nil {
		t.Error("expected error for invalid base64")
	}
	if _, err := svc.Decrypt("c2hvcnQ="); err == nil {
		t.Error("expected error for truncated ciphertext")
	}
}

func TestNew_AlgorithmSelection(t *testing.T) {
	enc, err := New("key")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, ok := enc.(*Service); !ok {
		t.Errorf("expected AES-GCM default, got %T", enc)
	}

	enc, err = New("key", WithAlgorithm(AlgorithmChaCha20))
	if err != nil {
		t.Fatalf("New with chacha20 failed: %v", err)
	}
	if _, ok := enc.(*ChaCha20Service); !ok {
		t.Errorf("expected ChaCha20, got %T", enc)
	}
}

func TestEncrypt_NonDeterministic(t *testing.T) {
	svc, _ := NewService("key")
	c1, _ := svc.Encrypt([]byte("same"))
	c2, _ := svc.Encrypt([]byte("same"))
	if c1 == c2 {
		t.Error("expected distinct ciphertexts for identical plaintexts")
	}
}
