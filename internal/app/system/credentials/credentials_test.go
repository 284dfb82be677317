package credentials

import (
	"strings"
	"testing"
)

func TestNewTemporary(t *testing.T) {
	cred, err := NewTemporary()
	if err != nil {
		t.Fatalf("NewTemporary failed: %v", err)
	}
	if len(cred) != tempCredentialBytes*2 {
		t.Errorf("credential length = %d, want %d", len(cred), tempCredentialBytes*2)
	}
	if strings.ToLower(cred) != cred {
		t.Error("expected lowercase hex encoding")
	}

	other, err := NewTemporary()
	if err != nil {
		t.Fatalf("NewTemporary failed: %v", err)
	}
	if cred == other {
		t.Error("two credentials should not collide")
	}
}

func TestHashAndVerify(t *testing.T) {
	hash, err := Hash("s3cret-pass")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	if !strings.HasPrefix(hash, "$2") {
		t.Errorf("expected bcrypt hash, got %q", hash[:4])
	}
	if !Verify(hash, "s3cret-pass") {
		t.Error("Verify rejected the correct password")
	}
	if Verify(hash, "wrong") {
		t.Error("Verify accepted a wrong password")
	}
}
