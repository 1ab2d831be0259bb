package peerid

import "testing"

func TestGenerateAndRoundTrip(t *testing.T) {
	kp, err := Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	encoded := kp.EncodeBase64()
	decoded, err := DecodeKeypair(encoded)
	if err != nil {
		t.Fatalf("DecodeKeypair: %v", err)
	}

	if !decoded.Private.Equal(kp.Private) {
		t.Fatal("decoded private key does not match original")
	}
}

func TestFromPublicKeyStable(t *testing.T) {
	kp, err := Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	a := FromPublicKey(kp.Public)
	b := FromPublicKey(kp.Public)
	if a.String() != b.String() {
		t.Fatalf("expected stable id, got %q and %q", a.String(), b.String())
	}
	if a.IsZero() {
		t.Fatal("derived id should not be zero")
	}
}

func TestParseRoundTrip(t *testing.T) {
	kp, err := Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	id := FromPublicKey(kp.Public)

	parsed, err := Parse(id.String())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if parsed.String() != id.String() {
		t.Fatalf("expected %q, got %q", id.String(), parsed.String())
	}
}

func TestParseRejectsEmpty(t *testing.T) {
	if _, err := Parse(""); err == nil {
		t.Fatal("expected error for empty identity text")
	}
}

func TestParseRejectsInvalidBase58(t *testing.T) {
	if _, err := Parse("0OIl"); err == nil {
		t.Fatal("expected error for invalid base58 text")
	}
}
