package primitives

import "testing"

func TestSignVerifyRoundTrip(t *testing.T) {
	var priv PrivateKey
	for i := range priv {
		priv[i] = byte(i + 1)
	}
	pub := PublicKeyFromPrivate(priv)
	msg := []byte("cement block 12345")

	sig := Sign(priv, msg)
	if !Verify(pub, msg, sig) {
		t.Fatal("expected signature to verify")
	}
}

func TestVerifyRejectsTamperedMessage(t *testing.T) {
	var priv PrivateKey
	priv[0] = 7
	pub := PublicKeyFromPrivate(priv)
	sig := Sign(priv, []byte("original"))
	if Verify(pub, []byte("tampered"), sig) {
		t.Fatal("expected verification to fail for tampered message")
	}
}

func TestVerifyRejectsWrongKey(t *testing.T) {
	var priv1, priv2 PrivateKey
	priv1[0], priv2[0] = 1, 2
	pub2 := PublicKeyFromPrivate(priv2)
	sig := Sign(priv1, []byte("msg"))
	if Verify(pub2, []byte("msg"), sig) {
		t.Fatal("expected verification to fail for wrong public key")
	}
}

func TestAddressRoundTripDerivedKey(t *testing.T) {
	var priv PrivateKey
	priv[3] = 99
	pub := PublicKeyFromPrivate(priv)

	addr := EncodeAddress(pub)
	decoded, err := DecodeAddress(addr)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded != pub {
		t.Fatalf("round trip mismatch: got %s want %s", decoded, pub)
	}
}

func TestDecodeAddressRejectsBadChecksumDerivedKey(t *testing.T) {
	var priv PrivateKey
	priv[3] = 99
	pub := PublicKeyFromPrivate(priv)
	addr := EncodeAddress(pub)
	// flip the last character of the checksum
	mutated := addr[:len(addr)-1] + "9"
	if mutated == addr {
		mutated = addr[:len(addr)-1] + "8"
	}
	if _, err := DecodeAddress(mutated); err == nil {
		t.Fatal("expected checksum error")
	}
}
