package wire

import "testing"

func TestHeaderRoundTrip(t *testing.T) {
	h := Header{
		NetworkMagic: NetworkLive,
		VersionMax:   20,
		VersionUsing: 19,
		VersionMin:   18,
		Type:         ConfirmAckType,
		Extensions:   0x3000,
	}
	buf := h.Encode()
	got, err := DecodeHeader(buf[:])
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got != h {
		t.Fatalf("round trip mismatch: got %+v want %+v", got, h)
	}
}

func TestDecodeHeaderRejectsRetiredType(t *testing.T) {
	h := Header{NetworkMagic: NetworkLive, Type: 0x09}
	buf := h.Encode()
	if _, err := DecodeHeader(buf[:]); err != ErrRetiredMessageType {
		t.Fatalf("expected ErrRetiredMessageType, got %v", err)
	}
}

func TestDecodeHeaderRejectsShortBuffer(t *testing.T) {
	if _, err := DecodeHeader([]byte{1, 2, 3}); err != ErrShortHeader {
		t.Fatalf("expected ErrShortHeader, got %v", err)
	}
}
