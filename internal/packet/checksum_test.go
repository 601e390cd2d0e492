package packet

import "testing"

func TestInternetChecksumKnownVector(t *testing.T) {
	// RFC 1071's own worked example.
	data := []byte{0x00, 0x01, 0xf2, 0x03, 0xf4, 0xf5, 0xf6, 0xf7}
	got := internetChecksum(data)
	want := uint16(0x220d)
	if got != want {
		t.Fatalf("internetChecksum = %#04x, want %#04x", got, want)
	}
}

func TestInternetChecksumOddLength(t *testing.T) {
	a := internetChecksum([]byte{0x01, 0x02, 0x03})
	b := internetChecksum([]byte{0x01, 0x02, 0x03, 0x00})
	if a != b {
		t.Fatalf("odd-length checksum %#04x != zero-padded checksum %#04x", a, b)
	}
}

func TestChecksumWithPseudoHeaderZeroSum(t *testing.T) {
	got := checksumWithPseudoHeader([]byte{0xff, 0xff}, nil)
	if got != 0 {
		t.Fatalf("checksum = %#04x, want 0 when words sum to exactly 0xffff", got)
	}
}
