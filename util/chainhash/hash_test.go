package chainhash

import (
	"testing"
)

// TestHashStringRoundTrip encodes a hash to its hex string and back.
func TestHashStringRoundTrip(t *testing.T) {
	var hash Hash
	for i := range hash {
		hash[i] = byte(i * 7)
	}

	decoded, err := NewHashFromStr(hash.String())
	if err != nil {
		t.Fatalf("TestHashStringRoundTrip: NewHashFromStr "+
			"unexpectedly failed: %s", err)
	}
	if *decoded != hash {
		t.Fatalf("TestHashStringRoundTrip: round trip returned %s, want %s",
			decoded, hash)
	}

	_, err = NewHashFromStr("abcdef")
	if err == nil {
		t.Fatalf("TestHashStringRoundTrip: NewHashFromStr of a short string " +
			"unexpectedly succeeded")
	}

	_, err = NewHash([]byte{0x01, 0x02})
	if err == nil {
		t.Fatalf("TestHashStringRoundTrip: NewHash of a short slice " +
			"unexpectedly succeeded")
	}
}

// TestHashXor checks the checksum accumulator primitive: XOR is its own
// inverse.
func TestHashXor(t *testing.T) {
	var a, b Hash
	for i := range a {
		a[i] = byte(i)
		b[i] = byte(0xff - i)
	}

	accumulator := Hash{}
	accumulator.Xor(&a)
	accumulator.Xor(&b)
	accumulator.Xor(&a)
	if accumulator != b {
		t.Fatalf("TestHashXor: a^b^a is %s, want %s", accumulator, b)
	}
	accumulator.Xor(&b)
	if !accumulator.IsZero() {
		t.Fatalf("TestHashXor: accumulator did not return to zero")
	}
}

// TestHashIsEqual checks the nil-tolerant comparison.
func TestHashIsEqual(t *testing.T) {
	hash := Hash{0x01}
	same := Hash{0x01}
	other := Hash{0x02}

	if !hash.IsEqual(&same) {
		t.Fatalf("TestHashIsEqual: equal hashes compare unequal")
	}
	if hash.IsEqual(&other) {
		t.Fatalf("TestHashIsEqual: unequal hashes compare equal")
	}
	if hash.IsEqual(nil) {
		t.Fatalf("TestHashIsEqual: hash compares equal to nil")
	}
	var nilHash *Hash
	if !nilHash.IsEqual(nil) {
		t.Fatalf("TestHashIsEqual: nil hashes compare unequal")
	}
}
