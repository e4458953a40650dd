package digest

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"
)

func TestSumMatchesConcatenation(t *testing.T) {
	// Sum over parts equals a single hash of the concatenated input.
	want := sha256.Sum256([]byte("alice" + "17" + "abc"))
	if got := Sum("alice", "17", "abc"); got != hex.EncodeToString(want[:]) {
		t.Fatalf("Sum parts = %s, want %s", got, hex.EncodeToString(want[:]))
	}
}

func TestSumDeterministic(t *testing.T) {
	if Sum("a", "b") != Sum("a", "b") {
		t.Fatal("identical inputs must produce identical digests")
	}
	if Sum("a", "b") == Sum("b", "a") {
		t.Fatal("part order must affect the digest")
	}
}

func TestIsWellFormed(t *testing.T) {
	if !IsWellFormed(Sum("x")) {
		t.Fatal("Sum output must be well formed")
	}
	for _, s := range []string{"", "abc", Sum("x") + "00", "g" + Sum("x")[1:]} {
		if IsWellFormed(s) {
			t.Fatalf("%q should not be well formed", s)
		}
	}
}
