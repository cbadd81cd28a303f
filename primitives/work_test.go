package primitives

import "testing"

func TestValidateWorkRejectsBelowThreshold(t *testing.T) {
	root := Blake2b256([]byte("root"))
	// work=0 will almost certainly not meet any real threshold.
	if ValidateWork(root, 0, WorkThresholdSend) {
		t.Fatal("did not expect work=0 to satisfy the send threshold")
	}
}

func TestWorkValueDeterministic(t *testing.T) {
	root := Blake2b256([]byte("root"))
	a := WorkValue(root, 12345)
	b := WorkValue(root, 12345)
	if a != b {
		t.Fatal("expected WorkValue to be deterministic")
	}
	if WorkValue(root, 1) == WorkValue(root, 2) {
		t.Fatal("expected different nonces to (almost certainly) differ")
	}
}
