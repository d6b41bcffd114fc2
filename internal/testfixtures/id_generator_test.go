package testfixtures

import "testing"

func TestIDGeneratorSequence(t *testing.T) {
	gen := NewIDGenerator("client")
	if got := gen.Next(); got != "client-1" {
		t.Fatalf("first id = %q", got)
	}
	if got := gen.Next(); got != "client-2" {
		t.Fatalf("second id = %q", got)
	}
}

func TestIDGeneratorDefaultPrefix(t *testing.T) {
	gen := NewIDGenerator("")
	if got := gen.Next(); got != "id-1" {
		t.Fatalf("id = %q", got)
	}
}

func TestIDGeneratorNextFuncNilReceiver(t *testing.T) {
	var gen *IDGenerator
	if got := gen.NextFunc()(); got != "" {
		t.Fatalf("nil generator produced %q", got)
	}
}
