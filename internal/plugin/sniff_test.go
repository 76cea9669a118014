package plugin

import (
	"bytes"
	"testing"
)

func TestSniffELF(t *testing.T) {
	data := append([]byte{0x7F, 'E', 'L', 'F'}, make([]byte, 60)...)
	k, err := Sniff(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if k != KindELF {
		t.Fatalf("expected KindELF, got %s", k)
	}
}

func TestSniffMachO(t *testing.T) {
	data := append([]byte{0xCF, 0xFA, 0xED, 0xFE}, make([]byte, 60)...)
	k, err := Sniff(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if k != KindMachO {
		t.Fatalf("expected KindMachO, got %s", k)
	}
}

func TestSniffPE(t *testing.T) {
	head := make([]byte, 0x40)
	head[0], head[1] = 'M', 'Z'
	// PE header offset stored at 0x3C, little-endian, pointing past the stub.
	peOffset := uint32(0x40)
	head[0x3C] = byte(peOffset)
	head[0x3D] = byte(peOffset >> 8)
	head[0x3E] = byte(peOffset >> 16)
	head[0x3F] = byte(peOffset >> 24)
	full := append(head, []byte{'P', 'E', 0, 0}...)

	k, err := Sniff(bytes.NewReader(full))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if k != KindPE {
		t.Fatalf("expected KindPE, got %s", k)
	}
}

func TestSniffUnknownForPlainText(t *testing.T) {
	k, err := Sniff(bytes.NewReader([]byte("let x = 1")))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if k != KindUnknown {
		t.Fatalf("expected KindUnknown for script source, got %s", k)
	}
}

func TestSniffEmptyReaderIsUnknown(t *testing.T) {
	k, err := Sniff(bytes.NewReader(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if k != KindUnknown {
		t.Fatalf("expected KindUnknown for empty input, got %s", k)
	}
}
