package store

import "testing"

type fakeFlashOps struct {
	erased    bool
	programed []byte
	base      uint32
}

func (f *fakeFlashOps) EraseSector(offset uint32, size uint32) error {
	f.erased = true
	return nil
}

func (f *fakeFlashOps) Program(offset uint32, data []byte) error {
	f.base = offset
	f.programed = append([]byte(nil), data...)
	return nil
}

func TestFlashBackendCommitsOnlyWhenDirty(t *testing.T) {
	ops := &fakeFlashOps{}
	b := NewFlashBackend(ops, 0)

	b.Commit()
	if ops.erased {
		t.Fatalf("Commit erased flash with no writes pending")
	}

	b.WriteByte(5, 0x42)
	b.Commit()
	if !ops.erased {
		t.Fatalf("Commit did not erase after a write")
	}
	if got := ops.programed[5]; got != 0x42 {
		t.Fatalf("programmed[5] = %#x, want 0x42", got)
	}

	ops.erased = false
	b.Commit()
	if ops.erased {
		t.Fatalf("second Commit re-erased with nothing new dirty")
	}
}

func TestFlashBackendReadsErasedAsFF(t *testing.T) {
	b := NewFlashBackend(&fakeFlashOps{}, 0)
	if got := b.ReadByte(100); got != 0xFF {
		t.Fatalf("ReadByte on virgin sector = %#x, want 0xFF", got)
	}
}
