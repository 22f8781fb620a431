package params

import "testing"

func TestNewDefaults(t *testing.T) {
	p := New(10, 1, 10)
	b := p.Bytes()

	if b[idxNumParams] != Size {
		t.Fatalf("NumParams = %d, want %d", b[idxNumParams], Size)
	}
	if b[idxManufacturer] != ManufacturerMERG {
		t.Fatalf("Manufacturer = %d, want %d", b[idxManufacturer], ManufacturerMERG)
	}
	if b[idxMaxEvents] != 10 {
		t.Fatalf("MaxEvents = %d, want 10", b[idxMaxEvents])
	}
	if b[idxNumEVs] != 1 {
		t.Fatalf("NumEVs = %d, want 1", b[idxNumEVs])
	}
	if b[idxNumNVs] != 10 {
		t.Fatalf("NumNVs = %d, want 10", b[idxNumNVs])
	}
	if b[idxBusType] != BusTypeCAN {
		t.Fatalf("BusType = %d, want %d", b[idxBusType], BusTypeCAN)
	}
	if b[idxMajorVersion] != 0 || b[idxMinorVersion] != 0 || b[idxFlags] != 0 {
		t.Fatalf("version/flags not zero by default: %+v", b)
	}
}

func TestSetters(t *testing.T) {
	p := New(10, 1, 10)

	p.SetFlags(0x01)
	p.SetModuleID(0x02)
	p.SetVersion(0x04, 0x05, 0x06)

	b := p.Bytes()
	if b[idxFlags] != 0x01 {
		t.Fatalf("Flags = %#x, want 0x01", b[idxFlags])
	}
	if b[idxModuleType] != 0x02 {
		t.Fatalf("ModuleType = %#x, want 0x02", b[idxModuleType])
	}
	if b[idxMajorVersion] != 0x04 || b[idxMinorVersion] != 0x05 || b[idxBeta] != 0x06 {
		t.Fatalf("version = %d/%d/%d, want 4/5/6", b[idxMajorVersion], b[idxMinorVersion], b[idxBeta])
	}
}
