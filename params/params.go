// Package params builds the node's 20-byte parameter descriptor, the block
// a FLiM node reports in response to a parameter request: static vendor
// identity plus a handful of fields the node itself fills in from its
// Store sizing and firmware version.
package params

const (
	idxNumParams = iota
	idxManufacturer
	idxMinorVersion
	idxModuleType
	idxMaxEvents
	idxNumEVs
	idxNumNVs
	idxMajorVersion
	idxFlags
	idxCPUID
	idxBusType
	idxLoad
	idxCPUManID0
	idxCPUManID1
	idxCPUManID2
	idxCPUManID3
	idxCPUManufacturer
	idxBeta
	// two bytes of reserved padding round the block out to Size.
)

// Size is the fixed length of a parameter block.
const Size = 20

// Vendor constants baked into every parameter block this stack produces.
const (
	ManufacturerMERG  = 165
	BusTypeCAN        = 1
	CPUFamilyCortexM  = 50
	CPUManufacturerID = "2040"
	CPUManufacturerARM = 2
)

// Params is the node's 20-byte parameter descriptor.
type Params struct {
	bytes [Size]byte
}

// New builds a Params from the sizes of an already-configured Store: the
// number of node variables, event variables per event, and event slots.
func New(numNVs, numEVs, maxEvents uint8) *Params {
	p := &Params{}
	p.bytes[idxNumParams] = Size
	p.bytes[idxManufacturer] = ManufacturerMERG
	p.bytes[idxMaxEvents] = maxEvents
	p.bytes[idxNumEVs] = numEVs
	p.bytes[idxNumNVs] = numNVs
	p.bytes[idxCPUID] = CPUFamilyCortexM
	p.bytes[idxBusType] = BusTypeCAN
	p.bytes[idxCPUManID0] = CPUManufacturerID[0]
	p.bytes[idxCPUManID1] = CPUManufacturerID[1]
	p.bytes[idxCPUManID2] = CPUManufacturerID[2]
	p.bytes[idxCPUManID3] = CPUManufacturerID[3]
	p.bytes[idxCPUManufacturer] = CPUManufacturerARM
	return p
}

// Bytes returns the parameter block ready to send on the wire.
func (p *Params) Bytes() [Size]byte { return p.bytes }

// SetFlags sets the module's capability flags byte.
func (p *Params) SetFlags(flags byte) { p.bytes[idxFlags] = flags }

// SetModuleID sets the module type identifier.
func (p *Params) SetModuleID(id byte) { p.bytes[idxModuleType] = id }

// SetVersion sets the firmware's major, minor, and beta version numbers.
func (p *Params) SetVersion(major, minor, beta byte) {
	p.bytes[idxMajorVersion] = major
	p.bytes[idxMinorVersion] = minor
	p.bytes[idxBeta] = beta
}
