package frontend

// Region names a guest memory region addressable by a 16-bit offset.
// ReadRegion/WriteRegion apply the region's fixed mask internally; callers
// only ever see a full, unmasked 16-bit CPU or PPU-internal address.
type Region int

const (
	RegionRAM Region = iota
	RegionPRGRAM
	RegionPRGROM
	RegionPPUVRAM
	RegionPPUPalette
)
