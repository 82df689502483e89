package otquery

func u16(b []byte) uint16 {
	return uint16(b[0])<<8 | uint16(b[1])<<0
}

func u32(b []byte) uint32 {
	return uint32(u16(b[0:2]))<<16 | uint32(u16(b[2:4]))
}
