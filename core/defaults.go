package core

import "encoding/binary"

// factoryJingleWords is the jingle image shipped with the controller: 14
// jingles packed in the arena layout, stored as little-endian 32-bit words.
var factoryJingleWords = [JingleDataMaxBytes / 4]uint32{
	0x0000bead, 0x00227b0e, 0x00de0062, 0x0158012a,
	0x0196017a, 0x02a001dc, 0x02f602ce, 0x034c0318,
	0x0005036e, 0x005e0005, 0x00880417, 0x0497007f,
	0x00000088, 0x00010000, 0x05270033, 0x004f0088,
	0x00c70575, 0x05750054, 0x007b0088, 0x008806e0,
	0x00000000, 0x00330001, 0x00880620, 0x06e0004f,
	0x000a00c7, 0x0071000a, 0x00220575, 0x0527005c,
	0x00510022, 0x002204dd, 0x04170043, 0x003b0022,
	0x002203a4, 0x04170033, 0x00000022, 0x00010000,
	0x04dd002c, 0x00260022, 0x00220527, 0x05750021,
	0x00710022, 0x002206e0, 0x0620005c, 0x00510022,
	0x00220575, 0x05270043, 0x003b0022, 0x00220497,
	0x05270033, 0x00000022, 0x00010000, 0x0575002c,
	0x00260022, 0x00220620, 0x06e00021, 0x000a0022,
	0x00600002, 0x002f0dc0, 0x00000000, 0x007f0016,
	0x00410417, 0x00000000, 0x007d0003, 0x002c0dc0,
	0x00000000, 0x00000001, 0x00180000, 0x0417007b,
	0x00000048, 0x00410000, 0x04170075, 0x0000003e,
	0x01110000, 0x0dc0007f, 0x00050032, 0x005c0002,
	0x008802ba, 0x00000000, 0x00000088, 0x00010000,
	0x02ba0066, 0x00760088, 0x01180417, 0x00000000,
	0x00380199, 0x01190575, 0x00030002, 0x02ba0040,
	0x00560199, 0x02440417, 0x00000000, 0x00460111,
	0x011103a4, 0x0575008e, 0x000201bb, 0x00400002,
	0x00880575, 0x082d00c8, 0x00000062, 0x00440000,
	0x06e0007a, 0x000600a5, 0x005e0005, 0x00aa0417,
	0x00000000, 0x00000066, 0x00010000, 0x0370004b,
	0x00000066, 0x00220000, 0x0575007f, 0x00000066,
	0x00880000, 0x02ba002e, 0x000000aa, 0x00010000,
	0x00000000, 0x005e0022, 0x00660417, 0x001c0004,
	0x015d000e, 0x002a0332, 0x03100188, 0x00000000,
	0x00320022, 0x0332020b, 0x01d20030, 0x0000005b,
	0x000b0000, 0x01b80036, 0x00000084, 0x00050000,
	0x01d2003e, 0x00000057, 0x000f0000, 0x01b80038,
	0x00000083, 0x00060000, 0x01d20046, 0x00000044,
	0x01110000, 0x024b0058, 0x004c0066, 0x0084020b,
	0x00000000, 0x00520005, 0x0066024b, 0x020b0048,
	0x00000083, 0x00060000, 0x024b004e, 0x00000044,
	0x00010000, 0x00000000, 0x00660111, 0x006602ba,
	0x00000000, 0x00820001, 0x00850293, 0x00000000,
	0x007c0003, 0x006602ba, 0x02930090, 0x00000080,
	0x00010000, 0x00000000, 0x00aa0008, 0x015502ba,
	0x00000007, 0x0575007f, 0x00000032, 0x002f0000,
	0x0497007f, 0x0000003d, 0x00340000, 0x05750078,
	0x00000039, 0x00430000, 0x0497007f, 0x00030046,
	0x00460003, 0x008b0293, 0x00000000, 0x005a0020,
	0x00aa0293, 0x02ba0052, 0x0000008b, 0x00200000,
	0x02ba0046, 0x0002009e, 0x00470003, 0x01110575,
	0x03700032, 0x00260111, 0x008806e0, 0x04170022,
	0x00330111, 0x008802ba, 0x00030005, 0x0417005e,
	0x007f0088, 0x008803a4, 0x00000000, 0x00330001,
	0x00880370, 0x02ba004f, 0x000000c7, 0x01110000,
	0x05750054, 0x007b0088, 0x00cd06e0, 0x00000005,
	0x06200064, 0x00c800c8, 0x00c805c8, 0x05270064,
	0x00c800c8, 0x00c80527, 0x05c80064, 0x000b00d6,
	0x0000000b, 0x00040000, 0x03dc0056, 0x000000c6,
	0x00040000, 0x03a4005b, 0x000000ce, 0x00010000,
	0x00000000, 0x005b0006, 0x00ce0370, 0x00000000,
	0x003b0003, 0x00c10620, 0x00000000, 0x00610002,
	0x00d70293, 0x00000000, 0x00390006, 0x00c507b8,
	0x00000000, 0x00320005, 0x00ce0749, 0x00000000,
	0x00000001, 0x00040000, 0x06e0003f, 0x000000c8,
	0x000a0000, 0x0310005b, 0x000000bf, 0x00090000,
	0x05270035, 0x000000d5, 0x00000000,
}

// FactoryJingleCount is the number of jingles in the factory image.
const FactoryJingleCount = 14

// FactoryJingleData returns a copy of the factory image as raw arena bytes.
func FactoryJingleData() []byte {
	out := make([]byte, JingleDataMaxBytes)
	for i, w := range factoryJingleWords {
		binary.LittleEndian.PutUint32(out[i*4:], w)
	}
	return out
}
