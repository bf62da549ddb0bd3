package protocol

import "testing"

func TestCRC16(t *testing.T) {
	testCases := []struct {
		data     []byte
		expected uint16
	}{
		{
			data:     []byte("123456789"),
			expected: 0x6F91, // CRC-16/MCRF4XX check value
		},
		{
			data:     []byte{},
			expected: 0xFFFF,
		},
		{
			data:     []byte{0x00},
			expected: 0x0F87,
		},
	}

	for i, tc := range testCases {
		result := CRC16(tc.data)
		if result != tc.expected {
			t.Errorf("Test case %d: CRC16(%v) = 0x%04X, want 0x%04X", i, tc.data, result, tc.expected)
		}
	}
}

func TestCRC16Residue(t *testing.T) {
	// A block followed by its own CRC, low byte first, checks to zero
	data := []byte{0xad, 0xbe, 0x00, 0x00, 0x01, 0x00, 0x08, 0x00}
	crc := CRC16(data)
	framed := append(data, byte(crc), byte(crc>>8))
	if got := CRC16(framed); got != 0 {
		t.Errorf("CRC16 over data+crc = 0x%04X, want 0", got)
	}

	data[7] ^= 0x01
	if CRC16(data) == crc {
		t.Error("single bit flip not detected")
	}
}

func TestCRC16Update(t *testing.T) {
	data := []byte("123456789")
	crc := CRC16Update(CRC16(data[:4]), data[4:])
	if crc != CRC16(data) {
		t.Errorf("chained CRC16 = 0x%04X, want 0x%04X", crc, CRC16(data))
	}
}
