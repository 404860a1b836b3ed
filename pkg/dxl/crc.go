package dxl

import "github.com/sigurn/crc16"

// Protocol 2 uses CRC-16/BUYPASS: poly 0x8005, init 0, no reflection.
var crcTable = crc16.MakeTable(crc16.CRC16_BUYPASS)

// CRC16 computes the protocol 2 CRC of data.
func CRC16(data []byte) uint16 {
	return crc16.Checksum(data, crcTable)
}

func crcInit() uint16 {
	return crc16.Init(crcTable)
}

func crcUpdate(crc uint16, data ...byte) uint16 {
	return crc16.Update(crc, data, crcTable)
}

// Checksum computes the protocol 1 checksum of the bytes following the
// header: one's complement of their modulo-256 sum.
func Checksum(data []byte) byte {
	var sum byte
	for _, b := range data {
		sum += b
	}
	return ^sum
}
