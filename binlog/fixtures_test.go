package binlog

var fixtureAnonymousGTID = []byte{
	0x36, 0x9d, 0xfd, 0x5e, 0x22, 0x01, 0x00, 0x00, 0x00, 0x41, 0x00, 0x00, 0x00, 0x41, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09, 0x0a, 0x0b,
	0x0c, 0x0d, 0x0e, 0x0f, 0x39, 0x30, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x02, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0xde, 0xad, 0xbe,
	0xef,
}

var fixtureFormatDescription = []byte{
	0xdc, 0x9c, 0xfd, 0x5e, 0x0f, 0x01, 0x00, 0x00, 0x00, 0x74, 0x00, 0x00, 0x00, 0x74, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x04, 0x00, 0x35, 0x2e, 0x37, 0x2e, 0x32, 0x39, 0x2d, 0x6c, 0x6f, 0x67, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0xdc, 0x9c, 0xfd, 0x5e, 0x13, 0x01, 0x02, 0x03, 0x04,
	0x05, 0x06, 0x07, 0x08, 0x09, 0x0a, 0x0b, 0x0c, 0x0d, 0x0e, 0x0f, 0x10, 0x11, 0x12, 0x13, 0x14,
	0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09, 0x0a, 0x0b, 0x0c, 0x0d, 0x0e, 0x0f, 0x01,
	0x01, 0x02, 0x03, 0x04,
}

var fixtureXID = []byte{
	0xdd, 0x9c, 0xfd, 0x5e, 0x10, 0x01, 0x00, 0x00, 0x00, 0x1f, 0x00, 0x00, 0x00, 0x1f, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x0b, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0xbc, 0x78, 0xeb, 0x86,
}

var fixtureTableMap = []byte{
	0xde, 0x9c, 0xfd, 0x5e, 0x13, 0x01, 0x00, 0x00, 0x00, 0x38, 0x00, 0x00, 0x00, 0x38, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x6d, 0x00, 0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x04, 0x74, 0x65, 0x73, 0x74,
	0x00, 0x0a, 0x72, 0x75, 0x6e, 0x6f, 0x6f, 0x62, 0x5f, 0x74, 0x62, 0x6c, 0x00, 0x02, 0x03, 0x0f,
	0x02, 0xa0, 0x00, 0x00, 0xc2, 0xa8, 0x35, 0x44,
}

var fixtureQuery = []byte{
	0xdf, 0x9c, 0xfd, 0x5e, 0x02, 0x01, 0x00, 0x00, 0x00, 0x79, 0x00, 0x00, 0x00, 0x79, 0x00, 0x00,
	0x00, 0x00, 0x00, 0xe7, 0x03, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x04, 0x00, 0x00, 0x21, 0x00,
	0x00, 0x00, 0x00, 0x08, 0x00, 0x01, 0x04, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x06, 0x03,
	0x73, 0x74, 0x64, 0x04, 0x21, 0x00, 0x21, 0x00, 0xe0, 0x00, 0x0c, 0x01, 0x74, 0x65, 0x73, 0x74,
	0x00, 0x74, 0x65, 0x73, 0x74, 0x00, 0x43, 0x52, 0x45, 0x41, 0x54, 0x45, 0x20, 0x54, 0x41, 0x42,
	0x4c, 0x45, 0x20, 0x49, 0x46, 0x20, 0x4e, 0x4f, 0x54, 0x20, 0x45, 0x58, 0x49, 0x53, 0x54, 0x53,
	0x20, 0x60, 0x72, 0x75, 0x6e, 0x6f, 0x6f, 0x62, 0x5f, 0x74, 0x62, 0x6c, 0x60, 0x28, 0x69, 0x64,
	0x20, 0x49, 0x4e, 0x54, 0x29, 0x78, 0x74, 0xea, 0x54,
}

var fixtureRotate = []byte{
	0xe0, 0x9c, 0xfd, 0x5e, 0x04, 0x01, 0x00, 0x00, 0x00, 0x2f, 0x00, 0x00, 0x00, 0x2f, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x04, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x6d, 0x79, 0x73, 0x71, 0x6c,
	0x5f, 0x62, 0x69, 0x6e, 0x2e, 0x30, 0x30, 0x30, 0x30, 0x30, 0x32, 0xaa, 0xbb, 0xcc, 0xdd,
}

var fixtureRowsTableMap = []byte{
	0x01, 0x00, 0x00, 0x00, 0x13, 0x01, 0x00, 0x00, 0x00, 0x2c, 0x00, 0x00, 0x00, 0x2c, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x37, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x01, 0x64, 0x00, 0x01, 0x74,
	0x00, 0x02, 0x03, 0x0f, 0x02, 0x14, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
}

var fixtureWriteRowsV2 = []byte{
	0x02, 0x00, 0x00, 0x00, 0x1e, 0x01, 0x00, 0x00, 0x00, 0x2b, 0x00, 0x00, 0x00, 0x2b, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x37, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x02, 0x00, 0x02, 0x03, 0x00,
	0x2a, 0x00, 0x00, 0x00, 0x02, 0x68, 0x69, 0x00, 0x00, 0x00, 0x00,
}
