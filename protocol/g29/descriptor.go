package g29

// ReportDescriptor is the HID report descriptor presented by the virtual
// wheel. Bit offsets must stay in sync with the input report layout in
// this package.
var ReportDescriptor = []byte{
	0x05, 0x01, //   Usage Page (Generic Desktop)
	0x09, 0x04, //   Usage (Joystick)
	0xA1, 0x01, //   Collection (Application)
	0x85, 0x01, //     Report ID (1)

	0x09, 0x30, //     Usage (X)  - steering
	0x16, 0x00, 0x00, //     Logical Minimum (0)
	0x26, 0xFF, 0xFF, //     Logical Maximum (65535)
	0x75, 0x10, //     Report Size (16)
	0x95, 0x01, //     Report Count (1)
	0x81, 0x02, //     Input (Data,Var,Abs)

	0x09, 0x31, //     Usage (Y)  - throttle
	0x09, 0x32, //     Usage (Z)  - brake
	0x09, 0x35, //     Usage (Rz) - clutch
	0x15, 0x00, //     Logical Minimum (0)
	0x26, 0xFF, 0x00, //     Logical Maximum (255)
	0x75, 0x08, //     Report Size (8)
	0x95, 0x03, //     Report Count (3)
	0x81, 0x02, //     Input (Data,Var,Abs)

	0x05, 0x09, //     Usage Page (Button)
	0x19, 0x01, //     Usage Minimum (1)
	0x29, 0x18, //     Usage Maximum (24)
	0x15, 0x00, //     Logical Minimum (0)
	0x25, 0x01, //     Logical Maximum (1)
	0x75, 0x01, //     Report Size (1)
	0x95, 0x18, //     Report Count (24)
	0x81, 0x02, //     Input (Data,Var,Abs)

	0x05, 0x01, //     Usage Page (Generic Desktop)
	0x09, 0x39, //     Usage (Hat Switch)
	0x15, 0x00, //     Logical Minimum (0)
	0x25, 0x07, //     Logical Maximum (7)
	0x75, 0x04, //     Report Size (4)
	0x95, 0x01, //     Report Count (1)
	0x81, 0x42, //     Input (Data,Var,Abs,Null)

	0x75, 0x04, //     Report Size (4)
	0x95, 0x01, //     Report Count (1)
	0x81, 0x03, //     Input (Const,Var,Abs) - pad to 12 bytes
	0x75, 0x08, //     Report Size (8)
	0x95, 0x02, //     Report Count (2)
	0x81, 0x03, //     Input (Const,Var,Abs)

	0x06, 0x00, 0xFF, //     Usage Page (Vendor Defined)
	0x09, 0x01, //     Usage (Vendor 1) - FFB command pipe
	0x15, 0x00, //     Logical Minimum (0)
	0x26, 0xFF, 0x00, //     Logical Maximum (255)
	0x75, 0x08, //     Report Size (8)
	0x95, 0x10, //     Report Count (16)
	0x91, 0x02, //     Output (Data,Var,Abs)

	0xC0, //   End Collection
}
