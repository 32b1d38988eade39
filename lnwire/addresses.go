package lnwire

import "encoding/binary"

// AddressType is the wire type byte prefixing each address descriptor in a
// node_announcement's address list.
type AddressType uint8

const (
	// AddrTypePadding is a zero-length filler descriptor, skipped by the
	// parser rather than treated as an address.
	AddrTypePadding AddressType = 0

	AddrTypeIPv4   AddressType = 1
	AddrTypeIPv6   AddressType = 2
	AddrTypeTorV2  AddressType = 3
	AddrTypeTorV3  AddressType = 4
)

var addrLen = map[AddressType]int{
	AddrTypeIPv4:  4 + 2,
	AddrTypeIPv6:  16 + 2,
	AddrTypeTorV2: 10 + 2,
	AddrTypeTorV3: 35 + 2,
}

// Address is a single parsed network address descriptor.
type Address struct {
	Type AddressType
	Data []byte
}

// Port returns the big-endian port suffix every known address type carries
// in its last two bytes.
func (a Address) Port() uint16 {
	if len(a.Data) < 2 {
		return 0
	}
	return be16(a.Data[len(a.Data)-2:])
}

// ParseAddresses parses the address-list payload of a node_announcement.
//
// It skips padding entries, stops cleanly (without error) at the first
// descriptor of an unrecognized type, and reports ok=false if a descriptor
// of a *known* type is truncated — matching spec §4.3.4 / the original
// read_addresses in routing.c: "a parse error on a known type invalidates
// the whole message".
func ParseAddresses(raw []byte) (addrs []Address, ok bool) {
	cursor := raw
	for len(cursor) > 0 {
		t := AddressType(cursor[0])

		if t == AddrTypePadding {
			cursor = cursor[1:]
			continue
		}

		length, known := addrLen[t]
		if !known {
			// Unknown type: stop cleanly, keep what we have.
			return addrs, true
		}

		if len(cursor) < 1+length {
			// Known type, but the message was truncated.
			return nil, false
		}

		addrs = append(addrs, Address{
			Type: t,
			Data: append([]byte(nil), cursor[1:1+length]...),
		})
		cursor = cursor[1+length:]
	}
	return addrs, true
}

// be16 decodes a big-endian uint16 prefix, used by callers that need the
// port embedded in an address descriptor.
func be16(b []byte) uint16 {
	return binary.BigEndian.Uint16(b)
}
