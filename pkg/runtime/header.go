package runtime

import "encoding/binary"

// headerLen is the wire length of a Header: tagLen bytes of channel tag
// followed by an 8-byte little-endian waitpoint (spec.md §4.1 "A header
// serializes as channel-tag-bytes ‖ waitpoint-u64-le").
const headerLen = tagLen + 8

// Header identifies the (channel, waitpoint) a message is destined for.
type Header struct {
	Tag       Tag
	Waitpoint uint64
}

// Encode serializes the header to its wire form.
func (h Header) Encode() []byte {
	out := make([]byte, headerLen)
	copy(out, h.Tag[:])
	binary.LittleEndian.PutUint64(out[tagLen:], h.Waitpoint)
	return out
}

// DecodeHeader parses a Header from the front of data, returning the
// header and the remaining bytes (the opaque protocol payload).
func DecodeHeader(data []byte) (Header, []byte, error) {
	if len(data) < headerLen {
		return Header{}, nil, errShortHeader
	}
	var h Header
	copy(h.Tag[:], data[:tagLen])
	h.Waitpoint = binary.LittleEndian.Uint64(data[tagLen:headerLen])
	return h, data[headerLen:], nil
}

var errShortHeader = headerError("runtime: message shorter than header")

type headerError string

func (e headerError) Error() string { return string(e) }
