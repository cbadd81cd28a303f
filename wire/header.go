// Package wire implements the node-to-node message framing: the fixed
// 8-byte header every message carries, the per-type payload codecs,
// the handshake challenge/response, the ascending bootstrap pull/ack
// encoding, vote (ConfirmAck) encoding, and the duplicate-publish
// fingerprint filter.
package wire

import (
	"encoding/binary"
	"errors"
)

// HeaderSize is the fixed size in bytes of every message header.
const HeaderSize = 8

// Network identifies which network a message header claims to belong
// to. Dev shares Live's magic per the protocol's own convention;
// callers distinguish dev from live by other means (listening port,
// configured peers), not by this field alone.
type Network uint16

const (
	NetworkLive Network = 0x5241
	NetworkBeta Network = 0x5242
	NetworkTest Network = 0x5258
	NetworkDev  Network = 0x5241
)

// MessageType is the single-byte message type tag at header offset 5.
type MessageType byte

const (
	Keepalive      MessageType = 0x02
	Publish        MessageType = 0x03
	ConfirmReq     MessageType = 0x04
	ConfirmAckType MessageType = 0x05
	BulkPull       MessageType = 0x06
	BulkPush       MessageType = 0x07
	FrontierReq    MessageType = 0x08
	// 0x09 is retired; DecodeHeader rejects it.
	NodeIDHandshake MessageType = 0x0A
	BulkPullAccount MessageType = 0x0B
	TelemetryReq    MessageType = 0x0C
	TelemetryAck    MessageType = 0x0D
	AscPullReqType  MessageType = 0x0E
	AscPullAckType  MessageType = 0x0F
)

// ErrRetiredMessageType is returned when a header names the retired
// 0x09 message type.
var ErrRetiredMessageType = errors.New("wire: message type 0x09 is retired")

// ErrShortHeader is returned when fewer than HeaderSize bytes are
// available to decode.
var ErrShortHeader = errors.New("wire: short header")

// Header is the fixed 8-byte preamble on every message.
type Header struct {
	NetworkMagic Network
	VersionMax   byte
	VersionUsing byte
	VersionMin   byte
	Type         MessageType
	Extensions   uint16
}

// Encode writes the header's wire representation: big-endian network
// magic, three version bytes, the type byte, then a little-endian
// extensions bitfield.
func (h Header) Encode() [HeaderSize]byte {
	var b [HeaderSize]byte
	binary.BigEndian.PutUint16(b[0:2], uint16(h.NetworkMagic))
	b[2] = h.VersionMax
	b[3] = h.VersionUsing
	b[4] = h.VersionMin
	b[5] = byte(h.Type)
	binary.LittleEndian.PutUint16(b[6:8], h.Extensions)
	return b
}

// DecodeHeader parses a fixed 8-byte header from the front of buf.
func DecodeHeader(buf []byte) (Header, error) {
	if len(buf) < HeaderSize {
		return Header{}, ErrShortHeader
	}
	h := Header{
		NetworkMagic: Network(binary.BigEndian.Uint16(buf[0:2])),
		VersionMax:   buf[2],
		VersionUsing: buf[3],
		VersionMin:   buf[4],
		Type:         MessageType(buf[5]),
		Extensions:   binary.LittleEndian.Uint16(buf[6:8]),
	}
	if h.Type == 0x09 {
		return Header{}, ErrRetiredMessageType
	}
	return h, nil
}
