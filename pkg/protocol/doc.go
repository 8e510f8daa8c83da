// Package protocol implements the binary wire format for shipping
// reconciliation output to a remote host.
//
// A remote host that mirrors a memdom tree needs two things: a full tree
// (sent once on connect, or as a resync) and the operation batches each
// pass produced. Both travel in frames.
//
// # Wire Format
//
// All messages are framed with a 6-byte header:
//
//	┌─────────────┬──────────────┬───────────────────────────────┐
//	│ Frame Type  │ Flags        │ Payload Length                │
//	│ (1 byte)    │ (1 byte)     │ (4 bytes, big-endian)         │
//	└─────────────┴──────────────┴───────────────────────────────┘
//
// # Frame Types
//
//   - FrameTree (0x01): a full node tree
//   - FrameOps (0x02): one sibling group's operation batch
//   - FrameError (0x05): an error raised by the pass
//
// # Encoding
//
//   - Varint: unsigned integers (protobuf-style)
//   - ZigZag: signed integers as unsigned varints
//   - Length-prefixed: strings, prefixed with a varint length
//
// Operation batches encode INSERT with the inserted subtree inline, so a
// receiver never sees a node id it does not know:
//
//	[Seq][ParentID][Count] { [Op][Key][NodeID][AfterID][From][To][Tree?] }...
package protocol
