package protocol

import "fmt"

// OpCode is the wire code of a sibling operation.
// Values match host.OpKind.
type OpCode uint8

const (
	OpInsert OpCode = 0x04
	OpRemove OpCode = 0x05
	OpMove   OpCode = 0x06
)

// String returns the string representation of the OpCode.
func (op OpCode) String() string {
	switch op {
	case OpInsert:
		return "Insert"
	case OpRemove:
		return "Remove"
	case OpMove:
		return "Move"
	default:
		return "Unknown"
	}
}

// OpWire is the wire form of one operation.
type OpWire struct {
	Op        OpCode
	Key       string
	Node      uint64    // Node being inserted, moved or removed
	After     uint64    // Anchor node; 0 means first
	FromIndex int       // MOVE, REMOVE
	ToIndex   int       // INSERT, MOVE
	Tree      *NodeWire // INSERT only: the inserted subtree
}

// OpsBatch is one sibling group's operations from a pass.
type OpsBatch struct {
	Seq    uint64
	Parent uint64
	Ops    []OpWire
}

// EncodeOps encodes a batch to bytes.
func EncodeOps(b *OpsBatch) []byte {
	e := NewEncoder()
	e.WriteUvarint(b.Seq)
	e.WriteUvarint(b.Parent)
	e.WriteUvarint(uint64(len(b.Ops)))

	for i := range b.Ops {
		op := &b.Ops[i]
		e.WriteByte(byte(op.Op))
		e.WriteString(op.Key)
		e.WriteUvarint(op.Node)
		e.WriteUvarint(op.After)
		e.WriteSvarint(int64(op.FromIndex))
		e.WriteSvarint(int64(op.ToIndex))
		if op.Op == OpInsert {
			EncodeTreeTo(e, op.Tree)
		}
	}
	return e.Bytes()
}

// DecodeOps decodes a batch from bytes.
func DecodeOps(data []byte) (*OpsBatch, error) {
	d := NewDecoder(data)
	b := &OpsBatch{}

	var err error
	if b.Seq, err = d.ReadUvarint(); err != nil {
		return nil, err
	}
	if b.Parent, err = d.ReadUvarint(); err != nil {
		return nil, err
	}
	count, err := d.ReadCollectionCount()
	if err != nil {
		return nil, err
	}

	b.Ops = make([]OpWire, count)
	for i := range b.Ops {
		if err := decodeOp(d, &b.Ops[i]); err != nil {
			return nil, fmt.Errorf("op %d: %w", i, err)
		}
	}
	return b, nil
}

func decodeOp(d *Decoder, op *OpWire) error {
	code, err := d.ReadByte()
	if err != nil {
		return err
	}
	op.Op = OpCode(code)
	switch op.Op {
	case OpInsert, OpRemove, OpMove:
	default:
		return ErrUnknownOp
	}

	if op.Key, err = d.ReadString(); err != nil {
		return err
	}
	if op.Node, err = d.ReadUvarint(); err != nil {
		return err
	}
	if op.After, err = d.ReadUvarint(); err != nil {
		return err
	}
	from, err := d.ReadSvarint()
	if err != nil {
		return err
	}
	to, err := d.ReadSvarint()
	if err != nil {
		return err
	}
	op.FromIndex, op.ToIndex = int(from), int(to)

	if op.Op == OpInsert {
		if op.Tree, err = DecodeTreeFrom(d); err != nil {
			return err
		}
	}
	return nil
}

// ErrorMessage is the payload of a FrameError.
type ErrorMessage struct {
	Code    string
	Message string
}

// EncodeError encodes an error message.
func EncodeError(m *ErrorMessage) []byte {
	e := NewEncoder()
	e.WriteString(m.Code)
	e.WriteString(m.Message)
	return e.Bytes()
}

// DecodeError decodes an error message.
func DecodeError(data []byte) (*ErrorMessage, error) {
	d := NewDecoder(data)
	code, err := d.ReadString()
	if err != nil {
		return nil, err
	}
	msg, err := d.ReadString()
	if err != nil {
		return nil, err
	}
	return &ErrorMessage{Code: code, Message: msg}, nil
}
