package protocol

import "sort"

// NodeWire is the wire form of a realized host node.
type NodeWire struct {
	ID       uint64
	Tag      string
	Text     string
	Attrs    map[string]string
	Children []*NodeWire
}

// EncodeTree encodes a tree to bytes.
func EncodeTree(n *NodeWire) []byte {
	e := NewEncoder()
	EncodeTreeTo(e, n)
	return e.Bytes()
}

// EncodeTreeTo encodes a tree using e. Attributes are written in key
// order so identical trees encode identically.
func EncodeTreeTo(e *Encoder, n *NodeWire) {
	if n == nil {
		e.WriteByte(0x00)
		return
	}
	e.WriteByte(0x01)
	e.WriteUvarint(n.ID)
	e.WriteString(n.Tag)
	e.WriteString(n.Text)

	keys := make([]string, 0, len(n.Attrs))
	for k := range n.Attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	e.WriteUvarint(uint64(len(keys)))
	for _, k := range keys {
		e.WriteString(k)
		e.WriteString(n.Attrs[k])
	}

	e.WriteUvarint(uint64(len(n.Children)))
	for _, c := range n.Children {
		EncodeTreeTo(e, c)
	}
}

// DecodeTree decodes a tree from bytes.
func DecodeTree(data []byte) (*NodeWire, error) {
	return DecodeTreeFrom(NewDecoder(data))
}

// DecodeTreeFrom decodes a tree from d, enforcing MaxTreeDepth.
func DecodeTreeFrom(d *Decoder) (*NodeWire, error) {
	return decodeTree(d, 0)
}

func decodeTree(d *Decoder, depth int) (*NodeWire, error) {
	if depth > MaxTreeDepth {
		return nil, ErrMaxDepthExceeded
	}

	present, err := d.ReadByte()
	if err != nil {
		return nil, err
	}
	if present == 0x00 {
		return nil, nil
	}

	n := &NodeWire{}
	if n.ID, err = d.ReadUvarint(); err != nil {
		return nil, err
	}
	if n.Tag, err = d.ReadString(); err != nil {
		return nil, err
	}
	if n.Text, err = d.ReadString(); err != nil {
		return nil, err
	}

	attrCount, err := d.ReadCollectionCount()
	if err != nil {
		return nil, err
	}
	if attrCount > 0 {
		n.Attrs = make(map[string]string, attrCount)
		for i := 0; i < attrCount; i++ {
			key, err := d.ReadString()
			if err != nil {
				return nil, err
			}
			value, err := d.ReadString()
			if err != nil {
				return nil, err
			}
			n.Attrs[key] = value
		}
	}

	childCount, err := d.ReadCollectionCount()
	if err != nil {
		return nil, err
	}
	if childCount > 0 {
		n.Children = make([]*NodeWire, childCount)
		for i := range n.Children {
			if n.Children[i], err = decodeTree(d, depth+1); err != nil {
				return nil, err
			}
		}
	}
	return n, nil
}
