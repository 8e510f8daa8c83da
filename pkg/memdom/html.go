package memdom

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// voidElements are elements that cannot have children.
var voidElements = map[string]bool{
	"area":   true,
	"base":   true,
	"br":     true,
	"col":    true,
	"embed":  true,
	"hr":     true,
	"img":    true,
	"input":  true,
	"link":   true,
	"meta":   true,
	"param":  true,
	"source": true,
	"track":  true,
	"wbr":    true,
}

// RenderHTML serializes n and its subtree.
// Attributes are sorted for deterministic output; function values are
// skipped and true booleans render as bare attributes.
func RenderHTML(n *Node) string {
	var b strings.Builder
	writeHTML(&b, n)
	return b.String()
}

// InnerHTML serializes only the children of n.
func InnerHTML(n *Node) string {
	var b strings.Builder
	writeContent(&b, n)
	return b.String()
}

func writeHTML(b *strings.Builder, n *Node) {
	if n.IsText() {
		b.WriteString(escapeHTML(n.Text))
		return
	}

	b.WriteByte('<')
	b.WriteString(n.Tag)
	writeAttributes(b, n.Attrs)
	b.WriteByte('>')

	if voidElements[n.Tag] {
		return
	}
	writeContent(b, n)
	b.WriteString("</")
	b.WriteString(n.Tag)
	b.WriteByte('>')
}

func writeContent(b *strings.Builder, n *Node) {
	if len(n.Children) == 0 {
		b.WriteString(escapeHTML(n.Text))
		return
	}
	for _, c := range n.Children {
		writeHTML(b, c)
	}
}

func writeAttributes(b *strings.Builder, attrs map[string]any) {
	keys := make([]string, 0, len(attrs))
	for key := range attrs {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := attrs[key]
		if value == nil || reflect.TypeOf(value).Kind() == reflect.Func {
			continue
		}
		if key == "className" {
			key = "class"
		}
		if bv, ok := value.(bool); ok {
			if bv {
				b.WriteByte(' ')
				b.WriteString(key)
			}
			continue
		}
		fmt.Fprintf(b, ` %s="%s"`, key, escapeAttr(attrToString(value)))
	}
}

// attrToString converts an attribute value to its string form.
func attrToString(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case []string:
		return strings.Join(v, " ")
	default:
		return fmt.Sprintf("%v", v)
	}
}

// escapeHTML escapes text for safe inclusion in HTML content.
func escapeHTML(s string) string {
	var buf strings.Builder
	buf.Grow(len(s))

	for _, r := range s {
		switch r {
		case '&':
			buf.WriteString("&amp;")
		case '<':
			buf.WriteString("&lt;")
		case '>':
			buf.WriteString("&gt;")
		case '"':
			buf.WriteString("&quot;")
		case '\'':
			buf.WriteString("&#39;")
		default:
			buf.WriteRune(r)
		}
	}

	return buf.String()
}

// escapeAttr escapes text for attribute values, including whitespace that
// could break attribute parsing.
func escapeAttr(s string) string {
	var buf strings.Builder
	buf.Grow(len(s))

	for _, r := range s {
		switch r {
		case '\n':
			buf.WriteString("&#10;")
		case '\r':
			buf.WriteString("&#13;")
		case '\t':
			buf.WriteString("&#9;")
		default:
			buf.WriteString(escapeHTML(string(r)))
		}
	}

	return buf.String()
}
