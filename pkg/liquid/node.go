package liquid

import (
	"strings"

	"github.com/walteh/liquidscope/pkg/position"
)

// Tree owns the source text and every node parsed from it. Nodes are only
// valid while their tree is reachable; use Snapshot to keep data past that.
type Tree struct {
	src   []byte
	lines *position.LineIndex
	root  *Node
}

func (t *Tree) Root() *Node {
	return t.root
}

func (t *Tree) Source() []byte {
	return t.src
}

func (t *Tree) Lines() *position.LineIndex {
	return t.lines
}

// LineCount is the number of source lines (see position.LineIndex.LineCount).
func (t *Tree) LineCount() int {
	return t.lines.LineCount()
}

// DescendantForPlace returns the smallest node whose range contains p.
func (t *Tree) DescendantForPlace(p position.Place) *Node {
	off := t.lines.OffsetOf(p)
	cur := t.root
	for {
		var next *Node
		for _, c := range cur.children {
			if c.start <= off && off <= c.end && c.end > c.start {
				next = c
				// prefer the child that starts at the offset over one that ends there
				if c.start == off || off < c.end {
					break
				}
			}
		}
		if next == nil {
			return cur
		}
		cur = next
	}
}

type Node struct {
	kind     NodeKind
	typ      string
	field    string
	parent   *Node
	children []*Node
	start    int
	end      int
	tree     *Tree
}

func (n *Node) Kind() NodeKind {
	return n.kind
}

// Type is the grammar type name, which for KindUnknown nodes is the only
// thing telling them apart.
func (n *Node) Type() string {
	if n.typ != "" {
		return n.typ
	}
	return n.kind.String()
}

// FieldName is the name of the field this node occupies in its parent, or "".
func (n *Node) FieldName() string {
	return n.field
}

func (n *Node) Parent() *Node {
	return n.parent
}

func (n *Node) NamedChildren() []*Node {
	return n.children
}

func (n *Node) Child(i int) *Node {
	if i < 0 || i >= len(n.children) {
		return nil
	}
	return n.children[i]
}

// ChildByFieldName returns the first child stored under field.
func (n *Node) ChildByFieldName(field string) *Node {
	for _, c := range n.children {
		if c.field == field {
			return c
		}
	}
	return nil
}

// ChildrenByFieldName returns every child stored under field.
func (n *Node) ChildrenByFieldName(field string) []*Node {
	var out []*Node
	for _, c := range n.children {
		if c.field == field {
			out = append(out, c)
		}
	}
	return out
}

// ChildOfKind returns the first direct child of the given kind.
func (n *Node) ChildOfKind(kind NodeKind) *Node {
	for _, c := range n.children {
		if c.kind == kind {
			return c
		}
	}
	return nil
}

func (n *Node) StartByte() int {
	return n.start
}

func (n *Node) EndByte() int {
	return n.end
}

func (n *Node) StartPoint() position.Place {
	return n.tree.lines.PlaceOf(n.start)
}

func (n *Node) EndPoint() position.Place {
	return n.tree.lines.PlaceOf(n.end)
}

func (n *Node) Range() position.Range {
	return position.RawPosition{Offset: n.start, Text: n.Text()}.GetRange(n.tree.lines)
}

// Walk visits n and its descendants in document order. Returning false skips
// the children of the visited node.
func (n *Node) Walk(fn func(n *Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.children {
		c.Walk(fn)
	}
}

func (n *Node) Text() string {
	return string(n.tree.src[n.start:n.end])
}

// Keyword returns the statement keyword text, "" for nodes without one.
func (n *Node) Keyword() string {
	for _, c := range n.children {
		if c.kind == KindKeyword || c.kind == KindCustomKeyword {
			return c.Text()
		}
	}
	return ""
}

// String renders the subtree as an s-expression, tree-sitter style.
func (n *Node) String() string {
	var sb strings.Builder
	n.writeTo(&sb)
	return sb.String()
}

func (n *Node) writeTo(sb *strings.Builder) {
	sb.WriteString("(")
	sb.WriteString(n.Type())
	for _, c := range n.children {
		sb.WriteString(" ")
		if c.field != "" {
			sb.WriteString(c.field)
			sb.WriteString(": ")
		}
		c.writeTo(sb)
	}
	sb.WriteString(")")
}

// NodeRef is an owned copy of the parts of a node callers need once the tree is gone.
type NodeRef struct {
	Kind  NodeKind       `json:"-"`
	Type  string         `json:"type"`
	Text  string         `json:"text"`
	Range position.Range `json:"range"`
}

func Snapshot(n *Node) NodeRef {
	return NodeRef{
		Kind:  n.kind,
		Type:  n.Type(),
		Text:  n.Text(),
		Range: n.Range(),
	}
}
