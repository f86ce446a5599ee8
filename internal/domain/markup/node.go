// Package markup abstracts the XML tree the parser walks.
package markup

// Node is an element in a parsed DJNML tree.
//
// Find evaluates a path expression relative to the node. Expressions that
// start with "/" are evaluated from the document root. An expression that
// matches nothing yields an empty slice.
type Node interface {
	Find(expr string) []Node
	// Attr returns the attribute value and whether the attribute exists.
	Attr(name string) (string, bool)
	// Text is the concatenated text of all descendants.
	Text() string
	// InnerXML serialises the children of the node.
	InnerXML() string
}

// First returns the first match of expr under n, or nil.
func First(n Node, expr string) Node {
	if n == nil {
		return nil
	}
	if found := n.Find(expr); len(found) > 0 {
		return found[0]
	}
	return nil
}
