package ast

// VisitResult tells VisitChildren how to continue after a node.
type VisitResult int

const (
	// Skip moves on to the next sibling without visiting the node's children.
	Skip VisitResult = iota
	// Descend visits the node's children, then moves on to the next sibling.
	Descend
)

func (r VisitResult) String() string {
	if r == Descend {
		return "descend"
	}
	return "skip"
}

// Visitor is called once per visited node.
type Visitor func(c Cursor) VisitResult

// VisitChildren walks the children of parent depth-first, pre-order,
// calling fn on each. parent itself is not passed to fn.
func VisitChildren(parent Cursor, fn Visitor) {
	if parent == nil {
		return
	}
	for _, child := range parent.Children() {
		if fn(child) == Descend {
			VisitChildren(child, fn)
		}
	}
}
