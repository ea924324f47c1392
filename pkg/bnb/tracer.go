package bnb

// SearchPosition describes a node at the moment it was classified.
type SearchPosition interface {
	Node() Node
	State() NodeState
	// Incumbent is the incumbent right after the classification.
	Incumbent() Incumbent
}

type Tracer interface {
	Trace(p SearchPosition)
}
