package expr

// Children returns the direct operands of n in order. Leaves have none.
func Children(n Node) []Node {
	switch v := n.(type) {
	case *Sum:
		return v.terms
	case *Product:
		return v.factors
	case *Power:
		return []Node{v.base, v.exp}
	case *Call:
		return v.args
	}
	return nil
}

// Walk visits n and its descendants depth-first, parents before children.
// Returning false from fn skips the children of that node.
func Walk(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, c := range Children(n) {
		Walk(c, fn)
	}
}

// FreeSymbols returns the distinct symbols of n in first-occurrence order.
func FreeSymbols(n Node) []*Symbol {
	var out []*Symbol
	seen := map[string]struct{}{}
	Walk(n, func(c Node) bool {
		if s, ok := c.(*Symbol); ok {
			if _, dup := seen[s.name]; !dup {
				seen[s.name] = struct{}{}
				out = append(out, s)
			}
		}
		return true
	})
	return out
}

// HasSymbol reports whether n references the symbol called name.
func HasSymbol(n Node, name string) bool {
	found := false
	Walk(n, func(c Node) bool {
		if found {
			return false
		}
		if s, ok := c.(*Symbol); ok && s.name == name {
			found = true
		}
		return !found
	})
	return found
}

// Equal reports structural equality. Symbols compare by name only.
func Equal(a, b Node) bool {
	switch x := a.(type) {
	case *Sum:
		y, ok := b.(*Sum)
		return ok && equalAll(x.terms, y.terms)
	case *Product:
		y, ok := b.(*Product)
		return ok && equalAll(x.factors, y.factors)
	case *Power:
		y, ok := b.(*Power)
		return ok && Equal(x.base, y.base) && Equal(x.exp, y.exp)
	case *Call:
		y, ok := b.(*Call)
		return ok && x.name == y.name && equalAll(x.args, y.args)
	case *Symbol:
		y, ok := b.(*Symbol)
		return ok && x.name == y.name
	case *Number:
		y, ok := b.(*Number)
		return ok && x.val == y.val
	}
	return a == nil && b == nil
}

func equalAll(a, b []Node) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}
