package emit

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/njchilds90/symgen/expr"
)

// Group declares the vector parameter Name of length Dim. Symbols
// Name0..Name<Dim-1> refer to its elements.
type Group struct {
	Name string
	Dim  int
}

// Declaration is the ordered list of variable groups of a procedure. The
// order is the parameter order of the emitted procedure.
type Declaration []Group

// Vars is shorthand for building a declaration from name/dimension pairs,
// e.g. Vars("x", 6, "u", 2). It panics on malformed pairs.
func Vars(pairs ...interface{}) Declaration {
	if len(pairs)%2 != 0 {
		panic("emit: Vars needs name/dimension pairs")
	}
	d := make(Declaration, 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		d = append(d, Group{Name: pairs[i].(string), Dim: pairs[i+1].(int)})
	}
	return d
}

var identRE = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Validate checks that group names are unique identifiers and dimensions
// are positive.
func (d Declaration) Validate() error {
	seen := make(map[string]bool, len(d))
	for i, g := range d {
		if !identRE.MatchString(g.Name) {
			return errors.Wrapf(ErrInvalidDeclaration, "group %d: bad name %q", i, g.Name)
		}
		if seen[g.Name] {
			return errors.Wrapf(ErrInvalidDeclaration, "duplicate group %q", g.Name)
		}
		if g.Dim <= 0 {
			return errors.Wrapf(ErrInvalidDeclaration, "group %q: dimension %d", g.Name, g.Dim)
		}
		seen[g.Name] = true
	}
	return nil
}

// Lookup returns the group called name.
func (d Declaration) Lookup(name string) (Group, bool) {
	for _, g := range d {
		if g.Name == name {
			return g, true
		}
	}
	return Group{}, false
}

// Names returns the group names in declaration order.
func (d Declaration) Names() []string {
	out := make([]string, len(d))
	for i, g := range d {
		out[i] = g.Name
	}
	return out
}

func (d Declaration) String() string {
	parts := make([]string, len(d))
	for i, g := range d {
		parts[i] = g.Name + ": " + strconv.Itoa(g.Dim)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// symbolTable resolves symbols against a declaration.
type symbolTable struct {
	decl  Declaration
	byLen []Group // longest name first, so "x_dot3" never splits as x + "_dot3"
	spell func(group string, index int) string
}

func newSymbolTable(d Declaration, spell func(string, int) string) *symbolTable {
	byLen := append([]Group(nil), d...)
	sort.SliceStable(byLen, func(i, j int) bool { return len(byLen[i].Name) > len(byLen[j].Name) })
	return &symbolTable{decl: d, byLen: byLen, spell: spell}
}

// Resolve maps a symbol to indexed parameter access. Symbols built with
// expr.Var use their recorded group; others are split as <group><digits>
// over whole names only.
func (t *symbolTable) Resolve(s *expr.Symbol) (string, error) {
	if len(t.decl) == 0 {
		return "", errors.Wrapf(ErrEmptyDeclaration, "symbol %q", s.Name())
	}
	if group, index, ok := s.Group(); ok {
		g, found := t.decl.Lookup(group)
		if !found {
			return "", errors.Wrapf(ErrMalformedSymbol, "%q: undeclared group %q", s.Name(), group)
		}
		if index >= g.Dim {
			return "", errors.Wrapf(ErrMalformedSymbol, "%q: index %d out of range for %s", s.Name(), index, g.Name)
		}
		return t.spell(group, index), nil
	}
	name := s.Name()
	for _, g := range t.byLen {
		if !strings.HasPrefix(name, g.Name) {
			continue
		}
		index, ok := parseIndex(name[len(g.Name):])
		if !ok {
			continue
		}
		if index >= g.Dim {
			return "", errors.Wrapf(ErrMalformedSymbol, "%q: index %d out of range for %s", name, index, g.Name)
		}
		return t.spell(g.Name, index), nil
	}
	return "", errors.Wrapf(ErrMalformedSymbol, "%q is not <group><index> for %s", name, t.decl)
}

// parseIndex accepts a non-empty run of decimal digits without leading zeros.
func parseIndex(s string) (int, bool) {
	if s == "" || (len(s) > 1 && s[0] == '0') {
		return 0, false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}
