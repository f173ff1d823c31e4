package lower

import "strconv"

// Func describes one target math-library function.
type Func struct {
	Ident string // target identifier without namespace
	Arity int
}

// Dialect describes how a target language spells expressions.
type Dialect struct {
	Name      string
	Namespace string // prefix of every math-library call, e.g. "std::"
	Pow       string // identifier of the power function
	Funcs     map[string]Func
}

// Index renders element index of vector parameter group.
func (d *Dialect) Index(group string, index int) string {
	return group + "[" + strconv.Itoa(index) + "]"
}

// Lookup resolves a lower-cased function name.
func (d *Dialect) Lookup(name string) (Func, bool) {
	f, ok := d.Funcs[name]
	return f, ok
}

// Eigen targets C++ with <cmath>; generated procedures build Eigen sparse
// matrices.
var Eigen = &Dialect{
	Name:      "eigen",
	Namespace: "std::",
	Pow:       "pow",
	Funcs: map[string]Func{
		"sin":   {"sin", 1},
		"cos":   {"cos", 1},
		"tan":   {"tan", 1},
		"asin":  {"asin", 1},
		"acos":  {"acos", 1},
		"atan":  {"atan", 1},
		"atan2": {"atan2", 2},
		"sinh":  {"sinh", 1},
		"cosh":  {"cosh", 1},
		"tanh":  {"tanh", 1},
		"exp":   {"exp", 1},
		"expm1": {"expm1", 1},
		"log":   {"log", 1},
		"ln":    {"log", 1},
		"log1p": {"log1p", 1},
		"log2":  {"log2", 1},
		"log10": {"log10", 1},
		"sqrt":  {"sqrt", 1},
		"cbrt":  {"cbrt", 1},
		"hypot": {"hypot", 2},
		"abs":   {"abs", 1},
		"floor": {"floor", 1},
		"ceil":  {"ceil", 1},
		"erf":   {"erf", 1},
		"pow":   {"pow", 2},
	},
}

// Go targets Go source using package math; generated procedures build a
// sparse.Matrix.
var Go = &Dialect{
	Name:      "go",
	Namespace: "math.",
	Pow:       "Pow",
	Funcs: map[string]Func{
		"sin":   {"Sin", 1},
		"cos":   {"Cos", 1},
		"tan":   {"Tan", 1},
		"asin":  {"Asin", 1},
		"acos":  {"Acos", 1},
		"atan":  {"Atan", 1},
		"atan2": {"Atan2", 2},
		"sinh":  {"Sinh", 1},
		"cosh":  {"Cosh", 1},
		"tanh":  {"Tanh", 1},
		"exp":   {"Exp", 1},
		"expm1": {"Expm1", 1},
		"log":   {"Log", 1},
		"ln":    {"Log", 1},
		"log1p": {"Log1p", 1},
		"log2":  {"Log2", 1},
		"log10": {"Log10", 1},
		"sqrt":  {"Sqrt", 1},
		"cbrt":  {"Cbrt", 1},
		"hypot": {"Hypot", 2},
		"abs":   {"Abs", 1},
		"floor": {"Floor", 1},
		"ceil":  {"Ceil", 1},
		"erf":   {"Erf", 1},
		"pow":   {"Pow", 2},
	},
}

var dialects = map[string]*Dialect{
	Eigen.Name: Eigen,
	Go.Name:    Go,
}

// DialectByName returns the registered dialect called name.
func DialectByName(name string) (*Dialect, bool) {
	d, ok := dialects[name]
	return d, ok
}

// DialectNames lists the registered dialects.
func DialectNames() []string { return []string{Eigen.Name, Go.Name} }
