package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"gopkg.in/urfave/cli.v1"

	"github.com/njchilds90/symgen/emit"
	"github.com/njchilds90/symgen/expr"
	"github.com/njchilds90/symgen/lower"
)

var (
	varsFlag = cli.StringFlag{
		Name:  "vars",
		Usage: `Variable groups, e.g. "x:6,u:2"; symbols then lower to indexed access`,
	}
	dumpFlag = cli.BoolFlag{
		Name:  "dump",
		Usage: "Dump the parsed expression tree",
	}

	lowerCommand = cli.Command{
		Action:    lowerExpr,
		Name:      "lower",
		Usage:     "Lower one infix expression to target-language text",
		ArgsUsage: "<expression>",
		Flags:     []cli.Flag{dialectFlag, varsFlag, permissiveFlag, dumpFlag},
		Description: `The lower command parses an expression such as "x0*cos(x2)" and prints
the text the code generator would emit for it.`,
	}

	dumper = spew.ConfigState{Indent: "  ", DisablePointerAddresses: true, DisableCapacities: true}
)

func lowerExpr(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return fmt.Errorf("expected exactly one expression argument")
	}
	n, err := expr.Parse(ctx.Args().First())
	if err != nil {
		return err
	}
	if ctx.Bool(dumpFlag.Name) {
		dumper.Fdump(os.Stdout, n)
	}
	d := lower.Eigen
	if name := ctx.String(dialectFlag.Name); name != "" {
		var ok bool
		if d, ok = lower.DialectByName(name); !ok {
			return fmt.Errorf("unknown dialect %q, want one of %v", name, lower.DialectNames())
		}
	}
	permissive := ctx.Bool(permissiveFlag.Name)

	if spec := ctx.String(varsFlag.Name); spec != "" {
		decl, err := parseVars(spec)
		if err != nil {
			return err
		}
		p, err := emit.Emit(expr.MatrixOf(1, 1, n), decl, "lowered", emit.WithDialect(d), emit.Permissive(permissive))
		if err != nil {
			return err
		}
		if len(p.Triplets) == 0 {
			fmt.Println("0")
			return nil
		}
		fmt.Println(p.Triplets[0].Expr)
		return nil
	}
	text, err := lower.New(d, lower.Permissive(permissive)).Lower(n)
	if err != nil {
		return err
	}
	fmt.Println(text)
	return nil
}

// parseVars reads "x:6,u:2" into a declaration.
func parseVars(spec string) (emit.Declaration, error) {
	var decl emit.Declaration
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		i := strings.LastIndexByte(part, ':')
		if i < 0 {
			return nil, fmt.Errorf("variable group %q: want name:dim", part)
		}
		dim, err := strconv.Atoi(part[i+1:])
		if err != nil {
			return nil, fmt.Errorf("variable group %q: %v", part, err)
		}
		decl = append(decl, emit.Group{Name: part[:i], Dim: dim})
	}
	return decl, decl.Validate()
}
