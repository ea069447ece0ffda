// Package parse builds the value transformers a node descriptor can carry.
//
// Get and set parsers are pure value→value functions attached to a
// descriptor via nodetree.DescriptorUpdate. This package offers two ways
// to obtain them: Compile turns an expression string (as declared in node
// files) into a parser, and the stock constructors cover the common lab
// transformations directly.
package parse

import (
	"fmt"
	"math"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/kvasirlab/nodekit/nodetree"
)

// Compile builds a parser from an expression. The value under
// transformation is bound to x; clamp and roundto are available next to
// the expr builtins:
//
//	p, err := parse.Compile("clamp(x, 0.0, 1.5)")
//	p, err := parse.Compile("x * 2")
func Compile(src string) (nodetree.Parser, error) {
	program, err := expr.Compile(src, expr.Env(builtins()), expr.AllowUndefinedVariables())
	if err != nil {
		return nil, fmt.Errorf("parse: compile %q: %w", src, err)
	}
	return func(value any) (any, error) {
		env := builtins()
		env["x"] = value
		out, err := vm.Run(program, env)
		if err != nil {
			return nil, fmt.Errorf("parse: run %q: %w", src, err)
		}
		return out, nil
	}, nil
}

// builtins is the function environment of parser expressions. The value
// under transformation is deliberately not declared here: a parser may
// see ints, floats or strings, so x stays untyped at compile time and is
// bound at run time.
func builtins() map[string]any {
	return map[string]any{
		"clamp": func(x, lo, hi float64) float64 {
			return math.Min(math.Max(x, lo), hi)
		},
		"roundto": func(x float64, decimals int) float64 {
			scale := math.Pow(10, float64(decimals))
			return math.Round(x*scale) / scale
		},
	}
}

// Clamp returns a parser that limits float values to [lo, hi].
// Non-float values pass through unchanged.
func Clamp(lo, hi float64) nodetree.Parser {
	return func(value any) (any, error) {
		f, ok := toFloat(value)
		if !ok {
			return value, nil
		}
		return math.Min(math.Max(f, lo), hi), nil
	}
}

// Scale returns a parser that multiplies float values by factor.
// Non-float values pass through unchanged.
func Scale(factor float64) nodetree.Parser {
	return func(value any) (any, error) {
		f, ok := toFloat(value)
		if !ok {
			return value, nil
		}
		return f * factor, nil
	}
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}
