// Copyright 2025 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package expr

import (
	"fmt"
	"math"
)

// Op is a binary operator.
type Op string

// Supported operators.
const (
	OpAdd    = Op("+")
	OpSub    = Op("-")
	OpMul    = Op("*")
	OpDiv    = Op("/")
	OpLt     = Op("<")
	OpLe     = Op("<=")
	OpEq     = Op("=")
	OpNe     = Op("!=")
	OpGt     = Op(">")
	OpGe     = Op(">=")
	OpConcat = Op("&")
	OpOr     = Op("|")
)

// BinaryOp combines two expressions with an operator: (lhs<op>rhs).
type BinaryOp struct {
	LHS, RHS Expr
	Op       Op
	Static
}

// Binary returns lhs op rhs. Non-expression operands become constants.
// When both operands have a known value, so does the result.
func Binary(lhs, rhs any, op Op) BinaryOp {
	b := BinaryOp{LHS: From(lhs), RHS: From(rhs), Op: op}
	if lv, ok := b.LHS.Value(); ok {
		if rv, ok := b.RHS.Value(); ok {
			if v, ok := fold(op, lv, rv); ok {
				b.Static = Known(v)
			}
		}
	}
	return b
}

func Add(lhs, rhs any) BinaryOp    { return Binary(lhs, rhs, OpAdd) }
func Sub(lhs, rhs any) BinaryOp    { return Binary(lhs, rhs, OpSub) }
func Mul(lhs, rhs any) BinaryOp    { return Binary(lhs, rhs, OpMul) }
func Div(lhs, rhs any) BinaryOp    { return Binary(lhs, rhs, OpDiv) }
func Lt(lhs, rhs any) BinaryOp     { return Binary(lhs, rhs, OpLt) }
func Le(lhs, rhs any) BinaryOp     { return Binary(lhs, rhs, OpLe) }
func Eq(lhs, rhs any) BinaryOp     { return Binary(lhs, rhs, OpEq) }
func Ne(lhs, rhs any) BinaryOp     { return Binary(lhs, rhs, OpNe) }
func Gt(lhs, rhs any) BinaryOp     { return Binary(lhs, rhs, OpGt) }
func Ge(lhs, rhs any) BinaryOp     { return Binary(lhs, rhs, OpGe) }
func Concat(lhs, rhs any) BinaryOp { return Binary(lhs, rhs, OpConcat) }
func Or(lhs, rhs any) BinaryOp     { return Binary(lhs, rhs, OpOr) }

func fold(op Op, l, r any) (any, bool) {
	switch op {
	case OpConcat:
		return fmt.Sprint(l) + fmt.Sprint(r), true
	case OpOr:
		lb, lok := l.(bool)
		rb, rok := r.(bool)
		return lb || rb, lok && rok
	}

	li, lInt := toInt(l)
	ri, rInt := toInt(r)
	if lInt && rInt {
		// on overflow, fall through to float64
		switch op {
		case OpAdd:
			if v := li + ri; (v > li) == (ri > 0) {
				return v, true
			}
		case OpSub:
			if v := li - ri; (v < li) == (ri > 0) {
				return v, true
			}
		case OpMul:
			if v := li * ri; li == 0 || (v/li == ri && !(li == -1 && ri == math.MinInt64)) {
				return v, true
			}
		}
	}
	lf, lNum := toFloat(l)
	rf, rNum := toFloat(r)
	if lNum && rNum {
		switch op {
		case OpAdd:
			return lf + rf, true
		case OpSub:
			return lf - rf, true
		case OpMul:
			return lf * rf, true
		case OpDiv:
			if rf == 0 {
				return nil, false
			}
			return lf / rf, true
		}
		return compare(op, cmpFloat(lf, rf))
	}
	if ls, ok := l.(string); ok {
		if rs, ok := r.(string); ok {
			c := 0
			if ls < rs {
				c = -1
			} else if ls > rs {
				c = 1
			}
			return compare(op, c)
		}
	}
	if lb, ok := l.(bool); ok {
		if rb, ok := r.(bool); ok {
			switch op {
			case OpEq:
				return lb == rb, true
			case OpNe:
				return lb != rb, true
			}
		}
	}
	return nil, false
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compare(op Op, c int) (any, bool) {
	switch op {
	case OpLt:
		return c < 0, true
	case OpLe:
		return c <= 0, true
	case OpEq:
		return c == 0, true
	case OpNe:
		return c != 0, true
	case OpGt:
		return c > 0, true
	case OpGe:
		return c >= 0, true
	}
	return nil, false
}

func toInt(v any) (int64, bool) {
	switch x := v.(type) {
	case int:
		return int64(x), true
	case int8:
		return int64(x), true
	case int16:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	case uint8:
		return int64(x), true
	case uint16:
		return int64(x), true
	case uint32:
		return int64(x), true
	}
	return 0, false
}

func toFloat(v any) (float64, bool) {
	if i, ok := toInt(v); ok {
		return float64(i), true
	}
	switch x := v.(type) {
	case float64:
		return x, !math.IsNaN(x)
	case float32:
		return float64(x), !math.IsNaN(float64(x))
	case uint:
		return float64(x), true
	case uint64:
		return float64(x), true
	}
	return 0, false
}
