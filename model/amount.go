/*
Package model holds the domain-agnostic data types shared by every scorer:
monetary/point amounts, time periods, RM identity, transaction shapes, and
the per-metric output rows that get persisted.

DESIGN PRINCIPLES:
  1. Precision: decimal.Decimal behind the Rupees and Points types used
     for output-row totals (mirrors the resource-engine's Amount type);
     intermediate bucket sums, premiums and per-policy points are float64.
  2. Explicit optionality: OptFloat/OptInt instead of silently coalescing
     nulls to zero. AUM lookups, days-to-renewal, and premiums all flow
     through the boundary helpers in this file so "missing" is never
     confused with "zero".
*/
package model

import (
	"github.com/shopspring/decimal"
)

// Rupees is a monetary amount scored in Indian rupees.
type Rupees struct {
	Value decimal.Decimal
}

func NewRupees(v float64) Rupees { return Rupees{Value: decimal.NewFromFloat(v)} }
func ZeroRupees() Rupees         { return Rupees{Value: decimal.Zero} }

func (r Rupees) Add(o Rupees) Rupees      { return Rupees{r.Value.Add(o.Value)} }
func (r Rupees) Sub(o Rupees) Rupees      { return Rupees{r.Value.Sub(o.Value)} }
func (r Rupees) Neg() Rupees              { return Rupees{r.Value.Neg()} }
func (r Rupees) Mul(f decimal.Decimal) Rupees { return Rupees{r.Value.Mul(f)} }
func (r Rupees) MulFloat(f float64) Rupees    { return Rupees{r.Value.Mul(decimal.NewFromFloat(f))} }
func (r Rupees) IsNegative() bool         { return r.Value.IsNegative() }
func (r Rupees) IsZero() bool             { return r.Value.IsZero() }
func (r Rupees) IsPositive() bool         { return r.Value.IsPositive() }
func (r Rupees) GreaterThan(o Rupees) bool { return r.Value.GreaterThan(o.Value) }
func (r Rupees) LessThan(o Rupees) bool    { return r.Value.LessThan(o.Value) }
func (r Rupees) GreaterOrEqual(o Rupees) bool { return r.Value.GreaterThanOrEqual(o.Value) }
func (r Rupees) Equal(o Rupees) bool      { return r.Value.Equal(o.Value) }
func (r Rupees) Abs() Rupees              { return Rupees{r.Value.Abs()} }
func (r Rupees) Float64() float64         { f, _ := r.Value.Float64(); return f }
func (r Rupees) Min(o Rupees) Rupees      { if r.LessThan(o) { return r }; return o }
func (r Rupees) Max(o Rupees) Rupees      { if r.GreaterThan(o) { return r }; return o }
func (r Rupees) Round(places int32) Rupees { return Rupees{r.Value.Round(places)} }

// Points is a dimensionless score accumulated by every metric scorer.
type Points struct {
	Value decimal.Decimal
}

func NewPoints(v float64) Points { return Points{Value: decimal.NewFromFloat(v)} }
func ZeroPoints() Points         { return Points{Value: decimal.Zero} }

func (p Points) Add(o Points) Points      { return Points{p.Value.Add(o.Value)} }
func (p Points) Sub(o Points) Points      { return Points{p.Value.Sub(o.Value)} }
func (p Points) Mul(f decimal.Decimal) Points { return Points{p.Value.Mul(f)} }
func (p Points) MulFloat(f float64) Points    { return Points{p.Value.Mul(decimal.NewFromFloat(f))} }
func (p Points) IsZero() bool             { return p.Value.IsZero() }
func (p Points) IsNegative() bool         { return p.Value.IsNegative() }
func (p Points) IsPositive() bool         { return p.Value.IsPositive() }
func (p Points) GreaterOrEqual(o Points) bool { return p.Value.GreaterThanOrEqual(o.Value) }
func (p Points) Equal(o Points) bool      { return p.Value.Equal(o.Value) }
func (p Points) Float64() float64         { f, _ := p.Value.Float64(); return f }
func (p Points) Max(o Points) Points      { if p.Value.GreaterThan(o.Value) { return p }; return o }
func (p Points) Min(o Points) Points      { if p.Value.LessThan(o.Value) { return p }; return o }
func (p Points) Round(places int32) Points { return Points{p.Value.Round(places)} }

// OptFloat is an explicit optional float64. A zero value is never confused
// with "missing" — callers must check Ok.
type OptFloat struct {
	Value float64
	Ok    bool
}

func Float(v float64) OptFloat   { return OptFloat{Value: v, Ok: true} }
func NoFloat() OptFloat          { return OptFloat{} }
func (o OptFloat) OrZero() float64 {
	if !o.Ok {
		return 0
	}
	return o.Value
}

// OptInt is an explicit optional int, used for days_to_renewal which is
// meaningfully nil (renewal date unknown) vs. zero (renewal is today).
type OptInt struct {
	Value int
	Ok    bool
}

func Int(v int) OptInt { return OptInt{Value: v, Ok: true} }
func NoInt() OptInt    { return OptInt{} }
func (o OptInt) OrZero() int {
	if !o.Ok {
		return 0
	}
	return o.Value
}
