package syntax

import (
	"sort"
	"strings"

	"github.com/cssgrammar/grammar/lexical"
)

// unitCategories maps lowercase dimension units to their physical category.
var unitCategories = map[string]Category{}

func init() {
	for _, u := range []string{
		"px", "cm", "mm", "q", "in", "pt", "pc",
		"em", "rem", "ex", "rex", "cap", "rcap", "ch", "rch", "ic", "ric", "lh", "rlh",
		"vw", "vh", "vi", "vb", "vmin", "vmax",
		"svw", "svh", "svi", "svb", "svmin", "svmax",
		"lvw", "lvh", "lvi", "lvb", "lvmin", "lvmax",
		"dvw", "dvh", "dvi", "dvb", "dvmin", "dvmax",
		"cqw", "cqh", "cqi", "cqb", "cqmin", "cqmax",
	} {
		unitCategories[u] = Length
	}
	for _, u := range []string{"deg", "grad", "rad", "turn"} {
		unitCategories[u] = Angle
	}
	for _, u := range []string{"s", "ms"} {
		unitCategories[u] = Time
	}
	for _, u := range []string{"hz", "khz"} {
		unitCategories[u] = Frequency
	}
	for _, u := range []string{"dpi", "dpcm", "dppx", "x"} {
		unitCategories[u] = Resolution
	}
	unitCategories["fr"] = Flex
}

// UnitCategory returns the category of a dimension unit, or Universal when the unit is unknown.
func UnitCategory(unit string) Category {
	if c, ok := unitCategories[strings.ToLower(unit)]; ok {
		return c
	}
	return Universal
}

// Factor is one (category, exponent) link of a dimension.
type Factor struct {
	Category Category
	Exponent int
}

// Dimension is a monomial of physical categories such as length¹·time⁻¹. No two factors share a category and no
// factor has a zero exponent, the empty dimension is a plain number. LengthSeen and PercentSeen record that a sum merged
// lengths and percentages into a length-percentage.
type Dimension struct {
	Factors     []Factor
	LengthSeen  bool
	PercentSeen bool
}

// dimensionOf returns the dimension of a single category.
func dimensionOf(c Category) Dimension {
	switch c {
	case Number, Integer:
		return Dimension{}
	case Length:
		return Dimension{Factors: []Factor{{Length, 1}}, LengthSeen: true}
	case Percentage:
		return Dimension{Factors: []Factor{{Percentage, 1}}, PercentSeen: true}
	case LengthPercentage:
		return Dimension{Factors: []Factor{{Length, 1}}, LengthSeen: true, PercentSeen: true}
	}
	return Dimension{Factors: []Factor{{c, 1}}}
}

// IsNumber returns true for the dimensionless dimension.
func (d Dimension) IsNumber() bool {
	return len(d.Factors) == 0
}

// Single returns the category of a dimension with one factor of exponent 1.
func (d Dimension) Single() (Category, bool) {
	if len(d.Factors) == 1 && d.Factors[0].Exponent == 1 {
		return d.Factors[0].Category, true
	}
	return Universal, false
}

// IsLengthPercentage returns true for a length that absorbed percentages, or the reverse.
func (d Dimension) IsLengthPercentage() bool {
	c, ok := d.Single()
	return ok && (c == Length || c == Percentage) && d.LengthSeen && d.PercentSeen
}

// Equal compares the factors of two dimensions regardless of order.
func (d Dimension) Equal(e Dimension) bool {
	if len(d.Factors) != len(e.Factors) {
		return false
	}
	for _, f := range d.Factors {
		if e.exponent(f.Category) != f.Exponent {
			return false
		}
	}
	return true
}

func (d Dimension) exponent(c Category) int {
	for _, f := range d.Factors {
		if f.Category == c {
			return f.Exponent
		}
	}
	return 0
}

// Multiply returns the product d·e^sign, sign being 1 for multiplication and -1 for division.
func (d Dimension) Multiply(e Dimension, sign int) Dimension {
	r := Dimension{
		Factors:     append([]Factor{}, d.Factors...),
		LengthSeen:  d.LengthSeen || e.LengthSeen,
		PercentSeen: d.PercentSeen || e.PercentSeen,
	}
	for _, f := range e.Factors {
		found := false
		for i := range r.Factors {
			if r.Factors[i].Category == f.Category {
				r.Factors[i].Exponent += sign * f.Exponent
				found = true
				break
			}
		}
		if !found {
			r.Factors = append(r.Factors, Factor{f.Category, sign * f.Exponent})
		}
	}
	n := 0
	for _, f := range r.Factors {
		if f.Exponent != 0 {
			r.Factors[n] = f
			n++
		}
	}
	r.Factors = r.Factors[:n]
	sort.Slice(r.Factors, func(i, j int) bool { return r.Factors[i].Category < r.Factors[j].Category })
	return r
}

// Add unifies the dimensions of two summands. Lengths and percentages merge into a length-percentage, all other
// dimensions must be equal.
func (d Dimension) Add(e Dimension) (Dimension, bool) {
	r := d
	r.LengthSeen = d.LengthSeen || e.LengthSeen
	r.PercentSeen = d.PercentSeen || e.PercentSeen
	if d.Equal(e) {
		return r, true
	}
	dc, dok := d.Single()
	ec, eok := e.Single()
	if dok && eok && isLengthOrPercentage(dc) && isLengthOrPercentage(ec) {
		r.Factors = []Factor{{Length, 1}}
		return r, true
	}
	return Dimension{}, false
}

func isLengthOrPercentage(c Category) bool {
	return c == Length || c == Percentage
}

// Accepts returns true if a value of dimension d is valid for category c.
func (d Dimension) Accepts(c Category) bool {
	single, ok := d.Single()
	switch c {
	case Universal:
		return true
	case Number, Integer:
		return d.IsNumber()
	case Length:
		return ok && single == Length && !d.PercentSeen
	case Percentage:
		return ok && single == Percentage && !d.LengthSeen
	case LengthPercentage:
		return ok && isLengthOrPercentage(single)
	case Angle, Time, Frequency, Resolution, Flex:
		return ok && single == c
	}
	return false
}

////////////////////////////////////////////////////////////////

// status is the outcome of a dimensional analysis, ordered from best to worst.
type status uint8

const (
	valid   status = iota
	lenient        // attr() whose type and fallback split between length and percentage
	pending        // depends on var() or an undecidable attr()
	invalid
)

func worse(a, b status) status {
	if b > a {
		return b
	}
	return a
}

// Analyze computes the dimension of a numeric unit or math function. ok is false for values that do not type-check,
// isPending is true for values whose type depends on substitution.
func Analyze(v lexical.Value) (d Dimension, ok bool, isPending bool) {
	d, st := analyzeUnit(v)
	return d, st == valid || st == lenient, st == pending || st == lenient
}

func analyzeUnit(v lexical.Value) (Dimension, status) {
	switch v.Type() {
	case lexical.Integer, lexical.Real:
		return Dimension{}, valid
	case lexical.Percentage:
		return dimensionOf(Percentage), valid
	case lexical.Dimension:
		c := UnitCategory(v.Unit())
		if c == Universal {
			return Dimension{}, invalid
		}
		return dimensionOf(c), valid
	case lexical.Ident:
		switch strings.ToLower(v.Text()) {
		case "e", "pi", "infinity", "-infinity", "nan":
			return Dimension{}, valid
		}
		return Dimension{}, invalid
	case lexical.Var:
		return Dimension{}, pending
	case lexical.Attr:
		return attrDimension(v)
	case lexical.Calc, lexical.SubExpression:
		if containsVar(v.Parameters()) {
			return Dimension{}, pending
		}
		return analyzeSum(v.Parameters(), false)
	case lexical.MathFunction:
		if containsVar(v.Parameters()) {
			return Dimension{}, pending
		}
		return analyzeMath(v)
	}
	return Dimension{}, invalid
}

// containsVar returns true if a var() occurs anywhere in the chain starting at v.
func containsVar(v lexical.Value) bool {
	for ; !v.IsNil(); v = v.Next() {
		if v.Type() == lexical.Var || containsVar(v.Parameters()) {
			return true
		}
	}
	return false
}

// analyzeSum computes the dimension of a sum of products starting at v. With args set the sum ends at a comma.
func analyzeSum(v lexical.Value, args bool) (Dimension, status) {
	if v.IsNil() || v.Type() == lexical.OperatorComma {
		return Dimension{}, invalid
	}
	var sum Dimension
	st := valid
	for first := true; ; first = false {
		prod, next, pst := analyzeProduct(v)
		if pending <= pst {
			return Dimension{}, pst
		}
		st = worse(st, pst)
		if first {
			sum = prod
		} else if s, ok := sum.Add(prod); ok {
			sum = s
		} else {
			return Dimension{}, invalid
		}
		if next.IsNil() || args && next.Type() == lexical.OperatorComma {
			return sum, st
		} else if next.Type() != lexical.OperatorPlus && next.Type() != lexical.OperatorMinus {
			return Dimension{}, invalid
		}
		if v = next.Next(); v.IsNil() {
			return Dimension{}, invalid
		}
	}
}

// analyzeProduct computes the dimension of a product starting at v and returns the unit that follows it.
func analyzeProduct(v lexical.Value) (Dimension, lexical.Value, status) {
	d, st := analyzeUnit(v)
	if pending <= st {
		return Dimension{}, lexical.Value{}, st
	}
	for v = v.Next(); !v.IsNil(); {
		sign := 1
		switch v.Type() {
		case lexical.OperatorMultiply:
		case lexical.OperatorSlash:
			sign = -1
		default:
			return d, v, st
		}
		operand := v.Next()
		if operand.IsNil() {
			return Dimension{}, lexical.Value{}, invalid
		}
		e, est := analyzeUnit(operand)
		if pending <= est {
			return Dimension{}, lexical.Value{}, est
		}
		st = worse(st, est)
		d = d.Multiply(e, sign)
		v = operand.Next()
	}
	return d, v, st
}

// arguments splits the parameters of a math function at its commas.
func arguments(fn lexical.Value) []lexical.Value {
	var args []lexical.Value
	start := fn.Parameters()
	for v := start; !v.IsNil(); v = v.Next() {
		if v.Type() == lexical.OperatorComma {
			args = append(args, start)
			start = v.Next()
		}
	}
	return append(args, start)
}

// sameDimension analyzes arguments that must all share one dimension.
func sameDimension(args []lexical.Value) (Dimension, status) {
	var d Dimension
	st := valid
	for i, arg := range args {
		e, est := analyzeSum(arg, true)
		if pending <= est {
			return Dimension{}, est
		}
		st = worse(st, est)
		if i == 0 {
			d = e
		} else if d2, ok := d.Add(e); ok {
			d = d2
		} else {
			return Dimension{}, invalid
		}
	}
	return d, st
}

// numberArguments analyzes arguments that must all be plain numbers.
func numberArguments(args []lexical.Value) status {
	st := valid
	for _, arg := range args {
		d, est := analyzeSum(arg, true)
		if pending <= est {
			return est
		} else if !d.IsNumber() {
			return invalid
		}
		st = worse(st, est)
	}
	return st
}

func analyzeMath(fn lexical.Value) (Dimension, status) {
	args := arguments(fn)
	switch name := strings.ToLower(fn.Text()); name {
	case "min", "max", "hypot":
		return sameDimension(args)
	case "clamp":
		if len(args) != 3 {
			return Dimension{}, invalid
		}
		return sameDimension(args)
	case "abs":
		if len(args) != 1 {
			return Dimension{}, invalid
		}
		return analyzeSum(args[0], true)
	case "sign":
		if len(args) != 1 {
			return Dimension{}, invalid
		}
		_, st := analyzeSum(args[0], true)
		return Dimension{}, st
	case "sin", "cos", "tan":
		if len(args) != 1 {
			return Dimension{}, invalid
		}
		d, st := analyzeSum(args[0], true)
		if st < pending && !d.IsNumber() && !d.Accepts(Angle) {
			return Dimension{}, invalid
		}
		return Dimension{}, st
	case "asin", "acos", "atan":
		if len(args) != 1 {
			return Dimension{}, invalid
		}
		return dimensionOf(Angle), numberArguments(args)
	case "atan2":
		if len(args) != 2 {
			return Dimension{}, invalid
		}
		_, st := sameDimension(args)
		return dimensionOf(Angle), st
	case "pow":
		if len(args) != 2 {
			return Dimension{}, invalid
		}
		return Dimension{}, numberArguments(args)
	case "sqrt", "exp":
		if len(args) != 1 {
			return Dimension{}, invalid
		}
		return Dimension{}, numberArguments(args)
	case "log":
		if 2 < len(args) {
			return Dimension{}, invalid
		}
		return Dimension{}, numberArguments(args)
	case "round", "mod", "rem":
		if name == "round" && 0 < len(args) && isRoundingStrategy(args[0]) {
			args = args[1:]
		}
		if len(args) == 0 || 2 < len(args) || name != "round" && len(args) != 2 {
			return Dimension{}, invalid
		}
		return sameDimension(args)
	}
	return Dimension{}, invalid
}

func isRoundingStrategy(v lexical.Value) bool {
	if v.Type() != lexical.Ident || !(v.Next().IsNil() || v.Next().Type() == lexical.OperatorComma) {
		return false
	}
	switch strings.ToLower(v.Text()) {
	case "nearest", "up", "down", "to-zero":
		return true
	}
	return false
}

// isNumeric returns true for the categories that have a dimension.
func isNumeric(c Category) bool {
	switch c {
	case Length, Percentage, LengthPercentage, Number, Integer, Angle, Time, Frequency, Resolution, Flex:
		return true
	}
	return false
}

// attrDimension returns the dimension declared by the type of an attr() function. A fallback that disagrees with the
// declared type leaves the result pending, unless the two split between length and percentage.
func attrDimension(attr lexical.Value) (Dimension, status) {
	declared, fallback := attrParts(attr)
	if !isNumeric(declared) {
		return Dimension{}, invalid
	}
	d := dimensionOf(declared)
	if fallback.IsNil() {
		return d, valid
	}
	fd, fst := analyzeUnit(fallback)
	if pending <= fst {
		return Dimension{}, pending
	} else if fd.Equal(d) {
		return d, worse(valid, fst)
	}
	dc, dok := d.Single()
	fc, fok := fd.Single()
	if dok && fok && isLengthOrPercentage(dc) && isLengthOrPercentage(fc) {
		return dimensionOf(LengthPercentage), lenient
	}
	return Dimension{}, pending
}

// attrParts returns the declared category and the fallback of attr(name type, fallback).
func attrParts(attr lexical.Value) (Category, lexical.Value) {
	declared := String
	var fallback lexical.Value
	p := attr.Parameters()
	if p.IsNil() {
		return Universal, fallback
	}
	p = p.Next()
	if !p.IsNil() && p.Type() != lexical.OperatorComma {
		declared = attrType(p)
		p = p.Next()
	}
	if !p.IsNil() && p.Type() == lexical.OperatorComma {
		fallback = p.Next()
	}
	return declared, fallback
}

func attrType(v lexical.Value) Category {
	switch v.Type() {
	case lexical.Ident:
		name := strings.ToLower(v.Text())
		if c, ok := categoryByName[name]; ok {
			return c
		} else if name == "string" || name == "raw-string" {
			return String
		} else if c := UnitCategory(name); c != Universal {
			return c
		}
	case lexical.Function:
		if strings.EqualFold(v.Text(), "type") {
			if s, err := Parse(v.Parameters().String()); err == nil && s.Next == nil && s.Multiplier == None {
				return s.Category
			}
		}
	}
	return Universal
}
