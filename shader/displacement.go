package shader

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
)

// Axis selects which texture coordinates the effect displaces.
type Axis string

const (
	AxisX  Axis = "x"
	AxisY  Axis = "y"
	AxisXY Axis = "xy"
)

// Has reports whether the axis string contains the given coordinate letter.
// Unknown axis values are not rejected, they just match fewer letters.
func (a Axis) Has(letter string) bool {
	return strings.Contains(string(a), letter)
}

// Op is an arithmetic operator token emitted into the displacement formula.
type Op string

const (
	Mul Op = "*"
	Div Op = "/"
	Add Op = "+"
	Sub Op = "-"
)

// Ops lists the operators a randomized formula draws from.
var Ops = [...]Op{Mul, Div, Add, Sub}

// Chooser picks an index in [0, n). *rand.Rand from math/rand/v2 satisfies it.
type Chooser interface {
	IntN(n int) int
}

type globalChooser struct{}

func (globalChooser) IntN(n int) int { return rand.IntN(n) }

// RandomOp returns one of Ops chosen uniformly by c. A nil chooser uses the
// process-wide random source.
func RandomOp(c Chooser) Op {
	if c == nil {
		c = globalChooser{}
	}
	return Ops[c.IntN(len(Ops))]
}

// Displacement holds the numeric parameters of the effect.
type Displacement struct {
	Interval    float64
	YMultiplier float64
	XMultiplier float64
	Div         float64
	Axis        Axis
	RandomOp    bool
}

// FormatFloat renders v as a base-10 literal with 20 fractional digits.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 20, 64)
}

// opsPerStatement is the number of operators in a statement that can be
// randomized. The trailing division by Div is fixed.
const opsPerStatement = 4

func (d Displacement) ops(c Chooser) [opsPerStatement]Op {
	var ops [opsPerStatement]Op
	for i := range ops {
		if d.RandomOp {
			ops[i] = RandomOp(c)
		} else {
			ops[i] = Mul
		}
	}
	return ops
}

// XStatement returns the GLSL statement displacing textureCoord.x, or an
// empty string when the axis does not include x.
func XStatement(d Displacement, c Chooser) string {
	if !d.Axis.Has("x") {
		return ""
	}
	return statement("x", "sin", "cos", d, d.ops(c))
}

// YStatement returns the GLSL statement displacing textureCoord.y, or an
// empty string when the axis does not include y.
func YStatement(d Displacement, c Chooser) string {
	if !d.Axis.Has("y") {
		return ""
	}
	return statement("y", "cos", "sin", d, d.ops(c))
}

func statement(coord, first, second string, d Displacement, ops [opsPerStatement]Op) string {
	return fmt.Sprintf("textureCoord.%s += %s(textureCoord.y %s %s) %s %s(textureCoord.x %s %s) %s (cos(uTime / %s)) / %s;",
		coord,
		first, ops[0], FormatFloat(d.YMultiplier),
		ops[1],
		second, ops[2], FormatFloat(d.XMultiplier),
		ops[3],
		FormatFloat(d.Interval),
		FormatFloat(d.Div),
	)
}
