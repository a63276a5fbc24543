package core

import (
	"strconv"
	"strings"
)

// Position is a point in the agent's world.
type Position [3]float64

// String renders the position as a tuple, e.g. "(1, 64, -3.5)". Integral
// coordinates are printed without a fractional part.
func (p Position) String() string {
	var b strings.Builder

	b.WriteByte('(')

	for i, v := range p {
		if i > 0 {
			b.WriteString(", ")
		}

		b.WriteString(strconv.FormatFloat(v, 'f', -1, 64))
	}

	b.WriteByte(')')

	return b.String()
}
