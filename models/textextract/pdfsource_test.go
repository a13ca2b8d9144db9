package textextract

import (
	"testing"

	"github.com/ledongthuc/pdf"
	"github.com/stretchr/testify/assert"
)

func char(s string, x, y float64) pdf.Text {
	return pdf.Text{S: s, X: x, Y: y, W: 6, FontSize: 10}
}

func TestAssembleOrdersLinesTopToBottom(t *testing.T) {
	chars := []pdf.Text{
		char("l", 12, 700),
		char("K", 0, 700),
		char("i", 6, 700),
		char("e", 18, 700),
		char("s", 24, 700),
		char("S", 0, 680),
		char("a", 6, 680),
		char("n", 12, 680),
		char("d", 18, 680),
	}
	assert.Equal(t, "Kies\nSand", assemble(chars))
}

func TestAssembleInsertsSpacesOnGaps(t *testing.T) {
	chars := []pdf.Text{
		char("1", 0, 700),
		char(".", 6, 700),
		char("5", 12, 700),
		char("m", 40, 700), // clear horizontal gap
	}
	assert.Equal(t, "1.5 m", assemble(chars))
}

func TestAssembleToleratesBaselineJitter(t *testing.T) {
	chars := []pdf.Text{
		char("a", 0, 700),
		char("b", 6, 702), // within half a font size
	}
	assert.Equal(t, "ab", assemble(chars))
}

func TestAssembleEmpty(t *testing.T) {
	assert.Equal(t, "", assemble(nil))
}
