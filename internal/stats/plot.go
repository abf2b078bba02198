package stats

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"golang.org/x/term"
)

// Series represents a named data series for plotting.
type Series struct {
	Name   string
	Values []float64
}

type lineStyle struct {
	name   string
	period int
	on     int
}

const (
	defaultPlotHeight   = 8
	minPlotWidth        = 10
	axisSeparator       = " ┤ "
	terminalWidthBackup = 80
)

var lineStyles = []lineStyle{
	{name: "solid", period: 1, on: 1},
	{name: "dotted", period: 4, on: 1},
	{name: "dashed", period: 6, on: 3},
}

var seriesColors = []color.Attribute{color.FgCyan, color.FgMagenta, color.FgYellow, color.FgGreen}

// PlotSeries renders a braille line chart. All series share one value axis
// starting at zero.
func PlotSeries(w io.Writer, title string, series []Series, width, height int, useColor bool) error {
	series = filterSeries(series)
	if len(series) == 0 {
		return nil
	}
	if height <= 0 {
		height = defaultPlotHeight
	}
	axisWidth := axisLabelWidth(series)
	if width <= 0 {
		width = PlotWidthFor(TerminalWidth(), axisWidth)
	}
	if width < minPlotWidth {
		width = minPlotWidth
	}

	maxVal := 0.0
	scaled := make([]Series, 0, len(series))
	for _, s := range series {
		values := resampleSeries(s.Values, width)
		for _, v := range values {
			maxVal = math.Max(maxVal, v)
		}
		scaled = append(scaled, Series{Name: s.Name, Values: values})
	}
	if maxVal <= 0 {
		maxVal = 1
	}

	dotRows := height * 4
	layers := make([][][]uint8, len(scaled))
	for si, s := range scaled {
		layers[si] = makeCells(height, width)
		style := lineStyles[si%len(lineStyles)]
		prevX, prevY := -1, -1
		for x, v := range s.Values {
			px, py := x*2, valueToRow(v, maxVal, dotRows)
			if prevX < 0 {
				if style.shouldPlot(px) {
					setBrailleDot(layers[si], px, py)
				}
			} else {
				drawLine(prevX, prevY, px, py, func(dx, dy int) {
					if style.shouldPlot(dx) {
						setBrailleDot(layers[si], dx, dy)
					}
				})
			}
			prevX, prevY = px, py
		}
	}

	palette := make([]*color.Color, len(scaled))
	for i := range palette {
		palette[i] = colorFor(useColor, seriesColors[i%len(seriesColors)])
	}

	if title != "" {
		if _, err := fmt.Fprintln(w, colorFor(useColor, color.Bold).Sprint(title)); err != nil {
			return err
		}
	}
	labels := axisLabels(height, maxVal)
	for y := 0; y < height; y++ {
		var row strings.Builder
		row.WriteString(padCell(labels[y], axisWidth, true))
		row.WriteString(axisSeparator)
		for x := 0; x < width; x++ {
			mask, layer := composeCell(layers, x, y)
			ch := string(brailleFromMask(mask))
			if layer >= 0 {
				ch = palette[layer].Sprint(ch)
			}
			row.WriteString(ch)
		}
		if _, err := fmt.Fprintln(w, row.String()); err != nil {
			return err
		}
	}

	legend := make([]string, len(scaled))
	for i, s := range scaled {
		legend[i] = palette[i].Sprintf("%c %s (%s)", brailleFromMask(0x01), s.Name, lineStyles[i%len(lineStyles)].name)
	}
	_, err := fmt.Fprintln(w, strings.Repeat(" ", axisWidth+displayWidth(axisSeparator))+strings.Join(legend, "  "))
	return err
}

func filterSeries(series []Series) []Series {
	out := make([]Series, 0, len(series))
	for _, s := range series {
		if len(s.Values) == 0 {
			continue
		}
		out = append(out, s)
	}
	return out
}

func axisLabelWidth(series []Series) int {
	maxVal := 0.0
	for _, s := range series {
		for _, v := range s.Values {
			maxVal = math.Max(maxVal, v)
		}
	}
	return max(displayWidth(FormatCount(int(math.Round(maxVal)))), 1)
}

func axisLabels(height int, maxVal float64) []string {
	labels := make([]string, height)
	if height == 0 {
		return labels
	}
	labels[0] = FormatCount(int(math.Round(maxVal)))
	if height > 2 {
		labels[height/2] = FormatCount(int(math.Round(maxVal / 2)))
	}
	if height > 1 {
		labels[height-1] = "0"
	}
	return labels
}

// PlotWidthFor computes a plot width that fits next to an axis of axisWidth cells.
func PlotWidthFor(totalWidth, axisWidth int) int {
	if totalWidth <= 0 {
		return minPlotWidth
	}
	return max(totalWidth-axisWidth-displayWidth(axisSeparator), minPlotWidth)
}

// TerminalWidth returns the stdout width, or 80 when stdout is not a terminal.
func TerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

// ShouldUseColor reports whether w is a terminal and NO_COLOR is unset.
func ShouldUseColor(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(file.Fd()) || isatty.IsCygwinTerminal(file.Fd())
}

func colorFor(enabled bool, attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if enabled {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c
}

func makeCells(height, width int) [][]uint8 {
	cells := make([][]uint8, height)
	for y := range cells {
		cells[y] = make([]uint8, width)
	}
	return cells
}

// composeCell merges the dots of every layer; the first layer with a dot
// decides the color.
func composeCell(layers [][][]uint8, x, y int) (uint8, int) {
	var mask uint8
	first := -1
	for i, cells := range layers {
		if cells[y][x] == 0 {
			continue
		}
		if first < 0 {
			first = i
		}
		mask |= cells[y][x]
	}
	return mask, first
}

func (ls lineStyle) shouldPlot(x int) bool {
	if ls.period <= 1 {
		return true
	}
	return x%ls.period < ls.on
}

// resampleSeries averages down or linearly interpolates up to width points.
func resampleSeries(values []float64, width int) []float64 {
	if len(values) == 0 || width <= 0 {
		return nil
	}
	out := make([]float64, width)
	switch {
	case len(values) == width:
		copy(out, values)
	case len(values) > width:
		for i := range out {
			start := i * len(values) / width
			end := max((i+1)*len(values)/width, start+1)
			var sum float64
			for _, v := range values[start:end] {
				sum += v
			}
			out[i] = sum / float64(end-start)
		}
	case len(values) == 1 || width == 1:
		for i := range out {
			out[i] = values[0]
		}
	default:
		for i := range out {
			pos := float64(i) * float64(len(values)-1) / float64(width-1)
			idx := int(pos)
			if idx >= len(values)-1 {
				out[i] = values[len(values)-1]
				continue
			}
			frac := pos - float64(idx)
			out[i] = values[idx]*(1-frac) + values[idx+1]*frac
		}
	}
	return out
}

func valueToRow(v, maxVal float64, rows int) int {
	if rows <= 1 {
		return 0
	}
	row := int(math.Round((1 - v/maxVal) * float64(rows-1)))
	return min(max(row, 0), rows-1)
}

// drawLine walks a Bresenham line between two dot coordinates.
func drawLine(x0, y0, x1, y1 int, plot func(x, y int)) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		plot(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// brailleDots maps a (column, row) position inside a 2x4 braille cell to its bit.
var brailleDots = [2][4]uint8{
	{0x01, 0x02, 0x04, 0x40},
	{0x08, 0x10, 0x20, 0x80},
}

func setBrailleDot(cells [][]uint8, x, y int) {
	cy, cx := y/4, x/2
	if x < 0 || y < 0 || cy >= len(cells) || cx >= len(cells[cy]) {
		return
	}
	cells[cy][cx] |= brailleDots[x%2][y%4]
}

func brailleFromMask(mask uint8) rune {
	return rune(0x2800 + int(mask))
}
