package chart

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"time"
	"unicode/utf8"

	svg "github.com/ajstarks/svgo"
)

// 图表配色
const (
	HighlightColor = "#450557"
	MutedColor     = "#7f7f7f"
	AxisColor      = "#999999"
	TextColor      = "#333333"
)

// Viridis 州分布图使用的渐变色
var Viridis = []string{
	"#440154", "#482878", "#3e4989", "#31688e", "#26828e",
	"#1f9e89", "#35b779", "#6ece58", "#b5de2b", "#fde725",
}

// Point 一个分类数据点
type Point struct {
	Label string
	Value float64
}

// TimePoint 一个时间序列数据点
type TimePoint struct {
	At    time.Time
	Value float64
}

// Options 图表选项
type Options struct {
	Title       string
	Width       int
	Height      int
	Color       string   // 默认柱/线颜色
	Highlight   bool     // 第一根柱使用 HighlightColor，其余 MutedColor
	Palette     []string // 按位置取色，优先于 Color
	Mirror      bool     // 横向柱状图从右向左画，标签在右侧
	LabelChars  int      // 分类标签最多显示的字符数
	ValueFormat func(float64) string
}

func (o Options) withDefaults(width, height int) Options {
	if o.Width <= 0 {
		o.Width = width
	}
	if o.Height <= 0 {
		o.Height = height
	}
	if o.Color == "" {
		o.Color = HighlightColor
	}
	if o.LabelChars <= 0 {
		o.LabelChars = 14
	}
	if o.ValueFormat == nil {
		o.ValueFormat = formatNumber
	}
	return o
}

func (o Options) colorAt(i, n int) string {
	if len(o.Palette) > 0 {
		idx := 0
		if n > 1 {
			idx = i * (len(o.Palette) - 1) / (n - 1)
		}
		return o.Palette[idx]
	}
	if o.Highlight {
		if i == 0 {
			return HighlightColor
		}
		return MutedColor
	}
	return o.Color
}

// LineChart 折线图，横轴按时间等比例分布
func LineChart(points []TimePoint, opts Options) []byte {
	opts = opts.withDefaults(800, 360)

	var buf bytes.Buffer
	canvas := svg.New(&buf)
	canvas.Start(opts.Width, opts.Height)
	canvas.Title(opts.Title)
	canvas.Rect(0, 0, opts.Width, opts.Height, "fill:white")
	drawTitle(canvas, opts)

	if len(points) == 0 {
		drawEmpty(canvas, opts)
		canvas.End()
		return buf.Bytes()
	}

	left, right, top, bottom := 60, 20, 40, 40
	plotW := opts.Width - left - right
	plotH := opts.Height - top - bottom

	minAt, maxAt := points[0].At, points[0].At
	maxV := 0.0
	for _, p := range points {
		if p.At.Before(minAt) {
			minAt = p.At
		}
		if p.At.After(maxAt) {
			maxAt = p.At
		}
		maxV = math.Max(maxV, p.Value)
	}
	if maxV == 0 {
		maxV = 1
	}
	span := maxAt.Sub(minAt)

	xOf := func(t time.Time) int {
		if span == 0 {
			return left + plotW/2
		}
		return left + int(float64(plotW)*float64(t.Sub(minAt))/float64(span))
	}
	yOf := func(v float64) int {
		return top + plotH - int(float64(plotH)*v/maxV)
	}

	drawAxes(canvas, left, top, plotW, plotH)
	for _, v := range []float64{0, maxV / 2, maxV} {
		y := yOf(v)
		canvas.Line(left-4, y, left, y, "stroke:"+AxisColor)
		canvas.Text(left-8, y+4, opts.ValueFormat(v), "text-anchor:end;font-size:11px;fill:"+TextColor)
	}
	for _, t := range axisTimes(minAt, maxAt) {
		x := xOf(t)
		canvas.Line(x, top+plotH, x, top+plotH+4, "stroke:"+AxisColor)
		canvas.Text(x, top+plotH+18, t.Format("2006-01-02"), "text-anchor:middle;font-size:11px;fill:"+TextColor)
	}

	xs := make([]int, len(points))
	ys := make([]int, len(points))
	for i, p := range points {
		xs[i] = xOf(p.At)
		ys[i] = yOf(p.Value)
	}
	canvas.Polyline(xs, ys, fmt.Sprintf("fill:none;stroke:%s;stroke-width:2", opts.Color))
	for i := range points {
		canvas.Circle(xs[i], ys[i], 3, "fill:"+opts.Color)
	}

	canvas.End()
	return buf.Bytes()
}

// HorizontalBarChart 横向柱状图，分类在纵轴
func HorizontalBarChart(bars []Point, opts Options) []byte {
	opts = opts.withDefaults(600, 320)

	var buf bytes.Buffer
	canvas := svg.New(&buf)
	canvas.Start(opts.Width, opts.Height)
	canvas.Title(opts.Title)
	canvas.Rect(0, 0, opts.Width, opts.Height, "fill:white")
	drawTitle(canvas, opts)

	if len(bars) == 0 {
		drawEmpty(canvas, opts)
		canvas.End()
		return buf.Bytes()
	}

	labelW := opts.LabelChars*7 + 16
	left, right, top, bottom := labelW, 50, 40, 20
	if opts.Mirror {
		left, right = 50, labelW
	}
	plotW := opts.Width - left - right
	rowH := (opts.Height - top - bottom) / len(bars)
	barH := int(float64(rowH) * 0.7)
	maxV := maxValue(bars)

	for i, b := range bars {
		y := top + i*rowH + (rowH-barH)/2
		length := int(float64(plotW) * b.Value / maxV)
		label := shorten(b.Label, opts.LabelChars)
		value := opts.ValueFormat(b.Value)
		style := "fill:" + opts.colorAt(i, len(bars))
		textY := y + barH/2 + 4

		if opts.Mirror {
			canvas.Rect(left+plotW-length, y, length, barH, style)
			canvas.Text(left+plotW+8, textY, label, "text-anchor:start;font-size:12px;fill:"+TextColor)
			canvas.Text(left+plotW-length-4, textY, value, "text-anchor:end;font-size:11px;fill:"+TextColor)
		} else {
			canvas.Rect(left, y, length, barH, style)
			canvas.Text(left-8, textY, label, "text-anchor:end;font-size:12px;fill:"+TextColor)
			canvas.Text(left+length+4, textY, value, "text-anchor:start;font-size:11px;fill:"+TextColor)
		}
	}

	axisX := left
	if opts.Mirror {
		axisX = left + plotW
	}
	canvas.Line(axisX, top, axisX, opts.Height-bottom, "stroke:"+AxisColor)

	canvas.End()
	return buf.Bytes()
}

// VerticalBarChart 纵向柱状图，分类标签旋转 90 度
func VerticalBarChart(bars []Point, opts Options) []byte {
	opts = opts.withDefaults(360, 360)

	var buf bytes.Buffer
	canvas := svg.New(&buf)
	canvas.Start(opts.Width, opts.Height)
	canvas.Title(opts.Title)
	canvas.Rect(0, 0, opts.Width, opts.Height, "fill:white")
	drawTitle(canvas, opts)

	if len(bars) == 0 {
		drawEmpty(canvas, opts)
		canvas.End()
		return buf.Bytes()
	}

	left, right, top := 50, 10, 40
	bottom := opts.LabelChars*7 + 12
	plotW := opts.Width - left - right
	plotH := opts.Height - top - bottom
	colW := plotW / len(bars)
	barW := int(float64(colW) * 0.7)
	maxV := maxValue(bars)

	drawAxes(canvas, left, top, plotW, plotH)
	for i, b := range bars {
		x := left + i*colW + (colW-barW)/2
		length := int(float64(plotH) * b.Value / maxV)
		canvas.Rect(x, top+plotH-length, barW, length, "fill:"+opts.colorAt(i, len(bars)))
		canvas.Text(x+barW/2, top+plotH-length-4, opts.ValueFormat(b.Value), "text-anchor:middle;font-size:11px;fill:"+TextColor)

		canvas.TranslateRotate(x+barW/2+4, top+plotH+6, -90)
		canvas.Text(0, 0, shorten(b.Label, opts.LabelChars), "text-anchor:end;font-size:11px;fill:"+TextColor)
		canvas.Gend()
	}

	canvas.End()
	return buf.Bytes()
}

func drawTitle(canvas *svg.SVG, opts Options) {
	if opts.Title == "" {
		return
	}
	canvas.Text(opts.Width/2, 24, opts.Title, "text-anchor:middle;font-size:16px;font-weight:bold;fill:"+TextColor)
}

func drawEmpty(canvas *svg.SVG, opts Options) {
	canvas.Text(opts.Width/2, opts.Height/2, "No data", "text-anchor:middle;font-size:14px;fill:"+AxisColor)
}

func drawAxes(canvas *svg.SVG, left, top, plotW, plotH int) {
	canvas.Line(left, top, left, top+plotH, "stroke:"+AxisColor)
	canvas.Line(left, top+plotH, left+plotW, top+plotH, "stroke:"+AxisColor)
}

// axisTimes 横轴刻度：起点、中点、终点
func axisTimes(minAt, maxAt time.Time) []time.Time {
	if !maxAt.After(minAt) {
		return []time.Time{minAt}
	}
	mid := minAt.Add(maxAt.Sub(minAt) / 2)
	return []time.Time{minAt, mid, maxAt}
}

func maxValue(points []Point) float64 {
	maxV := 0.0
	for _, p := range points {
		maxV = math.Max(maxV, p.Value)
	}
	if maxV == 0 {
		return 1
	}
	return maxV
}

// shorten 超长的 ID 截断显示
func shorten(label string, limit int) string {
	if utf8.RuneCountInString(label) <= limit {
		return label
	}
	runes := []rune(label)
	return string(runes[:limit-1]) + "…"
}

func formatNumber(v float64) string {
	if v == math.Trunc(v) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}
