package view

import (
	"fmt"
	"strings"

	"github.com/noah-isme/sma-attendance-tracker/internal/models"
)

const (
	chartWidth   = 640
	chartHeight  = 220
	chartPadding = 48
	maxXLabels   = 8

	presentColor = "#4CAF50"
	absentColor  = "#FFC107"
)

// Chart is an attendance history line chart ready for inline SVG.
type Chart struct {
	Width    int
	Height   int
	Polyline string
	Markers  []ChartMarker
	XLabels  []ChartLabel
	YPresent float64
	YAbsent  float64
	Left     float64
	Right    float64
}

// ChartMarker is one plotted (date, status) entry.
type ChartMarker struct {
	X, Y  float64
	Color string
	Title string
}

// ChartLabel is a date tick on the x axis.
type ChartLabel struct {
	X    float64
	Text string
}

// BuildChart lays out a series on a date axis with Present on the top line
// and Absent on the bottom line. Entries sharing a date share an x position.
// An empty series yields nil.
func BuildChart(series []models.SeriesPoint) *Chart {
	if len(series) == 0 {
		return nil
	}
	c := &Chart{
		Width:    chartWidth,
		Height:   chartHeight,
		YPresent: chartPadding,
		YAbsent:  chartHeight - chartPadding,
		Left:     chartPadding,
		Right:    chartWidth - chartPadding,
	}

	first, last := series[0].Date, series[len(series)-1].Date
	days := last.Sub(first.Time).Hours() / 24
	span := c.Right - c.Left
	xOf := func(d models.Date) float64 {
		if days <= 0 {
			return c.Left + span/2
		}
		return c.Left + span*(d.Sub(first.Time).Hours()/24)/days
	}

	points := make([]string, 0, len(series))
	for _, p := range series {
		x := xOf(p.Date)
		y, color := c.YAbsent, absentColor
		if p.Status == models.AttendanceStatusPresent {
			y, color = c.YPresent, presentColor
		}
		points = append(points, fmt.Sprintf("%.1f,%.1f", x, y))
		c.Markers = append(c.Markers, ChartMarker{
			X:     x,
			Y:     y,
			Color: color,
			Title: p.Date.String() + ": " + string(p.Status),
		})
	}
	c.Polyline = strings.Join(points, " ")
	c.XLabels = dateLabels(series, xOf, span/maxXLabels)
	return c
}

// dateLabels picks one tick per distinct date, keeping ticks at least gap
// apart. The first and last dates are always labelled.
func dateLabels(series []models.SeriesPoint, xOf func(models.Date) float64, gap float64) []ChartLabel {
	last := series[len(series)-1].Date
	lastX := xOf(last)

	var labels []ChartLabel
	prev := models.Date{}
	for _, p := range series {
		if p.Date.Equal(last.Time) {
			break
		}
		if p.Date.Equal(prev.Time) {
			continue
		}
		prev = p.Date
		x := xOf(p.Date)
		if lastX-x < gap {
			break
		}
		if len(labels) > 0 && x-labels[len(labels)-1].X < gap {
			continue
		}
		labels = append(labels, ChartLabel{X: x, Text: p.Date.String()})
	}
	return append(labels, ChartLabel{X: lastX, Text: last.String()})
}
