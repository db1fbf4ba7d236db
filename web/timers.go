package web

import (
	"bytes"
	"fmt"
	"html"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	chart "github.com/wcharczuk/go-chart"
	"github.com/zeebo/drawscan/internal/timing"
)

const timersPrefix = "/timers/"

// timers serves a table of every timer at /timers/ and an svg latency
// chart for one timer at /timers/<name>.
func (h *Handler) timers(w http.ResponseWriter, req *http.Request) {
	name := strings.TrimPrefix(req.URL.Path, timersPrefix)
	if name == "" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprintln(w, `<meta charset="UTF-8">`)
		fmt.Fprintln(w, "<table border=1>")
		fmt.Fprintln(w, "<tr><td>name</td><td>current</td><td>total</td><td>average</td><td>p50</td><td>p99</td><td>errors</td></tr>")
		timing.Times(func(name string, st *timing.State) bool {
			his := st.Histogram()
			fmt.Fprintf(w, `<tr><td><a href="%[1]s">%[1]s</a></td><td>%d</td><td>%d</td><td>%v</td><td>%v</td><td>%v</td><td>%s</td></tr>`+"\n",
				html.EscapeString(name), st.Current(), his.Total(),
				time.Duration(his.Average()),
				time.Duration(his.Quantile(0.5)),
				time.Duration(his.Quantile(0.99)),
				html.EscapeString(fmt.Sprint(st.Errors())))
			return true
		})
		fmt.Fprintln(w, "</table>")
		return
	}

	state := timing.LookupState(name)
	if state == nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	width, height, pow := 1300, 300, -1
	if qpow, err := strconv.ParseInt(req.URL.Query().Get("pow"), 10, 0); err == nil {
		pow = int(qpow)
	}
	if qwidth, err := strconv.ParseInt(req.URL.Query().Get("width"), 10, 0); err == nil && qwidth > 0 {
		width = int(qwidth)
	}
	if qheight, err := strconv.ParseInt(req.URL.Query().Get("height"), 10, 0); err == nil && qheight > 0 {
		height = int(qheight)
	}

	var buf bytes.Buffer
	_ = latencyChart(width, height, pow, state.Histogram()).Render(chart.SVG, &buf)

	w.Header().Set("Content-Type", chart.ContentTypeSVG)
	_, _ = w.Write(fixupViewbox(buf.Bytes(), width, height))
}

func fixupViewbox(data []byte, width, height int) []byte {
	parts := bytes.SplitN(data, []byte(">"), 2)
	if len(parts) != 2 {
		return data
	}
	return append(append(
		parts[0],
		fmt.Sprintf(` viewBox="-0.5 -0.5 %d %d">`, width, height)...),
		parts[1]...)
}

func percentileLabel(i int) string {
	switch i {
	case 0:
		return "0%"
	case 1:
		return "90%"
	case 2:
		return "99%"
	default:
		return fmt.Sprintf("99.%s%%", strings.Repeat("9", i-2))
	}
}

// latencyChart plots the latency of the histogram against its percentile on
// a log axis where each tick adds a 9. A positive pow cuts the plot at that
// many 9s.
func latencyChart(width, height, pow int, his *timing.Histogram) *chart.Chart {
	var xs, ys []float64
	var total float64

	largest := 1.0
	if pow > 0 {
		largest = 1.0 - math.Pow(0.1, float64(pow))
	}

	his.Percentiles(func(value, count, tot int64) {
		ptile := float64(count) / float64(tot)
		if ptile <= largest {
			total = float64(tot)
			xs = append(xs, ptile)
			ys = append(ys, float64(value))
		}
	})

	if pow <= 0 {
		pow = 0
		for t := total; t >= 1; t /= 10 {
			pow++
		}
	}

	var xticks []chart.Tick
	var xgrids []chart.GridLine
	for i := 0; i < pow; i++ {
		if i > 0 {
			xgrids = append(xgrids, chart.GridLine{Value: float64(i)})
		}
		xticks = append(xticks, chart.Tick{Value: float64(i), Label: percentileLabel(i)})
		if i == 0 {
			for _, q := range []struct {
				div   float64
				label string
			}{{2, "50%"}, {4, "75%"}} {
				xgrids = append(xgrids, chart.GridLine{Value: math.Log10(q.div)})
				xticks = append(xticks, chart.Tick{Value: math.Log10(q.div), Label: q.label})
			}
		}
	}
	xgrids = append(xgrids, chart.GridLine{Value: float64(pow)})
	xticks = append(xticks, chart.Tick{Value: float64(pow), Label: percentileLabel(pow)})

	for i, v := range xs {
		if v == 1 {
			xs[i] = float64(pow)
		} else {
			xs[i] = math.Log10(1 / (1 - v))
		}
	}

	gridStyle := chart.Style{
		Show:        true,
		StrokeWidth: 1,
		StrokeColor: chart.ColorBlack,
	}

	return &chart.Chart{
		Width:  width,
		Height: height,
		XAxis: chart.XAxis{
			NameStyle: chart.StyleShow(),
			Ticks:     xticks,
			GridLines: xgrids,

			Style:          chart.StyleShow(),
			TickStyle:      gridStyle,
			GridMajorStyle: gridStyle,
		},
		YAxis: chart.YAxis{
			AxisType:  chart.YAxisSecondary,
			NameStyle: chart.StyleShow(),
			ValueFormatter: func(x interface{}) string {
				return time.Duration(int64(x.(float64))).String()
			},

			Style:          chart.StyleShow(),
			TickStyle:      gridStyle,
			GridMinorStyle: gridStyle,
			GridMajorStyle: gridStyle,
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Style: chart.Style{
					Show:        true,
					StrokeColor: chart.GetDefaultColor(0),
					StrokeWidth: 3,
				},
				XValues: xs,
				YValues: ys,
			},
		},
	}
}
