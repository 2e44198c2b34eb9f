// SPDX-License-Identifier: EPL-2.0

// Package inspect records a summary of the waveform after every pipeline
// stage and renders it as a table.
//
//	tbl := inspect.New()
//	p := audpipe.New(st, audpipe.WithObserver(tbl))
//	...
//	fmt.Println(tbl.Render())
package inspect

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/ik5/audpipe"
	"github.com/ik5/audpipe/audio"
)

// Row summarises one stage of one run.
type Row struct {
	File       string
	Stage      audpipe.Stage
	SampleRate int
	Channels   int
	Frames     int
	Duration   time.Duration
	Peak       float64
	RMS        float64
}

// Table is an audpipe.Observer safe for concurrent runs.
type Table struct {
	mu   sync.Mutex
	rows []Row
}

var _ audpipe.Observer = (*Table)(nil)

func New() *Table { return &Table{} }

// Observe appends a row for w.
func (t *Table) Observe(ctx context.Context, stage audpipe.Stage, w *audio.Waveform) {
	row := Row{
		Stage:      stage,
		SampleRate: w.SampleRate,
		Channels:   w.NumChannels(),
		Frames:     w.Frames(),
		Duration:   w.Duration(),
		Peak:       w.Peak(),
		RMS:        w.RMS(),
	}
	if run, ok := audpipe.RunFromContext(ctx); ok {
		row.File = run.File
	}

	t.mu.Lock()
	t.rows = append(t.rows, row)
	t.mu.Unlock()
}

// Rows returns a copy of the recorded rows in arrival order.
func (t *Table) Rows() []Row {
	t.mu.Lock()
	defer t.mu.Unlock()

	return append([]Row(nil), t.rows...)
}

// Reset drops all rows.
func (t *Table) Reset() {
	t.mu.Lock()
	t.rows = nil
	t.mu.Unlock()
}

var headers = table.Row{"File", "Stage", "Rate", "Ch", "Frames", "Duration", "Peak", "RMS"}

// Render formats the rows. It returns "" when nothing was observed.
func (t *Table) Render() string {
	rows := t.Rows()
	if len(rows) == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(headers)

	for _, r := range rows {
		tw.AppendRow(table.Row{
			r.File,
			string(r.Stage),
			r.SampleRate,
			r.Channels,
			r.Frames,
			r.Duration.Round(time.Millisecond).String(),
			fmt.Sprintf("%.3f", r.Peak),
			fmt.Sprintf("%.3f", r.RMS),
		})
	}

	configs := make([]table.ColumnConfig, 0, len(headers))
	for i := range headers {
		align := text.AlignRight
		if i < 2 {
			align = text.AlignLeft
		}
		configs = append(configs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}

// WriteTo writes the rendered table followed by a newline.
func (t *Table) WriteTo(w io.Writer) (int64, error) {
	out := t.Render()
	if out == "" {
		return 0, nil
	}

	n, err := io.WriteString(w, out+"\n")
	return int64(n), err
}
