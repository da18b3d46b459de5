//go:build linux

package main

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"html/template"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/ja7ad/taskmon/pkg/telemetry"
	"github.com/ja7ad/taskmon/pkg/types"
)

// record is one printed tick as written to the CSV, JSON and HTML outputs.
type record struct {
	At           time.Time   `json:"time"`
	CPUPercent   float64     `json:"cpu_percent"`
	RAMPercent   float64     `json:"ram_percent"`
	SwapPercent  float64     `json:"swap_percent"`
	RAMUsed      types.Bytes `json:"ram_used_bytes"`
	DiskReadBps  float64     `json:"disk_read_bps"`
	DiskWriteBps float64     `json:"disk_write_bps"`
	NetRxBps     float64     `json:"net_rx_bps"`
	NetTxBps     float64     `json:"net_tx_bps"`
}

func newRecord(s telemetry.Snapshot) record {
	return record{
		At:           s.SampledAt,
		CPUPercent:   s.CPUPercent,
		RAMPercent:   s.RAMPercent(),
		SwapPercent:  s.SwapPercent(),
		RAMUsed:      types.Bytes(s.RAMUsedBytes),
		DiskReadBps:  s.DiskReadBps,
		DiskWriteBps: s.DiskWriteBps,
		NetRxBps:     s.NetRxBps,
		NetTxBps:     s.NetTxBps,
	}
}

// summarize averages every numeric column; At is the last row's time.
func summarize(rows []record) record {
	var avg record
	if len(rows) == 0 {
		return avg
	}
	var ram float64
	for _, r := range rows {
		avg.CPUPercent += r.CPUPercent
		avg.RAMPercent += r.RAMPercent
		avg.SwapPercent += r.SwapPercent
		ram += float64(r.RAMUsed)
		avg.DiskReadBps += r.DiskReadBps
		avg.DiskWriteBps += r.DiskWriteBps
		avg.NetRxBps += r.NetRxBps
		avg.NetTxBps += r.NetTxBps
	}
	n := float64(len(rows))
	avg.At = rows[len(rows)-1].At
	avg.CPUPercent /= n
	avg.RAMPercent /= n
	avg.SwapPercent /= n
	avg.RAMUsed = types.Bytes(ram / n)
	avg.DiskReadBps /= n
	avg.DiskWriteBps /= n
	avg.NetRxBps /= n
	avg.NetTxBps /= n
	return avg
}

var csvHeader = []string{
	"time", "cpu_percent", "ram_percent", "swap_percent", "ram_used_bytes",
	"disk_read_bps", "disk_write_bps", "net_rx_bps", "net_tx_bps",
}

// recorder fans records out to the optional file outputs and keeps them
// for the exit summary.
type recorder struct {
	csvF  *os.File
	csvW  *csv.Writer
	jsonF *os.File
	enc   *json.Encoder

	htmlPath string
	rows     []record
}

func create(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return os.Create(path)
}

func openRecorder(csvPath, jsonPath, htmlPath string) (*recorder, error) {
	r := &recorder{htmlPath: htmlPath}
	if csvPath != "" {
		f, err := create(csvPath)
		if err != nil {
			return nil, err
		}
		r.csvF, r.csvW = f, csv.NewWriter(f)
		if err := r.csvW.Write(csvHeader); err != nil {
			_ = r.close()
			return nil, err
		}
		r.csvW.Flush()
	}
	if jsonPath != "" {
		f, err := create(jsonPath)
		if err != nil {
			_ = r.close()
			return nil, err
		}
		r.jsonF, r.enc = f, json.NewEncoder(f)
	}
	return r, nil
}

func fmtFloat(v float64) string { return strconv.FormatFloat(v, 'f', 3, 64) }

func (r *recorder) add(rec record) error {
	r.rows = append(r.rows, rec)
	if r.csvW != nil {
		_ = r.csvW.Write([]string{
			rec.At.Format(time.RFC3339),
			fmtFloat(rec.CPUPercent), fmtFloat(rec.RAMPercent), fmtFloat(rec.SwapPercent),
			strconv.FormatUint(uint64(rec.RAMUsed), 10),
			fmtFloat(rec.DiskReadBps), fmtFloat(rec.DiskWriteBps),
			fmtFloat(rec.NetRxBps), fmtFloat(rec.NetTxBps),
		})
		r.csvW.Flush()
		if err := r.csvW.Error(); err != nil {
			return err
		}
	}
	if r.enc != nil {
		return r.enc.Encode(rec)
	}
	return nil
}

func (r *recorder) close() error {
	var errs []error
	if r.csvF != nil {
		r.csvW.Flush()
		errs = append(errs, r.csvW.Error(), r.csvF.Close())
	}
	if r.jsonF != nil {
		errs = append(errs, r.jsonF.Close())
	}
	if r.htmlPath != "" {
		errs = append(errs, writeHTML(r.htmlPath, r.rows))
	}
	return errors.Join(errs...)
}

func writeHTML(path string, rows []record) error {
	type view struct {
		Rows []record
		Avg  record
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, view{Rows: rows, Avg: summarize(rows)}); err != nil {
		return err
	}
	f, err := create(path)
	if err != nil {
		return err
	}
	if _, err := f.Write(buf.Bytes()); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

var tpl = template.Must(template.New("rep").Parse(`<!doctype html>
<html lang="en"><meta charset="utf-8">
<title>taskmon report</title>
<style>
body{font-family:system-ui,Segoe UI,Roboto,Helvetica,Arial,sans-serif;margin:20px}
h1,h2{margin:0 0 8px}
table{border-collapse:collapse;width:100%;font-size:14px}
th,td{border:1px solid #ddd;padding:6px 8px;text-align:right}
th:first-child,td:first-child{text-align:left}
ul{margin:6px 0 14px;padding-left:20px}
.small{color:#555}
</style>

<h1>taskmon report</h1>

<p class="small">
Rows: {{len .Rows}} &nbsp;|&nbsp;
Avg CPU: {{printf "%.2f" .Avg.CPUPercent}}% &nbsp;|&nbsp;
Avg RAM: {{printf "%.2f" .Avg.RAMPercent}}%
</p>

<h2>Summary</h2>
<ul>
<li>Avg CPU: {{printf "%.2f" .Avg.CPUPercent}}%</li>
<li>Avg RAM: {{printf "%.2f" .Avg.RAMPercent}}% ({{.Avg.RAMUsed.Humanized}})</li>
<li>Avg swap: {{printf "%.2f" .Avg.SwapPercent}}%</li>
<li>Avg disk read/write: {{printf "%.0f" .Avg.DiskReadBps}} / {{printf "%.0f" .Avg.DiskWriteBps}} B/s</li>
<li>Avg net rx/tx: {{printf "%.0f" .Avg.NetRxBps}} / {{printf "%.0f" .Avg.NetTxBps}} B/s</li>
</ul>

<h2>Per-tick</h2>
<table>
<thead>
<tr>
<th>time</th><th>cpu %</th><th>ram %</th><th>swap %</th><th>ram used</th>
<th>disk read B/s</th><th>disk write B/s</th><th>net rx B/s</th><th>net tx B/s</th>
</tr>
</thead>
<tbody>
{{range .Rows}}
<tr>
<td style="text-align:left">{{.At.Format "2006-01-02 15:04:05"}}</td>
<td>{{printf "%.2f" .CPUPercent}}</td>
<td>{{printf "%.2f" .RAMPercent}}</td>
<td>{{printf "%.2f" .SwapPercent}}</td>
<td>{{.RAMUsed.Humanized}}</td>
<td>{{printf "%.0f" .DiskReadBps}}</td>
<td>{{printf "%.0f" .DiskWriteBps}}</td>
<td>{{printf "%.0f" .NetRxBps}}</td>
<td>{{printf "%.0f" .NetTxBps}}</td>
</tr>
{{end}}
</tbody>
</table>
</html>`))
