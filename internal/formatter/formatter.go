// package formatter renders probe reports to various formats (plain text, JSON, CSV)
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/xianrendesu-max/senninyoutubeviewerver3/internal/shared"
	"github.com/xianrendesu-max/senninyoutubeviewerver3/internal/tasks"
)

// Supported output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatCSV  = "csv"
)

// Render converts a probe report to the named format.
func Render(report *tasks.ProbeReport, format string) ([]byte, error) {
	switch format {
	case FormatText, "":
		return ToText(report), nil
	case FormatJSON:
		return ToJSON(report)
	case FormatCSV:
		return ToCSV(report)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidFlag, format)
	}
}

// ToText converts a probe report to the human-readable table printed by the
// probe command.
func ToText(report *tasks.ProbeReport) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Probed %d endpoints in %s\n", len(report.Results), shared.FormatLatency(report.Elapsed)))
	buf.WriteString(fmt.Sprintf("Healthy: %d  Unhealthy: %d\n\n", report.Healthy, report.Unhealthy))

	for _, res := range report.Results {
		mark := "ok  "
		detail := shared.FormatLatency(res.Latency)
		if !res.Healthy {
			mark = "FAIL"
			switch {
			case res.Err != nil:
				detail = res.Err.Error()
			case res.StatusCode != 0:
				detail = fmt.Sprintf("status %d, payload rejected", res.StatusCode)
			}
		}
		buf.WriteString(fmt.Sprintf("%s  %-8s  %s  %s\n", mark, res.Target.Capability, res.Target.BaseURL, detail))
	}

	return buf.Bytes()
}

// probeReportJSON is the wire shape of a JSON-rendered report. Errors are
// flattened to strings so the output survives a round trip.
type probeReportJSON struct {
	Healthy   int               `json:"healthy"`
	Unhealthy int               `json:"unhealthy"`
	ElapsedMS int64             `json:"elapsed_ms"`
	Results   []probeResultJSON `json:"results"`
}

type probeResultJSON struct {
	Capability string `json:"capability"`
	BaseURL    string `json:"base_url"`
	Healthy    bool   `json:"healthy"`
	StatusCode int    `json:"status_code,omitempty"`
	LatencyMS  int64  `json:"latency_ms"`
	Error      string `json:"error,omitempty"`
}

// ToJSON converts a probe report to indented JSON.
func ToJSON(report *tasks.ProbeReport) ([]byte, error) {
	out := probeReportJSON{
		Healthy:   report.Healthy,
		Unhealthy: report.Unhealthy,
		ElapsedMS: report.Elapsed.Milliseconds(),
		Results:   make([]probeResultJSON, 0, len(report.Results)),
	}
	for _, res := range report.Results {
		entry := probeResultJSON{
			Capability: string(res.Target.Capability),
			BaseURL:    res.Target.BaseURL,
			Healthy:    res.Healthy,
			StatusCode: res.StatusCode,
			LatencyMS:  res.Latency.Milliseconds(),
		}
		if res.Err != nil {
			entry.Error = res.Err.Error()
		}
		out.Results = append(out.Results, entry)
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal report: %w", err)
	}
	return data, nil
}

// ToCSV converts a probe report to CSV with columns: Capability, BaseURL, Healthy, Status, LatencyMS, Error
func ToCSV(report *tasks.ProbeReport) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Capability", "BaseURL", "Healthy", "Status", "LatencyMS", "Error"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, res := range report.Results {
		errMsg := ""
		if res.Err != nil {
			errMsg = res.Err.Error()
		}
		record := []string{
			string(res.Target.Capability),
			res.Target.BaseURL,
			strconv.FormatBool(res.Healthy),
			strconv.Itoa(res.StatusCode),
			strconv.FormatInt(res.Latency.Milliseconds(), 10),
			errMsg,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// WriteReport renders a report and writes it to path. An empty path is a
// caller bug surfaced as an error rather than a silent no-op.
func WriteReport(report *tasks.ProbeReport, format, path string) error {
	if path == "" {
		return fmt.Errorf("%w: output path required", shared.ErrInvalidFlag)
	}

	data, err := Render(report, format)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
