package tasks

import "fmt"

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	ProbeStart Phase = iota
	ProbeEndpoint
	ProbeDone
)

func (p Phase) String() string {
	switch p {
	case ProbeStart:
		return "probe_start"
	case ProbeEndpoint:
		return "probe_endpoint"
	case ProbeDone:
		return "probe_done"
	default:
		return ""
	}
}

func probeStartUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ProbeStart,
		Step:    0,
		Total:   total,
		Message: fmt.Sprintf("Probing %d endpoints...", total),
	}
}

func probeResultUpdate(step, total int, res ProbeResult) ProgressUpdate {
	mark := "✓"
	if !res.Healthy {
		mark = "✗"
	}
	return ProgressUpdate{
		Phase:   ProbeEndpoint,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s %s (%s)", step, total, mark, res.Target.BaseURL, res.Target.Capability),
		Data:    res,
	}
}

func probeDoneUpdate(report *ProbeReport) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ProbeDone,
		Step:    len(report.Results),
		Total:   len(report.Results),
		Message: fmt.Sprintf("Probe complete: %d healthy, %d unhealthy", report.Healthy, report.Unhealthy),
		Data:    report,
	}
}
