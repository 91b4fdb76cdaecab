// Package ui implements an interactive terminal dashboard using bubbletea's Elm architecture.
//
// The TUI provides a two-view workflow for endpoint health monitoring:
//  1. [ProbingView] : Live progress while the pool sweep runs
//  2. [ReportView] : Browse per-endpoint health, latency, and failure detail
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Progress updates flow through a channel from the ProbeEngine, providing non-blocking status reporting during sweeps.
//
// Keyboard navigation uses vim-style bindings (j/k, r, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
