// Package tui implements the interactive "econet-cfg watch" dashboard.
//
// The dashboard is a single Bubble Tea model that polls a controller on a
// fixed interval through a FetchFunc, renders the merged parameter record as
// a scrollable table, and highlights values that changed on the latest poll.
//
// Polls are driven by generation-stamped ticks. A manual refresh or a pause
// invalidates any tick already in flight, so only one poll chain is active.
package tui
