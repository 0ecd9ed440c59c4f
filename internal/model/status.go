package model

import "strings"

// Status is the pipeline state of a sheet row. The sheet persists display
// strings with mixed casing inherited from the operator workflow; the
// enumeration plus the display map below keeps that vocabulary in one place.
type Status int

const (
	StatusUnknown Status = iota
	StatusGo
	StatusScraping
	StatusBuilding
	StatusDeploying
	StatusDeployed
	StatusEmailing
	StatusDraftWritten
	StatusSending
	StatusSent
	StatusError
)

// displayStrings are the exact values written to the Status column.
// "Email sent succesfully" keeps its historical spelling: rows already in the
// sheet carry it, and selection filters compare against the stored value.
var displayStrings = map[Status]string{
	StatusGo:           "GO",
	StatusScraping:     "SCRAPING",
	StatusBuilding:     "BUILDING",
	StatusDeploying:    "DEPLOYING",
	StatusDeployed:     "Deployed",
	StatusEmailing:     "EMAILING",
	StatusDraftWritten: "Email Draft Written",
	StatusSending:      "SENDING",
	StatusSent:         "Email sent succesfully",
	StatusError:        "ERROR",
}

// String returns the display string persisted to the sheet.
func (s Status) String() string {
	if d, ok := displayStrings[s]; ok {
		return d
	}
	return "UNKNOWN"
}

// Terminal reports whether the orchestrator never advances past s.
func (s Status) Terminal() bool {
	switch s {
	case StatusSent, StatusError:
		return true
	}
	return false
}

// ParseStatus maps a stored cell value back to a Status. Matching is
// case-insensitive so "go" and "GO" both trigger selection.
func ParseStatus(v string) Status {
	v = strings.TrimSpace(v)
	for s, d := range displayStrings {
		if strings.EqualFold(v, d) {
			return s
		}
	}
	return StatusUnknown
}

// CellColor is an RGB annotation for the status cell, scaled 0..1 as the
// Sheets API expects. Cosmetic only: write failures never fail the row update.
type CellColor struct {
	Red   float64
	Green float64
	Blue  float64
}

var statusColors = map[Status]CellColor{
	StatusGo:           {Red: 0.85, Green: 0.95, Blue: 0.85},
	StatusScraping:     {Red: 1.00, Green: 0.95, Blue: 0.75},
	StatusBuilding:     {Red: 1.00, Green: 0.95, Blue: 0.75},
	StatusDeploying:    {Red: 1.00, Green: 0.95, Blue: 0.75},
	StatusDeployed:     {Red: 0.80, Green: 0.88, Blue: 1.00},
	StatusEmailing:     {Red: 1.00, Green: 0.95, Blue: 0.75},
	StatusDraftWritten: {Red: 0.80, Green: 0.88, Blue: 1.00},
	StatusSending:      {Red: 1.00, Green: 0.95, Blue: 0.75},
	StatusSent:         {Red: 0.72, Green: 0.88, Blue: 0.72},
	StatusError:        {Red: 0.96, Green: 0.70, Blue: 0.70},
}

// Color returns the annotation color for s and whether one is defined.
func (s Status) Color() (CellColor, bool) {
	c, ok := statusColors[s]
	return c, ok
}
