package model

import (
	"encoding/json"
	"strings"
)

// Column names as they appear in the pipeline sheet's header row.
const (
	ColStatus      = "Status"
	ColNotes       = "Notes"
	ColPreviewURL  = "Preview URL"
	ColEmailDraft  = "Email Draft"
	ColSentDate    = "Sent Date"
	ColBusiness    = "Business Name"
	ColCity        = "City"
	ColCategory    = "Category"
	ColServices    = "Subtypes / Services"
	ColContactName = "Contact Name"
	ColPhone       = "Phone"
	ColEmail       = "Email"
	ColEmailStatus = "Email Status"
	ColPlaceID     = "Place ID"
	ColRating      = "Rating"
	ColReviews     = "Reviews"
	ColWebsite     = "Website"
)

// Email Status values that exclude a row from the outreach stages.
const (
	EmailStatusBlacklisted = "BLACKLISTED"
	EmailStatusInvalid     = "INVALID"
)

// BusinessRecord is one sheet row's named fields. Field presence is never
// guaranteed; accessors return "" for absent or blank columns.
type BusinessRecord map[string]string

// Row is a business record annotated with its 1-based sheet row number.
// Num is the only key used for write-back.
type Row struct {
	Num    int
	Record BusinessRecord
}

func (r BusinessRecord) get(col string) string {
	return strings.TrimSpace(r[col])
}

func (r BusinessRecord) Name() string        { return r.get(ColBusiness) }
func (r BusinessRecord) City() string        { return r.get(ColCity) }
func (r BusinessRecord) Category() string    { return r.get(ColCategory) }
func (r BusinessRecord) Services() string    { return r.get(ColServices) }
func (r BusinessRecord) ContactName() string { return r.get(ColContactName) }
func (r BusinessRecord) Phone() string       { return r.get(ColPhone) }
func (r BusinessRecord) Email() string       { return r.get(ColEmail) }
func (r BusinessRecord) EmailStatus() string { return r.get(ColEmailStatus) }
func (r BusinessRecord) PlaceID() string     { return r.get(ColPlaceID) }
func (r BusinessRecord) Rating() string      { return r.get(ColRating) }
func (r BusinessRecord) ReviewCount() string { return r.get(ColReviews) }
func (r BusinessRecord) Website() string     { return r.get(ColWebsite) }

// EmailExcluded reports whether the record's Email Status bars outreach.
func (r BusinessRecord) EmailExcluded() bool {
	switch strings.ToUpper(r.EmailStatus()) {
	case EmailStatusBlacklisted, EmailStatusInvalid:
		return true
	}
	return false
}

// JSON serializes the record for prompt embedding, dropping blank fields.
func (r BusinessRecord) JSON() string {
	clean := make(map[string]string, len(r))
	for k, v := range r {
		if strings.TrimSpace(v) != "" {
			clean[k] = v
		}
	}
	b, err := json.MarshalIndent(clean, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(b)
}
