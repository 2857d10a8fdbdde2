package models

import (
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Complaint statuses. A complaint starts as pending and is moved by a
// municipal official; escalated can also be derived at read time, see
// EffectivelyEscalated.
const (
	StatusPending    = "pending"
	StatusInProgress = "in-progress"
	StatusSolved     = "solved"
	StatusEscalated  = "escalated"
)

// EscalationAge is how long a complaint may sit pending before list
// responses flag it as effectively escalated.
const EscalationAge = 7 * 24 * time.Hour

// ValidStatus reports whether s is one of the accepted complaint statuses
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusInProgress, StatusSolved, StatusEscalated:
		return true
	}
	return false
}

// Complaint holds the structure for the Complaints collection in mongo
type Complaint struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Title            string             `bson:"title" json:"title"`
	MunicipalityName string             `bson:"municipalityName" json:"municipalityName"`
	DistrictID       int                `bson:"districtId,omitempty" json:"districtId,omitempty"`
	StateID          int                `bson:"stateId,omitempty" json:"stateId,omitempty"`
	Type             string             `bson:"type" json:"type"`
	Location         string             `bson:"location" json:"location"`
	Latitude         float64            `bson:"latitude" json:"latitude"`
	Longitude        float64            `bson:"longitude" json:"longitude"`
	Date             time.Time          `bson:"date" json:"date"`
	RaisedDate       time.Time          `bson:"raisedDate" json:"raisedDate"`
	Status           string             `bson:"status" json:"status"`
	Description      string             `bson:"description" json:"description"`
	ImageURL         string             `bson:"imageUrl" json:"imageUrl"`
	EvidenceURL      string             `bson:"evidenceUrl,omitempty" json:"evidenceUrl,omitempty"`
	Timeline         []time.Time        `bson:"timeline" json:"timeline"`
	AssignedTo       string             `bson:"assignedTo" json:"assignedTo"`

	// EffectivelyEscalated is derived at read time and never persisted
	EffectivelyEscalated bool `bson:"-" json:"effectivelyEscalated"`
}

// EscalatedAt reports whether the complaint counts as escalated at the
// given instant: still pending and raised more than EscalationAge ago
func (c *Complaint) EscalatedAt(now time.Time) bool {
	return c.Status == StatusPending && now.Sub(c.RaisedDate) > EscalationAge
}

// AnnotateEscalation stamps the derived escalation flag on every complaint
// in the slice
func AnnotateEscalation(complaints []Complaint, now time.Time) {
	for i := range complaints {
		complaints[i].EffectivelyEscalated = complaints[i].EscalatedAt(now)
	}
}

// ComplaintPatch is a partial update of a complaint. A nil field means
// "leave unchanged"
type ComplaintPatch struct {
	Status     *string
	AssignedTo *string
}

// Validate rejects patches carrying an unknown status before anything is
// dispatched to the store
func (p ComplaintPatch) Validate() error {
	if p.Status != nil && !ValidStatus(*p.Status) {
		return fmt.Errorf("invalid status. Must be one of: %s",
			strings.Join([]string{StatusPending, StatusInProgress, StatusSolved, StatusEscalated}, ", "))
	}
	return nil
}

// SetFields returns the $set document for the provided fields only
func (p ComplaintPatch) SetFields() bson.M {
	set := bson.M{}
	if p.Status != nil {
		set["status"] = *p.Status
	}
	if p.AssignedTo != nil {
		set["assignedTo"] = *p.AssignedTo
	}
	return set
}

// ComplaintUpdateRequest is the body of PATCH /complaints/update
type ComplaintUpdateRequest struct {
	ComplaintID string `json:"complaintId"`
	Status      string `json:"status"`
	AssignedTo  string `json:"assignedTo"`
}

// ComplaintFilterRequest is the body of POST /complaints/filter. Absent
// fields leave that dimension unconstrained
type ComplaintFilterRequest struct {
	MunicipalityName string `json:"municipalityName"`
	Status           string `json:"status"`
	Category         string `json:"category"`
	ComplaintID      string `json:"complaintId"`
	Date             string `json:"date"`
	Page             int    `json:"page"`
	Limit            int    `json:"limit"`
}

// ComplaintPage is the response of POST /complaints/filter
type ComplaintPage struct {
	Success         bool        `json:"success"`
	Complaints      []Complaint `json:"complaints"`
	TotalPages      int         `json:"totalPages"`
	CurrentPage     int         `json:"currentPage"`
	TotalComplaints int64       `json:"totalComplaints"`
}
