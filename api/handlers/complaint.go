package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/civicgrid/civic-complaints-api/config"
	"github.com/civicgrid/civic-complaints-api/databases"
	"github.com/civicgrid/civic-complaints-api/models"
)

// maxEvidenceSize caps evidence uploads at 10MB
const maxEvidenceSize = 10 << 20

// Complaint struct mostly used for mocking tests
type Complaint struct {
	DB       databases.ComplaintDatabase
	MDB      databases.MunicipalityDatabase
	Uploader EvidenceUploader
	Hub      *LiveHub
}

// ComplaintByIDHandler returns a complaint given its ID
func (c Complaint) ComplaintByIDHandler(w http.ResponseWriter, r *http.Request) {
	complaintID := mux.Vars(r)["id"]

	zap.S().Debugf("complaint_id: %v", complaintID)

	cID, err := primitive.ObjectIDFromHex(complaintID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	dbResp, err := c.DB.FindOne(context.Background(), bson.M{"_id": cID})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			writeJSON(w, http.StatusNotFound, models.StatusResponse{Success: false, Message: "Complaint not found"})
			return
		}
		config.ErrorStatus("failed to get complaint by ID", http.StatusInternalServerError, w, err)
		return
	}
	dbResp.EffectivelyEscalated = dbResp.EscalatedAt(time.Now())

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"complaint": dbResp,
	})
}

// UpdateComplaintHandler applies a partial status/assignee update,
// appends a timeline entry, and keeps the owning municipality's
// solved/pending counters in step
func (c Complaint) UpdateComplaintHandler(w http.ResponseWriter, r *http.Request) {
	var req models.ComplaintUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	patch := models.ComplaintPatch{}
	if req.Status != "" {
		patch.Status = &req.Status
	}
	if req.AssignedTo != "" {
		patch.AssignedTo = &req.AssignedTo
	}
	if err := patch.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, models.StatusResponse{Success: false, Message: err.Error()})
		return
	}

	cID, err := primitive.ObjectIDFromHex(req.ComplaintID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	update := bson.M{"$push": bson.M{"timeline": time.Now()}}
	if set := patch.SetFields(); len(set) > 0 {
		update["$set"] = set
	}

	complaint, err := c.DB.FindOneAndUpdate(
		context.Background(),
		bson.M{"_id": cID},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			writeJSON(w, http.StatusNotFound, models.StatusResponse{Success: false, Message: "Complaint not found"})
			return
		}
		config.ErrorStatus("failed to update complaint", http.StatusInternalServerError, w, err)
		return
	}

	if patch.Status != nil && *patch.Status == models.StatusSolved {
		if err := c.creditSolved(r.Context(), complaint.MunicipalityName); err != nil {
			config.ErrorStatus("failed to update municipality counters", http.StatusInternalServerError, w, err)
			return
		}
	}

	complaint.EffectivelyEscalated = complaint.EscalatedAt(time.Now())
	c.Hub.Broadcast(complaint)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"complaint": complaint,
		"message":   "Complaint updated successfully",
	})
}

// UploadEvidenceHandler stores resolution evidence in media storage,
// forces the complaint to solved, and credits the municipality
func (c Complaint) UploadEvidenceHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxEvidenceSize); err != nil {
		writeJSON(w, http.StatusBadRequest, models.StatusResponse{Success: false, Message: "No file uploaded"})
		return
	}
	file, _, err := r.FormFile("evidence")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.StatusResponse{Success: false, Message: "No file uploaded"})
		return
	}
	defer file.Close()

	cID, err := primitive.ObjectIDFromHex(r.FormValue("complaintId"))
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	// reject repeat uploads before anything reaches media storage, both to
	// keep the counters honest and to avoid orphaned uploads
	existing, err := c.DB.FindOne(context.Background(), bson.M{"_id": cID})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			writeJSON(w, http.StatusNotFound, models.StatusResponse{Success: false, Message: "Complaint not found"})
			return
		}
		config.ErrorStatus("failed to get complaint by ID", http.StatusInternalServerError, w, err)
		return
	}
	if existing.Status == models.StatusSolved && existing.EvidenceURL != "" {
		writeJSON(w, http.StatusConflict, models.StatusResponse{Success: false, Message: "Evidence already uploaded"})
		return
	}

	url, err := c.Uploader.Upload(r.Context(), file)
	if err != nil {
		config.ErrorStatus("failed to upload evidence", http.StatusInternalServerError, w, err)
		return
	}

	complaint, err := c.DB.FindOneAndUpdate(
		context.Background(),
		bson.M{"_id": cID},
		bson.M{
			"$set":  bson.M{"evidenceUrl": url, "status": models.StatusSolved},
			"$push": bson.M{"timeline": time.Now()},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// the upload already happened; the orphaned asset is accepted
			writeJSON(w, http.StatusNotFound, models.StatusResponse{Success: false, Message: "Complaint not found"})
			return
		}
		config.ErrorStatus("failed to update complaint", http.StatusInternalServerError, w, err)
		return
	}

	if err := c.creditSolved(r.Context(), complaint.MunicipalityName); err != nil {
		config.ErrorStatus("failed to update municipality counters", http.StatusInternalServerError, w, err)
		return
	}

	c.Hub.Broadcast(complaint)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"url":       url,
		"complaint": complaint,
		"message":   "Evidence uploaded and complaint marked as solved",
	})
}

// creditSolved moves one complaint from pending to solved on the owning
// municipality's counters. No matching municipality is a silent no-op.
func (c Complaint) creditSolved(ctx context.Context, municipality string) error {
	_, err := c.MDB.UpdateOne(ctx,
		bson.M{"district_name": municipality},
		bson.M{"$inc": bson.M{"solved": 1, "pending": -1}},
	)
	return err
}

// FilterComplaintsHandler returns a page of complaints matching the
// supplied filters, newest first
func (c Complaint) FilterComplaintsHandler(w http.ResponseWriter, r *http.Request) {
	var req models.ComplaintFilterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 {
		req.Limit = 10
	}

	query := bson.M{}
	if req.MunicipalityName != "" {
		query["municipalityName"] = req.MunicipalityName
	}
	if req.Status != "" {
		query["status"] = req.Status
	}
	if req.Category != "" {
		query["type"] = req.Category
	}
	if req.ComplaintID != "" {
		cID, err := primitive.ObjectIDFromHex(req.ComplaintID)
		if err != nil {
			config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
			return
		}
		query["_id"] = cID
	}
	if req.Date != "" {
		start, err := parseFilterDate(req.Date)
		if err != nil {
			config.ErrorStatus("failed to parse date", http.StatusBadRequest, w, err)
			return
		}
		// inclusive day range [00:00:00.000, 23:59:59.999]
		end := start.Add(24*time.Hour - time.Millisecond)
		query["date"] = bson.M{"$gte": start, "$lte": end}
	}

	complaints, err := c.DB.Find(context.Background(), query, databases.PageOptions(req.Limit, req.Page))
	if err != nil {
		config.ErrorStatus("failed to get complaints", http.StatusInternalServerError, w, err)
		return
	}
	if complaints == nil {
		complaints = []models.Complaint{}
	}
	models.AnnotateEscalation(complaints, time.Now())

	count, err := c.DB.CountDocuments(context.Background(), query)
	if err != nil {
		config.ErrorStatus("failed to count complaints", http.StatusInternalServerError, w, err)
		return
	}

	writeJSON(w, http.StatusOK, models.ComplaintPage{
		Success:         true,
		Complaints:      complaints,
		TotalPages:      int(math.Ceil(float64(count) / float64(req.Limit))),
		CurrentPage:     req.Page,
		TotalComplaints: count,
	})
}

// parseFilterDate accepts a plain date or a full timestamp, clamped to
// midnight so the filter always spans the whole calendar day
func parseFilterDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location()), nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
