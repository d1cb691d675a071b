package api

import (
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"elevator-maintenance-backend/internal/model"
	"elevator-maintenance-backend/internal/mw"
	"elevator-maintenance-backend/internal/notification"
	"elevator-maintenance-backend/internal/schedule"
	"elevator-maintenance-backend/internal/store"
)

type createRecordRequest struct {
	// ElevatorID carries the scanned QR token, not a numeric id; the field
	// name matches what the scanner client sends.
	ElevatorID string `json:"elevatorId" binding:"required"`
}

// CreateRecord handles POST /api/records: a technician's QR scan.
func (h *Handler) CreateRecord(c *gin.Context) {
	var req createRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "elevatorId is required"})
		return
	}

	caller, ok := mw.CallerFrom(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	record, err := h.store.LogMaintenance(c.Request.Context(), req.ElevatorID, caller.UserID, time.Now())
	if err != nil {
		abortStoreError(c, err)
		return
	}

	h.notify(notification.Event{RecordID: record.ID, Kind: notification.EventLogged})
	c.JSON(http.StatusCreated, record)
}

// GetRecords handles GET /api/records?user=&elevator=&month=YYYY-MM.
func (h *Handler) GetRecords(c *gin.Context) {
	var filter store.RecordFilter

	if raw := c.Query("user"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid user filter"})
			return
		}
		filter.UserID = &id
	}
	if raw := c.Query("elevator"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid elevator filter"})
			return
		}
		filter.ElevatorID = &id
	}
	if raw := c.Query("month"); raw != "" {
		month, err := schedule.ParseYearMonth(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		filter.Month = &month
	}

	records, err := h.store.ListRecords(c.Request.Context(), filter)
	if err != nil {
		abortStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

// UploadAttachments handles POST /api/records/:id/attachments. The multipart
// form carries files[], positionally paired descriptions[], and an optional
// needsRepair flag. Files are stored under the upload dir with generated
// names; descriptions beyond the file count are ignored, missing ones
// default to empty.
func (h *Handler) UploadAttachments(c *gin.Context) {
	recordID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid record ID"})
		return
	}

	caller, ok := mw.CallerFrom(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "multipart form expected"})
		return
	}
	files := form.File["files"]
	descriptions := form.Value["descriptions"]

	// Only an unambiguous boolean touches the repair flag.
	var needsRepair *bool
	if vals := form.Value["needsRepair"]; len(vals) > 0 {
		if parsed, err := strconv.ParseBool(vals[0]); err == nil {
			needsRepair = &parsed
		}
	}

	if err := os.MkdirAll(h.uploads.Dir, 0o755); err != nil {
		abortStoreError(c, err)
		return
	}

	attachments := make([]model.Attachment, 0, len(files))
	for i, file := range files {
		name := uuid.NewString() + filepath.Ext(file.Filename)
		if err := c.SaveUploadedFile(file, filepath.Join(h.uploads.Dir, name)); err != nil {
			abortStoreError(c, err)
			return
		}
		description := ""
		if i < len(descriptions) {
			description = descriptions[i]
		}
		attachments = append(attachments, model.Attachment{
			File:        name,
			Description: description,
		})
	}

	record, err := h.store.AppendAttachments(c.Request.Context(), recordID, caller, attachments, needsRepair)
	if err != nil {
		abortStoreError(c, err)
		return
	}

	if needsRepair != nil && *needsRepair {
		h.notify(notification.Event{RecordID: record.ID, Kind: notification.EventRepairFlagged})
	}
	c.JSON(http.StatusOK, record)
}
