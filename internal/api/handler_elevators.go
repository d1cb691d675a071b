package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"elevator-maintenance-backend/internal/model"
	"elevator-maintenance-backend/internal/schedule"
)

type scheduleEntryRequest struct {
	Date   string `json:"date" binding:"required"`
	Repeat int    `json:"repeat"`
}

type elevatorRequest struct {
	Name       string                 `json:"name" binding:"required"`
	Location   string                 `json:"location" binding:"required"`
	QRCodeData string                 `json:"qrCodeData"`
	Schedules  []scheduleEntryRequest `json:"maintenanceSchedules"`
}

// parseScheduleDate accepts the month formats clients send ("2006-01",
// "2006-01-02" or RFC3339) and normalizes to the first instant of the month
// in UTC.
func parseScheduleDate(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01", "2006-01-02", time.RFC3339} {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return schedule.MonthOf(t).Start(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid schedule date %q", s)
}

func (r elevatorRequest) schedules() ([]model.MaintenanceSchedule, error) {
	schedules := make([]model.MaintenanceSchedule, 0, len(r.Schedules))
	for _, entry := range r.Schedules {
		date, err := parseScheduleDate(entry.Date)
		if err != nil {
			return nil, err
		}
		if entry.Repeat < 0 {
			return nil, fmt.Errorf("repeat interval must not be negative")
		}
		schedules = append(schedules, model.MaintenanceSchedule{
			Date:         date,
			RepeatMonths: entry.Repeat,
		})
	}
	return schedules, nil
}

// GetElevators handles GET /api/elevators.
func (h *Handler) GetElevators(c *gin.Context) {
	var elevators []model.Elevator
	err := h.store.DB().WithContext(c.Request.Context()).
		Preload("Schedules").
		Order("name asc").
		Find(&elevators).Error
	if err != nil {
		abortStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, elevators)
}

// CreateElevator handles POST /api/elevators (admin only). The QR token is
// generated when the request doesn't carry one.
func (h *Handler) CreateElevator(c *gin.Context) {
	var req elevatorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	schedules, err := req.schedules()
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	elevator := model.Elevator{
		Name:       req.Name,
		Location:   req.Location,
		QRCodeData: req.QRCodeData,
		Schedules:  schedules,
	}
	if elevator.QRCodeData == "" {
		elevator.QRCodeData = model.GenerateQRCodeData()
	}

	if err := h.store.DB().WithContext(c.Request.Context()).Create(&elevator).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "an elevator with this QR code already exists"})
			return
		}
		abortStoreError(c, err)
		return
	}

	c.JSON(http.StatusCreated, elevator)
}

// UpdateElevator handles PUT /api/elevators/:id (admin only). The schedule
// list is replaced wholesale with the one in the request.
func (h *Handler) UpdateElevator(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid elevator ID"})
		return
	}

	var req elevatorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	schedules, err := req.schedules()
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	db := h.store.DB().WithContext(c.Request.Context())
	var elevator model.Elevator
	if err := db.First(&elevator, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "elevator not found"})
			return
		}
		abortStoreError(c, err)
		return
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]any{
			"name":     req.Name,
			"location": req.Location,
		}
		if req.QRCodeData != "" {
			updates["qr_code_data"] = req.QRCodeData
		}
		if err := tx.Model(&elevator).Updates(updates).Error; err != nil {
			return err
		}

		if err := tx.Where("elevator_id = ?", elevator.ID).Delete(&model.MaintenanceSchedule{}).Error; err != nil {
			return err
		}
		for i := range schedules {
			schedules[i].ElevatorID = elevator.ID
		}
		if len(schedules) > 0 {
			if err := tx.Create(&schedules).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "an elevator with this QR code already exists"})
			return
		}
		abortStoreError(c, err)
		return
	}

	if err := db.Preload("Schedules").First(&elevator, elevator.ID).Error; err != nil {
		abortStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, elevator)
}

// DeleteElevator handles DELETE /api/elevators/:id (admin only). Existing
// maintenance records keep their elevator reference.
func (h *Handler) DeleteElevator(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid elevator ID"})
		return
	}

	db := h.store.DB().WithContext(c.Request.Context())
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("elevator_id = ?", id).Delete(&model.MaintenanceSchedule{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Elevator{}, id).Error
	})
	if err != nil {
		abortStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "Deleted"})
}

// GetCurrentElevators handles GET /api/elevators/current?month=YYYY-MM,
// listing elevators due in the month (current UTC month when omitted), each
// annotated with the matched schedule date.
func (h *Handler) GetCurrentElevators(c *gin.Context) {
	month := schedule.MonthOf(time.Now())
	if raw := c.Query("month"); raw != "" {
		parsed, err := schedule.ParseYearMonth(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		month = parsed
	}

	due, err := h.store.DueElevators(c.Request.Context(), month)
	if err != nil {
		abortStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, due)
}
