package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"elevator-maintenance-backend/config"
	"elevator-maintenance-backend/internal/auth"
	"elevator-maintenance-backend/internal/notification"
	"elevator-maintenance-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store    store.Store
	auth     *auth.Service
	uploads  config.UploadsConfig
	notifier *notification.WorkerPool
	webpush  *webpush.Options
}

// NewHandler creates a new API handler. notifier and webpushOptions may be
// nil when push notifications are disabled.
func NewHandler(s store.Store, authSvc *auth.Service, uploads config.UploadsConfig, notifier *notification.WorkerPool, webpushOptions *webpush.Options) *Handler {
	return &Handler{
		store:    s,
		auth:     authSvc,
		uploads:  uploads,
		notifier: notifier,
		webpush:  webpushOptions,
	}
}

// notify hands an event to the worker pool, if one is running.
func (h *Handler) notify(event notification.Event) {
	if h.notifier != nil {
		h.notifier.Dispatch(event)
	}
}

// abortStoreError maps store errors onto the HTTP error taxonomy. Anything
// outside it is logged server-side and reported as an opaque 500.
func abortStoreError(c *gin.Context, err error) {
	var already *store.AlreadyLoggedError
	switch {
	case errors.Is(err, store.ErrElevatorNotFound),
		errors.Is(err, store.ErrRecordNotFound),
		errors.Is(err, store.ErrUserNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrNotScheduled):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &already):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": already.Error()})
	case errors.Is(err, store.ErrForbidden):
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, gorm.ErrDuplicatedKey):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "duplicate value for a unique field"})
	default:
		log.Printf("Unhandled store error on %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
