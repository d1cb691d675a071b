package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"elevator-maintenance-backend/config"
	"elevator-maintenance-backend/internal/auth"
	"elevator-maintenance-backend/internal/db"
	"elevator-maintenance-backend/internal/model"
	"elevator-maintenance-backend/internal/mw"
	"elevator-maintenance-backend/internal/store"
)

// testEnv bundles a handler wired to an in-memory database for handler
// tests. Auth middleware is bypassed; callers are injected per route set.
type testEnv struct {
	t       *testing.T
	handler *Handler
	store   store.Store
	db      *gorm.DB
	auth    *auth.Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	gormDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.Migrate(gormDB))

	s := store.NewGormStore(gormDB)
	authSvc, err := auth.NewService("test-secret", time.Hour)
	require.NoError(t, err)

	uploads := config.UploadsConfig{Dir: t.TempDir(), MaxUploadMB: 10}
	return &testEnv{
		t:       t,
		handler: NewHandler(s, authSvc, uploads, nil, nil),
		store:   s,
		db:      gormDB,
		auth:    authSvc,
	}
}

// router builds an engine with the API routes mounted directly. When caller
// is non-nil it is injected the way the auth middleware would.
func (e *testEnv) router(caller *store.Caller) *gin.Engine {
	r := gin.New()
	if caller != nil {
		r.Use(func(c *gin.Context) {
			mw.SetCaller(c, *caller)
		})
	}

	r.POST("/api/auth/login", e.handler.Login)
	r.POST("/api/auth/register", e.handler.Register)

	r.GET("/api/elevators", e.handler.GetElevators)
	r.GET("/api/elevators/current", e.handler.GetCurrentElevators)
	r.POST("/api/elevators", e.handler.CreateElevator)
	r.PUT("/api/elevators/:id", e.handler.UpdateElevator)
	r.DELETE("/api/elevators/:id", e.handler.DeleteElevator)

	r.POST("/api/records", e.handler.CreateRecord)
	r.GET("/api/records", e.handler.GetRecords)
	r.POST("/api/records/:id/attachments", e.handler.UploadAttachments)

	r.GET("/api/users", e.handler.GetUsers)
	r.GET("/api/users/:id", e.handler.GetUser)
	r.DELETE("/api/users/:id", e.handler.DeleteUser)

	r.GET("/api/subscriptions", e.handler.GetSubscription)
	r.PUT("/api/subscriptions", e.handler.PutSubscription)
	r.DELETE("/api/subscriptions", e.handler.DeleteSubscription)
	r.GET("/api/vapid_public_key", e.handler.GetVAPIDPublicKey)

	return r
}

func (e *testEnv) createUser(name, email, password string, role model.Role) *model.User {
	e.t.Helper()
	hashed, err := e.auth.HashPassword(password)
	require.NoError(e.t, err)
	user := &model.User{Name: name, Email: email, Password: hashed, Role: role}
	require.NoError(e.t, e.db.Create(user).Error)
	return user
}

func (e *testEnv) createElevator(name, qrToken string, scheduleDate time.Time, repeat int) *model.Elevator {
	e.t.Helper()
	elevator := &model.Elevator{
		Name:       name,
		Location:   "Test site",
		QRCodeData: qrToken,
		Schedules: []model.MaintenanceSchedule{
			{Date: scheduleDate, RepeatMonths: repeat},
		},
	}
	require.NoError(e.t, e.db.Create(elevator).Error)
	return elevator
}

func asCaller(u *model.User) *store.Caller {
	return &store.Caller{UserID: u.ID, Role: u.Role}
}

func doJSON(r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), "body: %s", w.Body.String())
	return out
}

func decodeList(t *testing.T, w *httptest.ResponseRecorder) []map[string]any {
	t.Helper()
	var out []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), "body: %s", w.Body.String())
	return out
}
