package api

import (
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"elevator-maintenance-backend/internal/model"
)

func TestCreateElevator(t *testing.T) {
	t.Run("generates a QR token when none is given", func(t *testing.T) {
		env := newTestEnv(t)
		admin := env.createUser("Admin", "admin@example.com", "secret1", model.RoleAdmin)
		r := env.router(asCaller(admin))

		w := doJSON(r, http.MethodPost, "/api/elevators", gin.H{
			"name":     "North Tower",
			"location": "Lobby",
			"maintenanceSchedules": []gin.H{
				{"date": "2024-06", "repeat": 3},
			},
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		body := decodeBody(t, w)
		token, ok := body["qrCodeData"].(string)
		require.True(t, ok)
		assert.True(t, strings.HasPrefix(token, "ELV-"), token)

		schedules, ok := body["maintenanceSchedules"].([]any)
		require.True(t, ok)
		require.Len(t, schedules, 1)
		entry := schedules[0].(map[string]any)
		assert.Equal(t, float64(3), entry["repeat"])
		assert.Equal(t, "2024-06-01T00:00:00Z", entry["date"])
	})

	t.Run("accepts several schedule date layouts", func(t *testing.T) {
		env := newTestEnv(t)
		admin := env.createUser("Admin", "admin@example.com", "secret1", model.RoleAdmin)
		r := env.router(asCaller(admin))

		for i, date := range []string{"2024-06", "2024-06-15", "2024-06-15T10:30:00Z"} {
			w := doJSON(r, http.MethodPost, "/api/elevators", gin.H{
				"name":     fmt.Sprintf("Elevator %d", i),
				"location": "Lobby",
				"maintenanceSchedules": []gin.H{
					{"date": date},
				},
			})
			require.Equal(t, http.StatusCreated, w.Code, date)
			entry := decodeBody(t, w)["maintenanceSchedules"].([]any)[0].(map[string]any)
			assert.Equal(t, "2024-06-01T00:00:00Z", entry["date"], date)
		}
	})

	t.Run("duplicate QR token is a 409", func(t *testing.T) {
		env := newTestEnv(t)
		admin := env.createUser("Admin", "admin@example.com", "secret1", model.RoleAdmin)
		env.createElevator("Existing", "ELV-TAKEN", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), 0)
		r := env.router(asCaller(admin))

		w := doJSON(r, http.MethodPost, "/api/elevators", gin.H{
			"name":       "Clone",
			"location":   "Lobby",
			"qrCodeData": "ELV-TAKEN",
		})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("invalid input is a 400", func(t *testing.T) {
		env := newTestEnv(t)
		admin := env.createUser("Admin", "admin@example.com", "secret1", model.RoleAdmin)
		r := env.router(asCaller(admin))

		for name, body := range map[string]gin.H{
			"missing name":     {"location": "Lobby"},
			"missing location": {"name": "X"},
			"bad date":         {"name": "X", "location": "L", "maintenanceSchedules": []gin.H{{"date": "June 2024"}}},
			"negative repeat":  {"name": "X", "location": "L", "maintenanceSchedules": []gin.H{{"date": "2024-06", "repeat": -1}}},
		} {
			w := doJSON(r, http.MethodPost, "/api/elevators", body)
			assert.Equal(t, http.StatusBadRequest, w.Code, name)
		}
	})
}

func TestUpdateElevator(t *testing.T) {
	env := newTestEnv(t)
	admin := env.createUser("Admin", "admin@example.com", "secret1", model.RoleAdmin)
	elevator := env.createElevator("North Tower", "ELV-1", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), 0)
	r := env.router(asCaller(admin))

	t.Run("replaces the schedule list", func(t *testing.T) {
		w := doJSON(r, http.MethodPut, fmt.Sprintf("/api/elevators/%d", elevator.ID), gin.H{
			"name":     "North Tower A",
			"location": "Main lobby",
			"maintenanceSchedules": []gin.H{
				{"date": "2025-01", "repeat": 6},
				{"date": "2025-03"},
			},
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		body := decodeBody(t, w)
		assert.Equal(t, "North Tower A", body["name"])
		assert.Equal(t, "ELV-1", body["qrCodeData"], "token survives when the request omits it")
		schedules := body["maintenanceSchedules"].([]any)
		assert.Len(t, schedules, 2)

		var count int64
		env.db.Model(&model.MaintenanceSchedule{}).Where("elevator_id = ?", elevator.ID).Count(&count)
		assert.Equal(t, int64(2), count, "old schedule rows are gone")
	})

	t.Run("unknown elevator is a 404", func(t *testing.T) {
		w := doJSON(r, http.MethodPut, "/api/elevators/9999", gin.H{
			"name": "X", "location": "L",
		})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("non-numeric id is a 400", func(t *testing.T) {
		w := doJSON(r, http.MethodPut, "/api/elevators/abc", gin.H{
			"name": "X", "location": "L",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestDeleteElevator(t *testing.T) {
	env := newTestEnv(t)
	admin := env.createUser("Admin", "admin@example.com", "secret1", model.RoleAdmin)
	tech := env.createUser("Alice", "alice@example.com", "secret1", model.RoleTech)
	elevator := env.createElevator("North Tower", "ELV-1", currentMonthStart(), 0)

	// A logged visit must survive the elevator's deletion.
	w := doJSON(env.router(asCaller(tech)), http.MethodPost, "/api/records", gin.H{"elevatorId": "ELV-1"})
	require.Equal(t, http.StatusCreated, w.Code)

	r := env.router(asCaller(admin))
	w = doJSON(r, http.MethodDelete, fmt.Sprintf("/api/elevators/%d", elevator.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var elevators, schedules, records int64
	env.db.Model(&model.Elevator{}).Count(&elevators)
	env.db.Model(&model.MaintenanceSchedule{}).Count(&schedules)
	env.db.Model(&model.MaintenanceRecord{}).Count(&records)
	assert.Zero(t, elevators)
	assert.Zero(t, schedules)
	assert.Equal(t, int64(1), records)
}

func TestGetElevators(t *testing.T) {
	env := newTestEnv(t)
	tech := env.createUser("Alice", "alice@example.com", "secret1", model.RoleTech)
	env.createElevator("Zulu", "ELV-Z", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), 0)
	env.createElevator("Alpha", "ELV-A", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), 0)

	w := doJSON(env.router(asCaller(tech)), http.MethodGet, "/api/elevators", nil)
	require.Equal(t, http.StatusOK, w.Code)

	elevators := decodeList(t, w)
	require.Len(t, elevators, 2)
	assert.Equal(t, "Alpha", elevators[0]["name"])
	assert.Equal(t, "Zulu", elevators[1]["name"])
	assert.NotEmpty(t, elevators[0]["maintenanceSchedules"])
}

func TestGetCurrentElevators(t *testing.T) {
	env := newTestEnv(t)
	tech := env.createUser("Alice", "alice@example.com", "secret1", model.RoleTech)
	dueElevator := env.createElevator("Due", "ELV-DUE", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), 0)
	env.createElevator("Quarterly", "ELV-Q", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), 3)
	env.createElevator("Later", "ELV-LATER", time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC), 0)
	r := env.router(asCaller(tech))

	t.Run("lists elevators due in the queried month", func(t *testing.T) {
		w := doJSON(r, http.MethodGet, "/api/elevators/current?month=2024-06", nil)
		require.Equal(t, http.StatusOK, w.Code)

		due := decodeList(t, w)
		require.Len(t, due, 2)
		names := []string{due[0]["name"].(string), due[1]["name"].(string)}
		assert.ElementsMatch(t, []string{"Due", "Quarterly"}, names)
		for _, d := range due {
			assert.Equal(t, false, d["maintained"])
			assert.Contains(t, d, "scheduleDate")
		}
	})

	t.Run("flags already maintained elevators", func(t *testing.T) {
		require.NoError(t, env.db.Create(&model.MaintenanceRecord{
			ElevatorID: dueElevator.ID, UserID: tech.ID,
			Timestamp: time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC), Year: 2024, Month: 6,
		}).Error)

		w := doJSON(r, http.MethodGet, "/api/elevators/current?month=2024-06", nil)
		require.Equal(t, http.StatusOK, w.Code)
		for _, d := range decodeList(t, w) {
			if d["name"] == "Due" {
				assert.Equal(t, true, d["maintained"])
			}
		}
	})

	t.Run("invalid month is a 400", func(t *testing.T) {
		w := doJSON(r, http.MethodGet, "/api/elevators/current?month=nope", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
