package api

import (
	"net/http"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

var notificationColumns = []string{
	"id", "title", "message", "notification_type", "target_type",
	"is_active", "show_from", "show_until", "priority", "created_at", "updated_at",
}

func TestListNotificationsFilters(t *testing.T) {
	ts := newTestServer(t)
	admin := regularAdmin()
	token := ts.tokenFor(t, admin)
	ts.expectAdminLookup(t, admin)

	now := time.Now()
	ts.mock.ExpectQuery(`FROM user_notifications\s+WHERE 1=1 AND is_active = \$1 AND notification_type = \$2\s+ORDER BY priority DESC, created_at DESC`).
		WithArgs(true, "ALERT").
		WillReturnRows(sqlmock.NewRows(notificationColumns).
			AddRow(1, "Maintenance", "Scheduled downtime", "ALERT", "ALL", true, now, nil, 5, now, now))

	w := ts.do(t, http.MethodGet, "/api/notifications?active=true&type=ALERT", token, nil)
	mustStatus(t, w, http.StatusOK)

	body := decodeBody(t, w)
	filters, _ := body["filters"].(map[string]any)
	if filters["active"] != "true" || filters["type"] != "ALERT" {
		t.Fatalf("filters = %v", filters)
	}
}

func TestListNotificationsBareActiveParamFiltersInactive(t *testing.T) {
	ts := newTestServer(t)
	admin := regularAdmin()
	token := ts.tokenFor(t, admin)
	ts.expectAdminLookup(t, admin)

	// ?active= with no value is still a filter: anything but "true" means
	// inactive only.
	ts.mock.ExpectQuery(`FROM user_notifications\s+WHERE 1=1 AND is_active = \$1\s+ORDER BY`).
		WithArgs(false).
		WillReturnRows(sqlmock.NewRows(notificationColumns))

	w := ts.do(t, http.MethodGet, "/api/notifications?active=", token, nil)
	mustStatus(t, w, http.StatusOK)
	if err := ts.mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateNotificationAppliesDefaults(t *testing.T) {
	ts := newTestServer(t)
	admin := superAdmin()
	token := ts.tokenFor(t, admin)
	ts.expectAdminLookup(t, admin)

	now := time.Now()
	ts.mock.ExpectQuery(`INSERT INTO user_notifications`).
		WithArgs("Welcome", "Hello families", "ANNOUNCEMENT", "ALL", 1,
			sqlmock.AnyArg(), nil, admin.ID).
		WillReturnRows(sqlmock.NewRows(notificationColumns).
			AddRow(7, "Welcome", "Hello families", "ANNOUNCEMENT", "ALL", true, now, nil, 1, now, now))

	w := ts.do(t, http.MethodPost, "/api/notifications", token, map[string]any{
		"title":   "Welcome",
		"message": "Hello families",
	})
	mustStatus(t, w, http.StatusCreated)
	if err := ts.mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateNotificationRequiresTitleAndMessage(t *testing.T) {
	ts := newTestServer(t)
	admin := superAdmin()
	token := ts.tokenFor(t, admin)
	ts.expectAdminLookup(t, admin)

	w := ts.do(t, http.MethodPost, "/api/notifications", token, map[string]any{"title": "No body"})
	mustStatus(t, w, http.StatusBadRequest)
	if err := ts.mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("rejected request still hit the database: %v", err)
	}
}

func TestUpdateNotificationRejectsEmptyUpdate(t *testing.T) {
	ts := newTestServer(t)
	admin := superAdmin()
	token := ts.tokenFor(t, admin)
	ts.expectAdminLookup(t, admin)

	w := ts.do(t, http.MethodPut, "/api/notifications/7", token, map[string]any{})
	mustStatus(t, w, http.StatusBadRequest)
	if msg := decodeBody(t, w)["message"]; msg != "No fields to update" {
		t.Fatalf("message = %v", msg)
	}
	if err := ts.mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("rejected request still hit the database: %v", err)
	}
}

func TestUpdateNotificationPartialFields(t *testing.T) {
	ts := newTestServer(t)
	admin := superAdmin()
	token := ts.tokenFor(t, admin)
	ts.expectAdminLookup(t, admin)

	now := time.Now()
	ts.mock.ExpectQuery(`UPDATE user_notifications\s+SET is_active = \$1, updated_at = NOW\(\)\s+WHERE id = \$2`).
		WithArgs(false, "7").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "message", "is_active", "show_until", "updated_at"}).
			AddRow(7, "Welcome", "Hello families", false, nil, now))

	w := ts.do(t, http.MethodPut, "/api/notifications/7", token, map[string]any{"isActive": false})
	mustStatus(t, w, http.StatusOK)
	if err := ts.mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDeleteNotificationNotFound(t *testing.T) {
	ts := newTestServer(t)
	admin := superAdmin()
	token := ts.tokenFor(t, admin)
	ts.expectAdminLookup(t, admin)
	ts.mock.ExpectQuery(`DELETE FROM user_notifications WHERE id = \$1 RETURNING id, title`).
		WithArgs("99").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title"}))

	w := ts.do(t, http.MethodDelete, "/api/notifications/99", token, nil)
	mustStatus(t, w, http.StatusNotFound)
}

func TestSweepOnlyTouchesExpiredActiveRows(t *testing.T) {
	ts := newTestServer(t)
	ts.mock.ExpectExec(`UPDATE user_notifications\s+SET is_active = false, updated_at = NOW\(\)\s+WHERE is_active = true AND show_until IS NOT NULL AND show_until < NOW\(\)`).
		WillReturnResult(sqlmock.NewResult(0, 3))

	sweepExpiredNotifications(ts.db)
	if err := ts.mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sweep ran an unexpected statement: %v", err)
	}
}
