package trip

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
)

func testApp(mock pgxmock.PgxPoolIface, userID string) *fiber.App {
	app := fiber.New()
	authStub := func(c *fiber.Ctx) error {
		c.Locals("user_id", userID)
		return c.Next()
	}
	RegisterRoutes(app.Group("/trips"), NewService(mock, nil), authStub)
	return app
}

func TestCreateTripHandler(t *testing.T) {
	mock := newMock(t)

	mock.ExpectQuery(`INSERT INTO trips`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"requested_at", "created_at", "updated_at"}).
			AddRow(time.Now(), time.Now(), time.Now()))

	app := testApp(mock, "passenger-1")
	body, _ := json.Marshal(CreateRequest{
		StartLocationName: "Center",
		StartLatitude:     42.6977,
		StartLongitude:    23.3219,
		EndLocationName:   "Airport",
		EndLatitude:       42.6952,
		EndLongitude:      23.4114,
	})
	req := httptest.NewRequest(http.MethodPost, "/trips/", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status: %v %d", err, resp.StatusCode)
	}

	var created Trip
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.Status != StatusPending || created.PassengerID != "passenger-1" {
		t.Fatalf("unexpected trip payload: %+v", created)
	}
}

func TestCreateTripHandlerBadPayload(t *testing.T) {
	mock := newMock(t)

	app := testApp(mock, "passenger-1")
	req := httptest.NewRequest(http.MethodPost, "/trips/", bytes.NewReader([]byte(`{"start_location_name":`)))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestCreateTripHandlerValidation(t *testing.T) {
	mock := newMock(t)

	app := testApp(mock, "passenger-1")
	body, _ := json.Marshal(CreateRequest{StartLocationName: "Center"})
	req := httptest.NewRequest(http.MethodPost, "/trips/", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestAcceptTripHandler(t *testing.T) {
	mock := newMock(t)

	expectDriverCheck(mock, "driver-1", true)
	mock.ExpectQuery(`status='accepted'`).
		WithArgs("trip-1", "driver-1").
		WillReturnRows(tripRows("trip-1", "passenger-1", tripState{
			driver:   sptr("driver-1"),
			status:   StatusAccepted,
			accepted: tptr(time.Now()),
		}))

	app := testApp(mock, "driver-1")
	req := httptest.NewRequest(http.MethodPost, "/trips/trip-1/accept", nil)
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("accept status: %v %d", err, resp.StatusCode)
	}

	var accepted Trip
	if err := json.NewDecoder(resp.Body).Decode(&accepted); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if accepted.Status != StatusAccepted {
		t.Fatalf("unexpected status %q", accepted.Status)
	}
}

func TestAcceptTripHandlerConflict(t *testing.T) {
	mock := newMock(t)

	expectDriverCheck(mock, "driver-2", true)
	mock.ExpectQuery(`status='accepted'`).
		WithArgs("trip-1", "driver-2").
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery(`FROM trips WHERE id=\$1`).
		WithArgs("trip-1").
		WillReturnRows(tripRows("trip-1", "passenger-1", tripState{
			driver:   sptr("driver-1"),
			status:   StatusAccepted,
			accepted: tptr(time.Now()),
		}))

	app := testApp(mock, "driver-2")
	req := httptest.NewRequest(http.MethodPost, "/trips/trip-1/accept", nil)
	resp, _ := app.Test(req)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
}

func TestCancelTripHandlerPrecondition(t *testing.T) {
	mock := newMock(t)

	mock.ExpectQuery(`status='cancelled'`).
		WithArgs("trip-1", "passenger-1").
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery(`FROM trips WHERE id=\$1`).
		WithArgs("trip-1").
		WillReturnRows(tripRows("trip-1", "passenger-1", tripState{
			driver:    sptr("driver-1"),
			status:    StatusCompleted,
			completed: tptr(time.Now()),
		}))

	app := testApp(mock, "passenger-1")
	req := httptest.NewRequest(http.MethodPost, "/trips/trip-1/cancel", nil)
	resp, _ := app.Test(req)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestGetTripHandlerForbidden(t *testing.T) {
	mock := newMock(t)

	mock.ExpectQuery(`FROM trips WHERE id=\$1`).
		WithArgs("trip-1").
		WillReturnRows(tripRows("trip-1", "passenger-1", tripState{
			driver: sptr("driver-1"),
			status: StatusAccepted,
		}))

	app := testApp(mock, "stranger")
	req := httptest.NewRequest(http.MethodGet, "/trips/trip-1", nil)
	resp, _ := app.Test(req)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
}

func TestHistoryHandlerRoleQuery(t *testing.T) {
	mock := newMock(t)

	mock.ExpectQuery(`WHERE driver_id=\$1 AND status='completed'`).
		WithArgs("driver-1").
		WillReturnRows(tripRows("trip-2", "passenger-1", tripState{
			driver:    sptr("driver-1"),
			status:    StatusCompleted,
			completed: tptr(time.Now()),
		}))

	app := testApp(mock, "driver-1")
	req := httptest.NewRequest(http.MethodGet, "/trips/history?role=driver", nil)
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("history status: %v %d", err, resp.StatusCode)
	}

	var trips []Trip
	if err := json.NewDecoder(resp.Body).Decode(&trips); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(trips) != 1 || trips[0].ID != "trip-2" {
		t.Fatalf("unexpected history payload")
	}
}

func TestPendingHandler(t *testing.T) {
	mock := newMock(t)

	expectDriverCheck(mock, "driver-1", true)
	mock.ExpectQuery(`WHERE status='pending'`).
		WillReturnRows(tripRows("trip-1", "passenger-1", tripState{status: StatusPending}))

	app := testApp(mock, "driver-1")
	req := httptest.NewRequest(http.MethodGet, "/trips/pending", nil)
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("pending status: %v %d", err, resp.StatusCode)
	}
}
