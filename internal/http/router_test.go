package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"oortgo/internal/clock"
	httptransport "oortgo/internal/http"
	"oortgo/internal/modules/driver"
	"oortgo/internal/modules/notify"
	"oortgo/internal/modules/passenger"
	"oortgo/internal/modules/pricing"
	"oortgo/internal/modules/wallet"
	"oortgo/internal/types"
)

type testEnv struct {
	router *gin.Engine
	clock  *clock.Manual
	store  *wallet.MemoryStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	clk := clock.NewManual(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	store := wallet.NewMemoryStore()
	wal := wallet.NewService(store, true, logger)
	engine := pricing.NewEngine(pricing.DefaultTable())
	paxCues, drvCues := notify.NewRecorder(), notify.NewRecorder()

	pax := passenger.NewFlow(passenger.Deps{
		Pricing:  engine,
		Drivers:  wal,
		Notifier: paxCues,
		Clock:    clk,
		Logger:   logger,
	}, passenger.DefaultOptions())
	drv := driver.NewFlow(driver.Deps{
		Offers: driver.FixedOffer(types.RideRequest{
			ID: "req_http", Fare: 450, OTP: "1234", Status: types.RideStatusPending,
		}),
		Wallet:   wal,
		Notifier: drvCues,
		Clock:    clk,
		Logger:   logger,
	}, driver.DefaultOptions())

	r := httptransport.NewRouter(httptransport.RouterDeps{
		Passenger:     pax,
		Driver:        drv,
		Wallet:        wal,
		Pricing:       engine,
		PassengerCues: paxCues,
		DriverCues:    drvCues,
		Logger:        logger,
	})
	return &testEnv{router: r, clock: clk, store: store}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
	return v
}

func expectStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("status = %d, want %d; body = %s", w.Code, want, w.Body.String())
	}
}

func TestHealth(t *testing.T) {
	e := newTestEnv(t)
	w := e.do(t, http.MethodGet, "/health", nil)
	expectStatus(t, w, http.StatusOK)
	if w.Body.String() != "OK" {
		t.Fatalf("body = %q", w.Body.String())
	}
}

func TestPassengerBookingEndpoints(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(t, http.MethodPost, "/api/passenger/search", map[string]string{"vehicle": "auto"})
	expectStatus(t, w, http.StatusOK)
	s := decode[passenger.Snapshot](t, w)
	if s.Step != passenger.StepDestinationEntry || s.Vehicle != types.VehicleAuto {
		t.Fatalf("snapshot = %+v", s)
	}

	w = e.do(t, http.MethodPost, "/api/passenger/destination/submit", nil)
	expectStatus(t, w, http.StatusBadRequest)

	w = e.do(t, http.MethodPut, "/api/passenger/destination", map[string]string{"label": "Connaught Place"})
	expectStatus(t, w, http.StatusOK)
	w = e.do(t, http.MethodPost, "/api/passenger/destination/submit", nil)
	expectStatus(t, w, http.StatusOK)
	s = decode[passenger.Snapshot](t, w)
	if s.Step != passenger.StepVehicleSelect || len(s.Route) != 2 || s.DistanceKm <= 0 {
		t.Fatalf("snapshot = %+v", s)
	}

	w = e.do(t, http.MethodPut, "/api/passenger/vehicle", map[string]string{"vehicle": "HOVERCRAFT"})
	expectStatus(t, w, http.StatusBadRequest)

	w = e.do(t, http.MethodPost, "/api/passenger/search", nil)
	expectStatus(t, w, http.StatusConflict)

	w = e.do(t, http.MethodPost, "/api/passenger/voice", map[string]string{"utterance": "take me home"})
	expectStatus(t, w, http.StatusServiceUnavailable)

	w = e.do(t, http.MethodPost, "/api/passenger/cancel", nil)
	expectStatus(t, w, http.StatusOK)
	if s := decode[passenger.Snapshot](t, w); s.Step != passenger.StepHome {
		t.Fatalf("step = %s", s.Step)
	}
}

func TestDriverEndpoints(t *testing.T) {
	e := newTestEnv(t)

	expectStatus(t, e.do(t, http.MethodPost, "/api/driver/offers/accept", nil), http.StatusConflict)
	expectStatus(t, e.do(t, http.MethodPost, "/api/driver/online", nil), http.StatusOK)
	expectStatus(t, e.do(t, http.MethodPost, "/api/driver/offers/accept", nil), http.StatusConflict)

	e.clock.Advance(5 * time.Second)
	w := e.do(t, http.MethodPost, "/api/driver/offers/accept", nil)
	expectStatus(t, w, http.StatusOK)
	if s := decode[driver.Snapshot](t, w); s.View != driver.ViewNavigating || s.Active == nil || s.Active.ID != "req_http" {
		t.Fatalf("snapshot = %+v", s)
	}

	w = e.do(t, http.MethodGet, "/api/driver/route", nil)
	expectStatus(t, w, http.StatusOK)

	expectStatus(t, e.do(t, http.MethodPost, "/api/driver/arrival", nil), http.StatusOK)
	expectStatus(t, e.do(t, http.MethodPut, "/api/driver/otp", map[string]string{"code": "12a"}), http.StatusBadRequest)
	expectStatus(t, e.do(t, http.MethodPut, "/api/driver/otp", map[string]string{"code": "1234"}), http.StatusOK)

	e.clock.Advance(800 * time.Millisecond)
	w = e.do(t, http.MethodGet, "/api/driver", nil)
	if s := decode[driver.Snapshot](t, w); s.Stage != driver.StageDropoff {
		t.Fatalf("stage = %s", s.Stage)
	}

	w = e.do(t, http.MethodGet, "/api/cues/driver?since=1", nil)
	expectStatus(t, w, http.StatusOK)
	feed := decode[struct {
		Cues []string `json:"cues"`
		Next int      `json:"next"`
	}](t, w)
	if feed.Next != 4 || len(feed.Cues) != 3 || feed.Cues[0] != "Ride accept ho gayi hai." {
		t.Fatalf("feed = %+v", feed)
	}
	expectStatus(t, e.do(t, http.MethodGet, "/api/cues/pilot", nil), http.StatusNotFound)
}

func TestDriverAccountEndpoints(t *testing.T) {
	e := newTestEnv(t)
	expectStatus(t, e.do(t, http.MethodPost, "/api/driver/account/open", nil), http.StatusOK)

	w := e.do(t, http.MethodGet, "/api/driver/account/ledger", nil)
	expectStatus(t, w, http.StatusOK)
	if l := decode[driver.Ledger](t, w); l.Balance != 688 {
		t.Fatalf("balance = %v, want 688", l.Balance)
	}

	bank := wallet.DefaultBankDetails
	bank.AccountNumber = "123456789"
	bank.IFSC = "hdfc0001234"
	w = e.do(t, http.MethodPut, "/api/driver/account/profile", wallet.Profile{Bank: bank})
	expectStatus(t, w, http.StatusUnprocessableEntity)
	body := decode[map[string]string](t, w)
	if body["field"] != "ifsc" || body["error"] != "Invalid IFSC format (e.g., HDFC0001234)." {
		t.Fatalf("body = %v", body)
	}

	w = e.do(t, http.MethodPost, "/api/driver/account/payout", nil)
	expectStatus(t, w, http.StatusOK)
	if tx := decode[wallet.Transaction](t, w); tx.Amount != -688 {
		t.Fatalf("payout = %+v", tx)
	}
	expectStatus(t, e.do(t, http.MethodPost, "/api/driver/account/payout", nil), http.StatusConflict)
}

func TestWalletEndpoints(t *testing.T) {
	e := newTestEnv(t)
	qr := "data:image/png;base64,UVI="
	expectStatus(t, e.do(t, http.MethodPut, "/api/wallet/upi-qr", map[string]string{"data": qr}), http.StatusNoContent)
	if _, err := e.store.LoadProfile(context.Background()); !errors.Is(err, wallet.ErrProfileNotFound) {
		t.Fatalf("image upload stored bank details: %v", err)
	}
	expectStatus(t, e.do(t, http.MethodPut, "/api/wallet/photo", map[string]string{"data": "https://example.com/me.png"}), http.StatusBadRequest)

	photo := "data:image/png;base64,iVBORw0KGgo="
	expectStatus(t, e.do(t, http.MethodPut, "/api/wallet/photo", map[string]string{"data": photo}), http.StatusNoContent)

	w := e.do(t, http.MethodGet, "/api/wallet/driver", nil)
	expectStatus(t, w, http.StatusOK)
	if d := decode[wallet.DriverDetails](t, w); d.Photo != photo || d.Name != "Rahul Kumar" {
		t.Fatalf("driver card = %+v", d)
	}
}

func TestFareEndpoint(t *testing.T) {
	e := newTestEnv(t)
	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantTotal  int64
	}{
		{"auto normal", "distance_km=10&vehicle=AUTO", http.StatusOK, 65},
		{"auto sharing", "distance_km=10&vehicle=auto&mode=sharing", http.StatusOK, 39},
		{"sedan four seats", "distance_km=10&vehicle=CAR_SEDAN&seats=4", http.StatusOK, 368},
		{"missing distance", "vehicle=AUTO", http.StatusBadRequest, 0},
		{"unknown class", "distance_km=3&vehicle=JET", http.StatusBadRequest, 0},
		{"zero seats", "distance_km=3&seats=0", http.StatusBadRequest, 0},
		{"infinite distance", "distance_km=Inf&vehicle=AUTO", http.StatusBadRequest, 0},
		{"nan distance", "distance_km=NaN&vehicle=AUTO", http.StatusBadRequest, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := e.do(t, http.MethodGet, "/api/fares?"+tt.query, nil)
			expectStatus(t, w, tt.wantStatus)
			if tt.wantStatus != http.StatusOK {
				return
			}
			if got := decode[pricing.FareResult](t, w); got.Total != tt.wantTotal {
				t.Fatalf("total = %d, want %d", got.Total, tt.wantTotal)
			}
		})
	}
}
