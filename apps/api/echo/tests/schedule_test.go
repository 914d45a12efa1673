package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/collegia/collegia/core/schedule"
	"github.com/collegia/collegia/core/user"
	testutil "github.com/collegia/collegia/tests"
)

func Test_scheduleApi_create(t *testing.T) {
	app := setup(t)

	professor := testutil.CreateUser(t, usrRepo, "Ada Lovelace", "ada@test.cd", "LolC@t123", user.RoleProfessor, true)
	student := testutil.CreateUser(t, usrRepo, "Hero", "hero@test.cd", "LolC@t123", user.RoleStudent, true)
	profToken := getToken(t, professor)

	type extraTest struct {
		created bool
	}
	tests := []httpTest{
		{name: "auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "professor required", token: getToken(t, student), wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "required fields", token: profToken, wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"date": reqMsg, "time": reqMsg}),
		},
		{
			name: "invalid date", token: profToken, wantCode: http.StatusBadRequest,
			body:     marchallObj(t, schedule.NewAvailability{Date: "11/03/2021", Time: "10:00:00"}),
			wantData: marchallObj(t, map[string]string{"date": "must be a valid date in YYYY-MM-DD format"}),
		},
		{
			name: "invalid time", token: profToken, wantCode: http.StatusBadRequest,
			body:     marchallObj(t, schedule.NewAvailability{Date: "2021-03-11", Time: "10am"}),
			wantData: marchallObj(t, map[string]string{"time": "must be a valid time in HH:MM:SS format"}),
		},
		{
			name: "created", token: profToken, wantCode: http.StatusCreated,
			body:  marchallObj(t, schedule.NewAvailability{Date: "2021-03-11", Time: "10:00:00"}),
			extra: extraTest{created: true},
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/slots"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if extra, ok := tt.extra.(extraTest); ok && extra.created {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
				}
				var slot schedule.Availability
				if err := json.Unmarshal(rec.Body.Bytes(), &slot); err != nil {
					t.Fatalf("json.Unmarshal() failed: %v", err)
				}
				if slot.ID == "" {
					t.Error("failed! empty slot ID")
				}
				if slot.ProfessorName != professor.Name || slot.Date != "2021-03-11" || slot.Booked {
					t.Errorf("failed! unexpected slot %+v", slot)
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_scheduleApi_openSlots(t *testing.T) {
	app := setup(t)

	professor := testutil.CreateUser(t, usrRepo, "Ada Lovelace", "ada@test.cd", "LolC@t123", user.RoleProfessor, true)
	student := testutil.CreateUser(t, usrRepo, "Hero", "hero@test.cd", "LolC@t123", user.RoleStudent, true)

	open1 := testutil.CreateSlot(t, slotRepo, professor.Name, "2021-03-11", "10:00:00", false)
	open2 := testutil.CreateSlot(t, slotRepo, professor.Name, "2021-03-12", "14:00:00", false)
	testutil.CreateSlot(t, slotRepo, professor.Name, "2021-03-11", "11:00:00", true) // booked

	tests := []httpTest{
		{name: "auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "student required", token: getToken(t, professor), wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "booked slots are hidden", token: getToken(t, student), wantCode: http.StatusOK,
			wantData: marchallList(t, open1, open2),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet
		tt.path = "/v1/slots/open"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_scheduleApi_mySlots(t *testing.T) {
	app := setup(t)

	professor := testutil.CreateUser(t, usrRepo, "Ada Lovelace", "ada@test.cd", "LolC@t123", user.RoleProfessor, true)
	other := testutil.CreateUser(t, usrRepo, "Alan Turing", "alan@test.cd", "LolC@t123", user.RoleProfessor, true)

	mine1 := testutil.CreateSlot(t, slotRepo, professor.Name, "2021-03-11", "10:00:00", false)
	mine2 := testutil.CreateSlot(t, slotRepo, professor.Name, "2021-03-11", "11:00:00", true)
	testutil.CreateSlot(t, slotRepo, other.Name, "2021-03-11", "10:00:00", false)

	tt := httpTest{wantCode: http.StatusOK, wantData: marchallList(t, mine1, mine2)}
	req, rec := newAuthRequest(http.MethodGet, "/v1/slots", getToken(t, professor))
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, tt, rec)
}

func Test_scheduleApi_delete(t *testing.T) {
	app := setup(t)

	professor := testutil.CreateUser(t, usrRepo, "Ada Lovelace", "ada@test.cd", "LolC@t123", user.RoleProfessor, true)
	other := testutil.CreateUser(t, usrRepo, "Alan Turing", "alan@test.cd", "LolC@t123", user.RoleProfessor, true)
	profToken := getToken(t, professor)

	open := testutil.CreateSlot(t, slotRepo, professor.Name, "2021-03-11", "10:00:00", false)
	booked := testutil.CreateSlot(t, slotRepo, professor.Name, "2021-03-11", "11:00:00", true)
	otherSlot := testutil.CreateSlot(t, slotRepo, other.Name, "2021-03-11", "10:00:00", false)

	tests := []httpTest{
		{
			name: "unknown slot", path: "/v1/slots/lol", token: profToken, wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
		{
			name: "someone else's slot", path: "/v1/slots/" + otherSlot.ID, token: profToken, wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
		{
			name: "booked slot", path: "/v1/slots/" + booked.ID, token: profToken, wantCode: http.StatusConflict,
			wantData: marchallObj(t, httpErr{Error: "slot is already booked"}),
		},
		{name: "deleted", path: "/v1/slots/" + open.ID, token: profToken, wantCode: http.StatusNoContent},
	}
	for _, tt := range tests {
		tt.method = http.MethodDelete

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token)
			app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusNoContent {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}
