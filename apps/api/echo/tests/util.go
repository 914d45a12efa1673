package tests

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"

	. "github.com/collegia/collegia/apps/api/echo"
	"github.com/collegia/collegia/core"
	"github.com/collegia/collegia/core/meeting"
	"github.com/collegia/collegia/core/notification"
	"github.com/collegia/collegia/core/schedule"
	"github.com/collegia/collegia/core/user"
	emailsvc "github.com/collegia/collegia/services/email"
	logsvc "github.com/collegia/collegia/services/logger"
	dummydb "github.com/collegia/collegia/storage/database/dummy"
	testutil "github.com/collegia/collegia/tests"
)

var (
	conf      *core.Config
	usrRepo   user.Repository
	slotRepo  schedule.Repository
	mtgRepo   meeting.Repository
	notifRepo notification.Repository

	errMissingToken = httpErr{Error: "missing or malformed jwt"}
)

func setup(t *testing.T) *Server {
	t.Helper()

	// fresh DB & repos per test
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open() failed: %v", err)
	}
	conf = testutil.NewConfig()
	usrRepo = dummydb.NewUserRepository(db)
	slotRepo = dummydb.NewScheduleRepository(db)
	mtgRepo = dummydb.NewMeetingRepository(db)
	notifRepo = dummydb.NewNotificationRepository(db)

	// set up services
	emailsvc.ClearSentMessages()
	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	usrSvc := user.NewService(usrRepo, mailSvc, conf)
	slotSvc := schedule.NewService(slotRepo)
	mtgSvc := meeting.NewService(db, mtgRepo, slotRepo, usrRepo, notifRepo, mailSvc, conf)
	notifSvc := notification.NewService(notifRepo)

	validate, translator := core.NewValidator()
	user.RegisterValidators(validate, translator)

	return NewServer(ServerDeps{
		Conf:        conf,
		Logger:      logsvc.NewStdLogger(log.New(io.Discard, "", 0)),
		UserSvc:     usrSvc,
		ScheduleSvc: slotSvc,
		MeetingSvc:  mtgSvc,
		NotifSvc:    notifSvc,
		Validate:    validate,
		Translator:  translator,
	})
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, usr user.User) string {
	t.Helper()
	claims := GetUserClaims(conf, usr)
	token, err := GenerateToken(conf, claims)
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ObjectsAreEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
