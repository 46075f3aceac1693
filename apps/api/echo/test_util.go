package echoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tsongo/darasa/core"
	"github.com/tsongo/darasa/core/account"
	"github.com/tsongo/darasa/core/assignment"
	"github.com/tsongo/darasa/core/catalog"
	"github.com/tsongo/darasa/core/resource"
	"github.com/tsongo/darasa/storage/kvdb"
)

const testPassword = "s3cr3t!"

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

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

// testLogger drops everything; the error handler only needs a sink.
type testLogger struct{}

func (testLogger) Enable(bool)                  {}
func (testLogger) Debug(string, ...interface{}) {}
func (testLogger) Info(string, ...interface{})  {}
func (testLogger) Warn(string, ...interface{})  {}
func (testLogger) Error(string, ...interface{}) {}
func (testLogger) Fatal(string, ...interface{}) {}

func setup(t *testing.T) *Server {
	t.Helper()
	conf := &core.Config{
		AppName:   "Darasa",
		SecretKey: []byte("secret"),
		TestMode:  true,
		Server:    core.ServerConfig{JWTExpirationDelta: 10 * time.Minute},
	}

	db := kvdb.OpenInMem()
	lock := core.NewLockManager()

	acctRepo := kvdb.NewAccountRepository(db)
	catRepo := kvdb.NewCatalogRepository(db)
	asgRepo := kvdb.NewAssignmentRepository(db)
	resRepo := kvdb.NewResourceRepository(db)

	return NewServer(ServerDeps{
		Conf:           conf,
		Logger:         testLogger{},
		AccountSvc:     account.NewService(conf, acctRepo, lock),
		CatalogSvc:     catalog.NewService(catRepo, acctRepo, asgRepo, resRepo, lock),
		AssignmentSvc:  assignment.NewService(asgRepo, catRepo, acctRepo, lock),
		ResourceSvc:    resource.NewService(resRepo, catRepo, lock),
		DisableReqLogs: true,
	})
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

// createAccount registers an account with testPassword and returns it with a
// session token.
func createAccount(t *testing.T, s *Server, handle, role string) (account.Account, string) {
	t.Helper()
	ctx := context.Background()
	svc := s.deps.AccountSvc

	acct, err := svc.Register(ctx, account.NewAccount{Handle: handle, Password: testPassword, Role: role})
	if err != nil {
		t.Fatalf("createAccount() failed: %v", err)
	}
	session, err := svc.Authenticate(ctx, account.Credentials{Handle: handle, Password: testPassword})
	if err != nil {
		t.Fatalf("createAccount() failed: %v", err)
	}
	return acct, session.Token
}

func createCourse(t *testing.T, s *Server, teacherID, name string) catalog.Course {
	t.Helper()
	crs, err := s.deps.CatalogSvc.Create(context.Background(), catalog.NewCourse{Name: name}, teacherID)
	if err != nil {
		t.Fatalf("createCourse() failed: %v", err)
	}
	return crs
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
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
	return assert.ElementsMatch(t, j1, j2), nil
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
