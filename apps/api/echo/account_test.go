package echoapi

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/tsongo/darasa/core/account"
)

func Test_accountApi_signup(t *testing.T) {
	s := setup(t)
	createAccount(t, s, "taken", account.RoleStudent)

	tests := []httpTest{
		{
			name:     "valid signup",
			body:     []byte(`{"handle": "student1", "password": "awesome8", "role": "student"}`),
			wantCode: http.StatusCreated,
		},
		{
			name:     "duplicate handle",
			body:     []byte(`{"handle": "taken", "password": "awesome8", "role": "student"}`),
			wantCode: http.StatusConflict,
			wantData: marchallObj(t, httpErr{Error: account.ErrDuplicateHandle.Error()}),
		},
		{
			name:     "handle too short",
			body:     []byte(`{"handle": "ab", "password": "awesome8", "role": "student"}`),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"handle": "handle must be at least 3 characters in length"}`),
		},
		{
			name:     "bad role",
			body:     []byte(`{"handle": "student2", "password": "awesome8", "role": "admin"}`),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"role": "role must be one of [teacher student]"}`),
		},
		{
			name:     "password too similar to handle",
			body:     []byte(`{"handle": "student3", "password": "student33", "role": "student"}`),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"password": "password cannot be similar to the handle"}`),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/v1/auth/signup", tt.body)
			s.ServeHTTP(rec, req)

			if tt.wantData == nil {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
				}
				var acct account.Account
				if err := json.Unmarshal(rec.Body.Bytes(), &acct); err != nil {
					t.Fatalf("failed to decode account: %v", err)
				}
				if acct.ID == "" || acct.Handle != "student1" {
					t.Errorf("account not created: %+v", acct)
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_accountApi_login(t *testing.T) {
	s := setup(t)
	acct, _ := createAccount(t, s, "student1", account.RoleStudent)

	tests := []httpTest{
		{
			name:     "valid credentials",
			body:     []byte(`{"handle": "student1", "password": "` + testPassword + `"}`),
			wantCode: http.StatusOK,
		},
		{
			name:     "wrong password",
			body:     []byte(`{"handle": "student1", "password": "nope"}`),
			wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, httpErr{Error: account.ErrInvalidCredentials.Error()}),
		},
		{
			name:     "unknown handle",
			body:     []byte(`{"handle": "whodis", "password": "nope"}`),
			wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, httpErr{Error: account.ErrInvalidCredentials.Error()}),
		},
		{
			name:     "missing password",
			body:     []byte(`{"handle": "student1"}`),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"password": "this field is required"}`),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/v1/auth/login", tt.body)
			s.ServeHTTP(rec, req)

			if tt.wantData == nil {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
				}
				var session account.Session
				if err := json.Unmarshal(rec.Body.Bytes(), &session); err != nil {
					t.Fatalf("failed to decode session: %v", err)
				}
				if session.Token == "" || session.Account.ID != acct.ID {
					t.Errorf("bad session: %+v", session)
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

// Tokens issued by the login handler must be accepted by the JWT middleware:
// both sides have to agree on the jwt library and claims type.
func Test_accountApi_authFlow(t *testing.T) {
	s := setup(t)

	req, rec := newRequest(http.MethodPost, "/v1/auth/signup",
		[]byte(`{"handle": "student1", "password": "awesome8", "role": "student"}`))
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup failed! code = %v; body %s", rec.Code, rec.Body.String())
	}

	req, rec = newRequest(http.MethodPost, "/v1/auth/login",
		[]byte(`{"handle": "student1", "password": "awesome8"}`))
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed! code = %v; body %s", rec.Code, rec.Body.String())
	}
	var session account.Session
	if err := json.Unmarshal(rec.Body.Bytes(), &session); err != nil {
		t.Fatalf("failed to decode session: %v", err)
	}

	// the issued token passes auth; only the profile is missing
	req, rec = newAuthRequest(http.MethodGet, "/v1/auth/me", session.Token)
	s.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusNotFound,
		wantData: marchallObj(t, httpErr{Error: account.ErrProfileMissing.Error()}),
	}, rec)

	// a tampered token does not
	req, rec = newAuthRequest(http.MethodGet, "/v1/auth/me", session.Token+"x")
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, http.StatusUnauthorized)
	}
}

func Test_accountApi_me(t *testing.T) {
	s := setup(t)
	acct, token := createAccount(t, s, "student1", account.RoleStudent)

	// no token
	req, rec := newRequest(http.MethodGet, "/v1/auth/me")
	s.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)}, rec)

	// no profile yet
	req, rec = newAuthRequest(http.MethodGet, "/v1/auth/me", token)
	s.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusNotFound,
		wantData: marchallObj(t, httpErr{Error: account.ErrProfileMissing.Error()}),
	}, rec)

	prof, err := s.deps.AccountSvc.CreateStudentProfile(req.Context(), account.NewStudentProfile{
		Handle: "student1", StudentNo: "20230001", Name: "Brian Kiprotich", ClassName: "CS-2301",
	})
	if err != nil {
		t.Fatalf("CreateStudentProfile() failed: %v", err)
	}

	req, rec = newAuthRequest(http.MethodGet, "/v1/auth/me", token)
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("failed! code = %v; wantCode %v", rec.Code, http.StatusOK)
	}
	var got account.Profile
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode profile: %v", err)
	}
	if got.Role != acct.Role || got.Teacher != nil || got.Student == nil || got.Student.StudentNo != prof.StudentNo {
		t.Errorf("bad profile response: %s", rec.Body.String())
	}
}

func Test_accountApi_changePassword(t *testing.T) {
	s := setup(t)
	_, token := createAccount(t, s, "student1", account.RoleStudent)

	tests := []httpTest{
		{
			name:     "not authenticated",
			body:     []byte(`{"old_password": "` + testPassword + `", "new_password": "awesome8"}`),
			wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, errMissingToken),
		},
		{
			name:     "wrong old password",
			body:     []byte(`{"old_password": "nope", "new_password": "awesome8"}`),
			token:    token,
			wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, httpErr{Error: account.ErrInvalidCredentials.Error()}),
		},
		{
			name:     "new password too short",
			body:     []byte(`{"old_password": "` + testPassword + `", "new_password": "meh"}`),
			token:    token,
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"new_password": "new_password must be at least 6 characters in length"}`),
		},
		{
			name:     "valid change",
			body:     []byte(`{"old_password": "` + testPassword + `", "new_password": "awesome8"}`),
			token:    token,
			wantCode: http.StatusNoContent,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/v1/auth/password", tt.token, tt.body)
			s.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusNoContent {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}

	// the new password authenticates
	req, rec := newRequest(http.MethodPost, "/v1/auth/login", []byte(`{"handle": "student1", "password": "awesome8"}`))
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("login with new password failed! code = %v", rec.Code)
	}
}
