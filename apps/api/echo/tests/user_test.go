package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/mail"
	"regexp"
	"strings"
	"testing"
	"time"

	echoapi "github.com/collegia/collegia/apps/api/echo"
	"github.com/collegia/collegia/core/user"
	emailsvc "github.com/collegia/collegia/services/email"
	testutil "github.com/collegia/collegia/tests"
)

const reqMsg = "this field is required"

func Test_userApi_register(t *testing.T) {
	app := setup(t)

	existing := testutil.CreateUser(t, usrRepo, "Prior Art", "prior@test.cd", "LolC@t123", user.RoleStudent, true)

	type extraTest struct {
		created bool
	}
	tests := []httpTest{
		{
			name: "required fields", wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"name": reqMsg, "email": reqMsg, "password": reqMsg, "password_confirm": reqMsg, "role": reqMsg,
			}),
		},
		{
			name: "invalid email", wantCode: http.StatusBadRequest,
			body: marchallObj(t, user.NewUser{
				Name: "Awe Some", Email: "lol", Password: "LolC@t123", PasswordConfirm: "LolC@t123", Role: user.RoleStudent,
			}),
			wantData: marchallObj(t, map[string]string{"email": "email must be a valid email address"}),
		},
		{
			name: "invalid role", wantCode: http.StatusBadRequest,
			body: marchallObj(t, user.NewUser{
				Name: "Awe Some", Email: "awe@test.cd", Password: "LolC@t123", PasswordConfirm: "LolC@t123", Role: "wizard",
			}),
			wantData: marchallObj(t, map[string]string{"role": "role must be one of [student professor]"}),
		},
		{
			name: "password mismatch", wantCode: http.StatusBadRequest,
			body: marchallObj(t, user.NewUser{
				Name: "Awe Some", Email: "awe@test.cd", Password: "LolC@t123", PasswordConfirm: "lol", Role: user.RoleStudent,
			}),
			wantData: marchallObj(t, map[string]string{"password_confirm": "password_confirm must be equal to Password"}),
		},
		{
			name: "password too short", wantCode: http.StatusBadRequest,
			body: marchallObj(t, user.NewUser{
				Name: "Awe Some", Email: "awe@test.cd", Password: "lol", PasswordConfirm: "lol", Role: user.RoleStudent,
			}),
			wantData: marchallObj(t, map[string]string{"password": "password must contain at least 8 characters"}),
		},
		{
			name: "password all numeric", wantCode: http.StatusBadRequest,
			body: marchallObj(t, user.NewUser{
				Name: "Awe Some", Email: "awe@test.cd", Password: "12345678", PasswordConfirm: "12345678", Role: user.RoleStudent,
			}),
			wantData: marchallObj(t, map[string]string{"password": "password cannot be entirely numeric"}),
		},
		{
			name: "password similar to email", wantCode: http.StatusBadRequest,
			body: marchallObj(t, user.NewUser{
				Name: "Awe Some", Email: "awe@test.cd", Password: "awe@test.cd", PasswordConfirm: "awe@test.cd", Role: user.RoleStudent,
			}),
			wantData: marchallObj(t, map[string]string{"password": "password cannot be similar to your name or email"}),
		},
		{
			name: "duplicate email", wantCode: http.StatusBadRequest,
			body: marchallObj(t, user.NewUser{
				Name: "Copy Cat", Email: existing.Email, Password: "LolC@t123", PasswordConfirm: "LolC@t123", Role: user.RoleStudent,
			}),
			wantData: marchallObj(t, map[string]string{"email": "a user with this email already exists"}),
		},
		{
			name: "registered", wantCode: http.StatusCreated,
			body: marchallObj(t, user.NewUser{
				Name: "Awe Some", Email: "awe@test.cd", Password: "LolC@t123", PasswordConfirm: "LolC@t123", Role: user.RoleProfessor,
			}),
			extra: extraTest{created: true},
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/users/register"

		t.Run(tt.name, func(t *testing.T) {
			emailsvc.ClearSentMessages()

			req, rec := newRequest(tt.method, tt.path, tt.body)
			app.ServeHTTP(rec, req)

			if extra, ok := tt.extra.(extraTest); ok && extra.created {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
				}
				var usr user.User
				if err := json.Unmarshal(rec.Body.Bytes(), &usr); err != nil {
					t.Fatalf("json.Unmarshal() failed: %v", err)
				}
				if usr.ID == "" {
					t.Error("failed! empty user ID")
				}
				if usr.Email != "awe@test.cd" || usr.Role != user.RoleProfessor || !usr.IsActive {
					t.Errorf("failed! unexpected user %+v", usr)
				}
				if len(emailsvc.SentMessages) != 1 {
					t.Fatalf("failed! len(SentMessages) = %d; want 1", len(emailsvc.SentMessages))
				}
				if subj := emailsvc.SentMessages[0].Subject; subj != "Welcome to Collegia" {
					t.Errorf("failed! subject = %q", subj)
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_login(t *testing.T) {
	app := setup(t)

	student := testutil.CreateUser(t, usrRepo, "Hero", "hero@test.cd", "LolC@t123", user.RoleStudent, true)
	testutil.CreateUser(t, usrRepo, "N Dog", "ndog@test.cd", "LolC@t123", user.RoleStudent, false)

	tests := []httpTest{
		{
			name: "required fields", wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"email": reqMsg, "password": reqMsg}),
		},
		{
			name: "unknown email", wantCode: http.StatusBadRequest,
			body:     marchallObj(t, echoapi.LoginRequest{Email: "lol@test.cd", Password: "LolC@t123"}),
			wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "wrong password", wantCode: http.StatusBadRequest,
			body:     marchallObj(t, echoapi.LoginRequest{Email: student.Email, Password: "lol"}),
			wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "inactive account", wantCode: http.StatusForbidden,
			body:     marchallObj(t, echoapi.LoginRequest{Email: "ndog@test.cd", Password: "LolC@t123"}),
			wantData: marchallObj(t, httpErr{Error: "account deactivated"}),
		},
		{
			name: "logged in", wantCode: http.StatusOK,
			body: marchallObj(t, echoapi.LoginRequest{Email: student.Email, Password: "LolC@t123"}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/users/login"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path, tt.body)
			app.ServeHTTP(rec, req)

			// cannot guess the token.. just check that it's not empty
			if tt.wantCode == http.StatusOK {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
				}
				var respData echoapi.LoginResponse
				if err := json.Unmarshal(rec.Body.Bytes(), &respData); err != nil {
					t.Fatalf("json.Unmarshal() failed: %v", err)
				}
				if respData.Token == "" {
					t.Error("failed! empty token")
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_tokenRefresh(t *testing.T) {
	app := setup(t)

	student := testutil.CreateUser(t, usrRepo, "Hero", "hero@test.cd", "LolC@t123", user.RoleStudent, true)
	naughty := testutil.CreateUser(t, usrRepo, "N Dog", "ndog@test.cd", "LolC@t123", user.RoleStudent, false)

	// a token whose original issuance is older than the refresh threshold
	oldIat := time.Now().Add(-2 * conf.Server.JWTRefreshExpirationDelta).Unix()
	unrefreshableToken, err := echoapi.GenerateToken(conf, echoapi.GetUserClaims(conf, student, oldIat))
	if err != nil {
		t.Fatalf("GenerateToken() failed: %v", err)
	}

	tests := []httpTest{
		{name: "auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "inactive account", token: getToken(t, naughty), wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "account deactivated"}),
		},
		{
			name: "refresh period expired", token: unrefreshableToken, wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "refresh has expired"}),
		},
		{name: "token refreshed", token: getToken(t, student), wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/users/token-refresh"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusOK {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
				}
				var respData echoapi.LoginResponse
				if err := json.Unmarshal(rec.Body.Bytes(), &respData); err != nil {
					t.Fatalf("json.Unmarshal() failed: %v", err)
				}
				if respData.Token == "" {
					t.Error("failed! empty token")
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_me(t *testing.T) {
	app := setup(t)

	student := testutil.CreateUser(t, usrRepo, "Hero", "hero@test.cd", "LolC@t123", user.RoleStudent, true)
	token := getToken(t, student)

	t.Run("auth required", func(t *testing.T) {
		tt := httpTest{wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)}
		req, rec := newRequest(http.MethodGet, "/v1/users/me")
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("retrieve", func(t *testing.T) {
		tt := httpTest{wantCode: http.StatusOK, wantData: marchallObj(t, student)}
		req, rec := newAuthRequest(http.MethodGet, "/v1/users/me", token)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("update name", func(t *testing.T) {
		body := marchallObj(t, user.UpdateUser{Name: "Super Hero"})
		req, rec := newAuthRequest(http.MethodPut, "/v1/users/me", token, body)
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; wantCode %v", rec.Code, http.StatusOK)
		}
		var usr user.User
		if err := json.Unmarshal(rec.Body.Bytes(), &usr); err != nil {
			t.Fatalf("json.Unmarshal() failed: %v", err)
		}
		if usr.Name != "Super Hero" {
			t.Errorf("failed! name = %q; want %q", usr.Name, "Super Hero")
		}
	})

	t.Run("update password policy applies", func(t *testing.T) {
		tt := httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"password": "password cannot be entirely numeric"}),
		}
		body := marchallObj(t, user.UpdateUser{Password: "12345678", PasswordConfirm: "12345678"})
		req, rec := newAuthRequest(http.MethodPut, "/v1/users/me", token, body)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("update password", func(t *testing.T) {
		body := marchallObj(t, user.UpdateUser{Password: "NewC@t456", PasswordConfirm: "NewC@t456"})
		req, rec := newAuthRequest(http.MethodPut, "/v1/users/me", token, body)
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; wantCode %v", rec.Code, http.StatusOK)
		}
		refreshed, err := usrRepo.GetUserByID(context.Background(), student.ID)
		if err != nil {
			t.Fatalf("GetUserByID() failed: %v", err)
		}
		if err = refreshed.CheckPassword("NewC@t456"); err != nil {
			t.Error("failed to update password")
		}
	})
}

func Test_userApi_resetPassword(t *testing.T) {
	app := setup(t)

	student := testutil.CreateUser(t, usrRepo, "Hero", "hero@test.cd", "LolC@t123", user.RoleStudent, true)
	successData := marchallObj(t, echoapi.SuccessResponse{Success: "If the email address supplied is associated with an active account on this system, " +
		"an email will arrive in your inbox shortly with instructions to reset your password."})

	linkRegex := regexp.MustCompile(`/password-reset\?uid=.+&token=.+`)

	type extraTest struct {
		emailSent bool
		to        mail.Address
	}
	tests := []httpTest{
		{
			name: "required fields", wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"email": reqMsg}),
		},
		{
			name: "invalid email", wantCode: http.StatusBadRequest,
			body:     marchallObj(t, echoapi.PasswordResetRequest{Email: "lol"}),
			wantData: marchallObj(t, map[string]string{"email": "email must be a valid email address"}),
		},
		{
			name: "unknown email", wantCode: http.StatusOK,
			body:     marchallObj(t, echoapi.PasswordResetRequest{Email: "lol@test.cd"}),
			wantData: successData, extra: extraTest{emailSent: false},
		},
		{
			name: "known email", wantCode: http.StatusOK,
			body:     marchallObj(t, echoapi.PasswordResetRequest{Email: student.Email}),
			wantData: successData, extra: extraTest{emailSent: true, to: mail.Address{Name: student.Name, Address: student.Email}},
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/users/password-reset"

		t.Run(tt.name, func(t *testing.T) {
			emailsvc.ClearSentMessages()

			req, rec := newRequest(tt.method, tt.path, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)

			if extra, ok := tt.extra.(extraTest); ok {
				if extra.emailSent {
					if len(emailsvc.SentMessages) != 1 {
						t.Fatalf("failed! len(SentMessages) = %d; want 1", len(emailsvc.SentMessages))
					}
					msg := emailsvc.SentMessages[0]
					if msg.To[0] != extra.to {
						t.Errorf("failed! To = %v; want %v", msg.To[0], extra.to)
					}
					if !strings.Contains(msg.Body, extra.to.Name) {
						t.Errorf("failed! body does not contain recipient's name %q", extra.to.Name)
					}
					if !linkRegex.MatchString(msg.Body) {
						t.Errorf("failed! body does not match linkRegex %v", linkRegex)
					}
				} else if len(emailsvc.SentMessages) > 0 {
					t.Errorf("failed! len(SentMessages) = %d; want 0", len(emailsvc.SentMessages))
				}
			}
		})
	}
}

func Test_userApi_confirmPasswordReset(t *testing.T) {
	app := setup(t)

	student := testutil.CreateUser(t, usrRepo, "Hero", "hero@test.cd", "LolC@t123", user.RoleStudent, true)
	validUID := user.EncodeUID(student)
	validToken := user.MakeToken(student)

	// generate an expired token
	dayLate := conf.PasswordResetTimeoutDelta + (24 * time.Hour)
	user.NowFunc = func() time.Time { return time.Now().Add(-dayLate) }
	expiredToken := user.MakeToken(student)
	user.NowFunc = time.Now // reset

	tests := []httpTest{
		{
			name: "required fields", wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, user.ResetUserPassword{Token: reqMsg, UID: reqMsg, Password: reqMsg, PasswordConfirm: reqMsg}),
		},
		{
			name: "invalid pwd: min len", wantCode: http.StatusBadRequest,
			body:     marchallObj(t, user.ResetUserPassword{Token: "lol", UID: "lol", Password: "lol", PasswordConfirm: "lol"}),
			wantData: marchallObj(t, user.ResetUserPassword{Password: "password must contain at least 8 characters"}),
		},
		{
			name: "invalid pwd: no whitespace", wantCode: http.StatusBadRequest,
			body:     marchallObj(t, user.ResetUserPassword{Token: "lol", UID: "lol", Password: "l o loll", PasswordConfirm: "l o loll"}),
			wantData: marchallObj(t, user.ResetUserPassword{Password: "password must not contain whitespace"}),
		},
		{
			name: "invalid pwd: not all numeric", wantCode: http.StatusBadRequest,
			body:     marchallObj(t, user.ResetUserPassword{Token: "lol", UID: "lol", Password: "12345678", PasswordConfirm: "12345678"}),
			wantData: marchallObj(t, user.ResetUserPassword{Password: "password cannot be entirely numeric"}),
		},
		{
			name: "PasswordConfirm must = Password", wantCode: http.StatusBadRequest,
			body:     marchallObj(t, user.ResetUserPassword{Token: "lol", UID: "lol", Password: "LolC@t123", PasswordConfirm: "lol"}),
			wantData: marchallObj(t, user.ResetUserPassword{PasswordConfirm: "password_confirm must be equal to Password"}),
		},
		{
			name: "unknown uid", wantCode: http.StatusBadRequest,
			body:     marchallObj(t, user.ResetUserPassword{Token: "lol", UID: "bG9s", Password: "LolC@t123", PasswordConfirm: "LolC@t123"}),
			wantData: marchallObj(t, httpErr{Error: "invalid token"}),
		},
		{
			name: "invalid token", wantCode: http.StatusBadRequest,
			body:     marchallObj(t, user.ResetUserPassword{Token: "HE4TS-sigsig-sig", UID: validUID, Password: "LolC@t123", PasswordConfirm: "LolC@t123"}),
			wantData: marchallObj(t, httpErr{Error: "invalid token"}),
		},
		{
			name: "expired token", wantCode: http.StatusBadRequest,
			body:     marchallObj(t, user.ResetUserPassword{Token: expiredToken, UID: validUID, Password: "LolC@t123", PasswordConfirm: "LolC@t123"}),
			wantData: marchallObj(t, httpErr{Error: "token expired"}),
		},
		{
			name: "valid token", wantCode: http.StatusOK,
			body:     marchallObj(t, user.ResetUserPassword{Token: validToken, UID: validUID, Password: "NewC@t456", PasswordConfirm: "NewC@t456"}),
			wantData: marchallObj(t, echoapi.SuccessResponse{Success: "Password has been reset with the new password."}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/users/password-reset-confirm"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)

			if tt.wantCode == http.StatusOK {
				refreshed, err := usrRepo.GetUserByID(context.Background(), student.ID)
				if err != nil {
					t.Fatalf("GetUserByID() failed: %v", err)
				}
				if bytes.Equal(refreshed.PasswordHash, student.PasswordHash) {
					t.Error("failed to update new password")
				}
			}
		})
	}
}

func Test_googleOAuth_redirect(t *testing.T) {
	app := setup(t)

	req, rec := newRequest(http.MethodGet, "/v1/users/oauth/google")
	app.ServeHTTP(rec, req)

	if rec.Code != http.StatusTemporaryRedirect {
		t.Fatalf("failed! code = %v; wantCode %v", rec.Code, http.StatusTemporaryRedirect)
	}
	loc := rec.Header().Get("Location")
	if !strings.Contains(loc, "accounts.google.com") {
		t.Errorf("failed! Location = %q", loc)
	}

	var state string
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == "oauthstate" {
			state = cookie.Value
		}
	}
	if state == "" {
		t.Fatal("failed! oauthstate cookie not set")
	}
	if !strings.Contains(loc, "state="+state) {
		t.Errorf("failed! Location %q does not carry state %q", loc, state)
	}
}

func Test_googleOAuth_callbackStateMismatch(t *testing.T) {
	app := setup(t)

	req, rec := newRequest(http.MethodGet, "/v1/users/oauth/google/callback?state=lol&code=lol")
	req.AddCookie(&http.Cookie{Name: "oauthstate", Value: "different"})
	app.ServeHTTP(rec, req)

	tt := httpTest{wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "authentication failed"})}
	checkCodeAndData(t, tt, rec)
}
