package tests

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"testing"

	. "github.com/legacybuilder/backend/apps/api/echo"
	"github.com/legacybuilder/backend/core/score"
	"github.com/legacybuilder/backend/core/student"
	emailsvc "github.com/legacybuilder/backend/services/email"
	testutil "github.com/legacybuilder/backend/tests"
)

var (
	verifyURLRx = regexp.MustCompile(`verifyEmail\?uid=([^&\s]+)&token=(\S+)`)
	resetURLRx  = regexp.MustCompile(`resetPassword\?uid=([^&\s]+)&token=(\S+)`)
)

func TestStudentRegister(t *testing.T) {
	emailsvc.ClearSentMessages()

	body := []byte(`{
		"name": "Amina Yusuf",
		"email": "amina@test.io",
		"password": "Le$ecret9",
		"password_confirm": "Le$ecret9",
		"subjects": ["Physics", "Chemistry"]
	}`)
	req, rec := newRequest(http.MethodPost, "/v1/students", body)
	app.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, http.StatusCreated, rec.Body.String())
	}
	var std student.Student
	if err := json.Unmarshal(rec.Body.Bytes(), &std); err != nil {
		t.Fatalf("unmarshalling response: %v", err)
	}
	if std.ID == "" || std.Name != "Amina Yusuf" || std.Email != "amina@test.io" {
		t.Errorf("unexpected student: %+v", std)
	}
	if std.Plan != student.PlanFreemium {
		t.Errorf("plan = %q; want %q", std.Plan, student.PlanFreemium)
	}
	if std.IsVerified {
		t.Error("student should not be verified at registration")
	}

	// score board opened per enrolled subject
	entries, err := scoreSvc.Board(context.Background(), std.ID)
	if err != nil {
		t.Fatalf("querying board: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("board entries = %v; want 2", len(entries))
	}

	// verification email sent
	if len(emailsvc.SentMessages) != 1 {
		t.Fatalf("sent messages = %v; want 1", len(emailsvc.SentMessages))
	}
	if !verifyURLRx.MatchString(emailsvc.SentMessages[0].TextContent) {
		t.Error("verification email does not carry a verification link")
	}

	// no subjects picked: defaults assigned
	body = []byte(`{
		"name": "Bola Ade",
		"email": "bola@test.io",
		"password": "Le$ecret9",
		"password_confirm": "Le$ecret9"
	}`)
	req, rec = newRequest(http.MethodPost, "/v1/students", body)
	app.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("failed! code = %v; wantCode %v", rec.Code, http.StatusCreated)
	}
	std = student.Student{}
	if err := json.Unmarshal(rec.Body.Bytes(), &std); err != nil {
		t.Fatalf("unmarshalling response: %v", err)
	}
	if len(std.Subjects) != len(student.DefaultSubjects) {
		t.Errorf("subjects = %v; want defaults %v", std.Subjects, student.DefaultSubjects)
	}

	tests := []httpTest{
		{
			name: "Email exists",
			body: []byte(`{
				"name": "Amina Again",
				"email": "amina@test.io",
				"password": "Le$ecret9",
				"password_confirm": "Le$ecret9"
			}`),
			wantCode: http.StatusBadRequest,
			wantData: []byte(fmt.Sprintf(`{"email": %q}`, student.ErrEmailExists.Error())),
		},
		{
			name: "Password mismatch",
			body: []byte(`{
				"name": "Chidi Okeke",
				"email": "chidi@test.io",
				"password": "Le$ecret9",
				"password_confirm": "Le$ecret8"
			}`),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"password_confirm": "password_confirm must be equal to Password"}`),
		},
		{
			name: "Unknown subject",
			body: []byte(`{
				"name": "Chidi Okeke",
				"email": "chidi@test.io",
				"password": "Le$ecret9",
				"password_confirm": "Le$ecret9",
				"subjects": ["Alchemy"]
			}`),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"subjects[0]": "unknown subject"}`),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/v1/students", tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func TestStudentVerifyEmail(t *testing.T) {
	emailsvc.ClearSentMessages()

	body := []byte(`{
		"name": "Dada Femi",
		"email": "dada@test.io",
		"password": "Le$ecret9",
		"password_confirm": "Le$ecret9"
	}`)
	req, rec := newRequest(http.MethodPost, "/v1/students", body)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("registering: code = %v; body %s", rec.Code, rec.Body.String())
	}

	match := verifyURLRx.FindStringSubmatch(emailsvc.SentMessages[0].TextContent)
	if match == nil {
		t.Fatal("no verification link in sent email")
	}
	uid, token := match[1], match[2]

	tests := []httpTest{
		{
			name:     "Missing params",
			path:     "/v1/students/verify",
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"uid": "this field is required", "token": "this field is required"}`),
		},
		{
			name:     "Invalid uid",
			path:     "/v1/students/verify?uid=bogus&token=" + token,
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"uid": "invalid token"}`),
		},
		{
			name:     "Invalid token",
			path:     fmt.Sprintf("/v1/students/verify?uid=%s&token=%s-tampered", uid, token),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"token": "invalid token"}`),
		},
		{
			name:     "Verify",
			path:     fmt.Sprintf("/v1/students/verify?uid=%s&token=%s", uid, token),
			wantCode: http.StatusOK,
			wantData: []byte(`{"success": "Email address verified."}`),
		},
		{
			name:     "Already verified",
			path:     fmt.Sprintf("/v1/students/verify?uid=%s&token=%s", uid, token),
			wantCode: http.StatusOK,
			wantData: []byte(`{"success": "Email address already verified."}`),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodGet, tt.path)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	std, err := stdRepo.GetStudent(context.Background(), student.GetFilter{Email: "dada@test.io"})
	if err != nil {
		t.Fatalf("getting student: %v", err)
	}
	if !std.IsVerified {
		t.Error("student should be verified")
	}
}

func TestStudentLogin(t *testing.T) {
	testutil.CreateStudent(t, stdRepo, "Efe Oghene", "efe@test.io", "LeSecret", nil, true)
	testutil.CreateStudent(t, stdRepo, "Gozie Nwosu", "gozie@test.io", "LeSecret", nil, false)

	tests := []httpTest{
		{
			name:     "Login",
			body:     []byte(`{"email": "efe@test.io", "password": "LeSecret"}`),
			wantCode: http.StatusOK,
		},
		{
			name:     "Wrong password",
			body:     []byte(`{"email": "efe@test.io", "password": "LeSecre"}`),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"error": "authentication failed"}`),
		},
		{
			name:     "Unknown email",
			body:     []byte(`{"email": "nobody@test.io", "password": "LeSecret"}`),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"error": "authentication failed"}`),
		},
		{
			name:     "Unverified email",
			body:     []byte(`{"email": "gozie@test.io", "password": "LeSecret"}`),
			wantCode: http.StatusForbidden,
			wantData: []byte(`{"error": "email address not verified"}`),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/v1/students/login", tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantData == nil { // success: a token comes back
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
				}
				var resp LoginResponse
				if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
					t.Fatalf("unmarshalling response: %v", err)
				}
				if resp.Token == "" {
					t.Error("empty token")
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}

	// an unverified login re-sends the verification link
	var resent bool
	for _, msg := range emailsvc.SentMessages {
		if len(msg.To) > 0 && msg.To[0].Address == "gozie@test.io" {
			resent = true
			break
		}
	}
	if !resent {
		t.Error("verification email should be re-sent on unverified login")
	}

	// login updates last_login
	std, err := stdRepo.GetStudent(context.Background(), student.GetFilter{Email: "efe@test.io"})
	if err != nil {
		t.Fatalf("getting student: %v", err)
	}
	if std.LastLogin.IsZero() {
		t.Error("last_login should be set after login")
	}
}

func TestStudentTokenRefresh(t *testing.T) {
	std := testutil.CreateStudent(t, stdRepo, "Hauwa Bello", "hauwa@test.io", "LeSecret", nil, true)
	token := getToken(t, std)

	req, rec := newAuthRequest(http.MethodPost, "/v1/students/token-refresh", token)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
	}
	var resp LoginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshalling response: %v", err)
	}
	if resp.Token == "" {
		t.Error("empty refreshed token")
	}

	t.Run("Missing token", func(t *testing.T) {
		tt := httpTest{wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)}
		req, rec := newRequest(http.MethodPost, "/v1/students/token-refresh")
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})
}

func TestStudentPasswordReset(t *testing.T) {
	emailsvc.ClearSentMessages()
	testutil.CreateStudent(t, stdRepo, "Ifeoma Obi", "ifeoma@test.io", "OldSecret", nil, true)

	wantMsg := `{"success": "If the email address supplied is associated with an active account on this system, ` +
		`an email will arrive in your inbox shortly with instructions to reset your password."}`

	tests := []httpTest{
		{
			name:     "Request reset",
			body:     []byte(`{"email": "ifeoma@test.io"}`),
			wantCode: http.StatusOK,
			wantData: []byte(wantMsg),
		},
		{
			name:     "Unknown email gets the same answer",
			body:     []byte(`{"email": "nobody@test.io"}`),
			wantCode: http.StatusOK,
			wantData: []byte(wantMsg),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/v1/students/password-reset", tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	// only the known address got an email
	if len(emailsvc.SentMessages) != 1 {
		t.Fatalf("sent messages = %v; want 1", len(emailsvc.SentMessages))
	}
	match := resetURLRx.FindStringSubmatch(emailsvc.SentMessages[0].TextContent)
	if match == nil {
		t.Fatal("no reset link in sent email")
	}
	uid, token := match[1], match[2]

	t.Run("Confirm reset", func(t *testing.T) {
		tt := httpTest{
			body: []byte(fmt.Sprintf(`{
				"uid": %q,
				"token": %q,
				"password": "Nu$ecret7",
				"password_confirm": "Nu$ecret7"
			}`, uid, token)),
			wantCode: http.StatusOK,
			wantData: []byte(`{"success": "Password has been reset with the new password."}`),
		}
		req, rec := newRequest(http.MethodPost, "/v1/students/password-reset-confirm", tt.body)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("Reused token is rejected", func(t *testing.T) {
		// the password hash changed, invalidating the token
		tt := httpTest{
			body: []byte(fmt.Sprintf(`{
				"uid": %q,
				"token": %q,
				"password": "Other$ecret0",
				"password_confirm": "Other$ecret0"
			}`, uid, token)),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"token": "invalid token"}`),
		}
		req, rec := newRequest(http.MethodPost, "/v1/students/password-reset-confirm", tt.body)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	// new password works
	req, rec := newRequest(http.MethodPost, "/v1/students/login", []byte(`{"email": "ifeoma@test.io", "password": "Nu$ecret7"}`))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("login with new password: code = %v; body %s", rec.Code, rec.Body.String())
	}
}

func TestStudentDetail(t *testing.T) {
	std := testutil.CreateStudent(t, stdRepo, "Jide Alabi", "jide@test.io", "LeSecret", []string{"Mathematics"}, true)
	other := testutil.CreateStudent(t, stdRepo, "Kemi Sanni", "kemi@test.io", "LeSecret", nil, true)
	token := getToken(t, std)

	tests := []httpTest{
		{
			name:     "Retrieve",
			method:   http.MethodGet,
			path:     "/v1/students/" + std.ID,
			token:    token,
			wantCode: http.StatusOK,
			wantData: marchallObj(t, std),
		},
		{
			name:     "Retrieve missing token",
			method:   http.MethodGet,
			path:     "/v1/students/" + std.ID,
			wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, errMissingToken),
		},
		{
			name:     "Retrieve other student",
			method:   http.MethodGet,
			path:     "/v1/students/" + other.ID,
			token:    token,
			wantCode: http.StatusNotFound,
			wantData: []byte(`{"error": "not found"}`),
		},
		{
			name:     "Delete other student",
			method:   http.MethodDelete,
			path:     "/v1/students/" + other.ID,
			token:    token,
			wantCode: http.StatusNotFound,
			wantData: []byte(`{"error": "not found"}`),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("Update", func(t *testing.T) {
		body := []byte(`{"name": "Jide A Alabi"}`)
		req, rec := newAuthRequest(http.MethodPut, "/v1/students/"+std.ID, token, body)
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
		var got student.Student
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
			t.Fatalf("unmarshalling response: %v", err)
		}
		if got.Name != "Jide A Alabi" {
			t.Errorf("name = %q; want %q", got.Name, "Jide A Alabi")
		}
		if got.Email != std.Email {
			t.Errorf("email = %q; want unchanged %q", got.Email, std.Email)
		}
	})

	t.Run("Update duplicate email", func(t *testing.T) {
		tt := httpTest{
			body:     []byte(`{"email": "kemi@test.io"}`),
			wantCode: http.StatusBadRequest,
			wantData: []byte(fmt.Sprintf(`{"email": %q}`, student.ErrEmailExists.Error())),
		}
		req, rec := newAuthRequest(http.MethodPut, "/v1/students/"+std.ID, token, tt.body)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("Change password", func(t *testing.T) {
		tests := []httpTest{
			{
				name:     "Wrong old password",
				body:     []byte(`{"old_password": "Wrong", "password": "Nu$ecret7", "password_confirm": "Nu$ecret7"}`),
				wantCode: http.StatusBadRequest,
				wantData: []byte(`{"old_password": "invalid password"}`),
			},
			{
				name:     "Change",
				body:     []byte(`{"old_password": "LeSecret", "password": "Nu$ecret7", "password_confirm": "Nu$ecret7"}`),
				wantCode: http.StatusOK,
				wantData: []byte(`{"success": "Password changed."}`),
			},
			{
				name:     "Same as old password",
				body:     []byte(`{"old_password": "Nu$ecret7", "password": "Nu$ecret7", "password_confirm": "Nu$ecret7"}`),
				wantCode: http.StatusBadRequest,
				wantData: []byte(`{"password": "new password cannot be the same as the old password"}`),
			},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				req, rec := newAuthRequest(http.MethodPost, "/v1/students/"+std.ID+"/change-password", token, tt.body)
				app.ServeHTTP(rec, req)
				checkCodeAndData(t, tt, rec)
			})
		}
	})

	t.Run("Destroy", func(t *testing.T) {
		victim := testutil.CreateStudent(t, stdRepo, "Lola Eze", "lola@test.io", "LeSecret", nil, true)
		req, rec := newAuthRequest(http.MethodDelete, "/v1/students/"+victim.ID, getToken(t, victim))
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusNoContent {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
		if _, err := stdRepo.GetStudent(context.Background(), student.GetFilter{ID: victim.ID}); err != student.ErrNotFound {
			t.Errorf("err = %v; want %v", err, student.ErrNotFound)
		}
	})
}

func TestStudentSubjects(t *testing.T) {
	std := testutil.CreateStudent(t, stdRepo, "Musa Danladi", "musa@test.io", "LeSecret", []string{"Mathematics"}, true)
	token := getToken(t, std)

	t.Run("Add", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/students/"+std.ID+"/subjects", token, []byte(`{"subject": "Biology"}`))
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
		var got student.Student
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
			t.Fatalf("unmarshalling response: %v", err)
		}
		if !got.HasSubject("Biology") {
			t.Errorf("subjects = %v; want Biology added", got.Subjects)
		}

		// subject opened a score entry
		if _, err := scoreSvc.SubjectEntry(context.Background(), std.ID, "Biology"); err != nil {
			t.Errorf("score entry missing: %v", err)
		}
	})

	t.Run("Add unknown subject", func(t *testing.T) {
		tt := httpTest{
			body:     []byte(`{"subject": "Alchemy"}`),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"subject": "unknown subject"}`),
		}
		req, rec := newAuthRequest(http.MethodPost, "/v1/students/"+std.ID+"/subjects", token, tt.body)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("Remove", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/students/"+std.ID+"/subjects/Biology", token)
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
		var got student.Student
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
			t.Fatalf("unmarshalling response: %v", err)
		}
		if got.HasSubject("Biology") {
			t.Errorf("subjects = %v; want Biology removed", got.Subjects)
		}
	})

	t.Run("Remove not enrolled", func(t *testing.T) {
		tt := httpTest{
			wantCode: http.StatusBadRequest,
			wantData: []byte(fmt.Sprintf(`{"subject": %q}`, student.ErrNotEnrolled.Error())),
		}
		req, rec := newAuthRequest(http.MethodDelete, "/v1/students/"+std.ID+"/subjects/History", token)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})
}

func TestStudentScores(t *testing.T) {
	std := testutil.CreateStudent(t, stdRepo, "Ngozi Umeh", "ngozi@test.io", "LeSecret", []string{"Physics"}, true)
	if _, err := scoreSvc.Enroll(context.Background(), std.ID, std.Subjects...); err != nil {
		t.Fatalf("enrolling: %v", err)
	}
	token := getToken(t, std)

	t.Run("Record", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, "/v1/students/scores/Physics", token, []byte(`{"score": 72}`))
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
		var entry score.Entry
		if err := json.Unmarshal(rec.Body.Bytes(), &entry); err != nil {
			t.Fatalf("unmarshalling response: %v", err)
		}
		if entry.Score != 72 || entry.Subject != "Physics" {
			t.Errorf("unexpected entry: %+v", entry)
		}
	})

	t.Run("Record out of range", func(t *testing.T) {
		tt := httpTest{
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"score": "score must be 100 or less"}`),
		}
		req, rec := newAuthRequest(http.MethodPut, "/v1/students/scores/Physics", token, []byte(`{"score": 105}`))
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("Record unenrolled subject", func(t *testing.T) {
		tt := httpTest{
			wantCode: http.StatusNotFound,
			wantData: []byte(`{"error": "not found"}`),
		}
		req, rec := newAuthRequest(http.MethodPut, "/v1/students/scores/History", token, []byte(`{"score": 50}`))
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("Subject entry", func(t *testing.T) {
		entry, err := scoreSvc.SubjectEntry(context.Background(), std.ID, "Physics")
		if err != nil {
			t.Fatalf("getting entry: %v", err)
		}
		tt := httpTest{
			wantCode: http.StatusOK,
			wantData: marchallObj(t, entry),
		}
		req, rec := newAuthRequest(http.MethodGet, "/v1/students/scores/Physics", token)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("Board", func(t *testing.T) {
		entries, err := scoreSvc.Board(context.Background(), std.ID)
		if err != nil {
			t.Fatalf("querying board: %v", err)
		}
		tt := httpTest{
			wantCode: http.StatusOK,
			wantData: marchallObj(t, entries),
		}
		req, rec := newAuthRequest(http.MethodGet, "/v1/students/scores", token)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})
}

func TestStudentQuery(t *testing.T) {
	std := testutil.CreateStudent(t, stdRepo, "Obi Kalu", "obi.kalu@test.io", "LeSecret", nil, true)
	token := getToken(t, std)

	req, rec := newAuthRequest(http.MethodGet, "/v1/students?search=obi+kalu", token)
	app.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
	}
	var got []student.Student
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshalling response: %v", err)
	}
	if len(got) != 1 || got[0].ID != std.ID {
		t.Errorf("query = %+v; want only %v", got, std.ID)
	}

	t.Run("No match", func(t *testing.T) {
		tt := httpTest{wantCode: http.StatusOK, wantData: []byte(`[]`)}
		req, rec := newAuthRequest(http.MethodGet, "/v1/students?search=nobody-at-all", token)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	// the collection path stays guarded even though registration shares it
	t.Run("Missing token", func(t *testing.T) {
		tt := httpTest{wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)}
		req, rec := newRequest(http.MethodGet, "/v1/students")
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})
}

func TestStudentLogout(t *testing.T) {
	std := testutil.CreateStudent(t, stdRepo, "Peju Ojo", "peju@test.io", "LeSecret", nil, true)
	tt := httpTest{
		wantCode: http.StatusOK,
		wantData: []byte(`{"success": "Logged out."}`),
	}
	req, rec := newAuthRequest(http.MethodPost, "/v1/students/logout", getToken(t, std))
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, tt, rec)
}
