package http

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/quizforce/quizforce/internal/db"
)

func openUsersTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	dbh, err := db.Open(context.Background(), db.DriverSQLite, dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = dbh.Close() })
	return dbh
}

func TestParseUserCSV(t *testing.T) {
	tests := []struct {
		name    string
		csv     string
		want    []userRow
		wantErr string
	}{
		{
			name: "header order independent",
			csv:  "role,username\nstudent,alice\nadmin,bob\n",
			want: []userRow{
				{Username: "alice", Role: "student"},
				{Username: "bob", Role: "admin"},
			},
		},
		{
			name: "optional id and password columns",
			csv:  "id,username,role,password\nu1,alice,student,hunter2\n",
			want: []userRow{{ID: "u1", Username: "alice", Role: "student", Password: "hunter2"}},
		},
		{
			name: "role lowercased",
			csv:  "username,role\nalice,STUDENT\n",
			want: []userRow{{Username: "alice", Role: "student"}},
		},
		{
			name:    "missing role column",
			csv:     "username\nalice\n",
			wantErr: "missing column: role",
		},
		{
			name:    "missing username column",
			csv:     "role\nstudent\n",
			wantErr: "missing column: username",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rows, err := parseUserCSV(strings.NewReader(tc.csv))
			if tc.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
					t.Fatalf("err = %v, want %q", err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if len(rows) != len(tc.want) {
				t.Fatalf("rows = %+v, want %+v", rows, tc.want)
			}
			for i := range rows {
				if rows[i] != tc.want[i] {
					t.Fatalf("row %d = %+v, want %+v", i, rows[i], tc.want[i])
				}
			}
		})
	}
}

func TestBulkUpsertUsersJSON(t *testing.T) {
	dbh := openUsersTestDB(t)
	h := BulkUpsertUsersHandler(dbh)

	post := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest("POST", "/admin/users/bulk", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		h(rec, req)
		return rec
	}

	rec := post(`[{"id":"u1","username":"alice","role":"student","password":"hunter2"},
	              {"username":"bob"}]`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var counts map[string]int
	if err := json.Unmarshal(rec.Body.Bytes(), &counts); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if counts["inserted"] != 2 || counts["updated"] != 0 {
		t.Fatalf("counts = %v, want 2 inserted", counts)
	}

	// Re-posting the same usernames updates in place instead of duplicating.
	rec = post(`[{"id":"u1","username":"alice","role":"admin"}]`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &counts); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if counts["inserted"] != 0 || counts["updated"] != 1 {
		t.Fatalf("counts = %v, want 1 updated", counts)
	}

	var role, phash string
	err := dbh.QueryRow(`SELECT role, password_hash FROM users WHERE id='u1'`).Scan(&role, &phash)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if role != "admin" {
		t.Fatalf("role = %q, want admin after update", role)
	}
	if bcrypt.CompareHashAndPassword([]byte(phash), []byte("hunter2")) != nil {
		t.Fatalf("stored hash does not verify the original password")
	}

	// An omitted role defaults to student.
	err = dbh.QueryRow(`SELECT role FROM users WHERE username='bob'`).Scan(&role)
	if err != nil {
		t.Fatalf("read bob: %v", err)
	}
	if role != "student" {
		t.Fatalf("defaulted role = %q, want student", role)
	}

	if rec := post(`[{"username":"eve","role":"superuser"}]`); rec.Code == http.StatusOK {
		t.Fatalf("unknown role accepted: %s", rec.Body.String())
	}
	if rec := post(`{"username":"not-an-array"}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("non-array body: status = %d, want 400", rec.Code)
	}
}

func TestBulkUpsertUsersCSVUpload(t *testing.T) {
	dbh := openUsersTestDB(t)
	h := BulkUpsertUsersHandler(dbh)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "roster.csv")
	if err != nil {
		t.Fatalf("form file: %v", err)
	}
	fmt.Fprint(fw, "username,role\nalice,student\nbob,admin\n")
	mw.Close()

	req := httptest.NewRequest("POST", "/admin/users/bulk", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var counts map[string]int
	if err := json.Unmarshal(rec.Body.Bytes(), &counts); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if counts["inserted"] != 2 {
		t.Fatalf("counts = %v, want 2 inserted from CSV", counts)
	}
}

func TestListUsersHandlerRoleFilter(t *testing.T) {
	dbh := openUsersTestDB(t)
	if _, _, err := upsertUsers(context.Background(), dbh, []userRow{
		{Username: "alice", Role: "student"},
		{Username: "bob", Role: "admin"},
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	h := ListUsersHandler(dbh)

	req := httptest.NewRequest("GET", "/admin/users?role=admin", nil)
	rec := httptest.NewRecorder()
	h(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var out []userRow
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out) != 1 || out[0].Username != "bob" {
		t.Fatalf("filtered = %+v, want only bob", out)
	}

	req = httptest.NewRequest("GET", "/admin/users", nil)
	rec = httptest.NewRecorder()
	h(rec, req)
	out = nil
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("unfiltered = %d users, want 2", len(out))
	}
}
