package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"time"
)

// Smoke drives one full attendance cycle against a running rollcall-api:
// register a teacher and a student, set up a class as admin, mark a day
// and verify the student sees the mark.
func main() {
	base := os.Getenv("ROLLCALL_SMOKE_URL")
	if base == "" {
		base = "http://localhost:8080"
	}
	adminEmail := os.Getenv("ROLLCALL_SMOKE_ADMIN_EMAIL")
	adminPass := os.Getenv("ROLLCALL_SMOKE_ADMIN_PASSWORD")
	if adminEmail == "" || adminPass == "" {
		log.Fatal("set ROLLCALL_SMOKE_ADMIN_EMAIL and ROLLCALL_SMOKE_ADMIN_PASSWORD")
	}

	c := &client{base: base, http: &http.Client{Timeout: 10 * time.Second}}
	suffix := rand.New(rand.NewSource(time.Now().UnixNano())).Int63()

	teacherEmail := fmt.Sprintf("smoke-teacher-%d@rollcall.local", suffix)
	studentEmail := fmt.Sprintf("smoke-student-%d@rollcall.local", suffix)

	teacher := c.call(http.MethodPost, "/api/auth/register", "", map[string]any{
		"name": "Smoke Teacher", "email": teacherEmail, "password": "smoke-pass", "role": "teacher",
	}, http.StatusCreated)
	student := c.call(http.MethodPost, "/api/auth/register", "", map[string]any{
		"name": "Smoke Student", "email": studentEmail, "password": "smoke-pass", "role": "student",
	}, http.StatusCreated)

	adminTok := c.login(adminEmail, adminPass)
	cls := c.call(http.MethodPost, "/api/admin/classes", adminTok, map[string]any{
		"name":       fmt.Sprintf("Smoke Class %d", suffix),
		"teacher_id": asID(teacher["id"]),
	}, http.StatusCreated)
	classID := asID(cls["id"])

	c.call(http.MethodPost, fmt.Sprintf("/api/admin/classes/%d/students", classID), adminTok, map[string]any{
		"student_id": asID(student["id"]),
	}, http.StatusCreated)

	teacherTok := c.login(teacherEmail, "smoke-pass")
	day := time.Now().UTC().Format("2006-01-02")
	c.call(http.MethodPost, "/api/teacher/attendance", teacherTok, map[string]any{
		"classId": classID,
		"date":    day,
		"attendanceData": []map[string]any{
			{"studentId": asID(student["id"]), "status": "present"},
		},
	}, http.StatusOK)

	studentTok := c.login(studentEmail, "smoke-pass")
	history := c.call(http.MethodGet, "/api/student/attendance", studentTok, nil, http.StatusOK)
	records, _ := history["records"].([]any)
	if len(records) != 1 {
		log.Fatalf("expected 1 history record, got %d", len(records))
	}
	rec, _ := records[0].(map[string]any)
	if rec["date"] != day || rec["status"] != "present" {
		log.Fatalf("unexpected record: %v", rec)
	}

	fmt.Printf("smoke test passed: class=%d day=%s\n", classID, day)
}

type client struct {
	base string
	http *http.Client
}

func (c *client) call(method, path, token string, body any, wantStatus int) map[string]any {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			log.Fatalf("marshal %s %s: %v", method, path, err)
		}
	}
	req, err := http.NewRequest(method, c.base+path, bytes.NewReader(payload))
	if err != nil {
		log.Fatalf("request %s %s: %v", method, path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		log.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	var out map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&out)
	if resp.StatusCode != wantStatus {
		log.Fatalf("%s %s: status %d (want %d): %v", method, path, resp.StatusCode, wantStatus, out)
	}
	return out
}

func (c *client) login(email, password string) string {
	out := c.call(http.MethodPost, "/api/auth/login", "", map[string]any{
		"email": email, "password": password,
	}, http.StatusOK)
	token, _ := out["token"].(string)
	if token == "" {
		log.Fatalf("empty token for %s", email)
	}
	return token
}

func asID(v any) int64 {
	f, _ := v.(float64)
	return int64(f)
}
