package httpapi

import (
	"errors"
	"net/http"
	"time"

	"rollcall.org/internal/attendance"
	"rollcall.org/internal/audit"
	"rollcall.org/internal/auth"
	"rollcall.org/internal/obs"
	"rollcall.org/internal/school"
	"rollcall.org/internal/stream"
)

type markAttendanceRequest struct {
	ClassID        int64              `json:"classId"`
	Date           string             `json:"date"`
	AttendanceData []attendance.Entry `json:"attendanceData"`
}

// ownedClass loads the class and enforces the ownership predicate: role
// membership alone is not enough, the class must belong to the caller.
func (a *API) ownedClass(w http.ResponseWriter, r *http.Request, classID int64) (school.Class, bool) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		w.Header().Set("WWW-Authenticate", `Bearer realm="rollcall"`)
		writeError(w, r, http.StatusUnauthorized, "authentication required")
		return school.Class{}, false
	}
	cls, err := a.classes.Find(r.Context(), classID)
	if err != nil {
		if errors.Is(err, school.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "class not found")
		} else {
			domainError(w, r, err)
		}
		return school.Class{}, false
	}
	if cls.TeacherID != principal.ID {
		writeError(w, r, http.StatusForbidden, "class belongs to another teacher")
		return school.Class{}, false
	}
	return cls, true
}

func (a *API) handleTeacherClasses(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	principal, _ := auth.PrincipalFromContext(r.Context())
	classes, err := a.classes.ListByTeacher(r.Context(), principal.ID)
	if err != nil {
		domainError(w, r, err)
		return
	}
	if classes == nil {
		classes = []school.Class{}
	}
	writeJSON(w, http.StatusOK, classes)
}

func (a *API) handleTeacherClassResource(w http.ResponseWriter, r *http.Request) {
	id, rest, ok := pathIDWithSuffix(r.URL.Path, "/api/teacher/classes/")
	if !ok || rest != "students" {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	if _, ok := a.ownedClass(w, r, id); !ok {
		return
	}
	students, err := a.classes.Students(r.Context(), id)
	if err != nil {
		domainError(w, r, err)
		return
	}
	if students == nil {
		students = []*auth.User{}
	}
	writeJSON(w, http.StatusOK, students)
}

func (a *API) handleTeacherAttendance(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	var req markAttendanceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if req.ClassID <= 0 {
		writeError(w, r, http.StatusBadRequest, "classId is required")
		return
	}
	cls, ok := a.ownedClass(w, r, req.ClassID)
	if !ok {
		return
	}
	if err := a.attendance.MarkDay(r.Context(), req.ClassID, req.Date, req.AttendanceData); err != nil {
		domainError(w, r, err)
		return
	}

	// MarkDay accepted the batch, so every status parses; count the
	// normalized values rather than the raw input casing.
	present, absent := 0, 0
	for _, e := range req.AttendanceData {
		status, err := attendance.ParseStatus(string(e.Status))
		if err != nil {
			continue
		}
		switch status {
		case attendance.StatusPresent:
			present++
		case attendance.StatusAbsent:
			absent++
		}
	}
	obs.CountAttendanceMark(string(attendance.StatusPresent), present)
	obs.CountAttendanceMark(string(attendance.StatusAbsent), absent)
	if a.events != nil {
		a.events.Publish(stream.MarkEvent{
			ClassID:   cls.ID,
			ClassName: cls.Name,
			TeacherID: cls.TeacherID,
			Date:      req.Date,
			Present:   present,
			Absent:    absent,
			Timestamp: time.Now().UTC(),
		})
	}
	_ = audit.LogEvent(r.Context(), "attendance.mark", map[string]any{
		"class_id": cls.ID,
		"date":     req.Date,
		"entries":  len(req.AttendanceData),
	})
	writeJSON(w, http.StatusOK, map[string]string{"message": "attendance updated"})
}
