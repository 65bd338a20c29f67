package httpapi

import (
	"fmt"
	"net/http"
	"sort"

	"rollcall.org/internal/audit"
	"rollcall.org/internal/auth"
)

type createUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type createClassRequest struct {
	Name      string `json:"name"`
	TeacherID int64  `json:"teacher_id"`
}

type enrollRequest struct {
	StudentID int64 `json:"student_id"`
}

type roleCount struct {
	Role  string `json:"role"`
	Count int    `json:"count"`
}

type statsResponse struct {
	Users   []roleCount `json:"users"`
	Classes int         `json:"classes"`
}

func (a *API) handleAdminUsers(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		users, err := a.auth.ListUsers(r.Context())
		if err != nil {
			domainError(w, r, err)
			return
		}
		if users == nil {
			users = []*auth.User{}
		}
		writeJSON(w, http.StatusOK, users)
	case http.MethodPost:
		var req createUserRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		role, err := auth.ParseRole(req.Role)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "role must be admin, teacher or student")
			return
		}
		user, err := a.auth.CreateUser(r.Context(), req.Name, req.Email, req.Password, role)
		if err != nil {
			domainError(w, r, err)
			return
		}
		_ = audit.LogEvent(r.Context(), "admin.user.create", map[string]any{
			"new_user_id": user.ID,
			"role":        string(user.Role),
		})
		w.Header().Set("Location", fmt.Sprintf("/api/admin/users/%d", user.ID))
		writeJSON(w, http.StatusCreated, user)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) handleAdminUserResource(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r.URL.Path, "/api/admin/users/")
	if !ok {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	if r.Method != http.MethodDelete {
		methodNotAllowed(w, r, http.MethodDelete)
		return
	}
	if principal, ok := auth.PrincipalFromContext(r.Context()); ok && principal.ID == id {
		writeError(w, r, http.StatusBadRequest, "cannot delete own account")
		return
	}
	if err := a.auth.DeleteUser(r.Context(), id); err != nil {
		domainError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "admin.user.delete", map[string]any{
		"deleted_user_id": id,
	})
	writeJSON(w, http.StatusOK, map[string]string{"message": "user deleted"})
}

func (a *API) handleAdminStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	counts, err := a.auth.UserCounts(r.Context())
	if err != nil {
		domainError(w, r, err)
		return
	}
	classes, err := a.classes.Count(r.Context())
	if err != nil {
		domainError(w, r, err)
		return
	}
	users := make([]roleCount, 0, len(counts))
	for role, count := range counts {
		users = append(users, roleCount{Role: string(role), Count: count})
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Role < users[j].Role })
	writeJSON(w, http.StatusOK, statsResponse{Users: users, Classes: classes})
}

func (a *API) handleAdminClasses(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	var req createClassRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	teacher, err := a.auth.User(r.Context(), req.TeacherID)
	if err != nil {
		domainError(w, r, err)
		return
	}
	if teacher.Role != auth.RoleTeacher {
		writeError(w, r, http.StatusBadRequest, "class owner must have the teacher role")
		return
	}
	cls, err := a.classes.Create(r.Context(), req.Name, req.TeacherID)
	if err != nil {
		domainError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "admin.class.create", map[string]any{
		"class_id":   cls.ID,
		"teacher_id": cls.TeacherID,
	})
	w.Header().Set("Location", fmt.Sprintf("/api/admin/classes/%d", cls.ID))
	writeJSON(w, http.StatusCreated, cls)
}

func (a *API) handleAdminClassResource(w http.ResponseWriter, r *http.Request) {
	id, rest, ok := pathIDWithSuffix(r.URL.Path, "/api/admin/classes/")
	if !ok || rest != "students" {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	var req enrollRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	student, err := a.auth.User(r.Context(), req.StudentID)
	if err != nil {
		domainError(w, r, err)
		return
	}
	if student.Role != auth.RoleStudent {
		writeError(w, r, http.StatusBadRequest, "only students can be enrolled")
		return
	}
	if err := a.classes.Enroll(r.Context(), id, req.StudentID); err != nil {
		domainError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "admin.class.enroll", map[string]any{
		"class_id":   id,
		"student_id": req.StudentID,
	})
	writeJSON(w, http.StatusCreated, map[string]string{"message": "student enrolled"})
}
