package httpapi

import (
	"net/http"

	"rollcall.org/internal/attendance"
	"rollcall.org/internal/auth"
)

func (a *API) handleStudentAttendance(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	principal, _ := auth.PrincipalFromContext(r.Context())
	history, err := a.attendance.StudentHistory(r.Context(), principal.ID)
	if err != nil {
		domainError(w, r, err)
		return
	}
	if history.Records == nil {
		history.Records = []attendance.Record{}
	}
	if history.Summary == nil {
		history.Summary = attendance.Summary{}
	}
	writeJSON(w, http.StatusOK, history)
}
