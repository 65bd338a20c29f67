package httpapi

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"rollcall.org/internal/attendance"
	"rollcall.org/internal/auth"
	"rollcall.org/internal/obs"
	"rollcall.org/internal/school"
	"rollcall.org/internal/stream"
)

// ReadyProbe checks whether the backing store is reachable.
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	return rp.DB.PingContext(ctx)
}

type readinessChecker interface {
	Check(ctx context.Context) error
}

// API is the HTTP layer.
type API struct {
	mux        *http.ServeMux
	readyProbe ReadyProbe
	version    string

	auth       *auth.Service
	classes    school.Store
	attendance attendance.Service
	events     *stream.Stream

	rateBurst  int
	ratePerSec int
}

func New(rp ReadyProbe, version string, authSvc *auth.Service, classes school.Store, att attendance.Service, events *stream.Stream) *API {
	a := &API{
		mux:        http.NewServeMux(),
		readyProbe: rp,
		version:    version,
		auth:       authSvc,
		classes:    classes,
		attendance: att,
		events:     events,
		rateBurst:  30,
		ratePerSec: 15,
	}

	// health/ready/info/metrics
	a.mux.HandleFunc("/healthz", a.Healthz)
	a.mux.HandleFunc("/readyz", a.Ready)
	a.mux.HandleFunc("/v1/info", a.Info)
	a.mux.Handle("/metrics", obs.Handler())
	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	// open endpoints
	a.mux.HandleFunc("/api/auth/register", a.handleRegister)
	a.mux.HandleFunc("/api/auth/login", a.handleLogin)

	// role-gated surfaces; withAuth has already resolved the principal
	admin := RequireRole(auth.RoleAdmin)
	a.mux.Handle("/api/admin/users", admin(http.HandlerFunc(a.handleAdminUsers)))
	a.mux.Handle("/api/admin/users/", admin(http.HandlerFunc(a.handleAdminUserResource)))
	a.mux.Handle("/api/admin/stats", admin(http.HandlerFunc(a.handleAdminStats)))
	a.mux.Handle("/api/admin/classes", admin(http.HandlerFunc(a.handleAdminClasses)))
	a.mux.Handle("/api/admin/classes/", admin(http.HandlerFunc(a.handleAdminClassResource)))
	a.mux.Handle("/api/admin/stream", admin(http.HandlerFunc(a.handleAdminStream)))

	teacher := RequireRole(auth.RoleTeacher)
	a.mux.Handle("/api/teacher/classes", teacher(http.HandlerFunc(a.handleTeacherClasses)))
	a.mux.Handle("/api/teacher/classes/", teacher(http.HandlerFunc(a.handleTeacherClassResource)))
	a.mux.Handle("/api/teacher/attendance", teacher(http.HandlerFunc(a.handleTeacherAttendance)))

	student := RequireRole(auth.RoleStudent)
	a.mux.Handle("/api/student/attendance", student(http.HandlerFunc(a.handleStudentAttendance)))

	return a
}

// Handler assembles the full middleware chain around the mux.
func (a *API) Handler() http.Handler {
	var h http.Handler = a.mux
	h = a.withAuth(h)
	h = RateLimit(h, a.rateBurst, a.ratePerSec)
	h = MaxBodyBytes(h, 1<<20)
	h = CORS(h)
	h = SecurityHeaders(h)
	h = LoggingJSON(h)
	h = RequestID(h)
	return obs.Instrument(h)
}

// --- service endpoints ---

func (a *API) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": serviceName,
		"version": a.version,
	})
}

func (a *API) Ready(w http.ResponseWriter, r *http.Request) {
	if err := a.readyProbe.Check(r.Context()); err != nil {
		obs.SetReady(false)
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	obs.SetReady(true)
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
	})
}

func (a *API) Info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":    serviceName,
		"time":    time.Now().UTC().Format(time.RFC3339),
		"version": a.version,
	})
}
