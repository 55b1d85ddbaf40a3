package httpserver

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"synaphack/platform/internal/auth"
	"synaphack/platform/internal/config"
	"synaphack/platform/internal/hackathon"
	"synaphack/platform/internal/nav"
	"synaphack/platform/internal/notify"
)

type AuthService interface {
	Register(profile auth.RegisterProfile) (auth.Session, error)
	Login(email, password string) (auth.Session, error)
	ValidateToken(token string) (auth.Session, error)
	Logout(token string) error
	ListSessionViews() []auth.SessionView
	RevokeSessionByID(sessionID string) error
}

type HackathonService interface {
	CreateEvent(e hackathon.Event) (hackathon.Event, error)
	PublishEvent(eventID, organizerID string) (hackathon.Event, error)
	ListEvents() []hackathon.Event
	GetEvent(id string) (hackathon.Event, error)
	RegisterForEvent(eventID, userID string) (hackathon.Event, error)
	CreateTeam(t hackathon.Team) (hackathon.Team, error)
	JoinTeam(code string, member hackathon.TeamMember) (hackathon.Team, error)
	ListTeams(eventID string) []hackathon.Team
	SubmitProject(sub hackathon.Submission) (hackathon.Submission, error)
	ListSubmissions(eventID string) []hackathon.Submission
	GetSubmission(id string) (hackathon.Submission, error)
	ScoreSubmission(submissionID string, score hackathon.Score) (hackathon.Submission, error)
	PostAnnouncement(a hackathon.Announcement) (hackathon.Announcement, error)
	ListAnnouncements() []hackathon.Announcement
	AskQuestion(q hackathon.QAThread) (hackathon.QAThread, error)
	AnswerQuestion(id, answer, answeredBy string) (hackathon.QAThread, error)
	UpvoteQuestion(id string) (hackathon.QAThread, error)
	ListQuestions() []hackathon.QAThread
}

type NotificationBus interface {
	Publish(title, message string, kind notify.Kind) int64
	Dismiss(id int64)
	Entries() []notify.Entry
	Subscribe(listener func([]notify.Entry)) func()
}

type AuditLogger interface {
	Log(actor, role, action, target, outcome, detail string) error
}

type Deps struct {
	Auth            AuthService
	Hackathon       HackathonService
	Notifications   NotificationBus
	Audit           AuditLogger
	FrontendDistDir string
}

type Server struct {
	httpServer *http.Server
}

func New(cfg config.HTTPConfig, deps Deps) *Server {
	handler := NewHandler(deps)

	return &Server{
		httpServer: &http.Server{
			Addr:         cfg.Addr,
			Handler:      loggingMiddleware(handler),
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  60 * time.Second,
		},
	}
}

func NewHandler(deps Deps) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	})
	mux.HandleFunc("/v1/info", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"service": "synaphack-platform",
			"version": "0.1.0",
		})
	})

	registerAuthHandlers(mux, deps)
	registerSessionAdminHandlers(mux, deps)
	registerEventHandlers(mux, deps)
	registerTeamHandlers(mux, deps)
	registerSubmissionHandlers(mux, deps)
	registerAnnouncementHandlers(mux, deps)
	registerQuestionHandlers(mux, deps)
	registerNavigationHandlers(mux, deps)
	registerNotificationHandlers(mux, deps)
	registerFrontendHandlers(mux, deps.FrontendDistDir)

	return mux
}

func registerAuthHandlers(mux *http.ServeMux, deps Deps) {
	mux.HandleFunc("/v1/auth/register", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		if deps.Auth == nil {
			writeError(w, http.StatusServiceUnavailable, "auth service unavailable")
			return
		}

		var req struct {
			Email    string `json:"email"`
			Name     string `json:"name"`
			Password string `json:"password"`
			Role     string `json:"role"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		session, err := deps.Auth.Register(auth.RegisterProfile{
			Email:    req.Email,
			Name:     req.Name,
			Password: req.Password,
			Role:     req.Role,
		})
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrEmailTaken):
				auditReq(deps.Audit, r, req.Email, "", "auth.register", "", "failed", "", "email taken")
				writeError(w, http.StatusConflict, "email already registered")
			case errors.Is(err, auth.ErrWeakPassword):
				auditReq(deps.Audit, r, req.Email, "", "auth.register", "", "failed", "", "weak password")
				writeError(w, http.StatusBadRequest, "password does not meet policy")
			case errors.Is(err, auth.ErrValidation):
				auditReq(deps.Audit, r, req.Email, "", "auth.register", "", "failed", "", err.Error())
				writeError(w, http.StatusBadRequest, err.Error())
			default:
				auditReq(deps.Audit, r, req.Email, "", "auth.register", "", "failed", "", err.Error())
				writeError(w, http.StatusInternalServerError, "registration failed")
			}
			return
		}
		auditReq(deps.Audit, r, session.Email, string(session.Role), "auth.register", "", "success", session.ID, "")

		writeJSON(w, http.StatusCreated, sessionPayload(session))
	})

	mux.HandleFunc("/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		if deps.Auth == nil {
			writeError(w, http.StatusServiceUnavailable, "auth service unavailable")
			return
		}

		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Email == "" || req.Password == "" {
			writeError(w, http.StatusBadRequest, "email and password are required")
			return
		}

		session, err := deps.Auth.Login(req.Email, req.Password)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidCredentials) {
				auditReq(deps.Audit, r, req.Email, "", "auth.login", "", "failed", "", "invalid credentials")
				writeError(w, http.StatusUnauthorized, "invalid credentials")
				return
			}
			auditReq(deps.Audit, r, req.Email, "", "auth.login", "", "failed", "", err.Error())
			writeError(w, http.StatusInternalServerError, "login failed")
			return
		}
		auditReq(deps.Audit, r, session.Email, string(session.Role), "auth.login", "", "success", session.ID, "")

		writeJSON(w, http.StatusOK, sessionPayload(session))
	})

	mux.HandleFunc("/v1/auth/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		session, ok := requireSession(w, r, deps.Auth, "")
		if !ok {
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"id":         session.UserID,
			"email":      session.Email,
			"name":       session.Name,
			"role":       session.Role,
			"expires_at": session.ExpiresAt.UTC().Format(time.RFC3339),
		})
	})

	mux.HandleFunc("/v1/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		if deps.Auth == nil {
			writeError(w, http.StatusServiceUnavailable, "auth service unavailable")
			return
		}
		token, err := extractBearerToken(r.Header.Get("Authorization"))
		if err != nil {
			writeError(w, http.StatusUnauthorized, "missing or invalid bearer token")
			return
		}
		session, _ := deps.Auth.ValidateToken(token)
		if err := deps.Auth.Logout(token); err != nil {
			auditReq(deps.Audit, r, session.Email, string(session.Role), "auth.logout", "", "failed", session.ID, "invalid token")
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		auditReq(deps.Audit, r, session.Email, string(session.Role), "auth.logout", "", "success", session.ID, "")
		w.WriteHeader(http.StatusNoContent)
	})
}

func sessionPayload(session auth.Session) map[string]any {
	return map[string]any{
		"token":      session.Token,
		"session_id": session.ID,
		"user": map[string]any{
			"id":    session.UserID,
			"email": session.Email,
			"name":  session.Name,
			"role":  session.Role,
		},
		"expires_at": session.ExpiresAt.UTC().Format(time.RFC3339),
	}
}

func registerSessionAdminHandlers(mux *http.ServeMux, deps Deps) {
	mux.HandleFunc("/v1/system/sessions", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		adminSession, ok := requireSession(w, r, deps.Auth, auth.RoleOrganizer)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": deps.Auth.ListSessionViews()})
		auditReq(deps.Audit, r, adminSession.Email, string(adminSession.Role), "session.list", "", "success", adminSession.ID, "")
	})

	mux.HandleFunc("/v1/system/sessions/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		adminSession, ok := requireSession(w, r, deps.Auth, auth.RoleOrganizer)
		if !ok {
			return
		}

		sessionID := strings.TrimPrefix(r.URL.Path, "/v1/system/sessions/")
		sessionID = strings.TrimSpace(sessionID)
		if sessionID == "" || strings.Contains(sessionID, "/") {
			writeError(w, http.StatusBadRequest, "invalid session id")
			return
		}
		if err := deps.Auth.RevokeSessionByID(sessionID); err != nil {
			if errors.Is(err, auth.ErrInvalidToken) {
				auditReq(deps.Audit, r, adminSession.Email, string(adminSession.Role), "session.revoke", sessionID, "failed", adminSession.ID, "session not found")
				writeError(w, http.StatusNotFound, "session not found")
				return
			}
			auditReq(deps.Audit, r, adminSession.Email, string(adminSession.Role), "session.revoke", sessionID, "failed", adminSession.ID, err.Error())
			writeError(w, http.StatusInternalServerError, "revoke session failed")
			return
		}
		auditReq(deps.Audit, r, adminSession.Email, string(adminSession.Role), "session.revoke", sessionID, "success", adminSession.ID, "")
		w.WriteHeader(http.StatusNoContent)
	})
}

func registerEventHandlers(mux *http.ServeMux, deps Deps) {
	mux.HandleFunc("/v1/events", func(w http.ResponseWriter, r *http.Request) {
		if deps.Hackathon == nil {
			writeError(w, http.StatusServiceUnavailable, "hackathon service unavailable")
			return
		}

		switch r.Method {
		case http.MethodGet:
			// The event catalog is public; visitors browse before signing up.
			writeJSON(w, http.StatusOK, map[string]any{"items": deps.Hackathon.ListEvents()})
		case http.MethodPost:
			session, ok := requireSession(w, r, deps.Auth, auth.RoleOrganizer)
			if !ok {
				return
			}
			var req hackathon.Event
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, "invalid request body")
				return
			}
			req.OrganizerID = session.UserID
			created, err := deps.Hackathon.CreateEvent(req)
			if err != nil {
				if errors.Is(err, hackathon.ErrInvalidInput) {
					writeError(w, http.StatusBadRequest, err.Error())
					return
				}
				writeError(w, http.StatusInternalServerError, "create event failed")
				return
			}
			auditReq(deps.Audit, r, session.Email, string(session.Role), "event.create", created.ID, "success", session.ID, "")
			writeJSON(w, http.StatusCreated, created)
		default:
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		}
	})

	mux.HandleFunc("/v1/events/", func(w http.ResponseWriter, r *http.Request) {
		if deps.Hackathon == nil {
			writeError(w, http.StatusServiceUnavailable, "hackathon service unavailable")
			return
		}

		rest := strings.TrimPrefix(r.URL.Path, "/v1/events/")
		id, action, _ := strings.Cut(rest, "/")
		if id == "" {
			writeError(w, http.StatusNotFound, "event not found")
			return
		}

		switch {
		case action == "" && r.Method == http.MethodGet:
			e, err := deps.Hackathon.GetEvent(id)
			if err != nil {
				if errors.Is(err, hackathon.ErrNotFound) {
					writeError(w, http.StatusNotFound, "event not found")
					return
				}
				writeError(w, http.StatusInternalServerError, "get event failed")
				return
			}
			writeJSON(w, http.StatusOK, e)

		case action == "publish" && r.Method == http.MethodPost:
			session, ok := requireSession(w, r, deps.Auth, auth.RoleOrganizer)
			if !ok {
				return
			}
			e, err := deps.Hackathon.PublishEvent(id, session.UserID)
			if err != nil {
				switch {
				case errors.Is(err, hackathon.ErrNotFound):
					writeError(w, http.StatusNotFound, "event not found")
				case errors.Is(err, hackathon.ErrForbidden):
					auditReq(deps.Audit, r, session.Email, string(session.Role), "event.publish", id, "failed", session.ID, "not event owner")
					writeError(w, http.StatusForbidden, "only the owning organizer may publish")
				case errors.Is(err, hackathon.ErrInvalidInput):
					writeError(w, http.StatusConflict, err.Error())
				default:
					writeError(w, http.StatusInternalServerError, "publish event failed")
				}
				return
			}
			auditReq(deps.Audit, r, session.Email, string(session.Role), "event.publish", id, "success", session.ID, "")
			notifySafe(deps.Notifications, "Event published", e.Title+" is now open for registration", notify.KindSuccess)
			writeJSON(w, http.StatusOK, e)

		case action == "register" && r.Method == http.MethodPost:
			session, ok := requireSession(w, r, deps.Auth, auth.RoleParticipant)
			if !ok {
				return
			}
			e, err := deps.Hackathon.RegisterForEvent(id, session.UserID)
			if err != nil {
				switch {
				case errors.Is(err, hackathon.ErrNotFound):
					writeError(w, http.StatusNotFound, "event not found")
				case errors.Is(err, hackathon.ErrRegistrationClosed):
					writeError(w, http.StatusConflict, "registration deadline has passed")
				case errors.Is(err, hackathon.ErrEventFull):
					writeError(w, http.StatusConflict, "event is at capacity")
				case errors.Is(err, hackathon.ErrAlreadyRegistered):
					writeError(w, http.StatusConflict, "already registered")
				case errors.Is(err, hackathon.ErrInvalidInput):
					writeError(w, http.StatusBadRequest, err.Error())
				default:
					writeError(w, http.StatusInternalServerError, "event registration failed")
				}
				return
			}
			auditReq(deps.Audit, r, session.Email, string(session.Role), "event.register", id, "success", session.ID, "")
			notifySafe(deps.Notifications, "Registration confirmed", "You are registered for "+e.Title, notify.KindSuccess)
			writeJSON(w, http.StatusOK, e)

		default:
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		}
	})
}

func registerTeamHandlers(mux *http.ServeMux, deps Deps) {
	mux.HandleFunc("/v1/teams", func(w http.ResponseWriter, r *http.Request) {
		if deps.Hackathon == nil {
			writeError(w, http.StatusServiceUnavailable, "hackathon service unavailable")
			return
		}

		switch r.Method {
		case http.MethodGet:
			if _, ok := requireSession(w, r, deps.Auth, ""); !ok {
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"items": deps.Hackathon.ListTeams(r.URL.Query().Get("event"))})
		case http.MethodPost:
			session, ok := requireSession(w, r, deps.Auth, auth.RoleParticipant)
			if !ok {
				return
			}
			var req hackathon.Team
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, "invalid request body")
				return
			}
			req.LeaderID = session.UserID
			created, err := deps.Hackathon.CreateTeam(req)
			if err != nil {
				switch {
				case errors.Is(err, hackathon.ErrInvalidInput):
					writeError(w, http.StatusBadRequest, err.Error())
				case errors.Is(err, hackathon.ErrNotFound):
					writeError(w, http.StatusNotFound, err.Error())
				default:
					writeError(w, http.StatusInternalServerError, "create team failed")
				}
				return
			}
			auditReq(deps.Audit, r, session.Email, string(session.Role), "team.create", created.ID, "success", session.ID, "")
			writeJSON(w, http.StatusCreated, created)
		default:
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		}
	})

	mux.HandleFunc("/v1/teams/join", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		if deps.Hackathon == nil {
			writeError(w, http.StatusServiceUnavailable, "hackathon service unavailable")
			return
		}
		session, ok := requireSession(w, r, deps.Auth, auth.RoleParticipant)
		if !ok {
			return
		}

		var req struct {
			InviteCode string `json:"invite_code"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		team, err := deps.Hackathon.JoinTeam(req.InviteCode, hackathon.TeamMember{
			UserID: session.UserID,
			Name:   session.Name,
			Email:  session.Email,
		})
		if err != nil {
			switch {
			case errors.Is(err, hackathon.ErrNotFound):
				writeError(w, http.StatusNotFound, "invite code not recognized")
			case errors.Is(err, hackathon.ErrTeamFull):
				writeError(w, http.StatusConflict, "team is full")
			case errors.Is(err, hackathon.ErrAlreadyMember):
				writeError(w, http.StatusConflict, "already a member")
			case errors.Is(err, hackathon.ErrInvalidInput):
				writeError(w, http.StatusBadRequest, err.Error())
			default:
				writeError(w, http.StatusInternalServerError, "join team failed")
			}
			return
		}
		auditReq(deps.Audit, r, session.Email, string(session.Role), "team.join", team.ID, "success", session.ID, "")
		writeJSON(w, http.StatusOK, team)
	})
}

func registerSubmissionHandlers(mux *http.ServeMux, deps Deps) {
	mux.HandleFunc("/v1/submissions", func(w http.ResponseWriter, r *http.Request) {
		if deps.Hackathon == nil {
			writeError(w, http.StatusServiceUnavailable, "hackathon service unavailable")
			return
		}

		switch r.Method {
		case http.MethodGet:
			if _, ok := requireSession(w, r, deps.Auth, ""); !ok {
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"items": deps.Hackathon.ListSubmissions(r.URL.Query().Get("event"))})
		case http.MethodPost:
			session, ok := requireSession(w, r, deps.Auth, auth.RoleParticipant)
			if !ok {
				return
			}
			var req hackathon.Submission
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, "invalid request body")
				return
			}
			created, err := deps.Hackathon.SubmitProject(req)
			if err != nil {
				switch {
				case errors.Is(err, hackathon.ErrInvalidInput):
					writeError(w, http.StatusBadRequest, err.Error())
				case errors.Is(err, hackathon.ErrNotFound):
					writeError(w, http.StatusNotFound, err.Error())
				default:
					writeError(w, http.StatusInternalServerError, "submit project failed")
				}
				return
			}
			auditReq(deps.Audit, r, session.Email, string(session.Role), "submission.create", created.ID, "success", session.ID, "")
			notifySafe(deps.Notifications, "Submission received", created.Title, notify.KindSuccess)
			writeJSON(w, http.StatusCreated, created)
		default:
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		}
	})

	mux.HandleFunc("/v1/submissions/", func(w http.ResponseWriter, r *http.Request) {
		if deps.Hackathon == nil {
			writeError(w, http.StatusServiceUnavailable, "hackathon service unavailable")
			return
		}

		rest := strings.TrimPrefix(r.URL.Path, "/v1/submissions/")
		id, action, _ := strings.Cut(rest, "/")
		if id == "" {
			writeError(w, http.StatusNotFound, "submission not found")
			return
		}

		switch {
		case action == "" && r.Method == http.MethodGet:
			if _, ok := requireSession(w, r, deps.Auth, ""); !ok {
				return
			}
			sub, err := deps.Hackathon.GetSubmission(id)
			if err != nil {
				if errors.Is(err, hackathon.ErrNotFound) {
					writeError(w, http.StatusNotFound, "submission not found")
					return
				}
				writeError(w, http.StatusInternalServerError, "get submission failed")
				return
			}
			writeJSON(w, http.StatusOK, sub)

		case action == "score" && r.Method == http.MethodPost:
			session, ok := requireSession(w, r, deps.Auth, auth.RoleJudge)
			if !ok {
				return
			}
			var req hackathon.Score
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, "invalid request body")
				return
			}
			req.JudgeID = session.UserID
			sub, err := deps.Hackathon.ScoreSubmission(id, req)
			if err != nil {
				switch {
				case errors.Is(err, hackathon.ErrNotFound):
					writeError(w, http.StatusNotFound, "submission not found")
				case errors.Is(err, hackathon.ErrAlreadyScored):
					writeError(w, http.StatusConflict, "submission already scored by this judge")
				case errors.Is(err, hackathon.ErrInvalidInput):
					writeError(w, http.StatusBadRequest, err.Error())
				default:
					writeError(w, http.StatusInternalServerError, "score submission failed")
				}
				return
			}
			auditReq(deps.Audit, r, session.Email, string(session.Role), "submission.score", id, "success", session.ID, "")
			notifySafe(deps.Notifications, "Score recorded", "Review saved for "+sub.Title, notify.KindInfo)
			writeJSON(w, http.StatusOK, sub)

		default:
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		}
	})
}

func registerAnnouncementHandlers(mux *http.ServeMux, deps Deps) {
	mux.HandleFunc("/v1/announcements", func(w http.ResponseWriter, r *http.Request) {
		if deps.Hackathon == nil {
			writeError(w, http.StatusServiceUnavailable, "hackathon service unavailable")
			return
		}

		switch r.Method {
		case http.MethodGet:
			if _, ok := requireSession(w, r, deps.Auth, ""); !ok {
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"items": deps.Hackathon.ListAnnouncements()})
		case http.MethodPost:
			session, ok := requireSession(w, r, deps.Auth, auth.RoleOrganizer)
			if !ok {
				return
			}
			var req hackathon.Announcement
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, "invalid request body")
				return
			}
			req.CreatedBy = session.UserID
			created, err := deps.Hackathon.PostAnnouncement(req)
			if err != nil {
				if errors.Is(err, hackathon.ErrInvalidInput) {
					writeError(w, http.StatusBadRequest, err.Error())
					return
				}
				writeError(w, http.StatusInternalServerError, "post announcement failed")
				return
			}
			auditReq(deps.Audit, r, session.Email, string(session.Role), "announcement.post", created.ID, "success", session.ID, "")
			notifySafe(deps.Notifications, created.Title, created.Content, announcementKind(created.Type))
			writeJSON(w, http.StatusCreated, created)
		default:
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		}
	})
}

// announcementKind maps announcement urgency onto toast severity.
func announcementKind(t hackathon.AnnouncementType) notify.Kind {
	if t == hackathon.AnnouncementUrgent {
		return notify.KindWarning
	}
	return notify.KindInfo
}

func registerQuestionHandlers(mux *http.ServeMux, deps Deps) {
	mux.HandleFunc("/v1/questions", func(w http.ResponseWriter, r *http.Request) {
		if deps.Hackathon == nil {
			writeError(w, http.StatusServiceUnavailable, "hackathon service unavailable")
			return
		}

		switch r.Method {
		case http.MethodGet:
			if _, ok := requireSession(w, r, deps.Auth, ""); !ok {
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"items": deps.Hackathon.ListQuestions()})
		case http.MethodPost:
			session, ok := requireSession(w, r, deps.Auth, "")
			if !ok {
				return
			}
			var req hackathon.QAThread
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, "invalid request body")
				return
			}
			req.AskedBy = session.UserID
			created, err := deps.Hackathon.AskQuestion(req)
			if err != nil {
				if errors.Is(err, hackathon.ErrInvalidInput) {
					writeError(w, http.StatusBadRequest, err.Error())
					return
				}
				writeError(w, http.StatusInternalServerError, "ask question failed")
				return
			}
			auditReq(deps.Audit, r, session.Email, string(session.Role), "question.ask", created.ID, "success", session.ID, "")
			writeJSON(w, http.StatusCreated, created)
		default:
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		}
	})

	mux.HandleFunc("/v1/questions/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		if deps.Hackathon == nil {
			writeError(w, http.StatusServiceUnavailable, "hackathon service unavailable")
			return
		}

		rest := strings.TrimPrefix(r.URL.Path, "/v1/questions/")
		id, action, _ := strings.Cut(rest, "/")
		if id == "" {
			writeError(w, http.StatusNotFound, "question not found")
			return
		}

		switch action {
		case "answer":
			session, ok := requireSession(w, r, deps.Auth, auth.RoleOrganizer)
			if !ok {
				return
			}
			var req struct {
				Answer string `json:"answer"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, "invalid request body")
				return
			}
			thread, err := deps.Hackathon.AnswerQuestion(id, req.Answer, session.UserID)
			if err != nil {
				switch {
				case errors.Is(err, hackathon.ErrNotFound):
					writeError(w, http.StatusNotFound, "question not found")
				case errors.Is(err, hackathon.ErrInvalidInput):
					writeError(w, http.StatusBadRequest, err.Error())
				default:
					writeError(w, http.StatusInternalServerError, "answer question failed")
				}
				return
			}
			auditReq(deps.Audit, r, session.Email, string(session.Role), "question.answer", id, "success", session.ID, "")
			writeJSON(w, http.StatusOK, thread)

		case "upvote":
			if _, ok := requireSession(w, r, deps.Auth, ""); !ok {
				return
			}
			thread, err := deps.Hackathon.UpvoteQuestion(id)
			if err != nil {
				if errors.Is(err, hackathon.ErrNotFound) {
					writeError(w, http.StatusNotFound, "question not found")
					return
				}
				writeError(w, http.StatusInternalServerError, "upvote question failed")
				return
			}
			writeJSON(w, http.StatusOK, thread)

		default:
			writeError(w, http.StatusNotFound, "question route not found")
		}
	})
}

func registerNavigationHandlers(mux *http.ServeMux, deps Deps) {
	mux.HandleFunc("/v1/navigation", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		session, ok := requireSession(w, r, deps.Auth, "")
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": nav.LinksFor(session.Role)})
	})
}

func registerNotificationHandlers(mux *http.ServeMux, deps Deps) {
	mux.HandleFunc("/v1/notifications", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		if deps.Notifications == nil {
			writeError(w, http.StatusServiceUnavailable, "notification bus unavailable")
			return
		}
		if _, ok := requireSession(w, r, deps.Auth, ""); !ok {
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": deps.Notifications.Entries()})
	})

	mux.HandleFunc("/v1/notifications/", func(w http.ResponseWriter, r *http.Request) {
		if deps.Notifications == nil {
			writeError(w, http.StatusServiceUnavailable, "notification bus unavailable")
			return
		}

		rest := strings.TrimPrefix(r.URL.Path, "/v1/notifications/")
		if rest == "stream" {
			streamNotifications(w, r, deps)
			return
		}

		if r.Method != http.MethodDelete {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		if _, ok := requireSession(w, r, deps.Auth, ""); !ok {
			return
		}
		id, err := strconv.ParseInt(rest, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid notification id")
			return
		}
		deps.Notifications.Dismiss(id)
		w.WriteHeader(http.StatusNoContent)
	})
}

func registerFrontendHandlers(mux *http.ServeMux, distDir string) {
	distDir = strings.TrimSpace(distDir)
	if distDir == "" {
		return
	}
	indexPath := filepath.Join(distDir, "index.html")
	if _, err := os.Stat(indexPath); err != nil {
		return
	}

	fileServer := http.FileServer(http.Dir(distDir))
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/v1/") || r.URL.Path == "/healthz" || r.URL.Path == "/readyz" {
			http.NotFound(w, r)
			return
		}

		cleanPath := path.Clean(r.URL.Path)
		if cleanPath == "." || cleanPath == "/" {
			http.ServeFile(w, r, indexPath)
			return
		}

		fullPath := filepath.Join(distDir, strings.TrimPrefix(cleanPath, "/"))
		info, err := os.Stat(fullPath)
		if err == nil && !info.IsDir() {
			fileServer.ServeHTTP(w, r)
			return
		}

		// SPA fallback.
		http.ServeFile(w, r, indexPath)
	})
}

func requireSession(w http.ResponseWriter, r *http.Request, authSvc AuthService, requiredRole auth.Role) (auth.Session, bool) {
	if authSvc == nil {
		writeError(w, http.StatusServiceUnavailable, "auth service unavailable")
		return auth.Session{}, false
	}
	token, err := extractBearerToken(r.Header.Get("Authorization"))
	if err != nil {
		writeError(w, http.StatusUnauthorized, "missing or invalid bearer token")
		return auth.Session{}, false
	}

	session, err := authSvc.ValidateToken(token)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid token")
		return auth.Session{}, false
	}

	if requiredRole != "" && session.Role != requiredRole {
		writeError(w, http.StatusForbidden, "forbidden")
		return auth.Session{}, false
	}

	return session, true
}

func extractBearerToken(authHeader string) (string, error) {
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", fmt.Errorf("invalid authorization header")
	}
	return strings.TrimSpace(parts[1]), nil
}

func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(statusCode int) {
	r.status = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := strings.TrimSpace(r.Header.Get("X-Request-Id"))
		if reqID == "" {
			reqID = newRequestID()
		}
		w.Header().Set("X-Request-Id", reqID)
		r = r.WithContext(context.WithValue(r.Context(), requestIDKey{}, reqID))
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
	})
}

type requestIDKey struct{}

func newRequestID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("req-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b)
}

func requestIDFromContext(ctx context.Context) string {
	v := ctx.Value(requestIDKey{})
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

func clientIP(r *http.Request) string {
	if fwd := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); fwd != "" {
		parts := strings.Split(fwd, ",")
		return strings.TrimSpace(parts[0])
	}
	if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
		return realIP
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil {
		return host
	}
	return r.RemoteAddr
}

func auditReq(a AuditLogger, r *http.Request, actor, role, action, target, outcome, sessionID, detail string) {
	parts := []string{
		"rid=" + requestIDFromContext(r.Context()),
		"ip=" + clientIP(r),
		"ua=" + strings.TrimSpace(r.UserAgent()),
	}
	if sessionID != "" {
		parts = append(parts, "sid="+sessionID)
	}
	if strings.TrimSpace(detail) != "" {
		parts = append(parts, "detail="+strings.TrimSpace(detail))
	}
	auditSafe(a, actor, role, action, target, outcome, strings.Join(parts, " | "))
}

func auditSafe(a AuditLogger, actor, role, action, target, outcome, detail string) {
	if a == nil {
		return
	}
	_ = a.Log(actor, role, action, target, outcome, detail)
}

func notifySafe(bus NotificationBus, title, message string, kind notify.Kind) {
	if bus == nil {
		return
	}
	bus.Publish(title, message, kind)
}
