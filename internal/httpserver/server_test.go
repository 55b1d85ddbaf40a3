package httpserver

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"synaphack/platform/internal/auth"
	"synaphack/platform/internal/hackathon"
	"synaphack/platform/internal/notify"
)

type fakeAuthService struct {
	registerFunc          func(profile auth.RegisterProfile) (auth.Session, error)
	loginFunc             func(email, password string) (auth.Session, error)
	validateFunc          func(token string) (auth.Session, error)
	logoutFunc            func(token string) error
	listSessionViewsFunc  func() []auth.SessionView
	revokeSessionByIDFunc func(sessionID string) error
}

func (f fakeAuthService) Register(profile auth.RegisterProfile) (auth.Session, error) {
	if f.registerFunc == nil {
		return auth.Session{}, errors.New("not implemented")
	}
	return f.registerFunc(profile)
}

func (f fakeAuthService) Login(email, password string) (auth.Session, error) {
	if f.loginFunc == nil {
		return auth.Session{}, errors.New("not implemented")
	}
	return f.loginFunc(email, password)
}

func (f fakeAuthService) ValidateToken(token string) (auth.Session, error) {
	if f.validateFunc == nil {
		return auth.Session{}, errors.New("not implemented")
	}
	return f.validateFunc(token)
}

func (f fakeAuthService) Logout(token string) error {
	if f.logoutFunc == nil {
		return errors.New("not implemented")
	}
	return f.logoutFunc(token)
}

func (f fakeAuthService) ListSessionViews() []auth.SessionView {
	if f.listSessionViewsFunc == nil {
		return nil
	}
	return f.listSessionViewsFunc()
}

func (f fakeAuthService) RevokeSessionByID(sessionID string) error {
	if f.revokeSessionByIDFunc == nil {
		return errors.New("not implemented")
	}
	return f.revokeSessionByIDFunc(sessionID)
}

// validateAs returns a fake auth service that accepts one token as one role.
func validateAs(token string, role auth.Role) fakeAuthService {
	return fakeAuthService{validateFunc: func(got string) (auth.Session, error) {
		if got != token {
			return auth.Session{}, auth.ErrInvalidToken
		}
		return auth.Session{
			ID:        "s1",
			UserID:    "u-1",
			Email:     "user@synaphack.dev",
			Name:      "Test User",
			Role:      role,
			ExpiresAt: time.Now().Add(time.Hour),
		}, nil
	}}
}

type fakeHackathonService struct {
	createEventFunc      func(e hackathon.Event) (hackathon.Event, error)
	publishEventFunc     func(eventID, organizerID string) (hackathon.Event, error)
	listEventsFunc       func() []hackathon.Event
	getEventFunc         func(id string) (hackathon.Event, error)
	registerForEventFunc func(eventID, userID string) (hackathon.Event, error)
	createTeamFunc       func(t hackathon.Team) (hackathon.Team, error)
	joinTeamFunc         func(code string, member hackathon.TeamMember) (hackathon.Team, error)
	listTeamsFunc        func(eventID string) []hackathon.Team
	submitProjectFunc    func(sub hackathon.Submission) (hackathon.Submission, error)
	listSubmissionsFunc  func(eventID string) []hackathon.Submission
	getSubmissionFunc    func(id string) (hackathon.Submission, error)
	scoreSubmissionFunc  func(submissionID string, score hackathon.Score) (hackathon.Submission, error)
	postAnnouncementFunc func(a hackathon.Announcement) (hackathon.Announcement, error)
	listAnnouncements    func() []hackathon.Announcement
	askQuestionFunc      func(q hackathon.QAThread) (hackathon.QAThread, error)
	answerQuestionFunc   func(id, answer, answeredBy string) (hackathon.QAThread, error)
	upvoteQuestionFunc   func(id string) (hackathon.QAThread, error)
	listQuestionsFunc    func() []hackathon.QAThread
}

func (f fakeHackathonService) CreateEvent(e hackathon.Event) (hackathon.Event, error) {
	if f.createEventFunc == nil {
		return hackathon.Event{}, errors.New("not implemented")
	}
	return f.createEventFunc(e)
}

func (f fakeHackathonService) PublishEvent(eventID, organizerID string) (hackathon.Event, error) {
	if f.publishEventFunc == nil {
		return hackathon.Event{}, errors.New("not implemented")
	}
	return f.publishEventFunc(eventID, organizerID)
}

func (f fakeHackathonService) ListEvents() []hackathon.Event {
	if f.listEventsFunc == nil {
		return nil
	}
	return f.listEventsFunc()
}

func (f fakeHackathonService) GetEvent(id string) (hackathon.Event, error) {
	if f.getEventFunc == nil {
		return hackathon.Event{}, errors.New("not implemented")
	}
	return f.getEventFunc(id)
}

func (f fakeHackathonService) RegisterForEvent(eventID, userID string) (hackathon.Event, error) {
	if f.registerForEventFunc == nil {
		return hackathon.Event{}, errors.New("not implemented")
	}
	return f.registerForEventFunc(eventID, userID)
}

func (f fakeHackathonService) CreateTeam(t hackathon.Team) (hackathon.Team, error) {
	if f.createTeamFunc == nil {
		return hackathon.Team{}, errors.New("not implemented")
	}
	return f.createTeamFunc(t)
}

func (f fakeHackathonService) JoinTeam(code string, member hackathon.TeamMember) (hackathon.Team, error) {
	if f.joinTeamFunc == nil {
		return hackathon.Team{}, errors.New("not implemented")
	}
	return f.joinTeamFunc(code, member)
}

func (f fakeHackathonService) ListTeams(eventID string) []hackathon.Team {
	if f.listTeamsFunc == nil {
		return nil
	}
	return f.listTeamsFunc(eventID)
}

func (f fakeHackathonService) SubmitProject(sub hackathon.Submission) (hackathon.Submission, error) {
	if f.submitProjectFunc == nil {
		return hackathon.Submission{}, errors.New("not implemented")
	}
	return f.submitProjectFunc(sub)
}

func (f fakeHackathonService) ListSubmissions(eventID string) []hackathon.Submission {
	if f.listSubmissionsFunc == nil {
		return nil
	}
	return f.listSubmissionsFunc(eventID)
}

func (f fakeHackathonService) GetSubmission(id string) (hackathon.Submission, error) {
	if f.getSubmissionFunc == nil {
		return hackathon.Submission{}, errors.New("not implemented")
	}
	return f.getSubmissionFunc(id)
}

func (f fakeHackathonService) ScoreSubmission(submissionID string, score hackathon.Score) (hackathon.Submission, error) {
	if f.scoreSubmissionFunc == nil {
		return hackathon.Submission{}, errors.New("not implemented")
	}
	return f.scoreSubmissionFunc(submissionID, score)
}

func (f fakeHackathonService) PostAnnouncement(a hackathon.Announcement) (hackathon.Announcement, error) {
	if f.postAnnouncementFunc == nil {
		return hackathon.Announcement{}, errors.New("not implemented")
	}
	return f.postAnnouncementFunc(a)
}

func (f fakeHackathonService) ListAnnouncements() []hackathon.Announcement {
	if f.listAnnouncements == nil {
		return nil
	}
	return f.listAnnouncements()
}

func (f fakeHackathonService) AskQuestion(q hackathon.QAThread) (hackathon.QAThread, error) {
	if f.askQuestionFunc == nil {
		return hackathon.QAThread{}, errors.New("not implemented")
	}
	return f.askQuestionFunc(q)
}

func (f fakeHackathonService) AnswerQuestion(id, answer, answeredBy string) (hackathon.QAThread, error) {
	if f.answerQuestionFunc == nil {
		return hackathon.QAThread{}, errors.New("not implemented")
	}
	return f.answerQuestionFunc(id, answer, answeredBy)
}

func (f fakeHackathonService) UpvoteQuestion(id string) (hackathon.QAThread, error) {
	if f.upvoteQuestionFunc == nil {
		return hackathon.QAThread{}, errors.New("not implemented")
	}
	return f.upvoteQuestionFunc(id)
}

func (f fakeHackathonService) ListQuestions() []hackathon.QAThread {
	if f.listQuestionsFunc == nil {
		return nil
	}
	return f.listQuestionsFunc()
}

func TestHealthz(t *testing.T) {
	handler := loggingMiddleware(NewHandler(Deps{}))
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if rec.Header().Get("X-Request-Id") == "" {
		t.Fatalf("expected X-Request-Id header to be set")
	}
}

func TestInfo(t *testing.T) {
	handler := NewHandler(Deps{})
	req := httptest.NewRequest(http.MethodGet, "/v1/info", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var got map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
	if got["service"] != "synaphack-platform" {
		t.Fatalf("expected service 'synaphack-platform', got %q", got["service"])
	}
}

func TestRegisterSuccess(t *testing.T) {
	handler := NewHandler(Deps{Auth: fakeAuthService{registerFunc: func(profile auth.RegisterProfile) (auth.Session, error) {
		if profile.Email != "ada@synaphack.dev" || profile.Role != "judge" {
			t.Fatalf("unexpected register profile: %+v", profile)
		}
		return auth.Session{ID: "s1", Token: "token-123", UserID: "u-1", Email: profile.Email, Name: profile.Name, Role: auth.RoleJudge, ExpiresAt: time.Now().Add(time.Hour)}, nil
	}}})

	body := bytes.NewBufferString(`{"email":"ada@synaphack.dev","name":"Ada","password":"Sup3r$ecretPass","role":"judge"}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/register", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d body=%s", rec.Code, rec.Body.String())
	}

	var got map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode register response: %v", err)
	}
	if got["session_id"] != "s1" {
		t.Fatalf("expected session_id s1, got %v", got["session_id"])
	}
}

func TestRegisterEmailTaken(t *testing.T) {
	handler := NewHandler(Deps{Auth: fakeAuthService{registerFunc: func(auth.RegisterProfile) (auth.Session, error) {
		return auth.Session{}, auth.ErrEmailTaken
	}}})

	body := bytes.NewBufferString(`{"email":"dup@synaphack.dev","name":"Dup","password":"Sup3r$ecretPass"}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/register", body)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", rec.Code)
	}
}

func TestLoginSuccess(t *testing.T) {
	handler := NewHandler(Deps{Auth: fakeAuthService{loginFunc: func(email, password string) (auth.Session, error) {
		if email != "ada@synaphack.dev" || password != "secret" {
			return auth.Session{}, auth.ErrInvalidCredentials
		}
		return auth.Session{ID: "s1", Token: "token-123", UserID: "u-1", Email: email, Role: auth.RoleParticipant, ExpiresAt: time.Now().Add(time.Hour)}, nil
	}}})

	body := bytes.NewBufferString(`{"email":"ada@synaphack.dev","password":"secret"}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d body=%s", rec.Code, rec.Body.String())
	}

	var got map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	if got["session_id"] != "s1" {
		t.Fatalf("expected session_id s1, got %v", got["session_id"])
	}
}

func TestAuthMeSuccess(t *testing.T) {
	handler := NewHandler(Deps{Auth: validateAs("token-123", auth.RoleOrganizer)})

	req := httptest.NewRequest(http.MethodGet, "/v1/auth/me", nil)
	req.Header.Set("Authorization", "Bearer token-123")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var got map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode me response: %v", err)
	}
	if got["role"] != "organizer" {
		t.Fatalf("expected role organizer, got %v", got["role"])
	}
}

func TestAuthLogout(t *testing.T) {
	handler := NewHandler(Deps{Auth: fakeAuthService{
		validateFunc: func(token string) (auth.Session, error) {
			return auth.Session{}, auth.ErrInvalidToken
		},
		logoutFunc: func(token string) error {
			if token != "token-123" {
				return auth.ErrInvalidToken
			}
			return nil
		},
	}})

	req := httptest.NewRequest(http.MethodPost, "/v1/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer token-123")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", rec.Code)
	}

	reqBad := httptest.NewRequest(http.MethodPost, "/v1/auth/logout", nil)
	reqBad.Header.Set("Authorization", "Bearer bad-token")
	recBad := httptest.NewRecorder()
	handler.ServeHTTP(recBad, reqBad)
	if recBad.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", recBad.Code)
	}
}

func TestListEventsIsPublic(t *testing.T) {
	handler := NewHandler(Deps{Hackathon: fakeHackathonService{listEventsFunc: func() []hackathon.Event {
		return []hackathon.Event{{ID: "ev-1", Title: "SynapHack 3.0", Status: hackathon.EventPublished}}
	}}})

	req := httptest.NewRequest(http.MethodGet, "/v1/events", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 without a token, got %d", rec.Code)
	}

	var got map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode events response: %v", err)
	}
	items, ok := got["items"].([]any)
	if !ok || len(items) != 1 {
		t.Fatalf("expected one event item, got %v", got["items"])
	}
}

func TestCreateEventRequiresOrganizer(t *testing.T) {
	handler := NewHandler(Deps{
		Auth:      validateAs("participant-token", auth.RoleParticipant),
		Hackathon: fakeHackathonService{},
	})

	body := bytes.NewBufferString(`{"title":"Nope"}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/events", body)
	req.Header.Set("Authorization", "Bearer participant-token")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected status 403 for participant, got %d", rec.Code)
	}
}

func TestCreateEventAsOrganizer(t *testing.T) {
	handler := NewHandler(Deps{
		Auth: validateAs("organizer-token", auth.RoleOrganizer),
		Hackathon: fakeHackathonService{createEventFunc: func(e hackathon.Event) (hackathon.Event, error) {
			if e.OrganizerID != "u-1" {
				t.Fatalf("expected organizer id from session, got %q", e.OrganizerID)
			}
			e.ID = "ev-1"
			e.Status = hackathon.EventDraft
			return e, nil
		}},
	})

	body := bytes.NewBufferString(`{"title":"SynapHack 3.0","mode":"online","max_team_size":4}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/events", body)
	req.Header.Set("Authorization", "Bearer organizer-token")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestPublishEventNotifies(t *testing.T) {
	bus := notify.NewBus()
	handler := NewHandler(Deps{
		Auth: validateAs("organizer-token", auth.RoleOrganizer),
		Hackathon: fakeHackathonService{publishEventFunc: func(eventID, organizerID string) (hackathon.Event, error) {
			return hackathon.Event{ID: eventID, Title: "SynapHack 3.0", Status: hackathon.EventPublished}, nil
		}},
		Notifications: bus,
	})

	req := httptest.NewRequest(http.MethodPost, "/v1/events/ev-1/publish", nil)
	req.Header.Set("Authorization", "Bearer organizer-token")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d body=%s", rec.Code, rec.Body.String())
	}

	entries := bus.Entries()
	if len(entries) != 1 {
		t.Fatalf("expected one notification, got %d", len(entries))
	}
	if entries[0].Kind != notify.KindSuccess {
		t.Fatalf("expected success notification, got %q", entries[0].Kind)
	}
}

func TestRegisterForEventConflicts(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"deadline passed", hackathon.ErrRegistrationClosed, http.StatusConflict},
		{"event full", hackathon.ErrEventFull, http.StatusConflict},
		{"already registered", hackathon.ErrAlreadyRegistered, http.StatusConflict},
		{"not found", hackathon.ErrNotFound, http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			handler := NewHandler(Deps{
				Auth: validateAs("participant-token", auth.RoleParticipant),
				Hackathon: fakeHackathonService{registerForEventFunc: func(eventID, userID string) (hackathon.Event, error) {
					return hackathon.Event{}, tc.err
				}},
			})

			req := httptest.NewRequest(http.MethodPost, "/v1/events/ev-1/register", nil)
			req.Header.Set("Authorization", "Bearer participant-token")
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)
			if rec.Code != tc.want {
				t.Fatalf("expected status %d, got %d", tc.want, rec.Code)
			}
		})
	}
}

func TestJoinTeamByInviteCode(t *testing.T) {
	handler := NewHandler(Deps{
		Auth: validateAs("participant-token", auth.RoleParticipant),
		Hackathon: fakeHackathonService{joinTeamFunc: func(code string, member hackathon.TeamMember) (hackathon.Team, error) {
			if code != "ABC123" {
				return hackathon.Team{}, hackathon.ErrNotFound
			}
			if member.UserID != "u-1" {
				t.Fatalf("expected member from session, got %q", member.UserID)
			}
			return hackathon.Team{ID: "t-1", Name: "Builders", InviteCode: code}, nil
		}},
	})

	body := bytes.NewBufferString(`{"invite_code":"ABC123"}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/teams/join", body)
	req.Header.Set("Authorization", "Bearer participant-token")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestScoreSubmissionRequiresJudge(t *testing.T) {
	handler := NewHandler(Deps{
		Auth:      validateAs("participant-token", auth.RoleParticipant),
		Hackathon: fakeHackathonService{},
	})

	body := bytes.NewBufferString(`{"innovation":8}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/submissions/sub-1/score", body)
	req.Header.Set("Authorization", "Bearer participant-token")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected status 403 for participant, got %d", rec.Code)
	}
}

func TestScoreSubmissionAsJudge(t *testing.T) {
	handler := NewHandler(Deps{
		Auth: validateAs("judge-token", auth.RoleJudge),
		Hackathon: fakeHackathonService{scoreSubmissionFunc: func(submissionID string, score hackathon.Score) (hackathon.Submission, error) {
			if score.JudgeID != "u-1" {
				t.Fatalf("expected judge id from session, got %q", score.JudgeID)
			}
			return hackathon.Submission{ID: submissionID, Status: hackathon.SubmissionReviewed, Scores: []hackathon.Score{score}}, nil
		}},
	})

	body := bytes.NewBufferString(`{"innovation":8,"functionality":7,"scalability":6,"uiux":9,"tech_integration":8}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/submissions/sub-1/score", body)
	req.Header.Set("Authorization", "Bearer judge-token")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestScoreSubmissionAlreadyScored(t *testing.T) {
	handler := NewHandler(Deps{
		Auth: validateAs("judge-token", auth.RoleJudge),
		Hackathon: fakeHackathonService{scoreSubmissionFunc: func(string, hackathon.Score) (hackathon.Submission, error) {
			return hackathon.Submission{}, hackathon.ErrAlreadyScored
		}},
	})

	body := bytes.NewBufferString(`{"innovation":8}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/submissions/sub-1/score", body)
	req.Header.Set("Authorization", "Bearer judge-token")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", rec.Code)
	}
}

func TestPostAnnouncementNotifiesWithSeverity(t *testing.T) {
	bus := notify.NewBus()
	handler := NewHandler(Deps{
		Auth: validateAs("organizer-token", auth.RoleOrganizer),
		Hackathon: fakeHackathonService{postAnnouncementFunc: func(a hackathon.Announcement) (hackathon.Announcement, error) {
			a.ID = "ann-1"
			return a, nil
		}},
		Notifications: bus,
	})

	body := bytes.NewBufferString(`{"title":"Deadline moved","content":"Submissions close at noon","type":"urgent"}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/announcements", body)
	req.Header.Set("Authorization", "Bearer organizer-token")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d body=%s", rec.Code, rec.Body.String())
	}

	entries := bus.Entries()
	if len(entries) != 1 {
		t.Fatalf("expected one notification, got %d", len(entries))
	}
	if entries[0].Kind != notify.KindWarning {
		t.Fatalf("expected warning kind for urgent announcement, got %q", entries[0].Kind)
	}
}

func TestQuestionAnswerAndUpvote(t *testing.T) {
	answered := false
	handler := NewHandler(Deps{
		Auth: validateAs("organizer-token", auth.RoleOrganizer),
		Hackathon: fakeHackathonService{
			answerQuestionFunc: func(id, answer, answeredBy string) (hackathon.QAThread, error) {
				if id != "q-1" || answer != "Use the event track" || answeredBy != "u-1" {
					t.Fatalf("unexpected answer call: %s %s %s", id, answer, answeredBy)
				}
				answered = true
				return hackathon.QAThread{ID: id, Answer: answer, AnsweredBy: answeredBy}, nil
			},
			upvoteQuestionFunc: func(id string) (hackathon.QAThread, error) {
				return hackathon.QAThread{ID: id, Upvotes: 3}, nil
			},
		},
	})

	body := bytes.NewBufferString(`{"answer":"Use the event track"}`)
	reqAns := httptest.NewRequest(http.MethodPost, "/v1/questions/q-1/answer", body)
	reqAns.Header.Set("Authorization", "Bearer organizer-token")
	recAns := httptest.NewRecorder()
	handler.ServeHTTP(recAns, reqAns)
	if recAns.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d body=%s", recAns.Code, recAns.Body.String())
	}
	if !answered {
		t.Fatalf("expected answer to be recorded")
	}

	reqUp := httptest.NewRequest(http.MethodPost, "/v1/questions/q-1/upvote", nil)
	reqUp.Header.Set("Authorization", "Bearer organizer-token")
	recUp := httptest.NewRecorder()
	handler.ServeHTTP(recUp, reqUp)
	if recUp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", recUp.Code)
	}
}

func TestNavigationReturnsRoleLinks(t *testing.T) {
	handler := NewHandler(Deps{Auth: validateAs("judge-token", auth.RoleJudge)})

	req := httptest.NewRequest(http.MethodGet, "/v1/navigation", nil)
	req.Header.Set("Authorization", "Bearer judge-token")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var got map[string][]map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode navigation response: %v", err)
	}
	items := got["items"]
	if len(items) != 4 {
		t.Fatalf("expected 4 judge links, got %d", len(items))
	}
	if items[1]["path"] != "/dashboard/judge/reviews" {
		t.Fatalf("expected reviews link second, got %q", items[1]["path"])
	}
}

func TestNotificationListAndDismiss(t *testing.T) {
	bus := notify.NewBus()
	id := bus.Publish("Hello", "world", notify.KindInfo)

	handler := NewHandler(Deps{
		Auth:          validateAs("token", auth.RoleParticipant),
		Notifications: bus,
	})

	reqList := httptest.NewRequest(http.MethodGet, "/v1/notifications", nil)
	reqList.Header.Set("Authorization", "Bearer token")
	recList := httptest.NewRecorder()
	handler.ServeHTTP(recList, reqList)
	if recList.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", recList.Code)
	}

	reqDel := httptest.NewRequest(http.MethodDelete, "/v1/notifications/1", nil)
	reqDel.Header.Set("Authorization", "Bearer token")
	recDel := httptest.NewRecorder()
	handler.ServeHTTP(recDel, reqDel)
	if recDel.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", recDel.Code)
	}
	if len(bus.Entries()) != 0 {
		t.Fatalf("expected entry %d dismissed", id)
	}
}

func TestUnknownRoute(t *testing.T) {
	handler := NewHandler(Deps{})
	req := httptest.NewRequest(http.MethodGet, "/does-not-exist", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
}

func TestFrontendStaticAndSpaFallback(t *testing.T) {
	dist := t.TempDir()
	if err := os.WriteFile(filepath.Join(dist, "index.html"), []byte("<html>app</html>"), 0o644); err != nil {
		t.Fatalf("write index: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dist, "app.js"), []byte("console.log('x')"), 0o644); err != nil {
		t.Fatalf("write asset: %v", err)
	}

	handler := NewHandler(Deps{FrontendDistDir: dist})

	recRoot := httptest.NewRecorder()
	handler.ServeHTTP(recRoot, httptest.NewRequest(http.MethodGet, "/", nil))
	if recRoot.Code != http.StatusOK {
		t.Fatalf("expected root 200, got %d", recRoot.Code)
	}

	recAsset := httptest.NewRecorder()
	handler.ServeHTTP(recAsset, httptest.NewRequest(http.MethodGet, "/app.js", nil))
	if recAsset.Code != http.StatusOK {
		t.Fatalf("expected asset 200, got %d", recAsset.Code)
	}

	recSpa := httptest.NewRecorder()
	handler.ServeHTTP(recSpa, httptest.NewRequest(http.MethodGet, "/dashboard/judge/reviews", nil))
	if recSpa.Code != http.StatusOK {
		t.Fatalf("expected spa fallback 200, got %d", recSpa.Code)
	}

	recAPI := httptest.NewRecorder()
	handler.ServeHTTP(recAPI, httptest.NewRequest(http.MethodGet, "/v1/not-found", nil))
	if recAPI.Code != http.StatusNotFound {
		t.Fatalf("expected API not shadowed, got status %d", recAPI.Code)
	}
}
