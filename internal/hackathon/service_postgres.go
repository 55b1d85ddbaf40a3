package hackathon

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// PGService is the Postgres-backed hackathon store. Nested collections
// (prizes, members, scores) live in JSONB columns; registrations get their
// own table so the uniqueness check is enforced by the database.
type PGService struct {
	db      *sql.DB
	nowFunc func() time.Time
	idFunc  func() string
}

func NewPGService(db *sql.DB) (*PGService, error) {
	if db == nil {
		return nil, fmt.Errorf("database is required")
	}
	s := &PGService{
		db:      db,
		nowFunc: time.Now,
		idFunc:  uuid.NewString,
	}
	if err := s.ensureSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *PGService) ensureSchema() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS events (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	theme TEXT NOT NULL DEFAULT '',
	start_date TIMESTAMPTZ NOT NULL,
	end_date TIMESTAMPTZ NOT NULL,
	registration_deadline TIMESTAMPTZ NOT NULL,
	mode TEXT NOT NULL,
	location TEXT NOT NULL DEFAULT '',
	max_team_size INTEGER NOT NULL,
	prizes JSONB NOT NULL DEFAULT '[]',
	sponsors JSONB NOT NULL DEFAULT '[]',
	tracks JSONB NOT NULL DEFAULT '[]',
	rules TEXT NOT NULL DEFAULT '',
	timeline JSONB NOT NULL DEFAULT '[]',
	organizer_id TEXT NOT NULL,
	status TEXT NOT NULL,
	registrations INTEGER NOT NULL DEFAULT 0,
	max_participants INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL
)`,
		`CREATE TABLE IF NOT EXISTS event_registrations (
	event_id TEXT NOT NULL,
	user_id TEXT NOT NULL,
	registered_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (event_id, user_id)
)`,
		`CREATE TABLE IF NOT EXISTS teams (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	event_id TEXT NOT NULL,
	leader_id TEXT NOT NULL,
	members JSONB NOT NULL DEFAULT '[]',
	invite_code TEXT NOT NULL UNIQUE,
	max_size INTEGER NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	skills JSONB NOT NULL DEFAULT '[]',
	created_at TIMESTAMPTZ NOT NULL
)`,
		`CREATE TABLE IF NOT EXISTS submissions (
	id TEXT PRIMARY KEY,
	team_id TEXT NOT NULL,
	event_id TEXT NOT NULL,
	title TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	github_url TEXT NOT NULL DEFAULT '',
	demo_url TEXT NOT NULL DEFAULT '',
	video_url TEXT NOT NULL DEFAULT '',
	documents JSONB NOT NULL DEFAULT '[]',
	submitted_at TIMESTAMPTZ NOT NULL,
	status TEXT NOT NULL,
	scores JSONB NOT NULL DEFAULT '[]',
	feedback JSONB NOT NULL DEFAULT '[]'
)`,
		`CREATE TABLE IF NOT EXISTS announcements (
	id TEXT PRIMARY KEY,
	event_id TEXT NOT NULL DEFAULT '',
	title TEXT NOT NULL,
	content TEXT NOT NULL,
	type TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	created_by TEXT NOT NULL
)`,
		`CREATE TABLE IF NOT EXISTS questions (
	id TEXT PRIMARY KEY,
	event_id TEXT NOT NULL DEFAULT '',
	question TEXT NOT NULL,
	answer TEXT NOT NULL DEFAULT '',
	asked_by TEXT NOT NULL,
	answered_by TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL,
	answered_at TIMESTAMPTZ,
	upvotes INTEGER NOT NULL DEFAULT 0
)`,
	}
	for _, q := range stmts {
		if _, err := s.db.Exec(q); err != nil {
			return fmt.Errorf("ensure hackathon schema: %w", err)
		}
	}
	return nil
}

// --- Events ---

func (s *PGService) CreateEvent(e Event) (Event, error) {
	if err := validateEvent(e); err != nil {
		return Event{}, err
	}

	now := s.nowFunc().UTC()
	e.ID = s.idFunc()
	e.Status = EventDraft
	e.Registrations = 0
	e.CreatedAt = now
	e.Title = strings.TrimSpace(e.Title)

	prizes, sponsors, tracks, timeline, err := marshalEventJSON(e)
	if err != nil {
		return Event{}, err
	}

	const q = `
INSERT INTO events
  (id, title, description, theme, start_date, end_date, registration_deadline, mode, location,
   max_team_size, prizes, sponsors, tracks, rules, timeline, organizer_id, status, registrations,
   max_participants, created_at)
VALUES
  ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`
	if _, err := s.db.Exec(q, e.ID, e.Title, e.Description, e.Theme, e.StartDate, e.EndDate,
		e.RegistrationDeadline, string(e.Mode), e.Location, e.MaxTeamSize, prizes, sponsors,
		tracks, e.Rules, timeline, e.OrganizerID, string(e.Status), e.Registrations,
		e.MaxParticipants, e.CreatedAt); err != nil {
		return Event{}, fmt.Errorf("insert event: %w", err)
	}
	return e, nil
}

func (s *PGService) PublishEvent(eventID, organizerID string) (Event, error) {
	e, err := s.GetEvent(eventID)
	if err != nil {
		return Event{}, err
	}
	if e.OrganizerID != organizerID {
		return Event{}, ErrForbidden
	}
	if e.Status != EventDraft {
		return Event{}, fmt.Errorf("%w: event is %s", ErrInvalidInput, e.Status)
	}

	const q = `UPDATE events SET status = $2 WHERE id = $1 AND status = $3`
	res, err := s.db.Exec(q, eventID, string(EventPublished), string(EventDraft))
	if err != nil {
		return Event{}, fmt.Errorf("publish event: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return Event{}, fmt.Errorf("read publish affected rows: %w", err)
	}
	if affected == 0 {
		return Event{}, ErrNotFound
	}
	e.Status = EventPublished
	return e, nil
}

const eventColumns = `id, title, description, theme, start_date, end_date, registration_deadline,
mode, location, max_team_size, prizes, sponsors, tracks, rules, timeline, organizer_id, status,
registrations, max_participants, created_at`

func scanEvent(row interface{ Scan(...any) error }) (Event, error) {
	var e Event
	var mode, status string
	var prizes, sponsors, tracks, timeline []byte
	if err := row.Scan(&e.ID, &e.Title, &e.Description, &e.Theme, &e.StartDate, &e.EndDate,
		&e.RegistrationDeadline, &mode, &e.Location, &e.MaxTeamSize, &prizes, &sponsors,
		&tracks, &e.Rules, &timeline, &e.OrganizerID, &status, &e.Registrations,
		&e.MaxParticipants, &e.CreatedAt); err != nil {
		return Event{}, err
	}
	e.Mode = EventMode(mode)
	e.Status = EventStatus(status)
	if err := json.Unmarshal(prizes, &e.Prizes); err != nil {
		return Event{}, fmt.Errorf("decode prizes: %w", err)
	}
	if err := json.Unmarshal(sponsors, &e.Sponsors); err != nil {
		return Event{}, fmt.Errorf("decode sponsors: %w", err)
	}
	if err := json.Unmarshal(tracks, &e.Tracks); err != nil {
		return Event{}, fmt.Errorf("decode tracks: %w", err)
	}
	if err := json.Unmarshal(timeline, &e.Timeline); err != nil {
		return Event{}, fmt.Errorf("decode timeline: %w", err)
	}
	return e, nil
}

func (s *PGService) ListEvents() []Event {
	rows, err := s.db.Query(`SELECT ` + eventColumns + ` FROM events ORDER BY created_at ASC`)
	if err != nil {
		return nil
	}
	defer rows.Close()

	out := make([]Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			continue
		}
		out = append(out, e)
	}
	return out
}

func (s *PGService) GetEvent(id string) (Event, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Event{}, ErrNotFound
	}
	e, err := scanEvent(s.db.QueryRow(`SELECT `+eventColumns+` FROM events WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Event{}, ErrNotFound
		}
		return Event{}, fmt.Errorf("get event: %w", err)
	}
	return e, nil
}

func (s *PGService) RegisterForEvent(eventID, userID string) (Event, error) {
	if strings.TrimSpace(userID) == "" {
		return Event{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	e, err := s.GetEvent(eventID)
	if err != nil {
		return Event{}, err
	}
	if e.Status != EventPublished && e.Status != EventOngoing {
		return Event{}, fmt.Errorf("%w: event is %s", ErrInvalidInput, e.Status)
	}
	if s.nowFunc().After(e.RegistrationDeadline) {
		return Event{}, ErrRegistrationClosed
	}
	if e.MaxParticipants > 0 && e.Registrations >= e.MaxParticipants {
		return Event{}, ErrEventFull
	}

	tx, err := s.db.Begin()
	if err != nil {
		return Event{}, fmt.Errorf("begin registration: %w", err)
	}
	defer tx.Rollback()

	var exists bool
	if err := tx.QueryRow(`SELECT EXISTS (SELECT 1 FROM event_registrations WHERE event_id = $1 AND user_id = $2)`,
		eventID, userID).Scan(&exists); err != nil {
		return Event{}, fmt.Errorf("check registration: %w", err)
	}
	if exists {
		return Event{}, ErrAlreadyRegistered
	}
	if _, err := tx.Exec(`INSERT INTO event_registrations (event_id, user_id, registered_at) VALUES ($1, $2, $3)`,
		eventID, userID, s.nowFunc().UTC()); err != nil {
		return Event{}, fmt.Errorf("insert registration: %w", err)
	}
	if _, err := tx.Exec(`UPDATE events SET registrations = registrations + 1 WHERE id = $1`, eventID); err != nil {
		return Event{}, fmt.Errorf("bump registration count: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return Event{}, fmt.Errorf("commit registration: %w", err)
	}
	e.Registrations++
	return e, nil
}

// --- Teams ---

func (s *PGService) CreateTeam(t Team) (Team, error) {
	if strings.TrimSpace(t.Name) == "" {
		return Team{}, fmt.Errorf("%w: team name is required", ErrInvalidInput)
	}
	if strings.TrimSpace(t.LeaderID) == "" {
		return Team{}, fmt.Errorf("%w: leader id is required", ErrInvalidInput)
	}

	e, err := s.GetEvent(t.EventID)
	if err != nil {
		return Team{}, fmt.Errorf("%w: event %s", ErrNotFound, t.EventID)
	}

	now := s.nowFunc().UTC()
	t.ID = s.idFunc()
	t.InviteCode = inviteCode(s.idFunc())
	if t.MaxSize <= 0 || t.MaxSize > e.MaxTeamSize {
		t.MaxSize = e.MaxTeamSize
	}
	t.CreatedAt = now
	t.Members = []TeamMember{{UserID: t.LeaderID, Role: "leader", JoinedAt: now}}

	members, err := json.Marshal(t.Members)
	if err != nil {
		return Team{}, fmt.Errorf("encode members: %w", err)
	}
	skills, err := json.Marshal(emptyIfNil(t.Skills))
	if err != nil {
		return Team{}, fmt.Errorf("encode skills: %w", err)
	}

	const q = `
INSERT INTO teams
  (id, name, event_id, leader_id, members, invite_code, max_size, description, skills, created_at)
VALUES
  ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	if _, err := s.db.Exec(q, t.ID, t.Name, t.EventID, t.LeaderID, members, t.InviteCode,
		t.MaxSize, t.Description, skills, t.CreatedAt); err != nil {
		return Team{}, fmt.Errorf("insert team: %w", err)
	}
	return t, nil
}

const teamColumns = `id, name, event_id, leader_id, members, invite_code, max_size, description, skills, created_at`

func scanTeam(row interface{ Scan(...any) error }) (Team, error) {
	var t Team
	var members, skills []byte
	if err := row.Scan(&t.ID, &t.Name, &t.EventID, &t.LeaderID, &members, &t.InviteCode,
		&t.MaxSize, &t.Description, &skills, &t.CreatedAt); err != nil {
		return Team{}, err
	}
	if err := json.Unmarshal(members, &t.Members); err != nil {
		return Team{}, fmt.Errorf("decode members: %w", err)
	}
	if err := json.Unmarshal(skills, &t.Skills); err != nil {
		return Team{}, fmt.Errorf("decode skills: %w", err)
	}
	return t, nil
}

func (s *PGService) JoinTeam(code string, member TeamMember) (Team, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" || strings.TrimSpace(member.UserID) == "" {
		return Team{}, fmt.Errorf("%w: invite code and user id are required", ErrInvalidInput)
	}

	t, err := scanTeam(s.db.QueryRow(`SELECT `+teamColumns+` FROM teams WHERE invite_code = $1`, code))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Team{}, ErrNotFound
		}
		return Team{}, fmt.Errorf("get team by invite code: %w", err)
	}
	if len(t.Members) >= t.MaxSize {
		return Team{}, ErrTeamFull
	}
	for _, m := range t.Members {
		if m.UserID == member.UserID {
			return Team{}, ErrAlreadyMember
		}
	}

	member.Role = "member"
	member.JoinedAt = s.nowFunc().UTC()
	t.Members = append(t.Members, member)
	members, err := json.Marshal(t.Members)
	if err != nil {
		return Team{}, fmt.Errorf("encode members: %w", err)
	}
	if _, err := s.db.Exec(`UPDATE teams SET members = $2 WHERE id = $1`, t.ID, members); err != nil {
		return Team{}, fmt.Errorf("update team members: %w", err)
	}
	return t, nil
}

func (s *PGService) ListTeams(eventID string) []Team {
	q := `SELECT ` + teamColumns + ` FROM teams`
	args := []any{}
	if eventID != "" {
		q += ` WHERE event_id = $1`
		args = append(args, eventID)
	}
	q += ` ORDER BY created_at ASC`

	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil
	}
	defer rows.Close()

	out := make([]Team, 0)
	for rows.Next() {
		t, err := scanTeam(rows)
		if err != nil {
			continue
		}
		out = append(out, t)
	}
	return out
}

// --- Submissions ---

const submissionColumns = `id, team_id, event_id, title, description, github_url, demo_url,
video_url, documents, submitted_at, status, scores, feedback`

func scanSubmission(row interface{ Scan(...any) error }) (Submission, error) {
	var sub Submission
	var status string
	var documents, scores, feedback []byte
	if err := row.Scan(&sub.ID, &sub.TeamID, &sub.EventID, &sub.Title, &sub.Description,
		&sub.GithubURL, &sub.DemoURL, &sub.VideoURL, &documents, &sub.SubmittedAt,
		&status, &scores, &feedback); err != nil {
		return Submission{}, err
	}
	sub.Status = SubmissionStatus(status)
	if err := json.Unmarshal(documents, &sub.Documents); err != nil {
		return Submission{}, fmt.Errorf("decode documents: %w", err)
	}
	if err := json.Unmarshal(scores, &sub.Scores); err != nil {
		return Submission{}, fmt.Errorf("decode scores: %w", err)
	}
	if err := json.Unmarshal(feedback, &sub.Feedback); err != nil {
		return Submission{}, fmt.Errorf("decode feedback: %w", err)
	}
	return sub, nil
}

func (s *PGService) SubmitProject(sub Submission) (Submission, error) {
	if strings.TrimSpace(sub.Title) == "" {
		return Submission{}, fmt.Errorf("%w: submission title is required", ErrInvalidInput)
	}
	if _, err := s.GetEvent(sub.EventID); err != nil {
		return Submission{}, fmt.Errorf("%w: event %s", ErrNotFound, sub.EventID)
	}

	sub.ID = s.idFunc()
	sub.Status = SubmissionSubmitted
	sub.SubmittedAt = s.nowFunc().UTC()
	sub.Scores = nil
	sub.Feedback = nil

	documents, err := json.Marshal(emptyIfNil(sub.Documents))
	if err != nil {
		return Submission{}, fmt.Errorf("encode documents: %w", err)
	}

	const q = `
INSERT INTO submissions
  (id, team_id, event_id, title, description, github_url, demo_url, video_url, documents,
   submitted_at, status, scores, feedback)
VALUES
  ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, '[]', '[]')`
	if _, err := s.db.Exec(q, sub.ID, sub.TeamID, sub.EventID, sub.Title, sub.Description,
		sub.GithubURL, sub.DemoURL, sub.VideoURL, documents, sub.SubmittedAt,
		string(sub.Status)); err != nil {
		return Submission{}, fmt.Errorf("insert submission: %w", err)
	}
	return sub, nil
}

func (s *PGService) ListSubmissions(eventID string) []Submission {
	q := `SELECT ` + submissionColumns + ` FROM submissions`
	args := []any{}
	if eventID != "" {
		q += ` WHERE event_id = $1`
		args = append(args, eventID)
	}
	q += ` ORDER BY submitted_at ASC`

	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil
	}
	defer rows.Close()

	out := make([]Submission, 0)
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			continue
		}
		out = append(out, sub)
	}
	return out
}

func (s *PGService) GetSubmission(id string) (Submission, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Submission{}, ErrNotFound
	}
	sub, err := scanSubmission(s.db.QueryRow(`SELECT `+submissionColumns+` FROM submissions WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Submission{}, ErrNotFound
		}
		return Submission{}, fmt.Errorf("get submission: %w", err)
	}
	return sub, nil
}

func (s *PGService) ScoreSubmission(submissionID string, score Score) (Submission, error) {
	if strings.TrimSpace(score.JudgeID) == "" {
		return Submission{}, fmt.Errorf("%w: judge id is required", ErrInvalidInput)
	}
	for _, v := range []int{score.Innovation, score.Functionality, score.Scalability, score.UIUX, score.TechIntegration} {
		if v < 0 || v > 10 {
			return Submission{}, fmt.Errorf("%w: criteria scores must be between 0 and 10", ErrInvalidInput)
		}
	}

	sub, err := s.GetSubmission(submissionID)
	if err != nil {
		return Submission{}, err
	}
	for _, existing := range sub.Scores {
		if existing.JudgeID == score.JudgeID {
			return Submission{}, ErrAlreadyScored
		}
	}

	score.SubmittedAt = s.nowFunc().UTC()
	sub.Scores = append(sub.Scores, score)
	if strings.TrimSpace(score.Feedback) != "" {
		sub.Feedback = append(sub.Feedback, score.Feedback)
	}
	sub.Status = SubmissionReviewed

	scores, err := json.Marshal(sub.Scores)
	if err != nil {
		return Submission{}, fmt.Errorf("encode scores: %w", err)
	}
	feedback, err := json.Marshal(emptyIfNil(sub.Feedback))
	if err != nil {
		return Submission{}, fmt.Errorf("encode feedback: %w", err)
	}
	if _, err := s.db.Exec(`UPDATE submissions SET scores = $2, feedback = $3, status = $4 WHERE id = $1`,
		sub.ID, scores, feedback, string(sub.Status)); err != nil {
		return Submission{}, fmt.Errorf("update submission scores: %w", err)
	}
	return sub, nil
}

// --- Announcements ---

func (s *PGService) PostAnnouncement(a Announcement) (Announcement, error) {
	if strings.TrimSpace(a.Title) == "" || strings.TrimSpace(a.Content) == "" {
		return Announcement{}, fmt.Errorf("%w: title and content are required", ErrInvalidInput)
	}
	if a.Type == "" {
		a.Type = AnnouncementGeneral
	}
	switch a.Type {
	case AnnouncementGeneral, AnnouncementEvent, AnnouncementUrgent:
	default:
		return Announcement{}, fmt.Errorf("%w: unknown announcement type %q", ErrInvalidInput, a.Type)
	}

	a.ID = s.idFunc()
	a.CreatedAt = s.nowFunc().UTC()

	const q = `
INSERT INTO announcements (id, event_id, title, content, type, created_at, created_by)
VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := s.db.Exec(q, a.ID, a.EventID, a.Title, a.Content, string(a.Type), a.CreatedAt, a.CreatedBy); err != nil {
		return Announcement{}, fmt.Errorf("insert announcement: %w", err)
	}
	return a, nil
}

func (s *PGService) ListAnnouncements() []Announcement {
	const q = `
SELECT id, event_id, title, content, type, created_at, created_by
FROM announcements
ORDER BY created_at DESC`
	rows, err := s.db.Query(q)
	if err != nil {
		return nil
	}
	defer rows.Close()

	out := make([]Announcement, 0)
	for rows.Next() {
		var a Announcement
		var typ string
		if err := rows.Scan(&a.ID, &a.EventID, &a.Title, &a.Content, &typ, &a.CreatedAt, &a.CreatedBy); err != nil {
			continue
		}
		a.Type = AnnouncementType(typ)
		out = append(out, a)
	}
	return out
}

// --- Q&A ---

func (s *PGService) AskQuestion(q QAThread) (QAThread, error) {
	if strings.TrimSpace(q.Question) == "" {
		return QAThread{}, fmt.Errorf("%w: question is required", ErrInvalidInput)
	}
	if strings.TrimSpace(q.AskedBy) == "" {
		return QAThread{}, fmt.Errorf("%w: asked_by is required", ErrInvalidInput)
	}

	q.ID = s.idFunc()
	q.CreatedAt = s.nowFunc().UTC()
	q.Answer = ""
	q.AnsweredBy = ""
	q.AnsweredAt = nil
	q.Upvotes = 0

	const stmt = `
INSERT INTO questions (id, event_id, question, asked_by, created_at, upvotes)
VALUES ($1, $2, $3, $4, $5, 0)`
	if _, err := s.db.Exec(stmt, q.ID, q.EventID, q.Question, q.AskedBy, q.CreatedAt); err != nil {
		return QAThread{}, fmt.Errorf("insert question: %w", err)
	}
	return q, nil
}

func (s *PGService) AnswerQuestion(id, answer, answeredBy string) (QAThread, error) {
	if strings.TrimSpace(answer) == "" {
		return QAThread{}, fmt.Errorf("%w: answer is required", ErrInvalidInput)
	}

	now := s.nowFunc().UTC()
	const q = `UPDATE questions SET answer = $2, answered_by = $3, answered_at = $4 WHERE id = $1`
	res, err := s.db.Exec(q, id, answer, answeredBy, now)
	if err != nil {
		return QAThread{}, fmt.Errorf("answer question: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return QAThread{}, fmt.Errorf("read answer affected rows: %w", err)
	}
	if affected == 0 {
		return QAThread{}, ErrNotFound
	}
	return s.getQuestion(id)
}

func (s *PGService) UpvoteQuestion(id string) (QAThread, error) {
	const q = `UPDATE questions SET upvotes = upvotes + 1 WHERE id = $1`
	res, err := s.db.Exec(q, id)
	if err != nil {
		return QAThread{}, fmt.Errorf("upvote question: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return QAThread{}, fmt.Errorf("read upvote affected rows: %w", err)
	}
	if affected == 0 {
		return QAThread{}, ErrNotFound
	}
	return s.getQuestion(id)
}

func (s *PGService) getQuestion(id string) (QAThread, error) {
	const q = `
SELECT id, event_id, question, answer, asked_by, answered_by, created_at, answered_at, upvotes
FROM questions
WHERE id = $1`
	var thread QAThread
	var answeredAt sql.NullTime
	if err := s.db.QueryRow(q, id).Scan(&thread.ID, &thread.EventID, &thread.Question, &thread.Answer,
		&thread.AskedBy, &thread.AnsweredBy, &thread.CreatedAt, &answeredAt, &thread.Upvotes); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return QAThread{}, ErrNotFound
		}
		return QAThread{}, fmt.Errorf("get question: %w", err)
	}
	if answeredAt.Valid {
		t := answeredAt.Time
		thread.AnsweredAt = &t
	}
	return thread, nil
}

func (s *PGService) ListQuestions() []QAThread {
	const q = `
SELECT id, event_id, question, answer, asked_by, answered_by, created_at, answered_at, upvotes
FROM questions
ORDER BY upvotes DESC, created_at DESC`
	rows, err := s.db.Query(q)
	if err != nil {
		return nil
	}
	defer rows.Close()

	out := make([]QAThread, 0)
	for rows.Next() {
		var thread QAThread
		var answeredAt sql.NullTime
		if err := rows.Scan(&thread.ID, &thread.EventID, &thread.Question, &thread.Answer,
			&thread.AskedBy, &thread.AnsweredBy, &thread.CreatedAt, &answeredAt, &thread.Upvotes); err != nil {
			continue
		}
		if answeredAt.Valid {
			t := answeredAt.Time
			thread.AnsweredAt = &t
		}
		out = append(out, thread)
	}
	return out
}

func marshalEventJSON(e Event) (prizes, sponsors, tracks, timeline []byte, err error) {
	if prizes, err = json.Marshal(emptyIfNil(e.Prizes)); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("encode prizes: %w", err)
	}
	if sponsors, err = json.Marshal(emptyIfNil(e.Sponsors)); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("encode sponsors: %w", err)
	}
	if tracks, err = json.Marshal(emptyIfNil(e.Tracks)); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("encode tracks: %w", err)
	}
	if timeline, err = json.Marshal(emptyIfNil(e.Timeline)); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("encode timeline: %w", err)
	}
	return prizes, sponsors, tracks, timeline, nil
}

func emptyIfNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
