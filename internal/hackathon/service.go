package hackathon

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrForbidden          = errors.New("operation not permitted")
	ErrRegistrationClosed = errors.New("registration deadline has passed")
	ErrEventFull          = errors.New("event is at capacity")
	ErrAlreadyRegistered  = errors.New("already registered for event")
	ErrTeamFull           = errors.New("team is at maximum size")
	ErrAlreadyMember      = errors.New("already a member of team")
	ErrAlreadyScored      = errors.New("submission already scored by judge")
)

// Service is the in-memory hackathon store with optional JSON file
// persistence. All reads return copies; callers never share internal state.
type Service struct {
	nowFunc   func() time.Time
	idFunc    func() string
	stateFile string

	mu            sync.RWMutex
	events        map[string]Event
	registrations map[string]map[string]bool // eventID -> userID set
	teams         map[string]Team
	submissions   map[string]Submission
	announcements map[string]Announcement
	questions     map[string]QAThread
}

func NewService() *Service {
	return &Service{
		nowFunc:       time.Now,
		idFunc:        uuid.NewString,
		events:        make(map[string]Event),
		registrations: make(map[string]map[string]bool),
		teams:         make(map[string]Team),
		submissions:   make(map[string]Submission),
		announcements: make(map[string]Announcement),
		questions:     make(map[string]QAThread),
	}
}

func NewServiceWithFile(stateFile string) (*Service, error) {
	s := NewService()
	s.stateFile = strings.TrimSpace(stateFile)
	if s.stateFile == "" {
		return nil, fmt.Errorf("state file path is required")
	}
	if err := s.loadState(); err != nil {
		return nil, err
	}
	return s, nil
}

// --- Events ---

func (s *Service) CreateEvent(e Event) (Event, error) {
	if err := validateEvent(e); err != nil {
		return Event{}, err
	}

	now := s.nowFunc().UTC()
	e.ID = s.idFunc()
	e.Status = EventDraft
	e.Registrations = 0
	e.CreatedAt = now
	e.Title = strings.TrimSpace(e.Title)

	s.mu.Lock()
	s.events[e.ID] = cloneEvent(e)
	if err := s.persistLocked(); err != nil {
		delete(s.events, e.ID)
		s.mu.Unlock()
		return Event{}, err
	}
	s.mu.Unlock()

	return e, nil
}

// PublishEvent moves a draft event to published. Only the owning organizer
// may publish.
func (s *Service) PublishEvent(eventID, organizerID string) (Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.events[eventID]
	if !ok {
		return Event{}, ErrNotFound
	}
	if e.OrganizerID != organizerID {
		return Event{}, ErrForbidden
	}
	if e.Status != EventDraft {
		return Event{}, fmt.Errorf("%w: event is %s", ErrInvalidInput, e.Status)
	}

	prev := e
	e.Status = EventPublished
	s.events[eventID] = cloneEvent(e)
	if err := s.persistLocked(); err != nil {
		s.events[eventID] = prev
		return Event{}, err
	}
	return e, nil
}

func (s *Service) ListEvents() []Event {
	s.mu.RLock()
	out := make([]Event, 0, len(s.events))
	for _, e := range s.events {
		out = append(out, cloneEvent(e))
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (s *Service) GetEvent(id string) (Event, error) {
	s.mu.RLock()
	e, ok := s.events[id]
	s.mu.RUnlock()
	if !ok {
		return Event{}, ErrNotFound
	}
	return cloneEvent(e), nil
}

// RegisterForEvent records a participant registration, enforcing the deadline
// and the participant cap.
func (s *Service) RegisterForEvent(eventID, userID string) (Event, error) {
	if strings.TrimSpace(userID) == "" {
		return Event{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.events[eventID]
	if !ok {
		return Event{}, ErrNotFound
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
	if s.registrations[eventID][userID] {
		return Event{}, ErrAlreadyRegistered
	}

	prevEvent := e
	if s.registrations[eventID] == nil {
		s.registrations[eventID] = make(map[string]bool)
	}
	s.registrations[eventID][userID] = true
	e.Registrations++
	s.events[eventID] = cloneEvent(e)
	if err := s.persistLocked(); err != nil {
		delete(s.registrations[eventID], userID)
		s.events[eventID] = prevEvent
		return Event{}, err
	}
	return e, nil
}

// --- Teams ---

func (s *Service) CreateTeam(t Team) (Team, error) {
	if strings.TrimSpace(t.Name) == "" {
		return Team{}, fmt.Errorf("%w: team name is required", ErrInvalidInput)
	}
	if strings.TrimSpace(t.LeaderID) == "" {
		return Team{}, fmt.Errorf("%w: leader id is required", ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.events[t.EventID]
	if !ok {
		return Team{}, fmt.Errorf("%w: event %s", ErrNotFound, t.EventID)
	}

	now := s.nowFunc().UTC()
	t.ID = s.idFunc()
	t.InviteCode = inviteCode(s.idFunc())
	if t.MaxSize <= 0 || t.MaxSize > e.MaxTeamSize {
		t.MaxSize = e.MaxTeamSize
	}
	t.CreatedAt = now

	leader := TeamMember{UserID: t.LeaderID, Role: "leader", JoinedAt: now}
	if len(t.Members) > 0 && t.Members[0].UserID == t.LeaderID {
		leader = t.Members[0]
		leader.Role = "leader"
		leader.JoinedAt = now
	}
	t.Members = []TeamMember{leader}

	s.teams[t.ID] = cloneTeam(t)
	if err := s.persistLocked(); err != nil {
		delete(s.teams, t.ID)
		return Team{}, err
	}
	return t, nil
}

// JoinTeam adds a member to the team owning the invite code.
func (s *Service) JoinTeam(code string, member TeamMember) (Team, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" || strings.TrimSpace(member.UserID) == "" {
		return Team{}, fmt.Errorf("%w: invite code and user id are required", ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var team Team
	found := false
	for _, t := range s.teams {
		if t.InviteCode == code {
			team = t
			found = true
			break
		}
	}
	if !found {
		return Team{}, ErrNotFound
	}
	if len(team.Members) >= team.MaxSize {
		return Team{}, ErrTeamFull
	}
	for _, m := range team.Members {
		if m.UserID == member.UserID {
			return Team{}, ErrAlreadyMember
		}
	}

	prev := cloneTeam(team)
	member.Role = "member"
	member.JoinedAt = s.nowFunc().UTC()
	team.Members = append(team.Members, member)
	s.teams[team.ID] = cloneTeam(team)
	if err := s.persistLocked(); err != nil {
		s.teams[team.ID] = prev
		return Team{}, err
	}
	return team, nil
}

// ListTeams returns teams, optionally narrowed to one event.
func (s *Service) ListTeams(eventID string) []Team {
	s.mu.RLock()
	out := make([]Team, 0, len(s.teams))
	for _, t := range s.teams {
		if eventID != "" && t.EventID != eventID {
			continue
		}
		out = append(out, cloneTeam(t))
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// --- Submissions ---

func (s *Service) SubmitProject(sub Submission) (Submission, error) {
	if strings.TrimSpace(sub.Title) == "" {
		return Submission{}, fmt.Errorf("%w: submission title is required", ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.events[sub.EventID]; !ok {
		return Submission{}, fmt.Errorf("%w: event %s", ErrNotFound, sub.EventID)
	}
	if _, ok := s.teams[sub.TeamID]; !ok {
		return Submission{}, fmt.Errorf("%w: team %s", ErrNotFound, sub.TeamID)
	}

	sub.ID = s.idFunc()
	sub.Status = SubmissionSubmitted
	sub.SubmittedAt = s.nowFunc().UTC()
	sub.Scores = nil
	sub.Feedback = nil

	s.submissions[sub.ID] = cloneSubmission(sub)
	if err := s.persistLocked(); err != nil {
		delete(s.submissions, sub.ID)
		return Submission{}, err
	}
	return sub, nil
}

func (s *Service) ListSubmissions(eventID string) []Submission {
	s.mu.RLock()
	out := make([]Submission, 0, len(s.submissions))
	for _, sub := range s.submissions {
		if eventID != "" && sub.EventID != eventID {
			continue
		}
		out = append(out, cloneSubmission(sub))
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].SubmittedAt.Before(out[j].SubmittedAt) })
	return out
}

func (s *Service) GetSubmission(id string) (Submission, error) {
	s.mu.RLock()
	sub, ok := s.submissions[id]
	s.mu.RUnlock()
	if !ok {
		return Submission{}, ErrNotFound
	}
	return cloneSubmission(sub), nil
}

// ScoreSubmission records one judge's score. Each judge scores a submission at
// most once; any score moves the submission to reviewed.
func (s *Service) ScoreSubmission(submissionID string, score Score) (Submission, error) {
	if strings.TrimSpace(score.JudgeID) == "" {
		return Submission{}, fmt.Errorf("%w: judge id is required", ErrInvalidInput)
	}
	for _, v := range []int{score.Innovation, score.Functionality, score.Scalability, score.UIUX, score.TechIntegration} {
		if v < 0 || v > 10 {
			return Submission{}, fmt.Errorf("%w: criteria scores must be between 0 and 10", ErrInvalidInput)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sub, ok := s.submissions[submissionID]
	if !ok {
		return Submission{}, ErrNotFound
	}
	for _, existing := range sub.Scores {
		if existing.JudgeID == score.JudgeID {
			return Submission{}, ErrAlreadyScored
		}
	}

	prev := cloneSubmission(sub)
	score.SubmittedAt = s.nowFunc().UTC()
	sub.Scores = append(sub.Scores, score)
	if strings.TrimSpace(score.Feedback) != "" {
		sub.Feedback = append(sub.Feedback, score.Feedback)
	}
	sub.Status = SubmissionReviewed
	s.submissions[submissionID] = cloneSubmission(sub)
	if err := s.persistLocked(); err != nil {
		s.submissions[submissionID] = prev
		return Submission{}, err
	}
	return sub, nil
}

// --- Announcements ---

func (s *Service) PostAnnouncement(a Announcement) (Announcement, error) {
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

	s.mu.Lock()
	s.announcements[a.ID] = a
	if err := s.persistLocked(); err != nil {
		delete(s.announcements, a.ID)
		s.mu.Unlock()
		return Announcement{}, err
	}
	s.mu.Unlock()

	return a, nil
}

// ListAnnouncements returns announcements newest first.
func (s *Service) ListAnnouncements() []Announcement {
	s.mu.RLock()
	out := make([]Announcement, 0, len(s.announcements))
	for _, a := range s.announcements {
		out = append(out, a)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

// --- Q&A ---

func (s *Service) AskQuestion(q QAThread) (QAThread, error) {
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

	s.mu.Lock()
	s.questions[q.ID] = q
	if err := s.persistLocked(); err != nil {
		delete(s.questions, q.ID)
		s.mu.Unlock()
		return QAThread{}, err
	}
	s.mu.Unlock()

	return q, nil
}

func (s *Service) AnswerQuestion(id, answer, answeredBy string) (QAThread, error) {
	if strings.TrimSpace(answer) == "" {
		return QAThread{}, fmt.Errorf("%w: answer is required", ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	q, ok := s.questions[id]
	if !ok {
		return QAThread{}, ErrNotFound
	}

	prev := q
	now := s.nowFunc().UTC()
	q.Answer = answer
	q.AnsweredBy = answeredBy
	q.AnsweredAt = &now
	s.questions[id] = q
	if err := s.persistLocked(); err != nil {
		s.questions[id] = prev
		return QAThread{}, err
	}
	return q, nil
}

func (s *Service) UpvoteQuestion(id string) (QAThread, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q, ok := s.questions[id]
	if !ok {
		return QAThread{}, ErrNotFound
	}

	prev := q
	q.Upvotes++
	s.questions[id] = q
	if err := s.persistLocked(); err != nil {
		s.questions[id] = prev
		return QAThread{}, err
	}
	return q, nil
}

// ListQuestions returns threads most-upvoted first, then newest.
func (s *Service) ListQuestions() []QAThread {
	s.mu.RLock()
	out := make([]QAThread, 0, len(s.questions))
	for _, q := range s.questions {
		out = append(out, q)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Upvotes != out[j].Upvotes {
			return out[i].Upvotes > out[j].Upvotes
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// --- validation and copies ---

func validateEvent(e Event) error {
	if strings.TrimSpace(e.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if strings.TrimSpace(e.OrganizerID) == "" {
		return fmt.Errorf("%w: organizer id is required", ErrInvalidInput)
	}
	if !e.Mode.Valid() {
		return fmt.Errorf("%w: mode must be online, offline, or hybrid", ErrInvalidInput)
	}
	if e.StartDate.IsZero() || e.EndDate.IsZero() || e.RegistrationDeadline.IsZero() {
		return fmt.Errorf("%w: start date, end date, and registration deadline are required", ErrInvalidInput)
	}
	if !e.EndDate.After(e.StartDate) {
		return fmt.Errorf("%w: end date must be after start date", ErrInvalidInput)
	}
	if e.RegistrationDeadline.After(e.StartDate) {
		return fmt.Errorf("%w: registration deadline must not be after the start date", ErrInvalidInput)
	}
	if e.MaxTeamSize <= 0 {
		return fmt.Errorf("%w: max team size must be > 0", ErrInvalidInput)
	}
	if e.MaxParticipants < 0 {
		return fmt.Errorf("%w: max participants must be >= 0", ErrInvalidInput)
	}
	return nil
}

func inviteCode(id string) string {
	code := strings.ToUpper(strings.ReplaceAll(id, "-", ""))
	if len(code) > 8 {
		code = code[:8]
	}
	return code
}

func cloneEvent(e Event) Event {
	e.Prizes = append([]Prize(nil), e.Prizes...)
	e.Sponsors = append([]Sponsor(nil), e.Sponsors...)
	e.Tracks = append([]string(nil), e.Tracks...)
	e.Timeline = append([]TimelineItem(nil), e.Timeline...)
	return e
}

func cloneTeam(t Team) Team {
	t.Members = append([]TeamMember(nil), t.Members...)
	t.Skills = append([]string(nil), t.Skills...)
	return t
}

func cloneSubmission(s Submission) Submission {
	s.Documents = append([]string(nil), s.Documents...)
	s.Scores = append([]Score(nil), s.Scores...)
	s.Feedback = append([]string(nil), s.Feedback...)
	return s
}
