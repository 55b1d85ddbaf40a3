package hackathon

import "time"

type EventMode string

const (
	ModeOnline  EventMode = "online"
	ModeOffline EventMode = "offline"
	ModeHybrid  EventMode = "hybrid"
)

func (m EventMode) Valid() bool {
	switch m {
	case ModeOnline, ModeOffline, ModeHybrid:
		return true
	}
	return false
}

type EventStatus string

const (
	EventDraft     EventStatus = "draft"
	EventPublished EventStatus = "published"
	EventOngoing   EventStatus = "ongoing"
	EventCompleted EventStatus = "completed"
)

type Prize struct {
	Rank        int    `json:"rank"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
}

type Sponsor struct {
	Name string `json:"name"`
	Logo string `json:"logo"`
	Tier string `json:"tier"`
}

type TimelineItem struct {
	Title       string    `json:"title"`
	Date        time.Time `json:"date"`
	Description string    `json:"description"`
}

type Event struct {
	ID                   string         `json:"id"`
	Title                string         `json:"title"`
	Description          string         `json:"description"`
	Theme                string         `json:"theme"`
	StartDate            time.Time      `json:"start_date"`
	EndDate              time.Time      `json:"end_date"`
	RegistrationDeadline time.Time      `json:"registration_deadline"`
	Mode                 EventMode      `json:"mode"`
	Location             string         `json:"location,omitempty"`
	MaxTeamSize          int            `json:"max_team_size"`
	Prizes               []Prize        `json:"prizes"`
	Sponsors             []Sponsor      `json:"sponsors"`
	Tracks               []string       `json:"tracks"`
	Rules                string         `json:"rules"`
	Timeline             []TimelineItem `json:"timeline"`
	OrganizerID          string         `json:"organizer_id"`
	Status               EventStatus    `json:"status"`
	Registrations        int            `json:"registrations"`
	MaxParticipants      int            `json:"max_participants,omitempty"`
	CreatedAt            time.Time      `json:"created_at"`
}

type TeamMember struct {
	UserID   string    `json:"user_id"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Role     string    `json:"role"` // leader or member
	JoinedAt time.Time `json:"joined_at"`
}

type Team struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	EventID     string       `json:"event_id"`
	LeaderID    string       `json:"leader_id"`
	Members     []TeamMember `json:"members"`
	InviteCode  string       `json:"invite_code"`
	MaxSize     int          `json:"max_size"`
	Description string       `json:"description,omitempty"`
	Skills      []string     `json:"skills"`
	CreatedAt   time.Time    `json:"created_at"`
}

type SubmissionStatus string

const (
	SubmissionDraft     SubmissionStatus = "draft"
	SubmissionSubmitted SubmissionStatus = "submitted"
	SubmissionReviewed  SubmissionStatus = "reviewed"
)

type Score struct {
	JudgeID         string    `json:"judge_id"`
	Innovation      int       `json:"innovation"`
	Functionality   int       `json:"functionality"`
	Scalability     int       `json:"scalability"`
	UIUX            int       `json:"uiux"`
	TechIntegration int       `json:"tech_integration"`
	Feedback        string    `json:"feedback"`
	SubmittedAt     time.Time `json:"submitted_at"`
}

func (s Score) Total() int {
	return s.Innovation + s.Functionality + s.Scalability + s.UIUX + s.TechIntegration
}

type Submission struct {
	ID          string           `json:"id"`
	TeamID      string           `json:"team_id"`
	EventID     string           `json:"event_id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	GithubURL   string           `json:"github_url,omitempty"`
	DemoURL     string           `json:"demo_url,omitempty"`
	VideoURL    string           `json:"video_url,omitempty"`
	Documents   []string         `json:"documents"`
	SubmittedAt time.Time        `json:"submitted_at"`
	Status      SubmissionStatus `json:"status"`
	Scores      []Score          `json:"scores"`
	Feedback    []string         `json:"feedback"`
}

type AnnouncementType string

const (
	AnnouncementGeneral AnnouncementType = "general"
	AnnouncementEvent   AnnouncementType = "event"
	AnnouncementUrgent  AnnouncementType = "urgent"
)

type Announcement struct {
	ID        string           `json:"id"`
	EventID   string           `json:"event_id,omitempty"`
	Title     string           `json:"title"`
	Content   string           `json:"content"`
	Type      AnnouncementType `json:"type"`
	CreatedAt time.Time        `json:"created_at"`
	CreatedBy string           `json:"created_by"`
}

type QAThread struct {
	ID         string     `json:"id"`
	EventID    string     `json:"event_id,omitempty"`
	Question   string     `json:"question"`
	Answer     string     `json:"answer,omitempty"`
	AskedBy    string     `json:"asked_by"`
	AnsweredBy string     `json:"answered_by,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	AnsweredAt *time.Time `json:"answered_at,omitempty"`
	Upvotes    int        `json:"upvotes"`
}
