package hackathon

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// persistedState is the JSON shape of the file backend. Registrations are
// flattened to pairs so the file stays diffable.
type persistedState struct {
	Events        []Event            `json:"events"`
	Registrations []registrationPair `json:"registrations"`
	Teams         []Team             `json:"teams"`
	Submissions   []Submission       `json:"submissions"`
	Announcements []Announcement     `json:"announcements"`
	Questions     []QAThread         `json:"questions"`
}

type registrationPair struct {
	EventID string `json:"event_id"`
	UserID  string `json:"user_id"`
}

func (s *Service) loadState() error {
	b, err := os.ReadFile(s.stateFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read hackathon state: %w", err)
	}
	if len(b) == 0 {
		return nil
	}
	var decoded persistedState
	if err := json.Unmarshal(b, &decoded); err != nil {
		return fmt.Errorf("decode hackathon state: %w", err)
	}

	for _, e := range decoded.Events {
		if e.ID == "" {
			continue
		}
		s.events[e.ID] = cloneEvent(e)
	}
	for _, r := range decoded.Registrations {
		if r.EventID == "" || r.UserID == "" {
			continue
		}
		if s.registrations[r.EventID] == nil {
			s.registrations[r.EventID] = make(map[string]bool)
		}
		s.registrations[r.EventID][r.UserID] = true
	}
	for _, t := range decoded.Teams {
		if t.ID == "" {
			continue
		}
		s.teams[t.ID] = cloneTeam(t)
	}
	for _, sub := range decoded.Submissions {
		if sub.ID == "" {
			continue
		}
		s.submissions[sub.ID] = cloneSubmission(sub)
	}
	for _, a := range decoded.Announcements {
		if a.ID == "" {
			continue
		}
		s.announcements[a.ID] = a
	}
	for _, q := range decoded.Questions {
		if q.ID == "" {
			continue
		}
		s.questions[q.ID] = q
	}
	return nil
}

func (s *Service) persistLocked() error {
	if s.stateFile == "" {
		return nil
	}

	state := persistedState{
		Events:        make([]Event, 0, len(s.events)),
		Registrations: make([]registrationPair, 0),
		Teams:         make([]Team, 0, len(s.teams)),
		Submissions:   make([]Submission, 0, len(s.submissions)),
		Announcements: make([]Announcement, 0, len(s.announcements)),
		Questions:     make([]QAThread, 0, len(s.questions)),
	}
	for _, e := range s.events {
		state.Events = append(state.Events, cloneEvent(e))
	}
	for eventID, users := range s.registrations {
		for userID := range users {
			state.Registrations = append(state.Registrations, registrationPair{EventID: eventID, UserID: userID})
		}
	}
	for _, t := range s.teams {
		state.Teams = append(state.Teams, cloneTeam(t))
	}
	for _, sub := range s.submissions {
		state.Submissions = append(state.Submissions, cloneSubmission(sub))
	}
	for _, a := range s.announcements {
		state.Announcements = append(state.Announcements, a)
	}
	for _, q := range s.questions {
		state.Questions = append(state.Questions, q)
	}
	sortState(&state)

	b, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("encode hackathon state: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.stateFile), 0o755); err != nil {
		return fmt.Errorf("mkdir hackathon state dir: %w", err)
	}
	if err := os.WriteFile(s.stateFile, b, 0o644); err != nil {
		return fmt.Errorf("write hackathon state: %w", err)
	}
	return nil
}

func sortState(state *persistedState) {
	sort.Slice(state.Events, func(i, j int) bool {
		return state.Events[i].CreatedAt.Before(state.Events[j].CreatedAt)
	})
	sort.Slice(state.Registrations, func(i, j int) bool {
		a, b := state.Registrations[i], state.Registrations[j]
		if a.EventID != b.EventID {
			return a.EventID < b.EventID
		}
		return a.UserID < b.UserID
	})
	sort.Slice(state.Teams, func(i, j int) bool {
		return state.Teams[i].CreatedAt.Before(state.Teams[j].CreatedAt)
	})
	sort.Slice(state.Submissions, func(i, j int) bool {
		return state.Submissions[i].SubmittedAt.Before(state.Submissions[j].SubmittedAt)
	})
	sort.Slice(state.Announcements, func(i, j int) bool {
		return state.Announcements[i].CreatedAt.Before(state.Announcements[j].CreatedAt)
	})
	sort.Slice(state.Questions, func(i, j int) bool {
		return state.Questions[i].CreatedAt.Before(state.Questions[j].CreatedAt)
	})
}
