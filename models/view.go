package models

import (
	"sort"
	"sync"
	"time"
)

// RecordView is one editable row of the department page.
type RecordView struct {
	Position             int        `json:"position"`
	CaseNumber           string     `json:"case_number"`
	CaseDate             *time.Time `json:"case_date"`
	StoredPassDate       *time.Time `json:"stored_pass_date"`
	EditedPassDate       string     `json:"edited_pass_date"`
	DaysRemaining        *int       `json:"days_remaining"`
	ProcessType          *string    `json:"process_type"`
	MigrationQualityType *string    `json:"migration_quality_type"`
	StageStartDate       *time.Time `json:"stage_start_date"`
	StageEndDate         *time.Time `json:"stage_end_date"`
}

// EditDateLayout is the value format of the HTML date picker.
const EditDateLayout = "2006-01-02"

// EditSession holds the pending (unsaved) pass date of each case number.
type EditSession struct {
	mu    sync.Mutex
	edits map[string]time.Time
}

func NewEditSession() *EditSession {
	return &EditSession{edits: map[string]time.Time{}}
}

func (s *EditSession) Set(caseNumber string, d time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.edits[caseNumber] = Midnight(d)
}

func (s *EditSession) Get(caseNumber string) (time.Time, bool) {
	if s == nil {
		return time.Time{}, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.edits[caseNumber]
	return d, ok
}

// Clear drops the edit of caseNumber once it has been saved.
func (s *EditSession) Clear(caseNumber string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.edits, caseNumber)
}

func (s *EditSession) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.edits))
	for k := range s.edits {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// EditRegistry maps a session (access token id) to its edits. Sessions idle
// for ttl or longer are evicted; ttl <= 0 keeps them forever.
type EditRegistry struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[string]*registeredSession
	now      func() time.Time
}

type registeredSession struct {
	edits    *EditSession
	lastUsed time.Time
}

func NewEditRegistry(ttl time.Duration) *EditRegistry {
	return &EditRegistry{
		ttl:      ttl,
		sessions: map[string]*registeredSession{},
		now:      time.Now,
	}
}

// Session returns the edits of id, creating them on first use. Every call
// sweeps expired sessions.
func (r *EditRegistry) Session(id string) *EditSession {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	if r.ttl > 0 {
		for k, s := range r.sessions {
			if now.Sub(s.lastUsed) >= r.ttl {
				delete(r.sessions, k)
			}
		}
	}
	s, ok := r.sessions[id]
	if !ok {
		s = &registeredSession{edits: NewEditSession()}
		r.sessions[id] = s
	}
	s.lastUsed = now
	return s.edits
}

// Len is the number of live sessions.
func (r *EditRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// EditedDate is the reference date shown for r: the pending edit, else the
// stored pass date, else today.
func EditedDate(r Record, edits *EditSession, today time.Time) time.Time {
	if d, ok := edits.Get(r.CaseNumberValue()); ok {
		return d
	}
	if r.PassDate != nil {
		return Midnight(*r.PassDate)
	}
	return Midnight(today)
}

// BuildView prepares the pending records of department for editing. The day
// count always uses the currently edited date.
func BuildView(records []Record, department string, edits *EditSession, today time.Time) []RecordView {
	pending := FilterPending(records, department)
	views := make([]RecordView, 0, len(pending))
	for _, r := range pending {
		edited := EditedDate(r, edits, today)
		views = append(views, RecordView{
			Position:             r.Position,
			CaseNumber:           r.CaseNumberValue(),
			CaseDate:             r.CaseDate,
			StoredPassDate:       r.PassDate,
			EditedPassDate:       edited.Format(EditDateLayout),
			DaysRemaining:        ComputeDaysRemainingAt(r.CaseDate, &edited, today),
			ProcessType:          r.ProcessType,
			MigrationQualityType: r.MigrationQualityType,
			StageStartDate:       r.StageStartDate,
			StageEndDate:         r.StageEndDate,
		})
	}
	return views
}
