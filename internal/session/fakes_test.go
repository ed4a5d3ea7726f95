package session

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/coachforge/coachforge-backend/internal/models"
	"github.com/coachforge/coachforge-backend/internal/video"
)

// fakeSessionRepo is an in-memory SessionRepository.
type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*models.Session
	statuses map[uuid.UUID][]models.SessionStatus // status history per session
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{
		sessions: make(map[uuid.UUID]*models.Session),
		statuses: make(map[uuid.UUID][]models.SessionStatus),
	}
}

func (r *fakeSessionRepo) Create(ctx context.Context, s *models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.Status == "" {
		s.Status = models.StatusScheduled
	}
	cp := *s
	r.sessions[s.ID] = &cp
	r.statuses[s.ID] = append(r.statuses[s.ID], s.Status)
	return nil
}

func (r *fakeSessionRepo) Get(ctx context.Context, coachID, id uuid.UUID) (*models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok || s.CoachID != coachID {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (r *fakeSessionRepo) ListByCoach(ctx context.Context, coachID uuid.UUID) ([]*models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Session
	for _, s := range r.sessions {
		if s.CoachID == coachID {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeSessionRepo) ListRecentCompleted(ctx context.Context, clientID uuid.UUID, limit int) ([]*models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Session
	for _, s := range r.sessions {
		if s.ClientID == clientID && s.Status == models.StatusCompleted {
			cp := *s
			out = append(out, &cp)
		}
	}
	// Most recent first, matching the ended_at DESC query.
	sort.Slice(out, func(i, j int) bool {
		var ti, tj time.Time
		if out[i].EndedAt != nil {
			ti = *out[i].EndedAt
		}
		if out[j].EndedAt != nil {
			tj = *out[j].EndedAt
		}
		return ti.After(tj)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeSessionRepo) Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return errors.New("no such session")
	}
	for key, value := range updates {
		applySessionUpdate(s, key, value)
	}
	if status, ok := updates["status"]; ok {
		r.statuses[id] = append(r.statuses[id], status.(models.SessionStatus))
	}
	return nil
}

func applySessionUpdate(s *models.Session, key string, value interface{}) {
	switch key {
	case "status":
		s.Status = value.(models.SessionStatus)
	case "started_at":
		t := value.(time.Time)
		s.StartedAt = &t
	case "ended_at":
		t := value.(time.Time)
		s.EndedAt = &t
	case "duration_seconds":
		d := value.(int)
		s.DurationSeconds = &d
	case "room_name":
		v := value.(string)
		s.RoomName = &v
	case "room_url":
		v := value.(string)
		s.RoomURL = &v
	case "transcript_raw":
		s.TranscriptRaw = value.(models.TranscriptEntries)
	case "transcript_text":
		v := value.(string)
		s.TranscriptText = &v
	case "summary":
		v := value.(string)
		s.Summary = &v
	case "summary_structured":
		v := value.(models.StructuredSummary)
		s.SummaryStructured = &v
	case "mood_score":
		v := value.(int)
		s.MoodScore = &v
	case "energy_score":
		v := value.(int)
		s.EnergyScore = &v
	case "engagement_score":
		v := value.(int)
		s.EngagementScore = &v
	case "breakthrough_flagged":
		s.BreakthroughFlagged = value.(bool)
	case "ai_notes":
		s.AINotes = value.(models.Metadata)
	case "followup_email_body":
		v := value.(string)
		s.FollowupEmailBody = &v
	case "followup_email_sent":
		s.FollowupEmailSent = value.(bool)
	case "followup_email_sent_at":
		t := value.(time.Time)
		s.FollowupEmailSentAt = &t
	case "prep_brief":
		v := value.(string)
		s.PrepBrief = &v
	case "prep_brief_generated_at":
		t := value.(time.Time)
		s.PrepBriefGeneratedAt = &t
	}
}

func (r *fakeSessionRepo) NextSessionNumber(ctx context.Context, clientID uuid.UUID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	max := 0
	for _, s := range r.sessions {
		if s.ClientID == clientID && s.SessionNumber > max {
			max = s.SessionNumber
		}
	}
	return max + 1, nil
}

func (r *fakeSessionRepo) statusHistory(id uuid.UUID) []models.SessionStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.SessionStatus, len(r.statuses[id]))
	copy(out, r.statuses[id])
	return out
}

// fakeClientRepo is an in-memory ClientRepository.
type fakeClientRepo struct {
	mu      sync.Mutex
	clients map[uuid.UUID]*models.Client
	rollups map[uuid.UUID]int // rollup advances per client
}

func newFakeClientRepo() *fakeClientRepo {
	return &fakeClientRepo{
		clients: make(map[uuid.UUID]*models.Client),
		rollups: make(map[uuid.UUID]int),
	}
}

func (r *fakeClientRepo) Create(ctx context.Context, c *models.Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	cp := *c
	r.clients[c.ID] = &cp
	return nil
}

func (r *fakeClientRepo) Get(ctx context.Context, coachID, id uuid.UUID) (*models.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.clients[id]
	if !ok || c.CoachID != coachID {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *fakeClientRepo) ListByCoach(ctx context.Context, coachID uuid.UUID) ([]*models.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Client
	for _, c := range r.clients {
		if c.CoachID == coachID {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeClientRepo) AdvanceRollups(ctx context.Context, id uuid.UUID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.clients[id]
	if !ok {
		return errors.New("no such client")
	}
	c.SessionCount++
	c.CurrentStreak++
	c.LastSessionAt = &at
	r.rollups[id]++
	return nil
}

// fakeCoachRepo is an in-memory CoachRepository.
type fakeCoachRepo struct {
	mu         sync.Mutex
	coaches    map[uuid.UUID]*models.Coach
	increments map[uuid.UUID]int
}

func newFakeCoachRepo() *fakeCoachRepo {
	return &fakeCoachRepo{
		coaches:    make(map[uuid.UUID]*models.Coach),
		increments: make(map[uuid.UUID]int),
	}
}

func (r *fakeCoachRepo) Create(ctx context.Context, c *models.Coach) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	cp := *c
	r.coaches[c.ID] = &cp
	return nil
}

func (r *fakeCoachRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Coach, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.coaches[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *fakeCoachRepo) GetByEmail(ctx context.Context, emailAddr string) (*models.Coach, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.coaches {
		if c.Email == emailAddr {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeCoachRepo) IncrementMonthlySessions(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.coaches[id]; ok {
		c.SessionCountThisMonth++
	}
	r.increments[id]++
	return nil
}

// fakeActionItemRepo is an in-memory ActionItemRepository.
type fakeActionItemRepo struct {
	mu      sync.Mutex
	items   []*models.ActionItem
	deletes int
}

func newFakeActionItemRepo() *fakeActionItemRepo {
	return &fakeActionItemRepo{}
}

func (r *fakeActionItemRepo) InsertBatch(ctx context.Context, items []*models.ActionItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, item := range items {
		if item.ID == uuid.Nil {
			item.ID = uuid.New()
		}
		cp := *item
		r.items = append(r.items, &cp)
	}
	return nil
}

func (r *fakeActionItemRepo) Get(ctx context.Context, id uuid.UUID) (*models.ActionItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, item := range r.items {
		if item.ID == id {
			cp := *item
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeActionItemRepo) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]*models.ActionItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.ActionItem
	for _, item := range r.items {
		if item.SessionID == sessionID {
			cp := *item
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeActionItemRepo) ListOpenByClient(ctx context.Context, clientID uuid.UUID) ([]*models.ActionItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.ActionItem
	for _, item := range r.items {
		if item.ClientID == clientID && !item.Completed {
			cp := *item
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeActionItemRepo) SetCompleted(ctx context.Context, id uuid.UUID, completed bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, item := range r.items {
		if item.ID == id {
			item.Completed = completed
		}
	}
	return nil
}

func (r *fakeActionItemRepo) MarkNudgeSent(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, item := range r.items {
		if item.ID == id {
			item.NudgeSent = true
			now := time.Now()
			item.NudgeSentAt = &now
		}
	}
	return nil
}

func (r *fakeActionItemRepo) DeleteBySession(ctx context.Context, sessionID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var kept []*models.ActionItem
	for _, item := range r.items {
		if item.SessionID != sessionID {
			kept = append(kept, item)
		}
	}
	r.items = kept
	r.deletes++
	return nil
}

// fakeProgressRepo is an in-memory ProgressRepository.
type fakeProgressRepo struct {
	mu   sync.Mutex
	rows []*models.ClientProgress
}

func newFakeProgressRepo() *fakeProgressRepo {
	return &fakeProgressRepo{}
}

func (r *fakeProgressRepo) Insert(ctx context.Context, row *models.ClientProgress) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *row
	r.rows = append(r.rows, &cp)
	return nil
}

func (r *fakeProgressRepo) ListByClient(ctx context.Context, clientID uuid.UUID) ([]*models.ClientProgress, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.ClientProgress
	for _, row := range r.rows {
		if row.ClientID == clientID {
			cp := *row
			out = append(out, &cp)
		}
	}
	return out, nil
}

// fakeProvisioner scripts room creation.
type fakeProvisioner struct {
	fail  bool
	calls int
}

func (p *fakeProvisioner) CreateRoom(ctx context.Context, sessionID uuid.UUID) (*video.Room, error) {
	p.calls++
	if p.fail {
		return nil, errors.New("room vendor unavailable")
	}
	return &video.Room{Name: video.RoomName(sessionID), URL: "https://rooms.example/" + video.RoomName(sessionID)}, nil
}

// fakeSender records sent mail and can be told to fail.
type fakeSender struct {
	mu   sync.Mutex
	fail bool
	sent []sentMail
}

type sentMail struct {
	from, to, subject, html string
}

func (s *fakeSender) Send(ctx context.Context, from, to, subject, htmlBody string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("delivery refused")
	}
	s.sent = append(s.sent, sentMail{from: from, to: to, subject: subject, html: htmlBody})
	return nil
}

func (s *fakeSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

// scriptedGenerator returns canned responses per call.
type scriptedGenerator struct {
	responses []string
	errs      []error
	prompts   []string
	calls     int
}

func (g *scriptedGenerator) Name() string { return "scripted" }

func (g *scriptedGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	i := g.calls
	g.calls++
	g.prompts = append(g.prompts, prompt)
	if i < len(g.errs) && g.errs[i] != nil {
		return "", g.errs[i]
	}
	if i < len(g.responses) {
		return g.responses[i], nil
	}
	return "", nil
}
