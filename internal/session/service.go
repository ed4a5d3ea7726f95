// Package session owns the canonical lifecycle of a coaching session:
// scheduled → in_progress → processing → completed, with scheduled →
// cancelled as the only other exit. The end transition drives the synthesis
// pipeline and fans its output out to persistence and notification, each
// step a separate failure boundary.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/coachforge/coachforge-backend/internal/config"
	"github.com/coachforge/coachforge-backend/internal/email"
	"github.com/coachforge/coachforge-backend/internal/models"
	"github.com/coachforge/coachforge-backend/internal/pipeline"
	"github.com/coachforge/coachforge-backend/internal/repository"
	"github.com/coachforge/coachforge-backend/internal/video"
)

// ErrNotFound is returned when a session does not exist or is not owned by
// the calling coach.
var ErrNotFound = errors.New("session not found")

// errorSummary is the user-visible placeholder written when the pipeline
// fails at the call level; the coach must never see a session stuck in
// processing.
const errorSummary = "Session processing encountered an error. Please contact support."

// placeholderTranscript stands in when a session ends without any captured
// transcript.
const placeholderTranscript = "No transcript available. This session was not recorded."

// Service implements the session state machine and its side effects.
type Service struct {
	sessions repository.SessionRepository
	clients  repository.ClientRepository
	coaches  repository.CoachRepository
	actions  repository.ActionItemRepository
	progress repository.ProgressRepository
	pipe     *pipeline.Pipeline
	rooms    video.Provisioner
	mail     email.Sender
	cfg      *config.Config
	log      *logrus.Logger
}

// NewService creates the session lifecycle service
func NewService(
	sessions repository.SessionRepository,
	clients repository.ClientRepository,
	coaches repository.CoachRepository,
	actions repository.ActionItemRepository,
	progress repository.ProgressRepository,
	pipe *pipeline.Pipeline,
	rooms video.Provisioner,
	mail email.Sender,
	cfg *config.Config,
	log *logrus.Logger,
) *Service {
	return &Service{
		sessions: sessions,
		clients:  clients,
		coaches:  coaches,
		actions:  actions,
		progress: progress,
		pipe:     pipe,
		rooms:    rooms,
		mail:     mail,
		cfg:      cfg,
		log:      log,
	}
}

// Create schedules a new session for a client, assigning the next ordinal
// session number.
func (s *Service) Create(ctx context.Context, coachID, clientID uuid.UUID, scheduledAt *time.Time) (*models.Session, error) {
	client, err := s.clients.Get(ctx, coachID, clientID)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, fmt.Errorf("client not found")
	}

	number, err := s.sessions.NextSessionNumber(ctx, clientID)
	if err != nil {
		return nil, err
	}

	sess := &models.Session{
		CoachID:       coachID,
		ClientID:      clientID,
		SessionNumber: number,
		Status:        models.StatusScheduled,
		ScheduledAt:   scheduledAt,
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, err
	}

	return sess, nil
}

// Start transitions scheduled → in_progress: provisions a video room,
// records started_at and best-effort emails the client a join link. Room
// provisioning failure degrades to a deterministic placeholder address
// rather than blocking the start.
func (s *Service) Start(ctx context.Context, coachID, sessionID uuid.UUID) (*models.Session, error) {
	sess, err := s.sessions.Get(ctx, coachID, sessionID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, ErrNotFound
	}
	if !CanStart(sess.Status) {
		return nil, transitionError(sess.Status, "start")
	}

	room, err := s.rooms.CreateRoom(ctx, sessionID)
	if err != nil {
		s.log.WithError(err).WithField("session_id", sessionID).Warn("room provisioning failed, using placeholder")
		room = video.PlaceholderRoom(s.cfg.Video.Domain, sessionID)
	}

	now := time.Now()
	err = s.sessions.Update(ctx, sessionID, map[string]interface{}{
		"status":     models.StatusInProgress,
		"started_at": now,
		"room_name":  room.Name,
		"room_url":   room.URL,
	})
	if err != nil {
		return nil, err
	}

	s.notifyJoinLink(ctx, sess, room)

	return s.sessions.Get(ctx, coachID, sessionID)
}

func (s *Service) notifyJoinLink(ctx context.Context, sess *models.Session, room *video.Room) {
	client, err := s.clients.Get(ctx, sess.CoachID, sess.ClientID)
	if err != nil || client == nil {
		s.log.WithField("session_id", sess.ID).Warn("could not load client for join link email")
		return
	}
	coach, err := s.coaches.GetByID(ctx, sess.CoachID)
	if err != nil || coach == nil {
		return
	}

	from := email.FromLine(coach.FullName, s.cfg.Email.FromAddress)
	html := email.JoinLinkHTML(client.FirstName(), coach.FullName, room.URL)
	if err := s.mail.Send(ctx, from, client.Email, "Your coaching session is starting", html); err != nil {
		s.log.WithError(err).WithField("session_id", sess.ID).Warn("join link email failed")
	}
}

// Cancel transitions scheduled → cancelled.
func (s *Service) Cancel(ctx context.Context, coachID, sessionID uuid.UUID) error {
	sess, err := s.sessions.Get(ctx, coachID, sessionID)
	if err != nil {
		return err
	}
	if sess == nil {
		return ErrNotFound
	}
	if !CanCancel(sess.Status) {
		return transitionError(sess.Status, "cancel")
	}

	return s.sessions.Update(ctx, sessionID, map[string]interface{}{
		"status": models.StatusCancelled,
	})
}

// PersistLiveTranscript stores the accumulated live transcript on an
// in_progress session. Called by the capture feed before or at session end.
func (s *Service) PersistLiveTranscript(ctx context.Context, coachID, sessionID uuid.UUID, entries models.TranscriptEntries, wordCount int, flaggedMoments []string) error {
	sess, err := s.sessions.Get(ctx, coachID, sessionID)
	if err != nil {
		return err
	}
	if sess == nil {
		return ErrNotFound
	}
	if sess.Status != models.StatusInProgress {
		return transitionError(sess.Status, "persist transcript for")
	}

	notes := models.Metadata{
		"capture_mode":    "live",
		"word_count":      wordCount,
		"flagged_moments": flaggedMoments,
	}

	return s.sessions.Update(ctx, sessionID, map[string]interface{}{
		"transcript_raw":  entries,
		"transcript_text": entries.Text(),
		"ai_notes":        notes,
	})
}

// EndResult is the terminal outcome of an end transition. Error carries the
// user-facing failure message when the pipeline could not run.
type EndResult struct {
	Status        models.SessionStatus `json:"status"`
	Success       bool                 `json:"success"`
	Error         string               `json:"error,omitempty"`
	PipelineError bool                 `json:"-"`
}

// End drives the end-of-session transition: persist the transcript, move to
// processing, run the synthesis pipeline and fan out its output. Whatever
// happens inside the pipeline, the session finishes in completed. A session
// already processing or completed may be ended again to reprocess its
// persisted transcript.
func (s *Service) End(ctx context.Context, coachID, sessionID uuid.UUID) (*EndResult, error) {
	sess, err := s.sessions.Get(ctx, coachID, sessionID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, ErrNotFound
	}
	if !CanEnd(sess.Status) {
		return nil, transitionError(sess.Status, "end")
	}

	client, err := s.clients.Get(ctx, coachID, sess.ClientID)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, fmt.Errorf("client not found for session %s", sessionID)
	}

	firstCompletion := sess.Status == models.StatusInProgress

	now := time.Now()
	updates := map[string]interface{}{
		"status":   models.StatusProcessing,
		"ended_at": now,
	}
	if sess.StartedAt != nil {
		updates["duration_seconds"] = int(now.Sub(*sess.StartedAt).Seconds())
	}
	if err := s.sessions.Update(ctx, sessionID, updates); err != nil {
		return nil, err
	}

	transcriptText := placeholderTranscript
	if sess.TranscriptText != nil && *sess.TranscriptText != "" {
		transcriptText = *sess.TranscriptText
	}

	result, err := s.pipe.Run(ctx, transcriptText, client, sess.SessionNumber)
	if err != nil {
		// Call-level pipeline failure: the session still reaches a terminal
		// state with an inspectable placeholder summary.
		s.log.WithError(err).WithField("session_id", sessionID).Error("synthesis pipeline failed")
		if uerr := s.sessions.Update(ctx, sessionID, map[string]interface{}{
			"status":  models.StatusCompleted,
			"summary": errorSummary,
		}); uerr != nil {
			s.log.WithError(uerr).WithField("session_id", sessionID).Error("failed to mark session completed after pipeline error")
		}
		return &EndResult{
			Status:        models.StatusCompleted,
			Success:       false,
			Error:         "Processing failed",
			PipelineError: true,
		}, nil
	}

	s.fanOut(ctx, sess, client, result, firstCompletion)
	s.dispatchFollowup(ctx, sess, client, result.FollowupEmailBody)

	return &EndResult{Status: models.StatusCompleted, Success: true}, nil
}

// fanOut commits pipeline output in a fixed order. The steps are independent
// and best-effort: a failure is logged and the remaining steps still run.
func (s *Service) fanOut(ctx context.Context, sess *models.Session, client *models.Client, result *pipeline.Result, firstCompletion bool) {
	log := s.log.WithField("session_id", sess.ID)

	// 1. Session record: terminal status plus everything the pipeline derived.
	notes := models.Metadata{
		"summary_outcome": string(result.Summary.Outcome),
		"actions_outcome": string(result.Actions.Outcome),
	}
	err := s.sessions.Update(ctx, sess.ID, map[string]interface{}{
		"status":               models.StatusCompleted,
		"summary":              result.Summary.Summary,
		"summary_structured":   result.Summary.Structured,
		"mood_score":           result.Summary.MoodScore,
		"energy_score":         result.Summary.EnergyScore,
		"engagement_score":     result.Summary.EngagementScore,
		"breakthrough_flagged": result.Summary.BreakthroughFlagged,
		"followup_email_body":  result.FollowupEmailBody,
		"ai_notes":             notes,
	})
	if err != nil {
		log.WithError(err).Error("fan-out: session update failed")
	}

	// 2. Action items. Under the replace policy the prior batch is removed
	// first; under append (the default) reprocessing accumulates batches.
	if s.cfg.Pipeline.ReprocessPolicy == config.ReprocessReplace {
		if err := s.actions.DeleteBySession(ctx, sess.ID); err != nil {
			log.WithError(err).Error("fan-out: action item replace failed")
		}
	}
	if len(result.Actions.Items) > 0 {
		items := make([]*models.ActionItem, 0, len(result.Actions.Items))
		for _, draft := range result.Actions.Items {
			due := draft.DueDateSuggestion
			items = append(items, &models.ActionItem{
				SessionID: sess.ID,
				ClientID:  sess.ClientID,
				CoachID:   sess.CoachID,
				Task:      draft.Task,
				Priority:  models.Priority(draft.Priority),
				DueDate:   &due,
			})
		}
		if err := s.actions.InsertBatch(ctx, items); err != nil {
			log.WithError(err).Error("fan-out: action item insert failed")
		}
	}

	// 3. Progress rows: one mood and one energy observation dated today.
	today := time.Now()
	for _, row := range []*models.ClientProgress{
		{ClientID: sess.ClientID, SessionID: &sess.ID, Date: today, Type: models.ProgressMood, Value: intPtr(result.Summary.MoodScore)},
		{ClientID: sess.ClientID, SessionID: &sess.ID, Date: today, Type: models.ProgressEnergy, Value: intPtr(result.Summary.EnergyScore)},
	} {
		if err := s.progress.Insert(ctx, row); err != nil {
			log.WithError(err).WithField("type", row.Type).Error("fan-out: progress insert failed")
		}
	}

	// 4 & 5. Rollup counters advance exactly once per completed session, so
	// reprocessing an already-completed session skips them.
	if firstCompletion {
		if err := s.clients.AdvanceRollups(ctx, client.ID, today); err != nil {
			log.WithError(err).Error("fan-out: client rollup update failed")
		}
		if err := s.coaches.IncrementMonthlySessions(ctx, sess.CoachID); err != nil {
			log.WithError(err).Error("fan-out: coach counter update failed")
		}
	}
}

// dispatchFollowup delivers the follow-up message. Delivery is fully
// decoupled from pipeline and persistence success: a failure here only
// leaves followup_email_sent false for a later manual resend.
func (s *Service) dispatchFollowup(ctx context.Context, sess *models.Session, client *models.Client, body string) {
	if body == "" {
		return
	}

	coach, err := s.coaches.GetByID(ctx, sess.CoachID)
	if err != nil || coach == nil {
		s.log.WithField("session_id", sess.ID).Warn("could not load coach for follow-up email")
		return
	}

	portalURL := fmt.Sprintf("%s/portal/%s", s.cfg.AppURL, client.PortalToken)
	from := email.FromLine(coach.FullName, s.cfg.Email.FromAddress)
	html := email.FollowUpHTML(client.FirstName(), body, portalURL)

	if err := s.mail.Send(ctx, from, client.Email, email.FollowUpSubject(time.Now()), html); err != nil {
		s.log.WithError(err).WithField("session_id", sess.ID).Warn("follow-up email failed")
		return
	}

	err = s.sessions.Update(ctx, sess.ID, map[string]interface{}{
		"followup_email_sent":    true,
		"followup_email_sent_at": time.Now(),
	})
	if err != nil {
		s.log.WithError(err).WithField("session_id", sess.ID).Warn("failed to record follow-up delivery")
	}
}

// ResendFollowup re-sends the stored follow-up body, independent of pipeline
// state.
func (s *Service) ResendFollowup(ctx context.Context, coachID, sessionID uuid.UUID) error {
	sess, err := s.sessions.Get(ctx, coachID, sessionID)
	if err != nil {
		return err
	}
	if sess == nil {
		return ErrNotFound
	}
	if sess.FollowupEmailBody == nil || *sess.FollowupEmailBody == "" {
		return fmt.Errorf("session has no follow-up email body")
	}

	client, err := s.clients.Get(ctx, coachID, sess.ClientID)
	if err != nil {
		return err
	}
	if client == nil {
		return fmt.Errorf("client not found for session %s", sessionID)
	}
	coach, err := s.coaches.GetByID(ctx, coachID)
	if err != nil {
		return err
	}
	if coach == nil {
		return fmt.Errorf("coach not found")
	}

	portalURL := fmt.Sprintf("%s/portal/%s", s.cfg.AppURL, client.PortalToken)
	from := email.FromLine(coach.FullName, s.cfg.Email.FromAddress)
	html := email.FollowUpHTML(client.FirstName(), *sess.FollowupEmailBody, portalURL)

	if err := s.mail.Send(ctx, from, client.Email, email.FollowUpSubject(time.Now()), html); err != nil {
		return fmt.Errorf("follow-up resend failed: %w", err)
	}

	return s.sessions.Update(ctx, sessionID, map[string]interface{}{
		"followup_email_sent":    true,
		"followup_email_sent_at": time.Now(),
	})
}

// GeneratePrepBrief writes a pre-session brief from the client's recent
// completed sessions and open action items, and stores it on the session.
func (s *Service) GeneratePrepBrief(ctx context.Context, coachID, sessionID uuid.UUID) (string, error) {
	sess, err := s.sessions.Get(ctx, coachID, sessionID)
	if err != nil {
		return "", err
	}
	if sess == nil {
		return "", ErrNotFound
	}

	client, err := s.clients.Get(ctx, coachID, sess.ClientID)
	if err != nil {
		return "", err
	}
	if client == nil {
		return "", fmt.Errorf("client not found for session %s", sessionID)
	}

	recentSessions, err := s.sessions.ListRecentCompleted(ctx, sess.ClientID, 3)
	if err != nil {
		return "", err
	}
	recent := make([]pipeline.PreviousSession, 0, len(recentSessions))
	for _, rs := range recentSessions {
		prev := pipeline.PreviousSession{}
		if rs.EndedAt != nil {
			prev.Date = *rs.EndedAt
		}
		if rs.Summary != nil {
			prev.Summary = *rs.Summary
		}
		items, err := s.actions.ListBySession(ctx, rs.ID)
		if err == nil {
			for _, it := range items {
				prev.ActionItems = append(prev.ActionItems, it.Task)
			}
		}
		recent = append(recent, prev)
	}

	openItems, err := s.actions.ListOpenByClient(ctx, sess.ClientID)
	if err != nil {
		return "", err
	}

	brief, err := s.pipe.GeneratePrepBrief(ctx, client, recent, openItems)
	if err != nil {
		return "", err
	}

	err = s.sessions.Update(ctx, sessionID, map[string]interface{}{
		"prep_brief":              brief,
		"prep_brief_generated_at": time.Now(),
	})
	if err != nil {
		return "", err
	}

	return brief, nil
}

// SendNudge writes and delivers a nudge about one open action item.
func (s *Service) SendNudge(ctx context.Context, coachID, actionItemID uuid.UUID) error {
	item, err := s.actions.Get(ctx, actionItemID)
	if err != nil {
		return err
	}
	if item == nil || item.CoachID != coachID {
		return fmt.Errorf("action item not found")
	}

	client, err := s.clients.Get(ctx, coachID, item.ClientID)
	if err != nil {
		return err
	}
	if client == nil {
		return fmt.Errorf("client not found")
	}
	coach, err := s.coaches.GetByID(ctx, coachID)
	if err != nil {
		return err
	}
	if coach == nil {
		return fmt.Errorf("coach not found")
	}

	msg, err := s.pipe.GenerateNudge(ctx, client, item)
	if err != nil {
		return err
	}

	from := email.FromLine(coach.FullName, s.cfg.Email.FromAddress)
	html := email.NudgeHTML(client.FirstName(), coach.FullName, msg)
	if err := s.mail.Send(ctx, from, client.Email, email.NudgeSubject(coach.FullName), html); err != nil {
		return fmt.Errorf("nudge delivery failed: %w", err)
	}

	return s.actions.MarkNudgeSent(ctx, actionItemID)
}

func intPtr(n int) *int { return &n }
