package pipeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/coachforge/coachforge-backend/internal/models"
)

func clientGoals(client *models.Client) string {
	if len(client.Goals) == 0 {
		return "Not specified"
	}
	return strings.Join(client.Goals, ", ")
}

func clientCoachingType(client *models.Client) string {
	if client.CoachingType == nil || *client.CoachingType == "" {
		return "general"
	}
	return *client.CoachingType
}

func buildSessionSummaryPrompt(transcript string, client *models.Client, sessionNumber int) string {
	return fmt.Sprintf(`You are an expert coaching assistant. Analyze this coaching session transcript and generate a comprehensive yet concise session summary.

CLIENT CONTEXT:
- Name: %s
- Coaching Type: %s
- Goals: %s
- Session Number: %d

TRANSCRIPT:
%s

Generate a JSON response with this exact structure:
{
  "summary": "A 150-250 word narrative summary of the session in warm, professional language. Written in third person.",
  "summary_structured": {
    "overview": "2-3 sentence high-level summary",
    "key_themes": ["theme1", "theme2", "theme3"],
    "breakthroughs": ["any breakthrough moments or realizations"],
    "concerns": ["any concerns or risk flags noticed"],
    "coaching_techniques_used": ["techniques the coach employed"]
  },
  "mood_score": 75,
  "energy_score": 80,
  "engagement_score": 85,
  "breakthrough_flagged": false
}

Score guidelines:
- mood_score: 1-100, client's emotional state (50=neutral, 80+=positive, 30-=concerning)
- energy_score: 1-100, client's energy/motivation level
- engagement_score: 1-100, how engaged/participatory the client was
- breakthrough_flagged: true only if a genuine "aha moment" or significant shift occurred

Respond ONLY with valid JSON, no markdown or explanation.`,
		client.FullName, clientCoachingType(client), clientGoals(client), sessionNumber, transcript)
}

func buildActionItemsPrompt(transcript string, client *models.Client) string {
	return fmt.Sprintf(`You are an expert coaching assistant. Extract all action items, commitments, and homework from this coaching session transcript.

CLIENT: %s
GOALS: %s

TRANSCRIPT:
%s

Generate a JSON array of action items:
[
  {
    "task": "Clear, specific description of what the client committed to",
    "priority": "high|medium|low",
    "due_date_suggestion": "relative timeframe like 'within 1 week' or 'by next session' or 'ongoing'"
  }
]

Rules:
- Extract ONLY commitments the client actually made or the coach explicitly assigned
- Be specific — "Journal daily" not "Do journaling"
- Include any exercises, reflections, or practices discussed
- Typically 2-6 action items per session
- high = directly tied to primary goal, medium = supportive, low = nice-to-have

Respond ONLY with a valid JSON array.`,
		client.FullName, clientGoals(client), transcript)
}

func buildFollowUpEmailPrompt(client *models.Client, summary string, actionItems []ActionItemDraft) string {
	var actionList strings.Builder
	for i, a := range actionItems {
		fmt.Fprintf(&actionList, "%d. %s\n", i+1, a.Task)
	}

	return fmt.Sprintf(`You are writing a follow-up email on behalf of a coach to their client after a coaching session. The email should sound like it's coming from the coach personally — warm, encouraging, and referencing specific moments from the session.

CLIENT: %s (first name: %s)

SESSION SUMMARY:
%s

ACTION ITEMS:
%s

Write the email body (no subject line, no greeting — those are handled separately). The email should:
1. Open with a warm acknowledgment of a specific moment or achievement from the session
2. Briefly recap 1-2 key insights (don't repeat the whole summary)
3. List the action items naturally in the flow
4. End with encouragement and a forward-looking statement
5. Be 150-300 words
6. Sound human, warm, and personal — NOT like AI
7. Reference at least one specific thing the client said or felt

Respond with ONLY the email body text. No subject line, no "Dear X", no signature.`,
		client.FullName, client.FirstName(), summary, actionList.String())
}

// PreviousSession carries the context a prep brief needs from one past session.
type PreviousSession struct {
	Date        time.Time
	Summary     string
	ActionItems []string
}

func buildPrepBriefPrompt(client *models.Client, recent []PreviousSession, openItems []*models.ActionItem) string {
	var sessionsContext strings.Builder
	for i, s := range recent {
		if i > 0 {
			sessionsContext.WriteString("\n\n")
		}
		fmt.Fprintf(&sessionsContext, "Session %d (%s): %s\nAction items: %s",
			i+1, s.Date.Format("2006-01-02"), s.Summary, strings.Join(s.ActionItems, ", "))
	}
	if sessionsContext.Len() == 0 {
		sessionsContext.WriteString("No previous sessions")
	}

	var actionsContext strings.Builder
	for _, a := range openItems {
		status := "OPEN"
		if a.Completed {
			status = "DONE"
		}
		due := ""
		if a.DueDate != nil {
			due = fmt.Sprintf(" (due: %s)", *a.DueDate)
		}
		fmt.Fprintf(&actionsContext, "- %s [%s]%s\n", a.Task, status, due)
	}
	if actionsContext.Len() == 0 {
		actionsContext.WriteString("None")
	}

	return fmt.Sprintf(`You are preparing a pre-session brief for a coach. This brief helps them walk into the session fully prepared.

CLIENT: %s
COACHING TYPE: %s
GOALS: %s

RECENT SESSIONS:
%s

OPEN ACTION ITEMS:
%s

Generate a concise prep brief (150-200 words) that includes:
1. Where you left off (last session recap in 1-2 sentences)
2. What to follow up on (open action items, especially overdue ones)
3. Suggested talking points or questions
4. Any patterns or trends you notice
5. Risk flags (if any — missed actions, declining mood, etc.)

Write in direct second person ("Your client...", "Consider asking...").
Keep it scannable and actionable — the coach will read this 10 minutes before the session.

Respond with ONLY the brief text.`,
		client.FullName, clientCoachingType(client), clientGoals(client),
		sessionsContext.String(), actionsContext.String())
}

func buildNudgePrompt(client *models.Client, item *models.ActionItem, daysSinceSession int) string {
	due := "no specific date"
	if item.DueDate != nil && *item.DueDate != "" {
		due = *item.DueDate
	}

	return fmt.Sprintf(`Write a brief, encouraging nudge message to a coaching client about an action item they committed to.

CLIENT FIRST NAME: %s
ACTION ITEM: %s
DUE: %s
DAYS SINCE SESSION: %d

Write a 2-3 sentence message that:
- Feels personal and encouraging (not nagging)
- References the specific action item
- Ends with a light, motivating note
- Sounds like a supportive text from their coach

Respond with ONLY the message text.`,
		client.FirstName(), item.Task, due, daysSinceSession)
}
