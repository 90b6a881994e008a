package service

import (
	"strings"

	"github.com/mtwilk/smart-study-buddy/internal/models"
)

// deadlineKeywords marks a calendar title as a graded deadline.
var deadlineKeywords = []string{
	"exam", "test", "quiz", "midterm", "final",
	"assignment", "homework", "project", "presentation",
	"essay", "paper", "due", "deadline", "submit",
}

// courseKeywords delimit the course-name prefix of a title.
var courseKeywords = []string{
	"exam", "test", "quiz", "final", "midterm", "assignment",
}

// topicStopWords are dropped when deriving topics from a title.
var topicStopWords = map[string]struct{}{
	"exam": {}, "test": {}, "quiz": {}, "midterm": {}, "assignment": {},
	"the": {}, "a": {}, "an": {}, "for": {}, "on": {}, "in": {}, "at": {}, "to": {},
}

// Verdict is the classifier output for a calendar event title. It is
// computed once at ingestion and stored on the event; it is never
// re-evaluated afterwards.
type Verdict struct {
	IsDeadline  bool
	Type        string
	ExamSubtype string
	CourseGuess string
}

// Classify decides whether a title represents a graded deadline and, if so,
// what kind. Pure and total: any string input, including empty, yields a
// verdict.
//
// Titles that look like preparation sessions this engine itself creates
// ("Study: ...", "Study - ...", "study session", or a leading "study"
// token) are never deadlines, even when they also contain a deadline
// keyword. Without this guard the engine would ingest its own calendar
// output as new deadlines.
func Classify(title string) Verdict {
	verdict := Verdict{
		Type:        deadlineType(title),
		ExamSubtype: examSubtype(title),
		CourseGuess: courseGuess(title),
	}

	lower := strings.ToLower(strings.TrimSpace(title))

	if isStudySessionTitle(lower) {
		return verdict
	}

	for _, keyword := range deadlineKeywords {
		if strings.Contains(lower, keyword) {
			verdict.IsDeadline = true
			break
		}
	}

	return verdict
}

func isStudySessionTitle(lower string) bool {
	if strings.HasPrefix(lower, "study:") || strings.HasPrefix(lower, "study -") {
		return true
	}
	if strings.Contains(lower, "study session") {
		return true
	}

	fields := strings.Fields(lower)
	return len(fields) > 0 && fields[0] == "study"
}

func deadlineType(title string) string {
	lower := strings.ToLower(title)

	switch {
	case strings.Contains(lower, "essay") || strings.Contains(lower, "paper"):
		return models.AssignmentTypeEssay
	case strings.Contains(lower, "presentation") || strings.Contains(lower, "present"):
		return models.AssignmentTypePresentation
	case strings.Contains(lower, "quiz"):
		return models.AssignmentTypeQuiz
	default:
		return models.AssignmentTypeExam
	}
}

func examSubtype(title string) string {
	lower := strings.ToLower(title)

	switch {
	case strings.Contains(lower, "theoretical") || strings.Contains(lower, "theory"):
		return models.ExamSubtypeTheoretical
	case strings.Contains(lower, "practical") || strings.Contains(lower, "lab"):
		return models.ExamSubtypePractical
	default:
		return models.ExamSubtypeHybrid
	}
}

// courseGuess returns the part of the title before the earliest course
// keyword occurrence, e.g. "Machine Learning Final Exam" -> "Machine
// Learning". Falls back to the whole title when no keyword is present.
func courseGuess(title string) string {
	lower := strings.ToLower(title)

	earliest := -1
	for _, keyword := range courseKeywords {
		idx := strings.Index(lower, keyword)
		if idx >= 0 && (earliest == -1 || idx < earliest) {
			earliest = idx
		}
	}

	if earliest == -1 {
		return strings.TrimSpace(title)
	}

	return strings.TrimSpace(title[:earliest])
}

// ExtractTopics derives the topic list for an assignment from its title by
// stripping deadline keywords and filler words while keeping the remaining
// phrase intact as a single topic.
func ExtractTopics(title string) []string {
	var kept []string
	for _, word := range strings.Fields(title) {
		if _, stop := topicStopWords[strings.ToLower(word)]; stop {
			continue
		}
		kept = append(kept, word)
	}

	if len(kept) == 0 {
		return []string{title}
	}

	return []string{strings.Join(kept, " ")}
}
