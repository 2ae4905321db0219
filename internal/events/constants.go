package events

type EventType string

const (
	EventTypeGradeAnswer    EventType = "grade_answer"
	EventTypeQuestionViewed EventType = "question_viewed"
)
