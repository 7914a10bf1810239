package practice

import "errors"

var (
	// ErrLessonContentRequired is returned when a generate request carries
	// no content and the lesson is not in the local index.
	ErrLessonContentRequired = errors.New("lesson_content is required and not available in local lessons")

	// ErrInsufficientQuestions is returned when a valid quiz has fewer
	// questions than required. It is not retried.
	ErrInsufficientQuestions = errors.New("model returned insufficient questions")

	// ErrInvalidRequest marks a request body that is well-formed JSON but
	// breaks a data invariant.
	ErrInvalidRequest = errors.New("invalid request")
)
