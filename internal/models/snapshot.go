package models

// Snapshot is a full replacement of one course's analytics.
type Snapshot struct {
	Course     Course
	Steps      []Step
	Completion *CourseCompletion
}
