package dto

// OutlineRequest asks the assistant to draft a course outline for a topic.
type OutlineRequest struct {
	Topic string `json:"topic" validate:"required,min=3,max=200"`
}

// OutlineLesson is a lesson proposed by the assistant.
type OutlineLesson struct {
	Title   string `json:"title" validate:"required,max=255"`
	Summary string `json:"summary" validate:"omitempty,max=2000"`
}

// OutlineModule groups proposed lessons under a module title.
type OutlineModule struct {
	ModuleTitle string          `json:"module_title" validate:"required,max=255"`
	Lessons     []OutlineLesson `json:"lessons" validate:"required,min=1,dive"`
}

// OutlineResponse is the generated outline.
type OutlineResponse struct {
	Topic   string          `json:"topic"`
	Modules []OutlineModule `json:"modules"`
}

// HelpSearchRequest is a free-text question from the public help page.
type HelpSearchRequest struct {
	Query string `json:"query" validate:"required,min=3,max=500"`
}

// HelpSearchResponse carries the generated answer and its sources.
type HelpSearchResponse struct {
	Query   string   `json:"query"`
	Answer  string   `json:"answer"`
	Sources []string `json:"sources"`
}
