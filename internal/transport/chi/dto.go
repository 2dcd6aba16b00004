package chi

import "time"

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ListResponse wraps plain string lists.
type ListResponse struct {
	Items []string `json:"items"`
}

// LengthItem is one selectable length class.
type LengthItem struct {
	Class string `json:"class"`
	Range string `json:"range"`
}

// LengthListResponse lists the length classes.
type LengthListResponse struct {
	Items []LengthItem `json:"items"`
}

// FilterRequest selects examples by length class and tag.
type FilterRequest struct {
	Length string `json:"length"`
	Tag    string `json:"tag"`
}

// ExampleItem is one example record.
type ExampleItem struct {
	Text            string   `json:"text"`
	Tags            []string `json:"tags"`
	LineCount       int      `json:"line_count"`
	Length          string   `json:"length"`
	PrimaryCategory string   `json:"primary_category,omitempty"`
	Language        string   `json:"language,omitempty"`
}

// ExampleListResponse lists matching example records.
type ExampleListResponse struct {
	Items []ExampleItem `json:"items"`
	Total int           `json:"total"`
}

// PostRequest is the body of the post endpoints.
type PostRequest struct {
	Topic       string `json:"topic"`
	Length      string `json:"length"`
	Tag         string `json:"tag"`
	MaxExamples *int   `json:"max_examples,omitempty"`
}

// PromptResponse is an assembled prompt.
type PromptResponse struct {
	Prompt       string `json:"prompt"`
	ExamplesUsed int    `json:"examples_used"`
}

// PostResponse is a generated post.
type PostResponse struct {
	Post         string `json:"post"`
	Prompt       string `json:"prompt"`
	ExamplesUsed int    `json:"examples_used"`
	Model        string `json:"model,omitempty"`
}

// RestaurantRequest names the target country.
type RestaurantRequest struct {
	Country string `json:"country"`
}

// RestaurantResponse is a generated restaurant concept.
type RestaurantResponse struct {
	Country   string   `json:"country"`
	Name      string   `json:"name"`
	MenuItems []string `json:"menu_items"`
}

// IngestRequest lists the article URLs to index.
type IngestRequest struct {
	URLs []string `json:"urls"`
}

// IngestResponse summarizes the rebuilt index.
type IngestResponse struct {
	IndexID   string   `json:"index_id"`
	Documents int      `json:"documents"`
	Chunks    int      `json:"chunks"`
	Failed    []string `json:"failed,omitempty"`
}

// AskRequest carries a research question.
type AskRequest struct {
	Question string `json:"question"`
}

// AskResponse is the model answer with its sources.
type AskResponse struct {
	Answer  string   `json:"answer"`
	Sources []string `json:"sources"`
}

// IndexInfoResponse describes the active research index.
type IndexInfoResponse struct {
	IndexID   string    `json:"index_id"`
	CreatedAt time.Time `json:"created_at"`
	Sources   []string  `json:"sources"`
	Chunks    int       `json:"chunks"`
}

// SQLAnswerResponse is the generated query and, when it ran, its result and answer.
type SQLAnswerResponse struct {
	Question string   `json:"question"`
	SQL      string   `json:"sql"`
	Executed bool     `json:"executed"`
	Result   string   `json:"result,omitempty"`
	Answer   string   `json:"answer,omitempty"`
	Examples []string `json:"examples"`
}

// LeaveRequest lists the dates to book.
type LeaveRequest struct {
	Dates []string `json:"dates"`
}

// LeaveResponse is an employee's balance and history.
type LeaveResponse struct {
	EmployeeID string   `json:"employee_id"`
	Balance    int      `json:"balance"`
	History    []string `json:"history"`
}

// HealthResponse aggregates component checks.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
