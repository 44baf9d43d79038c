package api

import (
	"net/http"

	"github.com/CP-Team-DBS/anxiety-model-1/internal/domain/questionnaire"
)

type questionsResponse struct {
	Questions []questionnaire.Question `json:"questions"`
	Answers   []questionnaire.Answer   `json:"answers"`
}

// QuestionsHandler serves the question schema.
type QuestionsHandler struct {
	body questionsResponse
}

// NewQuestionsHandler creates a handler for the given schema.
func NewQuestionsHandler(schema *questionnaire.Schema) *QuestionsHandler {
	return &QuestionsHandler{body: questionsResponse{
		Questions: schema.Questions(),
		Answers:   schema.Vocabulary().Answers(),
	}}
}

// HandleQuestions handles GET /questions requests.
func (h *QuestionsHandler) HandleQuestions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.body)
}
