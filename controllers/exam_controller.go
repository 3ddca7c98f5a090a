package controllers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/trajecta/trajecta/quiz"
	"github.com/trajecta/trajecta/utils"
)

// ExamController proxies the AI quiz flow to the external scoring script.
type ExamController struct {
	runner *quiz.Runner
}

// NewExamController creates an ExamController.
func NewExamController(runner *quiz.Runner) *ExamController {
	return &ExamController{runner: runner}
}

// Questions asks the scoring script to generate quiz questions.
func (e *ExamController) Questions(ctx *gin.Context) {
	var req struct {
		Seed *quiz.Seed `json:"seed"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40050, "invalid request payload")
		return
	}

	raw, err := e.runner.Run(ctx.Request.Context(), quiz.Request{
		Mode: "questions",
		Seed: req.Seed,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}

	utils.Success(ctx, raw)
}

// Verdict scores a completed quiz. Besides the raw answers, the script also
// receives the questions shown, the advisor description, the conversation
// transcript and self-reported skill levels, all folded into one answers map.
func (e *ExamController) Verdict(ctx *gin.Context) {
	var req struct {
		Answers                map[string]any `json:"answers"`
		Questions              any            `json:"questions"`
		AdvisorDescription     string         `json:"advisor_description"`
		ConversationTranscript any            `json:"conversation_transcript"`
		SkillLevels            any            `json:"skill_levels"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40051, "invalid request payload")
		return
	}

	answers := req.Answers
	if answers == nil {
		answers = map[string]any{}
	}
	if req.Questions != nil {
		answers["questions"] = req.Questions
	}
	if strings.TrimSpace(req.AdvisorDescription) != "" {
		answers["advisor_description"] = req.AdvisorDescription
	}
	if req.ConversationTranscript != nil {
		answers["conversation_transcript"] = req.ConversationTranscript
	}
	if req.SkillLevels != nil {
		answers["skill_levels"] = req.SkillLevels
	}

	raw, err := e.runner.Run(ctx.Request.Context(), quiz.Request{
		Mode:    "verdict",
		Answers: answers,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}

	utils.Success(ctx, raw)
}

// Rank asks the scoring script to rank courses for a free-form query. The
// user object is forwarded opaquely.
func (e *ExamController) Rank(ctx *gin.Context) {
	var req struct {
		Query string          `json:"query"`
		User  json.RawMessage `json:"user"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40052, "invalid request payload")
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		utils.Error(ctx, http.StatusBadRequest, 40053, "query is required")
		return
	}

	raw, err := e.runner.Run(ctx.Request.Context(), quiz.Request{
		Mode:  "rank",
		Query: req.Query,
		User:  req.User,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}

	utils.Success(ctx, raw)
}
