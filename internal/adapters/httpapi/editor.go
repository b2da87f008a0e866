package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/example/editorial/internal/ports/primary"
)

// ============================================================================
// Queues
// ============================================================================

func (s *server) listQueue(c *gin.Context) {
	limit, ok := queryInt(c, "limit")
	if !ok {
		return
	}
	offset, ok := queryInt(c, "offset")
	if !ok {
		return
	}
	page, err := s.svc.Queues.ListQueue(c.Request.Context(), primary.QueueRequest{
		Queue:     c.DefaultQuery("queue", "my_queue"),
		JournalID: c.Query("journal_id"),
		Stage:     c.Query("stage"),
		Search:    c.Query("search"),
		Limit:     limit,
		Offset:    offset,
	})
	reply(c, page, err)
}

func (s *server) dashboard(c *gin.Context) {
	mine, ok := queryBool(c, "my_tasks")
	if !ok {
		return
	}
	stats, err := s.svc.Queues.DashboardStats(c.Request.Context(), primary.DashboardRequest{
		JournalID:   c.Query("journal_id"),
		MyTasksOnly: mine,
	})
	reply(c, stats, err)
}

// ============================================================================
// Submissions
// ============================================================================

type createSubmissionBody struct {
	JournalID string         `json:"journal_id"`
	Title     string         `json:"title"`
	AuthorID  string         `json:"author_id"`
	Metadata  map[string]any `json:"metadata"`
}

func (s *server) createSubmission(c *gin.Context) {
	var body createSubmissionBody
	if !bind(c, &body) {
		return
	}
	resp, err := s.svc.Submissions.CreateSubmission(c.Request.Context(), primary.CreateSubmissionRequest(body))
	if err != nil {
		abort(c, err)
		return
	}
	done(c, http.StatusCreated, resp.SubmissionID, "Submission created", nil)
}

func (s *server) getSubmission(c *gin.Context) {
	detail, err := s.svc.Submissions.GetSubmission(c.Request.Context(), c.Param("id"))
	reply(c, detail, err)
}

func (s *server) deleteSubmission(c *gin.Context) {
	id := c.Param("id")
	err := s.svc.Submissions.DeleteSubmission(c.Request.Context(), id)
	done(c, http.StatusOK, id, "Submission deleted", err)
}

type workflowBody struct {
	TargetStage string `json:"target_stage"`
	Status      string `json:"status"`
	Note        string `json:"note"`
	Correction  bool   `json:"correction"`
}

func (s *server) changeWorkflow(c *gin.Context) {
	var body workflowBody
	if !bind(c, &body) {
		return
	}
	id := c.Param("id")
	sub, err := s.svc.Submissions.ChangeWorkflow(c.Request.Context(), primary.ChangeWorkflowRequest{
		SubmissionID: id,
		TargetStage:  body.TargetStage,
		Status:       body.Status,
		Note:         body.Note,
		Correction:   body.Correction,
	})
	if err != nil {
		abort(c, err)
		return
	}
	done(c, http.StatusOK, id, fmt.Sprintf("Submission is at %s (%s)", sub.Stage, sub.Status), nil)
}

// ============================================================================
// Review rounds
// ============================================================================

func (s *server) listRounds(c *gin.Context) {
	rounds, err := s.svc.Rounds.ListRounds(c.Request.Context(), c.Param("id"), c.Query("stage"))
	reply(c, rounds, err)
}

func (s *server) nextRoundNumber(c *gin.Context) {
	n, err := s.svc.Rounds.NextRoundNumber(c.Request.Context(), c.Param("id"), c.DefaultQuery("stage", "review"))
	reply(c, gin.H{"round": n}, err)
}

type createRoundBody struct {
	Stage        string `json:"stage"`
	Round        int    `json:"round"`
	ReviewFormID string `json:"review_form_id"`
	Notes        string `json:"notes"`
}

func (s *server) createRound(c *gin.Context) {
	var body createRoundBody
	if !bind(c, &body) {
		return
	}
	resp, err := s.svc.Rounds.CreateRound(c.Request.Context(), primary.CreateRoundRequest{
		SubmissionID: c.Param("id"),
		Stage:        body.Stage,
		Round:        body.Round,
		ReviewFormID: body.ReviewFormID,
		Notes:        body.Notes,
	})
	if err != nil {
		abort(c, err)
		return
	}
	done(c, http.StatusCreated, resp.RoundID, fmt.Sprintf("Review round %d opened", resp.Round.Round), nil)
}

func (s *server) closeRound(c *gin.Context) {
	id := c.Param("id")
	err := s.svc.Rounds.CloseRound(c.Request.Context(), id)
	done(c, http.StatusOK, id, "Review round closed", err)
}

// ============================================================================
// Reviewer assignments (editor side)
// ============================================================================

type assignReviewerBody struct {
	Stage           string `json:"stage"`
	RoundID         string `json:"round_id"`
	ReviewerID      string `json:"reviewer_id"`
	DueDate         string `json:"due_date"`
	ResponseDueDate string `json:"response_due_date"`
	ReviewMethod    string `json:"review_method"`
	PersonalMessage string `json:"personal_message"`
}

func (s *server) assignReviewer(c *gin.Context) {
	var body assignReviewerBody
	if !bind(c, &body) {
		return
	}
	resp, err := s.svc.Assignments.AssignReviewer(c.Request.Context(), primary.AssignReviewerRequest{
		SubmissionID:    c.Param("id"),
		Stage:           body.Stage,
		RoundID:         body.RoundID,
		ReviewerID:      body.ReviewerID,
		DueDate:         body.DueDate,
		ResponseDueDate: body.ResponseDueDate,
		ReviewMethod:    body.ReviewMethod,
		PersonalMessage: body.PersonalMessage,
	})
	if err != nil {
		abort(c, err)
		return
	}
	done(c, http.StatusCreated, resp.AssignmentID, "Reviewer assigned", nil)
}

type updateAssignmentBody struct {
	DueDate         *string `json:"due_date"`
	ResponseDueDate *string `json:"response_due_date"`
	PersonalMessage *string `json:"personal_message"`
}

func (s *server) updateAssignment(c *gin.Context) {
	var body updateAssignmentBody
	if !bind(c, &body) {
		return
	}
	id := c.Param("id")
	err := s.svc.Assignments.UpdateAssignment(c.Request.Context(), primary.UpdateAssignmentRequest{
		AssignmentID:    id,
		DueDate:         body.DueDate,
		ResponseDueDate: body.ResponseDueDate,
		PersonalMessage: body.PersonalMessage,
	})
	done(c, http.StatusOK, id, "Review assignment updated", err)
}

func (s *server) removeAssignment(c *gin.Context) {
	force, ok := queryBool(c, "force")
	if !ok {
		return
	}
	id := c.Param("id")
	err := s.svc.Assignments.RemoveAssignment(c.Request.Context(), primary.RemoveAssignmentRequest{AssignmentID: id, Force: force})
	done(c, http.StatusOK, id, "Review assignment removed", err)
}

// ============================================================================
// Participants
// ============================================================================

type participantBody struct {
	UserID            string `json:"user_id"`
	Role              string `json:"role"`
	Stage             string `json:"stage"`
	RecommendOnly     bool   `json:"recommend_only"`
	CanChangeMetadata bool   `json:"can_change_metadata"`
}

func (b participantBody) request(submissionID string) primary.ParticipantRequest {
	return primary.ParticipantRequest{SubmissionID: submissionID, UserID: b.UserID, Role: b.Role, Stage: b.Stage}
}

func (s *server) listParticipants(c *gin.Context) {
	list, err := s.svc.Participants.ListParticipants(c.Request.Context(), c.Param("id"))
	reply(c, list, err)
}

func (s *server) assignParticipant(c *gin.Context) {
	var body participantBody
	if !bind(c, &body) {
		return
	}
	p, err := s.svc.Participants.AssignParticipant(c.Request.Context(), body.request(c.Param("id")))
	if err != nil {
		abort(c, err)
		return
	}
	done(c, http.StatusOK, p.ID, fmt.Sprintf("%s assigned as %s", p.UserID, p.Role), nil)
}

func (s *server) removeParticipant(c *gin.Context) {
	var body participantBody
	if !bind(c, &body) {
		return
	}
	err := s.svc.Participants.RemoveParticipant(c.Request.Context(), body.request(c.Param("id")))
	done(c, http.StatusOK, "", "Participant removed", err)
}

func (s *server) updatePermissions(c *gin.Context) {
	var body participantBody
	if !bind(c, &body) {
		return
	}
	err := s.svc.Participants.UpdateParticipantPermissions(c.Request.Context(), primary.ParticipantPermissionsRequest{
		ParticipantRequest: body.request(c.Param("id")),
		RecommendOnly:      body.RecommendOnly,
		CanChangeMetadata:  body.CanChangeMetadata,
	})
	done(c, http.StatusOK, "", "Participant permissions updated", err)
}

// ============================================================================
// Activity and tasks
// ============================================================================

func (s *server) listActivity(c *gin.Context) {
	limit, ok := queryInt(c, "limit")
	if !ok {
		return
	}
	entries, err := s.svc.Ledger.ListActivity(c.Request.Context(), c.Param("id"), limit)
	reply(c, entries, err)
}

type activityBody struct {
	Category string `json:"category"`
	Message  string `json:"message"`
}

func (s *server) logActivity(c *gin.Context) {
	var body activityBody
	if !bind(c, &body) {
		return
	}
	entry, err := s.svc.Ledger.LogActivity(c.Request.Context(), primary.LogActivityRequest{
		SubmissionID: c.Param("id"),
		Category:     body.Category,
		Message:      body.Message,
	})
	if err != nil {
		abort(c, err)
		return
	}
	done(c, http.StatusCreated, entry.ID, "Activity logged", nil)
}

func (s *server) listTasks(c *gin.Context) {
	unassigned, ok := queryBool(c, "unassigned")
	if !ok {
		return
	}
	limit, ok := queryInt(c, "limit")
	if !ok {
		return
	}
	tasks, err := s.svc.Ledger.ListTasks(c.Request.Context(), primary.ListTasksRequest{
		SubmissionID: c.Query("submission_id"),
		JournalID:    c.Query("journal_id"),
		AssigneeID:   c.Query("assignee_id"),
		Unassigned:   unassigned,
		Status:       c.Query("status"),
		Limit:        limit,
	})
	reply(c, tasks, err)
}

type createTaskBody struct {
	SubmissionID string `json:"submission_id"`
	Stage        string `json:"stage"`
	Title        string `json:"title"`
	AssigneeID   string `json:"assignee_id"`
	DueDate      string `json:"due_date"`
}

func (s *server) createTask(c *gin.Context) {
	var body createTaskBody
	if !bind(c, &body) {
		return
	}
	task, err := s.svc.Ledger.CreateTask(c.Request.Context(), primary.CreateTaskRequest(body))
	if err != nil {
		abort(c, err)
		return
	}
	done(c, http.StatusCreated, task.ID, "Task created", nil)
}

func (s *server) claimTask(c *gin.Context) {
	id := c.Param("id")
	done(c, http.StatusOK, id, "Task claimed", s.svc.Ledger.ClaimTask(c.Request.Context(), id))
}

func (s *server) closeTask(c *gin.Context) {
	id := c.Param("id")
	done(c, http.StatusOK, id, "Task closed", s.svc.Ledger.CloseTask(c.Request.Context(), id))
}

// ============================================================================
// Review forms
// ============================================================================

type createFormBody struct {
	JournalID string                       `json:"journal_id"`
	Title     string                       `json:"title"`
	Questions []primary.ReviewFormQuestion `json:"questions"`
}

func (s *server) listForms(c *gin.Context) {
	forms, err := s.svc.Forms.ListForms(c.Request.Context())
	reply(c, forms, err)
}

func (s *server) createForm(c *gin.Context) {
	var body createFormBody
	if !bind(c, &body) {
		return
	}
	form, err := s.svc.Forms.CreateForm(c.Request.Context(), primary.CreateReviewFormRequest(body))
	if err != nil {
		abort(c, err)
		return
	}
	done(c, http.StatusCreated, form.ID, fmt.Sprintf("Review form %q created", strings.TrimSpace(form.Title)), nil)
}

func (s *server) getForm(c *gin.Context) {
	form, err := s.svc.Forms.GetForm(c.Request.Context(), c.Param("id"))
	reply(c, form, err)
}
