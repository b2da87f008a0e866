package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/example/editorial/internal/ports/primary"
)

func (s *server) listOwnAssignments(c *gin.Context) {
	list, err := s.svc.Assignments.ListReviewerAssignments(c.Request.Context(), c.Query("status"))
	reply(c, list, err)
}

func (s *server) getAssignment(c *gin.Context) {
	a, err := s.svc.Assignments.GetAssignment(c.Request.Context(), c.Param("id"))
	reply(c, a, err)
}

type acceptBody struct {
	CompetingInterests string `json:"competing_interests"`
	PrivacyConsent     bool   `json:"privacy_consent"`
}

func (s *server) acceptAssignment(c *gin.Context) {
	var body acceptBody
	if !bind(c, &body) {
		return
	}
	id := c.Param("id")
	err := s.svc.Assignments.AcceptAssignment(c.Request.Context(), primary.AcceptAssignmentRequest{
		AssignmentID:       id,
		CompetingInterests: body.CompetingInterests,
		PrivacyConsent:     body.PrivacyConsent,
	})
	done(c, http.StatusOK, id, "Review request accepted", err)
}

type declineBody struct {
	Reason string `json:"reason"`
}

func (s *server) declineAssignment(c *gin.Context) {
	var body declineBody
	if !bind(c, &body) {
		return
	}
	id := c.Param("id")
	err := s.svc.Assignments.DeclineAssignment(c.Request.Context(), primary.DeclineAssignmentRequest{AssignmentID: id, Reason: body.Reason})
	done(c, http.StatusOK, id, "Review request declined", err)
}

type recommendationBody struct {
	Recommendation     string                 `json:"recommendation"`
	CommentsToAuthor   string                 `json:"comments_to_author"`
	CommentsToEditor   string                 `json:"comments_to_editor"`
	CompetingInterests string                 `json:"competing_interests"`
	FormResponses      []primary.FormResponse `json:"form_responses"`
}

func (b recommendationBody) request(id string) primary.RecommendationRequest {
	return primary.RecommendationRequest{
		AssignmentID:       id,
		Recommendation:     b.Recommendation,
		CommentsToAuthor:   b.CommentsToAuthor,
		CommentsToEditor:   b.CommentsToEditor,
		CompetingInterests: b.CompetingInterests,
		FormResponses:      b.FormResponses,
	}
}

func (s *server) saveDraft(c *gin.Context) {
	var body recommendationBody
	if !bind(c, &body) {
		return
	}
	id := c.Param("id")
	err := s.svc.Assignments.SaveDraftRecommendation(c.Request.Context(), body.request(id))
	done(c, http.StatusOK, id, "Draft saved", err)
}

func (s *server) submitRecommendation(c *gin.Context) {
	var body recommendationBody
	if !bind(c, &body) {
		return
	}
	id := c.Param("id")
	err := s.svc.Assignments.SubmitRecommendation(c.Request.Context(), body.request(id))
	done(c, http.StatusOK, id, "Review submitted", err)
}
