package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/example/editorial/internal/apperr"
)

func TestCollectorsCount(t *testing.T) {
	c := New()

	c.AssignmentTransition("accepted")
	c.AssignmentTransition("accepted")
	c.RoundCreated("review")
	c.OperationError("accept_assignment", apperr.New(apperr.ErrConflict, "lost race"))
	c.OperationError("accept_assignment", nil)
	c.ObserveQueue("my_queue", time.Now())

	assert.Equal(t, 2.0, testutil.ToFloat64(c.assignmentTransitions.WithLabelValues("accepted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.roundsCreated.WithLabelValues("review")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.operationErrors.WithLabelValues("accept_assignment", "conflict")))
	assert.Equal(t, 1, testutil.CollectAndCount(c.queueQuery))
}

func TestNilCollectorsAreSafe(t *testing.T) {
	var c *Collectors
	assert.NotPanics(t, func() {
		c.AssignmentTransition("accepted")
		c.RoundCreated("review")
		c.OperationError("x", apperr.New(apperr.ErrConflict, "x"))
		c.ObserveQueue("all_active", time.Now())
		_ = c.Handler()
	})
}
