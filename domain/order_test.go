package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMergeAnswers(t *testing.T) {
	existing := map[string]interface{}{
		"business_goal": "sell cakes",
		"colors":        []interface{}{"red"},
		"pages":         float64(3),
	}
	incoming := map[string]interface{}{
		"colors": []interface{}{"blue", "gold"},
		"logo":   "uploaded",
	}

	merged := MergeAnswers(existing, incoming)

	assert.Equal(t, "sell cakes", merged["business_goal"])
	assert.Equal(t, []interface{}{"blue", "gold"}, merged["colors"])
	assert.Equal(t, "uploaded", merged["logo"])
	assert.Equal(t, float64(3), merged["pages"])

	// inputs stay untouched
	assert.Equal(t, []interface{}{"red"}, existing["colors"])
	assert.Len(t, incoming, 2)
}

func TestMergeAnswersEmptyInputs(t *testing.T) {
	assert.Empty(t, MergeAnswers(nil, nil))
	assert.Equal(t, map[string]interface{}{"a": 1}, MergeAnswers(nil, map[string]interface{}{"a": 1}))
	assert.Equal(t, map[string]interface{}{"a": 1}, MergeAnswers(map[string]interface{}{"a": 1}, map[string]interface{}{}))
}

func TestOrderRevisionLimit(t *testing.T) {
	assert.Equal(t, DefaultMaxRevisions, (&Order{}).RevisionLimit())
	assert.Equal(t, 3, (&Order{MaxRevisions: 3}).RevisionLimit())

	order := &Order{MaxRevisions: 2, RevisionCount: 1}
	assert.Equal(t, 1, order.RevisionsRemaining())

	order.RevisionCount = 2
	assert.Equal(t, 0, order.RevisionsRemaining())
}

func TestOrderIsReviewable(t *testing.T) {
	for _, status := range []OrderStatus{StatusPaid, StatusBuilding, StatusRevision, StatusApproved, StatusDelivered} {
		assert.False(t, (&Order{Status: status}).IsReviewable(), string(status))
	}
	assert.True(t, (&Order{Status: StatusReview}).IsReviewable())
}

func TestReviewActionIsValid(t *testing.T) {
	assert.True(t, ActionApprove.IsValid())
	assert.True(t, ActionChanges.IsValid())
	assert.True(t, ActionFresh.IsValid())
	assert.False(t, ReviewAction("").IsValid())
	assert.False(t, ReviewAction("reject").IsValid())
}
