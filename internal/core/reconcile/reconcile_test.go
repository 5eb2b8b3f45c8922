package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/cobalt/internal/core/model"
)

var fields = []string{"Google_Rating__c", "Google_Place_ID__c"}

func TestCollectEmitsOnlyRealChanges(t *testing.T) {
	original := []model.Record{
		{"Id": "a1", "Google_Rating__c": nil},
		{"Id": "a2", "Google_Rating__c": 4.0, "Google_Place_ID__c": "pid-2"},
		{"Id": "a3", "Google_Rating__c": 3.0},
	}
	enriched := []model.Record{
		{"Id": "a1", "Google_Rating__c": 4.5, "Google_Place_ID__c": "pid-1"},
		{"Id": "a2", "Google_Rating__c": 4.0, "Google_Place_ID__c": "pid-2"}, // unchanged
		{"Id": "a3", "Google_Rating__c": 3.5},
	}

	diffs := Collect(original, enriched, fields)
	require.Len(t, diffs, 2)

	assert.Equal(t, "a1", diffs[0].ID)
	assert.Equal(t, []string{"Google_Place_ID__c", "Google_Rating__c"}, diffs[0].ChangedFields())
	assert.Equal(t, "a3", diffs[1].ID)
	assert.Equal(t, map[string]any{"Google_Rating__c": 3.5}, diffs[1].NewValues())
}

func TestCollectRejectsEmptyNewValues(t *testing.T) {
	original := []model.Record{{"Id": "a1", "Google_Rating__c": 4.0}}
	enriched := []model.Record{{"Id": "a1", "Google_Rating__c": "", "Google_Place_ID__c": nil}}

	assert.Empty(t, Collect(original, enriched, fields))
}

func TestCollectComparesStringwise(t *testing.T) {
	// 4 (number) vs "4" (string) must not count as a change.
	original := []model.Record{{"Id": "a1", "Google_Rating__c": "4"}}
	enriched := []model.Record{{"Id": "a1", "Google_Rating__c": 4.0}}

	assert.Empty(t, Collect(original, enriched, fields))
}

func TestCollectIgnoresUnknownRecords(t *testing.T) {
	enriched := []model.Record{{"Id": "ghost", "Google_Rating__c": 5.0}}
	assert.Empty(t, Collect(nil, enriched, fields))
}

func TestCollectIsIdempotent(t *testing.T) {
	original := []model.Record{{"Id": "a1", "Google_Rating__c": 2.0}}
	enriched := []model.Record{{"Id": "a1", "Google_Rating__c": 4.5, "Google_Place_ID__c": "pid"}}

	first := Collect(original, enriched, fields)
	second := Collect(original, enriched, fields)
	assert.Equal(t, first, second)
}
