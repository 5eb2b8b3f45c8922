package crm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildSelectAlwaysLeadsWithID(t *testing.T) {
	q := BuildSelect("Account", []string{"Name", "Website"}, nil)
	assert.Equal(t, "SELECT Id, Name, Website FROM Account", q)
}

func TestBuildSelectDeduplicatesID(t *testing.T) {
	q := BuildSelect("Account", []string{"Id", "Name", "Name"}, nil)
	assert.Equal(t, "SELECT Id, Name FROM Account", q)
}

func TestBuildSelectWithIDBatch(t *testing.T) {
	q := BuildSelect("Account", []string{"Name"}, []string{"a1", "a2"})
	assert.Equal(t, "SELECT Id, Name FROM Account WHERE Id IN ('a1', 'a2')", q)
}

func TestBuildIDSelect(t *testing.T) {
	assert.Equal(t, "SELECT Id FROM Account LIMIT 10", BuildIDSelect("Account", 10))
	assert.Equal(t, "SELECT Id FROM Account", BuildIDSelect("Account", 0))
}

func TestBuildChildSelect(t *testing.T) {
	q := BuildChildSelect("Opportunity", "AccountId", []string{"a1"})
	assert.Equal(t, "SELECT Id FROM Opportunity WHERE AccountId IN ('a1')", q)
}

func TestQuoteIDsEscapesQuotes(t *testing.T) {
	q := BuildChildSelect("Note", "ParentId", []string{"a'1"})
	assert.Contains(t, q, `'a\'1'`)
}
