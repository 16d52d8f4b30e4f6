package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnalysisStatusValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status AnalysisStatus
		want   string
	}{
		{AnalysisStatusPending, "PENDING"},
		{AnalysisStatusProcessing, "PROCESSING"},
		{AnalysisStatusCompleted, "COMPLETED"},
		{AnalysisStatusFailed, "FAILED"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, string(tt.status))
		})
	}
}

func TestCategoryValid(t *testing.T) {
	t.Parallel()

	for _, c := range []Category{CategoryExcellent, CategoryGood, CategoryAverage, CategoryPoor, CategoryCritical} {
		assert.True(t, c.Valid(), string(c))
	}
	assert.False(t, Category("MEDIOCRE").Valid())
	assert.False(t, Category("").Valid())
}

func TestMessageTypeRecipient(t *testing.T) {
	t.Parallel()

	tests := []struct {
		typ  MessageType
		want string
	}{
		{MessageTypeSupplier, "Fournisseurs"},
		{MessageTypeBuyer, "Acheteurs"},
		{MessageTypeManagement, "Direction"},
	}

	for _, tt := range tests {
		t.Run(string(tt.typ), func(t *testing.T) {
			t.Parallel()
			assert.True(t, tt.typ.Valid())
			assert.Equal(t, tt.want, tt.typ.Recipient())
		})
	}

	assert.False(t, MessageType("INTERN").Valid())
	assert.Empty(t, MessageType("INTERN").Recipient())
}
