package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nhle/planit/internal/model"
	"github.com/nhle/planit/internal/recurrence"
)

func TestEveryKeyHasBothLanguages(t *testing.T) {
	for key, pair := range texts {
		assert.NotEmpty(t, pair[0], "english text for %s", key)
		assert.NotEmpty(t, pair[1], "german text for %s", key)
	}
}

func TestCatalog_T(t *testing.T) {
	c := New(model.LanguageEnglish)
	assert.Equal(t, "Task added successfully!", c.T(TaskCreated))
	assert.Equal(t, "Task deleted: Gym", c.T(TaskDeleted, "Gym"))
	assert.Equal(t, "no_such_key", c.T("no_such_key"))

	c.SetLanguage(model.LanguageGerman)
	assert.Equal(t, model.LanguageGerman, c.Language())
	assert.Equal(t, "Aufgabe gelöscht: Gym", c.T(TaskDeleted, "Gym"))
}

func TestNew_UnknownLanguageFallsBackToEnglish(t *testing.T) {
	c := New("fr")
	assert.Equal(t, model.LanguageEnglish, c.Language())
	assert.Equal(t, "Goodbye!", c.T(Goodbye))
}

func TestLabels(t *testing.T) {
	c := New(model.LanguageGerman)
	assert.Equal(t, "Hoch", c.Priority(model.PriorityHigh))
	assert.Equal(t, "Keine", c.Priority(""))
	assert.Equal(t, "Wöchentlich", c.Frequency(recurrence.Weekly))
	assert.Equal(t, "Keine Wiederholung", c.Frequency(recurrence.None))
}
