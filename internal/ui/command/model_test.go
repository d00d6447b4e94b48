package command

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/planit/internal/i18n"
	"github.com/nhle/planit/internal/model"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input string
		want  CommandMsg
	}{
		{"refresh", CommandMsg{Kind: Refresh}},
		{"  Reload ", CommandMsg{Kind: Refresh}},
		{"today", CommandMsg{Kind: Today}},
		{"clear", CommandMsg{Kind: ClearCompleted}},
		{"groups", CommandMsg{Kind: Groups}},
		{"lang", CommandMsg{Kind: Language}},
		{"lang DE", CommandMsg{Kind: Language, Language: model.LanguageGerman}},
		{"mode both", CommandMsg{Kind: Dashboard, DashboardMode: model.DashboardBoth}},
		{"q", CommandMsg{Kind: Quit}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_Errors(t *testing.T) {
	for _, input := range []string{"", "launch", "lang fr", "mode pie", "today now", "lang en de"} {
		_, err := Parse(input)
		assert.Error(t, err, input)
	}
}

func TestEnterEmitsCommand(t *testing.T) {
	m := New(i18n.New(model.LanguageEnglish), 80, 24)
	m.input.SetValue("mode percentages")

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, CommandMsg{Kind: Dashboard, DashboardMode: model.DashboardPercentages}, cmd())
	assert.Empty(t, m.input.Value())

	m.input.SetValue("bogus")
	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.IsType(t, ErrorMsg{}, cmd())
}

func TestEnterOnEmptyInput(t *testing.T) {
	m := New(i18n.New(model.LanguageEnglish), 80, 24)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
}
