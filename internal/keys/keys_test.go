package keys

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

func press(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestDefaultKeyMap_Bindings(t *testing.T) {
	k := DefaultKeyMap()

	tests := []struct {
		key     string
		binding key.Binding
	}{
		{"n", k.New},
		{"e", k.Edit},
		{"x", k.Done},
		{"d", k.Delete},
		{"a", k.Archive},
		{"g", k.Groups},
		{"s", k.CycleSort},
		{"/", k.Search},
		{"L", k.ToggleLanguage},
		{"?", k.Help},
		{"q", k.Quit},
		{"c", k.Complete},
		{"u", k.CutOff},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.True(t, key.Matches(press(tt.key), tt.binding))
		})
	}
}

func TestFullHelp_CoversEveryAction(t *testing.T) {
	k := DefaultKeyMap()
	var n int
	for _, group := range k.FullHelp() {
		n += len(group)
	}
	assert.Equal(t, 22, n)
}
