package model

import (
	"fmt"
	"strings"
)

// Language selects the UI strings.
type Language string

const (
	LanguageEnglish Language = "en"
	LanguageGerman  Language = "de"
)

// ParseLanguage parses a language code. Empty input is English.
func ParseLanguage(s string) (Language, error) {
	switch l := Language(strings.ToLower(strings.TrimSpace(s))); l {
	case "":
		return LanguageEnglish, nil
	case LanguageEnglish, LanguageGerman:
		return l, nil
	}
	return "", fmt.Errorf("unknown language %q", s)
}

// Toggle switches between English and German.
func (l Language) Toggle() Language {
	if l == LanguageGerman {
		return LanguageEnglish
	}
	return LanguageGerman
}

// DashboardMode selects how the dashboard summary is rendered.
type DashboardMode string

const (
	DashboardCounts      DashboardMode = "counts"
	DashboardPercentages DashboardMode = "percentages"
	DashboardBoth        DashboardMode = "both"
)

// ParseDashboardMode parses a mode name. Empty input is counts.
func ParseDashboardMode(s string) (DashboardMode, error) {
	switch m := DashboardMode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return DashboardCounts, nil
	case DashboardCounts, DashboardPercentages, DashboardBoth:
		return m, nil
	}
	return "", fmt.Errorf("unknown dashboard mode %q", s)
}

// Next cycles counts, percentages, both.
func (m DashboardMode) Next() DashboardMode {
	switch m {
	case DashboardCounts:
		return DashboardPercentages
	case DashboardPercentages:
		return DashboardBoth
	default:
		return DashboardCounts
	}
}

// Settings holds user display preferences.
type Settings struct {
	Language      Language      `mapstructure:"language" yaml:"language"`
	DashboardMode DashboardMode `mapstructure:"dashboard_mode" yaml:"dashboard_mode"`
}
