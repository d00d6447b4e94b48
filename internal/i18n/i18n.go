// Package i18n holds the English and German user-facing strings.
package i18n

import (
	"fmt"

	"github.com/nhle/planit/internal/model"
)

// Message keys.
const (
	AppTitle        = "app_title"
	Goodbye         = "goodbye"
	NoTasks         = "no_tasks"
	NoMatchingTasks = "no_matching_tasks"
	Loading         = "loading"
	ErrorPrefix     = "error_prefix"

	TaskCreated     = "task_created"
	TaskUpdated     = "task_updated"
	TaskDeleted     = "task_deleted"
	TaskDone        = "task_done"
	TaskArchived    = "task_archived"
	CompletedClear  = "completed_cleared"
	OccurrenceDone  = "occurrence_done"
	OccurrenceSkip  = "occurrence_excluded"
	SeriesCutOff    = "series_cut_off"
	LanguageChanged = "language_changed"
	SortedBy        = "sorted_by"
	SearchPrompt    = "search_prompt"

	NewTask        = "new_task"
	EditTask       = "edit_task"
	FieldTitle     = "field_title"
	FieldDeadline  = "field_deadline"
	FieldPriority  = "field_priority"
	FieldGroup     = "field_group"
	FieldTime      = "field_time"
	FieldRepeat    = "field_repeat"
	FieldInterval  = "field_interval"
	FieldWeekdays  = "field_weekdays"
	FieldStart     = "field_start"
	FieldUntil     = "field_until"
	TitlePrompt    = "title_prompt"
	DatePrompt     = "date_prompt"
	TimePrompt     = "time_prompt"
	NoGroup        = "no_group"
	Required       = "required"
	InvalidDate    = "invalid_date"
	InvalidNumber  = "invalid_number"
	PriorityHigh   = "priority_high"
	PriorityMedium = "priority_medium"
	PriorityLow    = "priority_low"
	PriorityNone   = "priority_none"

	RepeatNone    = "repeat_none"
	RepeatDaily   = "repeat_daily"
	RepeatWeekly  = "repeat_weekly"
	RepeatMonthly = "repeat_monthly"
	RepeatYearly  = "repeat_yearly"
	RepeatCustom  = "repeat_custom"

	Overdue     = "overdue"
	Due         = "due"
	Next        = "next"
	Done        = "done"
	Open        = "open"
	DueToday    = "due_today"
	Total       = "total"
	Upcoming    = "upcoming"
	NoUpcoming  = "no_upcoming"
	Completed   = "completed"
	Created     = "created"
	Repeats     = "repeats"
	Until       = "until"
	Excluded    = "excluded"
	TableTitle  = "table_title"
	TableStatus = "table_status"

	Groups        = "groups"
	NoGroups      = "no_groups"
	GroupName     = "group_name"
	GroupSaved    = "group_saved"
	GroupDeleted  = "group_deleted"
	ConfirmDelete = "confirm_delete"
	GroupKeepTask = "group_keep_tasks"
	Yes           = "yes"
	Cancel        = "cancel"

	HelpTitle    = "help_title"
	CommandTitle = "command_title"
	CommandHint  = "command_hint"
	UnknownCmd   = "unknown_command"

	HintList    = "hint_list"
	HintDetail  = "hint_detail"
	HintForm    = "hint_form"
	HintGroups  = "hint_groups"
	HintHelp    = "hint_help"
	HintCommand = "hint_command"
)

// texts maps a key to its English and German text.
var texts = map[string][2]string{
	AppTitle:        {"planit", "planit"},
	Goodbye:         {"Goodbye!", "Auf Wiedersehen!"},
	NoTasks:         {"No tasks found.\n\nPress n to add one.", "Keine Aufgaben gefunden.\n\nDrücke n, um eine hinzuzufügen."},
	NoMatchingTasks: {"No matching tasks.", "Keine passenden Aufgaben."},
	Loading:         {"Loading...", "Wird geladen..."},
	ErrorPrefix:     {"Error: %v", "Fehler: %v"},

	TaskCreated:     {"Task added successfully!", "Aufgabe erfolgreich hinzugefügt!"},
	TaskUpdated:     {"Task updated successfully!", "Aufgabe erfolgreich aktualisiert!"},
	TaskDeleted:     {"Task deleted: %s", "Aufgabe gelöscht: %s"},
	TaskDone:        {"Task marked as done!", "Aufgabe als erledigt markiert!"},
	TaskArchived:    {"Task archived: %s", "Aufgabe archiviert: %s"},
	CompletedClear:  {"%d completed tasks removed.", "%d erledigte Aufgaben entfernt."},
	OccurrenceDone:  {"Occurrence on %s completed.", "Termin am %s erledigt."},
	OccurrenceSkip:  {"Occurrence on %s skipped.", "Termin am %s übersprungen."},
	SeriesCutOff:    {"Series ends before %s.", "Serie endet vor dem %s."},
	LanguageChanged: {"Language switched to English.", "Sprache auf Deutsch umgestellt."},
	SortedBy:        {"sorted by %s", "sortiert nach %s"},
	SearchPrompt:    {"search tasks...", "Aufgaben suchen..."},

	NewTask:        {"New Task", "Neue Aufgabe"},
	EditTask:       {"Edit Task", "Aufgabe bearbeiten"},
	FieldTitle:     {"Title", "Titel"},
	FieldDeadline:  {"Deadline", "Fälligkeitsdatum"},
	FieldPriority:  {"Priority", "Priorität"},
	FieldGroup:     {"Group", "Gruppe"},
	FieldTime:      {"Time", "Uhrzeit"},
	FieldRepeat:    {"Repeat", "Wiederholung"},
	FieldInterval:  {"Every", "Alle"},
	FieldWeekdays:  {"Weekdays", "Wochentage"},
	FieldStart:     {"Start date", "Startdatum"},
	FieldUntil:     {"Repeat until", "Wiederholen bis"},
	TitlePrompt:    {"What needs to be done?", "Was ist zu tun?"},
	DatePrompt:     {"YYYY-MM-DD (optional)", "JJJJ-MM-TT (optional)"},
	TimePrompt:     {"HH:MM (optional)", "HH:MM (optional)"},
	NoGroup:        {"No group", "Keine Gruppe"},
	Required:       {"%s is required", "%s ist erforderlich"},
	InvalidDate:    {"Invalid date format, use YYYY-MM-DD", "Ungültiges Datumsformat, bitte JJJJ-MM-TT"},
	InvalidNumber:  {"Please enter a valid number!", "Bitte gib eine gültige Zahl ein!"},
	PriorityHigh:   {"High", "Hoch"},
	PriorityMedium: {"Medium", "Mittel"},
	PriorityLow:    {"Low", "Niedrig"},
	PriorityNone:   {"None", "Keine"},

	RepeatNone:    {"Does not repeat", "Keine Wiederholung"},
	RepeatDaily:   {"Daily", "Täglich"},
	RepeatWeekly:  {"Weekly", "Wöchentlich"},
	RepeatMonthly: {"Monthly", "Monatlich"},
	RepeatYearly:  {"Yearly", "Jährlich"},
	RepeatCustom:  {"Custom", "Benutzerdefiniert"},

	Overdue:     {"OVERDUE", "ÜBERFÄLLIG"},
	Due:         {"Due", "Fällig"},
	Next:        {"Next", "Nächster"},
	Done:        {"Done", "Erledigt"},
	Open:        {"Open", "Offen"},
	DueToday:    {"Today", "Heute"},
	Total:       {"Total", "Gesamt"},
	Upcoming:    {"Upcoming occurrences", "Anstehende Termine"},
	NoUpcoming:  {"No upcoming occurrences.", "Keine anstehenden Termine."},
	Completed:   {"completed", "erledigt"},
	Created:     {"Created", "Erstellt"},
	Repeats:     {"Repeats", "Wiederholt"},
	Until:       {"Until", "Bis"},
	Excluded:    {"Skipped", "Übersprungen"},
	TableTitle:  {"Task", "Aufgabe"},
	TableStatus: {"Status", "Status"},

	Groups:        {"Groups", "Gruppen"},
	NoGroups:      {"No groups yet. Press n to create one.", "Noch keine Gruppen. Drücke n, um eine anzulegen."},
	GroupName:     {"Name", "Name"},
	GroupSaved:    {"Group saved", "Gruppe gespeichert"},
	GroupDeleted:  {"Group deleted", "Gruppe gelöscht"},
	ConfirmDelete: {"Delete %q?", "%q löschen?"},
	GroupKeepTask: {"Tasks in this group stay, without a group.", "Aufgaben dieser Gruppe bleiben ohne Gruppe erhalten."},
	Yes:           {"Yes, delete", "Ja, löschen"},
	Cancel:        {"Cancel", "Abbrechen"},

	HelpTitle:    {"Keyboard Shortcuts", "Tastenkürzel"},
	CommandTitle: {"Command Palette", "Befehlspalette"},
	CommandHint:  {"type a command...", "Befehl eingeben..."},
	UnknownCmd:   {"Unknown command: %s", "Unbekannter Befehl: %s"},

	HintList:    {"q quit | ? help | n new | x done | enter detail | g groups | s sort | / search", "q beenden | ? Hilfe | n neu | x erledigt | enter Details | g Gruppen | s sortieren | / suchen"},
	HintDetail:  {"esc back | c complete | x skip | u end series | j/k move", "esc zurück | c erledigen | x überspringen | u Serie beenden | j/k bewegen"},
	HintForm:    {"enter submit | esc cancel", "enter speichern | esc abbrechen"},
	HintGroups:  {"n new | e rename | d delete | esc back", "n neu | e umbenennen | d löschen | esc zurück"},
	HintHelp:    {"? close help | esc back", "? Hilfe schließen | esc zurück"},
	HintCommand: {"refresh | today | clear | groups | lang en|de | mode counts|percentages|both | quit", "refresh | today | clear | groups | lang en|de | mode counts|percentages|both | quit"},
}

// Catalog looks up messages in one language.
type Catalog struct {
	lang model.Language
}

// New returns a catalog for lang. Unknown languages fall back to English.
func New(lang model.Language) *Catalog {
	c := &Catalog{}
	c.SetLanguage(lang)
	return c
}

func (c *Catalog) Language() model.Language { return c.lang }

func (c *Catalog) SetLanguage(lang model.Language) {
	if lang != model.LanguageGerman {
		lang = model.LanguageEnglish
	}
	c.lang = lang
}

// T returns the message for key, formatted with args when given. A missing
// key is returned unchanged.
func (c *Catalog) T(key string, args ...any) string {
	pair, ok := texts[key]
	if !ok {
		return key
	}
	s := pair[0]
	if c.lang == model.LanguageGerman {
		s = pair[1]
	}
	if len(args) > 0 {
		return fmt.Sprintf(s, args...)
	}
	return s
}
