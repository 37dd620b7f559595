// Package views renders controller state into the view models the browser
// draws. Views carry data only; styling is left to the client.
package views

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/AnshRaj112/aura-backend/internal/controller"
	"github.com/AnshRaj112/aura-backend/internal/models"
	"github.com/AnshRaj112/aura-backend/internal/theme"
)

// wordsPerMinute is the reading speed behind readTime.
const wordsPerMinute = 200

// Screen is the rendered current view. Exactly one of the view fields is set,
// or none while the session check is still loading.
type Screen struct {
	View      models.AppView `json:"view"`
	Loading   bool           `json:"loading"`
	Landing   *Landing       `json:"landing,omitempty"`
	Auth      *Auth          `json:"auth,omitempty"`
	Dashboard *Dashboard     `json:"dashboard,omitempty"`
	Editor    *Editor        `json:"editor,omitempty"`
}

type Landing struct {
	Title    string   `json:"title"`
	Tagline  string   `json:"tagline"`
	Features []string `json:"features"`
	Action   string   `json:"action"`
}

type Auth struct {
	Error string `json:"error,omitempty"`
}

type Dashboard struct {
	User    models.User `json:"user"`
	Query   string      `json:"query,omitempty"`
	Total   int         `json:"total"`
	Entries []Card      `json:"entries"`
	// Empty is shown when no entry matches.
	Empty string `json:"empty,omitempty"`
}

// Card is one entry on the dashboard.
type Card struct {
	Entry    models.JournalEntry `json:"entry"`
	Theme    theme.Theme         `json:"theme"`
	Palette  theme.Palette       `json:"palette"`
	ReadTime string              `json:"readTime"`
}

type Editor struct {
	Mode       string           `json:"mode"`
	Draft      controller.Draft `json:"draft"`
	Theme      theme.Theme      `json:"theme"`
	Palette    theme.Palette    `json:"palette"`
	Words      int              `json:"words"`
	Chars      int              `json:"chars"`
	CanSave    bool             `json:"canSave"`
	CanAnalyze bool             `json:"canAnalyze"`
}

const (
	ModeNew  = "new"
	ModeEdit = "edit"
)

// Render picks the view model for s.
func Render(s controller.State) Screen {
	screen := Screen{View: s.View}
	if s.IsLoading {
		screen.Loading = true
		return screen
	}

	switch s.View {
	case models.ViewAuth:
		screen.Auth = &Auth{Error: s.AuthError}
	case models.ViewDashboard:
		if s.User != nil {
			d := RenderDashboard(*s.User, s.Entries, s.Query)
			screen.Dashboard = &d
		}
	case models.ViewEditor:
		e := RenderEditor(s.Draft)
		screen.Editor = &e
	default:
		screen.View = models.ViewLanding
		screen.Landing = RenderLanding()
	}
	return screen
}

func RenderLanding() *Landing {
	return &Landing{
		Title:   "Aura Journal",
		Tagline: "Write down your thoughts, capture your moods, and reflect on your journey.",
		Features: []string{
			"Your thoughts are yours alone.",
			"AI insights summarize entries and name your mood.",
			"A distraction-free space for mindful writing.",
		},
		Action: "Start Your Reflection",
	}
}

// RenderDashboard lists the entries matching query in their fetch order.
func RenderDashboard(user models.User, entries []models.JournalEntry, query string) Dashboard {
	matched := controller.Filter(entries, query)
	d := Dashboard{
		User:    user,
		Query:   query,
		Total:   len(entries),
		Entries: make([]Card, 0, len(matched)),
	}
	for _, e := range matched {
		d.Entries = append(d.Entries, Card{
			Entry:    e,
			Theme:    theme.Resolve(e.Mood),
			Palette:  theme.PaletteFor(e.Mood),
			ReadTime: ReadTime(e.Content),
		})
	}
	if len(d.Entries) == 0 {
		if query != "" {
			d.Empty = "No reflections match your search."
		} else {
			d.Empty = "The page is empty, but your mind is full."
		}
	}
	return d
}

// RenderEditor derives counts and actions from the draft.
func RenderEditor(d controller.Draft) Editor {
	mode := ModeNew
	if d.Entry != nil {
		mode = ModeEdit
	}
	hasContent := strings.TrimSpace(d.Content) != ""
	return Editor{
		Mode:       mode,
		Draft:      d,
		Theme:      theme.Resolve(d.Mood),
		Palette:    theme.PaletteFor(d.Mood),
		Words:      WordCount(d.Content),
		Chars:      utf8.RuneCountInString(d.Content),
		CanSave:    strings.TrimSpace(d.Title) != "" && hasContent,
		CanAnalyze: hasContent,
	}
}

// WordCount counts whitespace-separated words.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// ReadTime estimates reading time at 200 words per minute, never below one minute.
func ReadTime(text string) string {
	minutes := int(math.Ceil(float64(WordCount(text)) / wordsPerMinute))
	if minutes < 1 {
		minutes = 1
	}
	return fmt.Sprintf("%d min read", minutes)
}
