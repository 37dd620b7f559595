package models

// AppView is the screen the view controller is currently showing.
type AppView string

const (
	ViewLanding   AppView = "LANDING"
	ViewAuth      AppView = "AUTH"
	ViewDashboard AppView = "DASHBOARD"
	ViewEditor    AppView = "EDITOR"
	// ViewViewer is reserved; no transition leads to it.
	ViewViewer AppView = "VIEWER"
)
