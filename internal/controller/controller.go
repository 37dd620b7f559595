// Package controller holds the per-client view state machine: which screen is
// shown, the signed-in user, the loaded entries and the editor draft.
package controller

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/AnshRaj112/aura-backend/internal/logger"
	"github.com/AnshRaj112/aura-backend/internal/models"
)

const (
	DefaultStoreTimeout    = 5 * time.Second
	DefaultAnalysisTimeout = 20 * time.Second
)

// Options configures a Controller.
type Options struct {
	Identity        models.Identity
	Entries         models.EntryStore
	Analyzer        models.Analyzer
	Log             *logger.Logger
	StoreTimeout    time.Duration
	AnalysisTimeout time.Duration
	// Now defaults to time.Now.
	Now func() time.Time
}

// Draft is the editor's in-progress state. Advice only ever lives here.
type Draft struct {
	Entry   *models.JournalEntry `json:"entry,omitempty"`
	Title   string               `json:"title"`
	Content string               `json:"content"`
	Mood    string               `json:"mood,omitempty"`
	Summary string               `json:"summary,omitempty"`
	Advice  string               `json:"advice,omitempty"`
}

// State is a snapshot of a controller.
type State struct {
	User         *models.User          `json:"user,omitempty"`
	View         models.AppView        `json:"view"`
	Entries      []models.JournalEntry `json:"entries"`
	CurrentEntry *models.JournalEntry  `json:"currentEntry,omitempty"`
	IsLoading    bool                  `json:"isLoading"`
	Draft        Draft                 `json:"draft"`
	Query        string                `json:"query,omitempty"`
	AuthError    string                `json:"authError,omitempty"`
}

// Controller is the view state machine of one client. Every operation holds
// the controller's lock until it returns, so intents from the same client are
// applied one at a time.
type Controller struct {
	identity        models.Identity
	entries         models.EntryStore
	analyzer        models.Analyzer
	log             *logger.Logger
	storeTimeout    time.Duration
	analysisTimeout time.Duration
	now             func() time.Time

	mu      sync.Mutex
	state   State
	started bool

	subMu  sync.Mutex
	subs   map[int]chan State
	nextID int
}

// New creates a controller on the LANDING view with isLoading set. Call Start
// to resolve the existing session.
func New(opts Options) *Controller {
	if opts.StoreTimeout <= 0 {
		opts.StoreTimeout = DefaultStoreTimeout
	}
	if opts.AnalysisTimeout <= 0 {
		opts.AnalysisTimeout = DefaultAnalysisTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Log == nil {
		opts.Log = logger.Nop()
	}

	return &Controller{
		identity:        opts.Identity,
		entries:         opts.Entries,
		analyzer:        opts.Analyzer,
		log:             opts.Log,
		storeTimeout:    opts.StoreTimeout,
		analysisTimeout: opts.AnalysisTimeout,
		now:             opts.Now,
		state: State{
			View:      models.ViewLanding,
			Entries:   []models.JournalEntry{},
			IsLoading: true,
		},
		subs: make(map[int]chan State),
	}
}

// Start asks the identity provider for an existing session once. With a user
// the entries are loaded and the dashboard shown; otherwise the landing view
// stays. isLoading is cleared in every case. Later calls are no-ops.
func (c *Controller) Start(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.start(ctx)
}

func (c *Controller) start(ctx context.Context) {
	if c.started {
		return
	}
	c.started = true
	defer c.publish()

	ictx, cancel := context.WithTimeout(ctx, c.storeTimeout)
	user, err := c.identity.CurrentUser(ictx)
	cancel()

	c.state.IsLoading = false
	if err != nil {
		c.log.Error("session check failed", "error", err)
		return
	}
	if user == nil {
		return
	}

	entries, err := c.fetch(ctx, user.ID)
	if err != nil {
		c.log.Error("failed to load entries", "user_id", user.ID, "error", err)
		entries = []models.JournalEntry{}
	}
	c.state.User = user
	c.state.Entries = entries
	c.state.View = models.ViewDashboard
}

// State returns a copy of the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

// RequestAuth moves LANDING → AUTH.
func (c *Controller) RequestAuth() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.expect(models.ViewLanding); err != nil {
		return err
	}
	c.state.View = models.ViewAuth
	c.state.AuthError = ""
	c.publish()
	return nil
}

// CancelAuth moves AUTH → LANDING.
func (c *Controller) CancelAuth() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.expect(models.ViewAuth); err != nil {
		return err
	}
	c.state.View = models.ViewLanding
	c.state.AuthError = ""
	c.publish()
	return nil
}

// Register creates an account through the identity provider and completes
// the login with it. A rejected registration keeps the current view and
// records the message for the auth form.
func (c *Controller) Register(ctx context.Context, email, name, password string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.expect(models.ViewLanding, models.ViewAuth); err != nil {
		return err
	}

	ictx, cancel := context.WithTimeout(ctx, c.storeTimeout)
	user, err := c.identity.Register(ictx, email, name, password)
	cancel()
	if err != nil {
		c.rejectAuth(err)
		return err
	}
	return c.completeLogin(ctx, user)
}

// Login signs in through the identity provider and completes the login.
func (c *Controller) Login(ctx context.Context, email, password string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.expect(models.ViewLanding, models.ViewAuth); err != nil {
		return err
	}

	ictx, cancel := context.WithTimeout(ctx, c.storeTimeout)
	user, err := c.identity.Login(ictx, email, password)
	cancel()
	if err != nil {
		c.rejectAuth(err)
		return err
	}
	return c.completeLogin(ctx, user)
}

// CompleteLogin sets the user, loads their entries and shows the dashboard.
// If loading fails the error is returned and user and view are unchanged.
func (c *Controller) CompleteLogin(ctx context.Context, user models.User) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.expect(models.ViewLanding, models.ViewAuth); err != nil {
		return err
	}
	return c.completeLogin(ctx, user)
}

func (c *Controller) completeLogin(ctx context.Context, user models.User) error {
	entries, err := c.fetch(ctx, user.ID)
	if err != nil {
		return err
	}

	c.state.User = &user
	c.state.Entries = entries
	c.state.CurrentEntry = nil
	c.state.Draft = Draft{}
	c.state.Query = ""
	c.state.AuthError = ""
	c.state.View = models.ViewDashboard
	c.publish()
	return nil
}

func (c *Controller) rejectAuth(err error) {
	c.state.AuthError = authMessage(err)
	c.publish()
}

// Logout signs out (a provider failure is only logged), clears user, entries
// and current entry and shows the landing view.
func (c *Controller) Logout(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ictx, cancel := context.WithTimeout(ctx, c.storeTimeout)
	if err := c.identity.Logout(ictx); err != nil {
		c.log.Warn("sign out failed", "error", err)
	}
	cancel()

	c.signOut()
}

func (c *Controller) signOut() {
	c.state = State{
		View:    models.ViewLanding,
		Entries: []models.JournalEntry{},
	}
	c.publish()
}

// Revalidate confirms that a signed-in client still holds a live session and
// signs it out otherwise. It is a no-op while loading or signed out.
func (c *Controller) Revalidate(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.IsLoading || c.state.User == nil {
		return nil
	}
	return c.verifySession(ctx)
}

// verifySession asks the identity provider for the session's user. An expired
// or replaced session resets the client to LANDING and fails with ErrNoUser.
// Must be called with c.mu held and a user set.
func (c *Controller) verifySession(ctx context.Context) error {
	ictx, cancel := context.WithTimeout(ctx, c.storeTimeout)
	user, err := c.identity.CurrentUser(ictx)
	cancel()
	if err != nil {
		return fmt.Errorf("%w: session check failed: %v", models.ErrStorage, err)
	}
	if user == nil || user.ID != c.state.User.ID {
		c.log.Info("session ended, signing client out", "user_id", c.state.User.ID)
		c.signOut()
		return fmt.Errorf("%w: session expired, please sign in again", models.ErrNoUser)
	}
	return nil
}

// CreateNew opens an empty editor.
func (c *Controller) CreateNew(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.requireUser(ctx, models.ViewDashboard); err != nil {
		return err
	}
	c.state.CurrentEntry = nil
	c.state.Draft = Draft{}
	c.state.View = models.ViewEditor
	c.publish()
	return nil
}

// EditEntry opens the editor on entry.
func (c *Controller) EditEntry(ctx context.Context, entry models.JournalEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.requireUser(ctx, models.ViewDashboard); err != nil {
		return err
	}
	c.edit(entry)
	return nil
}

// EditEntryByID opens the editor on a loaded entry.
func (c *Controller) EditEntryByID(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.requireUser(ctx, models.ViewDashboard); err != nil {
		return err
	}
	entry, ok := c.find(id)
	if !ok {
		return fmt.Errorf("%w: entry %s", models.ErrNotFound, id)
	}
	c.edit(entry)
	return nil
}

func (c *Controller) edit(entry models.JournalEntry) {
	c.state.CurrentEntry = &entry
	c.state.Draft = Draft{
		Entry:   &entry,
		Title:   entry.Title,
		Content: entry.Content,
		Mood:    entry.Mood,
		Summary: entry.AISummary,
	}
	c.state.View = models.ViewEditor
	c.publish()
}

// CancelEdit leaves the editor without saving.
func (c *Controller) CancelEdit() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.expect(models.ViewEditor); err != nil {
		return err
	}
	c.state.CurrentEntry = nil
	c.state.Draft = Draft{}
	c.state.View = models.ViewDashboard
	c.publish()
	return nil
}

// Analyze runs the analysis client on content and stores mood, summary and
// advice on the editor draft.
func (c *Controller) Analyze(ctx context.Context, content string) (models.AnalysisResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.requireUser(ctx, models.ViewEditor); err != nil {
		return models.AnalysisResult{}, err
	}
	if strings.TrimSpace(content) == "" {
		return models.AnalysisResult{}, fmt.Errorf("%w: nothing to analyze", models.ErrValidation)
	}

	actx, cancel := context.WithTimeout(ctx, c.analysisTimeout)
	result := c.analyzer.AnalyzeEntry(actx, content)
	cancel()

	c.state.Draft.Content = content
	c.state.Draft.Mood = result.Mood
	c.state.Draft.Summary = result.Summary
	c.state.Draft.Advice = result.Advice
	c.publish()
	return result, nil
}

// BuildEntry turns editor input into the entry to save, reusing the current
// entry's id and date in edit mode.
func (c *Controller) BuildEntry(title, content, mood, summary string, now time.Time) (models.JournalEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.User == nil {
		return models.JournalEntry{}, models.ErrNoUser
	}
	return BuildEntry(c.state.CurrentEntry, c.state.User.ID, title, content, mood, summary, now)
}

// BuildEntry validates editor input and assembles an entry owned by userID.
// With existing nil a new id is generated and date is now; otherwise id and
// date are kept. lastModified is always now. Empty mood or summary means absent.
func BuildEntry(existing *models.JournalEntry, userID, title, content, mood, summary string, now time.Time) (models.JournalEntry, error) {
	title = strings.TrimSpace(title)
	content = strings.TrimSpace(content)
	if title == "" || content == "" {
		return models.JournalEntry{}, fmt.Errorf("%w: title and content are required", models.ErrValidation)
	}

	entry := models.JournalEntry{
		ID:           uuid.NewString(),
		UserID:       userID,
		Title:        title,
		Content:      content,
		Date:         now,
		LastModified: now,
		Mood:         strings.TrimSpace(mood),
		AISummary:    strings.TrimSpace(summary),
	}
	if existing != nil {
		entry.ID = existing.ID
		entry.Date = existing.Date
	}
	return entry, nil
}

// SaveDraft builds the entry from editor input and saves it in one step.
func (c *Controller) SaveDraft(ctx context.Context, title, content, mood, summary string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.requireUser(ctx, models.ViewEditor); err != nil {
		return err
	}
	entry, err := BuildEntry(c.state.CurrentEntry, c.state.User.ID, title, content, mood, summary, c.now())
	if err != nil {
		return err
	}
	return c.save(ctx, entry)
}

// SaveEntry upserts entry, reloads the user's entries and shows the
// dashboard. On failure the state is unchanged.
func (c *Controller) SaveEntry(ctx context.Context, entry models.JournalEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.requireUser(ctx, models.ViewEditor); err != nil {
		return err
	}
	return c.save(ctx, entry)
}

func (c *Controller) save(ctx context.Context, entry models.JournalEntry) error {
	entry.UserID = c.state.User.ID

	sctx, cancel := context.WithTimeout(ctx, c.storeTimeout)
	_, err := c.entries.SaveEntry(sctx, entry)
	cancel()
	if err != nil {
		return err
	}

	entries, err := c.fetch(ctx, c.state.User.ID)
	if err != nil {
		return err
	}

	c.state.Entries = entries
	c.state.CurrentEntry = nil
	c.state.Draft = Draft{}
	c.state.View = models.ViewDashboard
	c.publish()
	return nil
}

// DeleteEntry deletes one of the user's loaded entries and reloads. The
// view stays on the dashboard; on failure the state is unchanged.
func (c *Controller) DeleteEntry(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.requireUser(ctx, models.ViewDashboard); err != nil {
		return err
	}
	entry, ok := c.find(id)
	if !ok {
		return fmt.Errorf("%w: entry %s", models.ErrNotFound, id)
	}

	sctx, cancel := context.WithTimeout(ctx, c.storeTimeout)
	err := c.entries.DeleteEntry(sctx, id)
	cancel()
	if err != nil {
		return err
	}

	entries, err := c.fetch(ctx, c.state.User.ID)
	if err != nil {
		return err
	}
	c.state.Entries = entries
	c.publish()

	if f, ok := c.analyzer.(forgetter); ok {
		fctx, cancel := context.WithTimeout(ctx, c.storeTimeout)
		if err := f.Forget(fctx, entry.Content); err != nil {
			c.log.Warn("failed to drop cached analysis", "entry_id", id, "error", err)
		}
		cancel()
	}
	return nil
}

// forgetter is implemented by analyzers that cache results by content.
type forgetter interface {
	Forget(ctx context.Context, content string) error
}

// Search filters the loaded entries by a case-insensitive substring of title
// or content, keeping fetch order. An empty query returns every entry.
func (c *Controller) Search(ctx context.Context, query string) ([]models.JournalEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.requireUser(ctx, models.ViewDashboard); err != nil {
		return nil, err
	}
	c.state.Query = strings.TrimSpace(query)
	c.publish()
	return Filter(c.state.Entries, c.state.Query), nil
}

// Filter returns the entries whose title or content contains query,
// case-insensitively, in their original order.
func Filter(entries []models.JournalEntry, query string) []models.JournalEntry {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]models.JournalEntry, 0, len(entries))
	for _, e := range entries {
		if q == "" ||
			strings.Contains(strings.ToLower(e.Title), q) ||
			strings.Contains(strings.ToLower(e.Content), q) {
			out = append(out, e)
		}
	}
	return out
}

// SessionToken returns the identity token held for this client, if the
// identity client keeps one.
func (c *Controller) SessionToken() string {
	if t, ok := c.identity.(interface{ Token() string }); ok {
		return t.Token()
	}
	return ""
}

// Subscribe returns a channel receiving the state after every transition and
// a function that cancels the subscription. A slow reader only sees the
// latest state.
func (c *Controller) Subscribe() (<-chan State, func()) {
	c.subMu.Lock()
	defer c.subMu.Unlock()

	id := c.nextID
	c.nextID++
	ch := make(chan State, 1)
	c.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.subMu.Lock()
			defer c.subMu.Unlock()
			if _, ok := c.subs[id]; ok {
				delete(c.subs, id)
				close(ch)
			}
		})
	}
}

// Close ends every subscription.
func (c *Controller) Close() {
	c.subMu.Lock()
	defer c.subMu.Unlock()
	for id, ch := range c.subs {
		delete(c.subs, id)
		close(ch)
	}
}

// publish must be called with c.mu held.
func (c *Controller) publish() {
	s := c.snapshot()

	c.subMu.Lock()
	defer c.subMu.Unlock()
	for _, ch := range c.subs {
		select {
		case <-ch:
		default:
		}
		ch <- s
	}
}

func (c *Controller) snapshot() State {
	s := c.state
	s.Entries = append([]models.JournalEntry(nil), c.state.Entries...)
	if s.Entries == nil {
		s.Entries = []models.JournalEntry{}
	}
	if c.state.User != nil {
		u := *c.state.User
		s.User = &u
	}
	if c.state.CurrentEntry != nil {
		e := *c.state.CurrentEntry
		s.CurrentEntry = &e
	}
	if c.state.Draft.Entry != nil {
		e := *c.state.Draft.Entry
		s.Draft.Entry = &e
	}
	return s
}

func (c *Controller) fetch(ctx context.Context, userID string) ([]models.JournalEntry, error) {
	sctx, cancel := context.WithTimeout(ctx, c.storeTimeout)
	defer cancel()

	entries, err := c.entries.GetEntries(sctx, userID)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []models.JournalEntry{}
	}
	return entries, nil
}

func (c *Controller) find(id string) (models.JournalEntry, bool) {
	for _, e := range c.state.Entries {
		if e.ID == id {
			return e, true
		}
	}
	return models.JournalEntry{}, false
}

func (c *Controller) expect(views ...models.AppView) error {
	if c.state.IsLoading {
		return fmt.Errorf("%w: still loading", models.ErrInvalidTransition)
	}
	for _, v := range views {
		if c.state.View == v {
			return nil
		}
	}
	return fmt.Errorf("%w: not allowed from %s", models.ErrInvalidTransition, c.state.View)
}

// requireUser checks the view, then that the session behind the signed-in
// user is still live.
func (c *Controller) requireUser(ctx context.Context, views ...models.AppView) error {
	if c.state.User == nil {
		return models.ErrNoUser
	}
	if err := c.expect(views...); err != nil {
		return err
	}
	return c.verifySession(ctx)
}

// authMessage is the text shown on the auth view for a rejected attempt.
func authMessage(err error) string {
	msg := err.Error()
	for _, kind := range []error{models.ErrValidation, models.ErrAuth} {
		prefix := kind.Error() + ": "
		if strings.HasPrefix(msg, prefix) {
			return strings.TrimPrefix(msg, prefix)
		}
	}
	return "Something went wrong. Please try again."
}
