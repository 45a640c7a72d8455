package ui

import (
	"errors"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/tourist/internal/coord"
	"github.com/abelbrown/tourist/internal/geo"
	"github.com/abelbrown/tourist/internal/store"
)

// Actions are the command factories the App calls. Any may be nil.
// Each returned Cmd reports back with the matching message type.
type Actions struct {
	LoadPins      func() tea.Cmd                            // PinsLoaded
	AddPin        func(at geo.Coordinates) tea.Cmd          // PinAdded
	DeletePin     func(id string) tea.Cmd                   // PinDeleted
	OpenAlbum     func(pinID string) tea.Cmd                // AlbumLoaded
	NewCollection func(pinID string) tea.Cmd                // AlbumLoaded
	RemovePhotos  func(pinID string, ids []string) tea.Cmd  // PhotosRemoved
	RequestImages func(pinID string, ids []string) tea.Cmd  // ImageStates
	SaveRegion    func(r geo.Region) tea.Cmd                // RegionSaved
}

type view int

const (
	viewPins view = iota
	viewAlbum
)

// photoRow is what the album shows for one photo. Bytes stay in the store.
type photoRow struct {
	ID    string
	Title string
	Size  int
	State coord.State
}

type album struct {
	pinID    string
	at       geo.Coordinates
	rows     []photoRow
	cursor   int
	offset   int
	selected map[string]bool
	empty    bool
}

// App is the root Bubble Tea model.
// IMPORTANT: App does NOT hold *store.Store or the coordinator. It talks to
// them through Actions and receives results as messages.
type App struct {
	actions Actions

	view      view
	pins      []store.Pin
	pinCursor int
	album     album
	region    geo.Region

	input   textinput.Model
	adding  bool
	spinner spinner.Model

	err     error
	notice  string
	width   int
	height  int
	ready   bool
	loading bool
}

// NewApp creates an App. region supplies the span used when no region was
// saved yet.
func NewApp(actions Actions, region geo.Region) App {
	in := textinput.New()
	in.Placeholder = "37.7749, -122.4194"
	in.Prompt = "lat,lon> "
	in.CharLimit = 48

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return App{
		actions: actions,
		region:  region,
		input:   in,
		spinner: sp,
	}
}

// Init loads pins and starts the spinner.
func (a App) Init() tea.Cmd {
	if a.actions.LoadPins != nil {
		return tea.Batch(a.spinner.Tick, a.actions.LoadPins())
	}
	return a.spinner.Tick
}

// Update handles messages and returns the updated model and any commands.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return a.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		if a.view == viewAlbum {
			return a, a.requestVisible()
		}
		return a, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case PinsLoaded:
		a.loading = false
		if msg.Err != nil {
			a.err = msg.Err
			return a, nil
		}
		a.pins = msg.Pins
		if msg.HasRegion {
			a.region = msg.Region
			a.pinCursor = nearestPin(a.pins, msg.Region.Center)
		}
		a.clampPinCursor()
		return a, nil

	case PinAdded:
		if msg.Err != nil {
			a.err = msg.Err
			return a, nil
		}
		if msg.Created {
			a.pins = append(a.pins, msg.Pin)
		} else {
			a.notice = "A pin already exists at " + msg.Pin.Coordinates.String()
		}
		for i, p := range a.pins {
			if p.ID == msg.Pin.ID {
				a.pinCursor = i
			}
		}
		return a, nil

	case PinDeleted:
		if msg.Err != nil {
			a.err = msg.Err
			return a, nil
		}
		for i, p := range a.pins {
			if p.ID == msg.ID {
				a.pins = append(a.pins[:i], a.pins[i+1:]...)
				break
			}
		}
		a.clampPinCursor()
		return a, nil

	case AlbumLoaded:
		if a.view != viewAlbum || msg.PinID != a.album.pinID {
			return a, nil
		}
		a.loading = false
		if msg.Err != nil {
			a.err = msg.Err
			return a, nil
		}
		a.album.rows = rowsFromPhotos(msg.Photos)
		a.album.selected = make(map[string]bool)
		a.album.empty = len(a.album.rows) == 0
		a.album.offset = 0
		a.clampPhotoCursor()
		return a, a.requestVisible()

	case PhotosRemoved:
		if msg.PinID != a.album.pinID {
			return a, nil
		}
		a.loading = false
		if msg.Err != nil {
			a.err = msg.Err
			return a, nil
		}
		removed := make(map[string]bool, len(msg.IDs))
		for _, id := range msg.IDs {
			removed[id] = true
		}
		kept := a.album.rows[:0]
		for _, r := range a.album.rows {
			if !removed[r.ID] {
				kept = append(kept, r)
			}
		}
		a.album.rows = kept
		a.album.selected = make(map[string]bool)
		a.album.empty = len(kept) == 0
		a.clampPhotoCursor()
		return a, a.requestVisible()

	case ImageStates:
		if msg.PinID != a.album.pinID {
			return a, nil
		}
		// Rows are marked Hydrating before the request goes out, and a
		// PhotoFailed may land before this reply. Hydrating here is stale.
		for i := range a.album.rows {
			r := &a.album.rows[i]
			s, ok := msg.States[r.ID]
			if !ok || s == coord.Hydrating || r.State == coord.Hydrated {
				continue
			}
			r.State = s
		}
		return a, nil

	case PhotoHydrated:
		if r := a.row(msg.PinID, msg.PhotoID); r != nil {
			r.State = coord.Hydrated
			r.Size = msg.Size
		}
		return a, nil

	case PhotoFailed:
		if r := a.row(msg.PinID, msg.PhotoID); r != nil && r.State != coord.Hydrated {
			r.State = coord.HydrationFailed
		}
		return a, nil

	case AlbumEmpty:
		if msg.PinID == a.album.pinID {
			a.album.empty = true
		}
		return a, nil

	case Notice:
		if msg.Error {
			a.err = errors.New(msg.Text)
		} else {
			a.notice = msg.Text
		}
		return a, nil

	case RegionSaved:
		if msg.Err != nil {
			a.err = msg.Err
		}
		return a, nil
	}

	return a, nil
}

// handleKeyMsg processes keyboard input.
func (a App) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.adding {
		return a.handleInputKey(msg)
	}

	// Clear any existing notice on key press
	a.err = nil
	a.notice = ""

	switch msg.String() {
	case "q", "ctrl+c":
		return a, a.quit()
	}

	if a.view == viewAlbum {
		return a.handleAlbumKey(msg)
	}
	return a.handlePinsKey(msg)
}

func (a App) handlePinsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		if a.pinCursor < len(a.pins)-1 {
			a.pinCursor++
		}
	case "k", "up":
		if a.pinCursor > 0 {
			a.pinCursor--
		}
	case "g", "home":
		a.pinCursor = 0
	case "G", "end":
		if len(a.pins) > 0 {
			a.pinCursor = len(a.pins) - 1
		}
	case "a":
		a.adding = true
		a.input.SetValue("")
		return a, a.input.Focus()
	case "d":
		if len(a.pins) > 0 && a.actions.DeletePin != nil {
			return a, a.actions.DeletePin(a.pins[a.pinCursor].ID)
		}
	case "r":
		if a.actions.LoadPins != nil {
			a.loading = true
			return a, a.actions.LoadPins()
		}
	case "enter":
		if len(a.pins) > 0 {
			return a.openAlbum(a.pins[a.pinCursor])
		}
	}
	return a, nil
}

func (a App) handleAlbumKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	rows := a.album.rows
	switch msg.String() {
	case "esc", "backspace", "h":
		a.view = viewPins
		a.loading = false
		a.album = album{}
		return a, nil
	case "j", "down":
		if a.album.cursor < len(rows)-1 {
			a.album.cursor++
		}
		return a, a.requestVisible()
	case "k", "up":
		if a.album.cursor > 0 {
			a.album.cursor--
		}
		return a, a.requestVisible()
	case "g", "home":
		a.album.cursor = 0
		return a, a.requestVisible()
	case "G", "end":
		if len(rows) > 0 {
			a.album.cursor = len(rows) - 1
		}
		return a, a.requestVisible()
	case " ", "x":
		if len(rows) > 0 {
			id := rows[a.album.cursor].ID
			if a.album.selected[id] {
				delete(a.album.selected, id)
			} else {
				a.album.selected[id] = true
			}
		}
		return a, nil
	case "n":
		return a.collectionAction()
	case "r":
		if len(rows) > 0 && rows[a.album.cursor].State == coord.HydrationFailed && a.actions.RequestImages != nil {
			r := &a.album.rows[a.album.cursor]
			r.State = coord.Hydrating
			return a, a.actions.RequestImages(a.album.pinID, []string{r.ID})
		}
		return a, nil
	}
	return a, nil
}

// collectionAction is the album's single action: a new collection when
// nothing is selected, otherwise removal of the selection.
func (a App) collectionAction() (tea.Model, tea.Cmd) {
	if len(a.album.selected) == 0 {
		if a.actions.NewCollection == nil {
			return a, nil
		}
		a.loading = true
		return a, a.actions.NewCollection(a.album.pinID)
	}

	if a.actions.RemovePhotos == nil {
		return a, nil
	}
	ids := make([]string, 0, len(a.album.selected))
	for _, r := range a.album.rows {
		if a.album.selected[r.ID] {
			ids = append(ids, r.ID)
		}
	}
	a.loading = true
	return a, a.actions.RemovePhotos(a.album.pinID, ids)
}

func (a App) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		a.adding = false
		a.input.Blur()
		return a, nil
	case tea.KeyEnter:
		at, err := geo.ParseCoordinates(a.input.Value())
		if err != nil {
			a.err = err
			return a, nil
		}
		a.adding = false
		a.err = nil
		a.input.Blur()
		if a.actions.AddPin != nil {
			return a, a.actions.AddPin(at)
		}
		return a, nil
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

func (a App) openAlbum(pin store.Pin) (tea.Model, tea.Cmd) {
	a.view = viewAlbum
	a.album = album{pinID: pin.ID, at: pin.Coordinates, selected: make(map[string]bool)}
	a.region.Center = pin.Coordinates

	var cmds []tea.Cmd
	if a.actions.SaveRegion != nil {
		cmds = append(cmds, a.actions.SaveRegion(a.region))
	}
	if a.actions.OpenAlbum != nil {
		a.loading = true
		cmds = append(cmds, a.actions.OpenAlbum(pin.ID))
	}
	return a, tea.Batch(cmds...)
}

// quit saves the region, then exits.
func (a App) quit() tea.Cmd {
	if a.view == viewPins && len(a.pins) > 0 {
		a.region.Center = a.pins[a.pinCursor].Coordinates
	}
	if a.actions.SaveRegion == nil || a.region.Center == (geo.Coordinates{}) {
		return tea.Quit
	}
	return tea.Sequence(a.actions.SaveRegion(a.region), tea.Quit)
}

// requestVisible asks for bytes of on-screen photos that have none.
func (a *App) requestVisible() tea.Cmd {
	if a.view != viewAlbum || a.actions.RequestImages == nil {
		return nil
	}
	a.scrollToCursor()

	start, end := a.visibleRange()
	var ids []string
	for i := start; i < end; i++ {
		r := &a.album.rows[i]
		if r.State == coord.Unhydrated {
			r.State = coord.Hydrating
			ids = append(ids, r.ID)
		}
	}
	if len(ids) == 0 {
		return nil
	}
	return a.actions.RequestImages(a.album.pinID, ids)
}

// listHeight is the number of rows that fit between header and status bar.
func (a App) listHeight() int {
	h := a.height - 4
	if h < 1 {
		return 1
	}
	return h
}

func (a App) visibleRange() (int, int) {
	start := a.album.offset
	end := start + a.listHeight()
	if end > len(a.album.rows) {
		end = len(a.album.rows)
	}
	if start > end {
		start = end
	}
	return start, end
}

func (a *App) scrollToCursor() {
	h := a.listHeight()
	if a.album.cursor < a.album.offset {
		a.album.offset = a.album.cursor
	}
	if a.album.cursor >= a.album.offset+h {
		a.album.offset = a.album.cursor - h + 1
	}
	if a.album.offset < 0 {
		a.album.offset = 0
	}
}

func (a *App) row(pinID, photoID string) *photoRow {
	if pinID != a.album.pinID {
		return nil
	}
	for i := range a.album.rows {
		if a.album.rows[i].ID == photoID {
			return &a.album.rows[i]
		}
	}
	return nil
}

func (a *App) clampPinCursor() {
	if a.pinCursor >= len(a.pins) {
		a.pinCursor = len(a.pins) - 1
	}
	if a.pinCursor < 0 {
		a.pinCursor = 0
	}
}

func (a *App) clampPhotoCursor() {
	if a.album.cursor >= len(a.album.rows) {
		a.album.cursor = len(a.album.rows) - 1
	}
	if a.album.cursor < 0 {
		a.album.cursor = 0
	}
}

func rowsFromPhotos(photos []store.Photo) []photoRow {
	rows := make([]photoRow, len(photos))
	for i, p := range photos {
		rows[i] = photoRow{ID: p.ID, Title: p.Title, Size: len(p.Image)}
		if p.Hydrated() {
			rows[i].State = coord.Hydrated
		}
	}
	return rows
}

func nearestPin(pins []store.Pin, c geo.Coordinates) int {
	best := 0
	for i, p := range pins {
		if c.Distance(p.Coordinates) < c.Distance(pins[best].Coordinates) {
			best = i
		}
	}
	return best
}

// Cursor returns the cursor position in the current view (for testing).
func (a App) Cursor() int {
	if a.view == viewAlbum {
		return a.album.cursor
	}
	return a.pinCursor
}

// Pins returns the current pins (for testing).
func (a App) Pins() []store.Pin {
	return a.pins
}

// InAlbum reports whether the album view is showing (for testing).
func (a App) InAlbum() bool {
	return a.view == viewAlbum
}
