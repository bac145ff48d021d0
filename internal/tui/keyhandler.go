package tui

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/quireapp/quire/internal/config"
	"github.com/quireapp/quire/internal/viewer"
)

type KeyHandler struct {
	app         *App
	config      *config.Config
	modifierKey string
	keys        BindingSet
}

func NewKeyHandler(app *App, cfg *config.Config, keys BindingSet) *KeyHandler {
	modifierKey := cfg.Keys.Modifier + "+"
	return &KeyHandler{app: app, config: cfg, modifierKey: modifierKey, keys: keys}
}

func (kh *KeyHandler) HandleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	kh.app.clearNotices()

	// While a list filter is being typed, every key belongs to the
	// filter input.
	if kh.isListFiltering() {
		if key == "ctrl+c" {
			return kh.app, tea.Quit
		}
		return kh.delegateToCharm(msg)
	}

	if kh.isInTextInputMode() {
		return kh.handleTextInputMode(msg)
	}

	if model, cmd, handled := kh.handleCustomKeys(key); handled {
		return model, cmd
	}

	return kh.delegateToCharm(msg)
}

func (kh *KeyHandler) isListFiltering() bool {
	switch kh.app.view {
	case ViewOutline:
		return kh.app.outlineList.FilterState() == list.Filtering
	case ViewBookmarks:
		return kh.app.bookmarkList.FilterState() == list.Filtering
	default:
		return false
	}
}

func (kh *KeyHandler) isInTextInputMode() bool {
	switch kh.app.view {
	case ViewGoTo:
		return kh.app.gotoInput.Focused()
	case ViewBookmarkAdd:
		return kh.app.nameInput.Focused()
	default:
		return false
	}
}

func (kh *KeyHandler) handleTextInputMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return kh.navigateBack()
	case "ctrl+c":
		return kh.app, tea.Quit
	case "enter":
		return kh.handleTextInputEnter()
	default:
		return kh.delegateToTextInput(msg)
	}
}

func (kh *KeyHandler) handleTextInputEnter() (tea.Model, tea.Cmd) {
	switch kh.app.view {
	case ViewGoTo:
		input := strings.TrimSpace(kh.app.gotoInput.Value())
		page, err := strconv.Atoi(input)
		if err != nil {
			kh.app.setStatus(fmt.Sprintf("Not a page number: %q", input), StatusError)
			return kh.app, nil
		}
		kh.app.view = ViewReader
		kh.app.gotoInput.Blur()
		kh.app.gotoInput.Reset()
		return kh.app, kh.app.jumpToPage(page)

	case ViewBookmarkAdd:
		name := strings.TrimSpace(kh.app.nameInput.Value())
		page := kh.app.session.Page()
		kh.app.view = kh.app.previousView
		kh.app.nameInput.Blur()
		kh.app.nameInput.Reset()
		return kh.app, kh.app.addBookmark(page, name)

	default:
		return kh.app, nil
	}
}

// delegateToTextInput passes the key to the focused text input
func (kh *KeyHandler) delegateToTextInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch kh.app.view {
	case ViewGoTo:
		newInput, cmd := kh.app.gotoInput.Update(msg)
		kh.app.gotoInput = newInput
		return kh.app, cmd

	case ViewBookmarkAdd:
		newInput, cmd := kh.app.nameInput.Update(msg)
		kh.app.nameInput = newInput
		return kh.app, cmd

	default:
		return kh.app, nil
	}
}

// handleCustomKeys handles only our custom action keys
func (kh *KeyHandler) handleCustomKeys(key string) (tea.Model, tea.Cmd, bool) {
	// Global custom keys
	switch key {
	case "ctrl+c", "q":
		kh.app.persistPositionNow()
		return kh.app, tea.Quit, true
	case "esc":
		model, cmd := kh.navigateBack()
		return model, cmd, true
	}

	// View-specific custom keys
	switch kh.app.view {
	case ViewReader:
		return kh.handleReaderCustomKeys(key)
	case ViewOutline:
		return kh.handleOutlineCustomKeys(key)
	case ViewBookmarks:
		return kh.handleBookmarksCustomKeys(key)
	case ViewHelp:
		return kh.handleHelpCustomKeys(key)
	default:
		return kh.app, nil, false
	}
}

// handleReaderCustomKeys maps the active binding profile onto the
// reading surface. Order matters for profiles that reuse a key: the
// earlier action wins.
func (kh *KeyHandler) handleReaderCustomKeys(key string) (tea.Model, tea.Cmd, bool) {
	a := kh.app
	if a.session == nil {
		return a, nil, false
	}

	switch {
	case keyMatches(kh.keys.NextPage, key):
		return a, a.advancePage(viewer.TurnForward), true
	case keyMatches(kh.keys.PrevPage, key):
		return a, a.advancePage(viewer.TurnBackward), true
	case keyMatches(kh.keys.FirstPage, key):
		return a, a.jumpToPage(1), true
	case keyMatches(kh.keys.LastPage, key):
		return a, a.jumpToPage(a.session.PageCount()), true
	case keyMatches(kh.keys.ScrollUp, key):
		return a, a.scrollOrPan(-scrollStepRows), true
	case keyMatches(kh.keys.ScrollDown, key):
		return a, a.scrollOrPan(scrollStepRows), true
	case keyMatches(kh.keys.GotoPage, key):
		a.previousView = a.view
		a.view = ViewGoTo
		a.gotoInput.Reset()
		a.gotoInput.Focus()
		return a, nil, true
	case keyMatches(kh.keys.ToggleLayout, key):
		return a, a.toggleLayout(), true
	case keyMatches(kh.keys.ZoomIn, key):
		return a, a.adjustZoom(true), true
	case keyMatches(kh.keys.ZoomOut, key):
		return a, a.adjustZoom(false), true
	case keyMatches(kh.keys.CycleMode, key):
		return a, a.cycleRenderMode(), true
	case keyMatches(kh.keys.Outline, key):
		return kh.openOutline()
	case keyMatches(kh.keys.Bookmarks, key):
		return kh.openBookmarks()
	case keyMatches(kh.keys.AddBookmark, key):
		a.previousView = a.view
		a.view = ViewBookmarkAdd
		a.nameInput.Reset()
		a.nameInput.Focus()
		return a, nil, true
	case keyMatches(kh.keys.Help, key):
		a.previousView = a.view
		a.view = ViewHelp
		return a, nil, true
	}
	return a, nil, false
}

func (kh *KeyHandler) openOutline() (tea.Model, tea.Cmd, bool) {
	a := kh.app
	if len(a.outline) == 0 {
		a.setStatus(MsgNoOutline, StatusInfo)
		return a, nil, true
	}
	a.previousView = a.view
	a.view = ViewOutline
	return a, nil, true
}

func (kh *KeyHandler) openBookmarks() (tea.Model, tea.Cmd, bool) {
	a := kh.app
	a.previousView = a.view
	a.view = ViewBookmarks
	return a, a.loadBookmarksCmd(), true
}

func (kh *KeyHandler) handleOutlineCustomKeys(key string) (tea.Model, tea.Cmd, bool) {
	if keyMatches(kh.keys.Outline, key) {
		kh.app.view = ViewReader
		return kh.app, nil, true
	}
	return kh.app, nil, false
}

func (kh *KeyHandler) handleBookmarksCustomKeys(key string) (tea.Model, tea.Cmd, bool) {
	a := kh.app
	switch key {
	case kh.modifierKey + "x":
		if i, ok := a.bookmarkList.SelectedItem().(bookmarkItem); ok {
			return a, a.removeBookmark(i.bookmark.ID), true
		}
		return a, nil, true
	case kh.modifierKey + "e":
		if len(a.bookmarks) == 0 {
			a.setStatus(MsgNoBookmarks, StatusInfo)
			return a, nil, true
		}
		return a, a.exportBookmarks(), true
	case kh.modifierKey + "i":
		return a, a.importBookmarks(), true
	}
	if keyMatches(kh.keys.Bookmarks, key) {
		a.view = ViewReader
		return a, nil, true
	}
	if keyMatches(kh.keys.AddBookmark, key) {
		a.previousView = a.view
		a.view = ViewBookmarkAdd
		a.nameInput.Reset()
		a.nameInput.Focus()
		return a, nil, true
	}
	return a, nil, false
}

func (kh *KeyHandler) handleHelpCustomKeys(key string) (tea.Model, tea.Cmd, bool) {
	if keyMatches(kh.keys.Help, key) {
		kh.app.view = kh.app.previousView
		return kh.app, nil, true
	}
	return kh.app, nil, false
}

// delegateToCharm lets Charm handle all keys we don't intercept
func (kh *KeyHandler) delegateToCharm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch kh.app.view {
	case ViewPicker:
		kh.app.picker, cmd = kh.app.picker.Update(msg)
		if ok, path := kh.app.picker.DidSelectDisabledFile(msg); ok {
			kh.app.setStatus(fmt.Sprintf("%s is not a PDF", filepath.Base(path)), StatusWarn)
			return kh.app, cmd
		}
		if ok, path := kh.app.picker.DidSelectFile(msg); ok {
			kh.app.opening = true
			kh.app.err = nil
			kh.app.setStatus(MsgOpening, StatusInfo)
			return kh.app, tea.Batch(cmd, kh.app.spin.Tick, kh.app.openDocument(path))
		}
		return kh.app, cmd

	case ViewOutline:
		// Read the filter state before the list consumes the key, so
		// the enter that accepts a filter does not also select.
		filtering := kh.app.outlineList.FilterState() == list.Filtering
		kh.app.outlineList, cmd = kh.app.outlineList.Update(msg)
		if msg.String() == "enter" && !filtering {
			if i, ok := kh.app.outlineList.SelectedItem().(outlineEntry); ok {
				return kh.selectOutlineEntry(i)
			}
		}
		return kh.app, cmd

	case ViewBookmarks:
		filtering := kh.app.bookmarkList.FilterState() == list.Filtering
		kh.app.bookmarkList, cmd = kh.app.bookmarkList.Update(msg)
		if msg.String() == "enter" && !filtering {
			if i, ok := kh.app.bookmarkList.SelectedItem().(bookmarkItem); ok {
				kh.app.view = ViewReader
				return kh.app, kh.app.jumpToPage(i.bookmark.Page)
			}
		}
		return kh.app, cmd

	default:
		return kh.app, nil
	}
}

// selectOutlineEntry resolves the chapter target off the event loop.
// The view switches only once the destination resolves.
func (kh *KeyHandler) selectOutlineEntry(entry outlineEntry) (tea.Model, tea.Cmd) {
	if entry.dest == nil {
		kh.app.setStatus(MsgNoDestination, StatusInfo)
		return kh.app, nil
	}
	return kh.app, kh.app.resolveDestination(entry)
}

// navigateBack implements smart back navigation
func (kh *KeyHandler) navigateBack() (tea.Model, tea.Cmd) {
	switch kh.app.view {
	case ViewGoTo:
		kh.app.view = kh.app.previousView
		kh.app.gotoInput.Blur()
		kh.app.gotoInput.Reset()
		return kh.app, nil

	case ViewBookmarkAdd:
		kh.app.view = kh.app.previousView
		kh.app.nameInput.Blur()
		kh.app.nameInput.Reset()
		return kh.app, nil

	case ViewOutline, ViewBookmarks, ViewHelp:
		kh.app.view = ViewReader
		return kh.app, nil

	case ViewReader:
		kh.app.persistPositionNow()
		return kh.app, tea.Quit

	default:
		return kh.app, tea.Quit
	}
}

// GetHelpForCurrentView returns only our custom help text (Charm handles the rest)
func (kh *KeyHandler) GetHelpForCurrentView() []string {
	keys := kh.keys
	switch kh.app.view {
	case ViewPicker:
		return []string{"enter: open", "q: quit"}

	case ViewReader:
		a := kh.app
		if a.session == nil {
			return nil
		}
		help := []string{
			primaryKey(keys.NextPage) + "/" + primaryKey(keys.PrevPage) + ": turn",
			primaryKey(keys.GotoPage) + ": goto",
			primaryKey(keys.Outline) + ": outline",
			primaryKey(keys.Bookmarks) + ": bookmarks",
		}
		if a.session.Orientation() == viewer.Landscape {
			help = append(help, primaryKey(keys.ToggleLayout)+": layout")
		}
		if a.session.Layout() == viewer.LayoutSpread {
			help = append(help, primaryKey(keys.ZoomIn)+"/"+primaryKey(keys.ZoomOut)+": zoom")
		}
		help = append(help, primaryKey(keys.Help)+": help")
		return help

	case ViewOutline:
		return []string{"enter: go", "/: filter", "esc: back"}

	case ViewBookmarks:
		return []string{
			"enter: go",
			kh.modifierKey + "x: delete",
			kh.modifierKey + "e: export",
			kh.modifierKey + "i: import",
			"esc: back",
		}

	case ViewGoTo:
		return []string{"enter: go", "esc: cancel"}

	case ViewBookmarkAdd:
		return []string{"enter: save", "esc: cancel"}

	case ViewHelp:
		return []string{"esc: back"}

	default:
		return []string{}
	}
}

// fullHelp feeds the help screen; one column per concern.
func (kh *KeyHandler) fullHelp() [][]key.Binding {
	keys := kh.keys
	bind := func(ks []string, desc string) key.Binding {
		return key.NewBinding(key.WithKeys(ks...), key.WithHelp(primaryKey(ks), desc))
	}
	return [][]key.Binding{
		{
			bind(keys.NextPage, "next page"),
			bind(keys.PrevPage, "previous page"),
			bind(keys.FirstPage, "first page"),
			bind(keys.LastPage, "last page"),
			bind(keys.GotoPage, "go to page"),
		},
		{
			bind(keys.ScrollUp, "scroll up"),
			bind(keys.ScrollDown, "scroll down"),
			bind(keys.ToggleLayout, "spread / scroll"),
			bind(keys.ZoomIn, "zoom in"),
			bind(keys.ZoomOut, "zoom out"),
			bind(keys.CycleMode, "render mode"),
		},
		{
			bind(keys.Outline, "outline"),
			bind(keys.Bookmarks, "bookmarks"),
			bind(keys.AddBookmark, "add bookmark"),
			bind(keys.Help, "toggle help"),
			key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
		},
	}
}
