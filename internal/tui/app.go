package tui

import (
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"

	"github.com/quireapp/quire/internal/bookmarks"
	"github.com/quireapp/quire/internal/config"
	"github.com/quireapp/quire/internal/debuglog"
	"github.com/quireapp/quire/internal/doc"
	"github.com/quireapp/quire/internal/validation"
	"github.com/quireapp/quire/internal/viewer"
)

const (
	// chromeRows is the separator plus status line under the content.
	chromeRows = 2

	scrollStepRows   = 2
	scrollAnimFrames = 8
)

type App struct {
	config    *config.Config
	store     *bookmarks.Store
	engine    doc.Engine
	validator *validation.DocumentValidator

	document doc.Document
	docPath  string

	session *viewer.Session
	turn    *viewer.Turn
	virt    *viewer.Virtualizer
	nav     *viewer.Navigator
	cache   *viewer.Cache

	metrics       viewer.Metrics
	geom          viewer.Geometry
	aspect        float64
	mode          doc.RenderMode
	turnDuration  time.Duration
	turnStartedAt time.Time

	keyHandler   *KeyHandler
	picker       filepicker.Model
	outlineList  list.Model
	bookmarkList list.Model
	gotoInput    textinput.Model
	nameInput    textinput.Model
	spin         spinner.Model
	help         help.Model

	view         View
	previousView View

	outline   []outlineEntry
	bookmarks []*bookmarks.Bookmark

	width  int
	height int

	resizeSeq  int
	posSeq     int
	scrollSeq  int
	scrollAnim *scrollAnimation

	status     string
	statusKind StatusKind
	err        error
	opening    bool

	initialPath string
}

// scrollAnimation eases the scroll offset toward a target over a fixed
// number of frames. Frame messages carry the sequence so frames from a
// superseded animation die quietly.
type scrollAnimation struct {
	seq   int
	from  int
	to    int
	frame int
}

func NewApp(engine doc.Engine, store *bookmarks.Store, cfg *config.Config, path string) *App {
	ApplyTheme(cfg.UI.Colors)

	registry, err := NewKeymapRegistry()
	if err != nil {
		debuglog.Errorf("loading keymaps: %v", err)
		registry = &KeymapRegistry{profiles: map[string]BindingSet{}}
	}
	keys := registry.Profile(cfg.Keys.Profile)

	picker := filepicker.New()
	picker.AllowedTypes = []string{".pdf"}
	if wd, err := os.Getwd(); err == nil {
		picker.CurrentDirectory = wd
	}

	outlineDelegate := list.NewDefaultDelegate()
	outlineDelegate.ShowDescription = false
	outlineDelegate.SetSpacing(0)
	outlineList := list.New([]list.Item{}, outlineDelegate, 0, 0)
	outlineList.Title = "› outline"
	outlineList.SetShowStatusBar(false)
	outlineList.SetFilteringEnabled(true)
	outlineList.SetShowHelp(true)

	bookmarkList := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	bookmarkList.Title = "› bookmarks"
	bookmarkList.SetShowStatusBar(false)
	bookmarkList.SetFilteringEnabled(true)
	bookmarkList.SetShowHelp(true)

	gi := textinput.New()
	gi.Placeholder = "Page number…"
	gi.CharLimit = 6
	gi.Width = 12

	ni := textinput.New()
	ni.Placeholder = "Bookmark name (optional)…"
	ni.CharLimit = 64

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(AccentColor)

	app := &App{
		config:       cfg,
		store:        store,
		engine:       engine,
		validator:    validation.NewDocumentValidator(),
		metrics:      metricsFromConfig(cfg),
		aspect:       doc.DefaultAspect,
		mode:         renderModeFromName(cfg.Viewer.RenderMode),
		turnDuration: cfg.Viewer.TurnDuration,
		picker:       picker,
		outlineList:  outlineList,
		bookmarkList: bookmarkList,
		gotoInput:    gi,
		nameInput:    ni,
		spin:         sp,
		help:         help.New(),
		view:         ViewPicker,
		previousView: ViewPicker,
		initialPath:  path,
	}
	if app.turnDuration <= 0 {
		app.turnDuration = viewer.TurnDuration
	}

	app.keyHandler = NewKeyHandler(app, cfg, keys)

	return app
}

func metricsFromConfig(cfg *config.Config) viewer.Metrics {
	return viewer.Metrics{
		CellAspect:      cfg.Viewer.CellAspect,
		HorizontalFill:  cfg.Viewer.HorizontalFill,
		VerticalPadding: cfg.Viewer.VerticalPadding,
		PageGap:         cfg.Viewer.PageGap,
		ProximityMargin: cfg.Viewer.ProximityMargin,
	}
}

func renderModeFromName(name string) doc.RenderMode {
	switch name {
	case "markdown":
		return doc.ModeMarkdown
	case "image":
		return doc.ModeImage
	default:
		return doc.ModeText
	}
}

func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{tea.EnterAltScreen}
	if a.initialPath != "" {
		a.opening = true
		a.status = MsgOpening
		a.statusKind = StatusInfo
		cmds = append(cmds, a.spin.Tick, a.openDocument(a.initialPath))
	} else {
		cmds = append(cmds, a.picker.Init())
	}
	return tea.Batch(cmds...)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height

		listHeight := msg.Height - 3
		if listHeight < 5 {
			listHeight = 5
		}
		a.outlineList.SetSize(msg.Width, listHeight)
		a.bookmarkList.SetSize(msg.Width, listHeight)

		pickerHeight := msg.Height - 10
		if pickerHeight < 3 {
			pickerHeight = 3
		}
		a.picker.Height = pickerHeight
		a.help.Width = msg.Width

		if a.session != nil {
			if a.geom.PageCols == 0 {
				// First geometry pass applies immediately.
				cmds = append(cmds, a.applyGeometry()...)
			} else {
				a.resizeSeq++
				cmds = append(cmds, a.scheduleResizeSettle(a.resizeSeq))
			}
		}

	case tea.KeyMsg:
		return a.keyHandler.HandleKey(msg)

	case resizeSettledMsg:
		if msg.seq == a.resizeSeq && a.session != nil {
			cmds = append(cmds, a.applyGeometry()...)
		}

	case spinner.TickMsg:
		if a.opening {
			var cmd tea.Cmd
			a.spin, cmd = a.spin.Update(msg)
			cmds = append(cmds, cmd)
		}

	case docOpenedMsg:
		a.opening = false
		if msg.err != nil {
			a.err = msg.err
			a.view = ViewPicker
			cmds = append(cmds, a.picker.Init())
			break
		}
		cmds = append(cmds, a.adoptDocument(msg.document, msg.path)...)

	case pageAspectMsg:
		if a.session != nil && msg.aspect > 0 && msg.aspect != a.aspect {
			a.aspect = msg.aspect
			cmds = append(cmds, a.applyGeometry()...)
		}

	case surfaceRenderedMsg:
		if a.cache != nil {
			changed := a.cache.Complete(msg.task, msg.surface, msg.err)
			if changed && msg.err != nil {
				debuglog.Warnf("rendering page %d: %v", msg.task.Page, msg.err)
			}
		}

	case outlineLoadedMsg:
		if msg.err != nil {
			debuglog.Debugf("loading outline: %v", msg.err)
			break
		}
		a.outline = msg.entries
		items := make([]list.Item, len(msg.entries))
		for i, e := range msg.entries {
			items[i] = e
		}
		a.outlineList.SetItems(items)

	case bookmarksLoadedMsg:
		if msg.err != nil {
			a.err = msg.err
			break
		}
		a.bookmarks = msg.list
		items := make([]list.Item, len(msg.list))
		for i, b := range msg.list {
			items[i] = bookmarkItem{bookmark: b}
		}
		a.bookmarkList.SetItems(items)

	case bookmarkAddedMsg:
		if msg.err != nil {
			a.err = msg.err
		} else if msg.bookmark != nil {
			a.setStatus(MsgBookmarkAdded(msg.bookmark.Name, msg.bookmark.Page), StatusSuccess)
			cmds = append(cmds, a.loadBookmarksCmd())
		}

	case bookmarkRemovedMsg:
		if msg.err != nil {
			a.err = msg.err
		} else {
			a.setStatus(MsgBookmarkRemoved, StatusSuccess)
			cmds = append(cmds, a.loadBookmarksCmd())
		}

	case bookmarksExportedMsg:
		if msg.err != nil {
			a.err = msg.err
		} else {
			a.setStatus(MsgBookmarksExported(msg.count, msg.path), StatusSuccess)
		}

	case bookmarksImportedMsg:
		if msg.err != nil {
			a.err = msg.err
		} else {
			a.setStatus(MsgBookmarksImported(msg.added), StatusSuccess)
			cmds = append(cmds, a.loadBookmarksCmd())
		}

	case destinationResolvedMsg:
		if msg.err != nil {
			a.setStatus(MsgChapterUnresolved, StatusWarn)
			break
		}
		a.view = ViewReader
		cmds = append(cmds, a.jumpToPage(msg.page))

	case positionLoadedMsg:
		cmds = append(cmds, a.restorePosition(msg.pos)...)

	case turnStartMsg:
		if a.turn != nil {
			now := time.Now()
			if a.turn.Start(msg.seq, now) {
				a.turnStartedAt = now
				cmds = append(cmds, a.turnFrameTick(msg.seq), a.scheduleTurnFinish(msg.seq))
			}
		}

	case turnFrameMsg:
		if a.turn != nil && a.turn.Phase() == viewer.TurnRunning && a.turn.Seq() == msg.seq {
			cmds = append(cmds, a.turnFrameTick(msg.seq))
		}

	case turnFinishMsg:
		if a.turn != nil && a.turn.Finish(msg.seq, a.session) {
			a.turnStartedAt = time.Time{}
			cmds = append(cmds, a.ensureSpread()...)
			cmds = append(cmds, a.schedulePositionSave())
		}

	case scrollFrameMsg:
		cmds = append(cmds, a.advanceScrollAnim(msg.seq)...)

	case positionFlushMsg:
		if msg.seq == a.posSeq {
			cmds = append(cmds, a.savePosition())
		}

	case errorMsg:
		a.err = msg.err
	}

	// Non-key messages still reach the active widget: directory reads,
	// filter matches, cursor blinks.
	switch a.view {
	case ViewPicker:
		var cmd tea.Cmd
		a.picker, cmd = a.picker.Update(msg)
		cmds = append(cmds, cmd)
	case ViewOutline:
		var cmd tea.Cmd
		a.outlineList, cmd = a.outlineList.Update(msg)
		cmds = append(cmds, cmd)
	case ViewBookmarks:
		var cmd tea.Cmd
		a.bookmarkList, cmd = a.bookmarkList.Update(msg)
		cmds = append(cmds, cmd)
	case ViewGoTo:
		var cmd tea.Cmd
		a.gotoInput, cmd = a.gotoInput.Update(msg)
		cmds = append(cmds, cmd)
	case ViewBookmarkAdd:
		var cmd tea.Cmd
		a.nameInput, cmd = a.nameInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	return a, tea.Batch(cmds...)
}

// adoptDocument swaps in an opened document and builds a fresh viewing
// state around its page count.
func (a *App) adoptDocument(document doc.Document, path string) []tea.Cmd {
	if a.document != nil {
		if err := a.document.Close(); err != nil {
			debuglog.Warnf("closing %s: %v", a.docPath, err)
		}
	}
	a.document = document
	a.docPath = path

	name := truncateMiddle(document.Name(), 32)
	a.outlineList.Title = "› outline • " + name
	a.bookmarkList.Title = "› bookmarks • " + name

	count := document.PageCount()
	orientation := viewer.Landscape
	if a.width > 0 && a.height > 0 {
		orientation = viewer.OrientationOf(viewer.Viewport{Cols: a.width, Rows: a.height}, a.metrics)
	}
	a.session = viewer.NewSession(count, orientation)
	a.turn = viewer.NewTurn()
	a.virt = viewer.NewVirtualizer(count, a.metrics)
	a.nav = viewer.NewNavigator(a.session, a.turn, a.virt)
	a.cache = viewer.NewCache(count)
	a.aspect = doc.DefaultAspect
	a.geom = viewer.Geometry{}
	a.scrollAnim = nil
	a.turnStartedAt = time.Time{}
	a.outline = nil
	a.bookmarks = nil

	a.view = ViewReader
	a.previousView = ViewReader
	if a.session.Coerced() {
		a.setStatus(MsgPortraitScroll, StatusWarn)
	}

	cmds := a.applyGeometry()
	cmds = append(cmds,
		a.measureFirstPage(),
		a.loadOutline(),
		a.loadBookmarksCmd(),
		a.loadPosition(),
	)
	return cmds
}

// applyGeometry re-resolves the cell budget for the current viewport
// and layout, then re-requests whatever surfaces the new extent needs.
func (a *App) applyGeometry() []tea.Cmd {
	if a.session == nil || a.width <= 0 || a.height <= 0 {
		return nil
	}

	vp := viewer.Viewport{Cols: a.width, Rows: a.height}
	if a.session.SetOrientation(viewer.OrientationOf(vp, a.metrics)) {
		a.setStatus(MsgPortraitScroll, StatusWarn)
	}

	a.geom = viewer.Resolve(vp, a.session.Layout(), a.aspect, chromeRows, a.metrics)

	if a.session.Layout() == viewer.LayoutScroll {
		a.scrollAnim = nil
		a.virt.SetGeometry(a.geom, a.contentRows())
		// Reflow re-anchors the viewport to the top of the page the
		// reader was on.
		a.virt.Sync(a.virt.PageTop(a.session.Page()))
		return a.ensureVisible()
	}
	return a.ensureSpread()
}

// ensureVisible requests renders for every page in the virtualizer's
// visible set at the current width and mode.
func (a *App) ensureVisible() []tea.Cmd {
	var cmds []tea.Cmd
	for _, page := range a.virt.Visible() {
		if task := a.cache.EnsureRendered(page, a.geom.PageCols, a.mode); task != nil {
			cmds = append(cmds, a.renderSurface(task))
		}
	}
	return cmds
}

// ensureSpread requests renders for the resting spread's slots.
func (a *App) ensureSpread() []tea.Cmd {
	if a.session == nil || a.geom.PageCols == 0 {
		return nil
	}
	var cmds []tea.Cmd
	width := a.spreadRenderWidth()
	left, right := a.spreadPages()
	for _, page := range []int{left, right} {
		if page == 0 {
			continue
		}
		if task := a.cache.EnsureRendered(page, width, a.mode); task != nil {
			cmds = append(cmds, a.renderSurface(task))
		}
	}
	return cmds
}

// spreadRenderWidth is the surface width for spread slots; zoom renders
// wider than the slot and the composition crops.
func (a *App) spreadRenderWidth() int {
	w := int(float64(a.geom.PageCols) * a.session.Zoom())
	if w < 1 {
		w = a.geom.PageCols
	}
	return w
}

// advancePage is the page-turn entry point for both layouts. In scroll
// it is a plain jump; in spread it asks the turn machine and, when the
// request is accepted, prefetches the incoming pair and arms the
// animation.
func (a *App) advancePage(dir viewer.TurnDirection) tea.Cmd {
	if a.session.Layout() == viewer.LayoutScroll {
		var jump viewer.Jump
		if dir == viewer.TurnForward {
			jump = a.nav.NextPage(viewer.KindUserJump)
		} else {
			jump = a.nav.PrevPage(viewer.KindUserJump)
		}
		return a.applyJump(jump)
	}

	if !a.turn.Request(dir, a.session) {
		return nil
	}

	cmds := a.prefetchIncoming()
	cmds = append(cmds, a.scheduleTurnStart(a.turn.Seq()))
	return tea.Batch(cmds...)
}

// prefetchIncoming warms the spread a running turn will land on.
func (a *App) prefetchIncoming() []tea.Cmd {
	var cmds []tea.Cmd
	width := a.spreadRenderWidth()
	left, right := a.incomingPages()
	for _, page := range []int{left, right} {
		if page == 0 {
			continue
		}
		if task := a.cache.EnsureRendered(page, width, a.mode); task != nil {
			cmds = append(cmds, a.renderSurface(task))
		}
	}
	return cmds
}

func (a *App) jumpToPage(page int) tea.Cmd {
	if a.session == nil {
		return nil
	}
	return a.applyJump(a.nav.GoToPage(page, viewer.KindUserJump))
}

// applyJump lands a navigator jump: animated in scroll for explicit
// user jumps, instant otherwise.
func (a *App) applyJump(j viewer.Jump) tea.Cmd {
	var cmds []tea.Cmd
	if a.session.Layout() == viewer.LayoutScroll && j.ScrollOffset >= 0 {
		if j.Kind == viewer.KindUserJump {
			cmds = append(cmds, a.animateScrollTo(j.ScrollOffset))
		} else {
			a.scrollAnim = nil
			a.virt.Sync(j.ScrollOffset)
			cmds = append(cmds, a.ensureVisible()...)
		}
	} else {
		cmds = append(cmds, a.ensureSpread()...)
	}
	cmds = append(cmds, a.schedulePositionSave())
	return tea.Batch(cmds...)
}

func (a *App) animateScrollTo(target int) tea.Cmd {
	from := a.virt.Offset()
	if target == from {
		return tea.Batch(a.ensureVisible()...)
	}
	a.scrollSeq++
	a.scrollAnim = &scrollAnimation{seq: a.scrollSeq, from: from, to: target}
	return a.scrollFrameTick(a.scrollSeq)
}

// advanceScrollAnim steps the running scroll animation by one frame.
func (a *App) advanceScrollAnim(seq int) []tea.Cmd {
	anim := a.scrollAnim
	if anim == nil || anim.seq != seq || a.virt == nil {
		return nil
	}

	anim.frame++
	t := float64(anim.frame) / float64(scrollAnimFrames)
	if t >= 1 {
		a.scrollAnim = nil
		a.virt.Sync(anim.to)
		a.syncCurrentPage()
		return append(a.ensureVisible(), a.schedulePositionSave())
	}

	eased := 1 - (1-t)*(1-t)*(1-t)
	offset := anim.from + int(math.Round(float64(anim.to-anim.from)*eased))
	a.virt.Sync(offset)
	a.syncCurrentPage()
	cmds := a.ensureVisible()
	cmds = append(cmds, a.scrollFrameTick(seq))
	return cmds
}

// scrollOrPan maps the vertical movement keys: viewport rows in scroll,
// surface rows in a zoomed spread.
func (a *App) scrollOrPan(rows int) tea.Cmd {
	if a.session.Layout() == viewer.LayoutScroll {
		return a.scrollBy(rows)
	}
	if a.session.Zoom() > 1 {
		a.session.PanBy(rows)
	}
	return nil
}

func (a *App) scrollBy(rows int) tea.Cmd {
	a.scrollAnim = nil
	a.virt.Sync(a.virt.Offset() + rows)
	a.syncCurrentPage()
	cmds := a.ensureVisible()
	cmds = append(cmds, a.schedulePositionSave())
	return tea.Batch(cmds...)
}

// syncCurrentPage follows the virtualizer's current page passively; it
// never navigates on its own.
func (a *App) syncCurrentPage() {
	if cur := a.virt.Current(); cur != a.session.Page() {
		a.session.SetPage(cur)
	}
}

func (a *App) toggleLayout() tea.Cmd {
	target := viewer.LayoutScroll
	if a.session.Layout() == viewer.LayoutScroll {
		target = viewer.LayoutSpread
	}

	a.turn.Abort()
	a.turnStartedAt = time.Time{}
	if err := a.session.SelectLayout(target); err != nil {
		a.setStatus(MsgSpreadUnavailable, StatusWarn)
		return nil
	}

	page := a.session.Page()
	cmds := a.applyGeometry()
	cmds = append(cmds, a.applyJump(a.nav.GoToPage(page, viewer.KindInitialPlacement)))
	return tea.Batch(cmds...)
}

func (a *App) adjustZoom(in bool) tea.Cmd {
	var (
		z   float64
		err error
	)
	if in {
		z, err = a.session.ZoomIn()
	} else {
		z, err = a.session.ZoomOut()
	}
	if err != nil {
		a.setStatus(MsgZoomUnavailable, StatusWarn)
		return nil
	}
	a.setStatus(MsgZoomLevel(z), StatusInfo)
	return tea.Batch(a.ensureSpread()...)
}

func (a *App) cycleRenderMode() tea.Cmd {
	switch a.mode {
	case doc.ModeText:
		a.mode = doc.ModeMarkdown
	case doc.ModeMarkdown:
		a.mode = doc.ModeImage
	default:
		a.mode = doc.ModeText
	}
	a.cache.Clear()
	a.setStatus(MsgRenderMode(a.mode.String()), StatusInfo)

	if a.session.Layout() == viewer.LayoutScroll {
		return tea.Batch(a.ensureVisible()...)
	}
	return tea.Batch(a.ensureSpread()...)
}

// restorePosition brings back the remembered page, layout, and scroll
// offset from the last session with this document.
func (a *App) restorePosition(pos *bookmarks.Position) []tea.Cmd {
	if a.session == nil || pos == nil {
		return nil
	}

	var cmds []tea.Cmd
	if pos.Layout == viewer.LayoutScroll.String() && a.session.Layout() != viewer.LayoutScroll {
		if a.session.SelectLayout(viewer.LayoutScroll) == nil {
			cmds = append(cmds, a.applyGeometry()...)
		}
	}
	// A remembered spread comes back only while the viewport is still
	// landscape; portrait keeps the coerced scroll.
	if pos.Layout == viewer.LayoutSpread.String() && a.session.Layout() != viewer.LayoutSpread {
		if a.session.SelectLayout(viewer.LayoutSpread) == nil {
			cmds = append(cmds, a.applyGeometry()...)
		}
	}

	jump := a.nav.GoToPage(pos.Page, viewer.KindInitialPlacement)
	cmds = append(cmds, a.applyJump(jump))
	if a.session.Layout() == viewer.LayoutScroll && pos.ScrollOffset > 0 {
		a.virt.Sync(pos.ScrollOffset)
		a.syncCurrentPage()
		cmds = append(cmds, a.ensureVisible()...)
	}
	return cmds
}

// schedulePositionSave debounces position writes; only the newest
// scheduled flush lands.
func (a *App) schedulePositionSave() tea.Cmd {
	if a.session == nil || a.docPath == "" {
		return nil
	}
	a.posSeq++
	return a.schedulePositionFlush(a.posSeq)
}

func (a *App) setStatus(msg string, kind StatusKind) {
	a.status = msg
	a.statusKind = kind
}

// clearNotices drops transient status and error text so the next key
// press starts clean.
func (a *App) clearNotices() {
	a.status = ""
	a.err = nil
}

func (a *App) contentRows() int {
	rows := a.height - chromeRows
	if rows < 1 {
		rows = 1
	}
	return rows
}

func (a *App) View() string {
	var content string

	switch a.view {
	case ViewPicker:
		content = a.pickerView()
	case ViewReader:
		content = a.readerView()
	case ViewOutline:
		content = a.outlineList.View()
	case ViewBookmarks:
		content = a.bookmarkList.View()
	case ViewGoTo:
		content = a.gotoView()
	case ViewBookmarkAdd:
		content = a.bookmarkAddView()
	case ViewHelp:
		content = a.helpView()
	}

	customStatus := a.getCustomStatusBar()
	if customStatus != "" {
		separatorWidth := a.width - 2
		if separatorWidth < 0 {
			separatorWidth = 0
		}
		separator := SeparatorStyle.Render("─" + strings.Repeat("─", separatorWidth))
		return lipgloss.JoinVertical(lipgloss.Top, content, separator, customStatus)
	}

	return content
}

func (a *App) pickerView() string {
	body := lipgloss.JoinVertical(
		lipgloss.Left,
		GetWelcomeMessage(),
		"",
		a.picker.View(),
	)
	return ContentWrapper(a.width, a.contentRows()).
		Padding(0, 2).
		Render(body)
}

func (a *App) readerView() string {
	if a.session == nil || a.document == nil {
		return renderCentered(a.width, a.contentRows(), renderMuted("No document open"))
	}
	if a.geom.PageCols == 0 {
		return ""
	}

	if a.session.Layout() == viewer.LayoutScroll {
		return ContentWrapper(a.width, a.contentRows()).
			Render(a.scrollView(a.contentRows()))
	}

	return ContentWrapper(a.width, a.contentRows()).
		Align(lipgloss.Center, lipgloss.Center).
		Render(a.spreadView())
}

func (a *App) gotoView() string {
	body := lipgloss.JoinVertical(
		lipgloss.Center,
		TitleStyle.Render("› go to page"),
		"",
		renderInputFrame(a.gotoInput.View(), a.gotoInput.Focused(), 20),
		"",
		renderHelp("Enter: go • Esc: cancel"),
	)
	return renderCentered(a.width, a.contentRows(), body)
}

func (a *App) bookmarkAddView() string {
	title := "› bookmark"
	if a.session != nil {
		title = fmt.Sprintf("› bookmark page %d", a.session.Page())
	}
	body := lipgloss.JoinVertical(
		lipgloss.Center,
		TitleStyle.Render(title),
		"",
		renderInputFrame(a.nameInput.View(), a.nameInput.Focused(), 40),
		"",
		renderHelp("Enter: save • Esc: cancel"),
	)
	return renderCentered(a.width, a.contentRows(), body)
}

func (a *App) helpView() string {
	profile := a.config.Keys.Profile
	if profile == "" {
		profile = DefaultProfile
	}
	body := lipgloss.JoinVertical(
		lipgloss.Left,
		renderHeader("› keys", profile+" profile", a.width),
		"",
		a.help.FullHelpView(a.keyHandler.fullHelp()),
	)
	return ContentWrapper(a.width, a.contentRows()).
		Padding(0, 2).
		Render(body)
}

func (a *App) getCustomStatusBar() string {
	var parts []string

	if a.view == ViewReader && a.session != nil {
		if pos := MsgPagePosition(a.session); pos != "" {
			parts = append(parts, pos)
		}
		parts = append(parts, a.session.Layout().String())
		if z := a.session.Zoom(); z != 1.0 {
			parts = append(parts, fmt.Sprintf("%d%%", int(math.Round(z*100))))
		}
		if a.mode != doc.ModeText {
			parts = append(parts, a.mode.String())
		}
	}

	switch {
	case a.err != nil:
		parts = append(parts, StatusErrorStyle.Render(fmt.Sprintf("✗ %v", a.err)))
	case a.status != "":
		parts = append(parts, a.noticeStyle().Render(a.status))
	default:
		parts = append(parts, a.keyHandler.GetHelpForCurrentView()...)
	}

	text := strings.Join(parts, " • ")
	if a.opening {
		text = a.spin.View() + " " + text
	}
	if text == "" {
		return ""
	}

	if maxWidth := a.width - 2; maxWidth > 0 {
		text = truncate.String(text, uint(maxWidth))
	}

	return StatusBarStyle.Width(a.width).Render(text)
}

func (a *App) noticeStyle() lipgloss.Style {
	switch a.statusKind {
	case StatusSuccess:
		return StatusSuccessStyle
	case StatusWarn:
		return StatusWarnStyle
	case StatusError:
		return StatusErrorStyle
	default:
		return StatusInfoStyle
	}
}

type outlineEntry struct {
	title string
	dest  doc.Destination
	depth int
}

func (i outlineEntry) Title() string {
	title := strings.Repeat("  ", i.depth) + i.title
	if i.dest == nil {
		return OutlineGroupStyle.Render(title)
	}
	return title
}

func (i outlineEntry) Description() string { return "" }
func (i outlineEntry) FilterValue() string { return i.title }

type bookmarkItem struct {
	bookmark *bookmarks.Bookmark
}

func (i bookmarkItem) Title() string { return i.bookmark.Name }

func (i bookmarkItem) Description() string {
	return fmt.Sprintf("page %d • %s", i.bookmark.Page, i.bookmark.CreatedAt.Format("Jan 2, 15:04"))
}

func (i bookmarkItem) FilterValue() string { return i.bookmark.Name }

type docOpenedMsg struct {
	document doc.Document
	path     string
	err      error
}

type pageAspectMsg struct {
	aspect float64
}

type surfaceRenderedMsg struct {
	task    *viewer.RenderTask
	surface *doc.Surface
	err     error
}

type outlineLoadedMsg struct {
	entries []outlineEntry
	err     error
}

type bookmarksLoadedMsg struct {
	list []*bookmarks.Bookmark
	err  error
}

type bookmarkAddedMsg struct {
	bookmark *bookmarks.Bookmark
	err      error
}

type bookmarkRemovedMsg struct {
	err error
}

type bookmarksExportedMsg struct {
	path  string
	count int
	err   error
}

type bookmarksImportedMsg struct {
	added int
	err   error
}

type destinationResolvedMsg struct {
	page int
	err  error
}

type positionLoadedMsg struct {
	pos *bookmarks.Position
}

type turnStartMsg struct{ seq uint64 }

type turnFinishMsg struct{ seq uint64 }

type turnFrameMsg struct{ seq uint64 }

type resizeSettledMsg struct{ seq int }

type positionFlushMsg struct{ seq int }

type scrollFrameMsg struct{ seq int }

type errorMsg struct {
	err error
}
