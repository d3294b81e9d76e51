package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"github.com/gdamore/tcell/v2"
	"github.com/google/uuid"

	"github.com/glintnotes/glint/internal/complete"
	"github.com/glintnotes/glint/internal/decor"
	"github.com/glintnotes/glint/internal/decor/widget"
	"github.com/glintnotes/glint/internal/editor"
	"github.com/glintnotes/glint/internal/engine/buffer"
	"github.com/glintnotes/glint/internal/logger"
	"github.com/glintnotes/glint/internal/notes"
	"github.com/glintnotes/glint/internal/render"
	"github.com/glintnotes/glint/internal/search"
	"github.com/glintnotes/glint/internal/wikilink"
	"github.com/glintnotes/glint/pkg/config"
)

// ErrQuit signals a normal user-initiated exit.
var ErrQuit = errors.New("quit")

type mode uint8

const (
	modeEdit mode = iota
	modeFind
)

// App owns the terminal screen and routes events into the session.
type App struct {
	cfg *config.Config
	log *logger.Logger

	screen   tcell.Screen
	renderer *render.LineRenderer
	session  *editor.Session
	index    *notes.Index

	path    string
	dir     string
	topLine int

	// Painted rows from the last frame, for mouse mapping.
	rows [][]render.Cell

	mode      mode
	findQuery []rune
	findRepl  []rune
	findField int // 0 = query, 1 = replacement
	debounce  *time.Timer

	// Completion popup state.
	popup    []complete.Suggestion
	popupCtx complete.Context
	popupSel int

	logCleanup   func()
	shutdownOnce sync.Once
}

// NewApp loads the target file and builds the session around it.
func NewApp(cfg *config.Config, opts Options) (*App, error) {
	a := &App{
		cfg:      cfg,
		log:      logger.Discard(),
		renderer: render.NewLineRenderer(themeFor(cfg.Editor.Theme)),
		index:    notes.NewIndex(),
	}

	if cfg.Log.Path != "" {
		l, cleanup, err := logger.NewFileLogger(cfg.Log.Path)
		if err != nil {
			return nil, err
		}
		if lvl, err := log.ParseLevel(cfg.Log.Level); err == nil {
			l.SetLevel(lvl)
		}
		a.log = l
		a.logCleanup = cleanup
	}

	a.path = opts.FilePath
	a.dir = "."
	if a.path != "" {
		a.dir = filepath.Dir(a.path)
	}
	a.refreshIndex()

	text := ""
	if a.path != "" {
		data, err := os.ReadFile(a.path)
		if err != nil && !os.IsNotExist(err) {
			return nil, err
		}
		text = string(data)
		a.log.FileOpened(a.path, len(text))
	}
	a.session = a.newSession(text)
	return a, nil
}

func themeFor(name string) render.Theme {
	if name == config.ThemeMono {
		return render.NewTheme(nil)
	}
	return render.DefaultTheme()
}

func (a *App) newSession(text string) *editor.Session {
	return editor.NewSession(text,
		editor.WithNavigator(wikilink.NavigatorFunc(a.openNote)),
		editor.WithNotes(a.index),
		editor.WithMaxSuggestions(a.cfg.Editor.MaxSuggestions),
		editor.WithLogger(a.log),
	)
}

// refreshIndex rebuilds the note title index from the vault directory.
func (a *App) refreshIndex() {
	entries, err := os.ReadDir(a.dir)
	if err != nil {
		a.log.FileError(a.dir, err)
		return
	}
	var ns []notes.Note
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		ns = append(ns, notes.Note{
			ID:        uuid.New(),
			Title:     strings.TrimSuffix(e.Name(), ".md"),
			UpdatedAt: info.ModTime(),
		})
	}
	a.index.Replace(ns)
}

// openNote navigates to a sibling note by title, creating the note
// when no file exists for it yet.
func (a *App) openNote(title string) error {
	path := filepath.Join(a.dir, title+".md")
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("open note %q: %w", title, err)
		}
		if err := os.WriteFile(path, nil, 0644); err != nil {
			return fmt.Errorf("create note %q: %w", title, err)
		}
		a.refreshIndex()
		data = nil
	}
	a.path = path
	a.topLine = 0
	a.session = a.newSession(string(data))
	a.log.FileOpened(path, len(data))
	return nil
}

func (a *App) save() {
	if a.path == "" {
		return
	}
	text := a.session.Document().Text()
	if err := os.WriteFile(a.path, []byte(text), 0644); err != nil {
		a.log.FileError(a.path, err)
		return
	}
	a.log.FileSaved(a.path, len(text))
	a.refreshIndex()
}

// Run initializes the terminal and processes events until quit.
func (a *App) Run() error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	a.screen = screen
	defer screen.Fini()
	screen.EnableMouse()

	for {
		a.paint()
		ev := screen.PollEvent()
		switch ev := ev.(type) {
		case *tcell.EventResize:
			screen.Sync()
		case *tcell.EventInterrupt:
			a.applyFindQuery()
		case *tcell.EventMouse:
			a.handleMouse(ev)
		case *tcell.EventKey:
			var err error
			if a.mode == modeFind {
				err = a.handleFindKey(ev)
			} else {
				err = a.handleEditKey(ev)
			}
			if err != nil {
				return err
			}
		case nil:
			return nil
		}
	}
}

// Shutdown releases the terminal and the log file.
func (a *App) Shutdown() {
	a.shutdownOnce.Do(func() {
		if a.screen != nil {
			a.screen.Fini()
		}
		if a.logCleanup != nil {
			a.logCleanup()
		}
	})
}

func (a *App) handleEditKey(ev *tcell.EventKey) error {
	s := a.session
	switch ev.Key() {
	case tcell.KeyCtrlQ:
		return ErrQuit
	case tcell.KeyCtrlS:
		a.save()
	case tcell.KeyCtrlF:
		a.mode = modeFind
		a.findQuery = a.findQuery[:0]
		a.findRepl = a.findRepl[:0]
		a.findField = 0
	case tcell.KeyLeft:
		a.moveCaretRunes(-1)
	case tcell.KeyRight:
		a.moveCaretRunes(1)
	case tcell.KeyUp:
		a.moveCaretLines(-1)
	case tcell.KeyDown:
		a.moveCaretLines(1)
	case tcell.KeyHome:
		s.SetCaret(s.Document().LineStartOffset(s.Document().LineAt(s.Caret())))
	case tcell.KeyEnd:
		s.SetCaret(s.Document().LineEndOffset(s.Document().LineAt(s.Caret())))
	case tcell.KeyEnter:
		if err := s.InsertText("\n"); err != nil {
			return err
		}
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		a.deleteBack()
	case tcell.KeyTab:
		if len(a.popup) > 0 {
			return a.acceptSuggestion()
		}
		if err := s.InsertText("\t"); err != nil {
			return err
		}
	case tcell.KeyCtrlN:
		if len(a.popup) > 0 {
			a.popupSel = (a.popupSel + 1) % len(a.popup)
			return nil
		}
	case tcell.KeyCtrlP:
		if len(a.popup) > 0 {
			a.popupSel = (a.popupSel + len(a.popup) - 1) % len(a.popup)
			return nil
		}
	case tcell.KeyEscape:
		a.popup = nil
		a.popupSel = 0
		return nil
	case tcell.KeyRune:
		if err := s.InsertText(string(ev.Rune())); err != nil {
			return err
		}
	}
	a.session.EnsureVisible()
	a.refreshPopup()
	return nil
}

func (a *App) refreshPopup() {
	ctx, suggestions, ok := a.session.Suggestions()
	if !ok {
		a.popup = nil
		a.popupSel = 0
		return
	}
	a.popup = suggestions
	a.popupCtx = ctx
	if a.popupSel >= len(a.popup) {
		a.popupSel = 0
	}
}

func (a *App) acceptSuggestion() error {
	sg := a.popup[a.popupSel]
	a.popup = nil
	a.popupSel = 0
	if err := a.session.AcceptSuggestion(a.popupCtx, sg); err != nil {
		return err
	}
	a.session.EnsureVisible()
	return nil
}

func (a *App) handleFindKey(ev *tcell.EventKey) error {
	eng := a.session.Search()
	switch ev.Key() {
	case tcell.KeyCtrlQ:
		return ErrQuit
	case tcell.KeyEscape:
		eng.Close()
		a.mode = modeEdit
	case tcell.KeyTab:
		a.findField = 1 - a.findField
	case tcell.KeyEnter, tcell.KeyCtrlN:
		if m, ok := eng.Next(); ok {
			a.session.SetCaret(m.From)
			a.session.EnsureVisible()
		}
	case tcell.KeyCtrlP:
		if m, ok := eng.Prev(); ok {
			a.session.SetCaret(m.From)
			a.session.EnsureVisible()
		}
	case tcell.KeyCtrlR:
		if err := eng.ReplaceCurrent(string(a.findRepl)); err != nil {
			return err
		}
		a.session.Invalidate(editor.ReasonDocChanged)
		if m, ok := eng.Current(); ok {
			a.session.SetCaret(m.From)
			a.session.EnsureVisible()
		}
	case tcell.KeyCtrlU:
		if err := eng.ReplaceAll(string(a.findRepl)); err != nil {
			return err
		}
		a.session.Invalidate(editor.ReasonDocChanged)
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if a.findField == 0 && len(a.findQuery) > 0 {
			a.findQuery = a.findQuery[:len(a.findQuery)-1]
			a.scheduleFindQuery()
		} else if a.findField == 1 && len(a.findRepl) > 0 {
			a.findRepl = a.findRepl[:len(a.findRepl)-1]
		}
	case tcell.KeyRune:
		if a.findField == 0 {
			a.findQuery = append(a.findQuery, ev.Rune())
			a.scheduleFindQuery()
		} else {
			a.findRepl = append(a.findRepl, ev.Rune())
		}
	}
	return nil
}

// scheduleFindQuery rescans after the configured debounce window,
// posting an interrupt so the scan runs on the event loop.
func (a *App) scheduleFindQuery() {
	wait := time.Duration(a.cfg.Search.DebounceMS) * time.Millisecond
	if wait == 0 {
		a.applyFindQuery()
		return
	}
	if a.debounce != nil {
		a.debounce.Stop()
	}
	a.debounce = time.AfterFunc(wait, func() {
		_ = a.screen.PostEvent(tcell.NewEventInterrupt(nil))
	})
}

func (a *App) applyFindQuery() {
	eng := a.session.Search()
	query := string(a.findQuery)
	if err := eng.SetQuery(query, search.Options{
		CaseSensitive: a.cfg.Search.CaseSensitive,
		WholeWord:     a.cfg.Search.WholeWord,
	}); err != nil {
		a.log.FileError(a.path, err)
		return
	}
	a.log.SearchQuery(query, eng.State().MatchCount)
}

func (a *App) handleMouse(ev *tcell.EventMouse) {
	if ev.Buttons()&tcell.Button1 == 0 {
		return
	}
	x, y := ev.Position()
	if y >= len(a.rows) {
		return
	}
	line := a.topLine + y
	doc := a.session.Document()
	if line >= doc.LineCount() {
		return
	}
	off, ok := render.ColumnToOffset(a.rows[y], x)
	if !ok {
		a.session.SetCaret(doc.LineEndOffset(line))
		return
	}

	if in, ok := a.widgetUnder(off); ok {
		switch in.Widget.(type) {
		case widget.Checkbox:
			a.session.ToggleCheckbox(in.From)
			return
		case wikilink.Widget:
			if err := a.session.Click(off); err != nil {
				a.log.NavigateError("", err)
			}
			return
		}
	}
	a.session.SetCaret(off)
}

func (a *App) widgetUnder(off buffer.ByteOffset) (decor.Instruction, bool) {
	d := a.session.Decorations()
	for _, layer := range [][]decor.Instruction{d.Markdown, d.Wiki} {
		for _, in := range layer {
			if in.Op == decor.OpWidget && off >= in.From && off < in.To {
				return in, true
			}
		}
	}
	return decor.Instruction{}, false
}

// deleteBack removes the rune before the caret.
func (a *App) deleteBack() {
	caret := a.session.Caret()
	if caret == 0 {
		return
	}
	text := a.session.Document().Text()
	_, size := utf8.DecodeLastRuneInString(text[:caret])
	if err := a.session.DeleteRange(caret-size, caret); err != nil {
		a.log.FileError(a.path, err)
	}
}

func (a *App) moveCaretRunes(dir int) {
	doc := a.session.Document()
	text := doc.Text()
	caret := a.session.Caret()
	if dir > 0 {
		if caret < len(text) {
			_, size := utf8.DecodeRuneInString(text[caret:])
			a.session.SetCaret(caret + size)
		}
		return
	}
	if caret > 0 {
		_, size := utf8.DecodeLastRuneInString(text[:caret])
		a.session.SetCaret(caret - size)
	}
}

func (a *App) moveCaretLines(dir int) {
	doc := a.session.Document()
	p := doc.OffsetToPoint(a.session.Caret())
	p.Line += dir
	if p.Line < 0 || p.Line >= doc.LineCount() {
		return
	}
	a.session.SetCaret(doc.PointToOffset(p))
}
