package printers

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"tableflip.dev/marklet/pkg/bookmarklet"
	"tableflip.dev/marklet/pkg/engine"
	"tableflip.dev/marklet/pkg/settings"
	"tableflip.dev/marklet/pkg/timeutil"
)

type PrettyPrint struct {
	ShowID bool
	Out    io.Writer
}

func (pp *PrettyPrint) out() io.Writer {
	return Output(pp.Out)
}

func (pp *PrettyPrint) NewLine() {
	_, _ = fmt.Fprintln(pp.out(), "")
}

func (pp *PrettyPrint) Title(title string) {
	t := color.New(color.Bold, color.Underline)
	_, _ = t.Fprintln(pp.out(), title)
}

func (pp *PrettyPrint) TitleWithCount(title string, count int) {
	t := color.New(color.Bold, color.Underline)
	c := color.New(color.Faint)

	_, _ = t.Fprint(pp.out(), title)
	_, _ = c.Fprintf(pp.out(), " - %d", count)

	switch count {
	case 1:
		_, _ = c.Fprintln(pp.out(), " bookmarklet")
	default:
		_, _ = c.Fprintln(pp.out(), " bookmarklets")
	}
}

// Bookmarklets prints one row per bookmarklet.
func (pp *PrettyPrint) Bookmarklets(items ...bookmarklet.Bookmarklet) {
	if len(items) == 0 {
		f := color.New(color.Faint, color.Italic)
		_, _ = f.Fprint(pp.out(), " none\n\n")
		return
	}

	star := color.New(color.FgHiYellow)
	y := color.New(color.FgHiYellow, color.Italic, color.Faint)
	faint := color.New(color.Faint)

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = 60
	for _, b := range items {
		mark := " "
		if b.Favorite {
			mark = star.Sprint("★")
		}
		row := []interface{}{mark, b.Name, faint.Sprint(strings.Join(b.Tags, ", ")), faint.Sprint(lastUsed(b))}
		if pp.ShowID {
			row = append([]interface{}{y.Sprint(b.ID)}, row...)
		}
		tbl.AddRow(row...)
	}
	_, _ = fmt.Fprintln(pp.out(), tbl)
	pp.NewLine()
}

// Bookmarklet prints every field of b and the slots bound to it.
func (pp *PrettyPrint) Bookmarklet(b bookmarklet.Bookmarklet, current settings.Settings) {
	bold := color.New(color.Bold)
	pp.Title(b.Name)

	var slots []string
	for _, slot := range settings.Slots {
		if current.Binding(slot) == b.ID {
			slots = append(slots, slot)
		}
	}

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold.Sprint("id"), b.ID)
	tbl.AddRow(bold.Sprint("tags"), strings.Join(b.Tags, ", "))
	tbl.AddRow(bold.Sprint("favorite"), b.Favorite)
	tbl.AddRow(bold.Sprint("slots"), strings.Join(slots, ", "))
	tbl.AddRow(bold.Sprint("created"), b.CreatedAt.String())
	tbl.AddRow(bold.Sprint("updated"), b.UpdatedAt.String())
	tbl.AddRow(bold.Sprint("last used"), lastUsed(b))
	tbl.RightAlign(0)
	_, _ = fmt.Fprintln(pp.out(), tbl)
	pp.NewLine()
	_, _ = fmt.Fprintln(pp.out(), b.Code)
}

// Settings prints the effective settings.
func (pp *PrettyPrint) Settings(s settings.Settings) {
	bold := color.New(color.Bold)
	faint := color.New(color.Faint)

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold.Sprint("shortcutMode"), s.ShortcutMode)
	for _, slot := range settings.Slots {
		id := s.Binding(slot)
		if id == "" {
			id = faint.Sprint("unassigned")
		}
		tbl.AddRow(bold.Sprint("slot "+slot), id)
	}
	tbl.AddRow(bold.Sprint("confirmBeforeRun"), s.ConfirmBeforeRun)
	tbl.AddRow(bold.Sprint("launcherMaxItems"), s.LauncherMaxItems)
	tbl.RightAlign(0)
	_, _ = fmt.Fprintln(pp.out(), tbl)
}

// Outcome prints the result of a run.
func (pp *PrettyPrint) Outcome(o engine.Outcome) {
	if !o.OK {
		_, _ = color.New(color.FgRed).Fprintln(pp.out(), o.Message)
		return
	}
	msg := o.Message
	if o.Mode != "" {
		msg += color.New(color.Faint).Sprintf(" (%s)", o.Mode)
	}
	_, _ = color.New(color.FgGreen).Fprintln(pp.out(), msg)
	if o.Output != nil {
		_, _ = fmt.Fprintln(pp.out(), *o.Output)
	}
}

func lastUsed(b bookmarklet.Bookmarklet) string {
	if !b.Used() {
		return "never"
	}
	since := time.Since(b.LastUsedAt.Time)
	if since < time.Minute {
		return "just now"
	}
	return timeutil.Coarse(since, 2) + " ago"
}
