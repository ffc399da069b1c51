package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pairlog/pairlog/internal/model"
	"github.com/pairlog/pairlog/internal/service"
)

// loadSheet returns the session's working sheet, fetching it on first
// use. The sheet carries partner annotations that exist only locally,
// so it is kept until the link or the session changes.
func (a *App) loadSheet(ctx context.Context) (*service.Sheet, error) {
	a.mu.Lock()
	sheet := a.sheet
	a.mu.Unlock()
	if sheet != nil {
		return sheet, nil
	}

	sheet, err := a.calendar.Load(ctx)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	a.sheet = sheet
	a.mu.Unlock()
	return sheet, nil
}

// Mark toggles a day on one of the four tracked-date sets.
// Usage: mark <YYYY-MM-DD> [self|partner] [flow|intimacy]
func (a *App) Mark(ctx context.Context, args []string) {
	ctx, ok := a.sessionCtx(ctx)
	if !ok {
		return
	}
	if len(args) == 0 {
		fmt.Fprintln(a.out, "Usage: mark <YYYY-MM-DD> [self|partner] [flow|intimacy]")
		return
	}

	day := args[0]
	who := service.WhoSelf
	axis := service.AxisFlow
	for _, arg := range args[1:] {
		switch arg {
		case "self":
			who = service.WhoSelf
		case "partner":
			who = service.WhoPartner
		case "flow":
			axis = service.AxisFlow
		case "intimacy":
			axis = service.AxisIntimacy
		default:
			fmt.Fprintln(a.out, "Usage: mark <YYYY-MM-DD> [self|partner] [flow|intimacy]")
			return
		}
	}

	sheet, err := a.loadSheet(ctx)
	if err != nil {
		fmt.Fprintln(a.out, "Error:", err)
		return
	}

	marked, err := a.calendar.Toggle(ctx, sheet, day, who, axis)
	if err != nil {
		fmt.Fprintln(a.out, "Error:", err)
		return
	}

	state := "Unmarked"
	if marked {
		state = "Marked"
	}
	fmt.Fprintf(a.out, "%s %s (%s %s)\n", state, day, who, axis)
	if who == service.WhoPartner {
		fmt.Fprintln(a.out, "Partner marks are notes for this session only; they are not stored.")
	}
}

// Cal renders the merged calendar for one month.
// Usage: cal [YYYY-MM]
func (a *App) Cal(ctx context.Context, args []string) {
	ctx, ok := a.sessionCtx(ctx)
	if !ok {
		return
	}

	month := time.Now()
	if len(args) > 0 {
		parsed, err := time.Parse("2006-01", args[0])
		if err != nil {
			fmt.Fprintln(a.out, "Usage: cal [YYYY-MM]")
			return
		}
		month = parsed
	}

	sheet, err := a.loadSheet(ctx)
	if err != nil {
		fmt.Fprintln(a.out, "Error:", err)
		return
	}

	a.renderMonth(sheet, month)
}

func (a *App) renderMonth(sheet *service.Sheet, month time.Time) {
	marks := sheet.Merged()

	title := month.Format("January 2006")
	if sheet.Linked {
		title = fmt.Sprintf("%s (with %s)", title, sheet.PartnerNickname)
	}
	fmt.Fprintln(a.out, title)
	fmt.Fprintln(a.out, "   Mo   Tu   We   Th   Fr   Sa   Su")

	first := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC)
	// Monday-first column offset.
	offset := (int(first.Weekday()) + 6) % 7
	days := first.AddDate(0, 1, -1).Day()

	var line strings.Builder
	line.WriteString(strings.Repeat("     ", offset))
	for d := 1; d <= days; d++ {
		day := time.Date(month.Year(), month.Month(), d, 0, 0, 0, 0, time.UTC).Format(model.DayFormat)
		m := marks[day]
		line.WriteString(fmt.Sprintf("%3d%s%s", d, flowMark(m), intimacyMark(m)))
		if (offset+d)%7 == 0 {
			fmt.Fprintln(a.out, line.String())
			line.Reset()
		}
	}
	if line.Len() > 0 {
		fmt.Fprintln(a.out, line.String())
	}

	fmt.Fprintln(a.out, "Flow: * yours  o partner  @ both    Intimacy: ' yours  , partner  \" both")
}

func flowMark(m model.DayMark) string {
	switch {
	case m.CoOccurring():
		return "@"
	case m.Selected:
		return "*"
	case m.PartnerFlow:
		return "o"
	}
	return " "
}

func intimacyMark(m model.DayMark) string {
	switch {
	case m.SelfIntimacy && m.PartnerIntimacy:
		return "\""
	case m.SelfIntimacy:
		return "'"
	case m.PartnerIntimacy:
		return ","
	}
	return " "
}
