package ui

import (
	"log/slog"
	"sort"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	"github.com/tartampluch/go-datespan/internal/config"
	"github.com/tartampluch/go-datespan/internal/engine"
)

// sortContacts orders the report by column. Contacts without a birth year
// have no age and always sort after the others on the age and birth columns.
func sortContacts(list []engine.ContactAge, col int, asc bool) {
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if col == config.ColIDAge || col == config.ColIDBirth {
			if a.YearKnown != b.YearKnown {
				return a.YearKnown
			}
		}

		var less bool
		switch col {
		case config.ColIDName:
			less = strings.ToLower(a.Name) < strings.ToLower(b.Name)
		case config.ColIDBirth:
			less = a.DateOfBirth.Before(b.DateOfBirth)
		case config.ColIDAge:
			less = spanLess(a.Age, b.Age)
		default: // config.ColIDNext
			if a.NextBirthday.Equal(b.NextBirthday) {
				less = a.Name < b.Name
			} else {
				less = a.NextBirthday.Before(b.NextBirthday)
			}
		}

		if !asc {
			return !less
		}
		return less
	})
}

func spanLess(a, b engine.Difference) bool {
	if a.Years != b.Years {
		return a.Years < b.Years
	}
	if a.Months != b.Months {
		return a.Months < b.Months
	}
	return a.Days < b.Days
}

// cellText renders one table cell.
func (app *App) cellText(c engine.ContactAge, col int) string {
	switch col {
	case config.ColIDName:
		return c.Name
	case config.ColIDBirth:
		if !c.YearKnown {
			return config.ResultPlaceholder
		}
		format := app.GetMsg(config.TKeyFormatDate)
		if format == config.TKeyFormatDate {
			format = config.DateFormatDisplay
		}
		return c.DateOfBirth.Format(format)
	case config.ColIDAge:
		if !c.YearKnown {
			return config.ResultPlaceholder
		}
		return app.FormatSpan(c.Age)
	default:
		return app.FormatNext(c.UntilNext)
	}
}

// ShowContactsWindow lists every contact with a birthday: exact age and the
// countdown to the next birthday. Only one instance is open at a time.
func (app *App) ShowContactsWindow() {
	if app.contactsWindow != nil {
		app.contactsWindow.RequestFocus()
		return
	}

	w := app.App.NewWindow(app.GetMsg(config.TKeyWinContacts))
	w.Resize(fyne.NewSize(config.ContactsWinWidth, config.ContactsWinHeight))
	app.contactsWindow = w

	currentSortCol := config.ColIDNext
	sortAsc := true
	var display []engine.ContactAge

	// reload copies the shared report so sorting never races the worker.
	reload := func() {
		app.ContactsMut.RLock()
		display = make([]engine.ContactAge, len(app.Contacts))
		copy(display, app.Contacts)
		app.ContactsMut.RUnlock()
		sortContacts(display, currentSortCol, sortAsc)
	}
	reload()

	slog.Info(config.LogMsgOpenWin,
		config.LogKeyComponent, config.CompUI,
		config.LogKeyCount, len(display))

	table := widget.NewTable(
		func() (int, int) { return len(display), config.ColCount },
		func() fyne.CanvasObject { return widget.NewLabel(config.TablePlaceholder) },
		func(id widget.TableCellID, o fyne.CanvasObject) {
			if id.Row >= len(display) {
				return
			}
			o.(*widget.Label).SetText(app.cellText(display[id.Row], id.Col))
		},
	)

	headers := map[int]string{
		config.ColIDName:  config.TKeyColName,
		config.ColIDBirth: config.TKeyColBirth,
		config.ColIDAge:   config.TKeyColAge,
		config.ColIDNext:  config.TKeyColNext,
	}

	table.ShowHeaderRow = true
	table.CreateHeader = func() fyne.CanvasObject {
		return widget.NewButton(config.TablePlaceholder, nil)
	}
	table.UpdateHeader = func(id widget.TableCellID, o fyne.CanvasObject) {
		btn := o.(*widget.Button)
		text := app.GetMsg(headers[id.Col])
		if id.Col == currentSortCol {
			if sortAsc {
				text += config.SortIconAsc
			} else {
				text += config.SortIconDesc
			}
		}
		btn.SetText(text)

		btn.OnTapped = func() {
			if currentSortCol == id.Col {
				sortAsc = !sortAsc
			} else {
				currentSortCol = id.Col
				sortAsc = true
			}
			sortContacts(display, currentSortCol, sortAsc)
			slog.Debug(config.LogMsgSorted,
				config.LogKeyComponent, config.CompUI,
				config.LogKeySortCol, currentSortCol,
				config.LogKeySortAsc, sortAsc)
			table.Refresh()
		}
	}

	table.SetColumnWidth(config.ColIDName, config.ColWidthName)
	table.SetColumnWidth(config.ColIDBirth, config.ColWidthBirth)
	table.SetColumnWidth(config.ColIDAge, config.ColWidthAge)
	table.SetColumnWidth(config.ColIDNext, config.ColWidthNext)

	app.ContactsMut.Lock()
	app.refreshContacts = func() {
		reload()
		table.Refresh()
	}
	app.ContactsMut.Unlock()

	w.SetContent(container.NewBorder(nil, nil, nil, nil, table))
	w.SetOnClosed(func() {
		app.ContactsMut.Lock()
		app.refreshContacts = nil
		app.ContactsMut.Unlock()
		app.contactsWindow = nil
	})
	w.Show()
}
