package ui

import (
	"fmt"
	"log/slog"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/tartampluch/go-datespan/internal/config"
	"github.com/tartampluch/go-datespan/internal/engine"
)

// calculatorForm is one tab: three date fields, their inline errors and the
// resulting span. The results only ever show the last accepted submission;
// a rejected one puts the placeholders back.
type calculatorForm struct {
	app *App
	dir engine.Direction

	day, month, year          *NumericalEntry
	dayErr, monthErr, yearErr *widget.Label
	years, months, days       *widget.Label

	submit *widget.Button
	export *widget.Button

	last *engine.Result
}

func newCalculatorForm(app *App, dir engine.Direction) *calculatorForm {
	f := &calculatorForm{
		app:      app,
		dir:      dir,
		day:      NewBoundedEntry(config.DayDigits),
		month:    NewBoundedEntry(config.MonthDigits),
		year:     NewNumericalEntry(),
		dayErr:   newErrorLabel(),
		monthErr: newErrorLabel(),
		yearErr:  newErrorLabel(),
		years:    newResultLabel(),
		months:   newResultLabel(),
		days:     newResultLabel(),
	}

	f.day.PlaceHolder = app.GetMsg(config.TKeyHintDay)
	f.month.PlaceHolder = app.GetMsg(config.TKeyHintMonth)
	f.year.PlaceHolder = app.GetMsg(config.TKeyHintYear)
	for _, e := range []*NumericalEntry{f.day, f.month, f.year} {
		e.OnSubmitted = func(string) { f.Submit() }
	}

	f.submit = widget.NewButtonWithIcon(app.GetMsg(config.TKeyBtnCalculate), theme.ConfirmIcon(), f.Submit)
	f.submit.Importance = widget.HighImportance

	if dir == engine.FutureOnly {
		f.export = widget.NewButtonWithIcon(app.GetMsg(config.TKeyBtnExport), theme.DocumentSaveIcon(), f.exportCalendar)
		f.export.Disable()
	}
	return f
}

func newErrorLabel() *widget.Label {
	l := widget.NewLabel("")
	l.Importance = widget.DangerImportance
	l.TextStyle = fyne.TextStyle{Italic: true}
	l.Wrapping = fyne.TextWrapWord
	return l
}

func newResultLabel() *widget.Label {
	l := widget.NewLabel(config.ResultPlaceholder)
	l.Alignment = fyne.TextAlignCenter
	l.TextStyle = fyne.TextStyle{Bold: true}
	return l
}

func (f *calculatorForm) content() fyne.CanvasObject {
	field := func(key string, entry *NumericalEntry, errLabel *widget.Label) fyne.CanvasObject {
		return container.NewVBox(widget.NewLabel(f.app.GetMsg(key)), entry, errLabel)
	}
	unit := func(value *widget.Label, key string) fyne.CanvasObject {
		caption := widget.NewLabel(f.app.GetMsg(key))
		caption.Alignment = fyne.TextAlignCenter
		return container.NewVBox(value, caption)
	}

	inputs := container.NewGridWithColumns(config.LayoutColumnsTriple,
		field(config.TKeyLblDay, f.day, f.dayErr),
		field(config.TKeyLblMonth, f.month, f.monthErr),
		field(config.TKeyLblYear, f.year, f.yearErr),
	)
	results := container.NewGridWithColumns(config.LayoutColumnsTriple,
		unit(f.years, config.TKeyLblYears),
		unit(f.months, config.TKeyLblMonths),
		unit(f.days, config.TKeyLblDays),
	)

	actions := []fyne.CanvasObject{f.submit}
	if f.export != nil {
		actions = append(actions, f.export)
	}

	return container.NewPadded(container.NewVBox(
		inputs,
		container.NewGridWithColumns(len(actions), actions...),
		widget.NewSeparator(),
		widget.NewCard(f.app.GetMsg(config.TKeyLblResult), "", results),
	))
}

// Submit runs one calculation from the current field values.
func (f *calculatorForm) Submit() {
	res, err := f.app.Calculator.SubmitFields(f.app.Ctx, f.day.Text, f.month.Text, f.year.Text, f.dir)
	f.clearErrors()

	if err != nil {
		f.showResult(nil)
		fe, ok := engine.AsFieldErrors(err)
		if !ok {
			slog.Error(config.MsgCalcRejected,
				config.LogKeyComponent, config.CompUICalc,
				config.LogKeyError, err)
			return
		}
		for _, field := range fe.Fields() {
			f.errorLabel(field).SetText(f.app.FieldErrorText(fe.For(field)[0], f.dir))
		}
		return
	}

	f.showResult(&res)
}

func (f *calculatorForm) errorLabel(field string) *widget.Label {
	switch field {
	case config.FieldDay:
		return f.dayErr
	case config.FieldMonth:
		return f.monthErr
	default:
		return f.yearErr
	}
}

func (f *calculatorForm) clearErrors() {
	f.dayErr.SetText("")
	f.monthErr.SetText("")
	f.yearErr.SetText("")
}

// showResult displays res, or the placeholders when res is nil.
func (f *calculatorForm) showResult(res *engine.Result) {
	f.last = res
	if res == nil {
		f.years.SetText(config.ResultPlaceholder)
		f.months.SetText(config.ResultPlaceholder)
		f.days.SetText(config.ResultPlaceholder)
		if f.export != nil {
			f.export.Disable()
		}
		return
	}

	f.years.SetText(strconv.Itoa(res.Span.Years))
	f.months.SetText(strconv.Itoa(res.Span.Months))
	f.days.SetText(strconv.Itoa(res.Span.Days))
	if f.export != nil {
		f.export.Enable()
	}
}

// exportCalendar saves the last accepted event date as an .ics file.
func (f *calculatorForm) exportCalendar() {
	if f.last == nil || f.app.MainWindow == nil {
		return
	}
	data, err := engine.EventCalendar(f.last.Reference, f.last.Today, f.app.GetMsg(config.TKeyEventSummary))
	if err != nil {
		dialog.ShowError(err, f.app.MainWindow)
		return
	}

	d := dialog.NewFileSave(func(w fyne.URIWriteCloser, err error) {
		if err != nil || w == nil {
			return
		}
		defer func() { _ = w.Close() }()
		if _, err := w.Write(data); err != nil {
			slog.Error(config.ErrWriteResp,
				config.LogKeyComponent, config.CompUICalc,
				config.LogKeyError, err)
			dialog.ShowError(err, f.app.MainWindow)
		}
	}, f.app.MainWindow)
	d.SetFileName(fmt.Sprintf(config.FormatEventFile, f.last.Reference.String()))
	d.Show()
}
