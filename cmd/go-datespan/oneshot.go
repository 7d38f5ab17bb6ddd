package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/tartampluch/go-datespan/internal/config"
	"github.com/tartampluch/go-datespan/internal/engine"
)

// runOneShot computes a single span for a DD/MM/YYYY argument. The span goes
// to out; field errors go to errOut and yield config.ExitCodeInvalid.
func runOneShot(ctx context.Context, calc *engine.Calculator, date string, until bool, out, errOut io.Writer) int {
	parts := strings.Split(date, config.CLIDateSeparator)
	if len(parts) != config.CLIDateParts {
		fmt.Fprintf(errOut, config.FormatCLIFieldError, config.FlagDate, config.ErrCLIDateFormat)
		return config.ExitCodeInvalid
	}

	dir := engine.PastOnly
	if until {
		dir = engine.FutureOnly
	}

	res, err := calc.SubmitFields(ctx, parts[0], parts[1], parts[2], dir)
	if err != nil {
		var fe engine.FieldErrors
		if !errors.As(err, &fe) {
			fmt.Fprintln(errOut, err)
			return config.ExitCodeError
		}
		for _, e := range fe {
			fmt.Fprintf(errOut, config.FormatCLIFieldError, e.Field, e.Message)
		}
		return config.ExitCodeInvalid
	}

	fmt.Fprintf(out, config.FormatCLISpan, res.Span.Years, res.Span.Months, res.Span.Days)
	return config.ExitCodeSuccess
}
