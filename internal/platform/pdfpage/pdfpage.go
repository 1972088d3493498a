// Copyright (c) 2026 GalleManga. All rights reserved.

/*
Package pdfpage determines the page count of an uploaded chapter PDF.

Methods are tried in a fixed order and the first positive count wins:

 1. Structural parse with pdfcpu (in process).
 2. The poppler 'pdfinfo' tool, when it is installed.
 3. A raw scan for page objects in the file bytes.

The later methods only run when the earlier ones fail or report zero, so a
well-formed file always gets its count from the parser. A file that no method
can count is unreadable and must be rejected by the caller.
*/
package pdfpage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// ErrUnreadable is returned when no method yields a positive page count.
var ErrUnreadable = errors.New("pdfpage: unreadable pdf")

// Method is one page-counting strategy.
type Method interface {
	Name() string
	Count(ctx context.Context, path string) (int, error)
}

// Result reports the count and the method that produced it.
type Result struct {
	Pages  int
	Method string
}

// Counter runs its methods in order until one succeeds.
type Counter struct {
	methods []Method
	logger  *slog.Logger
}

// NewCounter returns a Counter with the default method chain.
func NewCounter(logger *slog.Logger) *Counter {
	return NewCounterWith(logger, NewParserMethod(), NewPdfinfoMethod(), NewScanMethod())
}

// NewCounterWith returns a Counter with a custom method chain.
func NewCounterWith(logger *slog.Logger, methods ...Method) *Counter {
	return &Counter{methods: methods, logger: logger}
}

/*
Count returns the page count of the PDF at path.

Parameters:
  - ctx: context.Context (bounds the external tool)
  - path: string (file on local disk)

Returns:
  - Result: Pages and the name of the method that counted them
  - error: ErrUnreadable when every method failed or returned zero
*/
func (counter *Counter) Count(ctx context.Context, path string) (Result, error) {
	var failures []error

	for _, method := range counter.methods {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		pages, err := method.Count(ctx, path)
		if err == nil && pages > 0 {
			return Result{Pages: pages, Method: method.Name()}, nil
		}

		if err == nil {
			err = fmt.Errorf("no pages found")
		}
		failures = append(failures, fmt.Errorf("%s: %w", method.Name(), err))

		counter.logger.DebugContext(ctx, "pdf_page_count_method_failed",
			slog.String("method", method.Name()),
			slog.Any("error", err),
		)
	}

	return Result{}, fmt.Errorf("%w: %w", ErrUnreadable, errors.Join(failures...))
}
