// Package processor provides the item processor of the order processing job.
package processor

import (
	"context"
	"fmt"
	"time"

	"orderbatch/internal/order"
	port "orderbatch/pkg/batch/core/port"
	"orderbatch/pkg/batch/support/exception"
	"orderbatch/pkg/batch/support/logger"
)

// ProcessingMode selects the status decision rule applied to each order.
type ProcessingMode string

const (
	// ModeFast completes every order immediately.
	ModeFast ProcessingMode = "FAST"
	// ModeNormal completes small orders and routes large ones to review.
	ModeNormal ProcessingMode = "NORMAL"
	// ModeCareful routes every order to review.
	ModeCareful ProcessingMode = "CAREFUL"
)

// normalModeThreshold is the amount at and above which NORMAL mode routes an
// order to PROCESSING instead of completing it.
const normalModeThreshold = 10000

// ParseProcessingMode validates a mode string from configuration.
func ParseProcessingMode(s string) (ProcessingMode, error) {
	switch mode := ProcessingMode(s); mode {
	case ModeFast, ModeNormal, ModeCareful:
		return mode, nil
	default:
		return "", exception.NewBatchError(exception.ModuleProcessor,
			fmt.Sprintf("unknown processing mode '%s' (expected FAST, NORMAL or CAREFUL)", s), nil)
	}
}

// OrderProcessor applies the configured processing mode to each order: it
// decides the next status and stamps the processing time. The mode is fixed
// at construction; an unknown mode never reaches Process.
type OrderProcessor struct {
	mode ProcessingMode
	// now is the clock used for the processed date, replaceable in tests.
	now func() time.Time
}

// NewOrderProcessor creates an OrderProcessor for the given mode string.
// An unknown mode is rejected here so misconfiguration fails at wiring time,
// not in the middle of a run.
func NewOrderProcessor(mode string) (*OrderProcessor, error) {
	parsed, err := ParseProcessingMode(mode)
	if err != nil {
		return nil, err
	}
	return &OrderProcessor{mode: parsed, now: time.Now}, nil
}

// Verify that OrderProcessor implements the port.ItemProcessor interface.
var _ port.ItemProcessor[*order.Order, *order.Order] = (*OrderProcessor)(nil)

// Process decides the order's next status and sets the processed date.
func (p *OrderProcessor) Process(ctx context.Context, item *order.Order) (*order.Order, error) {
	switch p.mode {
	case ModeFast:
		item.Status = order.StatusCompleted
	case ModeNormal:
		if item.Amount < normalModeThreshold {
			item.Status = order.StatusCompleted
		} else {
			item.Status = order.StatusProcessing
		}
	case ModeCareful:
		item.Status = order.StatusProcessing
	}

	processedAt := p.now()
	item.ProcessedDate = &processedAt

	logger.Debugf("OrderProcessor (%s): %s -> %s", p.mode, item.OrderNumber, item.Status)
	return item, nil
}
