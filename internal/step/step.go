// Package step holds the job parameter keys and formats shared by the order
// processing step components and the wiring code.
package step

import (
	"fmt"
	"strconv"
	"time"

	model "orderbatch/pkg/batch/core/model"
)

// Job parameter keys consumed by the order processing job.
const (
	ParamStartDate      = "startDate"
	ParamEndDate        = "endDate"
	ParamMinAmount      = "minAmount"
	ParamProcessingMode = "processingMode"
	ParamTimestamp      = "timestamp"
)

// DateLayout is the calendar-date layout of the startDate/endDate parameters.
const DateLayout = "2006-01-02"

// Criteria is the order selection window resolved from the launch parameters.
type Criteria struct {
	StartDate string
	EndDate   string
	MinAmount int
}

// ResolveCriteria extracts and validates the selection criteria from the
// launch parameters. Missing or malformed parameters are reported as errors;
// launches are expected to be rejected by parameter validation before this
// point, so a failure here indicates a wiring bug.
func ResolveCriteria(params model.JobParameters) (Criteria, error) {
	var c Criteria

	startDate, ok := params.GetString(ParamStartDate)
	if !ok {
		return c, fmt.Errorf("missing job parameter '%s'", ParamStartDate)
	}
	if _, err := time.Parse(DateLayout, startDate); err != nil {
		return c, fmt.Errorf("job parameter '%s' is not a %s date: %w", ParamStartDate, DateLayout, err)
	}

	endDate, ok := params.GetString(ParamEndDate)
	if !ok {
		return c, fmt.Errorf("missing job parameter '%s'", ParamEndDate)
	}
	if _, err := time.Parse(DateLayout, endDate); err != nil {
		return c, fmt.Errorf("job parameter '%s' is not a %s date: %w", ParamEndDate, DateLayout, err)
	}

	minAmountStr, ok := params.GetString(ParamMinAmount)
	if !ok {
		return c, fmt.Errorf("missing job parameter '%s'", ParamMinAmount)
	}
	minAmount, err := strconv.Atoi(minAmountStr)
	if err != nil {
		return c, fmt.Errorf("job parameter '%s' is not an integer: %w", ParamMinAmount, err)
	}

	c.StartDate = startDate
	c.EndDate = endDate
	c.MinAmount = minAmount
	return c, nil
}
