// Package incrementer provides JobParametersIncrementer implementations.
package incrementer

import (
	"fmt"
	"strconv"
	"time"

	model "orderbatch/pkg/batch/core/model"
	port "orderbatch/pkg/batch/core/port"
	"orderbatch/pkg/batch/support/logger"
)

// TimestampIncrementer is a JobParametersIncrementer that stamps the named
// parameter with the current Unix milliseconds. It guarantees a launch-unique
// token so consecutive launches form distinct JobInstances.
type TimestampIncrementer struct {
	name string
}

// NewTimestampIncrementer creates a new TimestampIncrementer for the given
// parameter name.
func NewTimestampIncrementer(name string) *TimestampIncrementer {
	return &TimestampIncrementer{name: name}
}

// Ensure TimestampIncrementer implements port.JobParametersIncrementer.
var _ port.JobParametersIncrementer = (*TimestampIncrementer)(nil)

// GetNext adds or updates the timestamp parameter in the given JobParameters
// and returns the new parameters. The input is not modified.
func (i *TimestampIncrementer) GetNext(params model.JobParameters) model.JobParameters {
	nextParams := params.Copy()

	timestamp := time.Now().UnixMilli()
	nextParams.Put(i.name, strconv.FormatInt(timestamp, 10))
	logger.Debugf("JobParametersIncrementer '%s': setting '%s' to %d.", i.name, i.name, timestamp)

	return nextParams
}

// String returns the string representation of TimestampIncrementer.
func (i *TimestampIncrementer) String() string {
	return fmt.Sprintf("TimestampIncrementer[name=%s]", i.name)
}
