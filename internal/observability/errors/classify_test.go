package errors

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

type statusError struct{ code int }

func (e *statusError) Error() string { return fmt.Sprintf("status %d", e.code) }

func TestClassify(t *testing.T) {
	assert.Empty(t, Classify(nil))
	assert.Equal(t, "errors_statuserror", Classify(fmt.Errorf("download: %w", &statusError{code: 502})))
	assert.Equal(t, "context_deadlineexceedederror", Classify(fmt.Errorf("fetch: %w", context.DeadlineExceeded)))
}
