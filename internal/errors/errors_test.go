package errors

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestHandler() (*Handler, *bytes.Buffer) {
	var buf bytes.Buffer
	return NewHandler(slog.New(slog.NewTextHandler(&buf, nil))), &buf
}

func TestHandlerLogsValidationAsRejectedInput(t *testing.T) {
	h, buf := newTestHandler()

	h.Handle(context.Background(), NewInvalidReading("glucose value must be a finite number"))

	out := buf.String()
	assert.Contains(t, out, "Rejected input")
	assert.Contains(t, out, "INVALID_READING")
	assert.Contains(t, out, "glucose value must be a finite number")
}

func TestHandlerLogsDatabaseAsCritical(t *testing.T) {
	h, buf := newTestHandler()

	h.Handle(context.Background(), NewDatabaseError(fmt.Errorf("disk full")))

	out := buf.String()
	assert.Contains(t, out, "Critical error")
	assert.Contains(t, out, "REPOSITORY_FAILURE")
	assert.Contains(t, out, "disk full")
}

func TestHandlerIgnoresNil(t *testing.T) {
	h, buf := newTestHandler()

	h.Handle(context.Background(), nil)

	assert.Empty(t, buf.String())
}

func TestHandlerLogsPlainErrors(t *testing.T) {
	h, buf := newTestHandler()

	h.Handle(context.Background(), fmt.Errorf("something broke"))

	out := buf.String()
	assert.Contains(t, out, "Unhandled error")
	assert.Contains(t, out, "something broke")
}

func TestConstructorsMatchPredefinedErrors(t *testing.T) {
	assert.ErrorIs(t, NewDatabaseError(fmt.Errorf("disk full")), ErrRepositoryFailure)
	assert.ErrorIs(t, NewPatientNotFound("Nobody"), ErrPatientNotFound)
	assert.ErrorIs(t, NewInvalidReading("bad input"), ErrInvalidReading)

	assert.NotErrorIs(t, NewInvalidReading("bad input"), ErrRepositoryFailure)
	assert.NotErrorIs(t, NewNotFoundError("goal", "id=1"), ErrPatientNotFound)
}
