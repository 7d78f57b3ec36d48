package command

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRealRunner_Success(t *testing.T) {
	t.Parallel()

	runner := NewRealRunner()
	result, err := runner.Run(context.Background(), "sh", "-c", "echo hello")

	require.NoError(t, err)
	assert.True(t, result.Success())
	assert.Equal(t, "hello", result.Stdout)
}

func TestRealRunner_NonZeroExitIsNotAnError(t *testing.T) {
	t.Parallel()

	runner := NewRealRunner()
	result, err := runner.Run(context.Background(), "sh", "-c", "echo oops >&2; exit 3")

	require.NoError(t, err, "a non-zero exit is a result, not an error")
	assert.False(t, result.Success())
	assert.Equal(t, 3, result.ExitCode)
	assert.Equal(t, "oops", result.Stderr)
}

func TestRealRunner_MissingBinaryIsAnError(t *testing.T) {
	t.Parallel()

	runner := NewRealRunner()
	_, err := runner.Run(context.Background(), "definitely-not-a-binary-xyz")

	assert.Error(t, err)
}

func TestNewTimeoutRunner_ZeroReturnsInner(t *testing.T) {
	t.Parallel()

	inner := NewRealRunner()
	assert.Same(t, inner, NewTimeoutRunner(inner, 0))
}

func TestTimeoutRunner_CancelsSlowCommands(t *testing.T) {
	t.Parallel()

	runner := NewTimeoutRunner(NewRealRunner(), 50*time.Millisecond)
	result, err := runner.Run(context.Background(), "sleep", "5")

	// A killed command surfaces as an error or a non-zero exit,
	// depending on how the runtime reports the signal.
	if err == nil {
		assert.False(t, result.Success())
	}
}
