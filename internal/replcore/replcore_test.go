package replcore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlcore-lang/mlcore/internal/session"
)

func runner() *Runner {
	return New(session.New(session.Config{}, nil))
}

// TestWireFormat pins the exact wire output: the val/it
// three-liner, byte for byte.
func TestWireFormat(t *testing.T) {
	out, err := runner().Run("<stdin>", "val x = 5;\nx;\nit + 1;\n")
	require.NoError(t, err)
	assert.Equal(t, "val x = 5 : int\nval it = 5 : int\nval it = 6 : int\n", out)
}

func TestEmptyInputEmptyOutput(t *testing.T) {
	out, err := runner().Run("<stdin>", "")
	require.NoError(t, err)
	assert.Equal(t, "", out)
}

func TestPartialOutputBeforeFailure(t *testing.T) {
	r := runner()
	out, err := r.Run("<stdin>", "val x = 1;\nexception Boom;\nraise Boom;\nval y = 2;")
	require.Error(t, err)
	assert.Equal(t, "val x = 1 : int\n", out)

	// The session survives the failed statement.
	out, err = r.Run("<stdin>", "x;")
	require.NoError(t, err)
	assert.Equal(t, "val it = 1 : int\n", out)
}

func TestExitCodes(t *testing.T) {
	r := runner()

	_, err := r.Run("<stdin>", "1;")
	assert.Equal(t, 0, ExitCode(err))

	_, err = r.Run("<stdin>", "val = ;")
	assert.Equal(t, 2, ExitCode(err), "parse error")

	_, err = r.Run("<stdin>", "1 + true;")
	assert.Equal(t, 2, ExitCode(err), "type error")

	_, err = r.Run("<stdin>", "exception Boom;\nraise Boom;")
	assert.Equal(t, 1, ExitCode(err), "unhandled exception")

	_, err = r.Run("<stdin>", "1 / 0;")
	assert.Equal(t, 1, ExitCode(err), "runtime error")
}
