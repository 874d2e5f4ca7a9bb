package portaudio

import (
	"go.opentelemetry.io/contrib/bridges/otelslog"
)

const scopeName = "github.com/voxa-labs/voxcore/core/audio/portaudio"

var logger = otelslog.NewLogger(scopeName)
