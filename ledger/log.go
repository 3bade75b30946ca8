package ledger

import (
	"github.com/strandnet/strandd/logger"
)

var log, _ = logger.Get(logger.SubsystemTags.LEDG)
