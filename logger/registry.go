package logger

import (
	"sort"

	"github.com/pkg/errors"
)

// BackendLog is the logging backend used to create all subsystem loggers.
var BackendLog = NewBackend()

// subsystemTags is an enum of all sub system tags
type subsystemTags struct {
	STRD,
	CNFG,
	STOR,
	DBAC,
	LEDG string
}

// SubsystemTags is an instance of subsystemTags, used for identifying
// loggers by their subsystem when calling Get.
var SubsystemTags = subsystemTags{
	STRD: "STRD",
	CNFG: "CNFG",
	STOR: "STOR",
	DBAC: "DBAC",
	LEDG: "LEDG",
}

// subsystemLoggers maps each subsystem identifier to its associated logger.
var subsystemLoggers = map[string]*Logger{
	SubsystemTags.STRD: BackendLog.Logger(SubsystemTags.STRD),
	SubsystemTags.CNFG: BackendLog.Logger(SubsystemTags.CNFG),
	SubsystemTags.STOR: BackendLog.Logger(SubsystemTags.STOR),
	SubsystemTags.DBAC: BackendLog.Logger(SubsystemTags.DBAC),
	SubsystemTags.LEDG: BackendLog.Logger(SubsystemTags.LEDG),
}

// Get returns a logger of a specific sub system
func Get(tag string) (logger *Logger, ok bool) {
	logger, ok = subsystemLoggers[tag]
	return
}

// SetLogLevel sets the logging level for provided subsystem. Invalid
// subsystems are ignored; no logger is created for them.
func SetLogLevel(subsystemID string, logLevel string) {
	// Ignore invalid subsystems.
	logger, ok := subsystemLoggers[subsystemID]
	if !ok {
		return
	}

	// Defaults to info if the log level is invalid.
	level, _ := LevelFromString(logLevel)
	logger.SetLevel(level)
}

// SetLogLevels sets the log level for all subsystem loggers to the passed
// level. The loggers themselves are created when the package loads.
func SetLogLevels(logLevel string) {
	// Configure all sub-systems with the new logging level.
	for subsystemID := range subsystemLoggers {
		SetLogLevel(subsystemID, logLevel)
	}
}

// SupportedSubsystems returns a sorted slice of the supported subsystems for
// logging purposes.
func SupportedSubsystems() []string {
	// Convert the subsystemLoggers map keys to a slice.
	subsystems := make([]string, 0, len(subsystemLoggers))
	for subsysID := range subsystemLoggers {
		subsystems = append(subsystems, subsysID)
	}
	sort.Strings(subsystems)
	return subsystems
}

// InitLog attaches log file and error log file to the backend log.
func InitLog(logFile, errLogFile string) error {
	err := BackendLog.AddLogFile(logFile, LevelTrace)
	if err != nil {
		return errors.Errorf("Error adding log file %s as log rotator for level %s: %s",
			logFile, LevelTrace, err)
	}
	err = BackendLog.AddLogFile(errLogFile, LevelWarn)
	if err != nil {
		return errors.Errorf("Error adding log file %s as log rotator for level %s: %s",
			errLogFile, LevelWarn, err)
	}
	return errors.WithStack(BackendLog.Run())
}
