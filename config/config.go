// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/btcsuite/btcutil"
	"github.com/jessevdk/go-flags"
	"github.com/pkg/errors"

	"github.com/strandnet/strandd/logger"
	"github.com/strandnet/strandd/version"
)

const (
	defaultDataDirname    = "data"
	defaultLogDirname     = "logs"
	defaultLogFilename    = "strandd.log"
	defaultErrLogFilename = "strandd_err.log"
	defaultLogLevel       = "info"
)

var (
	// defaultHomeDir is the default home directory for strandd.
	defaultHomeDir = btcutil.AppDataDir("strandd", false)

	defaultDataDir = filepath.Join(defaultHomeDir, defaultDataDirname)
)

// Config defines the configuration options for strandd.
type Config struct {
	ShowVersion bool   `short:"V" long:"version" description:"Display version information and exit"`
	DataDir     string `short:"b" long:"datadir" description:"Directory to store data"`
	LogDir      string `long:"logdir" description:"Directory to log output"`
	DebugLevel  string `short:"d" long:"debuglevel" description:"Logging level {trace, debug, info, warn, error, critical}"`
	DumpAccount string `long:"dumpaccount" description:"Print the block chain of the given account and exit"`
	NoLogFiles  bool   `long:"nologfiles" description:"Disable logging to files"`

	// ActiveParams are the network parameters in effect. They are not a
	// command-line option.
	ActiveParams *Params
}

// LoadConfig initializes and parses the config using command line options.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		DataDir:    defaultDataDir,
		DebugLevel: defaultLogLevel,
	}

	parser := flags.NewParser(cfg, flags.HelpFlag)
	_, err := parser.Parse()
	if err != nil {
		return nil, err
	}

	// Show the version and exit if the version flag was specified.
	if cfg.ShowVersion {
		appName := filepath.Base(os.Args[0])
		appName = strings.TrimSuffix(appName, filepath.Ext(appName))
		fmt.Println(appName, "version", version.Version())
		os.Exit(0)
	}

	cfg.ActiveParams = &MainnetParams

	cfg.DataDir = cleanAndExpandPath(cfg.DataDir)
	if cfg.LogDir == "" {
		cfg.LogDir = filepath.Join(cfg.DataDir, defaultLogDirname)
	}
	cfg.LogDir = cleanAndExpandPath(cfg.LogDir)

	if _, ok := logger.LevelFromString(cfg.DebugLevel); !ok {
		return nil, errors.Errorf("the specified debug level [%s] is invalid", cfg.DebugLevel)
	}

	if !cfg.NoLogFiles {
		logFile := filepath.Join(cfg.LogDir, defaultLogFilename)
		errLogFile := filepath.Join(cfg.LogDir, defaultErrLogFilename)
		err = logger.InitLog(logFile, errLogFile)
		if err != nil {
			return nil, err
		}
	}
	logger.SetLogLevels(cfg.DebugLevel)

	return cfg, nil
}

// DBPath returns the path of the ledger database inside the configured data
// directory.
func (cfg *Config) DBPath() string {
	return filepath.Join(cfg.DataDir, "ledger")
}

// cleanAndExpandPath expands environment variables and leading ~ in the
// passed path, cleans the result, and returns it.
func cleanAndExpandPath(path string) string {
	// Expand initial ~ to OS specific home directory.
	if strings.HasPrefix(path, "~") {
		homeDir := filepath.Dir(defaultHomeDir)
		path = strings.Replace(path, "~", homeDir, 1)
	}

	// NOTE: The os.ExpandEnv doesn't work with Windows-style %VARIABLE%,
	// but the variables can still be expanded via POSIX-style $VARIABLE.
	return filepath.Clean(os.ExpandEnv(path))
}
