package utils

// LoggerInitializationFailedMessageFormat reports a failure to construct the application logger.
const LoggerInitializationFailedMessageFormat = "failed to initialize logger: %w"

// ApplicationExecutionFailedMessage prefixes fatal execution errors.
const ApplicationExecutionFailedMessage = "application execution failed"

// GlobalConfigDirectoryName is the per-user directory holding the global configuration file.
const GlobalConfigDirectoryName = ".cargo-expand"

// ConfigFileName is the name of the configuration file searched for globally and locally.
const ConfigFileName = ".cargo-expand.yaml"

// GitDirectoryName is the name of the Git repository directory.
const GitDirectoryName = ".git"
