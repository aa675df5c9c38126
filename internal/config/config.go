// Package config loads persisted display preferences for cargo-expand.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/tyemirov/cargo-expand/internal/utils"
)

// LoadOptions controls how the preference files are discovered.
type LoadOptions struct {
	WorkingDirectory string
	ExplicitFilePath string
}

// Preferences holds the persisted display settings. All fields are optional;
// a zero Preferences behaves like no configuration file at all.
type Preferences struct {
	Theme string `mapstructure:"theme"`
	Color string `mapstructure:"color"`
	Pager *bool  `mapstructure:"pager"`
}

// PagerEnabled reports whether paging was requested by configuration.
func (preferences Preferences) PagerEnabled() bool {
	return preferences.Pager != nil && *preferences.Pager
}

// LoadPreferences loads preferences from the global file in the user's home
// directory and a local file in the working directory, local values winning.
func LoadPreferences(options LoadOptions) (Preferences, error) {
	workingDirectory := options.WorkingDirectory
	if workingDirectory == "" {
		currentDirectory, workingDirectoryError := os.Getwd()
		if workingDirectoryError != nil {
			return Preferences{}, fmt.Errorf("determine working directory: %w", workingDirectoryError)
		}
		workingDirectory = currentDirectory
	}

	var merged Preferences

	if homeDirectory, homeDirectoryError := os.UserHomeDir(); homeDirectoryError == nil && homeDirectory != "" {
		globalPath := filepath.Join(homeDirectory, utils.GlobalConfigDirectoryName, utils.ConfigFileName)
		globalPreferences, loadError := loadPreferencesFromPath(globalPath)
		if loadError != nil {
			return Preferences{}, loadError
		}
		merged = merged.Merge(globalPreferences)
	}

	localPath, resolveError := resolveLocalConfigPath(workingDirectory, options.ExplicitFilePath)
	if resolveError != nil {
		return Preferences{}, resolveError
	}
	if localPath != "" {
		localPreferences, loadError := loadPreferencesFromPath(localPath)
		if loadError != nil {
			return Preferences{}, loadError
		}
		merged = merged.Merge(localPreferences)
	}

	return merged, nil
}

func resolveLocalConfigPath(workingDirectory, explicitPath string) (string, error) {
	if explicitPath != "" {
		if filepath.IsAbs(explicitPath) {
			return explicitPath, nil
		}
		return filepath.Join(workingDirectory, explicitPath), nil
	}
	return filepath.Join(workingDirectory, utils.ConfigFileName), nil
}

func loadPreferencesFromPath(path string) (Preferences, error) {
	if path == "" {
		return Preferences{}, nil
	}
	info, statError := os.Stat(path)
	if statError != nil {
		if os.IsNotExist(statError) {
			return Preferences{}, nil
		}
		return Preferences{}, fmt.Errorf("stat configuration %s: %w", path, statError)
	}
	if info.IsDir() {
		return Preferences{}, fmt.Errorf("configuration path %s is a directory", path)
	}

	reader := viper.New()
	reader.SetConfigFile(path)
	if readError := reader.ReadInConfig(); readError != nil {
		return Preferences{}, fmt.Errorf("read configuration from %s: %w", path, readError)
	}
	var preferences Preferences
	if decodeError := reader.Unmarshal(&preferences); decodeError != nil {
		return Preferences{}, fmt.Errorf("decode configuration from %s: %w", path, decodeError)
	}
	return preferences, nil
}

// Merge overlays override onto the receiver returning the combined preferences.
func (preferences Preferences) Merge(override Preferences) Preferences {
	result := preferences
	if override.Theme != "" {
		result.Theme = override.Theme
	}
	if override.Color != "" {
		result.Color = override.Color
	}
	if override.Pager != nil {
		result.Pager = cloneBool(override.Pager)
	}
	return result
}

func cloneBool(value *bool) *bool {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}
