package constants

import "os"

const TicksPerSecond = 20.0

// RedstoneMax is how far a dust line carries a signal.
const RedstoneMax = 15

const SchematicExt = ".schematic"
const MidiExt = ".mid"

func GetOutDir() string {
	return os.Getenv("NOTEBLOCK_OUT_DIR")
}

func GetConfigPath() string {
	path := os.Getenv("NOTEBLOCK_CONFIG")
	if path != "" {
		return path
	}
	return "noteblock.yaml"
}

func GetHistoryPath() string {
	path := os.Getenv("NOTEBLOCK_HISTORY")
	if path != "" {
		return path
	}
	return "noteblock.db"
}
