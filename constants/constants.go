package constants

import "os"

// Defaults for the batch pipeline paths; overridable via environment or
// on the command line.
const (
	DefaultSrcDir         = "POP909_chord_annotated_cleaned"
	DefaultDstDir         = "POP909_processed"
	DefaultOperationsFile = "midi_operations.json"
	DefaultDatasetDir     = "data_root/all_data_collection"
)

func GetSrcDir() string {
	if dir := os.Getenv("MIDIOPS_SRC"); dir != "" {
		return dir
	}
	return DefaultSrcDir
}

func GetDstDir() string {
	if dir := os.Getenv("MIDIOPS_DST"); dir != "" {
		return dir
	}
	return DefaultDstDir
}

func GetOperationsFile() string {
	if path := os.Getenv("MIDIOPS_OPERATIONS"); path != "" {
		return path
	}
	return DefaultOperationsFile
}

func GetDatasetDir() string {
	if dir := os.Getenv("MIDIOPS_DATASET"); dir != "" {
		return dir
	}
	return DefaultDatasetDir
}

// GetMetadataTable names the DynamoDB table holding piece metadata. An
// empty value disables the lookup entirely.
func GetMetadataTable() string {
	return os.Getenv("METADATA_TABLE")
}

func GetMetadataEndpoint() string {
	if endpoint := os.Getenv("METADATA_ENDPOINT"); endpoint != "" {
		return endpoint
	}
	return "http://localhost:8000"
}

func GetMetadataRegion() string {
	if region := os.Getenv("METADATA_REGION"); region != "" {
		return region
	}
	return "localhost"
}
