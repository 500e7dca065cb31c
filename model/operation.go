package model

import (
	"encoding/json"
)

const (
	OpChangeTimeSignature = "change_time_signature"
	OpAddKeyChange        = "add_key_change"
	OpShiftStartBeat      = "shift_start_beat"
)

// Operation is one record from the operations file. The discriminator
// decides which of the remaining fields are meaningful.
type Operation struct {
	Operation     string     `json:"operation"`
	TimeSignature string     `json:"time_signature,omitempty"`
	Time          ScalarText `json:"time,omitempty"`
	Key           string     `json:"key,omitempty"`
	Unit          string     `json:"unit,omitempty"`
	ToBeat        int        `json:"to_beat,omitempty"`
}

// OperationsMap keys are file-identifier strings with leading zeros
// already stripped ("004.mid" is looked up as "4").
type OperationsMap = map[string][]Operation

// ScalarText accepts either a JSON string or a JSON number, since time
// fields in the operations file appear both ways ("1:30" vs 12.5).
type ScalarText string

func (s *ScalarText) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*s = ScalarText(str)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return err
	}
	*s = ScalarText(num.String())
	return nil
}

func (s ScalarText) String() string { return string(s) }

// PieceMetadata mirrors the metadata table's item shape.
type PieceMetadata struct {
	Artist  string `json:"artist"`
	Release string `json:"release"`
	Title   string `json:"title"`
	Year    uint   `json:"year,omitempty"`
}
