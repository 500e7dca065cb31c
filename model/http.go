package model

type BeatInfoResponse struct {
	Tick       int64 `json:"tick"`
	GlobalBeat int64 `json:"global_beat"`
	BeatStart  int64 `json:"beat_start"`
	Offset     int64 `json:"offset"`
}

type ChordEventResponse struct {
	OffsetQB float64 `json:"offset_qb"`
	Root     string  `json:"root"`
	Quality  string  `json:"quality"`
	Bass     string  `json:"bass"`
	LocalKey string  `json:"local_key"`
}

type ErrorResponse struct {
	Error string `json:"detail"`
}
