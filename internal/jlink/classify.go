package jlink

import "bytes"

// Markers J-Link Commander prints that programming results are read from.
const (
	MarkerWriteFailed       = "Writing target memory failed."
	MarkerAlreadyProgrammed = "J-Link: Flash download: Flash download skipped. Flash contents already match"
	MarkerDownloadTime      = "J-Link: Flash download: Total time needed:"
	MarkerOK                = "O.K."
)

// PassMarkers must all be present for a download to count as successful.
var PassMarkers = []string{MarkerDownloadTime, MarkerOK}

// Outcome is the classified result of a programming attempt.
type Outcome int

const (
	OutcomeFailed Outcome = iota
	OutcomeSuccess
	OutcomeAlreadyProgrammed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "programmed"
	case OutcomeAlreadyProgrammed:
		return "already programmed"
	default:
		return "failed"
	}
}

// Code maps the outcome to the legacy status code: 0 on success or already
// programmed, -1 on failure.
func (o Outcome) Code() int {
	if o.OK() {
		return 0
	}
	return -1
}

// OK reports whether the target holds the requested image.
func (o Outcome) OK() bool {
	return o == OutcomeSuccess || o == OutcomeAlreadyProgrammed
}

// IsConnected reports whether marker appears anywhere in output.
func IsConnected(output []byte, marker string) bool {
	return bytes.Contains(output, []byte(marker))
}

// ClassifyProgramming derives the programming outcome from tool output.
// A write failure wins over everything, then the skipped-download message,
// then the full pass set.
func ClassifyProgramming(output []byte) Outcome {
	if bytes.Contains(output, []byte(MarkerWriteFailed)) {
		return OutcomeFailed
	}
	if bytes.Contains(output, []byte(MarkerAlreadyProgrammed)) {
		return OutcomeAlreadyProgrammed
	}
	for _, m := range PassMarkers {
		if !bytes.Contains(output, []byte(m)) {
			return OutcomeFailed
		}
	}
	return OutcomeSuccess
}
