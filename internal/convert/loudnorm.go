package convert

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

// Stats is the JSON block the loudnorm filter prints after the
// measurement pass. FFmpeg emits every number as a string.
type Stats struct {
	InputI            string `json:"input_i"`
	InputTP           string `json:"input_tp"`
	InputLRA          string `json:"input_lra"`
	InputThresh       string `json:"input_thresh"`
	OutputI           string `json:"output_i"`
	OutputTP          string `json:"output_tp"`
	OutputLRA         string `json:"output_lra"`
	OutputThresh      string `json:"output_thresh"`
	TargetOffset      string `json:"target_offset"`
	NormalizationType string `json:"normalization_type"`
}

// statsRe pulls the stats object out of the rest of FFmpeg's stderr
// chatter.
var statsRe = regexp.MustCompile(`(?s)\{[^\}]*"input_i"[^\}]*\}`)

// ParseStats extracts and decodes the loudnorm stats from FFmpeg
// output.
func ParseStats(output string) (*Stats, error) {
	match := statsRe.FindString(output)
	if match == "" {
		return nil, errors.New("no loudnorm stats in ffmpeg output")
	}
	stats := &Stats{}
	if err := json.Unmarshal([]byte(match), stats); err != nil {
		return nil, fmt.Errorf("decode loudnorm stats: %w", err)
	}
	if stats.InputI == "" || stats.InputTP == "" || stats.InputLRA == "" || stats.InputThresh == "" {
		return nil, errors.New("incomplete loudnorm stats")
	}
	return stats, nil
}

// MeasureFilter builds the first-pass loudnorm filter string.
func MeasureFilter(i, lra, tp float64) string {
	return fmt.Sprintf("loudnorm=I=%s:LRA=%s:TP=%s:print_format=json",
		formatTarget(i), formatTarget(lra), formatTarget(tp))
}

// EncodeFilter builds the second-pass filter string with the measured
// values fed back in. linear=true is appended when the measurement
// reported dynamic normalization, matching the original converter.
func (s *Stats) EncodeFilter(i, lra, tp float64) string {
	filter := fmt.Sprintf(
		"loudnorm=I=%s:LRA=%s:TP=%s:measured_I=%s:measured_LRA=%s:measured_TP=%s:measured_thresh=%s:offset=%s",
		formatTarget(i), formatTarget(lra), formatTarget(tp),
		s.InputI, s.InputLRA, s.InputTP, s.InputThresh, s.TargetOffset,
	)
	if s.NormalizationType == "dynamic" {
		filter += ":linear=true"
	}
	return filter
}

func formatTarget(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
