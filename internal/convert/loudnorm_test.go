package convert

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// measureOutput is a trimmed-down version of what ffmpeg prints to
// stderr during the loudnorm measurement pass.
const measureOutput = `Input #0, ogg, from 'song.opus':
  Duration: 00:03:12.41, start: 0.000000, bitrate: 132 kb/s
Output #0, null, to 'pipe:':
size=N/A time=00:03:12.41 bitrate=N/A speed= 312x
[Parsed_loudnorm_0 @ 0x55f0a4a2b3c0]
{
	"input_i" : "-19.82",
	"input_tp" : "-4.47",
	"input_lra" : "6.30",
	"input_thresh" : "-30.01",
	"output_i" : "-12.10",
	"output_tp" : "-1.50",
	"output_lra" : "5.90",
	"output_thresh" : "-22.24",
	"normalization_type" : "dynamic",
	"target_offset" : "0.10"
}
`

func TestParseStats(t *testing.T) {
	stats, err := ParseStats(measureOutput)
	require.NoError(t, err)

	assert.Equal(t, "-19.82", stats.InputI)
	assert.Equal(t, "-4.47", stats.InputTP)
	assert.Equal(t, "6.30", stats.InputLRA)
	assert.Equal(t, "-30.01", stats.InputThresh)
	assert.Equal(t, "0.10", stats.TargetOffset)
	assert.Equal(t, "dynamic", stats.NormalizationType)
}

func TestParseStatsNoJSON(t *testing.T) {
	_, err := ParseStats("Input #0, ogg, from 'song.opus':\nconversion failed")
	assert.Error(t, err)
}

func TestParseStatsIncomplete(t *testing.T) {
	_, err := ParseStats(`{"input_i" : "-19.82"}`)
	assert.Error(t, err)
}

func TestMeasureFilter(t *testing.T) {
	filter := MeasureFilter(-12, 11, -1.5)
	assert.Equal(t, "loudnorm=I=-12:LRA=11:TP=-1.5:print_format=json", filter)
}

func TestEncodeFilter(t *testing.T) {
	stats := &Stats{
		InputI:            "-19.82",
		InputTP:           "-4.47",
		InputLRA:          "6.30",
		InputThresh:       "-30.01",
		TargetOffset:      "0.10",
		NormalizationType: "dynamic",
	}
	filter := stats.EncodeFilter(-12, 11, -1.5)
	assert.Equal(t,
		"loudnorm=I=-12:LRA=11:TP=-1.5:measured_I=-19.82:measured_LRA=6.30:measured_TP=-4.47:measured_thresh=-30.01:offset=0.10:linear=true",
		filter)
}

func TestEncodeFilterNotDynamic(t *testing.T) {
	stats := &Stats{
		InputI:            "-13.02",
		InputTP:           "-2.10",
		InputLRA:          "4.00",
		InputThresh:       "-23.40",
		TargetOffset:      "-0.05",
		NormalizationType: "linear",
	}
	filter := stats.EncodeFilter(-12, 11, -1.5)
	assert.NotContains(t, filter, "linear=true")
	assert.Contains(t, filter, "measured_I=-13.02")
}
