// Package convert turns one Opus file into one MP3 by driving FFmpeg.
// The optional loudness normalization is the classic two-pass loudnorm
// dance: measure first, then encode with the measured values fed back
// into the filter.
package convert

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"opus2mp3/internal/ffmpeg"
	"opus2mp3/internal/opusmeta"
)

// commandContext is swapped out in tests so the FFmpeg invocations can
// be observed without a real binary.
var commandContext = ffmpeg.CommandContext

// Stage names for progress reporting.
const (
	StageMeasuring = "measuring"
	StageEncoding  = "encoding"
)

// ProgressUpdate tells the caller which pass a job is in.
type ProgressUpdate struct {
	Stage string
	Input string
}

// Options holds the FFmpeg parameters for a conversion.
type Options struct {
	// Normalize enables the loudnorm measurement pass.
	Normalize bool
	TargetI   float64
	TargetLRA float64
	TargetTP  float64
	// Quality is the LAME VBR quality (-q:a), 0 best.
	Quality    int
	SampleRate int
}

// Client runs conversions against a specific ffmpeg binary.
type Client struct {
	binary string
	log    *slog.Logger
}

// NewClient constructs a Client. An empty binary falls back to "ffmpeg"
// so a missing tool surfaces as a per-job exec error rather than a
// construction failure.
func NewClient(binary string, logger *slog.Logger) *Client {
	if binary == "" {
		binary = "ffmpeg"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{binary: binary, log: logger}
}

// Convert transcodes inputPath to an MP3 in outputDir and returns the
// produced path. meta may be nil; when present its tags and cover art
// are written into the MP3 by the encode pass. Either pass failing
// returns an error carrying FFmpeg's diagnostic output; no retries.
func (c *Client) Convert(ctx context.Context, inputPath, outputDir string, opts Options, meta *opusmeta.Metadata, progress func(ProgressUpdate)) (string, error) {
	if inputPath == "" {
		return "", errors.New("input path required")
	}
	if outputDir == "" {
		return "", errors.New("output directory required")
	}

	base := filepath.Base(inputPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" {
		stem = base
	}
	outputPath := filepath.Join(outputDir, stem+".mp3")

	var stats *Stats
	if opts.Normalize {
		report(progress, StageMeasuring, inputPath)
		var err error
		stats, err = c.measure(ctx, inputPath, opts)
		if err != nil {
			return "", err
		}
	}

	report(progress, StageEncoding, inputPath)
	if err := c.encode(ctx, inputPath, outputPath, opts, stats, meta); err != nil {
		return "", err
	}
	return outputPath, nil
}

// measure runs the loudnorm analysis pass and parses the JSON stats
// block FFmpeg prints to stderr.
func (c *Client) measure(ctx context.Context, inputPath string, opts Options) (*Stats, error) {
	args := []string{
		"-hide_banner",
		"-i", inputPath,
		"-af", MeasureFilter(opts.TargetI, opts.TargetLRA, opts.TargetTP),
		"-f", "null",
		"-",
	}
	cmd := commandContext(ctx, c.binary, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("ffmpeg measure: %w: %s", err, strings.TrimSpace(string(output)))
	}
	stats, err := ParseStats(string(output))
	if err != nil {
		return nil, fmt.Errorf("measure %s: %w", filepath.Base(inputPath), err)
	}
	c.log.Debug("loudnorm measured",
		"input", inputPath,
		"input_i", stats.InputI,
		"input_tp", stats.InputTP,
		"normalization", stats.NormalizationType)
	return stats, nil
}

// encode runs the transcoding pass. With stats present the measured
// loudnorm filter is applied; otherwise the audio goes straight to the
// encoder.
func (c *Client) encode(ctx context.Context, inputPath, outputPath string, opts Options, stats *Stats, meta *opusmeta.Metadata) error {
	args := []string{"-y", "-hide_banner", "-i", inputPath}

	coverPath, cleanup, err := c.writeCover(meta)
	if err != nil {
		// Cover extraction failing is not worth losing the conversion.
		c.log.Warn("cover art skipped", "input", inputPath, "error", err)
	}
	defer cleanup()

	if coverPath != "" {
		args = append(args, "-i", coverPath)
	}
	if stats != nil {
		args = append(args, "-af", stats.EncodeFilter(opts.TargetI, opts.TargetLRA, opts.TargetTP))
	}
	if coverPath != "" {
		args = append(args,
			"-map", "0:a",
			"-map", "1:0",
			"-c:v", "copy",
			"-disposition:v:0", "attached_pic",
		)
	}
	args = append(args,
		"-q:a", strconv.Itoa(opts.Quality),
		"-ar", strconv.Itoa(opts.SampleRate),
		"-id3v2_version", "3",
	)
	args = append(args, metadataArgs(meta)...)
	args = append(args, outputPath)

	cmd := commandContext(ctx, c.binary, args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg encode: %w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}

// writeCover stores the front cover in a temp file FFmpeg can read as a
// second input. The cleanup func is always safe to call.
func (c *Client) writeCover(meta *opusmeta.Metadata) (string, func(), error) {
	noop := func() {}
	if meta == nil || meta.Cover == nil {
		return "", noop, nil
	}
	f, err := os.CreateTemp("", "opus2mp3_cover_*"+meta.Cover.FileExt())
	if err != nil {
		return "", noop, err
	}
	path := f.Name()
	cleanup := func() { os.Remove(path) }
	if _, err := f.Write(meta.Cover.Data); err != nil {
		f.Close()
		return "", cleanup, err
	}
	if err := f.Close(); err != nil {
		return "", cleanup, err
	}
	return path, cleanup, nil
}

// tagMappings maps Opus comment keys to the ID3 metadata keys FFmpeg
// understands, in the order they are emitted.
var tagMappings = []struct {
	opusKey string
	mp3Key  string
}{
	{"title", "title"},
	{"artist", "artist"},
	{"album", "album"},
	{"genre", "genre"},
	{"tracknumber", "track"},
}

func metadataArgs(meta *opusmeta.Metadata) []string {
	if meta == nil {
		return nil
	}
	var args []string
	for _, m := range tagMappings {
		if value := meta.First(m.opusKey); value != "" {
			args = append(args, "-metadata", m.mp3Key+"="+value)
		}
	}
	if year, ok := meta.Year(); ok {
		args = append(args, "-metadata", "date="+year)
	}
	return args
}

func report(progress func(ProgressUpdate), stage, input string) {
	if progress != nil {
		progress(ProgressUpdate{Stage: stage, Input: input})
	}
}
