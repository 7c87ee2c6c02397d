package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nguyentantai21042004/narration-flow/internal/subtitle"
	"github.com/nguyentantai21042004/narration-flow/internal/volume"
)

// duckFlags collects repeated -duck START,END,NARR,BASE values
type duckFlags []volume.Interval

func (d *duckFlags) String() string {
	parts := make([]string, len(*d))
	for i, iv := range *d {
		parts[i] = iv.String()
	}
	return strings.Join(parts, " ")
}

func (d *duckFlags) Set(value string) error {
	iv, err := parseDuck(value)
	if err != nil {
		return err
	}
	*d = append(*d, iv)
	return nil
}

func parseDuck(value string) (volume.Interval, error) {
	fields := strings.Split(value, ",")
	// SRT timestamps carry their own comma before the milliseconds
	if len(fields) != 6 {
		return volume.Interval{}, fmt.Errorf("want HH:MM:SS,mmm,HH:MM:SS,mmm,NARR,BASE, got %q", value)
	}

	start, err := subtitle.ParseTimestamp(fields[0] + "," + fields[1])
	if err != nil {
		return volume.Interval{}, err
	}
	end, err := subtitle.ParseTimestamp(fields[2] + "," + fields[3])
	if err != nil {
		return volume.Interval{}, err
	}
	narr, err := strconv.Atoi(strings.TrimSpace(fields[4]))
	if err != nil {
		return volume.Interval{}, fmt.Errorf("narration volume: %w", err)
	}
	base, err := strconv.Atoi(strings.TrimSpace(fields[5]))
	if err != nil {
		return volume.Interval{}, fmt.Errorf("base volume: %w", err)
	}
	return volume.NewInterval(start, end, narr, base)
}
