package orbit

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// ExportConfig configures trajectory output.
type ExportConfig struct {
	Filename  string
	OutputDir string
	Timestamp bool
}

// IsUseless returns whether this configuration would output anything.
func (c ExportConfig) IsUseless() bool {
	return c.Filename == ""
}

func (c ExportConfig) path() string {
	name := c.Filename
	if c.Timestamp {
		name += "-" + time.Now().UTC().Format("2006-01-02T15.04.05")
	}
	return filepath.Join(c.OutputDir, name+".csv")
}

// StreamTrajectory writes trajectory points to a CSV file as they arrive on
// the channel, and returns once the channel is closed. Positions in km,
// velocities in km/s, time offsets in seconds.
func StreamTrajectory(conf ExportConfig, points <-chan TrajectoryPoint) error {
	if conf.IsUseless() {
		for range points {
			// Drain so the producer never blocks.
		}
		return nil
	}
	f, err := os.Create(conf.path())
	if err != nil {
		return fmt.Errorf("could not create %s: %w", conf.path(), err)
	}
	defer f.Close()
	if err := writeTrajectoryCSV(f, points); err != nil {
		return err
	}
	return nil
}

// WriteTrajectory writes an already assembled trajectory.
func WriteTrajectory(conf ExportConfig, points []TrajectoryPoint) error {
	ch := make(chan TrajectoryPoint, len(points))
	for _, pt := range points {
		ch <- pt
	}
	close(ch)
	return StreamTrajectory(conf, ch)
}

func writeTrajectoryCSV(w io.Writer, points <-chan TrajectoryPoint) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"t", "x", "y", "z", "vx", "vy", "vz", "central"}); err != nil {
		return err
	}
	record := make([]string, 8)
	for pt := range points {
		record[0] = strconv.FormatFloat(pt.TimeOffset, 'f', 3, 64)
		for i := 0; i < 3; i++ {
			record[1+i] = strconv.FormatFloat(pt.Position[i], 'f', 6, 64)
			record[4+i] = strconv.FormatFloat(pt.Velocity[i], 'f', 9, 64)
		}
		record[7] = strconv.Itoa(pt.CentralBodyID)
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
