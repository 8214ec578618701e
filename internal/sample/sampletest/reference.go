package sampletest

import (
	"os"
	"testing"

	"github.com/drblury/mediacatalog/internal/sample"
)

// ReferenceDirEnv points at a directory holding the full reference CSV exports.
const ReferenceDirEnv = "MEDIACATALOG_SAMPLE_DIR"

// Counts against the full reference dataset.
const (
	RefMovieCount       = 269
	RefAudioCount       = 3368
	RefShowCount        = 2937
	RefStarTrekMatches  = 13
	RefPinkFloydMatches = 145
	RefAjaTracks        = 7
	RefHawkeyeMatches   = 153
	RefBatmanSeries     = 120
	RefDocMartinSeason3 = 7
)

// Reference loads the full dataset or skips the test when it is not available.
func Reference(t testing.TB) sample.Dataset {
	t.Helper()
	dir := os.Getenv(ReferenceDirEnv)
	if dir == "" {
		t.Skipf("%s not set; skipping reference dataset checks", ReferenceDirEnv)
	}
	ds, err := sample.LoadDir(dir)
	if err != nil {
		t.Fatalf("loading reference dataset from %s: %v", dir, err)
	}
	return ds
}
