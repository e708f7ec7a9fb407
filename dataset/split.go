package dataset

import (
	"math"
	"math/rand/v2"

	"github.com/YuminosukeSato/scitree/pkg/errors"
)

// Defaults of the command line driver.
const (
	DefaultSeed     uint64 = 123456
	DefaultTestSize        = 0.2
)

// TrainTestSplit shuffles the rows with a seeded PCG generator and puts the
// first max(1, floor((1-testSize)*n)) of them in the training set. test is
// nil when no row is left over.
func TrainTestSplit(ds *Dataset, testSize float64, seed uint64) (train, test *Dataset, err error) {
	if testSize < 0 || testSize >= 1 || math.IsNaN(testSize) {
		return nil, nil, errors.NewValidationError("test_size", "must be in [0, 1)", testSize)
	}
	n, _ := ds.Dims()
	if n == 0 {
		return nil, nil, errors.NewModelError("dataset.TrainTestSplit", "empty dataset", errors.ErrEmptyData)
	}

	perm := rand.New(rand.NewPCG(seed, seed)).Perm(n)
	nTrain := max(1, int(math.Floor((1-testSize)*float64(n))))

	return ds.Subset(perm[:nTrain]), ds.Subset(perm[nTrain:]), nil
}
