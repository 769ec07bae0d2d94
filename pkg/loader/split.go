package loader

import (
	"fmt"
	"math"
	"math/rand"
	"slices"
	"sort"

	"cancerml/pkg/data"
	"cancerml/pkg/dataprep"
)

// TrainTestSplit partitions ds into disjoint train and test sets holding
// floor(trainSize*n) and the remaining rows. When stratify names a column,
// each class is split in proportion, rounding by largest remainder, so both
// sides keep the class balance. Rows on each side are in shuffled order.
func TrainTestSplit(ds *data.Dataset, trainSize float64, stratify string, rng *rand.Rand) (train, test *data.Dataset, err error) {
	if ds == nil {
		return nil, nil, fmt.Errorf("%w: dataset must not be nil", data.ErrInvalidInput)
	}
	if rng == nil {
		return nil, nil, fmt.Errorf("%w: a random source is required", data.ErrInvalidInput)
	}
	if !(trainSize > 0 && trainSize < 1) {
		return nil, nil, fmt.Errorf("%w: train size %v must be within (0, 1)", data.ErrInvalidInput, trainSize)
	}
	n := ds.Len()
	nTrain := int(math.Floor(trainSize * float64(n)))
	if nTrain == 0 || nTrain == n {
		return nil, nil, fmt.Errorf("%w: train size %v of %d rows leaves an empty side", data.ErrInvalidInput, trainSize, n)
	}

	var trainIdx, testIdx []int
	if stratify == "" {
		perm := rng.Perm(n)
		trainIdx, testIdx = perm[:nTrain], perm[nTrain:]
	} else {
		labels, err := ds.Column(stratify)
		if err != nil {
			return nil, nil, fmt.Errorf("stratify: %w", err)
		}
		trainIdx, testIdx = stratifiedIndices(labels, nTrain, rng)
	}
	return ds.Select(ds.Name+"_train", trainIdx), ds.Select(ds.Name+"_test", testIdx), nil
}

func stratifiedIndices(labels []string, nTrain int, rng *rand.Rand) (train, test []int) {
	groups := groupByLabel(labels, rng)
	n := float64(len(labels))

	quota := make([]int, len(groups))
	rem := make([]float64, len(groups))
	assigned := 0
	for g, idx := range groups {
		exact := float64(nTrain) * float64(len(idx)) / n
		quota[g] = int(math.Floor(exact))
		rem[g] = exact - float64(quota[g])
		assigned += quota[g]
	}
	order := make([]int, len(groups))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return rem[order[a]] > rem[order[b]] })
	for i := 0; assigned < nTrain; i++ {
		g := order[i%len(order)]
		if quota[g] < len(groups[g]) {
			quota[g]++
			assigned++
		}
	}

	for g, idx := range groups {
		train = append(train, idx[:quota[g]]...)
		test = append(test, idx[quota[g]:]...)
	}
	rng.Shuffle(len(train), func(i, j int) { train[i], train[j] = train[j], train[i] })
	rng.Shuffle(len(test), func(i, j int) { test[i], test[j] = test[j], test[i] })
	return train, test
}

// groupByLabel returns the row indices of each class, classes in sorted
// order and indices shuffled within a class.
func groupByLabel(labels []string, rng *rand.Rand) [][]int {
	codes, classes := dataprep.LabelEncode(labels)
	groups := make([][]int, len(classes))
	for i, c := range codes {
		groups[c] = append(groups[c], i)
	}
	for _, idx := range groups {
		rng.Shuffle(len(idx), func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })
	}
	return groups
}

// KFoldSplit yields k folds of shuffled row indices.
func KFoldSplit(n, k int, rng *rand.Rand) ([][]int, error) {
	if err := checkFolds(n, k, rng); err != nil {
		return nil, err
	}
	indices := rng.Perm(n)
	folds := make([][]int, k)
	for i := range n {
		folds[i%k] = append(folds[i%k], indices[i])
	}
	return folds, nil
}

// StratifiedKFold yields k folds whose class proportions follow labels.
// Rows of each class are dealt round-robin across the folds, continuing from
// where the previous class stopped, so fold sizes differ by at most one.
func StratifiedKFold(labels []string, k int, rng *rand.Rand) ([][]int, error) {
	if err := checkFolds(len(labels), k, rng); err != nil {
		return nil, err
	}
	folds := make([][]int, k)
	p := 0
	for _, idx := range groupByLabel(labels, rng) {
		for _, i := range idx {
			folds[p%k] = append(folds[p%k], i)
			p++
		}
	}
	return folds, nil
}

// Fold returns the training and held-out indices for fold i.
func Fold(folds [][]int, i int) (train, test []int) {
	for j, f := range folds {
		if j == i {
			test = slices.Clone(f)
			continue
		}
		train = append(train, f...)
	}
	return train, test
}

func checkFolds(n, k int, rng *rand.Rand) error {
	if rng == nil {
		return fmt.Errorf("%w: a random source is required", data.ErrInvalidInput)
	}
	if k < 2 || k > n {
		return fmt.Errorf("%w: cannot make %d folds from %d rows", data.ErrInvalidInput, k, n)
	}
	return nil
}
