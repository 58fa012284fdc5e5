package measure

import (
	"fmt"
	"strings"
)

// Matrix identifies the sample medium a measurement was taken from. The
// applicable unit family and reference standards depend on it.
type Matrix string

const (
	MatrixWater      Matrix = "water"
	MatrixSoil       Matrix = "soil"
	MatrixSediment   Matrix = "sediment"
	MatrixVegetation Matrix = "vegetation"
	MatrixFish       Matrix = "fish"
	MatrixBlood      Matrix = "blood"
)

// ParseMatrix maps user input (flag or config value) to a Matrix.
func ParseMatrix(s string) (Matrix, error) {
	switch Matrix(strings.ToLower(strings.TrimSpace(s))) {
	case MatrixWater:
		return MatrixWater, nil
	case MatrixSoil:
		return MatrixSoil, nil
	case MatrixSediment:
		return MatrixSediment, nil
	case MatrixVegetation:
		return MatrixVegetation, nil
	case MatrixFish:
		return MatrixFish, nil
	case MatrixBlood:
		return MatrixBlood, nil
	}
	return "", fmt.Errorf("unknown sample matrix %q (water|soil|sediment|vegetation|fish|blood)", s)
}
