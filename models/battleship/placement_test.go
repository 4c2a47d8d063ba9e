package battleship

import (
	"testing"

	"github.com/stretchr/testify/require"

	cerr "github.com/saeidalz13/battleship-engine/internal/error"
)

func TestRandomFleet(t *testing.T) {
	for gridSize := GridSizeMin; gridSize <= GridSizeMax; gridSize++ {
		for seed := uint64(0); seed < 10; seed++ {
			fleet, err := RandomFleet(gridSize, newTestRand(seed))
			require.NoError(t, err, "grid: %d seed: %d", gridSize, seed)
			require.NoError(t, ValidateFleet(fleet, gridSize))
		}
	}
}

func TestRandomFleetIsSeeded(t *testing.T) {
	first, err := RandomFleet(10, newTestRand(99))
	require.NoError(t, err)
	second, err := RandomFleet(10, newTestRand(99))
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestRandomFleetInvalidGrid(t *testing.T) {
	_, err := RandomFleet(GridSizeMin-1, newTestRand(1))
	require.ErrorIs(t, err, cerr.ErrInvalidOption)
}
