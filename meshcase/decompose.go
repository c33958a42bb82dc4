package meshcase

import (
	"fmt"

	"github.com/cartmesh/cartmesh/meshio"
	"github.com/cartmesh/cartmesh/partitions"
)

// PlanDecomposition previews how a generated mesh distributes over the
// configured number of processors, before handing the case to the
// external decomposition utility.
func PlanDecomposition(info *meshio.Info, numProcs int) (*partitions.Layout, error) {
	if err := info.Check(); err != nil {
		return nil, err
	}
	layout, err := partitions.Decompose(info.NumCells, numProcs, partitions.Block)
	if err != nil {
		return nil, fmt.Errorf("planning decomposition of %s: %w", info.File, err)
	}
	if err := layout.Validate(); err != nil {
		return nil, fmt.Errorf("planning decomposition of %s: %w", info.File, err)
	}
	return layout, nil
}
