// Package partitions plans the decomposition of a generated mesh over
// processors for parallel meshing and solving. The plan feeds the
// decomposeParDict written into the mesh case; the actual cell
// redistribution is performed by the external decomposePar utility, so
// this package only assigns cells to processors and validates the
// resulting layout.
package partitions

import "fmt"

// Strategy defines how cells are assigned to processors.
type Strategy int

const (
	// Block assigns consecutive cell ranges to each processor.
	Block Strategy = iota
	// RoundRobin distributes cells cyclically.
	RoundRobin
)

func (s Strategy) String() string {
	switch s {
	case Block:
		return "block"
	case RoundRobin:
		return "roundRobin"
	}
	return "unknown"
}

// Processor is one processor's share of the mesh.
type Processor struct {
	// Unique identifier for this processor
	ID int

	// Cell membership
	Cells    []int // Global cell indices assigned to this processor
	NumCells int   // Number of cells assigned
}

// Layout is a complete cell-to-processor decomposition.
type Layout struct {
	Processors []Processor

	// Global sizing information
	NumCells      int // Total cells across all processors
	NumProcessors int
	MaxCells      int // max(NumCells) across processors

	// Cell to processor mapping
	CellToProc []int // Length NumCells: cell k belongs to processor CellToProc[k]
}

// Decompose assigns numCells cells to numProcs processors using the
// given strategy.
func Decompose(numCells, numProcs int, strategy Strategy) (*Layout, error) {
	if numCells <= 0 {
		return nil, fmt.Errorf("invalid cell count %d", numCells)
	}
	if numProcs <= 0 {
		return nil, fmt.Errorf("invalid processor count %d", numProcs)
	}
	if numProcs > numCells {
		return nil, fmt.Errorf("more processors (%d) than cells (%d)", numProcs, numCells)
	}

	l := &Layout{
		Processors:    make([]Processor, numProcs),
		NumCells:      numCells,
		NumProcessors: numProcs,
		CellToProc:    make([]int, numCells),
	}
	for p := 0; p < numProcs; p++ {
		l.Processors[p].ID = p
	}

	switch strategy {
	case Block:
		// Spread the remainder over the first numCells%numProcs
		// processors so counts differ by at most one.
		base := numCells / numProcs
		rem := numCells % numProcs
		cell := 0
		for p := 0; p < numProcs; p++ {
			count := base
			if p < rem {
				count++
			}
			for c := 0; c < count; c++ {
				l.CellToProc[cell] = p
				l.Processors[p].Cells = append(l.Processors[p].Cells, cell)
				cell++
			}
		}
	case RoundRobin:
		for cell := 0; cell < numCells; cell++ {
			p := cell % numProcs
			l.CellToProc[cell] = p
			l.Processors[p].Cells = append(l.Processors[p].Cells, cell)
		}
	default:
		return nil, fmt.Errorf("unknown partition strategy %d", strategy)
	}

	for p := range l.Processors {
		l.Processors[p].NumCells = len(l.Processors[p].Cells)
		if l.Processors[p].NumCells > l.MaxCells {
			l.MaxCells = l.Processors[p].NumCells
		}
	}
	return l, nil
}

// Counts returns the number of cells per processor.
func (l *Layout) Counts() []int {
	counts := make([]int, l.NumProcessors)
	for p, proc := range l.Processors {
		counts[p] = proc.NumCells
	}
	return counts
}

// Imbalance returns max cells over mean cells per processor; 1.0 is a
// perfectly balanced layout.
func (l *Layout) Imbalance() float64 {
	if l.NumProcessors == 0 || l.NumCells == 0 {
		return 0
	}
	mean := float64(l.NumCells) / float64(l.NumProcessors)
	return float64(l.MaxCells) / mean
}

// Validate checks layout consistency and conservation properties.
func (l *Layout) Validate() error {
	if len(l.CellToProc) != l.NumCells {
		return fmt.Errorf("CellToProc length %d does not match NumCells %d",
			len(l.CellToProc), l.NumCells)
	}

	// Conservation: every cell assigned to exactly one processor.
	total := 0
	for _, proc := range l.Processors {
		if proc.NumCells != len(proc.Cells) {
			return fmt.Errorf("processor %d: NumCells %d != len(Cells) %d",
				proc.ID, proc.NumCells, len(proc.Cells))
		}
		total += proc.NumCells
		for _, c := range proc.Cells {
			if c < 0 || c >= l.NumCells {
				return fmt.Errorf("processor %d: cell index %d out of range [0,%d)",
					proc.ID, c, l.NumCells)
			}
			if l.CellToProc[c] != proc.ID {
				return fmt.Errorf("cell %d listed by processor %d but mapped to %d",
					c, proc.ID, l.CellToProc[c])
			}
		}
	}
	if total != l.NumCells {
		return fmt.Errorf("conservation error: processors hold %d cells, mesh has %d",
			total, l.NumCells)
	}

	// MaxCells consistency.
	actualMax := 0
	for _, proc := range l.Processors {
		if proc.NumCells > actualMax {
			actualMax = proc.NumCells
		}
	}
	if actualMax != l.MaxCells {
		return fmt.Errorf("computed MaxCells %d != stored MaxCells %d", actualMax, l.MaxCells)
	}
	return nil
}
