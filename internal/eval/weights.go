package eval

import (
	"fmt"
	"os"

	"github.com/notnil/chess"
	"gopkg.in/yaml.v3"
)

// Material holds piece values in centipawns.
type Material struct {
	Pawn   int `yaml:"pawn"`
	Knight int `yaml:"knight"`
	Bishop int `yaml:"bishop"`
	Rook   int `yaml:"rook"`
	Queen  int `yaml:"queen"`
}

// Weights is the full set of evaluation term weights, in centipawns. It is
// read-only after construction: both the evaluator and the searcher hold it
// by reference and never mutate it, so a single instance can be shared
// freely. The defaults are tuned data, not algorithmic requirements;
// LoadWeights lets them be recalibrated without a rebuild.
type Weights struct {
	Material Material `yaml:"material"`

	// Pawn structure.
	DoubledPawn    int `yaml:"doubled_pawn"`     // per extra pawn on a file
	IsolatedPawn   int `yaml:"isolated_pawn"`    // per pawn without neighbors
	PassedPawnStep int `yaml:"passed_pawn_step"` // per rank advanced past the second

	// King safety.
	PawnShield      int `yaml:"pawn_shield"`      // per shield pawn in front of the king
	CastleKingside  int `yaml:"castle_kingside"`  // retained kingside castling right
	CastleQueenside int `yaml:"castle_queenside"` // retained queenside castling right
	CheckPenalty    int `yaml:"check_penalty"`    // side to move is in check

	// Activity.
	Mobility      int `yaml:"mobility"`       // per reachable square
	CenterControl int `yaml:"center_control"` // per attacked central square
	BishopPair    int `yaml:"bishop_pair"`
}

// DefaultWeights returns the built-in weights.
func DefaultWeights() *Weights {
	return &Weights{
		Material: Material{
			Pawn:   100,
			Knight: 320,
			Bishop: 330,
			Rook:   500,
			Queen:  900,
		},
		DoubledPawn:     20,
		IsolatedPawn:    15,
		PassedPawnStep:  20,
		PawnShield:      30,
		CastleKingside:  50,
		CastleQueenside: 30,
		CheckPenalty:    50,
		Mobility:        3,
		CenterControl:   10,
		BishopPair:      30,
	}
}

// LoadWeights reads weights from a YAML file. Fields absent from the file
// keep their defaults. A malformed or inconsistent file is a startup error,
// never a per-move condition.
func LoadWeights(path string) (*Weights, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read weights: %w", err)
	}
	w := DefaultWeights()
	if err := yaml.Unmarshal(data, w); err != nil {
		return nil, fmt.Errorf("parse weights %s: %w", path, err)
	}
	if err := w.Validate(); err != nil {
		return nil, fmt.Errorf("invalid weights %s: %w", path, err)
	}
	return w, nil
}

// Validate checks invariants the evaluator depends on. Alpha-beta compares
// scores across positions, so the material ordering has to be sane: a piece
// hierarchy where a pawn outranks a queen would make every capture ordering
// heuristic actively wrong.
func (w *Weights) Validate() error {
	m := w.Material
	if m.Pawn <= 0 {
		return fmt.Errorf("pawn value must be positive, got %d", m.Pawn)
	}
	if m.Knight < m.Pawn || m.Bishop < m.Pawn {
		return fmt.Errorf("minor pieces must be worth at least a pawn (knight=%d bishop=%d pawn=%d)",
			m.Knight, m.Bishop, m.Pawn)
	}
	if m.Rook < m.Knight && m.Rook < m.Bishop {
		return fmt.Errorf("rook value %d below both minors", m.Rook)
	}
	if m.Queen < m.Rook {
		return fmt.Errorf("queen value %d below rook value %d", m.Queen, m.Rook)
	}
	for name, v := range map[string]int{
		"doubled_pawn":     w.DoubledPawn,
		"isolated_pawn":    w.IsolatedPawn,
		"passed_pawn_step": w.PassedPawnStep,
		"pawn_shield":      w.PawnShield,
		"castle_kingside":  w.CastleKingside,
		"castle_queenside": w.CastleQueenside,
		"check_penalty":    w.CheckPenalty,
		"mobility":         w.Mobility,
		"center_control":   w.CenterControl,
		"bishop_pair":      w.BishopPair,
	} {
		if v < 0 {
			return fmt.Errorf("%s must be non-negative, got %d", name, v)
		}
	}
	return nil
}

// PieceValue returns the material value of a piece type. Kings have no
// material value; they are never exchanged.
func (w *Weights) PieceValue(t chess.PieceType) int {
	switch t {
	case chess.Pawn:
		return w.Material.Pawn
	case chess.Knight:
		return w.Material.Knight
	case chess.Bishop:
		return w.Material.Bishop
	case chess.Rook:
		return w.Material.Rook
	case chess.Queen:
		return w.Material.Queen
	default:
		return 0
	}
}
