package series

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Payload is the remote dataset document. Other keys in the document are
// ignored.
type Payload struct {
	Energy       []float64 `json:"energy"`
	CrossSection []float64 `json:"cross section"`
}

var errShape = errors.New("unexpected dataset shape")

// Decode parses a dataset document and checks that both arrays are present
// and pointwise aligned.
func Decode(raw []byte) (Payload, error) {
	var p Payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return Payload{}, fmt.Errorf("decode dataset: %w", err)
	}
	if p.Energy == nil || p.CrossSection == nil {
		return Payload{}, fmt.Errorf("%w: missing \"energy\" or \"cross section\"", errShape)
	}
	if len(p.Energy) != len(p.CrossSection) {
		return Payload{}, fmt.Errorf("%w: %d energies vs %d cross sections", errShape, len(p.Energy), len(p.CrossSection))
	}
	return p, nil
}
