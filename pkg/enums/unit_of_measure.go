package enums

import (
	"fmt"
	"strings"
)

// UnitOfMeasure describes how an item's quantity is counted.
type UnitOfMeasure string

const (
	UnitEach  UnitOfMeasure = "UNIT"
	UnitKG    UnitOfMeasure = "KG"
	UnitGram  UnitOfMeasure = "G"
	UnitLiter UnitOfMeasure = "LITER"
	UnitML    UnitOfMeasure = "ML"
	UnitBox   UnitOfMeasure = "BOX"
	UnitPack  UnitOfMeasure = "PACK"
	UnitDozen UnitOfMeasure = "DOZEN"
)

// UnitsOfMeasure lists every unit in display order.
var UnitsOfMeasure = []UnitOfMeasure{
	UnitEach, UnitKG, UnitGram, UnitLiter, UnitML, UnitBox, UnitPack, UnitDozen,
}

var unitLabels = map[UnitOfMeasure]string{
	UnitEach:  "unidade",
	UnitKG:    "quilograma",
	UnitGram:  "grama",
	UnitLiter: "litro",
	UnitML:    "mililitro",
	UnitBox:   "caixa",
	UnitPack:  "pacote",
	UnitDozen: "dúzia",
}

func (u UnitOfMeasure) String() string { return string(u) }

func (u UnitOfMeasure) Label() string { return unitLabels[u] }

func (u UnitOfMeasure) IsValid() bool {
	_, ok := unitLabels[u]
	return ok
}

// ParseUnitOfMeasure accepts the canonical name or the label.
func ParseUnitOfMeasure(value string) (UnitOfMeasure, error) {
	raw := strings.TrimSpace(value)
	for _, candidate := range UnitsOfMeasure {
		if strings.EqualFold(string(candidate), raw) || strings.EqualFold(candidate.Label(), raw) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid unit of measure %q", value)
}
