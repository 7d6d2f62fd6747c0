package enums

import (
	"fmt"
	"strings"
)

// ConsumptionUnit is the period a consumption value is expressed in.
type ConsumptionUnit string

const (
	ConsumptionPerDay   ConsumptionUnit = "DAY"
	ConsumptionPerWeek  ConsumptionUnit = "WEEK"
	ConsumptionPerMonth ConsumptionUnit = "MONTH"
)

var consumptionUnitLabels = map[ConsumptionUnit]string{
	ConsumptionPerDay:   "dia",
	ConsumptionPerWeek:  "semana",
	ConsumptionPerMonth: "mes",
}

var validConsumptionUnits = []ConsumptionUnit{
	ConsumptionPerDay,
	ConsumptionPerWeek,
	ConsumptionPerMonth,
}

func (u ConsumptionUnit) String() string { return string(u) }

// Label is the localized display label.
func (u ConsumptionUnit) Label() string { return consumptionUnitLabels[u] }

func (u ConsumptionUnit) IsValid() bool {
	_, ok := consumptionUnitLabels[u]
	return ok
}

// ParseConsumptionUnit accepts either the canonical name or the label, case-insensitively.
func ParseConsumptionUnit(value string) (ConsumptionUnit, error) {
	raw := strings.TrimSpace(value)
	for _, candidate := range validConsumptionUnits {
		if strings.EqualFold(string(candidate), raw) || strings.EqualFold(candidate.Label(), raw) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid consumption unit %q", value)
}
