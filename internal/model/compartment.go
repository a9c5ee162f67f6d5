package model

import (
	"encoding/json"
	"fmt"
)

// Compartment is the epidemiological state an individual or an aggregate
// mass occupies. Exactly one is active at a time.
type Compartment uint8

// Compartments, in the order snapshots report them.
const (
	Healthy Compartment = iota
	Exposed
	Infected
	Recovered
	Dead
)

// NumCompartments is the number of distinct compartments.
const NumCompartments = 5

// Compartments lists every compartment in reporting order.
var Compartments = [NumCompartments]Compartment{Healthy, Exposed, Infected, Recovered, Dead}

var compartmentNames = [NumCompartments]string{
	Healthy:   "healthy",
	Exposed:   "exposed",
	Infected:  "infected",
	Recovered: "recovered",
	Dead:      "dead",
}

// String returns the lowercase compartment name used in JSON, CSV and logs.
func (c Compartment) String() string {
	if int(c) < len(compartmentNames) {
		return compartmentNames[c]
	}
	return fmt.Sprintf("compartment(%d)", uint8(c))
}

// Valid reports whether c is one of the five known compartments.
func (c Compartment) Valid() bool {
	return c < NumCompartments
}

// ParseCompartment converts a compartment name back to its value.
func ParseCompartment(s string) (Compartment, error) {
	for i, name := range compartmentNames {
		if name == s {
			return Compartment(i), nil
		}
	}
	return 0, fmt.Errorf("unknown compartment %q", s)
}

func (c Compartment) MarshalJSON() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("marshal invalid compartment %d", uint8(c))
	}
	return json.Marshal(c.String())
}

func (c *Compartment) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseCompartment(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Counts holds one number per compartment, indexed by Compartment.
type Counts [NumCompartments]int

// Total returns the sum over all compartments.
func (c Counts) Total() int {
	total := 0
	for _, n := range c {
		total += n
	}
	return total
}
