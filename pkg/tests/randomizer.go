package tests

import (
	"fmt"
	"math/rand"
	"time"
)

type Randomizer struct {
	Float64 func() float64
	Bool    func() bool
	SKU     func() string
	Price   func() float64
}

func NewRandomizer() Randomizer {
	random := rand.New(rand.NewSource(time.Now().Unix())) //nolint:gosec // for tests

	return Randomizer{
		Float64: random.Float64,
		Bool:    func() bool { return random.Intn(2) == 0 }, //nolint:mnd // skip
		SKU:     func() string { return fmt.Sprintf("SKU-%04d", random.Intn(10000)) },
		Price:   func() float64 { return float64(random.Intn(4900)+100) / 100 }, // 1.00 .. 49.99
	}
}
