package receipt

import "time"

// Factory creates draft receipts with a generated number and the current time
type Factory struct {
	numbers NumberGenerator
	now     func() time.Time
}

// NewFactory creates a Factory. A nil clock means time.Now.
func NewFactory(numbers NumberGenerator, now func() time.Time) *Factory {
	if now == nil {
		now = time.Now
	}
	return &Factory{numbers: numbers, now: now}
}

// Create validates params and returns a new draft receipt
func (f *Factory) Create(params Params) (*Receipt, error) {
	return f.CreateWithNumber(params, f.numbers.Generate())
}

// CreateWithNumber is Create with a number chosen by the caller
func (f *Factory) CreateWithNumber(params Params, number string) (*Receipt, error) {
	return New(params, number, f.now())
}

// NextNumber draws a number from the underlying generator
func (f *Factory) NextNumber() string {
	return f.numbers.Generate()
}
