package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type sampleConfig struct {
	TicksPerDay int64  `validate:"required,min=1"`
	Kind        string `validate:"required,oneof=fifo deadline"`
}

func TestValidateAcceptsWellFormedStruct(t *testing.T) {
	v := New()
	err := v.Validate(sampleConfig{TicksPerDay: 10, Kind: "fifo"})
	assert.NoError(t, err)
}

func TestValidateCollapsesFieldFailuresIntoOneError(t *testing.T) {
	v := New()
	err := v.Validate(sampleConfig{TicksPerDay: 0, Kind: "not_a_kind"})
	a := assert.New(t)
	a.Error(err)
	a.Contains(err.Error(), "TicksPerDay")
	a.Contains(err.Error(), "Kind")
}
