package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func paramService() *Service {
	return &Service{
		Name: "Tool",
		Params: map[string]*Param{
			"threads": {Name: "threads", Type: cty.Number, Default: cty.NumberIntVal(4)},
			"mode":    {Name: "mode", Type: cty.String, Default: cty.StringVal("fast")},
			"strict":  {Name: "strict", Type: cty.Bool, Default: cty.False},
		},
	}
}

func TestMergedParams_DefaultsOnly(t *testing.T) {
	t.Parallel()

	got, err := paramService().MergedParams(nil)
	require.NoError(t, err)
	assert.True(t, got["threads"].RawEquals(cty.NumberIntVal(4)))
	assert.True(t, got["mode"].RawEquals(cty.StringVal("fast")))
	assert.True(t, got["strict"].RawEquals(cty.False))
}

func TestMergedParams_OverridesConvertToDeclaredType(t *testing.T) {
	t.Parallel()

	got, err := paramService().MergedParams(map[string]string{
		"threads": "8",
		"strict":  "true",
	})
	require.NoError(t, err)
	assert.True(t, got["threads"].RawEquals(cty.NumberIntVal(8)))
	assert.True(t, got["strict"].RawEquals(cty.True))
	assert.True(t, got["mode"].RawEquals(cty.StringVal("fast")), "untouched params keep their default")
}

func TestMergedParams_Failures(t *testing.T) {
	t.Parallel()

	_, err := paramService().MergedParams(map[string]string{"nope": "1"})
	assert.ErrorContains(t, err, "no parameter")

	_, err = paramService().MergedParams(map[string]string{"threads": "many"})
	assert.ErrorContains(t, err, "threads")
}

func TestOverrides_SetAndValidate(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	require.NoError(t, reg.Register(paramService()))

	o := make(Overrides)
	o.Set("Tool", "threads", "2")
	o.Set("Tool", "mode", "careful")
	require.NoError(t, o.Validate(reg))
	assert.Equal(t, "2", o["Tool"]["threads"])

	bad := make(Overrides)
	bad.Set("Ghost", "x", "1")
	assert.ErrorContains(t, bad.Validate(reg), "unknown service")

	bad = make(Overrides)
	bad.Set("Tool", "nope", "1")
	assert.ErrorContains(t, bad.Validate(reg), "no parameter")
}
