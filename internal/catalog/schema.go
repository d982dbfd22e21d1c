package catalog

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
)

// HCL shapes of the declaration files. These are decode targets only; they
// are translated into the immutable Service/Target types at load time.

type paramBlock struct {
	Name        string     `hcl:"name,label"`
	Type        string     `hcl:"type,optional"`
	Description string     `hcl:"description,optional"`
	Default     *cty.Value `hcl:"default,optional"`
}

type serviceBlock struct {
	Name        string            `hcl:"name,label"`
	Description string            `hcl:"description,optional"`
	Targets     []string          `hcl:"targets"`
	Requires    []string          `hcl:"requires,optional"`
	Excludes    []string          `hcl:"excludes,optional"`
	Produces    []string          `hcl:"produces,optional"`
	After       []string          `hcl:"after,optional"`
	Runner      string            `hcl:"runner,optional"`
	Command     string            `hcl:"command,optional"`
	Artifacts   map[string]string `hcl:"artifacts,optional"`
	Timeout     int               `hcl:"timeout,optional"`
	Params      []*paramBlock     `hcl:"param,block"`
}

type alternativeBlock struct {
	Services []string `hcl:"services"`
}

type targetBlock struct {
	Name         string              `hcl:"name,label"`
	Description  string              `hcl:"description,optional"`
	Category     string              `hcl:"category,optional"`
	Requires     []string            `hcl:"requires,optional"`
	Wants        []string            `hcl:"wants,optional"`
	Alternatives []*alternativeBlock `hcl:"alternative,block"`
}

type catalogFile struct {
	Services []*serviceBlock `hcl:"service,block"`
	Targets  []*targetBlock  `hcl:"target,block"`
	Body     hcl.Body        `hcl:",remain"`
}
