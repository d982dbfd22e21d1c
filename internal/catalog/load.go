package catalog

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/seqqap/seqqap/internal/capability"
	"github.com/seqqap/seqqap/internal/ctxlog"
	"github.com/seqqap/seqqap/internal/fsutil"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// Load reads every .hcl declaration file under the given paths, translates
// the blocks into the immutable catalog model, and validates the result.
// knownRunners lists the adapter names registered in code; every service's
// runner must be among them.
func Load(ctx context.Context, knownRunners map[string]bool, paths ...string) (*Catalog, error) {
	logger := ctxlog.FromContext(ctx)

	var files []string
	for _, path := range paths {
		found, err := fsutil.FindFilesByExtension(path, ".hcl")
		if err != nil {
			return nil, fmt.Errorf("scanning catalog path %s: %w", path, err)
		}
		files = append(files, found...)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no catalog .hcl files found under %v", paths)
	}
	logger.Debug("Found catalog files to load.", "files", files)

	cat := &Catalog{Registry: NewRegistry(), Graph: NewGraph()}
	parser := hclparse.NewParser()

	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("parsing %s: %w", file, diags)
		}

		var cf catalogFile
		if diags := gohcl.DecodeBody(hclFile.Body, nil, &cf); diags.HasErrors() {
			return nil, fmt.Errorf("decoding %s: %w", file, diags)
		}

		for _, sb := range cf.Services {
			svc, err := translateService(sb)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", file, err)
			}
			if err := cat.Registry.Register(svc); err != nil {
				return nil, fmt.Errorf("%s: %w", file, err)
			}
		}
		for _, tb := range cf.Targets {
			if err := cat.Graph.AddTarget(translateTarget(tb)); err != nil {
				return nil, fmt.Errorf("%s: %w", file, err)
			}
		}
		logger.Debug("Loaded catalog file.", "file", file,
			"services", len(cf.Services), "targets", len(cf.Targets))
	}

	if err := cat.validate(knownRunners); err != nil {
		return nil, err
	}
	logger.Info("Catalog loaded.",
		"services", len(cat.Registry.order), "targets", len(cat.Graph.order))
	return cat, nil
}

func translateService(sb *serviceBlock) (*Service, error) {
	svc := &Service{
		Name:        sb.Name,
		Description: sb.Description,
		Targets:     sb.Targets,
		Requires:    toCapabilities(sb.Requires),
		Excludes:    toCapabilities(sb.Excludes),
		Produces:    toCapabilities(sb.Produces),
		After:       sb.After,
		Runner:      sb.Runner,
		Command:     sb.Command,
		Artifacts:   sb.Artifacts,
		TimeoutSec:  sb.Timeout,
		Params:      make(map[string]*Param, len(sb.Params)),
	}
	if svc.Runner == "" {
		svc.Runner = "exec"
	}
	for _, pb := range sb.Params {
		p, err := translateParam(pb)
		if err != nil {
			return nil, fmt.Errorf("service %q: %w", sb.Name, err)
		}
		if _, exists := svc.Params[p.Name]; exists {
			return nil, fmt.Errorf("service %q: duplicate param %q", sb.Name, p.Name)
		}
		svc.Params[p.Name] = p
	}
	return svc, nil
}

func translateParam(pb *paramBlock) (*Param, error) {
	p := &Param{Name: pb.Name, Description: pb.Description}

	switch pb.Type {
	case "string":
		p.Type = cty.String
	case "number":
		p.Type = cty.Number
	case "bool":
		p.Type = cty.Bool
	case "":
		// Inferred from the default below; plain string when neither given.
		p.Type = cty.NilType
	default:
		return nil, fmt.Errorf("param %q: unsupported type %q", pb.Name, pb.Type)
	}

	if pb.Default != nil {
		if p.Type == cty.NilType {
			p.Type = pb.Default.Type()
		}
		val, err := convert.Convert(*pb.Default, p.Type)
		if err != nil {
			return nil, fmt.Errorf("param %q: default: %w", pb.Name, err)
		}
		p.Default = val
	} else {
		if p.Type == cty.NilType {
			p.Type = cty.String
		}
		p.Default = cty.NullVal(p.Type)
	}
	return p, nil
}

func translateTarget(tb *targetBlock) *Target {
	t := &Target{
		Name:        tb.Name,
		Description: tb.Description,
		Category:    tb.Category,
		Requires:    tb.Requires,
		Wants:       tb.Wants,
	}
	if t.Category == "" {
		t.Category = "general"
	}
	for _, ab := range tb.Alternatives {
		t.Alternatives = append(t.Alternatives, &AlternativeSet{Services: ab.Services})
	}
	return t
}

func toCapabilities(names []string) []capability.Capability {
	out := make([]capability.Capability, len(names))
	for i, name := range names {
		out[i] = capability.Capability(name)
	}
	return out
}
