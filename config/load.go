package config

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"

	"github.com/coupergateway/authproxy/errors"
)

const DefaultFileName = "authproxy.hcl"

var fileSchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "settings"},
		{Type: "oauth2"},
		{Type: "tls"},
	},
}

// LoadFile reads the given HCL file into conf. Attributes missing in the
// file keep their current value.
func LoadFile(filePath string, conf *AuthProxy) error {
	src, err := os.ReadFile(filePath)
	if err != nil {
		return errors.Configuration.Label("load").With(err)
	}
	return LoadBytes(src, filepath.Base(filePath), conf)
}

func LoadBytes(src []byte, filename string, conf *AuthProxy) error {
	loadErr := errors.Configuration.Label("load")
	if filepath.Ext(filename) != ".hcl" {
		return loadErr.Messagef("configuration must be a hcl file: %s", filename)
	}

	file, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return loadErr.With(diags)
	}

	content, diags := file.Body.Content(fileSchema)
	if diags.HasErrors() {
		return loadErr.With(diags)
	}

	evalCtx, err := NewENVContext(src)
	if err != nil {
		return loadErr.With(err)
	}

	seen := make(map[string]struct{})
	for _, block := range content.Blocks {
		if _, exist := seen[block.Type]; exist {
			return loadErr.Messagef("duplicate %q block: %s", block.Type, block.DefRange.String())
		}
		seen[block.Type] = struct{}{}

		var target interface{}
		switch block.Type {
		case "settings":
			target = conf.Settings
		case "oauth2":
			target = conf.OAuth2
		case "tls":
			target = conf.TLS
		}

		if diags = gohcl.DecodeBody(block.Body, evalCtx, target); diags.HasErrors() {
			return loadErr.With(diags)
		}
	}

	return nil
}

// NewENVContext provides all environment variables referenced by env.NAME
// within src as "env" object.
func NewENVContext(src []byte) (*hcl.EvalContext, error) {
	keys, err := decodeEnvironmentRefs(src)
	if err != nil {
		return nil, err
	}

	variables := make(map[string]cty.Value)
	variables["env"] = newCtyEnvMap(keys)

	return &hcl.EvalContext{
		Variables: variables,
	}, nil
}

func newCtyEnvMap(envKeys []string) cty.Value {
	if len(envKeys) == 0 {
		return cty.MapValEmpty(cty.String)
	}
	ctyMap := make(map[string]cty.Value)
	for _, key := range envKeys {
		if _, ok := ctyMap[key]; !ok {
			ctyMap[key] = cty.StringVal(os.Getenv(key))
		}
	}
	return cty.MapVal(ctyMap)
}

func decodeEnvironmentRefs(src []byte) ([]string, error) {
	tokens, diags := hclsyntax.LexConfig(src, "tmp.hcl", hcl.InitialPos)
	if diags.HasErrors() {
		return nil, diags
	}
	needle := []byte("env")
	var keys []string
	for i, token := range tokens {
		if token.Type == hclsyntax.TokenIdent &&
			bytes.Equal(token.Bytes, needle) &&
			i+2 < len(tokens) &&
			tokens[i+1].Type == hclsyntax.TokenDot {
			keys = append(keys, string(tokens[i+2].Bytes))
		}
	}
	return keys, nil
}
