package lexengo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"sigs.k8s.io/yaml"
)

// RuleSet is a rule list loaded from a file, with the tokens a tokenizer
// should drop.
//
// The rule file format has one rule per line, in priority order:
//
//	# comment
//	IF     = "if"
//	IDENT  = `[a-z_][a-z0-9_]*`
//	PLUS   = `\+`
//	-WS    = "[ \t\r\n]+"
//
// Patterns are Go string literals. Raw strings keep regex escapes such as
// \+ readable; control characters need an interpreted string, since the
// pattern syntax itself has no \t or \n. A leading '-' marks a token to
// skip. The YAML (or JSON) form is
//
//	rules:
//	  - token: IDENT
//	    pattern: '[a-z_][a-z0-9_]*'
//	skip: [WS]
type RuleSet struct {
	Rules []Rule[string] `json:"rules"`
	Skip  []string       `json:"skip,omitempty"`
}

// Validate checks that every rule has a token and every skipped token is
// produced by some rule.
func (rs *RuleSet) Validate() error {
	if len(rs.Rules) == 0 {
		return errors.New("rule set has no rules")
	}
	tokens := make(map[string]bool, len(rs.Rules))
	for i, r := range rs.Rules {
		if r.Token == "" {
			return fmt.Errorf("rule %d (%q) has no token", i, r.Pattern)
		}
		tokens[r.Token] = true
	}
	for _, s := range rs.Skip {
		if !tokens[s] {
			return fmt.Errorf("skipped token %q is not produced by any rule", s)
		}
	}
	return nil
}

// Tokens returns the distinct tokens of the rule set in declaration order.
func (rs *RuleSet) Tokens() []string {
	seen := make(map[string]bool, len(rs.Rules))
	var out []string
	for _, r := range rs.Rules {
		if !seen[r.Token] {
			seen[r.Token] = true
			out = append(out, r.Token)
		}
	}
	return out
}

// Compile compiles the rule set's rules.
func (rs *RuleSet) Compile(opts ...Option) (*Lexer[string], error) {
	return Compile(rs.Rules, opts...)
}

var ruleFileLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		{Name: "Comment", Pattern: `#[^\n]*`},
		{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
		{Name: "String", Pattern: `"(\\.|[^"\\\n])*"`},
		{Name: "RawString", Pattern: "`[^`]*`"},
		{Name: "Punct", Pattern: `[=-]`},
		{Name: "Whitespace", Pattern: `\s+`},
	},
})

type ruleFile struct {
	Rules []*ruleDecl `parser:"@@*"`
}

type ruleDecl struct {
	Pos lexer.Position

	Skip    bool   `parser:"@'-'?"`
	Token   string `parser:"@Ident '='"`
	Pattern string `parser:"@(String | RawString)"`
}

var ruleFileParser = participle.MustBuild[ruleFile](
	participle.Lexer(ruleFileLexer),
	participle.Elide("Comment", "Whitespace"),
	participle.Unquote("String", "RawString"),
)

// ParseRules parses a rule file. filename is only used in error messages.
func ParseRules(filename string, src []byte) (*RuleSet, error) {
	file, err := ruleFileParser.ParseBytes(filename, src)
	if err != nil {
		return nil, fmt.Errorf("failed to parse rules: %w", err)
	}

	rs := &RuleSet{}
	for _, decl := range file.Rules {
		rs.Rules = append(rs.Rules, Rule[string]{Pattern: decl.Pattern, Token: decl.Token})
		if decl.Skip && !slices.Contains(rs.Skip, decl.Token) {
			rs.Skip = append(rs.Skip, decl.Token)
		}
	}
	if err := rs.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return rs, nil
}

// ParseRuleSetYAML parses the YAML or JSON form of a rule set. Unknown
// fields are rejected.
func ParseRuleSetYAML(src []byte) (*RuleSet, error) {
	rs := &RuleSet{}
	if err := yaml.UnmarshalStrict(src, rs); err != nil {
		return nil, fmt.Errorf("failed to parse rule set: %w", err)
	}
	if err := rs.Validate(); err != nil {
		return nil, err
	}
	return rs, nil
}

// MarshalRuleSetYAML renders a rule set in its YAML form.
func MarshalRuleSetYAML(rs *RuleSet) ([]byte, error) {
	return yaml.Marshal(rs)
}

// LoadRules reads a rule set from path. Files ending in .yaml, .yml or .json
// use the YAML form; anything else is parsed as a rule file.
func LoadRules(path string) (*RuleSet, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
		rs, err := ParseRuleSetYAML(src)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return rs, nil
	}
	return ParseRules(path, src)
}
