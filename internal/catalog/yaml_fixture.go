package catalog

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/sqldef/pgfdwplan/internal/oid"
	"github.com/sqldef/pgfdwplan/util"
)

// yamlColumn mirrors one entry of a relation's columns list in a YAML
// fixture document.
type yamlColumn struct {
	Name        string  `yaml:"name"`
	TypeOID     oid.OID `yaml:"type_oid"`
	Dropped     bool    `yaml:"dropped"`
	ForeignName string  `yaml:"foreign_name"`
}

type yamlRelation struct {
	Namespace    oid.OID      `yaml:"namespace"`
	Name         string       `yaml:"name"`
	SchemaOption string       `yaml:"schema_option"`
	TableOption  string       `yaml:"table_option"`
	UseRemoteEst bool         `yaml:"use_remote_estimate"`
	Columns      []yamlColumn `yaml:"columns"`
}

type yamlOperator struct {
	Name      string  `yaml:"name"`
	Namespace oid.OID `yaml:"namespace"`
	Kind      string  `yaml:"kind"` // "infix" (default), "prefix", "postfix"
}

type yamlFunction struct {
	Name      string  `yaml:"name"`
	Namespace oid.OID `yaml:"namespace"`
	// Output is parsed but not read by buildFakeFromYAML; a Const's
	// output style (int, float, text, bool) comes from its type's entry
	// under types.
	Output string `yaml:"output"`
}

type yamlType struct {
	Name   string `yaml:"name"`
	Output string `yaml:"output"` // "int", "float", "text", "bool"
}

// yamlDocument is the on-disk shape loaded by LoadYAMLFixture, the same
// document gopkg.in/yaml.v3 unmarshals cmd/fdwplandemo's catalog fixture
// into. It is intentionally a flat, declarative mirror of the Fake
// struct, the way the teacher's database.ParseGeneratorConfigString
// turns a YAML config document into its own in-memory settings struct.
type yamlDocument struct {
	Cutoff           oid.OID                  `yaml:"cutoff"`
	Namespaces       map[oid.OID]string       `yaml:"namespaces"`
	Relations        map[oid.OID]yamlRelation `yaml:"relations"`
	Operators        map[oid.OID]yamlOperator `yaml:"operators"`
	Functions        map[oid.OID]yamlFunction `yaml:"functions"`
	Types            map[oid.OID]yamlType     `yaml:"types"`
	MutableFunctions []oid.OID                `yaml:"mutable_functions"`
	LengthCoercions  []oid.OID                `yaml:"length_coercions"`
}

// LoadYAMLFixture reads a catalog fixture document from path and builds
// a ready-to-use Fake from it. It exists alongside the hand-built Fake
// for larger or reusable fixtures that are more convenient to maintain
// as data than as Go code (spec §9 design notes).
func LoadYAMLFixture(path string) (*Fake, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: reading fixture %s: %w", path, err)
	}
	var doc yamlDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("catalog: parsing fixture %s: %w", path, err)
	}
	return buildFakeFromYAML(doc)
}

func buildFakeFromYAML(doc yamlDocument) (*Fake, error) {
	f := NewFake()
	if doc.Cutoff != 0 {
		f.Cutoff = doc.Cutoff
	}
	for o, name := range doc.Namespaces {
		f.Namespaces[o] = name
	}
	for relOID, yr := range doc.Relations {
		rel := &Relation{
			OID:          relOID,
			NamespaceOID: yr.Namespace,
			Name:         yr.Name,
			SchemaOption: yr.SchemaOption,
			TableOption:  yr.TableOption,
			UseRemoteEst: yr.UseRemoteEst,
		}
		rel.Columns = util.TransformSlice(yr.Columns, func(yc yamlColumn) Column {
			return Column{
				Name:        yc.Name,
				TypeOID:     yc.TypeOID,
				Dropped:     yc.Dropped,
				ForeignName: yc.ForeignName,
			}
		})
		f.Relations[relOID] = rel
	}
	for o, yo := range doc.Operators {
		kind := OperatorInfix
		switch yo.Kind {
		case "prefix":
			kind = OperatorPrefix
		case "postfix":
			kind = OperatorPostfix
		}
		f.Operators[o] = OperatorInfo{Name: yo.Name, NamespaceOID: yo.Namespace, Kind: kind}
	}
	for o, yf := range doc.Functions {
		f.Functions[o] = FunctionInfo{Name: yf.Name, NamespaceOID: yf.Namespace}
	}
	for o, yt := range doc.Types {
		f.TypeNames[o] = yt.Name
		out, err := outputStyle(yt.Output)
		if err != nil {
			return nil, fmt.Errorf("catalog: type %d: %w", o, err)
		}
		f.TypeOutputs[o] = out
	}
	for _, o := range doc.MutableFunctions {
		f.Mutable[o] = true
	}
	for _, o := range doc.LengthCoercions {
		f.LengthCoercions[o] = true
	}
	return f, nil
}

// outputStyle returns one of a handful of output-function stand-ins
// covering the built-in scalar types a fixture is likely to need; a
// YAML fixture cannot describe an arbitrary Go func, so it names one of
// these instead.
func outputStyle(name string) (func(any) (string, error), error) {
	switch name {
	case "", "text":
		return func(v any) (string, error) {
			s, ok := v.(string)
			if !ok {
				return "", fmt.Errorf("text output: value %v is not a string", v)
			}
			return s, nil
		}, nil
	case "int":
		return func(v any) (string, error) {
			switch n := v.(type) {
			case int:
				return strconv.Itoa(n), nil
			case int64:
				return strconv.FormatInt(n, 10), nil
			case float64:
				return strconv.FormatInt(int64(n), 10), nil
			default:
				return "", fmt.Errorf("int output: unsupported value type %T", v)
			}
		}, nil
	case "float":
		return func(v any) (string, error) {
			switch n := v.(type) {
			case float64:
				return strconv.FormatFloat(n, 'g', -1, 64), nil
			case string:
				return n, nil
			default:
				return "", fmt.Errorf("float output: unsupported value type %T", v)
			}
		}, nil
	case "bool":
		return func(v any) (string, error) {
			b, ok := v.(bool)
			if !ok {
				return "", fmt.Errorf("bool output: value %v is not a bool", v)
			}
			if b {
				return "t", nil
			}
			return "f", nil
		}, nil
	default:
		return nil, fmt.Errorf("unknown output style %q", name)
	}
}
