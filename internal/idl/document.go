package idl

// Document is the serialized form of a typed tree, as produced by the
// upstream IDL front end. Field tags cover the JSON, YAML and TOML decoders.
type Document struct {
	Enums      []EnumDoc      `json:"enums,omitempty" yaml:"enums,omitempty" toml:"enums"`
	Typedefs   []TypedefDoc   `json:"typedefs,omitempty" yaml:"typedefs,omitempty" toml:"typedefs"`
	Structs    []StructDoc    `json:"structs,omitempty" yaml:"structs,omitempty" toml:"structs"`
	Unions     []UnionDoc     `json:"unions,omitempty" yaml:"unions,omitempty" toml:"unions"`
	Exceptions []StructDoc    `json:"exceptions,omitempty" yaml:"exceptions,omitempty" toml:"exceptions"`
	Interfaces []string       `json:"interfaces,omitempty" yaml:"interfaces,omitempty" toml:"interfaces"`
	Natives    []string       `json:"natives,omitempty" yaml:"natives,omitempty" toml:"natives"`
	ValueTypes []string       `json:"valuetypes,omitempty" yaml:"valuetypes,omitempty" toml:"valuetypes"`
	Operations []OperationDoc `json:"operations,omitempty" yaml:"operations,omitempty" toml:"operations"`
	Attributes []AttributeDoc `json:"attributes,omitempty" yaml:"attributes,omitempty" toml:"attributes"`
}

type EnumDoc struct {
	Name        string   `json:"name" yaml:"name" toml:"name"`
	RepoID      string   `json:"repoId,omitempty" yaml:"repoId,omitempty" toml:"repoId"`
	Enumerators []string `json:"enumerators" yaml:"enumerators" toml:"enumerators"`
}

type TypedefDoc struct {
	Name   string `json:"name" yaml:"name" toml:"name"`
	RepoID string `json:"repoId,omitempty" yaml:"repoId,omitempty" toml:"repoId"`
	Type   string `json:"type" yaml:"type" toml:"type"`
	Sizes  []int  `json:"sizes,omitempty" yaml:"sizes,omitempty" toml:"sizes"`
}

type MemberDoc struct {
	Type        string   `json:"type" yaml:"type" toml:"type"`
	Declarators []string `json:"declarators" yaml:"declarators" toml:"declarators"`
}

// StructDoc describes both structs and exceptions.
type StructDoc struct {
	Name    string      `json:"name" yaml:"name" toml:"name"`
	RepoID  string      `json:"repoId,omitempty" yaml:"repoId,omitempty" toml:"repoId"`
	Members []MemberDoc `json:"members,omitempty" yaml:"members,omitempty" toml:"members"`
}

type CaseDoc struct {
	Labels     []string `json:"labels" yaml:"labels" toml:"labels"`
	Type       string   `json:"type" yaml:"type" toml:"type"`
	Declarator string   `json:"declarator" yaml:"declarator" toml:"declarator"`
}

type UnionDoc struct {
	Name         string    `json:"name" yaml:"name" toml:"name"`
	RepoID       string    `json:"repoId,omitempty" yaml:"repoId,omitempty" toml:"repoId"`
	Discriminant string    `json:"discriminant" yaml:"discriminant" toml:"discriminant"`
	Cases        []CaseDoc `json:"cases" yaml:"cases" toml:"cases"`
}

type ParamDoc struct {
	Name      string `json:"name" yaml:"name" toml:"name"`
	Direction string `json:"direction,omitempty" yaml:"direction,omitempty" toml:"direction"`
	Type      string `json:"type" yaml:"type" toml:"type"`
}

type OperationDoc struct {
	Name    string     `json:"name" yaml:"name" toml:"name"`
	RepoID  string     `json:"repoId,omitempty" yaml:"repoId,omitempty" toml:"repoId"`
	Returns string     `json:"returns,omitempty" yaml:"returns,omitempty" toml:"returns"`
	Params  []ParamDoc `json:"params,omitempty" yaml:"params,omitempty" toml:"params"`
	Raises  []string   `json:"raises,omitempty" yaml:"raises,omitempty" toml:"raises"`
	Oneway  bool       `json:"oneway,omitempty" yaml:"oneway,omitempty" toml:"oneway"`
}

type AttributeDoc struct {
	Scope       string   `json:"scope" yaml:"scope" toml:"scope"`
	Type        string   `json:"type" yaml:"type" toml:"type"`
	Declarators []string `json:"declarators" yaml:"declarators" toml:"declarators"`
	ReadOnly    bool     `json:"readonly,omitempty" yaml:"readonly,omitempty" toml:"readonly"`
}
