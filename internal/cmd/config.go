package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"unicode"

	"github.com/Alia5/giopgen/internal/configpaths"

	toml "github.com/pelletier/go-toml"
	yaml "gopkg.in/yaml.v3"
)

// ConfigCommand groups config-related subcommands.
type ConfigCommand struct {
	Init ConfigInit `cmd:"" help:"Generate a configuration template"`
}

// ConfigInit scaffolds a configuration file for a specific command.
type ConfigInit struct {
	Command string `arg:"" name:"command" help:"Command to generate config for" enum:"generate"`
	Format  string `help:"Output format" enum:"json,yaml,yml,toml" default:"json"`
	Output  string `help:"Destination file path (defaults to <command>.<format> in the current directory)"`
	Force   bool   `help:"Overwrite if the file already exists"`
}

// configurable maps command names to the struct whose flags a config file
// may set.
var configurable = map[string]reflect.Type{
	"generate": reflect.TypeOf(Generate{}),
}

// Run writes the template for the chosen command.
func (c *ConfigInit) Run() error {
	data, err := ConfigTemplate(c.Command, c.Format)
	if err != nil {
		return err
	}

	dest := c.Output
	if dest == "" {
		dest = c.Command + "." + configpaths.Ext(normalizeFormat(c.Format))
	}
	if !c.Force {
		if _, err := os.Stat(dest); err == nil {
			return errors.New("destination exists; use --force to overwrite")
		}
	}
	if err := configpaths.EnsureDir(dest); err != nil {
		return err
	}
	return os.WriteFile(dest, data, 0o644)
}

// ConfigTemplate renders the flag defaults of command in format, keyed the
// way the config loaders resolve them.
func ConfigTemplate(command, format string) ([]byte, error) {
	typ, ok := configurable[command]
	if !ok {
		return nil, fmt.Errorf("unknown command %q; expected 'generate'", command)
	}
	root := defaultsOf(typ)

	switch normalizeFormat(format) {
	case "json":
		data, err := json.MarshalIndent(root, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	case "yaml":
		return yaml.Marshal(root)
	case "toml":
		return toml.Marshal(root)
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

func normalizeFormat(f string) string {
	switch strings.ToLower(f) {
	case "json":
		return "json"
	case "yaml", "yml":
		return "yaml"
	case "toml":
		return "toml"
	default:
		return ""
	}
}

func lowerCamel(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}

// defaultsOf walks the kong tags of t. Embedded groups nest under their
// prefix; fields tagged kong:"-" are skipped.
func defaultsOf(t reflect.Type) map[string]any {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	out := map[string]any{}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() || f.Tag.Get("kong") == "-" {
			continue
		}

		if _, ok := f.Tag.Lookup("embed"); ok {
			sub := defaultsOf(f.Type)
			if name := strings.TrimSuffix(f.Tag.Get("prefix"), "."); name != "" {
				out[name] = sub
				continue
			}
			for k, v := range sub {
				out[k] = v
			}
			continue
		}

		if v := defaultValue(f.Type, f.Tag.Get("default")); v != nil {
			out[lowerCamel(f.Name)] = v
		}
	}
	return out
}

// defaultValue parses a default tag into the field's kind. Unparseable
// defaults fall back to the zero value.
func defaultValue(t reflect.Type, def string) any {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.String:
		return def
	case reflect.Bool:
		b, _ := strconv.ParseBool(def)
		return b
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, _ := strconv.ParseInt(def, 10, 64)
		return n
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, _ := strconv.ParseUint(def, 10, 64)
		return n
	case reflect.Struct:
		return defaultsOf(t)
	default:
		return nil
	}
}
