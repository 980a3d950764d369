package prompts

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"
	"text/template"
	"text/template/parse"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/soundprediction/go-domainprompts/pkg/llm"
)

// optionalKeys render as empty text when absent from the context.
var optionalKeys = []string{"custom_prompt"}

// templateFuncs are available to every bundle body.
var templateFuncs = template.FuncMap{
	"text": promptText,
	"json": promptJSON,
}

// bundle is the YAML layout of a template set file.
type bundle struct {
	Name        string                        `yaml:"name"`
	Family      Family                        `yaml:"family"`
	Description string                        `yaml:"description"`
	Operations  map[Operation]bundleOperation `yaml:"operations"`
}

type bundleOperation struct {
	System string `yaml:"system"`
	User   string `yaml:"user"`
}

// ParseTemplateSet compiles a YAML bundle into a TemplateSet. source labels
// the set in logs and errors.
func ParseTemplateSet(source string, data []byte) (*TemplateSet, error) {
	var b bundle
	if err := yaml.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidTemplateSet, source, err)
	}
	if b.Name == "" {
		return nil, fmt.Errorf("%w: %s: missing name", ErrInvalidTemplateSet, source)
	}
	if !b.Family.Valid() {
		return nil, fmt.Errorf("%w: %s: unknown family %q", ErrInvalidTemplateSet, source, b.Family)
	}
	if len(b.Operations) == 0 {
		return nil, fmt.Errorf("%w: %s: no operations", ErrInvalidTemplateSet, source)
	}

	set := &TemplateSet{
		name:        b.Name,
		family:      b.Family,
		description: b.Description,
		source:      source,
		ops:         make(map[Operation]PromptFunction, len(b.Operations)),
		required:    make(map[Operation][]string, len(b.Operations)),
	}
	for op, spec := range b.Operations {
		fn, required, err := compileOperation(b.Name, op, spec)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidTemplateSet, source, err)
		}
		set.ops[op] = fn
		set.required[op] = required
	}
	return set, nil
}

// LoadTemplateSets parses every *.yaml and *.yml bundle below dir, sorted by path.
func LoadTemplateSets(fsys fs.FS, dir string) ([]*TemplateSet, error) {
	var paths []string
	err := fs.WalkDir(fsys, dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(path.Ext(p)) {
		case ".yaml", ".yml":
			paths = append(paths, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk template bundles in %s: %w", dir, err)
	}
	slices.Sort(paths)

	sets := make([]*TemplateSet, 0, len(paths))
	for _, p := range paths {
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, fmt.Errorf("failed to read template bundle: %w", err)
		}
		set, err := ParseTemplateSet(p, data)
		if err != nil {
			return nil, err
		}
		sets = append(sets, set)
	}
	return sets, nil
}

func compileOperation(setName string, op Operation, spec bundleOperation) (PromptFunction, []string, error) {
	if strings.TrimSpace(spec.System) == "" || strings.TrimSpace(spec.User) == "" {
		return nil, nil, fmt.Errorf("operation %q needs both system and user text", op)
	}
	sys, err := parseBody(fmt.Sprintf("%s/%s/system", setName, op), spec.System)
	if err != nil {
		return nil, nil, err
	}
	user, err := parseBody(fmt.Sprintf("%s/%s/user", setName, op), spec.User)
	if err != nil {
		return nil, nil, err
	}

	var required []string
	for _, key := range append(contextKeys(sys), contextKeys(user)...) {
		if !slices.Contains(required, key) && !slices.Contains(optionalKeys, key) {
			required = append(required, key)
		}
	}

	fn := func(context map[string]interface{}) ([]llm.Message, error) {
		for _, key := range required {
			if _, ok := context[key]; !ok {
				return nil, &MissingKeyError{Key: key, Operation: op, TemplateSet: setName}
			}
		}
		data := withOptionalKeys(context)

		sysText, err := execute(sys, data)
		if err != nil {
			return nil, err
		}
		userText, err := execute(user, data)
		if err != nil {
			return nil, err
		}
		return []llm.Message{
			llm.NewSystemMessage(sysText),
			llm.NewUserMessage(userText),
		}, nil
	}
	return fn, required, nil
}

func parseBody(name, body string) (*template.Template, error) {
	tmpl, err := template.New(name).Option("missingkey=error").Funcs(templateFuncs).Parse(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", name, err)
	}
	return tmpl, nil
}

func execute(tmpl *template.Template, data map[string]interface{}) (string, error) {
	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", tmpl.Name(), err)
	}
	return sb.String(), nil
}

// withOptionalKeys returns context itself when every optional key is present,
// otherwise a shallow copy with the missing ones set to "".
func withOptionalKeys(context map[string]interface{}) map[string]interface{} {
	var data map[string]interface{}
	for _, key := range optionalKeys {
		if _, ok := context[key]; ok {
			continue
		}
		if data == nil {
			data = make(map[string]interface{}, len(context)+len(optionalKeys))
			for k, v := range context {
				data[k] = v
			}
		}
		data[key] = ""
	}
	if data == nil {
		return context
	}
	return data
}

// contextKeys lists the top-level fields a template reads from dot, in order.
// Bodies of range and with blocks rebind dot and are skipped.
func contextKeys(tmpl *template.Template) []string {
	var keys []string
	var walk func(n parse.Node)
	walk = func(n parse.Node) {
		switch n := n.(type) {
		case *parse.ListNode:
			if n == nil {
				return
			}
			for _, c := range n.Nodes {
				walk(c)
			}
		case *parse.ActionNode:
			walk(n.Pipe)
		case *parse.PipeNode:
			if n == nil {
				return
			}
			for _, c := range n.Cmds {
				walk(c)
			}
		case *parse.CommandNode:
			for _, arg := range n.Args {
				walk(arg)
			}
		case *parse.FieldNode:
			if !slices.Contains(keys, n.Ident[0]) {
				keys = append(keys, n.Ident[0])
			}
		case *parse.IfNode:
			walk(n.Pipe)
			walk(n.List)
			walk(n.ElseList)
		case *parse.RangeNode:
			walk(n.Pipe)
		case *parse.WithNode:
			walk(n.Pipe)
		}
	}
	if tmpl.Tree != nil {
		walk(tmpl.Tree.Root)
	}
	return keys
}

// promptText renders strings verbatim and structured values as indented JSON.
func promptText(v interface{}) (string, error) {
	switch t := v.(type) {
	case nil:
		return "", nil
	case string:
		return t, nil
	case []byte:
		return string(t), nil
	case json.RawMessage:
		return string(t), nil
	case time.Time:
		return t.UTC().Format(time.RFC3339), nil
	case *time.Time:
		if t == nil {
			return "", nil
		}
		return t.UTC().Format(time.RFC3339), nil
	case fmt.Stringer:
		return t.String(), nil
	case bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return fmt.Sprint(t), nil
	}
	return ToPromptJSON(v, 2)
}

// promptJSON renders any value as indented JSON.
func promptJSON(v interface{}) (string, error) {
	return ToPromptJSON(v, 2)
}
