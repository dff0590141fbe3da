package schema

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
)

// rootDefinition is the definition candidate documents are unified with.
const rootDefinition = "#IR"

type cueSchema struct {
	name string

	// cue.Context is not safe for concurrent use.
	mu  sync.Mutex
	ctx *cue.Context
	def cue.Value
}

func compileCUE(name string, src []byte) (Schema, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(src, cue.Filename(name))
	if err := v.Err(); err != nil {
		return nil, &CompileError{Name: name, Dialect: DialectCUE, Err: err}
	}
	def := v.LookupPath(cue.ParsePath(rootDefinition))
	if !def.Exists() {
		return nil, &CompileError{Name: name, Dialect: DialectCUE, Err: fmt.Errorf("schema does not define %s", rootDefinition)}
	}
	if err := def.Err(); err != nil {
		return nil, &CompileError{Name: name, Dialect: DialectCUE, Err: err}
	}
	return &cueSchema{name: name, ctx: ctx, def: def}, nil
}

func (s *cueSchema) Name() string { return s.name }

func (s *cueSchema) Dialect() Dialect { return DialectCUE }

// Validate unifies doc with #IR and requires the result to be concrete.
func (s *cueSchema) Validate(doc any) ([]Violation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data := s.ctx.Encode(doc)
	if err := data.Err(); err != nil {
		return nil, fmt.Errorf("cue schema %s: encode document: %w", s.name, err)
	}

	err := s.def.Unify(data).Validate(cue.Concrete(true))
	if err == nil {
		return nil, nil
	}

	var out []Violation
	for _, e := range cueerrors.Errors(err) {
		out = append(out, Violation{Path: cuePointer(e.Path()), Message: cueMessage(e)})
	}
	if len(out) == 0 {
		return nil, errors.Join(fmt.Errorf("cue schema %s: validation failed without details", s.name), err)
	}
	return dedupe(out), nil
}

// cuePointer turns a CUE error path into an RFC 6901 JSON pointer,
// dropping definition selectors such as #IR. Quoted labels are unquoted
// before escaping.
func cuePointer(path []string) string {
	var b strings.Builder
	for _, p := range path {
		if strings.HasPrefix(p, "#") {
			continue
		}
		if strings.HasPrefix(p, `"`) {
			if u, err := strconv.Unquote(p); err == nil {
				p = u
			}
		}
		b.WriteByte('/')
		b.WriteString(pointerEscaper.Replace(p))
	}
	return b.String()
}

var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

func cueMessage(e cueerrors.Error) string {
	format, args := e.Msg()
	return fmt.Sprintf(format, args...)
}
