// Package environment provides the caller-owned environment context that
// package activation mutates. Nothing in this package reads or writes the
// process environment; callers seed a Context and decide what to do with
// the result.
package environment

import (
	"os"
	"sort"
	"strings"
)

// Context is an ordered set of environment variables.
// Path-like variables are kept as entry lists and joined with the separator on read.
// A Context is not safe for concurrent mutation.
type Context struct {
	vars      map[string][]string
	changed   map[string]bool
	separator string
}

// NewContext creates an empty context using the OS path-list separator.
func NewContext() *Context {
	return NewContextWithSeparator(string(os.PathListSeparator))
}

// NewContextWithSeparator creates an empty context with a custom separator.
func NewContextWithSeparator(sep string) *Context {
	if sep == "" {
		sep = string(os.PathListSeparator)
	}
	return &Context{
		vars:      make(map[string][]string),
		changed:   make(map[string]bool),
		separator: sep,
	}
}

// FromMap seeds a context from a map. Seeded values are not reported as changed.
func FromMap(values map[string]string, sep string) *Context {
	c := NewContextWithSeparator(sep)
	for k, v := range values {
		c.vars[k] = []string{v}
	}
	return c
}

// FromEnviron seeds a context from KEY=VALUE pairs (the shape of os.Environ()).
func FromEnviron(environ []string, sep string) *Context {
	c := NewContextWithSeparator(sep)
	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			continue
		}
		c.vars[k] = []string{v}
	}
	return c
}

// Separator returns the path-list separator.
func (c *Context) Separator() string {
	return c.separator
}

// Prepend inserts value in front of the existing entries, so it takes priority.
func (c *Context) Prepend(name, value string) {
	c.vars[name] = append([]string{value}, c.entries(name)...)
	c.changed[name] = true
}

// Append adds value after the existing entries.
func (c *Context) Append(name, value string) {
	c.vars[name] = append(c.entries(name), value)
	c.changed[name] = true
}

// Set replaces the variable with a single value.
func (c *Context) Set(name, value string) {
	c.vars[name] = []string{value}
	c.changed[name] = true
}

// Unset removes the variable.
func (c *Context) Unset(name string) {
	delete(c.vars, name)
	c.changed[name] = true
}

// Lookup returns the joined value and whether the variable is set.
func (c *Context) Lookup(name string) (string, bool) {
	entries, ok := c.vars[name]
	if !ok {
		return "", false
	}
	return strings.Join(entries, c.separator), true
}

// Get returns the joined value, or "" when unset.
func (c *Context) Get(name string) string {
	v, _ := c.Lookup(name)
	return v
}

// Entries returns a copy of the entry list of a variable.
func (c *Context) Entries(name string) []string {
	return c.entries(name)
}

func (c *Context) entries(name string) []string {
	src := c.vars[name]
	out := make([]string, 0, len(src)+1)
	// Empty seeded values are dropped so prepend/append don't leave a dangling separator.
	for _, e := range src {
		if e != "" {
			out = append(out, e)
		}
	}
	return out
}

// Names returns all set variable names, sorted.
func (c *Context) Names() []string {
	names := make([]string, 0, len(c.vars))
	for k := range c.vars {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Changed returns the names of variables touched since the context was seeded, sorted.
// Unset variables are included.
func (c *Context) Changed() []string {
	names := make([]string, 0, len(c.changed))
	for k := range c.changed {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Map returns the joined values of all set variables.
func (c *Context) Map() map[string]string {
	out := make(map[string]string, len(c.vars))
	for k := range c.vars {
		out[k] = c.Get(k)
	}
	return out
}

// Environ returns KEY=VALUE pairs sorted by key, ready for exec.Cmd.Env.
func (c *Context) Environ() []string {
	names := c.Names()
	out := make([]string, 0, len(names))
	for _, k := range names {
		out = append(out, k+"="+c.Get(k))
	}
	return out
}

// Expand replaces $VAR and ${VAR} references with values from the context.
// References to unset variables are left as written so a shell can resolve them later.
func (c *Context) Expand(s string) string {
	if !strings.Contains(s, "$") {
		return s
	}

	var out strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '$' || i+1 >= len(s) {
			out.WriteByte(s[i])
			continue
		}

		var name, ref string
		if s[i+1] == '{' {
			end := strings.IndexByte(s[i+2:], '}')
			if end < 0 {
				out.WriteString(s[i:])
				break
			}
			name = s[i+2 : i+2+end]
			ref = s[i : i+3+end]
		} else {
			j := i + 1
			for j < len(s) && isVarByte(s[j], j == i+1) {
				j++
			}
			name = s[i+1 : j]
			ref = s[i:j]
		}

		if v, ok := c.Lookup(name); ok && name != "" {
			out.WriteString(v)
		} else {
			out.WriteString(ref)
		}
		i += len(ref) - 1
	}
	return out.String()
}

func isVarByte(b byte, first bool) bool {
	if b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') {
		return true
	}
	return !first && b >= '0' && b <= '9'
}
