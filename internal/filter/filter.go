// Package filter evaluates JavaScript host filter expressions such as
// `host.status == "ACTIVE" && host.metadata.group == "web"`.
package filter

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dop251/goja"
	"github.com/juju/loggo/v2"

	"github.com/hemantobora/cloud-inventory/internal/models"
)

var logger = loggo.GetLogger("cloudinventory.filter")

// Filter is a compiled expression. A Filter is not safe for concurrent use.
type Filter struct {
	expr    string
	program *goja.Program
	vm      *goja.Runtime
}

// Compile parses expr. An empty expression matches every host.
func Compile(expr string) (*Filter, error) {
	expr = strings.TrimSpace(expr)
	f := &Filter{expr: expr}
	if expr == "" {
		return f, nil
	}
	program, err := goja.Compile("filter", "("+expr+"\n)", true)
	if err != nil {
		return nil, &models.FilterError{Expression: expr, Cause: err}
	}
	f.program = program
	f.vm = goja.New()
	f.vm.Set("console", map[string]interface{}{
		"log": func(args ...interface{}) {
			logger.Debugf("[filter] %v", args)
		},
	})
	return f, nil
}

// Match evaluates the expression with `host` bound to h's JSON form.
func (f *Filter) Match(h models.Host) (matched bool, err error) {
	if f.program == nil {
		return true, nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = f.hostError(h, fmt.Errorf("panic during evaluation: %v", r))
		}
	}()

	value, err := hostValue(h)
	if err != nil {
		return false, f.hostError(h, err)
	}
	if err := f.vm.Set("host", value); err != nil {
		return false, f.hostError(h, err)
	}
	result, err := f.vm.RunProgram(f.program)
	if err != nil {
		return false, f.hostError(h, err)
	}
	b, ok := result.Export().(bool)
	if !ok {
		return false, f.hostError(h, fmt.Errorf("expression returned %s, not a boolean", result.String()))
	}
	return b, nil
}

// Apply returns the hosts that match, preserving order.
func (f *Filter) Apply(hosts []models.Host) ([]models.Host, error) {
	if f.program == nil {
		return hosts, nil
	}
	var out []models.Host
	for _, h := range hosts {
		ok, err := f.Match(h)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, h)
		}
	}
	logger.Debugf("filter %q kept %d of %d hosts", f.expr, len(out), len(hosts))
	return out, nil
}

func (f *Filter) hostError(h models.Host, err error) error {
	name := h.Name
	if name == "" {
		name = h.ID
	}
	return &models.FilterError{Expression: f.expr, Host: name, Cause: err}
}

// hostValue converts h to plain maps so scripts see the snake_case keys and
// absent fields read as undefined.
func hostValue(h models.Host) (map[string]interface{}, error) {
	data, err := json.Marshal(h)
	if err != nil {
		return nil, err
	}
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}
