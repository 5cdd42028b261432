package sequence

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/Billhebert/chatIAS-sub004/types"
)

var (
	inputTemplateRe = regexp.MustCompile(`\$\{input\.([^}]+)\}`)
	stepTemplateRe  = regexp.MustCompile(`\$\{step([0-9]+)\.([^}]+)\}`)
)

// runContext carries the data visible to template resolution: the initial
// input bag and the results of all previously completed steps.
type runContext struct {
	input map[string]any
	steps []*types.StepResult
}

// resolveParams expands every substitution template in the step's raw params
// against the run context. The input mapping is never mutated.
func resolveParams(params map[string]any, rc *runContext) map[string]any {
	if params == nil {
		return nil
	}
	resolved := make(map[string]any, len(params))
	for key, value := range params {
		resolved[key] = resolveValue(value, rc)
	}
	return resolved
}

// resolveValue recurses into nested mappings and resolves string leaves.
// Non-string, non-mapping leaf values pass through untouched.
func resolveValue(value any, rc *runContext) any {
	switch v := value.(type) {
	case map[string]any:
		return resolveParams(v, rc)
	case string:
		return resolveString(v, rc)
	default:
		return value
	}
}

// resolveString performs two independent substitution passes over the
// literal text: ${input.<path>} templates against the initial input bag,
// then ${step<N>.<path>} templates against prior step results. Templates
// whose path resolves to nothing remain unchanged. This is string-level
// replacement: even when the template is the entire string, the result is
// the stringified value.
func resolveString(s string, rc *runContext) string {
	s = inputTemplateRe.ReplaceAllStringFunc(s, func(match string) string {
		path := inputTemplateRe.FindStringSubmatch(match)[1]
		value, ok := lookupPath(rc.input, path)
		if !ok || value == nil {
			return match
		}
		return stringify(value)
	})

	return stepTemplateRe.ReplaceAllStringFunc(s, func(match string) string {
		groups := stepTemplateRe.FindStringSubmatch(match)
		n, err := strconv.Atoi(groups[1])
		if err != nil || n < 1 || n > len(rc.steps) {
			return match
		}
		value, ok := lookupPath(rc.steps[n-1].View(), groups[2])
		if !ok || value == nil {
			return match
		}
		return stringify(value)
	})
}

// lookupPath walks dot-separated keys through nested mappings,
// short-circuiting on any missing intermediate key.
func lookupPath(root map[string]any, path string) (any, bool) {
	var current any = root
	for _, key := range strings.Split(path, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = m[key]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

func stringify(value any) string {
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", value)
}
