package shader

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

var (
	uniformDecl = regexp.MustCompile(`(?m)^\s*uniform\s+\w+\s+(\w+)\s*(?:\[[^\]]*\])?\s*;`)
	varyingDecl = regexp.MustCompile(`(?m)^\s*(?:layout\s*\([^)]*\)\s*)?(?:(?:flat|smooth|noperspective)\s+)?(in|out)\s+\w+\s+(\w+)\s*;`)
)

// Contract lists the declarations a shader stage must contain.
type Contract struct {
	Uniforms []string
	Inputs   []string
	Outputs  []string
}

// Declarations is what a GLSL source declares at global scope.
type Declarations struct {
	Uniforms map[string]bool
	Inputs   map[string]bool
	Outputs  map[string]bool
}

// Parse scans src for uniform, in and out declarations.
// Line comments are ignored; block comments are not handled.
func Parse(src string) Declarations {
	d := Declarations{
		Uniforms: map[string]bool{},
		Inputs:   map[string]bool{},
		Outputs:  map[string]bool{},
	}

	var b strings.Builder
	for _, line := range strings.Split(src, "\n") {
		if i := strings.Index(line, "//"); i >= 0 {
			line = line[:i]
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	clean := b.String()

	for _, m := range uniformDecl.FindAllStringSubmatch(clean, -1) {
		d.Uniforms[m[1]] = true
	}
	for _, m := range varyingDecl.FindAllStringSubmatch(clean, -1) {
		if m[1] == "in" {
			d.Inputs[m[2]] = true
		} else {
			d.Outputs[m[2]] = true
		}
	}
	return d
}

// CheckContract reports every declaration in c that src lacks.
func CheckContract(src string, c Contract) error {
	d := Parse(src)

	var missing []string
	for _, u := range c.Uniforms {
		if !d.Uniforms[u] {
			missing = append(missing, "uniform "+u)
		}
	}
	for _, in := range c.Inputs {
		if !d.Inputs[in] {
			missing = append(missing, "in "+in)
		}
	}
	for _, out := range c.Outputs {
		if !d.Outputs[out] {
			missing = append(missing, "out "+out)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing declarations: %s", strings.Join(missing, ", "))
	}
	return nil
}

// CheckLinkage reports fragment inputs that the vertex stage does not write.
func CheckLinkage(vertexSrc, fragmentSrc string) error {
	vert := Parse(vertexSrc)
	frag := Parse(fragmentSrc)

	var unmatched []string
	for in := range frag.Inputs {
		if !vert.Outputs[in] {
			unmatched = append(unmatched, in)
		}
	}
	if len(unmatched) > 0 {
		sort.Strings(unmatched)
		return fmt.Errorf("fragment inputs not written by vertex stage: %s", strings.Join(unmatched, ", "))
	}
	return nil
}
