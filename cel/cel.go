package cel

import (
	"fmt"

	"github.com/google/cel-go/cel"

	"github.com/sharedcode/nodestore"
)

// Evaluator struct contains the CEL expression & the cel program used to evaluate expression vs. input variables.
type Evaluator struct {
	Expression string
	program    cel.Program
}

// NewEvaluator compiles a boolean filter over the variable "node", see NodeVars for its fields.
// e.g. "node.level == 0 && node.payload_size > 1024".
func NewEvaluator(name string, expression string) (*Evaluator, error) {
	if name == "" {
		return nil, fmt.Errorf("name can't be empty string")
	}
	if expression == "" {
		return nil, fmt.Errorf("expression can't be empty string")
	}

	env, err := cel.NewEnv(
		cel.Variable("node", cel.MapType(cel.StringType, cel.AnyType)),
	)
	if err != nil {
		return nil, fmt.Errorf("error creating CEL environment: %v", err)
	}

	ast, issues := env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("error compiling CEL expression: %v", issues.Err())
	}
	if !ast.OutputType().IsExactType(cel.BoolType) && !ast.OutputType().IsExactType(cel.DynType) {
		return nil, fmt.Errorf("CEL expression %s must evaluate to bool, got %v", name, ast.OutputType())
	}
	p, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("error creating Program: %v", err)
	}
	return &Evaluator{
		Expression: expression,
		program:    p,
	}, nil
}

// NodeVars exposes a node to filter expressions.
func NodeVars(n *nodestore.Node) map[string]any {
	vars := map[string]any{
		"id":           n.ID.String(),
		"level":        int64(n.Level),
		"entries":      int64(len(n.Entries)),
		"payload_size": int64(len(n.Payload)),
	}
	if b := n.Bounds(); b != nil {
		vars["bounds"] = map[string]any{
			"min_x": b.MinX,
			"min_y": b.MinY,
			"max_x": b.MaxX,
			"max_y": b.MaxY,
		}
	}
	return vars
}

// Matches evaluates the filter against n.
func (e *Evaluator) Matches(n *nodestore.Node) (bool, error) {
	out, _, err := e.program.Eval(map[string]any{
		"node": NodeVars(n),
	})
	if err != nil {
		return false, fmt.Errorf("error evaluating CEL expression: %v", err)
	}
	v, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("error converting to bool, got: %v", out.Value())
	}
	return v, nil
}
