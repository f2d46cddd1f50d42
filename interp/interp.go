// Package interp evaluates AgentScript syntax trees. The interpreter walks
// statements sequentially on the caller goroutine against an Env scope
// chain; agent workers run concurrently underneath, reached through the
// runtime and its bus. Errors abort the offending top-level statement and
// carry the source position of the construct that raised them.
package interp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/hupe1980/agentscript/ast"
	"github.com/hupe1980/agentscript/core"
	"github.com/hupe1980/agentscript/logging"
	"github.com/hupe1980/agentscript/runtime"
	"github.com/hupe1980/agentscript/tool"
)

// DefaultAskTimeout bounds ask calls that pass no timeout argument.
const DefaultAskTimeout = 30 * time.Second

// stdlibModules maps importable module paths to the symbols they export.
var stdlibModules = map[string][]string{
	"agentscript.stdlib.tools": {
		tool.ToolWebSearch,
		tool.ToolFileManager,
		tool.ToolCalculator,
		tool.ToolAgentRouting,
	},
}

// Options configures an Interpreter.
type Options struct {
	// Output receives print statement text. Defaults to os.Stdout.
	Output io.Writer
	// AskTimeout applies to ask calls without an explicit timeout argument.
	AskTimeout time.Duration
	// Logger receives evaluation diagnostics. Defaults to NoOpLogger.
	Logger logging.Logger
}

// Interpreter executes programs against a runtime.
type Interpreter struct {
	rt         *runtime.Runtime
	out        io.Writer
	askTimeout time.Duration
	logger     logging.Logger
	globals    *Env
}

// New creates an Interpreter bound to a runtime.
func New(rt *runtime.Runtime, optFns ...func(o *Options)) *Interpreter {
	opts := Options{
		Output:     os.Stdout,
		AskTimeout: DefaultAskTimeout,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	return &Interpreter{
		rt:         rt,
		out:        opts.Output,
		askTimeout: opts.AskTimeout,
		logger:     opts.Logger,
		globals:    NewEnv(nil),
	}
}

// Execute runs a program's statements in order. The first failing statement
// aborts execution; shared runtime state is never left half-mutated by a
// failed statement.
func (i *Interpreter) Execute(program *ast.Program) error {
	for _, stmt := range program.Statements {
		if err := i.ExecuteStmt(stmt); err != nil {
			return err
		}
	}
	return nil
}

// ExecuteStmt runs a single top-level statement against the global scope.
// REPL-style front-ends feed statements one at a time through this.
func (i *Interpreter) ExecuteStmt(stmt ast.Stmt) error {
	return i.execStmt(stmt, i.globals)
}

func (i *Interpreter) execStmt(stmt ast.Stmt, env *Env) error {
	switch s := stmt.(type) {
	case *ast.ImportStatement:
		return i.execImport(s)
	case *ast.AgentDeclaration:
		return i.execAgentDeclaration(s, env)
	case *ast.PropertyAssignment:
		return i.execPropertyAssignment(s, env)
	case *ast.VarAssignment:
		v, err := i.eval(s.Value, env)
		if err != nil {
			return err
		}
		if err := env.Assign(s.Name, v); err != nil {
			// Only the global scope admits implicit definition. An undeclared
			// name inside a block stays a semantic error.
			if env != i.globals {
				return i.withPos(err, s.Position)
			}
			env.Define(s.Name, v)
		}
		return nil
	case *ast.PrintStatement:
		v, err := i.eval(s.Value, env)
		if err != nil {
			return err
		}
		fmt.Fprintln(i.out, v.Format())
		return nil
	case *ast.IfStatement:
		return i.execIf(s, env)
	case *ast.ExpressionStatement:
		_, err := i.eval(s.Value, env)
		return err
	default:
		return core.NewError(core.ErrType, "unsupported statement %T", stmt).WithPos(stmt.Pos())
	}
}

func (i *Interpreter) execImport(s *ast.ImportStatement) error {
	module := strings.Join(s.Module, ".")
	exported, ok := stdlibModules[module]
	if !ok {
		return core.NewError(core.ErrImport, "unknown module %q", module).WithPos(s.Position)
	}
	for _, name := range s.Names {
		found := false
		for _, sym := range exported {
			if sym == name {
				found = true
				break
			}
		}
		if !found {
			return core.NewError(core.ErrImport, "module %q does not export %q", module, name).WithPos(s.Position)
		}
	}
	return nil
}

func (i *Interpreter) execAgentDeclaration(s *ast.AgentDeclaration, env *Env) error {
	if _, exists := env.Get(s.Name); exists {
		return core.NewError(core.ErrDuplicateName, "name %q is already bound", s.Name).WithPos(s.Position)
	}

	// Evaluate config pairs before spawning so a failing expression leaves
	// the agent table untouched.
	props := make([]struct {
		key string
		val core.Value
	}, 0, len(s.Config))
	for _, pair := range s.Config {
		v, err := i.eval(pair.Value, env)
		if err != nil {
			return err
		}
		props = append(props, struct {
			key string
			val core.Value
		}{pair.Key, v})
	}

	agent, err := i.rt.Spawn(s.Name, s.Model)
	if err != nil {
		return i.withPos(err, s.Position)
	}
	for _, p := range props {
		agent.SetProperty(p.key, p.val)
	}
	env.Define(s.Name, agent.Ref())
	return nil
}

// resolveAgent maps a script variable to its live agent.
func (i *Interpreter) resolveAgent(name string, pos core.Position, env *Env) (*runtime.Agent, error) {
	v, ok := env.Get(name)
	if !ok {
		return nil, core.NewError(core.ErrUnknownAgent, "unknown agent %q", name).WithPos(pos)
	}
	ref, ok := v.(core.AgentRef)
	if !ok {
		return nil, core.NewError(core.ErrType, "%q is not an agent", name).WithPos(pos)
	}
	agent, ok := i.rt.LookupID(ref.ID)
	if !ok {
		return nil, core.NewError(core.ErrUnknownAgent, "unknown agent %q", name).WithPos(pos)
	}
	return agent, nil
}

func (i *Interpreter) execPropertyAssignment(s *ast.PropertyAssignment, env *Env) error {
	agent, err := i.resolveAgent(s.Agent, s.Position, env)
	if err != nil {
		return err
	}

	if s.Property == "tools" {
		return i.assignTools(agent, s, env)
	}

	switch s.Property {
	case "status", "name", "model":
		return core.NewError(core.ErrType, "property %q is read-only", s.Property).WithPos(s.Position)
	}

	v, err := i.eval(s.Value, env)
	if err != nil {
		return err
	}
	if s.Mode == ast.AssignAppend {
		// Only list-like properties merge; tools is handled above, and no
		// other list-like property kind exists yet.
		return core.NewError(core.ErrType, "property %q does not support +=", s.Property).WithPos(s.Position)
	}
	agent.SetProperty(s.Property, v)
	return nil
}

// assignTools validates and applies a tools write. Every referenced tool
// must be registered and every routing target must be a live agent before
// any part of the set is applied.
func (i *Interpreter) assignTools(agent *runtime.Agent, s *ast.PropertyAssignment, env *Env) error {
	list, ok := s.Value.(*ast.ToolListExpr)
	if !ok {
		return core.NewError(core.ErrType, "tools expects a { ... } tool list").WithPos(s.Value.Pos())
	}

	set := make(core.ToolSet, 0, len(list.Specs))
	for _, spec := range list.Specs {
		if !i.rt.Tools().Has(spec.Name) {
			return core.NewError(core.ErrUnknownTool, "unknown tool %q", spec.Name).WithPos(spec.Position)
		}
		for _, target := range spec.Routes {
			if _, err := i.resolveAgent(target, spec.Position, env); err != nil {
				return err
			}
		}
		set = append(set, core.ToolSpec{Name: spec.Name, Routes: spec.Routes})
	}

	if s.Mode == ast.AssignAppend {
		agent.AppendTools(set)
	} else {
		agent.SetTools(set)
	}
	return nil
}

func (i *Interpreter) execIf(s *ast.IfStatement, env *Env) error {
	cond, err := i.eval(s.Cond, env)
	if err != nil {
		return err
	}
	b, ok := core.Truthy(cond)
	if !ok {
		return core.NewError(core.ErrType, "if condition must be a boolean, got %s", cond.Kind()).WithPos(s.Cond.Pos())
	}

	branch := s.Then
	if !b {
		branch = s.Else
	}
	scope := NewEnv(env)
	for _, stmt := range branch {
		if err := i.execStmt(stmt, scope); err != nil {
			return err
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Expressions
// ---------------------------------------------------------------------------

func (i *Interpreter) eval(expr ast.Expr, env *Env) (core.Value, error) {
	switch e := expr.(type) {
	case *ast.StringLit:
		return core.String(e.Value), nil
	case *ast.NumberLit:
		return core.Number(e.Value), nil
	case *ast.BoolLit:
		return core.Bool(e.Value), nil
	case *ast.Identifier:
		v, ok := env.Get(e.Name)
		if !ok {
			return nil, core.NewError(core.ErrUndefinedVariable, "undefined variable %q", e.Name).WithPos(e.Position)
		}
		return v, nil
	case *ast.InterpString:
		return i.evalInterpString(e, env)
	case *ast.PropertyAccess:
		return i.evalPropertyAccess(e, env)
	case *ast.BinaryExpr:
		return i.evalBinary(e, env)
	case *ast.MethodCall:
		return i.evalMethodCall(e, env)
	case *ast.ToolListExpr:
		return nil, core.NewError(core.ErrType, "tool lists are only valid in tools assignments").WithPos(e.Position)
	default:
		return nil, core.NewError(core.ErrType, "unsupported expression %T", expr).WithPos(expr.Pos())
	}
}

func (i *Interpreter) evalInterpString(e *ast.InterpString, env *Env) (core.Value, error) {
	var sb strings.Builder
	for _, seg := range e.Segments {
		if seg.Expr == nil {
			sb.WriteString(seg.Text)
			continue
		}
		v, err := i.eval(seg.Expr, env)
		if err != nil {
			return nil, err
		}
		sb.WriteString(v.Format())
	}
	return core.String(sb.String()), nil
}

func (i *Interpreter) evalPropertyAccess(e *ast.PropertyAccess, env *Env) (core.Value, error) {
	recv, err := i.eval(e.Receiver, env)
	if err != nil {
		return nil, err
	}
	ref, ok := recv.(core.AgentRef)
	if !ok {
		return nil, core.NewError(core.ErrType, "cannot read property %q of %s", e.Property, recv.Kind()).WithPos(e.Position)
	}
	agent, ok := i.rt.LookupID(ref.ID)
	if !ok {
		return nil, core.NewError(core.ErrUnknownAgent, "unknown agent %q", ref.Name).WithPos(e.Position)
	}
	return agent.Property(e.Property), nil
}

func (i *Interpreter) evalBinary(e *ast.BinaryExpr, env *Env) (core.Value, error) {
	left, err := i.eval(e.Left, env)
	if err != nil {
		return nil, err
	}
	right, err := i.eval(e.Right, env)
	if err != nil {
		return nil, err
	}

	switch e.Op {
	case ast.OpAnd, ast.OpOr:
		lb, lok := core.Truthy(left)
		rb, rok := core.Truthy(right)
		if !lok || !rok {
			return nil, core.NewError(core.ErrType, "%s requires boolean operands, got %s and %s",
				e.Op, left.Kind(), right.Kind()).WithPos(e.Position)
		}
		if e.Op == ast.OpAnd {
			return core.Bool(lb && rb), nil
		}
		return core.Bool(lb || rb), nil
	case ast.OpEq, ast.OpNeq:
		eq, err := valuesEqual(left, right)
		if err != nil {
			return nil, i.withPos(err, e.Position)
		}
		if e.Op == ast.OpNeq {
			eq = !eq
		}
		return core.Bool(eq), nil
	default:
		return i.evalOrdering(e, left, right)
	}
}

// valuesEqual compares two values of the same kind. Mixed kinds are a type
// error, never a silent false.
func valuesEqual(left, right core.Value) (bool, error) {
	if left.Kind() != right.Kind() {
		return false, core.NewError(core.ErrType, "cannot compare %s with %s", left.Kind(), right.Kind())
	}
	switch l := left.(type) {
	case core.String:
		return l == right.(core.String), nil
	case core.Number:
		return l == right.(core.Number), nil
	case core.Bool:
		return l == right.(core.Bool), nil
	case core.Null:
		return true, nil
	case core.AgentRef:
		return l.ID == right.(core.AgentRef).ID, nil
	default:
		return false, core.NewError(core.ErrType, "cannot compare %s values", left.Kind())
	}
}

func (i *Interpreter) evalOrdering(e *ast.BinaryExpr, left, right core.Value) (core.Value, error) {
	if left.Kind() != right.Kind() {
		return nil, core.NewError(core.ErrType, "cannot compare %s with %s", left.Kind(), right.Kind()).WithPos(e.Position)
	}

	var cmp int
	switch l := left.(type) {
	case core.Number:
		r := right.(core.Number)
		switch {
		case l < r:
			cmp = -1
		case l > r:
			cmp = 1
		}
	case core.String:
		cmp = strings.Compare(string(l), string(right.(core.String)))
	default:
		return nil, core.NewError(core.ErrType, "%s is not supported for %s values", e.Op, left.Kind()).WithPos(e.Position)
	}

	switch e.Op {
	case ast.OpLt:
		return core.Bool(cmp < 0), nil
	case ast.OpGt:
		return core.Bool(cmp > 0), nil
	case ast.OpLeq:
		return core.Bool(cmp <= 0), nil
	case ast.OpGeq:
		return core.Bool(cmp >= 0), nil
	default:
		return nil, core.NewError(core.ErrType, "unsupported operator %s", e.Op).WithPos(e.Position)
	}
}

func (i *Interpreter) evalMethodCall(e *ast.MethodCall, env *Env) (core.Value, error) {
	recv, err := i.eval(e.Receiver, env)
	if err != nil {
		return nil, err
	}
	ref, ok := recv.(core.AgentRef)
	if !ok {
		return nil, core.NewError(core.ErrType, "cannot call %q on %s", e.Method, recv.Kind()).WithPos(e.Position)
	}
	agent, ok := i.rt.LookupID(ref.ID)
	if !ok {
		return nil, core.NewError(core.ErrUnknownAgent, "unknown agent %q", ref.Name).WithPos(e.Position)
	}

	args := make([]core.Value, 0, len(e.Args))
	for _, arg := range e.Args {
		v, err := i.eval(arg, env)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}

	switch e.Method {
	case "ask":
		return i.callAsk(agent, e, args, env)
	case "tell":
		return i.callTell(agent, e, args)
	case "has_tool":
		name, err := i.methodArgString(e, args, 0)
		if err != nil {
			return nil, err
		}
		return core.Bool(agent.HasTool(name)), nil
	case "execute_tool":
		return i.callExecuteTool(agent, e, args, env)
	default:
		return nil, core.NewError(core.ErrType, "unknown method %q", e.Method).WithPos(e.Position)
	}
}

// mainSender identifies the interpreter's own thread of control in bus
// accounting.
const mainSender = "main"

func (i *Interpreter) callAsk(agent *runtime.Agent, e *ast.MethodCall, args []core.Value, env *Env) (core.Value, error) {
	if len(args) != 1 {
		return nil, core.NewError(core.ErrType, "ask expects 1 argument, got %d", len(args)).WithPos(e.Position)
	}

	timeout := i.askTimeout
	for _, named := range e.Named {
		if named.Name != "timeout" {
			return nil, core.NewError(core.ErrType, "ask does not accept argument %q", named.Name).WithPos(e.Position)
		}
		v, err := i.eval(named.Value, env)
		if err != nil {
			return nil, err
		}
		secs, ok := v.(core.Number)
		if !ok {
			return nil, core.NewError(core.ErrType, "timeout must be a number of seconds, got %s", v.Kind()).WithPos(e.Position)
		}
		timeout = time.Duration(float64(secs) * float64(time.Second))
	}

	started := time.Now()
	reply, err := i.rt.Bus().Ask(context.Background(), mainSender, agent.ID(), args[0], timeout)
	if err != nil {
		return nil, i.withPos(err, e.Position)
	}
	i.logger.Debug("ask completed", "agent", agent.Name(), "took", time.Since(started))
	return reply, nil
}

func (i *Interpreter) callTell(agent *runtime.Agent, e *ast.MethodCall, args []core.Value) (core.Value, error) {
	if len(args) != 1 {
		return nil, core.NewError(core.ErrType, "tell expects 1 argument, got %d", len(args)).WithPos(e.Position)
	}
	if _, err := i.rt.Bus().Tell(mainSender, agent.ID(), args[0]); err != nil {
		return nil, i.withPos(err, e.Position)
	}
	return core.Null{}, nil
}

func (i *Interpreter) callExecuteTool(agent *runtime.Agent, e *ast.MethodCall, args []core.Value, env *Env) (core.Value, error) {
	name, err := i.methodArgString(e, args, 0)
	if err != nil {
		return nil, err
	}
	if !agent.HasTool(name) {
		return nil, core.NewError(core.ErrToolNotAssigned, "tool %q is not assigned to agent %q", name, agent.Name()).WithPos(e.Position)
	}

	// Routing targets are stored by script name; resolve them to live
	// agent ids at call time.
	routes := agent.ToolRoutes(name)
	targetIDs := make([]string, 0, len(routes))
	for _, target := range routes {
		t, err := i.resolveAgent(target, e.Position, env)
		if err != nil {
			return nil, err
		}
		targetIDs = append(targetIDs, t.ID())
	}

	tc := tool.NewContext(agent.ID(), i.rt.Bus(), i.logger).WithRoutes(targetIDs)
	agent.BeginWork()
	result, err := i.rt.Tools().Execute(tc, name, args[1:]...)
	agent.EndWork(err)
	if err != nil {
		return nil, i.withPos(err, e.Position)
	}
	return result, nil
}

func (i *Interpreter) methodArgString(e *ast.MethodCall, args []core.Value, idx int) (string, error) {
	if idx >= len(args) {
		return "", core.NewError(core.ErrType, "%s expects a tool name argument", e.Method).WithPos(e.Position)
	}
	s, ok := args[idx].(core.String)
	if !ok {
		return "", core.NewError(core.ErrType, "%s expects a string tool name, got %s", e.Method, args[idx].Kind()).WithPos(e.Position)
	}
	return string(s), nil
}

// withPos attaches a source position to runtime errors that lack one.
func (i *Interpreter) withPos(err error, pos core.Position) error {
	var rerr *core.RuntimeError
	if errors.As(err, &rerr) && !rerr.Pos.IsValid() {
		return rerr.WithPos(pos)
	}
	return err
}
