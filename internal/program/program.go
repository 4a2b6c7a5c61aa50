// Package program compiles CUE workflow programs into call-node trees.
//
// A program declares its tasks and a main call expression:
//
//	task: increment: {
//		target: "lib.extra.increment"
//		params: num: {type: "int"}
//		result: {type: "int"}
//	}
//
//	main: {
//		task: "sum"
//		args: {
//			left: {call: {task: "increment", args: {num: 1}}}
//			right: {param: {name: "INPUT_NUM", type: "int", default: 3}}
//		}
//	}
//
// Call expressions may carry kind: "nested" or "subworkflow" with a body
// expression; argument structs containing a "call" or "param" field are
// treated as references, everything else as a literal.
package program

import (
	"cuelang.org/go/cue"

	"github.com/skeinworks/skein/internal/builder"
	"github.com/skeinworks/skein/internal/ir"
)

// Program is a compiled workflow program.
type Program struct {
	Tasks map[string]*ir.Task
	Root  *builder.CallNode

	// results holds each task's declared result descriptor, used when a
	// call expression does not override it.
	results map[string]builder.ResultType
}

// Compile parses a CUE value holding task declarations and a main call
// expression. Uses the CUE SDK's Go API directly.
func Compile(v cue.Value) (*Program, error) {
	if err := v.Err(); err != nil {
		return nil, compileErrf("program", v.Pos(), "%v", err)
	}

	p := &Program{
		Tasks:   make(map[string]*ir.Task),
		results: make(map[string]builder.ResultType),
	}

	tasksVal := v.LookupPath(cue.ParsePath("task"))
	if tasksVal.Exists() {
		iter, err := tasksVal.Fields()
		if err != nil {
			return nil, compileErrf("task", tasksVal.Pos(), "iterating tasks: %v", err)
		}
		for iter.Next() {
			task, err := compileTask(iter.Selector().Unquoted(), iter.Value())
			if err != nil {
				return nil, err
			}
			result, err := compileResult(iter.Value().LookupPath(cue.ParsePath("result")))
			if err != nil {
				return nil, err
			}
			p.Tasks[task.Name] = task
			p.results[task.Name] = result
		}
	}

	mainVal := v.LookupPath(cue.ParsePath("main"))
	if !mainVal.Exists() {
		return nil, compileErrf("main", v.Pos(), "main call expression is required")
	}
	root, err := p.compileCall(mainVal)
	if err != nil {
		return nil, err
	}
	p.Root = root
	return p, nil
}

// compileTask parses one task declaration.
func compileTask(name string, v cue.Value) (*ir.Task, error) {
	task := &ir.Task{Name: name}

	targetVal := v.LookupPath(cue.ParsePath("target"))
	if !targetVal.Exists() {
		return nil, compileErrf("task."+name, v.Pos(), "target is required")
	}
	target, err := targetVal.String()
	if err != nil {
		return nil, compileErrf("task."+name+".target", targetVal.Pos(), "%v", err)
	}
	task.Target = target

	paramsVal := v.LookupPath(cue.ParsePath("params"))
	if paramsVal.Exists() {
		iter, err := paramsVal.Fields()
		if err != nil {
			return nil, compileErrf("task."+name+".params", paramsVal.Pos(), "%v", err)
		}
		for iter.Next() {
			spec := ir.ParamSpec{Name: iter.Selector().Unquoted()}
			typVal := iter.Value().LookupPath(cue.ParsePath("type"))
			if typVal.Exists() {
				if spec.Type, err = typVal.String(); err != nil {
					return nil, compileErrf("task."+name+".params", typVal.Pos(), "%v", err)
				}
			}
			defVal := iter.Value().LookupPath(cue.ParsePath("default"))
			if defVal.Exists() {
				def, convErr := literalValue(defVal)
				if convErr != nil {
					return nil, convErr
				}
				converted, convErr2 := ir.FromGo(def)
				if convErr2 != nil {
					return nil, compileErrf("task."+name+".params", defVal.Pos(), "%v", convErr2)
				}
				spec.Default = converted
			}
			task.Params = append(task.Params, spec)
		}
	}

	return task, nil
}

// compileResult parses a result descriptor: {type: tag} or
// {fields: {name: tag, ...}}.
func compileResult(v cue.Value) (builder.ResultType, error) {
	if !v.Exists() {
		return builder.Scalar(ir.TypeInt), nil
	}

	fieldsVal := v.LookupPath(cue.ParsePath("fields"))
	if fieldsVal.Exists() {
		iter, err := fieldsVal.Fields()
		if err != nil {
			return builder.ResultType{}, compileErrf("result.fields", fieldsVal.Pos(), "%v", err)
		}
		var fields []ir.ParamSpec
		for iter.Next() {
			tag, err := iter.Value().String()
			if err != nil {
				return builder.ResultType{}, compileErrf("result.fields", iter.Value().Pos(), "%v", err)
			}
			fields = append(fields, ir.ParamSpec{Name: iter.Selector().Unquoted(), Type: tag})
		}
		return builder.Record(fields...), nil
	}

	typVal := v.LookupPath(cue.ParsePath("type"))
	if typVal.Exists() {
		tag, err := typVal.String()
		if err != nil {
			return builder.ResultType{}, compileErrf("result.type", typVal.Pos(), "%v", err)
		}
		return builder.Scalar(tag), nil
	}
	return builder.Scalar(ir.TypeInt), nil
}

// compileCall parses a call expression into a call node.
func (p *Program) compileCall(v cue.Value) (*builder.CallNode, error) {
	taskVal := v.LookupPath(cue.ParsePath("task"))
	if !taskVal.Exists() {
		return nil, compileErrf("call", v.Pos(), "task name is required")
	}
	taskName, err := taskVal.String()
	if err != nil {
		return nil, compileErrf("call.task", taskVal.Pos(), "%v", err)
	}
	task, ok := p.Tasks[taskName]
	if !ok {
		return nil, compileErrf("call.task", taskVal.Pos(), "undeclared task %q", taskName)
	}

	var bindings []builder.Binding
	argsVal := v.LookupPath(cue.ParsePath("args"))
	if argsVal.Exists() {
		iter, err := argsVal.Fields()
		if err != nil {
			return nil, compileErrf("call.args", argsVal.Pos(), "%v", err)
		}
		for iter.Next() {
			binding, err := p.compileArg(iter.Selector().Unquoted(), iter.Value())
			if err != nil {
				return nil, err
			}
			bindings = append(bindings, binding)
		}
	}

	// A call-level result overrides the task declaration's.
	var result builder.ResultType
	if resultVal := v.LookupPath(cue.ParsePath("result")); resultVal.Exists() {
		if result, err = compileResult(resultVal); err != nil {
			return nil, err
		}
	} else {
		result = p.results[taskName]
	}

	kindVal := v.LookupPath(cue.ParsePath("kind"))
	if !kindVal.Exists() {
		return builder.Call(task, result, bindings...), nil
	}
	kind, err := kindVal.String()
	if err != nil {
		return nil, compileErrf("call.kind", kindVal.Pos(), "%v", err)
	}

	bodyVal := v.LookupPath(cue.ParsePath("body"))
	if !bodyVal.Exists() {
		return nil, compileErrf("call.body", v.Pos(), "%s call requires a body expression", kind)
	}
	body, err := p.compileCall(bodyVal)
	if err != nil {
		return nil, err
	}

	switch kind {
	case "nested":
		return builder.Nested(task, body, bindings...), nil
	case "subworkflow":
		return builder.Boundary(task, body, bindings...), nil
	}
	return nil, compileErrf("call.kind", kindVal.Pos(), "unknown call kind %q", kind)
}

// compileArg parses one argument binding.
func (p *Program) compileArg(name string, v cue.Value) (builder.Binding, error) {
	if v.Kind() == cue.StructKind {
		callVal := v.LookupPath(cue.ParsePath("call"))
		paramVal := v.LookupPath(cue.ParsePath("param"))

		switch {
		case callVal.Exists():
			node, err := p.compileCall(callVal)
			if err != nil {
				return builder.Binding{}, err
			}
			fieldVal := v.LookupPath(cue.ParsePath("field"))
			if fieldVal.Exists() {
				field, err := fieldVal.String()
				if err != nil {
					return builder.Binding{}, compileErrf("arg."+name+".field", fieldVal.Pos(), "%v", err)
				}
				return builder.BindField(name, node, field), nil
			}
			return builder.Bind(name, node), nil

		case paramVal.Exists():
			return p.compileParamArg(name, paramVal)
		}
	}

	literal, err := literalValue(v)
	if err != nil {
		return builder.Binding{}, err
	}
	return builder.Lit(name, literal), nil
}

func (p *Program) compileParamArg(name string, v cue.Value) (builder.Binding, error) {
	nameVal := v.LookupPath(cue.ParsePath("name"))
	if !nameVal.Exists() {
		return builder.Binding{}, compileErrf("arg."+name+".param", v.Pos(), "param name is required")
	}
	paramName, err := nameVal.String()
	if err != nil {
		return builder.Binding{}, compileErrf("arg."+name+".param", nameVal.Pos(), "%v", err)
	}

	typ := ""
	if typVal := v.LookupPath(cue.ParsePath("type")); typVal.Exists() {
		if typ, err = typVal.String(); err != nil {
			return builder.Binding{}, compileErrf("arg."+name+".param.type", typVal.Pos(), "%v", err)
		}
	}

	if defVal := v.LookupPath(cue.ParsePath("default")); defVal.Exists() {
		def, convErr := literalValue(defVal)
		if convErr != nil {
			return builder.Binding{}, convErr
		}
		return builder.ParamDefault(name, paramName, typ, def), nil
	}
	return builder.Param(name, paramName, typ), nil
}

// literalValue converts a CUE literal to a native Go value.
func literalValue(v cue.Value) (any, error) {
	switch v.Kind() {
	case cue.IntKind:
		i, err := v.Int64()
		if err != nil {
			return nil, compileErrf("literal", v.Pos(), "%v", err)
		}
		return i, nil
	case cue.FloatKind, cue.NumberKind:
		f, err := v.Float64()
		if err != nil {
			return nil, compileErrf("literal", v.Pos(), "%v", err)
		}
		return f, nil
	case cue.StringKind:
		return v.String()
	case cue.BoolKind:
		return v.Bool()
	case cue.ListKind:
		iter, err := v.List()
		if err != nil {
			return nil, compileErrf("literal", v.Pos(), "%v", err)
		}
		var items []any
		for iter.Next() {
			item, err := literalValue(iter.Value())
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
		return items, nil
	case cue.StructKind:
		iter, err := v.Fields()
		if err != nil {
			return nil, compileErrf("literal", v.Pos(), "%v", err)
		}
		obj := make(map[string]any)
		for iter.Next() {
			item, err := literalValue(iter.Value())
			if err != nil {
				return nil, err
			}
			obj[iter.Selector().Unquoted()] = item
		}
		return obj, nil
	}
	return nil, compileErrf("literal", v.Pos(), "unsupported literal kind %v", v.Kind())
}
