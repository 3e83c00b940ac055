package lisp

// Eval evaluates a form in the given environment
func Eval(form Value, env *Env) (Value, error) {
	switch v := form.(type) {
	case Symbol:
		val, ok := env.Get(string(v))
		if !ok {
			return nil, NewEvalError("unbound symbol: %s", v)
		}
		return val, nil
	case List:
		return evalList(v, env)
	default:
		// numbers, strings and booleans are self-evaluating
		return form, nil
	}
}

func evalList(list List, env *Env) (Value, error) {
	if len(list) == 0 {
		return nil, NewEvalError("cannot evaluate the empty list")
	}

	if sym, ok := list[0].(Symbol); ok {
		switch sym {
		case "quote":
			return evalQuote(list)
		case "if":
			return evalIf(list, env)
		case "define":
			return evalDefine(list, env)
		case "set!":
			return evalSet(list, env)
		case "lambda":
			return evalLambda(list, env)
		case "let":
			return evalLet(list, env)
		case "begin":
			return evalBody(list[1:], env)
		case "and":
			return evalAnd(list, env)
		case "or":
			return evalOr(list, env)
		}
	}

	fn, err := Eval(list[0], env)
	if err != nil {
		return nil, err
	}
	args := make([]Value, 0, len(list)-1)
	for _, arg := range list[1:] {
		val, err := Eval(arg, env)
		if err != nil {
			return nil, err
		}
		args = append(args, val)
	}
	return Apply(fn, args)
}

// Apply invokes a builtin or lambda with already-evaluated arguments
func Apply(fn Value, args []Value) (Value, error) {
	switch f := fn.(type) {
	case *Builtin:
		return f.Fn(args)
	case *Lambda:
		if len(args) != len(f.Params) {
			return nil, NewEvalError("%s expects %d arguments, got %d", f.String(), len(f.Params), len(args))
		}
		local := NewEnclosedEnv(f.Env)
		for i, param := range f.Params {
			local.Define(param, args[i])
		}
		return evalBody(f.Body, local)
	default:
		return nil, NewEvalError("not a function: %s", fn.String())
	}
}

// evalBody evaluates a sequence of forms, returning the last result
func evalBody(body []Value, env *Env) (Value, error) {
	var result Value = Unspecified
	var err error
	for _, form := range body {
		result, err = Eval(form, env)
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

func evalQuote(list List) (Value, error) {
	if len(list) != 2 {
		return nil, NewEvalError("quote expects 1 argument, got %d", len(list)-1)
	}
	return list[1], nil
}

func evalIf(list List, env *Env) (Value, error) {
	if len(list) != 3 && len(list) != 4 {
		return nil, NewEvalError("if expects 2 or 3 arguments, got %d", len(list)-1)
	}
	cond, err := Eval(list[1], env)
	if err != nil {
		return nil, err
	}
	if Truthy(cond) {
		return Eval(list[2], env)
	}
	if len(list) == 4 {
		return Eval(list[3], env)
	}
	return Unspecified, nil
}

func evalDefine(list List, env *Env) (Value, error) {
	if len(list) < 3 {
		return nil, NewEvalError("define expects at least 2 arguments, got %d", len(list)-1)
	}

	switch target := list[1].(type) {
	case Symbol:
		// (define name expr)
		if len(list) != 3 {
			return nil, NewEvalError("define expects 2 arguments, got %d", len(list)-1)
		}
		val, err := Eval(list[2], env)
		if err != nil {
			return nil, err
		}
		env.Define(string(target), val)
		return Unspecified, nil
	case List:
		// (define (name params...) body...)
		if len(target) == 0 {
			return nil, NewEvalError("define: missing function name")
		}
		name, ok := target[0].(Symbol)
		if !ok {
			return nil, NewEvalError("define: function name must be a symbol, got %s", target[0].String())
		}
		params, err := paramNames(target[1:])
		if err != nil {
			return nil, err
		}
		env.Define(string(name), &Lambda{
			Name:   string(name),
			Params: params,
			Body:   list[2:],
			Env:    env,
		})
		return Unspecified, nil
	default:
		return nil, NewEvalError("define: cannot bind %s", list[1].String())
	}
}

func evalSet(list List, env *Env) (Value, error) {
	if len(list) != 3 {
		return nil, NewEvalError("set! expects 2 arguments, got %d", len(list)-1)
	}
	name, ok := list[1].(Symbol)
	if !ok {
		return nil, NewEvalError("set!: target must be a symbol, got %s", list[1].String())
	}
	val, err := Eval(list[2], env)
	if err != nil {
		return nil, err
	}
	if err := env.Update(string(name), val); err != nil {
		return nil, NewEvalError("%s", err)
	}
	return Unspecified, nil
}

func evalLambda(list List, env *Env) (Value, error) {
	if len(list) < 3 {
		return nil, NewEvalError("lambda expects at least 2 arguments, got %d", len(list)-1)
	}
	paramList, ok := list[1].(List)
	if !ok {
		return nil, NewEvalError("lambda: parameter list must be a list, got %s", list[1].String())
	}
	params, err := paramNames(paramList)
	if err != nil {
		return nil, err
	}
	return &Lambda{
		Params: params,
		Body:   list[2:],
		Env:    env,
	}, nil
}

func evalLet(list List, env *Env) (Value, error) {
	if len(list) < 3 {
		return nil, NewEvalError("let expects at least 2 arguments, got %d", len(list)-1)
	}
	bindings, ok := list[1].(List)
	if !ok {
		return nil, NewEvalError("let: bindings must be a list, got %s", list[1].String())
	}
	local := NewEnclosedEnv(env)
	for _, binding := range bindings {
		pair, ok := binding.(List)
		if !ok || len(pair) != 2 {
			return nil, NewEvalError("let: each binding must be a (name value) pair")
		}
		name, ok := pair[0].(Symbol)
		if !ok {
			return nil, NewEvalError("let: binding name must be a symbol, got %s", pair[0].String())
		}
		// binding values are evaluated in the outer environment
		val, err := Eval(pair[1], env)
		if err != nil {
			return nil, err
		}
		local.Define(string(name), val)
	}
	return evalBody(list[2:], local)
}

func evalAnd(list List, env *Env) (Value, error) {
	var result Value = Bool(true)
	for _, form := range list[1:] {
		val, err := Eval(form, env)
		if err != nil {
			return nil, err
		}
		if !Truthy(val) {
			return Bool(false), nil
		}
		result = val
	}
	return result, nil
}

func evalOr(list List, env *Env) (Value, error) {
	for _, form := range list[1:] {
		val, err := Eval(form, env)
		if err != nil {
			return nil, err
		}
		if Truthy(val) {
			return val, nil
		}
	}
	return Bool(false), nil
}

func paramNames(params []Value) ([]string, error) {
	names := make([]string, len(params))
	for i, p := range params {
		sym, ok := p.(Symbol)
		if !ok {
			return nil, NewEvalError("parameter name must be a symbol, got %s", p.String())
		}
		names[i] = string(sym)
	}
	return names, nil
}
