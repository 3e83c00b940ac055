package lisp

import (
	"math"
	"strconv"
	"strings"
)

// NewStandardEnv creates a top-level environment populated with the standard
// builtin functions. Additional shared bindings (for example host API
// functions) should be registered into it with Define before the environment
// is handed to an evaluator.
func NewStandardEnv() *Env {
	env := NewEnv()

	register(env, "+", func(args []Value) (Value, error) {
		nums, err := wantNumbers("+", args)
		if err != nil {
			return nil, err
		}
		sum := 0.0
		for _, n := range nums {
			sum += n
		}
		return Number(sum), nil
	})

	register(env, "-", func(args []Value) (Value, error) {
		nums, err := wantNumbers("-", args)
		if err != nil {
			return nil, err
		}
		if len(nums) == 0 {
			return nil, NewEvalError("- expects at least 1 argument")
		}
		if len(nums) == 1 {
			return Number(-nums[0]), nil
		}
		result := nums[0]
		for _, n := range nums[1:] {
			result -= n
		}
		return Number(result), nil
	})

	register(env, "*", func(args []Value) (Value, error) {
		nums, err := wantNumbers("*", args)
		if err != nil {
			return nil, err
		}
		product := 1.0
		for _, n := range nums {
			product *= n
		}
		return Number(product), nil
	})

	register(env, "/", func(args []Value) (Value, error) {
		nums, err := wantNumbers("/", args)
		if err != nil {
			return nil, err
		}
		if len(nums) == 0 {
			return nil, NewEvalError("/ expects at least 1 argument")
		}
		if len(nums) == 1 {
			nums = append([]float64{1}, nums...)
		}
		result := nums[0]
		for _, n := range nums[1:] {
			if n == 0 {
				return nil, NewEvalError("division by zero")
			}
			result /= n
		}
		return Number(result), nil
	})

	register(env, "modulo", func(args []Value) (Value, error) {
		nums, err := wantNumbers("modulo", args)
		if err != nil {
			return nil, err
		}
		if len(nums) != 2 {
			return nil, NewEvalError("modulo expects 2 arguments, got %d", len(nums))
		}
		if nums[1] == 0 {
			return nil, NewEvalError("division by zero")
		}
		return Number(math.Mod(nums[0], nums[1])), nil
	})

	register(env, "abs", func(args []Value) (Value, error) {
		nums, err := wantNumbers("abs", args)
		if err != nil {
			return nil, err
		}
		if len(nums) != 1 {
			return nil, NewEvalError("abs expects 1 argument, got %d", len(nums))
		}
		return Number(math.Abs(nums[0])), nil
	})

	register(env, "min", func(args []Value) (Value, error) {
		return foldExtremum("min", args, math.Min)
	})

	register(env, "max", func(args []Value) (Value, error) {
		return foldExtremum("max", args, math.Max)
	})

	registerComparison(env, "=", func(a, b float64) bool { return a == b })
	registerComparison(env, "<", func(a, b float64) bool { return a < b })
	registerComparison(env, ">", func(a, b float64) bool { return a > b })
	registerComparison(env, "<=", func(a, b float64) bool { return a <= b })
	registerComparison(env, ">=", func(a, b float64) bool { return a >= b })

	register(env, "list", func(args []Value) (Value, error) {
		return List(args), nil
	})

	register(env, "car", func(args []Value) (Value, error) {
		l, err := wantList("car", args)
		if err != nil {
			return nil, err
		}
		if len(l) == 0 {
			return nil, NewEvalError("car: empty list")
		}
		return l[0], nil
	})

	register(env, "cdr", func(args []Value) (Value, error) {
		l, err := wantList("cdr", args)
		if err != nil {
			return nil, err
		}
		if len(l) == 0 {
			return nil, NewEvalError("cdr: empty list")
		}
		return l[1:], nil
	})

	register(env, "cons", func(args []Value) (Value, error) {
		if len(args) != 2 {
			return nil, NewEvalError("cons expects 2 arguments, got %d", len(args))
		}
		tail, ok := args[1].(List)
		if !ok {
			return nil, NewEvalError("cons: second argument must be a list, got %s", args[1].Type())
		}
		return append(List{args[0]}, tail...), nil
	})

	register(env, "length", func(args []Value) (Value, error) {
		l, err := wantList("length", args)
		if err != nil {
			return nil, err
		}
		return Number(len(l)), nil
	})

	register(env, "null?", func(args []Value) (Value, error) {
		l, err := wantList("null?", args)
		if err != nil {
			return nil, err
		}
		return Bool(len(l) == 0), nil
	})

	register(env, "not", func(args []Value) (Value, error) {
		if len(args) != 1 {
			return nil, NewEvalError("not expects 1 argument, got %d", len(args))
		}
		return Bool(!Truthy(args[0])), nil
	})

	register(env, "equal?", func(args []Value) (Value, error) {
		if len(args) != 2 {
			return nil, NewEvalError("equal? expects 2 arguments, got %d", len(args))
		}
		return Bool(args[0].String() == args[1].String()), nil
	})

	register(env, "string-append", func(args []Value) (Value, error) {
		var sb strings.Builder
		for _, arg := range args {
			s, ok := arg.(Str)
			if !ok {
				return nil, NewEvalError("string-append: expected string, got %s", arg.Type())
			}
			sb.WriteString(string(s))
		}
		return Str(sb.String()), nil
	})

	register(env, "number->string", func(args []Value) (Value, error) {
		nums, err := wantNumbers("number->string", args)
		if err != nil {
			return nil, err
		}
		if len(nums) != 1 {
			return nil, NewEvalError("number->string expects 1 argument, got %d", len(nums))
		}
		return Str(strconv.FormatFloat(nums[0], 'f', -1, 64)), nil
	})

	register(env, "string->number", func(args []Value) (Value, error) {
		if len(args) != 1 {
			return nil, NewEvalError("string->number expects 1 argument, got %d", len(args))
		}
		s, ok := args[0].(Str)
		if !ok {
			return nil, NewEvalError("string->number: expected string, got %s", args[0].Type())
		}
		n, err := strconv.ParseFloat(string(s), 64)
		if err != nil {
			return Bool(false), nil
		}
		return Number(n), nil
	})

	return env
}

func register(env *Env, name string, fn func(args []Value) (Value, error)) {
	env.Define(name, &Builtin{Name: name, Fn: fn})
}

func registerComparison(env *Env, name string, cmp func(a, b float64) bool) {
	register(env, name, func(args []Value) (Value, error) {
		nums, err := wantNumbers(name, args)
		if err != nil {
			return nil, err
		}
		if len(nums) < 2 {
			return nil, NewEvalError("%s expects at least 2 arguments, got %d", name, len(nums))
		}
		for i := 0; i < len(nums)-1; i++ {
			if !cmp(nums[i], nums[i+1]) {
				return Bool(false), nil
			}
		}
		return Bool(true), nil
	})
}

func foldExtremum(name string, args []Value, pick func(a, b float64) float64) (Value, error) {
	nums, err := wantNumbers(name, args)
	if err != nil {
		return nil, err
	}
	if len(nums) == 0 {
		return nil, NewEvalError("%s expects at least 1 argument", name)
	}
	result := nums[0]
	for _, n := range nums[1:] {
		result = pick(result, n)
	}
	return Number(result), nil
}

func wantNumbers(name string, args []Value) ([]float64, error) {
	nums := make([]float64, len(args))
	for i, arg := range args {
		n, ok := arg.(Number)
		if !ok {
			return nil, NewEvalError("%s: expected number, got %s", name, arg.Type())
		}
		nums[i] = float64(n)
	}
	return nums, nil
}

func wantList(name string, args []Value) (List, error) {
	if len(args) != 1 {
		return nil, NewEvalError("%s expects 1 argument, got %d", name, len(args))
	}
	l, ok := args[0].(List)
	if !ok {
		return nil, NewEvalError("%s: expected list, got %s", name, args[0].Type())
	}
	return l, nil
}
