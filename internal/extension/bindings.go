package extension

import (
	"encoding/json"

	"github.com/defaultxr/multiplicative/internal/lisp"
)

// RegisterHostBindings registers the player API as shared bindings in the
// console's evaluation environment. These are the host definitions console
// users can call; the set is captured once at load time, before the first
// console session opens.
func RegisterHostBindings(env *lisp.Env, client commander) {
	define := func(name string, fn func(args []lisp.Value) (lisp.Value, error)) {
		env.Define(name, &lisp.Builtin{Name: name, Fn: fn})
	}

	define("mpv-command", func(args []lisp.Value) (lisp.Value, error) {
		if len(args) == 0 {
			return nil, lisp.NewEvalError("mpv-command expects at least 1 argument")
		}
		goArgs := make([]any, len(args))
		for i, arg := range args {
			goArgs[i] = lispToGo(arg)
		}
		data, err := client.Command(goArgs...)
		if err != nil {
			return nil, lisp.NewEvalError("%s", err)
		}
		return jsonToLisp(data), nil
	})

	define("get-property", func(args []lisp.Value) (lisp.Value, error) {
		name, err := wantString("get-property", args)
		if err != nil {
			return nil, err
		}
		data, propErr := client.GetProperty(name)
		if propErr != nil {
			return nil, lisp.NewEvalError("%s", propErr)
		}
		return jsonToLisp(data), nil
	})

	define("set-property", func(args []lisp.Value) (lisp.Value, error) {
		if len(args) != 2 {
			return nil, lisp.NewEvalError("set-property expects 2 arguments, got %d", len(args))
		}
		name, ok := args[0].(lisp.Str)
		if !ok {
			return nil, lisp.NewEvalError("set-property: property name must be a string, got %s", args[0].Type())
		}
		if err := client.SetProperty(string(name), lispToGo(args[1])); err != nil {
			return nil, lisp.NewEvalError("%s", err)
		}
		return lisp.Unspecified, nil
	})

	define("osd-message", func(args []lisp.Value) (lisp.Value, error) {
		text, err := wantString("osd-message", args)
		if err != nil {
			return nil, err
		}
		if osdErr := client.OSDMessage(text, 3); osdErr != nil {
			return nil, lisp.NewEvalError("%s", osdErr)
		}
		return lisp.Unspecified, nil
	})
}

func wantString(name string, args []lisp.Value) (string, error) {
	if len(args) != 1 {
		return "", lisp.NewEvalError("%s expects 1 argument, got %d", name, len(args))
	}
	s, ok := args[0].(lisp.Str)
	if !ok {
		return "", lisp.NewEvalError("%s: expected string, got %s", name, args[0].Type())
	}
	return string(s), nil
}

// lispToGo converts an evaluator value to what the IPC layer expects.
func lispToGo(v lisp.Value) any {
	switch val := v.(type) {
	case lisp.Number:
		return float64(val)
	case lisp.Str:
		return string(val)
	case lisp.Bool:
		return bool(val)
	case lisp.Symbol:
		return string(val)
	case lisp.List:
		items := make([]any, len(val))
		for i, item := range val {
			items[i] = lispToGo(item)
		}
		return items
	default:
		return v.String()
	}
}

// jsonToLisp converts a raw IPC payload to an evaluator value. Objects and
// anything else without a natural mapping come back as their JSON text.
func jsonToLisp(data json.RawMessage) lisp.Value {
	if len(data) == 0 {
		return lisp.List{}
	}
	var decoded any
	if err := json.Unmarshal(data, &decoded); err != nil {
		return lisp.Str(string(data))
	}
	return goToLisp(decoded, data)
}

func goToLisp(decoded any, raw json.RawMessage) lisp.Value {
	switch val := decoded.(type) {
	case nil:
		return lisp.List{}
	case float64:
		return lisp.Number(val)
	case string:
		return lisp.Str(val)
	case bool:
		return lisp.Bool(val)
	case []any:
		items := make(lisp.List, len(val))
		for i, item := range val {
			items[i] = goToLisp(item, nil)
		}
		return items
	default:
		if raw != nil {
			return lisp.Str(string(raw))
		}
		return lisp.Str("")
	}
}
