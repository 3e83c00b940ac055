package extension

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/defaultxr/multiplicative/internal/lisp"
)

func evalWithClient(t *testing.T, client commander, input string) (lisp.Value, error) {
	t.Helper()
	env := lisp.NewStandardEnv()
	RegisterHostBindings(env, client)

	reader := lisp.NewReader(func() (string, error) { return "", io.EOF })
	reader.Append(input + "\n")

	var result lisp.Value = lisp.Unspecified
	for !reader.Drained() {
		form, err := reader.ReadForm()
		require.NoError(t, err)
		result, err = lisp.Eval(form, env)
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

func TestMpvCommandBinding(t *testing.T) {
	client := newFakeCommander()

	result, err := evalWithClient(t, client, `(mpv-command "seek" 30 "relative")`)
	require.NoError(t, err)
	assert.Equal(t, lisp.List{}, result)

	require.Len(t, client.commands, 1)
	assert.Equal(t, []any{"seek", float64(30), "relative"}, client.commands[0])
}

func TestMpvCommandBindingNoArguments(t *testing.T) {
	client := newFakeCommander()

	_, err := evalWithClient(t, client, `(mpv-command)`)
	assert.ErrorContains(t, err, "at least 1 argument")
}

func TestGetPropertyBinding(t *testing.T) {
	client := newFakeCommander()
	client.properties["volume"] = `75.5`
	client.properties["media-title"] = `"A Title"`
	client.properties["pause"] = `false`

	result, err := evalWithClient(t, client, `(get-property "volume")`)
	require.NoError(t, err)
	assert.Equal(t, lisp.Number(75.5), result)

	result, err = evalWithClient(t, client, `(get-property "media-title")`)
	require.NoError(t, err)
	assert.Equal(t, lisp.Str("A Title"), result)

	result, err = evalWithClient(t, client, `(get-property "pause")`)
	require.NoError(t, err)
	assert.Equal(t, lisp.Bool(false), result)
}

func TestGetPropertyBindingUnavailable(t *testing.T) {
	client := newFakeCommander()

	_, err := evalWithClient(t, client, `(get-property "no-such-property")`)
	assert.ErrorContains(t, err, "no-such-property")
}

func TestSetPropertyBinding(t *testing.T) {
	client := newFakeCommander()

	result, err := evalWithClient(t, client, `(set-property "volume" 50)`)
	require.NoError(t, err)
	assert.Equal(t, lisp.Unspecified, result)

	require.Len(t, client.sets, 1)
	assert.Equal(t, "volume", client.sets[0].name)
	assert.Equal(t, float64(50), client.sets[0].value)
}

func TestSetPropertyBindingNameMustBeString(t *testing.T) {
	client := newFakeCommander()

	_, err := evalWithClient(t, client, `(set-property 5 50)`)
	assert.ErrorContains(t, err, "property name must be a string")
}

func TestOSDMessageBinding(t *testing.T) {
	client := newFakeCommander()

	_, err := evalWithClient(t, client, `(osd-message "hello")`)
	require.NoError(t, err)
	assert.Equal(t, []string{"hello"}, client.osd)
}

func TestBindingsComposeWithEvaluator(t *testing.T) {
	client := newFakeCommander()
	client.properties["volume"] = `40`

	_, err := evalWithClient(t, client,
		`(set-property "volume" (+ (get-property "volume") 10))`)
	require.NoError(t, err)

	require.Len(t, client.sets, 1)
	assert.Equal(t, float64(50), client.sets[0].value)
}
