package main

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/wasm-types/errors"
	"github.com/wippyai/wasm-types/internal/wasmtest"
	"github.com/wippyai/wasm-types/wasm"
)

func loadModel(t *testing.T, data []byte) *interactiveModel {
	t.Helper()
	m := newInteractiveModel(writeModule(t, "demo.wasm", data), 0)
	t.Cleanup(m.close)

	assert.Equal(t, "Loading module...", m.View())
	msg := m.Init()()
	m.Update(msg)
	return m
}

func key(k tea.KeyType) tea.KeyMsg { return tea.KeyMsg{Type: k} }

func typeText(m *interactiveModel, s string) {
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

// press sends a key. For enter the returned command is run once and a call
// result is fed back into the model; other commands are cursor blinks.
func press(t *testing.T, m *interactiveModel, k tea.KeyType) {
	t.Helper()
	_, cmd := m.Update(key(k))
	if k != tea.KeyEnter || cmd == nil {
		return
	}
	if res, ok := cmd().(callResultMsg); ok {
		m.Update(res)
	}
}

func TestInteractiveCall(t *testing.T) {
	m := loadModel(t, wasmtest.AddModule(true))
	require.NoError(t, m.err)
	require.Len(t, m.funcs, 1)
	assert.Contains(t, m.View(), "Select a function to call")
	assert.Contains(t, m.View(), "add")

	press(t, m, tea.KeyEnter)
	require.Equal(t, stateInputArgs, m.state)
	require.Len(t, m.inputs, 2)
	assert.Contains(t, m.View(), "Calling")

	typeText(m, "2")
	press(t, m, tea.KeyTab)
	typeText(m, "40")
	assert.Equal(t, "2", m.inputs[0].Value())
	assert.Equal(t, "40", m.inputs[1].Value())

	press(t, m, tea.KeyEnter)
	require.Equal(t, stateShowResult, m.state)
	require.NoError(t, m.err)
	assert.Equal(t, "42", m.result)
	assert.Contains(t, m.View(), "42")

	press(t, m, tea.KeyEnter)
	assert.Equal(t, stateSelectFunc, m.state)
	assert.Empty(t, m.result)
}

func TestInteractiveBadArgument(t *testing.T) {
	m := loadModel(t, wasmtest.AddModule(false))

	press(t, m, tea.KeyEnter)
	typeText(m, "abc")
	press(t, m, tea.KeyEnter)

	require.Equal(t, stateShowResult, m.state)
	require.Error(t, m.err)
	assert.Equal(t, errors.KindInvalidInput, errors.KindOf(m.err))
	assert.Contains(t, m.View(), "Error:")
}

func TestInteractiveNoParams(t *testing.T) {
	sig := wasm.FunctionType{Results: []wasm.ValueType{wasm.ValI64, wasm.ValF64}}
	m := loadModel(t, wasmtest.Module(false,
		wasmtest.Func{Name: "pair", Signature: sig, Body: wasmtest.ConstBody(sig, 7)},
	))

	press(t, m, tea.KeyEnter)
	require.Equal(t, stateShowResult, m.state)
	require.NoError(t, m.err)
	assert.Equal(t, "(7, 7)", m.result)
}

func TestInteractiveNavigation(t *testing.T) {
	m := loadModel(t, wasmtest.Module(false,
		wasmtest.Func{Name: "first", Signature: wasm.FunctionType{}},
		wasmtest.Func{Name: "second", Signature: wasmtest.AddSignature, Body: wasmtest.AddBody},
	))

	press(t, m, tea.KeyUp)
	assert.Equal(t, 0, m.selected)
	press(t, m, tea.KeyDown)
	assert.Equal(t, 1, m.selected)
	press(t, m, tea.KeyDown)
	assert.Equal(t, 1, m.selected)

	press(t, m, tea.KeyEnter)
	require.Equal(t, stateInputArgs, m.state)

	// q is text while an argument field has focus.
	typeText(m, "q")
	assert.Equal(t, stateInputArgs, m.state)

	press(t, m, tea.KeyEsc)
	assert.Equal(t, stateSelectFunc, m.state)
	assert.Nil(t, m.inputs)
}

func TestInteractiveQuit(t *testing.T) {
	m := loadModel(t, wasmtest.AddModule(false))

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Nil(t, m.instance)
	assert.Nil(t, m.rt)
}

func TestInteractiveLoadError(t *testing.T) {
	m := loadModel(t, []byte("not wasm"))

	require.Error(t, m.err)
	assert.ErrorIs(t, m.err, wasm.ErrInvalidHeader)
	assert.Contains(t, m.View(), "Press q to quit")
}

func TestInteractiveEmptyModule(t *testing.T) {
	m := loadModel(t, wasmtest.Encode())

	require.NoError(t, m.err)
	assert.Contains(t, m.View(), "exports no functions")

	press(t, m, tea.KeyEnter)
	assert.Equal(t, stateSelectFunc, m.state)
}

func TestFormatResults(t *testing.T) {
	assert.Equal(t, "()", formatResults(nil))
	assert.Equal(t, "3", formatResults([]any{int32(3)}))
	assert.Equal(t, "(1, 2.5)", formatResults([]any{int64(1), 2.5}))
}
