package tui

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ajramos/formsmith/internal/config"
	"github.com/ajramos/formsmith/internal/persist"
)

func TestStatusBar_SaveStates(t *testing.T) {
	sb := NewStatusBar(config.DefaultColors().Status)
	assert.Contains(t, sb.Text(), "r0")
	assert.Contains(t, sb.Text(), "ctrl-q quit")

	sb.Update(persist.Status{State: persist.Saving, Revision: 2})
	assert.Contains(t, sb.Text(), "● saving r2")

	sb.Update(persist.Status{State: persist.Saved, Revision: 2})
	assert.Contains(t, sb.Text(), "✓ saved r2")

	err := fmt.Errorf("%w: [500] boom", persist.ErrPersistence)
	sb.Update(persist.Status{State: persist.Failed, Revision: 3, Err: err})
	assert.Contains(t, sb.Text(), "✗ save failed: persistence failed: [500] boom")

	sb.Update(persist.Status{State: persist.Idle, Revision: 3})
	assert.NotContains(t, sb.Text(), "failed")
}

func TestStatusBar_Messages(t *testing.T) {
	sb := NewStatusBar(config.DefaultColors().Status)

	sb.ShowMessage(errors.New("index out of range").Error(), LogLevelError)
	assert.Contains(t, sb.Text(), "✗ index out of range")
	assert.Contains(t, sb.view.GetText(false), "[#ff5555]")

	sb.ShowMessage("applied preset ocean", LogLevelSuccess)
	assert.Contains(t, sb.Text(), "✓ applied preset ocean")
	assert.NotContains(t, sb.Text(), "index out of range")

	sb.ClearMessage()
	assert.NotContains(t, sb.Text(), "applied")
}
